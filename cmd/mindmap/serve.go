package main

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ritzau/mindmap/pkg/dataset"
	"github.com/ritzau/mindmap/pkg/logging"
	"github.com/ritzau/mindmap/pkg/pubsub"
	"github.com/ritzau/mindmap/pkg/session"
	"github.com/ritzau/mindmap/pkg/watcher"
	"github.com/ritzau/mindmap/pkg/web"
)

const (
	reloadQuietPeriod = 200 * time.Millisecond
	reloadMaxWait     = 2 * time.Second
)

func addServeFlags(f *pflag.FlagSet) {
	f.String("host", "localhost", "address to listen on")
	f.Int("port", 8080, "port for the web server")
	f.Bool("watch", false, "reload the dataset file when it changes")
	f.Bool("open", true, "open the canvas in a browser")
}

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive canvas (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
	addServeFlags(cmd.Flags())
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	ds, lc, err := a.load()
	if err != nil {
		return err
	}

	pub := pubsub.NewSSEPublisher()
	defer pub.Close()

	manager := session.NewManager(ds, lc, pub)
	server := web.NewServer(manager, pub)
	if err := server.PublishDatasetStatus(web.StateLoaded, ds, nil); err != nil {
		logging.Warn("failed to publish dataset status", "error", err)
	}

	stats := ds.Index().Stats()
	logging.Info("dataset loaded",
		"dataset", ds.Name,
		"source", ds.Source(),
		"nodes", stats.Nodes,
		"depth", stats.Depth,
		"layout", lc.Name,
	)

	if a.cfg.Watch {
		if err := watchDataset(ctx, a.cfg.Dataset, manager, server); err != nil {
			return err
		}
	}

	if a.cfg.OpenBrowser {
		go func() {
			// Give the listener a moment to come up
			select {
			case <-time.After(500 * time.Millisecond):
				openBrowser(a.cfg.URL())
			case <-ctx.Done():
			}
		}()
	}

	fmt.Printf("Serving mind map on %s\n", a.cfg.URL())
	return server.Start(ctx, a.cfg.Addr())
}

// watchDataset reloads ref into manager whenever the file changes.
// A reload that fails keeps the current dataset and reports the error.
func watchDataset(ctx context.Context, ref string, manager *session.Manager, server *web.Server) error {
	if strings.HasPrefix(ref, dataset.BuiltinPrefix) {
		logging.Warn("built-in datasets cannot be watched", "dataset", ref)
		return nil
	}

	fw, err := watcher.NewFileWatcher(ref)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	debouncer := watcher.NewDebouncer(fw.Events(), reloadQuietPeriod, reloadMaxWait)
	debouncer.Start(ctx)

	go func() {
		for event := range debouncer.Output() {
			if event.Type == watcher.ChangeTypeRemove {
				logging.Warn("dataset file removed, keeping current dataset", "path", event.Path)
				continue
			}

			ds, err := dataset.Load(ref)
			if err != nil {
				logging.Error("dataset reload failed", "path", event.Path, "error", err)
				if perr := server.PublishDatasetStatus(web.StateError, manager.Dataset(), err); perr != nil {
					logging.Warn("failed to publish dataset status", "error", perr)
				}
				continue
			}

			manager.Reload(ctx, ds)
			if err := server.PublishDatasetStatus(web.StateReloaded, ds, nil); err != nil {
				logging.Warn("failed to publish dataset status", "error", err)
			}
		}
	}()
	return nil
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		logging.Warn("failed to open browser", "url", url, "error", err)
	}
}
