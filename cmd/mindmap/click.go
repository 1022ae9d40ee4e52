package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ritzau/mindmap/pkg/logging"
	"github.com/ritzau/mindmap/pkg/output"
	"github.com/ritzau/mindmap/pkg/render"
	"github.com/ritzau/mindmap/pkg/session"
)

func newClickCommand(a *app) *cobra.Command {
	var (
		format string
		reveal bool
	)

	cmd := &cobra.Command{
		Use:   "click <node-id>...",
		Short: "Replay clicks on a fresh canvas and print the result",
		Long: `click starts from the collapsed root, clicks the given nodes in order
and prints the displayed graph. With --reveal every argument is made visible
by expanding its collapsed ancestors instead.`,
		Example: `  mindmap click root child-1
  mindmap click --reveal grandchild-2-1 --format svg > map.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ds, lc, err := a.load()
			if err != nil {
				return err
			}

			s := session.NewManager(ds, lc, nil).Create(ctx)
			for _, id := range args {
				if reveal {
					if _, err := s.Reveal(ctx, id); err != nil {
						return fmt.Errorf("reveal %s: %w", id, err)
					}
					continue
				}
				if res := s.Click(ctx, id); !res.Changed {
					logging.Warn("click had no effect", "node", id)
				}
			}

			view := s.View()
			w := cmd.OutOrStdout()
			switch format {
			case "text":
				output.PrintGraph(w, view.Graph)
				return nil
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(view.Graph)
			default:
				out, err := render.Export(ctx, view.Graph, format, render.Options{Title: view.Dataset})
				if err != nil {
					return err
				}
				_, err = w.Write(out)
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json, dot or svg")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "reveal the given nodes instead of clicking them")
	return cmd
}
