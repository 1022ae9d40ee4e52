package dataset

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ritzau/mindmap/pkg/model"
)

//go:embed builtin/*.toml
var builtinFS embed.FS

// BuiltinPrefix selects an embedded dataset, e.g. "builtin:sample"
const BuiltinPrefix = "builtin:"

// DefaultRef is loaded when no dataset is configured
const DefaultRef = BuiltinPrefix + "sample"

var (
	// ErrEmptyID is returned when a node in the hierarchy has no ID
	ErrEmptyID = errors.New("node without id")

	// ErrDuplicateID is returned when two nodes in the hierarchy share an ID
	ErrDuplicateID = errors.New("duplicate node id")
)

// Format is the encoding of a dataset file
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Dataset is the static hierarchy a mind-map is expanded from
type Dataset struct {
	Name        string          `json:"name" toml:"name"`
	Description string          `json:"description,omitempty" toml:"description"`
	Origin      model.Position  `json:"origin" toml:"origin"` // Where the root node is placed
	Root        model.ChildSpec `json:"root" toml:"root"`

	source string
	index  *Index
}

// Source returns the reference the dataset was loaded from
func (d *Dataset) Source() string {
	return d.source
}

// Index returns the ID index built during validation
func (d *Dataset) Index() *Index {
	return d.index
}

// RootNode builds the collapsed root display node at the dataset origin
func (d *Dataset) RootNode() model.DisplayNode {
	return model.NewDisplayNode(d.Root, d.Origin)
}

// Validate checks the hierarchy and builds its index
func (d *Dataset) Validate() error {
	if d.Root.ID == "" {
		return fmt.Errorf("root: %w", ErrEmptyID)
	}
	index, err := NewIndex(d.Root)
	if err != nil {
		return err
	}
	d.index = index
	return nil
}

// Load reads a dataset from a reference: "builtin:<name>" or a .toml/.json path
func Load(ref string) (*Dataset, error) {
	if ref == "" {
		ref = DefaultRef
	}

	var (
		data   []byte
		format Format
		err    error
	)
	if name, ok := strings.CutPrefix(ref, BuiltinPrefix); ok {
		data, err = builtinFS.ReadFile(path.Join("builtin", name+".toml"))
		if err != nil {
			return nil, fmt.Errorf("unknown builtin dataset %q (available: %v)", name, BuiltinNames())
		}
		format = FormatTOML
	} else {
		format, err = formatFromPath(ref)
		if err != nil {
			return nil, err
		}
		data, err = os.ReadFile(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset: %w", err)
		}
	}

	d, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", ref, err)
	}
	d.source = ref
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref))
	}
	return d, nil
}

// Parse decodes and validates a dataset
func Parse(data []byte, format Format) (*Dataset, error) {
	var d Dataset
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&d)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("failed to parse TOML: unknown keys %s", strings.Join(keys, ", "))
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", format)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func formatFromPath(p string) (Format, error) {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported dataset file %q (want .toml or .json)", p)
	}
}

// BuiltinNames lists the embedded datasets
func BuiltinNames() []string {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".toml"))
	}
	sort.Strings(names)
	return names
}
