// Package catalog loads named struct declarations from a YAML file and
// serves their layouts through a shared cache.
//
// A catalog file looks like:
//
//	defaults:
//	  lenient: false
//	  compat: false
//	schemas:
//	  - name: ipv4
//	    text: |
//	      struct ipv4 {
//	          uint8_t  ihl:4;
//	          uint8_t  version:4;
//	          uint8_t  tos;
//	          uint16_t length;
//	      };
//	  - name: legacy
//	    compat: true
//	    text: "struct legacy { uint8_t a:7; uint16_t b:10; };"
package catalog

import (
	"fmt"
	"os"
	"sort"

	mapset "github.com/deckarep/golang-set"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/bitstruct/cache"
	"github.com/wippyai/bitstruct/errors"
	"github.com/wippyai/bitstruct/schema"
)

// Defaults apply to every entry that does not override them.
type Defaults struct {
	Lenient bool `yaml:"lenient"`
	Compat  bool `yaml:"compat"`
}

// Entry is one named struct declaration.
type Entry struct {
	Name    string `yaml:"name"`
	Text    string `yaml:"text"`
	Lenient *bool  `yaml:"lenient,omitempty"`
	Compat  *bool  `yaml:"compat,omitempty"`
}

// File is the on-disk catalog document.
type File struct {
	Defaults Defaults `yaml:"defaults"`
	Schemas  []Entry  `yaml:"schemas"`
}

// Catalog is a validated set of entries. It is safe for concurrent use
// once built.
type Catalog struct {
	defaults Defaults
	entries  map[string]Entry
	order    []string
	layouts  *cache.Cache
}

// Parse builds a catalog from YAML bytes. Layouts are not derived until
// requested; call Compile to check every entry up front.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Load("failed to parse catalog YAML", err)
	}
	return New(f)
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load(fmt.Sprintf("failed to read catalog %s", path), err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	Logger().Info("loaded catalog", zap.String("path", path), zap.Int("schemas", len(c.order)))
	return c, nil
}

// New validates f and builds a catalog from it.
func New(f File) (*Catalog, error) {
	c := &Catalog{
		defaults: f.Defaults,
		entries:  make(map[string]Entry, len(f.Schemas)),
		layouts:  cache.New(),
	}

	seen := mapset.NewThreadUnsafeSet()
	for i, e := range f.Schemas {
		if e.Name == "" {
			return nil, errors.InvalidInput(errors.PhaseLoad, fmt.Sprintf("schema %d has no name", i))
		}
		if e.Text == "" {
			return nil, errors.InvalidInput(errors.PhaseLoad, fmt.Sprintf("schema %q has no text", e.Name))
		}
		if !seen.Add(e.Name) {
			return nil, errors.Duplicate(errors.PhaseLoad, "schema", e.Name)
		}
		c.entries[e.Name] = e
		c.order = append(c.order, e.Name)
	}
	return c, nil
}

// Names returns entry names in file order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Sorted returns entry names in lexical order.
func (c *Catalog) Sorted() []string {
	out := c.Names()
	sort.Strings(out)
	return out
}

// Entry returns the entry called name.
func (c *Catalog) Entry(name string) (Entry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

// Options returns the parse options in effect for name.
func (c *Catalog) Options(name string) (*schema.Options, error) {
	e, ok := c.entries[name]
	if !ok {
		return nil, unknown(name)
	}
	return c.options(e), nil
}

// Layout returns the layout of name, deriving it on first use.
func (c *Catalog) Layout(name string) (*schema.Layout, error) {
	e, ok := c.entries[name]
	if !ok {
		return nil, unknown(name)
	}
	l, err := c.layouts.Layout(e.Text, c.options(e))
	if err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Path(name).
			Detail("schema %q does not compile", name).
			Cause(err).
			Build()
	}
	return l, nil
}

// Compile derives every layout and returns the first failure.
func (c *Catalog) Compile() error {
	for _, name := range c.order {
		if _, err := c.Layout(name); err != nil {
			return err
		}
	}
	Logger().Debug("compiled catalog", zap.Int("schemas", len(c.order)))
	return nil
}

// Stats reports the catalog's layout cache activity.
func (c *Catalog) Stats() cache.Stats {
	return c.layouts.Stats()
}

func (c *Catalog) options(e Entry) *schema.Options {
	opts := &schema.Options{Lenient: c.defaults.Lenient}
	compat := c.defaults.Compat
	if e.Lenient != nil {
		opts.Lenient = *e.Lenient
	}
	if e.Compat != nil {
		compat = *e.Compat
	}
	if compat {
		opts.Mode = schema.ModeCompat
	}
	return opts
}

func unknown(name string) error {
	return errors.New(errors.PhaseLoad, errors.KindInvalidInput).
		Value(name).
		Detail("unknown schema %q", name).
		Build()
}
