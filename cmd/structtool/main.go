package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/wippyai/bitstruct/cache"
	"github.com/wippyai/bitstruct/catalog"
	"github.com/wippyai/bitstruct/codec"
	"github.com/wippyai/bitstruct/errors"
	"github.com/wippyai/bitstruct/guestmem"
	"github.com/wippyai/bitstruct/schema"
	"github.com/wippyai/bitstruct/snapshot"
	"github.com/wippyai/bitstruct/witgen"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var sourceFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "schema",
		Aliases: []string{"s"},
		Usage:   "file holding the struct declaration (- for stdin)",
	},
	&cli.StringFlag{
		Name:    "text",
		Aliases: []string{"t"},
		Usage:   "struct declaration given inline",
	},
	&cli.StringFlag{
		Name:    "catalog",
		Aliases: []string{"c"},
		Usage:   "YAML catalog of named struct declarations",
	},
	&cli.StringFlag{
		Name:    "name",
		Aliases: []string{"n"},
		Usage:   "schema name within the catalog",
	},
	&cli.BoolFlag{
		Name:  "lenient",
		Usage: "skip unparsable field declarations instead of failing",
	},
	&cli.BoolFlag{
		Name:  "compat",
		Usage: "use the legacy bit-field packing arithmetic",
	},
}

var dataFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "data",
		Aliases: []string{"d"},
		Usage:   "instance bytes in hex",
	},
	&cli.StringFlag{
		Name:    "file",
		Aliases: []string{"f"},
		Usage:   "file holding the instance bytes",
	},
}

var wasmFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "wasm",
		Usage: "read the instance from the memory of this WebAssembly module",
	},
	&cli.UintFlag{
		Name:  "base",
		Usage: "offset of the instance in module memory",
	},
}

func flags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "structtool",
		Usage: "inspect and edit C struct instances with bit-fields",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log parsing and cache activity to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			if !c.Bool("verbose") {
				return nil
			}
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			schema.SetLogger(logger)
			cache.SetLogger(logger)
			catalog.SetLogger(logger)
			guestmem.SetLogger(logger)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "sizeof",
				Usage:  "print the total size of the struct",
				Flags:  flags(sourceFlags, []cli.Flag{&cli.BoolFlag{Name: "extent", Usage: "also print the furthest byte any field touches"}}),
				Action: sizeofCmd,
			},
			{
				Name:   "describe",
				Usage:  "print the derived layout",
				Flags:  flags(sourceFlags, []cli.Flag{&cli.BoolFlag{Name: "fingerprint", Usage: "print the content fingerprint"}}),
				Action: describeCmd,
			},
			{
				Name:      "type",
				Usage:     "print the declared type of a field",
				ArgsUsage: "FIELD",
				Flags:     sourceFlags,
				Action:    typeCmd,
			},
			{
				Name:      "read",
				Usage:     "read fields from an instance",
				ArgsUsage: "[FIELD...]",
				Flags:     flags(sourceFlags, dataFlags, wasmFlags),
				Action:    readCmd,
			},
			{
				Name:      "write",
				Usage:     "write fields into an instance and print the result in hex",
				ArgsUsage: "FIELD=VALUE...",
				Flags:     flags(sourceFlags, dataFlags, []cli.Flag{&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "also write the raw bytes to this file"}}),
				Action:    writeCmd,
			},
			{
				Name:  "snapshot",
				Usage: "capture an instance as CBOR, or apply a capture with --apply",
				Flags: flags(sourceFlags, dataFlags, wasmFlags, []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write the CBOR document to this file instead of hex to stdout"},
					&cli.StringFlag{Name: "apply", Usage: "CBOR document to apply onto the instance"},
				}),
				Action: snapshotCmd,
			},
			{
				Name:   "wit",
				Usage:  "print the struct as a WIT record",
				Flags:  sourceFlags,
				Action: witCmd,
			},
			{
				Name:   "types",
				Usage:  "list the primitive types a declaration may use",
				Action: typesCmd,
			},
			{
				Name:   "explore",
				Usage:  "edit an instance interactively",
				Flags:  flags(sourceFlags, dataFlags),
				Action: exploreCmd,
			},
		},
	}
}

func sizeofCmd(c *cli.Context) error {
	l, err := loadLayout(c)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, l.Size)
	if c.Bool("extent") {
		fmt.Fprintln(c.App.Writer, l.Extent)
	}
	return nil
}

func describeCmd(c *cli.Context) error {
	l, err := loadLayout(c)
	if err != nil {
		return err
	}
	fmt.Fprint(c.App.Writer, render(c.App.Writer, l))
	for _, d := range l.Diagnostics {
		fmt.Fprintf(c.App.Writer, "warning: %s\n", d)
	}
	if c.Bool("fingerprint") {
		text, opts, err := source(c)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "fingerprint: %s\n", cache.Fingerprint(text, opts))
	}
	return nil
}

func typeCmd(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.InvalidInput(errors.PhaseAccess, "type takes exactly one field name")
	}
	l, err := loadLayout(c)
	if err != nil {
		return err
	}
	name := c.Args().First()
	typ := l.FieldType(name)
	if typ == "" {
		return errors.FieldNotFound([]string{l.Name}, name)
	}
	fmt.Fprintln(c.App.Writer, typ)
	return nil
}

func readCmd(c *cli.Context) error {
	l, err := loadLayout(c)
	if err != nil {
		return err
	}

	var buf []byte
	if path := c.String("wasm"); path != "" {
		buf, err = readGuest(c.Context, path, uint32(c.Uint("base")), l)
	} else {
		buf, err = loadBuffer(c, l)
	}
	if err != nil {
		return err
	}

	names := c.Args().Slice()
	if len(names) == 0 {
		for _, f := range l.Fields {
			names = append(names, f.Name)
		}
	}
	for _, name := range names {
		v, err := codec.Read(l, name, buf)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%s = %d (%#x)\n", name, v, v)
	}
	return nil
}

func writeCmd(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.InvalidInput(errors.PhaseAccess, "write needs at least one FIELD=VALUE")
	}
	l, err := loadLayout(c)
	if err != nil {
		return err
	}
	buf, err := loadBuffer(c, l)
	if err != nil {
		return err
	}

	for _, arg := range c.Args().Slice() {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return errors.InvalidInput(errors.PhaseAccess, fmt.Sprintf("expected FIELD=VALUE, got %q", arg))
		}
		f, ok := l.Lookup(name)
		if !ok {
			return errors.FieldNotFound(structPath(l), name)
		}
		v, err := parseValue(raw, f)
		if err != nil {
			return err
		}
		if err := codec.WriteField(l.Name, f, v, buf); err != nil {
			return err
		}
	}

	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, buf, 0o644); err != nil {
			return err
		}
	}
	fmt.Fprintln(c.App.Writer, hex.EncodeToString(buf))
	return nil
}

func snapshotCmd(c *cli.Context) error {
	l, err := loadLayout(c)
	if err != nil {
		return err
	}

	if path := c.String("apply"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		s, err := snapshot.Decode(data)
		if err != nil {
			return err
		}
		buf, err := loadBuffer(c, l)
		if err != nil {
			return err
		}
		if err := snapshot.Apply(l, s, buf); err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, hex.EncodeToString(buf))
		return nil
	}

	var s *snapshot.Snapshot
	if path := c.String("wasm"); path != "" {
		bin, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		inst, err := guestmem.Instantiate(c.Context, bin)
		if err != nil {
			return err
		}
		defer inst.Close(c.Context)
		s, err = snapshot.CaptureView(inst.View(uint32(c.Uint("base")), l))
		if err != nil {
			return err
		}
	} else {
		buf, err := loadBuffer(c, l)
		if err != nil {
			return err
		}
		if s, err = snapshot.Capture(l, buf); err != nil {
			return err
		}
	}

	data, err := snapshot.Encode(s)
	if err != nil {
		return err
	}
	if out := c.String("out"); out != "" {
		return os.WriteFile(out, data, 0o644)
	}
	fmt.Fprintln(c.App.Writer, hex.EncodeToString(data))
	return nil
}

func witCmd(c *cli.Context) error {
	l, err := loadLayout(c)
	if err != nil {
		return err
	}
	out, err := witgen.Render(l)
	if err != nil {
		return err
	}
	fmt.Fprint(c.App.Writer, out)
	return nil
}

func typesCmd(c *cli.Context) error {
	for _, name := range schema.Types() {
		p, _ := schema.LookupType(name)
		fmt.Fprintf(c.App.Writer, "%-9s %d\n", name, p.Size)
	}
	return nil
}

func exploreCmd(c *cli.Context) error {
	l, err := loadLayout(c)
	if err != nil {
		return err
	}
	buf, err := loadBuffer(c, l)
	if err != nil {
		return err
	}
	final, err := runInteractive(l, buf)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, hex.EncodeToString(final))
	return nil
}

// source returns the struct text and options selected by the flags.
func source(c *cli.Context) (string, *schema.Options, error) {
	if path := c.String("catalog"); path != "" {
		cat, err := catalog.Load(path)
		if err != nil {
			return "", nil, err
		}
		name := c.String("name")
		e, ok := cat.Entry(name)
		if !ok {
			return "", nil, errors.InvalidInput(errors.PhaseLoad, fmt.Sprintf("catalog has no schema %q", name))
		}
		opts, err := cat.Options(name)
		if err != nil {
			return "", nil, err
		}
		return e.Text, opts, nil
	}

	opts := &schema.Options{Lenient: c.Bool("lenient")}
	if c.Bool("compat") {
		opts.Mode = schema.ModeCompat
	}

	if text := c.String("text"); text != "" {
		return text, opts, nil
	}
	path := c.String("schema")
	if path == "" {
		return "", nil, errors.InvalidInput(errors.PhaseLoad, "one of --schema, --text or --catalog is required")
	}
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(c.App.Reader)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", nil, errors.Load("failed to read struct declaration", err)
	}
	return string(data), opts, nil
}

func loadLayout(c *cli.Context) (*schema.Layout, error) {
	text, opts, err := source(c)
	if err != nil {
		return nil, err
	}
	return schema.ParseWithOptions(text, opts)
}

// loadBuffer returns the instance bytes given by --data or --file, or a
// zeroed instance when neither is set. Short input is zero-padded to the
// layout's extent.
func loadBuffer(c *cli.Context, l *schema.Layout) ([]byte, error) {
	var buf []byte
	switch {
	case c.String("data") != "":
		clean := strings.NewReplacer(" ", "", ":", "", "\n", "").Replace(c.String("data"))
		b, err := hex.DecodeString(clean)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "invalid hex data")
		}
		buf = b
	case c.String("file") != "":
		b, err := os.ReadFile(c.String("file"))
		if err != nil {
			return nil, errors.Load("failed to read instance file", err)
		}
		buf = b
	}
	if len(buf) < l.Extent {
		buf = append(buf, make([]byte, l.Extent-len(buf))...)
	}
	return buf, nil
}

func readGuest(ctx context.Context, path string, base uint32, l *schema.Layout) ([]byte, error) {
	bin, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("failed to read module", err)
	}
	inst, err := guestmem.Instantiate(ctx, bin)
	if err != nil {
		return nil, err
	}
	defer inst.Close(ctx)
	return inst.View(base, l).Snapshot()
}

// parseValue accepts unsigned or negative integers in any Go base prefix.
// A plain float or double field also takes a float literal, stored as its
// IEEE 754 bits.
func parseValue(s string, f schema.Field) (uint64, error) {
	s = strings.TrimSpace(s)
	if size, ok := floatField(f); ok {
		if v, err := strconv.ParseFloat(s, size*8); err == nil {
			if size == 4 {
				return uint64(math.Float32bits(float32(v))), nil
			}
			return math.Float64bits(v), nil
		}
	}
	if v, err := strconv.ParseUint(s, 0, 64); err == nil {
		return v, nil
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, errors.New(errors.PhaseAccess, errors.KindInvalidInput).
			Path(f.Name).
			Value(s).
			Detail("invalid value %q", s).
			Build()
	}
	return uint64(v), nil
}

// formatValue renders bits so that parseValue reads them back for f.
func formatValue(f schema.Field, bits uint64) string {
	switch size, ok := floatField(f); {
	case ok && size == 4:
		return strconv.FormatFloat(float64(math.Float32frombits(uint32(bits))), 'g', -1, 32)
	case ok:
		return strconv.FormatFloat(math.Float64frombits(bits), 'g', -1, 64)
	}
	return strconv.FormatUint(bits, 10)
}

func structPath(l *schema.Layout) []string {
	if l.Name == "" {
		return nil
	}
	return []string{l.Name}
}

// floatField reports the storage size of a plain floating-point field.
func floatField(f schema.Field) (int, bool) {
	t, ok := schema.LookupType(f.Type)
	if !ok || !t.Float || f.Bitfield {
		return 0, false
	}
	return t.Size, true
}
