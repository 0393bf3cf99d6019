package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	colorable "github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"github.com/wbrown/img2grid"
	"github.com/wbrown/img2grid/imageutil"
)

// pointList collects repeated "x,y" flags.
type pointList [][2]int

func (p *pointList) String() string {
	parts := make([]string, len(*p))
	for i, pt := range *p {
		parts[i] = fmt.Sprintf("%d,%d", pt[0], pt[1])
	}
	return strings.Join(parts, " ")
}

func (p *pointList) Set(s string) error {
	var x, y int
	if _, err := fmt.Sscanf(s, "%d,%d", &x, &y); err != nil {
		return fmt.Errorf("expected x,y, got %q", s)
	}
	*p = append(*p, [2]int{x, y})
	return nil
}

// itemPointList collects repeated "item:x,y" flags.
type itemPointList [][3]int

func (p *itemPointList) String() string {
	parts := make([]string, len(*p))
	for i, pt := range *p {
		parts[i] = fmt.Sprintf("%d:%d,%d", pt[0], pt[1], pt[2])
	}
	return strings.Join(parts, " ")
}

func (p *itemPointList) Set(s string) error {
	var i, x, y int
	if _, err := fmt.Sscanf(s, "%d:%d,%d", &i, &x, &y); err != nil {
		return fmt.Errorf("expected item:x,y, got %q", s)
	}
	*p = append(*p, [3]int{i, x, y})
	return nil
}

func parseSize(s string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(s, "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("expected WxH, got %q", s)
	}
	return w, h, nil
}

// readInput reads path, or stdin when path is "-".
func readInput(e env, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(e.stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

// terminal wraps w for ANSI output, using go-colorable on the real stdout.
func terminal(w io.Writer) io.Writer {
	if f, ok := w.(*os.File); ok && f == os.Stdout {
		return colorable.NewColorableStdout()
	}
	return w
}

// printViews writes the requested views of v.
func printViews(w io.Writer, v img2grid.Views, format string) error {
	switch format {
	case "raw":
		fmt.Fprint(w, v.Raw)
	case "pretty":
		fmt.Fprintln(w, v.Pretty)
	case "escaped":
		fmt.Fprintln(w, v.Escaped)
	case "all":
		raw := v.Raw
		if !strings.HasSuffix(raw, "\n") {
			raw += "\n"
		}
		fmt.Fprintf(w, "Raw Output\n%s\nJSON Output\n%s\n\nEscaped JSON (DB safe)\n%s\n",
			raw, v.Pretty, v.Escaped)
	default:
		return fmt.Errorf("unknown format %q, options are raw, pretty, escaped or all", format)
	}
	return nil
}

// copyView sends one view to the terminal clipboard.
func copyView(e env, v img2grid.Views, which string) error {
	var text string
	switch which {
	case "":
		return nil
	case "raw":
		text = v.Raw
	case "pretty":
		text = v.Pretty
	case "escaped":
		text = v.Escaped
	default:
		return fmt.Errorf("unknown view %q, options are raw, pretty or escaped", which)
	}
	var sink img2grid.ClipboardSink = img2grid.OSC52Clipboard{W: e.stdout}
	if err := sink.Copy(text); err != nil {
		return fmt.Errorf("failed to copy: %w", err)
	}
	log.Debugf("Copied %s view (%d bytes)", which, len(text))
	return nil
}

func runParse(cfg *config, e env, args []string) error {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	input := fs.String("input", "", "Path to the input image file (required)")
	width := fs.Int("width", cfg.Width, "Grid width in cells")
	height := fs.Int("height", cfg.Height, "Grid height in cells")
	format := fs.String("format", "all", "Views to print: raw, pretty, escaped or all")
	ansi := fs.Bool("ansi", false, "Also print the grid in terminal colors")
	pngOut := fs.String("png", "", "Write a PNG preview of the grid to this path")
	side := fs.Bool("side", false, "Put the source image next to the PNG preview")
	cell := fs.Int("cell", cfg.CellSize, "PNG preview cell size in pixels")
	copyWhich := fs.String("copy", "", "Copy a view to the clipboard: raw, pretty or escaped")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		fmt.Fprintln(e.stderr, "Please provide the image using the -input flag")
		fs.PrintDefaults()
		return &exitError{code: 2}
	}

	f, err := os.Open(*input)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	img, err := imageutil.Decoder{MaxPixels: cfg.MaxPixels}.Decode(context.Background(), f)
	f.Close()
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"image": fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()),
		"grid":  fmt.Sprintf("%dx%d", *width, *height),
	}).Debug("Quantizing")

	s, err := img2grid.Session{Tool: img2grid.Light}.Quantize(img, *width, *height)
	if err != nil {
		return err
	}

	if err := printViews(e.stdout, s.Views, *format); err != nil {
		return err
	}
	if *ansi {
		fmt.Fprint(terminal(e.stdout), img2grid.RenderANSI(s.Grid))
	}
	if *pngOut != "" {
		pr, err := img2grid.NewPreviewRenderer(*cell)
		if err != nil {
			return err
		}
		out := pr.Render(s.Grid)
		if *side {
			out = pr.SideBySide(img, s.Grid)
		}
		if err := imageutil.SavePNG(out, *pngOut); err != nil {
			return err
		}
		log.Infof("PNG preview written to %s", *pngOut)
	}
	return copyView(e, s.Views, *copyWhich)
}

func runBatch(cfg *config, e env, args []string) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	dir := fs.String("dir", "", "Convert every matching file in this directory")
	output := fs.String("output", cfg.OutputName, "Export file name")
	outDir := fs.String("outdir", cfg.OutputDir, "Directory the export file is written to")
	compress := fs.String("compress", cfg.Compression, "Export compression: none, gzip or zstd")
	category := fs.String("category", cfg.CategoryID, "Puzzle category id stamped on every record")
	workers := fs.Int("workers", cfg.Workers, "Number of images decoded at once")
	toStdout := fs.Bool("stdout", false, "Print the export instead of writing a file")
	copyAll := fs.Bool("copy", false, "Copy the export to the clipboard")
	var cycles itemPointList
	fs.Var(&cycles, "cycle", "Advance cell x,y of item i before export, as i:x,y (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sources := img2grid.FileSources(fs.Args()...)
	if *dir != "" {
		dirSources, err := img2grid.DirSources(*dir)
		if err != nil {
			return err
		}
		sources = append(sources, dirSources...)
	}
	if len(sources) == 0 {
		fmt.Fprintln(e.stderr, "Please provide files or a -dir to convert")
		fs.PrintDefaults()
		return &exitError{code: 2}
	}
	compression, err := img2grid.ParseCompression(*compress)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bc := img2grid.NewBatchConverter(
		imageutil.Decoder{MaxPixels: cfg.MaxPixels},
		img2grid.WithWorkers(*workers),
		img2grid.WithCategoryID(*category),
		img2grid.WithLogger(log),
	)
	batch, err := bc.Convert(ctx, sources)
	if err != nil {
		return err
	}
	for _, c := range cycles {
		if batch, err = batch.Cycle(c[0], c[1], c[2]); err != nil {
			return fmt.Errorf("cycle %d:%d,%d: %w", c[0], c[1], c[2], err)
		}
	}

	data, err := img2grid.MarshalRecords(batch.Records())
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	if *copyAll {
		if err := (img2grid.OSC52Clipboard{W: e.stdout}).Copy(string(data)); err != nil {
			return fmt.Errorf("failed to copy: %w", err)
		}
	}
	if *toStdout {
		fmt.Fprintln(e.stdout, string(data))
		return nil
	}

	var sink img2grid.DownloadSink = &img2grid.DirSink{Dir: *outDir, Compression: compression}
	if err := sink.Save(*output, data); err != nil {
		return err
	}
	log.WithField("records", len(batch.Items)).
		Infof("Export written to %s", sink.(*img2grid.DirSink).Saved)
	return nil
}

func runDecode(cfg *config, e env, args []string) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	input := fs.String("input", "-", "File holding escaped JSON, - for stdin")
	format := fs.String("format", "all", "Views to print: raw, pretty, escaped or all")
	if err := fs.Parse(args); err != nil {
		return err
	}

	text, err := readInput(e, *input)
	if err != nil {
		return err
	}
	s, err := img2grid.Session{Tool: img2grid.Light}.PasteEscaped(text)
	if err != nil {
		fmt.Fprintln(e.stderr, s.Err)
		log.Debug(err)
		return &exitError{code: 1}
	}
	return printViews(e.stdout, s.Views, *format)
}

// loadGrid builds the starting session for edit and preview from exactly
// one of an escaped file, a raw file or a blank size.
func loadGrid(e env, escaped, raw, blank string) (img2grid.Session, error) {
	set := 0
	for _, s := range []string{escaped, raw, blank} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return img2grid.Session{}, fmt.Errorf("use exactly one of -escaped, -raw or -blank")
	}

	switch {
	case escaped != "":
		text, err := readInput(e, escaped)
		if err != nil {
			return img2grid.Session{}, err
		}
		s, err := img2grid.Session{Tool: img2grid.Light}.PasteEscaped(text)
		if err != nil {
			fmt.Fprintln(e.stderr, s.Err)
			log.Debug(err)
			return s, &exitError{code: 1}
		}
		return s, nil
	case raw != "":
		text, err := readInput(e, raw)
		if err != nil {
			return img2grid.Session{}, err
		}
		return img2grid.Session{Tool: img2grid.Light}.EditRaw(text), nil
	}
	w, h, err := parseSize(blank)
	if err != nil {
		return img2grid.Session{}, err
	}
	return img2grid.NewSession(w, h)
}

func runEdit(cfg *config, e env, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	escaped := fs.String("escaped", "", "Start from escaped JSON in this file (- for stdin)")
	raw := fs.String("raw", "", "Start from raw rows in this file (- for stdin)")
	blank := fs.String("blank", "", "Start from a blank WxH grid")
	tool := fs.String("tool", "_", "Symbol applied by -paint: _, # or $")
	format := fs.String("format", "all", "Views to print: raw, pretty, escaped or all")
	ansi := fs.Bool("ansi", false, "Also print the grid in terminal colors")
	var paints, cycles pointList
	fs.Var(&paints, "paint", "Set cell x,y to the tool symbol (repeatable)")
	fs.Var(&cycles, "cycle", "Advance cell x,y to the next symbol (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *escaped == "" && *raw == "" && *blank == "" {
		*blank = fmt.Sprintf("%dx%d", cfg.Width, cfg.Height)
	}

	s, err := loadGrid(e, *escaped, *raw, *blank)
	if err != nil {
		return err
	}
	sym, err := img2grid.ParseSymbol(*tool)
	if err != nil {
		return err
	}

	store := img2grid.NewStore(s.WithTool(sym))
	for _, p := range paints {
		x, y := p[0], p[1]
		if _, err := store.Update(func(s img2grid.Session) (img2grid.Session, error) {
			return s.Paint(x, y)
		}); err != nil {
			return err
		}
	}
	for _, p := range cycles {
		x, y := p[0], p[1]
		if _, err := store.Update(func(s img2grid.Session) (img2grid.Session, error) {
			return s.Cycle(x, y)
		}); err != nil {
			return err
		}
	}

	final := store.Current()
	if err := printViews(e.stdout, final.Views, *format); err != nil {
		return err
	}
	if *ansi {
		fmt.Fprint(terminal(e.stdout), img2grid.RenderANSI(final.Grid))
	}
	return nil
}

func runPreview(cfg *config, e env, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	escaped := fs.String("escaped", "", "Read escaped JSON from this file (- for stdin)")
	raw := fs.String("raw", "", "Read raw rows from this file (- for stdin)")
	output := fs.String("output", "", "Write the PNG preview here; without it the grid is printed in color")
	cell := fs.Int("cell", cfg.CellSize, "Cell size in pixels")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *escaped == "" && *raw == "" {
		*escaped = "-"
	}

	s, err := loadGrid(e, *escaped, *raw, "")
	if err != nil {
		return err
	}
	if *output == "" {
		fmt.Fprint(terminal(e.stdout), img2grid.RenderANSI(s.Grid))
		return nil
	}

	pr, err := img2grid.NewPreviewRenderer(*cell)
	if err != nil {
		return err
	}
	if err := pr.SavePNG(s.Grid, *output); err != nil {
		return err
	}
	log.Infof("PNG preview written to %s", *output)
	return nil
}
