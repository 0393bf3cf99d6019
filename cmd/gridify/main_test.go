package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gzip "github.com/klauspost/pgzip"
	"github.com/wbrown/img2grid"
	"github.com/wbrown/img2grid/imageutil"
)

var (
	white  = imageutil.RGB{R: 255, G: 255, B: 255}
	black  = imageutil.RGB{R: 0, G: 0, B: 0}
	yellow = imageutil.RGB{R: 255, G: 255, B: 0}
)

// runCmd runs gridify with args and returns the exit code and both streams.
// The commands share the package logger, so these tests do not run in
// parallel.
func runCmd(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, env{
		stdin:  strings.NewReader(stdin),
		stdout: &stdout,
		stderr: &stderr,
	})
	return code, stdout.String(), stderr.String()
}

func writeCellPNG(t *testing.T, path string) {
	t.Helper()
	img := imageutil.CreateCellImage([][]imageutil.RGB{
		{white, black, yellow},
		{yellow, white, black},
	}, 10)
	if err := imageutil.SavePNG(img.RGBA, path); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestRunParse(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "cells.png")
	writeCellPNG(t, in)

	code, stdout, stderr := runCmd(t, "", "parse", "-input", in,
		"-width", "3", "-height", "2", "-format", "raw")
	if code != 0 {
		t.Fatalf("parse exited %d: %s", code, stderr)
	}
	if stdout != "_#$\n$_#\n" {
		t.Errorf("parse printed %q", stdout)
	}

	code, stdout, _ = runCmd(t, "", "parse", "-input", in,
		"-width", "3", "-height", "2")
	if code != 0 {
		t.Fatalf("parse exited %d", code)
	}
	for _, want := range []string{"Raw Output", "JSON Output", "Escaped JSON (DB safe)",
		`"[[\"_\",\"#\",\"$\"],[\"$\",\"_\",\"#\"]]"`} {
		if !strings.Contains(stdout, want) {
			t.Errorf("parse output missing %q:\n%s", want, stdout)
		}
	}
}

func TestRunParsePreviewAndCopy(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "cells.png")
	out := filepath.Join(dir, "preview.png")
	writeCellPNG(t, in)

	code, stdout, stderr := runCmd(t, "", "parse", "-input", in,
		"-width", "3", "-height", "2", "-format", "escaped",
		"-png", out, "-side", "-cell", "10", "-copy", "escaped", "-ansi")
	if code != 0 {
		t.Fatalf("parse exited %d: %s", code, stderr)
	}
	img, err := imageutil.LoadImage(out)
	if err != nil {
		t.Fatalf("Preview not written: %v", err)
	}
	// 30x20 source, 5 pixel gap, 30x20 grid.
	if img.Bounds().Dx() != 65 || img.Bounds().Dy() != 20 {
		t.Errorf("Preview is %v", img.Bounds())
	}
	if !strings.Contains(stdout, img2grid.ESC+"]52;c;") {
		t.Error("Expected OSC 52 clipboard sequence")
	}
	if !strings.Contains(stdout, img2grid.ESC+"[30;103m$") {
		t.Error("Expected ANSI rendering")
	}
}

func TestRunParseErrors(t *testing.T) {
	if code, _, stderr := runCmd(t, "", "parse"); code != 2 || !strings.Contains(stderr, "-input") {
		t.Errorf("parse without input exited %d: %s", code, stderr)
	}

	missing := filepath.Join(t.TempDir(), "missing.png")
	if code, _, _ := runCmd(t, "", "parse", "-input", missing); code != 1 {
		t.Errorf("parse of missing file exited %d", code)
	}

	in := filepath.Join(t.TempDir(), "cells.png")
	writeCellPNG(t, in)
	if code, _, stderr := runCmd(t, "", "parse", "-input", in, "-width", "0"); code != 1 || !strings.Contains(stderr, "width must be positive") {
		t.Errorf("parse with zero width exited %d: %s", code, stderr)
	}
}

func TestRunDecode(t *testing.T) {
	code, stdout, stderr := runCmd(t, `"[[\"_\",\"$\"]]"`, "decode", "-format", "raw")
	if code != 0 {
		t.Fatalf("decode exited %d: %s", code, stderr)
	}
	if stdout != "_$\n" {
		t.Errorf("decode printed %q", stdout)
	}

	for _, bad := range []string{"garbage", `"[\"_\",\"#\"]"`} {
		code, stdout, stderr = runCmd(t, bad, "decode")
		if code != 1 {
			t.Errorf("decode of %q exited %d", bad, code)
		}
		if !strings.Contains(stderr, img2grid.InvalidEscapedMessage) {
			t.Errorf("decode of %q printed %q", bad, stderr)
		}
		if stdout != "" {
			t.Errorf("decode of %q must not print a grid, got %q", bad, stdout)
		}
	}
}

func TestRunEdit(t *testing.T) {
	code, stdout, stderr := runCmd(t, "", "edit", "-blank", "3x1",
		"-tool", "$", "-paint", "1,0", "-cycle", "0,0", "-format", "raw")
	if code != 0 {
		t.Fatalf("edit exited %d: %s", code, stderr)
	}
	if stdout != "#$_\n" {
		t.Errorf("edit printed %q", stdout)
	}

	code, stdout, _ = runCmd(t, "_#\n#_\n", "edit", "-raw", "-",
		"-tool", "yellow", "-paint", "1,1", "-format", "escaped")
	if code != 0 {
		t.Fatalf("edit exited %d", code)
	}
	if strings.TrimSpace(stdout) != `"[[\"_\",\"#\"],[\"#\",\"$\"]]"` {
		t.Errorf("edit printed %q", stdout)
	}

	if code, _, _ := runCmd(t, "", "edit", "-blank", "2x2", "-paint", "5,5"); code != 1 {
		t.Errorf("edit outside the grid exited %d", code)
	}
	if code, _, _ := runCmd(t, "", "edit", "-blank", "2x2", "-raw", "-"); code != 1 {
		t.Errorf("edit with two sources exited %d", code)
	}
	if code, _, stderr := runCmd(t, "nope", "edit", "-escaped", "-"); code != 1 || !strings.Contains(stderr, img2grid.InvalidEscapedMessage) {
		t.Errorf("edit of bad escaped input exited %d: %s", code, stderr)
	}
}

func TestRunPreview(t *testing.T) {
	out := filepath.Join(t.TempDir(), "grid.png")
	code, _, stderr := runCmd(t, `"[[\"_\",\"#\"]]"`, "preview", "-output", out, "-cell", "8")
	if code != 0 {
		t.Fatalf("preview exited %d: %s", code, stderr)
	}
	img, err := imageutil.LoadImage(out)
	if err != nil {
		t.Fatalf("Preview not written: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 8 {
		t.Errorf("Preview is %v", img.Bounds())
	}

	code, stdout, _ := runCmd(t, "$\n", "preview", "-raw", "-")
	if code != 0 || !strings.Contains(stdout, img2grid.ESC+"[30;103m$") {
		t.Errorf("terminal preview exited %d: %q", code, stdout)
	}
}

func TestRunBatch(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeCellPNG(t, filepath.Join(in, "cells-3x2.png"))
	writeCellPNG(t, filepath.Join(in, "ignored.png"))

	code, _, stderr := runCmd(t, "", "batch", "-dir", in, "-outdir", out,
		"-compress", "gzip", "-category", "cat-1", "-cycle", "0:0,0")
	if code != 0 {
		t.Fatalf("batch exited %d: %s", code, stderr)
	}

	f, err := os.Open(filepath.Join(out, "output.json.gz"))
	if err != nil {
		t.Fatalf("Export not written: %v", err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("Export is not gzip: %v", err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("Reading export: %v", err)
	}

	var records []img2grid.ExportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("Export is not JSON: %v\n%s", err, data)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.Name != "cells" || r.Width != 3 || r.Height != 2 || !r.IsEnabled || r.PuzzleCategoryID != "cat-1" {
		t.Errorf("Unexpected record %+v", r)
	}
	g, err := img2grid.FromEscaped(r.Shape)
	if err != nil {
		t.Fatalf("Shape does not decode: %v", err)
	}
	// Cell 0,0 was cycled from _ to #.
	if img2grid.ToRaw(g) != "##$\n$_#\n" {
		t.Errorf("Shape decodes to %q", img2grid.ToRaw(g))
	}
}

func TestRunBatchStdout(t *testing.T) {
	in := t.TempDir()
	path := filepath.Join(in, "square-1x1.png")
	writeCellPNG(t, path)

	code, stdout, stderr := runCmd(t, "", "batch", "-stdout", path)
	if code != 0 {
		t.Fatalf("batch exited %d: %s", code, stderr)
	}
	var records []img2grid.ExportRecord
	if err := json.Unmarshal([]byte(stdout), &records); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, stdout)
	}
	if len(records) != 1 || records[0].PuzzleCategoryID != img2grid.DefaultCategoryID {
		t.Errorf("Unexpected records %+v", records)
	}

	if code, _, _ := runCmd(t, "", "batch"); code != 2 {
		t.Errorf("batch without input exited %d", code)
	}
}

func TestRunConfig(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "cells.png")
	writeCellPNG(t, in)
	cfgPath := filepath.Join(dir, "gridify.json")
	if err := os.WriteFile(cfgPath, []byte(`{"width": 3, "height": 1}`), 0o644); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := runCmd(t, "", "-config", cfgPath, "parse", "-input", in, "-format", "raw")
	if code != 0 {
		t.Fatalf("parse exited %d: %s", code, stderr)
	}
	// One row sampled through the middle of the image at y=10.
	if stdout != "$_#\n" {
		t.Errorf("parse with config printed %q", stdout)
	}

	if code, _, _ := runCmd(t, "", "-config", filepath.Join(dir, "missing.json"), "version"); code != 1 {
		t.Errorf("missing explicit config exited %d", code)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"compression": "lz4"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if code, _, _ := runCmd(t, "", "-config", bad, "version"); code != 1 {
		t.Errorf("invalid compression in config exited %d", code)
	}
}

func TestRunVersionAndUsage(t *testing.T) {
	code, stdout, _ := runCmd(t, "", "version")
	if code != 0 || stdout != "gridify v"+versionString+"\n" {
		t.Errorf("version exited %d: %q", code, stdout)
	}
	if code, _, _ := runCmd(t, "", "version", "-require", "0.1.0"); code != 0 {
		t.Errorf("version -require 0.1.0 exited %d", code)
	}
	if code, _, _ := runCmd(t, "", "version", "-require", "99.0.0"); code != 1 {
		t.Errorf("version -require 99.0.0 exited %d", code)
	}

	if code, _, _ := runCmd(t, ""); code != 2 {
		t.Errorf("no command exited %d", code)
	}
	if code, _, stderr := runCmd(t, "", "frobnicate"); code != 2 || !strings.Contains(stderr, "Unknown command") {
		t.Errorf("unknown command exited %d: %s", code, stderr)
	}
}
