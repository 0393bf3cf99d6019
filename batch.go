package img2grid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
)

// DefaultCategoryID is the puzzle category stamped on exported records.
const DefaultCategoryID = "b532d39f-fb40-4ea4-8d5f-6040dbeee7fd"

// DefaultExportName is the file name used for downloaded exports.
const DefaultExportName = "output.json"

var filenamePattern = regexp.MustCompile(`^(.+)-(\d+)x(\d+)\.png$`)

// FileSpec is the metadata encoded in a batch file name.
type FileSpec struct {
	Name   string
	Width  int
	Height int
}

// ParseFilename matches the base of name against <name>-<W>x<H>.png.
// Zero or overflowing dimensions do not match.
func ParseFilename(name string) (FileSpec, bool) {
	m := filenamePattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return FileSpec{}, false
	}
	width, err := strconv.Atoi(m[2])
	if err != nil || width <= 0 {
		return FileSpec{}, false
	}
	height, err := strconv.Atoi(m[3])
	if err != nil || height <= 0 {
		return FileSpec{}, false
	}
	return FileSpec{Name: m[1], Width: width, Height: height}, true
}

// Source is a named blob handed to a batch.
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileSources wraps paths on disk.
func FileSources(paths ...string) []Source {
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		path := p
		sources = append(sources, Source{
			Name: filepath.Base(path),
			Open: func() (io.ReadCloser, error) { return os.Open(path) },
		})
	}
	return sources
}

// DirSources lists the regular files of dir in name order.
func DirSources(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return FileSources(paths...), nil
}

// Item is one converted batch file.
type Item struct {
	Name   string
	Width  int
	Height int
	Grid   Grid
}

// Failure records a matched file that could not be converted.
type Failure struct {
	File string
	Err  error
}

// Batch is the result of converting a set of sources. Like Grid it is a
// value: edits return a new Batch.
type Batch struct {
	CategoryID string
	Items      []Item
	Failed     []Failure
	// Skipped lists names that did not match the file name pattern.
	Skipped []string
}

// ExportRecord is the persisted shape of one batch item.
type ExportRecord struct {
	PuzzleCategoryID string `json:"puzzleCategoryId"`
	Name             string `json:"name"`
	IsEnabled        bool   `json:"isEnabled"`
	Shape            string `json:"shape"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
}

// Records builds one export record per item, in item order.
func (b *Batch) Records() []ExportRecord {
	records := make([]ExportRecord, 0, len(b.Items))
	for _, it := range b.Items {
		records = append(records, ExportRecord{
			PuzzleCategoryID: b.CategoryID,
			Name:             it.Name,
			IsEnabled:        true,
			Shape:            ToEscaped(it.Grid),
			Width:            it.Width,
			Height:           it.Height,
		})
	}
	return records
}

// MarshalRecords renders records as a two space indented JSON array.
func MarshalRecords(records []ExportRecord) ([]byte, error) {
	if records == nil {
		records = []ExportRecord{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Update returns a copy of b with item i's grid replaced.
func (b *Batch) Update(i int, g Grid) (*Batch, error) {
	if i < 0 || i >= len(b.Items) {
		return nil, fmt.Errorf("item %d out of range, batch has %d items",
			i, len(b.Items))
	}
	next := *b
	next.Items = append([]Item(nil), b.Items...)
	next.Items[i].Grid = g
	return &next, nil
}

// Cycle advances cell (x, y) of item i to its next symbol.
func (b *Batch) Cycle(i, x, y int) (*Batch, error) {
	if i < 0 || i >= len(b.Items) {
		return nil, fmt.Errorf("item %d out of range, batch has %d items",
			i, len(b.Items))
	}
	g, err := b.Items[i].Grid.Cycle(x, y)
	if err != nil {
		return nil, err
	}
	return b.Update(i, g)
}

// BatchConverter quantizes many images concurrently.
type BatchConverter struct {
	Decoder    ImageDecoder
	Workers    int
	CategoryID string
	Log        logrus.FieldLogger
}

// BatchOption is a functional option for configuring a BatchConverter.
type BatchOption func(*BatchConverter)

// NewBatchConverter creates a BatchConverter that decodes with decoder.
// Default values: Workers=4, CategoryID=DefaultCategoryID, no logging.
func NewBatchConverter(decoder ImageDecoder, opts ...BatchOption) *BatchConverter {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	bc := &BatchConverter{
		Decoder:    decoder,
		Workers:    4,
		CategoryID: DefaultCategoryID,
		Log:        discard,
	}
	for _, opt := range opts {
		opt(bc)
	}
	return bc
}

// WithWorkers bounds the number of images decoded at once.
func WithWorkers(n int) BatchOption {
	return func(bc *BatchConverter) {
		bc.Workers = n
	}
}

// WithCategoryID sets the category stamped on exported records.
func WithCategoryID(id string) BatchOption {
	return func(bc *BatchConverter) {
		bc.CategoryID = id
	}
}

// WithLogger sets the logger for skipped and failed files.
func WithLogger(log logrus.FieldLogger) BatchOption {
	return func(bc *BatchConverter) {
		bc.Log = log
	}
}

// Convert quantizes every source whose name matches the batch pattern.
// Unmatched names are skipped. Items keep the order of sources regardless
// of which decode finishes first, and Convert returns only after every
// started conversion has settled. A file that fails to decode is reported
// in Batch.Failed; the only fatal error is cancellation of ctx.
func (bc *BatchConverter) Convert(ctx context.Context, sources []Source) (*Batch, error) {
	type job struct {
		index int
		src   Source
		spec  FileSpec
	}

	batch := &Batch{CategoryID: bc.CategoryID}
	var jobs []job
	for _, src := range sources {
		spec, ok := ParseFilename(src.Name)
		if !ok {
			bc.Log.WithField("file", src.Name).Debug("Skipping file without <name>-<W>x<H>.png name")
			batch.Skipped = append(batch.Skipped, src.Name)
			continue
		}
		jobs = append(jobs, job{index: len(jobs), src: src, spec: spec})
	}

	workers := bc.Workers
	if workers < 1 {
		workers = 1
	}
	results := make([]*Item, len(jobs))
	errs := make([]error, len(jobs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				errs[j.index] = ctx.Err()
				return
			}
			defer func() { <-sem }()

			g, err := bc.convertOne(ctx, j.src, j.spec)
			if err != nil {
				errs[j.index] = err
				return
			}
			results[j.index] = &Item{
				Name:   j.spec.Name,
				Width:  j.spec.Width,
				Height: j.spec.Height,
				Grid:   g,
			}
		}(j)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, j := range jobs {
		if errs[i] != nil {
			bc.Log.WithError(errs[i]).WithField("file", j.src.Name).Warn("Can't convert file")
			batch.Failed = append(batch.Failed, Failure{File: j.src.Name, Err: errs[i]})
			continue
		}
		batch.Items = append(batch.Items, *results[i])
	}
	bc.Log.WithFields(logrus.Fields{
		"items":   len(batch.Items),
		"failed":  len(batch.Failed),
		"skipped": len(batch.Skipped),
	}).Info("Batch converted")
	return batch, nil
}

func (bc *BatchConverter) convertOne(ctx context.Context, src Source, spec FileSpec) (Grid, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer rc.Close()

	img, err := bc.Decoder.Decode(ctx, rc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return Quantize(img, spec.Width, spec.Height)
}
