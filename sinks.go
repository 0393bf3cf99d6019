package img2grid

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
)

// ImageDecoder turns encoded image bytes into pixels.
type ImageDecoder interface {
	Decode(ctx context.Context, r io.Reader) (image.Image, error)
}

// ClipboardSink receives text the user asked to copy.
type ClipboardSink interface {
	Copy(text string) error
}

// DownloadSink persists a named file for the user.
type DownloadSink interface {
	Save(name string, data []byte) error
}

// WriterClipboard copies by writing the text verbatim to W.
type WriterClipboard struct {
	W io.Writer
}

// Copy writes text to the underlying writer.
func (c WriterClipboard) Copy(text string) error {
	_, err := io.WriteString(c.W, text)
	return err
}

// OSC52Clipboard copies through the terminal using the OSC 52 escape
// sequence, which most terminal emulators forward to the system clipboard.
type OSC52Clipboard struct {
	W io.Writer
}

// Copy emits the escape sequence carrying text.
func (c OSC52Clipboard) Copy(text string) error {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	_, err := fmt.Fprintf(c.W, "%s]52;c;%s\a", ESC, encoded)
	return err
}

// Compression selects how DirSink encodes saved files.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// ParseCompression accepts none, gzip or zstd (case insensitive). The
// empty string means none.
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(strings.ToLower(s)); c {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionGzip, CompressionZstd:
		return c, nil
	}
	return "", fmt.Errorf("unknown compression %q, options are none, gzip or zstd", s)
}

// Extension returns the suffix appended to compressed file names.
func (c Compression) Extension() string {
	switch c {
	case CompressionGzip:
		return ".gz"
	case CompressionZstd:
		return ".zst"
	}
	return ""
}

// DirSink saves downloads into Dir.
type DirSink struct {
	Dir         string
	Compression Compression

	// Saved is the path of the most recently written file.
	Saved string
}

// Save writes data to Dir/name, plus the compression extension.
func (d *DirSink) Save(name string, data []byte) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(d.Dir, filepath.Base(name)+d.Compression.Extension())
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := writeCompressed(f, name, data, d.Compression); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	d.Saved = path
	return nil
}

func writeCompressed(w io.Writer, name string, data []byte, c Compression) error {
	switch c {
	case CompressionGzip:
		zw, err := gzip.NewWriterLevel(w, gzip.DefaultCompression)
		if err != nil {
			return err
		}
		zw.Name = filepath.Base(name)
		if _, err := zw.Write(data); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	case CompressionZstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return err
		}
		if _, err := zw.Write(data); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	}
	_, err := w.Write(data)
	return err
}
