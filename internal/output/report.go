// Package output provides acknowledgements serializers.
package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/StinkyLord/xctools/internal/model"
)

// DefaultFileName is used when the output path names an existing directory.
const DefaultFileName = "acknowledgements.json"

// Stdout is the output path that selects standard output.
const Stdout = "-"

var (
	// ErrSerialization is returned when the report cannot be encoded.
	ErrSerialization = errors.New("failed to serialize acknowledgements to JSON")

	// ErrWrite is returned when the destination cannot be written.
	ErrWrite = errors.New("failed to write acknowledgements to file")
)

// Writer persists reports to a filesystem or to stdout.
type Writer struct {
	Fs     afero.Fs
	Stdout io.Writer
}

// NewWriter returns a Writer backed by fsys and os.Stdout.
func NewWriter(fsys afero.Fs) *Writer {
	return &Writer{Fs: fsys, Stdout: os.Stdout}
}

// ResolveOutputPath returns output/acknowledgements.json when output names an
// existing directory and output unchanged otherwise. Missing parent
// directories are not created.
func (w *Writer) ResolveOutputPath(output string) string {
	if output == Stdout {
		return output
	}
	if info, err := w.Fs.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, DefaultFileName)
	}
	return output
}

// WriteAcknowledgements serialises report as indented JSON to path (or
// stdout if path is "-").
//
// Example output:
//
//	{
//	  "packages": [
//	    {
//	      "name": "widget",
//	      "license": "MIT License ...",
//	      "author": "acme",
//	      "url": "https://github.com/acme/widget"
//	    }
//	  ],
//	  "contributors": [
//	    {
//	      "name": "John Doe",
//	      "contributions": 2
//	    }
//	  ]
//	}
func (w *Writer) WriteAcknowledgements(report *model.Acknowledgements, path string) error {
	if report == nil {
		report = model.NewAcknowledgements(nil, nil)
	}
	return w.writeJSON(path, report)
}

// encodeJSON indents with two spaces and leaves <, > and & unescaped:
// license texts are full of them.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeJSON encodes v and writes it to path (or stdout if "-").
func (w *Writer) writeJSON(path string, v any) error {
	data, err := encodeJSON(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}

	if path == Stdout {
		out := w.Stdout
		if out == nil {
			out = os.Stdout
		}
		if _, err := out.Write(data); err != nil {
			return fmt.Errorf("%w: stdout: %w", ErrWrite, err)
		}
		return nil
	}

	if err := afero.WriteFile(w.Fs, path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	return nil
}
