// Package file reads exercise inputs from, and writes reports to, the local
// filesystem.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/stencil-lab/internal/domain"
	"gopkg.in/yaml.v3"
)

// ImageSource reads an image file. It implements pipeline.ImageSource.
type ImageSource struct {
	Path string
}

// LoadImage decodes the image at Path.
func (s ImageSource) LoadImage(_ context.Context) (string, domain.Image, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return "", domain.Image{}, err
	}
	defer f.Close()

	img, err := domain.DecodeImage(f)
	if err != nil {
		return "", domain.Image{}, fmt.Errorf("%s: %w", s.Path, err)
	}
	return filepath.Base(s.Path), img, nil
}

// WindSource reads a whitespace-delimited wind data file. It implements
// pipeline.WindSource.
type WindSource struct {
	Path string
}

// LoadWind parses the wind table at Path.
func (s WindSource) LoadWind(_ context.Context) (string, *domain.WindTable, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	table, err := domain.ParseWindData(f)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return filepath.Base(s.Path), table, nil
}

// Writer stores reports and grid artefacts in a directory. It implements
// pipeline.ReportLoader and pipeline.ArtifactWriter.
type Writer struct {
	dir    string
	format string
	logger *slog.Logger
}

// NewWriter creates the output directory if needed. format is "json" or "yaml".
func NewWriter(dir, format string, logger *slog.Logger) (*Writer, error) {
	if format != "json" && format != "yaml" {
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Writer{dir: dir, format: format, logger: logger}, nil
}

func (w *Writer) Name() string { return "file" }

// LoadReport writes report-<id>.<format> and refreshes report-latest.<format>.
func (w *Writer) LoadReport(_ context.Context, report domain.Report) error {
	data, err := encodeReport(report, w.format)
	if err != nil {
		return err
	}

	path := filepath.Join(w.dir, fmt.Sprintf("report-%s.%s", report.ID, w.format))
	if err := writeFileAtomic(path, data); err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(w.dir, "report-latest."+w.format), data); err != nil {
		return err
	}
	w.logger.Info("report written", "path", path)
	return nil
}

// WriteGrid encodes g as a grayscale PNG named <name>.png.
func (w *Writer) WriteGrid(_ context.Context, name string, g domain.Grid) error {
	var buf bytes.Buffer
	if err := domain.EncodeGrayPNG(&buf, g); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return writeFileAtomic(filepath.Join(w.dir, name+".png"), buf.Bytes())
}

func encodeReport(report domain.Report, format string) ([]byte, error) {
	switch format {
	case "yaml":
		data, err := yaml.Marshal(report)
		if err != nil {
			return nil, fmt.Errorf("encode report yaml: %w", err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode report json: %w", err)
		}
		return data, nil
	}
}

// writeFileAtomic writes to a temp file in the same directory and renames
// it into place so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
