package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/orcall/internal/result"
)

// Format represents the export format type.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ExportMetadata contains metadata about the export.
type ExportMetadata struct {
	GeneratedAt   time.Time `json:"generatedAt"`
	OrcallVersion string    `json:"orcallVersion"`
	Endpoint      string    `json:"endpoint"`
	Command       string    `json:"command"`
}

// Exporter handles exporting results in various formats.
type Exporter struct {
	Format   Format
	Metadata ExportMetadata
}

// DetectFormat detects the export format from the file extension.
func DetectFormat(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return FormatJSON
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatText
	}
}

// Export exports the result in the specified format.
func (e *Exporter) Export(r *result.CallResult, w io.Writer) error {
	switch e.Format {
	case FormatJSON:
		return exportJSON(r, e.Metadata, w)
	case FormatMarkdown:
		return exportMarkdown(r, e.Metadata, w)
	case FormatText:
		_, err := io.WriteString(w, r.Text+"\n")
		return err
	default:
		return fmt.Errorf("unsupported format: %s", e.Format)
	}
}
