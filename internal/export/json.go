package export

import (
	"encoding/json"
	"io"

	"github.com/ppiankov/orcall/internal/result"
)

// JSONExport wraps the result with metadata for JSON output.
type JSONExport struct {
	Metadata ExportMetadata     `json:"metadata"`
	Result   *result.CallResult `json:"result"`
}

// exportJSON exports the result as JSON with metadata.
func exportJSON(r *result.CallResult, metadata ExportMetadata, w io.Writer) error {
	export := JSONExport{
		Metadata: metadata,
		Result:   r,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}
