package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/orcall/internal/result"
)

func exportMarkdown(r *result.CallResult, metadata ExportMetadata, w io.Writer) error {
	var b strings.Builder

	b.WriteString("# orcall Report\n\n")
	fmt.Fprintf(&b, "- Generated: %s\n", metadata.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Version: %s\n", metadata.OrcallVersion)
	if metadata.Command != "" {
		fmt.Fprintf(&b, "- Command: `%s`\n", metadata.Command)
	}
	fmt.Fprintf(&b, "- Model: `%s`\n", r.Model)
	if r.ID != "" {
		fmt.Fprintf(&b, "- Generation: `%s`\n", r.ID)
	}
	if r.Usage != nil {
		fmt.Fprintf(&b, "- Tokens: %d prompt, %d completion, %d total\n",
			r.Usage.PromptTokens, r.Usage.CompletionTokens, r.Usage.TotalTokens)
	}

	b.WriteString("\n## Response\n\n")
	b.WriteString(r.Text)
	b.WriteString("\n")

	if len(r.Choices) > 1 {
		b.WriteString("\n## Choices\n\n")
		b.WriteString("| # | Finish | Content |\n|---|---|---|\n")
		for _, c := range r.Choices {
			content := strings.ReplaceAll(strings.Join(strings.Fields(c.Content), " "), "|", `\|`)
			fmt.Fprintf(&b, "| %d | %s | %s |\n", c.Index, c.FinishReason, content)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
