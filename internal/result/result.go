package result

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/ppiankov/orcall/openrouter"
)

// ---------- Shared JSON helpers ----------

func PrettyJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ---------- Call summary ----------

// Usage mirrors the reply's token accounting.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Choice is one row of the choices table.
type Choice struct {
	Index        int    `json:"index"`
	FinishReason string `json:"finish_reason,omitempty"`
	Content      string `json:"content"`
}

// CallResult is what the CLI prints or exports for a single call.
type CallResult struct {
	ID       string         `json:"id,omitempty"`
	Model    string         `json:"model"`
	Provider string         `json:"provider,omitempty"`
	Text     string         `json:"text"`
	Usage    *Usage         `json:"usage,omitempty"`
	Choices  []Choice       `json:"choices,omitempty"`
	Envelope map[string]any `json:"envelope,omitempty"`
}

// FromResponse summarizes resp. requestedModel is used when the reply does
// not name the model that served it.
func FromResponse(requestedModel, text string, resp *openrouter.Response) CallResult {
	env := resp.Envelope()
	r := CallResult{
		ID:       stringField(env, "id"),
		Model:    stringField(env, "model"),
		Provider: stringField(env, "provider"),
		Text:     text,
		Envelope: env,
	}
	if r.Model == "" {
		r.Model = requestedModel
	}

	if u, ok := env["usage"].(map[string]any); ok {
		r.Usage = &Usage{
			PromptTokens:     intField(u, "prompt_tokens"),
			CompletionTokens: intField(u, "completion_tokens"),
			TotalTokens:      intField(u, "total_tokens"),
		}
	}

	for i, c := range resp.Choices() {
		row := Choice{Index: i}
		if m, ok := c.(map[string]any); ok {
			row.FinishReason = stringField(m, "finish_reason")
		}
		if content, ok := openrouter.ChoiceContent(c); ok {
			if s, isString := content.(string); isString {
				row.Content = s
			} else if b, err := json.Marshal(content); err == nil {
				row.Content = string(b)
			}
		}
		r.Choices = append(r.Choices, row)
	}
	return r
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func intField(m map[string]any, key string) int {
	f, _ := m[key].(float64)
	return int(f)
}

// ---------- Human renderers ----------

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")) // Dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255"))
)

// RenderHuman prints the completion text followed by a short footer.
func RenderHuman(w io.Writer, r *CallResult) {
	fmt.Fprintln(w, r.Text)
	fmt.Fprintln(w, "────────────────────────────────────────")
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Model:   "), r.Model)
	if r.Provider != "" {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Provider:"), r.Provider)
	}
	if r.ID != "" {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("ID:      "), r.ID)
	}
	if r.Usage != nil {
		fmt.Fprintf(w, "%s %d prompt + %d completion = %d\n",
			labelStyle.Render("Tokens:  "), r.Usage.PromptTokens, r.Usage.CompletionTokens, r.Usage.TotalTokens)
	}
}

// RenderChoicesTable prints every choice in the reply.
func RenderChoicesTable(w io.Writer, r *CallResult) {
	if len(r.Choices) == 0 {
		fmt.Fprintln(w, "No choices in reply.")
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Choices (%d)", len(r.Choices))))
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Finish", "Content"})
	for _, c := range r.Choices {
		table.Append([]string{
			fmt.Sprintf("%d", c.Index),
			c.FinishReason,
			preview(c.Content, 80),
		})
	}
	table.Render()
}

// preview flattens s onto one line and truncates it to max runes.
func preview(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// RenderDiff prints a unified diff from the expected answer to the reply
// text, or a single line saying they match.
func RenderDiff(w io.Writer, expectedName, expected, got string) error {
	if strings.TrimSpace(expected) == strings.TrimSpace(got) {
		fmt.Fprintf(w, "%s reply matches %s\n", headerStyle.Render("Diff:"), expectedName)
		return nil
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(ensureNewline(expected)),
		B:        difflib.SplitLines(ensureNewline(got)),
		FromFile: expectedName,
		ToFile:   "reply",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, headerStyle.Render("Diff:"))
	fmt.Fprint(w, text)
	return nil
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
