package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/ppiankov/orcall/internal/export"
	"github.com/ppiankov/orcall/internal/progress"
	"github.com/ppiankov/orcall/internal/result"
	"github.com/ppiankov/orcall/internal/util"
	"github.com/ppiankov/orcall/openrouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

// OutputConfig holds the output flags shared by call and complex
type OutputConfig struct {
	Format          string
	OutputFile      string
	ShowChoices     bool
	Progress        string
	MetricsTextfile string
	DiffFile        string
}

// addOutputFlags adds common output flags to a command
func addOutputFlags(cmd *cobra.Command, config *OutputConfig) {
	cmd.Flags().StringVar(&config.Format, "format", "human", "Output format: human|json|raw")
	cmd.Flags().StringVar(&config.OutputFile, "output", "", "Save result to file (format auto-detected: .json, .md, .txt)")
	cmd.Flags().BoolVar(&config.ShowChoices, "show-choices", false, "Print a table of every choice in the reply")
	cmd.Flags().StringVar(&config.Progress, "progress", "auto", "Spinner while waiting: auto|always|never")
	cmd.Flags().StringVar(&config.MetricsTextfile, "metrics-textfile", "", "Write Prometheus call metrics to this file in node_exporter textfile format ('-' for stderr)")
	cmd.Flags().StringVar(&config.DiffFile, "diff", "", "Compare the reply text with an expected answer file and print a unified diff")
}

func (c *OutputConfig) validate() error {
	switch c.Format {
	case "human", "json", "raw":
	default:
		return util.InvalidInput("--format must be 'human', 'json' or 'raw'")
	}
	switch c.Progress {
	case "auto", "always", "never":
	default:
		return util.InvalidInput("--progress must be 'auto', 'always' or 'never'")
	}
	return nil
}

// callFunc performs the request against a ready client.
type callFunc func(ctx context.Context, client *openrouter.Client) (*openrouter.Response, error)

// runCall builds the client, performs the call and prints the result.
func runCall(cmd *cobra.Command, s Settings, out *OutputConfig, do callFunc) error {
	if err := out.validate(); err != nil {
		return err
	}

	log, err := newLogger(cmd, s)
	if err != nil {
		return err
	}
	defer log.Sync()

	var (
		reg     *prometheus.Registry
		metrics *openrouter.Metrics
	)
	if out.MetricsTextfile != "" {
		reg = prometheus.NewRegistry()
		if metrics, err = openrouter.NewMetrics(reg); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
	}

	client, err := newClient(s, log, metrics)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log.Debug("sending request", "endpoint", client.Endpoint(), "model", s.Model, "timeout", s.Timeout.String())

	var resp *openrouter.Response
	call := func(ctx context.Context) error {
		var err error
		resp, err = do(ctx, client)
		return err
	}
	if showProgress(cmd, out.Progress) {
		err = progress.Run(ctx, cmd.ErrOrStderr(), "calling "+s.Model, call)
	} else {
		err = call(ctx)
	}

	if reg != nil {
		if werr := writeMetrics(cmd.ErrOrStderr(), out.MetricsTextfile, reg); werr != nil {
			log.Warn("failed to write metrics", "path", out.MetricsTextfile, "error", werr)
		}
	}
	if err != nil {
		return fmt.Errorf("LLM error: %w", err)
	}

	text, err := resp.GetResponse()
	if err != nil {
		if out.ShowChoices {
			r := result.FromResponse(s.Model, "", resp)
			result.RenderChoicesTable(cmd.ErrOrStderr(), &r)
		}
		return fmt.Errorf("extract response: %w", err)
	}

	r := result.FromResponse(s.Model, text, resp)
	return handleOutput(cmd, &r, out, client.Endpoint())
}

// writeMetrics writes the gathered call metrics to path, or to stderr when
// path is "-"
func writeMetrics(stderr io.Writer, path string, reg *prometheus.Registry) error {
	if path != "-" {
		return prometheus.WriteToTextfile(path, reg)
	}
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(stderr, mf); err != nil {
			return err
		}
	}
	return nil
}

// showProgress decides whether to draw the spinner on stderr
func showProgress(cmd *cobra.Command, mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := cmd.ErrOrStderr().(*os.File)
	return ok && progress.IsTerminal(f)
}

// handleOutput writes the result to stdout or a file
func handleOutput(cmd *cobra.Command, r *result.CallResult, out *OutputConfig, endpoint string) error {
	if out.OutputFile != "" {
		if err := exportToFile(r, cmd.Name(), out.OutputFile, endpoint); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "[orcall] Result saved to: %s\n", out.OutputFile)
		return nil
	}

	w := cmd.OutOrStdout()
	switch out.Format {
	case "raw":
		fmt.Fprintln(w, r.Text)
	case "json":
		s, err := result.PrettyJSON(r)
		if err != nil {
			return fmt.Errorf("JSON marshal error: %w", err)
		}
		fmt.Fprintln(w, s)
	default:
		result.RenderHuman(w, r)
	}

	if out.ShowChoices {
		fmt.Fprintln(w)
		result.RenderChoicesTable(w, r)
	}
	if out.DiffFile != "" {
		expected, err := os.ReadFile(out.DiffFile)
		if err != nil {
			return util.InvalidInput("--diff: %v", err)
		}
		fmt.Fprintln(w)
		if err := result.RenderDiff(w, out.DiffFile, string(expected), r.Text); err != nil {
			return fmt.Errorf("generate diff: %w", err)
		}
	}
	return nil
}

// exportToFile exports the result to a file in the format given by its extension
func exportToFile(r *result.CallResult, command, outputPath, endpoint string) error {
	exporter := export.Exporter{
		Format: export.DetectFormat(outputPath),
		Metadata: export.ExportMetadata{
			GeneratedAt:   time.Now().UTC(),
			OrcallVersion: version, // from root.go
			Endpoint:      endpoint,
			Command:       command,
		},
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := exporter.Export(r, file); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	return nil
}

// readPrompt joins the positional arguments, or reads stdin when there are
// none or the only one is "-"
func readPrompt(cmd *cobra.Command, args []string) (string, error) {
	prompt := strings.Join(args, " ")
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read prompt from stdin: %w", err)
		}
		prompt = string(data)
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", util.InvalidInput("no prompt given")
	}
	return prompt, nil
}
