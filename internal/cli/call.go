package cli

import (
	"context"

	"github.com/ppiankov/orcall/internal/payload"
	"github.com/ppiankov/orcall/internal/util"
	"github.com/ppiankov/orcall/openrouter"
	"github.com/spf13/cobra"
)

// ParamsConfig holds the request flags shared by call and complex
type ParamsConfig struct {
	Model       string
	Temperature float64
	SchemaFile  string
}

var (
	callParams ParamsConfig
	callOutput OutputConfig
)

var callCmd = &cobra.Command{
	Use:   "call [prompt...]",
	Short: "Send a plain prompt as a single user message",
	Long: `Send a plain prompt to OpenRouter and print the reply text.

The prompt is wrapped into one user message with a single text part. When no
prompt arguments are given (or the only one is "-"), the prompt is read from
stdin.

Examples:
  # Ask a question
  orcall call --model openai/gpt-4o-mini "What is the capital of France?"

  # Lower temperature and ask for structured output
  orcall call --model openai/gpt-4o --temperature 0.1 --schema answer.yaml "List three primes"

  # Read the prompt from a file and save the result as Markdown
  orcall call --model anthropic/claude-3.5-sonnet --output answer.md < prompt.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, err := readPrompt(cmd, args)
		if err != nil {
			return err
		}

		s := loadSettings(cmd)
		if s.Model == "" {
			return util.InvalidInput("--model is required (or set model in the config file)")
		}

		opts, err := simpleParams(cmd, &callParams)
		if err != nil {
			return err
		}

		return runCall(cmd, s, &callOutput, func(ctx context.Context, client *openrouter.Client) (*openrouter.Response, error) {
			return client.Call(ctx, s.Model, prompt, opts)
		})
	},
}

func init() {
	rootCmd.AddCommand(callCmd)
	addParamsFlags(callCmd, &callParams)
	addOutputFlags(callCmd, &callOutput)
}

// addParamsFlags adds the request tuning flags to a command
func addParamsFlags(cmd *cobra.Command, config *ParamsConfig) {
	cmd.Flags().StringVar(&config.Model, "model", "", "Model name (e.g., openai/gpt-4o-mini, anthropic/claude-3.5-sonnet)")
	cmd.Flags().Float64Var(&config.Temperature, "temperature", 0, "Sampling temperature (omitted unless set)")
	cmd.Flags().StringVar(&config.SchemaFile, "schema", "", "Response schema file, JSON or YAML ('-' for stdin)")
}

// simpleParams returns the optional tuning fields set on the command line,
// or nil when none were given.
func simpleParams(cmd *cobra.Command, config *ParamsConfig) (*openrouter.SimpleParams, error) {
	var (
		opts openrouter.SimpleParams
		set  bool
	)
	if cmd.Flags().Changed("temperature") {
		opts = opts.WithTemperature(config.Temperature)
		set = true
	}
	if config.SchemaFile != "" {
		schema, err := payload.Load(config.SchemaFile, cmd.InOrStdin())
		if err != nil {
			return nil, util.InvalidInput("--schema: %v", err)
		}
		opts = opts.WithResponseSchema(schema)
		set = true
	}
	if !set {
		return nil, nil
	}
	return &opts, nil
}
