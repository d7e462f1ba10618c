package cli

import (
	"context"

	"github.com/ppiankov/orcall/internal/payload"
	"github.com/ppiankov/orcall/internal/util"
	"github.com/ppiankov/orcall/openrouter"
	"github.com/spf13/cobra"
)

var (
	complexParams   ParamsConfig
	complexOutput   OutputConfig
	complexMessages string
)

var complexCmd = &cobra.Command{
	Use:   "complex",
	Short: "Send a prepared message list",
	Long: `Send a prepared message list to OpenRouter and print the reply text.

The messages file is sent as-is in the "messages" field, so any structure the
API accepts (system prompts, prior turns, image parts) can be used.

Examples:
  # Messages from a YAML file
  orcall complex --model openai/gpt-4o --messages conversation.yaml

  # Messages piped in as JSON, result as JSON
  cat messages.json | orcall complex --model openai/gpt-4o --messages - --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := loadSettings(cmd)
		if s.Model == "" {
			return util.InvalidInput("--model is required (or set model in the config file)")
		}
		if complexMessages == "" {
			return util.InvalidInput("--messages is required")
		}
		if complexMessages == "-" && complexParams.SchemaFile == "-" {
			return util.InvalidInput("--messages and --schema cannot both read stdin")
		}

		messages, err := payload.Load(complexMessages, cmd.InOrStdin())
		if err != nil {
			return util.InvalidInput("--messages: %v", err)
		}

		opts, err := simpleParams(cmd, &complexParams)
		if err != nil {
			return err
		}

		var params openrouter.Params
		if opts != nil {
			params = opts.Full(s.Model, messages)
		} else {
			params = openrouter.Build(s.Model, messages)
		}

		return runCall(cmd, s, &complexOutput, func(ctx context.Context, client *openrouter.Client) (*openrouter.Response, error) {
			return client.ComplexCall(ctx, params)
		})
	},
}

func init() {
	rootCmd.AddCommand(complexCmd)
	addParamsFlags(complexCmd, &complexParams)
	addOutputFlags(complexCmd, &complexOutput)
	complexCmd.Flags().StringVar(&complexMessages, "messages", "", "Messages file, JSON or YAML ('-' for stdin)")
}
