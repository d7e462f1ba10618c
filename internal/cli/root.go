package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/ppiankov/orcall/internal/logging"
	"github.com/ppiankov/orcall/internal/util"
	"github.com/ppiankov/orcall/openrouter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.2.0"

var (
	// Global flags
	cfgFile   string
	envFile   string
	apiKey    string
	endpoint  string
	timeout   time.Duration
	referer   string
	title     string
	logFormat string
	verbose   bool

	// cfg is rebuilt by initConfig on every execution
	cfg = viper.New()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "orcall",
	Short: "Send chat-completion requests to OpenRouter from the shell",
	Long: `orcall sends a single chat-completion request to OpenRouter and prints
the text of the reply.

Features:
  - call: send a plain prompt as one user message
  - complex: send a prepared message list (JSON or YAML)
  - Optional temperature and response schema
  - Human, JSON and raw output; export to .json, .md or .txt`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	// Disable default completion command
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// SetVersion overrides the version reported by the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.orcall.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "OpenRouter API key (default is $OPENROUTER_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", openrouter.APIURL, "chat-completion endpoint")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "request timeout (0 = none)")
	rootCmd.PersistentFlags().StringVar(&referer, "referer", "", "HTTP-Referer attribution header")
	rootCmd.PersistentFlags().StringVar(&title, "title", "", "X-Title attribution header")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format: console|json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging, including the full reply")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &util.InputError{Err: err}
	})
}

// initConfig loads the dotenv file, the config file and ENV variables
func initConfig() {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "[orcall] warning: failed to load %s: %v\n", envFile, err)
		}
	}

	cfg = viper.New()
	if cfgFile != "" {
		// Use config file from the flag
		cfg.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		// Search config in home directory with name ".orcall" (without extension)
		cfg.AddConfigPath(home)
		cfg.SetConfigType("yaml")
		cfg.SetConfigName(".orcall")
	}

	cfg.SetEnvPrefix("ORCALL")
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cfg.AutomaticEnv() // read in environment variables that match
	_ = cfg.BindEnv("api_key", "ORCALL_API_KEY", "OPENROUTER_API_KEY")

	// Bind flags to viper
	flags := rootCmd.PersistentFlags()
	_ = cfg.BindPFlag("api_key", flags.Lookup("api-key"))
	_ = cfg.BindPFlag("endpoint", flags.Lookup("endpoint"))
	_ = cfg.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = cfg.BindPFlag("referer", flags.Lookup("referer"))
	_ = cfg.BindPFlag("title", flags.Lookup("title"))
	_ = cfg.BindPFlag("log_format", flags.Lookup("log-format"))
	_ = cfg.BindPFlag("verbose", flags.Lookup("verbose"))

	// If a config file is found, read it in
	if err := cfg.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "[orcall] Using config file: %s\n", cfg.ConfigFileUsed())
	} else if err != nil && cfgFile != "" {
		fmt.Fprintf(os.Stderr, "[orcall] warning: failed to read config %s: %v\n", cfgFile, err)
	}
}

// Settings is the resolved configuration for one command run.
type Settings struct {
	APIKey    string
	Endpoint  string
	Model     string
	Timeout   time.Duration
	Referer   string
	Title     string
	LogFormat string
	Verbose   bool
}

// loadSettings resolves flags, environment and config file for cmd. The
// model comes from the command's own --model flag when it has one.
func loadSettings(cmd *cobra.Command) Settings {
	if f := cmd.Flags().Lookup("model"); f != nil {
		_ = cfg.BindPFlag("model", f)
	}
	return Settings{
		APIKey:    strings.TrimSpace(cfg.GetString("api_key")),
		Endpoint:  cfg.GetString("endpoint"),
		Model:     cfg.GetString("model"),
		Timeout:   cfg.GetDuration("timeout"),
		Referer:   cfg.GetString("referer"),
		Title:     cfg.GetString("title"),
		LogFormat: cfg.GetString("log_format"),
		Verbose:   cfg.GetBool("verbose"),
	}
}

// newLogger builds the command logger on stderr.
func newLogger(cmd *cobra.Command, s Settings) (*logging.Logger, error) {
	log, err := logging.New(cmd.ErrOrStderr(), logging.Options{Verbose: s.Verbose, Format: s.LogFormat})
	if err != nil {
		return nil, &util.InputError{Err: err}
	}
	return log, nil
}

// newClient builds the OpenRouter client. The reply dump is only enabled in
// verbose mode.
func newClient(s Settings, log *logging.Logger, metrics *openrouter.Metrics) (*openrouter.Client, error) {
	if s.APIKey == "" {
		return nil, util.InvalidInput("no API key: pass --api-key or set OPENROUTER_API_KEY")
	}

	opts := []openrouter.Option{
		openrouter.WithEndpoint(s.Endpoint),
		openrouter.WithTimeout(s.Timeout),
		openrouter.WithReferer(s.Referer),
		openrouter.WithTitle(s.Title),
		openrouter.WithMetrics(metrics),
	}
	if s.Verbose {
		opts = append(opts, openrouter.WithLogger(log.With("component", "openrouter")))
	}
	return openrouter.New(s.APIKey, opts...), nil
}
