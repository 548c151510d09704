package main

import (
	"fmt"
	"os"

	"github.com/olebedev/when"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"timebot/config"
	"timebot/llm"
	"timebot/service"
	"timebot/storage"
	"timebot/timeutil"
)

var rootCmd = &cobra.Command{
	Use:   "timebot",
	Short: "timebot answers \"when is ...?\" questions about the time of day",
	Long: `timebot resolves natural-language times such as "quarter to five",
"in 20 minutes" or "an hour before noon" to wall-clock times, from the
command line or as a Telegram bot.`,
	SilenceUsage: true,
}

var envFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Path to an optional .env file")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles what every command needs.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

func loadApp() (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &app{cfg: cfg, log: cfg.Logger(os.Stderr)}, nil
}

// interpreter wires the resolution layers. A nil store disables recording.
func (a *app) interpreter(store storage.Store) *service.Interpreter {
	parser := timeutil.NewParser(a.cfg.Grammar, a.log.With().Str("component", "parser").Logger())

	var fallback *when.Parser
	if a.cfg.NLFallback {
		fallback = service.NewFallback()
	}

	var rewriter llm.Rewriter
	if a.cfg.OpenAIAPIKey != "" {
		rewriter = llm.NewOpenAIClient(a.cfg.OpenAIAPIKey, a.cfg.OpenAIAPIBaseURL, a.cfg.OpenAIModel,
			a.log.With().Str("component", "llm").Logger())
	}

	return service.NewInterpreter(store, parser, fallback, rewriter, a.log.With().Str("component", "interpreter").Logger())
}
