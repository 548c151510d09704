package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"timebot/service"
	"timebot/storage"
	"timebot/telegram"
	"timebot/timeutil"
)

var parseCmd = &cobra.Command{
	Use:   "parse <expression...>",
	Short: "Resolve a time expression and print every reading",
	Example: `  timebot parse quarter to five
  timebot parse 20 minutes from 5pm
  timebot parse --pending "20 minutes before "`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram webhook server",
	RunE:  runServe,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently answered questions of a chat",
	RunE:  runHistory,
}

var (
	parsePending bool
	parseSave    bool
	parseChatID  int64

	historyChatID int64
	historyLimit  int
)

func init() {
	parseCmd.Flags().BoolVar(&parsePending, "pending", false, "List the placeholders that could follow a partial expression")
	parseCmd.Flags().BoolVar(&parseSave, "save", false, "Record the answer in the database")
	parseCmd.Flags().Int64Var(&parseChatID, "chat", 0, "Chat ID to record the answer under")

	historyCmd.Flags().Int64Var(&historyChatID, "chat", 0, "Chat ID")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "Maximum entries (defaults to HISTORY_LIMIT)")
}

func runParse(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	input := strings.Join(args, " ")

	if parsePending {
		// A quoted trailing space survives the join and marks a finished word.
		parser := timeutil.NewParser(a.cfg.Grammar, a.log)
		labels := parser.Pending(input)
		if len(labels) == 0 {
			fmt.Fprintln(out, "(nothing pending)")
			return nil
		}
		for _, l := range labels {
			fmt.Fprintf(out, "<%s>\n", l)
		}
		return nil
	}

	var store storage.Store
	if parseSave {
		db, err := storage.Open(a.cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
	}

	now := time.Now().In(a.cfg.Location)
	ans, err := a.interpreter(store).Resolve(cmd.Context(), now, service.Query{ChatID: parseChatID, Text: input})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLOCK\tAT\tSOURCE")
	for _, r := range ans.Resolutions {
		at := r.At.Format("2006-01-02 15:04 MST")
		if r.Relative {
			at += " (" + r.Offset.String() + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Clock, at, ans.Source)
	}
	return w.Flush()
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if err := a.cfg.RequireTelegram(); err != nil {
		return err
	}

	store, err := storage.Open(a.cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	sender, err := telegram.NewBotSender(a.cfg.TelegramBotToken, a.cfg.TelegramAPIBaseURL)
	if err != nil {
		return err
	}
	handler := telegram.NewWebhookHandler(sender, a.interpreter(store), a.cfg.BotMention, a.cfg.HistoryLimit,
		a.cfg.Location, a.log.With().Str("component", "webhook").Logger())

	mux := http.NewServeMux()
	mux.Handle(a.cfg.WebhookPath, handler)

	server := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.cfg.ListenAddr).Str("path", a.cfg.WebhookPath).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		a.log.Error().Err(err).Msg("http server shutdown")
	}

	a.log.Info().Msg("shutdown complete")
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	limit := historyLimit
	if limit <= 0 {
		limit = a.cfg.HistoryLimit
	}

	store, err := storage.Open(a.cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	qs, err := a.interpreter(store).History(cmd.Context(), historyChatID, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ASKED\tINPUT\tCLOCK\tSOURCE")
	for _, q := range qs {
		clock := timeutil.Clock{Hour: q.Hour, Minute: q.Minute}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", humanize.Time(q.CreatedAt), q.Input, clock, q.Source)
	}
	return w.Flush()
}
