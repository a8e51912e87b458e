package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbaille/memo/internal/api"
	"github.com/pbaille/memo/internal/assistant"
	"github.com/pbaille/memo/internal/auth"
	"github.com/pbaille/memo/internal/domain"
	"github.com/pbaille/memo/internal/executor"
	"github.com/pbaille/memo/internal/intent"
)

var (
	configDir string
	envName   string
	dbPath    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "memo",
		Short:        "Voice memo assistant",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config", "config", "configuration directory")
	rootCmd.PersistentFlags().StringVar(&envName, "env", os.Getenv("MEMO_ENV"), "configuration environment (overlays <env>.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite database path (overrides config)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(searchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			server := api.New(a.engine, api.Options{
				Addr:      addr,
				UploadDir: a.cfg.Server.UploadDir,
				Tokens:    auth.NewTokens(a.cfg.JWT.Secret, a.cfg.JWT.TTL),
				Login:     newLogin(a.cfg),
			}, a.logger)
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (overrides config)")
	return cmd
}

func resolveCmd() *cobra.Command {
	var (
		nowFlag  string
		onlyDate bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [text]",
		Short: "Show how an utterance is understood, without saving anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")

			var opts []assistant.Option
			if nowFlag != "" {
				now, ok := intent.ParseTimestamp(nowFlag, time.Now())
				if !ok {
					return fmt.Errorf("invalid --now %q", nowFlag)
				}
				opts = append(opts, assistant.WithClock(func() time.Time { return now }))
			}

			a, err := newApp(cmd.Context(), false, opts...)
			if err != nil {
				return err
			}
			defer a.Close()

			an, err := a.engine.Analyze(cmd.Context(), text)
			if err != nil {
				return err
			}

			fmt.Printf("Reference:   %s\n", an.Now.Format(domain.TimestampLayout))
			fmt.Printf("Normalized:  %s\n", an.Utterance.Normalized)
			fmt.Printf("Language:    %s\n", orDash(an.Utterance.Language))
			fmt.Printf("Classifier:  %s (%.2f)\n", an.Classification.Label, an.Classification.Probability)
			fmt.Printf("Category:    %s\n", an.Category)
			if an.HasTime {
				tr := an.Temporal
				if onlyDate {
					fmt.Printf("Time:        %s\n", tr.Time.Format(domain.DateLayout))
				} else {
					fmt.Printf("Time:        %s\n", tr.Time.Format(domain.TimestampLayout))
				}
				fmt.Printf("  source:    %s (matched %q, explicit date: %v)\n", tr.Source, tr.Matched, tr.HadExplicitDate)
			} else {
				fmt.Println("Time:        -")
			}
			fmt.Printf("Title:       %s\n", orDash(an.Title))

			out, err := json.MarshalIndent(assistant.NewResponse(an, executor.Outcome{}), "", "  ")
			if err != nil {
				return err
			}
			fmt.Printf("Action (%s):\n%s\n", an.Action.Kind, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&nowFlag, "now", "", `reference time, "YYYY-MM-DD HH:MM:SS"`)
	cmd.Flags().BoolVar(&onlyDate, "only-date", false, "print the resolved date only")
	return cmd
}

func addCmd() *cobra.Command {
	var (
		userID int64
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "add [utterance]",
		Short: "Run an utterance through the assistant as a user",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.engine.Process(cmd.Context(), userID, strings.Join(args, " "))
			if err != nil {
				return err
			}

			switch {
			case resp.Created != nil:
				fmt.Printf("Saved memo %d [%s] at %s\n", resp.MemoID, resp.Category, resp.Time)
			case resp.Queried != nil:
				fmt.Printf("%s: %d memo(s)\n", resp.QueryDate, len(resp.Tasks))
				for _, t := range resp.Tasks {
					fmt.Printf("  %s  %s\n", t.Timestamp, truncate(t.Text, 60))
				}
			case resp.DeleteRequested != nil:
				pd := resp.PendingDelete
				keyword := "-"
				if pd.Keyword != nil {
					keyword = *pd.Keyword
				}
				fmt.Printf("Delete %s from %s to %s (keyword: %s)\n", pd.Category, pd.StartTime, pd.EndTime, keyword)
				if !yes {
					fmt.Println("(not confirmed, pass --yes to delete)")
					return nil
				}
				n, err := a.engine.Executor().ConfirmDelete(cmd.Context(), userID, resp.ConfirmToken)
				if err != nil {
					return err
				}
				fmt.Printf("Deleted %d memo(s)\n", n)
			}
			return nil
		},
	}

	cmd.Flags().Int64VarP(&userID, "user", "u", 1, "user id")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletions immediately")
	return cmd
}

func listCmd() *cobra.Command {
	var (
		userID int64
		date   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's memos",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			var memos []domain.Memo
			if date != "" {
				day, err := time.ParseInLocation(domain.DateLayout, date, a.loc)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
				start, end := intent.DayWindow(day)
				memos, err = a.store.Query(cmd.Context(), userID, start, end)
				if err != nil {
					return err
				}
			} else {
				memos, err = a.store.ListByUser(cmd.Context(), userID)
				if err != nil {
					return err
				}
			}

			if len(memos) == 0 {
				fmt.Println("No memos yet. Use 'memo add' to create one.")
				return nil
			}
			printMemos(memos)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&userID, "user", "u", 1, "user id")
	cmd.Flags().StringVar(&date, "date", "", "only memos of this day (YYYY-MM-DD)")
	return cmd
}

func searchCmd() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "search [keyword]",
		Short: "Search a user's memos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			memos, err := a.store.Search(cmd.Context(), userID, args[0])
			if err != nil {
				return err
			}

			if len(memos) == 0 {
				fmt.Println("No matching memos found.")
				return nil
			}
			printMemos(memos)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&userID, "user", "u", 1, "user id")
	return cmd
}

func printMemos(memos []domain.Memo) {
	for _, m := range memos {
		category := m.Category
		if id, err := strconv.Atoi(m.Category); err == nil {
			category = string(domain.CategoryByID(id))
		}
		fmt.Printf("%4d  %s  %-6s %s\n", m.ID, m.Timestamp.Format(domain.TimestampLayout), category, truncate(m.Text, 60))
	}
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
