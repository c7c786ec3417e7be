package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/stockledger/internal/infrastructure/config"
	"github.com/iho/stockledger/internal/infrastructure/logger"
	"github.com/iho/stockledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
	actor   = "cli"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "stockledger-cli",
		Short:         "Stock ledger CLI tool",
		Long:          `A command line interface for the stock ledger API and its database migrations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the stock ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", "cli", "Actor recorded in the audit log")

	rootCmd.AddCommand(ledgerCmd(), transferCmd(), migrateCmd())
	return rootCmd
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check that posted debits equal posted credits",
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkConsistency(cmd.OutOrStdout())
		},
	})
	return cmd
}

func transferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Stock transfer operations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "posting <transfer-id>",
			Short: "Show the ledger posting of a transfer",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return showPosting(cmd.OutOrStdout(), args[0])
			},
		},
		&cobra.Command{
			Use:   "submit <transfer-id>",
			Short: "Submit a draft transfer",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return transition(cmd.OutOrStdout(), args[0], "submit")
			},
		},
		&cobra.Command{
			Use:   "cancel <transfer-id>",
			Short: "Cancel a submitted transfer",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return transition(cmd.OutOrStdout(), args[0], "cancel")
			},
		},
	)
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations (reads DATABASE_URL and MIGRATIONS_PATH)",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := newMigrator()
				if err != nil {
					return err
				}
				return m.Up()
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := newMigrator()
				if err != nil {
					return err
				}
				return m.Down()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := newMigrator()
				if err != nil {
					return err
				}
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%v\n", version, dirty)
				return nil
			},
		},
	)
	return cmd
}

func newMigrator() (*postgres.Migrator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Output: os.Stderr})
	return postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log), nil
}

type consistencyReport struct {
	TotalDebits  string `json:"total_debits"`
	TotalCredits string `json:"total_credits"`
	Difference   string `json:"difference"`
	Consistent   bool   `json:"consistent"`
}

func checkConsistency(out io.Writer) error {
	status, body, err := request(http.MethodGet, "/api/v1/ledger/consistency")
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusConflict {
		return apiError(status, body)
	}

	var report consistencyReport
	if err := json.Unmarshal(body, &report); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if !report.Consistent {
		fmt.Fprintf(out, "Consistency check FAILED\nDebits: %s\nCredits: %s\nDifference: %s\n",
			report.TotalDebits, report.TotalCredits, report.Difference)
		return fmt.Errorf("ledger is inconsistent")
	}

	fmt.Fprintf(out, "Consistency check PASSED\nDebits: %s\nCredits: %s\n", report.TotalDebits, report.TotalCredits)
	return nil
}

type postingEntry struct {
	AccountID string `json:"account_id"`
	Side      string `json:"side"`
	Amount    string `json:"amount"`
	RoundOff  bool   `json:"round_off"`
}

type posting struct {
	TransferID string         `json:"transfer_id"`
	Entries    []postingEntry `json:"entries"`
}

func showPosting(out io.Writer, transferID string) error {
	status, body, err := request(http.MethodGet, "/api/v1/stock-transfers/"+transferID+"/posting")
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK:
	case http.StatusNoContent:
		fmt.Fprintln(out, "No posting: the transfer total cannot be computed yet.")
		return nil
	default:
		return apiError(status, body)
	}

	var p posting
	if err := json.Unmarshal(body, &p); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Fprintf(out, "%-28s %-7s %14s\n", "ACCOUNT", "SIDE", "AMOUNT")
	for _, e := range p.Entries {
		account := truncate(e.AccountID, 28)
		if e.RoundOff {
			account = truncate(e.AccountID, 18) + " (round)"
		}
		fmt.Fprintf(out, "%-28s %-7s %14s\n", account, e.Side, e.Amount)
	}
	return nil
}

func transition(out io.Writer, transferID, action string) error {
	status, body, err := request(http.MethodPost, "/api/v1/stock-transfers/"+transferID+"/"+action)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiError(status, body)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	printJSON(out, result)
	return nil
}

func request(method, path string) (int, []byte, error) {
	req, err := http.NewRequest(method, baseURL+path, nil)
	if err != nil {
		return 0, nil, err
	}
	if actor != "" {
		req.Header.Set("X-Actor", actor)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("error reading response: %w", err)
	}
	return resp.StatusCode, body, nil
}

type apiErrorBody struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func apiError(status int, body []byte) error {
	var e apiErrorBody
	if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
		return fmt.Errorf("request failed (status %d): %s", status, truncate(string(body), 200))
	}
	msg := fmt.Sprintf("request failed (status %d): %s", status, e.Error)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	for _, d := range e.Details {
		msg += "\n  - " + d
	}
	return fmt.Errorf("%s", msg)
}

func printJSON(out io.Writer, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "%v\n", v)
		return
	}
	fmt.Fprintln(out, string(data))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

