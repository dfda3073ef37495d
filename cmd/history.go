package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-tailor/internal/history"
	"github.com/spigell/resume-tailor/internal/logger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved optimization results",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent optimization results",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		withHistory(func(ctx context.Context, store history.Store, logger *zap.Logger) error {
			records, err := store.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				logger.Info("history is empty")
				return nil
			}
			return writeRecordTable(os.Stdout, records)
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one optimization result. A unique id prefix is enough",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		asJSON, _ := cmd.Flags().GetBool("output-json")
		raw, _ := cmd.Flags().GetBool("raw")
		withHistory(func(ctx context.Context, store history.Store, _ *zap.Logger) error {
			record, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			switch {
			case raw:
				_, err = fmt.Fprintln(os.Stdout, record.Raw)
				return err
			case asJSON:
				return writeReports(os.Stdout, []report{recordReport(record)})
			default:
				title := fmt.Sprintf("%s (%s, %s)", recordLabel(record), record.ID, record.CreatedAt.Local().Format(time.DateTime))
				writeSummary(os.Stdout, title, &record.Result)
				fmt.Fprintln(os.Stdout)
				writeSuggestions(os.Stdout, "suggestions:", &record.Result)
				return nil
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd)

	historyListCmd.Flags().IntP("limit", "n", history.DefaultListLimit, "how many records to show")
	historyShowCmd.Flags().Bool("output-json", false, "print the record as json")
	historyShowCmd.Flags().Bool("raw", false, "print the raw model response")
}

func withHistory(fn func(ctx context.Context, store history.Store, logger *zap.Logger) error) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store, err := openHistory(config.History)
	if err != nil {
		logger.Fatal("opening history", zap.Error(err))
	}
	defer store.Close()

	if err := fn(context.Background(), store, logger); err != nil {
		logger.Fatal("reading history", zap.Error(err))
	}
}

func openHistory(cfg *HistoryConfig) (history.Store, error) {
	driver, path := history.DriverFile, ""
	if cfg != nil {
		driver = cfg.Driver
		path = cfg.Path
	}
	if strings.TrimSpace(path) == "" {
		path = defaultHistoryPath(driver)
	}
	return history.Open(driver, path)
}

// defaultHistoryPath is under the user config directory, or the working directory when there is none.
func defaultHistoryPath(driver string) string {
	name := "history.json"
	if driver == history.DriverSQLite {
		name = "history.db"
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join("."+app, name)
	}
	return filepath.Join(dir, app, name)
}

func writeRecordTable(w io.Writer, records []*history.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSCORE\tPOSTING\tMODEL")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			shortID(r.ID),
			r.CreatedAt.Local().Format(time.DateTime),
			r.Result.OverallScore,
			recordLabel(r),
			r.Model,
		)
	}
	return tw.Flush()
}

func recordLabel(r *history.Record) string {
	switch {
	case r.JobTitle != "" && r.Company != "":
		return r.JobTitle + " @ " + r.Company
	case r.JobTitle != "":
		return r.JobTitle
	default:
		return r.JobURL
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
