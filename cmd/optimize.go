package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-tailor/internal/ai"
	"github.com/spigell/resume-tailor/internal/ai/gemini"
	"github.com/spigell/resume-tailor/internal/filtering"
	"github.com/spigell/resume-tailor/internal/headhunter"
	"github.com/spigell/resume-tailor/internal/history"
	"github.com/spigell/resume-tailor/internal/jobposting"
	"github.com/spigell/resume-tailor/internal/logger"
	"github.com/spigell/resume-tailor/internal/resume"
	"github.com/spigell/resume-tailor/internal/secrets"
)

const (
	PromptSummary     = "Show summary"
	PromptSuggestions = "Show suggestions by section"
	PromptDumpToFile  = "Dump results to file"
	PromptExit        = "Exit"
	PromptBack        = "back"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptSummary, PromptSuggestions, PromptDumpToFile, PromptExit},
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Get suggestions to tailor a resume to job postings",
	Run: func(cmd *cobra.Command, _ []string) {
		optimize(cmd)
	},
}

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().StringP("resume", "r", "", "resume file (yaml or json)")
	optimizeCmd.Flags().StringSlice("job", nil, "job posting: hh.ru vacancy link, any job page link or a local file. Repeatable")
	optimizeCmd.Flags().BoolP("auto-approve", "y", false, "do not show the interactive menu")
	optimizeCmd.Flags().StringP("output", "o", "", "write results as json to this file")
	optimizeCmd.Flags().BoolP("force", "f", false, "optimize postings already present in the history")

	optimizeCmd.MarkFlagRequired("resume")
	optimizeCmd.MarkFlagRequired("job")
}

func optimize(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-tailor", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	resumePath, _ := cmd.Flags().GetString("resume")
	r, err := resume.Load(resumePath)
	if err != nil {
		logger.Fatal("loading resume", zap.Error(err))
	}

	store, err := openHistory(config.History)
	if err != nil {
		logger.Fatal("opening history", zap.Error(err))
	}
	defer store.Close()

	jobs, _ := cmd.Flags().GetStringSlice("job")
	postings := loadPostings(ctx, newLoader(config, logger), jobs, logger)

	force, _ := cmd.Flags().GetBool("force")
	postings, err = filtering.Run(ctx, filtering.Deps{History: store, Logger: logger}, prepareFilters(config, force), postings)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if len(postings) == 0 {
		logger.Info("exiting", zap.String("reason", "no job postings left to optimize"))
		return
	}

	optimizer, err := newOptimizer(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building ai optimizer", zap.Error(err))
	}

	outcomes := optimizeAll(ctx, optimizer, r, postings, config.AI.Concurrency, logger)
	saveOutcomes(ctx, store, outcomes, logger)

	reports := make([]report, 0, len(outcomes))
	for _, o := range outcomes {
		reports = append(reports, o.report())
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := writeReportsFile(output, reports); err != nil {
			logger.Fatal("writing output", zap.String("filename", output), zap.Error(err))
		}
		logger.Info("results written", zap.String("filename", output))
	}

	if autoApprove, _ := cmd.Flags().GetBool("auto-approve"); autoApprove {
		for _, o := range outcomes {
			if o.Err == nil {
				writeSummary(os.Stdout, o.label(), o.Optimization.Result)
			}
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, outcomes, reports, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, outcomes []*outcome, reports []report, logger *zap.Logger) error {
	switch action {
	case PromptSummary, PromptSuggestions:
		o, err := chooseOutcome(outcomes)
		if err != nil || o == nil {
			return err
		}
		if o.Err != nil {
			logger.Warn("optimization failed", zap.String("posting", o.label()), zap.String("reason", failureMessage(o.Err)))
			return nil
		}
		if action == PromptSummary {
			writeSummary(os.Stdout, o.label(), o.Optimization.Result)
		} else {
			writeSuggestions(os.Stdout, o.label(), o.Optimization.Result)
		}
		return nil
	case PromptDumpToFile:
		filename, err := dumpReportsToTmpFile(reports)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// chooseOutcome asks for a posting when there are several. A nil outcome means back.
func chooseOutcome(outcomes []*outcome) (*outcome, error) {
	if len(outcomes) == 1 {
		return outcomes[0], nil
	}

	items := make([]string, 0, len(outcomes)+1)
	for i, o := range outcomes {
		items = append(items, fmt.Sprintf("%d %s", i+1, o.label()))
	}

	postingPrompt := promptui.Select{
		Label: "Choose a job posting and press ENTER",
		Items: append(items, PromptBack),
	}

	idx, _, err := postingPrompt.Run()
	if err != nil {
		return nil, err
	}
	if idx >= len(outcomes) {
		return nil, nil
	}
	return outcomes[idx], nil
}

// loadPostings resolves every job argument. Arguments that fail are logged and skipped.
func loadPostings(ctx context.Context, loader *jobposting.Loader, jobs []string, logger *zap.Logger) []*jobposting.Posting {
	postings := make([]*jobposting.Posting, 0, len(jobs))
	for _, job := range jobs {
		posting, err := loader.Load(ctx, job)
		if err != nil {
			logger.Warn("skipping job posting", zap.String("job", job), zap.Error(err))
			continue
		}
		logger.Info("job posting loaded",
			zap.String("posting", posting.Label()),
			zap.String("source", posting.Source),
		)
		postings = append(postings, posting)
	}
	return postings
}

func optimizeAll(ctx context.Context, optimizer ai.Optimizer, r *resume.Resume, postings []*jobposting.Posting, limit int, logger *zap.Logger) []*outcome {
	outcomes := make([]*outcome, len(postings))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, posting := range postings {
		o := &outcome{Posting: posting}
		outcomes[i] = o

		g.Go(func() error {
			o.Optimization, o.Err = optimizer.Optimize(ctx, r, posting)
			if o.Err != nil {
				logger.Error("optimization failed",
					zap.String("posting", o.label()),
					zap.String("reason", failureMessage(o.Err)),
				)
				logger.Debug("optimization failure details", zap.Error(o.Err))
				return nil
			}
			logger.Info("optimization completed",
				zap.String("posting", o.label()),
				zap.Int("overall_score", o.Optimization.Result.OverallScore),
				zap.Int("suggestions", len(o.Optimization.Result.Suggestions)),
			)
			return nil
		})
	}

	// Failures stay in their outcome so one posting never cancels the others.
	_ = g.Wait()
	return outcomes
}

func saveOutcomes(ctx context.Context, store history.Store, outcomes []*outcome, logger *zap.Logger) {
	for _, o := range outcomes {
		if o.Err != nil || o.Optimization == nil {
			continue
		}

		record := history.NewRecord(o.Optimization.Result)
		record.JobURL = o.Posting.URL
		record.JobTitle = o.Posting.Title
		record.Company = o.Posting.Company
		record.Model = o.Optimization.Model
		record.Strategy = o.Optimization.Strategy
		record.Raw = o.Optimization.Raw

		if err := store.Save(ctx, record); err != nil {
			logger.Warn("saving history record", zap.String("posting", o.label()), zap.Error(err))
			continue
		}
		o.Record = record
		logger.Debug("history record saved", zap.String("id", record.ID))
	}
}

func prepareFilters(config *Config, force bool) []filtering.Filter {
	var companies []string
	if config.Filter != nil {
		companies = config.Filter.ExcludeCompanies
	}

	return []filtering.Filter{
		filtering.NewEmptyDescription(),
		filtering.NewDuplicates(),
		filtering.NewExcludedCompanies(companies),
		filtering.NewAlreadyOptimized(force),
	}
}

func newLoader(config *Config, logger *zap.Logger) *jobposting.Loader {
	fetcher := jobposting.NewFetcher(jobposting.FetchOptions{
		Timeout:       config.Fetch.Timeout,
		UserAgent:     config.Fetch.UserAgent,
		RatePerSecond: config.Fetch.RatePerSecond,
	}, logger)

	hh := headhunter.New(logger, resolveToken(config, logger))
	if config.HeadHunter != nil && config.HeadHunter.UserAgent != "" {
		hh.UserAgent = config.HeadHunter.UserAgent
	}

	return jobposting.NewLoader(fetcher, jobposting.NewCascade(logger), hh, logger)
}

// resolveToken returns the hh.ru token, or an empty string for anonymous access.
func resolveToken(config *Config, logger *zap.Logger) string {
	tokenFile := ""
	if config.HeadHunter != nil {
		tokenFile = strings.TrimSpace(config.HeadHunter.TokenFile)
	}
	if tokenFile == "" {
		return ""
	}

	token, err := secrets.Load(secrets.Source{
		Name: "headhunter token",
		File: tokenFile,
	})
	if err != nil {
		logger.Warn("using anonymous hh.ru access",
			zap.Error(err),
			zap.String("hint", "set HH_TOKEN_FILE environment variable or the 'headhunter.token-file' key in the configuration file"),
		)
		return ""
	}
	return token
}

func newOptimizer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (*gemini.Optimizer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (or set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

	generator, err := gemini.NewGenerator(ctx, apiKey, gemini.Options{
		Model:           cfg.Gemini.Model,
		Temperature:     cfg.Gemini.Temperature,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
		MaxRetries:      cfg.Gemini.MaxRetries,
	}, genLogger)
	if err != nil {
		return nil, err
	}

	optimizer := gemini.NewOptimizer(generator, cfg.Gemini.MaxLogLength, logger.With(optimizerFields(generator.Model())...))
	optimizer.SetPromptOverrides(cfg.Prompt)

	return optimizer, nil
}

func optimizerFields(model string) []zap.Field {
	return logger.AIFields("gemini", model)
}
