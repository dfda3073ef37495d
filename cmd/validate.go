package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-tailor/internal/extraction"
	"github.com/spigell/resume-tailor/internal/logger"
	"github.com/spigell/resume-tailor/internal/optimization"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|->",
	Short: "Recover a result from a saved model response and check it against the schema",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}

		data, err := readInput(args[0])
		if err != nil {
			logger.Fatal("reading model response", zap.Error(err))
		}

		result, strategy, err := replay(string(data), logger)
		if err != nil {
			logger.Fatal("validating model response", zap.Error(err))
		}

		logger.Info("model response is valid",
			zap.String("extraction_strategy", strategy),
			zap.Int("suggestions", len(result.Suggestions)),
			zap.Int("overall_score", result.OverallScore),
		)

		if err := writeReports(os.Stdout, []report{{Strategy: strategy, Result: result}}); err != nil {
			logger.Fatal("writing result", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// replay runs a raw model response through extraction, normalization and schema validation.
func replay(raw string, logger *zap.Logger) (*optimization.Result, string, error) {
	parsed, strategy, err := extraction.New(logger).ExtractNamed(raw)
	if err != nil {
		return nil, "", err
	}

	result, err := optimization.NewNormalizer(logger).Normalize(parsed)
	if err != nil {
		return nil, strategy, err
	}

	_, shape := optimization.Classify(parsed)
	if err := result.ValidateShape(shape); err != nil {
		return result, strategy, err
	}

	return result, strategy, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
