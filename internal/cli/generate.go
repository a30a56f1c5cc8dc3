package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/windprak/steuerllm-benchmark/internal/app"
	"github.com/windprak/steuerllm-benchmark/internal/catalog"
	"github.com/windprak/steuerllm-benchmark/internal/config"
	"github.com/windprak/steuerllm-benchmark/internal/infra/ai"
)

// NewGenerateCmd builds the CLI subcommand to generate predictions for the
// full question catalog.
func NewGenerateCmd(configPath *string) *cobra.Command {
	var (
		questionsPath string
		outputPath    string
		model         string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate predictions for every question in the benchmark catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), *configPath, questionsPath, outputPath, model)
		},
	}

	cmd.Flags().StringVar(&questionsPath, "questions", "", "path to the question catalog JSON")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "predictions.json", "where to write the predictions file")
	cmd.Flags().StringVar(&model, "openai-model", "", "OpenAI model used to generate answers")
	return cmd
}

func runGenerate(ctx context.Context, configPath, questionsPath, outputPath, model string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if questionsPath == "" {
		questionsPath = cfg.Catalog.Path
	}
	if model == "" {
		model = cfg.OpenAI.Model
	}

	logger := newLogger()

	questions, err := catalog.Load(questionsPath)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d questions (%g points total)\n", len(questions), catalog.TotalPoints(questions))

	gen, err := ai.NewGenerator(ai.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       model,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Temperature: cfg.OpenAI.Temperature,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	builder := app.NewBuilder(gen, logger)
	set, err := builder.Build(ctx, questions)
	if err != nil {
		return err
	}

	if err := app.SavePredictions(outputPath, set); err != nil {
		return err
	}
	fmt.Printf("\nPredictions saved to %s\n", outputPath)

	printBuildReport(app.Report(questions, set))
	fmt.Printf("\nNext step: submit your predictions with:\n")
	fmt.Printf("  steuerllm-benchmark submit %s -m YourModelName\n", outputPath)
	return nil
}

func printBuildReport(report app.BuildReport) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("VALIDATION CHECK")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Total predictions: %d\n", report.Predictions)
	fmt.Printf("Expected questions: %d\n", report.Questions)
	if report.Complete() {
		fmt.Println("All IDs present: yes")
	} else {
		fmt.Printf("Missing question IDs: %s\n", strings.Join(report.MissingIDs, ", "))
	}
	if report.Empty > 0 {
		fmt.Printf("Warning: %d empty answers found!\n", report.Empty)
		suffix := ""
		if report.MoreEmpty {
			suffix = ", ..."
		}
		fmt.Printf("  question IDs: %s%s\n", strings.Join(report.EmptyIDs, ", "), suffix)
	} else {
		fmt.Println("All answers non-empty: yes")
	}
	fmt.Println(strings.Repeat("=", 60))
}
