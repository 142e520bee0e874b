package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Shirly8/sift/internal/agent"
	"github.com/Shirly8/sift/internal/engine"
	"github.com/Shirly8/sift/internal/ingest"
	"github.com/Shirly8/sift/internal/llm"
	"github.com/Shirly8/sift/internal/server"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <statement.csv|statement.ofx>",
		Short: "Categorize a statement and run the full analysis",
		Long: `Runs the whole pipeline on a statement file: categorization, profiling,
the admissible statistical tools, and insight synthesis. Results print as
JSON on stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().Bool("no-llm", false, "disable the LLM categorization fallback")
	cmd.Flags().String("output", "", "write the result payload to a file instead of stdout")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open statement: %w", err)
	}
	defer func() { _ = f.Close() }()

	txns, err := server.ParseStatement(args[0], f)
	if err != nil {
		return err
	}
	if _, err := ingest.QualityScore(txns); err != nil {
		return err
	}

	ruleEngine, err := loadRules()
	if err != nil {
		return err
	}
	merchantCache, err := openCache()
	if err != nil {
		return err
	}
	defer func() { _ = merchantCache.Close() }()

	governor := llm.NewGovernor(viper.GetFloat64("llm.cost_warn"), viper.GetFloat64("llm.cost_abort"))

	var fallback engine.Fallback
	if noLLM, _ := cmd.Flags().GetBool("no-llm"); !noLLM {
		client, err := llm.NewClient(llm.DetectConfig())
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		fallback = llm.NewCategorizer(client, governor, 60)
	}

	categorized, summary, err := engine.New(ruleEngine, merchantCache, fallback, governor).Categorize(ctx, txns)
	if err != nil {
		return err
	}

	stream := agent.NewStream()
	go agent.NewOrchestrator().Run(ctx, categorized, summary, stream)

	bar := newAnalysisBar()
	var result *agent.Event
	for event := range stream.Events() {
		if event.Done {
			result = &event
			break
		}
		bar.Describe(event.Step)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	if result == nil || result.Data == nil {
		return fmt.Errorf("analysis produced no result")
	}

	payload, err := json.MarshalIndent(result.Data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if path, _ := cmd.Flags().GetString("output"); path != "" {
		if err := os.WriteFile(path, payload, 0o600); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Result written to %s\n", path)
		return nil
	}

	fmt.Println(string(payload))
	return nil
}

func newAnalysisBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]Analyzing...[reset]"),
		progressbar.OptionSpinnerType(14),
	)
}
