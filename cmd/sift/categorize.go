package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Shirly8/sift/internal/engine"
	"github.com/Shirly8/sift/internal/llm"
	"github.com/Shirly8/sift/internal/server"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize <statement.csv|statement.ofx>",
		Short: "Categorize a statement without running the analysis",
		Long: `Runs only the categorization cascade and prints the categorized rows as
JSON, one summary line on stderr. Useful for inspecting rule and cache
coverage before paying for LLM calls.`,
		Args: cobra.ExactArgs(1),
		RunE: runCategorize,
	}

	cmd.Flags().Bool("no-llm", false, "disable the LLM categorization fallback")

	return cmd
}

func runCategorize(cmd *cobra.Command, args []string) error {
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

	payload, err := json.MarshalIndent(categorized, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode transactions: %w", err)
	}
	fmt.Println(string(payload))

	fmt.Fprintf(os.Stderr, "%d transactions, %.1f%% categorized (%d rules, %d cache, %d llm), $%.4f LLM cost\n",
		summary.Total, summary.CoveragePct, summary.RuleHits, summary.CacheHits, summary.LLMHits, summary.LLMCost)
	return nil
}
