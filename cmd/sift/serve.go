package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Shirly8/sift/internal/cache"
	"github.com/Shirly8/sift/internal/llm"
	"github.com/Shirly8/sift/internal/rules"
	"github.com/Shirly8/sift/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP server",
		Long: `Starts the HTTP server: upload statements, stream analysis progress over
server-sent events, and submit category corrections.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().Bool("no-llm", false, "disable the LLM categorization fallback")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ruleEngine, err := loadRules()
	if err != nil {
		return err
	}

	merchantCache, err := openCache()
	if err != nil {
		return err
	}
	defer func() { _ = merchantCache.Close() }()

	cfg := server.Config{
		Addr:         viper.GetString("server.addr"),
		AllowOrigins: viper.GetStringSlice("server.allow_origins"),
		MaxSessions:  viper.GetInt("server.max_sessions"),
		CostWarn:     viper.GetFloat64("llm.cost_warn"),
		CostAbort:    viper.GetFloat64("llm.cost_abort"),
	}

	noLLM, _ := cmd.Flags().GetBool("no-llm")
	if !noLLM {
		llmCfg := llm.DetectConfig()
		cfg.LLM = &llmCfg
		slog.Info("LLM fallback configured", "provider", llmCfg.Provider, "model", llmCfg.Model)
	}

	return server.New(cfg, ruleEngine, merchantCache).Run()
}

// loadRules builds the rule engine from an optional custom table.
func loadRules() (*rules.Engine, error) {
	if path := viper.GetString("rules.path"); path != "" {
		engine, err := rules.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load rule table: %w", err)
		}
		return engine, nil
	}
	return rules.New(), nil
}

// openCache opens the persistent merchant cache, or an in-memory one when
// no path is configured.
func openCache() (*cache.Cache, error) {
	path := viper.GetString("cache.path")
	if path == "" {
		return cache.NewMemory(), nil
	}
	c, err := cache.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open merchant cache: %w", err)
	}
	return c, nil
}
