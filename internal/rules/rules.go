// Package rules implements the deterministic, zero-cost merchant categorizer.
// It is the first classification stage: exact, whole-word, and substring
// matching against a merchant keyword table, with a fixed confidence tier per
// match kind.
package rules

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/Shirly8/sift/internal/model"
)

// Match confidence tiers. These are the only confidences the rule
// categorizer ever returns.
const (
	ExactConfidence     = 0.95
	WordConfidence      = 0.80
	SubstringConfidence = 0.70
)

// Match is a successful rule classification.
type Match struct {
	Category   string
	Confidence float64
}

type keyword struct {
	word    *regexp.Regexp
	text    string
	compact string
}

type categoryRules struct {
	category string
	keywords []keyword
}

// Engine matches normalized merchants against a category keyword table.
// Immutable after construction, so safe for concurrent use.
type Engine struct {
	rules []categoryRules
}

// New builds an engine from the built-in rule table.
func New() *Engine {
	return newFromTable(defaultRules)
}

// Load builds an engine from a JSON rule file mapping category -> keywords,
// falling back to the built-in table when path is empty.
func Load(path string) (*Engine, error) {
	if path == "" {
		return New(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var table map[string][]string
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	slog.Info("Loaded rule table", "path", path, "categories", len(table))
	return newFromTable(table), nil
}

func newFromTable(table map[string][]string) *Engine {
	e := &Engine{}
	// iterate the known category list for a stable match order
	for _, category := range model.Categories {
		raw, ok := table[category]
		if !ok {
			continue
		}
		cr := categoryRules{category: category}
		for _, kw := range raw {
			text := compareKey(kw)
			if text == "" {
				continue
			}
			cr.keywords = append(cr.keywords, keyword{
				text:    text,
				compact: strings.ReplaceAll(text, " ", ""),
				word:    regexp.MustCompile(`\b` + regexp.QuoteMeta(text) + `\b`),
			})
		}
		e.rules = append(e.rules, cr)
	}
	return e
}

var nonAlnumPattern = regexp.MustCompile(`[^A-Z0-9 ]+`)
var spacePattern = regexp.MustCompile(`\s+`)

// compareKey strips punctuation that varies across bank formats before
// comparing: "LONGO'S" -> "LONGOS", "WAL-MART" -> "WALMART".
func compareKey(s string) string {
	s = strings.ToUpper(s)
	s = strings.NewReplacer("'", "", "-", "", ".", "").Replace(s)
	s = nonAlnumPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// Classify matches one normalized merchant. Tiers are evaluated in precedence
// order and short-circuit at the first hit: exact (0.95), whole word (0.80),
// substring (0.70). No match returns nil and the merchant falls through to
// the cache and LLM stages.
func (e *Engine) Classify(normalizedMerchant string) *Match {
	m := compareKey(normalizedMerchant)
	if m == "" {
		return nil
	}
	compact := strings.ReplaceAll(m, " ", "")

	// all exact checks run before any word check, and all word checks before
	// any substring check: a substring hit in an early category must not
	// shadow an exact hit in a later one
	for _, cr := range e.rules {
		for _, kw := range cr.keywords {
			if compact == kw.compact {
				return &Match{Category: cr.category, Confidence: ExactConfidence}
			}
		}
	}
	for _, cr := range e.rules {
		for _, kw := range cr.keywords {
			if kw.word.MatchString(m) {
				return &Match{Category: cr.category, Confidence: WordConfidence}
			}
		}
	}
	for _, cr := range e.rules {
		for _, kw := range cr.keywords {
			if strings.Contains(m, kw.text) || strings.Contains(compact, kw.compact) {
				return &Match{Category: cr.category, Confidence: SubstringConfidence}
			}
		}
	}
	return nil
}

// ClassifyBatch classifies the distinct merchant set once and returns a
// merchant -> match map. Cost is bounded by the distinct merchant count
// regardless of transaction volume; callers broadcast the result to all
// matching transactions.
func (e *Engine) ClassifyBatch(merchants []string) map[string]*Match {
	results := make(map[string]*Match, len(merchants))
	hits := 0
	for _, merchant := range merchants {
		if _, done := results[merchant]; done {
			continue
		}
		match := e.Classify(merchant)
		results[merchant] = match
		if match != nil {
			hits++
		}
	}

	coverage := 0.0
	if len(results) > 0 {
		coverage = float64(hits) / float64(len(results)) * 100
	}
	slog.Info("Rule categorization complete",
		"matched", hits,
		"merchants", len(results),
		"coverage_pct", fmt.Sprintf("%.0f", coverage))
	if coverage < 40 {
		slog.Warn("Low rule coverage, LLM fallback will be heavy", "coverage_pct", fmt.Sprintf("%.0f", coverage))
	}

	return results
}
