package ingest

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/Shirly8/sift/internal/common"
	"github.com/Shirly8/sift/internal/model"
)

// Deduplicate drops exact duplicates (same date, amount, normalized merchant),
// keeping the first occurrence. Input order is preserved.
func Deduplicate(txns []model.Transaction) []model.Transaction {
	seen := make(map[string]struct{}, len(txns))
	out := txns[:0:0]

	for _, t := range txns {
		key := fmt.Sprintf("%s|%.2f|%s", t.Date.Format("2006-01-02"), t.Amount, t.NormalizedMerchant)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}

	if removed := len(txns) - len(out); removed > 0 {
		slog.Info("Removed duplicate transactions", "removed", removed, "remaining", len(out))
	}
	return out
}

// QualityScore measures table completeness: merchant completeness (0.3),
// amount completeness (0.4), and date span relative to 180 days (0.3).
// Scores below 0.5 are rejected as unusable.
func QualityScore(txns []model.Transaction) (float64, error) {
	if len(txns) == 0 {
		return 0, common.ErrNoTransactions
	}

	total := float64(len(txns))
	merchantOK, amountOK := 0, 0
	for _, t := range txns {
		if t.NormalizedMerchant != "" {
			merchantOK++
		}
		if t.Amount > 0 {
			amountOK++
		}
	}

	span := DaysSpan(txns)
	datePct := float64(span) / 180
	if datePct > 1 {
		datePct = 1
	}

	score := float64(merchantOK)/total*0.3 + float64(amountOK)/total*0.4 + datePct*0.3

	slog.Info("Data quality score",
		"score", fmt.Sprintf("%.2f", score),
		"merchant_pct", fmt.Sprintf("%.0f%%", float64(merchantOK)/total*100),
		"amount_pct", fmt.Sprintf("%.0f%%", float64(amountOK)/total*100),
		"span_days", span)

	if score < 0.5 {
		return score, fmt.Errorf("%w: score %.2f", common.ErrLowQuality, score)
	}
	return score, nil
}

// DaysSpan returns the calendar-day difference between the latest and
// earliest transaction dates. Consecutive days span 1; a single day spans 0.
func DaysSpan(txns []model.Transaction) int {
	if len(txns) == 0 {
		return 0
	}
	min, max := txns[0].Date, txns[0].Date
	for _, t := range txns[1:] {
		if t.Date.Before(min) {
			min = t.Date
		}
		if t.Date.After(max) {
			max = t.Date
		}
	}
	return model.CalendarDays(min, max)
}

// SortByDate orders transactions chronologically in place.
func SortByDate(txns []model.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date.Before(txns[j].Date)
	})
}
