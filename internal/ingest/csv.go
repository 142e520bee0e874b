package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Shirly8/sift/internal/common"
	"github.com/Shirly8/sift/internal/model"
)

// Column aliases accepted for the required date/amount/merchant shape.
var columnAliases = map[string]string{
	"date":             "date",
	"transaction date": "date",
	"posted date":      "date",
	"amount":           "amount",
	"debit":            "amount",
	"value":            "amount",
	"merchant":         "merchant",
	"description":      "merchant",
	"payee":            "merchant",
	"name":             "merchant",
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02 Jan 2006",
	"Jan 2, 2006",
}

// ReadCSV parses a bank CSV export into transactions with normalized
// merchants. Missing required columns are a structural error: the run aborts
// before any categorization is attempted.
func ReadCSV(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := map[string]int{}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canonical, ok := columnAliases[key]; ok {
			if _, seen := cols[canonical]; !seen {
				cols[canonical] = i
			}
		}
	}

	for _, required := range []string{"date", "amount", "merchant"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: no %s column in header %v", common.ErrMissingColumns, required, header)
		}
	}

	var txns []model.Transaction
	line := 1
	for {
		record, readErr := cr.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", line, readErr)
		}
		line++

		txn, parseErr := parseRow(record, cols)
		if parseErr != nil {
			slog.Warn("Skipping malformed CSV row", "row", line, "error", parseErr)
			continue
		}
		txns = append(txns, txn)
	}

	if len(txns) == 0 {
		return nil, common.ErrNoTransactions
	}
	return txns, nil
}

func parseRow(record []string, cols map[string]int) (model.Transaction, error) {
	get := func(name string) string {
		idx := cols[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	date, err := parseDate(get("date"))
	if err != nil {
		return model.Transaction{}, err
	}

	amount, err := parseAmount(get("amount"))
	if err != nil {
		return model.Transaction{}, err
	}

	raw := get("merchant")
	if raw == "" {
		return model.Transaction{}, fmt.Errorf("empty merchant")
	}

	return model.Transaction{
		Date:               date,
		Amount:             amount,
		RawMerchant:        raw,
		NormalizedMerchant: NormalizeMerchant(raw),
		Source:             model.SourceUncategorized,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func parseAmount(s string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", "(", "-", ")", "").Replace(s)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable amount %q", s)
	}
	if v < 0 {
		v = -v
	}
	return v, nil
}
