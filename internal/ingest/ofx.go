package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/Shirly8/sift/internal/common"
	"github.com/Shirly8/sift/internal/model"
)

// Fix missing closing angle brackets in SGML-style OFX files.
var ofxTagFixPattern = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)

var ofxSeverityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)

// ReadOFX parses an OFX/QFX bank export into the same date/amount/merchant
// handoff shape the CSV reader produces. Bank and credit card statements are
// both supported.
func ReadOFX(r io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var txns []model.Transaction
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			for _, ofxTx := range stmt.BankTranList.Transactions {
				txns = append(txns, convertOFXTransaction(ofxTx))
			}
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			for _, ofxTx := range stmt.BankTranList.Transactions {
				txns = append(txns, convertOFXTransaction(ofxTx))
			}
		}
	}

	if len(txns) == 0 {
		return nil, common.ErrNoTransactions
	}

	slog.Info("Parsed OFX file", "transactions", len(txns))
	return txns, nil
}

// preprocessOFX fixes common formatting issues in OFX files before parsing.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = ofxSeverityPattern.ReplaceAllStringFunc(content, strings.ToUpper)
	return ofxTagFixPattern.ReplaceAllString(content, "$1>")
}

func convertOFXTransaction(ofxTx ofxgo.Transaction) model.Transaction {
	// PAYEE is the cleanest merchant field when present; NAME otherwise,
	// MEMO as a last resort.
	raw := ""
	if ofxTx.Payee != nil && ofxTx.Payee.Name != "" {
		raw = string(ofxTx.Payee.Name)
	} else if ofxTx.Name != "" {
		raw = string(ofxTx.Name)
	} else {
		raw = string(ofxTx.Memo)
	}

	// OFX uses negative amounts for debits
	amount, _ := ofxTx.TrnAmt.Float64()
	if amount < 0 {
		amount = -amount
	}

	// DTPOSTED carries a time of day; only the calendar date matters here.
	posted := ofxTx.DtPosted.Time
	date := time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC)

	return model.Transaction{
		Date:               date,
		Amount:             amount,
		RawMerchant:        raw,
		NormalizedMerchant: NormalizeMerchant(raw),
		Source:             model.SourceUncategorized,
	}
}
