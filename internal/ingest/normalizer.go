// Package ingest turns raw bank exports into the canonical transaction table:
// merchant normalization, deduplication, and data-quality validation.
package ingest

import (
	"regexp"
	"strings"
)

// Transaction-type markers banks prepend to descriptions.
var stripPrefixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^debit card purchase\s*-\s*`),
	regexp.MustCompile(`(?i)^purchase\s*-\s*`),
	regexp.MustCompile(`(?i)^debit\s*-\s*`),
	regexp.MustCompile(`(?i)^e-transfer (from|to)\s+`),
	regexp.MustCompile(`(?i)^interac e-transfer\s+`),
	regexp.MustCompile(`(?i)^pos purchase\s*-\s*`),
	regexp.MustCompile(`(?i)^online payment\s*-\s*`),
	regexp.MustCompile(`(?i)^preauth(orized)?\s+`),
}

// "AMAZON.COM*MX123456" -> "AMAZON.COM". The token must contain a digit so
// real words like "HORTONS" survive.
var onlineOrderPattern = regexp.MustCompile(`[*\s]+[A-Z0-9]*\d[A-Z0-9]{4,}$`)

// "STARBUCKS #1234 ON 5TH ST" -> "STARBUCKS"
var storeCodePattern = regexp.MustCompile(`(?i)\s+#\d+.*$|\s+\d{3,}.*$|\s+store\s+.*$`)

// "CANADIAN TIRE TORONTO ON" -> "CANADIAN TIRE": trailing city word plus a
// two-letter province/state code.
var locationPattern = regexp.MustCompile(`\s+[A-Z]{3,}\s+(AB|BC|MB|NB|NL|NS|NT|NU|ON|PE|QC|SK|YT)$`)

// "STARBUCKS ON KING ST" -> "STARBUCKS"
var streetPattern = regexp.MustCompile(`\s+(ON|AT)\s+[A-Z0-9]+\s+(ST|AVE|RD|BLVD|DR|HWY|WAY)$`)

// Runs of whitespace and punctuation collapse to a single space.
var punctRunPattern = regexp.MustCompile(`[^A-Z0-9]+`)

// NormalizeMerchant canonicalizes raw merchant text into the stable uppercase
// alphanumeric key used by rules, the cache, and deduplication. The transform
// chain runs to a fixed point, so the result is idempotent:
// NormalizeMerchant(NormalizeMerchant(s)) == NormalizeMerchant(s).
func NormalizeMerchant(raw string) string {
	m := strings.ToUpper(strings.TrimSpace(raw))
	if m == "" {
		return ""
	}

	for range [4]struct{}{} {
		next := normalizePass(m)
		if next == m {
			break
		}
		m = next
	}

	// fallback: keep the uppercased original if everything was stripped
	if m == "" {
		return strings.ToUpper(strings.TrimSpace(raw))
	}
	return m
}

func normalizePass(m string) string {
	for _, p := range stripPrefixes {
		m = strings.TrimSpace(p.ReplaceAllString(m, ""))
	}
	m = strings.TrimSpace(onlineOrderPattern.ReplaceAllString(m, ""))
	m = strings.TrimSpace(storeCodePattern.ReplaceAllString(m, ""))
	m = strings.TrimSpace(locationPattern.ReplaceAllString(m, ""))
	m = strings.TrimSpace(streetPattern.ReplaceAllString(m, ""))
	m = strings.TrimSpace(punctRunPattern.ReplaceAllString(m, " "))
	return m
}
