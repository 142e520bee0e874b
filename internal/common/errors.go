// Package common provides shared utilities and types used across the application.
package common

import "errors"

// Common application errors.
var (
	// Ingestion errors.
	ErrMissingColumns = errors.New("required columns missing")
	ErrNoTransactions = errors.New("no transactions found")
	ErrLowQuality     = errors.New("data quality too low")

	// LLM errors.
	ErrRateLimit   = errors.New("rate limit exceeded")
	ErrMaxRetries  = errors.New("max retries exceeded")
	ErrCostAborted = errors.New("session cost exceeded abort threshold")

	// Session errors.
	ErrSessionNotFound = errors.New("session not found")
	ErrRunInProgress   = errors.New("analysis already running for session")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
)

