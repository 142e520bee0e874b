// Package model defines the core domain models used throughout the application.
package model

import (
	"strings"
	"time"
)

// CategorySource indicates which stage of the pipeline categorized a transaction.
type CategorySource string

// Category source constants.
const (
	SourceRule          CategorySource = "rule"
	SourceCache         CategorySource = "cache"
	SourceLLM           CategorySource = "llm"
	SourceUncategorized CategorySource = "uncategorized"
)

// TrustThreshold is the minimum confidence for a categorization to be
// treated as trusted by the statistical tools.
const TrustThreshold = 0.7

// Transaction represents a single financial transaction. Amount is positive
// for spending; income and transfers are distinguished by category.
type Transaction struct {
	Date               time.Time      `json:"date"`
	RawMerchant        string         `json:"raw_merchant"`
	NormalizedMerchant string         `json:"merchant"`
	Category           string         `json:"category,omitempty"`
	Source             CategorySource `json:"source"`
	Amount             float64        `json:"amount"`
	Confidence         float64        `json:"confidence"`
}

// Categorized reports whether the transaction has a category assigned.
func (t *Transaction) Categorized() bool {
	return t.Category != "" && t.Category != CategoryUncategorized
}

// Trusted reports whether the categorization is confident enough for
// downstream statistics.
func (t *Transaction) Trusted() bool {
	return t.Categorized() && t.Confidence >= TrustThreshold
}

// Known categories. The LLM fallback is constrained to this set; anything
// outside it degrades to Uncategorized.
const (
	CategoryGroceries      = "Groceries"
	CategoryDelivery       = "Delivery"
	CategoryDining         = "Dining"
	CategoryTransport      = "Transport"
	CategorySubscriptions  = "Subscriptions"
	CategoryShopping       = "Shopping"
	CategoryEntertainment  = "Entertainment"
	CategoryHealth         = "Health"
	CategoryBillsUtilities = "Bills & Utilities"
	CategoryRentHousing    = "Rent & Housing"
	CategoryEducation      = "Education"
	CategoryInsurance      = "Insurance"
	CategoryPersonalCare   = "Personal Care"
	CategoryChildcare      = "Childcare"
	CategoryIncome         = "Income"
	CategoryTransfer       = "Transfer"
	CategoryUncategorized  = "Uncategorized"
)

// Categories lists every category the pipeline may assign.
var Categories = []string{
	CategoryGroceries, CategoryDelivery, CategoryDining, CategoryTransport,
	CategorySubscriptions, CategoryShopping, CategoryEntertainment,
	CategoryHealth, CategoryBillsUtilities, CategoryRentHousing,
	CategoryEducation, CategoryInsurance, CategoryPersonalCare,
	CategoryChildcare, CategoryIncome, CategoryTransfer, CategoryUncategorized,
}

// essentialCategories are categories the savings plan must never target.
var essentialCategories = map[string]struct{}{
	strings.ToLower(CategoryGroceries):      {},
	strings.ToLower(CategoryRentHousing):    {},
	strings.ToLower(CategoryHealth):         {},
	strings.ToLower(CategoryBillsUtilities): {},
	strings.ToLower(CategoryEducation):      {},
	strings.ToLower(CategoryInsurance):      {},
	strings.ToLower(CategoryChildcare):      {},
}

// discretionaryCategories are the only categories eligible for savings
// opportunities. Disjoint from the essential set.
var discretionaryCategories = map[string]struct{}{
	strings.ToLower(CategoryDining):        {},
	strings.ToLower(CategoryDelivery):      {},
	strings.ToLower(CategoryShopping):      {},
	strings.ToLower(CategoryEntertainment): {},
	strings.ToLower(CategoryPersonalCare):  {},
	strings.ToLower(CategorySubscriptions): {},
}

// EssentialCategories returns the protected essential category names.
func EssentialCategories() []string {
	return []string{
		CategoryGroceries, CategoryRentHousing, CategoryHealth,
		CategoryBillsUtilities, CategoryEducation, CategoryInsurance,
		CategoryChildcare,
	}
}

// IsEssential reports whether a category belongs to the protected essential set.
func IsEssential(category string) bool {
	_, ok := essentialCategories[strings.ToLower(category)]
	return ok
}

// IsDiscretionary reports whether a category is eligible for savings suggestions.
func IsDiscretionary(category string) bool {
	_, ok := discretionaryCategories[strings.ToLower(category)]
	return ok
}

// IsSpending reports whether a category counts toward spending totals.
// Income and transfers are excluded from every statistical tool.
func IsSpending(category string) bool {
	switch strings.ToLower(category) {
	case "", "income", "transfer":
		return false
	}
	return true
}

// ValidCategory reports whether the name is in the known category set.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}
