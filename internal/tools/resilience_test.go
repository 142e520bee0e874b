package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shirly8/sift/internal/model"
)

// surplusHousehold yields six months of $5000 income against $3000 spend.
func surplusHousehold() []model.Transaction {
	start := date(2025, time.January, 1)

	var txns []model.Transaction
	for i := 0; i < 6; i++ {
		m := start.AddDate(0, i, 0)
		txns = append(txns,
			income(m, 5000),
			spend(m, "LANDLORD", model.CategoryRentHousing, 1200),
			spend(m.AddDate(0, 0, 3), "LOBLAWS", model.CategoryGroceries, 800),
			spend(m.AddDate(0, 0, 5), "BISTRO", model.CategoryDining, 400),
			spend(m.AddDate(0, 0, 8), "CINEMA", model.CategoryEntertainment, 300),
			spend(m.AddDate(0, 0, 12), "MALL", model.CategoryShopping, 200),
			spend(m.AddDate(0, 0, 15), "DOORDASH", model.CategoryDelivery, 100),
		)
	}
	return txns
}

func TestFinancialResilience_Runway(t *testing.T) {
	result := FinancialResilience(surplusHousehold())
	require.NotNil(t, result)
	require.NotNil(t, result.Runway)

	runway := result.Runway
	assert.InDelta(t, 3000, runway.MonthlyBurn, 0.001)
	assert.InDelta(t, 5000, runway.MonthlyIncome, 0.001)
	assert.InDelta(t, 2000, runway.NetMonthly, 0.001)
	assert.InDelta(t, 12000, runway.EstimatedSavings, 0.001)
	assert.InDelta(t, 4.0, runway.MonthsOfRunway, 0.001)
}

func TestFinancialResilience_StressTest(t *testing.T) {
	result := FinancialResilience(surplusHousehold())
	require.NotNil(t, result)
	require.NotNil(t, result.StressTest)

	stress := result.StressTest
	assert.Equal(t, "job_loss", stress.Scenario)
	assert.InDelta(t, 12000, stress.EstimatedSavings, 0.001)
	// essentials only: rent 1200 plus groceries 800
	assert.InDelta(t, 2000, stress.MinimumBudget, 0.001)

	// spend is nearly deterministic, so the simulated runway hugs 4 months
	assert.InDelta(t, 4.0, stress.MonthsOfRunway, 0.2)
	assert.LessOrEqual(t, stress.RunwayP10, stress.MonthsOfRunway)
	assert.LessOrEqual(t, stress.MonthsOfRunway, stress.RunwayP90)
}

func TestFinancialResilience_CutsAreDiscretionary(t *testing.T) {
	result := FinancialResilience(surplusHousehold())
	require.NotNil(t, result)
	require.NotNil(t, result.StressTest)

	cuts := result.StressTest.CategoriesToCut
	require.Len(t, cuts, 3)
	assert.Equal(t, model.CategoryDining, cuts[0].Category)
	assert.Equal(t, model.CategoryEntertainment, cuts[1].Category)
	assert.Equal(t, model.CategoryShopping, cuts[2].Category)
	for _, cut := range cuts {
		assert.False(t, model.IsEssential(cut.Category), "cut targets essential category %s", cut.Category)
	}
}

func TestFinancialResilience_NoSurplusNoStressTest(t *testing.T) {
	start := date(2025, time.January, 1)
	txns := []model.Transaction{
		income(start, 1000),
		spend(start.AddDate(0, 0, 2), "LANDLORD", model.CategoryRentHousing, 1200),
		spend(start.AddDate(0, 1, 2), "LANDLORD", model.CategoryRentHousing, 1200),
	}

	result := FinancialResilience(txns)
	require.NotNil(t, result)
	require.NotNil(t, result.Runway)
	assert.Zero(t, result.Runway.MonthsOfRunway)
	assert.Nil(t, result.StressTest)
}

func TestFinancialResilience_NoSpending(t *testing.T) {
	assert.Nil(t, FinancialResilience([]model.Transaction{income(date(2025, time.March, 1), 5000)}))
}
