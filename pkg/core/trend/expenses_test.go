package trend

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"finpulse/pkg/models"
)

func expense(category string, day int, monthOffset int, amount float64) models.Expense {
	return models.Expense{
		ID:         uuid.New(),
		Category:   category,
		Amount:     amount,
		IncurredAt: time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC).AddDate(0, monthOffset, 0),
	}
}

func TestExpensePatternsExcludeSparseCategories(t *testing.T) {
	r := models.DateRange{
		Start: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC),
	}
	expenses := []models.Expense{
		// 4 observations -> included
		expense("software", 10, 0, 100),
		expense("software", 10, 1, 150),
		expense("software", 10, 2, 200),
		expense("software", 10, 3, 260),
		// 2 observations -> excluded, not zero-filled
		expense("travel", 5, 0, 500),
		expense("travel", 5, 1, 700),
	}

	patterns, err := AnalyzeExpensePatterns(expenses, r, models.GroupByMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(patterns) != 1 {
		t.Fatalf("Expected 1 pattern, got %d", len(patterns))
	}
	p := patterns[0]
	if p.Category != "software" {
		t.Errorf("Expected software, got %s", p.Category)
	}
	if p.Direction != models.TrendIncreasing {
		t.Errorf("Expected increasing, got %s", p.Direction)
	}
	// 100 -> 260 is +160%
	if p.ChangeRatePercent < 159.9 || p.ChangeRatePercent > 160.1 {
		t.Errorf("Expected change rate 160, got %f", p.ChangeRatePercent)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		t.Errorf("Confidence out of [0,1]: %f", p.Confidence)
	}
	if len(p.Recommendations) == 0 {
		t.Error("Fast-growing category should trigger a recommendation")
	}
}

func TestExpensePatternsIgnoreBaselineRows(t *testing.T) {
	// Rows before the range come from the store's baseline fetch; they must
	// not push a sparse category over the observation minimum.
	r := models.DateRange{
		Start: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC),
	}
	expenses := []models.Expense{
		// 2 in-range observations plus 2 baseline ones -> still excluded
		expense("travel", 5, -2, 400),
		expense("travel", 5, -1, 450),
		expense("travel", 5, 0, 500),
		expense("travel", 5, 1, 700),
	}

	patterns, err := AnalyzeExpensePatterns(expenses, r, models.GroupByMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patterns) != 0 {
		t.Fatalf("Expected no patterns, got %d", len(patterns))
	}
}

func TestExpensePatternsInvalidRange(t *testing.T) {
	r := models.DateRange{
		Start: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	if _, err := AnalyzeExpensePatterns(nil, r, models.GroupByMonth); err == nil {
		t.Fatal("Expected error for inverted range")
	}
}

func TestExpensePatternsSortedByCategory(t *testing.T) {
	r := models.DateRange{
		Start: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
	}
	var expenses []models.Expense
	for _, cat := range []string{"rent", "ads", "payroll"} {
		for m := 0; m < 3; m++ {
			expenses = append(expenses, expense(cat, 15, m, 100))
		}
	}

	patterns, err := AnalyzeExpensePatterns(expenses, r, models.GroupByMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patterns) != 3 {
		t.Fatalf("Expected 3 patterns, got %d", len(patterns))
	}
	if patterns[0].Category != "ads" || patterns[1].Category != "payroll" || patterns[2].Category != "rent" {
		t.Errorf("Patterns not sorted: %s %s %s", patterns[0].Category, patterns[1].Category, patterns[2].Category)
	}
}
