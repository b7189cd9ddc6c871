package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLinearRegressionPerfectLine(t *testing.T) {
	// y = 2x + 5 over x = 0..4. OLS must recover slope/intercept exactly
	// and R^2 = 1 since residuals are zero.
	values := []float64{5, 7, 9, 11, 13}

	reg := LinearRegression(values)

	if !almostEqual(reg.Slope, 2) {
		t.Errorf("Expected slope 2, got %f", reg.Slope)
	}
	if !almostEqual(reg.Intercept, 5) {
		t.Errorf("Expected intercept 5, got %f", reg.Intercept)
	}
	if !almostEqual(reg.RSquared, 1) {
		t.Errorf("Expected R^2 1, got %f", reg.RSquared)
	}
}

func TestLinearRegressionNoisy(t *testing.T) {
	// Hand-computed: x = 0,1,2,3; y = 1,3,2,5
	// sumX=6 sumY=11 sumXY=0+3+4+15=22 sumXX=14 n=4
	// slope = (4*22 - 6*11) / (4*14 - 36) = (88-66)/20 = 1.1
	// intercept = (11 - 1.1*6)/4 = 4.4/4 = 1.1
	values := []float64{1, 3, 2, 5}

	reg := LinearRegression(values)

	if !almostEqual(reg.Slope, 1.1) {
		t.Errorf("Expected slope 1.1, got %f", reg.Slope)
	}
	if !almostEqual(reg.Intercept, 1.1) {
		t.Errorf("Expected intercept 1.1, got %f", reg.Intercept)
	}
	if reg.RSquared < 0 || reg.RSquared > 1 {
		t.Errorf("R^2 out of [0,1]: %f", reg.RSquared)
	}
}

func TestLinearRegressionDegenerate(t *testing.T) {
	if reg := LinearRegression([]float64{42}); reg.Slope != 0 || reg.Intercept != 0 {
		t.Errorf("Single point should return zero regression, got %+v", reg)
	}
	if reg := LinearRegression(nil); reg != (Regression{}) {
		t.Errorf("Empty input should return zero regression, got %+v", reg)
	}

	// Constant series: slope 0, R^2 defined as 0 (no variance to explain)
	reg := LinearRegression([]float64{10, 10, 10, 10})
	if !almostEqual(reg.Slope, 0) || !almostEqual(reg.RSquared, 0) {
		t.Errorf("Constant series: expected slope 0 R^2 0, got %+v", reg)
	}
}

func TestStandardDeviationPopulation(t *testing.T) {
	// Population stddev of {2,4,4,4,5,5,7,9}: mean = 5, variance = 4, sd = 2
	sd := StandardDeviation([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if !almostEqual(sd, 2) {
		t.Errorf("Expected population stddev 2, got %f", sd)
	}

	if sd := StandardDeviation(nil); sd != 0 {
		t.Errorf("Empty input: expected 0, got %f", sd)
	}
}

func TestMovingAverageTrailingWindow(t *testing.T) {
	// window 3 over {1,2,3,4,5}:
	// i=0 -> 1; i=1 -> 1.5; i=2 -> 2; i=3 -> 3; i=4 -> 4
	out := MovingAverage([]float64{1, 2, 3, 4, 5}, 3)

	expected := []float64{1, 1.5, 2, 3, 4}
	for i, want := range expected {
		if !almostEqual(out[i], want) {
			t.Errorf("index %d: expected %f, got %f", i, want, out[i])
		}
	}

	if out := MovingAverage([]float64{1, 2}, 0); out != nil {
		t.Errorf("window 0 should return nil")
	}
}

func TestPercentageChange(t *testing.T) {
	if got := PercentageChange(150, 100); !almostEqual(got, 50) {
		t.Errorf("Expected 50, got %f", got)
	}
	if got := PercentageChange(50, 100); !almostEqual(got, -50) {
		t.Errorf("Expected -50, got %f", got)
	}
	// Negative base: change is measured against |previous|
	if got := PercentageChange(-50, -100); !almostEqual(got, 50) {
		t.Errorf("Expected 50 against negative base, got %f", got)
	}
	// Zero previous rules
	if got := PercentageChange(10, 0); got != 100 {
		t.Errorf("Expected 100 for growth from zero, got %f", got)
	}
	if got := PercentageChange(0, 0); got != 0 {
		t.Errorf("Expected 0 for zero over zero, got %f", got)
	}
	if got := PercentageChange(-10, 0); got != 0 {
		t.Errorf("Expected 0 for negative from zero, got %f", got)
	}
}

func TestCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	yUp := []float64{2, 4, 6, 8, 10}
	yDown := []float64{10, 8, 6, 4, 2}

	if got := Correlation(x, yUp); !almostEqual(got, 1) {
		t.Errorf("Expected +1, got %f", got)
	}
	if got := Correlation(x, yDown); !almostEqual(got, -1) {
		t.Errorf("Expected -1, got %f", got)
	}

	// Degenerate cases all collapse to 0
	if got := Correlation(x, []float64{1, 2}); got != 0 {
		t.Errorf("Mismatched lengths: expected 0, got %f", got)
	}
	if got := Correlation(nil, nil); got != 0 {
		t.Errorf("Empty: expected 0, got %f", got)
	}
	if got := Correlation(x, []float64{3, 3, 3, 3, 3}); got != 0 {
		t.Errorf("Zero variance: expected 0, got %f", got)
	}
}

func TestSafeRatio(t *testing.T) {
	if got := SafeRatio(120, 80); !almostEqual(got, 1.5) {
		t.Errorf("Expected 1.5, got %f", got)
	}
	if got := SafeRatio(120, 0); got != 0 {
		t.Errorf("Zero denominator: expected 0, got %f", got)
	}
	if got := SafeRatio(120, -40); got != 0 {
		t.Errorf("Negative denominator: expected 0, got %f", got)
	}
}
