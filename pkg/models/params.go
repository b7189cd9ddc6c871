package models

// Engine parameters arrive from the request layer as query strings; each enum
// has a Parse helper that maps unknown values to a ConfigurationError.

type GroupBy string

const (
	GroupByDay     GroupBy = "day"
	GroupByWeek    GroupBy = "week"
	GroupByMonth   GroupBy = "month"
	GroupByQuarter GroupBy = "quarter"
)

func ParseGroupBy(s string) (GroupBy, error) {
	switch GroupBy(s) {
	case GroupByDay, GroupByWeek, GroupByMonth, GroupByQuarter:
		return GroupBy(s), nil
	case "":
		return GroupByMonth, nil
	}
	return "", &ConfigurationError{Param: "groupBy", Value: s}
}

type ModelType string

const (
	ModelLinear      ModelType = "linear"
	ModelExponential ModelType = "exponential"
	ModelSeasonal    ModelType = "seasonal"
	// ModelAuto lets the forecaster pick from trend/seasonality strength.
	ModelAuto ModelType = "auto"
)

func ParseModelType(s string) (ModelType, error) {
	switch ModelType(s) {
	case ModelLinear, ModelExponential, ModelSeasonal, ModelAuto:
		return ModelType(s), nil
	case "":
		return ModelAuto, nil
	}
	return "", &ConfigurationError{Param: "modelType", Value: s}
}

type SensitivityLevel string

const (
	SensitivityLow    SensitivityLevel = "low"
	SensitivityMedium SensitivityLevel = "medium"
	SensitivityHigh   SensitivityLevel = "high"
)

func ParseSensitivity(s string) (SensitivityLevel, error) {
	switch SensitivityLevel(s) {
	case SensitivityLow, SensitivityMedium, SensitivityHigh:
		return SensitivityLevel(s), nil
	case "":
		return SensitivityMedium, nil
	}
	return "", &ConfigurationError{Param: "sensitivityLevel", Value: s}
}

type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

type Severity string

const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)
