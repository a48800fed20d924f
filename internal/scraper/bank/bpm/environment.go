package bpm

import (
	"go.uber.org/zap"
)

// Environment is the deployment tier a transaction row belongs to. The
// string values are part of the wire contract with existing callers.
type Environment string

const (
	EnvironmentBUAT    Environment = "buat"
	EnvironmentUAT     Environment = "uat"
	EnvironmentUnknown Environment = "unknown"
)

// Inclusive range of the first numeric column that marks a BUAT row.
const (
	BUATRangeMin = 25
	BUATRangeMax = 29
)

// Classification is the human readable name of the tier.
func (e Environment) Classification() string {
	switch e {
	case EnvironmentBUAT:
		return "Business User Acceptance Testing"
	case EnvironmentUAT:
		return "User Acceptance Testing"
	default:
		return "Unknown Environment"
	}
}

func (e Environment) QualifyingRange() string {
	switch e {
	case EnvironmentBUAT:
		return "25-29"
	case EnvironmentUAT:
		return "Outside 25-29"
	default:
		return "No numeric values found"
	}
}

func (e Environment) Description() string {
	switch e {
	case EnvironmentBUAT:
		return "Business User Acceptance Testing environment"
	case EnvironmentUAT:
		return "User Acceptance Testing environment"
	default:
		return "Environment could not be determined"
	}
}

// Classifier maps extracted columns to an environment.
type Classifier interface {
	Classify(columns []Column) Environment
}

// ClassifyEnvironment looks at the first numeric column, in stored order,
// and ignores every later one.
func ClassifyEnvironment(columns []Column) Environment {
	col, ok := firstNumeric(columns)
	if !ok {
		return EnvironmentUnknown
	}
	v, _ := col.NumericValue()
	return classifyValue(v)
}

func classifyValue(v int) Environment {
	if v >= BUATRangeMin && v <= BUATRangeMax {
		return EnvironmentBUAT
	}
	return EnvironmentUAT
}

func firstNumeric(columns []Column) (Column, bool) {
	for _, c := range columns {
		if c.IsNumeric() {
			return c, true
		}
	}
	return Column{}, false
}

// DefaultClassifier is the uncached classifier. It logs which column
// decided the tier.
type DefaultClassifier struct {
	logger *zap.Logger
}

func NewClassifier(logger *zap.Logger) *DefaultClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultClassifier{logger: logger}
}

func (c *DefaultClassifier) Classify(columns []Column) Environment {
	col, ok := firstNumeric(columns)
	if !ok {
		c.logger.Info("no qualifying numeric column, environment unknown",
			zap.Int("columns", len(columns)))
		return EnvironmentUnknown
	}

	v, _ := col.NumericValue()
	env := classifyValue(v)
	c.logger.Info("environment detected",
		zap.String("environment", string(env)),
		zap.Int("position", col.Position),
		zap.Int("value", v))
	return env
}
