package bpm

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func numericColumns(values ...int) []Column {
	cols := make([]Column, len(values))
	for i, v := range values {
		cols[i] = NewNumericColumn(i+1, "", v)
	}
	return cols
}

func TestClassifyEnvironment_Boundaries(t *testing.T) {
	tests := []struct {
		value int
		want  Environment
	}{
		{value: 24, want: EnvironmentUAT},
		{value: 25, want: EnvironmentBUAT},
		{value: 27, want: EnvironmentBUAT},
		{value: 29, want: EnvironmentBUAT},
		{value: 30, want: EnvironmentUAT},
		{value: 0, want: EnvironmentUAT},
		{value: -26, want: EnvironmentUAT},
	}

	for _, tc := range tests {
		t.Run(strconv.Itoa(tc.value), func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyEnvironment(numericColumns(tc.value)))
		})
	}
}

func TestClassifyEnvironment(t *testing.T) {
	tests := []struct {
		name    string
		columns []Column
		want    Environment
	}{
		{name: "nil", columns: nil, want: EnvironmentUnknown},
		{name: "empty", columns: []Column{}, want: EnvironmentUnknown},
		{
			name:    "no numeric column",
			columns: []Column{NewTextColumn(1, "REF"), NewTextColumn(2, "SWIFT")},
			want:    EnvironmentUnknown,
		},
		{
			name:    "extraction errors are not numeric",
			columns: []Column{ExtractionErrorColumn(1), NewNumericColumn(2, "26", 26)},
			want:    EnvironmentBUAT,
		},
		{
			name: "first numeric decides over later ones",
			columns: []Column{
				NewTextColumn(1, "REF"),
				NewNumericColumn(2, "15-PROD", 15),
				NewNumericColumn(3, "27", 27),
			},
			want: EnvironmentUAT,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyEnvironment(tc.columns))
		})
	}
}

func TestClassifyEnvironment_FirstMatchLaw(t *testing.T) {
	head := NewNumericColumn(1, "26", 26)
	tails := [][]int{{10, 99}, {99, 10}, {27, 5, 300}, {300, 5, 27}}

	for _, tail := range tails {
		cols := append([]Column{head}, numericColumns(tail...)...)
		assert.Equal(t, EnvironmentBUAT, ClassifyEnvironment(cols), "tail %v", tail)
	}
}

func TestClassifier_Idempotent(t *testing.T) {
	c := NewClassifier(nil)
	cols := []Column{NewTextColumn(1, "REF"), NewNumericColumn(2, "28", 28)}

	first := c.Classify(cols)
	second := c.Classify(cols)

	assert.Equal(t, first, second)
	assert.Equal(t, EnvironmentBUAT, first)
}

func TestClassifier_LogsDecidingColumn(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := NewClassifier(zap.New(core))

	c.Classify([]Column{NewTextColumn(1, "REF"), NewNumericColumn(2, "15-PROD", 15)})

	entries := logs.FilterMessage("environment detected").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "uat", fields["environment"])
		assert.EqualValues(t, 2, fields["position"])
		assert.EqualValues(t, 15, fields["value"])
	}
}

func TestEnvironment_Descriptions(t *testing.T) {
	assert.Equal(t, "Business User Acceptance Testing", EnvironmentBUAT.Classification())
	assert.Equal(t, "25-29", EnvironmentBUAT.QualifyingRange())
	assert.Equal(t, "Outside 25-29", EnvironmentUAT.QualifyingRange())
	assert.Equal(t, "Unknown Environment", EnvironmentUnknown.Classification())
	assert.Equal(t, "Environment could not be determined", EnvironmentUnknown.Description())
}
