package bpm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func intPtr(v int) *int { return &v }

func TestNewColumn(t *testing.T) {
	t.Run("numeric", func(t *testing.T) {
		src := 25
		c := NewColumn(3, "25-Q1", &src)
		src = 99 // the column keeps its own copy

		v, ok := c.NumericValue()
		assert.True(t, c.IsNumeric())
		assert.True(t, ok)
		assert.Equal(t, 25, v)
	})

	t.Run("text", func(t *testing.T) {
		c := NewColumn(2, "PENDING", nil)

		v, ok := c.NumericValue()
		assert.False(t, c.IsNumeric())
		assert.False(t, ok)
		assert.Zero(t, v)
	})

	t.Run("extraction error", func(t *testing.T) {
		c := ExtractionErrorColumn(4)

		assert.Equal(t, 4, c.Position)
		assert.Equal(t, ExtractionError, c.Text)
		assert.False(t, c.IsNumeric())
	})
}

func TestColumn_String(t *testing.T) {
	assert.Equal(t, "Col1: TXN123", NewTextColumn(1, "TXN123").String())
}

func TestColumn_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		col  Column
		want string
	}{
		{
			name: "numeric",
			col:  NewNumericColumn(3, "25-Q1", 25),
			want: `{"position":3,"value":"25-Q1","is_numeric":true,"numeric_value":25}`,
		},
		{
			name: "text",
			col:  NewTextColumn(2, "PENDING"),
			want: `{"position":2,"value":"PENDING","is_numeric":false,"numeric_value":null}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.col)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(data))
		})
	}
}

func TestColumn_UnmarshalJSON_FlagIsAuthoritative(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantNumeric bool
	}{
		{name: "value without flag", input: `{"position":1,"value":"x","is_numeric":false,"numeric_value":25}`},
		{name: "flag without value", input: `{"position":1,"value":"x","is_numeric":true,"numeric_value":null}`},
		{name: "consistent", input: `{"position":1,"value":"25","is_numeric":true,"numeric_value":25}`, wantNumeric: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var c Column
			require.NoError(t, json.Unmarshal([]byte(tc.input), &c))

			_, ok := c.NumericValue()
			assert.Equal(t, tc.wantNumeric, c.IsNumeric())
			assert.Equal(t, tc.wantNumeric, ok)
		})
	}
}

func TestColumn_MarshalYAML(t *testing.T) {
	data, err := yaml.Marshal(NewNumericColumn(4, "27", 27))
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "position: 4")
	assert.Contains(t, out, "is_numeric: true")
	assert.Contains(t, out, "numeric_value: 27")
}
