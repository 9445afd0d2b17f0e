package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatINR(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "₹0"},
		{999, "₹999"},
		{1000, "₹1,000"},
		{15960, "₹15,960"},
		{150000, "₹1,50,000"},
		{12345678, "₹1,23,45,678"},
		{-2500, "₹-2,500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatINR(tt.in), "FormatINR(%d)", tt.in)
	}
}

func TestImprovement_String(t *testing.T) {
	assert.Equal(t, "Use mulching (₹2,000-3,000/ha)", Improvement{Description: "Use mulching", CostLow: 2000, CostHigh: 3000}.String())
	assert.Equal(t, "Practice crop rotation", Improvement{Description: "Practice crop rotation"}.String())
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw  string
		want Amount
	}{
		{`50000`, 50000},
		{`"50000"`, 50000},
		{`"50,000"`, 50000},
		{`"₹ 1,20,000"`, 120000},
		{`""`, 0},
		{`null`, 0},
	}
	for _, tt := range tests {
		var u struct {
			Budget Amount `json:"budget"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"budget":`+tt.raw+`}`), &u), tt.raw)
		assert.Equal(t, tt.want, u.Budget, tt.raw)
	}
}

func TestAmount_UnmarshalJSON_Invalid(t *testing.T) {
	var a Amount
	assert.Error(t, json.Unmarshal([]byte(`"lots"`), &a))
	assert.Error(t, json.Unmarshal([]byte(`true`), &a))
}
