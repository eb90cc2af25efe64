package instrument

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRoot(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"NQH6", "NQ"},
		{"MESZ25", "MES"},
		{"6EM5", "6E"},
		{"M2KU4", "M2K"},
		{"ES", "ES"},
		{"NQH", "NQH"},
		{"AAPL", "AAPL"},
		{"CLA6", "CLA6"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractRoot(tt.symbol))
		})
	}
}

func TestCommission(t *testing.T) {
	tests := []struct {
		name string
		root string
		qty  int
		want float64
	}{
		{name: "NQ round trip", root: "NQ", qty: 1, want: 4.76},
		{name: "MES round trip", root: "MES", qty: 1, want: 1.62},
		{name: "MES three lots", root: "MES", qty: 3, want: 4.86},
		{name: "CL", root: "CL", qty: 2, want: 9.92},
		{name: "unknown root is free", root: "XYZ", qty: 5, want: 0},
		{name: "zero qty", root: "ES", qty: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Commission(tt.root, tt.qty))
		})
	}

	_, ok := CommissionRate("NQ")
	assert.True(t, ok)
	_, ok = CommissionRate("BTC")
	assert.False(t, ok)
}

func TestResolveMultiplier(t *testing.T) {
	assert.Equal(t, 20.0, ResolveMultiplier("NQ", 0, 25000))
	assert.Equal(t, 20.0, ResolveMultiplier("NQ", 505420, 25271), "inferred from notional")
	assert.Equal(t, 50.0, ResolveMultiplier("XX", 250000, 5000), "inference beats the table")
	assert.Equal(t, 0.5, ResolveMultiplier("MYM", -1, 40000))
	assert.Equal(t, 1.0, ResolveMultiplier("XYZ", 0, 0))
	assert.Equal(t, 1.0, ResolveMultiplier("XYZ", 100, 0))
}

func TestResolverCachesFirstInference(t *testing.T) {
	r := NewResolver()

	assert.Equal(t, 5.0, r.Multiplier("MES"), "static fallback before priming")

	r.Prime("MES", 30000, 6000)
	r.Prime("MES", 60000, 6000)
	assert.Equal(t, 5.0, r.Multiplier("MES"))

	r.Prime("ABC", 0, 10)
	assert.Equal(t, 1.0, r.Multiplier("ABC"))
	r.Prime("ABC", 1000, 10)
	assert.Equal(t, 100.0, r.Multiplier("ABC"))
}
