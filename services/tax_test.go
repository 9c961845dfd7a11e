package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTax(t *testing.T) {
	tests := []struct {
		name       string
		taxable    float64
		tdsPercent float64
		wantGST    float64
		wantTDS    float64
		wantNet    float64
	}{
		{
			name:       "standard agent commission",
			taxable:    30000,
			tdsPercent: DefaultTDSPercent,
			wantGST:    5400,
			wantTDS:    600,
			wantNet:    34800,
		},
		{
			name:       "sub agent slice",
			taxable:    10000,
			tdsPercent: DefaultTDSPercent,
			wantGST:    1800,
			wantTDS:    200,
			wantNet:    11600,
		},
		{
			name:       "agent slice after sub agent split",
			taxable:    20000,
			tdsPercent: DefaultTDSPercent,
			wantGST:    3600,
			wantTDS:    400,
			wantNet:    23200,
		},
		{
			name:       "zero taxable yields zero everything",
			taxable:    0,
			tdsPercent: DefaultTDSPercent,
			wantGST:    0,
			wantTDS:    0,
			wantNet:    0,
		},
		{
			name:       "custom tds percentage",
			taxable:    10000,
			tdsPercent: 10,
			wantGST:    1800,
			wantTDS:    1000,
			wantNet:    10800,
		},
		{
			name:       "zero tds still adds gst",
			taxable:    10000,
			tdsPercent: 0,
			wantGST:    1800,
			wantTDS:    0,
			wantNet:    11800,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTax(tt.taxable, tt.tdsPercent)
			assert.Equal(t, tt.wantGST, got.GST)
			assert.Equal(t, tt.wantTDS, got.TDS)
			assert.Equal(t, tt.wantNet, got.NetPayable)
		})
	}
}

func TestComputeTaxNetIdentity(t *testing.T) {
	// net payable must always equal taxable + GST - TDS, whatever the inputs
	for _, taxable := range []float64{1, 999.5, 30000, 1234567.89} {
		got := ComputeTax(taxable, DefaultTDSPercent)
		assert.InDelta(t, taxable+got.GST-got.TDS, got.NetPayable, 1e-9)
	}
}
