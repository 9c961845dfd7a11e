package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finqube/loandesk_backend/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestBaseAmountForRule(t *testing.T) {
	lead := &models.Lead{LoanAmount: 1000000, DisbursedAmount: 400000}

	sanctioned := &models.CommissionRule{CommissionBasis: models.CommissionBasisSanctioned}
	assert.Equal(t, 1000000.0, BaseAmountForRule(sanctioned, lead))

	disbursed := &models.CommissionRule{CommissionBasis: models.CommissionBasisDisbursed}
	assert.Equal(t, 400000.0, BaseAmountForRule(disbursed, lead))
}

func TestCalculateCommission(t *testing.T) {
	tests := []struct {
		name       string
		rule       models.CommissionRule
		baseAmount float64
		wantAmount float64
		wantStatus string
	}{
		{
			name: "percentage of base",
			rule: models.CommissionRule{
				CommissionType:  models.CommissionTypePercentage,
				CommissionValue: 1.5,
			},
			baseAmount: 1000000,
			wantAmount: 15000,
			wantStatus: CalcStatusOK,
		},
		{
			name: "fixed amount ignores base",
			rule: models.CommissionRule{
				CommissionType:  models.CommissionTypeFixed,
				CommissionValue: 25000,
			},
			baseAmount: 1000000,
			wantAmount: 25000,
			wantStatus: CalcStatusOK,
		},
		{
			name: "zero base is pending not an error",
			rule: models.CommissionRule{
				CommissionType:  models.CommissionTypePercentage,
				CommissionValue: 1.5,
			},
			baseAmount: 0,
			wantAmount: 0,
			wantStatus: CalcStatusBasePending,
		},
		{
			name: "min clamp lifts a small result",
			rule: models.CommissionRule{
				CommissionType:  models.CommissionTypePercentage,
				CommissionValue: 1,
				MinCommission:   floatPtr(5000),
			},
			baseAmount: 100000,
			wantAmount: 5000,
			wantStatus: CalcStatusOK,
		},
		{
			name: "max clamp caps a large result",
			rule: models.CommissionRule{
				CommissionType:  models.CommissionTypePercentage,
				CommissionValue: 2,
				MaxCommission:   floatPtr(10000),
			},
			baseAmount: 1000000,
			wantAmount: 10000,
			wantStatus: CalcStatusOK,
		},
		{
			name: "result exactly at min is untouched",
			rule: models.CommissionRule{
				CommissionType:  models.CommissionTypePercentage,
				CommissionValue: 1,
				MinCommission:   floatPtr(10000),
			},
			baseAmount: 1000000,
			wantAmount: 10000,
			wantStatus: CalcStatusOK,
		},
		{
			name: "fixed amount is also clamped",
			rule: models.CommissionRule{
				CommissionType:  models.CommissionTypeFixed,
				CommissionValue: 50000,
				MaxCommission:   floatPtr(20000),
			},
			baseAmount: 1000000,
			wantAmount: 20000,
			wantStatus: CalcStatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, status := CalculateCommission(&tt.rule, tt.baseAmount)
			assert.Equal(t, tt.wantAmount, amount)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestValidateCommissionAllocation(t *testing.T) {
	percentageLimit := &models.FranchiseCommissionLimit{
		LimitType: models.LimitTypePercentage,
		Value:     5,
	}

	t.Run("within ceiling", func(t *testing.T) {
		assert.NoError(t, ValidateCommissionAllocation(percentageLimit, 3, 1, 1))
	})

	t.Run("exactly at ceiling", func(t *testing.T) {
		assert.NoError(t, ValidateCommissionAllocation(percentageLimit, 3, 1.5, 0.5))
	})

	t.Run("over ceiling", func(t *testing.T) {
		err := ValidateCommissionAllocation(percentageLimit, 3, 2, 1)
		require.Error(t, err)
		var invalid *InvalidCommissionError
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("missing limit", func(t *testing.T) {
		err := ValidateCommissionAllocation(nil, 3, 0, 0)
		require.Error(t, err)
		var precondition *PreconditionError
		assert.ErrorAs(t, err, &precondition)
	})

	t.Run("amount based limit cannot validate percentages", func(t *testing.T) {
		amountLimit := &models.FranchiseCommissionLimit{
			LimitType: models.LimitTypeAmount,
			Value:     100000,
		}
		err := ValidateCommissionAllocation(amountLimit, 3, 0, 0)
		require.Error(t, err)
		var precondition *PreconditionError
		assert.ErrorAs(t, err, &precondition)
	})
}
