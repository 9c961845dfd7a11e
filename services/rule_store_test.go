package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/finqube/loandesk_backend/models"
)

func activeRule(loanType string, from time.Time, to *time.Time, value float64) models.CommissionRule {
	return models.CommissionRule{
		ID:              primitive.NewObjectID(),
		LoanType:        loanType,
		CommissionType:  models.CommissionTypePercentage,
		CommissionValue: value,
		EffectiveFrom:   from,
		EffectiveTo:     to,
		Status:          "active",
	}
}

func TestSelectRule(t *testing.T) {
	asOf := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	jan := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	may := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("exact loan type beats wildcard", func(t *testing.T) {
		rules := []models.CommissionRule{
			activeRule(models.LoanTypeAll, jan, nil, 1),
			activeRule("home_loan", jan, nil, 2),
		}
		got := SelectRule(rules, "home_loan", asOf)
		require.NotNil(t, got)
		assert.Equal(t, 2.0, got.CommissionValue)
	})

	t.Run("wildcard covers loan types with no specific rule", func(t *testing.T) {
		rules := []models.CommissionRule{
			activeRule(models.LoanTypeAll, jan, nil, 1),
			activeRule("home_loan", jan, nil, 2),
		}
		got := SelectRule(rules, "personal_loan", asOf)
		require.NotNil(t, got)
		assert.Equal(t, 1.0, got.CommissionValue)
	})

	t.Run("latest effectiveFrom wins among overlapping rules", func(t *testing.T) {
		rules := []models.CommissionRule{
			activeRule("home_loan", jan, nil, 1),
			activeRule("home_loan", may, nil, 3),
			activeRule("home_loan", mar, nil, 2),
		}
		got := SelectRule(rules, "home_loan", asOf)
		require.NotNil(t, got)
		assert.Equal(t, 3.0, got.CommissionValue)
	})

	t.Run("future rules are ignored", func(t *testing.T) {
		future := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
		rules := []models.CommissionRule{
			activeRule("home_loan", jan, nil, 1),
			activeRule("home_loan", future, nil, 9),
		}
		got := SelectRule(rules, "home_loan", asOf)
		require.NotNil(t, got)
		assert.Equal(t, 1.0, got.CommissionValue)
	})

	t.Run("expired rules are ignored", func(t *testing.T) {
		expiry := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		rules := []models.CommissionRule{
			activeRule("home_loan", jan, &expiry, 9),
			activeRule(models.LoanTypeAll, jan, nil, 1),
		}
		got := SelectRule(rules, "home_loan", asOf)
		require.NotNil(t, got)
		assert.Equal(t, 1.0, got.CommissionValue)
	})

	t.Run("inclusive effectiveTo boundary", func(t *testing.T) {
		rules := []models.CommissionRule{
			activeRule("home_loan", jan, &asOf, 2),
		}
		got := SelectRule(rules, "home_loan", asOf)
		require.NotNil(t, got)
		assert.Equal(t, 2.0, got.CommissionValue)
	})

	t.Run("inactive rules never match", func(t *testing.T) {
		inactive := activeRule("home_loan", jan, nil, 2)
		inactive.Status = "inactive"
		got := SelectRule([]models.CommissionRule{inactive}, "home_loan", asOf)
		assert.Nil(t, got)
	})

	t.Run("no candidate returns nil", func(t *testing.T) {
		got := SelectRule(nil, "home_loan", asOf)
		assert.Nil(t, got)
	})
}
