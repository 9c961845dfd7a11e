package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/finqube/loandesk_backend/models"
)

func approvedInvoice(agentID, franchiseID *primitive.ObjectID, commission float64) models.Invoice {
	tax := ComputeTax(commission, DefaultTDSPercent)
	return models.Invoice{
		ID:               primitive.NewObjectID(),
		AgentID:          agentID,
		FranchiseID:      franchiseID,
		CommissionAmount: commission,
		GSTAmount:        tax.GST,
		TDSAmount:        tax.TDS,
		TDSPercentage:    DefaultTDSPercent,
		NetPayable:       tax.NetPayable,
		Status:           models.InvoiceStatusApproved,
	}
}

func TestGroupByPayee(t *testing.T) {
	agentA := primitive.NewObjectID()
	agentB := primitive.NewObjectID()
	franchise := primitive.NewObjectID()

	t.Run("buckets by payee across leads", func(t *testing.T) {
		invoices := []models.Invoice{
			approvedInvoice(&agentA, nil, 30000),
			approvedInvoice(&agentA, nil, 15000),
			approvedInvoice(&agentB, nil, 10000),
			approvedInvoice(nil, &franchise, 20000),
		}

		groups, err := GroupByPayee(invoices)
		require.NoError(t, err)
		require.Len(t, groups, 3)

		assert.Len(t, groups[PayeeKey{ID: agentA, Type: "agent"}], 2)
		assert.Len(t, groups[PayeeKey{ID: agentB, Type: "agent"}], 1)
		assert.Len(t, groups[PayeeKey{ID: franchise, Type: "franchise"}], 1)
	})

	t.Run("unapproved invoice aborts the batch", func(t *testing.T) {
		bad := approvedInvoice(&agentA, nil, 30000)
		bad.Status = models.InvoiceStatusPending
		_, err := GroupByPayee([]models.Invoice{approvedInvoice(&agentB, nil, 10000), bad})
		require.Error(t, err)
		var transition *InvalidStateTransitionError
		assert.ErrorAs(t, err, &transition)
	})

	t.Run("already paid out invoice aborts the batch", func(t *testing.T) {
		payoutID := primitive.NewObjectID()
		taken := approvedInvoice(&agentA, nil, 30000)
		taken.PayoutID = &payoutID
		_, err := GroupByPayee([]models.Invoice{taken})
		require.Error(t, err)
		var precondition *PreconditionError
		assert.ErrorAs(t, err, &precondition)
	})

	t.Run("invoice without payee aborts the batch", func(t *testing.T) {
		_, err := GroupByPayee([]models.Invoice{approvedInvoice(nil, nil, 30000)})
		require.Error(t, err)
		var precondition *PreconditionError
		assert.ErrorAs(t, err, &precondition)
	})

	t.Run("empty input yields empty groups", func(t *testing.T) {
		groups, err := GroupByPayee(nil)
		require.NoError(t, err)
		assert.Empty(t, groups)
	})
}

func TestPayoutTotals(t *testing.T) {
	agent := primitive.NewObjectID()
	invoices := []models.Invoice{
		approvedInvoice(&agent, nil, 30000), // TDS 600
		approvedInvoice(&agent, nil, 10000), // TDS 200
	}

	commission, tds, net := PayoutTotals(invoices)
	assert.Equal(t, 40000.0, commission)
	assert.Equal(t, 800.0, tds)
	assert.Equal(t, 39200.0, net)
}
