package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/finqube/loandesk_backend/models"
)

func pendingInvoice() *models.Invoice {
	tax := ComputeTax(30000, DefaultTDSPercent)
	return &models.Invoice{
		ID:               primitive.NewObjectID(),
		InvoiceNumber:    "INV-20260827-00001",
		InvoiceType:      models.InvoiceTypeAgent,
		CommissionAmount: 30000,
		GSTAmount:        tax.GST,
		TDSAmount:        tax.TDS,
		TDSPercentage:    DefaultTDSPercent,
		NetPayable:       tax.NetPayable,
		Status:           models.InvoiceStatusPending,
	}
}

func TestApplyAcceptance(t *testing.T) {
	actor := primitive.NewObjectID()
	now := time.Now()

	t.Run("pending is accepted", func(t *testing.T) {
		inv := pendingInvoice()
		require.NoError(t, ApplyAcceptance(inv, actor, "looks right", now))
		assert.Equal(t, models.InvoiceStatusApproved, inv.Status)
		assert.Equal(t, actor, *inv.AcceptedBy)
		assert.Equal(t, now, *inv.AcceptedAt)
		assert.Equal(t, "looks right", inv.AgentRemarks)
	})

	t.Run("non pending cannot be accepted", func(t *testing.T) {
		for _, status := range []string{
			models.InvoiceStatusApproved,
			models.InvoiceStatusEscalated,
			models.InvoiceStatusRejected,
			models.InvoiceStatusPaid,
		} {
			inv := pendingInvoice()
			inv.Status = status
			err := ApplyAcceptance(inv, actor, "", now)
			require.Error(t, err, status)
			var transition *InvalidStateTransitionError
			require.ErrorAs(t, err, &transition)
			assert.Equal(t, status, transition.From)
		}
	})
}

func TestApplyEscalation(t *testing.T) {
	actor := primitive.NewObjectID()
	now := time.Now()

	t.Run("pending escalates with reason", func(t *testing.T) {
		inv := pendingInvoice()
		require.NoError(t, ApplyEscalation(inv, actor, "amount disputed", "expected 2%", now))
		assert.Equal(t, models.InvoiceStatusEscalated, inv.Status)
		assert.Equal(t, "amount disputed", inv.EscalationReason)
		assert.Equal(t, "expected 2%", inv.EscalationRemarks)
		assert.Equal(t, actor, *inv.EscalatedBy)
	})

	t.Run("reason is required", func(t *testing.T) {
		inv := pendingInvoice()
		err := ApplyEscalation(inv, actor, "   ", "", now)
		require.Error(t, err)
		assert.Equal(t, models.InvoiceStatusPending, inv.Status)
	})

	t.Run("already escalated cannot re-escalate", func(t *testing.T) {
		inv := pendingInvoice()
		inv.Status = models.InvoiceStatusEscalated
		err := ApplyEscalation(inv, actor, "again", "", now)
		require.Error(t, err)
	})
}

func TestApplyResolution(t *testing.T) {
	actor := primitive.NewObjectID()
	now := time.Now()

	escalated := func() *models.Invoice {
		inv := pendingInvoice()
		inv.Status = models.InvoiceStatusEscalated
		return inv
	}

	t.Run("resolution returns invoice to pending", func(t *testing.T) {
		inv := escalated()
		require.NoError(t, ApplyResolution(inv, actor, "verified with bank", nil, now))
		assert.Equal(t, models.InvoiceStatusPending, inv.Status)
		assert.Equal(t, "verified with bank", inv.ResolutionRemarks)
		assert.Equal(t, actor, *inv.ResolvedBy)
		// commission untouched without an adjustment
		assert.Equal(t, 30000.0, inv.CommissionAmount)
	})

	t.Run("adjusted commission recomputes taxes", func(t *testing.T) {
		inv := escalated()
		adjusted := 25000.0
		require.NoError(t, ApplyResolution(inv, actor, "corrected to 2.5%", &adjusted, now))
		assert.Equal(t, 25000.0, inv.CommissionAmount)
		assert.Equal(t, 4500.0, inv.GSTAmount)
		assert.Equal(t, 500.0, inv.TDSAmount)
		assert.Equal(t, 29000.0, inv.NetPayable)
	})

	t.Run("remarks are required", func(t *testing.T) {
		inv := escalated()
		err := ApplyResolution(inv, actor, "", nil, now)
		require.Error(t, err)
		assert.Equal(t, models.InvoiceStatusEscalated, inv.Status)
	})

	t.Run("non positive adjustment is rejected", func(t *testing.T) {
		inv := escalated()
		adjusted := 0.0
		err := ApplyResolution(inv, actor, "zeroed out", &adjusted, now)
		require.Error(t, err)
		var invalid *InvalidCommissionError
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("only escalated invoices resolve", func(t *testing.T) {
		inv := pendingInvoice()
		err := ApplyResolution(inv, actor, "remarks", nil, now)
		require.Error(t, err)
	})
}

func TestApplyApproval(t *testing.T) {
	actor := primitive.NewObjectID()
	now := time.Now()

	t.Run("pending approves", func(t *testing.T) {
		inv := pendingInvoice()
		require.NoError(t, ApplyApproval(inv, actor, "", now))
		assert.Equal(t, models.InvoiceStatusApproved, inv.Status)
		assert.Equal(t, actor, *inv.AcceptedBy)
	})

	t.Run("escalated approval stamps implicit resolution", func(t *testing.T) {
		inv := pendingInvoice()
		inv.Status = models.InvoiceStatusEscalated
		require.NoError(t, ApplyApproval(inv, actor, "", now))
		assert.Equal(t, models.InvoiceStatusApproved, inv.Status)
		require.NotNil(t, inv.ResolvedAt)
		assert.Equal(t, "resolved on approval", inv.ResolutionRemarks)
	})

	t.Run("explicit resolution is preserved on approval", func(t *testing.T) {
		inv := pendingInvoice()
		inv.Status = models.InvoiceStatusEscalated
		require.NoError(t, ApplyResolution(inv, actor, "verified", nil, now))
		resolvedAt := *inv.ResolvedAt
		require.NoError(t, ApplyApproval(inv, actor, "", now.Add(time.Hour)))
		assert.Equal(t, resolvedAt, *inv.ResolvedAt)
		assert.Equal(t, "verified", inv.ResolutionRemarks)
	})

	t.Run("terminal states cannot approve", func(t *testing.T) {
		for _, status := range []string{models.InvoiceStatusRejected, models.InvoiceStatusPaid, models.InvoiceStatusApproved} {
			inv := pendingInvoice()
			inv.Status = status
			require.Error(t, ApplyApproval(inv, actor, "", now), status)
		}
	})
}

func TestApplyRejection(t *testing.T) {
	actor := primitive.NewObjectID()
	now := time.Now()

	t.Run("open states reject", func(t *testing.T) {
		for _, status := range []string{models.InvoiceStatusPending, models.InvoiceStatusEscalated} {
			inv := pendingInvoice()
			inv.Status = status
			require.NoError(t, ApplyRejection(inv, actor, "lead disputed", now), status)
			assert.Equal(t, models.InvoiceStatusRejected, inv.Status)
			assert.Equal(t, "lead disputed", inv.RejectionReason)
		}
	})

	t.Run("reason is required", func(t *testing.T) {
		inv := pendingInvoice()
		require.Error(t, ApplyRejection(inv, actor, "", now))
	})

	t.Run("approved and paid cannot reject", func(t *testing.T) {
		for _, status := range []string{models.InvoiceStatusApproved, models.InvoiceStatusPaid} {
			inv := pendingInvoice()
			inv.Status = status
			require.Error(t, ApplyRejection(inv, actor, "late dispute", now), status)
		}
	})
}

func TestApplyPayment(t *testing.T) {
	payoutID := primitive.NewObjectID()
	now := time.Now()

	t.Run("approved pays", func(t *testing.T) {
		inv := pendingInvoice()
		inv.Status = models.InvoiceStatusApproved
		require.NoError(t, ApplyPayment(inv, payoutID, now))
		assert.Equal(t, models.InvoiceStatusPaid, inv.Status)
		assert.Equal(t, payoutID, *inv.PayoutID)
		assert.Equal(t, now, *inv.PaidAt)
	})

	t.Run("only approved pays", func(t *testing.T) {
		for _, status := range []string{
			models.InvoiceStatusPending,
			models.InvoiceStatusEscalated,
			models.InvoiceStatusRejected,
			models.InvoiceStatusPaid,
		} {
			inv := pendingInvoice()
			inv.Status = status
			require.Error(t, ApplyPayment(inv, payoutID, now), status)
		}
	})
}
