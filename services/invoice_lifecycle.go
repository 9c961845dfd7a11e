package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/finqube/loandesk_backend/models"
)

// InvoiceLifecycle applies status transitions to invoices:
//
//	pending -> approved
//	pending -> escalated -> pending (resolved) -> approved
//	pending|escalated -> rejected (terminal)
//	approved -> paid (payout confirmation only)
type InvoiceLifecycle struct {
	DB *mongo.Database
}

func NewInvoiceLifecycle(db *mongo.Database) *InvoiceLifecycle {
	return &InvoiceLifecycle{DB: db}
}

// ApplyAcceptance marks a pending invoice approved with acceptance metadata.
func ApplyAcceptance(inv *models.Invoice, actor primitive.ObjectID, remarks string, now time.Time) error {
	if inv.Status != models.InvoiceStatusPending {
		return &InvalidStateTransitionError{From: inv.Status, Operation: "accept"}
	}
	inv.Status = models.InvoiceStatusApproved
	inv.AcceptedAt = &now
	inv.AcceptedBy = &actor
	inv.AgentRemarks = remarks
	inv.UpdatedAt = now
	return nil
}

// ApplyEscalation moves a pending invoice to escalated. A non-empty reason is
// required; re-escalating an escalated or approved invoice is an error.
func ApplyEscalation(inv *models.Invoice, actor primitive.ObjectID, reason, remarks string, now time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return &InvalidStateTransitionError{From: inv.Status, Operation: "escalate", Reason: "escalation reason is required"}
	}
	if inv.Status != models.InvoiceStatusPending {
		return &InvalidStateTransitionError{From: inv.Status, Operation: "escalate"}
	}
	inv.Status = models.InvoiceStatusEscalated
	inv.EscalatedAt = &now
	inv.EscalatedBy = &actor
	inv.EscalationReason = reason
	inv.EscalationRemarks = remarks
	inv.UpdatedAt = now
	return nil
}

// ApplyResolution returns an escalated invoice to pending. Resolution remarks
// are required. A non-nil adjusted commission rewrites the taxable base and
// re-runs the full GST/TDS/netPayable computation.
func ApplyResolution(inv *models.Invoice, actor primitive.ObjectID, remarks string, adjustedCommission *float64, now time.Time) error {
	if strings.TrimSpace(remarks) == "" {
		return &InvalidStateTransitionError{From: inv.Status, Operation: "resolve", Reason: "resolution remarks are required"}
	}
	if inv.Status != models.InvoiceStatusEscalated {
		return &InvalidStateTransitionError{From: inv.Status, Operation: "resolve"}
	}

	if adjustedCommission != nil {
		if *adjustedCommission <= 0 {
			return &InvalidCommissionError{Reason: "adjusted commission must be greater than zero"}
		}
		tax := ComputeTax(*adjustedCommission, inv.TDSPercentage)
		inv.CommissionAmount = *adjustedCommission
		inv.GSTAmount = tax.GST
		inv.TDSAmount = tax.TDS
		inv.NetPayable = tax.NetPayable
	}

	inv.Status = models.InvoiceStatusPending
	inv.ResolvedAt = &now
	inv.ResolvedBy = &actor
	inv.ResolutionRemarks = remarks
	inv.UpdatedAt = now
	return nil
}

// ApplyApproval approves a pending or escalated invoice. Approving an
// escalated invoice that was never explicitly resolved stamps resolution
// metadata as a side effect.
func ApplyApproval(inv *models.Invoice, actor primitive.ObjectID, remarks string, now time.Time) error {
	switch inv.Status {
	case models.InvoiceStatusPending:
	case models.InvoiceStatusEscalated:
		if inv.ResolvedAt == nil {
			inv.ResolvedAt = &now
			inv.ResolvedBy = &actor
			if inv.ResolutionRemarks == "" {
				inv.ResolutionRemarks = "resolved on approval"
			}
		}
	default:
		return &InvalidStateTransitionError{From: inv.Status, Operation: "approve"}
	}

	inv.Status = models.InvoiceStatusApproved
	inv.AcceptedAt = &now
	inv.AcceptedBy = &actor
	if remarks != "" {
		inv.AgentRemarks = remarks
	}
	inv.UpdatedAt = now
	return nil
}

// ApplyRejection rejects an invoice from any open state. A non-empty reason
// is required; rejection is terminal.
func ApplyRejection(inv *models.Invoice, actor primitive.ObjectID, reason string, now time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return &InvalidStateTransitionError{From: inv.Status, Operation: "reject", Reason: "rejection reason is required"}
	}
	switch inv.Status {
	case models.InvoiceStatusPending, models.InvoiceStatusEscalated:
	default:
		return &InvalidStateTransitionError{From: inv.Status, Operation: "reject"}
	}
	inv.Status = models.InvoiceStatusRejected
	inv.RejectedAt = &now
	inv.RejectedBy = &actor
	inv.RejectionReason = reason
	inv.UpdatedAt = now
	return nil
}

// ApplyPayment marks an approved invoice paid under the given payout. Only
// payout confirmation reaches this transition.
func ApplyPayment(inv *models.Invoice, payoutID primitive.ObjectID, now time.Time) error {
	if inv.Status != models.InvoiceStatusApproved {
		return &InvalidStateTransitionError{From: inv.Status, Operation: "pay"}
	}
	inv.Status = models.InvoiceStatusPaid
	inv.PayoutID = &payoutID
	inv.PaidAt = &now
	inv.UpdatedAt = now
	return nil
}

// Accept transitions pending -> approved.
func (lc *InvoiceLifecycle) Accept(ctx context.Context, invoiceID, actorID primitive.ObjectID, remarks string) (*models.Invoice, error) {
	return lc.transition(ctx, invoiceID, func(inv *models.Invoice, now time.Time) error {
		return ApplyAcceptance(inv, actorID, remarks, now)
	})
}

// Escalate transitions pending -> escalated.
func (lc *InvoiceLifecycle) Escalate(ctx context.Context, invoiceID, actorID primitive.ObjectID, reason, remarks string) (*models.Invoice, error) {
	return lc.transition(ctx, invoiceID, func(inv *models.Invoice, now time.Time) error {
		return ApplyEscalation(inv, actorID, reason, remarks, now)
	})
}

// ResolveEscalation transitions escalated -> pending.
func (lc *InvoiceLifecycle) ResolveEscalation(ctx context.Context, invoiceID, actorID primitive.ObjectID, remarks string, adjustedCommission *float64) (*models.Invoice, error) {
	return lc.transition(ctx, invoiceID, func(inv *models.Invoice, now time.Time) error {
		return ApplyResolution(inv, actorID, remarks, adjustedCommission, now)
	})
}

// Approve transitions pending|escalated -> approved.
func (lc *InvoiceLifecycle) Approve(ctx context.Context, invoiceID, actorID primitive.ObjectID, remarks string) (*models.Invoice, error) {
	return lc.transition(ctx, invoiceID, func(inv *models.Invoice, now time.Time) error {
		return ApplyApproval(inv, actorID, remarks, now)
	})
}

// Reject transitions any open state -> rejected.
func (lc *InvoiceLifecycle) Reject(ctx context.Context, invoiceID, actorID primitive.ObjectID, reason string) (*models.Invoice, error) {
	return lc.transition(ctx, invoiceID, func(inv *models.Invoice, now time.Time) error {
		return ApplyRejection(inv, actorID, reason, now)
	})
}

func (lc *InvoiceLifecycle) transition(ctx context.Context, invoiceID primitive.ObjectID, apply func(*models.Invoice, time.Time) error) (*models.Invoice, error) {
	coll := lc.DB.Collection("invoices")

	var invoice models.Invoice
	err := coll.FindOne(ctx, bson.M{"_id": invoiceID}).Decode(&invoice)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &PreconditionError{Reason: "invoice not found"}
		}
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}

	if err := apply(&invoice, time.Now()); err != nil {
		return nil, err
	}

	_, err = coll.ReplaceOne(ctx, bson.M{"_id": invoiceID}, invoice)
	if err != nil {
		return nil, fmt.Errorf("failed to persist invoice transition: %w", err)
	}
	return &invoice, nil
}
