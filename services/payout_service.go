package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/finqube/loandesk_backend/models"
)

// PayoutAggregator groups approved invoices by payee into single net-payable
// disbursements.
type PayoutAggregator struct {
	DB      *mongo.Database
	Numbers NumberGenerator
}

func NewPayoutAggregator(db *mongo.Database, numbers NumberGenerator) *PayoutAggregator {
	return &PayoutAggregator{DB: db, Numbers: numbers}
}

// PayeeKey identifies a payout bucket.
type PayeeKey struct {
	ID   primitive.ObjectID
	Type string // "agent" or "franchise"
}

// GroupByPayee buckets invoices by payee. Every invoice must be approved and
// not yet part of a payout; anything else aborts the whole grouping.
func GroupByPayee(invoices []models.Invoice) (map[PayeeKey][]models.Invoice, error) {
	groups := make(map[PayeeKey][]models.Invoice)
	for _, inv := range invoices {
		if inv.Status != models.InvoiceStatusApproved {
			return nil, &InvalidStateTransitionError{
				From:      inv.Status,
				Operation: "pay out",
				Reason:    fmt.Sprintf("invoice %s is not approved", inv.InvoiceNumber),
			}
		}
		if inv.PayoutID != nil {
			return nil, &PreconditionError{
				Reason: fmt.Sprintf("invoice %s already belongs to a payout", inv.InvoiceNumber),
			}
		}

		var key PayeeKey
		switch {
		case inv.AgentID != nil:
			key = PayeeKey{ID: *inv.AgentID, Type: "agent"}
		case inv.FranchiseID != nil:
			key = PayeeKey{ID: *inv.FranchiseID, Type: "franchise"}
		default:
			return nil, &PreconditionError{
				Reason: fmt.Sprintf("invoice %s has no payee", inv.InvoiceNumber),
			}
		}
		groups[key] = append(groups[key], inv)
	}
	return groups, nil
}

// PayoutTotals rolls a bucket up: net payable = sum of commission minus sum
// of TDS across the group.
func PayoutTotals(invoices []models.Invoice) (commission, tds, net float64) {
	for _, inv := range invoices {
		commission += inv.CommissionAmount
		tds += inv.TDSAmount
	}
	return commission, tds, commission - tds
}

// CreatePayouts builds one payout per unique payee from the given approved
// invoices and stamps each invoice with its payout reference.
func (pa *PayoutAggregator) CreatePayouts(ctx context.Context, invoiceIDs []primitive.ObjectID, actorID primitive.ObjectID) ([]models.Payout, error) {
	cursor, err := pa.DB.Collection("invoices").Find(ctx, bson.M{"_id": bson.M{"$in": invoiceIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	var invoices []models.Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, fmt.Errorf("failed to decode invoices: %w", err)
	}
	if len(invoices) != len(invoiceIDs) {
		return nil, &PreconditionError{Reason: "one or more invoices not found"}
	}

	groups, err := GroupByPayee(invoices)
	if err != nil {
		return nil, err
	}

	payouts := make([]models.Payout, 0, len(groups))
	for key, group := range groups {
		number, err := pa.Numbers.Next(ctx, PayoutPrefix)
		if err != nil {
			return nil, err
		}

		commission, tds, net := PayoutTotals(group)
		ids := make([]primitive.ObjectID, 0, len(group))
		for _, inv := range group {
			ids = append(ids, inv.ID)
		}

		payout := models.Payout{
			ID:              primitive.NewObjectID(),
			PayoutNumber:    number,
			PayeeID:         key.ID,
			PayeeType:       key.Type,
			InvoiceIDs:      ids,
			TotalCommission: commission,
			TotalTDS:        tds,
			NetPayable:      net,
			Status:          models.PayoutStatusCreated,
			CreatedBy:       actorID,
			CreatedAt:       time.Now(),
		}

		if _, err := pa.DB.Collection("payouts").InsertOne(ctx, payout); err != nil {
			return nil, fmt.Errorf("failed to insert payout: %w", err)
		}

		_, err = pa.DB.Collection("invoices").UpdateMany(ctx,
			bson.M{"_id": bson.M{"$in": ids}},
			bson.M{"$set": bson.M{"payoutId": payout.ID, "updatedAt": time.Now()}},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to link invoices to payout %s: %w", number, err)
		}

		payouts = append(payouts, payout)
	}

	return payouts, nil
}

// ConfirmPayout marks a payout paid and transitions each of its invoices
// from approved to paid.
func (pa *PayoutAggregator) ConfirmPayout(ctx context.Context, payoutID, actorID primitive.ObjectID, reference string) (*models.Payout, error) {
	var payout models.Payout
	err := pa.DB.Collection("payouts").FindOne(ctx, bson.M{"_id": payoutID}).Decode(&payout)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &PreconditionError{Reason: "payout not found"}
		}
		return nil, fmt.Errorf("failed to load payout: %w", err)
	}
	if payout.Status == models.PayoutStatusPaid {
		return nil, &InvalidStateTransitionError{From: payout.Status, Operation: "confirm payout"}
	}

	now := time.Now()
	_, err = pa.DB.Collection("invoices").UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": payout.InvoiceIDs}, "status": models.InvoiceStatusApproved},
		bson.M{"$set": bson.M{
			"status":    models.InvoiceStatusPaid,
			"paidAt":    now,
			"updatedAt": now,
		}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark invoices paid: %w", err)
	}

	payout.Status = models.PayoutStatusPaid
	payout.PaidAt = &now
	payout.PaidBy = &actorID
	payout.Reference = reference
	_, err = pa.DB.Collection("payouts").ReplaceOne(ctx, bson.M{"_id": payoutID}, payout)
	if err != nil {
		return nil, fmt.Errorf("failed to persist payout confirmation: %w", err)
	}

	return &payout, nil
}
