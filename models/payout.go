package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payout statuses
const (
	PayoutStatusCreated = "created"
	PayoutStatusPaid    = "paid"
)

// Payout aggregates approved invoices of a single payee into one net-payable
// disbursement. An invoice belongs to at most one payout.
type Payout struct {
	ID           primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	PayoutNumber string               `json:"payoutNumber" bson:"payoutNumber"`
	PayeeID      primitive.ObjectID   `json:"payeeId" bson:"payeeId"`
	PayeeType    string               `json:"payeeType" bson:"payeeType"` // "agent" or "franchise"
	InvoiceIDs   []primitive.ObjectID `json:"invoiceIds" bson:"invoiceIds"`

	TotalCommission float64 `json:"totalCommission" bson:"totalCommission"`
	TotalTDS        float64 `json:"totalTds" bson:"totalTds"`
	NetPayable      float64 `json:"netPayable" bson:"netPayable"`

	Status    string              `json:"status" bson:"status"`
	CreatedBy primitive.ObjectID  `json:"createdBy" bson:"createdBy"`
	CreatedAt time.Time           `json:"createdAt" bson:"createdAt"`
	PaidAt    *time.Time          `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	PaidBy    *primitive.ObjectID `json:"paidBy,omitempty" bson:"paidBy,omitempty"`
	Reference string              `json:"reference,omitempty" bson:"reference,omitempty"` // bank transfer reference
}

// PayoutRequest is the payload for creating payouts from approved invoices
type PayoutRequest struct {
	InvoiceIDs []string `json:"invoiceIds" validate:"required,min=1"`
}

// PayoutConfirmRequest confirms a payout as paid
type PayoutConfirmRequest struct {
	Reference string `json:"reference,omitempty"`
}
