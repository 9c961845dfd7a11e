package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invoice statuses
const (
	InvoiceStatusPending   = "pending"
	InvoiceStatusApproved  = "approved"
	InvoiceStatusEscalated = "escalated"
	InvoiceStatusRejected  = "rejected"
	InvoiceStatusPaid      = "paid"
)

// Invoice types
const (
	InvoiceTypeAgent     = "agent"
	InvoiceTypeSubAgent  = "sub_agent"
	InvoiceTypeFranchise = "franchise"
)

// Invoice is a commission invoice generated for a lead. At most one
// non-referral invoice exists per (lead, invoiceType); referral-franchise
// invoices live in their own (lead, franchise) idempotency domain.
type Invoice struct {
	ID            primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	InvoiceNumber string              `json:"invoiceNumber" bson:"invoiceNumber"`
	LeadID        primitive.ObjectID  `json:"leadId" bson:"leadId"`
	InvoiceType   string              `json:"invoiceType" bson:"invoiceType"`
	AgentID       *primitive.ObjectID `json:"agentId,omitempty" bson:"agentId,omitempty"`
	FranchiseID   *primitive.ObjectID `json:"franchiseId,omitempty" bson:"franchiseId,omitempty"`

	IsReferralFranchise bool `json:"isReferralFranchise" bson:"isReferralFranchise"`

	RuleID          *primitive.ObjectID `json:"ruleId,omitempty" bson:"ruleId,omitempty"`
	GrossCommission float64             `json:"grossCommission" bson:"grossCommission"` // bank-side figure from the resolved rule

	CommissionAmount float64 `json:"commissionAmount" bson:"commissionAmount"` // taxable base
	GSTAmount        float64 `json:"gstAmount" bson:"gstAmount"`
	TDSAmount        float64 `json:"tdsAmount" bson:"tdsAmount"`
	TDSPercentage    float64 `json:"tdsPercentage" bson:"tdsPercentage"`
	NetPayable       float64 `json:"netPayable" bson:"netPayable"`

	Status string `json:"status" bson:"status"`

	AcceptedAt   *time.Time          `json:"acceptedAt,omitempty" bson:"acceptedAt,omitempty"`
	AcceptedBy   *primitive.ObjectID `json:"acceptedBy,omitempty" bson:"acceptedBy,omitempty"`
	AgentRemarks string              `json:"agentRemarks,omitempty" bson:"agentRemarks,omitempty"`

	EscalatedAt       *time.Time          `json:"escalatedAt,omitempty" bson:"escalatedAt,omitempty"`
	EscalatedBy       *primitive.ObjectID `json:"escalatedBy,omitempty" bson:"escalatedBy,omitempty"`
	EscalationReason  string              `json:"escalationReason,omitempty" bson:"escalationReason,omitempty"`
	EscalationRemarks string              `json:"escalationRemarks,omitempty" bson:"escalationRemarks,omitempty"`

	ResolvedAt        *time.Time          `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
	ResolvedBy        *primitive.ObjectID `json:"resolvedBy,omitempty" bson:"resolvedBy,omitempty"`
	ResolutionRemarks string              `json:"resolutionRemarks,omitempty" bson:"resolutionRemarks,omitempty"`

	RejectedAt      *time.Time          `json:"rejectedAt,omitempty" bson:"rejectedAt,omitempty"`
	RejectedBy      *primitive.ObjectID `json:"rejectedBy,omitempty" bson:"rejectedBy,omitempty"`
	RejectionReason string              `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`

	PayoutID *primitive.ObjectID `json:"payoutId,omitempty" bson:"payoutId,omitempty"`
	PaidAt   *time.Time          `json:"paidAt,omitempty" bson:"paidAt,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// EscalationRequest is the payload for escalating an invoice
type EscalationRequest struct {
	Reason  string `json:"reason" validate:"required"`
	Remarks string `json:"remarks,omitempty"`
}

// ResolutionRequest is the payload for resolving an escalated invoice. A
// non-nil AdjustedCommission triggers a full GST/TDS/netPayable recompute.
type ResolutionRequest struct {
	Remarks            string   `json:"remarks" validate:"required"`
	AdjustedCommission *float64 `json:"adjustedCommission,omitempty"`
}

// RejectionRequest is the payload for rejecting an invoice
type RejectionRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// RemarksRequest carries optional remarks for accept/approve
type RemarksRequest struct {
	Remarks string `json:"remarks,omitempty"`
}
