package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lead statuses
const (
	LeadStatusLogged           = "logged"
	LeadStatusSanctioned       = "sanctioned"
	LeadStatusPartialDisbursed = "partial_disbursed"
	LeadStatusDisbursed        = "disbursed"
	LeadStatusCompleted        = "completed"
	LeadStatusRejected         = "rejected"
)

// Hierarchy association models for Lead.Associated
const (
	AssociatedModelFranchise           = "Franchise"
	AssociatedModelRelationshipManager = "RelationshipManager"
)

// HierarchyRef is the tagged association of a lead to its franchise context:
// either a franchise directly, or a relationship manager whose regional
// manager maps to a franchise.
type HierarchyRef struct {
	Model string             `json:"model" bson:"model"` // "Franchise" or "RelationshipManager"
	ID    primitive.ObjectID `json:"id" bson:"id"`
}

// Lead is a loan application referred by an agent. Commission percentages are
// decided by the agent at lead creation time and are not recalculated later.
type Lead struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ApplicantName   string             `json:"applicantName" bson:"applicantName"`
	ApplicantPhone  string             `json:"applicantPhone,omitempty" bson:"applicantPhone,omitempty"`
	BankID          primitive.ObjectID `json:"bankId" bson:"bankId"`
	LoanType        string             `json:"loanType" bson:"loanType"`
	LoanAmount      float64            `json:"loanAmount" bson:"loanAmount"`
	DisbursedAmount float64            `json:"disbursedAmount" bson:"disbursedAmount"` // cumulative across tranches
	Status          string             `json:"status" bson:"status"`

	AgentID                primitive.ObjectID  `json:"agentId" bson:"agentId"`
	SubAgentID             *primitive.ObjectID `json:"subAgentId,omitempty" bson:"subAgentId,omitempty"`
	AgentCommissionPercent float64             `json:"agentCommissionPercent" bson:"agentCommissionPercent"`
	SubAgentCommissionPercent float64          `json:"subAgentCommissionPercent" bson:"subAgentCommissionPercent"`

	ReferralFranchiseID                *primitive.ObjectID `json:"referralFranchiseId,omitempty" bson:"referralFranchiseId,omitempty"`
	ReferralFranchiseCommissionPercent float64             `json:"referralFranchiseCommissionPercent" bson:"referralFranchiseCommissionPercent"`
	ReferralCommissionAmount           float64             `json:"referralCommissionAmount" bson:"referralCommissionAmount"` // pre-set at assignment, used verbatim

	Associated *HierarchyRef `json:"associated,omitempty" bson:"associated,omitempty"`

	IsInvoiceGenerated bool                `json:"isInvoiceGenerated" bson:"isInvoiceGenerated"`
	InvoiceID          *primitive.ObjectID `json:"invoiceId,omitempty" bson:"invoiceId,omitempty"`

	CreatedBy   primitive.ObjectID `json:"createdBy" bson:"createdBy"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
	SanctionedAt *time.Time        `json:"sanctionedAt,omitempty" bson:"sanctionedAt,omitempty"`
	DisbursedAt  *time.Time        `json:"disbursedAt,omitempty" bson:"disbursedAt,omitempty"`
	CompletedAt  *time.Time        `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// LeadRequest is the payload for creating a lead
type LeadRequest struct {
	ApplicantName  string  `json:"applicantName" validate:"required"`
	ApplicantPhone string  `json:"applicantPhone,omitempty"`
	BankID         string  `json:"bankId" validate:"required"`
	LoanType       string  `json:"loanType" validate:"required"`
	LoanAmount     float64 `json:"loanAmount" validate:"required,gt=0"`

	SubAgentID                string  `json:"subAgentId,omitempty"`
	AgentCommissionPercent    float64 `json:"agentCommissionPercent"`
	SubAgentCommissionPercent float64 `json:"subAgentCommissionPercent"`

	ReferralFranchiseID                string  `json:"referralFranchiseId,omitempty"`
	ReferralFranchiseCommissionPercent float64 `json:"referralFranchiseCommissionPercent"`

	AssociatedModel string `json:"associatedModel,omitempty"`
	AssociatedID    string `json:"associatedId,omitempty"`
}

// DisbursementRequest records a (possibly partial) disbursement tranche
type DisbursementRequest struct {
	Amount  float64 `json:"amount" validate:"required,gt=0"`
	Partial bool    `json:"partial"`
}
