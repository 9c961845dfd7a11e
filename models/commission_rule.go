package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Commission basis selects which lead amount the rule is computed from
const (
	CommissionBasisSanctioned = "sanctioned"
	CommissionBasisDisbursed  = "disbursed"
)

// Commission type
const (
	CommissionTypePercentage = "percentage"
	CommissionTypeFixed      = "fixed"
)

// LoanTypeAll is the wildcard loan type matching any loan
const LoanTypeAll = "all"

// CommissionRule is a versioned per-bank commission policy. Rules are never
// deleted; an admin deactivates a rule or supersedes it with a new effective
// window.
type CommissionRule struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	BankID          primitive.ObjectID `json:"bankId" bson:"bankId"`
	LoanType        string             `json:"loanType" bson:"loanType"` // "home", "personal", ... or "all"
	CommissionBasis string             `json:"commissionBasis" bson:"commissionBasis"`
	CommissionType  string             `json:"commissionType" bson:"commissionType"`
	CommissionValue float64            `json:"commissionValue" bson:"commissionValue"`
	MinCommission   *float64           `json:"minCommission,omitempty" bson:"minCommission,omitempty"`
	MaxCommission   *float64           `json:"maxCommission,omitempty" bson:"maxCommission,omitempty"`
	EffectiveFrom   time.Time          `json:"effectiveFrom" bson:"effectiveFrom"`
	EffectiveTo     *time.Time         `json:"effectiveTo,omitempty" bson:"effectiveTo,omitempty"`
	Status          string             `json:"status" bson:"status"` // "active", "inactive"
	CreatedBy       primitive.ObjectID `json:"createdBy" bson:"createdBy"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CommissionRuleRequest is the admin payload for creating or updating a rule
type CommissionRuleRequest struct {
	BankID          string     `json:"bankId" validate:"required"`
	LoanType        string     `json:"loanType" validate:"required"`
	CommissionBasis string     `json:"commissionBasis" validate:"required,oneof=sanctioned disbursed"`
	CommissionType  string     `json:"commissionType" validate:"required,oneof=percentage fixed"`
	CommissionValue float64    `json:"commissionValue" validate:"required,gt=0"`
	MinCommission   *float64   `json:"minCommission,omitempty"`
	MaxCommission   *float64   `json:"maxCommission,omitempty"`
	EffectiveFrom   time.Time  `json:"effectiveFrom" validate:"required"`
	EffectiveTo     *time.Time `json:"effectiveTo,omitempty"`
}
