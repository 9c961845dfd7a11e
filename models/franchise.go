package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Franchise commission limit types
const (
	LimitTypePercentage = "percentage"
	LimitTypeAmount     = "amount"
)

type Franchise struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Code        string             `json:"code" bson:"code"`
	Email       string             `json:"email,omitempty" bson:"email,omitempty"`
	PhoneNumber string             `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	Region      string             `json:"region,omitempty" bson:"region,omitempty"`
	Status      string             `json:"status" bson:"status"` // "active", "inactive"
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// FranchiseCommissionLimit is the per-bank ceiling on the commission a
// franchise may distribute across agent, sub-agent and referral franchise.
// One record per bank.
type FranchiseCommissionLimit struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	BankID    primitive.ObjectID `json:"bankId" bson:"bankId"`
	LimitType string             `json:"limitType" bson:"limitType"` // "percentage" or "amount"
	Value     float64            `json:"value" bson:"value"`
	CreatedBy primitive.ObjectID `json:"createdBy" bson:"createdBy"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}
