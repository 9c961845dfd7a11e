package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Agent refers leads into the system. An agent either manages a franchise
// directly or reports to a relationship manager whose regional manager owns
// the franchise context.
type Agent struct {
	ID                    primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	FullName              string              `json:"fullName" bson:"fullName"`
	Email                 string              `json:"email" bson:"email"`
	PhoneNumber           string              `json:"phoneNumber" bson:"phoneNumber"`
	FranchiseID           *primitive.ObjectID `json:"franchiseId,omitempty" bson:"franchiseId,omitempty"`
	RelationshipManagerID *primitive.ObjectID `json:"relationshipManagerId,omitempty" bson:"relationshipManagerId,omitempty"`
	ParentAgentID         *primitive.ObjectID `json:"parentAgentId,omitempty" bson:"parentAgentId,omitempty"` // set for sub-agents
	Region                string              `json:"region,omitempty" bson:"region,omitempty"`
	Status                string              `json:"status" bson:"status"` // "active", "inactive"
	CreatedAt             time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time           `json:"updatedAt" bson:"updatedAt"`
}

type RelationshipManager struct {
	ID                primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FullName          string             `json:"fullName" bson:"fullName"`
	Email             string             `json:"email" bson:"email"`
	PhoneNumber       string             `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	RegionalManagerID primitive.ObjectID `json:"regionalManagerId" bson:"regionalManagerId"`
	Region            string             `json:"region,omitempty" bson:"region,omitempty"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type RegionalManager struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FullName    string             `json:"fullName" bson:"fullName"`
	Email       string             `json:"email" bson:"email"`
	FranchiseID primitive.ObjectID `json:"franchiseId" bson:"franchiseId"`
	Region      string             `json:"region,omitempty" bson:"region,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type Bank struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Code      string             `json:"code" bson:"code"`
	Status    string             `json:"status" bson:"status"` // "active", "inactive"
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}
