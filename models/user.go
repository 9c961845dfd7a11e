package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User types
const (
	UserTypeAdmin               = "admin"
	UserTypeAgent               = "agent"
	UserTypeFranchise           = "franchise"
	UserTypeRelationshipManager = "relationship_manager"
	UserTypeRegionalManager     = "regional_manager"
)

// User is a back-office login identity. The entity it acts for (agent,
// franchise, manager) is referenced by EntityID.
type User struct {
	ID        primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	FullName  string              `json:"fullName" bson:"fullName"`
	Email     string              `json:"email" bson:"email"`
	Password  string              `json:"-" bson:"password"`
	UserType  string              `json:"userType" bson:"userType"`
	EntityID  *primitive.ObjectID `json:"entityId,omitempty" bson:"entityId,omitempty"`
	IsActive  bool                `json:"isActive" bson:"isActive"`
	LastLogin *time.Time          `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	CreatedAt time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt" bson:"updatedAt"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
