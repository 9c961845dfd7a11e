package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/finqube/loandesk_backend/models"
)

// ResolveFranchiseContext finds the franchise a lead settles commission
// under. Resolution order: the lead's direct franchise association, then the
// agent's managed franchise, then the agent's relationship-manager chain up
// to the regional manager's franchise. Failure at every step is a domain
// error, never a default.
func ResolveFranchiseContext(ctx context.Context, db *mongo.Database, lead *models.Lead) (*models.Franchise, error) {
	if lead.Associated != nil {
		switch lead.Associated.Model {
		case models.AssociatedModelFranchise:
			return findFranchise(ctx, db, lead.Associated.ID)
		case models.AssociatedModelRelationshipManager:
			return franchiseViaManagerChain(ctx, db, lead.Associated.ID)
		default:
			return nil, &PreconditionError{
				Reason: fmt.Sprintf("unknown associated model %q on lead", lead.Associated.Model),
			}
		}
	}

	var agent models.Agent
	err := db.Collection("agents").FindOne(ctx, bson.M{"_id": lead.AgentID}).Decode(&agent)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &PreconditionError{Reason: "lead agent not found"}
		}
		return nil, fmt.Errorf("failed to load agent: %w", err)
	}

	if agent.FranchiseID != nil {
		return findFranchise(ctx, db, *agent.FranchiseID)
	}
	if agent.RelationshipManagerID != nil {
		return franchiseViaManagerChain(ctx, db, *agent.RelationshipManagerID)
	}

	return nil, &PreconditionError{Reason: "unable to resolve franchise for lead"}
}

func franchiseViaManagerChain(ctx context.Context, db *mongo.Database, rmID primitive.ObjectID) (*models.Franchise, error) {
	var rm models.RelationshipManager
	err := db.Collection("relationship_managers").FindOne(ctx, bson.M{"_id": rmID}).Decode(&rm)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &PreconditionError{Reason: "relationship manager not found"}
		}
		return nil, fmt.Errorf("failed to load relationship manager: %w", err)
	}

	var regional models.RegionalManager
	err = db.Collection("regional_managers").FindOne(ctx, bson.M{"_id": rm.RegionalManagerID}).Decode(&regional)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &PreconditionError{Reason: "regional manager not found for relationship manager"}
		}
		return nil, fmt.Errorf("failed to load regional manager: %w", err)
	}

	return findFranchise(ctx, db, regional.FranchiseID)
}

func findFranchise(ctx context.Context, db *mongo.Database, id primitive.ObjectID) (*models.Franchise, error) {
	var franchise models.Franchise
	err := db.Collection("franchises").FindOne(ctx, bson.M{"_id": id}).Decode(&franchise)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &PreconditionError{Reason: "franchise not found"}
		}
		return nil, fmt.Errorf("failed to load franchise: %w", err)
	}
	return &franchise, nil
}
