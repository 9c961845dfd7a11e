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

// RuleStore resolves versioned per-bank commission rules.
type RuleStore struct {
	DB *mongo.Database
}

func NewRuleStore(db *mongo.Database) *RuleStore {
	return &RuleStore{DB: db}
}

// Resolve returns the applicable rule for (bank, loanType, asOf), or nil when
// none exists. A nil result means "commission undetermined" — callers must
// not read it as zero commission.
func (rs *RuleStore) Resolve(ctx context.Context, bankID primitive.ObjectID, loanType string, asOf time.Time) (*models.CommissionRule, error) {
	cursor, err := rs.DB.Collection("commission_rules").Find(ctx, bson.M{
		"bankId": bankID,
		"status": "active",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load commission rules: %w", err)
	}

	var rules []models.CommissionRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode commission rules: %w", err)
	}

	return SelectRule(rules, loanType, asOf), nil
}

// SelectRule picks the applicable rule from a candidate set: only rules whose
// effective window covers asOf qualify, an exact loanType match beats the
// "all" wildcard, and the latest effectiveFrom wins among equals.
func SelectRule(rules []models.CommissionRule, loanType string, asOf time.Time) *models.CommissionRule {
	if match := pickLatest(rules, loanType, asOf); match != nil {
		return match
	}
	return pickLatest(rules, models.LoanTypeAll, asOf)
}

func pickLatest(rules []models.CommissionRule, loanType string, asOf time.Time) *models.CommissionRule {
	var best *models.CommissionRule
	for i := range rules {
		r := &rules[i]
		if r.LoanType != loanType || !ruleEffectiveAt(r, asOf) {
			continue
		}
		if best == nil || r.EffectiveFrom.After(best.EffectiveFrom) {
			best = r
		}
	}
	return best
}

func ruleEffectiveAt(r *models.CommissionRule, asOf time.Time) bool {
	if r.Status != "active" {
		return false
	}
	if r.EffectiveFrom.After(asOf) {
		return false
	}
	if r.EffectiveTo != nil && r.EffectiveTo.Before(asOf) {
		return false
	}
	return true
}
