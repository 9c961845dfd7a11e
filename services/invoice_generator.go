package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/finqube/loandesk_backend/models"
)

// leadLockTTL bounds how long a crashed generation can hold the per-lead lock
const leadLockTTL = 30 * time.Second

// InvoiceGenerator turns a disbursed or completed lead into commission
// invoices: rule resolution, franchise discovery, waterfall split, tax
// computation and idempotent invoice creation.
type InvoiceGenerator struct {
	DB      *mongo.Database
	Redis   *redis.Client // optional; unique indexes remain the serialization authority
	Rules   *RuleStore
	Numbers NumberGenerator
}

func NewInvoiceGenerator(db *mongo.Database, redisClient *redis.Client, rules *RuleStore, numbers NumberGenerator) *InvoiceGenerator {
	return &InvoiceGenerator{DB: db, Redis: redisClient, Rules: rules, Numbers: numbers}
}

// Allocation is one payee's slice of the commission waterfall.
type Allocation struct {
	InvoiceType         string
	AgentID             *primitive.ObjectID
	FranchiseID         *primitive.ObjectID
	IsReferralFranchise bool
	Percent             float64
	Amount              float64
}

// BuildAgentAllocations computes the Branch A (disbursed) waterfall from the
// percentages the agent fixed at lead creation. With a sub-agent present the
// agent keeps agentPct - subAgentPct, so by construction the two slices sum
// back to the agent's total.
func BuildAgentAllocations(lead *models.Lead) ([]Allocation, error) {
	if lead.AgentCommissionPercent <= 0 {
		return nil, &InvalidCommissionError{Reason: "agent commission percentage must be greater than zero"}
	}

	if lead.SubAgentID == nil {
		return []Allocation{{
			InvoiceType: models.InvoiceTypeAgent,
			AgentID:     &lead.AgentID,
			Percent:     lead.AgentCommissionPercent,
			Amount:      lead.LoanAmount * lead.AgentCommissionPercent / 100,
		}}, nil
	}

	if lead.SubAgentCommissionPercent <= 0 {
		return nil, &InvalidCommissionError{Reason: "sub-agent commission percentage must be greater than zero"}
	}
	remaining := lead.AgentCommissionPercent - lead.SubAgentCommissionPercent
	if remaining <= 0 {
		return nil, &InvalidCommissionError{Reason: "sub-agent share must be less than the agent's total commission"}
	}

	return []Allocation{
		{
			InvoiceType: models.InvoiceTypeAgent,
			AgentID:     &lead.AgentID,
			Percent:     remaining,
			Amount:      lead.LoanAmount * remaining / 100,
		},
		{
			InvoiceType: models.InvoiceTypeSubAgent,
			AgentID:     lead.SubAgentID,
			Percent:     lead.SubAgentCommissionPercent,
			Amount:      lead.LoanAmount * lead.SubAgentCommissionPercent / 100,
		},
	}, nil
}

// FranchiseRemainingShare computes the Branch B (completed) franchise share:
// the per-bank ceiling minus what was already promised to the agent and the
// referral franchise.
func FranchiseRemainingShare(limit *models.FranchiseCommissionLimit, lead *models.Lead) (float64, error) {
	if limit == nil {
		return 0, &PreconditionError{Reason: "no franchise commission limit configured for bank"}
	}
	if limit.LimitType != models.LimitTypePercentage {
		return 0, &PreconditionError{Reason: "franchise commission limit must be percentage-based for franchise invoicing"}
	}
	remaining := limit.Value - lead.AgentCommissionPercent - lead.ReferralFranchiseCommissionPercent
	if remaining <= 0 {
		return 0, &InvalidCommissionError{Reason: "franchise remaining share is not positive"}
	}
	return remaining, nil
}

// GenerateInvoice creates the invoice set for a lead. Lead status picks the
// branch: "disbursed" produces agent-side invoices, "completed" produces
// franchise-side invoices. The whole operation is all-or-nothing.
func (ig *InvoiceGenerator) GenerateInvoice(ctx context.Context, leadID, actorID primitive.ObjectID) ([]models.Invoice, error) {
	release, err := ig.acquireLeadLock(ctx, leadID)
	if err != nil {
		return nil, err
	}
	defer release()

	var lead models.Lead
	err = ig.DB.Collection("leads").FindOne(ctx, bson.M{"_id": leadID}).Decode(&lead)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &PreconditionError{Reason: "lead not found"}
		}
		return nil, fmt.Errorf("failed to load lead: %w", err)
	}

	franchise, err := ResolveFranchiseContext(ctx, ig.DB, &lead)
	if err != nil {
		return nil, err
	}

	rule, err := ig.Rules.Resolve(ctx, lead.BankID, lead.LoanType, time.Now())
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, fmt.Errorf("%w for bank %s and loan type %q", ErrRuleNotFound, lead.BankID.Hex(), lead.LoanType)
	}
	gross, _ := CalculateCommission(rule, BaseAmountForRule(rule, &lead))

	limit, err := ig.loadCommissionLimit(ctx, lead.BankID)
	if err != nil {
		return nil, err
	}

	switch lead.Status {
	case models.LeadStatusDisbursed:
		return ig.generateAgentInvoices(ctx, &lead, rule, gross, limit)
	case models.LeadStatusCompleted:
		return ig.generateFranchiseInvoices(ctx, &lead, rule, gross, limit, franchise)
	default:
		return nil, &PreconditionError{
			Reason: fmt.Sprintf("lead status %q does not allow invoice generation", lead.Status),
		}
	}
}

func (ig *InvoiceGenerator) generateAgentInvoices(ctx context.Context, lead *models.Lead, rule *models.CommissionRule, gross float64, limit *models.FranchiseCommissionLimit) ([]models.Invoice, error) {
	// Ceiling invariant is re-checked at generation time, not only at
	// assignment; a limit created after the lead still binds.
	if limit != nil && limit.LimitType == models.LimitTypePercentage {
		if err := ValidateCommissionAllocation(limit, lead.AgentCommissionPercent, lead.SubAgentCommissionPercent, lead.ReferralFranchiseCommissionPercent); err != nil {
			return nil, err
		}
	}

	allocations, err := BuildAgentAllocations(lead)
	if err != nil {
		return nil, err
	}

	// The duplicate check covers both agent and sub-agent invoices and runs
	// before any write: an existing invoice of either type aborts the whole
	// split.
	count, err := ig.DB.Collection("invoices").CountDocuments(ctx, bson.M{
		"leadId":      lead.ID,
		"invoiceType": bson.M{"$in": []string{models.InvoiceTypeAgent, models.InvoiceTypeSubAgent}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check existing invoices: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: agent-side invoice already generated", ErrDuplicateInvoice)
	}

	return ig.writeInvoices(ctx, lead, rule, gross, allocations)
}

func (ig *InvoiceGenerator) generateFranchiseInvoices(ctx context.Context, lead *models.Lead, rule *models.CommissionRule, gross float64, limit *models.FranchiseCommissionLimit, franchise *models.Franchise) ([]models.Invoice, error) {
	remaining, err := FranchiseRemainingShare(limit, lead)
	if err != nil {
		return nil, err
	}

	// The main franchise invoice and the referral invoice are independent
	// idempotency domains; the main check excludes referral invoices.
	count, err := ig.DB.Collection("invoices").CountDocuments(ctx, bson.M{
		"leadId":              lead.ID,
		"invoiceType":         models.InvoiceTypeFranchise,
		"isReferralFranchise": false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check existing franchise invoice: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: franchise invoice already generated", ErrDuplicateInvoice)
	}

	allocations := []Allocation{{
		InvoiceType: models.InvoiceTypeFranchise,
		FranchiseID: &franchise.ID,
		Percent:     remaining,
		Amount:      lead.LoanAmount * remaining / 100,
	}}

	if lead.ReferralFranchiseID != nil && lead.ReferralCommissionAmount > 0 {
		refCount, err := ig.DB.Collection("invoices").CountDocuments(ctx, bson.M{
			"leadId":              lead.ID,
			"franchiseId":         *lead.ReferralFranchiseID,
			"isReferralFranchise": true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to check existing referral invoice: %w", err)
		}
		if refCount > 0 {
			return nil, fmt.Errorf("%w: referral franchise invoice already generated", ErrDuplicateInvoice)
		}

		// Referral commission uses the amount pre-set at assignment time,
		// never a recomputed percentage.
		allocations = append(allocations, Allocation{
			InvoiceType:         models.InvoiceTypeFranchise,
			FranchiseID:         lead.ReferralFranchiseID,
			IsReferralFranchise: true,
			Percent:             lead.ReferralFranchiseCommissionPercent,
			Amount:              lead.ReferralCommissionAmount,
		})
	}

	return ig.writeInvoices(ctx, lead, rule, gross, allocations)
}

// writeInvoices persists the allocation set all-or-nothing: if a later insert
// fails, the earlier ones are compensated by deletion before the error is
// returned.
func (ig *InvoiceGenerator) writeInvoices(ctx context.Context, lead *models.Lead, rule *models.CommissionRule, gross float64, allocations []Allocation) ([]models.Invoice, error) {
	invoices := make([]models.Invoice, 0, len(allocations))

	for _, alloc := range allocations {
		if alloc.Amount <= 0 {
			return nil, ig.compensate(ctx, invoices, &InvalidCommissionError{
				Reason: fmt.Sprintf("%s commission amount is not positive", alloc.InvoiceType),
			})
		}

		tax := ComputeTax(alloc.Amount, DefaultTDSPercent)
		now := time.Now()
		invoice := models.Invoice{
			ID:                  primitive.NewObjectID(),
			LeadID:              lead.ID,
			InvoiceType:         alloc.InvoiceType,
			AgentID:             alloc.AgentID,
			FranchiseID:         alloc.FranchiseID,
			IsReferralFranchise: alloc.IsReferralFranchise,
			RuleID:              &rule.ID,
			GrossCommission:     gross,
			CommissionAmount:    alloc.Amount,
			GSTAmount:           tax.GST,
			TDSAmount:           tax.TDS,
			TDSPercentage:       DefaultTDSPercent,
			NetPayable:          tax.NetPayable,
			Status:              models.InvoiceStatusPending,
			CreatedAt:           now,
			UpdatedAt:           now,
		}

		if err := ig.insertWithNumber(ctx, &invoice); err != nil {
			return nil, ig.compensate(ctx, invoices, err)
		}
		invoices = append(invoices, invoice)
	}

	ig.stampLead(ctx, lead, invoices[0].ID)
	return invoices, nil
}

// insertWithNumber issues a document number and inserts the invoice,
// retrying the numbering on a number collision. A duplicate on the
// idempotency index surfaces as ErrDuplicateInvoice instead.
func (ig *InvoiceGenerator) insertWithNumber(ctx context.Context, invoice *models.Invoice) error {
	coll := ig.DB.Collection("invoices")

	var lastErr error
	for attempt := 0; attempt < numberingAttempts; attempt++ {
		number, err := ig.Numbers.Next(ctx, InvoicePrefix)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number

		_, err = coll.InsertOne(ctx, invoice)
		if err == nil {
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to insert invoice: %w", err)
		}

		// A duplicate key is either a lost idempotency race or a number
		// collision; an existing invoice for the same key means the former.
		filter := bson.M{
			"leadId":              invoice.LeadID,
			"invoiceType":         invoice.InvoiceType,
			"isReferralFranchise": invoice.IsReferralFranchise,
		}
		if invoice.IsReferralFranchise && invoice.FranchiseID != nil {
			filter["franchiseId"] = *invoice.FranchiseID
		}
		count, countErr := coll.CountDocuments(ctx, filter)
		if countErr == nil && count > 0 {
			return fmt.Errorf("%w: concurrent generation detected", ErrDuplicateInvoice)
		}
		lastErr = err
	}

	return fmt.Errorf("failed to allocate invoice number: %w", lastErr)
}

// compensate deletes invoices already written in this operation so a partial
// split never survives, then returns the original error.
func (ig *InvoiceGenerator) compensate(ctx context.Context, written []models.Invoice, cause error) error {
	for _, inv := range written {
		if _, err := ig.DB.Collection("invoices").DeleteOne(ctx, bson.M{"_id": inv.ID}); err != nil {
			log.Printf("Failed to compensate invoice %s after aborted generation: %v", inv.InvoiceNumber, err)
		}
	}
	return cause
}

// stampLead marks the lead invoiced and records the primary invoice
// reference, but never overwrites an existing reference.
func (ig *InvoiceGenerator) stampLead(ctx context.Context, lead *models.Lead, primary primitive.ObjectID) {
	leads := ig.DB.Collection("leads")

	_, err := leads.UpdateOne(ctx, bson.M{"_id": lead.ID}, bson.M{
		"$set": bson.M{"isInvoiceGenerated": true, "updatedAt": time.Now()},
	})
	if err != nil {
		log.Printf("Failed to stamp lead %s as invoiced: %v", lead.ID.Hex(), err)
	}

	_, err = leads.UpdateOne(ctx,
		bson.M{"_id": lead.ID, "invoiceId": nil},
		bson.M{"$set": bson.M{"invoiceId": primary}},
	)
	if err != nil {
		log.Printf("Failed to set primary invoice on lead %s: %v", lead.ID.Hex(), err)
	}
}

func (ig *InvoiceGenerator) loadCommissionLimit(ctx context.Context, bankID primitive.ObjectID) (*models.FranchiseCommissionLimit, error) {
	var limit models.FranchiseCommissionLimit
	err := ig.DB.Collection("franchise_commission_limits").FindOne(ctx, bson.M{"bankId": bankID}).Decode(&limit)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load franchise commission limit: %w", err)
	}
	return &limit, nil
}

// acquireLeadLock serializes concurrent generations for the same lead when
// redis is available. Without redis the partial unique indexes still
// guarantee a single winner.
func (ig *InvoiceGenerator) acquireLeadLock(ctx context.Context, leadID primitive.ObjectID) (func(), error) {
	if ig.Redis == nil {
		return func() {}, nil
	}

	key := "invoice_lock:" + leadID.Hex()
	ok, err := ig.Redis.SetNX(ctx, key, 1, leadLockTTL).Result()
	if err != nil {
		log.Printf("Warning: redis lead lock unavailable: %v", err)
		return func() {}, nil
	}
	if !ok {
		return nil, fmt.Errorf("%w: generation already in progress for lead", ErrDuplicateInvoice)
	}
	return func() {
		if err := ig.Redis.Del(context.Background(), key).Err(); err != nil {
			log.Printf("Failed to release lead lock %s: %v", key, err)
		}
	}, nil
}
