package services

import (
	"github.com/finqube/loandesk_backend/models"
)

// Calculation statuses returned alongside the computed amount
const (
	CalcStatusOK          = "calculated"
	CalcStatusBasePending = "base amount not yet available"
)

// BaseAmountForRule selects the lead amount the rule's commission basis
// applies to. Callers must re-evaluate this on every disbursement change: a
// partial disbursement moves the cumulative disbursed figure, so the answer
// is never cached.
func BaseAmountForRule(rule *models.CommissionRule, lead *models.Lead) float64 {
	if rule.CommissionBasis == models.CommissionBasisDisbursed {
		return lead.DisbursedAmount
	}
	return lead.LoanAmount
}

// CalculateCommission applies a resolved rule to a base amount. A zero base
// yields zero with an explanatory status, not an error: disbursement may
// legitimately still be pending. Min/max clamps apply after the calculation.
func CalculateCommission(rule *models.CommissionRule, baseAmount float64) (float64, string) {
	if baseAmount == 0 {
		return 0, CalcStatusBasePending
	}

	var amount float64
	switch rule.CommissionType {
	case models.CommissionTypeFixed:
		amount = rule.CommissionValue
	default:
		amount = baseAmount * rule.CommissionValue / 100
	}

	if rule.MinCommission != nil && amount < *rule.MinCommission {
		amount = *rule.MinCommission
	}
	if rule.MaxCommission != nil && amount > *rule.MaxCommission {
		amount = *rule.MaxCommission
	}

	return amount, CalcStatusOK
}

// ValidateCommissionAllocation checks the franchise ceiling invariant: the
// percentages handed to agent, sub-agent and referral franchise together must
// not exceed the per-bank limit. Violations abort, they are never clamped.
func ValidateCommissionAllocation(limit *models.FranchiseCommissionLimit, agentPct, subAgentPct, referralPct float64) error {
	if limit == nil {
		return &PreconditionError{Reason: "no franchise commission limit configured for bank"}
	}
	if limit.LimitType != models.LimitTypePercentage {
		return &PreconditionError{Reason: "franchise commission limit is not percentage-based"}
	}
	total := agentPct + subAgentPct + referralPct
	if total > limit.Value {
		return &InvalidCommissionError{
			Reason: "allocated commission exceeds franchise ceiling",
		}
	}
	return nil
}
