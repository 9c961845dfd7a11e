package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/finqube/loandesk_backend/models"
)

func TestBuildAgentAllocationsSingleAgent(t *testing.T) {
	agentID := primitive.NewObjectID()
	lead := &models.Lead{
		LoanAmount:             1000000,
		AgentID:                agentID,
		AgentCommissionPercent: 3,
	}

	allocations, err := BuildAgentAllocations(lead)
	require.NoError(t, err)
	require.Len(t, allocations, 1)

	assert.Equal(t, models.InvoiceTypeAgent, allocations[0].InvoiceType)
	assert.Equal(t, agentID, *allocations[0].AgentID)
	assert.Equal(t, 3.0, allocations[0].Percent)
	assert.Equal(t, 30000.0, allocations[0].Amount)
}

func TestBuildAgentAllocationsWithSubAgent(t *testing.T) {
	agentID := primitive.NewObjectID()
	subAgentID := primitive.NewObjectID()
	lead := &models.Lead{
		LoanAmount:                1000000,
		AgentID:                   agentID,
		SubAgentID:                &subAgentID,
		AgentCommissionPercent:    3,
		SubAgentCommissionPercent: 1,
	}

	allocations, err := BuildAgentAllocations(lead)
	require.NoError(t, err)
	require.Len(t, allocations, 2)

	agent, subAgent := allocations[0], allocations[1]

	assert.Equal(t, models.InvoiceTypeAgent, agent.InvoiceType)
	assert.Equal(t, agentID, *agent.AgentID)
	assert.Equal(t, 2.0, agent.Percent)
	assert.Equal(t, 20000.0, agent.Amount)

	assert.Equal(t, models.InvoiceTypeSubAgent, subAgent.InvoiceType)
	assert.Equal(t, subAgentID, *subAgent.AgentID)
	assert.Equal(t, 1.0, subAgent.Percent)
	assert.Equal(t, 10000.0, subAgent.Amount)

	// The split always sums back to the agent's total commission
	total := lead.LoanAmount * lead.AgentCommissionPercent / 100
	assert.Equal(t, total, agent.Amount+subAgent.Amount)
}

func TestBuildAgentAllocationsInvalid(t *testing.T) {
	agentID := primitive.NewObjectID()
	subAgentID := primitive.NewObjectID()

	tests := []struct {
		name string
		lead models.Lead
	}{
		{
			name: "zero agent percentage",
			lead: models.Lead{
				LoanAmount: 1000000,
				AgentID:    agentID,
			},
		},
		{
			name: "sub agent present with zero share",
			lead: models.Lead{
				LoanAmount:             1000000,
				AgentID:                agentID,
				SubAgentID:             &subAgentID,
				AgentCommissionPercent: 3,
			},
		},
		{
			name: "sub agent share consumes whole commission",
			lead: models.Lead{
				LoanAmount:                1000000,
				AgentID:                   agentID,
				SubAgentID:                &subAgentID,
				AgentCommissionPercent:    3,
				SubAgentCommissionPercent: 3,
			},
		},
		{
			name: "sub agent share exceeds agent total",
			lead: models.Lead{
				LoanAmount:                1000000,
				AgentID:                   agentID,
				SubAgentID:                &subAgentID,
				AgentCommissionPercent:    2,
				SubAgentCommissionPercent: 3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildAgentAllocations(&tt.lead)
			require.Error(t, err)
			var invalid *InvalidCommissionError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestFranchiseRemainingShare(t *testing.T) {
	percentageLimit := func(value float64) *models.FranchiseCommissionLimit {
		return &models.FranchiseCommissionLimit{
			LimitType: models.LimitTypePercentage,
			Value:     value,
		}
	}

	t.Run("ceiling minus agent and referral", func(t *testing.T) {
		lead := &models.Lead{
			AgentCommissionPercent:             3,
			ReferralFranchiseCommissionPercent: 1,
		}
		remaining, err := FranchiseRemainingShare(percentageLimit(5), lead)
		require.NoError(t, err)
		assert.Equal(t, 1.0, remaining)
	})

	t.Run("no referral leaves more for the franchise", func(t *testing.T) {
		lead := &models.Lead{AgentCommissionPercent: 3}
		remaining, err := FranchiseRemainingShare(percentageLimit(5), lead)
		require.NoError(t, err)
		assert.Equal(t, 2.0, remaining)
	})

	t.Run("nothing left is an error not a zero invoice", func(t *testing.T) {
		lead := &models.Lead{
			AgentCommissionPercent:             4,
			ReferralFranchiseCommissionPercent: 1,
		}
		_, err := FranchiseRemainingShare(percentageLimit(5), lead)
		require.Error(t, err)
		var invalid *InvalidCommissionError
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("missing limit", func(t *testing.T) {
		_, err := FranchiseRemainingShare(nil, &models.Lead{})
		require.Error(t, err)
		var precondition *PreconditionError
		assert.ErrorAs(t, err, &precondition)
	})

	t.Run("amount based limit", func(t *testing.T) {
		limit := &models.FranchiseCommissionLimit{
			LimitType: models.LimitTypeAmount,
			Value:     100000,
		}
		_, err := FranchiseRemainingShare(limit, &models.Lead{AgentCommissionPercent: 3})
		require.Error(t, err)
		var precondition *PreconditionError
		assert.ErrorAs(t, err, &precondition)
	})
}
