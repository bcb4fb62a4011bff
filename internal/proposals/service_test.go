package proposals

import (
	"context"
	"encoding/json"
	"testing"

	"agroshare-backend/internal/models"
	"agroshare-backend/internal/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProposalsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Proposal{}, &models.Investment{},
		&models.DeletionRequest{}, &models.DeletionConfirmation{},
		&models.Notification{},
	))
	return &Service{DB: db, MinSharePrice: 5000}, db
}

func seedProposal(t *testing.T, svc *Service, farmerID uuid.UUID) *models.Proposal {
	proposal, err := svc.CreateProposal(context.Background(), CreateProposalInput{
		FarmerID:    farmerID,
		AssetType:   AssetTypeAnimal,
		Asset:       json.RawMessage(`{"species":"cow","count":12}`),
		Description: "Dairy herd share",
		Price:       5000,
		Shares:      20,
	})
	require.NoError(t, err)
	return proposal
}

func TestCreateProposal_Defaults(t *testing.T) {
	svc, _ := setupProposalsTest(t)
	proposal := seedProposal(t, svc, uuid.New())

	assert.Equal(t, models.ProductTypeIncome, proposal.ProductType)
	assert.Equal(t, "weekly", proposal.UpdateFrequency)
	assert.Equal(t, models.ProposalStatusActive, proposal.Status)
}

func TestCreateProposal_BelowMinimumPrice(t *testing.T) {
	svc, _ := setupProposalsTest(t)

	_, err := svc.CreateProposal(context.Background(), CreateProposalInput{
		FarmerID:    uuid.New(),
		AssetType:   AssetTypeCrop,
		Asset:       json.RawMessage(`{"culture":"wheat","area_hectares":40}`),
		Description: "Wheat field",
		Price:       100,
		Shares:      1,
	})
	assert.True(t, apperr.IsCode(err, apperr.CodeBelowMinimumPrice))
}

func TestValidateAsset(t *testing.T) {
	tests := []struct {
		name      string
		assetType string
		asset     string
		wantErr   bool
	}{
		{"animal ok", AssetTypeAnimal, `{"species":"cow","count":5}`, false},
		{"animal missing count", AssetTypeAnimal, `{"species":"cow"}`, true},
		{"crop ok", AssetTypeCrop, `{"culture":"beet","area_hectares":12.5}`, false},
		{"beehive ok", AssetTypeBeehive, `{"hive_count":30}`, false},
		{"equipment missing year", AssetTypeEquipment, `{"name":"tractor"}`, true},
		{"unknown type", "spaceship", `{"x":1}`, true},
		{"not an object", AssetTypeAnimal, `[1,2]`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAsset(tt.assetType, json.RawMessage(tt.asset))
			if tt.wantErr {
				assert.True(t, apperr.IsCode(err, apperr.CodeInvalidInput))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInvestAndCancel(t *testing.T) {
	svc, db := setupProposalsTest(t)
	investorID := uuid.New()
	proposal := seedProposal(t, svc, uuid.New())

	investment, err := svc.Invest(context.Background(), investorID, proposal.ProposalID, 3)
	require.NoError(t, err)
	assert.Equal(t, models.InvestmentStatusPending, investment.Status)
	assert.Equal(t, int64(15000), investment.Amount)

	// Farmer was notified.
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("type = ?", models.NotifyInvestmentRequest).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Someone else cannot cancel it.
	_, err = svc.CancelInvestment(context.Background(), uuid.New(), investment.InvestmentID)
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))

	cancelled, err := svc.CancelInvestment(context.Background(), investorID, investment.InvestmentID)
	require.NoError(t, err)
	assert.Equal(t, models.InvestmentStatusCancelled, cancelled.Status)

	// Cancelled is terminal.
	_, err = svc.CancelInvestment(context.Background(), investorID, investment.InvestmentID)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidTransition))
}

func TestRequestDeletion_NoInvestmentsIsImmediate(t *testing.T) {
	svc, db := setupProposalsTest(t)
	farmerID := uuid.New()
	proposal := seedProposal(t, svc, farmerID)

	result, err := svc.RequestDeletion(context.Background(), farmerID, proposal.ProposalID, false)
	require.NoError(t, err)
	assert.True(t, result.Deleted)

	var count int64
	require.NoError(t, db.Model(&models.Proposal{}).
		Where("proposal_id = ?", proposal.ProposalID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRequestDeletion_CancelledStakesDoNotBlock(t *testing.T) {
	svc, _ := setupProposalsTest(t)
	farmerID := uuid.New()
	investorID := uuid.New()
	proposal := seedProposal(t, svc, farmerID)

	investment, err := svc.Invest(context.Background(), investorID, proposal.ProposalID, 1)
	require.NoError(t, err)
	_, err = svc.CancelInvestment(context.Background(), investorID, investment.InvestmentID)
	require.NoError(t, err)

	result, err := svc.RequestDeletion(context.Background(), farmerID, proposal.ProposalID, false)
	require.NoError(t, err)
	assert.True(t, result.Deleted)
}

func TestRequestDeletion_WithInvestmentsRequiresConfirmation(t *testing.T) {
	svc, db := setupProposalsTest(t)
	farmerID := uuid.New()
	proposal := seedProposal(t, svc, farmerID)

	_, err := svc.Invest(context.Background(), uuid.New(), proposal.ProposalID, 1)
	require.NoError(t, err)
	_, err = svc.Invest(context.Background(), uuid.New(), proposal.ProposalID, 2)
	require.NoError(t, err)

	_, err = svc.RequestDeletion(context.Background(), farmerID, proposal.ProposalID, false)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeHasActiveInvestments))
	e, _ := apperr.As(err)
	assert.Equal(t, int64(2), e.Details["investor_count"])
	assert.NotNil(t, e.Details["deletion_request_id"])

	// Proposal survives, marked pending deletion.
	var stored models.Proposal
	require.NoError(t, db.Where("proposal_id = ?", proposal.ProposalID).First(&stored).Error)
	assert.Equal(t, models.ProposalStatusPendingDeletion, stored.Status)

	// Asking again reuses the pending request rather than stacking a second.
	_, err = svc.RequestDeletion(context.Background(), farmerID, proposal.ProposalID, false)
	assert.True(t, apperr.IsCode(err, apperr.CodeHasActiveInvestments))
	var requests int64
	require.NoError(t, db.Model(&models.DeletionRequest{}).
		Where("proposal_id = ?", proposal.ProposalID).Count(&requests).Error)
	assert.Equal(t, int64(1), requests)
}

func TestRequestDeletion_ForceCascades(t *testing.T) {
	svc, db := setupProposalsTest(t)
	farmerID := uuid.New()
	proposal := seedProposal(t, svc, farmerID)

	_, err := svc.Invest(context.Background(), uuid.New(), proposal.ProposalID, 1)
	require.NoError(t, err)
	_, err = svc.Invest(context.Background(), uuid.New(), proposal.ProposalID, 4)
	require.NoError(t, err)

	result, err := svc.RequestDeletion(context.Background(), farmerID, proposal.ProposalID, true)
	require.NoError(t, err)
	assert.True(t, result.Deleted)

	var live int64
	require.NoError(t, db.Model(&models.Investment{}).
		Where("proposal_id = ? AND status <> ?", proposal.ProposalID, models.InvestmentStatusCancelled).
		Count(&live).Error)
	assert.Equal(t, int64(0), live)

	// Each investor got a cancellation notice.
	var notices int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("type = ?", models.NotifyInvestmentCancelled).Count(&notices).Error)
	assert.Equal(t, int64(2), notices)
}

func TestRequestDeletion_OnlyOwner(t *testing.T) {
	svc, _ := setupProposalsTest(t)
	proposal := seedProposal(t, svc, uuid.New())

	_, err := svc.RequestDeletion(context.Background(), uuid.New(), proposal.ProposalID, false)
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
}

// Three investors must all confirm before the proposal goes away; two out of
// three leaves everything intact.
func TestConfirmDeletion_UnanimityRequired(t *testing.T) {
	svc, db := setupProposalsTest(t)
	farmerID := uuid.New()
	proposal := seedProposal(t, svc, farmerID)

	investors := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, investorID := range investors {
		_, err := svc.Invest(context.Background(), investorID, proposal.ProposalID, 1)
		require.NoError(t, err)
	}

	_, err := svc.RequestDeletion(context.Background(), farmerID, proposal.ProposalID, false)
	require.Error(t, err)
	e, _ := apperr.As(err)
	requestID, parseErr := uuid.Parse(toString(e.Details["deletion_request_id"]))
	require.NoError(t, parseErr)

	result, err := svc.ConfirmDeletion(context.Background(), investors[0], requestID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ConfirmedInvestors)
	assert.False(t, result.Finalized)

	result, err = svc.ConfirmDeletion(context.Background(), investors[1], requestID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.ConfirmedInvestors)
	assert.False(t, result.Finalized)

	// Not finalized yet: proposal and investments still there.
	var count int64
	require.NoError(t, db.Model(&models.Proposal{}).
		Where("proposal_id = ?", proposal.ProposalID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	result, err = svc.ConfirmDeletion(context.Background(), investors[2], requestID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.ConfirmedInvestors)
	assert.True(t, result.Finalized)

	require.NoError(t, db.Model(&models.Proposal{}).
		Where("proposal_id = ?", proposal.ProposalID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	require.NoError(t, db.Model(&models.Investment{}).
		Where("proposal_id = ?", proposal.ProposalID).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	status, err := svc.GetDeletionRequest(context.Background(), requestID)
	require.NoError(t, err)
	assert.Equal(t, models.DeletionStatusCompleted, status.DeletionRequest.Status)
}

func TestConfirmDeletion_IdempotentPerInvestor(t *testing.T) {
	svc, _ := setupProposalsTest(t)
	farmerID := uuid.New()
	proposal := seedProposal(t, svc, farmerID)

	investors := []uuid.UUID{uuid.New(), uuid.New()}
	for _, investorID := range investors {
		_, err := svc.Invest(context.Background(), investorID, proposal.ProposalID, 1)
		require.NoError(t, err)
	}
	_, err := svc.RequestDeletion(context.Background(), farmerID, proposal.ProposalID, false)
	require.Error(t, err)
	e, _ := apperr.As(err)
	requestID, _ := uuid.Parse(toString(e.Details["deletion_request_id"]))

	result, err := svc.ConfirmDeletion(context.Background(), investors[0], requestID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ConfirmedInvestors)

	// The same investor confirming again does not double-count.
	result, err = svc.ConfirmDeletion(context.Background(), investors[0], requestID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ConfirmedInvestors)
	assert.False(t, result.Finalized)
}

func TestConfirmDeletion_OutsiderForbidden(t *testing.T) {
	svc, _ := setupProposalsTest(t)
	farmerID := uuid.New()
	proposal := seedProposal(t, svc, farmerID)

	_, err := svc.Invest(context.Background(), uuid.New(), proposal.ProposalID, 1)
	require.NoError(t, err)
	_, err = svc.RequestDeletion(context.Background(), farmerID, proposal.ProposalID, false)
	require.Error(t, err)
	e, _ := apperr.As(err)
	requestID, _ := uuid.Parse(toString(e.Details["deletion_request_id"]))

	_, err = svc.ConfirmDeletion(context.Background(), uuid.New(), requestID)
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case uuid.UUID:
		return s.String()
	default:
		return ""
	}
}
