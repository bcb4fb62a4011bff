package proposals

import (
	"context"
	"encoding/json"

	"agroshare-backend/internal/models"
	"agroshare-backend/internal/pkg/apperr"
	"agroshare-backend/internal/pricing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service implements the proposal lifecycle, investor stakes and the
// unanimous-confirmation deletion protocol.
type Service struct {
	DB            *gorm.DB
	MinSharePrice int64
}

type CreateProposalInput struct {
	FarmerID        uuid.UUID
	ProductType     string
	AssetType       string
	Asset           json.RawMessage
	Description     string
	PhotoURL        string
	Price           int64
	Shares          int64
	ExpectedProduct string
	UpdateFrequency string
}

var productTypes = map[string]bool{
	models.ProductTypeIncome:    true,
	models.ProductTypeProducts:  true,
	models.ProductTypePatronage: true,
}

func (s *Service) CreateProposal(ctx context.Context, in CreateProposalInput) (*models.Proposal, error) {
	if in.Description == "" {
		return nil, apperr.InvalidInput("description is required")
	}
	if in.Shares < 1 {
		return nil, apperr.InvalidInput("shares must be at least 1")
	}
	if err := pricing.EnforceMinimumPrice(in.Price, s.MinSharePrice); err != nil {
		return nil, err
	}
	if err := ValidateAsset(in.AssetType, in.Asset); err != nil {
		return nil, err
	}
	productType := in.ProductType
	if productType == "" {
		productType = models.ProductTypeIncome
	}
	if !productTypes[productType] {
		return nil, apperr.InvalidInput("unknown product_type").WithDetail("product_type", productType)
	}
	updateFrequency := in.UpdateFrequency
	if updateFrequency == "" {
		updateFrequency = "weekly"
	}

	proposal := &models.Proposal{
		FarmerID:        in.FarmerID,
		ProductType:     productType,
		AssetType:       in.AssetType,
		Asset:           datatypes.JSON(in.Asset),
		Description:     in.Description,
		PhotoURL:        in.PhotoURL,
		Price:           in.Price,
		Shares:          in.Shares,
		ExpectedProduct: in.ExpectedProduct,
		UpdateFrequency: updateFrequency,
		Status:          models.ProposalStatusActive,
	}
	if err := s.DB.WithContext(ctx).Create(proposal).Error; err != nil {
		return nil, err
	}
	return proposal, nil
}

// ListProposals returns active proposals, optionally filtered by product type.
func (s *Service) ListProposals(ctx context.Context, productType string) ([]models.Proposal, error) {
	q := s.DB.WithContext(ctx).Where("status = ?", models.ProposalStatusActive)
	if productType != "" {
		q = q.Where("product_type = ?", productType)
	}
	var out []models.Proposal
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) ListFarmerProposals(ctx context.Context, farmerID uuid.UUID) ([]models.Proposal, error) {
	var out []models.Proposal
	if err := s.DB.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) GetProposal(ctx context.Context, proposalID uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := s.DB.WithContext(ctx).Where("proposal_id = ?", proposalID).First(&proposal).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Proposal")
		}
		return nil, err
	}
	return &proposal, nil
}

// Invest creates a pending stake on an active proposal and notifies the
// farmer. Amount is shares at the proposal price.
func (s *Service) Invest(ctx context.Context, investorID, proposalID uuid.UUID, shares int64) (*models.Investment, error) {
	if shares <= 0 {
		return nil, apperr.InvalidInput("shares must be positive")
	}
	proposal, err := s.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != models.ProposalStatusActive {
		return nil, apperr.InvalidTransition(proposal.Status, models.ProposalStatusActive)
	}

	investment := &models.Investment{
		ProposalID: proposalID,
		InvestorID: investorID,
		Amount:     shares * proposal.Price,
		Shares:     shares,
		Status:     models.InvestmentStatusPending,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(investment).Error; err != nil {
			return err
		}
		return notify(tx, &proposal.FarmerID, "farmer", models.NotifyInvestmentRequest, map[string]interface{}{
			"investment_id": investment.InvestmentID,
			"proposal_id":   proposalID,
			"investor_id":   investorID,
		})
	})
	if err != nil {
		return nil, err
	}
	return investment, nil
}

// CancelInvestment withdraws the investor's own pending stake.
func (s *Service) CancelInvestment(ctx context.Context, investorID, investmentID uuid.UUID) (*models.Investment, error) {
	var investment models.Investment
	if err := s.DB.WithContext(ctx).Where("investment_id = ?", investmentID).First(&investment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Investment")
		}
		return nil, err
	}
	if investment.InvestorID != investorID {
		return nil, apperr.Forbidden("Not the investment owner")
	}
	if investment.Status != models.InvestmentStatusPending {
		return nil, apperr.InvalidTransition(investment.Status, models.InvestmentStatusCancelled)
	}
	if err := s.DB.WithContext(ctx).Model(&investment).
		Update("status", models.InvestmentStatusCancelled).Error; err != nil {
		return nil, err
	}
	investment.Status = models.InvestmentStatusCancelled
	return &investment, nil
}

// ListInvestorInvestments returns the investor's portfolio across proposals.
func (s *Service) ListInvestorInvestments(ctx context.Context, investorID uuid.UUID) ([]models.Investment, error) {
	var out []models.Investment
	if err := s.DB.WithContext(ctx).
		Where("investor_id = ?", investorID).
		Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// RequestDeletionResult reports whether the proposal was removed. When
// confirmation is required instead, the call fails with a typed error
// carrying the deletion_request_id and investor count.
type RequestDeletionResult struct {
	Deleted bool `json:"deleted"`
}

// RequestDeletion runs the deletion protocol for an owned proposal.
// Without active investments removal is immediate. With investments, force
// cancels every live stake and deletes; otherwise a DeletionRequest is
// opened and the call fails with has_active_investments so the farmer can
// decide to force.
func (s *Service) RequestDeletion(ctx context.Context, farmerID, proposalID uuid.UUID, force bool) (*RequestDeletionResult, error) {
	proposal, err := s.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.FarmerID != farmerID {
		return nil, apperr.Forbidden("Not the proposal owner")
	}

	investors, err := s.activeInvestors(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if len(investors) == 0 {
		if err := s.DB.WithContext(ctx).Delete(&models.Proposal{}, "proposal_id = ?", proposalID).Error; err != nil {
			return nil, err
		}
		return &RequestDeletionResult{Deleted: true}, nil
	}

	if force {
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Investment{}).
				Where("proposal_id = ? AND status IN ?", proposalID,
					[]string{models.InvestmentStatusPending, models.InvestmentStatusApproved}).
				Update("status", models.InvestmentStatusCancelled).Error; err != nil {
				return err
			}
			for _, investorID := range investors {
				id := investorID
				if err := notify(tx, &id, "investor", models.NotifyInvestmentCancelled, map[string]interface{}{
					"proposal_id": proposalID,
					"reason":      "proposal_deleted",
				}); err != nil {
					return err
				}
			}
			return tx.Delete(&models.Proposal{}, "proposal_id = ?", proposalID).Error
		})
		if err != nil {
			return nil, err
		}
		return &RequestDeletionResult{Deleted: true}, nil
	}

	var request models.DeletionRequest
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Reuse an already pending request instead of stacking a second one.
		err := tx.Where("proposal_id = ? AND status = ?", proposalID, models.DeletionStatusPending).
			First(&request).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		request = models.DeletionRequest{
			ProposalID:     proposalID,
			TotalInvestors: int64(len(investors)),
			Status:         models.DeletionStatusPending,
		}
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Proposal{}).
			Where("proposal_id = ?", proposalID).
			Update("status", models.ProposalStatusPendingDeletion).Error; err != nil {
			return err
		}
		for _, investorID := range investors {
			id := investorID
			if err := notify(tx, &id, "investor", models.NotifyDeletionConfirmation, map[string]interface{}{
				"deletion_request_id": request.DeletionRequestID,
				"proposal_id":         proposalID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nil, apperr.HasActiveInvestments(int64(len(investors))).
		WithDetail("deletion_request_id", request.DeletionRequestID)
}

// ConfirmDeletionResult carries the derived confirmation progress.
type ConfirmDeletionResult struct {
	DeletionRequest    *models.DeletionRequest `json:"deletion_request"`
	ConfirmedInvestors int64                   `json:"confirmed_investors"`
	Finalized          bool                    `json:"finalized"`
}

// ConfirmDeletion records one investor's sign-off. Idempotent per investor;
// when every investor has confirmed, the proposal and its investments are
// removed in one transaction.
func (s *Service) ConfirmDeletion(ctx context.Context, investorID, deletionRequestID uuid.UUID) (*ConfirmDeletionResult, error) {
	var request models.DeletionRequest
	if err := s.DB.WithContext(ctx).
		Where("deletion_request_id = ?", deletionRequestID).First(&request).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Deletion request")
		}
		return nil, err
	}
	if request.Status != models.DeletionStatusPending {
		return nil, apperr.InvalidTransition(request.Status, models.DeletionStatusPending)
	}

	isInvestor, err := s.holdsStake(ctx, request.ProposalID, investorID)
	if err != nil {
		return nil, err
	}
	if !isInvestor {
		return nil, apperr.Forbidden("Only investors in the proposal may confirm its deletion")
	}

	result := &ConfirmDeletionResult{DeletionRequest: &request}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.DeletionConfirmation
		err := tx.Where("deletion_request_id = ? AND investor_id = ?", deletionRequestID, investorID).
			First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			now := tx.NowFunc()
			if err := tx.Create(&models.DeletionConfirmation{
				DeletionRequestID: deletionRequestID,
				InvestorID:        investorID,
				Confirmed:         true,
				ConfirmedAt:       &now,
			}).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		// Counter derived from the confirmation rows, never incremented raw.
		var confirmed int64
		if err := tx.Model(&models.DeletionConfirmation{}).
			Where("deletion_request_id = ? AND confirmed = ?", deletionRequestID, true).
			Count(&confirmed).Error; err != nil {
			return err
		}
		result.ConfirmedInvestors = confirmed

		if confirmed < request.TotalInvestors {
			return nil
		}
		if err := tx.Delete(&models.Investment{}, "proposal_id = ?", request.ProposalID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Proposal{}, "proposal_id = ?", request.ProposalID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.DeletionRequest{}).
			Where("deletion_request_id = ?", deletionRequestID).
			Update("status", models.DeletionStatusCompleted).Error; err != nil {
			return err
		}
		request.Status = models.DeletionStatusCompleted
		result.Finalized = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetDeletionRequest returns the request with its derived confirmation count.
func (s *Service) GetDeletionRequest(ctx context.Context, deletionRequestID uuid.UUID) (*ConfirmDeletionResult, error) {
	var request models.DeletionRequest
	if err := s.DB.WithContext(ctx).
		Where("deletion_request_id = ?", deletionRequestID).First(&request).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Deletion request")
		}
		return nil, err
	}
	var confirmed int64
	if err := s.DB.WithContext(ctx).Model(&models.DeletionConfirmation{}).
		Where("deletion_request_id = ? AND confirmed = ?", request.DeletionRequestID, true).
		Count(&confirmed).Error; err != nil {
		return nil, err
	}
	return &ConfirmDeletionResult{
		DeletionRequest:    &request,
		ConfirmedInvestors: confirmed,
		Finalized:          request.Status == models.DeletionStatusCompleted,
	}, nil
}

// activeInvestors returns the distinct investors with live stakes.
func (s *Service) activeInvestors(ctx context.Context, proposalID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.DB.WithContext(ctx).Model(&models.Investment{}).
		Distinct("investor_id").
		Where("proposal_id = ? AND status IN ?", proposalID,
			[]string{models.InvestmentStatusPending, models.InvestmentStatusApproved}).
		Pluck("investor_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Service) holdsStake(ctx context.Context, proposalID, investorID uuid.UUID) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Investment{}).
		Where("proposal_id = ? AND investor_id = ? AND status IN ?", proposalID, investorID,
			[]string{models.InvestmentStatusPending, models.InvestmentStatusApproved}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func notify(tx *gorm.DB, userID *uuid.UUID, role, notifType string, payload map[string]interface{}) error {
	b, _ := json.Marshal(payload)
	return tx.Create(&models.Notification{
		UserID:  userID,
		Role:    role,
		Type:    notifType,
		Payload: datatypes.JSON(b),
	}).Error
}
