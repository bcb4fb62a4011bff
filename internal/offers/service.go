package offers

import (
	"context"
	"encoding/json"

	"agroshare-backend/internal/ledger"
	"agroshare-backend/internal/models"
	"agroshare-backend/internal/pkg/apperr"
	"agroshare-backend/internal/pricing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service implements the offer lifecycle and the request workflow. Shares are
// reserved through the ledger at approval time: requests are intents,
// approvals are commitments.
type Service struct {
	DB            *gorm.DB
	Ledger        *ledger.Service
	MinSharePrice int64
}

type CreateOfferInput struct {
	FarmerID              uuid.UUID
	FarmName              string
	Title                 string
	Description           string
	Asset                 string
	TotalAmount           int64
	SharePrice            int64
	MinShares             int64
	ExpectedMonthlyIncome *int64
	Region                string
	City                  string
	Socials               string
	Publish               bool
}

// CreateOfferResult carries the new offer plus the divisibility check; a
// non-zero remainder is returned as a warning, submission is not blocked here.
type CreateOfferResult struct {
	Offer        *models.Offer
	Divisibility pricing.Divisibility
}

func (s *Service) CreateOffer(ctx context.Context, in CreateOfferInput) (*CreateOfferResult, error) {
	if in.Title == "" {
		return nil, apperr.InvalidInput("title is required")
	}
	if err := pricing.EnforceMinimumPrice(in.SharePrice, s.MinSharePrice); err != nil {
		return nil, err
	}
	div, err := pricing.CheckDivisibility(in.TotalAmount, in.SharePrice)
	if err != nil {
		return nil, err
	}
	minShares := in.MinShares
	if minShares < 1 {
		minShares = 1
	}
	if minShares > div.Shares {
		return nil, apperr.InvalidInput("min_shares exceeds total shares")
	}

	status := models.OfferStatusDraft
	if in.Publish {
		status = models.OfferStatusPublished
	}
	offer := &models.Offer{
		FarmerID:              in.FarmerID,
		FarmName:              in.FarmName,
		Title:                 in.Title,
		Description:           in.Description,
		Asset:                 in.Asset,
		TotalAmount:           in.TotalAmount,
		SharePrice:            in.SharePrice,
		TotalShares:           div.Shares,
		AvailableShares:       div.Shares,
		MinShares:             minShares,
		ExpectedMonthlyIncome: in.ExpectedMonthlyIncome,
		Region:                in.Region,
		City:                  in.City,
		Socials:               in.Socials,
		Status:                status,
	}
	if err := s.DB.WithContext(ctx).Create(offer).Error; err != nil {
		return nil, err
	}
	return &CreateOfferResult{Offer: offer, Divisibility: div}, nil
}

// PublishOffer moves a draft offer to published. Owner-only.
func (s *Service) PublishOffer(ctx context.Context, farmerID, offerID uuid.UUID) (*models.Offer, error) {
	offer, err := s.ownedOffer(ctx, farmerID, offerID)
	if err != nil {
		return nil, err
	}
	if offer.Status != models.OfferStatusDraft {
		return nil, apperr.InvalidTransition(offer.Status, models.OfferStatusPublished)
	}
	offer.Status = models.OfferStatusPublished
	if err := s.DB.WithContext(ctx).Model(offer).Update("status", offer.Status).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

// CloseOffer closes a published offer explicitly. Owner-only. Closed offers
// never reopen.
func (s *Service) CloseOffer(ctx context.Context, farmerID, offerID uuid.UUID) (*models.Offer, error) {
	offer, err := s.ownedOffer(ctx, farmerID, offerID)
	if err != nil {
		return nil, err
	}
	if offer.Status == models.OfferStatusClosed {
		return nil, apperr.InvalidTransition(offer.Status, models.OfferStatusClosed)
	}
	offer.Status = models.OfferStatusClosed
	if err := s.DB.WithContext(ctx).Model(offer).Update("status", offer.Status).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *Service) ownedOffer(ctx context.Context, farmerID, offerID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := s.DB.WithContext(ctx).Where("offer_id = ?", offerID).First(&offer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Offer")
		}
		return nil, err
	}
	if offer.FarmerID != farmerID {
		return nil, apperr.Forbidden("Not the offer owner")
	}
	return &offer, nil
}

// ListPublishedOffers returns offers visible to investors, newest first.
func (s *Service) ListPublishedOffers(ctx context.Context) ([]models.Offer, error) {
	var out []models.Offer
	if err := s.DB.WithContext(ctx).
		Where("status = ?", models.OfferStatusPublished).
		Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) GetOffer(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := s.DB.WithContext(ctx).Where("offer_id = ?", offerID).First(&offer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Offer")
		}
		return nil, err
	}
	return &offer, nil
}

func (s *Service) ListFarmerOffers(ctx context.Context, farmerID uuid.UUID) ([]models.Offer, error) {
	var out []models.Offer
	if err := s.DB.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRequest records an investor's intent. Bounds are validated against
// current availability but nothing is reserved yet.
func (s *Service) CreateRequest(ctx context.Context, investorID, offerID uuid.UUID, sharesRequested int64, message string) (*models.OfferRequest, error) {
	if sharesRequested <= 0 {
		return nil, apperr.InvalidInput("shares_requested must be positive")
	}
	var offer models.Offer
	if err := s.DB.WithContext(ctx).
		Where("offer_id = ? AND status = ?", offerID, models.OfferStatusPublished).
		First(&offer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Offer")
		}
		return nil, err
	}
	if sharesRequested < offer.MinShares {
		return nil, apperr.InvalidInput("shares_requested is below the offer minimum").
			WithDetail("min_shares", offer.MinShares)
	}
	if sharesRequested > offer.AvailableShares {
		return nil, apperr.InsufficientShares(sharesRequested, offer.AvailableShares)
	}

	request := &models.OfferRequest{
		OfferID:         offerID,
		InvestorID:      investorID,
		SharesRequested: sharesRequested,
		Amount:          sharesRequested * offer.SharePrice,
		Message:         message,
		Status:          models.RequestStatusPending,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(request).Error; err != nil {
			return err
		}
		return notify(tx, &offer.FarmerID, "farmer", models.NotifyRequestCreated, map[string]interface{}{
			"request_id":  request.RequestID,
			"offer_id":    offerID,
			"investor_id": investorID,
		})
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Approve reserves the requested shares and flips the request to approved.
// On a ledger rejection (another approval consumed the shares first) the
// request stays pending so the farmer can retry or reject.
func (s *Service) Approve(ctx context.Context, farmerID, requestID uuid.UUID) (*models.OfferRequest, error) {
	request, offer, err := s.requestWithOffer(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if offer.FarmerID != farmerID {
		return nil, apperr.Forbidden("Only the offer owner may approve requests")
	}
	if request.Status != models.RequestStatusPending {
		return nil, apperr.InvalidTransition(request.Status, models.RequestStatusApproved)
	}

	err = s.Ledger.WithOfferLock(offer.OfferID, func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			// Re-read under the lock: another approval may have landed.
			var fresh models.OfferRequest
			if err := tx.Where("request_id = ?", requestID).First(&fresh).Error; err != nil {
				return err
			}
			if fresh.Status != models.RequestStatusPending {
				return apperr.InvalidTransition(fresh.Status, models.RequestStatusApproved)
			}
			if _, err := s.Ledger.ReserveTx(ctx, tx, offer.OfferID, fresh.SharesRequested); err != nil {
				return err
			}
			if err := tx.Model(&models.OfferRequest{}).
				Where("request_id = ?", requestID).
				Update("status", models.RequestStatusApproved).Error; err != nil {
				return err
			}
			return notify(tx, &fresh.InvestorID, "investor", models.NotifyRequestApproved, map[string]interface{}{
				"request_id": requestID,
				"offer_id":   offer.OfferID,
				"shares":     fresh.SharesRequested,
			})
		})
	})
	if err != nil {
		return nil, err
	}
	request.Status = models.RequestStatusApproved
	return request, nil
}

// Reject flips a pending request to rejected. No ledger effect.
func (s *Service) Reject(ctx context.Context, farmerID, requestID uuid.UUID) (*models.OfferRequest, error) {
	request, offer, err := s.requestWithOffer(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if offer.FarmerID != farmerID {
		return nil, apperr.Forbidden("Only the offer owner may reject requests")
	}
	if request.Status != models.RequestStatusPending {
		return nil, apperr.InvalidTransition(request.Status, models.RequestStatusRejected)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OfferRequest{}).
			Where("request_id = ? AND status = ?", requestID, models.RequestStatusPending).
			Update("status", models.RequestStatusRejected).Error; err != nil {
			return err
		}
		return notify(tx, &request.InvestorID, "investor", models.NotifyRequestRejected, map[string]interface{}{
			"request_id": requestID,
			"offer_id":   offer.OfferID,
		})
	})
	if err != nil {
		return nil, err
	}
	request.Status = models.RequestStatusRejected
	return request, nil
}

// ListOfferRequests returns all requests against the farmer's offers.
func (s *Service) ListOfferRequests(ctx context.Context, farmerID uuid.UUID) ([]models.OfferRequest, error) {
	var out []models.OfferRequest
	err := s.DB.WithContext(ctx).
		Joins("JOIN investment_offers ON investment_offers.offer_id = investment_requests.offer_id").
		Where("investment_offers.farmer_id = ?", farmerID).
		Order("investment_requests.created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListInvestorRequests returns the investor's own requests.
func (s *Service) ListInvestorRequests(ctx context.Context, investorID uuid.UUID) ([]models.OfferRequest, error) {
	var out []models.OfferRequest
	if err := s.DB.WithContext(ctx).
		Where("investor_id = ?", investorID).
		Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) requestWithOffer(ctx context.Context, requestID uuid.UUID) (*models.OfferRequest, *models.Offer, error) {
	var request models.OfferRequest
	if err := s.DB.WithContext(ctx).Where("request_id = ?", requestID).First(&request).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, apperr.NotFound("Request")
		}
		return nil, nil, err
	}
	var offer models.Offer
	if err := s.DB.WithContext(ctx).Where("offer_id = ?", request.OfferID).First(&offer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, apperr.NotFound("Offer")
		}
		return nil, nil, err
	}
	return &request, &offer, nil
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
