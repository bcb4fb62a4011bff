package offers

import (
	"context"
	"testing"

	"agroshare-backend/internal/ledger"
	"agroshare-backend/internal/models"
	"agroshare-backend/internal/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOffersTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Offer{}, &models.OfferRequest{}, &models.Notification{}))
	return &Service{
		DB:            db,
		Ledger:        ledger.NewService(db, ledger.NewMetrics(nil)),
		MinSharePrice: 5000,
	}, db
}

func TestCreateOffer_ExactDivision(t *testing.T) {
	svc, _ := setupOffersTest(t)

	result, err := svc.CreateOffer(context.Background(), CreateOfferInput{
		FarmerID:    uuid.New(),
		Title:       "Orchard expansion",
		TotalAmount: 150000,
		SharePrice:  5000,
		Publish:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(30), result.Offer.TotalShares)
	assert.Equal(t, int64(30), result.Offer.AvailableShares)
	assert.Equal(t, int64(0), result.Divisibility.Remainder)
	assert.Equal(t, models.OfferStatusPublished, result.Offer.Status)
}

func TestCreateOffer_RemainderIsWarningNotError(t *testing.T) {
	svc, _ := setupOffersTest(t)

	result, err := svc.CreateOffer(context.Background(), CreateOfferInput{
		FarmerID:    uuid.New(),
		Title:       "Greenhouse build",
		TotalAmount: 100000,
		SharePrice:  7000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(14), result.Offer.TotalShares)
	assert.Equal(t, int64(2000), result.Divisibility.Remainder)
	assert.Equal(t, models.OfferStatusDraft, result.Offer.Status)
}

func TestCreateOffer_BelowMinimumPrice(t *testing.T) {
	svc, _ := setupOffersTest(t)

	_, err := svc.CreateOffer(context.Background(), CreateOfferInput{
		FarmerID:    uuid.New(),
		Title:       "Cheap shares",
		TotalAmount: 100000,
		SharePrice:  4999,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeBelowMinimumPrice))
	e, _ := apperr.As(err)
	assert.Equal(t, int64(5000), e.Details["required_minimum"])
}

func TestCreateOffer_MinSharesExceedsTotal(t *testing.T) {
	svc, _ := setupOffersTest(t)

	_, err := svc.CreateOffer(context.Background(), CreateOfferInput{
		FarmerID:    uuid.New(),
		Title:       "Small offer",
		TotalAmount: 50000,
		SharePrice:  5000,
		MinShares:   11,
	})
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidInput))
}

func TestPublishAndCloseTransitions(t *testing.T) {
	svc, _ := setupOffersTest(t)
	farmerID := uuid.New()

	result, err := svc.CreateOffer(context.Background(), CreateOfferInput{
		FarmerID:    farmerID,
		Title:       "Beehive co-op",
		TotalAmount: 50000,
		SharePrice:  5000,
	})
	require.NoError(t, err)
	offerID := result.Offer.OfferID

	offer, err := svc.PublishOffer(context.Background(), farmerID, offerID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusPublished, offer.Status)

	// Publishing twice is an invalid transition.
	_, err = svc.PublishOffer(context.Background(), farmerID, offerID)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidTransition))

	offer, err = svc.CloseOffer(context.Background(), farmerID, offerID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusClosed, offer.Status)

	// Closed is terminal.
	_, err = svc.PublishOffer(context.Background(), farmerID, offerID)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidTransition))
	_, err = svc.CloseOffer(context.Background(), farmerID, offerID)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidTransition))
}

func TestPublishOffer_NotOwner(t *testing.T) {
	svc, _ := setupOffersTest(t)

	result, err := svc.CreateOffer(context.Background(), CreateOfferInput{
		FarmerID:    uuid.New(),
		Title:       "Potato field",
		TotalAmount: 50000,
		SharePrice:  5000,
	})
	require.NoError(t, err)

	_, err = svc.PublishOffer(context.Background(), uuid.New(), result.Offer.OfferID)
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
}

func publishedOffer(t *testing.T, svc *Service, farmerID uuid.UUID, totalAmount, sharePrice, minShares int64) *models.Offer {
	result, err := svc.CreateOffer(context.Background(), CreateOfferInput{
		FarmerID:    farmerID,
		Title:       "Seasonal harvest",
		TotalAmount: totalAmount,
		SharePrice:  sharePrice,
		MinShares:   minShares,
		Publish:     true,
	})
	require.NoError(t, err)
	return result.Offer
}

func TestCreateRequest_PendingWithoutReservation(t *testing.T) {
	svc, db := setupOffersTest(t)
	offer := publishedOffer(t, svc, uuid.New(), 150000, 5000, 1)

	request, err := svc.CreateRequest(context.Background(), uuid.New(), offer.OfferID, 10, "count me in")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, request.Status)
	assert.Equal(t, int64(50000), request.Amount)

	// Availability untouched until approval.
	var stored models.Offer
	require.NoError(t, db.Where("offer_id = ?", offer.OfferID).First(&stored).Error)
	assert.Equal(t, int64(30), stored.AvailableShares)

	// Farmer got a notification.
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("type = ?", models.NotifyRequestCreated).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateRequest_Bounds(t *testing.T) {
	svc, _ := setupOffersTest(t)
	offer := publishedOffer(t, svc, uuid.New(), 150000, 5000, 5)

	_, err := svc.CreateRequest(context.Background(), uuid.New(), offer.OfferID, 3, "")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidInput))
	e, _ := apperr.As(err)
	assert.Equal(t, int64(5), e.Details["min_shares"])

	_, err = svc.CreateRequest(context.Background(), uuid.New(), offer.OfferID, 31, "")
	assert.True(t, apperr.IsCode(err, apperr.CodeInsufficientShares))
}

func TestCreateRequest_DraftOfferNotVisible(t *testing.T) {
	svc, _ := setupOffersTest(t)

	result, err := svc.CreateOffer(context.Background(), CreateOfferInput{
		FarmerID:    uuid.New(),
		Title:       "Unlisted",
		TotalAmount: 50000,
		SharePrice:  5000,
	})
	require.NoError(t, err)

	_, err = svc.CreateRequest(context.Background(), uuid.New(), result.Offer.OfferID, 1, "")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestApprove_ReservesShares(t *testing.T) {
	svc, db := setupOffersTest(t)
	farmerID := uuid.New()
	offer := publishedOffer(t, svc, farmerID, 150000, 5000, 1)

	request, err := svc.CreateRequest(context.Background(), uuid.New(), offer.OfferID, 10, "")
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), farmerID, request.RequestID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, approved.Status)

	var stored models.Offer
	require.NoError(t, db.Where("offer_id = ?", offer.OfferID).First(&stored).Error)
	assert.Equal(t, int64(20), stored.AvailableShares)
}

// Two pending requests that each fit individually but not together: the first
// approval wins, the second fails and the losing request stays pending.
func TestApprove_SecondApprovalCannotOversell(t *testing.T) {
	svc, db := setupOffersTest(t)
	farmerID := uuid.New()
	offer := publishedOffer(t, svc, farmerID, 50000, 5000, 1)

	first, err := svc.CreateRequest(context.Background(), uuid.New(), offer.OfferID, 6, "")
	require.NoError(t, err)
	second, err := svc.CreateRequest(context.Background(), uuid.New(), offer.OfferID, 6, "")
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), farmerID, first.RequestID)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), farmerID, second.RequestID)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInsufficientShares))

	var stored models.Offer
	require.NoError(t, db.Where("offer_id = ?", offer.OfferID).First(&stored).Error)
	assert.Equal(t, int64(4), stored.AvailableShares)

	var storedReq models.OfferRequest
	require.NoError(t, db.Where("request_id = ?", second.RequestID).First(&storedReq).Error)
	assert.Equal(t, models.RequestStatusPending, storedReq.Status)
}

func TestApprove_OnlyOwner(t *testing.T) {
	svc, _ := setupOffersTest(t)
	offer := publishedOffer(t, svc, uuid.New(), 50000, 5000, 1)

	request, err := svc.CreateRequest(context.Background(), uuid.New(), offer.OfferID, 1, "")
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), uuid.New(), request.RequestID)
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
}

func TestReject_TerminalAndNoLedgerEffect(t *testing.T) {
	svc, db := setupOffersTest(t)
	farmerID := uuid.New()
	offer := publishedOffer(t, svc, farmerID, 50000, 5000, 1)

	request, err := svc.CreateRequest(context.Background(), uuid.New(), offer.OfferID, 4, "")
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), farmerID, request.RequestID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, rejected.Status)

	var stored models.Offer
	require.NoError(t, db.Where("offer_id = ?", offer.OfferID).First(&stored).Error)
	assert.Equal(t, int64(10), stored.AvailableShares)

	// Rejected is terminal; neither approve nor re-reject works.
	_, err = svc.Approve(context.Background(), farmerID, request.RequestID)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidTransition))
	_, err = svc.Reject(context.Background(), farmerID, request.RequestID)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidTransition))
}

func TestApprove_FillingOfferClosesIt(t *testing.T) {
	svc, db := setupOffersTest(t)
	farmerID := uuid.New()
	offer := publishedOffer(t, svc, farmerID, 50000, 5000, 1)

	request, err := svc.CreateRequest(context.Background(), uuid.New(), offer.OfferID, 10, "")
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), farmerID, request.RequestID)
	require.NoError(t, err)

	var stored models.Offer
	require.NoError(t, db.Where("offer_id = ?", offer.OfferID).First(&stored).Error)
	assert.Equal(t, int64(0), stored.AvailableShares)
	assert.Equal(t, models.OfferStatusClosed, stored.Status)
}

func TestListRequests(t *testing.T) {
	svc, _ := setupOffersTest(t)
	farmerID := uuid.New()
	investorID := uuid.New()
	offer := publishedOffer(t, svc, farmerID, 150000, 5000, 1)

	_, err := svc.CreateRequest(context.Background(), investorID, offer.OfferID, 2, "")
	require.NoError(t, err)
	_, err = svc.CreateRequest(context.Background(), uuid.New(), offer.OfferID, 3, "")
	require.NoError(t, err)

	forFarmer, err := svc.ListOfferRequests(context.Background(), farmerID)
	require.NoError(t, err)
	assert.Len(t, forFarmer, 2)

	forInvestor, err := svc.ListInvestorRequests(context.Background(), investorID)
	require.NoError(t, err)
	assert.Len(t, forInvestor, 1)
	assert.Equal(t, investorID, forInvestor[0].InvestorID)
}
