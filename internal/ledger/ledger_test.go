package ledger

import (
	"context"
	"sync"
	"testing"

	"agroshare-backend/internal/models"
	"agroshare-backend/internal/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupLedgerTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Offer{}))
	return NewService(db, NewMetrics(nil)), db
}

func seedOffer(t *testing.T, db *gorm.DB, total, available int64) *models.Offer {
	offer := &models.Offer{
		FarmerID:        uuid.New(),
		Title:           "Dairy herd expansion",
		TotalAmount:     total * 5000,
		SharePrice:      5000,
		TotalShares:     total,
		AvailableShares: available,
		MinShares:       1,
		Status:          models.OfferStatusPublished,
	}
	require.NoError(t, db.Create(offer).Error)
	return offer
}

func TestReserve_DebitsAvailability(t *testing.T) {
	svc, db := setupLedgerTest(t)
	offer := seedOffer(t, db, 30, 30)

	got, err := svc.Reserve(context.Background(), offer.OfferID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.AvailableShares)
	assert.Equal(t, models.OfferStatusPublished, got.Status)
}

func TestReserve_InsufficientShares(t *testing.T) {
	svc, db := setupLedgerTest(t)
	offer := seedOffer(t, db, 30, 5)

	_, err := svc.Reserve(context.Background(), offer.OfferID, 6)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInsufficientShares))

	var stored models.Offer
	require.NoError(t, db.Where("offer_id = ?", offer.OfferID).First(&stored).Error)
	assert.Equal(t, int64(5), stored.AvailableShares)
}

func TestReserve_ClosesOfferAtZero(t *testing.T) {
	svc, db := setupLedgerTest(t)
	offer := seedOffer(t, db, 10, 10)

	got, err := svc.Reserve(context.Background(), offer.OfferID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.AvailableShares)
	assert.Equal(t, models.OfferStatusClosed, got.Status)

	// A release after close does not reopen the offer.
	got, err = svc.Release(context.Background(), offer.OfferID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.AvailableShares)
	var stored models.Offer
	require.NoError(t, db.Where("offer_id = ?", offer.OfferID).First(&stored).Error)
	assert.Equal(t, models.OfferStatusClosed, stored.Status)
}

func TestRelease_OverReleaseIsInvariantViolation(t *testing.T) {
	svc, db := setupLedgerTest(t)
	offer := seedOffer(t, db, 10, 8)

	_, err := svc.Release(context.Background(), offer.OfferID, 5)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvariantViolation))

	// Clamped at total_shares, and the clamp is persisted.
	var stored models.Offer
	require.NoError(t, db.Where("offer_id = ?", offer.OfferID).First(&stored).Error)
	assert.Equal(t, int64(10), stored.AvailableShares)
}

func TestReserve_InvalidAmount(t *testing.T) {
	svc, db := setupLedgerTest(t)
	offer := seedOffer(t, db, 10, 10)

	_, err := svc.Reserve(context.Background(), offer.OfferID, 0)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidInput))
	_, err = svc.Release(context.Background(), offer.OfferID, -1)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidInput))
}

func TestReserve_UnknownOffer(t *testing.T) {
	svc, _ := setupLedgerTest(t)
	_, err := svc.Reserve(context.Background(), uuid.New(), 1)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

// Concurrent reservations whose sum exceeds availability: at most the
// available total is ever handed out, and the ledger balances exactly.
func TestReserve_NoDoubleSpendUnderConcurrency(t *testing.T) {
	svc, db := setupLedgerTest(t)
	offer := seedOffer(t, db, 10, 10)

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := int64(0)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Reserve(context.Background(), offer.OfferID, 6); err == nil {
				mu.Lock()
				granted += 6
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Only one 6-share reservation can fit in 10.
	assert.Equal(t, int64(6), granted)

	var stored models.Offer
	require.NoError(t, db.Where("offer_id = ?", offer.OfferID).First(&stored).Error)
	assert.Equal(t, int64(4), stored.AvailableShares)
	assert.Equal(t, stored.TotalShares, stored.AvailableShares+granted)
}
