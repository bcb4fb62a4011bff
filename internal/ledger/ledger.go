// Package ledger tracks available shares per offer and applies atomic debits
// and credits as requests are approved, rejected or cancelled. Two concurrent
// reservations against the same offer are serialized by a per-offer lock so
// the ledger never double-spends inventory.
package ledger

import (
	"context"
	"sync"

	"agroshare-backend/internal/models"
	"agroshare-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Service struct {
	DB      *gorm.DB
	Metrics *Metrics

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewService(db *gorm.DB, metrics *Metrics) *Service {
	return &Service{DB: db, Metrics: metrics, locks: map[uuid.UUID]*sync.Mutex{}}
}

// lockFor returns the mutex serializing writes to one offer's availability.
func (s *Service) lockFor(offerID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks == nil {
		s.locks = map[uuid.UUID]*sync.Mutex{}
	}
	l, ok := s.locks[offerID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[offerID] = l
	}
	return l
}

// WithOfferLock runs fn while holding the offer's lock. Callers that need to
// combine a reservation with other writes (e.g. flipping a request to
// approved) wrap the whole transaction in this.
func (s *Service) WithOfferLock(offerID uuid.UUID, fn func() error) error {
	l := s.lockFor(offerID)
	l.Lock()
	defer l.Unlock()
	return fn()
}

// ReserveTx debits amount from the offer's available shares inside an existing
// transaction. The caller must hold the offer lock (see WithOfferLock). The
// offer transitions to closed when availability reaches zero and never
// auto-reopens.
func (s *Service) ReserveTx(ctx context.Context, tx *gorm.DB, offerID uuid.UUID, amount int64) (*models.Offer, error) {
	if amount <= 0 {
		return nil, apperr.InvalidInput("reservation amount must be positive")
	}
	var offer models.Offer
	if err := tx.WithContext(ctx).Where("offer_id = ?", offerID).First(&offer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Offer")
		}
		return nil, err
	}
	if amount > offer.AvailableShares {
		if s.Metrics != nil {
			s.Metrics.ReservationFailures.Inc()
		}
		return nil, apperr.InsufficientShares(amount, offer.AvailableShares)
	}
	offer.AvailableShares -= amount
	if offer.AvailableShares == 0 {
		offer.Status = models.OfferStatusClosed
	}
	if err := tx.WithContext(ctx).Model(&models.Offer{}).Where("offer_id = ?", offerID).
		Updates(map[string]interface{}{
			"available_shares": offer.AvailableShares,
			"status":           offer.Status,
		}).Error; err != nil {
		return nil, err
	}
	if s.Metrics != nil {
		s.Metrics.Reservations.Inc()
	}
	return &offer, nil
}

// ReleaseTx credits amount back to the offer. Over-release indicates a caller
// bug: the value is clamped at total_shares, but the call fails with an
// invariant violation and is logged loudly rather than ignored.
func (s *Service) ReleaseTx(ctx context.Context, tx *gorm.DB, offerID uuid.UUID, amount int64) (*models.Offer, error) {
	if amount <= 0 {
		return nil, apperr.InvalidInput("release amount must be positive")
	}
	var offer models.Offer
	if err := tx.WithContext(ctx).Where("offer_id = ?", offerID).First(&offer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Offer")
		}
		return nil, err
	}

	newAvailable := offer.AvailableShares + amount
	overRelease := newAvailable > offer.TotalShares
	if overRelease {
		newAvailable = offer.TotalShares
	}
	offer.AvailableShares = newAvailable
	if err := tx.WithContext(ctx).Model(&models.Offer{}).Where("offer_id = ?", offerID).
		Update("available_shares", newAvailable).Error; err != nil {
		return nil, err
	}

	if overRelease {
		if s.Metrics != nil {
			s.Metrics.InvariantViolations.Inc()
		}
		log.Error().
			Str("offer_id", offerID.String()).
			Int64("amount", amount).
			Int64("total_shares", offer.TotalShares).
			Msg("Ledger over-release clamped")
		return &offer, apperr.InvariantViolation("release exceeds total shares")
	}
	if s.Metrics != nil {
		s.Metrics.Releases.Inc()
	}
	return &offer, nil
}

// Reserve is the standalone form: takes the offer lock and runs its own
// transaction.
func (s *Service) Reserve(ctx context.Context, offerID uuid.UUID, amount int64) (*models.Offer, error) {
	var offer *models.Offer
	err := s.WithOfferLock(offerID, func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			offer, err = s.ReserveTx(ctx, tx, offerID, amount)
			return err
		})
	})
	return offer, err
}

// Release is the standalone form of ReleaseTx. The defensive clamp on
// over-release is committed, not rolled back, so the invariant error is
// carried out of the transaction separately.
func (s *Service) Release(ctx context.Context, offerID uuid.UUID, amount int64) (*models.Offer, error) {
	var offer *models.Offer
	var invariantErr error
	err := s.WithOfferLock(offerID, func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			offer, err = s.ReleaseTx(ctx, tx, offerID, amount)
			if err != nil && apperr.IsCode(err, apperr.CodeInvariantViolation) {
				invariantErr = err
				return nil
			}
			return err
		})
	})
	if err == nil {
		err = invariantErr
	}
	return offer, err
}
