package rating

import (
	"context"
	"encoding/json"
	"time"

	"agroshare-backend/internal/models"
	"agroshare-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const cacheKeyPrefix = "rating:"

// Service maintains the persisted rating projection. Reads go through Redis;
// any diagnosis change recomputes the row and drops the cache entry.
type Service struct {
	DB           *gorm.DB
	Redis        *redis.Client
	Coefficients CoefficientTable
	CacheTTL     time.Duration
}

// CalculateResult is the response of the stateless calculate action.
type CalculateResult struct {
	Breakdown   Breakdown `json:"breakdown"`
	Weighted    Breakdown `json:"weighted"`
	TotalRating int       `json:"total_rating"`
	Band        string    `json:"band"`
}

// Calculate scores a submitted payload without touching storage.
func (s *Service) Calculate(d Diagnostics, p Profile) CalculateResult {
	breakdown := Score(d, p)
	weighted := ApplyCoefficients(breakdown, s.Coefficients.ForRegion(p.Region))
	total := Total(weighted)
	return CalculateResult{
		Breakdown:   breakdown,
		Weighted:    weighted,
		TotalRating: total,
		Band:        Band(total),
	}
}

// Recompute rebuilds a farmer's rating row from the stored diagnosis and
// invalidates the cache entry.
func (s *Service) Recompute(ctx context.Context, farmerID uuid.UUID) (*models.FarmerRating, error) {
	var diagnosis models.FarmerDiagnosis
	if err := s.DB.WithContext(ctx).Where("farmer_id = ?", farmerID).First(&diagnosis).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Diagnosis")
		}
		return nil, err
	}
	return s.recomputeFrom(ctx, &diagnosis)
}

func (s *Service) recomputeFrom(ctx context.Context, diagnosis *models.FarmerDiagnosis) (*models.FarmerRating, error) {
	diag, err := DiagnosticsFromModel(diagnosis)
	if err != nil {
		return nil, err
	}
	result := s.Calculate(diag, Profile{Region: diagnosis.Region})

	rating := &models.FarmerRating{
		FarmerID:       diagnosis.FarmerID,
		Region:         diagnosis.Region,
		RegionScore:    result.Weighted.Region,
		LandScore:      result.Weighted.Land,
		AnimalScore:    result.Weighted.Animal,
		EquipmentScore: result.Weighted.Equipment,
		CropScore:      result.Weighted.Crop,
		StaffScore:     result.Weighted.Staff,
		FinanceScore:   result.Weighted.Finance,
		TotalRating:    result.TotalRating,
		Band:           result.Band,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.FarmerRating
		err := tx.Where("farmer_id = ?", diagnosis.FarmerID).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			return tx.Create(rating).Error
		}
		if err != nil {
			return err
		}
		rating.RatingID = existing.RatingID
		rating.CreatedAt = existing.CreatedAt
		return tx.Model(&existing).Updates(map[string]interface{}{
			"region":          rating.Region,
			"region_score":    rating.RegionScore,
			"land_score":      rating.LandScore,
			"animal_score":    rating.AnimalScore,
			"equipment_score": rating.EquipmentScore,
			"crop_score":      rating.CropScore,
			"staff_score":     rating.StaffScore,
			"finance_score":   rating.FinanceScore,
			"total_rating":    rating.TotalRating,
			"band":            rating.Band,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, diagnosis.FarmerID)
	return rating, nil
}

// GetRating returns a farmer's persisted rating, served from Redis when warm.
func (s *Service) GetRating(ctx context.Context, farmerID uuid.UUID) (*models.FarmerRating, error) {
	key := cacheKeyPrefix + farmerID.String()
	if s.Redis != nil {
		if b, err := s.Redis.Get(ctx, key).Bytes(); err == nil {
			var cached models.FarmerRating
			if json.Unmarshal(b, &cached) == nil {
				return &cached, nil
			}
		}
	}

	var rating models.FarmerRating
	if err := s.DB.WithContext(ctx).Where("farmer_id = ?", farmerID).First(&rating).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Rating")
		}
		return nil, err
	}
	if s.Redis != nil {
		if b, err := json.Marshal(&rating); err == nil {
			s.Redis.Set(ctx, key, b, s.CacheTTL)
		}
	}
	return &rating, nil
}

// RecomputeAll rebuilds ratings for every farmer with a diagnosis. Used by
// the nightly job; errors on single rows are logged and skipped.
func (s *Service) RecomputeAll(ctx context.Context) (int, error) {
	var diagnoses []models.FarmerDiagnosis
	if err := s.DB.WithContext(ctx).Find(&diagnoses).Error; err != nil {
		return 0, err
	}
	done := 0
	for i := range diagnoses {
		if _, err := s.recomputeFrom(ctx, &diagnoses[i]); err != nil {
			log.Error().Err(err).Str("farmer_id", diagnoses[i].FarmerID.String()).Msg("Rating recompute failed")
			continue
		}
		done++
	}
	return done, nil
}

func (s *Service) invalidate(ctx context.Context, farmerID uuid.UUID) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(ctx, cacheKeyPrefix+farmerID.String())
}

// assetLists is the shape of the diagnosis Assets JSON column.
type assetLists struct {
	Animals   []Animal    `json:"animals"`
	Crops     []Crop      `json:"crops"`
	Equipment []Equipment `json:"equipment"`
}

// DiagnosticsFromModel decodes a stored diagnosis into scorer input.
func DiagnosticsFromModel(m *models.FarmerDiagnosis) (Diagnostics, error) {
	var lists assetLists
	if len(m.Assets) > 0 {
		if err := json.Unmarshal(m.Assets, &lists); err != nil {
			return Diagnostics{}, apperr.InvalidInput("assets payload is not valid JSON")
		}
	}
	return Diagnostics{
		LandArea:           m.LandArea,
		LandOwned:          m.LandOwned,
		LandRented:         m.LandRented,
		EmployeesPermanent: m.EmployeesPermanent,
		EmployeesSeasonal:  m.EmployeesSeasonal,
		Animals:            lists.Animals,
		Crops:              lists.Crops,
		Equipment:          lists.Equipment,
	}, nil
}
