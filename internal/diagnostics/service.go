package diagnostics

import (
	"context"
	"encoding/json"

	"agroshare-backend/internal/models"
	"agroshare-backend/internal/pkg/apperr"
	"agroshare-backend/internal/rating"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service handles the farm questionnaire. Every save triggers a rating
// recompute so the leaderboard reflects the latest diagnosis.
type Service struct {
	DB     *gorm.DB
	Rating *rating.Service
}

type SaveDiagnosisInput struct {
	FarmerID           uuid.UUID
	Country            string
	Region             string
	LandArea           float64
	LandOwned          float64
	LandRented         float64
	EmployeesPermanent int
	EmployeesSeasonal  int
	Assets             json.RawMessage
}

// SaveDiagnosis upserts the farmer's diagnosis row and recomputes the rating.
func (s *Service) SaveDiagnosis(ctx context.Context, in SaveDiagnosisInput) (*models.FarmerDiagnosis, error) {
	if in.Region == "" {
		return nil, apperr.InvalidInput("region is required")
	}
	if in.LandArea < 0 || in.LandOwned < 0 || in.LandRented < 0 {
		return nil, apperr.InvalidInput("land fields must not be negative")
	}
	if in.EmployeesPermanent < 0 || in.EmployeesSeasonal < 0 {
		return nil, apperr.InvalidInput("employee counts must not be negative")
	}
	assets := in.Assets
	if len(assets) == 0 {
		assets = json.RawMessage(`{}`)
	} else if !json.Valid(assets) {
		return nil, apperr.InvalidInput("assets payload is not valid JSON")
	}
	country := in.Country
	if country == "" {
		country = "Russia"
	}

	var diagnosis models.FarmerDiagnosis
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("farmer_id = ?", in.FarmerID).First(&diagnosis).Error
		if err == gorm.ErrRecordNotFound {
			diagnosis = models.FarmerDiagnosis{
				FarmerID:           in.FarmerID,
				Country:            country,
				Region:             in.Region,
				LandArea:           in.LandArea,
				LandOwned:          in.LandOwned,
				LandRented:         in.LandRented,
				EmployeesPermanent: in.EmployeesPermanent,
				EmployeesSeasonal:  in.EmployeesSeasonal,
				Assets:             datatypes.JSON(assets),
			}
			return tx.Create(&diagnosis).Error
		}
		if err != nil {
			return err
		}
		updates := map[string]interface{}{
			"country":             country,
			"region":              in.Region,
			"land_area":           in.LandArea,
			"land_owned":          in.LandOwned,
			"land_rented":         in.LandRented,
			"employees_permanent": in.EmployeesPermanent,
			"employees_seasonal":  in.EmployeesSeasonal,
			"assets":              datatypes.JSON(assets),
		}
		if err := tx.Model(&diagnosis).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("farmer_id = ?", in.FarmerID).First(&diagnosis).Error
	})
	if err != nil {
		return nil, err
	}

	// Rating is derived state; a recompute failure does not lose the
	// diagnosis itself.
	if _, err := s.Rating.Recompute(ctx, in.FarmerID); err != nil {
		log.Error().Err(err).Str("farmer_id", in.FarmerID.String()).Msg("Rating recompute after diagnosis save failed")
	}
	return &diagnosis, nil
}

// GetDiagnosis returns the farmer's stored diagnosis.
func (s *Service) GetDiagnosis(ctx context.Context, farmerID uuid.UUID) (*models.FarmerDiagnosis, error) {
	var diagnosis models.FarmerDiagnosis
	if err := s.DB.WithContext(ctx).Where("farmer_id = ?", farmerID).First(&diagnosis).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Diagnosis")
		}
		return nil, err
	}
	return &diagnosis, nil
}
