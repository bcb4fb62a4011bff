package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FarmerDiagnosis is the raw farm questionnaire a farmer submits: land,
// headcounts, equipment, crops. Assets holds the typed lists (animals,
// equipment, crops) as JSON; the rating scorer consumes the decoded form.
type FarmerDiagnosis struct {
	DiagnosisID        uuid.UUID      `gorm:"column:diagnosis_id;type:uuid;primaryKey" json:"diagnosis_id"`
	FarmerID           uuid.UUID      `gorm:"column:farmer_id;type:uuid;not null;uniqueIndex" json:"farmer_id"`
	Country            string         `gorm:"column:country;default:Russia" json:"country"`
	Region             string         `gorm:"column:region;not null" json:"region"`
	LandArea           float64        `gorm:"column:land_area;not null;default:0" json:"land_area"`
	LandOwned          float64        `gorm:"column:land_owned;not null;default:0" json:"land_owned"`
	LandRented         float64        `gorm:"column:land_rented;not null;default:0" json:"land_rented"`
	EmployeesPermanent int            `gorm:"column:employees_permanent;not null;default:0" json:"employees_permanent"`
	EmployeesSeasonal  int            `gorm:"column:employees_seasonal;not null;default:0" json:"employees_seasonal"`
	Assets             datatypes.JSON `gorm:"column:assets;type:json" json:"assets"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (FarmerDiagnosis) TableName() string {
	return "farmer_data"
}

func (d *FarmerDiagnosis) BeforeCreate(tx *gorm.DB) error {
	if d.DiagnosisID == uuid.Nil {
		d.DiagnosisID = uuid.New()
	}
	return nil
}
