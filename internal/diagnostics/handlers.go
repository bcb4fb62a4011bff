package diagnostics

import (
	"encoding/json"

	"agroshare-backend/internal/middleware"
	"agroshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

type saveDiagnosisBody struct {
	Country            string          `json:"country"`
	Region             string          `json:"region"`
	LandArea           float64         `json:"land_area"`
	LandOwned          float64         `json:"land_owned"`
	LandRented         float64         `json:"land_rented"`
	EmployeesPermanent int             `json:"employees_permanent"`
	EmployeesSeasonal  int             `json:"employees_seasonal"`
	Assets             json.RawMessage `json:"assets"`
}

// POST /api/v1/diagnostics/save-diagnosis — farmer upserts the questionnaire
func (h *Handlers) SaveDiagnosis(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	var body saveDiagnosisBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	diagnosis, err := h.Service.SaveDiagnosis(c.Context(), SaveDiagnosisInput{
		FarmerID:           id.UserID,
		Country:            body.Country,
		Region:             body.Region,
		LandArea:           body.LandArea,
		LandOwned:          body.LandOwned,
		LandRented:         body.LandRented,
		EmployeesPermanent: body.EmployeesPermanent,
		EmployeesSeasonal:  body.EmployeesSeasonal,
		Assets:             body.Assets,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Diagnosis saved successfully", diagnosis, nil)
}

// GET /api/v1/diagnostics/get-diagnosis — farmer's own diagnosis
func (h *Handlers) GetDiagnosis(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	diagnosis, err := h.Service.GetDiagnosis(c.Context(), id.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Diagnosis fetched successfully", diagnosis, nil)
}
