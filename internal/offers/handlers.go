package offers

import (
	"agroshare-backend/internal/middleware"
	"agroshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

type createOfferBody struct {
	FarmName              string `json:"farm_name"`
	Title                 string `json:"title"`
	Description           string `json:"description"`
	Asset                 string `json:"asset"`
	TotalAmount           int64  `json:"total_amount"`
	SharePrice            int64  `json:"share_price"`
	MinShares             int64  `json:"min_shares"`
	ExpectedMonthlyIncome *int64 `json:"expected_monthly_income"`
	Region                string `json:"region"`
	City                  string `json:"city"`
	Socials               string `json:"socials"`
	Publish               bool   `json:"publish"`
}

// POST /api/v1/offers/create-offer — farmer creates an offer, 201
func (h *Handlers) CreateOffer(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	var body createOfferBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	result, err := h.Service.CreateOffer(c.Context(), CreateOfferInput{
		FarmerID:              id.UserID,
		FarmName:              body.FarmName,
		Title:                 body.Title,
		Description:           body.Description,
		Asset:                 body.Asset,
		TotalAmount:           body.TotalAmount,
		SharePrice:            body.SharePrice,
		MinShares:             body.MinShares,
		ExpectedMonthlyIncome: body.ExpectedMonthlyIncome,
		Region:                body.Region,
		City:                  body.City,
		Socials:               body.Socials,
		Publish:               body.Publish,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	meta := map[string]interface{}{}
	if result.Divisibility.Remainder != 0 {
		meta["remainder"] = result.Divisibility.Remainder
		meta["warning"] = "total_amount is not divisible by share_price"
	}
	return response.SuccessCreated(c, "Offer created successfully", result.Offer, meta)
}

// POST /api/v1/offers/publish-offer/:offer_id
func (h *Handlers) PublishOffer(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	offerID, err := uuid.Parse(c.Params("offer_id"))
	if err != nil {
		return response.Error(c, "Invalid offer_id format", fiber.StatusBadRequest, nil)
	}
	offer, err := h.Service.PublishOffer(c.Context(), id.UserID, offerID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Offer published successfully", offer, nil)
}

// POST /api/v1/offers/close-offer/:offer_id
func (h *Handlers) CloseOffer(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	offerID, err := uuid.Parse(c.Params("offer_id"))
	if err != nil {
		return response.Error(c, "Invalid offer_id format", fiber.StatusBadRequest, nil)
	}
	offer, err := h.Service.CloseOffer(c.Context(), id.UserID, offerID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Offer closed successfully", offer, nil)
}

// GET /api/v1/offers/get-all-offers — published offers, public
func (h *Handlers) GetAllOffers(c *fiber.Ctx) error {
	offers, err := h.Service.ListPublishedOffers(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Offers fetched successfully", offers, nil)
}

// GET /api/v1/offers/get-offer/:offer_id
func (h *Handlers) GetOffer(c *fiber.Ctx) error {
	offerID, err := uuid.Parse(c.Params("offer_id"))
	if err != nil {
		return response.Error(c, "Invalid offer_id format", fiber.StatusBadRequest, nil)
	}
	offer, err := h.Service.GetOffer(c.Context(), offerID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Offer fetched successfully", offer, nil)
}

// GET /api/v1/offers/get-my-offers — farmer's own offers, any status
func (h *Handlers) GetMyOffers(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	offers, err := h.Service.ListFarmerOffers(c.Context(), id.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Offers fetched successfully", offers, nil)
}

type createRequestBody struct {
	OfferID         string `json:"offer_id"`
	SharesRequested int64  `json:"shares_requested"`
	Message         string `json:"message"`
}

// POST /api/v1/offers/create-request — investor requests shares, 201
func (h *Handlers) CreateRequest(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	var body createRequestBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	offerID, err := uuid.Parse(body.OfferID)
	if err != nil {
		return response.Error(c, "Invalid offer_id format", fiber.StatusBadRequest, nil)
	}
	request, err := h.Service.CreateRequest(c.Context(), id.UserID, offerID, body.SharesRequested, body.Message)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Request created successfully", request, nil)
}

// POST /api/v1/offers/approve-request/:request_id
func (h *Handlers) ApproveRequest(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	requestID, err := uuid.Parse(c.Params("request_id"))
	if err != nil {
		return response.Error(c, "Invalid request_id format", fiber.StatusBadRequest, nil)
	}
	request, err := h.Service.Approve(c.Context(), id.UserID, requestID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Request approved successfully", request, nil)
}

// POST /api/v1/offers/reject-request/:request_id
func (h *Handlers) RejectRequest(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	requestID, err := uuid.Parse(c.Params("request_id"))
	if err != nil {
		return response.Error(c, "Invalid request_id format", fiber.StatusBadRequest, nil)
	}
	request, err := h.Service.Reject(c.Context(), id.UserID, requestID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Request rejected successfully", request, nil)
}

// GET /api/v1/offers/get-offer-requests — requests against the farmer's offers
func (h *Handlers) GetOfferRequests(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	requests, err := h.Service.ListOfferRequests(c.Context(), id.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Requests fetched successfully", requests, nil)
}

// GET /api/v1/offers/get-my-requests — investor's own requests
func (h *Handlers) GetMyRequests(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	requests, err := h.Service.ListInvestorRequests(c.Context(), id.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Requests fetched successfully", requests, nil)
}
