package proposals

import (
	"encoding/json"

	"agroshare-backend/internal/middleware"
	"agroshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

type createProposalBody struct {
	ProductType     string          `json:"product_type"`
	AssetType       string          `json:"asset_type"`
	Asset           json.RawMessage `json:"asset"`
	Description     string          `json:"description"`
	PhotoURL        string          `json:"photo_url"`
	Price           int64           `json:"price"`
	Shares          int64           `json:"shares"`
	ExpectedProduct string          `json:"expected_product"`
	UpdateFrequency string          `json:"update_frequency"`
}

// POST /api/v1/proposals/create-proposal — farmer creates a proposal, 201
func (h *Handlers) CreateProposal(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	var body createProposalBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	proposal, err := h.Service.CreateProposal(c.Context(), CreateProposalInput{
		FarmerID:        id.UserID,
		ProductType:     body.ProductType,
		AssetType:       body.AssetType,
		Asset:           body.Asset,
		Description:     body.Description,
		PhotoURL:        body.PhotoURL,
		Price:           body.Price,
		Shares:          body.Shares,
		ExpectedProduct: body.ExpectedProduct,
		UpdateFrequency: body.UpdateFrequency,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Proposal created successfully", proposal, nil)
}

// GET /api/v1/proposals/get-all-proposals?product_type= — active proposals
func (h *Handlers) GetAllProposals(c *fiber.Ctx) error {
	proposals, err := h.Service.ListProposals(c.Context(), c.Query("product_type"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Proposals fetched successfully", proposals, nil)
}

// GET /api/v1/proposals/get-my-proposals — farmer's own proposals
func (h *Handlers) GetMyProposals(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	proposals, err := h.Service.ListFarmerProposals(c.Context(), id.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Proposals fetched successfully", proposals, nil)
}

// GET /api/v1/proposals/get-proposal/:proposal_id
func (h *Handlers) GetProposal(c *fiber.Ctx) error {
	proposalID, err := uuid.Parse(c.Params("proposal_id"))
	if err != nil {
		return response.Error(c, "Invalid proposal_id format", fiber.StatusBadRequest, nil)
	}
	proposal, err := h.Service.GetProposal(c.Context(), proposalID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Proposal fetched successfully", proposal, nil)
}

type investBody struct {
	ProposalID string `json:"proposal_id"`
	Shares     int64  `json:"shares"`
}

// POST /api/v1/proposals/invest — investor takes a stake, 201
func (h *Handlers) Invest(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	var body investBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	proposalID, err := uuid.Parse(body.ProposalID)
	if err != nil {
		return response.Error(c, "Invalid proposal_id format", fiber.StatusBadRequest, nil)
	}
	investment, err := h.Service.Invest(c.Context(), id.UserID, proposalID, body.Shares)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Investment created successfully", investment, nil)
}

// POST /api/v1/proposals/cancel-investment/:investment_id
func (h *Handlers) CancelInvestment(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	investmentID, err := uuid.Parse(c.Params("investment_id"))
	if err != nil {
		return response.Error(c, "Invalid investment_id format", fiber.StatusBadRequest, nil)
	}
	investment, err := h.Service.CancelInvestment(c.Context(), id.UserID, investmentID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Investment cancelled successfully", investment, nil)
}

// GET /api/v1/proposals/get-my-investments — investor portfolio
func (h *Handlers) GetMyInvestments(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	investments, err := h.Service.ListInvestorInvestments(c.Context(), id.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Investments fetched successfully", investments, nil)
}

type deleteProposalBody struct {
	Force bool `json:"force_delete"`
}

// POST /api/v1/proposals/delete-proposal/:proposal_id — immediate when no
// investments, 409 has_active_investments when confirmation is required
func (h *Handlers) DeleteProposal(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	proposalID, err := uuid.Parse(c.Params("proposal_id"))
	if err != nil {
		return response.Error(c, "Invalid proposal_id format", fiber.StatusBadRequest, nil)
	}
	var body deleteProposalBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
		}
	}
	result, err := h.Service.RequestDeletion(c.Context(), id.UserID, proposalID, body.Force)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Proposal deleted successfully", result, nil)
}

// POST /api/v1/proposals/confirm-deletion/:deletion_request_id
func (h *Handlers) ConfirmDeletion(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	requestID, err := uuid.Parse(c.Params("deletion_request_id"))
	if err != nil {
		return response.Error(c, "Invalid deletion_request_id format", fiber.StatusBadRequest, nil)
	}
	result, err := h.Service.ConfirmDeletion(c.Context(), id.UserID, requestID)
	if err != nil {
		return response.FromError(c, err)
	}
	message := "Deletion confirmed"
	if result.Finalized {
		message = "Proposal deleted successfully"
	}
	return response.Success(c, message, result, nil)
}

// GET /api/v1/proposals/get-deletion-request/:deletion_request_id
func (h *Handlers) GetDeletionRequest(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("deletion_request_id"))
	if err != nil {
		return response.Error(c, "Invalid deletion_request_id format", fiber.StatusBadRequest, nil)
	}
	result, err := h.Service.GetDeletionRequest(c.Context(), requestID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Deletion request fetched successfully", result, nil)
}
