package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-ops-api/internal/models"
	"github.com/noah-isme/gym-ops-api/internal/service"
	"github.com/noah-isme/gym-ops-api/pkg/response"
)

type rentalService interface {
	CreateItem(ctx context.Context, req service.CreateRentalItemRequest) (*models.RentalItem, error)
	ListItems(ctx context.Context) ([]models.RentalItem, error)
	Checkout(ctx context.Context, req service.RentalRequest) (*models.RentalLogEntry, error)
	Return(ctx context.Context, req service.RentalRequest) (*models.RentalLogEntry, error)
	OutstandingLoans(ctx context.Context, memberID string) (map[string]int, error)
}

// RentalHandler exposes equipment rental.
type RentalHandler struct {
	service rentalService
}

// NewRentalHandler constructs RentalHandler.
func NewRentalHandler(service rentalService) *RentalHandler {
	return &RentalHandler{service: service}
}

// CreateItem godoc
// @Summary Add rental item
// @Tags Rentals
// @Accept json
// @Produce json
// @Param payload body service.CreateRentalItemRequest true "Item payload"
// @Success 201 {object} response.Envelope
// @Router /rentals/items [post]
func (h *RentalHandler) CreateItem(c *gin.Context) {
	var req service.CreateRentalItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid rental item payload"))
		return
	}
	item, err := h.service.CreateItem(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// ListItems godoc
// @Summary List rental items
// @Tags Rentals
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rentals/items [get]
func (h *RentalHandler) ListItems(c *gin.Context) {
	items, err := h.service.ListItems(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Checkout godoc
// @Summary Check out equipment
// @Tags Rentals
// @Accept json
// @Produce json
// @Param payload body service.RentalRequest true "Member, item and quantity (default 1)"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /rentals/checkout [post]
func (h *RentalHandler) Checkout(c *gin.Context) {
	var req service.RentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid checkout payload"))
		return
	}
	entry, err := h.service.Checkout(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Return godoc
// @Summary Return equipment
// @Description Settles the member's oldest open loan of the item.
// @Tags Rentals
// @Accept json
// @Produce json
// @Param payload body service.RentalRequest true "Member and item"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rentals/return [post]
func (h *RentalHandler) Return(c *gin.Context) {
	var req service.RentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid return payload"))
		return
	}
	entry, err := h.service.Return(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// MemberLoans godoc
// @Summary Outstanding loans of a member
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} response.Envelope
// @Router /members/{id}/loans [get]
func (h *RentalHandler) MemberLoans(c *gin.Context) {
	loans, err := h.service.OutstandingLoans(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, loans, nil)
}
