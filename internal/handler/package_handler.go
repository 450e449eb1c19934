package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-ops-api/internal/models"
	"github.com/noah-isme/gym-ops-api/internal/service"
	"github.com/noah-isme/gym-ops-api/pkg/response"
)

type packageService interface {
	Create(ctx context.Context, req service.CreatePackageRequest) (*models.PackageDetail, error)
	List(ctx context.Context, memberID string) ([]models.PackageDetail, error)
	UpdateCost(ctx context.Context, name string, req service.UpdatePackageCostRequest) error
	Delete(ctx context.Context, name string) error
}

// PackageHandler exposes the package catalog.
type PackageHandler struct {
	service packageService
}

// NewPackageHandler constructs PackageHandler.
func NewPackageHandler(service packageService) *PackageHandler {
	return &PackageHandler{service: service}
}

// Create godoc
// @Summary Create package
// @Tags Packages
// @Accept json
// @Produce json
// @Param payload body service.CreatePackageRequest true "Package payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /packages [post]
func (h *PackageHandler) Create(c *gin.Context) {
	var req service.CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid package payload"))
		return
	}
	pkg, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, pkg)
}

// List godoc
// @Summary List packages
// @Description With member_id, prices include that member's tier discount.
// @Tags Packages
// @Produce json
// @Param member_id query string false "Member ID"
// @Success 200 {object} response.Envelope
// @Router /packages [get]
func (h *PackageHandler) List(c *gin.Context) {
	pkgs, err := h.service.List(c.Request.Context(), c.Query("member_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pkgs, nil)
}

// UpdateCost godoc
// @Summary Reprice package
// @Tags Packages
// @Accept json
// @Param name path string true "Package name"
// @Param payload body service.UpdatePackageCostRequest true "New cost"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /packages/{name} [patch]
func (h *PackageHandler) UpdateCost(c *gin.Context) {
	var req service.UpdatePackageCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid package payload"))
		return
	}
	if err := h.service.UpdateCost(c.Request.Context(), c.Param("name"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete package
// @Tags Packages
// @Param name path string true "Package name"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /packages/{name} [delete]
func (h *PackageHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
