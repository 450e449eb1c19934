package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-ops-api/internal/models"
	"github.com/noah-isme/gym-ops-api/pkg/response"
)

type enrollmentService interface {
	PurchasePackage(ctx context.Context, memberID, packageName string) (*models.PackagePurchase, error)
	EnrollInClass(ctx context.Context, memberID, classID string) (models.EnrollOutcome, error)
	ListMemberClasses(ctx context.Context, memberID string) ([]models.Class, error)
}

// PurchaseRequest names the package to buy.
type PurchaseRequest struct {
	PackageName string `json:"package_name" binding:"required"`
}

// EnrollRequest names the member joining a class.
type EnrollRequest struct {
	MemberID string `json:"member_id" binding:"required"`
}

// EnrollmentHandler exposes package purchase and class enrollment.
type EnrollmentHandler struct {
	service enrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(service enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

// Purchase godoc
// @Summary Purchase a package
// @Description Charges the tier-discounted cost, then enrolls the member in every class of the package's courses. Full classes are reported, not fatal.
// @Tags Members
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param payload body PurchaseRequest true "Package"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /members/{id}/purchases [post]
func (h *EnrollmentHandler) Purchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid purchase payload"))
		return
	}
	result, err := h.service.PurchasePackage(c.Request.Context(), c.Param("id"), req.PackageName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Enroll godoc
// @Summary Enroll a member in one class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body EnrollRequest true "Member"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope "already enrolled"
// @Failure 409 {object} response.Envelope
// @Router /classes/{id}/enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid enrollment payload"))
		return
	}
	outcome, err := h.service.EnrollInClass(c.Request.Context(), req.MemberID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusCreated
	if outcome == models.EnrollOutcomeAlreadyEnrolled {
		status = http.StatusOK
	}
	response.JSON(c, status, gin.H{"member_id": req.MemberID, "class_id": c.Param("id"), "outcome": outcome}, nil)
}

// MemberClasses godoc
// @Summary Classes a member is enrolled in
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} response.Envelope
// @Router /members/{id}/classes [get]
func (h *EnrollmentHandler) MemberClasses(c *gin.Context) {
	classes, err := h.service.ListMemberClasses(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}
