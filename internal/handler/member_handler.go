package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-ops-api/internal/models"
	"github.com/noah-isme/gym-ops-api/internal/service"
	"github.com/noah-isme/gym-ops-api/pkg/response"
)

type memberService interface {
	Register(ctx context.Context, req service.RegisterMemberRequest) (*models.Member, error)
	Get(ctx context.Context, id string) (*models.Member, error)
	Delete(ctx context.Context, id string) (*models.MemberDeletion, error)
}

type ledgerService interface {
	ApplyFunds(ctx context.Context, memberID string, amountCents int64) (*models.LedgerEntry, error)
	CurrentTier(ctx context.Context, memberID string) (models.MembershipTier, error)
	History(ctx context.Context, memberID string, page, size int) ([]models.Transaction, *models.Pagination, error)
}

// FundsRequest tops up a member balance.
type FundsRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

// MemberHandler exposes member and ledger endpoints.
type MemberHandler struct {
	members memberService
	ledger  ledgerService
}

// NewMemberHandler constructs MemberHandler.
func NewMemberHandler(members memberService, ledger ledgerService) *MemberHandler {
	return &MemberHandler{members: members, ledger: ledger}
}

// Register godoc
// @Summary Register member
// @Tags Members
// @Accept json
// @Produce json
// @Param payload body service.RegisterMemberRequest true "Member payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /members [post]
func (h *MemberHandler) Register(c *gin.Context) {
	var req service.RegisterMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid member payload"))
		return
	}
	member, err := h.members.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// Get godoc
// @Summary Get member
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /members/{id} [get]
func (h *MemberHandler) Get(c *gin.Context) {
	member, err := h.members.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Delete godoc
// @Summary Remove member
// @Description Fails with NEGATIVE_BALANCE while the member owes money. Enrollments are dropped and open rentals are settled.
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /members/{id} [delete]
func (h *MemberHandler) Delete(c *gin.Context) {
	result, err := h.members.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// AddFunds godoc
// @Summary Recharge member balance
// @Tags Members
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param payload body FundsRequest true "Amount in cents"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /members/{id}/funds [post]
func (h *MemberHandler) AddFunds(c *gin.Context) {
	var req FundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid funds payload"))
		return
	}
	entry, err := h.ledger.ApplyFunds(c.Request.Context(), c.Param("id"), req.AmountCents)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Tier godoc
// @Summary Current membership tier
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} response.Envelope
// @Router /members/{id}/tier [get]
func (h *MemberHandler) Tier(c *gin.Context) {
	tier, err := h.ledger.CurrentTier(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"tier": tier, "discount": service.DiscountFor(tier)}, nil)
}

// Transactions godoc
// @Summary Member transaction history
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (all when omitted)"
// @Success 200 {object} response.Envelope
// @Router /members/{id}/transactions [get]
func (h *MemberHandler) Transactions(c *gin.Context) {
	page, size := pageParams(c)
	txs, meta, err := h.ledger.History(c.Request.Context(), c.Param("id"), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, txs, meta)
}
