package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
)

func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.Admin.GetStats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AdminUser looks a user up by id or username
func (h *Handler) AdminUser(c *gin.Context) {
	info, err := h.Admin.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

type MembershipRequest struct {
	VIP             bool `json:"vip"`
	UnlimitedEnergy bool `json:"unlimited_energy"`
}

// AdminSetMembership replaces the VIP and unlimited energy flags
func (h *Handler) AdminSetMembership(c *gin.Context) {
	var req MembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	m, err := h.Admin.SetMembership(c.Request.Context(), c.Param("id"), domain.Membership{
		VIP:             req.VIP,
		UnlimitedEnergy: req.UnlimitedEnergy,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type CoinsRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

// AdminAddCoins credits or debits the wallet without touching total earned
func (h *Handler) AdminAddCoins(c *gin.Context) {
	var req CoinsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	balance, err := h.Admin.AddUserCoins(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coins": balance})
}

func (h *Handler) AdminPendingWithdrawals(c *gin.Context) {
	list, err := h.Admin.GetPendingWithdrawals(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}

type ReviewRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) AdminApproveWithdrawal(c *gin.Context) {
	var req ReviewRequest
	_ = c.ShouldBindJSON(&req)

	w, err := h.Admin.ApproveWithdrawal(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}

// AdminRejectWithdrawal rejects and refunds a pending withdrawal
func (h *Handler) AdminRejectWithdrawal(c *gin.Context) {
	var req ReviewRequest
	_ = c.ShouldBindJSON(&req)

	w, err := h.Admin.RejectWithdrawal(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}
