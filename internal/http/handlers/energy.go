package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Energy refills a tank whose recovery window has elapsed, then reports the
// countdown
func (h *Handler) Energy(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	ctx := c.Request.Context()

	if _, _, err := h.Engine.Recover(ctx, userID); err != nil {
		fail(c, err)
		return
	}
	status, err := h.Engine.Energy(ctx, userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) Refuel(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	stats, err := h.Engine.Refuel(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats, "cost": h.Engine.Rules().RefuelCost})
}

// DailyBonus reports whether the rolling daily bonus can be claimed
func (h *Handler) DailyBonus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	status, amount, err := h.Engine.DailyBonusStatus(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "amount": amount})
}

func (h *Handler) ClaimDailyBonus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	res, err := h.Engine.ClaimDailyBonus(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
