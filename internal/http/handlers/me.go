package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Me returns the profile with reconciled stats, the active robot and the
// energy countdown
func (h *Handler) Me(c *gin.Context) {
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
	robot, _, err := h.Engine.ResolveAndReconcile(ctx, userID)
	if err != nil {
		fail(c, err)
		return
	}
	energy, err := h.Engine.Energy(ctx, userID)
	if err != nil {
		fail(c, err)
		return
	}

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		fail(c, err)
		return
	}
	aux, err := h.Engine.Auxiliary(ctx, user)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":                    user.Profile(),
		"stats":                   user.Stats,
		"robot":                   robot,
		"energy":                  energy,
		"upgrades":                h.Engine.UpgradeQuote(user.Stats),
		"vip":                     aux.VIP,
		"unlimited_energy":        aux.UnlimitedEnergy,
		"days_since_registration": aux.DaysSinceRegistration,
	})
}

// Tap spends one unit of energy. A tap without energy returns 200 with
// applied=false.
func (h *Handler) Tap(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	res, err := h.Engine.Tap(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
