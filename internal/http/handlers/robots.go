package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetRobots returns the shop as seen by the user and the active robot
func (h *Handler) GetRobots(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	shop, active, err := h.Engine.RobotShop(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"robots": shop, "active": active})
}

func (h *Handler) PurchaseRobot(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	active, stats, err := h.Engine.PurchaseRobot(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": active, "stats": stats})
}
