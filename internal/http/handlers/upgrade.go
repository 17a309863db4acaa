package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetUpgradeInfo returns the current prices of every upgrade
func (h *Handler) GetUpgradeInfo(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	stats, err := h.Engine.Stats(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	rules := h.Engine.Rules()
	c.JSON(http.StatusOK, gin.H{
		"costs":        h.Engine.UpgradeQuote(stats),
		"level":        stats.Level,
		"robot_power":  stats.RobotPower,
		"max_taps":     stats.MaxTaps,
		"energy_step":  rules.EnergyUpgradeStep,
		"power_step":   rules.RobotPowerPerLevel,
		"autotap_time": int64(rules.AutoTapDuration.Seconds()),
	})
}

// UpgradeLevel raises the level and robot power
func (h *Handler) UpgradeLevel(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	stats, err := h.Engine.UpgradeLevel(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats, "costs": h.Engine.UpgradeQuote(stats)})
}

// UpgradeEnergy raises the energy capacity
func (h *Handler) UpgradeEnergy(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	stats, err := h.Engine.UpgradeEnergy(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats, "costs": h.Engine.UpgradeQuote(stats)})
}

func (h *Handler) GetAutoTap(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	status, err := h.Engine.AutoTap(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// ChargeAutoTap starts the charging period
func (h *Handler) ChargeAutoTap(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	status, err := h.Engine.StartAutoTapCharging(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// ActivateAutoTap switches a charged auto-tap on
func (h *Handler) ActivateAutoTap(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	status, err := h.Engine.ActivateAutoTap(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
