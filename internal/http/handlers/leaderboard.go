package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultLeaderboardLimit = 100

func limitParam(c *gin.Context) int {
	limit := defaultLeaderboardLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	return limit
}

// GetLeaderboard returns the global ranking by total earned
func (h *Handler) GetLeaderboard(c *gin.Context) {
	top, err := h.Engine.GlobalLeaderboard(c.Request.Context(), limitParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": top})
}

// GetLeague returns the user's tier and reward windows
func (h *Handler) GetLeague(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	view, err := h.Engine.League(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetLeagueLeaderboard ranks the players in the user's league
func (h *Handler) GetLeagueLeaderboard(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	entries, tier, err := h.Engine.UserLeagueLeaderboard(c.Request.Context(), userID, limitParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"league": tier, "leaderboard": entries})
}

// ClaimLeagueReward pays the daily or weekly reward of the current tier
func (h *Handler) ClaimLeagueReward(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.Engine.ClaimLeagueReward(c.Request.Context(), userID, c.Param("period"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
