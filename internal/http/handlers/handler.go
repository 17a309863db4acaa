package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/economy"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/http/middleware"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/logger"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/repository"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/service"
)

// Handler serves the player and admin API on top of the economy engine
type Handler struct {
	Engine      *economy.Engine
	Users       *repository.UserRepository
	Auth        *service.AuthService
	Withdrawals *service.WithdrawalService
	Admin       *service.AdminService
}

func NewHandler(engine *economy.Engine, users *repository.UserRepository, auth *service.AuthService, withdrawals *service.WithdrawalService, admin *service.AdminService) *Handler {
	return &Handler{
		Engine:      engine,
		Users:       users,
		Auth:        auth,
		Withdrawals: withdrawals,
		Admin:       admin,
	}
}

// getUserID returns the id stored by the JWT middleware
func getUserID(c *gin.Context) (string, bool) {
	id := c.GetString(middleware.UserIDKey)
	return id, id != ""
}

// statusFor maps domain errors to HTTP status codes. Anything unknown is an
// internal error.
var statusFor = []struct {
	err  error
	code int
}{
	{economy.ErrUserNotFound, http.StatusNotFound},
	{economy.ErrInsufficientFunds, http.StatusPaymentRequired},
	{economy.ErrAlreadyClaimed, http.StatusConflict},
	{economy.ErrNotEligible, http.StatusForbidden},
	{economy.ErrUnknownRobot, http.StatusNotFound},
	{economy.ErrRobotUnavailable, http.StatusForbidden},
	{economy.ErrUnknownTask, http.StatusNotFound},
	{economy.ErrUnknownAchievement, http.StatusNotFound},
	{economy.ErrUnknownPeriod, http.StatusBadRequest},
	{economy.ErrAutoTapState, http.StatusConflict},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrInvalidUsername, http.StatusBadRequest},
	{service.ErrWeakPassword, http.StatusBadRequest},
	{repository.ErrUsernameTaken, http.StatusConflict},
	{service.ErrBelowMinimum, http.StatusBadRequest},
	{service.ErrDestinationRequired, http.StatusBadRequest},
	{service.ErrWithdrawalNotFound, http.StatusNotFound},
	{service.ErrWithdrawalNotOwned, http.StatusNotFound},
	{service.ErrWithdrawalNotPending, http.StatusConflict},
}

// fail writes err as a JSON error response
func fail(c *gin.Context, err error) {
	for _, s := range statusFor {
		if errors.Is(err, s.err) {
			c.JSON(s.code, gin.H{"error": err.Error()})
			return
		}
	}
	logger.WithContext(c.Request.Context()).Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
