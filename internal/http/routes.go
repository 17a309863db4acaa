package http

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/config"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/http/handlers"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/http/middleware"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/repository"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/ws"
)

// Server bundles what the router needs
type Server struct {
	Config  *config.Config
	Handler *handlers.Handler
	Health  *handlers.HealthHandler
	Hub     *ws.Hub
}

// NewRouter builds a gin engine with the global middleware and every route
func NewRouter(s Server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics(), middleware.CORS(s.Config.AllowedOrigin))
	RegisterRoutes(r, s)
	return r
}

func RegisterRoutes(r *gin.Engine, s Server) {
	cfg := s.Config
	h := s.Handler

	// Health checks (no rate limiting)
	r.GET("/health", s.Health.Health)
	r.GET("/healthz", s.Health.Liveness)
	r.GET("/readyz", s.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Stats push and energy scheduling for live sessions
	r.GET("/ws", ws.HandleWS(s.Hub, cfg.AllowedOrigin))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))

	// Auth
	v1.POST("/auth/register", h.Register)
	v1.POST("/auth/login", h.Login)

	api := v1.Group("")
	api.Use(middleware.JWT())

	// Player state and taps
	api.GET("/me", h.Me)
	api.POST("/tap", middleware.TapRateLimit(cfg.TapRateLimit, cfg.TapRateWindow), h.Tap)
	api.GET("/energy", h.Energy)
	api.POST("/energy/refuel", h.Refuel)

	// Timed rewards
	api.GET("/bonus/daily", h.DailyBonus)
	api.POST("/bonus/daily", h.ClaimDailyBonus)
	api.GET("/wheel/info", h.WheelInfo)
	api.POST("/wheel/spin", h.SpinWheel)

	// Tasks and achievements
	api.GET("/tasks", h.GetTasks)
	api.POST("/tasks/:id/claim", h.ClaimTask)
	api.GET("/achievements", h.GetAchievements)
	api.POST("/achievements/:id/claim", h.ClaimAchievement)

	// Leagues and leaderboards
	api.GET("/league", h.GetLeague)
	api.GET("/league/leaderboard", h.GetLeagueLeaderboard)
	api.POST("/league/claim/:period", h.ClaimLeagueReward)
	api.GET("/leaderboard", h.GetLeaderboard)

	// Robots, upgrades and auto-tap
	api.GET("/robots", h.GetRobots)
	api.POST("/robots/:id/purchase", h.PurchaseRobot)
	api.GET("/upgrade/info", h.GetUpgradeInfo)
	api.POST("/upgrade/level", h.UpgradeLevel)
	api.POST("/upgrade/energy", h.UpgradeEnergy)
	api.GET("/autotap", h.GetAutoTap)
	api.POST("/autotap/charge", h.ChargeAutoTap)
	api.POST("/autotap/activate", h.ActivateAutoTap)

	// Withdrawals
	api.GET("/withdrawals", h.GetWithdrawals)
	api.POST("/withdrawals", h.RequestWithdrawal)
	api.POST("/withdrawals/:id/cancel", h.CancelWithdrawal)

	admin := api.Group("/admin")
	admin.Use(middleware.Admin(adminCheck(h, cfg)))
	{
		admin.GET("/stats", h.AdminStats)
		admin.GET("/users/:id", h.AdminUser)
		admin.POST("/users/:id/membership", h.AdminSetMembership)
		admin.POST("/users/:id/coins", h.AdminAddCoins)
		admin.GET("/withdrawals/pending", h.AdminPendingWithdrawals)
		admin.POST("/withdrawals/:id/approve", h.AdminApproveWithdrawal)
		admin.POST("/withdrawals/:id/reject", h.AdminRejectWithdrawal)
	}
}

// adminCheck allows users whose username is listed in ADMIN_USERNAMES
func adminCheck(h *handlers.Handler, cfg *config.Config) middleware.AdminCheck {
	return func(ctx context.Context, userID string) (bool, error) {
		u, err := h.Users.GetByID(ctx, userID)
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return cfg.IsAdmin(u.Username), nil
	}
}
