package routes

import (
	"net/http"

	"github.com/cmeetit/cmeetit/internal/app"
	"github.com/cmeetit/cmeetit/internal/handler"
	"github.com/cmeetit/cmeetit/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	goal := handler.NewGoalHandler(app.GoalService)
	settlement := handler.NewSettlementHandler(app.SettlementService, app.GoalService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Healthz)
	if app.Cfg.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	// ============================================================================
	// PROTECTED ROUTES (/api/*)
	// ============================================================================

	// Goals
	mux.HandleFunc("GET /api/goals", middleware.RequireAuth(goal.List))
	mux.HandleFunc("GET /api/goals/eligibility", middleware.RequireAuth(goal.Eligibility))
	mux.HandleFunc("POST /api/goals", middleware.RequireAuth(goal.Create))
	mux.HandleFunc("GET /api/goals/{id}", middleware.RequireAuth(goal.Get))
	mux.HandleFunc("POST /api/goals/{id}/check-ins", middleware.RequireAuth(goal.CheckIn))
	mux.HandleFunc("POST /api/goals/{id}/fail", middleware.RequireAuth(goal.MarkFailed))
	mux.HandleFunc("DELETE /api/goals/{id}", middleware.RequireAuth(goal.Delete))

	// Settlement (rate limited per user)
	rateLimiter := middleware.RateLimit(app.Cfg.SettlementRateLimit, app.Cfg.SettlementRateWindow)

	mux.HandleFunc("GET /api/goals/{id}/settlement", middleware.RequireAuth(settlement.Latest))
	mux.HandleFunc("POST /api/goals/{id}/settlement", middleware.RequireAuth(rateLimiter(settlement.Start)))
	mux.HandleFunc("POST /api/goals/{id}/settlement/confirm", middleware.RequireAuth(rateLimiter(settlement.Confirm)))

	// ============================================================================
	// WEBHOOKS
	// ============================================================================

	// Payment provider webhook (Polar, Stripe or dev)
	mux.HandleFunc("POST /webhooks/payment", settlement.Webhook)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService),
		middleware.Metrics, // Must be last: reads the pattern the mux sets on the request
	)

	return handler
}
