package handlers

import (
	"log/slog"
	"regexp"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	portssvc "github.com/quantabook/ledger_core/internal/core/ports/services"
	"github.com/quantabook/ledger_core/internal/middleware"
	"github.com/quantabook/ledger_core/internal/platform/config"
)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	registerCustomValidators()

	r.Use(cors.Default())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.CallerIdentityMiddleware())

	// Health check and metrics sit outside the API group
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1")

	registerEntryRoutes(v1, services.Posting, postingRateLimiter(cfg))
	registerTransactionRoutes(v1, services.Posting, services.Integrity)
	registerAccountRoutes(v1, services.Account, services.Posting, services.Reconciliation)
	registerReconciliationRoutes(v1, services.Reconciliation)
	registerIntegrityRoutes(v1, services.Integrity)
}

// postingRateLimiter builds the IP-based limiter that shields the single
// write path. Reads stay unlimited.
func postingRateLimiter(cfg *config.Config) gin.HandlerFunc {
	if cfg.RateLimit.PostingRate == "" {
		return nil
	}
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit.PostingRate)
	if err != nil {
		slog.Warn("Invalid posting rate limit, disabling limiter", slog.String("rate", cfg.RateLimit.PostingRate), slog.String("error", err.Error()))
		return nil
	}
	store := memory.NewStore()
	return middleware.RateLimit(limiter.New(store, rate))
}

// registerCustomValidators wires the currencycode binding tag into gin's
// validator engine.
func registerCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("currencycode", func(fl validator.FieldLevel) bool {
			return currencyCodePattern.MatchString(fl.Field().String())
		})
	}
}
