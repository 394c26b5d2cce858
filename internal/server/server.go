package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/orchestrator"
	"resume-matcher/internal/services/health"
	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/server/middleware"
	"resume-matcher/internal/users"
)

const (
	rateGroupDefault = "DEFAULT"
	rateGroupScoring = "SCORING"

	// multipartOverhead is allowed on top of MaxUploadBytes for form fields and boundaries.
	multipartOverhead = 1 << 20
)

// Deps are the services exposed over HTTP.
type Deps struct {
	Config       config.Config
	Orchestrator *orchestrator.Orchestrator
	Users        *users.Service
	Health       *health.Service
	Limiter      *middleware.RateLimiter
}

// NewEngine builds the gin engine with middleware and routes registered.
func NewEngine(deps Deps) *gin.Engine {
	if deps.Health == nil {
		deps.Health = health.NewService(0)
	}
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: rateGroupDefault,
			GroupFor:     rateGroupFor,
			Limiter:      deps.Limiter,
			Rules: map[string]middleware.RateLimitRule{
				rateGroupDefault: {Rate: deps.Config.RateLimitDefaultRPS, Burst: deps.Config.RateLimitDefaultBurst},
				rateGroupScoring: {Rate: deps.Config.RateLimitScoringRPS, Burst: deps.Config.RateLimitScoringBurst},
			},
		}),
	)

	registerRoutes(engine, deps)
	return engine
}

// rateGroupFor puts every route that calls the scoring engine in its own bucket.
func rateGroupFor(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return rateGroupDefault
	}
	switch c.FullPath() {
	case "/api/v1/analyze", "/api/v1/resumes/:id/analyze":
		return rateGroupScoring
	}
	return rateGroupDefault
}

// Addr returns a normalized listen address for the given port.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
