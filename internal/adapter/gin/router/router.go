package router

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"user-service/api"
	"user-service/internal/adapter/gin/handler"
	"user-service/internal/adapter/gin/middleware"
	"user-service/internal/adapter/gin/response"
	"user-service/internal/adapter/ratelimit"
	domain "user-service/internal/domain/user"
	"user-service/internal/observability"
)

const (
	docsPath    = "/docs"
	metricsPath = "/metrics"
)

// Options selects the optional parts of the router.
type Options struct {
	Prefix         string // global route prefix without slashes, e.g. "api"
	ServiceName    string
	SwaggerEnabled bool
	TracingEnabled bool

	// Prom and Gatherer enable request metrics and /metrics when both are set.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	Limiter   ratelimit.Limiter
	RateLimit ratelimit.Config
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	healthHandler *handler.HealthHandler,
	opts Options,
	log *zap.Logger,
) *gin.Engine {
	handler.ConfigureBinding()

	router := gin.New()
	router.RedirectTrailingSlash = false

	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	if opts.TracingEnabled {
		router.Use(otelgin.Middleware(opts.ServiceName))
	}
	if opts.Prom != nil {
		router.Use(opts.Prom.GinMiddleware())
	}
	router.Use(middleware.Logger(log))
	router.Use(middleware.SecurityHeaders(docsPath))

	prefix := "/" + opts.Prefix
	if opts.Prefix == "" {
		prefix = ""
	}
	healthRoute := prefix + "/health"

	limiterOpts := middleware.RateLimiterOptions{
		Config: opts.RateLimit,
		Skip: func(c *gin.Context) bool {
			return c.FullPath() == healthRoute
		},
	}
	if opts.Prom != nil {
		limiterOpts.OnLimited = func(route string) {
			opts.Prom.RateLimited.WithLabelValues(route).Inc()
		}
	}

	apiGroup := router.Group(prefix)
	apiGroup.Use(middleware.RateLimiter(opts.Limiter, limiterOpts, log))
	apiGroup.GET("/health", healthHandler.Check)
	userHandler.Register(apiGroup)

	if opts.SwaggerEnabled {
		router.GET(docsPath+"/*any", docsHandler(prefix))
		router.GET(docsPath, func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, docsPath+"/index.html")
		})
	}

	if opts.Prom != nil && opts.Gatherer != nil {
		router.GET(metricsPath, gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	router.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, fmt.Sprintf("Cannot %s %s", c.Request.Method, c.Request.URL.Path), nil)
	})

	return router
}

// docsHandler serves the Swagger UI and the embedded OpenAPI document with
// its basePath set to the configured prefix.
func docsHandler(prefix string) gin.HandlerFunc {
	doc := api.SwaggerJSON
	var document map[string]any
	if err := json.Unmarshal(api.SwaggerJSON, &document); err == nil {
		basePath := prefix
		if basePath == "" {
			basePath = "/"
		}
		document["basePath"] = basePath
		setSortEnum(document, domain.SortableFields())
		if b, err := json.Marshal(document); err == nil {
			doc = b
		}
	}

	ui := httpSwagger.Handler(httpSwagger.URL(docsPath + "/doc.json"))

	return func(c *gin.Context) {
		if c.Param("any") == "/doc.json" {
			c.Data(http.StatusOK, "application/json; charset=utf-8", doc)
			return
		}
		ui(c.Writer, c.Request)
	}
}

// setSortEnum lists the accepted values of the users list "sort" parameter.
func setSortEnum(document map[string]any, fields []string) {
	paths, _ := document["paths"].(map[string]any)
	users, _ := paths["/users"].(map[string]any)
	list, _ := users["get"].(map[string]any)
	params, _ := list["parameters"].([]any)
	for _, p := range params {
		if param, ok := p.(map[string]any); ok && param["name"] == "sort" {
			param["enum"] = fields
		}
	}
}
