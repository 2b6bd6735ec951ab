package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AlexandruMarc/Easy-Shops/internal/service"
	"github.com/AlexandruMarc/Easy-Shops/pkg/health"
	"github.com/AlexandruMarc/Easy-Shops/pkg/middleware"
)

// RouterConfig holds the options that shape the HTTP surface.
type RouterConfig struct {
	ServiceName    string
	APIPrefix      string
	AuthzEnabled   bool
	MaxUploadFiles int
	UploadRPS      float64
	UploadBurst    int
	TrustedProxies []string
	CORS           middleware.CORSConfig
	PprofEnabled   bool
	PprofCIDRs     []string
}

// Services groups the business services the handlers delegate to.
type Services struct {
	Images        *service.ImageService
	ProfileImages *service.ProfileImageService
	Products      *service.ProductService
}

// NewRouter creates a chi router with all catalog routes registered.
func NewRouter(cfg RouterConfig, svc Services, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.GetHead)
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Identity)
	r.Use(middleware.Tracing())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if cfg.PprofEnabled {
		middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)
	}

	images := NewImageHandler(svc.Images, cfg.MaxUploadFiles, logger)
	profiles := NewProfileImageHandler(svc.ProfileImages, cfg.AuthzEnabled, logger)
	products := NewProductHandler(svc.Products, logger)
	admin := middleware.RequireRole(cfg.AuthzEnabled, middleware.RoleAdmin)
	owner := middleware.RequireSelfOrRole(cfg.AuthzEnabled, "userId", middleware.RoleAdmin)
	uploadLimit := middleware.RateLimit(cfg.UploadRPS, cfg.UploadBurst, cfg.TrustedProxies, logger)

	r.Route(cfg.APIPrefix, func(r chi.Router) {
		r.Route("/images", func(r chi.Router) {
			r.With(uploadLimit, admin).Post("/upload", images.Upload)
			r.With(middleware.Revalidate()).Get("/image/download/{imageId}", images.Download)
			r.With(admin).Put("/image/{imageId}/update", images.Update)
			r.With(admin).Delete("/image/{imageId}/delete", images.Delete)
			r.Get("/product/{productId}", images.ListByProduct)

			r.With(uploadLimit).Post("/user/upload", profiles.Upload)
			r.Get("/user/{userId}", profiles.Get)
			r.With(middleware.Revalidate()).Get("/user/{userId}/download", profiles.Download)
			r.With(owner).Delete("/user/{userId}/delete", profiles.Delete)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/all", products.List)
			r.Get("/product/{productId}/product", products.Get)
			r.With(admin).Post("/add", products.Add)
			r.With(admin).Put("/product/{productId}/update", products.Update)
			r.With(admin).Delete("/product/{productId}/delete", products.Delete)
		})
	})

	return r
}
