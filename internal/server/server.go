package server

import (
	"context"
	"net/http"
	"time"

	auditdomain "github.com/GestionAscensores/elevarapp/internal/audit/domain"
	billingrundomain "github.com/GestionAscensores/elevarapp/internal/billingrun/domain"
	"github.com/GestionAscensores/elevarapp/internal/config"
	invoicedomain "github.com/GestionAscensores/elevarapp/internal/invoice/domain"
	"github.com/GestionAscensores/elevarapp/internal/invoice/render"
	pricingdomain "github.com/GestionAscensores/elevarapp/internal/pricing/domain"
	taxcategorydomain "github.com/GestionAscensores/elevarapp/internal/taxcategory/domain"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	cfg config.Config
	log *zap.Logger
	db  *gorm.DB

	invoiceSvc    invoicedomain.Service
	pricingSvc    pricingdomain.Service
	taxSvc        taxcategorydomain.Service
	billingRunSvc billingrundomain.Service
	auditSvc      auditdomain.Service
	renderer      render.Renderer

	massUpdateLimiter *rateLimiter
}

type ServerParam struct {
	fx.In

	Cfg config.Config
	Log *zap.Logger
	DB  *gorm.DB

	InvoiceSvc    invoicedomain.Service
	PricingSvc    pricingdomain.Service
	TaxSvc        taxcategorydomain.Service
	BillingRunSvc billingrundomain.Service
	AuditSvc      auditdomain.Service
	Renderer      render.Renderer
}

func NewServer(p ServerParam) *Server {
	return &Server{
		cfg: p.Cfg,
		log: p.Log.Named("server"),
		db:  p.DB,

		invoiceSvc:    p.InvoiceSvc,
		pricingSvc:    p.PricingSvc,
		taxSvc:        p.TaxSvc,
		billingRunSvc: p.BillingRunSvc,
		auditSvc:      p.AuditSvc,
		renderer:      p.Renderer,

		// Mass updates rewrite a tenant's whole price book; once a minute
		// per tenant is plenty.
		massUpdateLimiter: newRateLimiter(1, time.Minute),
	}
}

// Router assembles the HTTP surface.
func (s *Server) Router() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1", s.TenantScope())
	{
		v1.POST("/invoices", s.CreateInvoice)
		v1.GET("/invoices", s.ListInvoices)
		v1.GET("/invoices/:id", s.GetInvoice)
		v1.PATCH("/invoices/:id", s.UpdateInvoice)
		v1.POST("/invoices/:id/provisional", s.MakeInvoiceProvisional)
		v1.POST("/invoices/:id/revert", s.RevertInvoiceToDraft)
		v1.POST("/invoices/:id/approve", s.ApproveInvoice)
		v1.POST("/invoices/:id/credit-note", s.CreateCreditNote)
		v1.POST("/invoices/:id/payment", s.MarkInvoicePaid)
		v1.GET("/invoices/:id/html", s.RenderInvoiceHTML)

		v1.POST("/pricing/mass-update", s.ApplyMassPriceUpdate)
		v1.GET("/pricing/history", s.ListPriceHistory)

		v1.GET("/tax-category", s.GetTaxCategory)

		v1.GET("/billing/schedule", s.GetBillingSchedule)
		v1.PUT("/billing/schedule", s.UpdateBillingSchedule)
		v1.POST("/billing/check", s.CheckAutoBilling)

		v1.GET("/audit", s.ListAuditLog)
	}

	return router
}

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(Start),
)

// Start runs the HTTP server under the fx lifecycle.
func Start(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.Router(),
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.log.Info("http server starting", zap.String("addr", s.cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
