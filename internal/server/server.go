package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	activationdomain "github.com/enfinitus/onboarding/internal/activation/domain"
	auditdomain "github.com/enfinitus/onboarding/internal/audit/domain"
	campaigndomain "github.com/enfinitus/onboarding/internal/campaign/domain"
	"github.com/enfinitus/onboarding/internal/config"
	contractdomain "github.com/enfinitus/onboarding/internal/contract/domain"
	contractservice "github.com/enfinitus/onboarding/internal/contract/service"
	margindomain "github.com/enfinitus/onboarding/internal/margin/domain"
	"github.com/enfinitus/onboarding/internal/observability"
	obslogger "github.com/enfinitus/onboarding/internal/observability/logger"
	obsmetrics "github.com/enfinitus/onboarding/internal/observability/metrics"
	obstracing "github.com/enfinitus/onboarding/internal/observability/tracing"
	onboardingdomain "github.com/enfinitus/onboarding/internal/onboarding/domain"
	opseditdomain "github.com/enfinitus/onboarding/internal/opsedit/domain"
	"github.com/enfinitus/onboarding/internal/ratelimit"
	verificationdomain "github.com/enfinitus/onboarding/internal/verification/domain"
	voucherdomain "github.com/enfinitus/onboarding/internal/voucher/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(ProvideOpsQuery),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

// OpsQueryService is the read side of the operations console plus the
// reference-data writes it exposes.
type OpsQueryService interface {
	ListCampaigns(ctx context.Context, publishedOnly bool) ([]campaigndomain.Campaign, error)
	ListVouchers(ctx context.Context, req voucherdomain.ListVoucherRequest) (voucherdomain.ListVoucherResponse, error)
	CreateVoucher(ctx context.Context, req voucherdomain.CreateVoucherRequest) (voucherdomain.Voucher, error)
	ListContractDrafts(ctx context.Context, req contractdomain.ListDraftsRequest) (contractdomain.ListDraftsResponse, error)
	GetMaLoDraftsByContractID(ctx context.Context, contractID string) ([]contractdomain.MaLoDraft, error)
	ListContractEvents(ctx context.Context, contractID string) ([]auditdomain.ContractEvent, error)
	UpsertMargin(ctx context.Context, req margindomain.UpsertMarginRequest) (margindomain.Margin, error)
	ListMargins(ctx context.Context, funnelID string) ([]margindomain.Margin, error)
	GetVerificationJob(ctx context.Context, jobID string) (verificationdomain.Job, error)
	CancelVerificationJob(ctx context.Context, jobID string) (verificationdomain.Job, error)
}

func ProvideOpsQuery(q *contractservice.OpsQuery) OpsQueryService {
	return q
}

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	onboardingSvc onboardingdomain.Service
	opsQuery      OpsQueryService
	opsEditSvc    opseditdomain.Service
	activationSvc activationdomain.Service
	importLimiter ratelimit.Limiter
	log           *zap.Logger
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	OnboardingSvc onboardingdomain.Service
	OpsQuery      OpsQueryService
	OpsEditSvc    opseditdomain.Service
	ActivationSvc activationdomain.Service
	ImportLimiter ratelimit.Limiter `optional:"true"`
	Log           *zap.Logger       `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		onboardingSvc: p.OnboardingSvc,
		opsQuery:      p.OpsQuery,
		opsEditSvc:    p.OpsEditSvc,
		activationSvc: p.ActivationSvc,
		importLimiter: p.ImportLimiter,
		log:           p.Log,
	}
	if svc.log == nil {
		svc.log = zap.NewNop()
	}

	svc.registerAPIRoutes()
	svc.registerOpsRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.POST("/contracts/import", RateLimit(s.importLimiter, s.log), s.ImportContract)
}

func (s *Server) registerOpsRoutes() {
	ops := s.engine.Group("/ops")

	// -------- Reference data --------
	ops.GET("/campaigns", s.ListCampaigns)
	ops.GET("/marketing-campaigns", s.ListMarketingCampaigns)
	ops.POST("/marketing-campaigns", ActorRequired(), s.CreateMarketingCampaign)
	ops.GET("/margins", s.ListMargins)
	ops.PUT("/margins", ActorRequired(), s.UpsertMargin)

	// -------- Drafts --------
	ops.GET("/contract-drafts", s.ListContractDrafts)
	ops.GET("/contract-drafts/:contractId/malo-drafts", s.ListMaLoDrafts)
	ops.GET("/contracts/:contractId/events", s.ListContractEvents)
	ops.PATCH("/malo-drafts/:id", ActorRequired(), s.UpdateMaLoDraft)
	ops.POST("/malo-drafts/:id/confirm-switch", ActorRequired(), s.ConfirmSwitch)

	// -------- Verification --------
	ops.GET("/verification-jobs/:id", s.GetVerificationJob)
	ops.POST("/verification-jobs/:id/cancel", ActorRequired(), s.CancelVerificationJob)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
