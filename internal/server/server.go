package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bentoworks/shukin/internal/config"
	"github.com/bentoworks/shukin/internal/observability"
	obsmiddleware "github.com/bentoworks/shukin/internal/observability/logger"
	"github.com/bentoworks/shukin/internal/order"
	"github.com/bentoworks/shukin/internal/payment"
	paymentdomain "github.com/bentoworks/shukin/internal/payment/domain"
	"github.com/bentoworks/shukin/internal/receipt"
	receiptdomain "github.com/bentoworks/shukin/internal/receipt/domain"
	"github.com/bentoworks/shukin/internal/receivable"
	receivabledomain "github.com/bentoworks/shukin/internal/receivable/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	order.Module,
	receivable.Module,
	payment.Module,
	receipt.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
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
	cfg           config.Config
	db            *gorm.DB
	receivableSvc receivabledomain.Service
	paymentSvc    paymentdomain.Service
	receiptSvc    receiptdomain.Service
}

type ServerParams struct {
	fx.In

	Engine        *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	ReceivableSvc receivabledomain.Service
	PaymentSvc    paymentdomain.Service
	ReceiptSvc    receiptdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:        p.Engine,
		cfg:           p.Cfg,
		db:            p.DB,
		receivableSvc: p.ReceivableSvc,
		paymentSvc:    p.PaymentSvc,
		receiptSvc:    p.ReceiptSvc,
	}
	s.RegisterAPIRoutes()
	return s
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/receivables/users", s.ListUserReceivables)
	api.GET("/receivables/companies", s.ListCompanyReceivables)

	api.GET("/payments", s.ListPayments)
	api.POST("/payments", s.RecordPayment)
	api.POST("/payments/company", s.RecordCompanyPayment)
	api.GET("/payments/:id", s.GetPayment)
	api.PUT("/payments/:id", s.UpdatePayment)
	api.DELETE("/payments/:id", s.DeletePayment)
	api.GET("/payments/:id/allocations", s.ListPaymentAllocations)

	api.GET("/receipts", s.ListReceipts)
	api.POST("/receipts", s.IssueReceipt)
	api.POST("/receipts/bulk", s.BulkIssueReceipts)
	api.POST("/receipts/pre", s.IssuePreReceipt)
	api.GET("/receipts/print", s.BulkPrintReceipts)
	api.GET("/receipts/:id", s.GetReceipt)
	api.POST("/receipts/:id/reissue", s.ReissueReceipt)
}
