package http

import (
	"context"
	_ "embed"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"

	"dispatch/internal/pkg/metrics"
)

//go:embed openapi.json
var openAPISpec []byte

type openAPIDoc struct{}

func (openAPIDoc) ReadDoc() string { return string(openAPISpec) }

var registerDoc sync.Once

// NewRouter builds the echo instance: health and metrics endpoints, the API document,
// swagger UI and the API routes behind authentication and request validation.
func NewRouter(ctx context.Context, server *Server, auth *Authenticator, logger *slog.Logger) (*echo.Echo, error) {
	doc, err := loadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}
	validate, err := openAPIValidator(doc)
	if err != nil {
		return nil, err
	}
	registerDoc.Do(func() { swag.Register(swag.Name, openAPIDoc{}) })

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.INFO)
	e.HTTPErrorHandler = errorHandler(logger)
	e.Validator = newBodyValidator()
	e.Use(middleware.Recover(), observe())

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1", validate, auth.Middleware())
	api.GET("/openapi.json", func(c echo.Context) error {
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, openAPISpec)
	})

	api.POST("/orders", server.CreateOrder)
	api.POST("/orders/:orderId/transitions", server.TransitionOrder)
	api.PUT("/drivers/me/location", server.UpdateLocation)
	api.GET("/wallets/:walletId", server.GetWalletStatement)
	api.POST("/topups", server.CreateTopup)

	admin := api.Group("/admin")
	admin.GET("/orders/active", server.GetActiveOrders)
	admin.POST("/orders/:orderId/cancel", server.CancelOrder)
	admin.POST("/orders/:orderId/reassign", server.ReassignOrder)
	admin.POST("/wallets/:walletId/adjustments", server.AdjustWallet)
	admin.GET("/wallets/:walletId/ledger/validation", server.ValidateLedger)
	admin.POST("/payouts", server.CreatePayout)
	admin.POST("/payouts/:payoutId/advance", server.AdvancePayout)
	admin.POST("/payouts/:payoutId/complete", server.CompletePayout)
	admin.POST("/payouts/:payoutId/reject", server.RejectPayout)
	admin.POST("/topups/:requestId/approve", server.ApproveTopup)
	admin.POST("/topups/:requestId/reject", server.RejectTopup)

	return e, nil
}

// observe records request counts and latency per route.
func observe() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			status := strconv.Itoa(c.Response().Status)
			metrics.HTTPRequests.WithLabelValues(c.Request().Method, path, status).Inc()
			metrics.HTTPDuration.WithLabelValues(c.Request().Method, path).
				Observe(float64(time.Since(start).Milliseconds()))
			return nil
		}
	}
}
