package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	models "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/models"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/fimcp"
	icache "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/service/cache"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/service/metrics"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/service/ratelimit"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/usecase"
	xhttp "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/http"
	xlogger "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/logger"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/queue"
)

const overviewCacheTTL = 30 * time.Second

// FinancialEchoHandler exposes the normalized datasets over HTTP.
type FinancialEchoHandler struct {
	logger  *xlogger.Logger
	service *usecase.FinancialDataService
	queue   queue.QueueService
	resp    icache.BytesCache
	rl      *ratelimit.Limiter
}

func NewFinancialEchoHandler(logger *xlogger.Logger, service *usecase.FinancialDataService) *FinancialEchoHandler {
	metrics.Register()
	return &FinancialEchoHandler{logger: logger, service: service, rl: ratelimit.New()}
}

// SetQueue enables the async refresh endpoint.
func (h *FinancialEchoHandler) SetQueue(q queue.QueueService) { h.queue = q }

// SetResponseCache enables short-lived caching of the overview payload.
func (h *FinancialEchoHandler) SetResponseCache(c icache.BytesCache) { h.resp = c }

func (h *FinancialEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/networth", h.NetWorth)
	g.GET("/credit", h.Credit)
	g.GET("/epf", h.RetirementFund)
	g.GET("/mf-transactions", h.FundTransactions)
	g.GET("/bank-transactions", h.BankTransactions)
	g.GET("/snapshot", h.Overview)
	g.POST("/refresh", h.Refresh)
}

func (h *FinancialEchoHandler) NetWorth(c echo.Context) error {
	req := &models.DatasetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.service.NetWorth(c.Request().Context(), req.Identity, req.Fresh)
	if err != nil {
		return h.fail(c, "networth", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *FinancialEchoHandler) Credit(c echo.Context) error {
	req := &models.DatasetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.service.Credit(c.Request().Context(), req.Identity, req.Fresh)
	if err != nil {
		return h.fail(c, "credit", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *FinancialEchoHandler) RetirementFund(c echo.Context) error {
	req := &models.DatasetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.service.RetirementFund(c.Request().Context(), req.Identity, req.Fresh)
	if err != nil {
		return h.fail(c, "epf", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *FinancialEchoHandler) FundTransactions(c echo.Context) error {
	req := &models.DatasetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.service.FundTransactions(c.Request().Context(), req.Identity, req.Fresh)
	if err != nil {
		return h.fail(c, "mf-transactions", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *FinancialEchoHandler) BankTransactions(c echo.Context) error {
	req := &models.DatasetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.service.BankTransactions(c.Request().Context(), req.Identity, req.Fresh)
	if err != nil {
		return h.fail(c, "bank-transactions", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *FinancialEchoHandler) Overview(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.EndpointLatency.WithLabelValues("snapshot").Observe(time.Since(start).Seconds()) }()

	req := &models.DatasetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	cacheKey := "resp:snapshot:" + req.Identity
	if h.resp != nil && !req.Fresh {
		if b, ok, err := h.resp.GetBytes(cacheKey); err == nil && ok {
			return xhttp.SuccessResponse(c, json.RawMessage(b))
		}
	}

	res, err := h.service.Overview(c.Request().Context(), req.Identity, req.Fresh)
	if err != nil {
		return h.fail(c, "snapshot", err)
	}
	if h.resp != nil {
		if b, err := json.Marshal(res); err == nil {
			_ = h.resp.SetBytes(cacheKey, b, overviewCacheTTL)
		}
	}
	return xhttp.SuccessResponse(c, res)
}

// Refresh enqueues a background re-fetch of every dataset. With no
// queue configured it degrades to a synchronous refresh.
func (h *FinancialEchoHandler) Refresh(c echo.Context) error {
	req := &models.RefreshRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	// A full refresh fans out to every remote tool, so throttle per
	// identity: burst of 3, one more every 10 seconds.
	if !h.rl.Allow(req.Identity, 3, 0.1) {
		return xhttp.AppErrorResponse(c,
			xhttp.NewAppError("ERR_RATE_LIMIT", "", "refresh rate limit exceeded", http.StatusTooManyRequests))
	}
	ctx := c.Request().Context()
	if h.queue != nil {
		if err := h.queue.PublishMessage(ctx, usecase.RefreshMessageType, req); err != nil {
			h.logger.Error("refresh enqueue failed", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.InternalError("could not enqueue refresh"))
		}
		return xhttp.DataResponse(c, http.StatusAccepted, map[string]string{"status": "queued"})
	}
	if err := h.service.RefreshAll(ctx, req.Identity); err != nil {
		return h.fail(c, "refresh", err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "refreshed"})
}

// fail maps protocol errors onto the HTTP error vocabulary.
func (h *FinancialEchoHandler) fail(c echo.Context, op string, err error) error {
	metrics.EndpointErrors.WithLabelValues(op).Inc()
	h.logger.Error("dataset fetch failed",
		xlogger.String("op", op), xlogger.Error(err))

	var authErr *fimcp.AuthenticationError
	if errors.As(err, &authErr) {
		return xhttp.AppErrorResponse(c, xhttp.UnauthorizedError("remote login rejected"))
	}
	var stateErr *fimcp.InvalidStateError
	if errors.As(err, &stateErr) {
		return xhttp.AppErrorResponse(c, xhttp.ConflictError(stateErr.Reason))
	}
	var toolErr *fimcp.ToolCallError
	if errors.As(err, &toolErr) {
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError(toolErr.Message))
	}
	var transportErr *fimcp.TransportError
	if errors.As(err, &transportErr) {
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("upstream unavailable"))
	}
	var initErr *fimcp.SessionInitializationError
	if errors.As(err, &initErr) {
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("session could not be established"))
	}
	return xhttp.AppErrorResponse(c, err)
}
