package handler

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/infigaming-com/go-currency/currency"
	"go.uber.org/zap"
)

// CurrencyService is the part of *currency.Service the handler needs.
type CurrencyService interface {
	Snapshot(ctx context.Context) currency.Snapshot
	Convert(ctx context.Context, amount float64, from, to string) (float64, error)
	Sum(ctx context.Context, amounts []currency.Amount, to string) (float64, error)
	FormatAmount(amount float64, code string) string
	Metadata(code string) (currency.Metadata, bool)
	MetadataList() []currency.Metadata
}

type CurrencyHandler struct {
	lg      *zap.Logger
	service CurrencyService
}

func NewCurrencyHandler(lg *zap.Logger, service CurrencyService) *CurrencyHandler {
	if lg == nil {
		lg = zap.L()
	}
	return &CurrencyHandler{lg: lg, service: service}
}

// Register mounts the handler under /api/currency.
func (h *CurrencyHandler) Register(r gin.IRouter) {
	group := r.Group("/api/currency")
	group.GET("/rates", h.GetRates)
	group.GET("/rates/export", h.ExportRates)
	group.GET("/convert", h.Convert)
	group.GET("/format", h.Format)
	group.POST("/sum", h.Sum)
	group.GET("/currencies", h.Currencies)
}

func (h *CurrencyHandler) GetRates(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Snapshot(c.Request.Context()))
}

type ConvertResponse struct {
	Amount    float64 `json:"amount"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Result    float64 `json:"result"`
	Formatted string  `json:"formatted"`
}

func (h *CurrencyHandler) Convert(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		h.badRequest(c, "from and to are required")
		return
	}
	amount, err := parseAmount(c.Query("amount"))
	if err != nil {
		h.fail(c, err)
		return
	}

	result, err := h.service.Convert(c.Request.Context(), amount, from, to)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ConvertResponse{
		Amount:    amount,
		From:      from,
		To:        to,
		Result:    result,
		Formatted: h.service.FormatAmount(result, to),
	})
}

type FormatResponse struct {
	Formatted string `json:"formatted"`
}

func (h *CurrencyHandler) Format(c *gin.Context) {
	code := c.Query("currency")
	if code == "" {
		h.badRequest(c, "currency is required")
		return
	}
	amount, err := parseAmount(c.Query("amount"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, FormatResponse{Formatted: h.service.FormatAmount(amount, code)})
}

type SumRequest struct {
	To      string            `json:"to" binding:"required"`
	Amounts []currency.Amount `json:"amounts"`
}

type SumResponse struct {
	To        string  `json:"to"`
	Total     float64 `json:"total"`
	Formatted string  `json:"formatted"`
}

func (h *CurrencyHandler) Sum(c *gin.Context) {
	var req SumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	total, err := h.service.Sum(c.Request.Context(), req.Amounts, req.To)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, SumResponse{
		To:        req.To,
		Total:     total,
		Formatted: h.service.FormatAmount(total, req.To),
	})
}

func (h *CurrencyHandler) Currencies(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.MetadataList())
}

func (h *CurrencyHandler) badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Code: ErrCodeInvalidRequest, Message: message})
}

func (h *CurrencyHandler) fail(c *gin.Context, err error) {
	status := ErrorToStatusCode(err)
	if status >= http.StatusInternalServerError {
		h.lg.Error("[CURRENCY-HANDLER-ERROR]", zap.Error(err), zap.String("path", c.FullPath()))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, toErrorResponse(err))
}

func parseAmount(raw string) (float64, error) {
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, currency.NewError(currency.ErrCodeInvalidAmount, fmt.Sprintf("invalid amount: %q", raw), err, raw)
	}
	return amount, nil
}
