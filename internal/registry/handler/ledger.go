package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/peterokwara/private-blockchain/internal/ledger"
	"github.com/peterokwara/private-blockchain/internal/notary"
	"go.uber.org/zap"
)

// LedgerHandler exposes read-only chain-level endpoints.
type LedgerHandler struct {
	svc    *notary.Service
	logger *zap.Logger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(svc *notary.Service, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{svc: svc, logger: logger}
}

// Register mounts the ledger routes on the given router group.
func (h *LedgerHandler) Register(rg *gin.RouterGroup) {
	l := rg.Group("/ledger")
	{
		l.GET("", h.Overview)
		l.GET("/validate", h.Validate)
	}
}

// Overview handles GET /ledger — returns the chain height and tip hash.
func (h *LedgerHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()

	height, err := h.svc.Height(ctx)
	if err != nil {
		h.logger.Error("ledger height", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query ledger"})
		return
	}

	tip, err := h.svc.EntryByPosition(ctx, height-1)
	if err != nil {
		h.logger.Error("ledger tip", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query ledger"})
		return
	}

	SetChainHeight(float64(height))
	c.JSON(http.StatusOK, gin.H{
		"height": height,
		"tip":    tip.Hash,
	})
}

// Validate handles GET /ledger/validate — walks the full chain and reports
// every inconsistency as data, with an empty list for an intact chain.
func (h *LedgerHandler) Validate(c *gin.Context) {
	findings, err := h.svc.ValidateChain(c.Request.Context())
	if err != nil {
		h.logger.Error("ledger validate", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to validate ledger"})
		return
	}

	if len(findings) > 0 {
		h.logger.Warn("ledger integrity check failed", zap.Int("findings", len(findings)))
	}
	if findings == nil {
		findings = []ledger.ValidationError{}
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":  len(findings) == 0,
		"errors": findings,
	})
}
