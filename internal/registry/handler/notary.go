package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/peterokwara/private-blockchain/internal/ledger"
	"github.com/peterokwara/private-blockchain/internal/notary"
	"go.uber.org/zap"
)

// NotaryHandler exposes the challenge/submit workflow and entry queries.
type NotaryHandler struct {
	svc    *notary.Service
	logger *zap.Logger
}

// NewNotaryHandler creates a new NotaryHandler.
func NewNotaryHandler(svc *notary.Service, logger *zap.Logger) *NotaryHandler {
	return &NotaryHandler{svc: svc, logger: logger}
}

// Register mounts the notary routes on the given router group.
func (h *NotaryHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/challenge", h.RequestChallenge)
	rg.POST("/stars", h.SubmitStar)
	rg.GET("/stars/:address", h.StarsByOwner)
	rg.GET("/entries/:position", h.EntryByPosition)
	rg.GET("/entries/hash/:hash", h.EntryByHash)
}

type challengeRequest struct {
	Address string `json:"address" binding:"required"`
}

// RequestChallenge handles POST /challenge — issues a challenge string for
// the address to sign.
func (h *NotaryHandler) RequestChallenge(c *gin.Context) {
	var req challengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"challenge": h.svc.RequestChallenge(req.Address)})
}

type submitRequest struct {
	Address   string      `json:"address" binding:"required"`
	Challenge string      `json:"challenge" binding:"required"`
	Signature string      `json:"signature" binding:"required"`
	Star      ledger.Star `json:"star" binding:"required"`
}

// SubmitStar handles POST /stars — verifies the signed challenge and seals
// the star into the chain. Each failure kind maps to its own status and
// stable message so clients can branch without string matching.
func (h *NotaryHandler) SubmitStar(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address, challenge, signature and star are required"})
		return
	}

	entry, err := h.svc.SubmitStar(c.Request.Context(), req.Address, req.Challenge, req.Signature, req.Star)
	if err != nil {
		status, msg := submitFailure(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("star submission failed", zap.Error(err))
		}
		RecordSubmission(msg)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	RecordSubmission("sealed")
	c.JSON(http.StatusCreated, entry)
}

// submitFailure maps a submit error to its HTTP status and stable message.
func submitFailure(err error) (int, string) {
	switch {
	case errors.Is(err, notary.ErrMalformedChallenge):
		return http.StatusBadRequest, "malformed challenge"
	case errors.Is(err, notary.ErrChallengeExpired):
		return http.StatusForbidden, "challenge expired, request a new one"
	case errors.Is(err, notary.ErrBadSignature):
		return http.StatusUnauthorized, "signature does not match address"
	case errors.Is(err, ledger.ErrChainCorrupted):
		return http.StatusInternalServerError, "ledger integrity violation, appends suspended"
	default:
		return http.StatusInternalServerError, "submission failed"
	}
}

// StarsByOwner handles GET /stars/:address — returns the decoded star
// records owned by the address, oldest first. No stars is an empty list.
func (h *NotaryHandler) StarsByOwner(c *gin.Context) {
	stars, err := h.svc.StarsByOwner(c.Request.Context(), c.Param("address"))
	if err != nil {
		h.logger.Error("stars by owner", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query ledger"})
		return
	}

	c.JSON(http.StatusOK, stars)
}

// EntryByPosition handles GET /entries/:position.
func (h *NotaryHandler) EntryByPosition(c *gin.Context) {
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "position must be an integer"})
		return
	}

	entry, err := h.svc.EntryByPosition(c.Request.Context(), position)
	if errors.Is(err, ledger.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	if err != nil {
		h.logger.Error("entry by position", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query ledger"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// EntryByHash handles GET /entries/hash/:hash.
func (h *NotaryHandler) EntryByHash(c *gin.Context) {
	entry, err := h.svc.EntryByHash(c.Request.Context(), c.Param("hash"))
	if errors.Is(err, ledger.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	if err != nil {
		h.logger.Error("entry by hash", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query ledger"})
		return
	}

	c.JSON(http.StatusOK, entry)
}
