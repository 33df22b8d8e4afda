package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/quantabook/ledger_core/internal/core/ports/services"
	"github.com/quantabook/ledger_core/internal/dto"
	"github.com/quantabook/ledger_core/internal/middleware"
)

// entryHandler handles HTTP requests for posting and reading ledger entries.
type entryHandler struct {
	postingService portssvc.PostingSvcFacade
}

func newEntryHandler(postingService portssvc.PostingSvcFacade) *entryHandler {
	return &entryHandler{
		postingService: postingService,
	}
}

// postEntries accepts a balanced group of entries under one transaction id
// and commits them atomically. The group either lands in full or not at all.
func (h *entryHandler) postEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.PostEntriesRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for PostEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID := middleware.GetCallerIDFromContext(c)
	logger = logger.With(slog.String("transaction_id", req.TransactionID))

	entries, err := h.postingService.PostDoubleEntry(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondWithError(c, err, "Failed to post entries")
		return
	}

	logger.Info("Entries posted successfully", slog.Int("count", len(entries)))
	c.JSON(http.StatusCreated, gin.H{
		"transactionID": req.TransactionID,
		"entries":       dto.ToEntryResponses(entries),
	})
}

func registerEntryRoutes(rg *gin.RouterGroup, postingSvc portssvc.PostingSvcFacade, postingLimiter gin.HandlerFunc) {
	h := newEntryHandler(postingSvc)

	entries := rg.Group("/entries")
	if postingLimiter != nil {
		entries.POST("", postingLimiter, h.postEntries)
	} else {
		entries.POST("", h.postEntries)
	}
}
