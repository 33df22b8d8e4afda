package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/quantabook/ledger_core/internal/core/ports/services"
	"github.com/quantabook/ledger_core/internal/dto"
	"github.com/quantabook/ledger_core/internal/middleware"
)

// transactionHandler handles HTTP requests scoped to a transaction id.
type transactionHandler struct {
	postingService   portssvc.PostingSvcFacade
	integrityService portssvc.IntegritySvcFacade
}

func newTransactionHandler(postingService portssvc.PostingSvcFacade, integrityService portssvc.IntegritySvcFacade) *transactionHandler {
	return &transactionHandler{
		postingService:   postingService,
		integrityService: integrityService,
	}
}

// getTransactionEntries returns every entry committed under the transaction.
func (h *transactionHandler) getTransactionEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	entries, err := h.postingService.GetTransactionEntries(c.Request.Context(), transactionID)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve transaction entries")
		return
	}

	logger.Debug("Transaction entries retrieved", slog.String("transaction_id", transactionID), slog.Int("count", len(entries)))
	c.JSON(http.StatusOK, gin.H{
		"transactionID": transactionID,
		"entries":       dto.ToEntryResponses(entries),
	})
}

// verifyTransaction recomputes the checksum of every entry in the transaction
// and reports whether all of them still match.
func (h *transactionHandler) verifyTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	isValid, err := h.integrityService.VerifyTransaction(c.Request.Context(), transactionID)
	if err != nil {
		respondWithError(c, err, "Failed to verify transaction")
		return
	}

	if !isValid {
		logger.Error("Transaction failed integrity verification", slog.String("transaction_id", transactionID))
	}
	c.JSON(http.StatusOK, dto.TransactionVerifyResponse{
		TransactionID: transactionID,
		IsValid:       isValid,
	})
}

func registerTransactionRoutes(rg *gin.RouterGroup, postingSvc portssvc.PostingSvcFacade, integritySvc portssvc.IntegritySvcFacade) {
	h := newTransactionHandler(postingSvc, integritySvc)

	transactions := rg.Group("/transactions")
	transactions.GET("/:transactionID/entries", h.getTransactionEntries)
	transactions.GET("/:transactionID/verify", h.verifyTransaction)
}
