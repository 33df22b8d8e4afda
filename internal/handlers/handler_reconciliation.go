package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/quantabook/ledger_core/internal/core/ports/services"
	"github.com/quantabook/ledger_core/internal/dto"
	"github.com/quantabook/ledger_core/internal/middleware"
)

// reconciliationHandler exposes the on-demand reconciliation sweep.
type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

func newReconciliationHandler(reconciliationService portssvc.ReconciliationSvcFacade) *reconciliationHandler {
	return &reconciliationHandler{
		reconciliationService: reconciliationService,
	}
}

// reconcile recomputes debit/credit totals from raw entries for the requested
// scope. A 200 response with isBalanced=false is a finding, not an error.
func (h *reconciliationHandler) reconcile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	params := dto.ReconcileParams{}
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Error("Failed to bind query for Reconcile", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	result, err := h.reconciliationService.Reconcile(c.Request.Context(), params.ToFilter())
	if err != nil {
		respondWithError(c, err, "Failed to run reconciliation")
		return
	}

	c.JSON(http.StatusOK, dto.ToReconciliationResponse(result))
}

func registerReconciliationRoutes(rg *gin.RouterGroup, reconciliationSvc portssvc.ReconciliationSvcFacade) {
	h := newReconciliationHandler(reconciliationSvc)
	rg.GET("/reconcile", h.reconcile)
}
