package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/quantabook/ledger_core/internal/core/ports/services"
	"github.com/quantabook/ledger_core/internal/dto"
)

// integrityHandler exposes the on-demand full checksum sweep.
type integrityHandler struct {
	integrityService portssvc.IntegritySvcFacade
}

func newIntegrityHandler(integrityService portssvc.IntegritySvcFacade) *integrityHandler {
	return &integrityHandler{
		integrityService: integrityService,
	}
}

func (h *integrityHandler) validate(c *gin.Context) {
	batchSize, _ := strconv.Atoi(c.DefaultQuery("batchSize", "0"))

	report, err := h.integrityService.RunValidation(c.Request.Context(), batchSize)
	if err != nil {
		respondWithError(c, err, "Failed to run integrity validation")
		return
	}

	c.JSON(http.StatusOK, dto.IntegrityValidationResponse{
		Checked: report.Checked,
		Failed:  report.Failed,
	})
}

func registerIntegrityRoutes(rg *gin.RouterGroup, integritySvc portssvc.IntegritySvcFacade) {
	h := newIntegrityHandler(integritySvc)
	rg.GET("/integrity/validate", h.validate)
}
