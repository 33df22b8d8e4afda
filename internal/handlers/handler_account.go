package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/quantabook/ledger_core/internal/core/ports/services"
	"github.com/quantabook/ledger_core/internal/dto"
	"github.com/quantabook/ledger_core/internal/middleware"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService        portssvc.AccountSvcFacade
	postingService        portssvc.PostingSvcFacade
	reconciliationService portssvc.ReconciliationSvcFacade
}

func newAccountHandler(accountService portssvc.AccountSvcFacade, postingService portssvc.PostingSvcFacade, reconciliationService portssvc.ReconciliationSvcFacade) *accountHandler {
	return &accountHandler{
		accountService:        accountService,
		postingService:        postingService,
		reconciliationService: reconciliationService,
	}
}

func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.CreateAccountRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID := middleware.GetCallerIDFromContext(c)

	account, err := h.accountService.CreateAccount(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondWithError(c, err, "Failed to create account")
		return
	}

	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

func (h *accountHandler) getAccount(c *gin.Context) {
	accountID := c.Param("accountID")

	account, err := h.accountService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve account")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), limit, offset)
	if err != nil {
		respondWithError(c, err, "Failed to list accounts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": dto.ToAccountResponses(accounts)})
}

// getAccountBalance returns the stored derived balance alongside the balance
// recomputed from entry history.
func (h *accountHandler) getAccountBalance(c *gin.Context) {
	accountID := c.Param("accountID")
	currencyCode := c.Query("currency")

	balance, err := h.reconciliationService.GetAccountBalance(c.Request.Context(), accountID, currencyCode)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve account balance")
		return
	}

	c.JSON(http.StatusOK, balance)
}

// listAccountEntries returns a keyset-paginated page of the account's entries,
// newest first.
func (h *accountHandler) listAccountEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	params := dto.ListEntriesParams{}
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Error("Failed to bind query for ListAccountEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.postingService.ListEntriesByAccount(c.Request.Context(), accountID, params)
	if err != nil {
		respondWithError(c, err, "Failed to list account entries")
		return
	}

	c.JSON(http.StatusOK, page)
}

func registerAccountRoutes(rg *gin.RouterGroup, accountSvc portssvc.AccountSvcFacade, postingSvc portssvc.PostingSvcFacade, reconciliationSvc portssvc.ReconciliationSvcFacade) {
	h := newAccountHandler(accountSvc, postingSvc, reconciliationSvc)

	accounts := rg.Group("/accounts")
	accounts.POST("", h.createAccount)
	accounts.GET("", h.listAccounts)
	accounts.GET("/:accountID", h.getAccount)
	accounts.GET("/:accountID/balance", h.getAccountBalance)
	accounts.GET("/:accountID/entries", h.listAccountEntries)
}
