package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/paystream/paystream/internal/accounts"
	"github.com/paystream/paystream/internal/auth"
	"github.com/paystream/paystream/internal/transfers"
	"github.com/paystream/paystream/pkg/models"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := s.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

type createAccountRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Currency string `json:"currency" validate:"required,len=3"`
}

func (s *Server) listAccounts(c *gin.Context) {
	userID := c.GetString("userID")
	list, err := s.accounts.ListByUser(c.Request.Context(), userID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": list})
}

func (s *Server) createAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account := &models.Account{
		UserID:   c.GetString("userID"),
		Name:     req.Name,
		Currency: req.Currency,
	}
	if err := s.accounts.Create(c.Request.Context(), account); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

type createTransferRequest struct {
	FromAccountID string `json:"fromAccountId" validate:"required,uuid"`
	ToAccountID   string `json:"toAccountId" validate:"required,uuid"`
	Amount        string `json:"amount" validate:"required"`
	Type          string `json:"type" validate:"required,oneof=internal external"`
	Label         string `json:"label" validate:"omitempty,max=100"`
	Description   string `json:"description" validate:"omitempty,max=500"`
	Reference     string `json:"reference" validate:"omitempty,max=255"`
}

func (s *Server) listTransfers(c *gin.Context) {
	userID := c.GetString("userID")
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	list, total, err := s.transfers.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfers": list, "total": total})
}

func (s *Server) getTransfer(c *gin.Context) {
	transfer, err := s.transfers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, transfers.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transfer not found"})
			return
		}
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, transfer)
}

func (s *Server) createTransfer(c *gin.Context) {
	var req createTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive decimal"})
		return
	}

	from, err := s.accounts.Get(c.Request.Context(), req.FromAccountID)
	if err != nil {
		s.accountLookupError(c, err, "fromAccountId")
		return
	}
	to, err := s.accounts.Get(c.Request.Context(), req.ToAccountID)
	if err != nil {
		s.accountLookupError(c, err, "toAccountId")
		return
	}

	transfer := &models.Transfer{
		FromAccountID:   from.ID,
		FromAccountName: from.Name,
		ToAccountID:     to.ID,
		ToAccountName:   to.Name,
		Amount:          amount,
		Type:            req.Type,
		Status:          models.TransferStatusDraft,
		Label:           req.Label,
		Description:     req.Description,
		Reference:       req.Reference,
	}
	if err := s.transfers.Create(c.Request.Context(), transfer); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transfer)
}

type updateStatusRequest struct {
	Status models.TransferStatus `json:"status" validate:"required,oneof=draft pending completed failed"`
}

func (s *Server) updateTransferStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transfer, err := s.transfers.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		if errors.Is(err, transfers.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transfer not found"})
			return
		}
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, transfer)
}

func (s *Server) accountLookupError(c *gin.Context, err error, field string) {
	if errors.Is(err, accounts.ErrNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": field + " does not exist"})
		return
	}
	s.writeError(c, err)
}

func (s *Server) writeError(c *gin.Context, err error) {
	s.logger.Error("handler error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
