package handler

import (
	"net/http"

	"bithra/internal/middleware"
	"bithra/internal/models"

	"github.com/gin-gonic/gin"
)

type walletService interface {
	Wallet(userID uint) (*models.Wallet, error)
	Transactions(userID uint, limit, offset int) ([]models.WalletTransaction, error)
}

type WalletHandler struct {
	svc walletService
}

func NewWalletHandler(svc walletService) *WalletHandler {
	return &WalletHandler{svc: svc}
}

// GetBalance returns the caller's credit balance in halalas.
// GET /me/wallet
func (h *WalletHandler) GetBalance(c *gin.Context) {
	w, err := h.svc.Wallet(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "wallet error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance_halalas": w.BalanceHalalas,
		"currency":        w.Currency,
		"updated_at":      w.UpdatedAt,
	})
}

// GET /me/wallet/transactions
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	limit, offset := parseLimitOffset(c)
	list, err := h.svc.Transactions(middleware.GetUserID(c), limit, offset)
	if err != nil {
		respondError(c, err, "could not list transactions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}
