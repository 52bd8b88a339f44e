package handler

import (
	"strings"

	"virtual-wallet-service/internal/adapter/http/dto"
	"virtual-wallet-service/internal/core/domain"
	"virtual-wallet-service/internal/core/ports"
	"virtual-wallet-service/pkg/apperror"
	"virtual-wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the required header on every mutation.
const HeaderIdempotencyKey = "Idempotency-Key"

// WalletHandler handles the wallet endpoints.
type WalletHandler struct {
	txSvc        ports.TransactionService
	reportingSvc ports.ReportingService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(txSvc ports.TransactionService, reportingSvc ports.ReportingService) *WalletHandler {
	return &WalletHandler{
		txSvc:        txSvc,
		reportingSvc: reportingSvc,
	}
}

// Transact handles POST /transact. The boundary normalizes inputs and
// computes the canonical request hash; the engine does the rest. Replays
// return the stored response bytes verbatim.
func (h *WalletHandler) Transact(c *gin.Context) {
	key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
	if key == "" {
		response.Error(c, apperror.ErrMissingIdempotencyKey())
		return
	}

	var req dto.TransactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if req.UserID == domain.TreasuryUserID {
		response.Error(c, apperror.ErrReservedUser())
		return
	}

	assetCode := domain.NormalizeAssetCode(req.AssetCode)
	if assetCode == "" {
		response.Error(c, apperror.Validation("asset_code must not be blank"))
		return
	}
	txType := domain.TransactionType(req.TransactionType)

	receipt, err := h.txSvc.Transact(c.Request.Context(), ports.TransactCommand{
		UserID:         req.UserID,
		Amount:         req.Amount,
		Type:           txType,
		AssetCode:      assetCode,
		IdempotencyKey: key,
		RequestHash:    domain.RequestHash(req.UserID, req.Amount, txType, assetCode),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.RawJSON(c, receipt.Payload)
}

// GetBalance handles GET /balance/:user_id.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := c.Param("user_id")
	assetCode := domain.NormalizeAssetCode(c.Query("asset_code"))
	if assetCode == "" {
		response.Error(c, apperror.Validation("asset_code query parameter is required"))
		return
	}

	view, err := h.reportingSvc.GetBalance(c.Request.Context(), userID, assetCode)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, view)
}

// GetHistory handles GET /transactions/:user_id.
func (h *WalletHandler) GetHistory(c *gin.Context) {
	userID := c.Param("user_id")
	assetCode := domain.NormalizeAssetCode(c.Query("asset_code"))
	if assetCode == "" {
		response.Error(c, apperror.Validation("asset_code query parameter is required"))
		return
	}

	view, err := h.reportingSvc.GetHistory(c.Request.Context(), userID, assetCode)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, view)
}
