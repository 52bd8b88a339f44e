package dto

// TransactRequest is the request body for POST /transact.
// asset_code is case-insensitive; normalization happens at the handler.
type TransactRequest struct {
	UserID          string `json:"user_id" binding:"required"`
	Amount          int64  `json:"amount" binding:"required,gt=0"`
	TransactionType string `json:"transaction_type" binding:"required,oneof=TOPUP BONUS SPEND"`
	AssetCode       string `json:"asset_code" binding:"required"`
}

// ServiceInfo is the response body for GET /.
type ServiceInfo struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Health  string `json:"health"`
}
