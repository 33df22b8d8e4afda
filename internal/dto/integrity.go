package dto

// IntegrityValidationResponse reports the outcome of a full checksum sweep.
type IntegrityValidationResponse struct {
	Checked int64    `json:"checked"`
	Failed  []string `json:"failed"`
}

// TransactionVerifyResponse reports whether every entry of a transaction
// passes checksum verification.
type TransactionVerifyResponse struct {
	TransactionID string `json:"transactionID"`
	IsValid       bool   `json:"isValid"`
}
