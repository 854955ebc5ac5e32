package models

import (
	"context"
	"time"
)

// VerificationRecord is the audit row written for every KYC decision.
type VerificationRecord struct {
	ID             string    `json:"id" db:"id"`
	SessionID      string    `json:"sessionId" db:"session_id"`
	BusinessName   string    `json:"businessName" db:"business_name"`
	NamesMatch     bool      `json:"namesMatch" db:"names_match"`
	AddressesMatch bool      `json:"addressesMatch" db:"addresses_match"`
	FraudScreened  bool      `json:"fraudScreened" db:"fraud_screened"`
	Fraudulent     bool      `json:"fraudulent" db:"fraudulent"`
	BuyNowLink     string    `json:"buyNowLink,omitempty" db:"buy_now_link"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// Verified reports whether the record passed screening and name matching.
func (r *VerificationRecord) Verified() bool {
	return !r.Fraudulent && r.NamesMatch
}

// VerificationRepository persists verification audit rows.
type VerificationRepository interface {
	Save(ctx context.Context, record *VerificationRecord) error
	ListBySession(ctx context.Context, sessionID string) ([]*VerificationRecord, error)
}
