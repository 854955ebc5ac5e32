package kyc

import (
	"context"
	"database/sql"
	"fmt"

	"pos-onboarding-workers/internal/models"
)

// PostgresAuditStore writes verification records to verification_records.
type PostgresAuditStore struct {
	db *sql.DB
}

func NewPostgresAuditStore(db *sql.DB) *PostgresAuditStore {
	return &PostgresAuditStore{db: db}
}

func (s *PostgresAuditStore) Save(ctx context.Context, r *models.VerificationRecord) error {
	query := `
		INSERT INTO verification_records
			(id, session_id, business_name, names_match, addresses_match, fraud_screened, fraudulent, buy_now_link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.SessionID, r.BusinessName, r.NamesMatch, r.AddressesMatch,
		r.FraudScreened, r.Fraudulent, r.BuyNowLink, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert verification record: %w", err)
	}
	return nil
}

func (s *PostgresAuditStore) ListBySession(ctx context.Context, sessionID string) ([]*models.VerificationRecord, error) {
	query := `
		SELECT id, session_id, business_name, names_match, addresses_match, fraud_screened, fraudulent, buy_now_link, created_at
		FROM verification_records
		WHERE session_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query verification records: %w", err)
	}
	defer rows.Close()

	var records []*models.VerificationRecord
	for rows.Next() {
		r := &models.VerificationRecord{}
		if err := rows.Scan(&r.ID, &r.SessionID, &r.BusinessName, &r.NamesMatch, &r.AddressesMatch,
			&r.FraudScreened, &r.Fraudulent, &r.BuyNowLink, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan verification record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
