package staging

import (
	"strings"
	"time"

	"github.com/storesync/backend/internal/domain/shared"
)

// CustomerMapping links an upstream buyer identity to a ledger account.
// One ledger account maps to one canonical upstream identity.
type CustomerMapping struct {
	LedgerAccountID string
	UpstreamBuyerID string
	IsActive        bool
	CreatedAt       time.Time
}

// NewCustomerMapping creates an active mapping.
func NewCustomerMapping(ledgerAccountID, upstreamBuyerID string) (*CustomerMapping, error) {
	if strings.TrimSpace(ledgerAccountID) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "ledger account id is required")
	}
	if strings.TrimSpace(upstreamBuyerID) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "upstream buyer id is required")
	}
	return &CustomerMapping{
		LedgerAccountID: ledgerAccountID,
		UpstreamBuyerID: upstreamBuyerID,
		IsActive:        true,
		CreatedAt:       time.Now(),
	}, nil
}
