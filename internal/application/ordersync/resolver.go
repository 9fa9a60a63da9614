package ordersync

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/ledger"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/staging"
)

// CustomerResolver maps an upstream buyer identity to a ledger account:
// explicit mapping first, then a case-insensitive email match against the
// ledger directory. Unresolvable buyers stage unmapped and fail validation
// later, which keeps ingestion total.
type CustomerResolver struct {
	mappings  staging.CustomerMappingRepository
	directory ledger.AccountDirectory
	logger    *zap.Logger
}

// NewCustomerResolver creates a customer resolver
func NewCustomerResolver(
	mappings staging.CustomerMappingRepository,
	directory ledger.AccountDirectory,
	logger *zap.Logger,
) *CustomerResolver {
	return &CustomerResolver{
		mappings:  mappings,
		directory: directory,
		logger:    logger,
	}
}

// Resolve returns the ledger account id for a buyer, or nil when no
// mapping or email match exists. Lookup errors other than not-found are
// returned so transient directory outages are not mistaken for unmapped
// customers.
func (r *CustomerResolver) Resolve(ctx context.Context, upstreamBuyerID, email string) (*string, error) {
	if upstreamBuyerID != "" && upstreamBuyerID != "0" {
		mapping, err := r.mappings.FindActiveByUpstreamBuyerID(ctx, upstreamBuyerID)
		switch {
		case err == nil:
			return &mapping.LedgerAccountID, nil
		case errors.Is(err, shared.ErrNotFound):
			// fall through to the email match
		default:
			return nil, err
		}
	}

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, nil
	}
	account, err := r.directory.FindByEmail(ctx, email)
	switch {
	case err == nil:
		r.logger.Debug("resolved customer by email fallback",
			zap.String("buyer_id", upstreamBuyerID),
			zap.String("account_id", account.ID))
		return &account.ID, nil
	case errors.Is(err, ledger.ErrAccountNotFound):
		return nil, nil
	default:
		return nil, err
	}
}
