package ordersync

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/ledger"
	"github.com/storesync/backend/internal/domain/staging"
)

// ValidationService checks a staged order's structural and referential
// correctness before it may be submitted for ledger creation.
type ValidationService struct {
	orders    staging.Repository
	directory ledger.AccountDirectory
	catalog   ledger.ItemCatalog
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewValidationService creates a validation service
func NewValidationService(
	orders staging.Repository,
	directory ledger.AccountDirectory,
	catalog ledger.ItemCatalog,
	logger *zap.Logger,
) *ValidationService {
	return &ValidationService{
		orders:    orders,
		directory: directory,
		catalog:   catalog,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Validate runs the ordered checks against one staged order,
// short-circuiting on the first failure. On success the record is marked
// validated and any prior failure reason is cleared; on failure the first
// failing reason is stored for operator visibility.
//
// An already-applied order is valid-but-skip: Validate returns true
// without touching the record. Lookup failures against the ledger are
// returned as errors, not recorded as validation failures.
func (s *ValidationService) Validate(ctx context.Context, id uuid.UUID) (bool, string, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return false, "", err
	}
	if order.IsApplied {
		s.logger.Debug("order already applied, skipping validation",
			zap.String("upstream_order_id", order.UpstreamOrderID))
		return true, "", nil
	}

	reason, err := s.check(ctx, order)
	if err != nil {
		return false, "", err
	}

	if reason != "" {
		order.MarkInvalid(reason)
	} else {
		order.MarkValidated()
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return false, "", err
	}

	if reason != "" {
		s.logger.Warn("staged order failed validation",
			zap.String("upstream_order_id", order.UpstreamOrderID),
			zap.String("reason", reason))
		return false, reason, nil
	}
	s.logger.Info("staged order validated",
		zap.String("upstream_order_id", order.UpstreamOrderID))
	return true, "", nil
}

// check returns the first failing reason, empty when the order is valid.
// Only referential and structural rules live here; transient lookup
// errors propagate as errors.
func (s *ValidationService) check(ctx context.Context, order *staging.StagedOrder) (string, error) {
	if order.LedgerAccountID == nil || *order.LedgerAccountID == "" {
		return "no ledger account mapped for buyer " + orDefault(order.UpstreamBuyerID, "(guest)"), nil
	}
	account, err := s.directory.FindByID(ctx, *order.LedgerAccountID)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return fmt.Sprintf("ledger account %s does not exist", *order.LedgerAccountID), nil
	}
	if err != nil {
		return "", err
	}
	if !account.IsActive {
		return fmt.Sprintf("ledger account %s is inactive", account.ID), nil
	}

	if order.BuyerEmail != "" {
		if err := s.validate.Var(order.BuyerEmail, "email"); err != nil {
			return fmt.Sprintf("buyer email %q is not a valid address", order.BuyerEmail), nil
		}
	}

	lines, err := order.Lines()
	if err != nil {
		// malformed blob: fatal, leave the record untouched for inspection
		s.logger.Error("staged order line items do not deserialize",
			zap.String("upstream_order_id", order.UpstreamOrderID),
			zap.String("batch", order.BatchTag),
			zap.Error(err))
		return "", err
	}

	for _, line := range lines {
		item, err := s.catalog.FindByCode(ctx, line.NormalizedSKU)
		if errors.Is(err, ledger.ErrItemNotFound) {
			return fmt.Sprintf("unknown item code %q", line.NormalizedSKU), nil
		}
		if err != nil {
			return "", err
		}
		if item.Discontinued {
			return fmt.Sprintf("item code %q is discontinued", line.NormalizedSKU), nil
		}
		if !line.Quantity.IsPositive() {
			return fmt.Sprintf("item %q has non-positive quantity", line.NormalizedSKU), nil
		}
	}

	if len(lines) == 0 {
		return "order has no line items", nil
	}
	return "", nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
