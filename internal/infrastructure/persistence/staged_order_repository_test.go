package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/staging"
)

// StagedOrderModelSQLite is a SQLite-compatible version of StagedOrderModel for testing
type StagedOrderModelSQLite struct {
	ID                  string `gorm:"primaryKey"`
	BatchTag            string `gorm:"index"`
	UpstreamOrderID     string `gorm:"not null;uniqueIndex"`
	UpstreamOrderNumber string

	LedgerAccountID *string
	BuyerEmail      string
	UpstreamBuyerID string

	OrderDate          string
	OrderDateUTC       string
	OrderDateTimeLocal string

	UpstreamStatus string
	PaymentMethod  string
	ShippingMethod string

	Subtotal       string `gorm:"not null;default:0"`
	ShippingAmount string `gorm:"not null;default:0"`
	TaxAmount      string `gorm:"not null;default:0"`
	DiscountAmount string `gorm:"not null;default:0"`
	TotalAmount    string `gorm:"not null;default:0"`

	ShipName       string
	ShipLine1      string
	ShipLine2      string
	ShipLine3      string
	ShipCity       string
	ShipState      string
	ShipPostalCode string
	ShipCountry    string
	ShipPhone      string

	LineItemsJSON string

	IsValidated        bool `gorm:"not null;default:false"`
	ValidationError    *string
	IsApplied          bool `gorm:"not null;default:false"`
	LedgerDocumentID   *string
	LedgerTicketNumber *string

	CreatedAt time.Time `gorm:"not null"`
	AppliedAt *time.Time
}

func (StagedOrderModelSQLite) TableName() string {
	return "staged_orders"
}

func setupStagedOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// Auto-migrate the SQLite-compatible model
	err = db.AutoMigrate(&StagedOrderModelSQLite{})
	require.NoError(t, err)

	return db
}

func newTestStagedOrder(t *testing.T, upstreamID string) *staging.StagedOrder {
	order, err := staging.NewStagedOrder(upstreamID, upstreamID, "ORDERS_20260115_083000")
	require.NoError(t, err)
	order.BuyerEmail = "buyer@example.com"
	order.UpstreamBuyerID = "42"
	order.OrderDate = "2026-01-14"
	return order
}

func TestStagedOrderRepository_Insert(t *testing.T) {
	db := setupStagedOrderTestDB(t)
	repo := NewGormStagedOrderRepository(db)
	ctx := context.Background()

	t.Run("stages a new order", func(t *testing.T) {
		order := newTestStagedOrder(t, "1001")

		err := repo.Insert(ctx, order)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "1001", found.UpstreamOrderID)
		assert.Equal(t, "buyer@example.com", found.BuyerEmail)
		assert.Equal(t, staging.StatePending, found.State())
	})

	t.Run("rejects a duplicate upstream order id", func(t *testing.T) {
		order := newTestStagedOrder(t, "1002")
		require.NoError(t, repo.Insert(ctx, order))

		dup := newTestStagedOrder(t, "1002")
		err := repo.Insert(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestStagedOrderRepository_Update(t *testing.T) {
	db := setupStagedOrderTestDB(t)
	repo := NewGormStagedOrderRepository(db)
	ctx := context.Background()

	t.Run("persists validation outcome", func(t *testing.T) {
		order := newTestStagedOrder(t, "2001")
		require.NoError(t, repo.Insert(ctx, order))

		order.MarkInvalid("Customer 42 is not mapped to a ledger account")
		require.NoError(t, repo.Update(ctx, order))

		found, err := repo.FindByUpstreamOrderID(ctx, "2001")
		require.NoError(t, err)
		assert.Equal(t, staging.StateInvalid, found.State())
		require.NotNil(t, found.ValidationError)
		assert.Contains(t, *found.ValidationError, "not mapped")

		found.MarkValidated()
		require.NoError(t, repo.Update(ctx, found))

		again, err := repo.FindByUpstreamOrderID(ctx, "2001")
		require.NoError(t, err)
		assert.Equal(t, staging.StateValidated, again.State())
		assert.Nil(t, again.ValidationError)
	})

	t.Run("returns not found for an unknown order", func(t *testing.T) {
		order := newTestStagedOrder(t, "2002")
		err := repo.Update(ctx, order)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestStagedOrderRepository_Find(t *testing.T) {
	db := setupStagedOrderTestDB(t)
	repo := NewGormStagedOrderRepository(db)
	ctx := context.Background()

	t.Run("returns not found for unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("returns not found for unknown upstream id", func(t *testing.T) {
		_, err := repo.FindByUpstreamOrderID(ctx, "no-such-order")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("reports existence by upstream id", func(t *testing.T) {
		require.NoError(t, repo.Insert(ctx, newTestStagedOrder(t, "3001")))

		exists, err := repo.ExistsByUpstreamOrderID(ctx, "3001")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByUpstreamOrderID(ctx, "3002")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestStagedOrderRepository_Listing(t *testing.T) {
	db := setupStagedOrderTestDB(t)
	repo := NewGormStagedOrderRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-3 * time.Hour)
	for i, id := range []string{"4003", "4001", "4002"} {
		order := newTestStagedOrder(t, id)
		order.CreatedAt = base.Add(time.Duration(3-i) * time.Minute)
		require.NoError(t, repo.Insert(ctx, order))
	}

	t.Run("lists pending oldest first", func(t *testing.T) {
		pending, err := repo.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 3)
		assert.Equal(t, "4002", pending[0].UpstreamOrderID)
		assert.Equal(t, "4001", pending[1].UpstreamOrderID)
		assert.Equal(t, "4003", pending[2].UpstreamOrderID)
	})

	t.Run("lists by batch tag", func(t *testing.T) {
		other := newTestStagedOrder(t, "4100")
		other.BatchTag = "ORDERS_20260116_090000"
		require.NoError(t, repo.Insert(ctx, other))

		batch, err := repo.ListByBatch(ctx, "ORDERS_20260116_090000")
		require.NoError(t, err)
		require.Len(t, batch, 1)
		assert.Equal(t, "4100", batch[0].UpstreamOrderID)
	})

	t.Run("applied orders leave the pending list", func(t *testing.T) {
		err := repo.MarkApplied(ctx, mustFindID(t, repo, "4002"), "DOC-1", "101", time.Now())
		require.NoError(t, err)

		pending, err := repo.ListPending(ctx)
		require.NoError(t, err)
		for _, p := range pending {
			assert.NotEqual(t, "4002", p.UpstreamOrderID)
		}

		applied, err := repo.ListApplied(ctx)
		require.NoError(t, err)
		require.Len(t, applied, 1)
		assert.Equal(t, "4002", applied[0].UpstreamOrderID)
	})
}

func mustFindID(t *testing.T, repo *GormStagedOrderRepository, upstreamID string) uuid.UUID {
	t.Helper()
	order, err := repo.FindByUpstreamOrderID(context.Background(), upstreamID)
	require.NoError(t, err)
	return order.ID
}

func TestStagedOrderRepository_MarkApplied(t *testing.T) {
	db := setupStagedOrderTestDB(t)
	repo := NewGormStagedOrderRepository(db)
	ctx := context.Background()

	t.Run("stamps the ledger identifiers once", func(t *testing.T) {
		order := newTestStagedOrder(t, "5001")
		require.NoError(t, repo.Insert(ctx, order))

		appliedAt := time.Now()
		err := repo.MarkApplied(ctx, order.ID, "DOC-5001", "207", appliedAt)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, found.IsApplied)
		require.NotNil(t, found.LedgerDocumentID)
		assert.Equal(t, "DOC-5001", *found.LedgerDocumentID)
		require.NotNil(t, found.LedgerTicketNumber)
		assert.Equal(t, "207", *found.LedgerTicketNumber)
		require.NotNil(t, found.AppliedAt)
	})

	t.Run("second mark loses the race", func(t *testing.T) {
		order := newTestStagedOrder(t, "5002")
		require.NoError(t, repo.Insert(ctx, order))

		require.NoError(t, repo.MarkApplied(ctx, order.ID, "DOC-A", "1", time.Now()))
		err := repo.MarkApplied(ctx, order.ID, "DOC-B", "2", time.Now())
		assert.ErrorIs(t, err, shared.ErrAlreadyApplied)

		// the first write survives
		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "DOC-A", *found.LedgerDocumentID)
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		err := repo.MarkApplied(ctx, uuid.New(), "DOC-X", "9", time.Now())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestStagedOrderRepository_Stats(t *testing.T) {
	db := setupStagedOrderTestDB(t)
	repo := NewGormStagedOrderRepository(db)
	ctx := context.Background()

	t.Run("empty store has zero stats", func(t *testing.T) {
		pending, err := repo.PendingStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), pending.Count)
		assert.Nil(t, pending.OldestCreatedAt)

		failures, err := repo.FailureStats(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(0), failures.Total)
		assert.Equal(t, int64(0), failures.Stale)
	})

	t.Run("counts backlog and failures", func(t *testing.T) {
		now := time.Now()

		oldest := newTestStagedOrder(t, "6001")
		oldest.CreatedAt = now.Add(-48 * time.Hour)
		oldest.MarkInvalid("Item code WIDGET-9 not found in ledger catalog")
		require.NoError(t, repo.Insert(ctx, oldest))

		fresh := newTestStagedOrder(t, "6002")
		fresh.CreatedAt = now.Add(-10 * time.Minute)
		fresh.MarkInvalid("Order contains no line items")
		require.NoError(t, repo.Insert(ctx, fresh))

		clean := newTestStagedOrder(t, "6003")
		clean.CreatedAt = now.Add(-5 * time.Minute)
		require.NoError(t, repo.Insert(ctx, clean))

		applied := newTestStagedOrder(t, "6004")
		require.NoError(t, repo.Insert(ctx, applied))
		require.NoError(t, repo.MarkApplied(ctx, applied.ID, "DOC-6004", "301", now))

		pending, err := repo.PendingStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), pending.Count)
		require.NotNil(t, pending.OldestCreatedAt)
		assert.WithinDuration(t, oldest.CreatedAt, *pending.OldestCreatedAt, time.Second)

		failures, err := repo.FailureStats(ctx, now.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(2), failures.Total)
		assert.Equal(t, int64(1), failures.Stale)
	})
}
