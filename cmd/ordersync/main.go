package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/storesync/backend/internal/application/ordersync"
	"github.com/storesync/backend/internal/domain/staging"
	"github.com/storesync/backend/internal/infrastructure/config"
	"github.com/storesync/backend/internal/infrastructure/logger"
	"github.com/storesync/backend/internal/infrastructure/persistence"
	storefrontapi "github.com/storesync/backend/internal/infrastructure/storefront"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if logLevel == "" {
		logLevel = cfg.Log.Level
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	app, err := newApp(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize", zap.Error(err))
	}
	defer app.Close()

	ctx := context.Background()

	switch command {
	case "list-pending":
		err = app.listPending(ctx)
	case "show":
		if len(args) < 2 {
			log.Fatal("Order id required. Usage: ordersync show <id>")
		}
		err = app.show(ctx, args[1])
	case "validate":
		if len(args) < 2 {
			log.Fatal("Order id required. Usage: ordersync validate <id>")
		}
		err = app.validate(ctx, args[1])
	case "process":
		err = app.process(ctx, args[1:])
	case "pull":
		err = app.pull(ctx, args[1:])
	case "fulfill":
		err = app.fulfill(ctx, args[1:])
	case "check":
		err = app.check(ctx)
	case "health":
		err = app.health(ctx)
	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Error("Command failed", zap.String("command", command), zap.Error(err))
		os.Exit(1)
	}
}

// app holds the wired pipeline. The storefront adapter is built lazily so
// read-only commands work without storefront credentials.
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *persistence.Database

	orders   staging.Repository
	runs     staging.RunRepository
	location *time.Location

	validator *ordersync.ValidationService
	creator   *ordersync.CreationService
	resolver  *ordersync.CustomerResolver
	checker   *ordersync.HealthService
	scheduler *ordersync.Scheduler
}

func newApp(cfg *config.Config, log *zap.Logger) (*app, error) {
	location, err := time.LoadLocation(cfg.Pipeline.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Pipeline.Timezone, err)
	}

	gormLog := logger.NewGormLogger(log, gormlogger.Warn)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}

	orders := persistence.NewGormStagedOrderRepository(db.DB)
	mappings := persistence.NewGormCustomerMappingRepository(db.DB)
	runs := persistence.NewGormPipelineRunRepository(db.DB)
	directory := persistence.NewGormAccountDirectory(db.DB)
	catalog := persistence.NewGormItemCatalog(db.DB)
	writer := persistence.NewGormDocumentWriter(db.DB)

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		orders:   orders,
		runs:     runs,
		location: location,

		validator: ordersync.NewValidationService(orders, directory, catalog, log),
		creator:   ordersync.NewCreationService(orders, writer, log),
		resolver:  ordersync.NewCustomerResolver(mappings, directory, log),
		checker:   ordersync.NewHealthService(orders, runs, log),
		scheduler: ordersync.NewScheduler(orders, runs, cfg.Pipeline.RunInterval, log),
	}, nil
}

func (a *app) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

// platform builds the storefront REST adapter from configuration. Only
// pull, process and fulfill reach the storefront.
func (a *app) platform() (*storefrontapi.RestAdapter, error) {
	return storefrontapi.NewRestAdapter(&storefrontapi.RestConfig{
		BaseURL:        a.cfg.Storefront.BaseURL,
		ConsumerKey:    a.cfg.Storefront.ConsumerKey,
		ConsumerSecret: a.cfg.Storefront.ConsumerSecret,
		Timeout:        a.cfg.Storefront.Timeout,
		PageSize:       a.cfg.Storefront.PageSize,
	})
}

func (a *app) backoff() ordersync.BackoffPolicy {
	policy := ordersync.DefaultBackoffPolicy()
	if a.cfg.Pipeline.MaxAttempts > 0 {
		policy.MaxAttempts = a.cfg.Pipeline.MaxAttempts
	}
	if a.cfg.Pipeline.RetryBase > 0 {
		policy.BaseDelay = a.cfg.Pipeline.RetryBase
	}
	return policy
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func (a *app) listPending(ctx context.Context) error {
	orders, err := a.orders.ListPending(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("No pending orders")
		return nil
	}

	fmt.Printf("%-36s  %-12s  %-10s  %10s  %s\n", "ID", "UPSTREAM", "STATE", "TOTAL", "CREATED")
	for _, order := range orders {
		fmt.Printf("%-36s  %-12s  %-10s  %10s  %s\n",
			order.ID,
			order.UpstreamOrderID,
			order.State(),
			order.TotalAmount.StringFixed(2),
			order.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	fmt.Printf("\n%d pending order(s)\n", len(orders))
	return nil
}

func (a *app) show(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid order id %q: %w", rawID, err)
	}
	order, err := a.orders.FindByID(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("ID:              %s\n", order.ID)
	fmt.Printf("Batch:           %s\n", order.BatchTag)
	fmt.Printf("Upstream order:  %s (number %s)\n", order.UpstreamOrderID, order.UpstreamOrderNumber)
	fmt.Printf("State:           %s\n", order.State())
	if order.LedgerAccountID != nil {
		fmt.Printf("Ledger account:  %s\n", *order.LedgerAccountID)
	} else {
		fmt.Printf("Ledger account:  (unresolved, email %s)\n", order.BuyerEmail)
	}
	fmt.Printf("Order date:      %s (%s UTC)\n", order.OrderDate, order.OrderDateUTC)
	fmt.Printf("Status upstream: %s\n", order.UpstreamStatus)
	fmt.Printf("Payment:         %s\n", order.PaymentMethod)
	fmt.Printf("Shipping:        %s\n", order.ShippingMethod)
	fmt.Printf("Ship to:         %s, %s, %s, %s %s\n",
		order.ShipTo.Name, order.ShipTo.Line1, order.ShipTo.City,
		order.ShipTo.State, order.ShipTo.PostalCode)
	fmt.Printf("Totals:          subtotal %s  shipping %s  tax %s  discount %s  total %s\n",
		order.Subtotal.StringFixed(2), order.ShippingAmount.StringFixed(2),
		order.TaxAmount.StringFixed(2), order.DiscountAmount.StringFixed(2),
		order.TotalAmount.StringFixed(2))

	lines, err := order.Lines()
	if err != nil {
		fmt.Printf("Lines:           (unparseable: %v)\n", err)
	} else {
		fmt.Printf("Lines:           %d\n", len(lines))
		for i, line := range lines {
			fmt.Printf("  %2d. %-20s x%-6s @ %10s = %10s  (%s)\n",
				i+1, line.NormalizedSKU, line.Quantity.String(),
				line.UnitPrice.StringFixed(2), line.LineTotal.StringFixed(2), line.Name)
		}
	}

	if order.ValidationError != nil {
		fmt.Printf("Validation:      FAILED: %s\n", *order.ValidationError)
	}
	if order.IsApplied {
		fmt.Printf("Applied:         document %s, ticket %s at %s\n",
			derefString(order.LedgerDocumentID), derefString(order.LedgerTicketNumber),
			order.AppliedAt.Format(time.RFC3339))
	}
	return nil
}

func (a *app) validate(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid order id %q: %w", rawID, err)
	}
	ok, reason, err := a.validator.Validate(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Printf("INVALID: %s\n", reason)
		os.Exit(1)
	}
	fmt.Println("VALID")
	return nil
}

func (a *app) process(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	all := fs.Bool("all", false, "Process every pending order")
	batch := fs.String("batch", "", "Process one ingestion batch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	platform, err := a.platform()
	if err != nil {
		return err
	}
	processor := ordersync.NewProcessingService(
		a.orders, a.validator, a.creator, platform, a.runs, a.backoff(), a.log)

	var report *ordersync.ProcessReport
	switch {
	case *all:
		report, err = processor.ProcessAll(ctx)
	case *batch != "":
		report, err = processor.ProcessBatch(ctx, *batch)
	case fs.NArg() == 1:
		id, parseErr := uuid.Parse(fs.Arg(0))
		if parseErr != nil {
			return fmt.Errorf("invalid order id %q: %w", fs.Arg(0), parseErr)
		}
		var outcome *ordersync.OrderOutcome
		outcome, err = processor.ProcessOne(ctx, id)
		if err != nil {
			return err
		}
		report = &ordersync.ProcessReport{Processed: 1, Outcomes: []ordersync.OrderOutcome{*outcome}}
		if outcome.Success {
			report.Succeeded = 1
		} else {
			report.Failed = 1
		}
	default:
		return fmt.Errorf("usage: ordersync process <id> | --all | --batch <tag>")
	}
	if err != nil {
		return err
	}

	for _, outcome := range report.Outcomes {
		if outcome.Success {
			suffix := ""
			if outcome.AlreadyApplied {
				suffix = " (already applied)"
			}
			fmt.Printf("OK    %s  order %s -> document %s ticket %s%s\n",
				outcome.ID, outcome.UpstreamOrderID, outcome.DocumentID, outcome.TicketNumber, suffix)
		} else {
			fmt.Printf("FAIL  %s  order %s: %s\n",
				outcome.ID, outcome.UpstreamOrderID, outcome.Reason)
		}
	}
	fmt.Printf("\nprocessed %d, succeeded %d, failed %d\n",
		report.Processed, report.Succeeded, report.Failed)

	if !report.Clean() {
		os.Exit(1)
	}
	return nil
}

func (a *app) pull(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pull", flag.ExitOnError)
	days := fs.Int("days", a.cfg.Pipeline.PullDays, "Lookback window in days")
	dryRun := fs.Bool("dry-run", false, "Report what would be staged without writing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	platform, err := a.platform()
	if err != nil {
		return err
	}
	ingestion := ordersync.NewIngestionService(
		platform, a.orders, a.resolver, a.runs, a.location, a.log)

	report, err := ingestion.Pull(ctx, ordersync.IngestOptions{
		Days:   *days,
		DryRun: *dryRun,
	})
	if err != nil {
		return err
	}

	fmt.Printf("batch %s: fetched %d, staged %d, skipped %d, failed %d\n",
		report.BatchTag, report.Fetched, report.Staged, report.Skipped, report.Failed)
	if report.Failed > 0 {
		os.Exit(1)
	}
	return nil
}

func (a *app) fulfill(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fulfill", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "Report what would be completed without writing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	platform, err := a.platform()
	if err != nil {
		return err
	}
	sweep := ordersync.NewFulfillmentService(
		a.orders, persistence.NewGormFulfillmentReader(a.db.DB), platform, a.runs, a.log)

	report, err := sweep.Sweep(ctx, *dryRun)
	if err != nil {
		return err
	}

	fmt.Printf("scanned %d, completed %d, skipped %d, failed %d\n",
		report.Scanned, report.Completed, report.Skipped, report.Failed)
	if report.Failed > 0 {
		os.Exit(1)
	}
	return nil
}

func (a *app) check(ctx context.Context) error {
	run, reason := a.scheduler.ShouldRun(ctx)
	fmt.Println(reason)
	if !run {
		os.Exit(1)
	}
	return nil
}

func (a *app) health(ctx context.Context) error {
	report, err := a.checker.Check(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("status: %s\n", report.Status)
	for _, finding := range report.Findings {
		fmt.Println("  -", finding)
	}
	os.Exit(report.Status.ExitCode())
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func printUsage() {
	fmt.Println(`Order Sync Pipeline

Usage:
  ordersync [flags] <command> [arguments]

Commands:
  pull [--days N] [--dry-run]        Pull storefront orders into staging
  list-pending                       List unapplied staged orders
  show <id>                          Show one staged order in full
  validate <id>                      Validate one staged order
  process <id> | --all | --batch <tag>
                                     Validate, create and push staged orders
  fulfill [--dry-run]                Complete shipped orders on the storefront
  check                              Scheduler heuristic (exit 0=run, 1=skip)
  health                             Pipeline health (exit 0=ok, 1=warn, 2=critical)

Flags:
  -log-level string                  Log level: debug, info, warn, error

Configuration:
  config.toml in the working directory, overridable with ORDERSYNC_*
  environment variables (e.g. ORDERSYNC_DATABASE_PASSWORD).

Examples:
  # Stage the last three days of paid orders
  ordersync pull --days 3

  # Process everything pending
  ordersync process --all

  # Cron-friendly: only process when warranted
  ordersync check && ordersync process --all`)
}
