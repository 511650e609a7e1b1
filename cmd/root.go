package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rommelmars/Attendance-Tracker-Company/internal/config"
	"github.com/rommelmars/Attendance-Tracker-Company/internal/i18n"
	"github.com/rommelmars/Attendance-Tracker-Company/internal/service"
	"github.com/rommelmars/Attendance-Tracker-Company/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Overnight-shift attendance tracker",
	Long: `attendance tracks employee clock/break/lunch activity for the
22:00-07:00 overnight shift, enforcing the 15/15/60 minute daily budgets.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(rolloverCmd)
	rootCmd.AddCommand(exportCmd)
}

// app bundles everything a command needs after wiring.
type app struct {
	cfg      *config.Config
	loc      *time.Location
	db       *store.MongoDB
	events   *store.EventStore
	allocs   *store.AllocationStore
	resolver *service.Resolver
	svc      *service.AttendanceService
	rollover *service.RolloverService
	exporter *service.Exporter
}

// buildApp wires config, storage and services. Callers must Close.
func buildApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	i18n.Init(cfg.DefaultLocale)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := store.NewMongoDB(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, err
	}

	events, err := store.NewEventStore(ctx, db)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}
	allocs, err := store.NewAllocationStore(ctx, db)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	locks := service.NewUserLocks()
	resolver := service.NewResolver(events, allocs, loc)

	return &app{
		cfg:      cfg,
		loc:      loc,
		db:       db,
		events:   events,
		allocs:   allocs,
		resolver: resolver,
		svc:      service.NewAttendanceService(events, allocs, resolver, locks, loc),
		rollover: service.NewRolloverService(events, allocs, locks, loc, cfg.RolloverWorkers),
		exporter: service.NewExporter(events, loc),
	}, nil
}

func (a *app) Close(ctx context.Context) {
	a.db.Close(ctx)
}
