package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"storefront/config"
	"storefront/internal/domain/lifecycle"
	"storefront/internal/errors"

	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the primary and any configured replicas. On start it pings,
// applies pending migrations when migrations.autoMigrate is set and starts
// the pool wait monitor.
func New(params Params) (*gorm.DB, error) {
	db, err := pgLib.New(params.Config.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}
	// Surface gorm.ErrDuplicatedKey for the unique email, idempotency key and event id indexes.
	db.Config.TranslateError = true
	db = db.Session(&gorm.Session{
		// Multi-step atomic work goes through txManager.Execute.
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(params.Logger, params.Config),
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	monitor := newPoolMonitor(params.Logger, sqlDB, params.Config.Database)
	monitorCtx, cancelMonitor := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "failed to ping PostgreSQL")
			}

			if params.Config.Migrations != nil && params.Config.Migrations.AutoMigrate {
				if err := Migrate(sqlDB, MigrateUp, params.Logger); err != nil {
					return err
				}
			}

			go monitor.run(monitorCtx)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancelMonitor()

			return sqlDB.Close()
		},
	})

	return db, nil
}

// poolMonitor logs when requests had to wait for a pooled connection. Waits
// usually mean fulfilment transactions are holding connections on row locks.
type poolMonitor struct {
	logger   *slog.Logger
	stats    func() sql.DBStats
	interval time.Duration
	warnAt   time.Duration
}

func newPoolMonitor(logger *slog.Logger, sqlDB *sql.DB, cfg *config.DatabaseConfig) *poolMonitor {
	m := &poolMonitor{
		logger:   logger,
		stats:    sqlDB.Stats,
		interval: 5 * time.Second,
		warnAt:   50 * time.Millisecond,
	}
	if cfg != nil && cfg.PoolMonitorInterval > 0 {
		m.interval = cfg.PoolMonitorInterval
	}
	if cfg != nil && cfg.PoolWaitWarn > 0 {
		m.warnAt = cfg.PoolWaitWarn
	}

	return m
}

func (m *poolMonitor) run(ctx context.Context) {
	if m.logger == nil {
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	prev := m.stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := m.stats()
			m.report(ctx, prev, cur)
			prev = cur
		}
	}
}

// report logs the waits between two samples; nothing when there were none.
func (m *poolMonitor) report(ctx context.Context, prev, cur sql.DBStats) {
	waits := cur.WaitCount - prev.WaitCount
	if waits <= 0 {
		return
	}
	waited := cur.WaitDuration - prev.WaitDuration

	level, msg := slog.LevelDebug, "Postgres pool wait observed"
	if waited >= m.warnAt {
		level, msg = slog.LevelWarn, "Postgres pool wait detected"
	}

	m.logger.LogAttrs(ctx, level, msg,
		slog.Int64("waitCountDelta", waits),
		slog.Duration("waitDurationDelta", waited),
		slog.Duration("avgWait", waited/time.Duration(waits)),
		slog.Int("maxOpenConns", cur.MaxOpenConnections),
		slog.Int("inUseConns", cur.InUse),
		slog.Int("idleConns", cur.Idle),
	)
}
