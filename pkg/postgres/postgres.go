package postgres

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/url"

	"github.com/DRSN-tech/storefront-assistant/internal/cfg"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/DRSN-tech/storefront-assistant/pkg/logger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PgDatabase держит пул соединений хранилища клиентского состояния.
type PgDatabase struct {
	Pool *pgxpool.Pool
	dsn  string
	cfg  *cfg.PGDBCfg
}

// DSN собирает строку подключения в URL-форме, пароль экранируется.
func DSN(cfg *cfg.PGDBCfg) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, cfg.Port),
		Path:   "/" + cfg.DBName,
	}

	q := url.Values{}
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// Connect создаёт пул и проверяет соединение в пределах ctx.
func Connect(ctx context.Context, cfg *cfg.PGDBCfg) (*PgDatabase, error) {
	const op = "PgDatabase.Connect"
	dsn := DSN(cfg)

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, e.Wrap(op, err)
	}

	return &PgDatabase{Pool: pool, dsn: dsn, cfg: cfg}, nil
}

func (db *PgDatabase) Ping(ctx context.Context) error {
	if err := db.Pool.Ping(ctx); err != nil {
		return e.Wrap("PgDatabase.Ping", err)
	}

	return nil
}

func (db *PgDatabase) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// RunMigrations применяет миграции схемы client_state из cfg.MigrationsPath.
func (db *PgDatabase) RunMigrations(logger logger.Logger) (err error) {
	const op = "PgDatabase.RunMigrations"

	sqlDb, err := sql.Open("pgx", db.dsn)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer sqlDb.Close()

	driver, err := postgres.WithInstance(sqlDb, &postgres.Config{})
	if err != nil {
		return e.Wrap(op, err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+db.cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		return e.Wrap(op, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return e.Wrap(op, err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return e.Wrap(op, err)
	}
	if dirty {
		return e.Wrap(op, errors.New("database schema is dirty, manual fix required"))
	}

	logger.Infof("client state schema at version %d", version)
	return nil
}
