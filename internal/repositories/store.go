package repositories

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"leadcrm/internal/config"
	"leadcrm/internal/supabase"
)

// Store bundles the repositories of one backend with its health check and
// shutdown hook.
type Store struct {
	Users UserRepository
	Leads LeadRepository

	ping  func(ctx context.Context) error
	close func() error
}

func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	switch cfg.Driver {
	case config.DriverSupabase:
		client, err := supabase.New(cfg.URL, cfg.Key,
			supabase.WithSchema(cfg.Schema),
			supabase.WithTimeout(cfg.Timeout),
		)
		if err != nil {
			return nil, err
		}
		return &Store{
			Users: NewRestUserRepository(client, cfg.UsersTable),
			Leads: NewRestLeadRepository(client, cfg.LeadsTable),
			ping:  client.Ping,
		}, nil
	case config.DriverPostgres, config.DriverPGX:
		db, err := OpenSQL(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Store{
			Users: NewSQLUserRepository(db, cfg.UsersTable),
			Leads: NewSQLLeadRepository(db, cfg.LeadsTable),
			ping:  db.PingContext,
			close: db.Close,
		}, nil
	case config.DriverMemory:
		mem := NewMemoryStore()
		return &Store{Users: mem.Users(), Leads: mem.Leads()}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// OpenSQL connects to Postgres directly. Driver "postgres" is lib/pq and
// "pgx" is pgx's database/sql adapter; behind PgBouncer add
// default_query_exec_mode=simple_protocol to the DSN.
func OpenSQL(ctx context.Context, cfg config.StoreConfig) (*sqlx.DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	db, err := sqlx.ConnectContext(connectCtx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)
	return db, nil
}
