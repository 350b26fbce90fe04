package store

import "log/slog"

// NewStore selects a backend from the configured options. An empty DSN yields
// the in-memory store; otherwise the DSN type decides between Postgres and
// SQLite.
func NewStore(opts ...Option) (Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.DSN == "" {
		slog.Warn("No database DSN configured, using in-memory store; reminders will not survive restarts")
		return NewInMemoryStore(), nil
	}
	if DetectDSNType(cfg.DSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
		return NewPostgresStore(opts...)
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", cfg.DSN)
	return NewSQLiteStore(opts...)
}
