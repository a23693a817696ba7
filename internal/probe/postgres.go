package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/retrier/pkg/retrier"
)

// DefaultConnectTimeout bounds a single connection attempt when the
// connection string does not set connect_timeout.
const DefaultConnectTimeout = 5 * time.Second

// Postgres is a readiness probe for a PostgreSQL server.
type Postgres struct {
	config *pgx.ConnConfig
}

// PostgresOption configures a Postgres probe.
type PostgresOption func(*pgx.ConnConfig)

// WithConnectTimeout overrides the per-attempt connect timeout.
func WithConnectTimeout(d time.Duration) PostgresOption {
	return func(c *pgx.ConnConfig) {
		c.ConnectTimeout = d
	}
}

// NewPostgres parses dsn (URL or keyword/value form) and returns a probe.
// Parse failures wrap retrier.ErrInvalidConfig.
func NewPostgres(dsn string, opts ...PostgresOption) (*Postgres, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: connection string is required", retrier.ErrInvalidConfig)
	}
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", retrier.ErrInvalidConfig, err)
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = DefaultConnectTimeout
	}
	for _, opt := range opts {
		opt(config)
	}
	return &Postgres{config: config}, nil
}

// Target describes the server being probed, without credentials.
func (p *Postgres) Target() string {
	return fmt.Sprintf("%s:%d/%s", p.config.Host, p.config.Port, p.config.Database)
}

// Ping opens a connection, pings it and returns the server version.
// The connection is always closed before returning.
func (p *Postgres) Ping(ctx context.Context) (string, error) {
	conn, err := pgx.ConnectConfig(ctx, p.config.Copy())
	if err != nil {
		return "", p.wrap(err)
	}
	defer conn.Close(context.Background())

	if err := conn.Ping(ctx); err != nil {
		return "", p.wrap(err)
	}

	var version string
	if err := conn.QueryRow(ctx, "SHOW server_version").Scan(&version); err != nil {
		return "", p.wrap(err)
	}
	return version, nil
}

func (p *Postgres) wrap(err error) error {
	return wrapConnectionError(err, p.config.Host, p.config.Port, p.config.Database)
}

// wrapConnectionError adds a short hint to common pgx connection failures.
// The original error stays in the chain for classification.
func wrapConnectionError(err error, host string, port uint16, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf("connection refused to %s (is PostgreSQL running?): %w", addr, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf("cannot resolve host %q: %w", host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf("password authentication failed for database %q: %w", database, err)

	case strings.Contains(errStr, "database system is starting up"):
		return fmt.Errorf("%s is starting up: %w", addr, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf("connection timed out to %s: %w", addr, err)

	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf("too many connections to database %q: %w", database, err)

	default:
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
}
