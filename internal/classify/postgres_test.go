package classify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPostgres_IsTransient_SQLState(t *testing.T) {
	classifier := NewPostgres()

	tests := []struct {
		name        string
		code        string
		isTransient bool
	}{
		{"connection_exception", "08000", true},
		{"connection_failure", "08006", true},
		{"sqlclient_unable_to_establish_sqlconnection", "08001", true},
		{"insufficient_resources", "53000", true},
		{"too_many_connections", "53300", true},
		{"serialization_failure", "40001", true},
		{"deadlock_detected", "40P01", true},
		{"lock_not_available", "55P03", true},
		{"admin_shutdown", "57P01", true},
		{"cannot_connect_now", "57P03", true},

		{"syntax_error", "42601", false},
		{"undefined_table", "42P01", false},
		{"unique_violation", "23505", false},
		{"invalid_password", "28P01", false},
		{"invalid_catalog_name", "3D000", false},
		{"transaction_rollback_generic", "40000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &pgconn.PgError{Code: tt.code, Message: tt.name}
			assert.Equal(t, tt.isTransient, classifier.IsTransient(err))
			assert.Equal(t, tt.isTransient, classifier.IsTransient(fmt.Errorf("ping: %w", err)), "wrapped")
		})
	}
}

func TestPostgres_IsTransient_NetworkErrors(t *testing.T) {
	classifier := NewPostgres()

	tests := []struct {
		name        string
		err         error
		isTransient bool
	}{
		{"connection_refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, true},
		{"connection_reset", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, true},
		{"network_unreachable", &net.OpError{Op: "dial", Err: syscall.ENETUNREACH}, true},
		{"host_unreachable", &net.OpError{Op: "dial", Err: syscall.EHOSTUNREACH}, true},
		{"dns_not_found", &net.DNSError{Err: "no such host", Name: "db", IsNotFound: true}, true},
		{"dns_temporary", &net.DNSError{Err: "server misbehaving", IsTemporary: true}, true},
		{"dns_timeout", &net.DNSError{Err: "timeout", IsTimeout: true}, true},
		{"dial_timeout", &net.OpError{Op: "dial", Err: timeoutError{}}, true},
		{"permission_denied", &net.OpError{Op: "dial", Err: syscall.EACCES}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isTransient, classifier.IsTransient(tt.err))
		})
	}
}

func TestPostgres_IsTransient_Messages(t *testing.T) {
	classifier := NewPostgres()

	tests := []struct {
		msg         string
		isTransient bool
	}{
		{"failed to connect to `host=localhost`: dial error (dial tcp 127.0.0.1:5432: connect: connection refused)", true},
		{"Connection Reset by peer", true},
		{"read tcp: i/o timeout", true},
		{"FATAL: the database system is starting up", true},
		{"write: broken pipe", true},
		{"password authentication failed for user \"postgres\"", false},
		{"cannot parse `host=`: invalid dsn", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.isTransient, classifier.IsTransient(errors.New(tt.msg)))
		})
	}
}

func TestPostgres_IsTransient_Nil(t *testing.T) {
	assert.False(t, NewPostgres().IsTransient(nil))
}

func TestPostgres_IsTransient_ContextErrorsAreFatal(t *testing.T) {
	assert.False(t, NewPostgres().IsTransient(context.Canceled))
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "deadline" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }
