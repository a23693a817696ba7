// Package classify provides retrier.ErrorClassifier implementations that
// decide whether a failed attempt is worth retrying.
//
//   - Postgres: SQLSTATE classes and network failures seen while a
//     PostgreSQL server is starting, restarting or overloaded
//   - ExitCodes: command exit statuses the caller declared fatal
//   - All: transient only when every wrapped classifier agrees
package classify
