package logging

import "github.com/vvka-141/retrier/pkg/retrier"

// Scoped returns l.With(prefix) when l supports prefixes, and l otherwise.
func Scoped(l retrier.Logger, prefix string) retrier.Logger {
	if p, ok := l.(interface {
		With(string) retrier.Logger
	}); ok {
		return p.With(prefix)
	}
	return l
}
