package classify

import "github.com/vvka-141/retrier/pkg/retrier"

// All combines classifiers: an error is transient only if every one of them
// says so. Nil classifiers are skipped.
type All []retrier.ErrorClassifier

// IsTransient implements retrier.ErrorClassifier.
func (a All) IsTransient(err error) bool {
	if err == nil {
		return false
	}
	for _, c := range a {
		if c != nil && !c.IsTransient(err) {
			return false
		}
	}
	return true
}
