package archive

import "github.com/dshills/twinmark/internal/logging"

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for recoverable read failures.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}
