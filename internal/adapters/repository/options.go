package repository

import "github.com/okian/wolfwise/pkg/logger"

type options struct {
	logger       logger.Logger
	createTables bool
}

func defaultOptions() options {
	return options{logger: logger.Nop(), createTables: true}
}

// Option configures a store.
type Option func(*options)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCreateTables controls whether Replace creates missing tables from the
// frame's columns. On by default.
func WithCreateTables(on bool) Option {
	return func(o *options) {
		o.createTables = on
	}
}
