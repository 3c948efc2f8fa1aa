package collections

// Option configures a register.
type Option func(*options)

type options struct {
	name     string
	metrics  *Metrics
	borrowed bool
}

// WithName labels the register in logs and metrics.
// Defaults to "mapped" or "flattening".
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithMetrics reports the register's activity to m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithoutOwnership makes a [Flattening] leave its items undisposed, for
// sections that keep ownership of what they hold. It has no effect on
// [Mapped], which always owns the values it derives.
func WithoutOwnership() Option {
	return func(o *options) {
		o.borrowed = true
	}
}

func buildOptions(name string, opts []Option) options {
	o := options{name: name}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
