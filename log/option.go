package log

// Option returns a copy of config with one setting changed.
type Option func(config) config

// apply applies opts to cfg in order. Nil options are ignored.
func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		if opt != nil {
			cfg = opt(cfg)
		}
	}

	return cfg
}
