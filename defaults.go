package throughcache

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// identity is the Clone used when Options.Clone is nil.
func identity[V any](v V) V { return v }
