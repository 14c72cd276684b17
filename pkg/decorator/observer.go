package decorator

// Observer receives registry events. Implementations must be safe for
// concurrent use; pkg/metrics provides a Prometheus backed one.
type Observer interface {
	// Resolved reports a successful resolution. Fallback is true when the
	// definition came from an ancestor type or the default version.
	Resolved(model, version, decorator string, fallback bool)
	// Unresolved reports a resolution failure.
	Unresolved(model, version string)
	// CacheHit reports a presenter served from a model's decoration cache.
	CacheHit(decorator string)
	// Decorated reports a newly constructed presenter.
	Decorated(decorator string)
}
