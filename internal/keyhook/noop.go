package keyhook

// NoopProvider delivers no events. Used on unsupported platforms and as the
// default in tests that drive the monitor manually via Feed-equivalent
// calls rather than real OS input.
type NoopProvider struct{}

func (NoopProvider) Start(func(Event)) error { return nil }
func (NoopProvider) Stop() error              { return nil }
