package searchspace

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache registers a program cache used when the search space
// builds its default evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *spaceConfig) {
		cfg.programCache = cache
	}
}
