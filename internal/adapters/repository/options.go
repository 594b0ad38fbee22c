package repository

// CleanOption applies a configuration option to a clean build.
type CleanOption func(*cleanConfig)

type cleanConfig struct {
	duplicates DuplicatePolicy
}

// WithDuplicatePolicy sets the policy deciding which rows of a
// NonUniqueSlug group are discarded between build attempts. Defaults to
// DropAllDuplicates.
func WithDuplicatePolicy(policy DuplicatePolicy) CleanOption {
	return func(cfg *cleanConfig) {
		if policy != nil {
			cfg.duplicates = policy
		}
	}
}
