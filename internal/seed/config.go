package seed

import "time"

// Config holds configuration for a synthetic dataset.
type Config struct {
	Accounts                int       // Number of accounts to generate
	PublicationsPerAccount  int       // Media room releases per account
	RelationshipsPerRelease int       // Upper bound of newswire pickups per release
	Seed                    uint64    // Random seed; equal seeds give equal shapes
	Now                     time.Time // Anchor for generated timestamps
}

// DefaultConfig returns a small dataset suitable for local runs.
func DefaultConfig() Config {
	return Config{
		Accounts:                DefaultAccounts,
		PublicationsPerAccount:  DefaultPublicationsPerAccount,
		RelationshipsPerRelease: DefaultRelationshipsPerRelease,
		Seed:                    1,
		Now:                     time.Now().UTC(),
	}
}

// Stats counts the generated records.
type Stats struct {
	Accounts      int           `json:"accounts" yaml:"accounts"`
	Channels      int           `json:"channels" yaml:"channels"`
	Publications  int           `json:"publications" yaml:"publications"`
	Relationships int           `json:"relationships" yaml:"relationships"`
	AccountIDs    []string      `json:"account_ids" yaml:"account_ids"`
	Duration      time.Duration `json:"duration" yaml:"duration"`
}
