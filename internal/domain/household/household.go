// Package household models the identity boundary every other entity in
// this system is scoped to. A household key derives from authentication
// (see internal/infrastructure/security) and never collides across
// households even if derived content hashes do.
package household

import "time"

// Household is the tenant boundary for all decision, inventory, receipt,
// and taste data.
type Household struct {
	Key       string
	Name      string
	CreatedAt time.Time
}

// New constructs a Household with the given key.
func New(key, name string) *Household {
	return &Household{
		Key:       key,
		Name:      name,
		CreatedAt: time.Now(),
	}
}
