package arbiter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeContextHash derives the opaque fingerprint of a decision
// request's inputs. Callers must treat the result as opaque — it is used
// both as an idempotency key (autopilot dedupe) and as the deterministic
// seed for exploration noise.
func ComputeContextHash(householdKey, nowISO string, signal Signal) string {
	joined := fmt.Sprintf("%s|%s|%s|%s|%t", householdKey, nowISO, signal.TimeWindow, signal.Energy, signal.CalendarConflict)
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}
