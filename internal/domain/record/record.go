// Package record owns the per-actor criminal record: jail state,
// cooldowns, lifetime statistics, streaks and owned items. Records are
// created on first access with zeroed defaults and only mutated inside
// guarded store sections.
package record

import "time"

// SchemaVersion is bumped when fields are added. Migration is additive:
// loading an older record fills new fields with zero defaults.
const SchemaVersion = 2

// ItemState tracks an owned consumable: either a finite number of uses
// or a wall-clock expiry, never both.
type ItemState struct {
	Uses      int   `json:"uses,omitempty"`
	ExpiresAt int64 `json:"expires_at,omitempty"`
}

// CriminalRecord is the versioned per-(guild, actor) document.
type CriminalRecord struct {
	Version int `json:"version"`

	// Jail state. JailUntil of 0 means free; it is never negative.
	JailUntil          int64 `json:"jail_until"`
	OriginalSentence   int64 `json:"original_sentence"` // seconds, pre-reduction
	AttemptedJailbreak bool  `json:"attempted_jailbreak"`

	// Cooldowns: unix timestamp of the last attempt per crime type.
	LastAttempts map[string]int64 `json:"last_attempts,omitempty"`

	// Weak reference to the previous victim. The target may have been
	// wiped since; resolve-on-lookup and tolerate a miss.
	LastTarget string `json:"last_target,omitempty"`

	Streak Streak `json:"streak"`

	// Lifetime counters.
	SuccessfulCrimes int64 `json:"total_successful_crimes"`
	FailedCrimes     int64 `json:"total_failed_crimes"`
	CreditsEarned    int64 `json:"total_credits_earned"`
	FinesPaid        int64 `json:"total_fines_paid"`
	BailPaid         int64 `json:"total_bail_paid"`
	StolenFrom       int64 `json:"total_stolen_from"` // taken from others
	StolenBy         int64 `json:"total_stolen_by"`   // taken by others
	LargestHeist     int64 `json:"largest_heist"`

	// Inventory.
	Perks           []string             `json:"purchased_perks,omitempty"`
	ActiveItems     map[string]ItemState `json:"active_items,omitempty"`
	NotifyOnRelease bool                 `json:"notify_on_release"`
}

// New returns a zeroed record at the current schema version.
func New() *CriminalRecord {
	return &CriminalRecord{
		Version:      SchemaVersion,
		LastAttempts: make(map[string]int64),
		ActiveItems:  make(map[string]ItemState),
	}
}

// Migrate upgrades a record loaded from the store to the current schema
// version, filling added fields with zero defaults.
func (r *CriminalRecord) Migrate() {
	if r.LastAttempts == nil {
		r.LastAttempts = make(map[string]int64)
	}
	if r.ActiveItems == nil {
		r.ActiveItems = make(map[string]ItemState)
	}
	r.Version = SchemaVersion
}

// JailRemaining computes the remaining sentence at the given instant.
// A nonzero JailUntil that has elapsed is lazily cleared.
func (r *CriminalRecord) JailRemaining(now time.Time) time.Duration {
	if r.JailUntil == 0 {
		return 0
	}
	remaining := time.Duration(r.JailUntil-now.Unix()) * time.Second
	if remaining <= 0 {
		r.ClearJail()
		return 0
	}
	return remaining
}

// Jailed reports whether the actor is in jail at the given instant.
func (r *CriminalRecord) Jailed(now time.Time) bool {
	return r.JailRemaining(now) > 0
}

// ClearJail releases the actor and resets the per-sentence state.
func (r *CriminalRecord) ClearJail() {
	r.JailUntil = 0
	r.OriginalSentence = 0
	r.AttemptedJailbreak = false
}

// CooldownRemaining computes the remaining wait for one crime type.
func (r *CriminalRecord) CooldownRemaining(crimeID string, cooldown time.Duration, now time.Time) time.Duration {
	last, ok := r.LastAttempts[crimeID]
	if !ok || last == 0 {
		return 0
	}
	elapsed := time.Duration(now.Unix()-last) * time.Second
	if elapsed >= cooldown {
		return 0
	}
	return cooldown - elapsed
}

// TouchCooldown records the attempt timestamp for one crime type.
func (r *CriminalRecord) TouchCooldown(crimeID string, now time.Time) {
	if r.LastAttempts == nil {
		r.LastAttempts = make(map[string]int64)
	}
	r.LastAttempts[crimeID] = now.Unix()
}

// RecordHeist updates the earning counters after a successful crime.
func (r *CriminalRecord) RecordHeist(amount int64, targeted bool) {
	r.SuccessfulCrimes++
	r.CreditsEarned += amount
	if targeted {
		r.StolenFrom += amount
	}
	if amount > r.LargestHeist {
		r.LargestHeist = amount
	}
}
