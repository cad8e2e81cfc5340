package crime

import (
	"context"
	"time"

	"github.com/undercity/undercity-engine/internal/domain/record"
)

// JailKeeper sentences an actor on a record the caller holds the lock
// for. Satisfied by the jailing service.
type JailKeeper interface {
	// Imprison mutates rec with the sentence and schedules any release
	// notification. Returns the applied sentence after perk reduction.
	Imprison(rec *record.CriminalRecord, guildID, actorID string, sentence time.Duration, now time.Time) time.Duration
}

// TargetGate screens crime targets the engine cannot judge from its own
// state, such as automated accounts. A nil gate admits everyone.
type TargetGate interface {
	IsAutomated(ctx context.Context, guildID, actorID string) (bool, error)
}
