// Package inventory owns the perk and consumable item registry and the
// operations that apply them to a criminal record. Perks are permanent
// (some toggleable); consumables carry finite uses or a finite duration
// and are decremented atomically with the effect they grant.
package inventory

import (
	"time"

	"github.com/undercity/undercity-engine/internal/domain/errors"
	"github.com/undercity/undercity-engine/internal/domain/record"
)

// Known item IDs.
const (
	PerkJailReducer = "jail_reducer" // permanent 20% sentence reduction
	PerkNotifyPing  = "notify_ping"  // release notification, toggleable
	ItemGetOutFree  = "get_out_free" // consumable instant jail release
	ItemLuckyCharm  = "lucky_charm"  // timed +5% success chance
)

// Kind distinguishes permanent perks from consumables.
type Kind string

const (
	KindPerk       Kind = "perk"
	KindConsumable Kind = "consumable"
)

// Item describes a purchasable perk or consumable.
type Item struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Cost        int64         `json:"cost"`
	Description string        `json:"description"`
	Kind        Kind          `json:"kind"`
	Uses        int           `json:"uses,omitempty"`     // consumables with finite uses
	Duration    time.Duration `json:"duration,omitempty"` // consumables with finite lifetime
}

// SentenceReductionFactor is applied to jail time for jail_reducer owners.
const SentenceReductionFactor = 0.8

// Registry returns the builtin item catalog.
func Registry() map[string]Item {
	return map[string]Item{
		PerkJailReducer: {
			ID:          PerkJailReducer,
			Name:        "Reduced Sentence",
			Cost:        20000,
			Description: "Permanently reduce jail time by 20%",
			Kind:        KindPerk,
		},
		PerkNotifyPing: {
			ID:          PerkNotifyPing,
			Name:        "Jail Release Notification",
			Cost:        10000,
			Description: "Get notified when you're released from jail",
			Kind:        KindPerk,
		},
		ItemGetOutFree: {
			ID:          ItemGetOutFree,
			Name:        "Get Out of Jail Free",
			Cost:        15000,
			Description: "Instantly end one jail sentence",
			Kind:        KindConsumable,
			Uses:        1,
		},
		ItemLuckyCharm: {
			ID:          ItemLuckyCharm,
			Name:        "Lucky Charm",
			Cost:        5000,
			Description: "+5% success chance while active",
			Kind:        KindConsumable,
			Duration:    24 * time.Hour,
		},
	}
}

// LuckyCharmBonus is the additive success-chance bonus while a lucky
// charm is active.
const LuckyCharmBonus = 0.05

// HasPerk reports whether the record owns a permanent perk.
func HasPerk(r *record.CriminalRecord, perkID string) bool {
	for _, p := range r.Perks {
		if p == perkID {
			return true
		}
	}
	return false
}

// GrantPerk adds a perk to the record; granting twice is a conflict.
func GrantPerk(r *record.CriminalRecord, perkID string) error {
	item, ok := Registry()[perkID]
	if !ok || item.Kind != KindPerk {
		return errors.NewValidationError("UNKNOWN_PERK", "unknown perk id")
	}
	if HasPerk(r, perkID) {
		return errors.NewConflictError("perk already owned")
	}
	r.Perks = append(r.Perks, perkID)
	return nil
}

// GrantItem adds a consumable, stacking uses or extending duration the
// way the black market stacks repeat purchases.
func GrantItem(r *record.CriminalRecord, itemID string, now time.Time) error {
	item, ok := Registry()[itemID]
	if !ok || item.Kind != KindConsumable {
		return errors.NewValidationError("UNKNOWN_ITEM", "unknown item id")
	}
	if r.ActiveItems == nil {
		r.ActiveItems = make(map[string]record.ItemState)
	}
	state := r.ActiveItems[itemID]
	if item.Duration > 0 {
		base := now.Unix()
		if state.ExpiresAt > base {
			base = state.ExpiresAt
		}
		state.ExpiresAt = base + int64(item.Duration/time.Second)
	} else {
		state.Uses += item.Uses
	}
	r.ActiveItems[itemID] = state
	return nil
}

// HasActiveItem reports whether a consumable is usable right now.
func HasActiveItem(r *record.CriminalRecord, itemID string, now time.Time) bool {
	state, ok := r.ActiveItems[itemID]
	if !ok {
		return false
	}
	item, ok := Registry()[itemID]
	if !ok {
		return false
	}
	if item.Duration > 0 {
		return state.ExpiresAt > now.Unix()
	}
	return state.Uses > 0
}

// ConsumeUse spends one use of a finite-use consumable. The caller must
// apply the granted effect in the same guarded section.
func ConsumeUse(r *record.CriminalRecord, itemID string) error {
	state, ok := r.ActiveItems[itemID]
	if !ok || state.Uses <= 0 {
		return errors.NewPreconditionError("ITEM_UNAVAILABLE", "no uses left for item")
	}
	state.Uses--
	if state.Uses <= 0 {
		delete(r.ActiveItems, itemID)
	} else {
		r.ActiveItems[itemID] = state
	}
	return nil
}

// Cleanup drops expired or exhausted consumables and perks that are no
// longer in the registry. Run on record load.
func Cleanup(r *record.CriminalRecord, now time.Time) {
	registry := Registry()
	for id, state := range r.ActiveItems {
		item, ok := registry[id]
		if !ok {
			delete(r.ActiveItems, id)
			continue
		}
		if item.Duration > 0 {
			if state.ExpiresAt <= now.Unix() {
				delete(r.ActiveItems, id)
			}
		} else if state.Uses <= 0 {
			delete(r.ActiveItems, id)
		}
	}
	kept := r.Perks[:0]
	for _, p := range r.Perks {
		if _, ok := registry[p]; ok {
			kept = append(kept, p)
		}
	}
	r.Perks = kept
}
