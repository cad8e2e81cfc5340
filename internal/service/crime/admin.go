package crime

import (
	"context"
	"log/slog"
	"sort"
	"time"

	crimedomain "github.com/undercity/undercity-engine/internal/domain/crime"
	"github.com/undercity/undercity-engine/internal/domain/errors"
	"github.com/undercity/undercity-engine/internal/domain/guild"
	"github.com/undercity/undercity-engine/internal/domain/inventory"
	"github.com/undercity/undercity-engine/internal/domain/record"
)

// Status is an actor's current standing.
type Status struct {
	Balance          int64                            `json:"balance"`
	JailRemaining    time.Duration                    `json:"jail_remaining"`
	Cooldowns        map[crimedomain.ID]time.Duration `json:"cooldowns"`
	StreakCount      int                              `json:"streak_count"`
	StreakMultiplier float64                          `json:"streak_multiplier"`
	Record           record.CriminalRecord            `json:"record"`
}

// Status reports an actor's jail state, cooldowns, streak and lifetime
// statistics. The lazy clear of an elapsed sentence is persisted.
func (s *Service) Status(ctx context.Context, guildID, actorID string) (*Status, error) {
	catalog, err := s.repo.LoadCatalog(ctx, guildID)
	if err != nil {
		return nil, err
	}

	var status *Status
	err = s.repo.WithActorLock(ctx, guildID, actorID, func(ctx context.Context) error {
		now := s.clk.Now()
		rec, err := s.repo.LoadRecord(ctx, guildID, actorID, now)
		if err != nil {
			return err
		}
		remaining := rec.JailRemaining(now)
		if err := s.repo.SaveRecord(ctx, guildID, actorID, rec); err != nil {
			return err
		}

		balance, err := s.bank.GetBalance(ctx, guildID, actorID)
		if err != nil {
			return err
		}

		cooldowns := make(map[crimedomain.ID]time.Duration)
		for id, def := range catalog.Definitions() {
			if wait := rec.CooldownRemaining(string(id), def.Cooldown, now); wait > 0 {
				cooldowns[id] = wait
			}
		}

		status = &Status{
			Balance:          balance,
			JailRemaining:    remaining,
			Cooldowns:        cooldowns,
			StreakCount:      rec.Streak.Count,
			StreakMultiplier: rec.Streak.Multiplier(),
			Record:           *rec,
		}
		return nil
	})
	return status, err
}

// LeaderboardEntry is one row of the guild crime leaderboard.
type LeaderboardEntry struct {
	Actor            string `json:"actor"`
	CreditsEarned    int64  `json:"credits_earned"`
	SuccessfulCrimes int64  `json:"successful_crimes"`
	LargestHeist     int64  `json:"largest_heist"`
}

// Leaderboard ranks a guild's actors by lifetime credits earned.
func (s *Service) Leaderboard(ctx context.Context, guildID string, limit int) ([]LeaderboardEntry, error) {
	actors, err := s.repo.Actors(ctx, guildID)
	if err != nil {
		return nil, err
	}
	now := s.clk.Now()

	entries := make([]LeaderboardEntry, 0, len(actors))
	for _, actorID := range actors {
		rec, err := s.repo.LoadRecord(ctx, guildID, actorID, now)
		if err != nil {
			return nil, err
		}
		if rec.SuccessfulCrimes == 0 && rec.FailedCrimes == 0 {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			Actor:            actorID,
			CreditsEarned:    rec.CreditsEarned,
			SuccessfulCrimes: rec.SuccessfulCrimes,
			LargestHeist:     rec.LargestHeist,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreditsEarned != entries[j].CreditsEarned {
			return entries[i].CreditsEarned > entries[j].CreditsEarned
		}
		return entries[i].Actor < entries[j].Actor
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Catalog returns a guild's full crime table.
func (s *Service) Catalog(ctx context.Context, guildID string) (map[crimedomain.ID]crimedomain.Definition, error) {
	catalog, err := s.repo.LoadCatalog(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return catalog.Definitions(), nil
}

// updateCatalog runs an admin mutation against the guild's crime table
// under the guild config lock. A rejected mutation persists nothing.
func (s *Service) updateCatalog(ctx context.Context, guildID string, fn func(*crimedomain.Catalog) error) error {
	return s.repo.WithGuildLock(ctx, guildID, func(ctx context.Context) error {
		catalog, err := s.repo.LoadCatalog(ctx, guildID)
		if err != nil {
			return err
		}
		if err := fn(catalog); err != nil {
			return err
		}
		return s.repo.SaveCatalog(ctx, guildID, catalog)
	})
}

// SetSuccessRate updates a crime's base success rate for a guild.
func (s *Service) SetSuccessRate(ctx context.Context, guildID string, id crimedomain.ID, rate float64) error {
	return s.updateCatalog(ctx, guildID, func(c *crimedomain.Catalog) error {
		return c.SetSuccessRate(id, rate)
	})
}

// SetRewardRange updates a crime's reward range for a guild.
func (s *Service) SetRewardRange(ctx context.Context, guildID string, id crimedomain.ID, min, max int64) error {
	return s.updateCatalog(ctx, guildID, func(c *crimedomain.Catalog) error {
		return c.SetRewardRange(id, min, max)
	})
}

// SetCooldown updates a crime's cooldown for a guild.
func (s *Service) SetCooldown(ctx context.Context, guildID string, id crimedomain.ID, cooldown time.Duration) error {
	return s.updateCatalog(ctx, guildID, func(c *crimedomain.Catalog) error {
		return c.SetCooldown(id, cooldown)
	})
}

// SetJailTime updates a crime's sentence for a guild.
func (s *Service) SetJailTime(ctx context.Context, guildID string, id crimedomain.ID, jailTime time.Duration) error {
	return s.updateCatalog(ctx, guildID, func(c *crimedomain.Catalog) error {
		return c.SetJailTime(id, jailTime)
	})
}

// SetFineMultiplier updates a crime's fine multiplier for a guild.
func (s *Service) SetFineMultiplier(ctx context.Context, guildID string, id crimedomain.ID, multiplier float64) error {
	return s.updateCatalog(ctx, guildID, func(c *crimedomain.Catalog) error {
		return c.SetFineMultiplier(id, multiplier)
	})
}

// SetEnabled toggles a crime on or off for a guild.
func (s *Service) SetEnabled(ctx context.Context, guildID string, id crimedomain.ID, enabled bool) error {
	return s.updateCatalog(ctx, guildID, func(c *crimedomain.Catalog) error {
		return c.SetEnabled(id, enabled)
	})
}

// Settings returns a guild's current settings.
func (s *Service) Settings(ctx context.Context, guildID string) (guild.Settings, error) {
	return s.repo.LoadSettings(ctx, guildID)
}

// UpdateSettings applies an admin mutation to a guild's settings under
// the guild config lock. The mutated settings are validated before
// anything persists.
func (s *Service) UpdateSettings(ctx context.Context, guildID string, fn func(*guild.Settings) error) (guild.Settings, error) {
	var updated guild.Settings
	err := s.repo.WithGuildLock(ctx, guildID, func(ctx context.Context) error {
		settings, err := s.repo.LoadSettings(ctx, guildID)
		if err != nil {
			return err
		}
		if err := fn(&settings); err != nil {
			return err
		}
		if err := settings.Validate(); err != nil {
			return err
		}
		if err := s.repo.SaveSettings(ctx, guildID, settings); err != nil {
			return err
		}
		updated = settings
		return nil
	})
	return updated, err
}

// Scenarios returns the random-crime scenario pool for a guild: the
// builtin scenarios plus the guild's custom ones.
func (s *Service) Scenarios(ctx context.Context, guildID string) ([]crimedomain.Scenario, error) {
	custom, err := s.repo.LoadScenarios(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return append(crimedomain.BuiltinScenarios(), custom...), nil
}

// AddScenario appends a custom random-crime scenario for a guild.
// Names must be unique across builtin and custom scenarios.
func (s *Service) AddScenario(ctx context.Context, guildID string, scenario crimedomain.Scenario) error {
	if err := scenario.Validate(); err != nil {
		return err
	}
	return s.repo.WithGuildLock(ctx, guildID, func(ctx context.Context) error {
		custom, err := s.repo.LoadScenarios(ctx, guildID)
		if err != nil {
			return err
		}
		for _, existing := range append(crimedomain.BuiltinScenarios(), custom...) {
			if existing.Name == scenario.Name {
				return errors.NewConflictError("scenario name already exists")
			}
		}
		return s.repo.SaveScenarios(ctx, guildID, append(custom, scenario))
	})
}

// WipeActor deletes an actor's criminal record and clears dangling
// last-target references other actors hold on them. Balances are owned
// by the ledger and are untouched.
func (s *Service) WipeActor(ctx context.Context, guildID, actorID string) error {
	err := s.repo.WithActorLock(ctx, guildID, actorID, func(ctx context.Context) error {
		return s.repo.DeleteRecord(ctx, guildID, actorID)
	})
	if err != nil {
		return err
	}

	actors, err := s.repo.Actors(ctx, guildID)
	if err != nil {
		return err
	}
	now := s.clk.Now()
	for _, other := range actors {
		if other == actorID {
			continue
		}
		err := s.repo.WithActorLock(ctx, guildID, other, func(ctx context.Context) error {
			rec, err := s.repo.LoadRecord(ctx, guildID, other, now)
			if err != nil {
				return err
			}
			if rec.LastTarget != actorID {
				return nil
			}
			rec.LastTarget = ""
			return s.repo.SaveRecord(ctx, guildID, other, rec)
		})
		if err != nil {
			return err
		}
	}
	s.logger.Info("actor wiped", slog.String("guild", guildID), slog.String("actor", actorID))
	return nil
}

// WipeGuild deletes every criminal record in a guild along with its
// settings, crime table and custom scenarios.
func (s *Service) WipeGuild(ctx context.Context, guildID string) error {
	actors, err := s.repo.Actors(ctx, guildID)
	if err != nil {
		return err
	}
	for _, actorID := range actors {
		err := s.repo.WithActorLock(ctx, guildID, actorID, func(ctx context.Context) error {
			return s.repo.DeleteRecord(ctx, guildID, actorID)
		})
		if err != nil {
			return err
		}
	}
	if err := s.repo.DeleteGuildConfig(ctx, guildID); err != nil {
		return err
	}
	s.logger.Info("guild wiped", slog.String("guild", guildID))
	return nil
}

// Items returns the black-market catalog with guild price overrides
// applied.
func (s *Service) Items(ctx context.Context, guildID string) (map[string]inventory.Item, error) {
	settings, err := s.repo.LoadSettings(ctx, guildID)
	if err != nil {
		return nil, err
	}
	items := inventory.Registry()
	if settings.NotifyCost > 0 {
		item := items[inventory.PerkNotifyPing]
		item.Cost = settings.NotifyCost
		items[inventory.PerkNotifyPing] = item
	}
	return items, nil
}

// BuyItem purchases a perk or consumable from the black market.
// Purchases require full solvency. Buying the notify perk enables the
// release ping immediately.
func (s *Service) BuyItem(ctx context.Context, guildID, actorID, itemID string) error {
	items, err := s.Items(ctx, guildID)
	if err != nil {
		return err
	}
	item, ok := items[itemID]
	if !ok {
		return errors.NewValidationError("UNKNOWN_ITEM", "unknown item id")
	}

	return s.repo.WithActorLock(ctx, guildID, actorID, func(ctx context.Context) error {
		now := s.clk.Now()
		rec, err := s.repo.LoadRecord(ctx, guildID, actorID, now)
		if err != nil {
			return err
		}

		canSpend, err := s.bank.CanSpend(ctx, guildID, actorID, item.Cost)
		if err != nil {
			return err
		}
		if !canSpend {
			return errors.NewInsufficientFundsError("not enough credits for this item")
		}

		if item.Kind == inventory.KindPerk {
			if err := inventory.GrantPerk(rec, itemID); err != nil {
				return err
			}
			if itemID == inventory.PerkNotifyPing {
				rec.NotifyOnRelease = true
			}
		} else {
			if err := inventory.GrantItem(rec, itemID, now); err != nil {
				return err
			}
		}

		if err := s.bank.Withdraw(ctx, guildID, actorID, item.Cost); err != nil {
			return err
		}
		if err := s.repo.SaveRecord(ctx, guildID, actorID, rec); err != nil {
			return err
		}
		s.logger.Info("item purchased",
			slog.String("guild", guildID),
			slog.String("actor", actorID),
			slog.String("item", itemID),
			slog.Int64("cost", item.Cost))
		return nil
	})
}
