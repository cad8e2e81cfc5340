// Package repository layers typed document access on top of the keyed
// store: criminal records, guild settings, per-guild crime tables and
// custom scenarios.
package repository

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/undercity/undercity-engine/internal/domain/crime"
	"github.com/undercity/undercity-engine/internal/domain/guild"
	"github.com/undercity/undercity-engine/internal/domain/inventory"
	"github.com/undercity/undercity-engine/internal/domain/record"
	"github.com/undercity/undercity-engine/internal/infrastructure/store"
)

// Manager mediates every typed read and write. Records are created on
// first access; settings and crime tables fall back to defaults until a
// guild writes its own.
type Manager struct {
	store    store.Store
	defaults guild.Settings
}

// New builds a manager. defaults seed the settings of guilds that have
// never been configured.
func New(s store.Store, defaults guild.Settings) *Manager {
	return &Manager{store: s, defaults: defaults}
}

// WithActorLock runs fn inside the actor's single-writer section.
func (m *Manager) WithActorLock(ctx context.Context, guildID, actorID string, fn func(ctx context.Context) error) error {
	return m.store.WithLock(ctx, store.ActorLockName(guildID, actorID), fn)
}

// WithGuildLock serializes guild-level configuration writes.
func (m *Manager) WithGuildLock(ctx context.Context, guildID string, fn func(ctx context.Context) error) error {
	return m.store.WithLock(ctx, "guild:"+guildID+":config", fn)
}

// WithLock runs fn while holding an arbitrary named lock.
func (m *Manager) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return m.store.WithLock(ctx, name, fn)
}

// LoadRecord fetches an actor's criminal record, creating a zeroed one
// on first access. Loaded records are migrated to the current schema
// and swept of expired items.
func (m *Manager) LoadRecord(ctx context.Context, guildID, actorID string, now time.Time) (*record.CriminalRecord, error) {
	rec := record.New()
	err := m.store.Get(ctx, store.RecordKey(guildID, actorID), rec)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return record.New(), nil
		}
		return nil, err
	}
	rec.Migrate()
	inventory.Cleanup(rec, now)
	return rec, nil
}

// SaveRecord persists an actor's criminal record.
func (m *Manager) SaveRecord(ctx context.Context, guildID, actorID string, rec *record.CriminalRecord) error {
	return m.store.Set(ctx, store.RecordKey(guildID, actorID), rec)
}

// DeleteRecord removes an actor's criminal record.
func (m *Manager) DeleteRecord(ctx context.Context, guildID, actorID string) error {
	return m.store.Delete(ctx, store.RecordKey(guildID, actorID))
}

// LoadSettings fetches a guild's settings, falling back to the
// configured defaults for guilds never written.
func (m *Manager) LoadSettings(ctx context.Context, guildID string) (guild.Settings, error) {
	settings := m.defaults
	err := m.store.Get(ctx, store.SettingsKey(guildID), &settings)
	if err != nil && !stderrors.Is(err, store.ErrNotFound) {
		return guild.Settings{}, err
	}
	return settings, nil
}

// SaveSettings persists a guild's settings.
func (m *Manager) SaveSettings(ctx context.Context, guildID string, settings guild.Settings) error {
	return m.store.Set(ctx, store.SettingsKey(guildID), settings)
}

// LoadCatalog builds a guild's crime catalog: builtin defaults overlaid
// with whatever definitions the guild has customized.
func (m *Manager) LoadCatalog(ctx context.Context, guildID string) (*crime.Catalog, error) {
	stored := make(map[crime.ID]crime.Definition)
	err := m.store.Get(ctx, store.CrimesKey(guildID), &stored)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return crime.NewCatalog(), nil
		}
		return nil, err
	}
	return crime.NewCatalogFrom(stored), nil
}

// SaveCatalog persists a guild's full crime table.
func (m *Manager) SaveCatalog(ctx context.Context, guildID string, catalog *crime.Catalog) error {
	return m.store.Set(ctx, store.CrimesKey(guildID), catalog.Definitions())
}

// LoadScenarios fetches a guild's custom random-crime scenarios. The
// builtin pool is not stored; callers append it at draw time.
func (m *Manager) LoadScenarios(ctx context.Context, guildID string) ([]crime.Scenario, error) {
	var scenarios []crime.Scenario
	err := m.store.Get(ctx, store.ScenariosKey(guildID), &scenarios)
	if err != nil && !stderrors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return scenarios, nil
}

// SaveScenarios persists a guild's custom scenario list.
func (m *Manager) SaveScenarios(ctx context.Context, guildID string, scenarios []crime.Scenario) error {
	return m.store.Set(ctx, store.ScenariosKey(guildID), scenarios)
}

// Actors lists every actor in the guild with a stored record.
func (m *Manager) Actors(ctx context.Context, guildID string) ([]string, error) {
	return m.store.Actors(ctx, guildID)
}

// DeleteGuildConfig removes a guild's settings, crime table and custom
// scenarios.
func (m *Manager) DeleteGuildConfig(ctx context.Context, guildID string) error {
	for _, key := range []string{
		store.SettingsKey(guildID),
		store.CrimesKey(guildID),
		store.ScenariosKey(guildID),
	} {
		if err := m.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
