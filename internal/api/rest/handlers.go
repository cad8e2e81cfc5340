package rest

import (
	"net/http"
	"strconv"
	"time"

	crimedomain "github.com/undercity/undercity-engine/internal/domain/crime"
	"github.com/undercity/undercity-engine/internal/domain/guild"
)

type attemptRequest struct {
	Crime  string `json:"crime" validate:"required"`
	Target string `json:"target,omitempty"`
}

func (s *Server) handleAttempt(w http.ResponseWriter, r *http.Request) {
	guildID, actorID := r.PathValue("guild"), r.PathValue("actor")

	if !s.attempts.Allow(guildID, actorID) {
		w.Header().Set("Retry-After", "60")
		s.respondRateLimited(w)
		return
	}

	var req attemptRequest
	if err := s.decode(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	outcome, err := s.crimes.Attempt(r.Context(), guildID, actorID, crimedomain.ID(req.Crime), req.Target)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, outcome)
}

func (s *Server) respondRateLimited(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":{"code":"RATE_LIMITED","message":"too many attempts"}}`))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.crimes.Status(r.Context(), r.PathValue("guild"), r.PathValue("actor"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, status)
}

func (s *Server) handleQuoteBail(w http.ResponseWriter, r *http.Request) {
	quote, err := s.jail.QuoteBail(r.Context(), r.PathValue("guild"), r.PathValue("actor"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, quote)
}

func (s *Server) handlePayBail(w http.ResponseWriter, r *http.Request) {
	result, err := s.jail.PayBail(r.Context(), r.PathValue("guild"), r.PathValue("actor"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, result)
}

func (s *Server) handleJailbreak(w http.ResponseWriter, r *http.Request) {
	result, err := s.jail.AttemptJailbreak(r.Context(), r.PathValue("guild"), r.PathValue("actor"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, result)
}

type notifyRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := s.decode(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.jail.SetNotifyOnRelease(r.Context(), r.PathValue("guild"), r.PathValue("actor"), req.Enabled); err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]bool{"enabled": req.Enabled})
}

func (s *Server) handleBuyItem(w http.ResponseWriter, r *http.Request) {
	err := s.crimes.BuyItem(r.Context(), r.PathValue("guild"), r.PathValue("actor"), r.PathValue("item"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]string{"item": r.PathValue("item")})
}

func (s *Server) handleUseGetOutFree(w http.ResponseWriter, r *http.Request) {
	if err := s.jail.UseGetOutFree(r.Context(), r.PathValue("guild"), r.PathValue("actor")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]string{"status": "released"})
}

func (s *Server) handleWipeActor(w http.ResponseWriter, r *http.Request) {
	if err := s.crimes.WipeActor(r.Context(), r.PathValue("guild"), r.PathValue("actor")); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWipeGuild(w http.ResponseWriter, r *http.Request) {
	if err := s.crimes.WipeGuild(r.Context(), r.PathValue("guild")); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	entries, err := s.crimes.Leaderboard(r.Context(), r.PathValue("guild"), limit)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, entries)
}

func (s *Server) handleListCrimes(w http.ResponseWriter, r *http.Request) {
	defs, err := s.crimes.Catalog(r.Context(), r.PathValue("guild"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, defs)
}

// crimePatch updates any subset of a crime's parameters. Reward bounds
// travel together so the range is validated as a pair.
type crimePatch struct {
	SuccessRate     *float64 `json:"success_rate,omitempty"`
	MinReward       *int64   `json:"min_reward,omitempty"`
	MaxReward       *int64   `json:"max_reward,omitempty"`
	CooldownSeconds *int64   `json:"cooldown_seconds,omitempty" validate:"omitempty,gte=0"`
	JailTimeSeconds *int64   `json:"jail_time_seconds,omitempty" validate:"omitempty,gte=0"`
	FineMultiplier  *float64 `json:"fine_multiplier,omitempty"`
	Enabled         *bool    `json:"enabled,omitempty"`
}

func (s *Server) handlePatchCrime(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guild")
	id := crimedomain.ID(r.PathValue("crime"))

	var patch crimePatch
	if err := s.decode(r, &patch); err != nil {
		s.respondError(w, err)
		return
	}

	ctx := r.Context()
	apply := func(err error) bool {
		if err != nil {
			s.respondError(w, err)
			return false
		}
		return true
	}
	if patch.SuccessRate != nil {
		if !apply(s.crimes.SetSuccessRate(ctx, guildID, id, *patch.SuccessRate)) {
			return
		}
	}
	if patch.MinReward != nil || patch.MaxReward != nil {
		defs, err := s.crimes.Catalog(ctx, guildID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		def := defs[id]
		min, max := def.MinReward, def.MaxReward
		if patch.MinReward != nil {
			min = *patch.MinReward
		}
		if patch.MaxReward != nil {
			max = *patch.MaxReward
		}
		if !apply(s.crimes.SetRewardRange(ctx, guildID, id, min, max)) {
			return
		}
	}
	if patch.CooldownSeconds != nil {
		if !apply(s.crimes.SetCooldown(ctx, guildID, id, time.Duration(*patch.CooldownSeconds)*time.Second)) {
			return
		}
	}
	if patch.JailTimeSeconds != nil {
		if !apply(s.crimes.SetJailTime(ctx, guildID, id, time.Duration(*patch.JailTimeSeconds)*time.Second)) {
			return
		}
	}
	if patch.FineMultiplier != nil {
		if !apply(s.crimes.SetFineMultiplier(ctx, guildID, id, *patch.FineMultiplier)) {
			return
		}
	}
	if patch.Enabled != nil {
		if !apply(s.crimes.SetEnabled(ctx, guildID, id, *patch.Enabled)) {
			return
		}
	}

	defs, err := s.crimes.Catalog(ctx, guildID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, defs[id])
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.crimes.Settings(r.Context(), r.PathValue("guild"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, settings)
}

type settingsPatch struct {
	BailMultiplier  *float64 `json:"bail_cost_multiplier,omitempty"`
	AllowBail       *bool    `json:"allow_bail,omitempty"`
	MinStealBalance *int64   `json:"min_steal_balance,omitempty"`
	MaxStealAmount  *int64   `json:"max_steal_amount,omitempty"`
	EnableEvents    *bool    `json:"enable_random_events,omitempty"`
	NotifyCost      *int64   `json:"notify_cost,omitempty"`
}

func (s *Server) handlePatchSettings(w http.ResponseWriter, r *http.Request) {
	var patch settingsPatch
	if err := s.decode(r, &patch); err != nil {
		s.respondError(w, err)
		return
	}

	updated, err := s.crimes.UpdateSettings(r.Context(), r.PathValue("guild"), func(settings *guild.Settings) error {
		if patch.BailMultiplier != nil {
			settings.BailMultiplier = *patch.BailMultiplier
		}
		if patch.AllowBail != nil {
			settings.AllowBail = *patch.AllowBail
		}
		if patch.MinStealBalance != nil {
			settings.MinStealBalance = *patch.MinStealBalance
		}
		if patch.MaxStealAmount != nil {
			settings.MaxStealAmount = *patch.MaxStealAmount
		}
		if patch.EnableEvents != nil {
			settings.EnableEvents = *patch.EnableEvents
		}
		if patch.NotifyCost != nil {
			settings.NotifyCost = *patch.NotifyCost
		}
		return nil
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, updated)
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := s.crimes.Scenarios(r.Context(), r.PathValue("guild"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, scenarios)
}

type scenarioRequest struct {
	Name            string  `json:"name" validate:"required"`
	Risk            string  `json:"risk" validate:"required,oneof=low medium high"`
	MinReward       int64   `json:"min_reward" validate:"gte=0"`
	MaxReward       int64   `json:"max_reward" validate:"gte=0"`
	SuccessRate     float64 `json:"success_rate" validate:"gt=0,lte=1"`
	JailTimeSeconds int64   `json:"jail_time_seconds" validate:"gt=0"`
	FineMultiplier  float64 `json:"fine_multiplier" validate:"gte=0"`
	AttemptText     string  `json:"attempt_text" validate:"required"`
	SuccessText     string  `json:"success_text" validate:"required"`
	FailText        string  `json:"fail_text" validate:"required"`
}

func (s *Server) handleAddScenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if err := s.decode(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	scenario := crimedomain.Scenario{
		Name:           req.Name,
		Risk:           crimedomain.Risk(req.Risk),
		MinReward:      req.MinReward,
		MaxReward:      req.MaxReward,
		SuccessRate:    req.SuccessRate,
		JailTime:       time.Duration(req.JailTimeSeconds) * time.Second,
		FineMultiplier: req.FineMultiplier,
		AttemptText:    req.AttemptText,
		SuccessText:    req.SuccessText,
		FailText:       req.FailText,
	}
	if err := s.crimes.AddScenario(r.Context(), r.PathValue("guild"), scenario); err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusCreated, scenario)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.crimes.Items(r.Context(), r.PathValue("guild"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, items)
}
