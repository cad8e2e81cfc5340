package crime

// ModifierEvent is one randomly drawn adjustment applied during an
// attempt. Chance deltas are additive; reward and jail multipliers
// compound across events; credit deltas hit the ledger immediately.
type ModifierEvent struct {
	Name             string  `json:"name"`
	ChanceBonus      float64 `json:"chance_bonus,omitempty"`
	ChancePenalty    float64 `json:"chance_penalty,omitempty"`
	RewardMultiplier float64 `json:"reward_multiplier,omitempty"`
	JailMultiplier   float64 `json:"jail_multiplier,omitempty"`
	CreditsBonus     int64   `json:"credits_bonus,omitempty"`
	CreditsPenalty   int64   `json:"credits_penalty,omitempty"`
	Text             string  `json:"text"`
}

// ChanceDelta returns the net additive change to success chance.
func (e ModifierEvent) ChanceDelta() float64 {
	return e.ChanceBonus - e.ChancePenalty
}

// EventPool returns the modifier event pool for a crime type. The
// random crime type has no pool; its variance comes from scenarios.
func EventPool(id ID) []ModifierEvent {
	pool, ok := builtinEvents[id]
	if !ok {
		return nil
	}
	out := make([]ModifierEvent, len(pool))
	copy(out, pool)
	return out
}

var builtinEvents = map[ID][]ModifierEvent{
	Pickpocket: {
		{Name: "distracted_target", ChanceBonus: 0.15, Text: "Your target is busy on their phone! (+15% success chance)"},
		{Name: "crowded_area", ChanceBonus: 0.1, Text: "The area is crowded, making it easier to blend in! (+10% success chance)"},
		{Name: "alert_target", ChancePenalty: 0.2, Text: "Your target seems unusually alert! (-20% success chance)"},
		{Name: "loose_wallet", RewardMultiplier: 1.5, Text: "You spot their wallet hanging loosely! (1.5x reward)"},
		{Name: "tourist_group", ChanceBonus: 0.2, Text: "A large group of distracted tourists just arrived! (+20% success chance)"},
		{Name: "street_performer", ChanceBonus: 0.15, Text: "A street performer is drawing everyone's attention! (+15% success chance)"},
		{Name: "rush_hour", ChanceBonus: 0.25, Text: "It's rush hour and everyone's in a hurry! (+25% success chance)"},
		{Name: "undercover_cop", ChancePenalty: 0.20, JailMultiplier: 1.5, Text: "There's an undercover cop nearby! (-20% success chance, +50% jail time if caught)"},
		{Name: "rainy_weather", ChanceBonus: 0.15, RewardMultiplier: 0.8, Text: "It's raining - less witnesses but harder to run! (+15% success chance, -20% reward)"},
		{Name: "festival_crowd", ChancePenalty: 0.1, RewardMultiplier: 1.1, Text: "There's a festival nearby - more targets but more security! (-10% success chance, +10% reward)"},
		{Name: "slippery_hands", ChancePenalty: 0.15, RewardMultiplier: 1.2, Text: "Your hands are sweaty but you spot a valuable target! (-15% success chance, +20% reward)"},
		{Name: "dropped_wallet", CreditsBonus: 100, Text: "You found a dropped wallet on the way! (+100 credits)"},
		{Name: "pickpocket_victim", CreditsPenalty: 100, Text: "Someone pickpocketed you while you were distracted! (-100 credits)"},
	},
	Mugging: {
		{Name: "dark_alley", ChanceBonus: 0.2, Text: "You found a perfect dark alley! (+20% success chance)"},
		{Name: "martial_arts", ChancePenalty: 0.25, Text: "Your target knows martial arts! (-25% success chance)"},
		{Name: "rich_target", RewardMultiplier: 1.5, Text: "Your target is wearing expensive jewelry! (1.5x reward)"},
		{Name: "police_nearby", ChancePenalty: 0.2, JailMultiplier: 1.3, Text: "There's a police car nearby! (-20% success chance, +30% jail time if caught)"},
		{Name: "drunk_target", ChanceBonus: 0.25, RewardMultiplier: 0.8, Text: "Your target is stumbling home from the bar! (+25% success chance, -20% reward)"},
		{Name: "bodyguard", ChancePenalty: 0.3, RewardMultiplier: 1.6, Text: "They have a bodyguard - risky but carrying valuables! (-30% success chance, +60% reward)"},
		{Name: "foggy_night", ChanceBonus: 0.15, Text: "Thick fog hides your approach! (+15% success chance)"},
		{Name: "dropped_knife", ChancePenalty: 0.15, Text: "You dropped your knife mid-threat! (-15% success chance)"},
		{Name: "stray_dog", CreditsPenalty: 150, Text: "A stray dog chased you and you dropped some credits! (-150 credits)"},
		{Name: "spilled_purse", CreditsBonus: 150, Text: "Their purse spilled and you grabbed extra bills! (+150 credits)"},
	},
	RobStore: {
		{Name: "broken_camera", ChanceBonus: 0.2, Text: "The security camera is broken! (+20% success chance)"},
		{Name: "silent_alarm", ChancePenalty: 0.2, JailMultiplier: 1.4, Text: "The clerk hit the silent alarm! (-20% success chance, +40% jail time if caught)"},
		{Name: "open_register", RewardMultiplier: 1.4, Text: "The register was just counted - it's full! (1.4x reward)"},
		{Name: "off_duty_cop", ChancePenalty: 0.25, Text: "An off-duty cop is shopping in aisle three! (-25% success chance)"},
		{Name: "new_clerk", ChanceBonus: 0.15, Text: "It's the new clerk's first shift! (+15% success chance)"},
		{Name: "stocktake_night", RewardMultiplier: 1.3, ChancePenalty: 0.1, Text: "Stocktake night - more cash on hand but more staff! (-10% success chance, +30% reward)"},
		{Name: "getaway_scooter", ChanceBonus: 0.1, Text: "Someone left a scooter running outside! (+10% success chance)"},
		{Name: "jammed_door", ChancePenalty: 0.15, Text: "The back door is jammed! (-15% success chance)"},
		{Name: "loose_change", CreditsBonus: 200, Text: "You scooped the take-a-penny tray on the way out! (+200 credits)"},
		{Name: "dropped_loot", CreditsPenalty: 200, Text: "You dropped part of the loot while running! (-200 credits)"},
	},
	BankHeist: {
		{Name: "inside_man", ChanceBonus: 0.2, Text: "Your inside man left the vault ajar! (+20% success chance)"},
		{Name: "extra_guards", ChancePenalty: 0.25, JailMultiplier: 1.5, Text: "Extra guards on duty today! (-25% success chance, +50% jail time if caught)"},
		{Name: "gold_bars", RewardMultiplier: 1.8, Text: "The vault is stacked with gold bars! (1.8x reward)"},
		{Name: "dye_pack", RewardMultiplier: 0.7, Text: "A dye pack ruined part of the haul! (-30% reward)"},
		{Name: "power_outage", ChanceBonus: 0.25, Text: "A power outage killed the alarm grid! (+25% success chance)"},
		{Name: "biometric_lock", ChancePenalty: 0.2, Text: "They upgraded to biometric locks! (-20% success chance)"},
		{Name: "armored_truck", RewardMultiplier: 1.5, ChancePenalty: 0.15, Text: "An armored truck is mid-delivery! (-15% success chance, +50% reward)"},
		{Name: "nervous_driver", ChancePenalty: 0.1, Text: "Your getaway driver is losing their nerve! (-10% success chance)"},
		{Name: "abandoned_duffel", CreditsBonus: 500, Text: "You found a duffel bag from a previous job! (+500 credits)"},
		{Name: "bribed_teller", CreditsPenalty: 400, Text: "The teller demanded a bigger bribe! (-400 credits)"},
	},
}
