// Package jail holds the jail-domain value types: bail quotes and
// jailbreak scenarios. The sentence itself lives on the criminal
// record; the jailing service drives the state machine.
package jail

import (
	"math"
	"time"
)

// BailQuote prices an early release at quote time. Cost is
// ceil(multiplier x remaining minutes) and the quote goes stale as the
// sentence keeps running down.
type BailQuote struct {
	Cost       int64         `json:"cost"`
	Remaining  time.Duration `json:"remaining"`
	Multiplier float64       `json:"multiplier"`
}

// QuoteBail computes the bail cost for a remaining sentence.
func QuoteBail(remaining time.Duration, multiplier float64) BailQuote {
	minutes := remaining.Minutes()
	cost := int64(math.Ceil(multiplier * minutes))
	if cost < 0 {
		cost = 0
	}
	return BailQuote{
		Cost:       cost,
		Remaining:  remaining,
		Multiplier: multiplier,
	}
}

// BreakEvent adjusts a jailbreak's escape chance or moves currency.
type BreakEvent struct {
	Text            string  `json:"text"`
	ChanceBonus     float64 `json:"chance_bonus,omitempty"`
	ChancePenalty   float64 `json:"chance_penalty,omitempty"`
	CurrencyBonus   int64   `json:"currency_bonus,omitempty"`
	CurrencyPenalty int64   `json:"currency_penalty,omitempty"`
}

// BreakScenario is one jailbreak storyline with its own base chance and
// event pool.
type BreakScenario struct {
	Name        string       `json:"name"`
	AttemptText string       `json:"attempt_text"`
	SuccessText string       `json:"success_text"`
	FailText    string       `json:"fail_text"`
	BaseChance  float64      `json:"base_chance"`
	Events      []BreakEvent `json:"events"`
}

// BreakScenarios returns the builtin jailbreak scenario pool.
func BreakScenarios() []BreakScenario {
	out := make([]BreakScenario, len(breakScenarios))
	copy(out, breakScenarios)
	return out
}

var breakScenarios = []BreakScenario{
	{
		Name:        "Tunnel Escape",
		AttemptText: "{user} begins digging a tunnel under their cell...",
		SuccessText: "After days of digging, {user} finally breaks through to freedom! The guards are still scratching their heads.",
		FailText:    "The tunnel collapsed! Guards found {user} covered in dirt and moved them to a cell with a concrete floor.",
		BaseChance:  0.35,
		Events: []BreakEvent{
			{Text: "You found some old tools left by another prisoner! (+15% success chance)", ChanceBonus: 0.15},
			{Text: "The soil is unusually soft here! (+10% success chance)", ChanceBonus: 0.10},
			{Text: "You found a small pouch of credits!", CurrencyBonus: 200},
			{Text: "You hit solid rock! (-15% success chance)", ChancePenalty: 0.15},
			{Text: "A guard patrol is coming! (-10% success chance)", ChancePenalty: 0.10},
			{Text: "Your shovel broke and you had to buy a new one.", CurrencyPenalty: 150},
		},
	},
	{
		Name:        "Prison Riot",
		AttemptText: "{user} starts a prison riot as a distraction...",
		SuccessText: "In the chaos of the riot, {user} slips away unnoticed! Freedom at last!",
		FailText:    "The riot was quickly contained. {user} was identified as the instigator and sent to solitary.",
		BaseChance:  0.40,
		Events: []BreakEvent{
			{Text: "Other prisoners join your cause! (+20% success chance)", ChanceBonus: 0.20},
			{Text: "You found a guard's keycard! (+15% success chance)", ChanceBonus: 0.15},
			{Text: "You looted the commissary during the chaos!", CurrencyBonus: 300},
			{Text: "The guards were prepared! (-20% success chance)", ChancePenalty: 0.20},
			{Text: "Security cameras caught your plan! (-15% success chance)", ChancePenalty: 0.15},
			{Text: "You had to bribe another prisoner to keep quiet.", CurrencyPenalty: 250},
		},
	},
	{
		Name:        "Guard Disguise",
		AttemptText: "{user} puts on a stolen guard uniform...",
		SuccessText: "Nobody questioned {user} as they walked right out the front door! The perfect disguise!",
		FailText:    "The uniform was from last season's collection. {user} was spotted immediately by the fashion-conscious guards.",
		BaseChance:  0.45,
		Events: []BreakEvent{
			{Text: "Shift change creates confusion! (+15% success chance)", ChanceBonus: 0.15},
			{Text: "You memorized the guard patterns! (+10% success chance)", ChanceBonus: 0.10},
			{Text: "You found credits in the uniform pocket!", CurrencyBonus: 250},
			{Text: "Your shoes don't match the uniform! (-10% success chance)", ChancePenalty: 0.10},
			{Text: "A guard recognizes you! (-15% success chance)", ChancePenalty: 0.15},
			{Text: "You had to pay another inmate for the uniform.", CurrencyPenalty: 200},
		},
	},
	{
		Name:        "Food Cart Escape",
		AttemptText: "{user} attempts to hide in the kitchen's food delivery cart...",
		SuccessText: "Buried under a mountain of mystery meat, {user} was wheeled right out to the delivery truck. The meat was terrible, but freedom tastes sweet!",
		FailText:    "Return to sender! {user} forgot to put enough stamps on themselves. The postal service has strict policies about shipping prisoners.",
		BaseChance:  0.30,
		Events: []BreakEvent{
			{Text: "It's holiday rush season! (+20% success chance)", ChanceBonus: 0.20},
			{Text: "You found a perfect-sized box! (+10% success chance)", ChanceBonus: 0.10},
			{Text: "You discovered undelivered money orders!", CurrencyBonus: 275},
			{Text: "Package inspection in progress! (-20% success chance)", ChancePenalty: 0.20},
			{Text: "The box is too heavy! (-15% success chance)", ChancePenalty: 0.15},
			{Text: "Had to pay for express shipping.", CurrencyPenalty: 225},
		},
	},
	{
		Name:        "Laundry Escape",
		AttemptText: "{user} tries to sneak out with the laundry truck...",
		SuccessText: "Folded between fresh sheets, {user} enjoyed a comfortable ride to freedom! The prison's 1-star laundry service just lost its best customer.",
		FailText:    "{user} was found when they couldn't hold in a sneeze. Turns out hiding in old pepper wasn't the best idea.",
		BaseChance:  0.35,
		Events: []BreakEvent{
			{Text: "The laundry is extra fluffy today! (+15% success chance)", ChanceBonus: 0.15},
			{Text: "It's extra stinky today - guards won't look! (+10% success chance)", ChanceBonus: 0.10},
			{Text: "You found valuables in the trash!", CurrencyBonus: 225},
			{Text: "Guard dog inspection day! (-15% success chance)", ChancePenalty: 0.15},
			{Text: "The dumpster has holes in it! (-10% success chance)", ChancePenalty: 0.10},
			{Text: "Had to buy air fresheners.", CurrencyPenalty: 175},
		},
	},
}
