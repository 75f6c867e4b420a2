package usecase

import (
	"fmt"
	"math"

	"github.com/vitos/alpha_tracker/internal/domain"
)

const (
	// DefaultDailyTradeCap is the assumed number of qualifying trades per day.
	DefaultDailyTradeCap = 2
	// ReportDaysThreshold is the day estimate above which a plan mentions it.
	ReportDaysThreshold = 30

	heavyTradeCount      = 100
	moderateTradeCount   = 50
	minSensiblePrincipal = 1.0

	// Largest trade count a float64 still holds exactly. Larger counts are
	// reported saturated at this value.
	maxPlannableTrades = min(1<<53, math.MaxInt)
)

// LevelEngine holds the level arithmetic. It has no state and is safe for
// concurrent use.
type LevelEngine struct{}

func NewLevelEngine() *LevelEngine {
	return &LevelEngine{}
}

// CurrentLevelInfo reports the level reached by amount and the linear
// progress from the current tier floor to the next one.
func (e *LevelEngine) CurrentLevelInfo(amount float64) domain.LevelStatus {
	if !(amount > 0) {
		amount = 0
	}
	level := domain.LevelForAmount(amount)
	status := domain.LevelStatus{
		CurrentLevel:  level,
		CurrentAmount: amount,
	}

	if level >= domain.MaxLevel {
		status.ProgressPercentage = 100
		return status
	}

	// Level 0 has no table entry; its floor is zero.
	var floor float64
	if level > 0 {
		floor, _ = domain.AmountForLevel(level)
	}
	next := level + 1
	nextAmount, _ := domain.AmountForLevel(next)
	status.NextLevel = &next
	status.NextLevelAmount = &nextAmount
	status.ProgressPercentage = clamp((amount-floor)/(nextAmount-floor)*100, 0, 100)
	return status
}

// TradingPlan computes how many trades of principal size are needed to
// move currentAmount up to targetLevel. Invalid input never errors; it
// yields a plan with CanAchieve=false and an explanatory suggestion.
func (e *LevelEngine) TradingPlan(principal float64, targetLevel int, currentAmount float64) domain.TradingPlan {
	required, levelErr := domain.AmountForLevel(targetLevel)
	plan := domain.TradingPlan{
		TargetLevel:     targetLevel,
		RequiredAmount:  required,
		PrincipalAmount: principal,
		Suggestions:     []string{},
	}

	if !(principal > 0) || math.IsInf(principal, 0) {
		plan.Suggestions = append(plan.Suggestions, "Enter a valid principal amount")
		return plan
	}
	if levelErr != nil {
		plan.Suggestions = append(plan.Suggestions,
			fmt.Sprintf("Target level must be between 1 and %d", domain.MaxLevel))
		return plan
	}

	if !(currentAmount > 0) {
		currentAmount = 0
	}
	if currentAmount >= required {
		plan.CanAchieve = true
		plan.Suggestions = append(plan.Suggestions, "Target level already reached")
		return plan
	}

	remaining := math.Max(0, required-currentAmount)
	trades := math.Ceil(remaining / principal)
	plan.CanAchieve = true
	plan.TradeAmount = math.Min(principal, remaining)
	if trades > maxPlannableTrades {
		plan.RequiredTrades = maxPlannableTrades
		plan.Suggestions = append(plan.Suggestions,
			fmt.Sprintf("More than %d trades are needed: increase the trade size", maxPlannableTrades))
		return plan
	}

	plan.RequiredTrades = int(trades)
	plan.Suggestions = planSuggestions(principal, targetLevel, plan.RequiredTrades)
	return plan
}

func planSuggestions(principal float64, targetLevel, trades int) []string {
	var out []string
	if principal < minSensiblePrincipal {
		out = append(out, "A principal of at least 1 USDT per trade is recommended")
	}

	if trades == 1 {
		out = append(out, fmt.Sprintf("A single trade reaches level %d", targetLevel))
	} else {
		out = append(out, fmt.Sprintf("%d trades are needed to reach level %d", trades, targetLevel))
	}

	switch {
	case trades > heavyTradeCount:
		out = append(out, "High trade count: reduce it by increasing the size of each trade")
	case trades > moderateTradeCount:
		out = append(out, "Trade count is on the high side: consider a larger principal")
	}

	if days := ceilDiv(trades, DefaultDailyTradeCap); days > ReportDaysThreshold {
		out = append(out, fmt.Sprintf("Estimated %d days to complete at %d trades per day", days, DefaultDailyTradeCap))
	}
	return out
}

// MultiLevelPlan plans every level in targetLevels from the same start.
func (e *LevelEngine) MultiLevelPlan(principal float64, targetLevels []int, currentAmount float64) []domain.TradingPlan {
	plans := make([]domain.TradingPlan, 0, len(targetLevels))
	for _, l := range targetLevels {
		plans = append(plans, e.TradingPlan(principal, l, currentAmount))
	}
	return plans
}

// RecommendedLevels buckets a principal into a short list of sensible targets.
func (e *LevelEngine) RecommendedLevels(principal float64) []int {
	switch {
	case principal >= 1000:
		return []int{10, 12, 15}
	case principal >= 100:
		return []int{8, 10, 12}
	case principal >= 10:
		return []int{5, 7, 8}
	default:
		return []int{3, 4, 5}
	}
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
