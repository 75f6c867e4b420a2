package usecase

import (
	"math"

	"github.com/vitos/alpha_tracker/internal/domain"
)

// DefaultLeverageFactor is the largest per-trade amount assumed reachable,
// as a multiple of the principal.
const DefaultLeverageFactor = 2.0

// PlanOptimizer picks between trading at the principal size and trading
// larger to fit a deadline.
type PlanOptimizer struct {
	engine         *LevelEngine
	leverageFactor float64
}

func NewPlanOptimizer(engine *LevelEngine, leverageFactor float64) *PlanOptimizer {
	if leverageFactor <= 0 {
		leverageFactor = DefaultLeverageFactor
	}
	return &PlanOptimizer{
		engine:         engine,
		leverageFactor: leverageFactor,
	}
}

// Optimize plans targetLevel from zero within maxDays at no more than
// dailyTradeCap trades per day. A saturated trade count always exceeds the
// deadline and takes the optimized branch.
func (o *PlanOptimizer) Optimize(principal float64, targetLevel, maxDays, dailyTradeCap int) domain.OptimizedStrategy {
	base := o.engine.TradingPlan(principal, targetLevel, 0)
	if !base.CanAchieve || maxDays <= 0 || dailyTradeCap <= 0 {
		return domain.OptimizedStrategy{Strategy: domain.StrategyStandard}
	}

	maxTrades := maxDays * dailyTradeCap
	if base.RequiredTrades <= maxTrades {
		return domain.OptimizedStrategy{
			Strategy:      domain.StrategyStandard,
			DailyTrades:   ceilDiv(base.RequiredTrades, maxDays),
			TradeAmount:   principal,
			EstimatedDays: ceilDiv(base.RequiredTrades, dailyTradeCap),
			Feasible:      true,
		}
	}

	tradeAmount := math.Ceil(base.RequiredAmount / float64(maxTrades))
	return domain.OptimizedStrategy{
		Strategy:      domain.StrategyOptimized,
		DailyTrades:   dailyTradeCap,
		TradeAmount:   tradeAmount,
		EstimatedDays: maxDays,
		Feasible:      tradeAmount <= principal*o.leverageFactor,
	}
}
