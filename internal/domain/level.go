package domain

// LevelStatus describes where a cumulative amount sits in the level table.
type LevelStatus struct {
	CurrentLevel       int      `json:"currentLevel"`
	CurrentAmount      float64  `json:"currentAmount"`
	NextLevel          *int     `json:"nextLevel,omitempty"`       // nil at MaxLevel
	NextLevelAmount    *float64 `json:"nextLevelAmount,omitempty"` // nil at MaxLevel
	ProgressPercentage float64  `json:"progressPercentage"`
}

// TradingPlan is the number of equal trades needed to reach TargetLevel.
// RequiredTrades is always 0 when CanAchieve is false.
type TradingPlan struct {
	TargetLevel     int      `json:"targetLevel"`
	RequiredAmount  float64  `json:"requiredAmount"`
	PrincipalAmount float64  `json:"principalAmount"`
	RequiredTrades  int      `json:"requiredTrades"`
	TradeAmount     float64  `json:"tradeAmount"`
	CanAchieve      bool     `json:"canAchieve"`
	Suggestions     []string `json:"suggestions"`
}

type StrategyKind string

const (
	StrategyStandard  StrategyKind = "standard"
	StrategyOptimized StrategyKind = "optimized"
)

// OptimizedStrategy is the deadline-aware plan chosen by the optimizer.
type OptimizedStrategy struct {
	Strategy      StrategyKind `json:"strategy"`
	DailyTrades   int          `json:"dailyTrades"`
	TradeAmount   float64      `json:"tradeAmount"`
	EstimatedDays int          `json:"estimatedDays"`
	Feasible      bool         `json:"feasible"`
}
