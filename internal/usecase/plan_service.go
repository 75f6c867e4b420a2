package usecase

import (
	"fmt"
	"math"

	"github.com/vitos/alpha_tracker/internal/domain"
)

// DefaultMaxDays is the planning deadline used when a request leaves it unset.
const DefaultMaxDays = 30

// PlanRequest is the input of the reporting surface.
type PlanRequest struct {
	PrincipalAmount    float64 `json:"principalAmount"`
	TargetLevel        int     `json:"targetLevel"`
	CurrentTotalAmount float64 `json:"currentTotalAmount"`
	MaxDays            int     `json:"maxDays"`
}

// PlanReport bundles everything the planner page shows for one request.
type PlanReport struct {
	TradingPlan       domain.TradingPlan       `json:"tradingPlan"`
	CurrentLevelInfo  domain.LevelStatus       `json:"currentLevelInfo"`
	OptimizedStrategy domain.OptimizedStrategy `json:"optimizedStrategy"`
	RecommendedLevels []int                    `json:"recommendedLevels"`
	LevelTable        []domain.TierEntry       `json:"levelTable"`
}

type UsageExample struct {
	Description string `json:"description"`
	Calculation string `json:"calculation"`
}

type Usage struct {
	Description string         `json:"description"`
	Formula     string         `json:"formula"`
	Examples    []UsageExample `json:"examples"`
}

// Reference is the static level table with worked examples.
type Reference struct {
	LevelTable []domain.TierEntry `json:"levelTable"`
	Usage      Usage              `json:"usage"`
}

// ValidationError is a rejected PlanRequest field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrInvalidInput
}

type PlanService struct {
	engine        *LevelEngine
	optimizer     *PlanOptimizer
	dailyTradeCap int
}

func NewPlanService(engine *LevelEngine, optimizer *PlanOptimizer, dailyTradeCap int) *PlanService {
	if dailyTradeCap <= 0 {
		dailyTradeCap = DefaultDailyTradeCap
	}
	return &PlanService{
		engine:        engine,
		optimizer:     optimizer,
		dailyTradeCap: dailyTradeCap,
	}
}

// Validate applies defaults to req and rejects out-of-range fields.
func (s *PlanService) Validate(req *PlanRequest) error {
	if !(req.PrincipalAmount > 0) || math.IsInf(req.PrincipalAmount, 0) {
		return &ValidationError{Field: "principalAmount", Message: "principalAmount must be a positive number"}
	}
	if req.TargetLevel < 1 || req.TargetLevel > domain.MaxLevel {
		return &ValidationError{
			Field:   "targetLevel",
			Message: fmt.Sprintf("targetLevel must be between 1 and %d", domain.MaxLevel),
		}
	}
	if !(req.CurrentTotalAmount >= 0) || math.IsInf(req.CurrentTotalAmount, 0) {
		return &ValidationError{Field: "currentTotalAmount", Message: "currentTotalAmount must not be negative"}
	}
	if req.MaxDays < 0 {
		return &ValidationError{Field: "maxDays", Message: "maxDays must be positive"}
	}
	if req.MaxDays == 0 {
		req.MaxDays = DefaultMaxDays
	}
	return nil
}

func (s *PlanService) Calculate(req PlanRequest) (*PlanReport, error) {
	if err := s.Validate(&req); err != nil {
		return nil, err
	}

	return &PlanReport{
		TradingPlan:       s.engine.TradingPlan(req.PrincipalAmount, req.TargetLevel, req.CurrentTotalAmount),
		CurrentLevelInfo:  s.engine.CurrentLevelInfo(req.CurrentTotalAmount),
		OptimizedStrategy: s.optimizer.Optimize(req.PrincipalAmount, req.TargetLevel, req.MaxDays, s.dailyTradeCap),
		RecommendedLevels: s.engine.RecommendedLevels(req.PrincipalAmount),
		LevelTable:        domain.Tiers(),
	}, nil
}

func (s *PlanService) Reference() Reference {
	examples := []struct {
		principal float64
		level     int
	}{
		{100, 10},
		{500, 12},
	}

	usage := Usage{
		Description: "Alpha points level table",
		Formula:     "level = floor(log2(cumulative buy volume)), capped at 20",
	}
	for _, ex := range examples {
		plan := s.engine.TradingPlan(ex.principal, ex.level, 0)
		usage.Examples = append(usage.Examples, UsageExample{
			Description: fmt.Sprintf("Principal %.0f USDT, target level %d", ex.principal, ex.level),
			Calculation: fmt.Sprintf("Needs %.0f USDT of volume, about %d trades", plan.RequiredAmount, plan.RequiredTrades),
		})
	}

	return Reference{LevelTable: domain.Tiers(), Usage: usage}
}
