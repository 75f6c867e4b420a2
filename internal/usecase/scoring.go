package usecase

import (
	"fmt"

	"github.com/vitos/alpha_tracker/internal/domain"
)

const (
	ScoringLinear  = "linear"
	ScoringLogTier = "log_tier"

	// DefaultPointsPerUnit is the linear rule's multiplier on buy volume.
	DefaultPointsPerUnit = 2.0
)

// LinearScoring awards PointsPerUnit points per unit of buy volume.
type LinearScoring struct {
	PointsPerUnit float64
}

func (LinearScoring) Name() string { return ScoringLinear }

func (s LinearScoring) Points(qty float64) float64 {
	if qty <= 0 {
		return 0
	}
	return qty * s.PointsPerUnit
}

// LogTierScoring awards the level the volume would reach on the tier table.
type LogTierScoring struct{}

func (LogTierScoring) Name() string { return ScoringLogTier }

func (LogTierScoring) Points(qty float64) float64 {
	return float64(domain.LevelForAmount(qty))
}

// NewScoringStrategy resolves a configured scoring rule by name. There is
// no default: an empty name is an error.
func NewScoringStrategy(name string, pointsPerUnit float64) (domain.ScoringStrategy, error) {
	switch name {
	case ScoringLinear:
		if pointsPerUnit <= 0 {
			pointsPerUnit = DefaultPointsPerUnit
		}
		return LinearScoring{PointsPerUnit: pointsPerUnit}, nil
	case ScoringLogTier:
		return LogTierScoring{}, nil
	case "":
		return nil, fmt.Errorf("%w: scoring strategy must be set (%s or %s)", domain.ErrInvalidInput, ScoringLinear, ScoringLogTier)
	default:
		return nil, fmt.Errorf("%w: unknown scoring strategy %q", domain.ErrInvalidInput, name)
	}
}
