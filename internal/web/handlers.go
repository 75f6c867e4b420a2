package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/vitos/alpha_tracker/internal/domain"
	"github.com/vitos/alpha_tracker/internal/usecase"
	"go.uber.org/zap"
)

const (
	defaultStatsDays   = 30
	defaultTradesLimit = 50
	maxTradesLimit     = 500
)

const missingKeysMessage = "Binance API keys are not configured (BINANCE_API_KEY, BINANCE_SECRET_KEY)"

func (s *Server) handleCalculatePlan(w http.ResponseWriter, r *http.Request) {
	var req usecase.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}

	report, err := s.planner.Calculate(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, report)
}

func (s *Server) handlePlanReference(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, s.planner.Reference())
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, domain.Tiers())
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.syncer == nil {
		s.writeFailure(w, http.StatusBadRequest, missingKeysMessage)
		return
	}
	result, err := s.syncer.Sync(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Sync completed", Data: result})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.syncer == nil {
		s.writeFailure(w, http.StatusBadRequest, missingKeysMessage)
		return
	}
	days, ok := s.intParam(w, r, "days", defaultStatsDays)
	if !ok {
		return
	}
	stats, err := s.syncer.Stats(r.Context(), days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, stats)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	limit, ok := s.intParam(w, r, "limit", defaultTradesLimit)
	if !ok {
		return
	}
	if limit <= 0 || limit > maxTradesLimit {
		s.writeFailure(w, http.StatusBadRequest, "limit must be between 1 and 500")
		return
	}
	trades, err := s.repo.ListTrades(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list trades", zap.Error(err))
		s.writeFailure(w, http.StatusInternalServerError, "Failed to list trades")
		return
	}
	if trades == nil {
		trades = []*domain.ActivityRecord{}
	}
	s.writeData(w, trades)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":         "ok",
		"uptimeSeconds":  int64(time.Since(s.startedAt).Seconds()),
		"syncConfigured": s.syncer != nil,
		"feedClients":    s.hub.ClientCount(),
	}
	if s.nextSync != nil {
		if next := s.nextSync(); !next.IsZero() {
			status["nextSync"] = next.UTC()
		}
	}
	if latest, err := s.repo.LatestSummary(r.Context()); err != nil {
		s.logger.Warn("Failed to read latest summary", zap.Error(err))
	} else if latest != nil {
		status["latestSummary"] = latest
	}
	s.writeData(w, status)
}

// intParam reads an optional integer query parameter, writing a 400 on
// garbage.
func (s *Server) intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		s.writeFailure(w, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return v, true
}
