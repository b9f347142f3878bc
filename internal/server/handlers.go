package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rickgao/mock-auction/internal/auction"
	"github.com/rickgao/mock-auction/internal/model"
	"github.com/rickgao/mock-auction/internal/store"
	"github.com/rickgao/mock-auction/internal/version"
)

const maxBodyBytes = 1 << 20

// AddTeamRequest is the body of POST /api/teams.
type AddTeamRequest struct {
	Name   string `json:"name"`
	Budget int    `json:"budget"` // Lakhs
}

// SquadResponse adds crore figures to a squad summary.
type SquadResponse struct {
	auction.SquadSummary
	TotalSpentCrore float64 `json:"total_spent_crore"`
	RemainingCrore  float64 `json:"remaining_crore"`
}

// VersionResponse is the body of GET /version.
type VersionResponse struct {
	version.Info
	InstanceID string `json:"instance_id,omitempty"`
}

func decode(r *http.Request, w http.ResponseWriter, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %v: %w", err, errBadRequest)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := struct {
		Status     string         `json:"status"`
		Components map[string]any `json:"components"`
	}{
		Status:     "healthy",
		Components: make(map[string]any),
	}

	// Check store
	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["store"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["store"] = "connected"
		}
	}

	snap := s.engine.Snapshot()
	health.Components["auction"] = map[string]any{
		"teams":   len(snap.Teams),
		"players": len(snap.Players),
		"version": snap.Version,
	}

	if s.writer != nil {
		stats := s.writer.Stats()
		health.Components["writer"] = map[string]any{
			"flushes":      stats.Flushes,
			"errors":       stats.Errors,
			"coalesced":    stats.Coalesced,
			"last_version": stats.LastVersion,
			"pending":      s.writer.Pending(),
		}
		// Commits are in memory only until the writer catches up.
		if health.Status == "healthy" && stats.LastVersion < snap.Version && stats.Errors > 0 {
			health.Status = "degraded"
		}
	}

	if s.hub != nil {
		health.Components["notifications"] = map[string]any{
			"clients": s.hub.Clients(),
		}
	}

	status := http.StatusOK
	if health.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{
		Info:       version.Get(),
		InstanceID: s.instanceID,
	})
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Teams())
}

func (s *Server) handleAddTeam(w http.ResponseWriter, r *http.Request) {
	var req AddTeamRequest
	if err := decode(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	team, err := s.engine.AddTeam(req.Name, req.Budget)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

func (s *Server) handleSquad(w http.ResponseWriter, r *http.Request) {
	sum, err := s.engine.Squad(r.PathValue("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SquadResponse{
		SquadSummary:    sum,
		TotalSpentCrore: model.Crore(sum.TotalSpent),
		RemainingCrore:  model.Crore(sum.Remaining),
	})
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	filter := auction.AllPlayers
	switch status := r.URL.Query().Get("status"); status {
	case "":
	case "sold":
		filter = auction.SoldPlayers
	case "unsold":
		filter = auction.UnsoldPlayers
	default:
		s.writeError(w, r, fmt.Errorf("status must be sold or unsold, got %q: %w", status, errBadRequest))
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Players(filter))
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	p, err := s.engine.Player(r.PathValue("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAddPlayer(w http.ResponseWriter, r *http.Request) {
	var in auction.PlayerInput
	if err := decode(r, w, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	receipt, err := s.engine.AddPlayer(in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (s *Server) handleModifyPlayer(w http.ResponseWriter, r *http.Request) {
	var in auction.PlayerInput
	if err := decode(r, w, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	receipt, err := s.engine.ModifyPlayer(in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.engine.DeletePlayer(r.PathValue("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Standings())
}

func (s *Server) handleTicker(w http.ResponseWriter, r *http.Request) {
	items := s.engine.Ticker()
	if items == nil {
		items = []auction.TickerItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	s.engine.DeleteAllData()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportTeams(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	writeCSVHeaders(w, store.TeamsFile)
	if err := store.WriteTeamsCSV(w, snap.Teams); err != nil {
		s.logger.Error("export teams failed", "error", err)
	}
}

func (s *Server) handleExportPlayers(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	writeCSVHeaders(w, store.PlayersFile)
	if err := store.WritePlayersCSV(w, snap.Players); err != nil {
		s.logger.Error("export players failed", "error", err)
	}
}

func writeCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
