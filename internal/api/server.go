// Package api serves world state over HTTP.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/seberin/aftermath/internal/diplomacy"
	"github.com/seberin/aftermath/internal/engine"
	"github.com/seberin/aftermath/internal/espionage"
	"github.com/seberin/aftermath/internal/nation"
	"github.com/seberin/aftermath/internal/persistence"
)

// Server serves the world state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Loop     *engine.Loop
	DB       *persistence.DB
	Port     int
	AdminKey string   // Bearer token for POST endpoints. Empty = POST disabled.
	Origins  []string // Extra allowed CORS origins beyond localhost dev servers.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// Action endpoints mutate the world; each gets its own budget scaled
	// to how disruptive it is. A strike spree should throttle long before
	// routine influence spending does.
	strikes := NewActionLimiter("strike", 6, time.Minute)
	missions := NewActionLimiter("mission", 20, time.Minute)
	spends := NewActionLimiter("influence", 30, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/nations", s.handleNations)
	mux.HandleFunc("/api/v1/nation/", s.handleNationDetail)
	mux.HandleFunc("/api/v1/fallout", s.handleFallout)
	mux.HandleFunc("/api/v1/market", s.handleMarket)
	mux.HandleFunc("/api/v1/territories", s.handleTerritories)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/warnings", s.handleWarnings)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/advance", s.adminOnly(s.handleAdvance))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))
	mux.HandleFunc("/api/v1/strike", s.adminOnly(strikes.Wrap(s.handleStrike)))
	mux.HandleFunc("/api/v1/mission", s.adminOnly(missions.Wrap(s.handleMission)))
	mux.HandleFunc("/api/v1/influence", s.adminOnly(spends.Wrap(s.handleInfluence)))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := s.corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range s.Origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no AFTERMATH_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	totalPop := 0.0
	totalWarheads := 0
	for _, n := range s.Sim.Nations {
		totalPop += n.Population
		for _, count := range n.Warheads {
			totalWarheads += count
		}
	}

	status := map[string]any{
		"name":               "Aftermath",
		"turn":               s.Sim.Turn,
		"speed":              s.Loop.Speed(),
		"running":            s.Loop.Running(),
		"nations":            len(s.Sim.Nations),
		"population_million": totalPop,
		"warheads":           totalWarheads,
		"fallout_zones":      len(s.Sim.Marks),
		"depletion_warnings": len(s.Sim.Warnings),
	}
	writeJSON(w, status)
}

func (s *Server) handleNations(w http.ResponseWriter, r *http.Request) {
	type nationSummary struct {
		ID         nation.ID `json:"id"`
		Name       string    `json:"name"`
		Leader     string    `json:"leader"`
		Population float64   `json:"population_million"`
		Missiles   int       `json:"missiles"`
		Defense    float64   `json:"defense"`
		DIP        float64   `json:"dip"`
		RepLevel   string    `json:"reputation_level,omitempty"`
		Severity   string    `json:"fallout_severity,omitempty"`
	}

	result := make([]nationSummary, 0, len(s.Sim.Nations))
	for _, n := range s.Sim.Nations {
		sum := nationSummary{
			ID:         n.ID,
			Name:       n.Name,
			Leader:     n.Leader,
			Population: n.Population,
			Missiles:   n.Missiles,
			Defense:    n.Defense,
			Severity:   string(s.Sim.Severity[n.ID]),
		}
		if n.Influence != nil {
			sum.DIP = n.Influence.Points
		}
		if n.Reputation != nil {
			sum.RepLevel = string(n.Reputation.Level)
		}
		result = append(result, sum)
	}
	writeJSON(w, result)
}

func (s *Server) handleNationDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 || parts[4] == "" {
		http.Error(w, "missing nation id", http.StatusBadRequest)
		return
	}

	n, ok := s.Sim.NationIndex[nation.ID(parts[4])]
	if !ok {
		http.Error(w, "nation not found", http.StatusNotFound)
		return
	}

	writeJSON(w, map[string]any{
		"nation":           n,
		"fallout_severity": s.Sim.Severity[n.ID],
	})
}

func (s *Server) handleFallout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"zones":    s.Sim.Marks,
		"severity": s.Sim.Severity,
	})
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"prices":   s.Sim.Market.Entries,
		"scarcity": s.Sim.Market.ScarcityReport(s.Sim.Resources),
	})
}

func (s *Server) handleTerritories(w http.ResponseWriter, r *http.Request) {
	type territoryEntry struct {
		ID         string    `json:"id"`
		Name       string    `json:"name"`
		Lat        float64   `json:"lat"`
		Lon        float64   `json:"lon"`
		Controller nation.ID `json:"controller,omitempty"`
		Deposits   int       `json:"deposits"`
	}

	result := make([]territoryEntry, 0, len(s.Sim.Territories))
	for _, t := range s.Sim.Territories {
		entry := territoryEntry{
			ID:         t.ID,
			Name:       t.Name,
			Lat:        t.Position.Lat,
			Lon:        t.Position.Lon,
			Controller: t.Controller,
		}
		if res, ok := s.Sim.Resources[t.ID]; ok {
			entry.Deposits = len(res.Deposits)
		}
		result = append(result, entry)
	}
	writeJSON(w, result)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events := s.Sim.Events

	// Optional category filter ("strike", "fallout", "espionage", ...).
	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	writeJSON(w, events[start:])
}

func (s *Server) handleWarnings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Warnings)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 100 {
			http.Error(w, "speed must be 0-100", http.StatusBadRequest)
			return
		}
		s.Loop.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}
	writeJSON(w, map[string]float64{"speed": s.Loop.Speed()})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	turns := 1
	if t := r.URL.Query().Get("turns"); t != "" {
		if n, err := strconv.Atoi(t); err == nil && n > 0 && n <= 100 {
			turns = n
		}
	}

	for i := 0; i < turns; i++ {
		s.Sim.AdvanceTurn()
	}
	writeJSON(w, map[string]int{"turn": s.Sim.Turn})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	if err := s.DB.SaveWorldState(s.Sim); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"turn":    s.Sim.Turn,
		"message": "snapshot saved",
	})
}

func (s *Server) handleStrike(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Attacker nation.ID `json:"attacker"`
		Defender nation.ID `json:"defender"`
		YieldMT  int       `json:"yield_mt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	report, err := s.Sim.LaunchStrike(req.Attacker, req.Defender, req.YieldMT)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, report)
}

func (s *Server) handleMission(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Type      espionage.MissionType `json:"type"`
		Operator  nation.ID             `json:"operator"`
		Target    nation.ID             `json:"target"`
		AgentName string                `json:"agent_name"`
		Skill     float64               `json:"skill"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	agent := espionage.NewAgent(req.AgentName, req.Operator, req.Skill)
	report, err := s.Sim.RunMission(req.Type, req.Operator, req.Target, agent)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, report)
}

func (s *Server) handleInfluence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Actor  nation.ID        `json:"actor"`
		Action diplomacy.Action `json:"action"`
		Target nation.ID        `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	cost, err := s.Sim.SpendInfluence(req.Actor, req.Action, req.Target)
	if err != nil {
		writeJSON(w, map[string]any{"success": false, "cost": cost, "error": err.Error()})
		return
	}
	writeJSON(w, map[string]any{"success": true, "cost": cost})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
