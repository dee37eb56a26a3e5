// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/AccelByte/extend-prize-engine/pkg/award"
	"github.com/AccelByte/extend-prize-engine/pkg/common"
	"github.com/AccelByte/extend-prize-engine/pkg/metrics"
	"github.com/AccelByte/extend-prize-engine/pkg/prize"
	"github.com/AccelByte/extend-prize-engine/pkg/store"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Engine is the part of prize.Engine the HTTP API needs.
type Engine interface {
	DeterminePrize(ctx context.Context, session prize.UserSession) (prize.PrizeResult, error)
	UpdateConfig(ctx context.Context, patch prize.ConfigPatch) error
	GetEngineStats(ctx context.Context) (prize.EngineStats, error)
	History(ctx context.Context) ([]prize.WinHistoryEntry, error)
	Config() prize.EngineConfig
	LiveConfig(ctx context.Context) (prize.EngineConfig, error)
}

// Options carries the optional collaborators of a Prize handler.
type Options struct {
	Executor        *award.Executor
	OnWin           []string
	RollbackOnError bool
	Health          *store.HealthChecker
	Metrics         *metrics.Metrics
}

// Prize serves the prize engine over HTTP.
type Prize struct {
	engine Engine
	opts   Options
}

// NewPrize creates a new prize handler.
func NewPrize(engine Engine, opts Options) *Prize {
	return &Prize{engine: engine, opts: opts}
}

// Routes mounts the API on r.
func (h *Prize) Routes(r chi.Router) {
	r.Get("/healthz", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/plays", h.Play)
		r.Get("/stats", h.Stats)
		r.Get("/history", h.History)
		r.Get("/config", h.GetConfig)
		r.Patch("/config", h.PatchConfig)
	})
}

// AwardStatus is the per-award outcome reported with a win.
type AwardStatus struct {
	AwardID    string `json:"awardId"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	RolledBack bool   `json:"rolledBack,omitempty"`
}

// PlayResponse is the body of POST /v1/plays.
type PlayResponse struct {
	prize.PrizeResult
	Awards []AwardStatus `json:"awards"`
}

// Play runs one prize attempt for the posted session.
func (h *Prize) Play(w http.ResponseWriter, r *http.Request) {
	scope := common.NewScope(r.Context(), "Prize.Play")
	defer scope.Finish()

	var session prize.UserSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a valid session")
		return
	}
	if session.IPAddress == "" {
		session.IPAddress = remoteIP(r)
	}
	scope.SetAttributes("session_id", session.SessionID)

	start := time.Now()
	result, err := h.engine.DeterminePrize(scope.Ctx, session)
	h.opts.Metrics.ObserveDecision(h.engine.Config().CampaignID, result, err, time.Since(start))
	if err != nil {
		scope.TraceError(err)
		scope.Log.Errorf("prize decision failed for session %s: %v", session.SessionID, err)
		writeEngineError(w, err)
		return
	}

	resp := PlayResponse{PrizeResult: result, Awards: []AwardStatus{}}
	if result.HasWon {
		scope.SetAttributes("prize_id", result.Prize.ID)
		resp.Awards = h.runAwards(scope, &result, session)
	}

	writeJSON(w, http.StatusOK, resp)
}

// runAwards delivers the win. Award failures are reported, never fatal: the
// prize has already been claimed.
func (h *Prize) runAwards(scope *common.Scope, result *prize.PrizeResult, session prize.UserSession) []AwardStatus {
	statuses := []AwardStatus{}
	if h.opts.Executor == nil || len(h.opts.OnWin) == 0 {
		return statuses
	}

	event, err := award.NewWinEvent(result, session)
	if err != nil {
		scope.Log.Errorf("cannot build win event: %v", err)
		return statuses
	}

	results, err := h.opts.Executor.ExecuteMultiple(scope.Ctx, h.opts.OnWin, event, h.opts.RollbackOnError)
	if err != nil {
		scope.Log.WithField("draw_id", event.DrawID).Warnf("award delivery incomplete: %v", err)
	}

	for _, res := range results {
		st := AwardStatus{AwardID: res.AwardID, Success: res.Success}
		if res.Error != nil {
			st.Error = res.Error.Error()
		}
		if rb, _ := res.Metadata["rolled_back"].(bool); rb {
			st.RolledBack = true
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// Stats returns the live engine statistics.
func (h *Prize) Stats(w http.ResponseWriter, r *http.Request) {
	scope := common.NewScope(r.Context(), "Prize.Stats")
	defer scope.Finish()

	stats, err := h.engine.GetEngineStats(scope.Ctx)
	if err != nil {
		scope.TraceError(err)
		writeEngineError(w, err)
		return
	}
	h.opts.Metrics.ObserveInventory(stats)

	writeJSON(w, http.StatusOK, stats)
}

// History returns the bounded win history, oldest first.
func (h *Prize) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.engine.History(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if entries == nil {
		entries = []prize.WinHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetConfig returns the active configuration with live winner counts.
func (h *Prize) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.engine.LiveConfig(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// PatchConfig applies a partial configuration update.
func (h *Prize) PatchConfig(w http.ResponseWriter, r *http.Request) {
	scope := common.NewScope(r.Context(), "Prize.PatchConfig")
	defer scope.Finish()

	var patch prize.ConfigPatch
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a valid config patch")
		return
	}

	if err := h.engine.UpdateConfig(scope.Ctx, patch); err != nil {
		scope.TraceError(err)
		scope.Log.Warnf("config update rejected: %v", err)
		writeEngineError(w, err)
		return
	}

	cfg, err := h.engine.LiveConfig(scope.Ctx)
	if err != nil {
		scope.TraceError(err)
		writeEngineError(w, err)
		return
	}
	scope.Log.Infof("config updated for campaign %s", cfg.CampaignID)
	writeJSON(w, http.StatusOK, cfg)
}

// Health reports store reachability.
func (h *Prize) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.opts.Health.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, prize.ErrInvalidConfig), errors.Is(err, prize.ErrInvalidSession):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, prize.ErrStoreUnavailable), errors.Is(err, prize.ErrCatalogUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("failed to write response: %v", err)
	}
}
