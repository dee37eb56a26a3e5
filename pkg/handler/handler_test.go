// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AccelByte/extend-prize-engine/pkg/award"
	awardBuiltin "github.com/AccelByte/extend-prize-engine/pkg/award/builtin"
	"github.com/AccelByte/extend-prize-engine/pkg/catalog"
	"github.com/AccelByte/extend-prize-engine/pkg/handler"
	"github.com/AccelByte/extend-prize-engine/pkg/metrics"
	"github.com/AccelByte/extend-prize-engine/pkg/prize"
	"github.com/AccelByte/extend-prize-engine/pkg/service/mock"
	"github.com/AccelByte/extend-prize-engine/pkg/store"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

type testServer struct {
	router  http.Handler
	engine  *prize.Engine
	granter *mock.EntitlementGranter
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T, maxWinners int, pinger store.Pinger) *testServer {
	t.Helper()
	ctx := context.Background()

	cfg := prize.EngineConfig{
		CampaignID:    "summer",
		GlobalWinRate: 1,
		FairnessMode:  prize.FairnessRandom,
		Prizes: []prize.PrizeDistribution{
			{PrizeID: "gold", Probability: 1, MaxWinners: maxWinners},
		},
	}
	cat := catalog.NewStaticCatalog(prize.Prize{
		ID:     "gold",
		Name:   "Gold Coin",
		Value:  decimal.RequireFromString("25"),
		ItemID: "item-gold",
	})

	engine, err := prize.NewEngine(ctx, cfg, prize.Dependencies{
		Store:   prize.NewMemoryStore(),
		Catalog: cat,
		Random:  prize.NewRandomSource(7),
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	granter := &mock.EntitlementGranter{}
	awardBuiltin.RegisterAwards(&awardBuiltin.Dependencies{EntitlementGranter: granter})
	registry := award.NewRegistry()
	if err := award.RegisterAwards(registry, []award.AwardConfig{
		{ID: "grant-prize", Type: awardBuiltin.GrantItemType, Enabled: true},
	}); err != nil {
		t.Fatalf("RegisterAwards failed: %v", err)
	}

	m := metrics.New()
	h := handler.NewPrize(engine, handler.Options{
		Executor: award.NewExecutor(registry, m),
		OnWin:    []string{"grant-prize"},
		Health:   store.NewHealthChecker(pinger),
		Metrics:  m,
	})

	r := chi.NewRouter()
	h.Routes(r)

	return &testServer{router: r, engine: engine, granter: granter, metrics: m}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "203.0.113.9:51234"
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
}

func TestPlay_WinRunsAwards(t *testing.T) {
	srv := newTestServer(t, 1, nil)

	rec := srv.do(t, http.MethodPost, "/v1/plays", prize.UserSession{SessionID: "s-1", UserID: "u-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp handler.PlayResponse
	decode(t, rec, &resp)
	if !resp.HasWon || resp.Prize == nil || resp.Prize.ID != "gold" {
		t.Fatalf("expected a gold win, got %+v", resp.PrizeResult)
	}
	if len(resp.Awards) != 1 || !resp.Awards[0].Success || resp.Awards[0].AwardID != "grant-prize" {
		t.Errorf("expected one successful award, got %+v", resp.Awards)
	}
	if srv.granter.CallCount() != 1 || srv.granter.Calls[0].ItemID != "item-gold" {
		t.Errorf("expected item-gold to be granted once, got %+v", srv.granter.Calls)
	}

	if got := testutil.ToFloat64(srv.metrics.DecisionsTotal.WithLabelValues("summer", metrics.OutcomeWin)); got != 1 {
		t.Errorf("expected one win to be counted, got %v", got)
	}

	// Inventory is gone for the next session.
	rec = srv.do(t, http.MethodPost, "/v1/plays", prize.UserSession{SessionID: "s-2", UserID: "u-2"})
	var second handler.PlayResponse
	decode(t, rec, &second)
	if second.HasWon || second.Reason != prize.ReasonNoPrizes {
		t.Errorf("expected no prizes left, got %+v", second.PrizeResult)
	}
	if len(second.Awards) != 0 {
		t.Errorf("expected no awards for a loss, got %+v", second.Awards)
	}
}

func TestPlay_AwardFailureKeepsWin(t *testing.T) {
	srv := newTestServer(t, 5, nil)
	srv.granter.Error = errors.New("platform unavailable")

	rec := srv.do(t, http.MethodPost, "/v1/plays", prize.UserSession{SessionID: "s-1", UserID: "u-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp handler.PlayResponse
	decode(t, rec, &resp)
	if !resp.HasWon {
		t.Fatal("expected the win to stand")
	}
	if len(resp.Awards) != 1 || resp.Awards[0].Success || resp.Awards[0].Error == "" {
		t.Errorf("expected a failed award to be reported, got %+v", resp.Awards)
	}
	if got := testutil.ToFloat64(srv.metrics.AwardActions.WithLabelValues("grant-prize", award.StatusFailed)); got != 1 {
		t.Errorf("expected failed award to be counted, got %v", got)
	}
}

// recordingEngine captures the session handed to DeterminePrize.
type recordingEngine struct {
	handler.Engine
	seen prize.UserSession
	err  error
}

func (e *recordingEngine) DeterminePrize(ctx context.Context, session prize.UserSession) (prize.PrizeResult, error) {
	e.seen = session
	return prize.PrizeResult{}, e.err
}

func (e *recordingEngine) Config() prize.EngineConfig {
	return prize.EngineConfig{CampaignID: "fake"}
}

func TestPlay_FillsIPFromRemoteAddr(t *testing.T) {
	engine := &recordingEngine{}
	r := chi.NewRouter()
	handler.NewPrize(engine, handler.Options{}).Routes(r)

	play := func(session prize.UserSession) int {
		body, _ := json.Marshal(session)
		req := httptest.NewRequest(http.MethodPost, "/v1/plays", bytes.NewReader(body))
		req.RemoteAddr = "203.0.113.9:51234"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := play(prize.UserSession{SessionID: "s-1"}); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if engine.seen.IPAddress != "203.0.113.9" {
		t.Errorf("expected remote IP to be filled in, got %q", engine.seen.IPAddress)
	}

	play(prize.UserSession{SessionID: "s-2", IPAddress: "198.51.100.1"})
	if engine.seen.IPAddress != "198.51.100.1" {
		t.Errorf("expected supplied IP to be kept, got %q", engine.seen.IPAddress)
	}
}

func TestPlay_InfrastructureErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"store", fmt.Errorf("%w: redis down", prize.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{"catalog", fmt.Errorf("%w: sqlite locked", prize.ErrCatalogUnavailable), http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			handler.NewPrize(&recordingEngine{err: tt.err}, handler.Options{}).Routes(r)

			req := httptest.NewRequest(http.MethodPost, "/v1/plays", bytes.NewBufferString(`{"sessionId":"s-1"}`))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestPlay_BadRequests(t *testing.T) {
	srv := newTestServer(t, 5, nil)

	if rec := srv.do(t, http.MethodPost, "/v1/plays", "{not json"); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodPost, "/v1/plays", prize.UserSession{}); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing session id, got %d", rec.Code)
	}
}

func TestStats(t *testing.T) {
	srv := newTestServer(t, 3, nil)
	srv.do(t, http.MethodPost, "/v1/plays", prize.UserSession{SessionID: "s-1", UserID: "u-1"})

	rec := srv.do(t, http.MethodGet, "/v1/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var stats prize.EngineStats
	decode(t, rec, &stats)
	if stats.CampaignID != "summer" || stats.TotalWins != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if len(stats.PrizeInventory) != 1 || stats.PrizeInventory[0].Remaining != 2 {
		t.Errorf("expected 2 gold remaining, got %+v", stats.PrizeInventory)
	}
	if got := testutil.ToFloat64(srv.metrics.PrizeRemaining.WithLabelValues("summer", "gold")); got != 2 {
		t.Errorf("expected remaining gauge 2, got %v", got)
	}
}

func TestHistory(t *testing.T) {
	srv := newTestServer(t, 3, nil)

	rec := srv.do(t, http.MethodGet, "/v1/history", nil)
	var empty []prize.WinHistoryEntry
	decode(t, rec, &empty)
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected an empty JSON array, got %v", empty)
	}

	srv.do(t, http.MethodPost, "/v1/plays", prize.UserSession{SessionID: "s-1", UserID: "u-1"})
	rec = srv.do(t, http.MethodGet, "/v1/history", nil)
	var entries []prize.WinHistoryEntry
	decode(t, rec, &entries)
	if len(entries) != 1 || entries[0].PrizeID != "gold" || entries[0].UserID != "u-1" {
		t.Errorf("unexpected history: %+v", entries)
	}
}

func TestPatchConfig(t *testing.T) {
	srv := newTestServer(t, 3, nil)

	rate := 0.5
	rec := srv.do(t, http.MethodPatch, "/v1/config", prize.ConfigPatch{GlobalWinRate: &rate})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var cfg prize.EngineConfig
	decode(t, rec, &cfg)
	if cfg.GlobalWinRate != 0.5 {
		t.Errorf("expected win rate 0.5, got %v", cfg.GlobalWinRate)
	}

	bad := 1.5
	rec = srv.do(t, http.MethodPatch, "/v1/config", prize.ConfigPatch{GlobalWinRate: &bad})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid patch, got %d", rec.Code)
	}
	if srv.engine.Config().GlobalWinRate != 0.5 {
		t.Error("expected rejected patch to leave config unchanged")
	}

	rec = srv.do(t, http.MethodPatch, "/v1/config", `{"globalWinRat": 0.1}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown field, got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodGet, "/v1/config", nil)
	decode(t, rec, &cfg)
	if cfg.GlobalWinRate != 0.5 || cfg.CampaignID != "summer" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestPatchConfig_RejectsPrizeMissingFromCatalog(t *testing.T) {
	srv := newTestServer(t, 3, nil)

	rec := srv.do(t, http.MethodPatch, "/v1/config", prize.ConfigPatch{
		Prizes: []prize.PrizeDistribution{{PrizeID: "ghost", Probability: 1, MaxWinners: 5}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = srv.do(t, http.MethodPost, "/v1/plays", prize.UserSession{SessionID: "s-1", UserID: "u-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected play to keep working, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp handler.PlayResponse
	decode(t, rec, &resp)
	if !resp.HasWon || resp.Prize.ID != "gold" {
		t.Errorf("expected a gold win, got %+v", resp.PrizeResult)
	}
}

func TestGetConfig_ReportsLiveWinners(t *testing.T) {
	srv := newTestServer(t, 3, nil)
	srv.do(t, http.MethodPost, "/v1/plays", prize.UserSession{SessionID: "s-1", UserID: "u-1"})

	rec := srv.do(t, http.MethodGet, "/v1/config", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var cfg prize.EngineConfig
	decode(t, rec, &cfg)
	if len(cfg.Prizes) != 1 || cfg.Prizes[0].CurrentWinners != 1 {
		t.Errorf("expected gold to report 1 live winner, got %+v", cfg.Prizes)
	}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		pinger store.Pinger
		want   int
	}{
		{"no store check", nil, http.StatusOK},
		{"store up", stubPinger{}, http.StatusOK},
		{"store down", stubPinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, 1, tt.pinger)
			if rec := srv.do(t, http.MethodGet, "/healthz", nil); rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
