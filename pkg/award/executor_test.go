package award

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AccelByte/extend-prize-engine/pkg/prize"
)

// testAward is a simple award for testing
type testAward struct {
	id           string
	executeErr   error
	rollbackErr  error
	executed     int
	rolledBack   int
	rollbackSeen *[]string
}

func (a *testAward) ID() string          { return a.id }
func (a *testAward) Name() string        { return "Test Award" }
func (a *testAward) Config() AwardConfig { return AwardConfig{ID: a.id, Enabled: true} }

func (a *testAward) Execute(ctx context.Context, event *WinEvent) error {
	a.executed++
	return a.executeErr
}

func (a *testAward) Rollback(ctx context.Context, event *WinEvent) error {
	a.rolledBack++
	if a.rollbackSeen != nil {
		*a.rollbackSeen = append(*a.rollbackSeen, a.id)
	}
	return a.rollbackErr
}

type countingObserver map[string]int

func (o countingObserver) ObserveAward(awardID, status string) {
	o[awardID+"/"+status]++
}

func testEvent() *WinEvent {
	return &WinEvent{
		CampaignID: "summer",
		DrawID:     "draw-1",
		SessionID:  "s-1",
		UserID:     "u-1",
		Prize:      prize.Prize{ID: "gold", ItemID: "item-gold"},
		Timestamp:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewWinEvent(t *testing.T) {
	session := prize.UserSession{SessionID: "s-1", UserID: "u-1"}

	if _, err := NewWinEvent(&prize.PrizeResult{HasWon: false}, session); err == nil {
		t.Error("Expected error for losing result")
	}
	if _, err := NewWinEvent(nil, session); err == nil {
		t.Error("Expected error for nil result")
	}

	result := &prize.PrizeResult{
		HasWon: true,
		Prize:  &prize.Prize{ID: "gold"},
		Metadata: prize.ResultMetadata{
			DrawID:     "draw-1",
			CampaignID: "summer",
		},
	}
	event, err := NewWinEvent(result, session)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if event.Prize.ID != "gold" || event.UserID != "u-1" || event.DrawID != "draw-1" || event.CampaignID != "summer" {
		t.Errorf("Unexpected event: %+v", event)
	}
}

func TestExecutor_Execute(t *testing.T) {
	registry := NewRegistry()
	obs := countingObserver{}
	executor := NewExecutor(registry, obs)

	a := &testAward{id: "grant"}
	if err := registry.Register(a); err != nil {
		t.Fatalf("Failed to register award: %v", err)
	}

	result, err := executor.Execute(context.Background(), "grant", testEvent())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Success || a.executed != 1 {
		t.Errorf("Expected one successful execution, got success=%v executed=%d", result.Success, a.executed)
	}
	if obs["grant/"+StatusSuccess] != 1 {
		t.Errorf("Expected success to be observed, got %v", obs)
	}

	if _, err := executor.Execute(context.Background(), "missing", testEvent()); !errors.Is(err, ErrAwardNotFound) {
		t.Errorf("Expected ErrAwardNotFound, got %v", err)
	}
}

func TestExecutor_ExecuteMultiple_Success(t *testing.T) {
	registry := NewRegistry()
	executor := NewExecutor(registry, nil)

	first := &testAward{id: "first"}
	second := &testAward{id: "second"}
	registry.Register(first)
	registry.Register(second)

	results, err := executor.ExecuteMultiple(context.Background(), []string{"first", "second"}, testEvent(), true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Success {
			t.Errorf("Expected %s to succeed", r.AwardID)
		}
	}
	if first.rolledBack != 0 || second.rolledBack != 0 {
		t.Error("Expected no rollback on success")
	}
}

func TestExecutor_ExecuteMultiple_RollbackReverseOrder(t *testing.T) {
	registry := NewRegistry()
	obs := countingObserver{}
	executor := NewExecutor(registry, obs)

	var order []string
	first := &testAward{id: "first", rollbackSeen: &order}
	second := &testAward{id: "second", rollbackSeen: &order, rollbackErr: ErrRollbackNotSupported}
	failing := &testAward{id: "failing", executeErr: errors.New("platform down")}
	last := &testAward{id: "last"}
	for _, a := range []*testAward{first, second, failing, last} {
		registry.Register(a)
	}

	results, err := executor.ExecuteMultiple(context.Background(),
		[]string{"first", "second", "failing", "last"}, testEvent(), true)
	if err == nil {
		t.Fatal("Expected error from failing award")
	}

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[2].Success || results[2].Error == nil {
		t.Error("Expected failing award result to carry the error")
	}
	if last.executed != 0 {
		t.Error("Expected awards after the failure not to run")
	}

	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("Expected rollback order [second first], got %v", order)
	}
	if results[0].Metadata["rolled_back"] != true {
		t.Error("Expected first result to be marked rolled back")
	}
	if _, ok := results[1].Metadata["rolled_back"]; ok {
		t.Error("Expected unsupported rollback not to be marked")
	}
	if obs["failing/"+StatusFailed] != 1 || obs["first/"+StatusRolledBack] != 1 {
		t.Errorf("Unexpected observations: %v", obs)
	}
}

func TestExecutor_ExecuteMultiple_NoRollback(t *testing.T) {
	registry := NewRegistry()
	executor := NewExecutor(registry, nil)

	first := &testAward{id: "first"}
	registry.Register(first)

	results, err := executor.ExecuteMultiple(context.Background(), []string{"first", "ghost"}, testEvent(), false)
	if !errors.Is(err, ErrAwardNotFound) {
		t.Fatalf("Expected ErrAwardNotFound, got %v", err)
	}
	if len(results) != 2 || results[1].Success {
		t.Fatalf("Expected a failed result for the missing award, got %+v", results)
	}
	if first.rolledBack != 0 {
		t.Error("Expected no rollback when disabled")
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	if registry.Count() != 0 {
		t.Errorf("Expected empty registry, got count %d", registry.Count())
	}

	registry.Register(&testAward{id: "b"})
	registry.Register(&testAward{id: "a"})

	if err := registry.Register(&testAward{id: "a"}); err == nil {
		t.Error("Expected error when registering duplicate award")
	}

	ids := registry.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("Expected sorted ids [a b], got %v", ids)
	}
	if registry.Get("missing") != nil {
		t.Error("Expected nil for unknown award")
	}
}

func TestAwardConfig_Getters(t *testing.T) {
	config := AwardConfig{
		Parameters: map[string]interface{}{
			"quantity":  2,
			"json_int":  float64(3),
			"fraction":  1.5,
			"stat_code": "wins",
			"flag":      true,
		},
	}

	if got := config.GetParameterInt("quantity", 1); got != 2 {
		t.Errorf("Expected 2, got %d", got)
	}
	if got := config.GetParameterInt("json_int", 1); got != 3 {
		t.Errorf("Expected 3, got %d", got)
	}
	if got := config.GetParameterInt("fraction", 1); got != 1 {
		t.Errorf("Expected default for fractional value, got %d", got)
	}
	if got := config.GetParameterFloat("quantity", 0); got != 2 {
		t.Errorf("Expected 2.0, got %v", got)
	}
	if got := config.GetParameterString("stat_code", ""); got != "wins" {
		t.Errorf("Expected wins, got %s", got)
	}
	if !config.GetParameterBool("flag", false) {
		t.Error("Expected flag to be true")
	}
	if got := config.GetParameterString("missing", "fallback"); got != "fallback" {
		t.Errorf("Expected fallback, got %s", got)
	}
}
