package plugins

import (
	"context"
	"fmt"
	"testing"

	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

type stubPlugin struct {
	name     string
	result   map[string]any
	err      error
	panicMsg string
	invalid  bool
}

func (s *stubPlugin) Name() string        { return s.name }
func (s *stubPlugin) Description() string { return "stub" }

func (s *stubPlugin) Execute(ctx context.Context, userData map[string]any) (map[string]any, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.result, s.err
}

func (s *stubPlugin) ValidateResponse(response map[string]any) bool { return !s.invalid }

func testRegistry(t *testing.T, ps ...Plugin) *Registry {
	t.Helper()
	log, err := logger.New("development", false, "")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	r := &Registry{log: log, plugins: map[string]Plugin{}}
	for _, p := range ps {
		r.plugins[p.Name()] = p
		r.order = append(r.order, p.Name())
	}
	return r
}

// Every loaded plugin must contribute exactly one slot no matter how it
// fails.
func TestExecuteAllCompleteness(t *testing.T) {
	r := testRegistry(t,
		&stubPlugin{name: "good", result: map[string]any{"score": 1.0, "risk_factors": []any{}}},
		&stubPlugin{name: "erroring", err: fmt.Errorf("upstream down")},
		&stubPlugin{name: "panicking", panicMsg: "boom"},
		&stubPlugin{name: "invalid", result: map[string]any{"nonsense": true}, invalid: true},
	)

	results := r.ExecuteAll(context.Background(), map[string]any{"id": "u1"})
	if len(results) != 4 {
		t.Fatalf("results: want 4 entries, got %d", len(results))
	}

	if _, ok := results["good"]["score"]; !ok {
		t.Fatalf("good plugin result lost: %v", results["good"])
	}
	if results["erroring"]["error"] != "upstream down" {
		t.Fatalf("erroring slot: got=%v", results["erroring"])
	}
	if _, ok := results["panicking"]["error"]; !ok {
		t.Fatalf("panicking slot must carry an error: %v", results["panicking"])
	}
	if _, ok := results["invalid"]["error"]; !ok {
		t.Fatalf("invalid slot must carry an error: %v", results["invalid"])
	}
}

func TestExecuteAllEmptyRegistry(t *testing.T) {
	r := testRegistry(t)
	results := r.ExecuteAll(context.Background(), map[string]any{})
	if len(results) != 0 {
		t.Fatalf("want empty results, got %v", results)
	}
}

func TestExecuteOneUnknownPlugin(t *testing.T) {
	r := testRegistry(t)
	_, err := r.ExecuteOne(context.Background(), "nope", map[string]any{})
	if !apierr.IsNotFound(err) {
		t.Fatalf("want not_found, got %v", err)
	}
}

// ExecuteOne is the targeted path: failures surface instead of being
// swallowed into an error slot.
func TestExecuteOnePropagatesErrors(t *testing.T) {
	r := testRegistry(t, &stubPlugin{name: "flaky", err: fmt.Errorf("nope")})
	_, err := r.ExecuteOne(context.Background(), "flaky", map[string]any{})
	if err == nil || err.Error() != "nope" {
		t.Fatalf("want propagated error, got %v", err)
	}
}

func TestNewRegistrySkipsUnknownNames(t *testing.T) {
	log, err := logger.New("development", false, "")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	r := NewRegistry([]string{"sift", "no_such_plugin"}, log)
	available := r.Available()
	if len(available) != 1 || available[0] != "sift" {
		t.Fatalf("available: want [sift], got %v", available)
	}
}
