package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	e := NoopEngineHooks{}
	e.OnModeSwitch("map")
	e.OnFrameSelect("zimin", true)
	e.OnDragCommit("slot")
	e.OnTweens(12)

	s := NoopStoreHooks{}
	s.OnMutation("put", 3)
	s.OnImport(3, nil)

	p := NoopPersistHooks{}
	p.OnSave(ctx, "disk", 1024, time.Millisecond, nil)
	p.OnLoad(ctx, "disk", true, time.Millisecond, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Engine().(NoopEngineHooks); !ok {
		t.Error("Engine() should return NoopEngineHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := Persist().(NoopPersistHooks); !ok {
		t.Error("Persist() should return NoopPersistHooks by default")
	}

	custom := &testEngineHooks{}
	SetEngineHooks(custom)
	if Engine() != custom {
		t.Error("SetEngineHooks should set custom hooks")
	}

	Reset()
	if _, ok := Engine().(NoopEngineHooks); !ok {
		t.Error("Reset() should restore NoopEngineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testEngineHooks{}
	SetEngineHooks(custom)
	SetEngineHooks(nil)

	if Engine() != custom {
		t.Error("SetEngineHooks(nil) should not replace existing hooks")
	}
	Reset()
}

func TestMetrics(t *testing.T) {
	defer Reset()

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	m.Install()

	Engine().OnModeSwitch("map")
	Engine().OnModeSwitch("map")
	Engine().OnFrameSelect("zimin", false)
	Store().OnMutation("delete", 4)
	Persist().OnSave(context.Background(), "disk", 2048, time.Millisecond, nil)
	Persist().OnLoad(context.Background(), "redis", false, time.Millisecond, errors.New("down"))

	if got := testutil.ToFloat64(m.modeSwitchesTotal.WithLabelValues("map")); got != 2 {
		t.Errorf("mode switches = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.frameSelectionsTotal.WithLabelValues("miss")); got != 1 {
		t.Errorf("frame misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.storeEntities); got != 4 {
		t.Errorf("store entities = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.persistOpsTotal.WithLabelValues("redis", "load", "error")); got != 1 {
		t.Errorf("redis load errors = %v, want 1", got)
	}

	expected := `
# HELP cardspace_drag_commits_total Total number of drag position commits
# TYPE cardspace_drag_commits_total counter
cardspace_drag_commits_total{target="override"} 1
`
	Engine().OnDragCommit("override")
	if err := testutil.CollectAndCompare(m.dragCommitsTotal, strings.NewReader(expected)); err != nil {
		t.Errorf("drag commits mismatch: %v", err)
	}
}

func TestMetricsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatalf("first NewMetrics() error = %v", err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Error("second NewMetrics() on the same registry should fail")
	}
}

type testEngineHooks struct{ NoopEngineHooks }
