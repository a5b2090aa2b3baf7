package engine

import (
	"context"
	"testing"

	"github.com/joakar/starlink-tracker/internal/catalog"
	"github.com/joakar/starlink-tracker/internal/propagation"
	"github.com/joakar/starlink-tracker/internal/stats"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cat := catalog.Ingest([]catalog.Record{
		{Handle: "a", Name: "SAT-A", InclinationDeg: 53},
	}, nil)
	src := &fakeSource{fn: fixedGeo(propagation.Geo{AltKm: 550})}
	app, err := NewApp(context.Background(), testLogger(), cat, src, nil, stats.NewPublisher())
	if err != nil {
		t.Fatalf("engine init failed: %v", err)
	}
	return app
}

func TestSetTrajectoryHours(t *testing.T) {
	a := newTestApp(t)

	a.SetTrajectoryHours(3)
	if a.view.TrajHours != 3 {
		t.Errorf("TrajHours = %v, want 3", a.view.TrajHours)
	}

	a.SetTrajectoryHours(0.1)
	if a.view.TrajHours != MinTrajectoryHours {
		t.Errorf("TrajHours = %v, want clamped to %v", a.view.TrajHours, MinTrajectoryHours)
	}

	a.SetTrajectoryHours(100)
	if a.view.TrajHours != MaxTrajectoryHours {
		t.Errorf("TrajHours = %v, want clamped to %v", a.view.TrajHours, MaxTrajectoryHours)
	}
}

func TestEnqueueAppliesOnUpdate(t *testing.T) {
	a := newTestApp(t)

	if !a.Enqueue(func(app *App) { app.SetTrajectoryHours(6) }) {
		t.Fatal("enqueue on an idle queue failed")
	}
	if err := a.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if a.view.TrajHours != 6 {
		t.Errorf("command not applied: TrajHours = %v, want 6", a.view.TrajHours)
	}
}
