package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
)

type loaderFunc func(ctx context.Context) (*domain.Snapshot, error)

func (f loaderFunc) Load(ctx context.Context) (*domain.Snapshot, error) { return f(ctx) }

func treeSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		RegistryID: "reg-1",
		Products: []domain.Product{
			{
				ID:   "p1",
				Name: "Billing",
				Domains: []domain.Domain{
					{
						ID:   "d1",
						Name: "core",
						Contexts: []domain.Context{
							{
								ID:        "c1",
								Namespace: "io.example.billing",
								Schemas: []domain.Schema{
									{
										ID:       "s1",
										Name:     "Invoice",
										Versions: []domain.SchemaVersion{{ID: "v1", SemanticVersion: "1.0.0"}},
									},
								},
							},
						},
					},
				},
			},
		},
	}
}

func TestReconciler_ApplyAutoExpandsFirstPathOnce(t *testing.T) {
	rec := NewReconciler(nil, testLogger())

	rec.Apply(treeSnapshot())

	view := rec.View()
	assert.True(t, view.Expanded["p1"])
	assert.True(t, view.Expanded["d1"])
	assert.True(t, view.Expanded["c1"])

	// Collapsing and re-applying must not re-expand; priming happens once.
	rec.ToggleExpanded("p1")
	rec.Apply(treeSnapshot())
	assert.False(t, rec.View().Expanded["p1"])
}

func TestReconciler_ApplyPrunesVanishedState(t *testing.T) {
	rec := NewReconciler(nil, testLogger())
	rec.Apply(treeSnapshot())

	rec.Select(domain.EntitySchema, "s1")
	rec.Pin(domain.EntityContext, "c1")
	rec.ToggleExpanded("s1")

	// Next snapshot no longer contains the context subtree.
	pruned := &domain.Snapshot{
		RegistryID: "reg-1",
		Products: []domain.Product{
			{ID: "p1", Name: "Billing", Domains: []domain.Domain{{ID: "d1", Name: "core"}}},
		},
	}
	rec.Apply(pruned)

	view := rec.View()
	assert.Nil(t, view.Selected)
	assert.Nil(t, view.Pinned)
	assert.False(t, view.Expanded["s1"])
	assert.False(t, view.Expanded["c1"])
	assert.True(t, view.Expanded["p1"])
}

func TestReconciler_ApplyKeepsSurvivingState(t *testing.T) {
	rec := NewReconciler(nil, testLogger())
	rec.Apply(treeSnapshot())

	rec.Select(domain.EntitySchemaVersion, "v1")
	rec.Pin(domain.EntityProduct, "p1")

	rec.Apply(treeSnapshot())

	view := rec.View()
	require.NotNil(t, view.Selected)
	assert.Equal(t, "v1", view.Selected.ID)
	require.NotNil(t, view.Pinned)
	assert.Equal(t, "p1", view.Pinned.ID)
}

func TestReconciler_RequestReloadCoalesces(t *testing.T) {
	var loads atomic.Int32
	loaded := make(chan struct{}, 8)
	loader := loaderFunc(func(ctx context.Context) (*domain.Snapshot, error) {
		loads.Add(1)
		loaded <- struct{}{}
		return treeSnapshot(), nil
	})

	rec := NewReconciler(loader, testLogger())

	// Burst of requests before the worker starts: they collapse into one.
	rec.RequestReload()
	rec.RequestReload()
	rec.RequestReload()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rec.Run(ctx)

	select {
	case <-loaded:
	case <-time.After(2 * time.Second):
		t.Fatal("reload never ran")
	}

	// Give the worker a chance to (incorrectly) run again.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), loads.Load())
	require.NotNil(t, rec.Snapshot())
}

func TestReconciler_RequestsDuringReloadCoalesceIntoOneFollowUp(t *testing.T) {
	var loads atomic.Int32
	started := make(chan struct{}, 8)
	release := make(chan struct{})
	loader := loaderFunc(func(ctx context.Context) (*domain.Snapshot, error) {
		loads.Add(1)
		started <- struct{}{}
		<-release
		return treeSnapshot(), nil
	})

	rec := NewReconciler(loader, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rec.Run(ctx)

	rec.RequestReload()
	<-started // first reload is now in flight

	// Several messages land while the reload runs; together they owe exactly
	// one follow-up reload after it resolves.
	rec.RequestReload()
	rec.RequestReload()
	rec.RequestReload()

	release <- struct{}{} // let the first reload finish
	<-started             // the single follow-up starts
	release <- struct{}{} // and finishes

	waitFor(t, func() bool { return rec.Snapshot() != nil })
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), loads.Load())
}

func TestReconciler_ReloadErrorKeepsPreviousState(t *testing.T) {
	loadErr := errors.New("registry unreachable")
	var fail atomic.Bool
	done := make(chan struct{}, 8)
	loader := loaderFunc(func(ctx context.Context) (*domain.Snapshot, error) {
		defer func() { done <- struct{}{} }()
		if fail.Load() {
			return nil, loadErr
		}
		return treeSnapshot(), nil
	})

	rec := NewReconciler(loader, testLogger())
	var errSeen atomic.Bool
	rec.SetOnError(func(err error) { errSeen.Store(true) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rec.Run(ctx)

	rec.RequestReload()
	<-done
	waitFor(t, func() bool { return rec.Snapshot() != nil })

	fail.Store(true)
	rec.RequestReload()
	<-done
	waitFor(t, func() bool { return rec.LastError() != nil })

	assert.ErrorIs(t, rec.LastError(), loadErr)
	assert.True(t, errSeen.Load())
	require.NotNil(t, rec.Snapshot())
	assert.Equal(t, "reg-1", rec.Snapshot().RegistryID)

	fail.Store(false)
	rec.RequestReload()
	<-done
	waitFor(t, func() bool { return rec.LastError() == nil })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func TestReconciler_ViewMutators(t *testing.T) {
	rec := NewReconciler(nil, testLogger())

	rec.ToggleExpanded("p1")
	assert.True(t, rec.View().Expanded["p1"])
	rec.ToggleExpanded("p1")
	assert.False(t, rec.View().Expanded["p1"])

	rec.Select(domain.EntityDomain, "d1")
	require.NotNil(t, rec.View().Selected)
	rec.ClearSelection()
	assert.Nil(t, rec.View().Selected)

	rec.Pin(domain.EntityContext, "c1")
	require.NotNil(t, rec.View().Pinned)
	rec.Unpin()
	assert.Nil(t, rec.View().Pinned)

	assert.True(t, rec.View().StatusFilter[domain.StatusRemoved])
	rec.SetStatusVisible(domain.StatusRemoved, false)
	assert.False(t, rec.View().StatusFilter[domain.StatusRemoved])
}

func TestReconciler_ViewReturnsCopy(t *testing.T) {
	rec := NewReconciler(nil, testLogger())
	rec.ToggleExpanded("p1")

	view := rec.View()
	view.Expanded["p1"] = false
	view.Expanded["other"] = true

	assert.True(t, rec.View().Expanded["p1"])
	assert.False(t, rec.View().Expanded["other"])
}
