package environment

import (
	"testing"

	"github.com/google/uuid"
)

func TestRegistryGetOrCreate(t *testing.T) {
	r := NewRegistry(t.TempDir())
	id := uuid.New()

	env, err := r.GetOrCreate(id)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if env.ID() != id {
		t.Errorf("ID() = %s, want %s", env.ID(), id)
	}

	again, err := r.GetOrCreate(id)
	if err != nil {
		t.Fatalf("GetOrCreate (second call): %v", err)
	}
	if again.Root() != env.Root() {
		t.Errorf("expected the same environment to be returned, got different roots %q vs %q", again.Root(), env.Root())
	}
}

func TestRegistryReconcileAdoptsExistingAndCreatesMissing(t *testing.T) {
	root := t.TempDir()

	seed := NewRegistry(root)
	existingID := uuid.New()
	if _, err := seed.GetOrCreate(existingID); err != nil {
		t.Fatalf("seed GetOrCreate: %v", err)
	}

	missingID := uuid.New()

	r := NewRegistry(root)
	if err := r.Reconcile([]uuid.UUID{existingID, missingID}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if _, ok := r.Get(existingID); !ok {
		t.Error("expected existing environment to be adopted")
	}
	if _, ok := r.Get(missingID); !ok {
		t.Error("expected missing environment to be created")
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry(t.TempDir())
	id := uuid.New()
	if _, err := r.GetOrCreate(id); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	if err := r.Remove(id); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := r.Get(id); ok {
		t.Error("expected environment to be forgotten after Remove")
	}
}

func TestRegistryRemoveUnknownIsError(t *testing.T) {
	r := NewRegistry(t.TempDir())
	if err := r.Remove(uuid.New()); err == nil {
		t.Fatal("expected error removing an unknown id")
	}
}
