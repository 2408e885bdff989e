package game

import (
	"errors"
	"testing"

	"github.com/wfunc/findthespy/words"
)

func rolesFixture(t *testing.T, names ...string) (*memStore, string) {
	t.Helper()
	store := newMemStore()
	if err := store.CreateRoom("ROLESX", 1, names[0]); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	for _, name := range names {
		if err := store.AddPlayer("ROLESX", name); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}
	return store, "ROLESX"
}

func TestRoleAssigner_Assign(t *testing.T) {
	store, code := rolesFixture(t, "Ann", "Bob", "Cara", "Dan")
	assigner := NewRoleAssigner(store, &fakeSupplier{civilian: "ocean", spy: "river"})

	players, _ := store.ListPlayers(code)
	civilian, spy, err := assigner.Assign(code, players, 2, 3)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if civilian != "ocean" || spy != "river" {
		t.Errorf("Expected supplier words, got %q/%q", civilian, spy)
	}

	players, _ = store.ListPlayers(code)
	mafia := 0
	for _, p := range players {
		if p.Round != 3 {
			t.Errorf("Player %s should be on round 3, got %d", p.Name, p.Round)
		}
		if p.Eliminated {
			t.Errorf("Player %s should not start eliminated", p.Name)
		}
		if p.IsMafia {
			mafia++
			if p.Word != "river" {
				t.Errorf("Spy %s should hold the spy word, got %q", p.Name, p.Word)
			}
		} else if p.Word != "ocean" {
			t.Errorf("Civilian %s should hold the civilian word, got %q", p.Name, p.Word)
		}
	}
	if mafia != 2 {
		t.Errorf("Expected exactly 2 spies, got %d", mafia)
	}
}

func TestRoleAssigner_FallbackWords(t *testing.T) {
	store, code := rolesFixture(t, "Ann", "Bob")
	assigner := NewRoleAssigner(store, &fakeSupplier{err: errors.New("upstream down")})

	players, _ := store.ListPlayers(code)
	civilian, spy, err := assigner.Assign(code, players, 1, 1)
	if err != nil {
		t.Fatalf("Word supply failure must not fail the round, got: %v", err)
	}
	if civilian != words.FallbackCivilian || spy != words.FallbackSpy {
		t.Errorf("Expected fallback pair, got %q/%q", civilian, spy)
	}
}

func TestRoleAssigner_NotEnoughPlayers(t *testing.T) {
	store, code := rolesFixture(t, "Ann", "Bob")
	assigner := NewRoleAssigner(store, &fakeSupplier{civilian: "a", spy: "b"})

	players, _ := store.ListPlayers(code)
	if _, _, err := assigner.Assign(code, players, 3, 1); err != ErrNotEnoughPlayers {
		t.Errorf("Expected ErrNotEnoughPlayers, got: %v", err)
	}
}
