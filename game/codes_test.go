package game

import (
	"testing"
)

func TestCodeGenerator_Generate(t *testing.T) {
	store := newMemStore()
	generator := NewCodeGenerator(store)

	code, err := generator.Generate()
	if err != nil {
		t.Fatalf("Generate should not return an error, got: %v", err)
	}

	if len(code) != 6 {
		t.Errorf("Expected a 6-character code, got %q", code)
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			t.Errorf("Expected only uppercase letters, got %q", code)
		}
	}
}

func TestCodeGenerator_SkipsExistingCodes(t *testing.T) {
	store := newMemStore()
	if err := store.CreateRoom("AAAAAA", 1, "host"); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	generator := NewCodeGenerator(store)

	for i := 0; i < 20; i++ {
		code, err := generator.Generate()
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if code == "AAAAAA" {
			t.Fatal("Generate returned a code that already exists")
		}
	}
}

// alwaysExists simulates a fully saturated code space.
type alwaysExists struct {
	*memStore
}

func (a *alwaysExists) RoomExists(code string) (bool, error) {
	return true, nil
}

func TestCodeGenerator_Exhaustion(t *testing.T) {
	generator := NewCodeGenerator(&alwaysExists{newMemStore()})

	_, err := generator.Generate()
	if err != ErrCodeSpace {
		t.Errorf("Expected ErrCodeSpace after the retry bound, got: %v", err)
	}
}
