package game

import (
	"testing"

	"github.com/wfunc/findthespy/models"
	"github.com/wfunc/findthespy/state"
)

func scoringFixture(t *testing.T) (*memStore, *Scorer) {
	t.Helper()
	store := newMemStore()
	if err := store.CreateRoom("ABCDEF", 1, "Ann"); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	for _, name := range []string{"Ann", "Bob", "Cara"} {
		if err := store.AddPlayer("ABCDEF", name); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}
	store.SetRoomPhase("ABCDEF", state.StatusOngoing, state.PhaseVoting)
	return store, NewScorer(store)
}

func score(t *testing.T, store *memStore, code, name string) int {
	t.Helper()
	p, err := store.GetPlayer(code, name)
	if err != nil {
		t.Fatalf("GetPlayer(%s) failed: %v", name, err)
	}
	return p.Score
}

// Bob is the spy and everyone votes for Bob: the non-spies who voted for
// a spy each get a point.
func TestScorer_SpyEliminated(t *testing.T) {
	store, scorer := scoringFixture(t)
	store.setMafia("ABCDEF", "Bob", true)

	store.UpsertVote("ABCDEF", 1, "Ann", "Bob")
	store.UpsertVote("ABCDEF", 1, "Bob", "Ann")
	store.UpsertVote("ABCDEF", 1, "Cara", "Bob")

	eliminated, wasMafia, err := scorer.Resolve("ABCDEF", 1)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if eliminated != "Bob" || !wasMafia {
		t.Fatalf("Expected Bob (spy) eliminated, got %s wasMafia=%v", eliminated, wasMafia)
	}

	if got := score(t, store, "ABCDEF", "Ann"); got != 1 {
		t.Errorf("Ann voted for the spy, expected score 1, got %d", got)
	}
	if got := score(t, store, "ABCDEF", "Cara"); got != 1 {
		t.Errorf("Cara voted for the spy, expected score 1, got %d", got)
	}
	if got := score(t, store, "ABCDEF", "Bob"); got != 0 {
		t.Errorf("The spy scores nothing when eliminated, got %d", got)
	}

	room, _ := store.GetRoom("ABCDEF")
	if room.Status != state.StatusEnded || room.CurrentPhase != state.PhaseNone {
		t.Errorf("Room should be ended/none after resolution, got %s/%s",
			room.Status, room.CurrentPhase)
	}

	result, err := store.GetRoundResult("ABCDEF", 1)
	if err != nil {
		t.Fatalf("Expected a round result row: %v", err)
	}
	if result.EliminatedPlayer != "Bob" || !result.WasMafia {
		t.Errorf("Round result mismatch: %+v", result)
	}
}

// Bob is a civilian and everyone votes for Bob: the spy received zero
// votes and gets the point.
func TestScorer_CivilianEliminated(t *testing.T) {
	store, scorer := scoringFixture(t)
	store.setMafia("ABCDEF", "Cara", true)

	store.UpsertVote("ABCDEF", 1, "Ann", "Bob")
	store.UpsertVote("ABCDEF", 1, "Bob", "Bob")
	store.UpsertVote("ABCDEF", 1, "Cara", "Bob")

	eliminated, wasMafia, err := scorer.Resolve("ABCDEF", 1)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if eliminated != "Bob" || wasMafia {
		t.Fatalf("Expected Bob (civilian) eliminated, got %s wasMafia=%v", eliminated, wasMafia)
	}

	if got := score(t, store, "ABCDEF", "Cara"); got != 1 {
		t.Errorf("Cara is a zero-vote spy, expected score 1, got %d", got)
	}
	if got := score(t, store, "ABCDEF", "Ann"); got != 0 {
		t.Errorf("Ann should not score, got %d", got)
	}
	if got := score(t, store, "ABCDEF", "Bob"); got != 0 {
		t.Errorf("Bob should not score, got %d", got)
	}
}

// A spy that received votes without being eliminated scores nothing.
func TestScorer_VotedSpyDoesNotScore(t *testing.T) {
	store, scorer := scoringFixture(t)
	store.AddPlayer("ABCDEF", "Dan")
	store.setMafia("ABCDEF", "Cara", true)
	store.setMafia("ABCDEF", "Dan", true)

	store.UpsertVote("ABCDEF", 1, "Ann", "Bob")
	store.UpsertVote("ABCDEF", 1, "Bob", "Bob")
	store.UpsertVote("ABCDEF", 1, "Cara", "Bob")
	store.UpsertVote("ABCDEF", 1, "Dan", "Cara")

	_, wasMafia, err := scorer.Resolve("ABCDEF", 1)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if wasMafia {
		t.Fatal("Bob should be the plurality target and is a civilian")
	}

	if got := score(t, store, "ABCDEF", "Dan"); got != 1 {
		t.Errorf("Dan is a zero-vote spy, expected score 1, got %d", got)
	}
	if got := score(t, store, "ABCDEF", "Cara"); got != 0 {
		t.Errorf("Cara received a vote, expected score 0, got %d", got)
	}
}

func TestScorer_NoVotes(t *testing.T) {
	store, scorer := scoringFixture(t)

	if _, _, err := scorer.Resolve("ABCDEF", 1); err != ErrNoVotes {
		t.Errorf("Expected ErrNoVotes, got: %v", err)
	}
	if store.resultCount("ABCDEF") != 0 {
		t.Error("No round result should be written when nothing resolved")
	}
}

func TestScorer_EliminatedPlayerMissing(t *testing.T) {
	store, scorer := scoringFixture(t)

	// voting for a name that is not a player is allowed, but such a
	// target cannot be resolved
	store.UpsertVote("ABCDEF", 1, "Ann", "Ghost")
	store.UpsertVote("ABCDEF", 1, "Bob", "Ghost")
	store.UpsertVote("ABCDEF", 1, "Cara", "Ghost")

	if _, _, err := scorer.Resolve("ABCDEF", 1); err != ErrPlayerNotFound {
		t.Errorf("Expected ErrPlayerNotFound, got: %v", err)
	}
}

func TestPluralityTarget_TieBreak(t *testing.T) {
	votes := []models.Vote{
		{VoterName: "a", VotedName: "Zed"},
		{VoterName: "b", VotedName: "Amy"},
		{VoterName: "c", VotedName: "Zed"},
		{VoterName: "d", VotedName: "Amy"},
	}
	if got := pluralityTarget(votes); got != "Amy" {
		t.Errorf("Tie should break to the first name in order, got %q", got)
	}

	votes = append(votes, models.Vote{VoterName: "e", VotedName: "Zed"})
	if got := pluralityTarget(votes); got != "Zed" {
		t.Errorf("Highest count should win, got %q", got)
	}
}
