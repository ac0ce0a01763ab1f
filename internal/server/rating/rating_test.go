package rating

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func TestExpectedScore(t *testing.T) {
	testcases := []struct {
		rating, opponent float64
		expected         float64
	}{
		{1000, 1000, 0.5},
		{1400, 1000, 1.0 / (1.0 + math.Pow(10, -1))},
		{1000, 1400, 1.0 / (1.0 + math.Pow(10, 1))},
	}

	for _, tc := range testcases {
		got := ExpectedScore(tc.rating, tc.opponent)
		if math.Abs(got-tc.expected) > tolerance {
			t.Errorf("ExpectedScore(%v, %v) = %v, want %v", tc.rating, tc.opponent, got, tc.expected)
		}
	}
}

func TestApplyResultEqualRatings(t *testing.T) {
	w, l := ApplyResult(1000, 1000)
	if math.Abs(w-1016) > tolerance {
		t.Errorf("winner = %v, want 1016", w)
	}
	if math.Abs(l-984) > tolerance {
		t.Errorf("loser = %v, want 984", l)
	}
}

func TestApplyResultZeroSum(t *testing.T) {
	pairs := [][2]float64{
		{1000, 1000},
		{1016, 984},
		{1400, 800},
		{812.5, 2143.75},
	}

	for _, p := range pairs {
		w, l := ApplyResult(p[0], p[1])
		if math.Abs((w+l)-(p[0]+p[1])) > tolerance {
			t.Errorf("ApplyResult(%v, %v): sum %v != %v", p[0], p[1], w+l, p[0]+p[1])
		}
		if w <= p[0] {
			t.Errorf("ApplyResult(%v, %v): winner did not gain", p[0], p[1])
		}
		if l >= p[1] {
			t.Errorf("ApplyResult(%v, %v): loser did not lose", p[0], p[1])
		}
	}
}

func TestReplayDeterminism(t *testing.T) {
	players := []string{"a", "b", "c"}
	outcomes := []Outcome{
		{WinnerID: "a", LoserID: "b"},
		{WinnerID: "b", LoserID: "c"},
		{WinnerID: "c", LoserID: "a"},
		{WinnerID: "a", LoserID: "c"},
	}

	first, firstSnaps, err := Replay(players, outcomes)
	if err != nil {
		t.Fatalf("Replay returned error: %v", err)
	}
	second, secondSnaps, err := Replay(players, outcomes)
	if err != nil {
		t.Fatalf("Replay returned error: %v", err)
	}

	for _, id := range players {
		if first[id] != second[id] {
			t.Errorf("player %s: replay not deterministic: %v vs %v", id, first[id], second[id])
		}
	}
	for i := range firstSnaps {
		if firstSnaps[i] != secondSnaps[i] {
			t.Errorf("snapshot %d: %v vs %v", i, firstSnaps[i], secondSnaps[i])
		}
	}
}

// TestReplayOrderSensitivity shows why no incremental patch is correct
// under reordering: swapping two matches changes the final ratings.
func TestReplayOrderSensitivity(t *testing.T) {
	players := []string{"a", "b", "c"}
	history := []Outcome{
		{WinnerID: "a", LoserID: "b"},
		{WinnerID: "b", LoserID: "c"},
		{WinnerID: "a", LoserID: "c"},
	}
	reordered := []Outcome{
		{WinnerID: "a", LoserID: "b"},
		{WinnerID: "a", LoserID: "c"},
		{WinnerID: "b", LoserID: "c"},
	}

	origin, _, err := Replay(players, history)
	if err != nil {
		t.Fatalf("Replay returned error: %v", err)
	}
	swapped, _, err := Replay(players, reordered)
	if err != nil {
		t.Fatalf("Replay returned error: %v", err)
	}

	same := true
	for _, id := range players {
		if math.Abs(origin[id].Rating-swapped[id].Rating) > tolerance {
			same = false
		}
	}
	if same {
		t.Fatal("expected reordered history to produce different final ratings")
	}
}

// TestReplayDeletion verifies that removing the first of two opposite
// results yields the same state as a history holding only the second.
func TestReplayDeletion(t *testing.T) {
	players := []string{"a", "b"}
	full := []Outcome{
		{WinnerID: "a", LoserID: "b"},
		{WinnerID: "b", LoserID: "a"},
	}

	afterBoth, snaps, err := Replay(players, full)
	if err != nil {
		t.Fatalf("Replay returned error: %v", err)
	}
	if math.Abs(snaps[1].Winner-984) > tolerance || math.Abs(snaps[1].Loser-1016) > tolerance {
		t.Errorf("second match snapshot = %+v, want 984/1016", snaps[1])
	}
	// The two results do not cancel exactly: the second upset exchanges
	// more points than the first favorite win.
	if afterBoth["b"].Rating <= afterBoth["a"].Rating {
		t.Errorf("after win and revenge, b (%v) should lead a (%v)", afterBoth["b"].Rating, afterBoth["a"].Rating)
	}

	deleted, _, err := Replay(players, full[1:])
	if err != nil {
		t.Fatalf("Replay returned error: %v", err)
	}
	onlySecond, _, err := Replay(players, []Outcome{{WinnerID: "b", LoserID: "a"}})
	if err != nil {
		t.Fatalf("Replay returned error: %v", err)
	}
	for _, id := range players {
		if deleted[id] != onlySecond[id] {
			t.Errorf("player %s after deletion = %v, want %v", id, deleted[id], onlySecond[id])
		}
	}
	if math.Abs(onlySecond["b"].Rating-1016) > tolerance {
		t.Errorf("b = %v, want 1016", onlySecond["b"].Rating)
	}
}

func TestReplayCounters(t *testing.T) {
	players := []string{"a", "b", "c"}
	outcomes := []Outcome{
		{WinnerID: "a", LoserID: "b"},
		{WinnerID: "a", LoserID: "c"},
		{WinnerID: "b", LoserID: "a"},
	}

	standings, _, err := Replay(players, outcomes)
	if err != nil {
		t.Fatalf("Replay returned error: %v", err)
	}

	want := map[string]Standing{
		"a": {Wins: 2, Losses: 1},
		"b": {Wins: 1, Losses: 1},
		"c": {Wins: 0, Losses: 2},
	}
	for id, w := range want {
		got := standings[id]
		if got.Wins != w.Wins || got.Losses != w.Losses {
			t.Errorf("player %s: wins/losses = %d/%d, want %d/%d", id, got.Wins, got.Losses, w.Wins, w.Losses)
		}
		if got.GamesPlayed() != w.Wins+w.Losses {
			t.Errorf("player %s: gamesPlayed = %d, want %d", id, got.GamesPlayed(), w.Wins+w.Losses)
		}
	}
}

func TestReplayUnknownPlayer(t *testing.T) {
	_, _, err := Replay([]string{"a"}, []Outcome{{WinnerID: "a", LoserID: "ghost"}})
	if err == nil {
		t.Fatal("expected error for outcome referencing unknown player")
	}
}

func BenchmarkReplay(b *testing.B) {
	players := []string{"a", "b", "c", "d"}
	outcomes := make([]Outcome, 0, 1000)
	for i := 0; i < 1000; i++ {
		outcomes = append(outcomes, Outcome{
			WinnerID: players[i%4],
			LoserID:  players[(i+1)%4],
		})
	}

	for b.Loop() {
		if _, _, err := Replay(players, outcomes); err != nil {
			b.Fatal(err)
		}
	}
}
