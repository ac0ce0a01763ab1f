package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "pong.db"), false)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.InitDB(); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	return store
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	players := []PlayerRecord{
		{PlayerID: "p1", Name: "alice", Rating: 1016, Wins: 1, GamesPlayed: 1, CreatedAt: now},
		{PlayerID: "p2", Name: "bob", Rating: 984, Losses: 1, GamesPlayed: 1, CreatedAt: now.Add(time.Second)},
	}
	matches := []MatchRecord{
		{
			MatchID: "m1", Seq: 1, WinnerID: "p1", LoserID: "p2",
			WinnerScore: 11, LoserScore: 7,
			WinnerRatingBefore: 1000, LoserRatingBefore: 1000,
			PlayedAt: now,
		},
	}

	if err := store.SaveState(players, matches); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}
	if !store.IsHealthy() {
		t.Fatal("store unhealthy after successful save")
	}

	gotPlayers, gotMatches, err := store.LoadState()
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}

	if len(gotPlayers) != 2 {
		t.Fatalf("loaded %d players, want 2", len(gotPlayers))
	}
	if gotPlayers[0].Name != "alice" || gotPlayers[0].Rating != 1016 {
		t.Errorf("player[0] = %+v, want alice/1016", gotPlayers[0])
	}
	if len(gotMatches) != 1 {
		t.Fatalf("loaded %d matches, want 1", len(gotMatches))
	}
	m := gotMatches[0]
	if m.MatchID != "m1" || m.Seq != 1 || m.WinnerID != "p1" || m.WinnerScore != 11 {
		t.Errorf("match = %+v", m)
	}
	if !m.PlayedAt.UTC().Equal(now) {
		t.Errorf("played_at = %v, want %v", m.PlayedAt.UTC(), now)
	}
}

func TestSaveStateReplacesPreviousState(t *testing.T) {
	store := newTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	first := []PlayerRecord{{PlayerID: "p1", Name: "alice", Rating: 1000, CreatedAt: now}}
	if err := store.SaveState(first, nil); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}

	second := []PlayerRecord{{PlayerID: "p2", Name: "bob", Rating: 1000, CreatedAt: now}}
	if err := store.SaveState(second, nil); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}

	players, matches, err := store.LoadState()
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if len(players) != 1 || players[0].PlayerID != "p2" {
		t.Errorf("players = %+v, want single p2", players)
	}
	if len(matches) != 0 {
		t.Errorf("matches = %+v, want empty", matches)
	}
}

func TestLoadStateOrdersLedgerByTimestampThenSeq(t *testing.T) {
	store := newTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	players := []PlayerRecord{
		{PlayerID: "p1", Name: "alice", Rating: 1000, CreatedAt: now},
		{PlayerID: "p2", Name: "bob", Rating: 1000, CreatedAt: now},
	}
	// Insert out of ledger order; LoadState must sort
	matches := []MatchRecord{
		{MatchID: "m3", Seq: 3, WinnerID: "p1", LoserID: "p2", WinnerRatingBefore: 1000, LoserRatingBefore: 1000, PlayedAt: now.Add(time.Minute)},
		{MatchID: "m2", Seq: 2, WinnerID: "p2", LoserID: "p1", WinnerRatingBefore: 1000, LoserRatingBefore: 1000, PlayedAt: now},
		{MatchID: "m1", Seq: 1, WinnerID: "p1", LoserID: "p2", WinnerRatingBefore: 1000, LoserRatingBefore: 1000, PlayedAt: now},
	}

	if err := store.SaveState(players, matches); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}

	_, got, err := store.LoadState()
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}

	wantOrder := []string{"m1", "m2", "m3"}
	if len(got) != len(wantOrder) {
		t.Fatalf("loaded %d matches, want %d", len(got), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got[i].MatchID != id {
			t.Errorf("ledger[%d] = %s, want %s", i, got[i].MatchID, id)
		}
	}
}

func TestQueryMatchesFiltersByPlayer(t *testing.T) {
	store := newTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	players := []PlayerRecord{
		{PlayerID: "p1", Name: "alice", Rating: 1000, CreatedAt: now},
		{PlayerID: "p2", Name: "bob", Rating: 1000, CreatedAt: now},
		{PlayerID: "p3", Name: "carol", Rating: 1000, CreatedAt: now},
	}
	matches := []MatchRecord{
		{MatchID: "m1", Seq: 1, WinnerID: "p1", LoserID: "p2", WinnerRatingBefore: 1000, LoserRatingBefore: 1000, PlayedAt: now},
		{MatchID: "m2", Seq: 2, WinnerID: "p2", LoserID: "p3", WinnerRatingBefore: 1000, LoserRatingBefore: 1000, PlayedAt: now.Add(time.Second)},
	}
	if err := store.SaveState(players, matches); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}

	got, err := store.QueryMatches("p3")
	if err != nil {
		t.Fatalf("QueryMatches failed: %v", err)
	}
	if len(got) != 1 || got[0].MatchID != "m2" {
		t.Errorf("filtered matches = %+v, want only m2", got)
	}

	all, err := store.QueryMatches("*")
	if err != nil {
		t.Fatalf("QueryMatches failed: %v", err)
	}
	if len(all) != 2 || all[0].MatchID != "m2" {
		t.Errorf("all matches = %+v, want m2 first (newest)", all)
	}
}
