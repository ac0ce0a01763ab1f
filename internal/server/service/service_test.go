package service

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"pong/internal/server/core"
)

const tolerance = 1e-9

func newTestService(t *testing.T) *Service {
	t.Helper()
	return New(nil, []byte("test-secret-minimum-32-characters-xx"), "")
}

func seedPlayers(t *testing.T, s *Service, names ...string) map[string]string {
	t.Helper()
	ids := make(map[string]string, len(names))
	for _, name := range names {
		p, err := s.CreatePlayer(name)
		if err != nil {
			t.Fatalf("CreatePlayer(%q) failed: %v", name, err)
		}
		ids[name] = p.ID
	}
	return ids
}

func ratingOf(t *testing.T, s *Service, id string) float64 {
	t.Helper()
	p, err := s.GetPlayer(id)
	if err != nil {
		t.Fatalf("GetPlayer(%s) failed: %v", id, err)
	}
	return p.Rating
}

func TestCreatePlayerDefaults(t *testing.T) {
	s := newTestService(t)

	p, err := s.CreatePlayer("alice")
	if err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}
	if p.Rating != 1000.0 {
		t.Errorf("rating = %v, want 1000", p.Rating)
	}
	if p.Wins != 0 || p.Losses != 0 || p.GamesPlayed != 0 {
		t.Errorf("counters = %d/%d/%d, want zeros", p.Wins, p.Losses, p.GamesPlayed)
	}
	if p.ID == "" {
		t.Error("expected generated player id")
	}
}

func TestCreatePlayerDuplicateName(t *testing.T) {
	s := newTestService(t)
	seedPlayers(t, s, "Alice")

	_, err := s.CreatePlayer("alice")
	if !errors.Is(err, core.ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName for case-insensitive duplicate", err)
	}

	_, err = s.CreatePlayer("   ")
	if !errors.Is(err, core.ErrInvalidName) {
		t.Fatalf("err = %v, want ErrInvalidName for blank name", err)
	}
}

func TestRecordMatchIncremental(t *testing.T) {
	s := newTestService(t)
	ids := seedPlayers(t, s, "alice", "bob")

	m, err := s.RecordMatch(ids["alice"], ids["bob"], 11, 7, nil)
	if err != nil {
		t.Fatalf("RecordMatch failed: %v", err)
	}
	if m.WinnerRatingBefore != 1000 || m.LoserRatingBefore != 1000 {
		t.Errorf("snapshot = %v/%v, want 1000/1000", m.WinnerRatingBefore, m.LoserRatingBefore)
	}

	if r := ratingOf(t, s, ids["alice"]); math.Abs(r-1016) > tolerance {
		t.Errorf("winner rating = %v, want 1016", r)
	}
	if r := ratingOf(t, s, ids["bob"]); math.Abs(r-984) > tolerance {
		t.Errorf("loser rating = %v, want 984", r)
	}

	alice, _ := s.GetPlayer(ids["alice"])
	if alice.Wins != 1 || alice.Losses != 0 || alice.GamesPlayed != 1 {
		t.Errorf("winner counters = %d/%d/%d", alice.Wins, alice.Losses, alice.GamesPlayed)
	}
}

func TestRecordMatchValidation(t *testing.T) {
	s := newTestService(t)
	ids := seedPlayers(t, s, "alice", "bob")

	if _, err := s.RecordMatch(ids["alice"], ids["alice"], 11, 7, nil); !errors.Is(err, core.ErrSamePlayer) {
		t.Errorf("same player: err = %v, want ErrSamePlayer", err)
	}
	if _, err := s.RecordMatch(ids["alice"], "no-such-id", 11, 7, nil); !errors.Is(err, core.ErrUnknownPlayer) {
		t.Errorf("unknown loser: err = %v, want ErrUnknownPlayer", err)
	}
	if _, err := s.RecordMatch(ids["alice"], ids["bob"], 7, 11, nil); !errors.Is(err, core.ErrInvalidScore) {
		t.Errorf("losing score for winner: err = %v, want ErrInvalidScore", err)
	}
	if _, err := s.RecordMatch(ids["alice"], ids["bob"], 11, 11, nil); !errors.Is(err, core.ErrInvalidScore) {
		t.Errorf("draw score: err = %v, want ErrInvalidScore", err)
	}
}

// A rejected mutation must leave the observable state byte-identical.
func TestRejectionLeavesStateUntouched(t *testing.T) {
	s := newTestService(t)
	ids := seedPlayers(t, s, "alice", "bob")
	if _, err := s.RecordMatch(ids["alice"], ids["bob"], 11, 9, nil); err != nil {
		t.Fatalf("RecordMatch failed: %v", err)
	}

	playersBefore, err := json.Marshal(s.ListPlayers())
	if err != nil {
		t.Fatal(err)
	}
	matchesBefore, err := json.Marshal(s.ListMatches())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.RecordMatch(ids["alice"], "no-such-id", 11, 0, nil); err == nil {
		t.Fatal("expected rejection")
	}
	if err := s.RemovePlayer(ids["alice"], false); !errors.Is(err, core.ErrPlayerHasHistory) {
		t.Fatalf("err = %v, want ErrPlayerHasHistory", err)
	}
	if err := s.DeleteMatch("no-such-match"); !errors.Is(err, core.ErrMatchNotFound) {
		t.Fatalf("err = %v, want ErrMatchNotFound", err)
	}

	playersAfter, _ := json.Marshal(s.ListPlayers())
	matchesAfter, _ := json.Marshal(s.ListMatches())
	if string(playersBefore) != string(playersAfter) {
		t.Error("player list changed after rejected mutations")
	}
	if string(matchesBefore) != string(matchesAfter) {
		t.Error("match list changed after rejected mutations")
	}
}

// Recording a match with an earlier timestamp than existing history must
// produce the same state as recording all matches in chronological order.
func TestRecordMatchOutOfOrderTriggersReplay(t *testing.T) {
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	t1, t2, t3 := base, base.Add(time.Hour), base.Add(2*time.Hour)

	chronological := newTestService(t)
	cIDs := seedPlayers(t, chronological, "alice", "bob", "carol")
	if _, err := chronological.RecordMatch(cIDs["alice"], cIDs["bob"], 11, 5, &t1); err != nil {
		t.Fatal(err)
	}
	if _, err := chronological.RecordMatch(cIDs["bob"], cIDs["carol"], 11, 8, &t2); err != nil {
		t.Fatal(err)
	}
	if _, err := chronological.RecordMatch(cIDs["alice"], cIDs["carol"], 11, 3, &t3); err != nil {
		t.Fatal(err)
	}

	reordered := newTestService(t)
	rIDs := seedPlayers(t, reordered, "alice", "bob", "carol")
	if _, err := reordered.RecordMatch(rIDs["alice"], rIDs["bob"], 11, 5, &t1); err != nil {
		t.Fatal(err)
	}
	if _, err := reordered.RecordMatch(rIDs["alice"], rIDs["carol"], 11, 3, &t3); err != nil {
		t.Fatal(err)
	}
	// Inserted before the previous match by timestamp
	if _, err := reordered.RecordMatch(rIDs["bob"], rIDs["carol"], 11, 8, &t2); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"alice", "bob", "carol"} {
		want := ratingOf(t, chronological, cIDs[name])
		got := ratingOf(t, reordered, rIDs[name])
		if math.Abs(want-got) > tolerance {
			t.Errorf("player %s: rating %v after reorder, want %v", name, got, want)
		}
	}

	// The replay must also refresh the audit snapshots to ledger order
	matches := reordered.ListMatches()
	if len(matches) != 3 {
		t.Fatalf("len(matches) = %d, want 3", len(matches))
	}
	last := matches[0] // newest first
	if last.PlayedAt != t3 {
		t.Fatalf("newest match playedAt = %v, want %v", last.PlayedAt, t3)
	}
	if last.WinnerRatingBefore == 1000 && last.LoserRatingBefore == 1000 {
		t.Error("snapshot of final match not refreshed after replay")
	}
}

// A beats B, then B beats A, then the first match is deleted. The
// replayed state must equal a history holding only "B beats A" from
// baseline, i.e. B=1016, A=984.
func TestDeleteMatchReplaysRemainingHistory(t *testing.T) {
	s := newTestService(t)
	ids := seedPlayers(t, s, "alice", "bob")

	first, err := s.RecordMatch(ids["alice"], ids["bob"], 11, 7, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordMatch(ids["bob"], ids["alice"], 12, 10, nil); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteMatch(first.ID); err != nil {
		t.Fatalf("DeleteMatch failed: %v", err)
	}

	if r := ratingOf(t, s, ids["bob"]); math.Abs(r-1016) > tolerance {
		t.Errorf("bob = %v, want 1016", r)
	}
	if r := ratingOf(t, s, ids["alice"]); math.Abs(r-984) > tolerance {
		t.Errorf("alice = %v, want 984", r)
	}

	remaining := s.ListMatches()
	if len(remaining) != 1 {
		t.Fatalf("len(matches) = %d, want 1", len(remaining))
	}
	if remaining[0].WinnerRatingBefore != 1000 || remaining[0].LoserRatingBefore != 1000 {
		t.Errorf("snapshot = %v/%v, want 1000/1000 after replay", remaining[0].WinnerRatingBefore, remaining[0].LoserRatingBefore)
	}
}

func TestRemovePlayerWithoutHistory(t *testing.T) {
	s := newTestService(t)
	ids := seedPlayers(t, s, "alice", "bob")

	if err := s.RemovePlayer(ids["bob"], false); err != nil {
		t.Fatalf("RemovePlayer failed: %v", err)
	}
	if _, err := s.GetPlayer(ids["bob"]); !errors.Is(err, core.ErrPlayerNotFound) {
		t.Fatalf("err = %v, want ErrPlayerNotFound", err)
	}
	if err := s.RemovePlayer("no-such-id", false); !errors.Is(err, core.ErrPlayerNotFound) {
		t.Fatalf("err = %v, want ErrPlayerNotFound", err)
	}
}

// Cascading removal drops the player's matches and recomputes everyone
// else as if those matches never existed.
func TestRemovePlayerCascade(t *testing.T) {
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	t1, t2, t3 := base, base.Add(time.Hour), base.Add(2*time.Hour)

	s := newTestService(t)
	ids := seedPlayers(t, s, "alice", "bob", "carol")
	if _, err := s.RecordMatch(ids["alice"], ids["bob"], 11, 5, &t1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordMatch(ids["bob"], ids["carol"], 11, 8, &t2); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordMatch(ids["carol"], ids["alice"], 11, 9, &t3); err != nil {
		t.Fatal(err)
	}

	if err := s.RemovePlayer(ids["carol"], true); err != nil {
		t.Fatalf("cascade RemovePlayer failed: %v", err)
	}

	// Only alice beats bob remains: baseline exchange
	if r := ratingOf(t, s, ids["alice"]); math.Abs(r-1016) > tolerance {
		t.Errorf("alice = %v, want 1016", r)
	}
	if r := ratingOf(t, s, ids["bob"]); math.Abs(r-984) > tolerance {
		t.Errorf("bob = %v, want 984", r)
	}

	matches := s.ListMatches()
	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d, want 1", len(matches))
	}
	bob, _ := s.GetPlayer(ids["bob"])
	if bob.Wins != 0 || bob.Losses != 1 || bob.GamesPlayed != 1 {
		t.Errorf("bob counters = %d/%d/%d, want 0/1/1", bob.Wins, bob.Losses, bob.GamesPlayed)
	}
}

func TestCountersMatchLedger(t *testing.T) {
	s := newTestService(t)
	ids := seedPlayers(t, s, "alice", "bob", "carol", "dave")

	pairs := [][2]string{
		{"alice", "bob"}, {"carol", "dave"}, {"alice", "carol"},
		{"bob", "dave"}, {"dave", "alice"}, {"bob", "carol"},
	}
	for _, pair := range pairs {
		if _, err := s.RecordMatch(ids[pair[0]], ids[pair[1]], 11, 6, nil); err != nil {
			t.Fatal(err)
		}
	}

	matches := s.ListMatches()
	for _, p := range s.ListPlayers() {
		refs := 0
		for _, m := range matches {
			if m.References(p.ID) {
				refs++
			}
		}
		if p.Wins+p.Losses != p.GamesPlayed {
			t.Errorf("player %s: wins+losses %d != gamesPlayed %d", p.Name, p.Wins+p.Losses, p.GamesPlayed)
		}
		if p.GamesPlayed != refs {
			t.Errorf("player %s: gamesPlayed %d != ledger references %d", p.Name, p.GamesPlayed, refs)
		}
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	s := newTestService(t)
	ids := seedPlayers(t, s, "zoe", "adam", "mia")
	if _, err := s.RecordMatch(ids["mia"], ids["zoe"], 11, 4, nil); err != nil {
		t.Fatal(err)
	}

	board := s.Leaderboard()
	if len(board) != 3 {
		t.Fatalf("len(board) = %d, want 3", len(board))
	}
	// mia leads; adam and zoe: adam at baseline beats zoe below baseline
	wantNames := []string{"mia", "adam", "zoe"}
	for i, want := range wantNames {
		if board[i].Name != want {
			t.Errorf("board[%d] = %s, want %s", i, board[i].Name, want)
		}
		if board[i].Rank != i+1 {
			t.Errorf("board[%d].Rank = %d, want %d", i, board[i].Rank, i+1)
		}
	}
}

func TestLeaderboardTiesBrokenByName(t *testing.T) {
	s := newTestService(t)
	seedPlayers(t, s, "carol", "alice", "bob")

	board := s.Leaderboard()
	wantNames := []string{"alice", "bob", "carol"}
	for i, want := range wantNames {
		if board[i].Name != want {
			t.Errorf("board[%d] = %s, want %s", i, board[i].Name, want)
		}
	}
}

func TestListMatchesNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	t1, t2 := base, base.Add(time.Hour)

	s := newTestService(t)
	ids := seedPlayers(t, s, "alice", "bob")
	if _, err := s.RecordMatch(ids["alice"], ids["bob"], 11, 7, &t1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordMatch(ids["bob"], ids["alice"], 11, 2, &t2); err != nil {
		t.Fatal(err)
	}

	matches := s.ListMatches()
	if len(matches) != 2 {
		t.Fatalf("len(matches) = %d, want 2", len(matches))
	}
	if !matches[0].PlayedAt.Equal(t2) || !matches[1].PlayedAt.Equal(t1) {
		t.Errorf("matches not newest-first: %v, %v", matches[0].PlayedAt, matches[1].PlayedAt)
	}
}

func TestImportReplaysHistory(t *testing.T) {
	base := time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC)

	s := newTestService(t)
	resp, err := s.Import(core.ImportRequest{
		Players: []core.ImportPlayer{{Name: "alice"}, {Name: "bob"}},
		Matches: []core.ImportMatch{
			{WinnerName: "alice", LoserName: "bob", WinnerScore: 11, LoserScore: 9, PlayedAt: base},
		},
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if resp.Players != 2 || resp.Matches != 1 {
		t.Errorf("resp = %+v, want 2 players, 1 match", resp)
	}

	// Imported ratings come from replay, never from the source dataset
	board := s.Leaderboard()
	if board[0].Name != "alice" || math.Abs(board[0].Rating-1016) > tolerance {
		t.Errorf("board[0] = %+v, want alice at 1016", board[0])
	}
	if board[1].Name != "bob" || math.Abs(board[1].Rating-984) > tolerance {
		t.Errorf("board[1] = %+v, want bob at 984", board[1])
	}
}

func TestImportValidation(t *testing.T) {
	s := newTestService(t)

	_, err := s.Import(core.ImportRequest{
		Players: []core.ImportPlayer{{Name: "alice"}, {Name: "Alice"}},
	})
	if !errors.Is(err, core.ErrDuplicateName) {
		t.Errorf("duplicate import name: err = %v, want ErrDuplicateName", err)
	}

	_, err = s.Import(core.ImportRequest{
		Players: []core.ImportPlayer{{Name: "alice"}},
		Matches: []core.ImportMatch{
			{WinnerName: "alice", LoserName: "ghost", WinnerScore: 11, LoserScore: 1, PlayedAt: time.Now()},
		},
	})
	if !errors.Is(err, core.ErrUnknownPlayer) {
		t.Errorf("unknown import reference: err = %v, want ErrUnknownPlayer", err)
	}
}

func TestAdminTokenRoundTrip(t *testing.T) {
	s := newTestService(t)

	token, expiresAt, err := s.GenerateAdminToken()
	if err != nil {
		t.Fatalf("GenerateAdminToken failed: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Error("token already expired")
	}

	subject, claims, err := s.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if subject != "admin" {
		t.Errorf("subject = %q, want admin", subject)
	}
	if claims["role"] != "admin" {
		t.Errorf("role claim = %v, want admin", claims["role"])
	}
}

func TestAuthenticateAdminDisabled(t *testing.T) {
	s := newTestService(t)
	if err := s.AuthenticateAdmin("anything"); err == nil {
		t.Fatal("expected error with no admin hash configured")
	}
}
