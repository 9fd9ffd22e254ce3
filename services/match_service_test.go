// services/match_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/wfunc/crossroads/game"
	"github.com/wfunc/crossroads/models"
	"github.com/wfunc/crossroads/persistence"
)

func summaryFixture(sessionID string, winner, loser string, loserFinished bool) game.Summary {
	return game.Summary{
		SessionID: sessionID,
		Rounds:    12,
		Turns:     24,
		Duration:  3 * time.Minute,
		Rankings: []game.Ranking{
			{Rank: 1, PlayerID: "p1", Name: winner, Role: models.RoleMerchant, Finished: true, FinishOrder: 1},
			{Rank: 2, PlayerID: "p2", Name: loser, Role: models.RoleScholar, Finished: loserFinished, FinishOrder: 2},
		},
	}
}

func TestRecordMatchAndStanding(t *testing.T) {
	svc := NewMatchService(persistence.NewMemory())

	if err := svc.RecordMatch(summaryFixture("match-1", "alice", "bob", true)); err != nil {
		t.Fatalf("RecordMatch: %v", err)
	}
	if err := svc.RecordMatch(summaryFixture("match-2", "bob", "alice", false)); err != nil {
		t.Fatalf("RecordMatch: %v", err)
	}

	alice, err := svc.Standing("alice")
	if err != nil {
		t.Fatalf("Standing(alice): %v", err)
	}
	if alice.TotalGames != 2 || alice.Wins != 1 || alice.Finishes != 1 {
		t.Fatalf("alice standing = %+v, want 2 games, 1 win, 1 finish", alice)
	}

	bob, err := svc.Standing("bob")
	if err != nil {
		t.Fatalf("Standing(bob): %v", err)
	}
	if bob.TotalGames != 2 || bob.Wins != 1 || bob.Finishes != 2 {
		t.Fatalf("bob standing = %+v, want 2 games, 1 win, 2 finishes", bob)
	}

	if _, err := svc.Standing("nobody"); err != persistence.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestRecordMatchRejectsDuplicateSession(t *testing.T) {
	svc := NewMatchService(persistence.NewMemory())

	if err := svc.RecordMatch(summaryFixture("match-1", "alice", "bob", true)); err != nil {
		t.Fatalf("RecordMatch: %v", err)
	}
	if err := svc.RecordMatch(summaryFixture("match-1", "alice", "bob", true)); err == nil {
		t.Fatal("expected a duplicate session id to be rejected")
	}
}

func TestRecentMatchesNewestFirst(t *testing.T) {
	svc := NewMatchService(persistence.NewMemory())

	for _, id := range []string{"match-1", "match-2", "match-3"} {
		if err := svc.RecordMatch(summaryFixture(id, "alice", "bob", true)); err != nil {
			t.Fatalf("RecordMatch(%s): %v", id, err)
		}
	}

	records, err := svc.RecentMatches(2)
	if err != nil {
		t.Fatalf("RecentMatches: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].SessionID != "match-3" || records[1].SessionID != "match-2" {
		t.Fatalf("expected newest first, got %s then %s", records[0].SessionID, records[1].SessionID)
	}
}
