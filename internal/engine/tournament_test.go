package engine

import (
	"strings"
	"testing"
	"time"

	"battlezone/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTournament_Validation(t *testing.T) {
	f := newFixture(t)
	valid := TournamentInput{
		Game:            "bgmi",
		Name:            "Cup",
		MaxParticipants: 10,
		ScheduledAt:     testNow.Add(time.Hour),
	}

	tr, err := f.eng.CreateTournament(f.ctx, f.admin.ID, valid)
	require.NoError(t, err)
	assert.Equal(t, domain.GameBGMI, tr.Game)
	assert.Equal(t, "0", tr.RoomID)
	assert.Equal(t, f.admin.ID, tr.OwnerAdminID)

	tests := []struct {
		name   string
		mutate func(in *TournamentInput)
	}{
		{name: "unknown game", mutate: func(in *TournamentInput) { in.Game = "chess" }},
		{name: "empty name", mutate: func(in *TournamentInput) { in.Name = "  " }},
		{name: "long name", mutate: func(in *TournamentInput) { in.Name = strings.Repeat("x", 51) }},
		{name: "long description", mutate: func(in *TournamentInput) { in.Description = strings.Repeat("x", 256) }},
		{name: "room id not numeric", mutate: func(in *TournamentInput) { in.RoomID = "abc" }},
		{name: "negative fee", mutate: func(in *TournamentInput) { in.EntryFee = -1 }},
		{name: "negative per kill prize", mutate: func(in *TournamentInput) { in.PerKillPrize = -5 }},
		{name: "no capacity", mutate: func(in *TournamentInput) { in.MaxParticipants = 0 }},
		{name: "scheduled now", mutate: func(in *TournamentInput) { in.ScheduledAt = testNow }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.eng.CreateTournament(f.ctx, f.admin.ID, in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestEditTournament(t *testing.T) {
	f := newFixture(t)
	tr := f.tournament(20, 3)
	require.NoError(t, f.join(tr, f.user("a@example.com", 100)))
	require.NoError(t, f.join(tr, f.user("b@example.com", 100)))

	one, two, five := 1, 2, 5
	name := "Renamed"

	_, err := f.eng.EditTournament(f.ctx, f.admin.ID, tr.ID, TournamentPatch{MaxParticipants: &one})
	assert.ErrorIs(t, err, domain.ErrCapacityViolation)

	got, err := f.eng.EditTournament(f.ctx, f.admin.ID, tr.ID, TournamentPatch{MaxParticipants: &two, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, 2, got.MaxParticipants)
	assert.Equal(t, "Renamed", f.reloadTournament(tr).Name)

	past := testNow.Add(-time.Hour)
	_, err = f.eng.EditTournament(f.ctx, f.admin.ID, tr.ID, TournamentPatch{ScheduledAt: &past})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.eng.EditTournament(f.ctx, f.admin.ID+1000, tr.ID, TournamentPatch{MaxParticipants: &five})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	winner, err := f.store.ListParticipants(f.ctx, tr.ID)
	require.NoError(t, err)
	_, err = f.eng.EndTournament(f.ctx, f.admin.ID, tr.ID, winner[0].UserID)
	require.NoError(t, err)
	_, err = f.eng.EditTournament(f.ctx, f.admin.ID, tr.ID, TournamentPatch{MaxParticipants: &five})
	assert.ErrorIs(t, err, domain.ErrAlreadyEnded)
	_, err = f.eng.UpdateRoom(f.ctx, f.admin.ID, tr.ID, "42", "pw")
	assert.ErrorIs(t, err, domain.ErrAlreadyEnded)
}

func TestDeleteTournament(t *testing.T) {
	f := newFixture(t)
	empty := f.tournament(20, 3)
	busy := f.tournament(20, 3)
	require.NoError(t, f.join(busy, f.user("a@example.com", 100)))

	assert.ErrorIs(t, f.eng.DeleteTournament(f.ctx, f.admin.ID, busy.ID), domain.ErrHasParticipants)
	assert.ErrorIs(t, f.eng.DeleteTournament(f.ctx, f.admin.ID+1000, empty.ID), domain.ErrNotFound)
	require.NoError(t, f.eng.DeleteTournament(f.ctx, f.admin.ID, empty.ID))
	_, err := f.eng.AdminTournament(f.ctx, f.admin.ID, empty.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdminTournamentsScopes(t *testing.T) {
	f := newFixture(t)
	u := f.user("a@example.com", 100)
	live := f.tournament(0, 3)
	done := f.tournament(0, 3)
	require.NoError(t, f.join(done, u))
	_, err := f.eng.EndTournament(f.ctx, f.admin.ID, done.ID, u.ID)
	require.NoError(t, err)

	all, err := f.eng.AdminTournaments(f.ctx, f.admin.ID, ScopeAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	current, err := f.eng.AdminTournaments(f.ctx, f.admin.ID, ScopeCurrent)
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, live.ID, current[0].ID)

	history, err := f.eng.AdminTournaments(f.ctx, f.admin.ID, ScopeHistory)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, done.ID, history[0].ID)

	_, err = f.eng.AdminTournaments(f.ctx, f.admin.ID, "bogus")
	assert.ErrorIs(t, err, domain.ErrValidation)

	roster, err := f.eng.Participants(f.ctx, f.admin.ID, done.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, u.ID, roster[0].UserID)

	room, err := f.eng.UpdateRoom(f.ctx, f.admin.ID, live.ID, "987", "pw")
	require.NoError(t, err)
	assert.Equal(t, "987", room.RoomID)
	_, err = f.eng.UpdateRoom(f.ctx, f.admin.ID, live.ID, "room", "pw")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
