package engine

import (
	"testing"

	"battlezone/internal/domain"
	"battlezone/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTournamentReads(t *testing.T) {
	f := newFixture(t)
	player := f.user("player@example.com", 100)
	viewer := f.user("viewer@example.com", 100)
	joined := f.tournament(10, 4)
	open := f.tournament(10, 4)
	require.NoError(t, f.join(joined, player))

	list, err := f.eng.OpenTournaments(f.ctx, player.ID, "bgmi")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, open.ID, list[0].ID)
	assert.Empty(t, list[0].RoomID)
	assert.Empty(t, list[0].RoomPassword)

	_, err = f.eng.OpenTournaments(f.ctx, player.ID, "chess")
	assert.ErrorIs(t, err, domain.ErrValidation)

	view, err := f.eng.Tournament(f.ctx, player.ID, joined.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret", view.RoomPassword)
	assert.Nil(t, view.Winners)

	view, err = f.eng.Tournament(f.ctx, viewer.ID, joined.ID)
	require.NoError(t, err)
	assert.Empty(t, view.RoomPassword)

	_, err = f.eng.Tournament(f.ctx, viewer.ID, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ok, err := f.eng.IsParticipant(f.ctx, player.ID, joined.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.eng.IsParticipant(f.ctx, viewer.ID, joined.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	mine, err := f.eng.ParticipatedTournaments(f.ctx, player.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	_, err = f.eng.AwardKill(f.ctx, f.admin.ID, joined.ID, player.ID, 2)
	require.NoError(t, err)
	won, err := f.eng.Winnings(f.ctx, player.ID)
	require.NoError(t, err)
	assert.Empty(t, won, "rewards of live tournaments are not winnings yet")

	_, err = f.eng.EndTournament(f.ctx, f.admin.ID, joined.ID, player.ID)
	require.NoError(t, err)

	view, err = f.eng.Tournament(f.ctx, viewer.ID, joined.ID)
	require.NoError(t, err)
	require.Len(t, view.Winners, 1)
	assert.Equal(t, player.ID, view.Winners[0].UserID)

	mine, err = f.eng.ParticipatedTournaments(f.ctx, player.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
	won, err = f.eng.Winnings(f.ctx, player.ID)
	require.NoError(t, err)
	assert.Len(t, won, 1)
}

func TestWalletRequests(t *testing.T) {
	f := newFixture(t)
	u := f.user("u@example.com", 150)

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{name: "deposit below minimum", run: func() error {
			_, err := f.eng.RequestDeposit(f.ctx, u.ID, 9, 1, "u@upi")
			return err
		}, want: domain.ErrValidation},
		{name: "deposit without reference", run: func() error {
			_, err := f.eng.RequestDeposit(f.ctx, u.ID, 10, 0, "u@upi")
			return err
		}, want: domain.ErrValidation},
		{name: "deposit without upi", run: func() error {
			_, err := f.eng.RequestDeposit(f.ctx, u.ID, 10, 1, " ")
			return err
		}, want: domain.ErrValidation},
		{name: "deposit for unknown account", run: func() error {
			_, err := f.eng.RequestDeposit(f.ctx, 9999, 10, 1, "u@upi")
			return err
		}, want: domain.ErrAccountNotFound},
		{name: "withdrawal below minimum", run: func() error {
			_, err := f.eng.RequestWithdrawal(f.ctx, u.ID, 99, "u@upi")
			return err
		}, want: domain.ErrValidation},
		{name: "withdrawal above balance", run: func() error {
			_, err := f.eng.RequestWithdrawal(f.ctx, u.ID, 151, "u@upi")
			return err
		}, want: domain.ErrInsufficientBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.want)
		})
	}

	w, err := f.eng.RequestWithdrawal(f.ctx, u.ID, 150, "u@upi")
	require.NoError(t, err)
	assert.Equal(t, domain.TransferPending, w.Status)
	assert.Equal(t, int64(150), f.balance(u), "requests do not move money")

	_, _, err = f.eng.History(f.ctx, u.ID, "refund", store.Page{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
