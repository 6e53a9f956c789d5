package engine

import (
	"sync"
	"testing"
	"time"

	"battlezone/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestJoin_DebitsFeeAndFillsCapacity(t *testing.T) {
	f := newFixture(t)
	first := f.user("first@example.com", 100)
	second := f.user("second@example.com", 100)
	tr := f.tournament(20, 1)

	require.NoError(t, f.join(tr, first))
	assert.Equal(t, int64(80), f.balance(first))
	assert.Equal(t, 1, f.reloadTournament(tr).CurrentParticipants)

	entries := f.entries(first, domain.EntryTournamentEntry)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(20), entries[0].Amount)
	assert.Equal(t, domain.EffectDecrease, entries[0].BalanceEffect)
	assert.Equal(t, "Entry fee paid for tournament: Sunday Cup", entries[0].Message)
	assert.Equal(t, tr.ID, entries[0].ReferenceID)

	err := f.join(tr, second)
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, int64(100), f.balance(second))
}

func TestJoin_Rejections(t *testing.T) {
	f := newFixture(t)
	rich := f.user("rich@example.com", 1000)
	poor := f.user("poor@example.com", 5)
	open := f.tournament(20, 2)
	full := f.tournament(20, 1)
	require.NoError(t, f.join(full, f.user("filler@example.com", 100)))
	require.NoError(t, f.join(open, rich))

	past := &domain.Tournament{OwnerAdminID: f.admin.ID, Game: domain.GameBGMI, Name: "old", MaxParticipants: 5, ScheduledAt: testNow.Add(-time.Minute)}
	require.NoError(t, f.store.CreateTournament(f.ctx, past))
	now := &domain.Tournament{OwnerAdminID: f.admin.ID, Game: domain.GameBGMI, Name: "now", MaxParticipants: 5, ScheduledAt: testNow}
	require.NoError(t, f.store.CreateTournament(f.ctx, now))
	ended := &domain.Tournament{OwnerAdminID: f.admin.ID, Game: domain.GameBGMI, Name: "done", MaxParticipants: 5, ScheduledAt: testNow.Add(time.Hour), IsEnded: true}
	require.NoError(t, f.store.CreateTournament(f.ctx, ended))

	tests := []struct {
		name string
		req  JoinRequest
		want error
	}{
		{name: "missing tournament", req: JoinRequest{TournamentID: 9999, UserID: rich.ID, PlayerLevel: 50}, want: domain.ErrNotFound},
		{name: "scheduled in the past", req: JoinRequest{TournamentID: past.ID, UserID: rich.ID, PlayerLevel: 50}, want: domain.ErrNotFound},
		{name: "scheduled right now", req: JoinRequest{TournamentID: now.ID, UserID: rich.ID, PlayerLevel: 50}, want: domain.ErrNotFound},
		{name: "ended", req: JoinRequest{TournamentID: ended.ID, UserID: rich.ID, PlayerLevel: 50}, want: domain.ErrNotFound},
		{name: "already joined", req: JoinRequest{TournamentID: open.ID, UserID: rich.ID, PlayerLevel: 50}, want: domain.ErrAlreadyParticipated},
		{name: "full beats missing account", req: JoinRequest{TournamentID: full.ID, UserID: 9999, PlayerLevel: 50}, want: domain.ErrCapacityExceeded},
		{name: "missing account", req: JoinRequest{TournamentID: open.ID, UserID: 9999, PlayerLevel: 50}, want: domain.ErrAccountNotFound},
		{name: "balance beats level", req: JoinRequest{TournamentID: open.ID, UserID: poor.ID, PlayerLevel: 1}, want: domain.ErrInsufficientBalance},
		{name: "low level", req: JoinRequest{TournamentID: open.ID, UserID: f.user("low@example.com", 100).ID, PlayerLevel: 29}, want: domain.ErrIneligibleLevel},
		{name: "missing player identity", req: JoinRequest{TournamentID: open.ID, UserID: rich.ID}, want: domain.ErrValidation},
		{name: "player identity beats missing tournament", req: JoinRequest{TournamentID: 9999, UserID: rich.ID}, want: domain.ErrValidation},
		{name: "player identity beats full", req: JoinRequest{TournamentID: full.ID, UserID: poor.ID, PlayerUsername: "  ", PlayerUserID: "1"}, want: domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.want != domain.ErrValidation {
				tt.req.PlayerUsername, tt.req.PlayerUserID = "player", "5551234"
			}
			_, err := f.eng.Join(f.ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, 1, f.reloadTournament(open).CurrentParticipants)
	assert.Equal(t, int64(5), f.balance(poor))
}

func TestJoin_ConcurrentRespectsCapacity(t *testing.T) {
	const capacity, extra = 5, 7
	f := newFixture(t)
	tr := f.tournament(10, capacity)

	users := make([]*domain.User, capacity+extra)
	for i := range users {
		users[i] = f.user(string(rune('a'+i))+"@example.com", 10)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		full      int
	)
	for _, u := range users {
		wg.Add(1)
		go func(u *domain.User) {
			defer wg.Done()
			err := f.join(tr, u)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, domain.ErrCapacityExceeded):
				full++
			}
		}(u)
	}
	wg.Wait()

	assert.Equal(t, capacity, successes)
	assert.Equal(t, extra, full)

	got := f.reloadTournament(tr)
	assert.Equal(t, capacity, got.CurrentParticipants)
	roster, err := f.store.ListParticipants(f.ctx, tr.ID)
	require.NoError(t, err)
	assert.Len(t, roster, capacity)

	for _, u := range users {
		assert.GreaterOrEqual(t, f.balance(u), int64(0))
	}
}

func TestJoin_NotifiesAfterCommit(t *testing.T) {
	n := &mockNotifier{}
	f := newFixture(t, WithNotifier(n))
	u := f.user("u@example.com", 50)
	tr := f.tournament(20, 2)

	n.On("Notify", mock.Anything, u.ID, mock.MatchedBy(func(ev domain.Event) bool {
		return ev.Type == domain.EventTournamentJoined && ev.ReferenceID == tr.ID && ev.Amount == 20
	})).Once()

	require.NoError(t, f.join(tr, u))
	assert.ErrorIs(t, f.join(tr, u), domain.ErrAlreadyParticipated)
	n.AssertExpectations(t)
}
