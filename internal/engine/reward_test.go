package engine

import (
	"sync"
	"testing"

	"battlezone/internal/domain"
	"battlezone/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAwardKill_CreditsOnce(t *testing.T) {
	f := newFixture(t)
	u := f.user("u@example.com", 100)
	tr := f.tournament(20, 4)
	require.NoError(t, f.join(tr, u))

	r, err := f.eng.AwardKill(f.ctx, f.admin.ID, tr.ID, u.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(50), r.Amount)
	assert.Equal(t, domain.RewardKill, r.Kind)
	assert.Equal(t, int64(130), f.balance(u))

	_, err = f.eng.AwardKill(f.ctx, f.admin.ID, tr.ID, u.ID, 5)
	assert.ErrorIs(t, err, domain.ErrDuplicateReward)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.Equal(t, int64(130), f.balance(u))

	entries := f.entries(u, domain.EntryKillReward)
	require.Len(t, entries, 1)
	assert.Equal(t, "Kill reward: 5 kills in Sunday Cup - Reward: 50", entries[0].Message)
	assert.Equal(t, domain.EffectIncrease, entries[0].BalanceEffect)
}

func TestAwardKill_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	u := f.user("u@example.com", 100)
	tr := f.tournament(0, 4)
	require.NoError(t, f.join(tr, u))

	const attempts = 8
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.eng.AwardKill(f.ctx, f.admin.ID, tr.ID, u.ID, 3); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, int64(130), f.balance(u))
	rewards, err := f.store.ListRewards(f.ctx, store.RewardFilter{TournamentID: tr.ID})
	require.NoError(t, err)
	assert.Len(t, rewards, 1)
}

func TestAwardKill_Rejections(t *testing.T) {
	f := newFixture(t)
	u := f.user("u@example.com", 100)
	outsider := f.user("out@example.com", 100)
	other := &domain.User{Name: "other", Email: "other-admin@example.com", Role: domain.RoleAdmin}
	require.NoError(t, f.store.CreateUser(f.ctx, other))
	tr := f.tournament(20, 4)
	require.NoError(t, f.join(tr, u))
	done := f.tournament(20, 4)
	require.NoError(t, f.join(done, u))
	_, err := f.eng.EndTournament(f.ctx, f.admin.ID, done.ID, u.ID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		adminID uint
		tid     uint
		uid     uint
		kills   int
		want    error
	}{
		{name: "negative kills", adminID: f.admin.ID, tid: tr.ID, uid: u.ID, kills: -1, want: domain.ErrValidation},
		{name: "too many kills", adminID: f.admin.ID, tid: tr.ID, uid: u.ID, kills: 101, want: domain.ErrValidation},
		{name: "not the owner", adminID: other.ID, tid: tr.ID, uid: u.ID, kills: 1, want: domain.ErrNotFound},
		{name: "missing tournament", adminID: f.admin.ID, tid: 9999, uid: u.ID, kills: 1, want: domain.ErrNotFound},
		{name: "ended", adminID: f.admin.ID, tid: done.ID, uid: u.ID, kills: 1, want: domain.ErrAlreadyEnded},
		{name: "not a participant", adminID: f.admin.ID, tid: tr.ID, uid: outsider.ID, kills: 1, want: domain.ErrNotAParticipant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.eng.AwardKill(f.ctx, tt.adminID, tt.tid, tt.uid, tt.kills)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, int64(60), f.balance(u))
}

func TestAwardKill_ZeroKills(t *testing.T) {
	f := newFixture(t)
	u := f.user("u@example.com", 100)
	tr := f.tournament(0, 4)
	require.NoError(t, f.join(tr, u))

	r, err := f.eng.AwardKill(f.ctx, f.admin.ID, tr.ID, u.ID, 0)
	require.NoError(t, err)
	assert.Zero(t, r.Amount)
	assert.Equal(t, int64(100), f.balance(u))

	_, err = f.eng.AwardKill(f.ctx, f.admin.ID, tr.ID, u.ID, 4)
	assert.ErrorIs(t, err, domain.ErrDuplicateReward)
}

func TestEndTournament_ReclassifiesKillReward(t *testing.T) {
	n := &mockNotifier{}
	f := newFixture(t, WithNotifier(n))
	u := f.user("u@example.com", 100)
	tr := f.tournament(0, 4)

	n.On("Notify", mock.Anything, u.ID, mock.Anything).Return()
	require.NoError(t, f.join(tr, u))
	_, err := f.eng.AwardKill(f.ctx, f.admin.ID, tr.ID, u.ID, 5)
	require.NoError(t, err)
	before := f.balance(u)
	require.Equal(t, int64(150), before)

	res, err := f.eng.EndTournament(f.ctx, f.admin.ID, tr.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, res.Tournament.IsEnded)
	require.NotNil(t, res.Reward)
	assert.Equal(t, domain.RewardWinnings, res.Reward.Kind)

	assert.Equal(t, before, f.balance(u))
	assert.Empty(t, f.entries(u, domain.EntryKillReward))
	won := f.entries(u, domain.EntryTournamentWinnings)
	require.Len(t, won, 1)
	assert.Equal(t, int64(50), won[0].Amount)

	_, err = f.store.FindReward(f.ctx, tr.ID, u.ID, domain.RewardKill)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	rewards, err := f.eng.Winnings(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, rewards, 1)
	assert.Equal(t, domain.RewardWinnings, rewards[0].Kind)

	n.AssertCalled(t, "Notify", mock.Anything, u.ID, mock.MatchedBy(func(ev domain.Event) bool {
		return ev.Type == domain.EventTournamentWon && ev.Amount == 50
	}))
}

func TestEndTournament_WithoutKillRewardPaysNothing(t *testing.T) {
	f := newFixture(t)
	u := f.user("u@example.com", 100)
	tr := f.tournament(20, 4)
	require.NoError(t, f.join(tr, u))

	res, err := f.eng.EndTournament(f.ctx, f.admin.ID, tr.ID, u.ID)
	require.NoError(t, err)
	assert.Nil(t, res.Reward)
	assert.Equal(t, int64(80), f.balance(u))
	assert.True(t, f.reloadTournament(tr).IsEnded)
}

func TestEndTournament_Rejections(t *testing.T) {
	f := newFixture(t)
	u := f.user("u@example.com", 100)
	outsider := f.user("out@example.com", 100)
	tr := f.tournament(0, 4)
	require.NoError(t, f.join(tr, u))

	_, err := f.eng.EndTournament(f.ctx, f.admin.ID, tr.ID, outsider.ID)
	assert.ErrorIs(t, err, domain.ErrNotAParticipant)
	assert.False(t, f.reloadTournament(tr).IsEnded)

	_, err = f.eng.EndTournament(f.ctx, outsider.ID, tr.ID, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.eng.EndTournament(f.ctx, f.admin.ID, tr.ID, u.ID)
	require.NoError(t, err)
	_, err = f.eng.EndTournament(f.ctx, f.admin.ID, tr.ID, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
