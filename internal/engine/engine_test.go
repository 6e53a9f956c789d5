package engine

import (
	"context"
	"testing"
	"time"

	"battlezone/internal/domain"
	"battlezone/internal/store"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, accountID uint, event domain.Event) {
	m.Called(ctx, accountID, event)
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *store.MemoryStore
	eng   *Engine
	admin *domain.User
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	s := store.NewMemoryStore()
	f := &fixture{t: t, ctx: context.Background(), store: s}
	require.NoError(t, store.SeedGames(f.ctx, s))
	f.eng = New(s, append([]Option{WithClock(func() time.Time { return testNow })}, opts...)...)
	f.admin = &domain.User{Name: "admin", Email: "admin@example.com", Role: domain.RoleAdmin}
	require.NoError(t, s.CreateUser(f.ctx, f.admin))
	return f
}

func (f *fixture) user(email string, balance int64) *domain.User {
	f.t.Helper()
	u := &domain.User{Name: email, Email: email, Balance: balance}
	require.NoError(f.t, f.store.CreateUser(f.ctx, u))
	return u
}

func (f *fixture) tournament(fee int64, maxParticipants int) *domain.Tournament {
	f.t.Helper()
	t, err := f.eng.CreateTournament(f.ctx, f.admin.ID, TournamentInput{
		Game:            domain.GameBGMI,
		Name:            "Sunday Cup",
		RoomID:          "1234",
		RoomPassword:    "secret",
		EntryFee:        fee,
		Prize:           500,
		PerKillPrize:    10,
		MaxParticipants: maxParticipants,
		ScheduledAt:     testNow.Add(time.Hour),
	})
	require.NoError(f.t, err)
	return t
}

func (f *fixture) join(t *domain.Tournament, u *domain.User) error {
	_, err := f.eng.Join(f.ctx, JoinRequest{
		TournamentID:   t.ID,
		UserID:         u.ID,
		PlayerUsername: "player",
		PlayerUserID:   "5551234",
		PlayerLevel:    42,
	})
	return err
}

func (f *fixture) balance(u *domain.User) int64 {
	f.t.Helper()
	b, err := f.eng.Balance(f.ctx, u.ID)
	require.NoError(f.t, err)
	return b
}

func (f *fixture) reloadTournament(t *domain.Tournament) *domain.Tournament {
	f.t.Helper()
	got, err := f.store.GetTournament(f.ctx, t.ID)
	require.NoError(f.t, err)
	return got
}

func (f *fixture) entries(u *domain.User, kind domain.EntryKind) []domain.LedgerEntry {
	f.t.Helper()
	es, _, err := f.eng.History(f.ctx, u.ID, kind, store.Page{})
	require.NoError(f.t, err)
	return es
}
