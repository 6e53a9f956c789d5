package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"battlezone/internal/domain"
)

// MemoryStore is a process-local Store. All access is serialized by one
// mutex; RunAtomic works on a copy of the state and swaps it in only when
// fn succeeds. It backs tests and DB_DRIVER=memory runs.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
	now   func() time.Time
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState(), now: time.Now}
}

type memState struct {
	seq          uint
	users        map[uint]domain.User
	tournaments  map[uint]domain.Tournament
	participants map[uint]domain.Participant
	rewards      map[uint]domain.Reward
	entries      map[uint]domain.LedgerEntry
	transfers    map[uint]domain.Transfer
	rejections   map[uint]domain.RejectedTransfer
	games        map[uint]domain.Game
}

func newMemState() *memState {
	return &memState{
		users:        map[uint]domain.User{},
		tournaments:  map[uint]domain.Tournament{},
		participants: map[uint]domain.Participant{},
		rewards:      map[uint]domain.Reward{},
		entries:      map[uint]domain.LedgerEntry{},
		transfers:    map[uint]domain.Transfer{},
		rejections:   map[uint]domain.RejectedTransfer{},
		games:        map[uint]domain.Game{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (st *memState) clone() *memState {
	return &memState{
		seq:          st.seq,
		users:        cloneMap(st.users),
		tournaments:  cloneMap(st.tournaments),
		participants: cloneMap(st.participants),
		rewards:      cloneMap(st.rewards),
		entries:      cloneMap(st.entries),
		transfers:    cloneMap(st.transfers),
		rejections:   cloneMap(st.rejections),
		games:        cloneMap(st.games),
	}
}

// ids are unique across tables, which keeps them distinct in tests
func (st *memState) nextID() uint {
	st.seq++
	return st.seq
}

// RunAtomic runs fn against a private copy of the state. fn must only use tx;
// calling back into the MemoryStore from fn deadlocks.
func (s *MemoryStore) RunAtomic(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return domain.Internal("transaction aborted", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(&memTx{st: work, now: s.now}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *MemoryStore) tx() *memTx {
	return &memTx{st: s.state, now: s.now}
}

func (s *MemoryStore) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().GetUser(ctx, id)
}

func (s *MemoryStore) LockUser(ctx context.Context, id uint) (*domain.User, error) {
	return s.GetUser(ctx, id)
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().CreateUser(ctx, u)
}

func (s *MemoryStore) AdjustBalance(ctx context.Context, userID uint, delta int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().AdjustBalance(ctx, userID, delta)
}

func (s *MemoryStore) ListUsers(ctx context.Context, page Page) ([]domain.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().ListUsers(ctx, page)
}

func (s *MemoryStore) CreateTournament(ctx context.Context, t *domain.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().CreateTournament(ctx, t)
}

func (s *MemoryStore) GetTournament(ctx context.Context, id uint) (*domain.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().GetTournament(ctx, id)
}

func (s *MemoryStore) LockTournament(ctx context.Context, id uint) (*domain.Tournament, error) {
	return s.GetTournament(ctx, id)
}

func (s *MemoryStore) SaveTournament(ctx context.Context, t *domain.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().SaveTournament(ctx, t)
}

func (s *MemoryStore) DeleteTournament(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().DeleteTournament(ctx, id)
}

func (s *MemoryStore) ListTournaments(ctx context.Context, f TournamentFilter) ([]domain.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().ListTournaments(ctx, f)
}

func (s *MemoryStore) IncrementParticipants(ctx context.Context, tournamentID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().IncrementParticipants(ctx, tournamentID)
}

func (s *MemoryStore) FindParticipant(ctx context.Context, tournamentID, userID uint) (*domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().FindParticipant(ctx, tournamentID, userID)
}

func (s *MemoryStore) CountParticipants(ctx context.Context, tournamentID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().CountParticipants(ctx, tournamentID)
}

func (s *MemoryStore) CreateParticipant(ctx context.Context, p *domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().CreateParticipant(ctx, p)
}

func (s *MemoryStore) ListParticipants(ctx context.Context, tournamentID uint) ([]domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().ListParticipants(ctx, tournamentID)
}

func (s *MemoryStore) FindReward(ctx context.Context, tournamentID, userID uint, kind domain.RewardKind) (*domain.Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().FindReward(ctx, tournamentID, userID, kind)
}

func (s *MemoryStore) CreateReward(ctx context.Context, r *domain.Reward) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().CreateReward(ctx, r)
}

func (s *MemoryStore) SetRewardKind(ctx context.Context, id uint, kind domain.RewardKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().SetRewardKind(ctx, id, kind)
}

func (s *MemoryStore) ListRewards(ctx context.Context, f RewardFilter) ([]domain.Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().ListRewards(ctx, f)
}

func (s *MemoryStore) AppendEntry(ctx context.Context, e *domain.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().AppendEntry(ctx, e)
}

func (s *MemoryStore) ReclassifyEntries(ctx context.Context, userID, referenceID uint, from, to domain.EntryKind) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().ReclassifyEntries(ctx, userID, referenceID, from, to)
}

func (s *MemoryStore) ListEntries(ctx context.Context, f EntryFilter) ([]domain.LedgerEntry, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().ListEntries(ctx, f)
}

func (s *MemoryStore) CreateTransfer(ctx context.Context, t *domain.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().CreateTransfer(ctx, t)
}

func (s *MemoryStore) LockTransfer(ctx context.Context, id uint, dir domain.Direction) (*domain.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().LockTransfer(ctx, id, dir)
}

func (s *MemoryStore) SetTransferStatus(ctx context.Context, id uint, status domain.TransferStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().SetTransferStatus(ctx, id, status)
}

func (s *MemoryStore) ListTransfers(ctx context.Context, f TransferFilter) ([]domain.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().ListTransfers(ctx, f)
}

func (s *MemoryStore) CreateRejection(ctx context.Context, r *domain.RejectedTransfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().CreateRejection(ctx, r)
}

func (s *MemoryStore) ListRejections(ctx context.Context, dir domain.Direction) ([]domain.RejectedTransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().ListRejections(ctx, dir)
}

func (s *MemoryStore) CreateGame(ctx context.Context, g *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().CreateGame(ctx, g)
}

func (s *MemoryStore) GetGame(ctx context.Context, id uint) (*domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().GetGame(ctx, id)
}

func (s *MemoryStore) FindGameByName(ctx context.Context, name string) (*domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().FindGameByName(ctx, name)
}

func (s *MemoryStore) SaveGame(ctx context.Context, g *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().SaveGame(ctx, g)
}

func (s *MemoryStore) DeleteGame(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().DeleteGame(ctx, id)
}

func (s *MemoryStore) ListGames(ctx context.Context) ([]domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().ListGames(ctx)
}

// memTx operates on one memState without locking
type memTx struct {
	st  *memState
	now func() time.Time
}

func (t *memTx) stamp(ts *time.Time) {
	if ts.IsZero() {
		*ts = t.now()
	}
}

func (t *memTx) GetUser(_ context.Context, id uint) (*domain.User, error) {
	u, ok := t.st.users[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &u, nil
}

func (t *memTx) LockUser(ctx context.Context, id uint) (*domain.User, error) {
	return t.GetUser(ctx, id)
}

func (t *memTx) CreateUser(_ context.Context, u *domain.User) error {
	for _, existing := range t.st.users {
		if existing.Email == u.Email {
			return domain.Errorf(domain.ErrAlreadyExists, "account %s already exists", u.Email)
		}
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	u.ID = t.st.nextID()
	t.stamp(&u.CreatedAt)
	t.stamp(&u.UpdatedAt)
	t.st.users[u.ID] = *u
	return nil
}

func (t *memTx) AdjustBalance(_ context.Context, userID uint, delta int64) (*domain.User, error) {
	u, ok := t.st.users[userID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if u.Balance+delta < 0 {
		return nil, domain.ErrInsufficientBalance
	}
	u.Balance += delta
	u.UpdatedAt = t.now()
	t.st.users[userID] = u
	return &u, nil
}

func paginate[T any](rows []T, page Page) []T {
	off := page.Offset()
	if off >= len(rows) {
		return []T{}
	}
	rows = rows[off:]
	if lim := page.Limit(); lim >= 0 && lim < len(rows) {
		rows = rows[:lim]
	}
	return rows
}

func (t *memTx) ListUsers(_ context.Context, page Page) ([]domain.User, int64, error) {
	out := make([]domain.User, 0, len(t.st.users))
	for _, u := range t.st.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, page), int64(len(out)), nil
}

func (t *memTx) CreateTournament(_ context.Context, tr *domain.Tournament) error {
	tr.ID = t.st.nextID()
	t.stamp(&tr.CreatedAt)
	t.stamp(&tr.UpdatedAt)
	t.st.tournaments[tr.ID] = *tr
	return nil
}

func (t *memTx) GetTournament(_ context.Context, id uint) (*domain.Tournament, error) {
	tr, ok := t.st.tournaments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &tr, nil
}

func (t *memTx) LockTournament(ctx context.Context, id uint) (*domain.Tournament, error) {
	return t.GetTournament(ctx, id)
}

func (t *memTx) SaveTournament(_ context.Context, tr *domain.Tournament) error {
	if _, ok := t.st.tournaments[tr.ID]; !ok {
		return domain.ErrNotFound
	}
	tr.UpdatedAt = t.now()
	t.st.tournaments[tr.ID] = *tr
	return nil
}

func (t *memTx) DeleteTournament(_ context.Context, id uint) error {
	if _, ok := t.st.tournaments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(t.st.tournaments, id)
	return nil
}

func (t *memTx) joined(userID, tournamentID uint) bool {
	for _, p := range t.st.participants {
		if p.UserID == userID && p.TournamentID == tournamentID {
			return true
		}
	}
	return false
}

func (t *memTx) ListTournaments(_ context.Context, f TournamentFilter) ([]domain.Tournament, error) {
	out := []domain.Tournament{}
	for _, tr := range t.st.tournaments {
		switch {
		case f.OwnerAdminID != 0 && tr.OwnerAdminID != f.OwnerAdminID:
			continue
		case f.Game != "" && tr.Game != f.Game:
			continue
		case f.Ended != nil && tr.IsEnded != *f.Ended:
			continue
		case !f.ScheduledAfter.IsZero() && !tr.ScheduledAt.After(f.ScheduledAfter):
			continue
		case f.NotJoinedBy != 0 && t.joined(f.NotJoinedBy, tr.ID):
			continue
		case f.JoinedBy != 0 && !t.joined(f.JoinedBy, tr.ID):
			continue
		}
		out = append(out, tr)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.After(out[j].ScheduledAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (t *memTx) IncrementParticipants(_ context.Context, tournamentID uint) error {
	tr, ok := t.st.tournaments[tournamentID]
	if !ok {
		return domain.ErrNotFound
	}
	if tr.Full() {
		return domain.ErrCapacityExceeded
	}
	tr.CurrentParticipants++
	t.st.tournaments[tournamentID] = tr
	return nil
}

func (t *memTx) FindParticipant(_ context.Context, tournamentID, userID uint) (*domain.Participant, error) {
	for _, p := range t.st.participants {
		if p.TournamentID == tournamentID && p.UserID == userID {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (t *memTx) CountParticipants(_ context.Context, tournamentID uint) (int64, error) {
	var n int64
	for _, p := range t.st.participants {
		if p.TournamentID == tournamentID {
			n++
		}
	}
	return n, nil
}

func (t *memTx) CreateParticipant(_ context.Context, p *domain.Participant) error {
	if t.joined(p.UserID, p.TournamentID) {
		return domain.ErrAlreadyParticipated
	}
	p.ID = t.st.nextID()
	t.stamp(&p.JoinedAt)
	t.st.participants[p.ID] = *p
	return nil
}

func (t *memTx) ListParticipants(_ context.Context, tournamentID uint) ([]domain.Participant, error) {
	out := []domain.Participant{}
	for _, p := range t.st.participants {
		if p.TournamentID == tournamentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) FindReward(_ context.Context, tournamentID, userID uint, kind domain.RewardKind) (*domain.Reward, error) {
	for _, r := range t.st.rewards {
		if r.TournamentID == tournamentID && r.UserID == userID && r.Kind == kind {
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (t *memTx) CreateReward(ctx context.Context, r *domain.Reward) error {
	if _, err := t.FindReward(ctx, r.TournamentID, r.UserID, r.Kind); err == nil {
		return domain.ErrDuplicateReward
	}
	r.ID = t.st.nextID()
	t.stamp(&r.CreatedAt)
	t.st.rewards[r.ID] = *r
	return nil
}

func (t *memTx) SetRewardKind(_ context.Context, id uint, kind domain.RewardKind) error {
	r, ok := t.st.rewards[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Kind = kind
	t.st.rewards[id] = r
	return nil
}

func (t *memTx) ListRewards(_ context.Context, f RewardFilter) ([]domain.Reward, error) {
	out := []domain.Reward{}
	for _, r := range t.st.rewards {
		if f.TournamentID != 0 && r.TournamentID != f.TournamentID {
			continue
		}
		if f.UserID != 0 && r.UserID != f.UserID {
			continue
		}
		if f.EndedOnly {
			if tr, ok := t.st.tournaments[r.TournamentID]; !ok || !tr.IsEnded {
				continue
			}
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (t *memTx) AppendEntry(_ context.Context, e *domain.LedgerEntry) error {
	e.ID = t.st.nextID()
	t.stamp(&e.CreatedAt)
	t.st.entries[e.ID] = *e
	return nil
}

func (t *memTx) ReclassifyEntries(_ context.Context, userID, referenceID uint, from, to domain.EntryKind) (int64, error) {
	var n int64
	for id, e := range t.st.entries {
		if e.UserID == userID && e.ReferenceID == referenceID && e.Kind == from {
			e.Kind = to
			t.st.entries[id] = e
			n++
		}
	}
	return n, nil
}

func (t *memTx) ListEntries(_ context.Context, f EntryFilter) ([]domain.LedgerEntry, int64, error) {
	out := []domain.LedgerEntry{}
	for _, e := range t.st.entries {
		if f.UserID != 0 && e.UserID != f.UserID {
			continue
		}
		if f.Kind != "" && e.Kind != f.Kind {
			continue
		}
		out = append(out, e)
	}
	// ids grow with insertion order, so id desc is newest first
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, f.Page), int64(len(out)), nil
}

func (t *memTx) CreateTransfer(_ context.Context, tr *domain.Transfer) error {
	tr.ID = t.st.nextID()
	t.stamp(&tr.CreatedAt)
	t.stamp(&tr.UpdatedAt)
	t.st.transfers[tr.ID] = *tr
	return nil
}

func (t *memTx) LockTransfer(_ context.Context, id uint, dir domain.Direction) (*domain.Transfer, error) {
	tr, ok := t.st.transfers[id]
	if !ok || tr.Direction != dir {
		return nil, domain.ErrNotFound
	}
	return &tr, nil
}

func (t *memTx) SetTransferStatus(_ context.Context, id uint, status domain.TransferStatus) error {
	tr, ok := t.st.transfers[id]
	if !ok {
		return domain.ErrNotFound
	}
	tr.Status = status
	tr.UpdatedAt = t.now()
	t.st.transfers[id] = tr
	return nil
}

func (t *memTx) ListTransfers(_ context.Context, f TransferFilter) ([]domain.Transfer, error) {
	out := []domain.Transfer{}
	for _, tr := range t.st.transfers {
		if f.Direction != "" && tr.Direction != f.Direction {
			continue
		}
		if f.Status != "" && tr.Status != f.Status {
			continue
		}
		out = append(out, tr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (t *memTx) CreateRejection(_ context.Context, r *domain.RejectedTransfer) error {
	for _, existing := range t.st.rejections {
		if existing.TransferID == r.TransferID {
			return domain.Errorf(domain.ErrAlreadyExists, "transfer %d already rejected", r.TransferID)
		}
	}
	r.ID = t.st.nextID()
	t.stamp(&r.CreatedAt)
	t.st.rejections[r.ID] = *r
	return nil
}

func (t *memTx) ListRejections(_ context.Context, dir domain.Direction) ([]domain.RejectedTransfer, error) {
	out := []domain.RejectedTransfer{}
	for _, r := range t.st.rejections {
		if r.Direction == dir {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (t *memTx) gameNamed(name string, except uint) bool {
	for _, g := range t.st.games {
		if g.Name == name && g.ID != except {
			return true
		}
	}
	return false
}

func (t *memTx) CreateGame(_ context.Context, g *domain.Game) error {
	if t.gameNamed(g.Name, 0) {
		return domain.Errorf(domain.ErrAlreadyExists, "game %s already exists", g.Name)
	}
	g.ID = t.st.nextID()
	t.stamp(&g.CreatedAt)
	t.stamp(&g.UpdatedAt)
	t.st.games[g.ID] = *g
	return nil
}

func (t *memTx) GetGame(_ context.Context, id uint) (*domain.Game, error) {
	g, ok := t.st.games[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &g, nil
}

func (t *memTx) FindGameByName(_ context.Context, name string) (*domain.Game, error) {
	for _, g := range t.st.games {
		if g.Name == name {
			return &g, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (t *memTx) SaveGame(_ context.Context, g *domain.Game) error {
	if _, ok := t.st.games[g.ID]; !ok {
		return domain.ErrNotFound
	}
	if t.gameNamed(g.Name, g.ID) {
		return domain.Errorf(domain.ErrAlreadyExists, "game %s already exists", g.Name)
	}
	g.UpdatedAt = t.now()
	t.st.games[g.ID] = *g
	return nil
}

func (t *memTx) DeleteGame(_ context.Context, id uint) error {
	if _, ok := t.st.games[id]; !ok {
		return domain.ErrNotFound
	}
	delete(t.st.games, id)
	return nil
}

func (t *memTx) ListGames(_ context.Context) ([]domain.Game, error) {
	out := make([]domain.Game, 0, len(t.st.games))
	for _, g := range t.st.games {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
