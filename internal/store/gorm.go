package store

import (
	"context"
	"errors"

	"battlezone/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the SQL-backed Store. Open the *gorm.DB with
// TranslateError enabled so unique violations surface as gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open gorm connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// RunAtomic runs fn inside a database transaction
func (s *GormStore) RunAtomic(ctx context.Context, fn func(tx Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.Internal("transaction failed", err)
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *GormStore) locked(ctx context.Context) *gorm.DB {
	return s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

// notFoundOr maps gorm.ErrRecordNotFound to nf and wraps everything else
func notFoundOr(err error, nf *domain.Error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nf
	}
	return domain.Internal(op, err)
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, notFoundOr(err, domain.ErrAccountNotFound, "get user")
	}
	return &u, nil
}

func (s *GormStore) LockUser(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	if err := s.locked(ctx).First(&u, id).Error; err != nil {
		return nil, notFoundOr(err, domain.ErrAccountNotFound, "lock user")
	}
	return &u, nil
}

func (s *GormStore) CreateUser(ctx context.Context, u *domain.User) error {
	if err := s.conn(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Errorf(domain.ErrAlreadyExists, "account %s already exists", u.Email)
		}
		return domain.Internal("create user", err)
	}
	return nil
}

func (s *GormStore) AdjustBalance(ctx context.Context, userID uint, delta int64) (*domain.User, error) {
	if delta != 0 {
		// The guard in the WHERE clause keeps the balance non-negative even
		// without a prior row lock.
		res := s.conn(ctx).Model(&domain.User{}).
			Where("id = ? AND balance + ? >= 0", userID, delta).
			Update("balance", gorm.Expr("balance + ?", delta))
		if res.Error != nil {
			return nil, domain.Internal("adjust balance", res.Error)
		}
		if res.RowsAffected == 0 {
			if _, err := s.GetUser(ctx, userID); err != nil {
				return nil, err
			}
			return nil, domain.ErrInsufficientBalance
		}
	}
	return s.GetUser(ctx, userID)
}

func (s *GormStore) ListUsers(ctx context.Context, page Page) ([]domain.User, int64, error) {
	var total int64
	if err := s.conn(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, domain.Internal("count users", err)
	}
	var users []domain.User
	if err := s.conn(ctx).Order("id").Offset(page.Offset()).Limit(page.Limit()).Find(&users).Error; err != nil {
		return nil, 0, domain.Internal("list users", err)
	}
	return users, total, nil
}

func (s *GormStore) CreateTournament(ctx context.Context, t *domain.Tournament) error {
	if err := s.conn(ctx).Create(t).Error; err != nil {
		return domain.Internal("create tournament", err)
	}
	return nil
}

func (s *GormStore) GetTournament(ctx context.Context, id uint) (*domain.Tournament, error) {
	var t domain.Tournament
	if err := s.conn(ctx).First(&t, id).Error; err != nil {
		return nil, notFoundOr(err, domain.ErrNotFound, "get tournament")
	}
	return &t, nil
}

func (s *GormStore) LockTournament(ctx context.Context, id uint) (*domain.Tournament, error) {
	var t domain.Tournament
	if err := s.locked(ctx).First(&t, id).Error; err != nil {
		return nil, notFoundOr(err, domain.ErrNotFound, "lock tournament")
	}
	return &t, nil
}

func (s *GormStore) SaveTournament(ctx context.Context, t *domain.Tournament) error {
	if err := s.conn(ctx).Save(t).Error; err != nil {
		return domain.Internal("save tournament", err)
	}
	return nil
}

func (s *GormStore) DeleteTournament(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&domain.Tournament{}, id)
	if res.Error != nil {
		return domain.Internal("delete tournament", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *GormStore) ListTournaments(ctx context.Context, f TournamentFilter) ([]domain.Tournament, error) {
	q := s.conn(ctx).Model(&domain.Tournament{})
	if f.OwnerAdminID != 0 {
		q = q.Where("admin_id = ?", f.OwnerAdminID)
	}
	if f.Game != "" {
		q = q.Where("game = ?", f.Game)
	}
	if f.Ended != nil {
		q = q.Where("is_ended = ?", *f.Ended)
	}
	if !f.ScheduledAfter.IsZero() {
		q = q.Where("scheduled_at > ?", f.ScheduledAfter)
	}
	if f.NotJoinedBy != 0 {
		q = q.Where("id NOT IN (?)", s.conn(ctx).Model(&domain.Participant{}).Select("tournament_id").Where("user_id = ?", f.NotJoinedBy))
	}
	if f.JoinedBy != 0 {
		q = q.Where("id IN (?)", s.conn(ctx).Model(&domain.Participant{}).Select("tournament_id").Where("user_id = ?", f.JoinedBy))
	}
	var out []domain.Tournament
	if err := q.Order("scheduled_at desc").Order("id desc").Find(&out).Error; err != nil {
		return nil, domain.Internal("list tournaments", err)
	}
	return out, nil
}

func (s *GormStore) IncrementParticipants(ctx context.Context, tournamentID uint) error {
	res := s.conn(ctx).Model(&domain.Tournament{}).
		Where("id = ? AND current_participants < max_participants", tournamentID).
		UpdateColumn("current_participants", gorm.Expr("current_participants + 1"))
	if res.Error != nil {
		return domain.Internal("increment participants", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetTournament(ctx, tournamentID); err != nil {
			return err
		}
		return domain.ErrCapacityExceeded
	}
	return nil
}

func (s *GormStore) FindParticipant(ctx context.Context, tournamentID, userID uint) (*domain.Participant, error) {
	var p domain.Participant
	err := s.conn(ctx).Where("tournament_id = ? AND user_id = ?", tournamentID, userID).First(&p).Error
	if err != nil {
		return nil, notFoundOr(err, domain.ErrNotFound, "find participant")
	}
	return &p, nil
}

func (s *GormStore) CountParticipants(ctx context.Context, tournamentID uint) (int64, error) {
	var n int64
	if err := s.conn(ctx).Model(&domain.Participant{}).Where("tournament_id = ?", tournamentID).Count(&n).Error; err != nil {
		return 0, domain.Internal("count participants", err)
	}
	return n, nil
}

func (s *GormStore) CreateParticipant(ctx context.Context, p *domain.Participant) error {
	if err := s.conn(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyParticipated
		}
		return domain.Internal("create participant", err)
	}
	return nil
}

func (s *GormStore) ListParticipants(ctx context.Context, tournamentID uint) ([]domain.Participant, error) {
	var out []domain.Participant
	if err := s.conn(ctx).Where("tournament_id = ?", tournamentID).Order("joined_at").Order("id").Find(&out).Error; err != nil {
		return nil, domain.Internal("list participants", err)
	}
	return out, nil
}

func (s *GormStore) FindReward(ctx context.Context, tournamentID, userID uint, kind domain.RewardKind) (*domain.Reward, error) {
	var r domain.Reward
	err := s.conn(ctx).Where("tournament_id = ? AND user_id = ? AND kind = ?", tournamentID, userID, kind).First(&r).Error
	if err != nil {
		return nil, notFoundOr(err, domain.ErrNotFound, "find reward")
	}
	return &r, nil
}

func (s *GormStore) CreateReward(ctx context.Context, r *domain.Reward) error {
	if err := s.conn(ctx).Create(r).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateReward
		}
		return domain.Internal("create reward", err)
	}
	return nil
}

func (s *GormStore) SetRewardKind(ctx context.Context, id uint, kind domain.RewardKind) error {
	res := s.conn(ctx).Model(&domain.Reward{}).Where("id = ?", id).Update("kind", kind)
	if res.Error != nil {
		return domain.Internal("set reward kind", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *GormStore) ListRewards(ctx context.Context, f RewardFilter) ([]domain.Reward, error) {
	q := s.conn(ctx).Model(&domain.Reward{})
	if f.TournamentID != 0 {
		q = q.Where("winnings.tournament_id = ?", f.TournamentID)
	}
	if f.UserID != 0 {
		q = q.Where("winnings.user_id = ?", f.UserID)
	}
	if f.EndedOnly {
		q = q.Joins("JOIN tournaments ON tournaments.id = winnings.tournament_id").
			Where("tournaments.is_ended = ?", true)
	}
	var out []domain.Reward
	if err := q.Order("winnings.created_at desc").Order("winnings.id desc").Find(&out).Error; err != nil {
		return nil, domain.Internal("list rewards", err)
	}
	return out, nil
}

func (s *GormStore) AppendEntry(ctx context.Context, e *domain.LedgerEntry) error {
	if err := s.conn(ctx).Create(e).Error; err != nil {
		return domain.Internal("append ledger entry", err)
	}
	return nil
}

func (s *GormStore) ReclassifyEntries(ctx context.Context, userID, referenceID uint, from, to domain.EntryKind) (int64, error) {
	res := s.conn(ctx).Model(&domain.LedgerEntry{}).
		Where("user_id = ? AND reference_id = ? AND kind = ?", userID, referenceID, from).
		Update("kind", to)
	if res.Error != nil {
		return 0, domain.Internal("reclassify ledger entries", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) ListEntries(ctx context.Context, f EntryFilter) ([]domain.LedgerEntry, int64, error) {
	q := s.conn(ctx).Model(&domain.LedgerEntry{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	q = q.Session(&gorm.Session{}) // count and find start from the same conditions
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, domain.Internal("count ledger entries", err)
	}
	var out []domain.LedgerEntry
	err := q.Order("created_at desc").Order("id desc").
		Offset(f.Page.Offset()).Limit(f.Page.Limit()).
		Find(&out).Error
	if err != nil {
		return nil, 0, domain.Internal("list ledger entries", err)
	}
	return out, total, nil
}

func (s *GormStore) CreateTransfer(ctx context.Context, t *domain.Transfer) error {
	if err := s.conn(ctx).Create(t).Error; err != nil {
		return domain.Internal("create transfer", err)
	}
	return nil
}

func (s *GormStore) LockTransfer(ctx context.Context, id uint, dir domain.Direction) (*domain.Transfer, error) {
	var t domain.Transfer
	if err := s.locked(ctx).Where("id = ? AND direction = ?", id, dir).First(&t).Error; err != nil {
		return nil, notFoundOr(err, domain.ErrNotFound, "lock transfer")
	}
	return &t, nil
}

func (s *GormStore) SetTransferStatus(ctx context.Context, id uint, status domain.TransferStatus) error {
	res := s.conn(ctx).Model(&domain.Transfer{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return domain.Internal("set transfer status", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *GormStore) ListTransfers(ctx context.Context, f TransferFilter) ([]domain.Transfer, error) {
	q := s.conn(ctx).Model(&domain.Transfer{})
	if f.Direction != "" {
		q = q.Where("direction = ?", f.Direction)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var out []domain.Transfer
	if err := q.Order("created_at desc").Order("id desc").Find(&out).Error; err != nil {
		return nil, domain.Internal("list transfers", err)
	}
	return out, nil
}

func (s *GormStore) CreateRejection(ctx context.Context, r *domain.RejectedTransfer) error {
	if err := s.conn(ctx).Create(r).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Errorf(domain.ErrAlreadyExists, "transfer %d already rejected", r.TransferID)
		}
		return domain.Internal("create rejection", err)
	}
	return nil
}

func (s *GormStore) ListRejections(ctx context.Context, dir domain.Direction) ([]domain.RejectedTransfer, error) {
	var out []domain.RejectedTransfer
	if err := s.conn(ctx).Where("direction = ?", dir).Order("created_at desc").Order("id desc").Find(&out).Error; err != nil {
		return nil, domain.Internal("list rejections", err)
	}
	return out, nil
}

func duplicateGame(err error, g *domain.Game, op string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.Errorf(domain.ErrAlreadyExists, "game %s already exists", g.Name)
	}
	return domain.Internal(op, err)
}

func (s *GormStore) CreateGame(ctx context.Context, g *domain.Game) error {
	if err := s.conn(ctx).Create(g).Error; err != nil {
		return duplicateGame(err, g, "create game")
	}
	return nil
}

func (s *GormStore) GetGame(ctx context.Context, id uint) (*domain.Game, error) {
	var g domain.Game
	if err := s.conn(ctx).First(&g, id).Error; err != nil {
		return nil, notFoundOr(err, domain.ErrNotFound, "get game")
	}
	return &g, nil
}

func (s *GormStore) FindGameByName(ctx context.Context, name string) (*domain.Game, error) {
	var g domain.Game
	if err := s.conn(ctx).Where("name = ?", name).First(&g).Error; err != nil {
		return nil, notFoundOr(err, domain.ErrNotFound, "find game")
	}
	return &g, nil
}

func (s *GormStore) SaveGame(ctx context.Context, g *domain.Game) error {
	if err := s.conn(ctx).Save(g).Error; err != nil {
		return duplicateGame(err, g, "save game")
	}
	return nil
}

func (s *GormStore) DeleteGame(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&domain.Game{}, id)
	if res.Error != nil {
		return domain.Internal("delete game", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *GormStore) ListGames(ctx context.Context) ([]domain.Game, error) {
	var out []domain.Game
	if err := s.conn(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, domain.Internal("list games", err)
	}
	return out, nil
}
