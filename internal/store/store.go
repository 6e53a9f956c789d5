// Package store persists accounts, tournaments, rewards, transfers and the
// wallet ledger. Every multi-row mutation runs inside RunAtomic.
package store

import (
	"context"
	"errors"
	"time"

	"battlezone/internal/domain"
)

// Page is a 1-based pagination window
type Page struct {
	Page     int
	PageSize int
}

// Offset returns the number of rows to skip
func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Limit returns the page size, or -1 for no limit
func (p Page) Limit() int {
	if p.PageSize <= 0 {
		return -1
	}
	return p.PageSize
}

// TournamentFilter narrows ListTournaments. Zero values do not filter.
type TournamentFilter struct {
	OwnerAdminID   uint
	Game           string
	Ended          *bool
	ScheduledAfter time.Time // only tournaments scheduled strictly after this instant
	NotJoinedBy    uint      // exclude tournaments this user has joined
	JoinedBy       uint      // only tournaments this user has joined
}

// RewardFilter narrows ListRewards
type RewardFilter struct {
	TournamentID uint
	UserID       uint
	EndedOnly    bool // only rewards whose tournament has ended
}

// EntryFilter narrows ListEntries
type EntryFilter struct {
	UserID uint
	Kind   domain.EntryKind
	Page   Page
}

// TransferFilter narrows ListTransfers
type TransferFilter struct {
	Direction domain.Direction
	Status    domain.TransferStatus
}

// Tx is the set of row operations available both on a Store and inside
// an atomic unit. The Lock* variants hold a row lock until the enclosing
// unit commits; outside RunAtomic they behave like plain reads.
//
// Missing rows are reported as domain.ErrNotFound; any other failure is a
// domain.KindInternal error.
type Tx interface {
	GetUser(ctx context.Context, id uint) (*domain.User, error)
	LockUser(ctx context.Context, id uint) (*domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) error
	// AdjustBalance adds delta to the balance and returns the updated account.
	// It fails with domain.ErrInsufficientBalance if the result would be negative.
	AdjustBalance(ctx context.Context, userID uint, delta int64) (*domain.User, error)
	ListUsers(ctx context.Context, page Page) ([]domain.User, int64, error)

	CreateTournament(ctx context.Context, t *domain.Tournament) error
	GetTournament(ctx context.Context, id uint) (*domain.Tournament, error)
	LockTournament(ctx context.Context, id uint) (*domain.Tournament, error)
	SaveTournament(ctx context.Context, t *domain.Tournament) error
	DeleteTournament(ctx context.Context, id uint) error
	ListTournaments(ctx context.Context, f TournamentFilter) ([]domain.Tournament, error)
	// IncrementParticipants bumps current_participants by one, failing with
	// domain.ErrCapacityExceeded if the tournament is already full.
	IncrementParticipants(ctx context.Context, tournamentID uint) error

	FindParticipant(ctx context.Context, tournamentID, userID uint) (*domain.Participant, error)
	CountParticipants(ctx context.Context, tournamentID uint) (int64, error)
	// CreateParticipant fails with domain.ErrAlreadyParticipated on a duplicate (tournament, user).
	CreateParticipant(ctx context.Context, p *domain.Participant) error
	ListParticipants(ctx context.Context, tournamentID uint) ([]domain.Participant, error)

	FindReward(ctx context.Context, tournamentID, userID uint, kind domain.RewardKind) (*domain.Reward, error)
	// CreateReward fails with domain.ErrDuplicateReward on a duplicate (tournament, user, kind).
	CreateReward(ctx context.Context, r *domain.Reward) error
	SetRewardKind(ctx context.Context, id uint, kind domain.RewardKind) error
	ListRewards(ctx context.Context, f RewardFilter) ([]domain.Reward, error)

	AppendEntry(ctx context.Context, e *domain.LedgerEntry) error
	// ReclassifyEntries rewrites the kind of a user's entries for one reference id
	// and returns the number of rows changed.
	ReclassifyEntries(ctx context.Context, userID, referenceID uint, from, to domain.EntryKind) (int64, error)
	ListEntries(ctx context.Context, f EntryFilter) ([]domain.LedgerEntry, int64, error)

	CreateTransfer(ctx context.Context, t *domain.Transfer) error
	LockTransfer(ctx context.Context, id uint, dir domain.Direction) (*domain.Transfer, error)
	SetTransferStatus(ctx context.Context, id uint, status domain.TransferStatus) error
	ListTransfers(ctx context.Context, f TransferFilter) ([]domain.Transfer, error)
	CreateRejection(ctx context.Context, r *domain.RejectedTransfer) error
	ListRejections(ctx context.Context, dir domain.Direction) ([]domain.RejectedTransfer, error)

	// CreateGame and SaveGame fail with domain.ErrAlreadyExists on a duplicate name.
	CreateGame(ctx context.Context, g *domain.Game) error
	GetGame(ctx context.Context, id uint) (*domain.Game, error)
	FindGameByName(ctx context.Context, name string) (*domain.Game, error)
	SaveGame(ctx context.Context, g *domain.Game) error
	DeleteGame(ctx context.Context, id uint) error
	ListGames(ctx context.Context) ([]domain.Game, error)
}

// Store is a Tx that can also open atomic units of work
type Store interface {
	Tx
	// RunAtomic runs fn as one serializable unit. If fn returns an error no
	// write made through tx is observable afterwards.
	RunAtomic(ctx context.Context, fn func(tx Tx) error) error
}

// SeedGames adds every missing entry of domain.DefaultGames
func SeedGames(ctx context.Context, tx Tx) error {
	for _, g := range domain.DefaultGames {
		_, err := tx.FindGameByName(ctx, g.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := tx.CreateGame(ctx, &g); err != nil {
			return err
		}
	}
	return nil
}
