package api

import (
	"battlezone/internal/domain" // Importing domain models
	"battlezone/internal/engine" // Platform operations
	"battlezone/internal/utils"  // Utility functions
	"net/http"                   // HTTP status codes
	"strconv"                    // String conversion
	"time"                       // Schedule times

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// CreateTournamentRequest represents a new tournament
type CreateTournamentRequest struct {
	Game            string    `json:"game" binding:"required"`             // Catalog game name
	Name            string    `json:"name" binding:"required"`             // Display name
	Description     string    `json:"description"`                         // Optional description
	RoomID          string    `json:"room_id"`                             // Numeric room id
	RoomPassword    string    `json:"room_password"`                       // Room password
	EntryFee        int64     `json:"entry_fee"`                           // Fee debited on join
	Prize           int64     `json:"prize"`                               // Advertised prize
	PerKillPrize    int64     `json:"per_kill_prize"`                      // Credit per kill
	MaxParticipants int       `json:"max_participants" binding:"required"` // Capacity
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`     // Start time
}

// CreateTournamentHandler creates a tournament owned by the caller
func CreateTournamentHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := caller(c) // Get admin ID from context
		if !ok {
			return
		}
		var req CreateTournamentRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request") // If invalid, return bad request
			return
		}
		t, err := d.Engine.CreateTournament(c.Request.Context(), adminID, engine.TournamentInput{
			Game:            req.Game,
			Name:            req.Name,
			Description:     req.Description,
			RoomID:          req.RoomID,
			RoomPassword:    req.RoomPassword,
			EntryFee:        req.EntryFee,
			Prize:           req.Prize,
			PerKillPrize:    req.PerKillPrize,
			MaxParticipants: req.MaxParticipants,
			ScheduledAt:     req.ScheduledAt,
		})
		fields := logrus.Fields{"admin_id": adminID, "name": req.Name} // Log context
		if err != nil {
			d.fail(c, "create_tournament", err, fields)
			return
		}
		fields["tournament_id"] = t.ID
		d.done(c, "create_tournament", fields) // Log creation
		c.JSON(http.StatusCreated, gin.H{"message": "Tournament created", "tournament": t})
	}
}

// ListAdminTournamentsHandler lists the caller's tournaments; filter is all, current or history
func ListAdminTournamentsHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := caller(c) // Get admin ID from context
		if !ok {
			return
		}
		scope := engine.TournamentScope(c.DefaultQuery("filter", string(engine.ScopeAll))) // Listing scope
		ts, err := d.Engine.AdminTournaments(c.Request.Context(), adminID, scope)
		if err != nil {
			d.fail(c, "admin_tournaments", err, logrus.Fields{"admin_id": adminID, "filter": scope})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tournaments": ts})
	}
}

// GetAdminTournamentHandler returns one of the caller's tournaments
func GetAdminTournamentHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := caller(c) // Get admin ID from context
		if !ok {
			return
		}
		id, ok := idParam(c, "id") // Tournament ID
		if !ok {
			return
		}
		t, err := d.Engine.AdminTournament(c.Request.Context(), adminID, id)
		if err != nil {
			d.fail(c, "admin_tournament", err, logrus.Fields{"admin_id": adminID, "tournament_id": id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tournament": t})
	}
}

// EditTournamentRequest holds the fields to change; omitted fields are kept
type EditTournamentRequest struct {
	Game            *string    `json:"game"`             // Catalog game name
	Name            *string    `json:"name"`             // Display name
	Description     *string    `json:"description"`      // Description
	EntryFee        *int64     `json:"entry_fee"`        // Fee debited on join
	Prize           *int64     `json:"prize"`            // Advertised prize
	PerKillPrize    *int64     `json:"per_kill_prize"`   // Credit per kill
	MaxParticipants *int       `json:"max_participants"` // Capacity
	ScheduledAt     *time.Time `json:"scheduled_at"`     // Start time
}

// EditTournamentHandler edits a live tournament of the caller
func EditTournamentHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := caller(c) // Get admin ID from context
		if !ok {
			return
		}
		id, ok := idParam(c, "id") // Tournament ID
		if !ok {
			return
		}
		var req EditTournamentRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request") // If invalid, return bad request
			return
		}
		fields := logrus.Fields{"admin_id": adminID, "tournament_id": id} // Log context
		t, err := d.Engine.EditTournament(c.Request.Context(), adminID, id, engine.TournamentPatch{
			Game:            req.Game,
			Name:            req.Name,
			Description:     req.Description,
			EntryFee:        req.EntryFee,
			Prize:           req.Prize,
			PerKillPrize:    req.PerKillPrize,
			MaxParticipants: req.MaxParticipants,
			ScheduledAt:     req.ScheduledAt,
		})
		if err != nil {
			d.fail(c, "edit_tournament", err, fields)
			return
		}
		d.done(c, "edit_tournament", fields) // Log edit
		c.JSON(http.StatusOK, gin.H{"message": "Tournament updated", "tournament": t})
	}
}

// DeleteTournamentHandler deletes a tournament nobody joined
func DeleteTournamentHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := caller(c) // Get admin ID from context
		if !ok {
			return
		}
		id, ok := idParam(c, "id") // Tournament ID
		if !ok {
			return
		}
		fields := logrus.Fields{"admin_id": adminID, "tournament_id": id} // Log context
		if err := d.Engine.DeleteTournament(c.Request.Context(), adminID, id); err != nil {
			d.fail(c, "delete_tournament", err, fields)
			return
		}
		d.done(c, "delete_tournament", fields) // Log deletion
		c.JSON(http.StatusOK, gin.H{"message": "Tournament deleted"})
	}
}

// RoomRequest carries new room credentials
type RoomRequest struct {
	RoomID       string `json:"room_id" binding:"required"` // Numeric room id
	RoomPassword string `json:"room_password"`              // Room password
}

// UpdateRoomHandler sets the room credentials of a live tournament
func UpdateRoomHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := caller(c) // Get admin ID from context
		if !ok {
			return
		}
		id, ok := idParam(c, "id") // Tournament ID
		if !ok {
			return
		}
		var req RoomRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request") // If invalid, return bad request
			return
		}
		fields := logrus.Fields{"admin_id": adminID, "tournament_id": id} // Log context
		t, err := d.Engine.UpdateRoom(c.Request.Context(), adminID, id, req.RoomID, req.RoomPassword)
		if err != nil {
			d.fail(c, "update_room", err, fields)
			return
		}
		d.done(c, "update_room", fields) // Log room change
		c.JSON(http.StatusOK, gin.H{"message": "Room updated", "tournament": t})
	}
}

// ParticipantsHandler lists the roster of one of the caller's tournaments
func ParticipantsHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := caller(c) // Get admin ID from context
		if !ok {
			return
		}
		id, ok := idParam(c, "id") // Tournament ID
		if !ok {
			return
		}
		ps, err := d.Engine.Participants(c.Request.Context(), adminID, id)
		if err != nil {
			d.fail(c, "participants", err, logrus.Fields{"admin_id": adminID, "tournament_id": id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"participants": ps})
	}
}

// KillRequest grants a kill reward
type KillRequest struct {
	UserID uint `json:"user_id" binding:"required"` // Rewarded participant
	Kills  *int `json:"kills" binding:"required"`   // Confirmed kills, 0..100
}

// AwardKillHandler credits a participant for their kills
func AwardKillHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := caller(c) // Get admin ID from context
		if !ok {
			return
		}
		id, ok := idParam(c, "id") // Tournament ID
		if !ok {
			return
		}
		var req KillRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request") // If invalid, return bad request
			return
		}
		fields := logrus.Fields{
			"admin_id":      adminID,    // Acting admin
			"tournament_id": id,         // Tournament
			"user_id":       req.UserID, // Rewarded participant
			"kills":         *req.Kills, // Kill count
		}
		r, err := d.Engine.AwardKill(c.Request.Context(), adminID, id, req.UserID, *req.Kills)
		if err != nil {
			d.fail(c, "award_kill", err, fields)
			return
		}
		fields["amount"] = r.Amount
		d.Metrics.Moved(string(domain.EntryKillReward), r.Amount) // Money credited
		d.invalidate(c, req.UserID)                               // Balance and history changed
		d.done(c, "award_kill", fields)                           // Log reward
		c.JSON(http.StatusCreated, gin.H{"message": "Kill reward granted", "reward": r})
	}
}

// EndTournamentRequest names the winner
type EndTournamentRequest struct {
	WinnerID uint `json:"winner_id" binding:"required"` // Winning participant
}

// EndTournamentHandler settles a tournament
func EndTournamentHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := caller(c) // Get admin ID from context
		if !ok {
			return
		}
		id, ok := idParam(c, "id") // Tournament ID
		if !ok {
			return
		}
		var req EndTournamentRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request") // If invalid, return bad request
			return
		}
		fields := logrus.Fields{"admin_id": adminID, "tournament_id": id, "winner_id": req.WinnerID} // Log context
		s, err := d.Engine.EndTournament(c.Request.Context(), adminID, id, req.WinnerID)
		if err != nil {
			d.fail(c, "end_tournament", err, fields)
			return
		}
		fields["reclassified"] = s.Reward != nil
		d.invalidate(c, req.WinnerID)       // History entry kind may have changed
		d.done(c, "end_tournament", fields) // Log settlement
		c.JSON(http.StatusOK, gin.H{"message": "Tournament ended", "tournament": s.Tournament, "reward": s.Reward})
	}
}

// ResolveRequest approves or rejects a pending transfer
type ResolveRequest struct {
	Status domain.TransferStatus `json:"status" binding:"required"` // approved or rejected
	Reason string                `json:"reason"`                    // Required when rejecting
}

// ResolveDepositHandler approves or rejects a pending deposit
func ResolveDepositHandler(d *Deps) gin.HandlerFunc {
	return resolveHandler(d, domain.DirectionDeposit)
}

// ResolveWithdrawalHandler approves or rejects a pending withdrawal
func ResolveWithdrawalHandler(d *Deps) gin.HandlerFunc {
	return resolveHandler(d, domain.DirectionWithdrawal)
}

func resolveHandler(d *Deps, dir domain.Direction) gin.HandlerFunc {
	op := "resolve_" + string(dir) // Operation name
	return func(c *gin.Context) {
		adminID, ok := caller(c) // Get admin ID from context
		if !ok {
			return
		}
		id, ok := idParam(c, "id") // Transfer ID
		if !ok {
			return
		}
		var req ResolveRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request") // If invalid, return bad request
			return
		}
		fields := logrus.Fields{"admin_id": adminID, "transfer_id": id, "status": req.Status} // Log context
		resolve := d.Engine.ResolveDeposit
		if dir == domain.DirectionWithdrawal {
			resolve = d.Engine.ResolveWithdrawal
		}
		t, err := resolve(c.Request.Context(), id, req.Status, req.Reason)
		if err != nil {
			d.fail(c, op, err, fields)
			return
		}
		fields["user_id"] = t.UserID
		fields["amount"] = t.Amount
		if t.Status == domain.TransferApproved {
			d.Metrics.Moved(string(dir), t.Amount) // Money moved
		}
		d.invalidate(c, t.UserID) // Balance and history changed
		d.done(c, op, fields)     // Log resolution
		c.JSON(http.StatusOK, gin.H{"message": string(dir) + " " + string(t.Status), "transfer": t})
	}
}

// PendingTransfersHandler lists deposits or withdrawals awaiting review
func PendingTransfersHandler(d *Deps, dir domain.Direction) gin.HandlerFunc {
	return func(c *gin.Context) {
		ts, err := d.Engine.PendingTransfers(c.Request.Context(), dir)
		if err != nil {
			d.fail(c, "pending_"+string(dir), err, logrus.Fields{})
			return
		}
		c.JSON(http.StatusOK, gin.H{"transfers": ts})
	}
}

// RejectedTransfersHandler lists rejection records of deposits or withdrawals
func RejectedTransfersHandler(d *Deps, dir domain.Direction) gin.HandlerFunc {
	return func(c *gin.Context) {
		rs, err := d.Engine.RejectedTransfers(c.Request.Context(), dir)
		if err != nil {
			d.fail(c, "rejected_"+string(dir), err, logrus.Fields{})
			return
		}
		c.JSON(http.StatusOK, gin.H{"rejected": rs})
	}
}

// LedgerHistoryHandler returns the ledger of all accounts, or of the
// account in the :id path parameter when present
func LedgerHistoryHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID uint // Zero means every account
		if c.Param("id") != "" {
			id, ok := idParam(c, "id")
			if !ok {
				return
			}
			userID = id
		}
		ctx := c.Request.Context()
		page := pageParams(c)
		cacheKey := utils.AdminLedgerKey(userID, page.Page, page.PageSize)
		var cached PageResponse[domain.LedgerEntry]
		if found, err := d.Cache.Get(ctx, cacheKey, &cached); err == nil && found {
			cached.Cached = true // Indicate response is from cache
			c.JSON(http.StatusOK, cached)
			return
		}
		entries, total, err := d.Engine.LedgerHistory(ctx, userID, page)
		if err != nil {
			d.fail(c, "ledger_history", err, logrus.Fields{"user_id": userID})
			return
		}
		resp := newPage(entries, page, total)
		_ = d.Cache.Set(ctx, cacheKey, resp) // Cache the response for future requests
		c.JSON(http.StatusOK, resp)
	}
}

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID      uint   `json:"id"`      // User ID
	Name    string `json:"name"`    // Display name
	Email   string `json:"email"`   // Email address
	Role    string `json:"role"`    // User role
	Balance int64  `json:"balance"` // Current balance
}

// ListUsersHandler returns all users with their balances
func ListUsersHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page := pageParams(c)
		cacheKey := utils.AdminUsersKey(page.Page, page.PageSize) // Cache key based on pagination
		var cached PageResponse[UserAdminResponse]
		// If cached data found, return it
		if found, err := d.Cache.Get(ctx, cacheKey, &cached); err == nil && found {
			cached.Cached = true // Indicate response is from cache
			c.JSON(http.StatusOK, cached)
			return
		}
		users, total, err := d.Engine.Accounts(ctx, page)
		if err != nil {
			d.fail(c, "list_users", err, logrus.Fields{"page": strconv.Itoa(page.Page)})
			return
		}
		// Map users to response format
		resp := make([]UserAdminResponse, len(users))
		for i, u := range users {
			resp[i] = UserAdminResponse{
				ID:      u.ID,      // User ID
				Name:    u.Name,    // Display name
				Email:   u.Email,   // Email address
				Role:    u.Role,    // User role
				Balance: u.Balance, // Current balance
			}
		}
		out := newPage(resp, page, total)
		_ = d.Cache.Set(ctx, cacheKey, out) // Cache the response for future requests
		c.JSON(http.StatusOK, out)
	}
}
