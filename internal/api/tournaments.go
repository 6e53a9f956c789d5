package api

import (
	"battlezone/internal/engine" // Platform operations
	"net/http"                   // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// ListOpenTournamentsHandler lists upcoming tournaments of a game the caller has not joined
func ListOpenTournamentsHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := caller(c) // Get userID from context
		if !ok {
			return
		}
		game := c.Query("game") // Required game filter
		ts, err := d.Engine.OpenTournaments(c.Request.Context(), userID, game)
		if err != nil {
			d.fail(c, "open_tournaments", err, logrus.Fields{"user_id": userID, "game": game})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tournaments": ts})
	}
}

// GetTournamentHandler returns one tournament; room details only for insiders
func GetTournamentHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := caller(c) // Get userID from context
		if !ok {
			return
		}
		id, ok := idParam(c, "id") // Tournament ID
		if !ok {
			return
		}
		view, err := d.Engine.Tournament(c.Request.Context(), userID, id)
		if err != nil {
			d.fail(c, "get_tournament", err, logrus.Fields{"user_id": userID, "tournament_id": id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tournament": view})
	}
}

// ParticipatedTournamentsHandler lists live tournaments the caller joined
func ParticipatedTournamentsHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := caller(c) // Get userID from context
		if !ok {
			return
		}
		ts, err := d.Engine.ParticipatedTournaments(c.Request.Context(), userID)
		if err != nil {
			d.fail(c, "participated_tournaments", err, logrus.Fields{"user_id": userID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tournaments": ts})
	}
}

// WinningsHandler lists the caller's rewards from ended tournaments
func WinningsHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := caller(c) // Get userID from context
		if !ok {
			return
		}
		rewards, err := d.Engine.Winnings(c.Request.Context(), userID)
		if err != nil {
			d.fail(c, "winnings", err, logrus.Fields{"user_id": userID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"winnings": rewards})
	}
}

// IsParticipantHandler reports whether the caller joined a tournament
func IsParticipantHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := caller(c) // Get userID from context
		if !ok {
			return
		}
		id, ok := idParam(c, "id") // Tournament ID
		if !ok {
			return
		}
		joined, err := d.Engine.IsParticipant(c.Request.Context(), userID, id)
		if err != nil {
			d.fail(c, "is_participant", err, logrus.Fields{"user_id": userID, "tournament_id": id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"participated": joined})
	}
}

// JoinRequest represents a tournament registration
type JoinRequest struct {
	PlayerUsername string `json:"player_username" binding:"required"` // In-game name
	PlayerUserID   string `json:"player_user_id" binding:"required"`  // In-game id
	PlayerLevel    int    `json:"player_level"`                       // In-game level
}

// JoinTournamentHandler registers the caller for a tournament and debits the entry fee
func JoinTournamentHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := caller(c) // Get userID from context
		if !ok {
			return
		}
		id, ok := idParam(c, "id") // Tournament ID
		if !ok {
			return
		}
		var req JoinRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request") // If invalid, return bad request
			return
		}
		fields := logrus.Fields{
			"user_id":       userID,          // Joining account
			"tournament_id": id,              // Tournament
			"player_level":  req.PlayerLevel, // Declared level
		}
		p, err := d.Engine.Join(c.Request.Context(), engine.JoinRequest{
			TournamentID:   id,
			UserID:         userID,
			PlayerUsername: req.PlayerUsername,
			PlayerUserID:   req.PlayerUserID,
			PlayerLevel:    req.PlayerLevel,
		})
		if err != nil {
			d.fail(c, "join_tournament", err, fields)
			return
		}
		d.invalidate(c, userID)              // Balance and history changed
		d.done(c, "join_tournament", fields) // Log join
		c.JSON(http.StatusCreated, gin.H{"message": "Joined tournament", "participant": p})
	}
}
