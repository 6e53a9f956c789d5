package api

import (
	"battlezone/internal/domain" // Importing domain models
	"battlezone/internal/engine" // Platform operations
	"battlezone/internal/utils"  // Utility functions
	"net/http"                   // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// GameRequest represents a new catalog entry
type GameRequest struct {
	Name        string `json:"name" binding:"required,max=100"`           // Game name
	Description string `json:"description" binding:"max=500"`             // Short description
	Icon        string `json:"icon" binding:"omitempty,url,max=255"`      // Icon URL
	Thumbnail   string `json:"thumbnail" binding:"omitempty,url,max=255"` // Thumbnail URL
}

// GamePatchRequest holds the catalog fields to change; omitted fields are kept
type GamePatchRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`          // Game name
	Description *string `json:"description" binding:"omitempty,max=500"`   // Short description
	Icon        *string `json:"icon" binding:"omitempty,url,max=255"`      // Icon URL
	Thumbnail   *string `json:"thumbnail" binding:"omitempty,url,max=255"` // Thumbnail URL
}

// ListGamesHandler returns the game catalog; no token needed
func ListGamesHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var cached []domain.Game
		// If cached data found, return it
		if found, err := d.Cache.Get(ctx, utils.GamesKey(), &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"games": cached, "cached": true})
			return
		}
		games, err := d.Engine.Games(ctx)
		if err != nil {
			d.fail(c, "list_games", err, logrus.Fields{})
			return
		}
		_ = d.Cache.Set(ctx, utils.GamesKey(), games) // Cache the catalog for future requests
		c.JSON(http.StatusOK, gin.H{"games": games})
	}
}

// GetGameHandler returns one catalog entry
func GetGameHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id") // Game ID
		if !ok {
			return
		}
		g, err := d.Engine.Game(c.Request.Context(), id)
		if err != nil {
			d.fail(c, "get_game", err, logrus.Fields{"game_id": id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"game": g})
	}
}

// CreateGameHandler adds a game to the catalog
func CreateGameHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GameRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request") // If invalid, return bad request
			return
		}
		fields := logrus.Fields{"name": req.Name} // Log context
		g, err := d.Engine.CreateGame(c.Request.Context(), engine.GameInput{
			Name:        req.Name,
			Description: req.Description,
			Icon:        req.Icon,
			Thumbnail:   req.Thumbnail,
		})
		if err != nil {
			d.fail(c, "create_game", err, fields)
			return
		}
		fields["game_id"] = g.ID
		d.done(c, "create_game", fields) // Log creation
		d.dropGames(c)
		c.JSON(http.StatusCreated, gin.H{"message": "Game created", "game": g})
	}
}

// UpdateGameHandler edits a catalog entry
func UpdateGameHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id") // Game ID
		if !ok {
			return
		}
		var req GamePatchRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request") // If invalid, return bad request
			return
		}
		fields := logrus.Fields{"game_id": id} // Log context
		g, err := d.Engine.UpdateGame(c.Request.Context(), id, engine.GamePatch{
			Name:        req.Name,
			Description: req.Description,
			Icon:        req.Icon,
			Thumbnail:   req.Thumbnail,
		})
		if err != nil {
			d.fail(c, "update_game", err, fields)
			return
		}
		d.done(c, "update_game", fields) // Log update
		d.dropGames(c)
		c.JSON(http.StatusOK, gin.H{"message": "Game updated", "game": g})
	}
}

// DeleteGameHandler removes a game no tournament refers to
func DeleteGameHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id") // Game ID
		if !ok {
			return
		}
		fields := logrus.Fields{"game_id": id} // Log context
		if err := d.Engine.DeleteGame(c.Request.Context(), id); err != nil {
			d.fail(c, "delete_game", err, fields)
			return
		}
		d.done(c, "delete_game", fields) // Log deletion
		d.dropGames(c)
		c.JSON(http.StatusOK, gin.H{"message": "Game deleted"})
	}
}

// dropGames drops the cached catalog after it changed
func (d *Deps) dropGames(c *gin.Context) {
	if err := d.Cache.Delete(c.Request.Context(), utils.GamesKey()); err != nil {
		logrus.WithField("error", err.Error()).Warn("Cache invalidation failed")
	}
}
