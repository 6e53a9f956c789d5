package api

import (
	"battlezone/internal/domain"     // Transfer directions
	"battlezone/internal/middleware" // Auth middleware

	"github.com/gin-gonic/gin" // Gin web framework
)

// RegisterRoutes mounts every player and admin endpoint on r
func RegisterRoutes(r gin.IRouter, d *Deps, secret string, accounts middleware.AccountReader) {
	auth := middleware.JWTAuthMiddleware(secret) // Every route needs a valid token

	// Public routes
	r.GET("/games", ListGamesHandler(d)) // Game catalog

	// Account routes
	r.GET("/user", auth, ProfileHandler(d)) // Authenticated profile

	// Wallet routes (protected by JWT)
	walletGroup := r.Group("/wallet")
	walletGroup.Use(auth)
	walletGroup.GET("", GetBalanceHandler(d))                  // Balance endpoint
	walletGroup.GET("/history", GetHistoryHandler(d))          // Ledger history endpoint
	walletGroup.POST("/deposit", RequestDepositHandler(d))     // Deposit request endpoint
	walletGroup.POST("/withdraw", RequestWithdrawalHandler(d)) // Withdrawal request endpoint

	// Tournament routes (protected by JWT)
	tournamentGroup := r.Group("/tournaments")
	tournamentGroup.Use(auth)
	tournamentGroup.GET("", ListOpenTournamentsHandler(d))                  // Open tournaments of a game
	tournamentGroup.GET("/participated", ParticipatedTournamentsHandler(d)) // Joined live tournaments
	tournamentGroup.GET("/winnings", WinningsHandler(d))                    // Rewards from ended tournaments
	tournamentGroup.GET("/:id", GetTournamentHandler(d))                    // Tournament details
	tournamentGroup.GET("/:id/participation", IsParticipantHandler(d))      // Participation check
	tournamentGroup.POST("/:id/join", JoinTournamentHandler(d))             // Join endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(auth, middleware.AdminOnlyMiddleware(accounts))
	adminGroup.POST("/tournaments", CreateTournamentHandler(d))             // Create tournament
	adminGroup.GET("/tournaments", ListAdminTournamentsHandler(d))          // Own tournaments
	adminGroup.GET("/tournaments/:id", GetAdminTournamentHandler(d))        // Own tournament
	adminGroup.PATCH("/tournaments/:id", EditTournamentHandler(d))          // Edit tournament
	adminGroup.DELETE("/tournaments/:id", DeleteTournamentHandler(d))       // Delete tournament
	adminGroup.PUT("/tournaments/:id/room", UpdateRoomHandler(d))           // Room credentials
	adminGroup.GET("/tournaments/:id/participants", ParticipantsHandler(d)) // Roster
	adminGroup.POST("/tournaments/:id/kills", AwardKillHandler(d))          // Kill reward
	adminGroup.POST("/tournaments/:id/end", EndTournamentHandler(d))        // Settle tournament
	adminGroup.GET("/deposits/pending", PendingTransfersHandler(d, domain.DirectionDeposit))
	adminGroup.GET("/withdrawals/pending", PendingTransfersHandler(d, domain.DirectionWithdrawal))
	adminGroup.GET("/deposits/rejected", RejectedTransfersHandler(d, domain.DirectionDeposit))
	adminGroup.GET("/withdrawals/rejected", RejectedTransfersHandler(d, domain.DirectionWithdrawal))
	adminGroup.POST("/deposits/:id", ResolveDepositHandler(d))       // Approve or reject deposit
	adminGroup.POST("/withdrawals/:id", ResolveWithdrawalHandler(d)) // Approve or reject withdrawal
	adminGroup.GET("/history", LedgerHistoryHandler(d))              // Ledger of all accounts
	adminGroup.GET("/users", ListUsersHandler(d))                    // List users endpoint
	adminGroup.GET("/users/:id/history", LedgerHistoryHandler(d))    // Ledger of one account
	adminGroup.POST("/games", CreateGameHandler(d))                  // Add game
	adminGroup.GET("/games", ListGamesHandler(d))                    // Game catalog
	adminGroup.GET("/games/:id", GetGameHandler(d))                  // One game
	adminGroup.PATCH("/games/:id", UpdateGameHandler(d))             // Edit game
	adminGroup.DELETE("/games/:id", DeleteGameHandler(d))            // Remove game
}
