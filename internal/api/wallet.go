package api

import (
	"battlezone/internal/domain" // Importing domain models
	"battlezone/internal/utils"  // Utility functions
	"net/http"                   // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// ProfileResponse is the caller's own account
type ProfileResponse struct {
	ID      uint   `json:"id"`      // Account ID
	Name    string `json:"name"`    // Display name
	Email   string `json:"email"`   // Email address
	Role    string `json:"role"`    // Account role
	Balance int64  `json:"balance"` // Current balance
}

// ProfileHandler returns the authenticated account
func ProfileHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := caller(c) // Get userID from context
		if !ok {
			return
		}
		user, err := d.Engine.Account(c.Request.Context(), userID)
		if err != nil {
			d.fail(c, "profile", err, logrus.Fields{"user_id": userID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": ProfileResponse{
			ID:      user.ID,      // Account ID
			Name:    user.Name,    // Display name
			Email:   user.Email,   // Email address
			Role:    user.Role,    // Account role
			Balance: user.Balance, // Current balance
		}})
	}
}

// GetBalanceHandler returns the caller's balance, served from cache when possible
func GetBalanceHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := caller(c) // Get userID from context
		if !ok {
			return
		}
		ctx := c.Request.Context()           // Context for Redis operations
		cacheKey := utils.BalanceKey(userID) // Cache key for balance
		var balance int64
		if found, err := d.Cache.Get(ctx, cacheKey, &balance); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"balance": balance, "cached": true}) // Return cached balance
			return
		}
		balance, err := d.Engine.Balance(ctx, userID) // If not in cache, fetch from store
		if err != nil {
			d.fail(c, "balance", err, logrus.Fields{"user_id": userID})
			return
		}
		_ = d.Cache.Set(ctx, cacheKey, balance)                           // Cache the balance
		c.JSON(http.StatusOK, gin.H{"balance": balance, "cached": false}) // Return balance
	}
}

// GetHistoryHandler returns the caller's ledger, newest first, with optional
// filtering by entry type
func GetHistoryHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := caller(c) // Get userID from context
		if !ok {
			return
		}
		ctx := c.Request.Context()
		page := pageParams(c)                     // Pagination
		kind := domain.EntryKind(c.Query("type")) // Optional type filter
		cacheKey := utils.HistoryKey(userID, string(kind), page.Page, page.PageSize)
		var cached PageResponse[domain.LedgerEntry]
		if found, err := d.Cache.Get(ctx, cacheKey, &cached); err == nil && found {
			cached.Cached = true // Indicate response is from cache
			c.JSON(http.StatusOK, cached)
			return
		}
		entries, total, err := d.Engine.History(ctx, userID, kind, page)
		if err != nil {
			d.fail(c, "history", err, logrus.Fields{"user_id": userID, "type": kind})
			return
		}
		resp := newPage(entries, page, total)
		_ = d.Cache.Set(ctx, cacheKey, resp) // Cache the page
		c.JSON(http.StatusOK, resp)
	}
}

// DepositRequest represents a deposit request
type DepositRequest struct {
	Amount        int64  `json:"amount" binding:"required"`         // Deposit amount
	TransactionID int64  `json:"transaction_id" binding:"required"` // Payment reference
	UpiID         string `json:"upi_id" binding:"required"`         // Payer UPI handle
}

// RequestDepositHandler files a deposit for admin review
func RequestDepositHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := caller(c) // Get userID from context
		if !ok {
			return
		}
		var req DepositRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request") // If invalid, return bad request
			return
		}
		fields := logrus.Fields{
			"user_id": userID,     // Requesting account
			"amount":  req.Amount, // Deposit amount
		}
		t, err := d.Engine.RequestDeposit(c.Request.Context(), userID, req.Amount, req.TransactionID, req.UpiID)
		if err != nil {
			d.fail(c, "request_deposit", err, fields)
			return
		}
		fields["deposit_id"] = t.ID
		d.done(c, "request_deposit", fields) // Log request
		c.JSON(http.StatusCreated, gin.H{"message": "Deposit request submitted", "deposit": t})
	}
}

// WithdrawalRequest represents a withdrawal request
type WithdrawalRequest struct {
	Amount int64  `json:"amount" binding:"required"` // Withdrawal amount
	UpiID  string `json:"upi_id" binding:"required"` // Payee UPI handle
}

// RequestWithdrawalHandler files a withdrawal for admin review
func RequestWithdrawalHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := caller(c) // Get userID from context
		if !ok {
			return
		}
		var req WithdrawalRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request") // If invalid, return bad request
			return
		}
		fields := logrus.Fields{
			"user_id": userID,     // Requesting account
			"amount":  req.Amount, // Withdrawal amount
		}
		t, err := d.Engine.RequestWithdrawal(c.Request.Context(), userID, req.Amount, req.UpiID)
		if err != nil {
			d.fail(c, "request_withdrawal", err, fields)
			return
		}
		fields["withdrawal_id"] = t.ID
		d.done(c, "request_withdrawal", fields) // Log request
		c.JSON(http.StatusCreated, gin.H{"message": "Withdrawal request submitted", "withdrawal": t})
	}
}
