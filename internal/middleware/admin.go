package middleware

import (
	"battlezone/internal/domain" // Importing domain models
	"battlezone/internal/store"  // Account lookups
	"context"                    // Request context
	"errors"                     // Error matching
	"net/http"                   // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// AccountReader is the store subset needed to re-check roles
type AccountReader interface {
	GetUser(ctx context.Context, id uint) (*domain.User, error)
}

var _ AccountReader = (store.Store)(nil)

// AdminOnlyMiddleware checks the user's role from the store on each request,
// so a demoted admin loses access before their token expires.
func AdminOnlyMiddleware(accounts AccountReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c) // Get userID from context
		// Check if userID exists in context
		if !ok {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := accounts.GetUser(c.Request.Context(), userID) // Fetch account from store
		if err != nil {
			if !errors.Is(err, domain.ErrAccountNotFound) {
				// Store failures are logged, callers only see the refusal
				logrus.WithFields(logrus.Fields{
					"user_id": userID,      // Caller
					"error":   err.Error(), // Error message
				}).Error("Admin role check failed")
			}
			// If user not found or any error, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		// Check if user role is admin
		if !user.IsAdmin() {
			// If not admin, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		// If admin, proceed to the next handler
		c.Next()
	}
}
