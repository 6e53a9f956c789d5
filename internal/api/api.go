// Package api holds the gin handlers. Handlers translate requests into
// engine calls, map error kinds to HTTP status codes, log outcomes and
// keep the response cache consistent.
package api

import (
	"battlezone/internal/domain"     // Error kinds
	"battlezone/internal/engine"     // Platform operations
	"battlezone/internal/metrics"    // Prometheus collectors
	"battlezone/internal/middleware" // Caller identity
	"battlezone/internal/store"      // Pagination
	"battlezone/internal/utils"      // Cache helpers
	"net/http"                       // HTTP status codes
	"strconv"                        // String conversion

	"github.com/gin-contrib/requestid" // Request id
	"github.com/gin-gonic/gin"         // Gin web framework
	"github.com/sirupsen/logrus"       // Logging library
)

// Deps are the collaborators every handler shares
type Deps struct {
	Engine  *engine.Engine    // Platform operations
	Cache   *utils.Cache      // Response cache, nil disables caching
	Metrics *metrics.Recorder // Outcome counters, nil disables recording
}

// StatusFor maps an error kind to its HTTP status code
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindAlreadyExists, domain.KindConflict:
		return http.StatusConflict
	case domain.KindValidation, domain.KindInsufficientBalance:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// fail logs a failed operation and writes the error response. Internal
// failures are logged in full but reach the caller as a generic message.
func (d *Deps) fail(c *gin.Context, op string, err error, fields logrus.Fields) {
	kind := domain.KindOf(err)
	d.Metrics.Operation(op, kind.String())
	entry := logrus.WithFields(fields).WithFields(logrus.Fields{
		"operation":  op,                 // Operation name
		"request_id": requestid.Get(c),   // Request id
		"code":       domain.CodeOf(err), // Stable error code
		"error":      err.Error(),        // Error message
	})
	if kind == domain.KindInternal {
		entry.Error(op + " failed") // Unexpected failure
	} else {
		entry.Warn(op + " rejected") // Business rule rejection
	}
	c.JSON(StatusFor(kind), gin.H{"error": domain.PublicMessage(err), "code": domain.CodeOf(err)})
}

// done logs a successful operation
func (d *Deps) done(c *gin.Context, op string, fields logrus.Fields) {
	d.Metrics.Operation(op, "ok")
	logrus.WithFields(fields).WithFields(logrus.Fields{
		"operation":  op,               // Operation name
		"request_id": requestid.Get(c), // Request id
	}).Info(op + " succeeded")
}

// invalidate drops cached views of an account after its ledger changed
func (d *Deps) invalidate(c *gin.Context, userID uint) {
	if err := d.Cache.InvalidateAccount(c.Request.Context(), userID); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,      // Account whose cache is stale
			"error":   err.Error(), // Error message
		}).Warn("Cache invalidation failed")
	}
}

// badRequest answers a request that could not be bound
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": domain.ErrValidation.Code})
}

// caller returns the authenticated account id or answers 401
func caller(c *gin.Context) (uint, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": domain.ErrUnauthorized.Code})
	}
	return id, ok
}

// idParam parses a positive numeric path parameter or answers 400
func idParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(v), true
}

// Pagination defaults
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageParams reads page and page_size, falling back to defaults on bad input
func pageParams(c *gin.Context) store.Page {
	page := 1                   // Default page number
	pageSize := defaultPageSize // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= maxPageSize {
			pageSize = v // Set page size
		}
	}
	return store.Page{Page: page, PageSize: pageSize}
}

// PageResponse is the envelope of paginated lists
type PageResponse[T any] struct {
	Items      []T   `json:"items"`       // Page content
	Page       int   `json:"page"`        // Current page
	PageSize   int   `json:"page_size"`   // Page size
	Total      int64 `json:"total"`       // Total number of rows
	TotalPages int   `json:"total_pages"` // Total pages
	Cached     bool  `json:"cached"`      // Served from cache
}

func newPage[T any](items []T, p store.Page, total int64) PageResponse[T] {
	if items == nil {
		items = []T{}
	}
	return PageResponse[T]{
		Items:      items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      total,
		TotalPages: (int(total) + p.PageSize - 1) / p.PageSize, // Calculate total pages
	}
}
