package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/shiftboard/internal/apperr"
	"github.com/zulandar/shiftboard/internal/db"
	"github.com/zulandar/shiftboard/internal/paging"
)

// writeError maps err onto the API's status codes and aborts the request.
// Unclassified errors are logged and reported without detail.
func writeError(c *gin.Context, err error) {
	var capErr *apperr.CapExceededError
	switch {
	case errors.As(err, &capErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     capErr.Error(),
			"cap":       capErr.Cap,
			"existing":  capErr.Existing,
			"attempted": capErr.Attempted,
		})
	case errors.Is(err, apperr.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrConflict), db.IsDuplicate(err):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
	default:
		log.Printf("api: %s %s [%s]: %v", c.Request.Method, c.Request.URL.Path, c.GetString(requestIDKey), err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON decodes the request body into v, reporting malformed input as a
// validation error.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		writeError(c, apperr.Invalid("invalid request body: %v", err))
		return false
	}
	return true
}

func parseID(name, raw string) (uint, error) {
	v, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || v == 0 {
		return 0, apperr.Invalid("%s must be a positive integer", name)
	}
	return uint(v), nil
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context) (uint, bool) {
	id, err := parseID("id", c.Param("id"))
	if err != nil {
		writeError(c, err)
		return 0, false
	}
	return id, true
}

// queryID parses a required positive integer query parameter.
func queryID(c *gin.Context, name string) (uint, bool) {
	id, err := parseID(name, c.Query(name))
	if err != nil {
		writeError(c, err)
		return 0, false
	}
	return id, true
}

// pageParams reads optional page and limit query parameters. Range clamping
// is left to the resource's paging bounds.
func pageParams(c *gin.Context) (paging.Params, bool) {
	var p paging.Params
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"page", &p.Page},
		{"limit", &p.Limit},
	} {
		raw := c.Query(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(c, apperr.Invalid("%s must be a positive integer", f.name))
			return p, false
		}
		*f.dst = v
	}
	return p, true
}
