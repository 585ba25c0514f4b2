package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Authentication happens upstream; the gateway forwards the verified
// identity in these headers.
const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

type identity struct {
	UserID int64
	Role   string
}

func requireIdentity(c *gin.Context) (identity, bool) {
	id, err := strconv.ParseInt(c.GetHeader(headerUserID), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid " + headerUserID + " header"})
		return identity{}, false
	}
	return identity{UserID: id, Role: c.GetHeader(headerUserRole)}, true
}
