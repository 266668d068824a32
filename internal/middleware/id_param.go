package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/collab-docs-api/internal/errors"
)

const contextKeyIDParam = "id_param"

// RequireIDParam checks that the named URL parameter is a positive integer id
func RequireIDParam(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param(name), 10, 64)
		if err != nil || id == 0 {
			apierrors.BadRequest(c, "Invalid "+name)
			return
		}

		c.Set(contextKeyIDParam, id)
		c.Next()
	}
}

// GetIDParam returns the id validated by RequireIDParam
func GetIDParam(c *gin.Context) (uint64, bool) {
	value, exists := c.Get(contextKeyIDParam)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint64)
	return id, ok
}
