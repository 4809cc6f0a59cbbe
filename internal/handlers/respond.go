package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/talentogt/hr-api/internal/models"
)

// respondError maps the service error taxonomy onto HTTP status codes:
// validation and conflict errors are 400, missing records are 404,
// everything else (including partial dual-write failures) is 500.
func respondError(c *gin.Context, err error) {
	switch e := err.(type) {
	case *models.ValidationError:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": e.Error(),
			"fields":  e.Fields,
		})
	case *models.NotFoundError:
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": e.Error(),
		})
	case *models.ConflictError:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "conflict",
			"message": e.Error(),
		})
	case *models.PartialStateError:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "partial_state",
			"message": e.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
	}
}

// parseID parses a path parameter as a UUID, answering 400 on malformed
// input. The bool reports whether the caller should continue.
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_id",
			"message": "invalid identifier format",
		})
		return uuid.Nil, false
	}
	return id, true
}
