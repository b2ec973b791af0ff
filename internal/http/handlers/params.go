package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/philoatlas-backend/internal/platform/apierr"
)

func pathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apierr.Validation("%s must be a valid UUID", name)
	}
	return id, nil
}

// queryInt returns 0 when the parameter is absent so the service applies its default.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.Validation("%s must be an integer", name)
	}
	if n < 1 {
		return 0, apierr.Validation("%s must be at least 1", name)
	}
	return n, nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apierr.Validation("invalid request body: %v", err)
	}
	return nil
}
