package handlers

import (
	"net/http"
	"strconv"

	"academic-records/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const defaultPageLimit = 100

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperror.HTTPStatus(err), APIResponse{
		Success: false,
		Message: err.Error(),
		Errors:  apperror.Code(err),
	})
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// intParam reads a positive integer path parameter.
func intParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid " + name,
		})
		return 0, false
	}
	return n, true
}

// limitQuery reads ?limit=, falling back to the default page size.
func limitQuery(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil || limit <= 0 {
		return defaultPageLimit
	}
	return limit
}
