package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RespondError sends a plain error message with the given HTTP status.
func RespondError(c *gin.Context, httpStatus int, detail string) {
	c.JSON(httpStatus, gin.H{"detail": detail})
}

// RespondErrorAbort sends an error response and stops the handler chain.
func RespondErrorAbort(c *gin.Context, httpStatus int, detail string) {
	c.AbortWithStatusJSON(httpStatus, gin.H{"detail": detail})
}

// RespondSuccess sends data with a 200 status.
func RespondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}
