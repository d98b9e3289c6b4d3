package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// errorBody is the single error shape returned by the API.
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorBody{Error: message})
}

func failDetail(c *gin.Context, status int, message, detail string) {
	c.AbortWithStatusJSON(status, errorBody{Error: message, Detail: detail})
}
