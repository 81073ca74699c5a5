package handler

import (
	"github.com/gin-gonic/gin"
)

// Response единый конверт для всех ответов API
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Errors  []string    `json:"errors,omitempty"`
}

func respondSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// respondError отдаёт конверт с success=false; errors и data опциональны
// (data используется, например, для деградированного health-снимка)
func respondError(c *gin.Context, status int, message string, errs []string, data interface{}) {
	c.JSON(status, Response{
		Success: false,
		Message: message,
		Data:    data,
		Errors:  errs,
	})
}
