package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The response envelope is `{status, data}` on success and
// `{status, message}` on failure. Four failure classes exist: 412 for
// missing params, 404 for unknown users, 401 for a bad password or
// recovery code, 400 for conflicts, business rules and anything
// unexpected.

func RespondSuccess(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, gin.H{
		"status": status,
		"data":   data,
	})
}

func RespondFail(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{
		"status":  status,
		"message": message,
	})
}

func RespondPreconditionFailed(ctx *gin.Context, message string) {
	RespondFail(ctx, http.StatusPreconditionFailed, message)
}

func RespondBadRequest(ctx *gin.Context, message string) {
	RespondFail(ctx, http.StatusBadRequest, message)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondFail(ctx, http.StatusNotFound, message)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondFail(ctx, http.StatusUnauthorized, message)
}
