package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/atomdocs/internal/pkg/errcode"
	appErr "github.com/xxxsen/atomdocs/internal/pkg/errors"
	"github.com/xxxsen/atomdocs/internal/pkg/response"
)

const invalidRequestMsg = "invalid request"

var successAck = gin.H{"success": true}

// errorReply writes a failure. The content routes answer with a bare
// {"error": msg} body, the rest use the envelope.
type errorReply func(c *gin.Context, status int, code int, message string)

func envelopeError(c *gin.Context, status int, code int, message string) {
	response.Error(c, status, code, message)
}

func plainError(c *gin.Context, status int, _ int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// failWith logs err and answers with a generic message. Storage failures
// are never described to the client.
func failWith(c *gin.Context, reply errorReply, err error, message string) {
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	if errors.Is(err, appErr.ErrInvalid) {
		reply(c, http.StatusBadRequest, errcode.ErrInvalid, invalidRequestMsg)
		return
	}
	reply(c, http.StatusInternalServerError, errcode.ErrStorage, message)
}

func handleError(c *gin.Context, err error, message string) {
	failWith(c, envelopeError, err, message)
}

func handlePlainError(c *gin.Context, err error, message string) {
	failWith(c, plainError, err, message)
}

func bindJSON(c *gin.Context, reply errorReply, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		failWith(c, reply, errors.Join(appErr.ErrInvalid, err), invalidRequestMsg)
		return false
	}
	return true
}
