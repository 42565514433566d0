package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/homeolab/homeoagent/internal/pkg/errcode"
	appErr "github.com/homeolab/homeoagent/internal/pkg/errors"
	"github.com/homeolab/homeoagent/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrDownload):
		response.Error(c, errcode.ErrModelDownload, "model download failed, check network connectivity")
	case errors.Is(err, appErr.ErrCacheCorrupted):
		response.Error(c, errcode.ErrModelNotCached, "model cache corrupted, re-run download-models")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
