package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recordbook/recordbook/internal/apperr"
	"github.com/recordbook/recordbook/internal/storage"
	"github.com/recordbook/recordbook/pkg/logger"
	"github.com/recordbook/recordbook/pkg/response"
)

const presignTTL = 15 * time.Minute

// RegisterUpload mounts POST /uploadfile. A nil store answers 503 so the
// route is visible even when object storage is not configured.
func RegisterUpload(r gin.IRouter, store storage.FileStore, maxBytes int64) {
	r.POST("/uploadfile", func(c *gin.Context) {
		if store == nil {
			response.Error(c, apperr.Unavailable(storage.ErrNotConfigured.Error()))
			return
		}
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		fh, err := c.FormFile("file")
		if err != nil {
			response.Error(c, apperr.InvalidField("file", "a multipart file field named file is required"))
			return
		}
		f, err := fh.Open()
		if err != nil {
			response.Error(c, apperr.WrapInternal(err, "open upload"))
			return
		}
		defer f.Close()

		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		key := storage.ObjectKey(fh.Filename)
		ctx := c.Request.Context()
		if err := store.UploadFile(ctx, key, f, fh.Size, contentType); err != nil {
			response.Error(c, apperr.WrapInternal(err, "store upload"))
			return
		}

		out := gin.H{"filename": fh.Filename, "key": key, "size": fh.Size}
		if u, err := store.GetPresignedURL(ctx, key, presignTTL); err == nil {
			out["url"] = u
		} else {
			logger.Warnf("presign %s: %v", key, err)
		}
		c.JSON(http.StatusOK, out)
	})
}
