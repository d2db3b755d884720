package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"school-health/pkg/response"
)

// BodyLimit 全局请求体大小限制中间件
// 附件以 multipart 上传，上限需大于 blob.max_upload_bytes
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Dữ liệu gửi lên vượt quá dung lượng cho phép")
			c.Abort()
			return
		}
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		// 检查是否因为超出限制而失败
		if c.IsAborted() {
			return
		}
		for _, e := range c.Errors {
			var tooLarge *http.MaxBytesError
			if errors.As(e.Err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Dữ liệu gửi lên vượt quá dung lượng cho phép")
				return
			}
		}
	}
}
