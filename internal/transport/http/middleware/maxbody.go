package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "gin-gorm-auth/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；声明了 Content-Length 的超限请求直接拒绝，
// 其余在读 body 时由 http.MaxBytesReader 截断（绑定层映射为 REQUEST_TOO_LARGE）
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, resp.CodeRequestTooLarge, "")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
