package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"gin-gorm-auth/internal/core/auth"
	httpez "gin-gorm-auth/internal/transport/http/ez"
	resp "gin-gorm-auth/internal/transport/http/response"
)

// AuthJWT 只接受 access 令牌；通过后写入 userId
func AuthJWT(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		tok, ok := strings.CutPrefix(ah, "Bearer ")
		if !ok || tok == "" {
			resp.Abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		claims, ok := j.Verify(tok)
		if !ok || claims.Type != auth.TokenAccess {
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		uid, ok := auth.SubjectOf(claims)
		if !ok {
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		c.Set(httpez.KeyUserID, uid)
		c.Next()
	}
}
