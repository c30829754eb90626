package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gin-gorm-auth/internal/core/auth"
	"gin-gorm-auth/internal/core/server"
	"gin-gorm-auth/internal/service"
	"gin-gorm-auth/internal/transport/http/handler"
	mdw "gin-gorm-auth/internal/transport/http/middleware"
	resp "gin-gorm-auth/internal/transport/http/response"
)

type Options struct {
	MaxConcurrent  int64
	ConcurrentWait time.Duration
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	CORSOrigins    []string
}

func (o Options) withDefaults() Options {
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 300
	}
	if o.ConcurrentWait <= 0 {
		o.ConcurrentWait = time.Second
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 1 << 20
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 10 * time.Second
	}
	return o
}

func NewAPIEngine(l *zap.Logger, svc *service.CredentialService, jwter *auth.JWTer, opt Options) *gin.Engine {
	opt = opt.withDefaults()
	r := server.NewRouter(l, opt.CORSOrigins)

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.Metrics(),
		mdw.AccessLog(l),
		mdw.ConcurrencyLimit(opt.MaxConcurrent, opt.ConcurrentWait),
		mdw.MaxBodyBytes(opt.MaxBodyBytes),
		mdw.Timeout(opt.RequestTimeout),
	)

	r.NoRoute(func(c *gin.Context) { resp.Abort(c, resp.CodeNotFound, "") })

	// 健康检查 / 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, resp.OK(gin.H{"status": "ok"})) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	// 鉴权分组（/me 必须挂这里，才能拿到 userId）
	authUser := api.Group("")
	authUser.Use(mdw.AuthJWT(jwter))

	handler.NewAuthHandler(svc).Mount(api, authUser)

	return r
}
