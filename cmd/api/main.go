package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"gin-gorm-auth/internal/core/auth"
	"gin-gorm-auth/internal/core/cache"
	"gin-gorm-auth/internal/core/config"
	"gin-gorm-auth/internal/core/database"
	"gin-gorm-auth/internal/core/logger"
	"gin-gorm-auth/internal/core/server"
	"gin-gorm-auth/internal/domain"
	"gin-gorm-auth/internal/repo"
	"gin-gorm-auth/internal/service"
	"gin-gorm-auth/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, cleanup := logger.Build(logger.Options{
		Level:       cfg.Log.Level,
		JSON:        cfg.Log.JSON,
		AddCaller:   true,
		Development: cfg.App.Env == "local",
		Rotate: logger.FileRotate{
			Enable:     cfg.Log.File.Enable,
			Filename:   cfg.Log.File.Filename,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	// 缺密钥等配置错误直接拒绝启动
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	users, closeStore := mustUserRepo(cfg, log)
	defer closeStore()

	// JWT
	jwter, err := auth.NewJWTer([]byte(cfg.JWT.Secret),
		auth.WithIssuer(cfg.JWT.Issuer),
		auth.WithTTL(cfg.JWT.AccessTTL(), cfg.JWT.RefreshTTL()),
	)
	if err != nil {
		log.Fatal("jwt init", zap.Error(err))
	}

	svc, err := service.NewCredentialService(users, jwter, log)
	if err != nil {
		log.Fatal("service init", zap.Error(err))
	}

	h := cfg.App.HTTP
	r := router.NewAPIEngine(log, svc, jwter, router.Options{
		MaxConcurrent:  h.MaxConcurrent,
		MaxBodyBytes:   h.MaxBodyBytes,
		RequestTimeout: time.Duration(h.RequestTimeoutSec) * time.Second,
		CORSOrigins:    h.CORSOrigins,
	})

	// HTTP Server
	addr := server.Addr(h.Host, h.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(h.ReadTimeoutSec)*time.Second,
		time.Duration(h.WriteTimeoutSec)*time.Second,
		time.Duration(h.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := h.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(h.Port)
	log.Info("auth api starting",
		zap.String("addr", addr),
		zap.String("env", cfg.App.Env),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("auth api start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	log.Info("auth api stopped gracefully")
}

// mustUserRepo 按 db.driver 选存储；配置了 redis 时在外层包一层读缓存
func mustUserRepo(cfg *config.Config, l *zap.Logger) (domain.UserRepository, func()) {
	var (
		users   domain.UserRepository
		closers []func()
	)

	if cfg.DB.Driver == "memory" {
		l.Warn("using in-memory user store, data is lost on restart")
		users = repo.NewMemoryUserRepo()
	} else {
		db := mustOpenDB(cfg, l)
		l.Info("database connected",
			zap.String("driver", cfg.DB.Driver),
			zap.String("dsn", database.MaskDSN(cfg.DB.DSN)),
		)
		ur := repo.NewUserRepo(db)
		if cfg.DB.AutoMigrate {
			if err := ur.Migrate(context.Background()); err != nil {
				l.Fatal("automigrate failed", zap.Error(err))
			}
			l.Info("automigrate done")
		}
		closers = append(closers, func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		})
		users = ur
	}

	if cfg.Redis.Enabled() {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB).WithPrefix(cfg.App.Name + ":")
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := c.Ping(ctx)
		cancel()
		if err != nil {
			// 缓存不可用不影响主流程
			l.Warn("redis unavailable, user cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = c.Close()
		} else {
			l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
			users = repo.NewCachedUserRepo(users, c, cfg.Redis.UserTTL())
			closers = append(closers, func() { _ = c.Close() })
		}
	}

	return users, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
