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

	"go.uber.org/zap"

	"school-health/config"
	"school-health/internal/api/handler"
	"school-health/internal/api/middleware"
	"school-health/internal/api/router"
	"school-health/internal/realtime"
	"school-health/internal/service"
	"school-health/internal/session"
	"school-health/internal/state"
	"school-health/internal/store"
	"school-health/pkg/blob"
	"school-health/pkg/database"
	"school-health/pkg/jwt"
	applogger "school-health/pkg/logger"
	"school-health/pkg/metrics"
	"school-health/pkg/redis"
)

// app 进程级依赖
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	rdb     *redis.Client
	store   store.Store
	metrics *metrics.Metrics
	ctrl    *state.Controller
	closers []func()
}

// bootstrap 1. 配置 2. 日志 3. Redis（可选） 4. 存储 5. 状态控制器
func bootstrap(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, metrics: metrics.New()}
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Driver),
		zap.String("blob", cfg.Blob.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// Redis 可选：连接失败时降级运行，黑名单、限流与多实例广播不可用
	if cfg.Redis.Enabled {
		rdb, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，Token 黑名单与多实例同步不可用", zap.Error(err))
		} else {
			a.rdb = rdb
			a.closers = append(a.closers, func() { _ = rdb.Close() })
		}
	}

	st, err := a.openStore(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	a.store = st
	a.closers = append(a.closers, func() { _ = st.Close() })

	a.ctrl = state.NewController(st, logger, a.metrics)
	return a, nil
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	var notifier store.Notifier
	if a.rdb != nil {
		notifier = a.rdb
	}

	switch a.cfg.Store.Driver {
	case "memory", "":
		return store.NewMemory(a.logger), nil
	case "sqlite":
		return store.NewSQLite(ctx, a.cfg.Store.SQLitePath, notifier, a.logger)
	case "postgres":
		db, err := database.NewDB(&a.cfg.Database, a.cfg.Log.Level, a.logger)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		a.closers = append(a.closers, func() { _ = sqlDB.Close() })
		if err := database.RunMigrations(sqlDB, a.logger); err != nil {
			return nil, err
		}
		return store.NewPostgres(ctx, db, notifier, a.logger)
	default:
		return nil, fmt.Errorf("未知的 store.driver: %s", a.cfg.Store.Driver)
	}
}

// close 按注册的逆序释放资源
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// ────────────────────── serve ──────────────────────

func runServe(parent context.Context, configPath string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close()
	cfg, logger := a.cfg, a.logger

	blobs, err := blob.New(ctx, &cfg.Blob)
	if err != nil {
		return fmt.Errorf("初始化附件存储失败: %w", err)
	}

	// 依赖注入: State → Session → Service → Handler
	sessions := session.NewManager(a.ctrl, blobs, cfg.Feature.EnforceYearLock)
	sessions.SetIdleTTL(cfg.Auth.AccessTokenTTL)
	a.ctrl.OnChange(sessions.RefreshAll)
	go sessions.Run(ctx, 10*time.Minute)

	hub := realtime.NewHub(logger, a.metrics)
	hub.Attach(a.ctrl)

	if err := a.ctrl.Start(ctx); err != nil {
		return err
	}
	defer a.ctrl.Stop()

	jwtMgr := jwt.NewManager(&cfg.Auth)
	var blacklist service.TokenBlacklist
	var mwBlacklist middleware.Blacklist
	if a.rdb != nil {
		blacklist, mwBlacklist = a.rdb, a.rdb
	}

	svc := service.NewService(cfg, a.ctrl, sessions, blobs, jwtMgr, blacklist, logger)
	engine, err := router.Setup(cfg, router.Deps{
		Handler:   handler.NewHandler(svc),
		JWT:       jwtMgr,
		Redis:     a.rdb,
		Blacklist: mwBlacklist,
		Metrics:   a.metrics,
		WS:        realtime.NewHandler(hub, cfg.Server.CORS.AllowOrigins, logger),
		Ready:     a.ctrl.Loaded,
	}, logger)
	if err != nil {
		return fmt.Errorf("初始化路由失败: %w", err)
	}

	// 启动 HTTP 服务器（优雅关闭）；WriteTimeout 不设置，避免切断 WebSocket
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP 服务器异常: %w", err)
		}
	case <-ctx.Done():
		logger.Info("收到关闭信号，开始优雅关闭...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务器已关闭")
	return nil
}

// ────────────────────── seed ──────────────────────

// runSeed 不订阅存储，直接覆盖写入默认数据
func runSeed(parent context.Context, configPath string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	a, err := bootstrap(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.ctrl.Reset(ctx); err != nil {
		return fmt.Errorf("写入默认数据失败: %w", err)
	}
	a.logger.Info("已写入默认数据")
	fmt.Fprintln(os.Stdout, "OK")
	return nil
}
