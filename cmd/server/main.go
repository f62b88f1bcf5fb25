package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/firasabed78/culinary--academy/config"
	"github.com/firasabed78/culinary--academy/internal/api/handler"
	"github.com/firasabed78/culinary--academy/internal/api/router"
	"github.com/firasabed78/culinary--academy/internal/repository"
	"github.com/firasabed78/culinary--academy/internal/service"
	"github.com/firasabed78/culinary--academy/pkg/database"
	"github.com/firasabed78/culinary--academy/pkg/jwt"
	applogger "github.com/firasabed78/culinary--academy/pkg/logger"
	"github.com/firasabed78/culinary--academy/pkg/mailer"
	"github.com/firasabed78/culinary--academy/pkg/payment"
	"github.com/firasabed78/culinary--academy/pkg/redis"
	"github.com/firasabed78/culinary--academy/pkg/storage"
)

// timeHHMMPattern 校验 "HH:MM" 零填充墙上时间
var timeHHMMPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

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

	// 3. 注册自定义校验器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("timehhmm", func(fl validator.FieldLevel) bool {
			return timeHHMMPattern.MatchString(fl.Field().String())
		})
	}

	// 4. 连接数据库
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 4.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 5. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与限流功能将不可用", zap.Error(err))
		rdb = nil
	}

	// 6. 初始化基础设施组件
	jwtMgr := jwt.NewManager(&cfg.Auth)
	gateway := payment.NewClient(&cfg.Payment, logger)
	mail := mailer.NewSMTPMailer(&cfg.Mail, logger)
	store, err := storage.NewDiskStorage(cfg.Upload.Dir)
	if err != nil {
		logger.Fatal("初始化文件存储失败", zap.Error(err))
	}

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, gateway, mail, store, logger)
	h := handler.NewHandler(svc)

	// 8. 定时任务：每天早上 8 点发送开课提醒
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 8 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := svc.Notification.SendCourseStartReminders(ctx); err != nil {
			logger.Error("开课提醒任务失败", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("注册定时任务失败", zap.Error(err))
	}
	scheduler.Start()

	// 9. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 10. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 11. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if closeDB, _ := db.DB(); closeDB != nil {
		closeDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("应用已退出")
}
