package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ultramacro/backend/config"
	"ultramacro/backend/internal/repository"
	"ultramacro/backend/internal/service"
	"ultramacro/backend/pkg/database"
	applogger "ultramacro/backend/pkg/logger"
)

// 运维命令行：迁移、预置数据、离线导入表格、签发 / 吊销调试 Token
// 与 HTTP 服务共用同一套 Service，结果以 JSON 输出到 stdout

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	uploader   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "importer",
		Short:         "学业进度数据运维工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "配置文件路径（默认 ./config/config.yaml）")
	cmd.PersistentFlags().StringVar(&opts.uploader, "uploader", "", "记录到上传日志中的操作人")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newDivisionsCmd(opts),
		newCoursesCmd(opts),
		newEnrollmentsCmd(opts),
		newTokenCmd(opts),
	)
	return cmd
}

// app 命令执行所需的依赖
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	repo   *repository.Repository
	svc    *service.Service
}

// newApp 加载配置、连接数据库并组装 Service
func newApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	repo := repository.NewRepository(db)
	return &app{
		cfg:    cfg,
		logger: logger,
		db:     db,
		repo:   repo,
		svc:    service.NewService(cfg, repo, logger),
	}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	a.logger.Sync()
}
