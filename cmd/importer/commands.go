package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ultramacro/backend/config"
	"ultramacro/backend/internal/dto"
	"ultramacro/backend/internal/seed"
	"ultramacro/backend/internal/service"
	"ultramacro/backend/pkg/database"
	"ultramacro/backend/pkg/jwt"
	"ultramacro/backend/pkg/redis"
)

// ────────────────────── migrate / seed ──────────────────────

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移（--down 回滚一步）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			if down {
				return database.RollbackMigration(sqlDB, a.logger)
			}
			return database.RunMigrations(sqlDB, a.logger)
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "回滚最近一次迁移")
	return cmd
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "按配置补齐预置规章",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			n, err := seed.EnsureRegulations(cmd.Context(), a.repo, a.cfg.Seed.Regulations, a.logger)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]int{"regulations": n})
		},
	}
}

// ────────────────────── 表格导入 ──────────────────────

func newDivisionsCmd(opts *rootOptions) *cobra.Command {
	var regulationID int

	cmd := &cobra.Command{
		Use:   "divisions FILE",
		Short: "导入方向表",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkbook(opts, args[0], func(a *app, f io.Reader, name string) (interface{}, error) {
				return a.svc.Upload.UploadDivisions(cmd.Context(), f, name, regulationID, opts.uploader)
			}, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&regulationID, "regulation", 0, "非独立项目所属的规章 ID")
	return cmd
}

func newCoursesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "courses FILE",
		Short: "导入学分表",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkbook(opts, args[0], func(a *app, f io.Reader, name string) (interface{}, error) {
				return a.svc.Upload.UploadCourses(cmd.Context(), f, name, opts.uploader)
			}, cmd.OutOrStdout())
		},
	}
}

func newEnrollmentsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "enrollments FILE",
		Short: "导入成绩单并更新学生进度",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkbook(opts, args[0], func(a *app, f io.Reader, name string) (interface{}, error) {
				report, err := a.svc.Upload.UploadEnrollments(cmd.Context(), f, name, opts.uploader)
				if err != nil {
					return nil, err
				}
				return dto.EnrollmentUploadResponse{
					Total:   len(report),
					Summary: service.SummarizeReport(report),
					Report:  report,
				}, nil
			}, cmd.OutOrStdout())
		},
	}
}

type workbookFunc func(a *app, f io.Reader, name string) (interface{}, error)

// withWorkbook 打开文件、组装依赖并把结果以 JSON 打印
func withWorkbook(opts *rootOptions, path string, fn workbookFunc, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("打开文件失败: %w", err)
	}
	defer f.Close()

	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.close()

	name := filepath.Base(path)
	start := time.Now()
	result, err := fn(a, f, name)
	if err != nil {
		a.logger.Error("导入失败", zap.String("file", name), zap.Error(err))
		return err
	}
	a.logger.Info("导入完成", zap.String("file", name), zap.Duration("elapsed", time.Since(start)))

	return printJSON(out, result)
}

// ────────────────────── token ──────────────────────

func newTokenCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "签发或吊销调试用 Access Token",
	}

	var userID, role string
	issue := &cobra.Command{
		Use:   "issue",
		Short: "签发 Access Token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(userID, role)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"access_token": token,
				"expires_in":   int(cfg.Auth.AccessTokenTTL.Seconds()),
			})
		},
	}
	issue.Flags().StringVar(&userID, "user", "", "用户 ID")
	issue.Flags().StringVar(&role, "role", "admin", "角色")
	_ = issue.MarkFlagRequired("user")

	revoke := &cobra.Command{
		Use:   "revoke TOKEN",
		Short: "将 Token 加入黑名单直到过期",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			claims, err := jwt.NewManager(&cfg.Auth).ParseToken(args[0])
			if err != nil {
				return err
			}

			rdb, err := redis.NewClient(&cfg.Redis, zap.NewNop())
			if err != nil {
				return err
			}
			defer rdb.Close()

			ttl := time.Until(claims.ExpiresAt.Time)
			if err := rdb.BlacklistToken(cmd.Context(), claims.ID, ttl); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{"revoked": claims.ID})
		},
	}

	cmd.AddCommand(issue, revoke)
	return cmd
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
