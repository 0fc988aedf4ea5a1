package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ultramacro/backend/config"
)

// serviceName 写入每条日志的 service 字段，便于在集中日志中区分来源
const serviceName = "ultramacro"

// NewLogger 根据配置初始化 Zap 日志实例
//
// format:
//   - console: 开发模式，彩色级别输出
//   - json（默认）: 生产模式，ISO8601 时间戳
func NewLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	switch cfg.Format {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "time"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	// 解析日志级别
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", cfg.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.InitialFields = map[string]interface{}{"service": serviceName}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("初始化日志器失败: %w", err)
	}

	return logger, nil
}

// Named 为子模块创建带名称的日志器（如 upload、progress）
func Named(base *zap.Logger, module string) *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	return base.Named(module)
}
