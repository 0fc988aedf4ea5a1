package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Progress ProgressConfig `mapstructure:"progress"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 校验配置
// Token 由外部认证服务签发，本服务只负责校验
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	Issuer         string        `mapstructure:"issuer"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// UploadConfig 表格上传配置
type UploadConfig struct {
	MaxFileSize     int64         `mapstructure:"max_file_size"`     // 单个文件最大字节数
	CoursesSheet    string        `mapstructure:"courses_sheet"`     // 课程表所在 Sheet 名称
	RateLimit       int           `mapstructure:"rate_limit"`        // 窗口内允许的上传次数
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"` // 限流窗口
}

// ProgressConfig 学业进度计算规则
// 默认值即学校现行规则，仅在规则调整时通过配置覆盖
type ProgressConfig struct {
	Level2Hours    int      `mapstructure:"level2_hours"` // passed_hours 超过该值升入二年级
	Level3Hours    int      `mapstructure:"level3_hours"`
	Level4Hours    int      `mapstructure:"level4_hours"`
	PassingGrades  []string `mapstructure:"passing_grades"`
	ResearchGrade  string   `mapstructure:"research_grade"`
	MinGraduateGPA float64  `mapstructure:"min_graduate_gpa"`
}

// SeedConfig 启动时需要保证存在的基础数据
type SeedConfig struct {
	Regulations []RegulationSeed `mapstructure:"regulations"`
}

// RegulationSeed 预置的规章
type RegulationSeed struct {
	Name   string `mapstructure:"name"`
	MaxGPA int    `mapstructure:"max_gpa"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 仅用于本地开发，不存在时忽略
	_ = godotenv.Load()

	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "ultramacro")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Africa/Cairo")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "") // 使 UMR_AUTH_JWT_SECRET 在 Unmarshal 时生效
	v.SetDefault("auth.access_token_ttl", "12h")
	v.SetDefault("auth.issuer", "ultramacro")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("upload.max_file_size", 10<<20) // 10MB
	v.SetDefault("upload.courses_sheet", "ساعات معتمدة")
	v.SetDefault("upload.rate_limit", 10)
	v.SetDefault("upload.rate_limit_window", "1m")

	v.SetDefault("progress.level2_hours", 28)
	v.SetDefault("progress.level3_hours", 62)
	v.SetDefault("progress.level4_hours", 98)
	v.SetDefault("progress.passing_grades", []string{"A", "B", "C", "D"})
	v.SetDefault("progress.research_grade", "بح")
	v.SetDefault("progress.min_graduate_gpa", 1.0)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("UMR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("配置校验失败: upload.max_file_size 必须大于 0")
	}
	if c.Upload.CoursesSheet == "" {
		return fmt.Errorf("配置校验失败: upload.courses_sheet 不能为空")
	}
	if !(c.Progress.Level2Hours < c.Progress.Level3Hours && c.Progress.Level3Hours < c.Progress.Level4Hours) {
		return fmt.Errorf("配置校验失败: progress 年级阈值必须递增")
	}
	return nil
}

// DefaultProgress 返回现行学业规则，供测试与 CLI 在无配置文件时使用
func DefaultProgress() ProgressConfig {
	return ProgressConfig{
		Level2Hours:    28,
		Level3Hours:    62,
		Level4Hours:    98,
		PassingGrades:  []string{"A", "B", "C", "D"},
		ResearchGrade:  "بح",
		MinGraduateGPA: 1,
	}
}
