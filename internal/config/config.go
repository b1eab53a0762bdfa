package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	DatabaseDriver    string
	DatabasePath      string
	DatabaseDSN       string
	SessionSecret     string
	GinMode           string
	MediaDir          string
	MediaURLPath      string
	SiteBaseURL       string
	SuperRootUserName string
	SuperRootPassword string
	StorageBackend    string
	S3                S3Config
}

// S3Config 对象存储配置，仅在 STORAGE_BACKEND=s3 时生效
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
	UsePathStyle    bool
}

// Load 先尝试读取 .env，再从环境变量读取应用配置，并为缺失项提供默认值。
// 已存在的环境变量不会被 .env 覆盖。
func Load() AppConfig {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] failed to load .env: %v", err)
	}
	return fromEnv()
}

func fromEnv() AppConfig {
	port := envOr("PORT", "8000")

	databaseDriver := strings.ToLower(envOr("DATABASE_DRIVER", "sqlite"))
	databaseDSN := env("DATABASE_DSN")
	if databaseDriver == "postgres" && databaseDSN == "" {
		log.Printf("[config] DATABASE_DRIVER=postgres but DATABASE_DSN is empty")
	}

	return AppConfig{
		ListenAddr:        envOr("LISTEN_ADDR", fmt.Sprintf(":%s", port)),
		Port:              port,
		DatabaseDriver:    databaseDriver,
		DatabasePath:      envOr("DATABASE_PATH", "college.db"),
		DatabaseDSN:       databaseDSN,
		SessionSecret:     envOr("SESSION_SECRET", "college-cms-dev-secret"),
		GinMode:           envOr("GIN_MODE", "release"),
		MediaDir:          envOr("MEDIA_DIR", "media"),
		MediaURLPath:      "/" + strings.Trim(envOr("MEDIA_URL_PATH", "/media"), "/"),
		SiteBaseURL:       strings.TrimRight(env("SITE_BASE_URL"), "/"),
		SuperRootUserName: env("SUPER_ROOT_USER_NAME"),
		SuperRootPassword: env("SUPER_ROOT_PASSWORD"),
		StorageBackend:    strings.ToLower(envOr("STORAGE_BACKEND", "local")),
		S3: S3Config{
			Bucket:          env("S3_BUCKET"),
			Region:          envOr("S3_REGION", "us-east-1"),
			Endpoint:        env("S3_ENDPOINT"),
			AccessKeyID:     env("S3_ACCESS_KEY_ID"),
			SecretAccessKey: env("S3_SECRET_ACCESS_KEY"),
			PublicURL:       env("S3_PUBLIC_URL"),
			UsePathStyle:    envBool("S3_USE_PATH_STYLE", false),
		},
	}
}

// DatabaseSource returns the DSN for postgres or the file path for sqlite.
func (c AppConfig) DatabaseSource() string {
	if c.DatabaseDriver == "postgres" {
		return c.DatabaseDSN
	}
	return c.DatabasePath
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envOr(key, fallback string) string {
	if value := env(key); value != "" {
		return value
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	value := env(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("[config] invalid boolean for %s: %q", key, value)
		return fallback
	}
	return parsed
}
