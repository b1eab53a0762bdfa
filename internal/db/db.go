package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Models 返回需要自动迁移的全部模型，测试与 Init 共用。
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Page{},
		&PageImage{},
		&Tag{},
		&Content{},
		&ContentImage{},
		&ContentText{},
		&NewsCategory{},
		&News{},
		&VideoURL{},
	}
}

// Init 初始化数据库连接并执行自动迁移。
// driver 为空时使用 sqlite，source 为空时回退到 college.db。
func Init(driver, source string) error {
	gdb, err := Open(driver, source, logger.Default.LogMode(logger.Warn))
	if err != nil {
		return err
	}
	if err := Migrate(gdb); err != nil {
		return err
	}
	DB = gdb
	return nil
}

// Open 按驱动建立连接。TranslateError 打开后唯一约束冲突会被转换为 gorm.ErrDuplicatedKey。
func Open(driver, source string, log logger.Interface) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         log,
		TranslateError: true,
	}

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverPostgres:
		if strings.TrimSpace(source) == "" {
			return nil, errors.New("postgres dsn is required")
		}
		return gorm.Open(postgres.Open(source), cfg)
	case "", DriverSQLite:
		path := strings.TrimSpace(source)
		if path == "" {
			path = "college.db"
		}
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		return gorm.Open(sqlite.Open(withForeignKeys(path)), cfg)
	default:
		return nil, errors.New("unsupported database driver: " + driver)
	}
}

// Migrate 为全部模型建表。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(Models()...)
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=1"
	}
	if strings.HasPrefix(dsn, "file:") {
		return dsn + "?_foreign_keys=1"
	}
	return "file:" + dsn + "?_foreign_keys=1"
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") {
		return nil
	}

	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
