package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/collegecms/internal/config"
	"github.com/collegecms/internal/db"
)

func main() {
	cfg := config.Load()

	var username, password string
	flag.StringVar(&username, "username", envOr(cfg.SuperRootUserName, "admin"), "staff username")
	flag.StringVar(&password, "password", cfg.SuperRootPassword, "staff password")
	flag.Parse()

	if password == "" {
		fmt.Fprintln(os.Stderr, "password is required (-password or SUPER_ROOT_PASSWORD)")
		os.Exit(2)
	}

	// 初始化数据库
	if err := db.Init(cfg.DatabaseDriver, cfg.DatabaseSource()); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	var count int64
	if err := db.DB.Model(&db.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		log.Fatal("查询用户失败:", err)
	}
	if count > 0 {
		fmt.Printf("用户 %s 已存在，无需初始化\n", username)
		return
	}

	if err := db.EnsureUser(db.DB, username, password); err != nil {
		log.Fatal("创建用户失败:", err)
	}
	fmt.Printf("管理员用户 %s 创建成功\n", username)
}

func envOr(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
