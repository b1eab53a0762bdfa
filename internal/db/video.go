package db

import (
	"strings"
	"time"
)

// VideoURL 视频条目：外部链接或上传文件二选一，文件优先
type VideoURL struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"size:200;not null"`
	URL       string `gorm:"size:500"`
	File      string `gorm:"size:255"`
	CreatedAt time.Time
}

// TableName 指定自定义表名。
func (VideoURL) TableName() string {
	return "video_urls"
}

// Source returns the effective source: the uploaded file when present,
// otherwise the external URL.
func (v VideoURL) Source() string {
	if file := strings.TrimSpace(v.File); file != "" {
		return file
	}
	return strings.TrimSpace(v.URL)
}
