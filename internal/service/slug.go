package service

import (
	"fmt"
	"strings"

	"github.com/collegecms/internal/slug"
	"gorm.io/gorm"
)

// 各实体 slug 字段的最大长度
const (
	pageSlugMaxLen     = 200
	contentSlugMaxLen  = 200
	newsSlugMaxLen     = 200
	tagSlugMaxLen      = 100
	categorySlugMaxLen = 100
)

// assignSlug 校验调用方给出的 slug，或从标题派生一个；随后在 model 对应的表内检查唯一性。
// excludeID 非空时跳过正在更新的记录。重复时不会自动追加后缀。
func assignSlug(tx *gorm.DB, model interface{}, requested, title string, maxLen int, excludeID interface{}) (string, error) {
	candidate := strings.TrimSpace(requested)
	if candidate != "" {
		if !slug.Valid(candidate) {
			return "", ErrInvalidSlug
		}
		if len(candidate) > maxLen {
			return "", invalidField("slug", fmt.Sprintf("slug must be at most %d characters", maxLen))
		}
	} else {
		candidate = slug.Make(title, maxLen)
		if candidate == "" {
			return "", ErrEmptySlug
		}
	}

	query := tx.Model(model).Where("slug = ?", candidate)
	if excludeID != nil {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return "", ErrDuplicateSlug
	}
	return candidate, nil
}

// refreshSlug 用于更新：已有 slug 保持不变，只有存量为空时才重新分配。
func refreshSlug(tx *gorm.DB, model interface{}, current, requested, title string, maxLen int, id interface{}) (string, error) {
	if strings.TrimSpace(current) != "" {
		return current, nil
	}
	return assignSlug(tx, model, requested, title, maxLen, id)
}

func requireText(field, value string, maxLen int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", invalidField(field, field+" is required")
	}
	if maxLen > 0 && len([]rune(trimmed)) > maxLen {
		return "", invalidField(field, fmt.Sprintf("%s must be at most %d characters", field, maxLen))
	}
	return trimmed, nil
}

func optionalText(field, value string, maxLen int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if maxLen > 0 && len([]rune(trimmed)) > maxLen {
		return "", invalidField(field, fmt.Sprintf("%s must be at most %d characters", field, maxLen))
	}
	return trimmed, nil
}
