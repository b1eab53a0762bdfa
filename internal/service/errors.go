package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// 错误类别，handler 依此映射 HTTP 状态码
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// FieldError 携带出错字段，Unwrap 返回所属类别。
type FieldError struct {
	Field   string
	Message string
	kind    error
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return e.kind
}

func invalidField(field, message string) error {
	return &FieldError{Field: field, Message: message, kind: ErrValidation}
}

func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

var (
	ErrPageNotFound         = notFound("page")
	ErrContentNotFound      = notFound("content")
	ErrContentImageNotFound = notFound("content image")
	ErrContentTextNotFound  = notFound("content text")
	ErrTagNotFound          = notFound("tag")
	ErrNewsNotFound         = notFound("news")
	ErrCategoryNotFound     = notFound("news category")
	ErrVideoNotFound        = notFound("video")
	ErrUserNotFound         = notFound("user")

	ErrDuplicateSlug = &FieldError{Field: "slug", Message: "duplicate slug", kind: ErrValidation}
	ErrInvalidSlug   = &FieldError{Field: "slug", Message: "slug may only contain letters, numbers, hyphens and underscores", kind: ErrValidation}
	ErrEmptySlug     = &FieldError{Field: "slug", Message: "slug could not be derived from the title", kind: ErrValidation}
	ErrSlugConflict  = &FieldError{Field: "slug", Message: "slug was taken by a concurrent write", kind: ErrConflict}
	ErrPageCycle     = &FieldError{Field: "parent", Message: "a page cannot be nested under itself or its descendants", kind: ErrValidation}
	ErrCategoryCycle = &FieldError{Field: "parent", Message: "a category cannot be nested under itself or its descendants", kind: ErrValidation}
	ErrRoleConflict  = &FieldError{Field: "role", Message: "content cannot be both a page and a carousel item", kind: ErrValidation}
	ErrVideoSource   = &FieldError{Field: "url", Message: "either a url or a file is required", kind: ErrValidation}
	ErrTreeTooDeep   = &FieldError{Field: "children", Message: "nested pages exceed the maximum depth", kind: ErrValidation}
)

// isUniqueViolation 判断是否为唯一约束冲突，兼容 sqlite 与 postgres 的原始错误文本。
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// translateWriteError 把写入时的唯一约束冲突转换为 ErrSlugConflict。
func translateWriteError(err error) error {
	if isUniqueViolation(err) {
		return ErrSlugConflict
	}
	return err
}
