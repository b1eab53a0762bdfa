package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/collegecms/internal/locale"
	"github.com/collegecms/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 错误类别，写入响应体的 kind 字段
const (
	kindValidation = "validation_error"
	kindNotFound   = "not_found"
	kindForbidden  = "forbidden"
	kindConflict   = "conflict"
	kindInternal   = "internal_error"
)

// 列表接口保留的查询参数，其余一律视为过滤条件
var reservedQueryKeys = map[string]struct{}{
	"search":    {},
	"ordering":  {},
	"page":      {},
	"page_size": {},
	"lang":      {},
}

// 已知错误与文案 key 的对应关系，按顺序匹配
var errorMessageKeys = []struct {
	err error
	key string
}{
	{service.ErrPageNotFound, "page_not_found"},
	{service.ErrContentNotFound, "content_not_found"},
	{service.ErrContentImageNotFound, "content_image_not_found"},
	{service.ErrContentTextNotFound, "content_text_not_found"},
	{service.ErrTagNotFound, "tag_not_found"},
	{service.ErrNewsNotFound, "news_not_found"},
	{service.ErrCategoryNotFound, "category_not_found"},
	{service.ErrVideoNotFound, "video_not_found"},
	{service.ErrUserNotFound, "user_not_found"},
	{service.ErrDuplicateSlug, "duplicate_slug"},
	{service.ErrInvalidCredentials, "invalid_credentials"},
	{service.ErrSlugConflict, "conflict"},
}

func init() {
	// 校验错误里的字段名使用 json tag
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			switch name {
			case "-":
				return ""
			case "":
				return field.Name
			}
			return name
		})
	}
}

func requestLanguage(c *gin.Context) string {
	return locale.Resolve(c.Query("lang"), c.GetHeader("Accept-Language")).Language
}

func respondMessage(c *gin.Context, status int, kind, key string, fields map[string]string) {
	body := gin.H{
		"error": locale.Message(requestLanguage(c), key),
		"kind":  kind,
	}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	c.JSON(status, body)
}

// respondError 把服务层错误映射为 HTTP 状态码与统一的错误响应体。
func respondError(c *gin.Context, err error) {
	status, kind := classifyError(err)
	if status == http.StatusInternalServerError {
		log.Printf("[api] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		respondMessage(c, status, kind, "internal_error", nil)
		return
	}

	key := kind
	for _, candidate := range errorMessageKeys {
		if errors.Is(err, candidate.err) {
			key = candidate.key
			break
		}
	}

	var fields map[string]string
	var fieldErr *service.FieldError
	if errors.As(err, &fieldErr) && fieldErr.Field != "" {
		fields = map[string]string{fieldErr.Field: fieldErr.Message}
	}
	respondMessage(c, status, kind, key, fields)
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, kindValidation
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, kindNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, kindConflict
	default:
		return http.StatusInternalServerError, kindInternal
	}
}

// bindJSON 解析请求体，失败时直接写出 400 并返回 false。
func bindJSON(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			fields[fieldPath(fe)] = validationMessage(fe)
		}
		respondMessage(c, http.StatusBadRequest, kindValidation, "validation_error", fields)
		return false
	}

	respondMessage(c, http.StatusBadRequest, kindValidation, "invalid_body", map[string]string{"body": err.Error()})
	return false
}

// fieldPath 去掉顶层结构体名，如 pagePayload.children[0].title -> children[0].title
func fieldPath(fe validator.FieldError) string {
	namespace := fe.Namespace()
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s items.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}

func parseUintParam(c *gin.Context, key string) (uint, bool) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		respondMessage(c, http.StatusNotFound, kindNotFound, "not_found", nil)
		return 0, false
	}
	return uint(id), true
}

// listParams 读取分页、搜索、排序参数，其余查询参数作为过滤条件。
func listParams(c *gin.Context) service.ListParams {
	query := c.Request.URL.Query()
	params := service.ListParams{
		Filters:  make(map[string][]string),
		Search:   strings.TrimSpace(query.Get("search")),
		Ordering: strings.TrimSpace(query.Get("ordering")),
	}
	if page, err := strconv.Atoi(query.Get("page")); err == nil {
		params.Page = page
	}
	if size, err := strconv.Atoi(query.Get("page_size")); err == nil {
		params.PageSize = size
	}
	for key, values := range query {
		if _, reserved := reservedQueryKeys[key]; reserved {
			continue
		}
		params.Filters[key] = values
	}
	return params
}

func listResponse[T any](result service.ListResult[T]) gin.H {
	return gin.H{
		"count":       result.Total,
		"page":        result.Page,
		"page_size":   result.PageSize,
		"total_pages": result.TotalPages,
		"results":     result.Items,
	}
}

// absoluteURL 优先使用配置的站点地址，否则按请求的协议与 Host 拼接。
func (a *API) absoluteURL(c *gin.Context, path string) string {
	if path == "" || isAbsoluteURL(path) {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if a.siteBaseURL != "" {
		return a.siteBaseURL + path
	}
	return detectScheme(c) + "://" + c.Request.Host + path
}

func detectScheme(c *gin.Context) string {
	if proto := strings.TrimSpace(strings.Split(c.GetHeader("X-Forwarded-Proto"), ",")[0]); proto != "" {
		return strings.ToLower(proto)
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}
