package service

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ListParams 是列表接口的通用查询参数。未声明的过滤与排序字段会被忽略。
type ListParams struct {
	Filters  map[string][]string
	Search   string
	Ordering string
	Page     int
	PageSize int
}

// Filter returns the first non-empty value of a filter key.
func (p ListParams) Filter(key string) string {
	for _, value := range splitValues(p.Filters[key]) {
		return value
	}
	return ""
}

// FilterField 声明一个可过滤字段：按列等值/成员匹配，或由 Apply 自定义。
type FilterField struct {
	Column   string
	Bool     bool
	Uint     bool
	Nullable bool
	Apply    func(query *gorm.DB, values []string) *gorm.DB
}

// QuerySpec 声明某个实体支持的过滤、搜索与排序。
type QuerySpec struct {
	Table        string
	Filters      map[string]FilterField
	SearchFields []string
	OrderFields  map[string]string
	DefaultOrder []string
}

// ListResult 汇总分页结果
type ListResult[T any] struct {
	Items      []T
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// list 统计总数后取出当前页。preload 可为空。
func list[T any](tx *gorm.DB, spec QuerySpec, params ListParams, preload func(*gorm.DB) *gorm.DB) (ListResult[T], error) {
	result := ListResult[T]{
		Page:     normalizePage(params.Page),
		PageSize: normalizePageSize(params.PageSize),
	}

	if err := spec.filter(tx.Model(new(T)), params).Count(&result.Total).Error; err != nil {
		return result, err
	}
	result.TotalPages = calculateTotalPages(result.Total, result.PageSize)

	query := spec.order(spec.filter(tx.Model(new(T)), params), params.Ordering)
	if preload != nil {
		query = preload(query)
	}

	items := make([]T, 0)
	// 超出末页直接返回空结果，offset 不会溢出
	if result.Page > result.TotalPages {
		result.Items = items
		return result, nil
	}
	if err := query.
		Limit(result.PageSize).
		Offset((result.Page - 1) * result.PageSize).
		Find(&items).Error; err != nil {
		return result, err
	}
	result.Items = items
	return result, nil
}

func (spec QuerySpec) column(name string) string {
	if spec.Table == "" || strings.Contains(name, ".") {
		return name
	}
	return spec.Table + "." + name
}

func (spec QuerySpec) filter(query *gorm.DB, params ListParams) *gorm.DB {
	for key, raw := range params.Filters {
		field, ok := spec.Filters[key]
		if !ok {
			continue
		}
		values := splitValues(raw)
		if len(values) == 0 {
			continue
		}
		query = spec.applyFilter(query, field, values)
	}

	if search := strings.TrimSpace(params.Search); search != "" && len(spec.SearchFields) > 0 {
		like := "%" + strings.ToLower(search) + "%"
		clauses := make([]string, 0, len(spec.SearchFields))
		args := make([]interface{}, 0, len(spec.SearchFields))
		for _, field := range spec.SearchFields {
			clauses = append(clauses, "LOWER("+spec.column(field)+") LIKE ?")
			args = append(args, like)
		}
		query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}

	return query
}

func (spec QuerySpec) applyFilter(query *gorm.DB, field FilterField, values []string) *gorm.DB {
	if field.Apply != nil {
		return field.Apply(query, values)
	}

	column := spec.column(field.Column)
	if field.Nullable && isNullLiteral(values[0]) {
		return query.Where(column + " IS NULL")
	}

	args := make([]interface{}, 0, len(values))
	for _, value := range values {
		switch {
		case field.Bool:
			parsed, ok := parseBool(value)
			if !ok {
				continue
			}
			args = append(args, parsed)
		case field.Uint:
			parsed, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				continue
			}
			args = append(args, parsed)
		default:
			args = append(args, value)
		}
	}

	switch len(args) {
	case 0:
		return query
	case 1:
		return query.Where(column+" = ?", args[0])
	default:
		return query.Where(column+" IN ?", args)
	}
}

func (spec QuerySpec) order(query *gorm.DB, ordering string) *gorm.DB {
	clauses := spec.orderClauses(ordering)
	if len(clauses) == 0 {
		clauses = spec.orderClauses(strings.Join(spec.DefaultOrder, ","))
	}

	byID := false
	for _, clause := range clauses {
		query = query.Order(clause)
		if strings.HasPrefix(clause, spec.column("id")+" ") {
			byID = true
		}
	}
	if !byID {
		query = query.Order(spec.column("id") + " asc")
	}
	return query
}

func (spec QuerySpec) orderClauses(ordering string) []string {
	var clauses []string
	for _, part := range strings.Split(ordering, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		direction := "asc"
		if strings.HasPrefix(part, "-") {
			direction = "desc"
			part = strings.TrimPrefix(part, "-")
		}
		column, ok := spec.OrderFields[part]
		if !ok {
			continue
		}
		clauses = append(clauses, spec.column(column)+" "+direction)
	}
	return clauses
}

func splitValues(raw []string) []string {
	values := make([]string, 0, len(raw))
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				values = append(values, trimmed)
			}
		}
	}
	return values
}

func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

func isNullLiteral(raw string) bool {
	switch strings.ToLower(raw) {
	case "null", "none":
		return true
	}
	return false
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizePageSize(size int) int {
	if size <= 0 {
		return defaultPageSize
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
}

func calculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	if total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
