// Package query 列表接口共用的分页、排序、筛选和搜索参数解析
package query

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"akademi/internal/validation"
	"akademi/pkg/response"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MaxOffset    = math.MaxInt32
)

// Filter 可筛选字段
type Filter struct {
	Column string
	// Allowed 允许的取值（小写）；为空表示任意值，按不区分大小写匹配
	Allowed []string
}

// Schema 某个列表接口允许的参数
type Schema struct {
	// SortFields 对外字段名 -> 数据库列名
	SortFields map[string]string
	// DefaultSort 形如 "-createdAt"
	DefaultSort   string
	Filters       map[string]Filter
	SearchColumns []string
	MaxLimit      int
}

// Descriptor 解析并校验后的查询条件
type Descriptor struct {
	Page    int
	Limit   int
	Sort    string // 对外字段名，可能带 "-"
	column  string
	desc    bool
	Search  string            // 原始搜索词（已 trim）
	Filters map[string]string // 参数名 -> 规范化后的值
	schema  *Schema
}

// Parse 解析 URL 参数，任何不合法参数都返回 InvalidParameter 和对应字段错误
func (s *Schema) Parse(values url.Values) (Descriptor, *response.BusinessError) {
	d := Descriptor{
		Page:    DefaultPage,
		Limit:   DefaultLimit,
		Filters: map[string]string{},
		schema:  s,
	}
	fields := map[string]string{}

	maxLimit := s.MaxLimit
	if maxLimit == 0 {
		maxLimit = MaxLimit
	}

	if raw, ok := lookup(values, "page"); ok {
		page, err := positiveInt(raw)
		if err != nil {
			fields["page"] = "page must be an integer greater than or equal to 1"
		} else {
			d.Page = page
		}
	}

	if raw, ok := lookup(values, "limit"); ok {
		limit, err := positiveInt(raw)
		switch {
		case err != nil:
			fields["limit"] = "limit must be an integer greater than or equal to 1"
		case limit > maxLimit:
			fields["limit"] = fmt.Sprintf("limit must be %d or less", maxLimit)
		default:
			d.Limit = limit
		}
	}

	// 偏移量不超过 MaxOffset，避免 (page-1)*limit 溢出
	if _, bad := fields["page"]; !bad && d.Page-1 > MaxOffset/d.Limit {
		fields["page"] = fmt.Sprintf("page must be %d or less for limit %d", MaxOffset/d.Limit+1, d.Limit)
	}

	sortParam := s.DefaultSort
	if raw, ok := lookup(values, "sort"); ok {
		sortParam = raw
	}
	if sortParam != "" {
		name := strings.TrimPrefix(sortParam, "-")
		column, ok := s.SortFields[name]
		if !ok {
			fields["sort"] = fmt.Sprintf("sort must be one of: %s (prefix with - for descending)", strings.Join(s.sortNames(), ", "))
		} else {
			d.Sort = sortParam
			d.column = column
			d.desc = strings.HasPrefix(sortParam, "-")
		}
	}

	for name, f := range s.Filters {
		raw, ok := lookup(values, name)
		if !ok {
			continue
		}
		v := strings.ToLower(raw)
		if len(f.Allowed) > 0 && !contains(f.Allowed, v) {
			fields[name] = fmt.Sprintf("%s must be one of: %s", name, strings.Join(f.Allowed, ", "))
			continue
		}
		d.Filters[name] = v
	}

	if raw, ok := lookup(values, "search"); ok {
		if len(s.SearchColumns) == 0 {
			fields["search"] = "search is not supported here"
		} else if len([]rune(raw)) > 100 {
			fields["search"] = "search must be 100 characters or less"
		} else {
			d.Search = raw
		}
	}

	if len(fields) > 0 {
		return Descriptor{}, response.NewBusinessError(
			response.WithErrorCode(response.InvalidParameter),
			response.WithErrorMessage(validation.FailedMessage),
			response.WithFields(fields),
		)
	}
	return d, nil
}

// Offset 分页偏移量
func (d Descriptor) Offset() int {
	return (d.Page - 1) * d.Limit
}

// Column 排序列名
func (d Descriptor) Column() string { return d.column }

// Desc 是否倒序
func (d Descriptor) Desc() bool { return d.desc }

// Where 只应用筛选和搜索条件，用于计数
func (d Descriptor) Where(db *gorm.DB) *gorm.DB {
	if d.schema == nil {
		return db
	}
	names := make([]string, 0, len(d.Filters))
	for name := range d.Filters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := d.schema.Filters[name]
		if len(f.Allowed) > 0 {
			db = db.Where(clause.Eq{Column: clause.Column{Name: f.Column}, Value: d.Filters[name]})
		} else {
			db = db.Where(fmt.Sprintf("LOWER(%s) = ?", quote(f.Column)), d.Filters[name])
		}
	}

	if d.Search != "" {
		pattern := "%" + EscapeLike(strings.ToLower(d.Search)) + "%"
		conds := make([]string, 0, len(d.schema.SearchColumns))
		args := make([]any, 0, len(d.schema.SearchColumns))
		for _, col := range d.schema.SearchColumns {
			conds = append(conds, fmt.Sprintf(`LOWER(%s) LIKE LOWER(?) ESCAPE '\'`, quote(col)))
			args = append(args, pattern)
		}
		db = db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	return db
}

// Paginate 应用排序和分页
func (d Descriptor) Paginate(db *gorm.DB) *gorm.DB {
	if d.column != "" {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: d.column}, Desc: d.desc})
	}
	// 排序字段可能重复，追加主键保证分页稳定
	db = db.Order(clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: "id"}})
	return db.Offset(d.Offset()).Limit(d.Limit)
}

// Apply 筛选、搜索、排序和分页一起应用
func (d Descriptor) Apply(db *gorm.DB) *gorm.DB {
	return d.Paginate(d.Where(db))
}

// NewPagination 根据总数生成分页信息
func NewPagination(total int64, d Descriptor) response.Pagination {
	totalPages := 0
	if d.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(d.Limit)))
	}
	return response.Pagination{
		Total:      total,
		TotalPages: totalPages,
		Page:       d.Page,
		Limit:      d.Limit,
	}
}

// EscapeLike 转义 LIKE 通配符，配合 ESCAPE '\' 使用
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (s *Schema) sortNames() []string {
	names := make([]string, 0, len(s.SortFields))
	for name := range s.SortFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(values url.Values, key string) (string, bool) {
	if _, ok := values[key]; !ok {
		return "", false
	}
	return strings.TrimSpace(values.Get(key)), true
}

func positiveInt(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("must be >= 1")
	}
	return n, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// quote 列名只来自代码中的 Schema，这里只处理 table.column 形式
func quote(col string) string {
	parts := strings.Split(col, ".")
	for i, p := range parts {
		parts[i] = `"` + p + `"`
	}
	return strings.Join(parts, ".")
}
