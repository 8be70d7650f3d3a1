package query

import (
	"net/url"
	"testing"

	"akademi/pkg/response"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var courseSchema = &Schema{
	SortFields: map[string]string{
		"title":     "title",
		"price":     "price",
		"createdAt": "created_at",
	},
	DefaultSort: "-createdAt",
	Filters: map[string]Filter{
		"level":    {Column: "level", Allowed: []string{"basic", "intermediate", "advanced"}},
		"category": {Column: "category"},
	},
	SearchColumns: []string{"title", "description"},
}

func TestParse_Defaults(t *testing.T) {
	d, err := courseSchema.Parse(url.Values{})
	require.Nil(t, err)
	assert.Equal(t, 1, d.Page)
	assert.Equal(t, 10, d.Limit)
	assert.Equal(t, "-createdAt", d.Sort)
	assert.Equal(t, "created_at", d.Column())
	assert.True(t, d.Desc())
	assert.Equal(t, 0, d.Offset())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"页码为零", "page=0", "page"},
		{"页码为负", "page=-1", "page"},
		{"页码非数字", "page=abc", "page"},
		{"每页为零", "limit=0", "limit"},
		{"每页超过上限", "limit=101", "limit"},
		{"未知排序字段", "sort=enrolledCount", "sort"},
		{"未知筛选值", "level=expert", "level"},
		{"页码超出范围", "page=9223372036854775807&limit=100", "page"},
		{"页码超出范围(默认每页)", "page=214748366", "page"},
		{"页码超过 int64", "page=9223372036854775808", "page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			_, err := courseSchema.Parse(values)
			if assert.NotNil(t, err) {
				assert.Equal(t, response.InvalidParameter, err.Code)
				assert.Contains(t, err.Fields, tt.field)
			}
		})
	}
}

func TestParse_PageUpperBound(t *testing.T) {
	tests := []struct {
		name       string
		page       string
		limit      string
		wantErr    bool
		wantOffset int
	}{
		{name: "偏移量恰好为上限", page: "2147483648", limit: "1", wantOffset: MaxOffset},
		{name: "每页100的最大页码", page: "21474837", limit: "100", wantOffset: 2147483600},
		{name: "每页100超出一页", page: "21474838", limit: "100", wantErr: true},
		{name: "int64 最大值", page: "9223372036854775807", limit: "100", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := courseSchema.Parse(url.Values{"page": {tt.page}, "limit": {tt.limit}})
			if tt.wantErr {
				if assert.NotNil(t, err) {
					assert.Equal(t, response.InvalidParameter, err.Code)
					assert.Contains(t, err.Fields, "page")
				}
				return
			}
			require.Nil(t, err)
			assert.Equal(t, tt.wantOffset, d.Offset())
		})
	}
}

func TestParse_Valid(t *testing.T) {
	values, _ := url.ParseQuery("page=3&limit=5&sort=title&level=ADVANCED&search=%20go%20")
	d, err := courseSchema.Parse(values)
	require.Nil(t, err)
	assert.Equal(t, 3, d.Page)
	assert.Equal(t, 5, d.Limit)
	assert.Equal(t, 10, d.Offset())
	assert.Equal(t, "title", d.Column())
	assert.False(t, d.Desc())
	assert.Equal(t, "advanced", d.Filters["level"])
	assert.Equal(t, "go", d.Search)
}

func TestParse_SearchNotSupported(t *testing.T) {
	s := &Schema{SortFields: map[string]string{"createdAt": "created_at"}}
	_, err := s.Parse(url.Values{"search": {"x"}})
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Fields, "search")
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, EscapeLike("100%"))
	assert.Equal(t, `a\_b`, EscapeLike("a_b"))
	assert.Equal(t, `c:\\tmp`, EscapeLike(`c:\tmp`))
	assert.Equal(t, "plain", EscapeLike("plain"))
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		limit     int
		wantPages int
	}{
		{"空结果", 0, 10, 0},
		{"整页", 20, 10, 2},
		{"不满一页", 21, 10, 3},
		{"单条", 1, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.total, Descriptor{Page: 1, Limit: tt.limit})
			assert.Equal(t, tt.total, p.Total)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, 1, p.Page)
			assert.Equal(t, tt.limit, p.Limit)
		})
	}
}

type row struct {
	ID          uint
	Title       string
	Description string
	Category    string
	Level       string
	Price       float64
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&row{}))

	rows := []row{
		{Title: "Go Basics", Description: "learn go", Category: "Programming", Level: "basic", Price: 10},
		{Title: "Advanced Go", Description: "concurrency", Category: "Programming", Level: "advanced", Price: 30},
		{Title: "Painting", Description: "100% fun", Category: "Art", Level: "basic", Price: 20},
		{Title: "Snake_case Naming", Description: "style", Category: "Programming", Level: "intermediate", Price: 5},
	}
	require.NoError(t, db.Create(&rows).Error)
	return db
}

func run(t *testing.T, db *gorm.DB, query string) ([]row, int64) {
	t.Helper()
	values, _ := url.ParseQuery(query)
	d, err := courseSchema.Parse(values)
	require.Nil(t, err)

	var total int64
	require.NoError(t, d.Where(db.Model(&row{})).Count(&total).Error)
	var out []row
	require.NoError(t, d.Paginate(d.Where(db.Model(&row{}))).Find(&out).Error)
	return out, total
}

func TestDescriptor_Apply(t *testing.T) {
	db := setupDB(t)

	t.Run("按等级筛选", func(t *testing.T) {
		out, total := run(t, db, "level=basic&sort=title")
		assert.Equal(t, int64(2), total)
		if assert.Len(t, out, 2) {
			assert.Equal(t, "Go Basics", out[0].Title)
			assert.Equal(t, "Painting", out[1].Title)
		}
	})

	t.Run("分类筛选不区分大小写", func(t *testing.T) {
		_, total := run(t, db, "category=programming")
		assert.Equal(t, int64(3), total)
	})

	t.Run("搜索标题和描述", func(t *testing.T) {
		out, total := run(t, db, "search=GO&sort=-price")
		assert.Equal(t, int64(2), total)
		if assert.Len(t, out, 2) {
			assert.Equal(t, "Advanced Go", out[0].Title)
		}
	})

	t.Run("百分号按字面匹配", func(t *testing.T) {
		out, total := run(t, db, "search=100%25")
		assert.Equal(t, int64(1), total)
		if assert.Len(t, out, 1) {
			assert.Equal(t, "Painting", out[0].Title)
		}
	})

	t.Run("下划线按字面匹配", func(t *testing.T) {
		_, total := run(t, db, "search=e_c")
		assert.Equal(t, int64(1), total)
	})

	t.Run("分页", func(t *testing.T) {
		out, total := run(t, db, "sort=price&page=2&limit=3")
		assert.Equal(t, int64(4), total)
		if assert.Len(t, out, 1) {
			assert.Equal(t, "Advanced Go", out[0].Title)
		}
	})

	t.Run("超出范围的页为空", func(t *testing.T) {
		out, total := run(t, db, "page=9")
		assert.Equal(t, int64(4), total)
		assert.Empty(t, out)
	})
}
