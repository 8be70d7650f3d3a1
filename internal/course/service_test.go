package course

import (
	"context"
	"net/url"
	"strings"
	"testing"

	courseModel "akademi/internal/model/course"
	userModel "akademi/internal/model/user"
	"akademi/internal/policy"
	"akademi/internal/testutils"
	"akademi/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func actorOf(u *userModel.User) policy.Actor {
	return policy.Actor{ID: u.ID, Role: u.Role}
}

func ptr[T any](v T) *T { return &v }

func setup(t *testing.T) (*gorm.DB, *CourseService) {
	db := testutils.SetupTestDB(t)
	return db, NewCourseService(NewCourseRepository(db))
}

func TestCourseService_Create(t *testing.T) {
	db, service := setup(t)
	ctx := context.Background()

	teacher := testutils.CreateTestTeacher(db, testutils.WithName("Laura Gomez"))
	student := testutils.CreateTestUser(db)
	admin := testutils.CreateTestSuperadmin(db)

	t.Run("使用默认值创建", func(t *testing.T) {
		v, err := service.Create(ctx, actorOf(teacher), CreateCourseRequest{
			Title:       "Introduction to Databases",
			Description: "Relational modelling and SQL",
		})
		require.Nil(t, err)
		assert.Equal(t, teacher.ID, v.TeacherID)
		assert.Equal(t, courseModel.DefaultCategory, v.Category)
		assert.Equal(t, courseModel.LevelBasic, v.Level)
		assert.Equal(t, courseModel.DefaultCapacity, v.Capacity)
		assert.Equal(t, courseModel.DefaultCapacity, v.SeatsLeft)
		if assert.NotNil(t, v.Teacher) {
			assert.Equal(t, "Laura Gomez", v.Teacher.Name)
		}
	})

	tests := []struct {
		name      string
		actor     policy.Actor
		req       CreateCourseRequest
		wantCode  response.ResponseCode
		wantField string
	}{
		{"标题重复", actorOf(teacher), CreateCourseRequest{Title: "Introduction to Databases", Description: "Another description"}, response.AlreadyExists, ""},
		{"标题包含数字", actorOf(teacher), CreateCourseRequest{Title: "Databases 101", Description: "Relational modelling"}, response.InvalidParameter, "title"},
		{"描述太短", actorOf(teacher), CreateCourseRequest{Title: "Operating Systems", Description: "short"}, response.InvalidParameter, "description"},
		{"未知难度", actorOf(teacher), CreateCourseRequest{Title: "Operating Systems", Description: "Processes and memory", Level: "expert"}, response.InvalidParameter, "level"},
		{"负价格", actorOf(teacher), CreateCourseRequest{Title: "Operating Systems", Description: "Processes and memory", Price: ptr(-5.0)}, response.InvalidParameter, "price"},
		{"容量为零", actorOf(teacher), CreateCourseRequest{Title: "Operating Systems", Description: "Processes and memory", Capacity: ptr(0)}, response.InvalidParameter, "capacity"},
		{"学生不能创建课程", actorOf(student), CreateCourseRequest{Title: "Operating Systems", Description: "Processes and memory"}, response.Forbidden, ""},
		{"超级管理员不能创建课程", actorOf(admin), CreateCourseRequest{Title: "Operating Systems", Description: "Processes and memory"}, response.Forbidden, ""},
		{"校验先于鉴权", actorOf(student), CreateCourseRequest{Title: "OS", Description: "Processes and memory"}, response.InvalidParameter, "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, tt.actor, tt.req)
			require.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.Code)
			if tt.wantField != "" {
				assert.Contains(t, err.Fields, tt.wantField)
			}
		})
	}
}

func TestCourseService_List(t *testing.T) {
	db, service := setup(t)
	ctx := context.Background()

	t1 := testutils.CreateTestTeacher(db)
	t2 := testutils.CreateTestTeacher(db)
	student := testutils.CreateTestUser(db)

	testutils.CreateTestCourse(db, t1.ID, testutils.WithTitle("Advanced Algorithms"), testutils.WithLevel(courseModel.LevelAdvanced), testutils.WithPrice(30))
	testutils.CreateTestCourse(db, t1.ID, testutils.WithTitle("Basic Algebra"), testutils.WithCategory("Math"), testutils.WithPrice(10))
	testutils.CreateTestCourse(db, t2.ID, testutils.WithTitle("Creative Writing"), testutils.WithCategory("Arts"), testutils.WithPrice(20))

	t.Run("标题倒序", func(t *testing.T) {
		courses, p, err := service.List(ctx, actorOf(student), url.Values{"sort": {"-title"}})
		require.Nil(t, err)
		assert.Equal(t, int64(3), p.Total)
		assert.Equal(t, 1, p.TotalPages)
		if assert.Len(t, courses, 3) {
			assert.Equal(t, "Creative Writing", courses[0].Title)
			assert.Equal(t, "Advanced Algorithms", courses[2].Title)
		}
	})

	t.Run("分类不区分大小写", func(t *testing.T) {
		courses, _, err := service.List(ctx, actorOf(student), url.Values{"category": {"MATH"}})
		require.Nil(t, err)
		if assert.Len(t, courses, 1) {
			assert.Equal(t, "Basic Algebra", courses[0].Title)
		}
	})

	t.Run("按难度筛选", func(t *testing.T) {
		courses, _, err := service.List(ctx, actorOf(student), url.Values{"level": {"advanced"}})
		require.Nil(t, err)
		assert.Len(t, courses, 1)
	})

	t.Run("搜索", func(t *testing.T) {
		courses, _, err := service.List(ctx, actorOf(student), url.Values{"search": {"algo"}, "sort": {"price"}})
		require.Nil(t, err)
		if assert.Len(t, courses, 1) {
			assert.Equal(t, "Advanced Algorithms", courses[0].Title)
		}
	})

	t.Run("分页", func(t *testing.T) {
		courses, p, err := service.List(ctx, actorOf(student), url.Values{"limit": {"2"}, "page": {"2"}, "sort": {"price"}})
		require.Nil(t, err)
		assert.Equal(t, 2, p.TotalPages)
		if assert.Len(t, courses, 1) {
			assert.Equal(t, float64(30), courses[0].Price)
		}
	})

	t.Run("非法参数", func(t *testing.T) {
		for _, q := range []string{"page=0", "page=-1", "limit=0", "page=abc", "sort=teacher"} {
			values, _ := url.ParseQuery(q)
			_, _, err := service.List(ctx, actorOf(student), values)
			if assert.NotNil(t, err, q) {
				assert.Equal(t, response.InvalidParameter, err.Code, q)
			}
		}
	})

	t.Run("教师自己的课程", func(t *testing.T) {
		courses, p, err := service.ListMine(ctx, actorOf(t1), url.Values{})
		require.Nil(t, err)
		assert.Equal(t, int64(2), p.Total)
		for _, c := range courses {
			assert.Equal(t, t1.ID, c.TeacherID)
		}
	})

	t.Run("学生没有自己的课程", func(t *testing.T) {
		_, _, err := service.ListMine(ctx, actorOf(student), url.Values{})
		require.NotNil(t, err)
		assert.Equal(t, response.Forbidden, err.Code)
	})
}

func TestCourseService_Update(t *testing.T) {
	db, service := setup(t)
	ctx := context.Background()

	t1 := testutils.CreateTestTeacher(db)
	t2 := testutils.CreateTestTeacher(db)
	c := testutils.CreateTestCourse(db, t2.ID, testutils.WithCapacity(3))
	testutils.CreateTestEnrollment(db, testutils.CreateTestUser(db).ID, c.ID)
	testutils.CreateTestEnrollment(db, testutils.CreateTestUser(db).ID, c.ID)

	t.Run("其他教师不能修改", func(t *testing.T) {
		_, err := service.Update(ctx, actorOf(t1), c.ID, UpdateCourseRequest{Price: ptr(5.0)})
		require.NotNil(t, err)
		assert.Equal(t, response.Forbidden, err.Code)
	})

	t.Run("所有者修改价格", func(t *testing.T) {
		v, err := service.Update(ctx, actorOf(t2), c.ID, UpdateCourseRequest{Price: ptr(15.5)})
		require.Nil(t, err)
		assert.Equal(t, 15.5, v.Price)
	})

	t.Run("容量不能低于已选人数", func(t *testing.T) {
		_, err := service.Update(ctx, actorOf(t2), c.ID, UpdateCourseRequest{Capacity: ptr(1)})
		require.NotNil(t, err)
		assert.Equal(t, response.InvalidParameter, err.Code)
		assert.Contains(t, err.Fields, "capacity")
	})

	t.Run("容量等于已选人数", func(t *testing.T) {
		v, err := service.Update(ctx, actorOf(t2), c.ID, UpdateCourseRequest{Capacity: ptr(2)})
		require.Nil(t, err)
		assert.Equal(t, 2, v.Capacity)
		assert.Equal(t, 0, v.SeatsLeft)
	})

	t.Run("校验先于查找", func(t *testing.T) {
		_, err := service.Update(ctx, actorOf(t2), 9999, UpdateCourseRequest{Title: ptr("x")})
		require.NotNil(t, err)
		assert.Equal(t, response.InvalidParameter, err.Code)
	})

	t.Run("课程不存在", func(t *testing.T) {
		_, err := service.Update(ctx, actorOf(t2), 9999, UpdateCourseRequest{Price: ptr(1.0)})
		require.NotNil(t, err)
		assert.Equal(t, response.NotFound, err.Code)
	})

	t.Run("描述超长", func(t *testing.T) {
		_, err := service.Update(ctx, actorOf(t2), c.ID, UpdateCourseRequest{Description: ptr(strings.Repeat("a", 201))})
		require.NotNil(t, err)
		assert.Contains(t, err.Fields, "description")
	})
}

func TestCourseService_Delete(t *testing.T) {
	db, service := setup(t)
	ctx := context.Background()

	teacher := testutils.CreateTestTeacher(db)
	other := testutils.CreateTestTeacher(db)

	t.Run("其他教师不能删除", func(t *testing.T) {
		c := testutils.CreateTestCourse(db, teacher.ID)
		err := service.Delete(ctx, actorOf(other), c.ID)
		require.NotNil(t, err)
		assert.Equal(t, response.Forbidden, err.Code)
	})

	t.Run("有选课时不能删除", func(t *testing.T) {
		c := testutils.CreateTestCourse(db, teacher.ID)
		testutils.CreateTestEnrollment(db, testutils.CreateTestUser(db).ID, c.ID)
		err := service.Delete(ctx, actorOf(teacher), c.ID)
		require.NotNil(t, err)
		assert.Equal(t, response.Conflict, err.Code)
	})

	t.Run("有成绩时不能删除", func(t *testing.T) {
		c := testutils.CreateTestCourse(db, teacher.ID)
		testutils.CreateTestQualitation(db, testutils.CreateTestUser(db).ID, c.ID, 70)
		err := service.Delete(ctx, actorOf(teacher), c.ID)
		require.NotNil(t, err)
		assert.Equal(t, response.Conflict, err.Code)
	})

	t.Run("所有者删除", func(t *testing.T) {
		c := testutils.CreateTestCourse(db, teacher.ID)
		require.Nil(t, service.Delete(ctx, actorOf(teacher), c.ID))
		_, err := service.Get(ctx, actorOf(teacher), c.ID)
		require.NotNil(t, err)
		assert.Equal(t, response.NotFound, err.Code)
	})
}
