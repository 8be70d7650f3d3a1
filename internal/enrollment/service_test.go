package enrollment

import (
	"context"
	"net/url"
	"sync"
	"testing"

	courseModel "akademi/internal/model/course"
	enrollmentModel "akademi/internal/model/enrollment"
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

func setup(t *testing.T) (*gorm.DB, *EnrollmentService) {
	db := testutils.SetupTestDB(t)
	return db, NewEnrollmentService(db, NewEnrollmentRepository(db))
}

func enrolledCount(t *testing.T, db *gorm.DB, courseID uint) int {
	t.Helper()
	var c courseModel.Course
	require.NoError(t, db.First(&c, courseID).Error)
	return c.EnrolledCount
}

func TestEnrollmentService_Enroll(t *testing.T) {
	db, service := setup(t)
	ctx := context.Background()

	teacher := testutils.CreateTestTeacher(db)
	student := testutils.CreateTestUser(db)
	other := testutils.CreateTestUser(db)
	admin := testutils.CreateTestSuperadmin(db)
	course := testutils.CreateTestCourse(db, teacher.ID, testutils.WithCapacity(1))

	t.Run("选课成功", func(t *testing.T) {
		v, err := service.Enroll(ctx, actorOf(student), EnrollRequest{CourseID: course.ID})
		require.Nil(t, err)
		assert.Equal(t, student.ID, v.StudentID)
		assert.Equal(t, course.ID, v.CourseID)
		if assert.NotNil(t, v.Course) {
			assert.Equal(t, course.Title, v.Course.Title)
		}
		assert.Equal(t, 1, enrolledCount(t, db, course.ID))
	})

	tests := []struct {
		name     string
		actor    policy.Actor
		req      EnrollRequest
		wantCode response.ResponseCode
	}{
		{"缺少课程ID", actorOf(student), EnrollRequest{}, response.InvalidParameter},
		{"课程不存在", actorOf(student), EnrollRequest{CourseID: 9999}, response.NotFound},
		{"重复选课", actorOf(student), EnrollRequest{CourseID: course.ID}, response.AlreadyExists},
		{"名额已满", actorOf(other), EnrollRequest{CourseID: course.ID}, response.CapacityExceeded},
		{"教师不能选课", actorOf(teacher), EnrollRequest{CourseID: course.ID}, response.Forbidden},
		{"超级管理员不能选课", actorOf(admin), EnrollRequest{CourseID: course.ID}, response.Forbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Enroll(ctx, tt.actor, tt.req)
			require.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.Code)
		})
	}

	assert.Equal(t, 1, enrolledCount(t, db, course.ID), "失败的选课不能占用名额")
}

func TestEnrollmentService_EnrollConcurrent(t *testing.T) {
	db, service := setup(t)
	assertConcurrentEnroll(t, db, service)
}

// Postgres 默认 READ COMMITTED，多个连接真正并发执行条件更新
func TestEnrollmentService_EnrollConcurrentPostgres(t *testing.T) {
	db := testutils.SetupPostgresTestDB(t)
	if db == nil {
		t.Skip("POSTGRES_TEST_DATABASE not set or postgres unavailable")
	}
	assertConcurrentEnroll(t, db, NewEnrollmentService(db, NewEnrollmentRepository(db)))
}

func assertConcurrentEnroll(t *testing.T, db *gorm.DB, service *EnrollmentService) {
	t.Helper()
	ctx := context.Background()

	const (
		capacity = 3
		students = 10
	)

	teacher := testutils.CreateTestTeacher(db)
	course := testutils.CreateTestCourse(db, teacher.ID, testutils.WithCapacity(capacity))

	actors := make([]policy.Actor, students)
	for i := range actors {
		actors[i] = actorOf(testutils.CreateTestUser(db))
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		full int
		rest []*response.BusinessError
	)
	for _, actor := range actors {
		wg.Add(1)
		go func(actor policy.Actor) {
			defer wg.Done()
			_, err := service.Enroll(ctx, actor, EnrollRequest{CourseID: course.ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case err.Code == response.CapacityExceeded:
				full++
			default:
				rest = append(rest, err)
			}
		}(actor)
	}
	wg.Wait()

	assert.Empty(t, rest)
	assert.Equal(t, capacity, ok)
	assert.Equal(t, students-capacity, full)
	assert.Equal(t, capacity, enrolledCount(t, db, course.ID))

	var rows int64
	require.NoError(t, db.Model(&enrollmentModel.Enrollment{}).Where("course_id = ?", course.ID).Count(&rows).Error)
	assert.Equal(t, int64(capacity), rows)
}

func TestEnrollmentService_Cancel(t *testing.T) {
	db, service := setup(t)
	ctx := context.Background()

	teacher := testutils.CreateTestTeacher(db)
	student := testutils.CreateTestUser(db)
	other := testutils.CreateTestUser(db)
	course := testutils.CreateTestCourse(db, teacher.ID, testutils.WithCapacity(1))

	v, err := service.Enroll(ctx, actorOf(student), EnrollRequest{CourseID: course.ID})
	require.Nil(t, err)

	t.Run("不存在的选课", func(t *testing.T) {
		err := service.Cancel(ctx, actorOf(student), 9999)
		require.NotNil(t, err)
		assert.Equal(t, response.NotFound, err.Code)
	})

	t.Run("不能取消别人的选课", func(t *testing.T) {
		for _, actor := range []policy.Actor{actorOf(other), actorOf(teacher)} {
			err := service.Cancel(ctx, actor, v.ID)
			require.NotNil(t, err)
			assert.Equal(t, response.Forbidden, err.Code)
		}
		assert.Equal(t, 1, enrolledCount(t, db, course.ID))
	})

	t.Run("取消后名额释放", func(t *testing.T) {
		require.Nil(t, service.Cancel(ctx, actorOf(student), v.ID))
		assert.Equal(t, 0, enrolledCount(t, db, course.ID))

		_, err := service.Enroll(ctx, actorOf(other), EnrollRequest{CourseID: course.ID})
		require.Nil(t, err)
		assert.Equal(t, 1, enrolledCount(t, db, course.ID))
	})

	t.Run("取消后可以重新选课", func(t *testing.T) {
		roomy := testutils.CreateTestCourse(db, teacher.ID, testutils.WithCapacity(2))
		first, err := service.Enroll(ctx, actorOf(student), EnrollRequest{CourseID: roomy.ID})
		require.Nil(t, err)
		require.Nil(t, service.Cancel(ctx, actorOf(student), first.ID))

		second, err := service.Enroll(ctx, actorOf(student), EnrollRequest{CourseID: roomy.ID})
		require.Nil(t, err)
		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, 1, enrolledCount(t, db, roomy.ID))
	})
}

func TestEnrollmentService_ListByCourse(t *testing.T) {
	db, service := setup(t)
	ctx := context.Background()

	owner := testutils.CreateTestTeacher(db)
	stranger := testutils.CreateTestTeacher(db)
	admin := testutils.CreateTestSuperadmin(db)
	course := testutils.CreateTestCourse(db, owner.ID)
	for i := 0; i < 3; i++ {
		s := testutils.CreateTestUser(db)
		testutils.CreateTestEnrollment(db, s.ID, course.ID)
	}

	t.Run("授课教师可见", func(t *testing.T) {
		items, pagination, err := service.ListByCourse(ctx, actorOf(owner), course.ID, url.Values{"limit": {"2"}})
		require.Nil(t, err)
		assert.Len(t, items, 2)
		assert.Equal(t, int64(3), pagination.Total)
		assert.Equal(t, 2, pagination.TotalPages)
		for _, item := range items {
			assert.NotNil(t, item.Student)
		}
	})

	tests := []struct {
		name     string
		actor    policy.Actor
		courseID uint
		wantCode response.ResponseCode
	}{
		{"其他教师", actorOf(stranger), course.ID, response.Forbidden},
		{"超级管理员", actorOf(admin), course.ID, response.Forbidden},
		{"课程不存在", actorOf(owner), 9999, response.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := service.ListByCourse(ctx, tt.actor, tt.courseID, url.Values{})
			require.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.Code)
		})
	}
}

func TestEnrollmentService_ListByStudent(t *testing.T) {
	db, service := setup(t)
	ctx := context.Background()

	teacher := testutils.CreateTestTeacher(db)
	student := testutils.CreateTestUser(db)
	other := testutils.CreateTestUser(db)
	admin := testutils.CreateTestSuperadmin(db)
	for i := 0; i < 2; i++ {
		c := testutils.CreateTestCourse(db, teacher.ID)
		testutils.CreateTestEnrollment(db, student.ID, c.ID)
	}

	tests := []struct {
		name     string
		actor    policy.Actor
		wantLen  int
		wantCode response.ResponseCode
	}{
		{"本人", actorOf(student), 2, 0},
		{"超级管理员", actorOf(admin), 2, 0},
		{"其他学生", actorOf(other), 0, response.Forbidden},
		{"教师", actorOf(teacher), 0, response.Forbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, pagination, err := service.ListByStudent(ctx, tt.actor, student.ID, url.Values{})
			if tt.wantCode != 0 {
				require.NotNil(t, err)
				assert.Equal(t, tt.wantCode, err.Code)
				return
			}
			require.Nil(t, err)
			assert.Len(t, items, tt.wantLen)
			assert.Equal(t, int64(tt.wantLen), pagination.Total)
			for _, item := range items {
				assert.NotNil(t, item.Course)
			}
		})
	}

	t.Run("非法分页参数", func(t *testing.T) {
		_, _, err := service.ListByStudent(ctx, actorOf(student), student.ID, url.Values{"page": {"0"}})
		require.NotNil(t, err)
		assert.Equal(t, response.InvalidParameter, err.Code)
	})
}

func TestEnrollmentService_Roster(t *testing.T) {
	db, service := setup(t)
	ctx := context.Background()

	teacher := testutils.CreateTestTeacher(db)
	another := testutils.CreateTestTeacher(db)
	ana := testutils.CreateTestUser(db, testutils.WithName("Ana Torres"))
	bruno := testutils.CreateTestUser(db, testutils.WithName("Bruno Diaz"))

	algebra := testutils.CreateTestCourse(db, teacher.ID, testutils.WithTitle("Algebra"))
	biology := testutils.CreateTestCourse(db, teacher.ID, testutils.WithTitle("Biology"))
	foreign := testutils.CreateTestCourse(db, another.ID, testutils.WithTitle("Chemistry"))

	testutils.CreateTestEnrollment(db, ana.ID, algebra.ID)
	testutils.CreateTestEnrollment(db, bruno.ID, biology.ID)
	testutils.CreateTestEnrollment(db, ana.ID, foreign.ID)
	q := testutils.CreateTestQualitation(db, ana.ID, algebra.ID, 87.5)

	t.Run("只包含自己的课程并附带成绩", func(t *testing.T) {
		entries, pagination, err := service.Roster(ctx, actorOf(teacher), url.Values{})
		require.Nil(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, int64(2), pagination.Total)

		assert.Equal(t, "Algebra", entries[0].CourseTitle)
		assert.Equal(t, "Ana Torres", entries[0].Name)
		if assert.NotNil(t, entries[0].Grade) {
			assert.Equal(t, 87.5, *entries[0].Grade)
		}
		if assert.NotNil(t, entries[0].QualitationID) {
			assert.Equal(t, q.ID, *entries[0].QualitationID)
		}

		assert.Equal(t, "Biology", entries[1].CourseTitle)
		assert.Nil(t, entries[1].Grade)
		assert.Nil(t, entries[1].QualitationID)
	})

	t.Run("按学生姓名搜索", func(t *testing.T) {
		entries, _, err := service.Roster(ctx, actorOf(teacher), url.Values{"search": {"bruno"}})
		require.Nil(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, bruno.ID, entries[0].StudentID)
	})

	t.Run("没有学生时返回空列表", func(t *testing.T) {
		lonely := testutils.CreateTestTeacher(db)
		entries, pagination, err := service.Roster(ctx, actorOf(lonely), url.Values{})
		require.Nil(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
		assert.Equal(t, int64(0), pagination.Total)
	})

	t.Run("学生没有名单", func(t *testing.T) {
		_, _, err := service.Roster(ctx, actorOf(ana), url.Values{})
		require.NotNil(t, err)
		assert.Equal(t, response.Forbidden, err.Code)
	})
}
