package qualitation

import (
	"context"
	"net/url"
	"strings"
	"testing"

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

func setup(t *testing.T) (*gorm.DB, *QualitationService) {
	db := testutils.SetupTestDB(t)
	return db, NewQualitationService(db, NewQualitationRepository(db))
}

func TestQualitationService_Create(t *testing.T) {
	db, service := setup(t)
	ctx := context.Background()

	owner := testutils.CreateTestTeacher(db)
	stranger := testutils.CreateTestTeacher(db)
	admin := testutils.CreateTestSuperadmin(db)
	student := testutils.CreateTestUser(db)
	outsider := testutils.CreateTestUser(db)
	course := testutils.CreateTestCourse(db, owner.ID)
	testutils.CreateTestEnrollment(db, student.ID, course.ID)

	t.Run("授课教师打分", func(t *testing.T) {
		v, err := service.Create(ctx, actorOf(owner), CreateQualitationRequest{
			StudentID: student.ID,
			CourseID:  course.ID,
			Score:     ptr(85.0),
			Feedback:  "  Buen trabajo  ",
		})
		require.Nil(t, err)
		assert.Equal(t, 85.0, v.Score)
		assert.Equal(t, "Buen trabajo", v.Feedback)
		if assert.NotNil(t, v.Course) {
			assert.Equal(t, course.ID, v.Course.ID)
		}
		if assert.NotNil(t, v.Student) {
			assert.Equal(t, student.ID, v.Student.ID)
		}
	})

	tests := []struct {
		name      string
		actor     policy.Actor
		req       CreateQualitationRequest
		wantCode  response.ResponseCode
		wantField string
	}{
		{"分数超过100", actorOf(owner), CreateQualitationRequest{StudentID: student.ID, CourseID: course.ID, Score: ptr(150.0)}, response.InvalidParameter, "score"},
		{"负分", actorOf(owner), CreateQualitationRequest{StudentID: student.ID, CourseID: course.ID, Score: ptr(-1.0)}, response.InvalidParameter, "score"},
		{"缺少分数", actorOf(owner), CreateQualitationRequest{StudentID: student.ID, CourseID: course.ID}, response.InvalidParameter, "score"},
		{"评语超过500字", actorOf(owner), CreateQualitationRequest{StudentID: student.ID, CourseID: course.ID, Score: ptr(85.0), Feedback: strings.Repeat("a", 501)}, response.InvalidParameter, "feedback"},
		{"校验先于课程查询", actorOf(owner), CreateQualitationRequest{StudentID: student.ID, CourseID: 9999, Score: ptr(150.0)}, response.InvalidParameter, "score"},
		{"课程不存在", actorOf(owner), CreateQualitationRequest{StudentID: student.ID, CourseID: 9999, Score: ptr(50.0)}, response.NotFound, ""},
		{"其他教师", actorOf(stranger), CreateQualitationRequest{StudentID: outsider.ID, CourseID: course.ID, Score: ptr(50.0)}, response.Forbidden, ""},
		{"超级管理员", actorOf(admin), CreateQualitationRequest{StudentID: outsider.ID, CourseID: course.ID, Score: ptr(50.0)}, response.Forbidden, ""},
		{"学生不能打分", actorOf(student), CreateQualitationRequest{StudentID: student.ID, CourseID: course.ID, Score: ptr(100.0)}, response.Forbidden, ""},
		{"重复打分", actorOf(owner), CreateQualitationRequest{StudentID: student.ID, CourseID: course.ID, Score: ptr(90.0)}, response.AlreadyExists, ""},
		{"学生未选课", actorOf(owner), CreateQualitationRequest{StudentID: outsider.ID, CourseID: course.ID, Score: ptr(70.0)}, response.NotFound, ""},
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

	t.Run("边界分数", func(t *testing.T) {
		for _, score := range []float64{0, 100} {
			s := testutils.CreateTestUser(db)
			testutils.CreateTestEnrollment(db, s.ID, course.ID)
			v, err := service.Create(ctx, actorOf(owner), CreateQualitationRequest{StudentID: s.ID, CourseID: course.ID, Score: ptr(score)})
			require.Nil(t, err)
			assert.Equal(t, score, v.Score)
		}
	})
}

func TestQualitationService_UpdateAndDelete(t *testing.T) {
	db, service := setup(t)
	ctx := context.Background()

	owner := testutils.CreateTestTeacher(db)
	stranger := testutils.CreateTestTeacher(db)
	student := testutils.CreateTestUser(db)
	course := testutils.CreateTestCourse(db, owner.ID)
	testutils.CreateTestEnrollment(db, student.ID, course.ID)
	q := testutils.CreateTestQualitation(db, student.ID, course.ID, 60)

	t.Run("授课教师修改", func(t *testing.T) {
		v, err := service.Update(ctx, actorOf(owner), q.ID, UpdateQualitationRequest{Score: ptr(75.0), Feedback: ptr("Mejoro")})
		require.Nil(t, err)
		assert.Equal(t, 75.0, v.Score)
		assert.Equal(t, "Mejoro", v.Feedback)
	})

	t.Run("只改评语", func(t *testing.T) {
		v, err := service.Update(ctx, actorOf(owner), q.ID, UpdateQualitationRequest{Feedback: ptr("")})
		require.Nil(t, err)
		assert.Equal(t, 75.0, v.Score)
		assert.Empty(t, v.Feedback)
	})

	tests := []struct {
		name     string
		actor    policy.Actor
		id       uint
		req      UpdateQualitationRequest
		wantCode response.ResponseCode
	}{
		{"分数超出范围", actorOf(owner), q.ID, UpdateQualitationRequest{Score: ptr(101.0)}, response.InvalidParameter},
		{"其他教师", actorOf(stranger), q.ID, UpdateQualitationRequest{Score: ptr(10.0)}, response.Forbidden},
		{"学生本人", actorOf(student), q.ID, UpdateQualitationRequest{Score: ptr(100.0)}, response.Forbidden},
		{"成绩不存在", actorOf(owner), 9999, UpdateQualitationRequest{Score: ptr(10.0)}, response.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Update(ctx, tt.actor, tt.id, tt.req)
			require.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.Code)
		})
	}

	t.Run("其他教师不能删除", func(t *testing.T) {
		err := service.Delete(ctx, actorOf(stranger), q.ID)
		require.NotNil(t, err)
		assert.Equal(t, response.Forbidden, err.Code)
	})

	t.Run("授课教师删除", func(t *testing.T) {
		require.Nil(t, service.Delete(ctx, actorOf(owner), q.ID))
		err := service.Delete(ctx, actorOf(owner), q.ID)
		require.NotNil(t, err)
		assert.Equal(t, response.NotFound, err.Code)
	})

	t.Run("删除后可以重新打分", func(t *testing.T) {
		_, err := service.Create(ctx, actorOf(owner), CreateQualitationRequest{StudentID: student.ID, CourseID: course.ID, Score: ptr(88.0)})
		require.Nil(t, err)
	})
}

func TestQualitationService_ListByStudent(t *testing.T) {
	db, service := setup(t)
	ctx := context.Background()

	teacherA := testutils.CreateTestTeacher(db)
	teacherB := testutils.CreateTestTeacher(db)
	admin := testutils.CreateTestSuperadmin(db)
	student := testutils.CreateTestUser(db)
	other := testutils.CreateTestUser(db)

	courseA := testutils.CreateTestCourse(db, teacherA.ID)
	courseB := testutils.CreateTestCourse(db, teacherB.ID)
	testutils.CreateTestEnrollment(db, student.ID, courseA.ID)
	testutils.CreateTestEnrollment(db, student.ID, courseB.ID)
	testutils.CreateTestQualitation(db, student.ID, courseA.ID, 40)
	testutils.CreateTestQualitation(db, student.ID, courseB.ID, 90)

	tests := []struct {
		name     string
		actor    policy.Actor
		wantLen  int
		wantCode response.ResponseCode
	}{
		{"学生本人看到全部", actorOf(student), 2, 0},
		{"超级管理员看到全部", actorOf(admin), 2, 0},
		{"教师只看到自己课程", actorOf(teacherA), 1, 0},
		{"其他学生", actorOf(other), 0, response.Forbidden},
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
		})
	}

	t.Run("按分数排序", func(t *testing.T) {
		items, _, err := service.ListByStudent(ctx, actorOf(student), student.ID, url.Values{"sort": {"-score"}})
		require.Nil(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, 90.0, items[0].Score)
		if assert.NotNil(t, items[0].Course) {
			assert.Equal(t, courseB.ID, items[0].Course.ID)
		}
	})

	t.Run("教师的课程内没有成绩", func(t *testing.T) {
		idle := testutils.CreateTestTeacher(db)
		items, _, err := service.ListByStudent(ctx, actorOf(idle), student.ID, url.Values{})
		require.Nil(t, err)
		assert.Empty(t, items)
	})
}
