package course

import (
	"context"
	"testing"

	"akademi/internal/pkg"
	"akademi/internal/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseRepository_UpdateCapacity(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := NewCourseRepository(db)
	ctx := context.Background()

	teacher := testutils.CreateTestTeacher(db)
	c := testutils.CreateTestCourse(db, teacher.ID, testutils.WithCapacity(3))
	testutils.CreateTestEnrollment(db, testutils.CreateTestUser(db).ID, c.ID)
	testutils.CreateTestEnrollment(db, testutils.CreateTestUser(db).ID, c.ID)

	gone := testutils.CreateTestCourse(db, teacher.ID)
	require.NoError(t, repo.Delete(ctx, gone.ID))

	tests := []struct {
		name     string
		id       uint
		capacity int
		check    func(t *testing.T, err error)
	}{
		{
			name: "容量低于已选人数", id: c.ID, capacity: 1,
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrCapacityBelowEnrolled) },
		},
		{
			name: "课程已被删除返回不存在", id: gone.ID, capacity: 5,
			check: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.True(t, pkg.IsNotFound(err), err)
				assert.NotErrorIs(t, err, ErrCapacityBelowEnrolled)
			},
		},
		{
			name: "课程从未存在", id: 9999, capacity: 5,
			check: func(t *testing.T, err error) { assert.True(t, pkg.IsNotFound(err), err) },
		},
		{
			name: "容量等于已选人数", id: c.ID, capacity: 2,
			check: func(t *testing.T, err error) { assert.NoError(t, err) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, repo.Update(ctx, tt.id, map[string]any{"capacity": tt.capacity}))
		})
	}
}
