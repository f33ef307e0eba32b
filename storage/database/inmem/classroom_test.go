package inmemdb

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
)

func TestClassroomRepository_RunInTx(t *testing.T) {
	ctx := context.Background()
	db := Open()
	repo := NewClassroomRepository(db)

	class, err := repo.CreateClass(ctx, classroom.Class{Name: "Maths", TeacherID: 1, CreatedAt: time.Now()})
	require.NoError(t, err)

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := repo.RunInTx(ctx, func(tx classroom.Repository) error {
			if _, err := tx.CreateAssignment(ctx, classroom.Assignment{Title: "HW", ClassID: class.ID, TeacherID: 1}); err != nil {
				return err
			}
			return boom
		})
		assert.Equal(t, boom, err)

		assignments, err := repo.QueryAssignments(ctx, classroom.AssignmentFilter{})
		require.NoError(t, err)
		assert.Empty(t, assignments)
	})

	t.Run("commit", func(t *testing.T) {
		err := repo.RunInTx(ctx, func(tx classroom.Repository) error {
			_, err := tx.CreateAssignment(ctx, classroom.Assignment{Title: "HW", ClassID: class.ID, TeacherID: 1})
			return err
		})
		require.NoError(t, err)

		assignments, err := repo.QueryAssignments(ctx, classroom.AssignmentFilter{})
		require.NoError(t, err)
		assert.Len(t, assignments, 1)
	})
}

func TestClassroomRepository_RunInTx_concurrentWrites(t *testing.T) {
	ctx := context.Background()
	db := Open()
	repo := NewClassroomRepository(db)

	class, err := repo.CreateClass(ctx, classroom.Class{Name: "Maths", TeacherID: 1, CreatedAt: time.Now()})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var enrollErr error
	started := make(chan struct{})

	err = repo.RunInTx(ctx, func(tx classroom.Repository) error {
		if _, err := tx.CreateNotifications(ctx, []classroom.Notification{{UserID: 2, Message: "lost"}}); err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			close(started)
			_, enrollErr = repo.CreateEnrollment(ctx, classroom.Enrollment{StudentID: 2, ClassID: class.ID, JoinedAt: time.Now()})
		}()
		<-started
		time.Sleep(20 * time.Millisecond) // let the enrollment reach the lock
		return classroom.ErrClassNotOwned
	})
	assert.Equal(t, classroom.ErrClassNotOwned, err)

	wg.Wait()
	require.NoError(t, enrollErr)

	enrollments, err := repo.QueryEnrollments(ctx, class.ID)
	require.NoError(t, err)
	assert.Len(t, enrollments, 1, "the write made outside the transaction survives its rollback")

	notifications, err := repo.QueryNotifications(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, notifications, "the transaction's own write is rolled back")
}

func TestClassroomRepository_QueryClassesByStudent(t *testing.T) {
	ctx := context.Background()
	db := Open()
	repo := NewClassroomRepository(db)

	class, err := repo.CreateClass(ctx, classroom.Class{Name: "Maths", TeacherID: 1})
	require.NoError(t, err)
	_, err = repo.CreateEnrollment(ctx, classroom.Enrollment{StudentID: 2, ClassID: class.ID})
	require.NoError(t, err)

	// dangling row: its class is gone
	db.tables.enrollments[99] = classroom.Enrollment{ID: 99, StudentID: 2, ClassID: 42}

	classes, err := repo.QueryClassesByStudent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []classroom.Class{class}, classes)

	classes, err = repo.QueryClassesByStudent(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, classes)
}

func TestClassroomRepository_QueryNotifications(t *testing.T) {
	ctx := context.Background()
	repo := NewClassroomRepository(Open())

	now := time.Now().UTC()
	_, err := repo.CreateNotifications(ctx, []classroom.Notification{
		{UserID: 1, Message: "later", CreatedAt: now.Add(time.Minute)},
		{UserID: 1, Message: "earlier", CreatedAt: now},
		{UserID: 2, Message: "someone else's", CreatedAt: now.Add(-time.Minute)},
		{UserID: 1, Message: "earlier too", CreatedAt: now},
	})
	require.NoError(t, err)

	notifications, err := repo.QueryNotifications(ctx, 1)
	require.NoError(t, err)

	messages := make([]string, 0, len(notifications))
	for _, n := range notifications {
		messages = append(messages, n.Message)
	}
	assert.Equal(t, []string{"earlier", "earlier too", "later"}, messages)
}

func TestClassroomRepository_foreignKeys(t *testing.T) {
	ctx := context.Background()
	repo := NewClassroomRepository(Open())

	_, err := repo.CreateEnrollment(ctx, classroom.Enrollment{StudentID: 1, ClassID: 42})
	assert.Equal(t, classroom.ErrClassNotFound, err)

	_, err = repo.CreateSubmission(ctx, classroom.Submission{StudentID: 1, AssignmentID: 42})
	assert.Equal(t, classroom.ErrAssignmentNotFound, err)
}

func TestClassroomRepository_MarkNotificationRead(t *testing.T) {
	ctx := context.Background()
	repo := NewClassroomRepository(Open())

	created, err := repo.CreateNotifications(ctx, []classroom.Notification{
		{UserID: 1, Message: "one"},
		{UserID: 2, Message: "two"},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	ok, err := repo.MarkNotificationRead(ctx, created[1].ID, 1)
	require.NoError(t, err)
	assert.False(t, ok, "not the owner")

	ok, err = repo.MarkNotificationRead(ctx, created[0].ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	notifications, err := repo.QueryNotifications(ctx, 1)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.True(t, notifications[0].Read)

	notifications, err = repo.QueryNotifications(ctx, 2)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.False(t, notifications[0].Read)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(Open())

	usr, err := repo.CreateUser(ctx, user.User{Username: "awe", Role: user.RoleStudent})
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, user.User{Username: "awe", Role: user.RoleTeacher})
	assert.Equal(t, user.ErrUsernameExists, err)

	assert.Equal(t, user.ErrUsernameExists, repo.CheckUsernameUniqueness(ctx, "awe"))
	assert.NoError(t, repo.CheckUsernameUniqueness(ctx, "awe", usr.ID))
	assert.NoError(t, repo.CheckUsernameUniqueness(ctx, "other"))

	_, err = repo.GetUser(ctx, user.GetFilter{Username: "nope"})
	assert.Equal(t, user.ErrNotFound, err)

	got, err := repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
	require.NoError(t, err)
	assert.Equal(t, usr, got)

	users, err := repo.QueryUsersByID(ctx, usr.ID, 99)
	require.NoError(t, err)
	assert.Equal(t, []user.User{usr}, users)
}
