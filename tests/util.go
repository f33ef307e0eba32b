// Package testutil holds helpers shared by the test suites.
package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/services/logger"
)

// NewLogger returns a silent logger; rollbar is disabled in test mode.
func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	uname, pwd string,
	role user.Role,
	email string,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := core.NowFunc()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Username:  uname,
		Role:      role,
		Email:     null.NewString(email, email != ""),
		CreatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser(): %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func CreateClass(t *testing.T, repo classroom.Repository, teacher user.User, name string) classroom.Class {
	t.Helper()
	class, err := repo.CreateClass(context.Background(), classroom.Class{
		Name:      name,
		TeacherID: teacher.ID,
		CreatedAt: core.NowFunc(),
	})
	if err != nil {
		t.Fatalf("CreateClass(): %v", err)
	}
	return class
}

func Enroll(t *testing.T, repo classroom.Repository, student user.User, class classroom.Class) classroom.Enrollment {
	t.Helper()
	enrollment, err := repo.CreateEnrollment(context.Background(), classroom.Enrollment{
		StudentID: student.ID,
		ClassID:   class.ID,
		JoinedAt:  core.NowFunc(),
	})
	if err != nil {
		t.Fatalf("Enroll(): %v", err)
	}
	return enrollment
}

func CreateAssignment(
	t *testing.T,
	repo classroom.Repository,
	class classroom.Class,
	title, description string,
	dueDate time.Time,
) classroom.Assignment {
	t.Helper()
	assignment, err := repo.CreateAssignment(context.Background(), classroom.Assignment{
		Title:       title,
		Description: description,
		DueDate:     dueDate.UTC(),
		TeacherID:   class.TeacherID,
		ClassID:     class.ID,
		CreatedAt:   core.NowFunc(),
	})
	if err != nil {
		t.Fatalf("CreateAssignment(): %v", err)
	}
	return assignment
}

func CreateSubmission(t *testing.T, repo classroom.Repository, student user.User, assignment classroom.Assignment, content string) classroom.Submission {
	t.Helper()
	submission, err := repo.CreateSubmission(context.Background(), classroom.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Content:      content,
		SubmittedAt:  core.NowFunc(),
	})
	if err != nil {
		t.Fatalf("CreateSubmission(): %v", err)
	}
	return submission
}
