package classroom

import (
	"context"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrClassNotFound      = core.NewNotFoundError("class not found")
	ErrAssignmentNotFound = core.NewNotFoundError("assignment not found")
	ErrSubmissionNotFound = core.NewNotFoundError("submission not found")
)

type (
	// AssignmentFilter: a zero field is not filtered on.
	AssignmentFilter struct {
		TeacherID int
	}

	// SubmissionFilter: a zero field is not filtered on.
	SubmissionFilter struct {
		StudentID int
		// AssignmentTeacherID keeps submissions made on assignments authored by this teacher.
		AssignmentTeacherID int
	}

	Repository interface {
		CreateClass(ctx context.Context, class Class) (Class, error)
		GetClass(ctx context.Context, id int) (Class, error)
		QueryClassesByTeacher(ctx context.Context, teacherID int) ([]Class, error)
		// QueryClassesByStudent joins classes through the student's enrollments.
		QueryClassesByStudent(ctx context.Context, studentID int) ([]Class, error)

		CreateEnrollment(ctx context.Context, enrollment Enrollment) (Enrollment, error)
		QueryEnrollments(ctx context.Context, classID int) ([]Enrollment, error)

		CreateAssignment(ctx context.Context, assignment Assignment) (Assignment, error)
		GetAssignment(ctx context.Context, id int) (Assignment, error)
		QueryAssignments(ctx context.Context, filter AssignmentFilter) ([]Assignment, error)

		CreateSubmission(ctx context.Context, submission Submission) (Submission, error)
		GetSubmission(ctx context.Context, id int) (Submission, error)
		QuerySubmissions(ctx context.Context, filter SubmissionFilter) ([]Submission, error)
		UpdateSubmissionGrade(ctx context.Context, submission Submission) (Submission, error)

		// CreateNotifications inserts all notifications in a single statement.
		CreateNotifications(ctx context.Context, notifications []Notification) ([]Notification, error)
		// QueryNotifications returns the user's notifications, oldest first.
		QueryNotifications(ctx context.Context, userID int) ([]Notification, error)
		// MarkNotificationRead reports whether a notification owned by userID was updated.
		MarkNotificationRead(ctx context.Context, id, userID int) (bool, error)

		// RunInTx runs fn against a Repository bound to a single transaction:
		// committed if fn returns nil, rolled back otherwise.
		RunInTx(ctx context.Context, fn func(repo Repository) error) error
	}

	// UserFinder resolves the users notified by email; *user.Service satisfies it.
	UserFinder interface {
		GetByIDs(ctx context.Context, ids ...int) ([]user.User, error)
	}
)
