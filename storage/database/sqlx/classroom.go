package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/classroom"
)

const (
	classColumns        = "id, name, description, teacher_id, created_at"
	enrollmentColumns   = "id, student_id, class_id, joined_at"
	assignmentColumns   = "id, title, description, due_date, teacher_id, class_id, created_at"
	submissionColumns   = "id, assignment_id, student_id, content, submitted_at, grade, feedback"
	notificationColumns = "id, user_id, message, read, created_at"
)

type classroomRepository struct {
	db   core.DB // nil inside a transaction
	exec core.DBExecutor
}

func NewClassroomRepository(db core.DB) classroom.Repository {
	return &classroomRepository{db: db, exec: db}
}

func (repo *classroomRepository) RunInTx(ctx context.Context, fn func(repo classroom.Repository) error) error {
	if repo.db == nil { // already in a transaction
		return fn(repo)
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(&classroomRepository{exec: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rolling back transaction: %v", rbErr)
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

// Classes

func (repo *classroomRepository) CreateClass(ctx context.Context, class classroom.Class) (classroom.Class, error) {
	q := "INSERT INTO classes (name, description, teacher_id, created_at) VALUES ($1, $2, $3, $4) RETURNING id"
	err := repo.exec.QueryRowxContext(ctx, q, class.Name, class.Description, class.TeacherID, class.CreatedAt).Scan(&class.ID)
	if err != nil {
		return classroom.Class{}, errors.Wrap(err, "inserting class")
	}
	return class, nil
}

func (repo *classroomRepository) GetClass(ctx context.Context, id int) (classroom.Class, error) {
	var class classroom.Class
	q := "SELECT " + classColumns + " FROM classes WHERE id = $1"
	if err := sqlx.GetContext(ctx, repo.exec, &class, q, id); err != nil {
		if err == sql.ErrNoRows {
			return classroom.Class{}, classroom.ErrClassNotFound
		}
		return classroom.Class{}, errors.Wrap(err, "selecting class")
	}
	return class, nil
}

func (repo *classroomRepository) QueryClassesByTeacher(ctx context.Context, teacherID int) ([]classroom.Class, error) {
	classes := make([]classroom.Class, 0)
	q := "SELECT " + classColumns + " FROM classes WHERE teacher_id = $1 ORDER BY id"
	if err := sqlx.SelectContext(ctx, repo.exec, &classes, q, teacherID); err != nil {
		return nil, errors.Wrap(err, "selecting classes")
	}
	return classes, nil
}

func (repo *classroomRepository) QueryClassesByStudent(ctx context.Context, studentID int) ([]classroom.Class, error) {
	classes := make([]classroom.Class, 0)
	q := `SELECT c.id, c.name, c.description, c.teacher_id, c.created_at
		FROM student_classes sc JOIN classes c ON c.id = sc.class_id
		WHERE sc.student_id = $1 ORDER BY sc.id`
	if err := sqlx.SelectContext(ctx, repo.exec, &classes, q, studentID); err != nil {
		return nil, errors.Wrap(err, "selecting classes")
	}
	return classes, nil
}

// Enrollments

func (repo *classroomRepository) CreateEnrollment(ctx context.Context, enrollment classroom.Enrollment) (classroom.Enrollment, error) {
	q := "INSERT INTO student_classes (student_id, class_id, joined_at) VALUES ($1, $2, $3) RETURNING id"
	err := repo.exec.QueryRowxContext(ctx, q, enrollment.StudentID, enrollment.ClassID, enrollment.JoinedAt).Scan(&enrollment.ID)
	if err != nil {
		if pqErrorCode(err) == foreignKeyViolation {
			return classroom.Enrollment{}, classroom.ErrClassNotFound
		}
		return classroom.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return enrollment, nil
}

func (repo *classroomRepository) QueryEnrollments(ctx context.Context, classID int) ([]classroom.Enrollment, error) {
	enrollments := make([]classroom.Enrollment, 0)
	q := "SELECT " + enrollmentColumns + " FROM student_classes WHERE class_id = $1 ORDER BY id"
	if err := sqlx.SelectContext(ctx, repo.exec, &enrollments, q, classID); err != nil {
		return nil, errors.Wrap(err, "selecting enrollments")
	}
	return enrollments, nil
}

// Assignments

func (repo *classroomRepository) CreateAssignment(ctx context.Context, assignment classroom.Assignment) (classroom.Assignment, error) {
	q := `INSERT INTO assignments (title, description, due_date, teacher_id, class_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := repo.exec.QueryRowxContext(
		ctx, q,
		assignment.Title, assignment.Description, assignment.DueDate, assignment.TeacherID, assignment.ClassID, assignment.CreatedAt,
	).Scan(&assignment.ID)
	if err != nil {
		if pqErrorCode(err) == foreignKeyViolation {
			return classroom.Assignment{}, classroom.ErrClassNotFound
		}
		return classroom.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return assignment, nil
}

func (repo *classroomRepository) GetAssignment(ctx context.Context, id int) (classroom.Assignment, error) {
	var assignment classroom.Assignment
	q := "SELECT " + assignmentColumns + " FROM assignments WHERE id = $1"
	if err := sqlx.GetContext(ctx, repo.exec, &assignment, q, id); err != nil {
		if err == sql.ErrNoRows {
			return classroom.Assignment{}, classroom.ErrAssignmentNotFound
		}
		return classroom.Assignment{}, errors.Wrap(err, "selecting assignment")
	}
	return assignment, nil
}

func (repo *classroomRepository) QueryAssignments(ctx context.Context, filter classroom.AssignmentFilter) ([]classroom.Assignment, error) {
	assignments := make([]classroom.Assignment, 0)
	q := "SELECT " + assignmentColumns + " FROM assignments"
	var args []interface{}
	if filter.TeacherID != 0 {
		q += " WHERE teacher_id = $1"
		args = append(args, filter.TeacherID)
	}
	q += " ORDER BY id"
	if err := sqlx.SelectContext(ctx, repo.exec, &assignments, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting assignments")
	}
	return assignments, nil
}

// Submissions

func (repo *classroomRepository) CreateSubmission(ctx context.Context, submission classroom.Submission) (classroom.Submission, error) {
	q := "INSERT INTO submissions (assignment_id, student_id, content, submitted_at) VALUES ($1, $2, $3, $4) RETURNING id"
	err := repo.exec.QueryRowxContext(
		ctx, q,
		submission.AssignmentID, submission.StudentID, submission.Content, submission.SubmittedAt,
	).Scan(&submission.ID)
	if err != nil {
		if pqErrorCode(err) == foreignKeyViolation {
			return classroom.Submission{}, classroom.ErrAssignmentNotFound
		}
		return classroom.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return submission, nil
}

func (repo *classroomRepository) GetSubmission(ctx context.Context, id int) (classroom.Submission, error) {
	var submission classroom.Submission
	q := "SELECT " + submissionColumns + " FROM submissions WHERE id = $1"
	if err := sqlx.GetContext(ctx, repo.exec, &submission, q, id); err != nil {
		if err == sql.ErrNoRows {
			return classroom.Submission{}, classroom.ErrSubmissionNotFound
		}
		return classroom.Submission{}, errors.Wrap(err, "selecting submission")
	}
	return submission, nil
}

func (repo *classroomRepository) QuerySubmissions(ctx context.Context, filter classroom.SubmissionFilter) ([]classroom.Submission, error) {
	submissions := make([]classroom.Submission, 0)
	q := `SELECT s.id, s.assignment_id, s.student_id, s.content, s.submitted_at, s.grade, s.feedback
		FROM submissions s JOIN assignments a ON a.id = s.assignment_id
		WHERE ($1 = 0 OR s.student_id = $1) AND ($2 = 0 OR a.teacher_id = $2)
		ORDER BY s.id`
	if err := sqlx.SelectContext(ctx, repo.exec, &submissions, q, filter.StudentID, filter.AssignmentTeacherID); err != nil {
		return nil, errors.Wrap(err, "selecting submissions")
	}
	return submissions, nil
}

func (repo *classroomRepository) UpdateSubmissionGrade(ctx context.Context, submission classroom.Submission) (classroom.Submission, error) {
	var updated classroom.Submission
	q := "UPDATE submissions SET grade = $2, feedback = $3 WHERE id = $1 RETURNING " + submissionColumns
	if err := sqlx.GetContext(ctx, repo.exec, &updated, q, submission.ID, submission.Grade, submission.Feedback); err != nil {
		if err == sql.ErrNoRows {
			return classroom.Submission{}, classroom.ErrSubmissionNotFound
		}
		return classroom.Submission{}, errors.Wrap(err, "updating submission")
	}
	return updated, nil
}

// Notifications

func (repo *classroomRepository) CreateNotifications(ctx context.Context, notifications []classroom.Notification) ([]classroom.Notification, error) {
	created := make([]classroom.Notification, 0, len(notifications))
	if len(notifications) == 0 {
		return created, nil
	}

	columns := []string{"user_id", "message", "read", "created_at"}
	args := make([]interface{}, 0, len(columns)*len(notifications))
	for _, n := range notifications {
		args = append(args, n.UserID, n.Message, n.Read, n.CreatedAt)
	}
	q := bulkInsertQuery("notifications", columns, len(notifications), notificationColumns)
	if err := sqlx.SelectContext(ctx, repo.exec, &created, q, args...); err != nil {
		return nil, errors.Wrap(err, "inserting notifications")
	}
	return created, nil
}

func (repo *classroomRepository) QueryNotifications(ctx context.Context, userID int) ([]classroom.Notification, error) {
	notifications := make([]classroom.Notification, 0)
	q := "SELECT " + notificationColumns + " FROM notifications WHERE user_id = $1 ORDER BY created_at, id"
	if err := sqlx.SelectContext(ctx, repo.exec, &notifications, q, userID); err != nil {
		return nil, errors.Wrap(err, "selecting notifications")
	}
	return notifications, nil
}

func (repo *classroomRepository) MarkNotificationRead(ctx context.Context, id, userID int) (bool, error) {
	res, err := repo.exec.ExecContext(ctx, "UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, errors.Wrap(err, "updating notification")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "updating notification")
	}
	return n > 0, nil
}
