package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/classroom"
)

type classroomRepository struct {
	db   *DB
	inTx bool
}

func NewClassroomRepository(db *DB) classroom.Repository {
	return &classroomRepository{db: db}
}

// RunInTx snapshots all tables and restores them if fn fails.
// Transactions are serialized and writes made outside fn wait until it returns,
// so the snapshot only ever differs from the live tables by fn's own writes.
// A nested call joins the current transaction.
func (repo *classroomRepository) RunInTx(_ context.Context, fn func(repo classroom.Repository) error) error {
	if repo.inTx {
		return fn(repo)
	}

	repo.db.txMutex.Lock()
	defer repo.db.txMutex.Unlock()

	repo.db.RLock()
	snapshot := repo.db.tables.clone()
	repo.db.RUnlock()

	if err := fn(&classroomRepository{db: repo.db, inTx: true}); err != nil {
		repo.db.Lock()
		repo.db.tables = snapshot
		repo.db.Unlock()
		return err
	}
	return nil
}

// Classes

func (repo *classroomRepository) CreateClass(_ context.Context, class classroom.Class) (classroom.Class, error) {
	defer repo.db.lockWrite(repo.inTx)()

	class.ID = repo.db.nextID("classes")
	repo.db.tables.classes[class.ID] = class
	return class, nil
}

func (repo *classroomRepository) GetClass(_ context.Context, id int) (classroom.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if class, ok := repo.db.tables.classes[id]; ok {
		return class, nil
	}
	return classroom.Class{}, classroom.ErrClassNotFound
}

func (repo *classroomRepository) QueryClassesByTeacher(_ context.Context, teacherID int) ([]classroom.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]classroom.Class, 0)
	for _, id := range sortedKeys(repo.db.tables.classes) {
		if class := repo.db.tables.classes[id]; class.TeacherID == teacherID {
			classes = append(classes, class)
		}
	}
	return classes, nil
}

func (repo *classroomRepository) QueryClassesByStudent(_ context.Context, studentID int) ([]classroom.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]classroom.Class, 0)
	for _, id := range sortedKeys(repo.db.tables.enrollments) {
		e := repo.db.tables.enrollments[id]
		if e.StudentID != studentID {
			continue
		}
		if class, ok := repo.db.tables.classes[e.ClassID]; ok {
			classes = append(classes, class)
		}
	}
	return classes, nil
}

// Enrollments

func (repo *classroomRepository) CreateEnrollment(_ context.Context, enrollment classroom.Enrollment) (classroom.Enrollment, error) {
	defer repo.db.lockWrite(repo.inTx)()

	if _, ok := repo.db.tables.classes[enrollment.ClassID]; !ok {
		return classroom.Enrollment{}, classroom.ErrClassNotFound
	}
	enrollment.ID = repo.db.nextID("student_classes")
	repo.db.tables.enrollments[enrollment.ID] = enrollment
	return enrollment, nil
}

func (repo *classroomRepository) QueryEnrollments(_ context.Context, classID int) ([]classroom.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	enrollments := make([]classroom.Enrollment, 0)
	for _, id := range sortedKeys(repo.db.tables.enrollments) {
		if e := repo.db.tables.enrollments[id]; e.ClassID == classID {
			enrollments = append(enrollments, e)
		}
	}
	return enrollments, nil
}

// Assignments

func (repo *classroomRepository) CreateAssignment(_ context.Context, assignment classroom.Assignment) (classroom.Assignment, error) {
	defer repo.db.lockWrite(repo.inTx)()

	if _, ok := repo.db.tables.classes[assignment.ClassID]; !ok {
		return classroom.Assignment{}, classroom.ErrClassNotFound
	}
	assignment.ID = repo.db.nextID("assignments")
	repo.db.tables.assignments[assignment.ID] = assignment
	return assignment, nil
}

func (repo *classroomRepository) GetAssignment(_ context.Context, id int) (classroom.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if assignment, ok := repo.db.tables.assignments[id]; ok {
		return assignment, nil
	}
	return classroom.Assignment{}, classroom.ErrAssignmentNotFound
}

func (repo *classroomRepository) QueryAssignments(_ context.Context, filter classroom.AssignmentFilter) ([]classroom.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	assignments := make([]classroom.Assignment, 0)
	for _, id := range sortedKeys(repo.db.tables.assignments) {
		a := repo.db.tables.assignments[id]
		if filter.TeacherID != 0 && a.TeacherID != filter.TeacherID {
			continue
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}

// Submissions

func (repo *classroomRepository) CreateSubmission(_ context.Context, submission classroom.Submission) (classroom.Submission, error) {
	defer repo.db.lockWrite(repo.inTx)()

	if _, ok := repo.db.tables.assignments[submission.AssignmentID]; !ok {
		return classroom.Submission{}, classroom.ErrAssignmentNotFound
	}
	submission.ID = repo.db.nextID("submissions")
	repo.db.tables.submissions[submission.ID] = submission
	return submission, nil
}

func (repo *classroomRepository) GetSubmission(_ context.Context, id int) (classroom.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if submission, ok := repo.db.tables.submissions[id]; ok {
		return submission, nil
	}
	return classroom.Submission{}, classroom.ErrSubmissionNotFound
}

func (repo *classroomRepository) QuerySubmissions(_ context.Context, filter classroom.SubmissionFilter) ([]classroom.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	submissions := make([]classroom.Submission, 0)
	for _, id := range sortedKeys(repo.db.tables.submissions) {
		s := repo.db.tables.submissions[id]
		if filter.StudentID != 0 && s.StudentID != filter.StudentID {
			continue
		}
		if filter.AssignmentTeacherID != 0 && repo.db.tables.assignments[s.AssignmentID].TeacherID != filter.AssignmentTeacherID {
			continue
		}
		submissions = append(submissions, s)
	}
	return submissions, nil
}

func (repo *classroomRepository) UpdateSubmissionGrade(_ context.Context, submission classroom.Submission) (classroom.Submission, error) {
	defer repo.db.lockWrite(repo.inTx)()

	orig, ok := repo.db.tables.submissions[submission.ID]
	if !ok {
		return classroom.Submission{}, classroom.ErrSubmissionNotFound
	}
	orig.Grade = submission.Grade
	orig.Feedback = submission.Feedback
	repo.db.tables.submissions[orig.ID] = orig
	return orig, nil
}

// Notifications

func (repo *classroomRepository) CreateNotifications(_ context.Context, notifications []classroom.Notification) ([]classroom.Notification, error) {
	defer repo.db.lockWrite(repo.inTx)()

	created := make([]classroom.Notification, 0, len(notifications))
	for _, n := range notifications {
		n.ID = repo.db.nextID("notifications")
		repo.db.tables.notifications[n.ID] = n
		created = append(created, n)
	}
	return created, nil
}

func (repo *classroomRepository) QueryNotifications(_ context.Context, userID int) ([]classroom.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	notifications := make([]classroom.Notification, 0)
	for _, id := range sortedKeys(repo.db.tables.notifications) {
		if n := repo.db.tables.notifications[id]; n.UserID == userID {
			notifications = append(notifications, n)
		}
	}
	// oldest first; ids are already ascending so a stable sort breaks ties on them
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.Before(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (repo *classroomRepository) MarkNotificationRead(_ context.Context, id, userID int) (bool, error) {
	defer repo.db.lockWrite(repo.inTx)()

	n, ok := repo.db.tables.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	n.Read = true
	repo.db.tables.notifications[id] = n
	return true, nil
}
