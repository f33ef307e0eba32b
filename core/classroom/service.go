package classroom

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

const (
	newAssignmentMessage    = `New assignment "%s" has been posted in your class`
	gradedSubmissionMessage = `Your submission for "%s" has been graded`
)

type Service struct {
	repo    Repository
	users   UserFinder
	mailSvc core.EmailService
	logger  core.Logger
}

func NewService(repo Repository, users UserFinder, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		users:   users,
		mailSvc: mailSvc,
		logger:  logger,
	}
}

// Classes

func (svc *Service) CreateClass(ctx context.Context, actor Actor, nc NewClass) (Class, error) {
	if err := requireTeacher(actor); err != nil {
		return Class{}, err
	}
	class, err := svc.repo.CreateClass(ctx, Class{
		Name:        nc.Name,
		Description: null.NewString(nc.Description, nc.Description != ""),
		TeacherID:   actor.ID,
		CreatedAt:   core.NowFunc(),
	})
	if err != nil {
		return Class{}, errors.Wrap(err, "creating class")
	}
	return class, nil
}

// ListClasses returns the classes a teacher owns, or the classes a student is enrolled in.
func (svc *Service) ListClasses(ctx context.Context, actor Actor) ([]Class, error) {
	var classes []Class
	var err error
	if actor.IsTeacher() {
		classes, err = svc.repo.QueryClassesByTeacher(ctx, actor.ID)
	} else {
		classes, err = svc.repo.QueryClassesByStudent(ctx, actor.ID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	return classes, nil
}

// Enroll always creates a new enrollment, even if the student is already enrolled.
func (svc *Service) Enroll(ctx context.Context, actor Actor, classID int) (Enrollment, error) {
	if err := requireStudent(actor); err != nil {
		return Enrollment{}, err
	}
	if _, err := svc.repo.GetClass(ctx, classID); err != nil {
		return Enrollment{}, errors.Wrap(err, "finding class")
	}
	enrollment, err := svc.repo.CreateEnrollment(ctx, Enrollment{
		StudentID: actor.ID,
		ClassID:   classID,
		JoinedAt:  core.NowFunc(),
	})
	if err != nil {
		return Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	return enrollment, nil
}

// Assignments

// ListAssignments returns every assignment to students and the authored ones to teachers.
func (svc *Service) ListAssignments(ctx context.Context, actor Actor, query AssignmentQuery) ([]Assignment, error) {
	var filter AssignmentFilter
	if actor.IsTeacher() {
		filter.TeacherID = actor.ID
	}
	assignments, err := svc.repo.QueryAssignments(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	assignments = FilterAssignments(assignments, query.Search)
	return SortAssignments(assignments, query.Orderings), nil
}

// CreateAssignment posts an assignment to a class owned by the actor and notifies every
// enrolled student. Permissions are checked before the transaction opens; the assignment
// and its notifications are written atomically and emails are sent after commit, on a
// best-effort basis.
func (svc *Service) CreateAssignment(ctx context.Context, actor Actor, na NewAssignment) (Assignment, error) {
	if err := requireTeacher(actor); err != nil {
		return Assignment{}, err
	}

	class, err := svc.ownedClass(ctx, actor, na.ClassID)
	if err != nil {
		return Assignment{}, err
	}

	var (
		assignment Assignment
		roster     []Enrollment
	)
	err = svc.repo.RunInTx(ctx, func(repo Repository) error {
		createdAt := core.NowFunc()
		if na.ScheduledFor != nil && !na.ScheduledFor.IsZero() {
			createdAt = na.ScheduledFor.UTC()
		}
		var err error
		assignment, err = repo.CreateAssignment(ctx, Assignment{
			Title:       na.Title,
			Description: na.Description,
			DueDate:     na.DueDate.UTC(),
			TeacherID:   actor.ID,
			ClassID:     class.ID,
			CreatedAt:   createdAt,
		})
		if err != nil {
			return errors.Wrap(err, "creating assignment")
		}

		if roster, err = repo.QueryEnrollments(ctx, class.ID); err != nil {
			return errors.Wrap(err, "querying enrollments")
		}
		return svc.fanOut(ctx, repo, studentIDs(roster, false), fmt.Sprintf(newAssignmentMessage, assignment.Title))
	})
	if err != nil {
		return Assignment{}, err
	}

	svc.mailNewAssignment(ctx, roster, class, assignment)
	return assignment, nil
}

// Submissions

// Submit records a new submission; a student may submit the same assignment many times.
func (svc *Service) Submit(ctx context.Context, actor Actor, assignmentID int, ns NewSubmission) (Submission, error) {
	if err := requireStudent(actor); err != nil {
		return Submission{}, err
	}
	if _, err := svc.repo.GetAssignment(ctx, assignmentID); err != nil {
		return Submission{}, errors.Wrap(err, "finding assignment")
	}
	submission, err := svc.repo.CreateSubmission(ctx, Submission{
		AssignmentID: assignmentID,
		StudentID:    actor.ID,
		Content:      ns.Content,
		SubmittedAt:  core.NowFunc(),
	})
	if err != nil {
		return Submission{}, errors.Wrap(err, "creating submission")
	}
	return submission, nil
}

// ListSubmissions returns a student's own submissions, or the submissions made on a teacher's assignments.
func (svc *Service) ListSubmissions(ctx context.Context, actor Actor) ([]Submission, error) {
	var filter SubmissionFilter
	if actor.IsTeacher() {
		filter.AssignmentTeacherID = actor.ID
	} else {
		filter.StudentID = actor.ID
	}
	submissions, err := svc.repo.QuerySubmissions(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	return submissions, nil
}

func (svc *Service) GradeSubmission(ctx context.Context, actor Actor, submissionID int, g Grade) (Submission, error) {
	if err := requireTeacher(actor); err != nil {
		return Submission{}, err
	}

	submission, err := svc.repo.GetSubmission(ctx, submissionID)
	if err != nil {
		return Submission{}, errors.Wrap(err, "finding submission")
	}
	assignment, err := svc.repo.GetAssignment(ctx, submission.AssignmentID)
	if err != nil {
		return Submission{}, errors.Wrap(err, "finding assignment")
	}
	if err = canGrade(actor, assignment); err != nil {
		return Submission{}, err
	}

	submission.Grade = null.IntFromPtr(g.Grade)
	submission.Feedback = null.NewString(g.Feedback, g.Feedback != "")
	err = svc.repo.RunInTx(ctx, func(repo Repository) error {
		var err error
		if submission, err = repo.UpdateSubmissionGrade(ctx, submission); err != nil {
			return errors.Wrap(err, "grading submission")
		}
		return svc.fanOut(ctx, repo, []int{submission.StudentID}, fmt.Sprintf(gradedSubmissionMessage, assignment.Title))
	})
	if err != nil {
		return Submission{}, err
	}
	return submission, nil
}

// Notifications

func (svc *Service) ListNotifications(ctx context.Context, actor Actor) ([]Notification, error) {
	notifications, err := svc.repo.QueryNotifications(ctx, actor.ID)
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	return notifications, nil
}

// MarkNotificationRead is a no-op when the notification does not belong to the actor.
func (svc *Service) MarkNotificationRead(ctx context.Context, actor Actor, id int) error {
	if _, err := svc.repo.MarkNotificationRead(ctx, id, actor.ID); err != nil {
		return errors.Wrap(err, "marking notification as read")
	}
	return nil
}

// BroadcastToClass notifies every student enrolled in a class owned by the actor.
// It returns the number of notifications created.
func (svc *Service) BroadcastToClass(ctx context.Context, actor Actor, b Broadcast) (int, error) {
	if err := requireTeacher(actor); err != nil {
		return 0, err
	}

	class, err := svc.ownedClass(ctx, actor, b.ClassID)
	if err != nil {
		return 0, err
	}

	var count int
	err = svc.repo.RunInTx(ctx, func(repo Repository) error {
		roster, err := repo.QueryEnrollments(ctx, class.ID)
		if err != nil {
			return errors.Wrap(err, "querying enrollments")
		}
		ids := studentIDs(roster, false)
		count = len(ids)
		return svc.fanOut(ctx, repo, ids, b.Message)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Dashboard returns a StudentDashboard or a TeacherDashboard depending on the actor's role.
func (svc *Service) Dashboard(ctx context.Context, actor Actor) (interface{}, error) {
	assignments, err := svc.ListAssignments(ctx, actor, AssignmentQuery{})
	if err != nil {
		return nil, err
	}
	submissions, err := svc.ListSubmissions(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !actor.IsTeacher() {
		return NewStudentDashboard(assignments, submissions), nil
	}
	classes, err := svc.ListClasses(ctx, actor)
	if err != nil {
		return nil, err
	}
	return NewTeacherDashboard(classes, assignments, submissions), nil
}

// ownedClass finds a class the actor may post to; an unknown class counts as not owned.
func (svc *Service) ownedClass(ctx context.Context, actor Actor, classID int) (Class, error) {
	class, err := svc.repo.GetClass(ctx, classID)
	if err != nil {
		if errors.Cause(err) == ErrClassNotFound {
			return Class{}, ErrClassNotOwned
		}
		return Class{}, errors.Wrap(err, "finding class")
	}
	if err = canPostToClass(actor, class); err != nil {
		return Class{}, err
	}
	return class, nil
}

// fanOut creates one notification per user id with a single insert; nothing is inserted for no ids.
func (svc *Service) fanOut(ctx context.Context, repo Repository, userIDs []int, message string) error {
	if len(userIDs) == 0 {
		return nil
	}
	now := core.NowFunc()
	notifications := make([]Notification, 0, len(userIDs))
	for _, id := range userIDs {
		notifications = append(notifications, Notification{UserID: id, Message: message, CreatedAt: now})
	}
	if _, err := repo.CreateNotifications(ctx, notifications); err != nil {
		return errors.Wrap(err, "creating notifications")
	}
	return nil
}

type newAssignmentMailData struct {
	Name      string
	Title     string
	ClassName string
	DueDate   time.Time
}

// mailNewAssignment emails the enrolled students that have an email address.
// Failures are logged, never returned: the assignment is already committed.
func (svc *Service) mailNewAssignment(ctx context.Context, roster []Enrollment, class Class, assignment Assignment) {
	if svc.mailSvc == nil || svc.users == nil || len(roster) == 0 {
		return
	}
	students, err := svc.users.GetByIDs(ctx, studentIDs(roster, true)...)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("finding students to email for assignment %d: %v", assignment.ID, err), err)
		return
	}

	messages := make([]*core.EmailMessage, 0, len(students))
	for _, s := range students {
		if !s.Email.Valid || s.Email.String == "" {
			continue
		}
		messages = append(messages, &core.EmailMessage{
			To:           []mail.Address{{Name: s.DisplayName(), Address: s.Email.String}},
			Subject:      fmt.Sprintf("New assignment: %s", assignment.Title),
			TemplateName: "new_assignment",
			TemplateData: newAssignmentMailData{
				Name:      s.DisplayName(),
				Title:     assignment.Title,
				ClassName: class.Name,
				DueDate:   assignment.DueDate,
			},
		})
	}
	if len(messages) > 0 {
		svc.mailSvc.SendMessages(messages...)
	}
}

// studentIDs lists the student of every enrollment, once per enrollment unless unique.
func studentIDs(roster []Enrollment, unique bool) []int {
	ids := make([]int, 0, len(roster))
	seen := make(map[int]struct{}, len(roster))
	for _, e := range roster {
		if unique {
			if _, ok := seen[e.StudentID]; ok {
				continue
			}
			seen[e.StudentID] = struct{}{}
		}
		ids = append(ids, e.StudentID)
	}
	return ids
}
