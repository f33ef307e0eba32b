package classroom

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// Actor is the authenticated caller of a request.
type Actor struct {
	ID   int
	Role user.Role
}

func (a Actor) IsTeacher() bool { return a.Role == user.RoleTeacher }
func (a Actor) IsStudent() bool { return a.Role == user.RoleStudent }

func ActorFromUser(usr user.User) Actor {
	return Actor{ID: usr.ID, Role: usr.Role}
}

type Class struct {
	ID          int         `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Description null.String `json:"description" db:"description"`
	TeacherID   int         `json:"teacherId" db:"teacher_id"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
}

// Enrollment links a student to a class (the "student_classes" table).
type Enrollment struct {
	ID        int       `json:"id" db:"id"`
	StudentID int       `json:"studentId" db:"student_id"`
	ClassID   int       `json:"classId" db:"class_id"`
	JoinedAt  time.Time `json:"joinedAt" db:"joined_at"`
}

type Assignment struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	DueDate     time.Time `json:"dueDate" db:"due_date"`
	TeacherID   int       `json:"teacherId" db:"teacher_id"`
	ClassID     int       `json:"classId" db:"class_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

type Submission struct {
	ID           int         `json:"id" db:"id"`
	AssignmentID int         `json:"assignmentId" db:"assignment_id"`
	StudentID    int         `json:"studentId" db:"student_id"`
	Content      string      `json:"content" db:"content"`
	SubmittedAt  time.Time   `json:"submittedAt" db:"submitted_at"`
	Grade        null.Int    `json:"grade" db:"grade"`
	Feedback     null.String `json:"feedback" db:"feedback"`
}

type Notification struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"userId" db:"user_id"`
	Message   string    `json:"message" db:"message"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Inputs

type NewClass struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

type NewAssignment struct {
	Title        string     `json:"title" validate:"required,max=200"`
	Description  string     `json:"description" validate:"required"`
	DueDate      time.Time  `json:"dueDate" validate:"required"`
	ClassID      int        `json:"classId" validate:"required"`
	ScheduledFor *time.Time `json:"scheduledFor"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return validate.Struct(na)
}

type NewSubmission struct {
	Content string `json:"content" validate:"required"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	return validate.Struct(ns)
}

type Grade struct {
	Grade    *int   `json:"grade" validate:"required,min=0,max=100"`
	Feedback string `json:"feedback"`
}

func (g *Grade) Validate(validate *validator.Validate) error {
	g.Feedback = core.CleanString(g.Feedback)
	return validate.Struct(g)
}

// Broadcast is a free-form message sent to every student of a class.
type Broadcast struct {
	ClassID int    `json:"classId" validate:"required"`
	Message string `json:"message" validate:"required,max=500"`
}

func (b *Broadcast) Validate(validate *validator.Validate) error {
	b.Message = core.CleanString(b.Message)
	return validate.Struct(b)
}

// MarkRead names the notification to mark as read; an id matching none of the actor's
// notifications, zero included, is accepted and ignored.
type MarkRead struct {
	ID int `json:"id"`
}

// AssignmentQuery narrows & orders a listing of assignments.
type AssignmentQuery struct {
	Search    string
	Orderings []core.Ordering
}
