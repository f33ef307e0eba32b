package classroom

import "github.com/trezcool/darasa/core"

// Authorization predicates. Every Service operation evaluates its predicate
// before reading or writing anything on behalf of the Actor.

var (
	ErrNotAuthorized = core.NewPermissionError("Not authorized")
	ErrClassNotOwned = core.NewPermissionError("You can only create assignments for your own classes")
)

func requireTeacher(actor Actor) error {
	if !actor.IsTeacher() {
		return ErrNotAuthorized
	}
	return nil
}

func requireStudent(actor Actor) error {
	if !actor.IsStudent() {
		return ErrNotAuthorized
	}
	return nil
}

// canPostToClass: only the teacher owning the class may post assignments or broadcasts to it.
func canPostToClass(actor Actor, class Class) error {
	if err := requireTeacher(actor); err != nil {
		return err
	}
	if class.TeacherID != actor.ID {
		return ErrClassNotOwned
	}
	return nil
}

// canGrade: only the teacher who authored the assignment may grade its submissions.
func canGrade(actor Actor, assignment Assignment) error {
	if err := requireTeacher(actor); err != nil {
		return err
	}
	if assignment.TeacherID != actor.ID {
		return ErrNotAuthorized
	}
	return nil
}
