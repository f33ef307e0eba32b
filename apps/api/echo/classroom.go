package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/classroom"
)

type classroomApi struct {
	svc      *classroom.Service
	validate *validator.Validate
}

func registerClassroomAPI(g *echo.Group, session echo.MiddlewareFunc, api classroomApi) {
	ag := g.Group("", session)

	ag.GET("/classes", withActor(api.listClasses))
	ag.POST("/classes", withActor(api.createClass))
	ag.POST("/classes/:id/enroll", withActor(api.enroll))

	ag.GET("/assignments", withActor(api.listAssignments))
	ag.POST("/assignments", withActor(api.createAssignment))
	ag.POST("/assignments/:id/submit", withActor(api.submit))

	ag.GET("/submissions", withActor(api.listSubmissions))
	ag.PUT("/submissions/:id/grade", withActor(api.grade))

	ag.GET("/notifications", withActor(api.listNotifications))
	ag.POST("/notifications/mark-read", withActor(api.markNotificationRead))
	ag.POST("/notifications/bulk", withActor(api.broadcast))

	ag.GET("/dashboard", withActor(api.dashboard))
}

// Classes

func (api *classroomApi) listClasses(ctx echo.Context, actor classroom.Actor) error {
	classes, err := api.svc.ListClasses(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "listing classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classroomApi) createClass(ctx echo.Context, actor classroom.Actor) error {
	if !actor.IsTeacher() {
		return classroom.ErrNotAuthorized
	}
	var data classroom.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	class, err := api.svc.CreateClass(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusOK, class)
}

func (api *classroomApi) enroll(ctx echo.Context, actor classroom.Actor) error {
	classID, err := bindID(ctx)
	if err != nil {
		return err
	}
	enrollment, err := api.svc.Enroll(ctx.Request().Context(), actor, classID)
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusOK, enrollment)
}

// Assignments

func (api *classroomApi) listAssignments(ctx echo.Context, actor classroom.Actor) error {
	assignments, err := api.svc.ListAssignments(ctx.Request().Context(), actor, bindAssignmentQuery(ctx))
	if err != nil {
		return errors.Wrap(err, "listing assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *classroomApi) createAssignment(ctx echo.Context, actor classroom.Actor) error {
	if !actor.IsTeacher() {
		return classroom.ErrNotAuthorized
	}
	var data classroom.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	assignment, err := api.svc.CreateAssignment(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusOK, assignment)
}

// Submissions

func (api *classroomApi) submit(ctx echo.Context, actor classroom.Actor) error {
	if !actor.IsStudent() {
		return classroom.ErrNotAuthorized
	}
	assignmentID, err := bindID(ctx)
	if err != nil {
		return err
	}
	var data classroom.NewSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	submission, err := api.svc.Submit(ctx.Request().Context(), actor, assignmentID, data)
	if err != nil {
		return errors.Wrap(err, "submitting")
	}
	return ctx.JSON(http.StatusOK, submission)
}

func (api *classroomApi) listSubmissions(ctx echo.Context, actor classroom.Actor) error {
	submissions, err := api.svc.ListSubmissions(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "listing submissions")
	}
	return ctx.JSON(http.StatusOK, submissions)
}

func (api *classroomApi) grade(ctx echo.Context, actor classroom.Actor) error {
	if !actor.IsTeacher() {
		return classroom.ErrNotAuthorized
	}
	submissionID, err := bindID(ctx)
	if err != nil {
		return err
	}
	var data classroom.Grade
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Grade")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	submission, err := api.svc.GradeSubmission(ctx.Request().Context(), actor, submissionID, data)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}
	return ctx.JSON(http.StatusOK, submission)
}

// Notifications

func (api *classroomApi) listNotifications(ctx echo.Context, actor classroom.Actor) error {
	notifications, err := api.svc.ListNotifications(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "listing notifications")
	}
	return ctx.JSON(http.StatusOK, notifications)
}

func (api *classroomApi) markNotificationRead(ctx echo.Context, actor classroom.Actor) error {
	var data classroom.MarkRead
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkRead")
	}

	if err := api.svc.MarkNotificationRead(ctx.Request().Context(), actor, data.ID); err != nil {
		return errors.Wrap(err, "marking notification as read")
	}
	return ctx.JSON(http.StatusOK, success)
}

func (api *classroomApi) broadcast(ctx echo.Context, actor classroom.Actor) error {
	if !actor.IsTeacher() {
		return classroom.ErrNotAuthorized
	}
	var data classroom.Broadcast
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Broadcast")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.svc.BroadcastToClass(ctx.Request().Context(), actor, data); err != nil {
		return errors.Wrap(err, "broadcasting to class")
	}
	return ctx.JSON(http.StatusOK, success)
}

func (api *classroomApi) dashboard(ctx echo.Context, actor classroom.Actor) error {
	stats, err := api.svc.Dashboard(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "computing dashboard")
	}
	return ctx.JSON(http.StatusOK, stats)
}
