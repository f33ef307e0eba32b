package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
)

type userApi struct {
	svc      *user.Service
	auth     authenticator
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, session echo.MiddlewareFunc, api userApi) {
	// un-authed endpoints
	g.POST("/register", api.register)
	g.POST("/login", api.login)
	g.POST("/logout", api.logout)

	// authed endpoints
	g.GET("/user", withActor(api.retrieve), session)
	g.PUT("/user/profile", withActor(api.updateProfile), session)
	g.POST("/session/refresh", withActor(api.refreshSession), session)
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	if err = api.auth.login(ctx, usr); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	if err = api.auth.login(ctx, usr); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) logout(ctx echo.Context) error {
	api.auth.logout(ctx)
	return ctx.JSON(http.StatusOK, success)
}

func (api *userApi) retrieve(ctx echo.Context, actor classroom.Actor) error {
	usr, err := api.svc.GetByID(ctx.Request().Context(), actor.ID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound { // deleted since login
			return errNotAuthenticated
		}
		return errors.Wrap(err, "finding user by ID")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) updateProfile(ctx echo.Context, actor classroom.Actor) error {
	var data user.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.UpdateProfile(ctx.Request().Context(), actor.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) refreshSession(ctx echo.Context, actor classroom.Actor) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	usr, err := api.svc.GetByID(ctx.Request().Context(), actor.ID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errNotAuthenticated
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if err = api.auth.refresh(ctx, usr, claims); err != nil {
		return errors.Wrap(err, "refreshing session")
	}
	return ctx.JSON(http.StatusOK, usr)
}
