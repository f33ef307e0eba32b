package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/classroom"
)

// actorHandlerFunc is an echo handler that receives the authenticated caller explicitly.
type actorHandlerFunc func(ctx echo.Context, actor classroom.Actor) error

// withActor resolves the Actor from the session claims; it must run behind the auth middleware.
func withActor(h actorHandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}
		actor, err := claims.Actor()
		if err != nil {
			return errors.Wrap(err, "getting actor from claims")
		}
		return h(ctx, actor)
	}
}
