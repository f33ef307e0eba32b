package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/classroom"
)

const (
	searchParam   = "search"
	orderingParam = "ordering"
)

// bindID parses the ":id" path param; a malformed id is not found.
func bindID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

func bindAssignmentQuery(ctx echo.Context) classroom.AssignmentQuery {
	return classroom.AssignmentQuery{
		Search:    core.CleanString(ctx.QueryParam(searchParam)),
		Orderings: core.ParseOrderings(ctx.QueryParam(orderingParam)),
	}
}

type successResponse struct {
	Success bool `json:"success"`
}

var success = successResponse{Success: true}
