package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

const userColumns = "id, username, password, role, full_name, profile_picture, email, created_at"

type userRepository struct {
	db core.DBExecutor
}

func NewUserRepository(db core.DBExecutor) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username string, excludedIDs ...int) error {
	if excludedIDs == nil {
		excludedIDs = []int{}
	}
	var count int
	q := "SELECT COUNT(*) FROM users WHERE username = $1 AND NOT (id = ANY($2))"
	if err := sqlx.GetContext(ctx, repo.db, &count, q, username, pq.Array(excludedIDs)); err != nil {
		return errors.Wrap(err, "counting users")
	}
	if count > 0 {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `INSERT INTO users (username, password, role, full_name, profile_picture, email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := repo.db.QueryRowxContext(
		ctx, q,
		usr.Username, usr.PasswordHash, usr.Role, usr.FullName, usr.ProfilePicture, usr.Email, usr.CreatedAt,
	).Scan(&usr.ID)
	if err != nil {
		if pqErrorCode(err) == uniqueViolation {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.ID != 0 {
		args = append(args, filter.ID)
		where = append(where, "id = ?")
	}
	if filter.Username != "" {
		args = append(args, filter.Username)
		where = append(where, "username = ?")
	}
	if len(where) == 0 {
		return user.User{}, user.ErrNotFound
	}

	var usr user.User
	q := repo.db.Rebind("SELECT " + userColumns + " FROM users WHERE " + strings.Join(where, " AND ") + " LIMIT 1")
	if err := sqlx.GetContext(ctx, repo.db, &usr, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsersByID(ctx context.Context, ids ...int) ([]user.User, error) {
	users := make([]user.User, 0)
	if len(ids) == 0 {
		return users, nil
	}
	q, args, err := sqlx.In("SELECT "+userColumns+" FROM users WHERE id IN (?) ORDER BY id", ids)
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	if err = sqlx.SelectContext(ctx, repo.db, &users, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	return users, nil
}

// UpdateUser saves the password & profile fields; username, role & creation time are immutable.
func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `UPDATE users SET password = COALESCE($2, password), full_name = $3, profile_picture = $4, email = $5
		WHERE id = $1 RETURNING ` + userColumns
	var updated user.User
	err := sqlx.GetContext(ctx, repo.db, &updated, q, usr.ID, usr.PasswordHash, usr.FullName, usr.ProfilePicture, usr.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return updated, nil
}
