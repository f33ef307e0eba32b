package user

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound             = core.NewNotFoundError("user not found")
	ErrUsernameExists       = errors.New("a user with this username already exists")
	ErrAuthenticationFailed = core.NewValidationError(errors.New("invalid username or password"))
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username string, excludedIDs ...int) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		QueryUsersByID(ctx context.Context, ids ...int) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(ctx context.Context, uname string, exclIDs ...int) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname, exclIDs...); err != nil {
		if errors.Cause(err) == ErrUsernameExists {
			return core.NewValidationError(err, core.FieldError{Field: "username", Error: err.Error()})
		}
		return errors.Wrap(err, "checking username uniqueness")
	}
	return nil
}

// Register creates a new User; `nu` must have been validated.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	if err := svc.checkUniqueness(ctx, nu.Username); err != nil {
		return User{}, err
	}
	usr := User{
		Username:  nu.Username,
		Role:      nu.Role,
		FullName:  nullString(nu.FullName),
		Email:     nullString(nu.Email),
		CreatedAt: core.NowFunc(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if errors.Cause(err) == ErrUsernameExists { // lost the race against a concurrent registration
			return User{}, core.NewValidationError(err, core.FieldError{Field: "username", Error: err.Error()})
		}
		return User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

// Authenticate returns the User matching the credentials.
// Unknown usernames & wrong passwords both yield ErrAuthenticationFailed.
func (svc *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{Username: core.CleanString(creds.Username, true /* lower */)})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrAuthenticationFailed
		}
		return User{}, errors.Wrap(err, "finding user by username")
	}
	if err = usr.CheckPassword(creds.Password); err != nil {
		return User{}, ErrAuthenticationFailed
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

// GetByIDs returns the existing users among ids, in no particular order.
func (svc *Service) GetByIDs(ctx context.Context, ids ...int) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return svc.repo.QueryUsersByID(ctx, ids...)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Username: core.CleanString(uname, true /* lower */)})
}

// UpdateProfile applies the non-nil fields of `up`; an empty string clears the field.
func (svc *Service) UpdateProfile(ctx context.Context, id int, up UpdateProfile) (User, error) {
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return User{}, errors.Wrap(err, "finding user by ID")
	}
	if up.FullName != nil {
		usr.FullName = nullString(*up.FullName)
	}
	if up.ProfilePicture != nil {
		usr.ProfilePicture = nullString(*up.ProfilePicture)
	}
	if up.Email != nil {
		usr.Email = nullString(*up.Email)
	}
	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "updating user")
	}
	return usr, nil
}

func (svc *Service) ResetPassword(ctx context.Context, uname, pwd string) error {
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return nil
}

// AddUser updates or creates a User; the role of an existing User is left untouched.
func (svc *Service) AddUser(ctx context.Context, uname, pwd string, role Role) (User, error) {
	uname = core.CleanString(uname, true /* lower */)
	if !role.Valid() {
		return User{}, errors.Errorf("invalid role %q", role)
	}

	usr, err := svc.GetByUsername(ctx, uname)
	exists := err == nil
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return User{}, err
		}
		usr = User{Username: uname, Role: role, CreatedAt: core.NowFunc()}
	}
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	if exists {
		return svc.repo.UpdateUser(ctx, usr)
	}
	return svc.repo.CreateUser(ctx, usr)
}
