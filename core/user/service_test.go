package user_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/storage/database/inmem"
	"github.com/trezcool/darasa/tests"
)

func setup() (user.Repository, *user.Service) {
	repo := inmemdb.NewUserRepository(inmemdb.Open())
	return repo, user.NewService(repo)
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	repo, svc := setup()
	testutil.CreateUser(t, repo, "taken", "", user.RoleStudent, "")

	usr, err := svc.Register(ctx, user.NewUser{Username: "awe", Password: "Str0ng!Pass", Role: user.RoleTeacher, FullName: "Awe"})
	require.NoError(t, err)
	assert.NotZero(t, usr.ID)
	assert.Equal(t, user.RoleTeacher, usr.Role)
	assert.Equal(t, "Awe", usr.FullName.String)
	assert.False(t, usr.Email.Valid)
	assert.NoError(t, usr.CheckPassword("Str0ng!Pass"))

	_, err = svc.Register(ctx, user.NewUser{Username: "taken", Password: "Str0ng!Pass", Role: user.RoleStudent})
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, []core.FieldError{{Field: "username", Error: user.ErrUsernameExists.Error()}}, vErr.Fields)
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	repo, svc := setup()
	usr := testutil.CreateUser(t, repo, "awe", "Str0ng!Pass", user.RoleStudent, "")

	tests := []struct {
		name    string
		creds   user.Credentials
		wantErr error
	}{
		{name: "unknown user", creds: user.Credentials{Username: "nope", Password: "Str0ng!Pass"}, wantErr: user.ErrAuthenticationFailed},
		{name: "wrong password", creds: user.Credentials{Username: "awe", Password: "wrong"}, wantErr: user.ErrAuthenticationFailed},
		{name: "ok", creds: user.Credentials{Username: " AWE ", Password: "Str0ng!Pass"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(ctx, tt.creds)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, usr.ID, got.ID)
		})
	}
}

func TestService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo, svc := setup()
	usr := testutil.CreateUser(t, repo, "awe", "Str0ng!Pass", user.RoleStudent, "awe@test.cd")
	str := func(s string) *string { return &s }

	got, err := svc.UpdateProfile(ctx, usr.ID, user.UpdateProfile{FullName: str("Awe King"), Email: str("")})
	require.NoError(t, err)
	assert.Equal(t, "Awe King", got.FullName.String)
	assert.False(t, got.Email.Valid, "cleared")
	assert.Equal(t, user.RoleStudent, got.Role)
	assert.NoError(t, got.CheckPassword("Str0ng!Pass"), "password kept")

	_, err = svc.UpdateProfile(ctx, 999, user.UpdateProfile{})
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
}

func TestService_AddUser(t *testing.T) {
	ctx := context.Background()
	repo, svc := setup()
	existing := testutil.CreateUser(t, repo, "awe", "Old!Pass1", user.RoleStudent, "")

	_, err := svc.AddUser(ctx, "x", "pwd", "admin")
	assert.Error(t, err)

	created, err := svc.AddUser(ctx, " NewOne ", "N3w!Pass", user.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, "newone", created.Username)
	assert.Equal(t, user.RoleTeacher, created.Role)

	updated, err := svc.AddUser(ctx, "awe", "N3w!Pass", user.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, updated.ID)
	assert.Equal(t, user.RoleStudent, updated.Role, "role untouched")
	assert.NoError(t, updated.CheckPassword("N3w!Pass"))

	require.NoError(t, svc.ResetPassword(ctx, "awe", "An0ther!Pass"))
	usr, err := svc.GetByUsername(ctx, "AWE")
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("An0ther!Pass"))

	assert.Equal(t, user.ErrNotFound, errors.Cause(svc.ResetPassword(ctx, "ghost", "x")))
}
