package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/tests"
)

func Test_userApi_register(t *testing.T) {
	resetDB()
	testutil.CreateUser(t, usrRepo, "taken", "Str0ng!Pass", user.RoleStudent, "")

	type input struct {
		Username string `json:"username,omitempty"`
		Password string `json:"password,omitempty"`
		Role     string `json:"role,omitempty"`
		Email    string `json:"email,omitempty"`
	}
	reqMsg := "this field is required"

	tests := []httpTest{
		{
			name: "required fields", body: marshalObj(t, input{}), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"username": reqMsg, "password": reqMsg}),
		},
		{
			name: "weak password", body: marshalObj(t, input{Username: "awe", Password: "password1"}), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{
				"password": "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character",
			}),
		},
		{
			name: "unknown role", body: marshalObj(t, input{Username: "awe", Password: "Str0ng!Pass", Role: "admin"}), wantCode: http.StatusBadRequest,
		},
		{
			name: "username taken", body: marshalObj(t, input{Username: "TAKEN", Password: "Str0ng!Pass"}), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"username": user.ErrUsernameExists.Error()}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/api/register"
	}
	runTests(t, tests)

	t.Run("registered & logged in", func(t *testing.T) {
		body := marshalObj(t, input{Username: " Awe ", Password: "Str0ng!Pass", Role: "teacher", Email: "awe@test.cd"})
		req, rec := newRequest(http.MethodPost, "/api/register", body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var usr user.User
		unmarshal(t, rec, &usr)
		assert.NotZero(t, usr.ID)
		assert.Equal(t, "awe", usr.Username)
		assert.Equal(t, user.RoleTeacher, usr.Role)
		assert.Equal(t, "awe@test.cd", usr.Email.String)
		assert.NotContains(t, rec.Body.String(), "password")

		cookie := sessionCookie(rec)
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)
		assert.NotEmpty(t, cookie.Value)
	})
}

func Test_userApi_login(t *testing.T) {
	resetDB()
	student := testutil.CreateUser(t, usrRepo, "hero", "Str0ng!Pass", user.RoleStudent, "hero@test.cd")

	type input struct {
		Username string `json:"username,omitempty"`
		Password string `json:"password,omitempty"`
	}
	invalidCreds := marshalObj(t, httpErr{Error: "invalid username or password"})

	tests := []httpTest{
		{
			name: "required fields", body: marshalObj(t, input{}), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", body: marshalObj(t, input{Username: "lol", Password: "Str0ng!Pass"}),
			wantCode: http.StatusBadRequest, wantData: invalidCreds,
		},
		{
			name: "wrong password", body: marshalObj(t, input{Username: "hero", Password: "Wr0ng!Pass"}),
			wantCode: http.StatusBadRequest, wantData: invalidCreds,
		},
		{
			name: "logged in", body: marshalObj(t, input{Username: "HERO", Password: "Str0ng!Pass"}),
			wantData: marshalObj(t, student),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			if tt.wantCode == 0 {
				tt.wantCode = http.StatusOK
			}
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				assert.NotNil(t, sessionCookie(rec))
			} else {
				assert.Nil(t, sessionCookie(rec))
			}
		})
	}
}

func Test_userApi_logout(t *testing.T) {
	resetDB()

	req, rec := newRequest(http.MethodPost, "/api/logout")
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success": true}`, rec.Body.String())

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.MaxAge < 0)
}

func Test_userApi_retrieve(t *testing.T) {
	resetDB()
	student := testutil.CreateUser(t, usrRepo, "hero", "Str0ng!Pass", user.RoleStudent, "hero@test.cd")
	ghost := user.User{ID: 999, Username: "ghost", Role: user.RoleStudent}

	runTests(t, []httpTest{
		{name: "auth required", method: http.MethodGet, path: "/api/user", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errNotAuthenticated)},
		{name: "bad token", method: http.MethodGet, path: "/api/user", token: "lol", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errNotAuthenticated)},
		{name: "deleted user", method: http.MethodGet, path: "/api/user", token: getToken(t, ghost), wantCode: http.StatusUnauthorized},
		{name: "current user", method: http.MethodGet, path: "/api/user", token: getToken(t, student), wantData: marshalObj(t, student)},
	})
}

func Test_userApi_updateProfile(t *testing.T) {
	resetDB()
	student := testutil.CreateUser(t, usrRepo, "hero", "Str0ng!Pass", user.RoleStudent, "hero@test.cd")
	token := getToken(t, student)

	runTests(t, []httpTest{
		{
			name: "auth required", method: http.MethodPut, path: "/api/user/profile",
			wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errNotAuthenticated),
		},
		{
			name: "invalid email", method: http.MethodPut, path: "/api/user/profile", token: token,
			body: []byte(`{"email": "lol"}`), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
	})

	t.Run("updated; role untouched", func(t *testing.T) {
		body := []byte(`{"fullName": " Hero Doe ", "email": "Doe@Test.cd", "role": "teacher"}`)
		req, rec := newAuthRequest(http.MethodPut, "/api/user/profile", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: student.ID})
		require.NoError(t, err)
		assert.Equal(t, "Hero Doe", usr.FullName.String)
		assert.Equal(t, "doe@test.cd", usr.Email.String)
		assert.Equal(t, user.RoleStudent, usr.Role)
		assert.NoError(t, usr.CheckPassword("Str0ng!Pass"))
		assert.JSONEq(t, string(marshalObj(t, usr)), rec.Body.String())
	})
}

func Test_userApi_refreshSession(t *testing.T) {
	resetDB()
	student := testutil.CreateUser(t, usrRepo, "hero", "Str0ng!Pass", user.RoleStudent, "")

	stale := echoapi.NewClaims(conf, student, time.Now().Add(-2*conf.Server.SessionRefreshExpirationDelta).Unix())
	staleToken, err := echoapi.GenerateToken(conf, stale)
	require.NoError(t, err)

	expired := echoapi.NewClaims(conf, student)
	expired.StandardClaims = jwt.StandardClaims{Subject: expired.Subject, ExpiresAt: time.Now().Add(-time.Minute).Unix()}
	expiredToken, err := echoapi.GenerateToken(conf, expired)
	require.NoError(t, err)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errNotAuthenticated)},
		{name: "session expired", token: expiredToken, wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errNotAuthenticated)},
		{name: "refresh period expired", token: staleToken, wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "refresh has expired"})},
		{name: "session refreshed", token: getToken(t, student), wantData: marshalObj(t, student)},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/session/refresh"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			if tt.wantCode == 0 {
				tt.wantCode = http.StatusOK
			}
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				cookie := sessionCookie(rec)
				require.NotNil(t, cookie)
				assert.NotEqual(t, tt.token, cookie.Value)
			}
		})
	}
}
