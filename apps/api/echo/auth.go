package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
)

const (
	claimsContextKey = "session"
	tokenAudience    = "darasa-web"
)

// Claims represents the session claims, transmitted as a signed JWT in the session cookie.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64     `json:"oriat,omitempty"`
	Username     string    `json:"username,omitempty"`
	Role         user.Role `json:"role,omitempty"`
}

func (c Claims) UserID() (int, error) {
	id, err := strconv.Atoi(c.Subject)
	if err != nil {
		return 0, errNotAuthenticated
	}
	return id, nil
}

func (c Claims) Actor() (classroom.Actor, error) {
	id, err := c.UserID()
	if err != nil {
		return classroom.Actor{}, err
	}
	if !c.Role.Valid() {
		return classroom.Actor{}, errNotAuthenticated
	}
	return classroom.Actor{ID: id, Role: c.Role}, nil
}

// NewClaims returns the session claims of usr. origIat is kept across refreshes.
func NewClaims(conf *core.Config, usr user.User, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(usr.ID),
			Audience:  tokenAudience,
			ExpiresAt: now.Add(conf.Server.SessionExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Username:     usr.Username,
		Role:         usr.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the session Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

type authenticator struct {
	conf *core.Config
}

// middleware validates the session cookie and stores its Claims in the context.
func (a authenticator) middleware() echo.MiddlewareFunc {
	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    []byte(a.conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    claimsContextKey,
		Claims:        new(Claims),
		TokenLookup:   "cookie:" + a.conf.Server.SessionCookieName,
		ErrorHandler: func(error) error {
			return errNotAuthenticated
		},
	})
}

func (a authenticator) newCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     a.conf.Server.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   !(a.conf.Debug || a.conf.TestMode),
		SameSite: http.SameSiteLaxMode,
	}
}

// login sets a fresh session cookie for usr.
func (a authenticator) login(ctx echo.Context, usr user.User, origIat ...int64) error {
	claims := NewClaims(a.conf, usr, origIat...)
	token, err := GenerateToken(a.conf, claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	ctx.SetCookie(a.newCookie(token, time.Unix(claims.ExpiresAt, 0)))
	return nil
}

func (a authenticator) logout(ctx echo.Context) {
	cookie := a.newCookie("", time.Unix(0, 0))
	cookie.MaxAge = -1
	ctx.SetCookie(cookie)
}

// refresh re-issues the session of usr, as long as the original login is within the refresh window.
func (a authenticator) refresh(ctx echo.Context, usr user.User, claims Claims) error {
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(a.conf.Server.SessionRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return errRefreshExpired
	}
	return a.login(ctx, usr, claims.OrigIssuedAt)
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(claimsContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errNotAuthenticated
}
