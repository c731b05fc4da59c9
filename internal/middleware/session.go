package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CtxSessionIDKey = "session_id" // string

	SessionHeader = "X-Session-ID"
	SessionCookie = "cart_session"
)

// SessionOptions はカートのセッション解決の設定。
type SessionOptions struct {
	JWTSecret    string        // 空ならAuthorizationヘッダは見ない
	CookieTTL    time.Duration // cookieの有効期限
	CookieSecure bool
}

// Session はリクエストごとにカートのセッションキーを決める。
// 優先順: JWTのsub -> X-Session-IDヘッダ -> cookie -> 新規発行
func Session(opts SessionOptions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			//Bearerトークンがあればユーザー単位のカート
			if opts.JWTSecret != "" {
				if authz := req.Header.Get("Authorization"); authz != "" {
					sub, err := subjectFromBearer(authz, opts.JWTSecret)
					if err != nil {
						return c.JSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED"))
					}
					return serve(c, next, "user:"+sub)
				}
			}

			if id := req.Header.Get(SessionHeader); isSessionID(id) {
				return serve(c, next, id)
			}
			if ck, err := req.Cookie(SessionCookie); err == nil && isSessionID(ck.Value) {
				return serve(c, next, ck.Value)
			}

			//無ければ発行してcookieで返す
			id := uuid.NewString()
			ck := &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   opts.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			}
			if opts.CookieTTL > 0 {
				ck.MaxAge = int(opts.CookieTTL / time.Second)
			}
			c.SetCookie(ck)
			return serve(c, next, id)
		}
	}
}

func serve(c echo.Context, next echo.HandlerFunc, sessionID string) error {
	c.Set(CtxSessionIDKey, sessionID)
	c.Response().Header().Set(SessionHeader, sessionID)
	return next(c)
}

// SessionID はSessionミドルウェアが入れた値を取り出す。
func SessionID(c echo.Context) (string, bool) {
	v, ok := c.Get(CtxSessionIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func subjectFromBearer(authz string, secret string) (string, error) {
	claims, err := claimsFromBearer(authz, secret)
	if err != nil {
		return "", err
	}
	return parseSubject(claims["sub"])
}

func claimsFromBearer(authz string, secret string) (jwt.MapClaims, error) {
	//Bearer形式か確認してtokenを抜く
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("not bearer")
	}
	rawToken := strings.TrimSpace(parts[1])
	if rawToken == "" {
		return nil, errors.New("empty token")
	}

	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// subは文字列でも数値でもよい
func parseSubject(v interface{}) (string, error) {
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return "", errors.New("empty sub")
		}
		return t, nil
	case float64:
		if t <= 0 {
			return "", errors.New("invalid sub")
		}
		return strconv.FormatInt(int64(t), 10), nil
	default:
		return "", errors.New("invalid sub")
	}
}

func isSessionID(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(code string) errorResponse {
	return errorResponse{Error: code}
}
