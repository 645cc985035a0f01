package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Adel-MESRATI/Nexus-AI/internal/infra"
)

type TokenClaims struct {
	Sub      string `json:"sub"`
	Exp      int64  `json:"exp"`
	Iat      int64  `json:"iat,omitempty"`
	Issuer   string `json:"iss,omitempty"`
	Audience string `json:"aud,omitempty"`
}

type userKey string

const (
	userIDKey userKey = "user_id"
)

func SignJWT(secret string, claims TokenClaims) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is required")
	}
	header := map[string]string{"alg": "HS256", "typ": "JWT"}
	headerJSON, _ := json.Marshal(header)
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	headerEnc := base64.RawURLEncoding.EncodeToString(headerJSON)
	payloadEnc := base64.RawURLEncoding.EncodeToString(payloadJSON)
	data := headerEnc + "." + payloadEnc
	sig := hmacSign(secret, data)
	return data + "." + sig, nil
}

func hmacSign(secret, data string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func VerifyJWT(secret, token string) (*TokenClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, errors.New("invalid token")
	}
	expected := hmacSign(secret, parts[0]+"."+parts[1])
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return nil, errors.New("invalid signature")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, err
	}
	var claims TokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, err
	}
	if claims.Exp != 0 && time.Now().Unix() > claims.Exp {
		return nil, errors.New("token expired")
	}
	if strings.TrimSpace(claims.Sub) == "" {
		return nil, errors.New("token has no subject")
	}
	return &claims, nil
}

// SessionLookup resolves an opaque session id to a user id.
type SessionLookup interface {
	Lookup(ctx context.Context, id string) (string, error)
}

// TokenVerifier checks a session token issued by the hosted identity
// provider and returns its subject.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// IdentityOptions configures Authenticate.
type IdentityOptions struct {
	Secret     string
	CookieName string
	// Sessions is optional; without it only signed tokens are accepted.
	Sessions SessionLookup
	// Provider is optional; it verifies RS256 tokens from the identity
	// provider when the local secret does not match.
	Provider TokenVerifier
	Logger   *infra.Logger
}

// Authenticate attaches the caller's user id to the request context when a
// valid bearer token or session cookie is present. It never rejects a
// request; handlers decide what an anonymous caller may do.
func Authenticate(opts IdentityOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := resolveIdentity(r, opts, logger)
			if userID != "" {
				r = r.WithContext(ContextWithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolveIdentity(r *http.Request, opts IdentityOptions, logger *infra.Logger) string {
	ctx := r.Context()
	if token := bearerToken(r.Header.Get("Authorization")); token != "" {
		if looksLikeJWT(token) {
			userID, err := verifyToken(ctx, opts, token)
			if err == nil {
				return userID
			}
			logger.Debug().Err(err).Str("source", "bearer").Msg("identity rejected")
		} else if userID := lookupSession(ctx, opts, logger, token); userID != "" {
			return userID
		}
	}
	if opts.CookieName == "" {
		return ""
	}
	cookie, err := r.Cookie(opts.CookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return ""
	}
	value := strings.TrimSpace(cookie.Value)
	if looksLikeJWT(value) {
		if userID, err := verifyToken(ctx, opts, value); err == nil {
			return userID
		}
	}
	return lookupSession(ctx, opts, logger, value)
}

// lookupSession resolves an opaque session id. Bearer and cookie callers
// share it so a session id works in either position.
func lookupSession(ctx context.Context, opts IdentityOptions, logger *infra.Logger, id string) string {
	if opts.Sessions == nil {
		return ""
	}
	userID, err := opts.Sessions.Lookup(ctx, id)
	if err != nil {
		logger.Debug().Err(err).Str("source", "session").Msg("identity rejected")
		return ""
	}
	return userID
}

func looksLikeJWT(value string) bool {
	return strings.Count(value, ".") == 2
}

// verifyToken accepts locally signed HS256 tokens first, then tokens from
// the identity provider.
func verifyToken(ctx context.Context, opts IdentityOptions, token string) (string, error) {
	claims, err := VerifyJWT(opts.Secret, token)
	if err == nil {
		return claims.Sub, nil
	}
	if opts.Provider == nil {
		return "", err
	}
	return opts.Provider.Verify(ctx, token)
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	if strings.TrimSpace(userID) == "" {
		return ctx
	}
	return context.WithValue(ctx, userIDKey, userID)
}
