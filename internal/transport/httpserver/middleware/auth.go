package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"permit-tracker-go/internal/config"
	userdomain "permit-tracker-go/internal/domain/user"
	"permit-tracker-go/pkg/logger"
)

var ErrInvalidToken = errors.New("invalid token")

type contextKey int

const (
	userIDKey contextKey = iota
	userKey
)

// User is the caller as asserted by the identity provider.
type User struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

// Verifier turns a bearer token into the identity it asserts.
type Verifier interface {
	Verify(ctx context.Context, token string) (User, error)
}

// UserSyncer keeps the users table in step with the identity provider.
type UserSyncer interface {
	Sync(ctx context.Context, identity userdomain.Identity) (*userdomain.User, userdomain.SyncResult, error)
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

type Auth struct {
	verifier Verifier
	users    UserSyncer
	log      logger.Logger
	skipAuth bool
	mockUser User
}

// NewAuth picks the verifier from cfg: a JWKS endpoint first, then a shared
// HMAC secret, then the provider's user-info endpoint.
func NewAuth(ctx context.Context, cfg config.AuthConfig, users UserSyncer, log logger.Logger) (*Auth, error) {
	auth := &Auth{
		users:    users,
		log:      log,
		skipAuth: cfg.SkipAuth,
		mockUser: User{
			ID:        strings.TrimSpace(cfg.MockUserID),
			Email:     strings.TrimSpace(cfg.MockUserEmail),
			Name:      strings.TrimSpace(cfg.MockUserName),
			AvatarURL: strings.TrimSpace(cfg.MockUserAvatar),
		},
	}
	if cfg.SkipAuth {
		log.Warn("auth: verification disabled, every request runs as the mock user", "user_id", auth.mockUser.ID)
		return auth, nil
	}

	switch {
	case cfg.JWKSURL != "":
		verifier, err := NewJWKSVerifier(ctx, cfg.JWKSURL, cfg.JWTIssuer, cfg.JWTLeeway, cfg.Timeout, log)
		if err != nil {
			return nil, err
		}
		auth.verifier = verifier
	case cfg.JWTSecret != "":
		auth.verifier = NewHMACVerifier([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTLeeway)
	case cfg.URL != "":
		auth.verifier = NewRemoteVerifier(cfg.URL, cfg.APIKey, cfg.Timeout)
	default:
		log.Warn("auth: no verifier configured, authenticated routes will fail")
	}
	return auth, nil
}

func NewAuthWithVerifier(verifier Verifier, users UserSyncer, log logger.Logger) *Auth {
	return &Auth{verifier: verifier, users: users, log: log}
}

func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var user User
		if a.skipAuth {
			user = a.mockUser
			if user.ID == "" {
				writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth mock user id not configured")
				return
			}
		} else {
			if a.verifier == nil {
				writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth not configured")
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			verified, err := a.verifier.Verify(r.Context(), token)
			if err != nil || verified.ID == "" {
				a.log.Debug("auth: token rejected", "err", err, "remote_addr", r.RemoteAddr)
				unauthorized(w)
				return
			}
			user = verified
		}

		if !a.sync(r.Context(), user) {
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
			return
		}

		ctx := WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sync reconciles the users row. A failed sync only matters when the row
// still does not exist afterwards.
func (a *Auth) sync(ctx context.Context, user User) bool {
	if a.users == nil {
		return true
	}

	synced, result, err := a.users.Sync(ctx, userdomain.Identity{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	})
	if err == nil {
		UserSyncTotal.WithLabelValues(string(result)).Inc()
		if result == userdomain.SyncCreated {
			a.log.Info("auth: user created", "user_id", user.ID)
		}
		if email := strings.TrimSpace(user.Email); email != "" && (synced.Email == nil || *synced.Email != email) {
			a.log.Warn("auth: email held by another user, not stored", "user_id", user.ID)
		}
		return true
	}

	UserSyncTotal.WithLabelValues("failed").Inc()
	a.log.InternalError("auth: user sync failed", err, "user_id", user.ID)
	if _, err := a.users.GetByID(ctx, user.ID); err != nil {
		a.log.InternalError("auth: user missing after failed sync", err, "user_id", user.ID)
		return false
	}
	return true
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

func WithUser(ctx context.Context, user User) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, userIDKey, user.ID)
}

func UserFromContext(ctx context.Context) (User, bool) {
	value := ctx.Value(userKey)
	user, ok := value.(User)
	if !ok || user.ID == "" {
		return User{}, false
	}
	return user, true
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(userIDKey)
	userID, ok := value.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func stringFromMap(values map[string]interface{}, key string) string {
	if values == nil {
		return ""
	}
	value, ok := values[key]
	if !ok {
		return ""
	}
	parsed, ok := value.(string)
	if !ok {
		return ""
	}
	return parsed
}
