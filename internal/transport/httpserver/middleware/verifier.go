package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"permit-tracker-go/pkg/logger"
)

var (
	hmacMethods       = []string{"HS256", "HS384", "HS512"}
	asymmetricMethods = []string{"RS256", "RS384", "RS512", "PS256", "PS384", "PS512", "ES256", "ES384", "ES512", "EdDSA"}
)

// identityClaims covers the claim names common identity providers put the
// profile under.
type identityClaims struct {
	Email        string                 `json:"email"`
	Name         string                 `json:"name"`
	Picture      string                 `json:"picture"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

func (c identityClaims) user() User {
	return User{
		ID:    c.Subject,
		Email: c.Email,
		Name: firstNonEmpty(c.Name,
			stringFromMap(c.UserMetadata, "name"),
			stringFromMap(c.UserMetadata, "full_name")),
		AvatarURL: firstNonEmpty(c.Picture, stringFromMap(c.UserMetadata, "avatar_url")),
	}
}

type jwtVerifier struct {
	keyfunc func(ctx context.Context) jwt.Keyfunc
	options []jwt.ParserOption
}

func newJWTVerifier(keyfunc func(ctx context.Context) jwt.Keyfunc, methods []string, issuer string, leeway time.Duration) *jwtVerifier {
	options := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	}
	if issuer != "" {
		options = append(options, jwt.WithIssuer(issuer))
	}
	return &jwtVerifier{keyfunc: keyfunc, options: options}
}

// NewHMACVerifier checks tokens signed with a shared secret.
func NewHMACVerifier(secret []byte, issuer string, leeway time.Duration) Verifier {
	keyfunc := func(context.Context) jwt.Keyfunc {
		return func(*jwt.Token) (interface{}, error) { return secret, nil }
	}
	return newJWTVerifier(keyfunc, hmacMethods, issuer, leeway)
}

// NewKeyfuncVerifier checks tokens against a key set, e.g. one built with
// keyfunc.NewJWKSetJSON.
func NewKeyfuncVerifier(kf keyfunc.Keyfunc, issuer string, leeway time.Duration) Verifier {
	return newJWTVerifier(kf.KeyfuncCtx, asymmetricMethods, issuer, leeway)
}

// NewJWKSVerifier fetches and periodically refreshes the provider's JWKS.
// Startup does not fail when the endpoint is briefly unreachable.
func NewJWKSVerifier(ctx context.Context, jwksURL, issuer string, leeway, timeout time.Duration, log logger.Logger) (Verifier, error) {
	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		Client:                    &http.Client{Timeout: timeout},
		Ctx:                       ctx,
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           time.Hour,
		RefreshErrorHandler: func(_ context.Context, err error) {
			log.Error("auth: jwks refresh failed", "err", err, "url", jwksURL)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("jwks storage: %w", err)
	}

	kf, err := keyfunc.New(keyfunc.Options{Ctx: ctx, Storage: storage})
	if err != nil {
		return nil, fmt.Errorf("jwks keyfunc: %w", err)
	}
	return NewKeyfuncVerifier(kf, issuer, leeway), nil
}

func (v *jwtVerifier) Verify(ctx context.Context, token string) (User, error) {
	var claims identityClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, v.keyfunc(ctx), v.options...)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return User{}, ErrInvalidToken
	}
	return claims.user(), nil
}

// remoteVerifier asks the identity provider's user-info endpoint who the
// token belongs to.
type remoteVerifier struct {
	url    string
	apiKey string
	client *http.Client
}

type userInfoResponse struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	Sub          string                 `json:"sub"`
	Name         string                 `json:"name"`
	Picture      string                 `json:"picture"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	User         struct {
		ID  string `json:"id"`
		Sub string `json:"sub"`
	} `json:"user"`
}

func NewRemoteVerifier(url, apiKey string, timeout time.Duration) Verifier {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &remoteVerifier{
		url:    strings.TrimRight(url, "/"),
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

func (v *remoteVerifier) Verify(ctx context.Context, token string) (User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.url, nil)
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if v.apiKey != "" {
		req.Header.Set("apikey", v.apiKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return User{}, fmt.Errorf("user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return User{}, fmt.Errorf("%w: user info returned %d", ErrInvalidToken, resp.StatusCode)
	}

	var payload userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return User{}, fmt.Errorf("%w: decode user info: %v", ErrInvalidToken, err)
	}

	userID := firstNonEmpty(payload.ID, payload.Sub, payload.User.ID, payload.User.Sub)
	if userID == "" {
		return User{}, ErrInvalidToken
	}
	return User{
		ID:    userID,
		Email: payload.Email,
		Name: firstNonEmpty(payload.Name,
			stringFromMap(payload.UserMetadata, "name"),
			stringFromMap(payload.UserMetadata, "full_name")),
		AvatarURL: firstNonEmpty(payload.Picture, stringFromMap(payload.UserMetadata, "avatar_url")),
	}, nil
}
