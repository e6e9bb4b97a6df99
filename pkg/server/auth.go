package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/matst80/slask-parts/pkg/common"
	"github.com/matst80/slask-parts/pkg/common/jsoncompat"
	"github.com/matst80/slask-parts/pkg/errx"
	"github.com/matst80/slask-parts/pkg/logx"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	AuthCallback(w http.ResponseWriter, r *http.Request)
	User(w http.ResponseWriter, r *http.Request)
	Middleware(next http.HandlerFunc) http.HandlerFunc
}

const tokenCookieName = "sp-admin"
const stateCookieName = "sp-oauth-state"

type ContextValue string

var ContextRole = ContextValue("role")

func RoleFrom(ctx context.Context) string {
	role, _ := ctx.Value(ContextRole).(string)
	return role
}

func unauthorized(w http.ResponseWriter) {
	common.WriteError(w, errx.ErrUnauthorized)
}

// MockAuth lets every request through, used when no oauth client is configured.
type MockAuth struct{}

func (m *MockAuth) Login(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:  tokenCookieName,
		Value: "mock-token",
		Path:  "/",
	})
	w.WriteHeader(http.StatusOK)
}

func (m *MockAuth) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:   tokenCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	w.WriteHeader(http.StatusOK)
}

func (m *MockAuth) AuthCallback(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "mock-token",
		Path:     "/",
		HttpOnly: true,
	})
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

func (m *MockAuth) User(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte(`{"username":"mock-user","name":"Mock User","role":"admin"}`))
	if err != nil {
		logx.Error().Err(err).Msg("error sending user response")
	}
}

func (m *MockAuth) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextRole, "admin")
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

type GoogleAuth struct {
	serverKey    []byte
	serverApiKey string
	authConfig   *oauth2.Config
	userInfoUrl  string
	adminEmails  []string
}

// NewGoogleAuth gives the admin role to the listed emails, other google accounts can log in
// but not write.
func NewGoogleAuth(clientId, clientSecret, callbackUrl, tokenHash, apiKey string, adminEmails []string) (*GoogleAuth, error) {
	if clientId == "" || clientSecret == "" || callbackUrl == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET or CALLBACK_URL environment variable not set")
	}
	if tokenHash == "" {
		return nil, fmt.Errorf("SLASK_TOKEN_HASH environment variable not set")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("SLASK_API_KEY environment variable not set")
	}
	admins := make([]string, 0, len(adminEmails))
	for _, email := range adminEmails {
		admins = append(admins, strings.ToLower(strings.TrimSpace(email)))
	}
	authConfig := &oauth2.Config{
		ClientID:     clientId,
		ClientSecret: clientSecret,
		RedirectURL:  callbackUrl,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
	return &GoogleAuth{
		authConfig:   authConfig,
		serverKey:    []byte(tokenHash),
		serverApiKey: apiKey,
		userInfoUrl:  "https://www.googleapis.com/oauth2/v2/userinfo",
		adminEmails:  admins,
	}, nil
}

func generateStateOauthCookie() string {
	b := make([]byte, 16)
	_, err := rand.Read(b)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(b)
}

func (a *GoogleAuth) createToken(username, name, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{
			"username": username,
			"name":     name,
			"role":     role,
			"exp":      time.Now().Add(time.Hour * 24).Unix(),
		})
	return token.SignedString(a.serverKey)
}

func (a *GoogleAuth) ParseJwt(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.serverKey, nil
	})
}

func (a *GoogleAuth) claims(r *http.Request) (jwt.MapClaims, error) {
	cookie, err := r.Cookie(tokenCookieName)
	if err != nil || cookie.Value == "" {
		return nil, errx.ErrUnauthorized
	}
	token, err := a.ParseJwt(cookie.Value)
	if err != nil || !token.Valid {
		return nil, errors.Join(errx.ErrUnauthorized, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errx.ErrUnauthorized
	}
	return claims, nil
}

func (a *GoogleAuth) Login(w http.ResponseWriter, r *http.Request) {
	oauthState := generateStateOauthCookie()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    oauthState,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	url := a.authConfig.AuthCodeURL(oauthState, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

type UserData struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Id            string `json:"id"`
	Picture       string `json:"picture"`
}

func (a *GoogleAuth) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:   tokenCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	w.WriteHeader(http.StatusOK)
}

func (a *GoogleAuth) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := "api"
		if r.Header.Get("Authorization") != a.serverApiKey {
			claims, err := a.claims(r)
			if err != nil {
				unauthorized(w)
				return
			}
			role, _ = claims["role"].(string)
			if role != "admin" {
				unauthorized(w)
				return
			}
		}
		ctx := context.WithValue(r.Context(), ContextRole, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (a *GoogleAuth) getUserData(ctx context.Context, token *oauth2.Token) (*UserData, error) {
	resp, err := a.authConfig.Client(ctx, token).Get(a.userInfoUrl)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned %s", resp.Status)
	}
	var userData UserData
	if err = jsoncompat.NewDecoder(resp.Body).Decode(&userData); err != nil {
		return nil, err
	}
	return &userData, nil
}

func (a *GoogleAuth) AuthCallback(w http.ResponseWriter, r *http.Request) {
	state, err := r.Cookie(stateCookieName)
	if err != nil || state.Value == "" || state.Value != r.FormValue("state") {
		unauthorized(w)
		return
	}
	token, err := a.authConfig.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		common.WriteError(w, errx.New(err, http.StatusBadGateway, "token exchange failed"))
		return
	}

	userData, err := a.getUserData(r.Context(), token)
	if err != nil {
		common.WriteError(w, errx.New(err, http.StatusBadGateway, "could not load user"))
		return
	}
	role := "user"
	if userData.VerifiedEmail && slices.Contains(a.adminEmails, strings.ToLower(userData.Email)) {
		role = "admin"
	}
	ownToken, err := a.createToken(userData.Email, userData.Name, role)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    ownToken,
		Path:     "/",
		Expires:  time.Now().Add(time.Hour * 24),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

func (a *GoogleAuth) User(w http.ResponseWriter, r *http.Request) {
	claims, err := a.claims(r)
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = jsoncompat.NewEncoder(w).Encode(claims); err != nil {
		logx.Error().Err(err).Msg("error sending user response")
	}
}
