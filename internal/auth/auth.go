package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/Keoroanthony/go-food-delivery/configs"
	"github.com/Keoroanthony/go-food-delivery/internal/models"
	"github.com/Keoroanthony/go-food-delivery/internal/orders"
)

const (
	SessionName = "gosess"
	SessionKey  = "user_id"

	stateKey = "oidc_state"
	userKey  = "user"
)

type UserStore interface {
	UpsertOIDCUser(ctx context.Context, subject, name, email, phone string) (*models.User, error)
}

// OIDC runs the authorization-code login against the configured provider and
// keeps the logged-in user id in the session.
type OIDC struct {
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
	users        UserStore
	log          *zap.Logger
}

func NewOIDC(ctx context.Context, cfg config.OIDCConfig, users UserStore, log *zap.Logger) (*OIDC, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("OIDC provider init error: %w", err)
	}

	return &OIDC{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email", "phone"},
		},
		users: users,
		log:   log,
	}, nil
}

// GET /auth/login
func (a *OIDC) Login(c *gin.Context) {
	state := uuid.NewString()
	sess := sessions.Default(c)
	sess.Set(stateKey, state)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save session"})
		return
	}
	c.Redirect(http.StatusFound, a.oauth2Config.AuthCodeURL(state))
}

// GET /auth/callback
func (a *OIDC) Callback(c *gin.Context) {
	sess := sessions.Default(c)
	expected, _ := sess.Get(stateKey).(string)
	if expected == "" || c.Query("state") != expected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}
	sess.Delete(stateKey)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code missing"})
		return
	}

	ctx := c.Request.Context()
	oauth2Token, err := a.oauth2Config.Exchange(ctx, code)
	if err != nil {
		a.log.Warn("token exchange failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "token exchange failed"})
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no id_token in token response"})
		return
	}

	idToken, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token verification failed"})
		return
	}

	var claims struct {
		Sub   string `json:"sub"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone_number"`
	}
	if err := idToken.Claims(&claims); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "claims parse error"})
		return
	}

	user, err := a.users.UpsertOIDCUser(ctx, claims.Sub, claims.Name, claims.Email, claims.Phone)
	if err != nil {
		a.log.Error("user upsert failed", zap.String("subject", claims.Sub), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	sess.Set(SessionKey, user.ID.String())
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged in", "user_id": user.ID, "role": user.Role})
}

// RequireAuth ensures a user is logged in and puts the *models.User on the context.
func RequireAuth(users orders.UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		raw, _ := sess.Get(SessionKey).(string)
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		user, err := users.FindUser(c.Request.Context(), id)
		if errors.Is(err, orders.ErrUserNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the user RequireAuth stored on the context.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}
