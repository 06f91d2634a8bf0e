package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pathfinder-hq/pathfinder-backend/internal/apierr"
	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/repos"
	"github.com/pathfinder-hq/pathfinder-backend/internal/requestdata"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
	"github.com/pathfinder-hq/pathfinder-backend/internal/utils"
)

type RegisterRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	TargetDesignation string `json:"target_designation"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthTokens struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type AuthResult struct {
	User   *types.User `json:"user"`
	Tokens AuthTokens  `json:"tokens"`
}

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	// SetContextFromToken validates the bearer token and returns a context
	// carrying the authenticated request data.
	SetContextFromToken(ctx context.Context, accessToken string) (context.Context, error)
}

type authService struct {
	log        *logger.Logger
	db         *gorm.DB
	users      repos.UserRepo
	tokens     repos.UserTokenRepo
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(log *logger.Logger, db *gorm.DB, users repos.UserRepo, tokens repos.UserTokenRepo) (AuthService, error) {
	serviceLog := log.With("service", "AuthService")
	secret := utils.GetEnv("JWT_SECRET", "", log)
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	accessTTLMin := utils.GetEnvAsInt("JWT_ACCESS_TTL_MINUTES", 30, log)
	refreshTTLHours := utils.GetEnvAsInt("JWT_REFRESH_TTL_HOURS", 24*14, log)

	return &authService{
		log:        serviceLog,
		db:         db,
		users:      users,
		tokens:     tokens,
		jwtSecret:  []byte(secret),
		accessTTL:  time.Duration(accessTTLMin) * time.Minute,
		refreshTTL: time.Duration(refreshTTLHours) * time.Hour,
	}, nil
}

func (as *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	if req == nil {
		return nil, fmt.Errorf("empty register request: %w", apierr.ErrValidation)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email: %w", apierr.ErrValidation)
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters: %w", apierr.ErrValidation)
	}

	exists, err := as.users.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("email already registered: %w", apierr.ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var result *AuthResult
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := as.users.Create(ctx, tx, &types.User{
			Email:             email,
			Password:          string(hashed),
			FirstName:         strings.TrimSpace(req.FirstName),
			LastName:          strings.TrimSpace(req.LastName),
			TargetDesignation: strings.TrimSpace(req.TargetDesignation),
		})
		if err != nil {
			return err
		}
		tokens, err := as.issueTokens(ctx, tx, user)
		if err != nil {
			return err
		}
		result = &AuthResult{User: user, Tokens: tokens}
		return nil
	})
	if err != nil {
		return nil, err
	}

	as.log.Info("Registered user", "user_id", result.User.ID)
	return result, nil
}

func (as *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	if req == nil {
		return nil, fmt.Errorf("empty login request: %w", apierr.ErrValidation)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := as.users.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("invalid credentials: %w", apierr.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apierr.ErrUnauthorized)
	}

	tokens, err := as.issueTokens(ctx, nil, user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	stored, err := as.tokens.GetByRefreshToken(ctx, nil, refreshToken)
	if err != nil {
		return nil, err
	}
	if stored == nil || time.Now().After(stored.RefreshExpiresAt) {
		return nil, fmt.Errorf("refresh token is invalid or expired: %w", apierr.ErrUnauthorized)
	}
	user, err := as.users.GetByID(ctx, nil, stored.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user no longer exists: %w", apierr.ErrUnauthorized)
	}

	var result *AuthResult
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Refresh rotates: the old token pair is retired in the same
		// transaction that issues the new one.
		if err := as.tokens.SoftDeleteByIDs(ctx, tx, []uuid.UUID{stored.ID}); err != nil {
			return err
		}
		tokens, err := as.issueTokens(ctx, tx, user)
		if err != nil {
			return err
		}
		result = &AuthResult{User: user, Tokens: tokens}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (as *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	return as.tokens.SoftDeleteByUserID(ctx, nil, userID)
}

func (as *authService) SetContextFromToken(ctx context.Context, accessToken string) (context.Context, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(accessToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return as.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return ctx, fmt.Errorf("invalid access token: %w", apierr.ErrUnauthorized)
	}

	stored, err := as.tokens.GetByAccessToken(ctx, nil, accessToken)
	if err != nil {
		return ctx, err
	}
	if stored == nil || time.Now().After(stored.AccessExpiresAt) {
		return ctx, fmt.Errorf("access token is revoked or expired: %w", apierr.ErrUnauthorized)
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil || userID != stored.UserID {
		return ctx, fmt.Errorf("token subject mismatch: %w", apierr.ErrUnauthorized)
	}
	email, _ := claims["email"].(string)

	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		UserID: userID,
		Email:  email,
	}), nil
}

func (as *authService) issueTokens(ctx context.Context, tx *gorm.DB, user *types.User) (AuthTokens, error) {
	now := time.Now()
	accessExpires := now.Add(as.accessTTL)
	refreshExpires := now.Add(as.refreshTTL)

	accessToken, err := as.signJWT(user, now, accessExpires, "access")
	if err != nil {
		return AuthTokens{}, err
	}
	refreshToken, err := as.signJWT(user, now, refreshExpires, "refresh")
	if err != nil {
		return AuthTokens{}, err
	}

	if _, err := as.tokens.Create(ctx, tx, &types.UserToken{
		UserID:           user.ID,
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExpires,
		RefreshExpiresAt: refreshExpires,
	}); err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExpires,
		RefreshExpiresAt: refreshExpires,
	}, nil
}

func (as *authService) signJWT(user *types.User, issuedAt, expiresAt time.Time, tokenUse string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"use":   tokenUse,
		"iat":   issuedAt.Unix(),
		"exp":   expiresAt.Unix(),
		"jti":   uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(as.jwtSecret)
}
