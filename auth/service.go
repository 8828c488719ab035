package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/mail"
	"strings"
	"time"

	"tripmate/apperrors"
	"tripmate/globals"
	"tripmate/middleware"
	"tripmate/models"
	"tripmate/utils"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const (
	refreshTokenTTL = 7 * 24 * time.Hour
	accessTokenTTL  = 12 * time.Hour
)

type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, userID string) (*models.User, error)
	InsertUser(ctx context.Context, user *models.User) error
	UpdateUserFields(ctx context.Context, userID string, set bson.M) error
}

type Service struct {
	Store Store
}

func NewService(store Store) *Service {
	return &Service{Store: store}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account with the given role. Plaintext passwords never
// leave this function.
func (s *Service) Register(ctx context.Context, input RegisterInput, role string) (*models.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, apperrors.BadRequest("Name, email and password are required")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, apperrors.BadRequest("Invalid email address")
	}
	if len(input.Password) < 6 {
		return nil, apperrors.BadRequest("Password must be at least 6 characters")
	}

	_, err := s.Store.FindUserByEmail(ctx, input.Email)
	if err == nil {
		return nil, apperrors.Conflict("User already exists")
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		UserID:    "u" + utils.GenerateRandomString(10),
		Name:      input.Name,
		Email:     input.Email,
		Password:  string(hashed),
		Role:      role,
		Status:    models.StatusActive,
		Rating:    0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Store.InsertUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type LoginResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	UserID       string `json:"userid"`
	Role         string `json:"role"`
}

// Login authenticates by email against active accounts only. A deactivated
// account fails the same way as a wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, apperrors.BadRequest("Email and password are required")
	}

	user, err := s.Store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.Unauthorized("Invalid email or password")
		}
		return nil, err
	}
	if user.Status != models.StatusActive {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	tokenString, err := generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	err = s.Store.UpdateUserFields(ctx, user.UserID, bson.M{
		"refreshToken":  hashToken(refreshToken),
		"refreshExpiry": time.Now().Add(refreshTokenTTL),
		"lastLogin":     time.Now(),
	})
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:        tokenString,
		RefreshToken: refreshToken,
		UserID:       user.UserID,
		Role:         user.Role,
	}, nil
}

// Refresh rotates the refresh token: the presented token must hash to the
// stored value and be unexpired, and is invalid after this call.
func (s *Service) Refresh(ctx context.Context, userID, refreshToken string) (*LoginResult, error) {
	if userID == "" || refreshToken == "" {
		return nil, apperrors.BadRequest("User id and refresh token are required")
	}

	user, err := s.Store.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.Unauthorized("Invalid refresh token")
		}
		return nil, err
	}
	if user.Status != models.StatusActive {
		return nil, apperrors.Unauthorized("Invalid refresh token")
	}
	if user.RefreshToken == "" || user.RefreshToken != hashToken(refreshToken) {
		return nil, apperrors.Unauthorized("Invalid refresh token")
	}
	if time.Now().After(user.RefreshExpiry) {
		return nil, apperrors.Unauthorized("Refresh token expired")
	}

	tokenString, err := generateAccessToken(user)
	if err != nil {
		return nil, err
	}
	newRefresh, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	err = s.Store.UpdateUserFields(ctx, user.UserID, bson.M{
		"refreshToken":  hashToken(newRefresh),
		"refreshExpiry": time.Now().Add(refreshTokenTTL),
	})
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:        tokenString,
		RefreshToken: newRefresh,
		UserID:       user.UserID,
		Role:         user.Role,
	}, nil
}

// Logout drops the stored refresh token so it cannot be replayed.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.Store.UpdateUserFields(ctx, userID, bson.M{
		"refreshToken":  "",
		"refreshExpiry": time.Time{},
	})
}

func generateAccessToken(user *models.User) (string, error) {
	claims := &middleware.Claims{
		UserID: user.UserID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        utils.GetUUID(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(globals.JwtSecret())
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
