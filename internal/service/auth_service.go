package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/mindsetu-api/internal/models"
	appErrors "github.com/noah-isme/mindsetu-api/pkg/errors"
)

const minPasswordLength = 6

type userRepository interface {
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, mutate func(users []models.User) ([]models.User, error)) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AuthService implements the onboarding chain: SuperAdmins self-register,
// Teachers and Students are pre-registered by a higher role and claim their
// account through signup. All checks run inside the repository's serialized
// mutation so uniqueness invariants hold under concurrent callers.
type AuthService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo userRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, config: config, now: time.Now}
}

// ListUsers returns every known user with credentials stripped.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	sanitized := make([]models.User, len(users))
	for i, user := range users {
		sanitized[i] = user.Sanitized()
	}
	return sanitized, nil
}

// Signup registers a new SuperAdmin or activates a pre-registered Teacher or
// Student record. Returns the resulting record with credentials stripped and
// a human-readable confirmation message.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid signup payload")
	}
	if len(req.Password) < minPasswordLength {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "Password must be at least 6 characters long.")
	}
	if req.Password != req.ConfirmPassword {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "Passwords do not match.")
	}
	if strings.TrimSpace(req.InstituteName) == "" {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "Institute name is required.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	institute := strings.ToLower(req.InstituteName)

	var (
		result  *models.User
		message string
	)

	mutation := func(users []models.User) ([]models.User, error) {
		switch req.UserType {
		case models.UserTypeSuperAdmin:
			return s.signupSuperAdmin(users, req, institute, string(hash), &result, &message)
		case models.UserTypeTeacher:
			return s.claimAccount(users, req, institute, string(hash), models.UserTypeTeacher, &result, &message)
		case models.UserTypeStudent:
			return s.claimAccount(users, req, institute, string(hash), models.UserTypeStudent, &result, &message)
		default:
			return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid user type for signup.")
		}
	}

	if err := s.repo.Update(ctx, mutation); err != nil {
		return nil, "", err
	}

	s.logger.Info("signup completed",
		zap.String("user_id", result.ID),
		zap.String("user_type", string(result.UserType)),
		zap.String("institute", result.InstituteName),
	)
	sanitized := result.Sanitized()
	return &sanitized, message, nil
}

func (s *AuthService) signupSuperAdmin(users []models.User, req models.SignupRequest, institute, hash string, result **models.User, message *string) ([]models.User, error) {
	for _, user := range users {
		if user.UserType == models.UserTypeSuperAdmin && user.InstituteName == institute && user.IsActivated {
			return nil, appErrors.Clone(appErrors.ErrConflict,
				fmt.Sprintf("A SuperAdmin for institute '%s' already exists.", req.InstituteName))
		}
	}
	for _, user := range users {
		if user.Email == req.Email {
			return nil, appErrors.Clone(appErrors.ErrConflict, "This email is already registered.")
		}
	}

	admin := models.User{
		ID:            uuid.NewString(),
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		PasswordHash:  hash,
		UserType:      models.UserTypeSuperAdmin,
		InstituteName: institute,
		IsActivated:   true,
		CreatedAt:     s.now().UTC(),
	}
	*result = &admin
	*message = "SuperAdmin account created! You can now log in."
	return append(users, admin), nil
}

// claimAccount activates a pre-registered Teacher or Student record. The
// record is mutated exactly once: credentials and names are set, and the
// account flips to activated.
func (s *AuthService) claimAccount(users []models.User, req models.SignupRequest, institute, hash string, role models.UserType, result **models.User, message *string) ([]models.User, error) {
	if role == models.UserTypeTeacher {
		if !instituteHasActiveRole(users, institute, models.UserTypeSuperAdmin) {
			return nil, appErrors.Clone(appErrors.ErrNotFound,
				fmt.Sprintf("Institute '%s' is not registered. A SuperAdmin must register it first.", req.InstituteName))
		}
	} else {
		if !instituteHasActiveRole(users, institute, models.UserTypeSuperAdmin, models.UserTypeTeacher) {
			return nil, appErrors.Clone(appErrors.ErrNotFound,
				fmt.Sprintf("Institute '%s' is not registered or no active Teacher/SuperAdmin found. Please contact your institute.", req.InstituteName))
		}
	}

	idx := -1
	for i, user := range users {
		if user.Email == req.Email && user.InstituteName == institute && user.UserType == role {
			idx = i
			break
		}
	}
	if idx == -1 {
		if role == models.UserTypeTeacher {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "You have not been pre-registered by a SuperAdmin for this institute.")
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "You have not been pre-registered by a Teacher for this institute.")
	}

	account := users[idx]
	if !account.IsPreRegisteredByAdmin {
		if role == models.UserTypeTeacher {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "This teacher account was not pre-registered.")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "This student account was not pre-registered by a Teacher.")
	}
	if account.IsActivated {
		if role == models.UserTypeTeacher {
			return nil, appErrors.Clone(appErrors.ErrConflict, "This teacher account is already active. Please try logging in.")
		}
		return nil, appErrors.Clone(appErrors.ErrConflict, "This student account is already active. Please try logging in.")
	}

	account.PasswordHash = hash
	account.FirstName = req.FirstName
	account.LastName = req.LastName
	account.IsActivated = true
	users[idx] = account

	*result = &account
	if role == models.UserTypeTeacher {
		*message = "Teacher account activated! You can now log in."
	} else {
		*message = "Student account activated! You can now log in."
	}
	return users, nil
}

// Login authenticates a user within an institute and issues an access token.
// The inactive-account messages distinguish a pre-registered-but-unclaimed
// record from a deactivated one; that distinction is user-facing.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load users")
	}

	institute := strings.ToLower(req.InstituteName)
	var found *models.User
	for i := range users {
		if users[i].Email == req.Email && users[i].InstituteName == institute {
			found = &users[i]
			break
		}
	}
	if found == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Invalid email, institute, or user not found.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid password.")
	}

	if !found.IsActivated {
		if found.IsPreRegisteredByAdmin {
			return nil, appErrors.Clone(appErrors.ErrAccountInactive,
				fmt.Sprintf("Your %s account has been pre-registered. Please complete the signup process to activate it.", found.UserType))
		}
		return nil, appErrors.Clone(appErrors.ErrAccountInactive, "This account is not currently active. Please contact support or your administrator.")
	}

	token, expiresAt, err := s.generateAccessToken(found)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
		IssuedAt:    s.now().UTC(),
		User:        found.Sanitized(),
	}, nil
}

// AddStudent pre-registers an inactive Student in the actor's institute.
// Teachers and SuperAdmins may call it; the duplicate check is scoped to the
// actor's institute.
func (s *AuthService) AddStudent(ctx context.Context, actor models.User, req models.AddUserRequest) (*models.User, string, error) {
	if !actor.IsStaff() {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "Unauthorized: Only Teachers or SuperAdmins can add students.")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	var result *models.User
	mutation := func(users []models.User) ([]models.User, error) {
		for _, user := range users {
			if user.Email == req.Email && user.InstituteName == actor.InstituteName {
				return nil, appErrors.Clone(appErrors.ErrConflict,
					fmt.Sprintf("A user with email %s already exists at %s.", req.Email, actor.InstituteName))
			}
		}
		student := models.User{
			ID:                     uuid.NewString(),
			FirstName:              req.FirstName,
			LastName:               req.LastName,
			Email:                  req.Email,
			UserType:               models.UserTypeStudent,
			InstituteName:          actor.InstituteName,
			IsActivated:            false,
			IsPreRegisteredByAdmin: true,
			CreatedAt:              s.now().UTC(),
		}
		result = &student
		return append(users, student), nil
	}

	if err := s.repo.Update(ctx, mutation); err != nil {
		return nil, "", err
	}
	sanitized := result.Sanitized()
	return &sanitized, fmt.Sprintf("Student %s pre-registered. They can now complete their signup.", result.FirstName), nil
}

// AddTeacher pre-registers an inactive Teacher. Only SuperAdmins may call
// it, and the email must be unused system-wide, not just inside the
// institute. The stricter check relative to AddStudent is intentional.
func (s *AuthService) AddTeacher(ctx context.Context, actor models.User, req models.AddUserRequest) (*models.User, string, error) {
	if actor.UserType != models.UserTypeSuperAdmin {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "Unauthorized: Only SuperAdmins can add teachers.")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	var result *models.User
	mutation := func(users []models.User) ([]models.User, error) {
		for _, user := range users {
			if user.Email == req.Email && user.InstituteName == actor.InstituteName {
				return nil, appErrors.Clone(appErrors.ErrConflict,
					fmt.Sprintf("A user with email %s already exists at %s.", req.Email, actor.InstituteName))
			}
		}
		for _, user := range users {
			if user.Email == req.Email {
				return nil, appErrors.Clone(appErrors.ErrConflict, "This email is already registered in the system.")
			}
		}
		teacher := models.User{
			ID:                     uuid.NewString(),
			FirstName:              req.FirstName,
			LastName:               req.LastName,
			Email:                  req.Email,
			UserType:               models.UserTypeTeacher,
			InstituteName:          actor.InstituteName,
			IsActivated:            false,
			IsPreRegisteredByAdmin: true,
			CreatedAt:              s.now().UTC(),
		}
		result = &teacher
		return append(users, teacher), nil
	}

	if err := s.repo.Update(ctx, mutation); err != nil {
		return nil, "", err
	}
	sanitized := result.Sanitized()
	return &sanitized, fmt.Sprintf("Teacher %s pre-registered. They can now complete their signup.", result.FirstName), nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		UserID:        user.ID,
		UserType:      user.UserType,
		Email:         user.Email,
		InstituteName: user.InstituteName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func instituteHasActiveRole(users []models.User, institute string, roles ...models.UserType) bool {
	for _, user := range users {
		if user.InstituteName != institute || !user.IsActivated {
			continue
		}
		for _, role := range roles {
			if user.UserType == role {
				return true
			}
		}
	}
	return false
}
