package usecases

import (
	"errors"
	"fmt"
	"time"

	"asp-server/entities"
	"asp-server/repositories"
	"asp-server/services"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthUseCase is the only component that touches password hashes.
type AuthUseCase struct {
	Users   repositories.UserRepository
	Tokens  *services.TokenService
	Revoked services.TokenRevoker
}

func NewAuthUseCase(users repositories.UserRepository, tokens *services.TokenService, revoked services.TokenRevoker) *AuthUseCase {
	return &AuthUseCase{
		Users:   users,
		Tokens:  tokens,
		Revoked: revoked,
	}
}

// Register creates a user with a bcrypt-hashed password. The plaintext
// never leaves this function.
func (uc *AuthUseCase) Register(fullName, username, email, password, phoneNumber string) (*entities.User, error) {
	if fullName == "" || username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: fullname, username, email and password are required", ErrValidation)
	}

	usernameTaken, emailTaken, err := uc.Users.UsernameOrEmailTaken(username, email)
	if err != nil {
		return nil, err
	}
	if usernameTaken {
		return nil, fmt.Errorf("%w: username", ErrConflict)
	}
	if emailTaken {
		return nil, fmt.Errorf("%w: email", ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		FullName:     fullName,
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		PhoneNumber:  phoneNumber,
	}
	if err := uc.Users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and issues a bearer token.
func (uc *AuthUseCase) Login(username, password string) (*entities.User, string, error) {
	if username == "" || password == "" {
		return nil, "", fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := uc.Users.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := uc.Tokens.Generate(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout revokes the presented token until its natural expiry.
func (uc *AuthUseCase) Logout(claims *services.Claims) error {
	var until time.Time
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return uc.Revoked.Revoke(claims.ID, until)
}

// Profile fetches a user by id.
func (uc *AuthUseCase) Profile(userID string) (*entities.User, error) {
	user, err := uc.Users.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}
