// Package services implements the application use cases on top of the
// repositories, keeping transport handlers thin.
package services

import (
	"fmt"

	"grant-desk/auth"
	"grant-desk/domain"
	"grant-desk/errors"
	"grant-desk/repositories"
)

type IAuthService interface {
	Register(email, password string) (Token, error)
	Login(email, password string) (Token, error)
}

type Token string

type AuthService struct {
	userRepository repositories.IUserRepository
	tokens         *auth.TokenService
}

func NewAuthService(repo repositories.IUserRepository, tokens *auth.TokenService) IAuthService {
	return &AuthService{userRepository: repo, tokens: tokens}
}

// Register creates an applicant account. Administrator accounts are
// provisioned out of band, never through the public endpoint.
func (s *AuthService) Register(email, password string) (Token, error) {
	valReq := auth.RegisterRequest{
		Email:    email,
		Password: password,
	}

	// Validate business rules before any expensive cryptographic work.
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// Hashing happens in the service layer to keep the repository
	// unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	userID, err := s.userRepository.CreateUser(email, hashedPassword, domain.RoleUser)
	if err != nil {
		return "", err // Propagates ErrUserAlreadyExists if email is taken
	}

	token, err := s.tokens.Generate(userID, domain.RoleUser)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}

func (s *AuthService) Login(email, password string) (Token, error) {
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}
