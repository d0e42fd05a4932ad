package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/budgetapp/internal/apperr"
)

const (
	msgEmailTaken        = "Email has already been taken"
	msgInvalidCredential = "Invalid email or password"

	maxPasswordBytes = 72
)

var emailPattern = regexp.MustCompile(`\S+@\S+`)

// fieldMessages maps a failing field and validator tag to the message shown to the user.
var fieldMessages = map[string]map[string]string{
	"Email": {
		"required":    "Email can't be blank",
		"loose_email": "Email is invalid",
	},
	"Password": {
		"required":   "Password can't be blank",
		"min":        "Password is too short (minimum is 6 characters)",
		"bcrypt_len": "Password is too long (maximum is 72 bytes)",
	},
	"PasswordConfirmation": {
		"eqfield": "Password confirmation doesn't match Password",
	},
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

type Service struct {
	repo     Repository
	validate *validator.Validate
	cost     int
}

func NewService(repo Repository) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())

	mustRegister(v, "loose_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	// bcrypt limits passwords to 72 bytes.
	mustRegister(v, "bcrypt_len", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})

	return &Service{repo: repo, validate: v, cost: bcrypt.DefaultCost}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registering %s validation: %v", tag, err))
	}
}

type RegisterParams struct {
	Email                string `validate:"required,loose_email"`
	Password             string `validate:"required,min=6,bcrypt_len"`
	PasswordConfirmation string `validate:"eqfield=Password"`
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))

	if err := s.check(params); err != nil {
		return nil, err
	}

	_, err := s.repo.GetUserByEmail(ctx, params.Email)

	switch {
	case err == nil:
		return nil, apperr.Validation(msgEmailTaken)
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("looking up email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{Email: params.Email, PasswordHash: string(hash)}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, apperr.Validation(msgEmailTaken)
		}

		return nil, fmt.Errorf("creating user: %w", err)
	}

	return u, nil
}

func (s *Service) check(params RegisterParams) error {
	err := s.validate.Struct(params)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating registration: %w", err)
	}

	var c apperr.Collector

	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()][fe.Tag()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}

		c.Add(msg)
	}

	return c.Err()
}

// Authenticate returns the user whose credentials match. Unknown emails and wrong
// passwords fail with the same message.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.New(apperr.KindUnauthorized, msgInvalidCredential)
		}

		return nil, fmt.Errorf("looking up email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.New(apperr.KindUnauthorized, msgInvalidCredential)
	}

	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	if id == uuid.Nil {
		return nil, apperr.Unauthorized()
	}

	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.Unauthorized()
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	return u, nil
}
