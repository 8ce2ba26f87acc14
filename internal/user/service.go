package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iidmage/backoffice/internal/middleware"
	"github.com/iidmage/backoffice/internal/types/user"
)

var (
	ErrUserExists       = errors.New("un utilisateur avec cet email existe déjà")
	ErrInvalidCreds     = errors.New("identifiants invalides")
	ErrPasswordTooShort = errors.New("le mot de passe doit contenir au moins 6 caractères")
	ErrNameIncomplete   = errors.New("veuillez saisir le nom complet (prénom et nom)")
	ErrInvalidRole      = errors.New("rôle inconnu")
	ErrInvalidEmail     = errors.New("email invalide")
	ErrUserNotFound     = errors.New("utilisateur introuvable")
)

const minPasswordLen = 6

// Mailer рассылает служебные письма, ошибки отправки не фатальны.
type Mailer interface {
	Send(to []string, subject, text, html string) error
}

type Service struct {
	repo       UserRepository
	mailer     Mailer
	adminEmail string
	jwtSecret  []byte
	jwtTTL     time.Duration
	log        *zap.Logger
}

func NewService(repo UserRepository, mailer Mailer, adminEmail string, jwtSecret []byte, jwtTTL time.Duration, log *zap.Logger) *Service {
	if jwtTTL <= 0 {
		jwtTTL = 8 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, mailer: mailer, adminEmail: adminEmail, jwtSecret: jwtSecret, jwtTTL: jwtTTL, log: log}
}

// fullName требует минимум два слова: имя и фамилию.
func fullName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if len(strings.Fields(name)) < 2 {
		return "", ErrNameIncomplete
	}
	return name, nil
}

type CreateInput struct {
	Email    string
	Name     string
	Phone    *string
	Role     user.Role
	Password string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*user.User, error) {
	name, err := fullName(in.Name)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if existing, err := s.repo.FindUserByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &user.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Phone:        in.Phone,
		Role:         in.Role,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (string, *user.User, error) {
	u, err := s.repo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCreds
	}
	now := time.Now().UTC()
	claims := middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: u.ID,
		Role:   u.Role,
		Email:  u.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return signed, u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*user.User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *Service) List(ctx context.Context, page, limit int) ([]user.User, int, int, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 8
	}
	if limit > 50 {
		limit = 50
	}
	users, total, err := s.repo.ListUsers(ctx, (page-1)*limit, limit)
	return users, total, page, limit, err
}

type UpdateInput struct {
	Name     *string
	Email    *string
	Phone    *string
	Role     *user.Role
	Password *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*user.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name, err := fullName(*in.Name)
		if err != nil {
			return nil, err
		}
		u.Name = name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if !strings.Contains(email, "@") {
			return nil, ErrInvalidEmail
		}
		u.Email = email
	}
	if in.Phone != nil {
		u.Phone = in.Phone
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, ErrInvalidRole
		}
		u.Role = *in.Role
	}
	passwordChanged := false
	if in.Password != nil {
		if len(*in.Password) < minPasswordLen {
			return nil, ErrPasswordTooShort
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
		passwordChanged = true
	}
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	if passwordChanged && s.mailer != nil {
		// письмо-уведомление, неуспех не ломает операцию
		go func(email, name string) {
			subject := "Votre mot de passe a été modifié"
			text := fmt.Sprintf("Bonjour %s,\n\nVotre mot de passe IIDMAGE vient d'être modifié. Si vous n'êtes pas à l'origine de ce changement, contactez immédiatement un administrateur.", name)
			if err := s.mailer.Send([]string{email}, subject, text, ""); err != nil {
				s.log.Warn("password change mail failed", zap.Error(err))
			}
		}(u.Email, u.Name)
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.DeleteUser(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	return err
}

// ForgotPassword уведомляет администратора и всегда отвечает успехом,
// чтобы не раскрывать существование адреса.
func (s *Service) ForgotPassword(ctx context.Context, email string) {
	email = strings.ToLower(strings.TrimSpace(email))
	if s.mailer == nil || s.adminEmail == "" {
		return
	}
	go func() {
		subject := "Demande de réinitialisation de mot de passe"
		text := fmt.Sprintf("Une réinitialisation de mot de passe a été demandée pour %s.", email)
		if err := s.mailer.Send([]string{s.adminEmail}, subject, text, ""); err != nil {
			s.log.Warn("forgot password mail failed", zap.Error(err))
		}
	}()
}
