package client

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iidmage/backoffice/internal/types/client"
)

var (
	ErrNotFound     = errors.New("client introuvable")
	ErrNameRequired = errors.New("le nom du client est obligatoire")
	ErrHasCommandes = errors.New("Ce client est lié à des commandes et ne peut pas être supprimé.")
)

type Service struct {
	repo ClientRepository
}

func NewService(repo ClientRepository) *Service {
	return &Service{repo: repo}
}

type Input struct {
	Name     string
	Email    *string
	Phone    *string
	Address  *string
	Notes    *string
	Favorite bool
}

func normalize(in Input) (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, ErrNameRequired
	}
	if in.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*in.Email))
		in.Email = &e
	}
	return in, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*client.Client, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}
	c := &client.Client{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Address:  in.Address,
		Notes:    in.Notes,
		Favorite: in.Favorite,
	}
	if err := s.repo.CreateClient(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*client.Client, error) {
	c, err := s.repo.GetClient(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (s *Service) List(ctx context.Context) ([]client.Client, error) {
	return s.repo.ListClients(ctx)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*client.Client, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in, err = normalize(in)
	if err != nil {
		return nil, err
	}
	c.Name = in.Name
	c.Email = in.Email
	c.Phone = in.Phone
	c.Address = in.Address
	c.Notes = in.Notes
	c.Favorite = in.Favorite
	if err := s.repo.UpdateClient(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	n, err := s.repo.CountCommandesByClient(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrHasCommandes
	}
	err = s.repo.DeleteClient(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
