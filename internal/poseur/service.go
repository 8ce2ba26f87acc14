package poseur

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iidmage/backoffice/internal/types/poseur"
)

var (
	ErrNotFound     = errors.New("poseur introuvable")
	ErrNameRequired = errors.New("le nom du poseur est obligatoire")
	ErrHasCommandes = errors.New("Ce poseur est lié à des commandes et ne peut pas être supprimé.")
)

type Service struct {
	repo PoseurRepository
}

func NewService(repo PoseurRepository) *Service {
	return &Service{repo: repo}
}

type Input struct {
	Name         string
	Email        *string
	Phone        *string
	Zone         *string
	Availability bool
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

func (s *Service) Create(ctx context.Context, in Input) (*poseur.Poseur, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}
	p := &poseur.Poseur{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Zone:         in.Zone,
		Availability: in.Availability,
	}
	if err := s.repo.CreatePoseur(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*poseur.Poseur, error) {
	p, err := s.repo.GetPoseur(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *Service) List(ctx context.Context) ([]poseur.Poseur, error) {
	return s.repo.ListPoseurs(ctx)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*poseur.Poseur, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in, err = normalize(in)
	if err != nil {
		return nil, err
	}
	p.Name = in.Name
	p.Email = in.Email
	p.Phone = in.Phone
	p.Zone = in.Zone
	p.Availability = in.Availability
	if err := s.repo.UpdatePoseur(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	n, err := s.repo.CountCommandesByPoseur(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrHasCommandes
	}
	err = s.repo.DeletePoseur(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
