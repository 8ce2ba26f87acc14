package poseur

import (
	"context"

	"github.com/iidmage/backoffice/internal/types/poseur"
)

type PoseurRepository interface {
	CreatePoseur(ctx context.Context, p *poseur.Poseur) error
	GetPoseur(ctx context.Context, id string) (*poseur.Poseur, error)
	ListPoseurs(ctx context.Context) ([]poseur.Poseur, error)
	UpdatePoseur(ctx context.Context, p *poseur.Poseur) error
	DeletePoseur(ctx context.Context, id string) error
	CountCommandesByPoseur(ctx context.Context, poseurID string) (int, error)
}
