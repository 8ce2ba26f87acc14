package client

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/iidmage/backoffice/internal/types/client"
)

type stubClientRepo struct {
	clients       map[string]*client.Client
	commandeCount int
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{clients: make(map[string]*client.Client)}
}

func (r *stubClientRepo) CreateClient(ctx context.Context, c *client.Client) error {
	r.clients[c.ID] = c
	return nil
}

func (r *stubClientRepo) GetClient(ctx context.Context, id string) (*client.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func (r *stubClientRepo) ListClients(ctx context.Context) ([]client.Client, error) {
	out := make([]client.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubClientRepo) UpdateClient(ctx context.Context, c *client.Client) error {
	r.clients[c.ID] = c
	return nil
}

func (r *stubClientRepo) DeleteClient(ctx context.Context, id string) error {
	if _, ok := r.clients[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.clients, id)
	return nil
}

func (r *stubClientRepo) CountCommandesByClient(ctx context.Context, clientID string) (int, error) {
	return r.commandeCount, nil
}

func TestClientService(t *testing.T) {
	repo := newStubClientRepo()
	svc := NewService(repo)

	t.Run("create normalizes email", func(t *testing.T) {
		email := " Contact@Dupont.FR "
		c, err := svc.Create(context.Background(), Input{Name: "Dupont SARL", Email: &email})
		if err != nil {
			t.Fatal(err)
		}
		if c.Email == nil || *c.Email != "contact@dupont.fr" {
			t.Errorf("expected lowercased trimmed email, got %v", c.Email)
		}
	})

	t.Run("name required", func(t *testing.T) {
		_, err := svc.Create(context.Background(), Input{Name: "   "})
		if !errors.Is(err, ErrNameRequired) {
			t.Errorf("expected ErrNameRequired, got %v", err)
		}
	})

	t.Run("delete refused while commandes reference the client", func(t *testing.T) {
		c, err := svc.Create(context.Background(), Input{Name: "Martin"})
		if err != nil {
			t.Fatal(err)
		}
		repo.commandeCount = 3
		if err := svc.Delete(context.Background(), c.ID); !errors.Is(err, ErrHasCommandes) {
			t.Errorf("expected ErrHasCommandes, got %v", err)
		}

		repo.commandeCount = 0
		if err := svc.Delete(context.Background(), c.ID); err != nil {
			t.Errorf("expected delete to succeed, got %v", err)
		}
	})

	t.Run("unknown client", func(t *testing.T) {
		if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
