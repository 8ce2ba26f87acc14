package commande

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iidmage/backoffice/internal/retroplanning"
	types "github.com/iidmage/backoffice/internal/types/commande"
)

var (
	ErrNotFound          = errors.New("commande not found")
	ErrClientRequired    = errors.New("clientId is required")
	ErrInvalidKind       = errors.New("invalid milestone kind")
	ErrMilestoneConflict = errors.New("une étape suivante est déjà marquée comme faite, annulez d'abord l'étape la plus avancée")
)

// Scheduler is the notification side of milestone mutations.
type Scheduler interface {
	Recreate(ctx context.Context, commandeID string, dates types.MilestoneDates, actorEmail string) error
	CancelKinds(ctx context.Context, commandeID string, kinds []types.MilestoneKind) error
}

// ChangeNotifier delivers best-effort admin emails on create/update. Calls
// must never fail the primary write; implementations swallow their own errors.
type ChangeNotifier interface {
	CommandeCreated(c *types.Commande, actorEmail string)
	CommandeUpdated(before, after *types.Commande, actorEmail string)
}

type Service struct {
	repo   CommandeRepository
	sched  Scheduler
	notify ChangeNotifier
	log    *zap.Logger
	now    func() time.Time
}

func NewService(repo CommandeRepository, sched Scheduler, notify ChangeNotifier, log *zap.Logger) *Service {
	return &Service{repo: repo, sched: sched, notify: notify, log: log, now: time.Now}
}

// Input carries the mutable fields of a create/update request, already parsed.
type Input struct {
	ClientID       string
	PoseurID       *string
	Product        *string
	PlanningType   types.PlanningType
	DateCommande   *time.Time
	DateSurvey     *time.Time
	DateProduction *time.Time
	DateExpedition *time.Time
	DateLivraison  *time.Time
	DatePose       *time.Time
	LieuPose       *string
	Etat           types.Etat
	Priorite       *string
	Commentaires   *string
}

func (s *Service) Create(ctx context.Context, in Input, actorEmail string) (*types.Commande, error) {
	if in.ClientID == "" {
		return nil, ErrClientRequired
	}
	now := s.now().UTC()
	c := &types.Commande{
		ID:             uuid.NewString(),
		ClientID:       in.ClientID,
		PoseurID:       in.PoseurID,
		Product:        in.Product,
		PlanningType:   normalizePlanning(in.PlanningType),
		DateCommande:   in.DateCommande,
		DateSurvey:     in.DateSurvey,
		DateProduction: in.DateProduction,
		DateExpedition: in.DateExpedition,
		DateLivraison:  in.DateLivraison,
		DatePose:       in.DatePose,
		LieuPose:       in.LieuPose,
		Etat:           in.Etat,
		Priorite:       in.Priorite,
		Commentaires:   in.Commentaires,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if c.Etat == "" {
		c.Etat = types.EtatAPlanifier
	}
	if err := s.repo.CreateCommande(ctx, c); err != nil {
		return nil, fmt.Errorf("create commande: %w", err)
	}

	if err := s.sched.Recreate(ctx, c.ID, c.Dates(), actorEmail); err != nil {
		s.log.Warn("recreate notifications after create", zap.String("commande", c.ID), zap.Error(err))
	}

	if full, err := s.repo.GetCommande(ctx, c.ID); err == nil {
		s.notify.CommandeCreated(full, actorEmail)
	} else {
		s.notify.CommandeCreated(c, actorEmail)
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*types.Commande, error) {
	c, err := s.repo.GetCommande(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (s *Service) List(ctx context.Context) ([]types.Commande, error) {
	return s.repo.ListCommandes(ctx)
}

func (s *Service) Update(ctx context.Context, id string, in Input, actorEmail string) (*types.Commande, error) {
	before, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ClientID == "" {
		return nil, ErrClientRequired
	}

	after := *before
	after.ClientID = in.ClientID
	after.PoseurID = in.PoseurID
	after.Product = in.Product
	after.PlanningType = normalizePlanning(in.PlanningType)
	after.DateCommande = in.DateCommande
	after.DateSurvey = in.DateSurvey
	after.DateProduction = in.DateProduction
	after.DateExpedition = in.DateExpedition
	after.DateLivraison = in.DateLivraison
	after.DatePose = in.DatePose
	after.LieuPose = in.LieuPose
	if in.Etat != "" {
		after.Etat = in.Etat
	}
	after.Priorite = in.Priorite
	after.Commentaires = in.Commentaires

	if err := s.save(ctx, &after, before.UpdatedAt); err != nil {
		return nil, err
	}
	if err := s.sched.Recreate(ctx, id, after.Dates(), actorEmail); err != nil {
		s.log.Warn("recreate notifications after update", zap.String("commande", id), zap.Error(err))
	}
	s.notify.CommandeUpdated(before, &after, actorEmail)
	return &after, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.DeleteCommande(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// GenerateRetroplanning recomputes the backward schedule from the pose date
// and reschedules the reminders.
func (s *Service) GenerateRetroplanning(ctx context.Context, id string, overwrite bool, actorEmail string) (*types.Commande, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	expected := c.UpdatedAt
	if err := retroplanning.Apply(c, overwrite); err != nil {
		return nil, err
	}
	if err := s.save(ctx, c, expected); err != nil {
		return nil, err
	}
	if err := s.sched.Recreate(ctx, id, c.Dates(), actorEmail); err != nil {
		s.log.Warn("recreate notifications after retroplanning", zap.String("commande", id), zap.Error(err))
	}
	return c, nil
}

// SetMilestoneDone marks or unmarks one milestone.
//
// Marking cascades: the milestone and every earlier one missing a timestamp
// get stamped now, and the explicit etat advances to the milestone's target
// state when that is a strictly later rank. Unmarking is rejected while a
// later milestone is done; otherwise the etat is recomputed from the
// remaining timestamps unless a billing state is stored.
func (s *Service) SetMilestoneDone(ctx context.Context, id string, kind types.MilestoneKind, done bool, actorEmail string) (*types.Commande, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !done {
		for _, later := range kind.Later() {
			if c.MilestoneDoneAt(later) != nil {
				return nil, fmt.Errorf("%w (%s)", ErrMilestoneConflict, later.Label())
			}
		}
	}

	expected := c.UpdatedAt
	now := s.now().UTC()

	if done {
		for _, k := range kind.Cascade() {
			if c.MilestoneDoneAt(k) == nil {
				at := now
				c.SetMilestoneDoneAt(k, &at)
			}
		}
		// Never regress; never override a billing state.
		if target := kind.TargetEtat(); target.Rank() > c.Etat.Rank() {
			c.Etat = target
		}
	} else {
		c.SetMilestoneDoneAt(kind, nil)
		if !c.Etat.IsBilling() {
			c.Etat = DeriveEtat(c)
		}
	}

	if err := s.save(ctx, c, expected); err != nil {
		return nil, err
	}

	if done {
		if err := s.sched.CancelKinds(ctx, id, kind.Cascade()); err != nil {
			s.log.Warn("cancel notifications", zap.String("commande", id), zap.Error(err))
		}
	} else {
		if err := s.sched.Recreate(ctx, id, c.Dates(), actorEmail); err != nil {
			s.log.Warn("recreate notifications after unmark", zap.String("commande", id), zap.Error(err))
		}
	}
	return c, nil
}

func (s *Service) save(ctx context.Context, c *types.Commande, expectedUpdatedAt time.Time) error {
	c.UpdatedAt = s.now().UTC()
	err := s.repo.UpdateCommande(ctx, c, expectedUpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func normalizePlanning(p types.PlanningType) types.PlanningType {
	if p == types.PlanningAuto {
		return types.PlanningAuto
	}
	return types.PlanningCasual
}
