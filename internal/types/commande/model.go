package commande

import "time"

type Etat string

const (
	EtatAPlanifier      Etat = "A_PLANIFIER"
	EtatEnProduction    Etat = "EN_PRODUCTION"
	EtatAExpedier       Etat = "A_EXPEDIER"
	EtatLivree          Etat = "LIVREE"
	EtatAPoser          Etat = "A_POSER"
	EtatPosee           Etat = "POSEE"
	EtatFactureAEnvoyer Etat = "FACTURE_A_ENVOYER"
	EtatFacturee        Etat = "FACTUREE"

	// EtatEnRetard существует только для отображения, в базу не пишется.
	EtatEnRetard Etat = "EN_RETARD"
)

var etatRank = map[Etat]int{
	EtatAPlanifier:      1,
	EtatEnProduction:    2,
	EtatAExpedier:       3,
	EtatLivree:          4,
	EtatAPoser:          5,
	EtatPosee:           6,
	EtatFactureAEnvoyer: 7,
	EtatFacturee:        8,
}

func (e Etat) Rank() int {
	return etatRank[e]
}

func (e Etat) IsBilling() bool {
	return e == EtatFactureAEnvoyer || e == EtatFacturee
}

type PlanningType string

const (
	PlanningAuto   PlanningType = "AUTO"
	PlanningCasual PlanningType = "CASUAL"
)

type MilestoneKind string

const (
	KindProduction MilestoneKind = "PRODUCTION"
	KindExpedition MilestoneKind = "EXPEDITION"
	KindLivraison  MilestoneKind = "LIVRAISON"
	KindPose       MilestoneKind = "POSE"
)

// Kinds перечисляет этапы в порядке пайплайна.
var Kinds = []MilestoneKind{KindProduction, KindExpedition, KindLivraison, KindPose}

var kindOrder = map[MilestoneKind]int{
	KindProduction: 0,
	KindExpedition: 1,
	KindLivraison:  2,
	KindPose:       3,
}

func (k MilestoneKind) Valid() bool {
	_, ok := kindOrder[k]
	return ok
}

// Cascade returns kind plus every earlier milestone, in pipeline order.
func (k MilestoneKind) Cascade() []MilestoneKind {
	return Kinds[:kindOrder[k]+1]
}

// Later returns every milestone after kind in pipeline order.
func (k MilestoneKind) Later() []MilestoneKind {
	return Kinds[kindOrder[k]+1:]
}

// Prerequisites returns every milestone before kind in pipeline order.
func (k MilestoneKind) Prerequisites() []MilestoneKind {
	return Kinds[:kindOrder[k]]
}

// TargetEtat maps a completed milestone to the next operational state.
func (k MilestoneKind) TargetEtat() Etat {
	switch k {
	case KindProduction:
		return EtatAExpedier
	case KindExpedition:
		return EtatLivree
	case KindLivraison:
		return EtatAPoser
	case KindPose:
		return EtatPosee
	}
	return ""
}

func (k MilestoneKind) Label() string {
	switch k {
	case KindProduction:
		return "Production"
	case KindExpedition:
		return "Expédition"
	case KindLivraison:
		return "Livraison"
	case KindPose:
		return "Pose"
	}
	return string(k)
}

type Commande struct {
	ID           string       `db:"id" json:"id"`
	ClientID     string       `db:"client_id" json:"clientId"`
	PoseurID     *string      `db:"poseur_id" json:"poseurId,omitempty"`
	Product      *string      `db:"product" json:"product,omitempty"`
	PlanningType PlanningType `db:"planning_type" json:"planningType"`

	DateCommande   *time.Time `db:"date_commande" json:"date_commande,omitempty"`
	DateSurvey     *time.Time `db:"date_survey" json:"date_survey,omitempty"`
	DateProduction *time.Time `db:"date_production" json:"date_production,omitempty"`
	DateExpedition *time.Time `db:"date_expedition" json:"date_expedition,omitempty"`
	DateLivraison  *time.Time `db:"date_livraison" json:"date_livraison,omitempty"`
	DatePose       *time.Time `db:"date_pose" json:"date_pose,omitempty"`

	LieuPose     *string `db:"lieu_pose" json:"lieu_pose,omitempty"`
	Etat         Etat    `db:"etat" json:"etat"`
	Priorite     *string `db:"priorite" json:"priorite,omitempty"`
	Commentaires *string `db:"commentaires" json:"commentaires,omitempty"`

	DoneProductionAt *time.Time `db:"done_production_at" json:"done_production_at,omitempty"`
	DoneExpeditionAt *time.Time `db:"done_expedition_at" json:"done_expedition_at,omitempty"`
	DoneLivraisonAt  *time.Time `db:"done_livraison_at" json:"done_livraison_at,omitempty"`
	DonePoseAt       *time.Time `db:"done_pose_at" json:"done_pose_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	Client *Ref `db:"-" json:"client,omitempty"`
	Poseur *Ref `db:"-" json:"poseur,omitempty"`
}

// Ref is the display projection of a related client/poseur.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c *Commande) MilestoneDate(kind MilestoneKind) *time.Time {
	switch kind {
	case KindProduction:
		return c.DateProduction
	case KindExpedition:
		return c.DateExpedition
	case KindLivraison:
		return c.DateLivraison
	case KindPose:
		return c.DatePose
	}
	return nil
}

func (c *Commande) MilestoneDoneAt(kind MilestoneKind) *time.Time {
	switch kind {
	case KindProduction:
		return c.DoneProductionAt
	case KindExpedition:
		return c.DoneExpeditionAt
	case KindLivraison:
		return c.DoneLivraisonAt
	case KindPose:
		return c.DonePoseAt
	}
	return nil
}

func (c *Commande) SetMilestoneDoneAt(kind MilestoneKind, at *time.Time) {
	switch kind {
	case KindProduction:
		c.DoneProductionAt = at
	case KindExpedition:
		c.DoneExpeditionAt = at
	case KindLivraison:
		c.DoneLivraisonAt = at
	case KindPose:
		c.DonePoseAt = at
	}
}

// MilestoneDates is the subset of dates the notification scheduler consumes.
type MilestoneDates struct {
	Production *time.Time
	Expedition *time.Time
	Livraison  *time.Time
	Pose       *time.Time
}

func (c *Commande) Dates() MilestoneDates {
	return MilestoneDates{
		Production: c.DateProduction,
		Expedition: c.DateExpedition,
		Livraison:  c.DateLivraison,
		Pose:       c.DatePose,
	}
}

func (d MilestoneDates) For(kind MilestoneKind) *time.Time {
	switch kind {
	case KindProduction:
		return d.Production
	case KindExpedition:
		return d.Expedition
	case KindLivraison:
		return d.Livraison
	case KindPose:
		return d.Pose
	}
	return nil
}
