package poseur

type Poseur struct {
	ID           string  `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	Email        *string `db:"email" json:"email,omitempty"`
	Phone        *string `db:"phone" json:"phone,omitempty"`
	Zone         *string `db:"zone" json:"zone,omitempty"`
	Availability bool    `db:"availability" json:"availability"`
}
