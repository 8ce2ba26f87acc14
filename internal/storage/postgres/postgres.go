package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iidmage/backoffice/internal/storage"
	"github.com/iidmage/backoffice/internal/types/attachment"
	"github.com/iidmage/backoffice/internal/types/client"
	"github.com/iidmage/backoffice/internal/types/commande"
	"github.com/iidmage/backoffice/internal/types/notification"
	"github.com/iidmage/backoffice/internal/types/poseur"
	"github.com/iidmage/backoffice/internal/types/user"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &PostgresStorage{db: db}

	// проверяем, что БД жива
	if err := s.db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	// создаём таблицы
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStorage) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            email TEXT UNIQUE NOT NULL,
            name TEXT NOT NULL,
            phone TEXT,
            role TEXT NOT NULL,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS clients (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT,
            phone TEXT,
            address TEXT,
            notes TEXT,
            favorite BOOLEAN NOT NULL DEFAULT FALSE
        )`,
		`CREATE TABLE IF NOT EXISTS poseurs (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT,
            phone TEXT,
            zone TEXT,
            availability BOOLEAN NOT NULL DEFAULT TRUE
        )`,
		`CREATE TABLE IF NOT EXISTS commandes (
            id TEXT PRIMARY KEY,
            client_id TEXT NOT NULL REFERENCES clients(id),
            poseur_id TEXT REFERENCES poseurs(id),
            product TEXT,
            planning_type TEXT NOT NULL DEFAULT 'CASUAL',
            date_commande TIMESTAMPTZ,
            date_survey TIMESTAMPTZ,
            date_production TIMESTAMPTZ,
            date_expedition TIMESTAMPTZ,
            date_livraison TIMESTAMPTZ,
            date_pose TIMESTAMPTZ,
            lieu_pose TEXT,
            etat TEXT NOT NULL DEFAULT 'A_PLANIFIER',
            priorite TEXT,
            commentaires TEXT,
            done_production_at TIMESTAMPTZ,
            done_expedition_at TIMESTAMPTZ,
            done_livraison_at TIMESTAMPTZ,
            done_pose_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS notifications (
            id SERIAL PRIMARY KEY,
            commande_id TEXT NOT NULL,
            kind TEXT NOT NULL,
            channel TEXT NOT NULL,
            due_at TIMESTAMPTZ NOT NULL,
            status TEXT NOT NULL,
            sent_at TIMESTAMPTZ,
            last_error TEXT,
            actor_email TEXT
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS notifications_dedup
            ON notifications(commande_id, kind, channel, due_at)`,
		`CREATE TABLE IF NOT EXISTS attachments (
            id TEXT PRIMARY KEY,
            commande_id TEXT NOT NULL REFERENCES commandes(id),
            type TEXT NOT NULL,
            url TEXT NOT NULL,
            uploaded_by TEXT,
            created_at TIMESTAMPTZ NOT NULL
        )`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

// ----- users -----

func (s *PostgresStorage) CreateUser(ctx context.Context, u *user.User) error {
	q := `INSERT INTO users (id,email,name,phone,role,password_hash,created_at) VALUES($1,$2,$3,$4,$5,$6,$7)`
	_, err := s.db.ExecContext(ctx, q, u.ID, u.Email, u.Name, u.Phone, u.Role, u.PasswordHash, u.CreatedAt)
	return err
}

func (s *PostgresStorage) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	u := &user.User{}
	q := `SELECT id,email,name,phone,role,password_hash,created_at FROM users WHERE email=$1`
	if err := s.db.QueryRowContext(ctx, q, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.Role, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *PostgresStorage) GetUser(ctx context.Context, id string) (*user.User, error) {
	u := &user.User{}
	q := `SELECT id,email,name,phone,role,password_hash,created_at FROM users WHERE id=$1`
	if err := s.db.QueryRowContext(ctx, q, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.Role, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *PostgresStorage) ListUsers(ctx context.Context, offset, limit int) ([]user.User, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	const q = `
        SELECT id,email,name,phone,role,password_hash,created_at
        FROM users ORDER BY created_at DESC OFFSET $1 LIMIT $2`
	rows, err := s.db.QueryContext(ctx, q, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.Role, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (s *PostgresStorage) UpdateUser(ctx context.Context, u *user.User) error {
	q := `UPDATE users SET email=$1, name=$2, phone=$3, role=$4, password_hash=$5 WHERE id=$6`
	res, err := s.db.ExecContext(ctx, q, u.Email, u.Name, u.Phone, u.Role, u.PasswordHash, u.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStorage) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ----- clients -----

func (s *PostgresStorage) CreateClient(ctx context.Context, c *client.Client) error {
	q := `INSERT INTO clients (id,name,email,phone,address,notes,favorite) VALUES($1,$2,$3,$4,$5,$6,$7)`
	_, err := s.db.ExecContext(ctx, q, c.ID, c.Name, c.Email, c.Phone, c.Address, c.Notes, c.Favorite)
	return err
}

func (s *PostgresStorage) GetClient(ctx context.Context, id string) (*client.Client, error) {
	c := &client.Client{}
	q := `SELECT id,name,email,phone,address,notes,favorite FROM clients WHERE id=$1`
	if err := s.db.QueryRowContext(ctx, q, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Notes, &c.Favorite); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *PostgresStorage) ListClients(ctx context.Context) ([]client.Client, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,name,email,phone,address,notes,favorite FROM clients ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []client.Client
	for rows.Next() {
		var c client.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Notes, &c.Favorite); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) UpdateClient(ctx context.Context, c *client.Client) error {
	q := `UPDATE clients SET name=$1, email=$2, phone=$3, address=$4, notes=$5, favorite=$6 WHERE id=$7`
	res, err := s.db.ExecContext(ctx, q, c.Name, c.Email, c.Phone, c.Address, c.Notes, c.Favorite, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStorage) DeleteClient(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStorage) CountCommandesByClient(ctx context.Context, clientID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM commandes WHERE client_id=$1`, clientID).Scan(&n)
	return n, err
}

// ----- poseurs -----

func (s *PostgresStorage) CreatePoseur(ctx context.Context, p *poseur.Poseur) error {
	q := `INSERT INTO poseurs (id,name,email,phone,zone,availability) VALUES($1,$2,$3,$4,$5,$6)`
	_, err := s.db.ExecContext(ctx, q, p.ID, p.Name, p.Email, p.Phone, p.Zone, p.Availability)
	return err
}

func (s *PostgresStorage) GetPoseur(ctx context.Context, id string) (*poseur.Poseur, error) {
	p := &poseur.Poseur{}
	q := `SELECT id,name,email,phone,zone,availability FROM poseurs WHERE id=$1`
	if err := s.db.QueryRowContext(ctx, q, id).
		Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Zone, &p.Availability); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostgresStorage) ListPoseurs(ctx context.Context) ([]poseur.Poseur, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,name,email,phone,zone,availability FROM poseurs ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []poseur.Poseur
	for rows.Next() {
		var p poseur.Poseur
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Zone, &p.Availability); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) UpdatePoseur(ctx context.Context, p *poseur.Poseur) error {
	q := `UPDATE poseurs SET name=$1, email=$2, phone=$3, zone=$4, availability=$5 WHERE id=$6`
	res, err := s.db.ExecContext(ctx, q, p.Name, p.Email, p.Phone, p.Zone, p.Availability, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStorage) DeletePoseur(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM poseurs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStorage) CountCommandesByPoseur(ctx context.Context, poseurID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM commandes WHERE poseur_id=$1`, poseurID).Scan(&n)
	return n, err
}

// ----- commandes -----

const commandeColumns = `
    c.id, c.client_id, c.poseur_id, c.product, c.planning_type,
    c.date_commande, c.date_survey, c.date_production, c.date_expedition, c.date_livraison, c.date_pose,
    c.lieu_pose, c.etat, c.priorite, c.commentaires,
    c.done_production_at, c.done_expedition_at, c.done_livraison_at, c.done_pose_at,
    c.created_at, c.updated_at,
    cl.name, p.name`

func scanCommande(scan func(dest ...any) error) (*commande.Commande, error) {
	var c commande.Commande
	var clientName sql.NullString
	var poseurName sql.NullString
	err := scan(
		&c.ID, &c.ClientID, &c.PoseurID, &c.Product, &c.PlanningType,
		&c.DateCommande, &c.DateSurvey, &c.DateProduction, &c.DateExpedition, &c.DateLivraison, &c.DatePose,
		&c.LieuPose, &c.Etat, &c.Priorite, &c.Commentaires,
		&c.DoneProductionAt, &c.DoneExpeditionAt, &c.DoneLivraisonAt, &c.DonePoseAt,
		&c.CreatedAt, &c.UpdatedAt,
		&clientName, &poseurName,
	)
	if err != nil {
		return nil, err
	}
	if clientName.Valid {
		c.Client = &commande.Ref{ID: c.ClientID, Name: clientName.String}
	}
	if poseurName.Valid && c.PoseurID != nil {
		c.Poseur = &commande.Ref{ID: *c.PoseurID, Name: poseurName.String}
	}
	return &c, nil
}

func (s *PostgresStorage) CreateCommande(ctx context.Context, c *commande.Commande) error {
	q := `
        INSERT INTO commandes (
            id, client_id, poseur_id, product, planning_type,
            date_commande, date_survey, date_production, date_expedition, date_livraison, date_pose,
            lieu_pose, etat, priorite, commentaires,
            created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`
	_, err := s.db.ExecContext(ctx, q,
		c.ID, c.ClientID, c.PoseurID, c.Product, c.PlanningType,
		c.DateCommande, c.DateSurvey, c.DateProduction, c.DateExpedition, c.DateLivraison, c.DatePose,
		c.LieuPose, c.Etat, c.Priorite, c.Commentaires,
		c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (s *PostgresStorage) GetCommande(ctx context.Context, id string) (*commande.Commande, error) {
	q := `
        SELECT ` + commandeColumns + `
        FROM commandes c
        JOIN clients cl ON cl.id = c.client_id
        LEFT JOIN poseurs p ON p.id = c.poseur_id
        WHERE c.id = $1`
	return scanCommande(s.db.QueryRowContext(ctx, q, id).Scan)
}

func (s *PostgresStorage) ListCommandes(ctx context.Context) ([]commande.Commande, error) {
	q := `
        SELECT ` + commandeColumns + `
        FROM commandes c
        JOIN clients cl ON cl.id = c.client_id
        LEFT JOIN poseurs p ON p.id = c.poseur_id
        ORDER BY c.created_at DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []commande.Commande
	for rows.Next() {
		c, err := scanCommande(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) UpdateCommande(ctx context.Context, c *commande.Commande, expectedUpdatedAt time.Time) error {
	q := `
        UPDATE commandes SET
            client_id=$1, poseur_id=$2, product=$3, planning_type=$4,
            date_commande=$5, date_survey=$6, date_production=$7, date_expedition=$8, date_livraison=$9, date_pose=$10,
            lieu_pose=$11, etat=$12, priorite=$13, commentaires=$14,
            done_production_at=$15, done_expedition_at=$16, done_livraison_at=$17, done_pose_at=$18,
            updated_at=$19
        WHERE id=$20 AND updated_at=$21`
	res, err := s.db.ExecContext(ctx, q,
		c.ClientID, c.PoseurID, c.Product, c.PlanningType,
		c.DateCommande, c.DateSurvey, c.DateProduction, c.DateExpedition, c.DateLivraison, c.DatePose,
		c.LieuPose, c.Etat, c.Priorite, c.Commentaires,
		c.DoneProductionAt, c.DoneExpeditionAt, c.DoneLivraisonAt, c.DonePoseAt,
		c.UpdatedAt,
		c.ID, expectedUpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the row vanished or the optimistic guard missed.
		var exists bool
		if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM commandes WHERE id=$1)`, c.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return sql.ErrNoRows
		}
		return storage.ErrStaleWrite
	}
	return nil
}

func (s *PostgresStorage) DeleteCommande(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM notifications WHERE commande_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM attachments WHERE commande_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM commandes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}

// ----- notifications -----

func kindStrings(kinds []commande.MilestoneKind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

func (s *PostgresStorage) ReplacePending(ctx context.Context, commandeID string, kinds []commande.MilestoneKind, rows []notification.Notification) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const del = `
        DELETE FROM notifications
        WHERE commande_id=$1 AND status='PENDING' AND channel='EMAIL' AND kind = ANY($2)`
	if _, err := tx.ExecContext(ctx, del, commandeID, kindStrings(kinds)); err != nil {
		return err
	}

	const ins = `
        INSERT INTO notifications (commande_id, kind, channel, due_at, status, actor_email)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (commande_id, kind, channel, due_at) DO NOTHING`
	for _, n := range rows {
		if _, err := tx.ExecContext(ctx, ins, n.CommandeID, n.Kind, n.Channel, n.DueAt, n.Status, n.ActorEmail); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStorage) DeletePending(ctx context.Context, commandeID string, kinds []commande.MilestoneKind) error {
	const q = `
        DELETE FROM notifications
        WHERE commande_id=$1 AND status='PENDING' AND channel='EMAIL' AND kind = ANY($2)`
	_, err := s.db.ExecContext(ctx, q, commandeID, kindStrings(kinds))
	return err
}

func (s *PostgresStorage) ListDue(ctx context.Context, now time.Time, limit int) ([]notification.Notification, error) {
	const q = `
        SELECT id, commande_id, kind, channel, due_at, status, sent_at, last_error, actor_email
        FROM notifications
        WHERE status='PENDING' AND channel='EMAIL' AND due_at <= $1
        ORDER BY due_at ASC
        LIMIT $2`
	rows, err := s.db.QueryContext(ctx, q, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func scanNotifications(rows *sql.Rows) ([]notification.Notification, error) {
	var out []notification.Notification
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.CommandeID, &n.Kind, &n.Channel, &n.DueAt, &n.Status, &n.SentAt, &n.LastError, &n.ActorEmail); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) MarkSent(ctx context.Context, id int64, at time.Time, note string) error {
	var lastError *string
	if note != "" {
		lastError = &note
	}
	const q = `UPDATE notifications SET status='SENT', sent_at=$1, last_error=$2 WHERE id=$3`
	_, err := s.db.ExecContext(ctx, q, at, lastError, id)
	return err
}

func (s *PostgresStorage) MarkFailed(ctx context.Context, id int64, at time.Time, errText string) error {
	const q = `UPDATE notifications SET status='FAILED', sent_at=$1, last_error=$2 WHERE id=$3`
	_, err := s.db.ExecContext(ctx, q, at, errText, id)
	return err
}

// ----- attachments -----

func (s *PostgresStorage) CreateAttachment(ctx context.Context, a *attachment.Attachment) error {
	q := `INSERT INTO attachments (id,commande_id,type,url,uploaded_by,created_at) VALUES($1,$2,$3,$4,$5,$6)`
	_, err := s.db.ExecContext(ctx, q, a.ID, a.CommandeID, a.Type, a.URL, a.UploadedBy, a.CreatedAt)
	return err
}

func (s *PostgresStorage) ListAttachmentsByCommande(ctx context.Context, commandeID string) ([]attachment.Attachment, error) {
	const q = `
        SELECT id,commande_id,type,url,uploaded_by,created_at
        FROM attachments WHERE commande_id=$1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, commandeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []attachment.Attachment
	for rows.Next() {
		var a attachment.Attachment
		if err := rows.Scan(&a.ID, &a.CommandeID, &a.Type, &a.URL, &a.UploadedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
