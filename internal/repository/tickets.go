package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civictrack/civictrackd/internal/domain"
)

// TicketRepo is the transactional CRUD layer for tickets and the
// eager-loader for the full TicketDetail aggregate (spec.md §4.D).
type TicketRepo struct {
	pool *pgxpool.Pool
}

func NewTicketRepo(pool *pgxpool.Pool) *TicketRepo { return &TicketRepo{pool: pool} }

const ticketColumns = `id, title, description, status, category_id, location_id,
	reporter_id, team_id, resolved_at, created_at, updated_at, deleted_at`

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.CategoryID, &t.LocationID,
		&t.ReporterID, &t.TeamID, &t.ResolvedAt, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt,
	)
	return t, err
}

// Create inserts a new ticket row, already assigned to teamID by the
// routing service at call time.
func (r *TicketRepo) Create(ctx context.Context, tx pgx.Tx, t domain.Ticket) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO tickets (id, title, description, status, category_id, location_id, reporter_id, team_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, t.ID, t.Title, t.Description, t.Status, t.CategoryID, t.LocationID, t.ReporterID, t.TeamID, t.CreatedAt, t.UpdatedAt)
	return wrapDBError("create ticket", "ticket", err)
}

func (r *TicketRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1 AND deleted_at IS NULL`, id)
	t, err := scanTicket(row)
	if err != nil {
		return domain.Ticket{}, wrapDBError("find ticket", "ticket", err)
	}
	return t, nil
}

// UpdateStatus transitions a ticket's status and, when entering RESOLVED,
// stamps resolved_at — the one column besides status/updated_at every
// status transition touches (spec.md §3 Ticket.ResolvedAt).
func (r *TicketRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.Status, resolvedAt bool) error {
	var err error
	if resolvedAt {
		_, err = tx.Exec(ctx, `UPDATE tickets SET status = $2, resolved_at = now(), updated_at = now() WHERE id = $1`, id, status)
	} else {
		_, err = tx.Exec(ctx, `UPDATE tickets SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	}
	return wrapDBError("update ticket status", "ticket", err)
}

// AssignTeam reassigns a ticket to a different team (spec.md §4.D
// assignTeam, manager-only reroute).
func (r *TicketRepo) AssignTeam(ctx context.Context, tx pgx.Tx, id uuid.UUID, teamID uuid.UUID) error {
	_, err := tx.Exec(ctx, `UPDATE tickets SET team_id = $2, updated_at = now() WHERE id = $1`, id, teamID)
	return wrapDBError("assign ticket team", "ticket", err)
}

func (r *TicketRepo) Update(ctx context.Context, tx pgx.Tx, id uuid.UUID, title, description string, categoryID uuid.UUID) error {
	_, err := tx.Exec(ctx, `UPDATE tickets SET title = $2, description = $3, category_id = $4, updated_at = now() WHERE id = $1`, id, title, description, categoryID)
	return wrapDBError("update ticket", "ticket", err)
}

// SoftDelete marks a ticket deleted without removing its row, preserving
// the audit trail (spec.md §9 design note on soft-delete).
func (r *TicketRepo) SoftDelete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	_, err := tx.Exec(ctx, `UPDATE tickets SET deleted_at = now(), updated_at = now() WHERE id = $1`, id)
	return wrapDBError("delete ticket", "ticket", err)
}

// TicketListFilter narrows the paginated list query (spec.md §4.D list).
type TicketListFilter struct {
	ReporterID *uuid.UUID
	TeamID     *uuid.UUID
	CategoryID *uuid.UUID
	Status     *domain.Status
	Limit      int
	Offset     int
}

// List returns tickets matching filter, newest first.
func (r *TicketRepo) List(ctx context.Context, f TicketListFilter) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE deleted_at IS NULL`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return placeholderFor(len(args))
	}
	if f.ReporterID != nil {
		query += ` AND reporter_id = ` + arg(*f.ReporterID)
	}
	if f.TeamID != nil {
		query += ` AND team_id = ` + arg(*f.TeamID)
	}
	if f.CategoryID != nil {
		query += ` AND category_id = ` + arg(*f.CategoryID)
	}
	if f.Status != nil {
		query += ` AND status = ` + arg(*f.Status)
	}
	query += ` ORDER BY created_at DESC LIMIT ` + arg(limitOrDefault(f.Limit)) + ` OFFSET ` + arg(f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("list tickets", "ticket", err)
	}
	defer rows.Close()

	var out []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, wrapDBError("scan ticket", "ticket", err)
		}
		out = append(out, t)
	}
	return out, wrapDBError("list tickets", "ticket", rows.Err())
}

func limitOrDefault(n int) int {
	if n <= 0 || n > 100 {
		return 20
	}
	return n
}

func placeholderFor(n int) string {
	return fmt.Sprintf("$%d", n)
}

// FindNearby runs the PostGIS ST_DWithin/ST_Distance proximity query
// described by spec.md §4.F: every active (NEW or IN_PROGRESS),
// non-deleted ticket whose location falls within radiusM meters of
// (lat, lon), closest first, optionally narrowed to categoryID.
func (r *TicketRepo) FindNearby(ctx context.Context, lat, lon, radiusM float64, categoryID *uuid.UUID, limit int) ([]domain.NearbyTicket, error) {
	query := `
		SELECT t.` + ticketColumns + `,
			l.id, l.latitude, l.longitude, l.address, l.district, l.city,
			ST_Distance(l.coordinates::geography, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography) AS distance_m
		FROM tickets t
		JOIN locations l ON l.id = t.location_id
		WHERE t.deleted_at IS NULL
		  AND t.status IN ('NEW', 'IN_PROGRESS')
		  AND ST_DWithin(l.coordinates::geography, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography, $3)`
	args := []any{lat, lon, radiusM}
	if categoryID != nil {
		args = append(args, *categoryID)
		query += fmt.Sprintf(" AND t.category_id = %s", placeholderFor(len(args)))
	}
	args = append(args, limitOrDefault(limit))
	query += fmt.Sprintf(" ORDER BY distance_m ASC LIMIT %s", placeholderFor(len(args)))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("find nearby tickets", "ticket", err)
	}
	defer rows.Close()

	var out []domain.NearbyTicket
	for rows.Next() {
		var nt domain.NearbyTicket
		err := rows.Scan(
			&nt.Ticket.ID, &nt.Ticket.Title, &nt.Ticket.Description, &nt.Ticket.Status,
			&nt.Ticket.CategoryID, &nt.Ticket.LocationID, &nt.Ticket.ReporterID, &nt.Ticket.TeamID,
			&nt.Ticket.ResolvedAt, &nt.Ticket.CreatedAt, &nt.Ticket.UpdatedAt, &nt.Ticket.DeletedAt,
			&nt.Location.ID, &nt.Location.Latitude, &nt.Location.Longitude,
			&nt.Location.Address, &nt.Location.District, &nt.Location.City,
			&nt.DistanceM,
		)
		if err != nil {
			return nil, wrapDBError("scan nearby ticket", "ticket", err)
		}
		out = append(out, nt)
	}
	return out, wrapDBError("find nearby tickets", "ticket", rows.Err())
}
