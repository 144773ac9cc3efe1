package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civictrack/civictrackd/internal/domain"
)

// AnalyticsRepo is the read-only aggregate surface backing the
// manager-only analytics endpoints (SPEC_FULL.md §4.I, grounded in
// original_source's analytics schema/endpoints).
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepo(pool *pgxpool.Pool) *AnalyticsRepo { return &AnalyticsRepo{pool: pool} }

// DashboardKPIs computes the manager dashboard's top-line counters.
func (r *AnalyticsRepo) DashboardKPIs(ctx context.Context) (domain.DashboardKPIs, error) {
	var k domain.DashboardKPIs
	err := r.pool.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE deleted_at IS NULL),
			count(*) FILTER (WHERE deleted_at IS NULL AND status IN ('NEW', 'IN_PROGRESS', 'ESCALATED')),
			count(*) FILTER (WHERE deleted_at IS NULL AND status = 'RESOLVED'),
			count(*) FILTER (WHERE deleted_at IS NULL AND status = 'CLOSED'),
			count(*) FILTER (WHERE deleted_at IS NULL AND status = 'ESCALATED'),
			COALESCE(AVG(EXTRACT(EPOCH FROM (resolved_at - created_at)) / 3600)
				FILTER (WHERE resolved_at IS NOT NULL), 0)
		FROM tickets
	`).Scan(&k.Total, &k.Open, &k.Resolved, &k.Closed, &k.Escalated, &k.AvgResolutionHours)
	if err != nil {
		return domain.DashboardKPIs{}, wrapDBError("dashboard kpis", "ticket", err)
	}
	if k.Total > 0 {
		k.ResolutionRate = float64(k.Resolved+k.Closed) / float64(k.Total)
	}

	err = r.pool.QueryRow(ctx, `SELECT COALESCE(AVG(rating), 0) FROM feedbacks`).Scan(&k.AverageRating)
	if err != nil {
		return domain.DashboardKPIs{}, wrapDBError("dashboard average rating", "feedback", err)
	}
	return k, nil
}

// Heatmap buckets non-deleted ticket locations, optionally filtered by
// category, for map-overlay density rendering.
func (r *AnalyticsRepo) Heatmap(ctx context.Context, categoryID *uuid.UUID) ([]domain.HeatmapPoint, error) {
	query := `
		SELECT l.latitude, l.longitude, count(*) AS n
		FROM tickets t
		JOIN locations l ON l.id = t.location_id
		WHERE t.deleted_at IS NULL`
	var args []interface{}
	if categoryID != nil {
		query += ` AND t.category_id = $1`
		args = append(args, *categoryID)
	}
	query += ` GROUP BY l.latitude, l.longitude`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("heatmap", "ticket", err)
	}
	defer rows.Close()

	var out []domain.HeatmapPoint
	maxCount := 0
	for rows.Next() {
		var p domain.HeatmapPoint
		var n int
		if err := rows.Scan(&p.Latitude, &p.Longitude, &n); err != nil {
			return nil, wrapDBError("scan heatmap point", "ticket", err)
		}
		p.Count = n
		if n > maxCount {
			maxCount = n
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("heatmap", "ticket", err)
	}
	if maxCount > 0 {
		for i := range out {
			out[i].Intensity = float64(out[i].Count) / float64(maxCount)
		}
	}
	return out, nil
}

// TeamPerformance aggregates assigned/resolved/open counts, resolution
// rate, average resolution time, average rating, and member count per
// team. Workload is left zero here; the analytics service fills it in
// from the routing service, per SPEC_FULL.md §4.I.
func (r *AnalyticsRepo) TeamPerformance(ctx context.Context) ([]domain.TeamPerformance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			t.id, t.name,
			count(k.id) FILTER (WHERE k.deleted_at IS NULL) AS assigned,
			count(k.id) FILTER (WHERE k.deleted_at IS NULL AND k.status IN ('RESOLVED', 'CLOSED')) AS resolved,
			count(k.id) FILTER (WHERE k.deleted_at IS NULL AND k.status IN ('NEW', 'IN_PROGRESS', 'ESCALATED')) AS open,
			COALESCE(AVG(EXTRACT(EPOCH FROM (k.resolved_at - k.created_at)) / 3600)
				FILTER (WHERE k.resolved_at IS NOT NULL), 0) AS avg_hours,
			COALESCE((SELECT AVG(f.rating) FROM feedbacks f JOIN tickets t2 ON t2.id = f.ticket_id WHERE t2.team_id = t.id), 0) AS avg_rating,
			(SELECT count(*) FROM users u WHERE u.team_id = t.id AND u.role = 'SUPPORT' AND u.is_active) AS members
		FROM teams t
		LEFT JOIN tickets k ON k.team_id = t.id
		GROUP BY t.id, t.name
		ORDER BY t.name
	`)
	if err != nil {
		return nil, wrapDBError("team performance", "team", err)
	}
	defer rows.Close()

	var out []domain.TeamPerformance
	for rows.Next() {
		var p domain.TeamPerformance
		if err := rows.Scan(&p.TeamID, &p.TeamName, &p.Assigned, &p.Resolved, &p.Open, &p.AvgResolutionHours, &p.AverageRating, &p.MemberCount); err != nil {
			return nil, wrapDBError("scan team performance", "team", err)
		}
		if p.Assigned > 0 {
			p.ResolutionRate = float64(p.Resolved) / float64(p.Assigned)
		}
		out = append(out, p)
	}
	return out, wrapDBError("team performance", "team", rows.Err())
}

// TeamMembers breaks down assigned/resolved counts per active SUPPORT
// member of a team. Assigned is the team's total of non-deleted tickets,
// the same value on every member's row; Resolved counts the team's
// distinct tickets for which the member logged any change to RESOLVED or
// CLOSED.
func (r *AnalyticsRepo) TeamMembers(ctx context.Context, teamID uuid.UUID) ([]domain.MemberPerformance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			u.id, u.name,
			(SELECT count(*) FROM tickets t WHERE t.team_id = $1 AND t.deleted_at IS NULL) AS assigned,
			(SELECT count(DISTINCT sl.ticket_id) FROM status_logs sl
				JOIN tickets t ON t.id = sl.ticket_id
				WHERE t.team_id = $1 AND sl.changed_by_id = u.id AND sl.new_status IN ('RESOLVED', 'CLOSED')) AS resolved
		FROM users u
		WHERE u.team_id = $1 AND u.role = 'SUPPORT' AND u.is_active
		ORDER BY u.name
	`, teamID)
	if err != nil {
		return nil, wrapDBError("team members", "user", err)
	}
	defer rows.Close()

	var out []domain.MemberPerformance
	for rows.Next() {
		var m domain.MemberPerformance
		if err := rows.Scan(&m.UserID, &m.Name, &m.Assigned, &m.Resolved); err != nil {
			return nil, wrapDBError("scan team member", "user", err)
		}
		out = append(out, m)
	}
	return out, wrapDBError("team members", "user", rows.Err())
}

// CategoryStats aggregates per-category ticket counts and average rating.
func (r *AnalyticsRepo) CategoryStats(ctx context.Context) ([]domain.CategoryStat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			c.id, c.name,
			count(t.id) FILTER (WHERE t.deleted_at IS NULL) AS total,
			count(t.id) FILTER (WHERE t.deleted_at IS NULL AND t.status IN ('RESOLVED', 'CLOSED')) AS resolved,
			COALESCE((SELECT AVG(f.rating) FROM feedbacks f JOIN tickets t2 ON t2.id = f.ticket_id WHERE t2.category_id = c.id), 0) AS avg_rating
		FROM categories c
		LEFT JOIN tickets t ON t.category_id = c.id
		GROUP BY c.id, c.name
		ORDER BY c.name
	`)
	if err != nil {
		return nil, wrapDBError("category stats", "category", err)
	}
	defer rows.Close()

	var out []domain.CategoryStat
	for rows.Next() {
		var s domain.CategoryStat
		if err := rows.Scan(&s.CategoryID, &s.CategoryName, &s.Total, &s.Resolved, &s.AverageRating); err != nil {
			return nil, wrapDBError("scan category stat", "category", err)
		}
		out = append(out, s)
	}
	return out, wrapDBError("category stats", "category", rows.Err())
}

// NeighborhoodStats aggregates per-district ticket counts with a
// category-name breakdown map.
func (r *AnalyticsRepo) NeighborhoodStats(ctx context.Context) ([]domain.NeighborhoodStat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.district, l.city, c.name, count(*)
		FROM tickets t
		JOIN locations l ON l.id = t.location_id
		JOIN categories c ON c.id = t.category_id
		WHERE t.deleted_at IS NULL
		GROUP BY l.district, l.city, c.name
		ORDER BY l.city, l.district
	`)
	if err != nil {
		return nil, wrapDBError("neighborhood stats", "ticket", err)
	}
	defer rows.Close()

	byKey := map[string]*domain.NeighborhoodStat{}
	var order []string
	for rows.Next() {
		var district, city, category string
		var n int
		if err := rows.Scan(&district, &city, &category, &n); err != nil {
			return nil, wrapDBError("scan neighborhood stat", "ticket", err)
		}
		key := city + "|" + district
		s, ok := byKey[key]
		if !ok {
			s = &domain.NeighborhoodStat{District: district, City: city, ByCategory: map[string]int{}}
			byKey[key] = s
			order = append(order, key)
		}
		s.ByCategory[category] += n
		s.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("neighborhood stats", "ticket", err)
	}

	out := make([]domain.NeighborhoodStat, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out, nil
}

// FeedbackTrends returns a 1-5 rating histogram and average per category.
func (r *AnalyticsRepo) FeedbackTrends(ctx context.Context) ([]domain.FeedbackTrend, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, f.rating, count(*)
		FROM feedbacks f
		JOIN tickets t ON t.id = f.ticket_id
		JOIN categories c ON c.id = t.category_id
		GROUP BY c.id, c.name, f.rating
	`)
	if err != nil {
		return nil, wrapDBError("feedback trends", "feedback", err)
	}
	defer rows.Close()

	byCategory := map[uuid.UUID]*domain.FeedbackTrend{}
	var order []uuid.UUID
	for rows.Next() {
		var catID uuid.UUID
		var name string
		var rating, n int
		if err := rows.Scan(&catID, &name, &rating, &n); err != nil {
			return nil, wrapDBError("scan feedback trend", "feedback", err)
		}
		t, ok := byCategory[catID]
		if !ok {
			t = &domain.FeedbackTrend{CategoryID: catID, CategoryName: name}
			byCategory[catID] = t
			order = append(order, catID)
		}
		if rating >= 1 && rating <= 5 {
			t.Histogram[rating-1] = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("feedback trends", "feedback", err)
	}

	out := make([]domain.FeedbackTrend, 0, len(order))
	for _, catID := range order {
		t := byCategory[catID]
		var sum, count int
		for i, n := range t.Histogram {
			sum += (i + 1) * n
			count += n
		}
		if count > 0 {
			t.Average = float64(sum) / float64(count)
		}
		out = append(out, *t)
	}
	return out, nil
}
