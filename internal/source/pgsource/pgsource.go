// Package pgsource reads patient pages from Postgres.
package pgsource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rshade/carelist/internal/paging"
	"github.com/rshade/carelist/internal/patient"
	"github.com/rshade/carelist/internal/session"
)

// ErrEmptyDSN is returned by Open without a connection string.
var ErrEmptyDSN = errors.New("postgres dsn is required")

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const summaryCols = `id, mrn, first_name, last_name, birth_date, pharmacy,
	active_prescriptions, next_pickup, alerts`

// sortColumns maps sort fields to ORDER BY columns. Only these names ever
// reach the SQL text.
//
//nolint:gochecknoglobals // Static lookup table.
var sortColumns = map[string][]string{
	patient.SortByName:          {"last_name", "first_name"},
	patient.SortByMRN:           {"mrn"},
	patient.SortByBirthDate:     {"birth_date"},
	patient.SortByPrescriptions: {"active_prescriptions"},
	patient.SortByNextPickup:    {"next_pickup"},
}

// Source is a paging.PageSource over the patient_summary table.
type Source struct {
	db    querier
	close func()
}

// New wraps an existing pool, connection or transaction.
func New(db querier) *Source {
	return &Source{db: db, close: func() {}}
}

// Open connects a pool to dsn.
func Open(ctx context.Context, dsn string) (*Source, error) {
	if dsn == "" {
		return nil, ErrEmptyDSN
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Source{db: pool, close: pool.Close}, nil
}

// Close releases the pool opened by Open.
func (s *Source) Close() {
	s.close()
}

// ValidSortField reports whether field can be used to sort.
func (s *Source) ValidSortField(field string) bool {
	_, ok := sortColumns[field]
	return ok
}

// FetchPage counts the patients in scope and reads one ordered page.
// An active session in ctx restricts both to its workspace.
func (s *Source) FetchPage(ctx context.Context, req paging.Request) (paging.Page[patient.Summary], error) {
	var empty paging.Page[patient.Summary]

	where, args := scope(ctx)

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM patient_summary`+where, args...).Scan(&total); err != nil {
		return empty, fmt.Errorf("patient count: %w", err)
	}

	n := len(args)
	query := `SELECT ` + summaryCols + ` FROM patient_summary` + where +
		` ORDER BY ` + orderBy(req.Sort, req.Order) +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, n+1, n+2)
	rows, err := s.db.Query(ctx, query, append(args, req.Limit, req.Offset)...)
	if err != nil {
		return empty, fmt.Errorf("patient list: %w", err)
	}
	defer rows.Close()

	items := make([]patient.Summary, 0, req.Limit)
	for rows.Next() {
		p, scanErr := scanSummary(rows)
		if scanErr != nil {
			return empty, fmt.Errorf("patient scan: %w", scanErr)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return empty, fmt.Errorf("patient list: %w", err)
	}

	return paging.Page[patient.Summary]{
		Items:   items,
		Total:   total,
		HasMore: req.Offset+len(items) < total,
	}, nil
}

func scope(ctx context.Context) (string, []any) {
	if s := session.FromContext(ctx); s.Active() {
		return ` WHERE workspace = $1`, []any{s.Workspace()}
	}
	return "", nil
}

// orderBy builds the ORDER BY list. Unknown fields fall back to name order;
// id is always last so pages never overlap.
func orderBy(field, order string) string {
	cols, ok := sortColumns[field]
	if !ok {
		cols = sortColumns[patient.SortByName]
	}
	dir := "ASC"
	if strings.EqualFold(order, paging.SortOrderDesc) {
		dir = "DESC"
	}

	parts := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		parts = append(parts, c+" "+dir+" NULLS LAST")
	}
	parts = append(parts, "id")
	return strings.Join(parts, ", ")
}

func scanSummary(row pgx.Row) (patient.Summary, error) {
	var (
		id         uuid.UUID
		pharmacy   *string
		birthDate  *time.Time
		nextPickup *time.Time
		alerts     []string
		p          patient.Summary
	)
	err := row.Scan(
		&id, &p.MRN, &p.FirstName, &p.LastName, &birthDate, &pharmacy,
		&p.ActivePrescriptions, &nextPickup, &alerts,
	)
	if err != nil {
		return p, err
	}

	p.ID = id.String()
	if pharmacy != nil {
		p.Pharmacy = *pharmacy
	}
	if birthDate != nil {
		p.BirthDate = *birthDate
	}
	p.NextPickup = nextPickup
	p.Alerts = alerts
	return p, nil
}
