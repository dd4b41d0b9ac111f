package estimate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Fixed-width UTC layout so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// SortField names a column estimates can be listed by.
type SortField string

const (
	SortDate        SortField = "date"
	SortContainerID SortField = "containerId"
	SortTotalCost   SortField = "totalCost"
)

var sortColumns = map[SortField]string{
	SortDate:        "created_at",
	SortContainerID: "container_id",
	SortTotalCost:   "total_cost",
}

// ListParams filters and orders a listing. Query matches containerId or createdBy.
type ListParams struct {
	Query  string
	SortBy SortField
	Desc   bool
}

// ParseListParams builds ListParams from raw query-string values. Empty values fall
// back to newest first.
func ParseListParams(query, sortBy, order string) (ListParams, error) {
	params := ListParams{Query: query, SortBy: SortDate, Desc: true}

	if sortBy != "" {
		if _, ok := sortColumns[SortField(sortBy)]; !ok {
			return ListParams{}, invalid("sort must be one of date, containerId, totalCost")
		}
		params.SortBy = SortField(sortBy)
	}

	switch order {
	case "", "desc":
	case "asc":
		params.Desc = false
	default:
		return ListParams{}, invalid("order must be asc or desc")
	}

	return params, nil
}

// Store persists estimates.
type Store interface {
	Create(ctx context.Context, e Estimate) error
	Get(ctx context.Context, id string) (Estimate, error)
	List(ctx context.Context, params ListParams) ([]Estimate, error)
	// Replace overwrites the estimate if its stored version equals expectedVersion and
	// returns the stored result with the bumped version.
	Replace(ctx context.Context, e Estimate, expectedVersion int64) (Estimate, error)
	Delete(ctx context.Context, id string) error
}

// SQLStore is a Store backed by the estimates table.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Create(ctx context.Context, e Estimate) error {
	productsJSON, err := json.Marshal(e.Products)
	if err != nil {
		return fmt.Errorf("encode estimate products: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO estimates (
			id, container_id, created_at, updated_at, total_cost, margin_applied,
			created_by, role, version, products_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.ContainerID,
		e.Date.UTC().Format(timeLayout),
		e.UpdatedAt.UTC().Format(timeLayout),
		e.TotalCost,
		e.MarginApplied,
		e.CreatedBy,
		string(e.Role),
		e.Version,
		string(productsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert estimate: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT id, container_id, created_at, updated_at, total_cost, margin_applied,
		created_by, role, version, products_json
	FROM estimates
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEstimate(row rowScanner) (Estimate, error) {
	var (
		e            Estimate
		createdAt    string
		updatedAt    string
		role         string
		productsJSON string
	)
	if err := row.Scan(
		&e.ID,
		&e.ContainerID,
		&createdAt,
		&updatedAt,
		&e.TotalCost,
		&e.MarginApplied,
		&e.CreatedBy,
		&role,
		&e.Version,
		&productsJSON,
	); err != nil {
		return Estimate{}, err
	}

	var err error
	if e.Date, err = time.Parse(timeLayout, createdAt); err != nil {
		return Estimate{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if e.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return Estimate{}, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
	}
	if err := json.Unmarshal([]byte(productsJSON), &e.Products); err != nil {
		return Estimate{}, fmt.Errorf("decode estimate products: %w", err)
	}
	e.Role = Role(role)
	return e, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Estimate, error) {
	e, err := scanEstimate(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Estimate{}, ErrNotFound
	}
	if err != nil {
		return Estimate{}, fmt.Errorf("query estimate %q: %w", id, err)
	}
	return e, nil
}

func (s *SQLStore) List(ctx context.Context, params ListParams) ([]Estimate, error) {
	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = sortColumns[SortDate]
	}
	direction := "ASC"
	if params.Desc {
		direction = "DESC"
	}

	rows, err := s.db.QueryContext(ctx, selectColumns+`
		ORDER BY `+column+` `+direction+`, id `+direction)
	if err != nil {
		return nil, fmt.Errorf("query estimates: %w", err)
	}
	defer rows.Close()

	query := strings.ToLower(params.Query)
	estimates := make([]Estimate, 0)
	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan estimate: %w", err)
		}
		if !e.matches(query) {
			continue
		}
		estimates = append(estimates, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate estimates: %w", err)
	}

	return estimates, nil
}

// matches reports whether the lower-cased query is a substring of the lower-cased
// container label or creator. The query is literal text, never a pattern.
func (e Estimate) matches(query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.ContainerID), query) ||
		strings.Contains(strings.ToLower(e.CreatedBy), query)
}

func (s *SQLStore) Replace(ctx context.Context, e Estimate, expectedVersion int64) (Estimate, error) {
	productsJSON, err := json.Marshal(e.Products)
	if err != nil {
		return Estimate{}, fmt.Errorf("encode estimate products: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE estimates
		SET
			container_id = ?,
			updated_at = ?,
			total_cost = ?,
			margin_applied = ?,
			created_by = ?,
			role = ?,
			products_json = ?,
			version = version + 1
		WHERE id = ? AND version = ?
	`,
		e.ContainerID,
		e.UpdatedAt.UTC().Format(timeLayout),
		e.TotalCost,
		e.MarginApplied,
		e.CreatedBy,
		string(e.Role),
		string(productsJSON),
		e.ID,
		expectedVersion,
	)
	if err != nil {
		return Estimate{}, fmt.Errorf("update estimate: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return Estimate{}, fmt.Errorf("update estimate: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM estimates WHERE id = ?)`, e.ID).Scan(&exists); err != nil {
			return Estimate{}, fmt.Errorf("check estimate existence: %w", err)
		}
		if !exists {
			return Estimate{}, ErrNotFound
		}
		return Estimate{}, ErrVersionConflict
	}

	return s.Get(ctx, e.ID)
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM estimates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete estimate: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete estimate: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
