// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/opensource-finance/bce/internal/domain"
)

var (
	ErrNotFound     = domain.ErrNotFound
	ErrInvalidInput = domain.ErrInvalidInput
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveExceptionItem stores or replaces every sequence of an item.
func (r *SQLRepository) SaveExceptionItem(ctx context.Context, tenantID string, item *domain.ExceptionItem) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}
	if item == nil || item.ItemNo <= 0 {
		return fmt.Errorf("%w: itemNo is required", ErrInvalidInput)
	}

	seqs, err := json.Marshal(item.Sequences)
	if err != nil {
		return fmt.Errorf("failed to encode sequences of item %d: %w", item.ItemNo, err)
	}

	item.UpdatedAt = time.Now().UTC()

	query := `
		INSERT INTO exception_items (tenant_id, item_no, carrier, sequences, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, item_no) DO UPDATE SET
			carrier = excluded.carrier,
			sequences = excluded.sequences,
			updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, r.rebind(query),
		tenantID, item.ItemNo, item.Carrier, string(seqs), item.UpdatedAt,
	)
	return err
}

// GetExceptionItem retrieves an item with tenant isolation.
func (r *SQLRepository) GetExceptionItem(ctx context.Context, tenantID string, itemNo int) (*domain.ExceptionItem, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT item_no, carrier, sequences, updated_at
		FROM exception_items
		WHERE tenant_id = ? AND item_no = ?
	`

	var item domain.ExceptionItem
	var seqs string

	err := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, itemNo).Scan(
		&item.ItemNo, &item.Carrier, &seqs, &item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(seqs), &item.Sequences); err != nil {
		return nil, fmt.Errorf("failed to parse sequences of item %d: %w", itemNo, err)
	}

	return &item, nil
}

// SaveRBDCabins upserts booking code to cabin rows in one transaction.
func (r *SQLRepository) SaveRBDCabins(ctx context.Context, tenantID string, rows []domain.RBDCabin) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := r.rebind(`
		INSERT INTO rbd_cabins (tenant_id, carrier, booking_code, cabin, eff_date, disc_date)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, carrier, booking_code, eff_date) DO UPDATE SET
			cabin = excluded.cabin,
			disc_date = excluded.disc_date
	`)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, row := range rows {
		if row.Carrier == "" || row.BookingCode == "" {
			return fmt.Errorf("%w: row %d needs carrier and bookingCode", ErrInvalidInput, i)
		}
		if !row.Cabin.IsValid() {
			return fmt.Errorf("%w: row %d has an invalid cabin", ErrInvalidInput, i)
		}
		if _, err := tx.ExecContext(ctx, query,
			tenantID, row.Carrier, row.BookingCode, int(row.Cabin),
			row.EffDate.UTC(), row.DiscDate.UTC(),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListRBDCabins retrieves every cabin mapping of a tenant.
func (r *SQLRepository) ListRBDCabins(ctx context.Context, tenantID string) ([]domain.RBDCabin, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT carrier, booking_code, cabin, eff_date, disc_date
		FROM rbd_cabins
		WHERE tenant_id = ?
		ORDER BY carrier, booking_code, eff_date
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RBDCabin
	for rows.Next() {
		var row domain.RBDCabin
		var cabin int

		if err := rows.Scan(&row.Carrier, &row.BookingCode, &cabin, &row.EffDate, &row.DiscDate); err != nil {
			return nil, err
		}
		row.Cabin = domain.CabinType(cabin)
		out = append(out, row)
	}

	return out, rows.Err()
}

// SaveTSIDefinition stores a travel segment indicator with tenant isolation.
func (r *SQLRepository) SaveTSIDefinition(ctx context.Context, tenantID string, def *domain.TSIDefinition) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}
	if def == nil || def.ID <= 0 || strings.TrimSpace(def.Expression) == "" {
		return fmt.Errorf("%w: tsi id and expression are required", ErrInvalidInput)
	}

	name := def.Name
	if name == "" {
		name = "TSI " + strconv.Itoa(def.ID)
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO tsi_definitions (
			tenant_id, id, name, description, expression, arrival, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			expression = excluded.expression,
			arrival = excluded.arrival,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		tenantID, def.ID, name, def.Description, def.Expression,
		boolInt(def.Arrival), boolInt(def.Enabled), now, now,
	)
	return err
}

// ListTSIDefinitions retrieves all enabled travel segment indicators.
func (r *SQLRepository) ListTSIDefinitions(ctx context.Context, tenantID string) ([]*domain.TSIDefinition, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, name, description, expression, arrival, enabled
		FROM tsi_definitions
		WHERE tenant_id = ? AND enabled = 1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []*domain.TSIDefinition
	for rows.Next() {
		var def domain.TSIDefinition
		var description sql.NullString
		var arrival, enabled int

		if err := rows.Scan(
			&def.ID, &def.TenantID, &def.Name, &description,
			&def.Expression, &arrival, &enabled,
		); err != nil {
			return nil, err
		}

		def.Description = description.String
		def.Arrival = arrival == 1
		def.Enabled = enabled == 1
		defs = append(defs, &def)
	}

	return defs, rows.Err()
}

// SaveZone stores or replaces a user zone.
func (r *SQLRepository) SaveZone(ctx context.Context, tenantID string, zone *domain.Zone) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}
	if zone == nil || zone.Zone == "" {
		return fmt.Errorf("%w: zone is required", ErrInvalidInput)
	}

	locations, err := json.Marshal(zone.Locations)
	if err != nil {
		return fmt.Errorf("failed to encode zone %s: %w", zone.Zone, err)
	}

	query := `
		INSERT INTO zones (tenant_id, zone, locations, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(tenant_id, zone) DO UPDATE SET
			locations = excluded.locations,
			updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, r.rebind(query),
		tenantID, zone.Zone, string(locations), time.Now().UTC(),
	)
	return err
}

// ListZones retrieves every zone of a tenant.
func (r *SQLRepository) ListZones(ctx context.Context, tenantID string) ([]*domain.Zone, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT zone, locations
		FROM zones
		WHERE tenant_id = ?
		ORDER BY zone
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []*domain.Zone
	for rows.Next() {
		var z domain.Zone
		var locations string

		if err := rows.Scan(&z.Zone, &locations); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(locations), &z.Locations); err != nil {
			return nil, fmt.Errorf("failed to parse zone %s: %w", z.Zone, err)
		}
		zones = append(zones, &z)
	}

	return zones, rows.Err()
}

// SaveVerdict stores a validation verdict with tenant isolation.
func (r *SQLRepository) SaveVerdict(ctx context.Context, tenantID string, v *domain.Verdict) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}
	if v == nil || v.ID == "" {
		return fmt.Errorf("%w: verdict id is required", ErrInvalidInput)
	}

	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode verdict %s: %w", v.ID, err)
	}

	query := `
		INSERT INTO verdicts (
			id, tenant_id, request_id, item_no, fare_id, status, applied, timestamp, body
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, r.rebind(query),
		v.ID, tenantID, v.RequestID, v.ItemNo, v.FareID,
		v.Status, boolInt(v.Applied), v.Timestamp, string(body),
	)
	return err
}

// GetVerdict retrieves a verdict by ID with tenant isolation.
func (r *SQLRepository) GetVerdict(ctx context.Context, tenantID string, verdictID string) (*domain.Verdict, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT body
		FROM verdicts
		WHERE tenant_id = ? AND id = ?
	`

	var body string
	err := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, verdictID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var v domain.Verdict
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return nil, fmt.Errorf("failed to parse verdict %s: %w", verdictID, err)
	}
	v.TenantID = tenantID

	return &v, nil
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
