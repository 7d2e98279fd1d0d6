// Package sqlite stores holidays in SQLite for development and single-node
// deployments. The schema is created on construction.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aqlhr/aqlhr-backend-go/internal/domain/holiday"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339Nano
)

const holidaySchema = `
	CREATE TABLE IF NOT EXISTS holidays (
		id          TEXT PRIMARY KEY,
		company_id  TEXT NOT NULL,
		name        TEXT NOT NULL,
		name_ar     TEXT NOT NULL DEFAULT '',
		date        TEXT NOT NULL,
		hijri_date  TEXT NOT NULL DEFAULT '',
		category    TEXT NOT NULL,
		recurring   INTEGER NOT NULL DEFAULT 0,
		built_in    INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_company_date_name
		ON holidays(company_id, date, name);
	CREATE INDEX IF NOT EXISTS idx_holidays_company_date
		ON holidays(company_id, date);
`

const holidayColumns = `id, company_id, name, name_ar, date, hijri_date, category, recurring, built_in, created_at, updated_at`

type holidayRepositoryImpl struct {
	db  *sql.DB
	now func() time.Time
}

// NewHolidayRepository migrates the schema and returns the repository.
func NewHolidayRepository(ctx context.Context, db *sql.DB) (holiday.HolidayRepository, error) {
	if _, err := db.ExecContext(ctx, holidaySchema); err != nil {
		return nil, fmt.Errorf("failed to create holidays schema: %w", err)
	}
	return &holidayRepositoryImpl{db: db, now: time.Now}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHoliday(row scanner) (holiday.Holiday, error) {
	var (
		h                    holiday.Holiday
		date, category       string
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&h.ID,
		&h.CompanyID,
		&h.Name,
		&h.NameAr,
		&date,
		&h.HijriDate,
		&category,
		&h.Recurring,
		&h.BuiltIn,
		&createdAt,
		&updatedAt,
	); err != nil {
		return holiday.Holiday{}, err
	}

	var err error
	if h.Date, err = time.Parse(dateLayout, date); err != nil {
		return holiday.Holiday{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	if h.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return holiday.Holiday{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if h.UpdatedAt, err = time.Parse(timestampLayout, updatedAt); err != nil {
		return holiday.Holiday{}, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
	}
	h.Category = holiday.Category(category)

	return h, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func (r *holidayRepositoryImpl) timestamp() string {
	return r.now().UTC().Format(timestampLayout)
}

// Create implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) Create(ctx context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return holiday.Holiday{}, fmt.Errorf("failed to generate holiday id: %w", err)
	}
	now := r.timestamp()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO holidays (`+holidayColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), h.CompanyID, h.Name, h.NameAr, h.Date.Format(dateLayout), h.HijriDate,
		string(h.Category), h.Recurring, h.BuiltIn, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return holiday.Holiday{}, holiday.ErrHolidayExists
		}
		return holiday.Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}

	return r.GetByID(ctx, id.String(), h.CompanyID)
}

// CreateMany inserts holidays in one transaction, skipping rows that already
// exist.
func (r *holidayRepositoryImpl) CreateMany(ctx context.Context, holidays []holiday.Holiday) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO holidays (`+holidayColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := r.timestamp()
	inserted := 0
	for _, h := range holidays {
		id, err := uuid.NewV7()
		if err != nil {
			return 0, fmt.Errorf("failed to generate holiday id: %w", err)
		}
		res, err := stmt.ExecContext(ctx,
			id.String(), h.CompanyID, h.Name, h.NameAr, h.Date.Format(dateLayout), h.HijriDate,
			string(h.Category), h.Recurring, h.BuiltIn, now, now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert holiday %q: %w", h.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return inserted, nil
}

// GetByID implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (holiday.Holiday, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+holidayColumns+` FROM holidays WHERE id = ? AND company_id = ?`, id, companyID)

	h, err := scanHoliday(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return holiday.Holiday{}, holiday.ErrHolidayNotFound
		}
		return holiday.Holiday{}, fmt.Errorf("failed to get holiday: %w", err)
	}
	return h, nil
}

// List implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) List(ctx context.Context, companyID string, filter holiday.ListHolidaysRequest) ([]holiday.Holiday, error) {
	query := `SELECT ` + holidayColumns + ` FROM holidays WHERE company_id = ?`
	args := []any{companyID}

	if filter.Year != 0 {
		query += ` AND (recurring = 1 OR substr(date, 1, 4) = ?)`
		args = append(args, fmt.Sprintf("%04d", filter.Year))
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, string(filter.Category))
	}
	query += ` ORDER BY date ASC, name ASC`

	return r.query(ctx, query, args...)
}

// GetByDateRange returns holidays dated within [from, to] plus every
// recurring holiday.
func (r *holidayRepositoryImpl) GetByDateRange(ctx context.Context, companyID string, from, to time.Time) ([]holiday.Holiday, error) {
	return r.query(ctx, `
		SELECT `+holidayColumns+`
		FROM holidays
		WHERE company_id = ?
			AND (recurring = 1 OR (date >= ? AND date <= ?))
		ORDER BY date ASC, name ASC`,
		companyID, from.Format(dateLayout), to.Format(dateLayout),
	)
}

func (r *holidayRepositoryImpl) query(ctx context.Context, query string, args ...any) ([]holiday.Holiday, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get holidays: %w", err)
	}
	defer rows.Close()

	holidays := []holiday.Holiday{}
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return holidays, nil
}

// Update implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) Update(ctx context.Context, h holiday.Holiday) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE holidays
		SET name = ?, name_ar = ?, date = ?, hijri_date = ?, category = ?, recurring = ?, updated_at = ?
		WHERE id = ? AND company_id = ?`,
		h.Name, h.NameAr, h.Date.Format(dateLayout), h.HijriDate, string(h.Category), h.Recurring,
		r.timestamp(), h.ID, h.CompanyID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return holiday.ErrHolidayExists
		}
		return fmt.Errorf("failed to update holiday: %w", err)
	}
	return requireAffected(res)
}

// Delete implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) Delete(ctx context.Context, id string, companyID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = ? AND company_id = ?`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	return requireAffected(res)
}

// DeleteBuiltIn removes the seeded holidays of a company.
func (r *holidayRepositoryImpl) DeleteBuiltIn(ctx context.Context, companyID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM holidays WHERE company_id = ? AND built_in = 1`, companyID); err != nil {
		return fmt.Errorf("failed to delete built-in holidays: %w", err)
	}
	return nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return holiday.ErrHolidayNotFound
	}
	return nil
}
