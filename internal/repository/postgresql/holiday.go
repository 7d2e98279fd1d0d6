package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aqlhr/aqlhr-backend-go/internal/domain/holiday"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const holidaySchema = `
	CREATE TABLE IF NOT EXISTS holidays (
		id          UUID PRIMARY KEY,
		company_id  TEXT NOT NULL,
		name        VARCHAR(150) NOT NULL,
		name_ar     VARCHAR(300) NOT NULL DEFAULT '',
		date        DATE NOT NULL,
		hijri_date  VARCHAR(64) NOT NULL DEFAULT '',
		category    VARCHAR(20) NOT NULL,
		recurring   BOOLEAN NOT NULL DEFAULT FALSE,
		built_in    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_company_date_name
		ON holidays(company_id, date, name);
	CREATE INDEX IF NOT EXISTS idx_holidays_company_date
		ON holidays(company_id, date);
`

const holidayColumns = `id::text, company_id, name, name_ar, date, hijri_date, category, recurring, built_in, created_at, updated_at`

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

// EnsureHolidaySchema creates the holidays table when it does not exist.
func EnsureHolidaySchema(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, holidaySchema); err != nil {
		return fmt.Errorf("failed to create holidays schema: %w", err)
	}
	return nil
}

func scanHoliday(row pgx.Row) (holiday.Holiday, error) {
	var h holiday.Holiday
	var category string
	err := row.Scan(
		&h.ID,
		&h.CompanyID,
		&h.Name,
		&h.NameAr,
		&h.Date,
		&h.HijriDate,
		&category,
		&h.Recurring,
		&h.BuiltIn,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	h.Category = holiday.Category(category)
	h.Date = h.Date.UTC()
	return h, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) Create(ctx context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return holiday.Holiday{}, fmt.Errorf("failed to generate holiday id: %w", err)
	}

	query := `
		INSERT INTO holidays (id, company_id, name, name_ar, date, hijri_date, category, recurring, built_in, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING ` + holidayColumns

	result, err := scanHoliday(q.QueryRow(ctx, query,
		id.String(), h.CompanyID, h.Name, h.NameAr, h.Date, h.HijriDate, string(h.Category), h.Recurring, h.BuiltIn,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return holiday.Holiday{}, holiday.ErrHolidayExists
		}
		return holiday.Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}

	return result, nil
}

// CreateMany inserts holidays in one transaction, skipping rows that already
// exist. It returns the number of rows inserted.
func (r *holidayRepositoryImpl) CreateMany(ctx context.Context, holidays []holiday.Holiday) (int, error) {
	query := `
		INSERT INTO holidays (id, company_id, name, name_ar, date, hijri_date, category, recurring, built_in, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (company_id, date, name) DO NOTHING
	`

	inserted := 0
	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)
		for _, h := range holidays {
			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("failed to generate holiday id: %w", err)
			}
			tag, err := q.Exec(ctx, query,
				id.String(), h.CompanyID, h.Name, h.NameAr, h.Date, h.HijriDate, string(h.Category), h.Recurring, h.BuiltIn,
			)
			if err != nil {
				return fmt.Errorf("failed to insert holiday %q: %w", h.Name, err)
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

// GetByID implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + holidayColumns + ` FROM holidays WHERE id = $1 AND company_id = $2`

	result, err := scanHoliday(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return holiday.Holiday{}, holiday.ErrHolidayNotFound
		}
		return holiday.Holiday{}, fmt.Errorf("failed to get holiday: %w", err)
	}

	return result, nil
}

// List implements holiday.HolidayRepository. Recurring holidays match every
// year.
func (r *holidayRepositoryImpl) List(ctx context.Context, companyID string, filter holiday.ListHolidaysRequest) ([]holiday.Holiday, error) {
	query := `SELECT ` + holidayColumns + ` FROM holidays WHERE company_id = $1`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.Year != 0 {
		query += fmt.Sprintf(" AND (recurring OR EXTRACT(YEAR FROM date) = $%d)", argIdx)
		args = append(args, filter.Year)
		argIdx++
	}
	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, string(filter.Category))
	}

	query += " ORDER BY date ASC, name ASC"

	return r.query(ctx, query, args...)
}

// GetByDateRange returns holidays dated within [from, to] plus every
// recurring holiday; callers place recurring ones in the range themselves.
func (r *holidayRepositoryImpl) GetByDateRange(ctx context.Context, companyID string, from, to time.Time) ([]holiday.Holiday, error) {
	query := `
		SELECT ` + holidayColumns + `
		FROM holidays
		WHERE company_id = $1
			AND (recurring OR (date >= $2 AND date <= $3))
		ORDER BY date ASC, name ASC
	`

	return r.query(ctx, query, companyID, from, to)
}

func (r *holidayRepositoryImpl) query(ctx context.Context, query string, args ...interface{}) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
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

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return holidays, nil
}

// Update implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) Update(ctx context.Context, h holiday.Holiday) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE holidays
		SET name = $1, name_ar = $2, date = $3, hijri_date = $4, category = $5, recurring = $6, updated_at = NOW()
		WHERE id = $7 AND company_id = $8
	`

	commandTag, err := q.Exec(ctx, query,
		h.Name, h.NameAr, h.Date, h.HijriDate, string(h.Category), h.Recurring, h.ID, h.CompanyID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return holiday.ErrHolidayExists
		}
		return fmt.Errorf("failed to update holiday: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return holiday.ErrHolidayNotFound
	}

	return nil
}

// Delete implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM holidays WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return holiday.ErrHolidayNotFound
	}

	return nil
}

// DeleteBuiltIn removes the seeded holidays of a company.
func (r *holidayRepositoryImpl) DeleteBuiltIn(ctx context.Context, companyID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM holidays WHERE company_id = $1 AND built_in`, companyID); err != nil {
		return fmt.Errorf("failed to delete built-in holidays: %w", err)
	}

	return nil
}
