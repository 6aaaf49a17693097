package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"spendlog/internal/core"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// sqliteTimeLayout is how SQLite renders CURRENT_TIMESTAMP.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// Store owns the SQLite database holding expenses, categories and budget
// limits. It holds a single exclusive handle; callers must provide their own
// synchronization if they share an instance across goroutines.
type Store struct {
	db     *sql.DB
	closed bool
}

// New opens or creates the database at dbPath and ensures the schema exists.
// Repeated opens against the same path are idempotent and never destroy
// existing records. Failures wrap core.ErrStorageUnavailable.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: create db directory: %v", core.ErrStorageUnavailable, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite database: %v", core.ErrStorageUnavailable, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %v", core.ErrStorageUnavailable, err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: run migrations: %v", core.ErrStorageUnavailable, err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle. It is a no-op when the store was
// already closed or never opened.
func (s *Store) Close() error {
	if s.db == nil || s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) ready() error {
	if s.db == nil || s.closed {
		return core.ErrStoreClosed
	}
	return nil
}

// AddExpense inserts one expense row and returns its assigned id. The
// identifier and creation timestamp are assigned by the database. An empty
// payment method defaults to "Cash"; empty date or category are stored as
// NULL and rejected by the schema's NOT NULL constraints, surfacing as
// core.ErrConstraint. No other client-side validation is performed.
func (s *Store) AddExpense(ctx context.Context, e core.Expense) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	paymentMethod := e.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = core.DefaultPaymentMethod
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (date, category, description, amount, payment_method)
		VALUES (NULLIF(?, ''), NULLIF(?, ''), ?, ?, ?)`,
		e.Date, e.Category, e.Description, e.Amount, paymentMethod)
	if err != nil {
		err = classify(err)
		slog.ErrorContext(ctx, "Failed to add expense",
			"date", e.Date,
			"category", e.Category,
			"error", err)
		return 0, fmt.Errorf("add expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"date", e.Date,
		"category", e.Category,
		"amount", e.Amount)

	return id, nil
}

// ExpensesByCategory returns every expense whose category exactly equals the
// input, ordered by date descending. Dates are compared as stored text, so
// the order is chronological only for uniformly YYYY-MM-DD values. A category
// with no expenses yields an empty slice.
func (s *Store) ExpensesByCategory(ctx context.Context, category string) ([]core.Expense, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, category, description, amount, payment_method, created_at
		FROM expenses
		WHERE category = ?
		ORDER BY date DESC`,
		category)
	if err != nil {
		return nil, fmt.Errorf("query expenses by category: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		var (
			e             core.Expense
			description   sql.NullString
			paymentMethod sql.NullString
			createdAt     sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Date, &e.Category, &description, &e.Amount, &paymentMethod, &createdAt); err != nil {
			return nil, fmt.Errorf("scan expense row: %w", err)
		}
		e.Description = description.String
		e.PaymentMethod = paymentMethod.String
		if createdAt.Valid {
			if ts, err := time.Parse(sqliteTimeLayout, createdAt.String); err == nil {
				e.CreatedAt = ts
			}
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense rows: %w", err)
	}

	return expenses, nil
}

// MonthlySummary returns the total spent per category for the given YYYY-MM
// month. Categories without expenses in that month are absent from the map.
// The match is on the literal YYYY-MM prefix of the stored date, so rows
// whose date is not in YYYY-MM-DD form never contribute to any month.
func (s *Store) MonthlySummary(ctx context.Context, month string) (map[string]float64, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if !core.ValidMonthKey(month) {
		return nil, fmt.Errorf("month %q: %w", month, core.ErrInvalidMonth)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, SUM(amount)
		FROM expenses
		WHERE substr(date, 1, 7) = ?
		GROUP BY category`,
		month)
	if err != nil {
		return nil, fmt.Errorf("query monthly summary: %w", err)
	}
	defer rows.Close()

	summary := map[string]float64{}
	for rows.Next() {
		var (
			category string
			total    float64
		)
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		summary[category] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}

	return summary, nil
}

// AddCategory inserts one category. Names are unique; a duplicate or empty
// name surfaces as core.ErrConstraint.
func (s *Store) AddCategory(ctx context.Context, name, description string) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (name, description)
		VALUES (NULLIF(?, ''), ?)`,
		name, description)
	if err != nil {
		return 0, fmt.Errorf("add category: %w", classify(err))
	}

	return res.LastInsertId()
}

// Categories returns all categories ordered by name.
func (s *Store) Categories(ctx context.Context) ([]core.Category, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description
		FROM categories
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		var (
			c           core.Category
			description sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &description); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		c.Description = description.String
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return categories, nil
}

// SetBudgetLimit records a spending cap for a category in a YYYY-MM month.
// The cap is stored only; nothing in this system enforces it.
func (s *Store) SetBudgetLimit(ctx context.Context, category string, limit float64, month string) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	if !core.ValidMonthKey(month) {
		return 0, fmt.Errorf("month %q: %w", month, core.ErrInvalidMonth)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO budget (category, limit_amount, month)
		VALUES (NULLIF(?, ''), ?, ?)`,
		category, limit, month)
	if err != nil {
		return 0, fmt.Errorf("set budget limit: %w", classify(err))
	}

	return res.LastInsertId()
}

// BudgetLimits returns the budget rows for a YYYY-MM month, ordered by
// category.
func (s *Store) BudgetLimits(ctx context.Context, month string) ([]core.BudgetLimit, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if !core.ValidMonthKey(month) {
		return nil, fmt.Errorf("month %q: %w", month, core.ErrInvalidMonth)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, limit_amount, month
		FROM budget
		WHERE month = ?
		ORDER BY category`,
		month)
	if err != nil {
		return nil, fmt.Errorf("query budget limits: %w", err)
	}
	defer rows.Close()

	limits := []core.BudgetLimit{}
	for rows.Next() {
		var b core.BudgetLimit
		if err := rows.Scan(&b.ID, &b.Category, &b.Limit, &b.Month); err != nil {
			return nil, fmt.Errorf("scan budget row: %w", err)
		}
		limits = append(limits, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budget rows: %w", err)
	}

	return limits, nil
}

// classify maps driver errors onto the store's error kinds so callers can
// distinguish constraint violations from other failures with errors.Is.
func classify(err error) error {
	var serr *sqlite.Error
	if errors.As(err, &serr) && serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%w: %v", core.ErrConstraint, err)
	}
	return err
}
