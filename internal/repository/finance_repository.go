package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
)

const financeColumns = `id, student_id, academic_year, total_fee, scholarship_discount, final_payable_fee, paid_amount, pending_amount, created_at, updated_at`

// LedgerMutation changes a locked ledger row and returns the transactions to append.
// tx is the open database transaction so callers can persist related rows atomically.
type LedgerMutation func(ctx context.Context, tx sqlx.ExtContext, ledger *models.Finance) ([]models.FinanceTransaction, error)

// FinanceRepository persists fee ledgers and their append-only transactions.
type FinanceRepository struct {
	db *sqlx.DB
}

// NewFinanceRepository constructs the repository.
func NewFinanceRepository(db *sqlx.DB) *FinanceRepository {
	return &FinanceRepository{db: db}
}

// Mutate runs fn against the ledger row of (studentID, academicYear) while holding
// a row lock. When create is true a zero ledger is inserted first if none exists;
// otherwise a missing ledger yields sql.ErrNoRows.
func (r *FinanceRepository) Mutate(ctx context.Context, studentID, academicYear string, create bool, fn LedgerMutation) (*models.Finance, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin ledger tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if create {
		const insert = `INSERT INTO finances (id, student_id, academic_year, total_fee, scholarship_discount, final_payable_fee, paid_amount, pending_amount, created_at, updated_at)
VALUES ($1, $2, $3, 0, 0, 0, 0, 0, $4, $4)
ON CONFLICT (student_id, academic_year) DO NOTHING`
		if _, err := tx.ExecContext(ctx, insert, uuid.NewString(), studentID, academicYear, now); err != nil {
			return nil, fmt.Errorf("ensure ledger: %w", err)
		}
	}

	var ledger models.Finance
	lock := `SELECT ` + financeColumns + ` FROM finances WHERE student_id = $1 AND academic_year = $2 FOR UPDATE`
	if err := tx.GetContext(ctx, &ledger, lock, studentID, academicYear); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock ledger: %w", err)
	}

	entries, err := fn(ctx, tx, &ledger)
	if err != nil {
		return nil, err
	}

	ledger.UpdatedAt = now
	const update = `UPDATE finances SET total_fee = :total_fee, scholarship_discount = :scholarship_discount, final_payable_fee = :final_payable_fee,
paid_amount = :paid_amount, pending_amount = :pending_amount, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, update, &ledger); err != nil {
		return nil, fmt.Errorf("update ledger: %w", err)
	}

	const insertEntry = `INSERT INTO finance_transactions (id, finance_id, type, amount, date, description, reference, created_by)
VALUES (:id, :finance_id, :type, :amount, :date, :description, :reference, :created_by)`
	for i := range entries {
		entry := &entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		entry.FinanceID = ledger.ID
		if entry.Date.IsZero() {
			entry.Date = now
		}
		if _, err := tx.NamedExecContext(ctx, insertEntry, entry); err != nil {
			return nil, fmt.Errorf("append ledger transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit ledger tx: %w", err)
	}
	committed = true
	ledger.Transactions = entries
	return &ledger, nil
}

// Get returns the ledger for a student and academic year.
func (r *FinanceRepository) Get(ctx context.Context, studentID, academicYear string) (*models.Finance, error) {
	query := `SELECT ` + financeColumns + ` FROM finances WHERE student_id = $1 AND academic_year = $2`
	var ledger models.Finance
	if err := r.db.GetContext(ctx, &ledger, query, studentID, academicYear); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get ledger: %w", err)
	}
	return &ledger, nil
}

// List returns ledgers matching the filter.
func (r *FinanceRepository) List(ctx context.Context, filter models.FinanceFilter) ([]models.Finance, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.PendingOnly {
		conditions = append(conditions, "pending_amount > 0")
	}
	where := strings.Join(conditions, " AND ")
	limit, offset := pageWindow(filter.Page, filter.PageSize, 20, 100)

	query := fmt.Sprintf("SELECT %s FROM finances WHERE %s ORDER BY academic_year DESC, updated_at DESC LIMIT %d OFFSET %d", financeColumns, where, limit, offset)
	var ledgers []models.Finance
	if err := r.db.SelectContext(ctx, &ledgers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list ledgers: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM finances WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count ledgers: %w", err)
	}
	return ledgers, total, nil
}

// ListTransactions returns the append-only history of a ledger in insertion order.
func (r *FinanceRepository) ListTransactions(ctx context.Context, financeID string) ([]models.FinanceTransaction, error) {
	const query = `SELECT id, finance_id, type, amount, date, description, reference, created_by FROM finance_transactions WHERE finance_id = $1 ORDER BY date ASC, id ASC`
	var entries []models.FinanceTransaction
	if err := r.db.SelectContext(ctx, &entries, query, financeID); err != nil {
		return nil, fmt.Errorf("list ledger transactions: %w", err)
	}
	return entries, nil
}
