package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/models"
)

type ExpenseRepository struct {
	db *pgxpool.Pool
}

// NewExpenseRepository создает репозиторий расходов.
func NewExpenseRepository(db *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create создает расход в вехе пользователя. Вторым значением
// возвращается идентификатор мечты для пересчета метрик.
func (r *ExpenseRepository) Create(ctx context.Context, userID, milestoneID uuid.UUID, title string, amountCents int64, status models.ExpenseStatus, dueDate *time.Time, paidBy *uuid.UUID) (models.Expense, uuid.UUID, error) {
	var expense models.Expense
	var dreamID uuid.UUID

	if amountCents < 0 {
		return expense, dreamID, ErrInvalid
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO expenses (id, milestone_id, title, amount_cents, status, due_date, paid_by)
		 SELECT $1, m.id, $3, $4, $5, $6, $7
		 FROM milestones m
		 JOIN dreams d ON d.id = m.dream_id
		 WHERE m.id = $2 AND d.user_id = $8
		 RETURNING id, milestone_id, title, amount_cents, status, due_date, paid_by, created_at, updated_at,
		           (SELECT dream_id FROM milestones WHERE id = $2)`,
		uuid.New(), milestoneID, title, amountCents, status, dueDate, paidBy, userID,
	).Scan(&expense.ID, &expense.MilestoneID, &expense.Title, &expense.AmountCents, &expense.Status, &expense.DueDate, &expense.PaidBy, &expense.CreatedAt, &expense.UpdatedAt, &dreamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return expense, dreamID, ErrNotFound
		}
		return expense, dreamID, err
	}

	return expense, dreamID, nil
}

// UpdateStatus меняет статус расхода.
func (r *ExpenseRepository) UpdateStatus(ctx context.Context, userID, expenseID uuid.UUID, status models.ExpenseStatus) (models.Expense, uuid.UUID, error) {
	var expense models.Expense
	var dreamID uuid.UUID

	err := r.db.QueryRow(ctx,
		`UPDATE expenses e
		 SET status = $3, updated_at = NOW()
		 FROM milestones m
		 JOIN dreams d ON d.id = m.dream_id
		 WHERE e.id = $1 AND m.id = e.milestone_id AND d.user_id = $2
		 RETURNING e.id, e.milestone_id, e.title, e.amount_cents, e.status, e.due_date, e.paid_by, e.created_at, e.updated_at, d.id`,
		expenseID, userID, status,
	).Scan(&expense.ID, &expense.MilestoneID, &expense.Title, &expense.AmountCents, &expense.Status, &expense.DueDate, &expense.PaidBy, &expense.CreatedAt, &expense.UpdatedAt, &dreamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return expense, dreamID, ErrNotFound
		}
		return expense, dreamID, err
	}

	return expense, dreamID, nil
}

// Delete удаляет расход.
func (r *ExpenseRepository) Delete(ctx context.Context, userID, expenseID uuid.UUID) (uuid.UUID, error) {
	var dreamID uuid.UUID

	err := r.db.QueryRow(ctx,
		`DELETE FROM expenses e
		 USING milestones m, dreams d
		 WHERE e.id = $1 AND m.id = e.milestone_id AND d.id = m.dream_id AND d.user_id = $2
		 RETURNING m.dream_id`,
		expenseID, userID,
	).Scan(&dreamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dreamID, ErrNotFound
		}
		return dreamID, err
	}

	return dreamID, nil
}
