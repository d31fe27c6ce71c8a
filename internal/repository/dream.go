package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/insights"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/models"
)

type DreamRepository struct {
	db *pgxpool.Pool
}

// NewDreamRepository создает репозиторий мечт.
func NewDreamRepository(db *pgxpool.Pool) *DreamRepository {
	return &DreamRepository{db: db}
}

// Create создает мечту пользователя.
func (r *DreamRepository) Create(ctx context.Context, userID uuid.UUID, title string, description *string, targetDate *time.Time, budgetCents *int64) (models.Dream, error) {
	var dream models.Dream

	err := r.db.QueryRow(ctx,
		`INSERT INTO dreams (id, user_id, title, description, target_date, budget_cents)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, user_id, title, description, target_date, budget_cents, is_completed, created_at, updated_at`,
		uuid.New(), userID, title, description, targetDate, budgetCents,
	).Scan(&dream.ID, &dream.UserID, &dream.Title, &dream.Description, &dream.TargetDate, &dream.BudgetCents, &dream.IsCompleted, &dream.CreatedAt, &dream.UpdatedAt)
	if err != nil {
		return dream, err
	}

	return dream, nil
}

// ListByUser возвращает мечты пользователя в порядке создания.
func (r *DreamRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Dream, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, title, description, target_date, budget_cents, is_completed, created_at, updated_at
		 FROM dreams
		 WHERE user_id = $1
		 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dreams := make([]models.Dream, 0)
	for rows.Next() {
		var dream models.Dream
		err := rows.Scan(&dream.ID, &dream.UserID, &dream.Title, &dream.Description, &dream.TargetDate, &dream.BudgetCents, &dream.IsCompleted, &dream.CreatedAt, &dream.UpdatedAt)
		if err != nil {
			return nil, err
		}
		dreams = append(dreams, dream)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return dreams, nil
}

// GetByID возвращает мечту пользователя по идентификатору.
func (r *DreamRepository) GetByID(ctx context.Context, userID, dreamID uuid.UUID) (models.Dream, error) {
	var dream models.Dream

	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, title, description, target_date, budget_cents, is_completed, created_at, updated_at
		 FROM dreams
		 WHERE id = $1 AND user_id = $2`,
		dreamID, userID,
	).Scan(&dream.ID, &dream.UserID, &dream.Title, &dream.Description, &dream.TargetDate, &dream.BudgetCents, &dream.IsCompleted, &dream.CreatedAt, &dream.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dream, ErrNotFound
		}
		return dream, err
	}

	return dream, nil
}

// Update изменяет мечту.
func (r *DreamRepository) Update(ctx context.Context, userID, dreamID uuid.UUID, title string, description *string, targetDate *time.Time, budgetCents *int64) (models.Dream, error) {
	var dream models.Dream

	err := r.db.QueryRow(ctx,
		`UPDATE dreams
		 SET title = $3, description = $4, target_date = $5, budget_cents = $6, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, title, description, target_date, budget_cents, is_completed, created_at, updated_at`,
		dreamID, userID, title, description, targetDate, budgetCents,
	).Scan(&dream.ID, &dream.UserID, &dream.Title, &dream.Description, &dream.TargetDate, &dream.BudgetCents, &dream.IsCompleted, &dream.CreatedAt, &dream.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dream, ErrNotFound
		}
		return dream, err
	}

	return dream, nil
}

// SetCompleted выставляет флаг завершения мечты.
func (r *DreamRepository) SetCompleted(ctx context.Context, userID, dreamID uuid.UUID, completed bool) (models.Dream, error) {
	var dream models.Dream

	err := r.db.QueryRow(ctx,
		`UPDATE dreams
		 SET is_completed = $3, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, title, description, target_date, budget_cents, is_completed, created_at, updated_at`,
		dreamID, userID, completed,
	).Scan(&dream.ID, &dream.UserID, &dream.Title, &dream.Description, &dream.TargetDate, &dream.BudgetCents, &dream.IsCompleted, &dream.CreatedAt, &dream.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dream, ErrNotFound
		}
		return dream, err
	}

	return dream, nil
}

// Delete удаляет мечту со всеми вехами, задачами и расходами (каскад в
// схеме БД).
func (r *DreamRepository) Delete(ctx context.Context, userID, dreamID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM dreams WHERE id = $1 AND user_id = $2`,
		dreamID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Snapshot собирает полный срез мечты для расчета метрик.
func (r *DreamRepository) Snapshot(ctx context.Context, userID, dreamID uuid.UUID) (insights.DreamSnapshot, error) {
	dream, err := r.GetByID(ctx, userID, dreamID)
	if err != nil {
		return insights.DreamSnapshot{}, err
	}

	milestones, err := r.milestonesByDream(ctx, dreamID)
	if err != nil {
		return insights.DreamSnapshot{}, err
	}

	tasks, err := r.tasksByDream(ctx, dreamID)
	if err != nil {
		return insights.DreamSnapshot{}, err
	}

	expenses, err := r.expensesByDream(ctx, dreamID)
	if err != nil {
		return insights.DreamSnapshot{}, err
	}

	return assembleSnapshot(dream, milestones, tasks, expenses), nil
}

// SnapshotsByUser собирает срезы всех мечт пользователя для портфельных
// метрик. Данные выбираются четырьмя запросами, без N+1.
func (r *DreamRepository) SnapshotsByUser(ctx context.Context, userID uuid.UUID) ([]insights.DreamSnapshot, error) {
	dreams, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(dreams) == 0 {
		return []insights.DreamSnapshot{}, nil
	}

	milestones, err := r.milestonesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	tasks, err := r.tasksByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	expenses, err := r.expensesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	milestonesByDream := make(map[uuid.UUID][]models.Milestone)
	for _, m := range milestones {
		milestonesByDream[m.DreamID] = append(milestonesByDream[m.DreamID], m)
	}

	snapshots := make([]insights.DreamSnapshot, 0, len(dreams))
	for _, dream := range dreams {
		snapshots = append(snapshots, assembleSnapshot(dream, milestonesByDream[dream.ID], tasks, expenses))
	}

	return snapshots, nil
}

func (r *DreamRepository) milestonesByDream(ctx context.Context, dreamID uuid.UUID) ([]models.Milestone, error) {
	return r.queryMilestones(ctx,
		`SELECT id, dream_id, title, target_date, budget_cents, is_completed, phases, sort_order, created_at, updated_at
		 FROM milestones
		 WHERE dream_id = $1
		 ORDER BY sort_order, created_at`,
		dreamID,
	)
}

func (r *DreamRepository) milestonesByUser(ctx context.Context, userID uuid.UUID) ([]models.Milestone, error) {
	return r.queryMilestones(ctx,
		`SELECT m.id, m.dream_id, m.title, m.target_date, m.budget_cents, m.is_completed, m.phases, m.sort_order, m.created_at, m.updated_at
		 FROM milestones m
		 JOIN dreams d ON d.id = m.dream_id
		 WHERE d.user_id = $1
		 ORDER BY m.sort_order, m.created_at`,
		userID,
	)
}

func (r *DreamRepository) queryMilestones(ctx context.Context, query string, arg any) ([]models.Milestone, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	milestones := make([]models.Milestone, 0)
	for rows.Next() {
		milestone, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, milestone)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return milestones, nil
}

func (r *DreamRepository) tasksByDream(ctx context.Context, dreamID uuid.UUID) ([]models.Task, error) {
	return r.queryTasks(ctx,
		`SELECT t.id, t.milestone_id, t.title, t.is_completed, t.completed_at, t.due_date, t.assignee_id, t.phase_index, t.created_at, t.updated_at
		 FROM tasks t
		 JOIN milestones m ON m.id = t.milestone_id
		 WHERE m.dream_id = $1
		 ORDER BY t.created_at`,
		dreamID,
	)
}

func (r *DreamRepository) tasksByUser(ctx context.Context, userID uuid.UUID) ([]models.Task, error) {
	return r.queryTasks(ctx,
		`SELECT t.id, t.milestone_id, t.title, t.is_completed, t.completed_at, t.due_date, t.assignee_id, t.phase_index, t.created_at, t.updated_at
		 FROM tasks t
		 JOIN milestones m ON m.id = t.milestone_id
		 JOIN dreams d ON d.id = m.dream_id
		 WHERE d.user_id = $1
		 ORDER BY t.created_at`,
		userID,
	)
}

func (r *DreamRepository) queryTasks(ctx context.Context, query string, arg any) ([]models.Task, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var task models.Task
		err := rows.Scan(&task.ID, &task.MilestoneID, &task.Title, &task.IsCompleted, &task.CompletedAt, &task.DueDate, &task.AssigneeID, &task.PhaseIndex, &task.CreatedAt, &task.UpdatedAt)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *DreamRepository) expensesByDream(ctx context.Context, dreamID uuid.UUID) ([]models.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT e.id, e.milestone_id, e.title, e.amount_cents, e.status, e.due_date, e.paid_by, e.created_at, e.updated_at
		 FROM expenses e
		 JOIN milestones m ON m.id = e.milestone_id
		 WHERE m.dream_id = $1
		 ORDER BY e.created_at`,
		dreamID,
	)
}

func (r *DreamRepository) expensesByUser(ctx context.Context, userID uuid.UUID) ([]models.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT e.id, e.milestone_id, e.title, e.amount_cents, e.status, e.due_date, e.paid_by, e.created_at, e.updated_at
		 FROM expenses e
		 JOIN milestones m ON m.id = e.milestone_id
		 JOIN dreams d ON d.id = m.dream_id
		 WHERE d.user_id = $1
		 ORDER BY e.created_at`,
		userID,
	)
}

func (r *DreamRepository) queryExpenses(ctx context.Context, query string, arg any) ([]models.Expense, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		var expense models.Expense
		err := rows.Scan(&expense.ID, &expense.MilestoneID, &expense.Title, &expense.AmountCents, &expense.Status, &expense.DueDate, &expense.PaidBy, &expense.CreatedAt, &expense.UpdatedAt)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return expenses, nil
}

func scanMilestone(rows pgx.Rows) (models.Milestone, error) {
	var milestone models.Milestone
	var phasesJSON []byte

	err := rows.Scan(&milestone.ID, &milestone.DreamID, &milestone.Title, &milestone.TargetDate, &milestone.BudgetCents, &milestone.IsCompleted, &phasesJSON, &milestone.SortOrder, &milestone.CreatedAt, &milestone.UpdatedAt)
	if err != nil {
		return milestone, err
	}

	if len(phasesJSON) > 0 {
		if err := json.Unmarshal(phasesJSON, &milestone.Phases); err != nil {
			return milestone, err
		}
	}

	return milestone, nil
}

func assembleSnapshot(dream models.Dream, milestones []models.Milestone, tasks []models.Task, expenses []models.Expense) insights.DreamSnapshot {
	tasksByMilestone := make(map[uuid.UUID][]models.Task)
	for _, task := range tasks {
		tasksByMilestone[task.MilestoneID] = append(tasksByMilestone[task.MilestoneID], task)
	}

	expensesByMilestone := make(map[uuid.UUID][]models.Expense)
	for _, expense := range expenses {
		expensesByMilestone[expense.MilestoneID] = append(expensesByMilestone[expense.MilestoneID], expense)
	}

	snapshot := insights.DreamSnapshot{
		Dream:      dream,
		Milestones: make([]insights.MilestoneSnapshot, 0, len(milestones)),
	}
	for _, milestone := range milestones {
		snapshot.Milestones = append(snapshot.Milestones, insights.MilestoneSnapshot{
			Milestone: milestone,
			Tasks:     tasksByMilestone[milestone.ID],
			Expenses:  expensesByMilestone[milestone.ID],
		})
	}

	return snapshot
}
