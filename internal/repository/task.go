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

type TaskRepository struct {
	db *pgxpool.Pool
}

// NewTaskRepository создает репозиторий задач.
func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create создает задачу в вехе пользователя. Вторым значением
// возвращается идентификатор мечты для пересчета метрик.
func (r *TaskRepository) Create(ctx context.Context, userID, milestoneID uuid.UUID, title string, dueDate *time.Time, assigneeID *uuid.UUID, phaseIndex *int) (models.Task, uuid.UUID, error) {
	var task models.Task
	var dreamID uuid.UUID

	err := r.db.QueryRow(ctx,
		`INSERT INTO tasks (id, milestone_id, title, due_date, assignee_id, phase_index)
		 SELECT $1, m.id, $3, $4, $5, $6
		 FROM milestones m
		 JOIN dreams d ON d.id = m.dream_id
		 WHERE m.id = $2 AND d.user_id = $7
		 RETURNING id, milestone_id, title, is_completed, completed_at, due_date, assignee_id, phase_index, created_at, updated_at,
		           (SELECT dream_id FROM milestones WHERE id = $2)`,
		uuid.New(), milestoneID, title, dueDate, assigneeID, phaseIndex, userID,
	).Scan(&task.ID, &task.MilestoneID, &task.Title, &task.IsCompleted, &task.CompletedAt, &task.DueDate, &task.AssigneeID, &task.PhaseIndex, &task.CreatedAt, &task.UpdatedAt, &dreamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task, dreamID, ErrNotFound
		}
		return task, dreamID, err
	}

	return task, dreamID, nil
}

// SetCompleted выставляет флаг завершения задачи. При завершении
// фиксируется момент завершения, при возврате в работу — сбрасывается.
func (r *TaskRepository) SetCompleted(ctx context.Context, userID, taskID uuid.UUID, completed bool) (models.Task, uuid.UUID, error) {
	var task models.Task
	var dreamID uuid.UUID

	err := r.db.QueryRow(ctx,
		`UPDATE tasks t
		 SET is_completed = $3,
		     completed_at = CASE WHEN $3 THEN NOW() ELSE NULL END,
		     updated_at = NOW()
		 FROM milestones m
		 JOIN dreams d ON d.id = m.dream_id
		 WHERE t.id = $1 AND m.id = t.milestone_id AND d.user_id = $2
		 RETURNING t.id, t.milestone_id, t.title, t.is_completed, t.completed_at, t.due_date, t.assignee_id, t.phase_index, t.created_at, t.updated_at, d.id`,
		taskID, userID, completed,
	).Scan(&task.ID, &task.MilestoneID, &task.Title, &task.IsCompleted, &task.CompletedAt, &task.DueDate, &task.AssigneeID, &task.PhaseIndex, &task.CreatedAt, &task.UpdatedAt, &dreamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task, dreamID, ErrNotFound
		}
		return task, dreamID, err
	}

	return task, dreamID, nil
}

// Assign назначает или снимает исполнителя задачи.
func (r *TaskRepository) Assign(ctx context.Context, userID, taskID uuid.UUID, assigneeID *uuid.UUID) (models.Task, uuid.UUID, error) {
	var task models.Task
	var dreamID uuid.UUID

	err := r.db.QueryRow(ctx,
		`UPDATE tasks t
		 SET assignee_id = $3, updated_at = NOW()
		 FROM milestones m
		 JOIN dreams d ON d.id = m.dream_id
		 WHERE t.id = $1 AND m.id = t.milestone_id AND d.user_id = $2
		 RETURNING t.id, t.milestone_id, t.title, t.is_completed, t.completed_at, t.due_date, t.assignee_id, t.phase_index, t.created_at, t.updated_at, d.id`,
		taskID, userID, assigneeID,
	).Scan(&task.ID, &task.MilestoneID, &task.Title, &task.IsCompleted, &task.CompletedAt, &task.DueDate, &task.AssigneeID, &task.PhaseIndex, &task.CreatedAt, &task.UpdatedAt, &dreamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task, dreamID, ErrNotFound
		}
		return task, dreamID, err
	}

	return task, dreamID, nil
}

// Delete удаляет задачу.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uuid.UUID) (uuid.UUID, error) {
	var dreamID uuid.UUID

	err := r.db.QueryRow(ctx,
		`DELETE FROM tasks t
		 USING milestones m, dreams d
		 WHERE t.id = $1 AND m.id = t.milestone_id AND d.id = m.dream_id AND d.user_id = $2
		 RETURNING m.dream_id`,
		taskID, userID,
	).Scan(&dreamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dreamID, ErrNotFound
		}
		return dreamID, err
	}

	return dreamID, nil
}
