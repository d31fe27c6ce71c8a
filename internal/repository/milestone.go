package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/models"
)

type MilestoneRepository struct {
	db *pgxpool.Pool
}

// NewMilestoneRepository создает репозиторий вех.
func NewMilestoneRepository(db *pgxpool.Pool) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

// Create создает веху в мечте пользователя. Фазы нумеруются подряд с
// нуля; дубликаты индексов отклоняются.
func (r *MilestoneRepository) Create(ctx context.Context, userID, dreamID uuid.UUID, title string, targetDate *time.Time, budgetCents *int64, phases []models.Phase) (models.Milestone, error) {
	var milestone models.Milestone

	if err := validatePhases(phases); err != nil {
		return milestone, err
	}

	phasesJSON, err := json.Marshal(phases)
	if err != nil {
		return milestone, err
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO milestones (id, dream_id, title, target_date, budget_cents, phases, sort_order)
		 SELECT $1, d.id, $3, $4, $5, $6,
		        COALESCE((SELECT MAX(sort_order) + 1 FROM milestones WHERE dream_id = d.id), 0)
		 FROM dreams d
		 WHERE d.id = $2 AND d.user_id = $7
		 RETURNING id, dream_id, title, target_date, budget_cents, is_completed, phases, sort_order, created_at, updated_at`,
		uuid.New(), dreamID, title, targetDate, budgetCents, phasesJSON, userID,
	).Scan(&milestone.ID, &milestone.DreamID, &milestone.Title, &milestone.TargetDate, &milestone.BudgetCents, &milestone.IsCompleted, &phasesJSON, &milestone.SortOrder, &milestone.CreatedAt, &milestone.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return milestone, ErrNotFound
		}
		return milestone, err
	}

	if len(phasesJSON) > 0 {
		if err := json.Unmarshal(phasesJSON, &milestone.Phases); err != nil {
			return milestone, err
		}
	}

	return milestone, nil
}

// SetCompleted выставляет флаг завершения вехи.
func (r *MilestoneRepository) SetCompleted(ctx context.Context, userID, milestoneID uuid.UUID, completed bool) (models.Milestone, error) {
	var milestone models.Milestone
	var phasesJSON []byte

	err := r.db.QueryRow(ctx,
		`UPDATE milestones m
		 SET is_completed = $3, updated_at = NOW()
		 FROM dreams d
		 WHERE m.id = $1 AND d.id = m.dream_id AND d.user_id = $2
		 RETURNING m.id, m.dream_id, m.title, m.target_date, m.budget_cents, m.is_completed, m.phases, m.sort_order, m.created_at, m.updated_at`,
		milestoneID, userID, completed,
	).Scan(&milestone.ID, &milestone.DreamID, &milestone.Title, &milestone.TargetDate, &milestone.BudgetCents, &milestone.IsCompleted, &phasesJSON, &milestone.SortOrder, &milestone.CreatedAt, &milestone.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return milestone, ErrNotFound
		}
		return milestone, err
	}

	if len(phasesJSON) > 0 {
		if err := json.Unmarshal(phasesJSON, &milestone.Phases); err != nil {
			return milestone, err
		}
	}

	return milestone, nil
}

// SetPhaseCompleted выставляет флаг завершения одной фазы вехи.
func (r *MilestoneRepository) SetPhaseCompleted(ctx context.Context, userID, milestoneID uuid.UUID, phaseIndex int, completed bool) (models.Milestone, error) {
	var milestone models.Milestone
	var phasesJSON []byte

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return milestone, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx,
		`SELECT m.phases
		 FROM milestones m
		 JOIN dreams d ON d.id = m.dream_id
		 WHERE m.id = $1 AND d.user_id = $2
		 FOR UPDATE OF m`,
		milestoneID, userID,
	).Scan(&phasesJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return milestone, ErrNotFound
		}
		return milestone, err
	}

	var phases []models.Phase
	if len(phasesJSON) > 0 {
		if err := json.Unmarshal(phasesJSON, &phases); err != nil {
			return milestone, err
		}
	}

	found := false
	for i := range phases {
		if phases[i].Index == phaseIndex {
			phases[i].IsCompleted = completed
			found = true
			break
		}
	}
	if !found {
		return milestone, ErrNotFound
	}

	updatedJSON, err := json.Marshal(phases)
	if err != nil {
		return milestone, err
	}

	err = tx.QueryRow(ctx,
		`UPDATE milestones
		 SET phases = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, dream_id, title, target_date, budget_cents, is_completed, phases, sort_order, created_at, updated_at`,
		milestoneID, updatedJSON,
	).Scan(&milestone.ID, &milestone.DreamID, &milestone.Title, &milestone.TargetDate, &milestone.BudgetCents, &milestone.IsCompleted, &phasesJSON, &milestone.SortOrder, &milestone.CreatedAt, &milestone.UpdatedAt)
	if err != nil {
		return milestone, err
	}

	milestone.Phases = phases
	return milestone, tx.Commit(ctx)
}

// Delete удаляет веху вместе с задачами и расходами (каскад в схеме БД).
func (r *MilestoneRepository) Delete(ctx context.Context, userID, milestoneID uuid.UUID) (uuid.UUID, error) {
	var dreamID uuid.UUID

	err := r.db.QueryRow(ctx,
		`DELETE FROM milestones m
		 USING dreams d
		 WHERE m.id = $1 AND d.id = m.dream_id AND d.user_id = $2
		 RETURNING m.dream_id`,
		milestoneID, userID,
	).Scan(&dreamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dreamID, ErrNotFound
		}
		return dreamID, err
	}

	return dreamID, nil
}

func validatePhases(phases []models.Phase) error {
	seen := make(map[int]bool, len(phases))
	for _, phase := range phases {
		if phase.Index < 0 || seen[phase.Index] {
			return ErrInvalid
		}
		seen[phase.Index] = true
	}
	return nil
}
