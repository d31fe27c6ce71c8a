package models

import (
	"time"

	"github.com/google/uuid"
)

// ExpenseStatus — статус расхода. Отмененные расходы не учитываются
// ни в потраченной сумме, ни в счетчике расходов.
type ExpenseStatus string

const (
	ExpenseStatusPending   ExpenseStatus = "pending"
	ExpenseStatusPaid      ExpenseStatus = "paid"
	ExpenseStatusCancelled ExpenseStatus = "cancelled"
)

type AlertType string

const (
	AlertTypeBudget   AlertType = "budget"
	AlertTypeDeadline AlertType = "deadline"
	AlertTypeTask     AlertType = "task"
	AlertTypeProgress AlertType = "progress"
)

type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "info"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityCritical AlertSeverity = "critical"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Dream — долгосрочная цель пользователя. Все суммы хранятся в центах.
type Dream struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	BudgetCents *int64     `json:"budget_cents,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Milestone — веха внутри мечты. Фазы хранятся как jsonb в строке вехи:
// их мало, порядок фиксирован, и отдельная таблица не нужна.
type Milestone struct {
	ID          uuid.UUID  `json:"id"`
	DreamID     uuid.UUID  `json:"dream_id"`
	Title       string     `json:"title"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	BudgetCents *int64     `json:"budget_cents,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	Phases      []Phase    `json:"phases,omitempty"`
	SortOrder   int        `json:"sort_order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Phase — этап вехи. Index уникален в пределах вехи и служит явной
// привязкой задач к этапу.
type Phase struct {
	Index       int    `json:"index"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"is_completed"`
}

type Task struct {
	ID          uuid.UUID  `json:"id"`
	MilestoneID uuid.UUID  `json:"milestone_id"`
	Title       string     `json:"title"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty"`
	PhaseIndex  *int       `json:"phase_index,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Expense struct {
	ID          uuid.UUID     `json:"id"`
	MilestoneID uuid.UUID     `json:"milestone_id"`
	Title       string        `json:"title"`
	AmountCents int64         `json:"amount_cents"`
	Status      ExpenseStatus `json:"status"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	PaidBy      *uuid.UUID    `json:"paid_by,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type RefreshToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `json:"replaced_by,omitempty"`
}
