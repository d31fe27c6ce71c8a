package handlers

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/insights"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/models"
)

// TestWriteTasksCSV проверяет выгрузку задач мечты в CSV.
func TestWriteTasksCSV(t *testing.T) {
	phaseIndex := 1
	completedAt := time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)
	snapshot := insights.DreamSnapshot{
		Dream: models.Dream{ID: uuid.New(), Title: "Buy a house"},
		Milestones: []insights.MilestoneSnapshot{
			{
				Milestone: models.Milestone{ID: uuid.New(), Title: "Save deposit"},
				Tasks: []models.Task{
					{
						ID:          uuid.New(),
						Title:       "Open savings account",
						IsCompleted: true,
						CompletedAt: &completedAt,
						PhaseIndex:  &phaseIndex,
					},
				},
			},
		},
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeTasksCSV(writer, snapshot); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	writer.Flush()

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("failed to read csv: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected header and one record, got %d rows", len(records))
	}

	row := records[1]
	if row[1] != "Buy a house" || row[5] != "Open savings account" {
		t.Fatalf("unexpected record: %v", row)
	}
	if row[6] != "true" {
		t.Fatalf("expected completed flag true, got %s", row[6])
	}
	if row[7] != completedAt.Format(timeLayout) {
		t.Fatalf("unexpected completed_at: %s", row[7])
	}
	if row[10] != "1" {
		t.Fatalf("expected phase index 1, got %s", row[10])
	}
}

// TestWriteExpensesCSV проверяет выгрузку расходов мечты в CSV.
func TestWriteExpensesCSV(t *testing.T) {
	snapshot := insights.DreamSnapshot{
		Dream: models.Dream{ID: uuid.New(), Title: "Wedding"},
		Milestones: []insights.MilestoneSnapshot{
			{
				Milestone: models.Milestone{ID: uuid.New(), Title: "Venue"},
				Expenses: []models.Expense{
					{
						ID:          uuid.New(),
						Title:       "Deposit",
						AmountCents: 250000,
						Status:      models.ExpenseStatusPaid,
					},
				},
			},
		},
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeExpensesCSV(writer, snapshot); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	writer.Flush()

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("failed to read csv: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected header and one record, got %d rows", len(records))
	}

	row := records[1]
	if row[5] != "Deposit" || row[6] != "250000" || row[7] != "paid" {
		t.Fatalf("unexpected record: %v", row)
	}
	if row[8] != "" || row[9] != "" {
		t.Fatalf("expected empty optional fields, got %v", row)
	}
}

// TestFormatPtrHelpers проверяет форматирование опциональных полей CSV.
func TestFormatPtrHelpers(t *testing.T) {
	if got := formatTimePtr(nil); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	if got := formatUUIDPtr(nil); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	if got := formatIntPtr(nil); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	if got := formatBool(false); got != "false" {
		t.Fatalf("expected false, got %q", got)
	}

	id := uuid.New()
	if got := formatUUIDPtr(&id); got != id.String() {
		t.Fatalf("unexpected uuid format: %s", got)
	}
}
