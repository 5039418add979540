// AngelaMos | 2026
// service.go

package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/pierkoo/flasktaskr/internal/core"
	"github.com/pierkoo/flasktaskr/internal/metrics"
)

// View is one listed task plus whether the viewing actor may change it.
type View struct {
	Task      Task
	OwnerName string
	CanMutate bool
}

type Board struct {
	Open   []View
	Closed []View
}

type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List returns every open and closed task, each ordered by due date.
func (s *Service) List(ctx context.Context, actor Actor) (*Board, error) {
	ctx, span := core.StartSpan(ctx, "task.List")
	defer span.End()

	open, err := s.repo.ListByStatus(ctx, StatusOpen)
	if err != nil {
		return nil, err
	}

	closed, err := s.repo.ListByStatus(ctx, StatusClosed)
	if err != nil {
		return nil, err
	}

	return &Board{
		Open:   toViews(actor, open),
		Closed: toViews(actor, closed),
	}, nil
}

func toViews(actor Actor, rows []Listed) []View {
	views := make([]View, 0, len(rows))
	for i := range rows {
		views = append(views, View{
			Task:      rows[i].Task,
			OwnerName: rows[i].OwnerName,
			CanMutate: CanMutate(actor, &rows[i].Task),
		})
	}
	return views
}

func (s *Service) Counts(ctx context.Context) (Counts, error) {
	return s.repo.CountByStatus(ctx)
}

// Create stores a new open task owned by the actor. The posted date is the
// server clock, never client input.
func (s *Service) Create(ctx context.Context, actor Actor, in NewTask) (*Task, error) {
	ctx, span := core.StartSpan(ctx, "task.Create",
		attribute.Int64("actor.id", actor.ID))
	defer span.End()

	if actor.ID == 0 {
		return nil, fmt.Errorf("create task: %w", core.ErrUnauthorized)
	}
	if strings.TrimSpace(in.Name) == "" {
		metrics.TaskOperations.WithLabelValues("create", metrics.OutcomeInvalid).Inc()
		return nil, fmt.Errorf("create task: empty name: %w", core.ErrInvalidInput)
	}

	t := &Task{
		Name:       in.Name,
		DueDate:    in.DueDate,
		Priority:   in.Priority,
		PostedDate: s.now(),
		Status:     StatusOpen,
		UserID:     actor.ID,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		metrics.TaskOperations.WithLabelValues("create", metrics.OutcomeError).Inc()
		core.SetSpanError(ctx, err)
		return nil, err
	}

	metrics.TaskOperations.WithLabelValues("create", metrics.OutcomeSuccess).Inc()
	return t, nil
}

// Complete closes the task. Completing a closed task succeeds without a
// write.
func (s *Service) Complete(ctx context.Context, actor Actor, id int64) error {
	return s.mutate(ctx, "complete", actor, id, func(repo Repository, t *Task) error {
		if t.Status == StatusClosed {
			return nil
		}
		return repo.UpdateStatus(ctx, t.ID, StatusClosed)
	})
}

func (s *Service) Delete(ctx context.Context, actor Actor, id int64) error {
	return s.mutate(ctx, "delete", actor, id, func(repo Repository, t *Task) error {
		return repo.Delete(ctx, t.ID)
	})
}

// mutate locks the task, applies the ownership policy and runs apply, all in
// one transaction. Missing tasks yield core.ErrNotFound and refusals
// ErrNotOwner; neither writes anything.
func (s *Service) mutate(
	ctx context.Context,
	op string,
	actor Actor,
	id int64,
	apply func(Repository, *Task) error,
) error {
	ctx, span := core.StartSpan(ctx, "task."+op,
		attribute.Int64("task.id", id),
		attribute.Int64("actor.id", actor.ID),
		attribute.String("actor.role", actor.Role),
	)
	defer span.End()

	err := s.repo.WithTx(ctx, func(repo Repository) error {
		t, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if err := Authorize(actor, t); err != nil {
			return err
		}

		return apply(repo, t)
	})

	switch {
	case err == nil:
		metrics.TaskOperations.WithLabelValues(op, metrics.OutcomeSuccess).Inc()
		return nil
	case errors.Is(err, ErrNotOwner):
		metrics.TaskOperations.WithLabelValues(op, metrics.OutcomeDenied).Inc()
		core.AddSpanEvent(ctx, "policy.denied")
		s.logger.Info("task mutation denied",
			"op", op,
			"task_id", id,
			"actor_id", actor.ID,
		)
		return err
	case errors.Is(err, core.ErrNotFound):
		metrics.TaskOperations.WithLabelValues(op, metrics.OutcomeNotFound).Inc()
		return err
	default:
		metrics.TaskOperations.WithLabelValues(op, metrics.OutcomeError).Inc()
		core.SetSpanError(ctx, err)
		return fmt.Errorf("%s task %d: %w", op, id, err)
	}
}
