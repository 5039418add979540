// AngelaMos | 2026
// service_test.go

package task

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pierkoo/flasktaskr/internal/core"
)

var (
	alice = Actor{ID: 1, Role: "user"}
	bob   = Actor{ID: 2, Role: "user"}
	root  = Actor{ID: 3, Role: "admin"}
)

func newTestService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	repo.owners[alice.ID] = "alice"
	repo.owners[bob.ID] = "bob"
	repo.owners[root.ID] = "root"

	svc := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return time.Date(2020, 10, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func day(month, d int) time.Time {
	return time.Date(2020, time.Month(month), d, 0, 0, 0, 0, time.UTC)
}

func mustCreate(t *testing.T, svc *Service, actor Actor, name string, due time.Time) *Task {
	t.Helper()
	created, err := svc.Create(context.Background(), actor, NewTask{Name: name, DueDate: due, Priority: 1})
	require.NoError(t, err)
	return created
}

func TestCreateStampsServerFields(t *testing.T) {
	svc, _ := newTestService()

	created := mustCreate(t, svc, alice, "Test task", day(10, 8))
	assert.Equal(t, StatusOpen, created.Status)
	assert.Equal(t, alice.ID, created.UserID)
	assert.Equal(t, svc.now(), created.PostedDate)
}

func TestCreateRequiresActor(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Create(context.Background(), Actor{}, NewTask{Name: "x", DueDate: day(1, 1), Priority: 1})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestCreateRejectsBlankName(t *testing.T) {
	svc, repo := newTestService()
	_, err := svc.Create(context.Background(), alice, NewTask{Name: "   ", DueDate: day(1, 1), Priority: 1})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Empty(t, repo.rows)
}

func TestListOrdersByDueDateThenInsertion(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	late := mustCreate(t, svc, alice, "late", day(12, 1))
	first := mustCreate(t, svc, bob, "tie first", day(10, 1))
	second := mustCreate(t, svc, alice, "tie second", day(10, 1))
	done := mustCreate(t, svc, alice, "done", day(9, 1))
	require.NoError(t, svc.Complete(ctx, alice, done.ID))

	board, err := svc.List(ctx, alice)
	require.NoError(t, err)

	var openIDs []int64
	for _, v := range board.Open {
		openIDs = append(openIDs, v.Task.ID)
	}
	assert.Equal(t, []int64{first.ID, second.ID, late.ID}, openIDs)

	require.Len(t, board.Closed, 1)
	assert.Equal(t, done.ID, board.Closed[0].Task.ID)

	assert.False(t, board.Open[0].CanMutate, "bob's task is read-only for alice")
	assert.Equal(t, "bob", board.Open[0].OwnerName)
	assert.True(t, board.Open[1].CanMutate)

	adminBoard, err := svc.List(ctx, root)
	require.NoError(t, err)
	for _, v := range adminBoard.Open {
		assert.True(t, v.CanMutate)
	}
}

func TestOwnershipOnMutations(t *testing.T) {
	ctx := context.Background()

	t.Run("non owner cannot complete", func(t *testing.T) {
		svc, repo := newTestService()
		task := mustCreate(t, svc, alice, "mine", day(1, 1))

		err := svc.Complete(ctx, bob, task.ID)
		assert.ErrorIs(t, err, ErrNotOwner)
		status, _ := repo.status(task.ID)
		assert.Equal(t, StatusOpen, status)
	})

	t.Run("non owner cannot delete", func(t *testing.T) {
		svc, repo := newTestService()
		task := mustCreate(t, svc, alice, "mine", day(1, 1))

		err := svc.Delete(ctx, bob, task.ID)
		assert.ErrorIs(t, err, ErrNotOwner)
		_, exists := repo.status(task.ID)
		assert.True(t, exists)
	})

	t.Run("owner completes", func(t *testing.T) {
		svc, repo := newTestService()
		task := mustCreate(t, svc, alice, "mine", day(1, 1))

		require.NoError(t, svc.Complete(ctx, alice, task.ID))
		status, _ := repo.status(task.ID)
		assert.Equal(t, StatusClosed, status)
	})

	t.Run("admin deletes someone else's task", func(t *testing.T) {
		svc, repo := newTestService()
		task := mustCreate(t, svc, alice, "mine", day(1, 1))

		require.NoError(t, svc.Delete(ctx, root, task.ID))
		_, exists := repo.status(task.ID)
		assert.False(t, exists)
	})
}

func TestMutationsAreIdempotent(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	task := mustCreate(t, svc, alice, "mine", day(1, 1))

	require.NoError(t, svc.Complete(ctx, alice, task.ID))
	writes := repo.writes
	require.NoError(t, svc.Complete(ctx, alice, task.ID))
	assert.Equal(t, writes, repo.writes, "completing a closed task writes nothing")

	require.NoError(t, svc.Delete(ctx, alice, task.ID))
	assert.ErrorIs(t, svc.Delete(ctx, alice, task.ID), core.ErrNotFound)
	assert.ErrorIs(t, svc.Complete(ctx, alice, 999), core.ErrNotFound)
}

func TestCounts(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	mustCreate(t, svc, alice, "a", day(1, 1))
	done := mustCreate(t, svc, bob, "b", day(1, 2))
	require.NoError(t, svc.Complete(ctx, bob, done.ID))

	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Open: 1, Closed: 1}, counts)
}
