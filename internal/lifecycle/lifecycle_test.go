package lifecycle

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SchedulerApp/internal/model"
)

var now = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

func newProject(tasksCompleted ...bool) *model.Project {
	p := &model.Project{ID: "p", Name: "p", Status: model.StatusActive, SubTasks: []model.Task{}}
	for i, c := range tasksCompleted {
		p.SubTasks = append(p.SubTasks, model.Task{ID: model.ID(fmt.Sprintf("t%d", i)), Name: "t", Completed: c})
	}
	return p
}

// TestMarkComplete_Precondition: проект с невыполненной задачей завершить нельзя,
// после выполнения всех задач можно, и ставится completedDate
func TestMarkComplete_Precondition(t *testing.T) {
	p := newProject(true, false)
	err := MarkComplete(p, now)
	require.ErrorIs(t, err, model.ErrPrecondition)
	assert.Equal(t, model.StatusActive, p.Status)
	assert.Nil(t, p.CompletedDate)

	p.SubTasks[1].Completed = true
	require.NoError(t, MarkComplete(p, now))
	assert.Equal(t, model.StatusCompleted, p.Status)
	require.NotNil(t, p.CompletedDate)
	assert.Equal(t, now, *p.CompletedDate)
	require.NoError(t, Validate(p))
}

// TestMarkComplete_NoTasks: проект без задач можно завершить
func TestMarkComplete_NoTasks(t *testing.T) {
	p := newProject()
	require.True(t, CanComplete(p))
	require.NoError(t, MarkComplete(p, now))
}

// TestMarkComplete_WrongState: повторное завершение и завершение из корзины запрещены
func TestMarkComplete_WrongState(t *testing.T) {
	p := newProject(true)
	require.NoError(t, MarkComplete(p, now))
	assert.ErrorIs(t, MarkComplete(p, now), model.ErrInvalidTransition)

	require.NoError(t, SoftDelete(p, now))
	assert.ErrorIs(t, MarkComplete(p, now), model.ErrInvalidTransition)
	assert.False(t, CanComplete(p))
}

// TestRestoreFromCompleted очищает дату завершения
func TestRestoreFromCompleted(t *testing.T) {
	p := newProject(true)
	assert.ErrorIs(t, RestoreFromCompleted(p), model.ErrInvalidTransition)
	require.NoError(t, MarkComplete(p, now))
	require.NoError(t, RestoreFromCompleted(p))
	assert.Equal(t, model.StatusActive, p.Status)
	assert.Nil(t, p.CompletedDate)
}

// TestTrashRestoreRoundTrip: корзина и восстановление возвращают прежний статус
func TestTrashRestoreRoundTrip(t *testing.T) {
	active := newProject(false)
	require.NoError(t, SoftDelete(active, now))
	assert.Equal(t, model.StatusTrash, active.Status)
	require.NotNil(t, active.DeletedDate)
	require.NoError(t, Validate(active))
	require.NoError(t, RestoreFromTrash(active))
	assert.Equal(t, model.StatusActive, active.Status)
	assert.Nil(t, active.DeletedDate)

	completed := newProject(true)
	require.NoError(t, MarkComplete(completed, now))
	require.NoError(t, SoftDelete(completed, now.Add(time.Hour)))
	// дата завершения сохраняется в корзине
	require.NotNil(t, completed.CompletedDate)
	require.NoError(t, RestoreFromTrash(completed))
	assert.Equal(t, model.StatusCompleted, completed.Status)
	assert.Equal(t, now, *completed.CompletedDate)
	assert.Nil(t, completed.DeletedDate)
	require.NoError(t, Validate(completed))
}

// TestSoftDelete_Twice: повторный перенос в корзину запрещён
func TestSoftDelete_Twice(t *testing.T) {
	p := newProject()
	require.NoError(t, SoftDelete(p, now))
	assert.ErrorIs(t, SoftDelete(p, now), model.ErrInvalidTransition)
	assert.ErrorIs(t, RestoreFromCompleted(p), model.ErrInvalidTransition)
}

// TestCheckPurge разрешает окончательное удаление только из корзины
func TestCheckPurge(t *testing.T) {
	p := newProject()
	assert.ErrorIs(t, CheckPurge(p), model.ErrInvalidTransition)
	require.NoError(t, SoftDelete(p, now))
	assert.NoError(t, CheckPurge(p))
	assert.ErrorIs(t, RestoreFromTrash(newProject()), model.ErrInvalidTransition)
}

// TestAllowedTable проверяет таблицу переходов целиком
func TestAllowedTable(t *testing.T) {
	cases := []struct {
		action Action
		from   model.Status
		want   bool
	}{
		{ActionMarkComplete, model.StatusActive, true},
		{ActionMarkComplete, model.StatusCompleted, false},
		{ActionMarkComplete, model.StatusTrash, false},
		{ActionRestoreFromCompleted, model.StatusCompleted, true},
		{ActionRestoreFromCompleted, model.StatusActive, false},
		{ActionSoftDelete, model.StatusActive, true},
		{ActionSoftDelete, model.StatusCompleted, true},
		{ActionSoftDelete, model.StatusTrash, false},
		{ActionRestoreFromTrash, model.StatusTrash, true},
		{ActionRestoreFromTrash, model.StatusActive, false},
		{ActionPurge, model.StatusTrash, true},
		{ActionPurge, model.StatusCompleted, false},
		{Action("archive"), model.StatusActive, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Allowed(c.action, c.from), "%s from %s", c.action, c.from)
	}
}

// TestValidate проверяет инварианты статусов
func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Validate(&model.Project{Status: model.StatusTrash}), model.ErrValidation)
	assert.ErrorIs(t, Validate(&model.Project{Status: model.StatusCompleted}), model.ErrValidation)
	assert.ErrorIs(t, Validate(&model.Project{Status: "archived"}), model.ErrValidation)
	assert.NoError(t, Validate(&model.Project{Status: model.StatusActive}))
}
