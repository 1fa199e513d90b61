package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-sample/internal/client"
	"todo-sample/internal/form"
	"todo-sample/internal/models"
)

// fakeService はメモリ上でTodoを保持し、呼び出しを記録します。
type fakeService struct {
	mu      sync.Mutex
	todos   []models.Todo
	nextID  int
	lists   int
	creates []models.CreateTodoInput
	deletes []string

	listErr   error
	createErr error
	deleteErr error
}

func (f *fakeService) List(_ context.Context, userID string) ([]models.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []models.Todo{}
	for _, t := range f.todos {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeService) Create(_ context.Context, in models.CreateTodoInput) (*models.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	t := models.Todo{ID: fmt.Sprintf("t%d", f.nextID), UserID: in.UserID, Name: in.Name, Description: in.Description}
	f.todos = append(f.todos, t)
	return &t, nil
}

func (f *fakeService) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, t := range f.todos {
		if t.ID == id {
			f.todos = append(f.todos[:i], f.todos[i+1:]...)
			return nil
		}
	}
	return &client.RemoteServiceError{Op: "delete todo", StatusCode: 404, Err: client.ErrNotFound}
}

func newController(t *testing.T, svc DataService) (*Controller, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	c, err := New(Config{UserID: "u1", Logger: log.New(&buf, "", 0)}, svc)
	require.NoError(t, err)
	return c, &buf
}

func TestNew_RequiresUserID(t *testing.T) {
	_, err := New(Config{}, &fakeService{})
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestCreate_Success(t *testing.T) {
	svc := &fakeService{}
	c, _ := newController(t, svc)

	res, err := c.Create(context.Background(), form.State{Name: "Buy milk", Description: "2%"})
	require.NoError(t, err)

	require.Len(t, svc.creates, 1)
	assert.Equal(t, models.CreateTodoInput{UserID: "u1", Name: "Buy milk", Description: "2%"}, svc.creates[0])

	require.NotNil(t, res.Created)
	assert.Equal(t, "t1", res.Created.ID)
	require.NotNil(t, res.Snapshot)
	assert.Equal(t, []models.Todo{{ID: "t1", UserID: "u1", Name: "Buy milk", Description: "2%"}}, res.Snapshot.Todos)
	assert.Equal(t, 1, svc.lists, "exactly one re-fetch after create")
}

func TestCreate_ValidationBlocksRequest(t *testing.T) {
	svc := &fakeService{}
	c, _ := newController(t, svc)

	_, err := c.Create(context.Background(), form.State{Name: "", Description: "x"})

	var verr *form.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Name is required", verr.Message(form.FieldName))
	assert.Empty(t, svc.creates, "no request on validation failure")
	assert.Zero(t, svc.lists)
}

func TestCreate_ServiceErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	svc := &fakeService{createErr: boom}
	c, _ := newController(t, svc)

	res, err := c.Create(context.Background(), form.State{Name: "a", Description: "b"})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, res.Created)
	assert.Zero(t, svc.lists, "no re-fetch after a failed create")
}

func TestCreate_RefetchFailureKeepsCreated(t *testing.T) {
	boom := errors.New("list down")
	svc := &fakeService{listErr: boom}
	c, _ := newController(t, svc)

	res, err := c.Create(context.Background(), form.State{Name: "a", Description: "b"})
	assert.ErrorIs(t, err, boom)
	assert.NotNil(t, res.Created)
	assert.Nil(t, res.Snapshot)
}

func TestFetchAll_IdempotentAndScoped(t *testing.T) {
	svc := &fakeService{todos: []models.Todo{
		{ID: "a", UserID: "u1", Name: "n1", Description: "d1"},
		{ID: "b", UserID: "u2", Name: "n2", Description: "d2"},
		{ID: "c", UserID: "u1", Name: "n3", Description: "d3"},
	}}
	c, _ := newController(t, svc)

	first, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	second, err := c.FetchAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Todos, second.Todos)
	require.Len(t, first.Todos, 2)
	assert.Equal(t, "a", first.Todos[0].ID, "service order is kept")
	assert.Equal(t, "c", first.Todos[1].ID)
}

func TestFetchAll_ErrorPropagates(t *testing.T) {
	boom := errors.New("down")
	c, _ := newController(t, &fakeService{listErr: boom})

	_, err := c.FetchAll(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestDelete_Success(t *testing.T) {
	svc := &fakeService{todos: []models.Todo{
		{ID: "t1", UserID: "u1"},
		{ID: "t2", UserID: "u1"},
	}}
	c, _ := newController(t, svc)

	res := c.Delete(context.Background(), "t1")
	assert.True(t, res.Notify)
	require.NotNil(t, res.Snapshot)
	assert.Equal(t, []models.Todo{{ID: "t2", UserID: "u1"}}, res.Snapshot.Todos)
	assert.Equal(t, 1, svc.lists)
}

func TestDelete_NonExistentStillNotifies(t *testing.T) {
	svc := &fakeService{}
	c, logs := newController(t, svc)

	res := c.Delete(context.Background(), "missing")
	assert.True(t, res.Notify)
	assert.NotNil(t, res.Snapshot)
	assert.Contains(t, logs.String(), "missing")
}

func TestDelete_FailureSwallowed(t *testing.T) {
	svc := &fakeService{deleteErr: &client.RemoteServiceError{Op: "delete todo", StatusCode: 500, Message: "Failed to delete todo"}}
	c, logs := newController(t, svc)

	res := c.Delete(context.Background(), "t1")
	assert.False(t, res.Notify)
	assert.Nil(t, res.Snapshot)
	assert.Zero(t, svc.lists, "list keeps its previous state")
	assert.Contains(t, logs.String(), "Failed to delete todo t1")
}

func TestDelete_RefetchFailureLogged(t *testing.T) {
	svc := &fakeService{todos: []models.Todo{{ID: "t1", UserID: "u1"}}, listErr: errors.New("list down")}
	c, logs := newController(t, svc)

	res := c.Delete(context.Background(), "t1")
	assert.True(t, res.Notify)
	assert.Nil(t, res.Snapshot)
	assert.Contains(t, logs.String(), "Failed to fetch todos after delete")
}
