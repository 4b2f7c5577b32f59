package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/isagps/ProfAgendaBack/internal/models"
	appErrors "github.com/isagps/ProfAgendaBack/pkg/errors"
)

type mockClassRepo struct {
	items      map[string]*models.Class
	nameIndex  map[string]string
	listResult []models.Class
	listTotal  int
	listErr    error
}

func (m *mockClassRepo) List(ctx context.Context, q models.PageQuery) ([]models.Class, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.listResult, m.listTotal, nil
}

func (m *mockClassRepo) ListAll(ctx context.Context) ([]models.Class, error) {
	return m.listResult, m.listErr
}

func (m *mockClassRepo) Count(ctx context.Context) (int, error) {
	return m.listTotal, m.listErr
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if class, ok := m.items[id]; ok {
		cp := *class
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	if owner, ok := m.nameIndex[name]; ok {
		if excludeID == "" || owner != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockClassRepo) Create(ctx context.Context, class *models.Class) error {
	if m.items == nil {
		m.items = make(map[string]*models.Class)
	}
	if class.ID == "" {
		class.ID = "generated"
	}
	cp := *class
	m.items[class.ID] = &cp
	return nil
}

func (m *mockClassRepo) Update(ctx context.Context, class *models.Class) error {
	if _, ok := m.items[class.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *class
	m.items[class.ID] = &cp
	return nil
}

func (m *mockClassRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func TestClassServiceCreate(t *testing.T) {
	repo := &mockClassRepo{}
	svc := NewClassService(repo, validator.New(), zap.NewNop())

	class, err := svc.Create(context.Background(), CreateClassRequest{Name: " 1A ", Grade: " 1st "})
	require.NoError(t, err)
	assert.Equal(t, "1A", class.Name)
	assert.Equal(t, "1st", class.Grade)
	assert.Len(t, repo.items, 1)
}

func TestClassServiceCreateWhitespaceName(t *testing.T) {
	repo := &mockClassRepo{}
	svc := NewClassService(repo, validator.New(), zap.NewNop())

	// A name of only spaces trims to empty and must not persist.
	_, err := svc.Create(context.Background(), CreateClassRequest{Name: "   ", Grade: "1st"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidObject))
	assert.Empty(t, repo.items)
}

func TestClassServiceCreateDuplicate(t *testing.T) {
	repo := &mockClassRepo{nameIndex: map[string]string{"1A": "other"}}
	svc := NewClassService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateClassRequest{Name: "1A", Grade: "1st"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyExists))
}

func TestClassServiceUpdate(t *testing.T) {
	repo := &mockClassRepo{
		items:     map[string]*models.Class{"c1": {ID: "c1", Name: "1A", Grade: "1st"}},
		nameIndex: map[string]string{"1A": "c1"},
	}
	svc := NewClassService(repo, validator.New(), zap.NewNop())

	class, err := svc.Update(context.Background(), "c1", UpdateClassRequest{Name: "1B", Grade: "1st"})
	require.NoError(t, err)
	assert.Equal(t, "1B", class.Name)
}

func TestClassServiceUpdateNotFound(t *testing.T) {
	svc := NewClassService(&mockClassRepo{}, validator.New(), zap.NewNop())

	_, err := svc.Update(context.Background(), "missing", UpdateClassRequest{Name: "1A", Grade: "1st"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
