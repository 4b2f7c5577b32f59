package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/isagps/ProfAgendaBack/internal/models"
	appErrors "github.com/isagps/ProfAgendaBack/pkg/errors"
)

// crudRepository is the slice of repository behavior the generic core drives.
type crudRepository[T any] interface {
	List(ctx context.Context, q models.PageQuery) ([]T, int, error)
	ListAll(ctx context.Context) ([]T, error)
	Count(ctx context.Context) (int, error)
	FindByID(ctx context.Context, id string) (*T, error)
	Delete(ctx context.Context, id string) error
}

// crudCore implements the read and delete paths shared by every entity
// service. Create and Update stay entity-specific because the uniqueness
// policies and validation rules differ per entity.
type crudCore[T any] struct {
	repo   crudRepository[T]
	entity string
	logger *zap.Logger
}

func newCRUDCore[T any](repo crudRepository[T], entity string, logger *zap.Logger) crudCore[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return crudCore[T]{repo: repo, entity: entity, logger: logger}
}

// List returns one page of entities plus pagination metadata.
func (c *crudCore[T]) List(ctx context.Context, q models.PageQuery) ([]T, *models.Pagination, error) {
	items, total, err := c.repo.List(ctx, q)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list "+c.entity)
	}
	return items, models.NewPagination(q, total), nil
}

// ListAll returns every entity without pagination.
func (c *crudCore[T]) ListAll(ctx context.Context) ([]T, error) {
	items, err := c.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list "+c.entity)
	}
	return items, nil
}

// Count returns the total number of records.
func (c *crudCore[T]) Count(ctx context.Context) (int, error) {
	total, err := c.repo.Count(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count "+c.entity)
	}
	return total, nil
}

// Get returns an entity by identifier.
func (c *crudCore[T]) Get(ctx context.Context, id string) (*T, error) {
	item, err := c.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, c.entity+" not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+c.entity)
	}
	return item, nil
}

// Delete removes an entity, translating a missing id to not-found and any
// other data-access failure to a deletion error.
func (c *crudCore[T]) Delete(ctx context.Context, id string) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, c.entity+" not found")
		}
		return appErrors.Wrap(err, appErrors.ErrDeleteFailed.Code, appErrors.ErrDeleteFailed.Status, "failed to delete "+c.entity)
	}
	c.logger.Debug("deleted "+c.entity, zap.String("id", id))
	return nil
}

// loadForUpdate fetches the current row for an update, mapping a missing id
// to not-found before any write happens.
func (c *crudCore[T]) loadForUpdate(ctx context.Context, id string) (*T, error) {
	item, err := c.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, c.entity+" not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+c.entity)
	}
	return item, nil
}
