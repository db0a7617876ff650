package payments

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/pkg/logger"
)

// Repository stores one kind of entry.
type Repository[T Entry] interface {
	Create(ctx context.Context, e T) error
	Update(ctx context.Context, e T) error
	GetByID(ctx context.Context, entryID id.ID) (T, error)
	List(ctx context.Context, filter Filter) ([]T, error)
	Delete(ctx context.Context, entryID id.ID) error
}

// SellerExists is consulted before recording entries that belong to a seller.
type SellerExists func(ctx context.Context, sellerID id.ID) error

// Book provides CRUD with validation for one kind of entry.
type Book[T Entry] struct {
	repo  Repository[T]
	name  string
	check func(ctx context.Context, e T) error
	now   func() time.Time
}

// NewBook creates a book. check runs after validation and may be nil.
func NewBook[T Entry](name string, repo Repository[T], check func(ctx context.Context, e T) error) *Book[T] {
	return &Book[T]{repo: repo, name: name, check: check, now: time.Now}
}

func (b *Book[T]) prepare(ctx context.Context, e T) error {
	e.Normalize(entity.DayOf(b.now()))
	if err := e.Validate(ctx); err != nil {
		if apperror.IsAppError(err) {
			return err
		}
		return apperror.NewValidation(err.Error())
	}
	if b.check != nil {
		return b.check(ctx, e)
	}
	return nil
}

func (b *Book[T]) Create(ctx context.Context, e T) error {
	if err := b.prepare(ctx, e); err != nil {
		return err
	}
	if err := b.repo.Create(ctx, e); err != nil {
		return fmt.Errorf("create %s: %w", b.name, err)
	}
	logger.Info(ctx, b.name+" recorded", "id", e.EntryID())
	return nil
}

func (b *Book[T]) Update(ctx context.Context, e T) error {
	if _, err := b.repo.GetByID(ctx, e.EntryID()); err != nil {
		return err
	}
	if err := b.prepare(ctx, e); err != nil {
		return err
	}
	e.Touch()
	if err := b.repo.Update(ctx, e); err != nil {
		return fmt.Errorf("update %s: %w", b.name, err)
	}
	return nil
}

func (b *Book[T]) Get(ctx context.Context, entryID id.ID) (T, error) {
	return b.repo.GetByID(ctx, entryID)
}

func (b *Book[T]) List(ctx context.Context, filter Filter) ([]T, error) {
	return b.repo.List(ctx, filter)
}

func (b *Book[T]) Delete(ctx context.Context, entryID id.ID) error {
	if _, err := b.repo.GetByID(ctx, entryID); err != nil {
		return err
	}
	if err := b.repo.Delete(ctx, entryID); err != nil {
		return fmt.Errorf("delete %s: %w", b.name, err)
	}
	logger.Info(ctx, b.name+" deleted", "id", entryID)
	return nil
}
