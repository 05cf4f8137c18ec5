package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ItemInput is the data needed to create an item.
type ItemInput struct {
	Title       string
	Description string
	Price       int64
	Image       string
	LargeImage  string
}

type ItemService struct {
	Store store.Store
}

// CreateItem stores a new item owned by the caller.
func (s *ItemService) CreateItem(ctx context.Context, callerID string, in ItemInput) (domain.Item, error) {
	log := slogx.FromContext(ctx)

	caller, err := loadCaller(ctx, s.Store.Users(), callerID)
	if err != nil {
		return domain.Item{}, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	switch {
	case in.Title == "":
		return domain.Item{}, invalid("title is required")
	case in.Description == "":
		return domain.Item{}, invalid("description is required")
	case in.Price < 0:
		return domain.Item{}, invalid("price must not be negative")
	}

	now := time.Now().UTC()
	it := domain.Item{
		ID:          idx.NewAt(now).String(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Image:       in.Image,
		LargeImage:  in.LargeImage,
		OwnerID:     caller.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Items().CreateItem(ctx, it); err != nil {
		log.Error("failed to create item", slog.Any("error", err))
		return domain.Item{}, err
	}

	log.Info("item created", slog.String("item_id", it.ID), slog.String("owner_id", caller.ID))
	return it, nil
}

// UpdateItem applies upd for the owner or an ADMIN/ITEMUPDATE holder.
func (s *ItemService) UpdateItem(ctx context.Context, callerID, id string, upd domain.ItemUpdate) (domain.Item, error) {
	log := slogx.FromContext(ctx)

	if err := validateItemUpdate(&upd); err != nil {
		return domain.Item{}, err
	}

	var updated domain.Item
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		caller, err := loadCaller(ctx, tx.Users(), callerID)
		if err != nil {
			return err
		}

		it, err := getItem(ctx, tx.Items(), id)
		if err != nil {
			return err
		}
		if !CanMutateItem(caller, it, domain.PermissionAdmin, domain.PermissionItemUpdate) {
			log.Warn("item update denied", slog.String("caller_id", caller.ID), slog.String("item_id", id))
			return ErrForbidden
		}

		if err := tx.Items().UpdateItem(ctx, id, upd); err != nil {
			return err
		}
		updated, err = tx.Items().GetItemByID(ctx, id)
		return err
	})
	if err != nil {
		if !isClientError(err) {
			log.Error("failed to update item", slog.String("item_id", id), slog.Any("error", err))
		}
		return domain.Item{}, err
	}

	log.Info("item updated", slog.String("item_id", id))
	return updated, nil
}

func validateItemUpdate(upd *domain.ItemUpdate) error {
	if upd.IsEmpty() {
		return invalid("nothing to update")
	}
	if upd.Title != nil {
		t := strings.TrimSpace(*upd.Title)
		if t == "" {
			return invalid("title must not be empty")
		}
		upd.Title = &t
	}
	if upd.Description != nil {
		d := strings.TrimSpace(*upd.Description)
		if d == "" {
			return invalid("description must not be empty")
		}
		upd.Description = &d
	}
	if upd.Price != nil && *upd.Price < 0 {
		return invalid("price must not be negative")
	}
	return nil
}

// DeleteItem removes an item for the owner or an ADMIN/PERMISSIONDELETE
// holder and returns what was deleted.
func (s *ItemService) DeleteItem(ctx context.Context, callerID, id string) (domain.Item, error) {
	log := slogx.FromContext(ctx)

	var deleted domain.Item
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		caller, err := loadCaller(ctx, tx.Users(), callerID)
		if err != nil {
			return err
		}

		it, err := getItem(ctx, tx.Items(), id)
		if err != nil {
			return err
		}
		if !CanMutateItem(caller, it, domain.PermissionAdmin, domain.PermissionPermissionDelete) {
			log.Warn("item delete denied", slog.String("caller_id", caller.ID), slog.String("item_id", id))
			return ErrForbidden
		}

		if err := tx.Items().DeleteItem(ctx, id); err != nil {
			return err
		}
		deleted = it
		return nil
	})
	if err != nil {
		if !isClientError(err) {
			log.Error("failed to delete item", slog.String("item_id", id), slog.Any("error", err))
		}
		return domain.Item{}, err
	}

	log.Info("item deleted", slog.String("item_id", id))
	return deleted, nil
}

func (s *ItemService) GetItem(ctx context.Context, id string) (domain.Item, error) {
	return getItem(ctx, s.Store.Items(), id)
}

// ListItems pages through items newest first. limit is clamped to
// [1, MaxPageSize] with DefaultPageSize for zero.
func (s *ItemService) ListItems(ctx context.Context, limit, offset int) ([]domain.Item, int, int, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	offset = max(offset, 0)

	items, err := s.Store.Items().ListItems(ctx, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	return items, limit, offset, nil
}

func getItem(ctx context.Context, items store.Items, id string) (domain.Item, error) {
	if id == "" {
		return domain.Item{}, ErrNotFound
	}
	it, err := items.GetItemByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Item{}, ErrNotFound
	}
	return it, err
}
