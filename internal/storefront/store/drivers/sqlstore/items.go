package sqlstore

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/jmoiron/sqlx"
)

const itemColumns = `id, title, description, price, image, large_image, owner_id, created_at, updated_at`

type itemRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Price       int64     `db:"price"`
	Image       string    `db:"image"`
	LargeImage  string    `db:"large_image"`
	OwnerID     string    `db:"owner_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r itemRow) toDomain() domain.Item {
	return domain.Item{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Image:       r.Image,
		LargeImage:  r.LargeImage,
		OwnerID:     r.OwnerID,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type itemsRepo struct {
	db sqlx.ExtContext
}

func (r *itemsRepo) GetItemByID(ctx context.Context, id string) (domain.Item, error) {
	var row itemRow
	q := r.db.Rebind(`SELECT ` + itemColumns + ` FROM items WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.db, &row, q, id); err != nil {
		return domain.Item{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *itemsRepo) ListItems(ctx context.Context, limit, offset int) ([]domain.Item, error) {
	var rows []itemRow
	q := r.db.Rebind(`SELECT ` + itemColumns + ` FROM items
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	if err := sqlx.SelectContext(ctx, r.db, &rows, q, limit, offset); err != nil {
		return nil, err
	}
	out := make([]domain.Item, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (r *itemsRepo) CreateItem(ctx context.Context, it domain.Item) error {
	q := r.db.Rebind(`INSERT INTO items (` + itemColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, q,
		it.ID, it.Title, it.Description, it.Price, it.Image, it.LargeImage, it.OwnerID,
		it.CreatedAt.UTC(), it.UpdatedAt.UTC(),
	)
	return err
}

func (r *itemsRepo) UpdateItem(ctx context.Context, id string, upd domain.ItemUpdate) error {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if upd.Title != nil {
		set("title", *upd.Title)
	}
	if upd.Description != nil {
		set("description", *upd.Description)
	}
	if upd.Price != nil {
		set("price", *upd.Price)
	}
	if upd.Image != nil {
		set("image", *upd.Image)
	}
	if upd.LargeImage != nil {
		set("large_image", *upd.LargeImage)
	}
	set("updated_at", time.Now().UTC())
	args = append(args, id)

	q := r.db.Rebind(`UPDATE items SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	return expectOne(r.db.ExecContext(ctx, q, args...))
}

func (r *itemsRepo) DeleteItem(ctx context.Context, id string) error {
	q := r.db.Rebind(`DELETE FROM items WHERE id = ?`)
	return expectOne(r.db.ExecContext(ctx, q, id))
}
