package surreal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// collection implements the CRUD gateway for one table. It satisfies every
// per-entity repository interface once instantiated with that entity.
type collection[T any, P entity[T]] struct {
	db    *surrealdb.DB
	table string
	order string

	// optional hooks for fields that never leave the server in JSON
	encodeExtra func(P, map[string]any)
	decodeExtra func(map[string]any, P)
}

func newCollection[T any, P entity[T]](db *surrealdb.DB, table string) *collection[T, P] {
	order := "name ASC"
	switch table {
	case "creatives":
		order = "createdAt ASC"
	case "campaigns":
		order = "createdAt DESC"
	}
	return &collection[T, P]{db: db, table: table, order: order}
}

func (c *collection[T, P]) record(id string) models.RecordID {
	return models.NewRecordID(c.table, id)
}

func (c *collection[T, P]) encode(v P) (map[string]any, error) {
	doc, err := toDocument[T](v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s document: %w", c.table, err)
	}
	if c.encodeExtra != nil {
		c.encodeExtra(v, doc)
	}
	return doc, nil
}

func (c *collection[T, P]) decode(doc map[string]any) (P, error) {
	v, err := fromDocument[T, P](doc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s document: %w", c.table, err)
	}
	if c.decodeExtra != nil {
		c.decodeExtra(doc, v)
	}
	return v, nil
}

func (c *collection[T, P]) Create(ctx context.Context, v P) error {
	meta := v.Base()
	now := time.Now().UTC()
	meta.ID = uuid.NewString()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	doc, err := c.encode(v)
	if err != nil {
		return err
	}
	if _, err := surrealdb.Create[map[string]any](ctx, c.db, c.record(meta.ID), doc); err != nil {
		return fmt.Errorf("failed to create %s record: %w", c.table, err)
	}
	return nil
}

func (c *collection[T, P]) GetByID(ctx context.Context, id string) (P, error) {
	doc, err := surrealdb.Select[map[string]any](ctx, c.db, c.record(id))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s record: %w", c.table, err)
	}
	if doc == nil || len(*doc) == 0 || (*doc)["id"] == nil {
		return nil, nil
	}
	return c.decode(*doc)
}

func (c *collection[T, P]) Update(ctx context.Context, v P) error {
	meta := v.Base()
	meta.UpdatedAt = time.Now().UTC()

	doc, err := c.encode(v)
	if err != nil {
		return err
	}
	if _, err := surrealdb.Update[map[string]any](ctx, c.db, c.record(meta.ID), doc); err != nil {
		return fmt.Errorf("failed to update %s record: %w", c.table, err)
	}
	return nil
}

func (c *collection[T, P]) Delete(ctx context.Context, id string) error {
	if _, err := surrealdb.Delete[map[string]any](ctx, c.db, c.record(id)); err != nil {
		return fmt.Errorf("failed to delete %s record: %w", c.table, err)
	}
	return nil
}

func (c *collection[T, P]) List(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf("SELECT * FROM type::table($tb) ORDER BY %s", c.order)
	docs, err := c.query(ctx, query, map[string]any{"tb": c.table})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c.table, err)
	}
	return docs, nil
}

// query runs one statement and decodes its rows
func (c *collection[T, P]) query(ctx context.Context, sql string, vars map[string]any) ([]T, error) {
	res, err := surrealdb.Query[[]map[string]any](ctx, c.db, sql, vars)
	if err != nil {
		return nil, err
	}

	out := []T{}
	if res == nil || len(*res) == 0 {
		return out, nil
	}
	for _, doc := range (*res)[0].Result {
		v, err := c.decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}
