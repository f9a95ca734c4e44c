package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// Document is a decoded snapshot with its server timestamps.
type Document[T any] struct {
	ID         string
	Data       T
	CreateTime time.Time
	UpdateTime time.Time
}

// QueryBuilder narrows or orders a collection query.
type QueryBuilder func(query firestore.Query) firestore.Query

// Collection is a typed view over one top-level collection. T is the stored
// document struct with firestore tags.
type Collection[T any] struct {
	provider *Provider
	name     string
}

func NewCollection[T any](provider *Provider, name string) *Collection[T] {
	return &Collection[T]{provider: provider, name: strings.TrimSpace(name)}
}

func (c *Collection[T]) Name() string { return c.name }

// Create writes a new document and fails with a conflict if id is taken.
func (c *Collection[T]) Create(ctx context.Context, id string, value T) error {
	ref, err := c.Doc(ctx, id)
	if err != nil {
		return err
	}
	if _, err := ref.Create(ctx, value); err != nil {
		return WrapError(c.op("create"), err)
	}
	return nil
}

// Set overwrites the document.
func (c *Collection[T]) Set(ctx context.Context, id string, value T) error {
	ref, err := c.Doc(ctx, id)
	if err != nil {
		return err
	}
	if _, err := ref.Set(ctx, value); err != nil {
		return WrapError(c.op("set"), err)
	}
	return nil
}

// Delete removes the document. Missing documents are reported as not found.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	ref, err := c.Doc(ctx, id)
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		return WrapError(c.op("delete"), err)
	}
	return nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (Document[T], error) {
	ref, err := c.Doc(ctx, id)
	if err != nil {
		return Document[T]{}, err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		return Document[T]{}, WrapError(c.op("get"), err)
	}
	return decode[T](snap)
}

// Query runs build against the collection and decodes every match.
func (c *Collection[T]) Query(ctx context.Context, build QueryBuilder) ([]Document[T], error) {
	coll, err := c.ref(ctx)
	if err != nil {
		return nil, err
	}
	query := coll.Query
	if build != nil {
		query = build(query)
	}
	return collect[T](ctx, query.Documents(ctx), c.op("query"))
}

// First returns the first match of build or a not-found error.
func (c *Collection[T]) First(ctx context.Context, build QueryBuilder) (Document[T], error) {
	docs, err := c.Query(ctx, func(q firestore.Query) firestore.Query {
		if build != nil {
			q = build(q)
		}
		return q.Limit(1)
	})
	if err != nil {
		return Document[T]{}, err
	}
	if len(docs) == 0 {
		return Document[T]{}, NotFound(c.op("first"), c.name+" document")
	}
	return docs[0], nil
}

// Count runs a server-side count aggregation over build.
func (c *Collection[T]) Count(ctx context.Context, build QueryBuilder) (int, error) {
	coll, err := c.ref(ctx)
	if err != nil {
		return 0, err
	}
	query := coll.Query
	if build != nil {
		query = build(query)
	}
	result, err := query.NewAggregationQuery().WithCount("total").Get(ctx)
	if err != nil {
		return 0, WrapError(c.op("count"), err)
	}
	raw, ok := result["total"]
	if !ok {
		return 0, fmt.Errorf("firestore: count result missing for %s", c.name)
	}
	return countValue(raw)
}

// Doc returns the reference for id, for use inside transactions.
func (c *Collection[T]) Doc(ctx context.Context, id string) (*firestore.DocumentRef, error) {
	if strings.TrimSpace(id) == "" {
		return nil, WrapError(c.op("doc"), errors.New("firestore: document id is required"))
	}
	coll, err := c.ref(ctx)
	if err != nil {
		return nil, err
	}
	return coll.Doc(id), nil
}

func (c *Collection[T]) ref(ctx context.Context) (*firestore.CollectionRef, error) {
	if c == nil || c.provider == nil {
		return nil, errors.New("firestore: provider is nil")
	}
	if c.name == "" {
		return nil, errors.New("firestore: collection name is required")
	}
	client, err := c.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(c.name), nil
}

func (c *Collection[T]) op(action string) string {
	return c.name + "." + action
}

// SubCollection is a typed view over a named subcollection of any parent.
type SubCollection[T any] struct {
	name string
}

func NewSubCollection[T any](name string) SubCollection[T] {
	return SubCollection[T]{name: name}
}

// List returns every document below parent ordered by field ascending.
func (s SubCollection[T]) List(ctx context.Context, parent *firestore.DocumentRef, orderBy string) ([]Document[T], error) {
	query := parent.Collection(s.name).Query
	if orderBy != "" {
		query = query.OrderBy(orderBy, firestore.Asc)
	}
	return collect[T](ctx, query.Documents(ctx), s.name+".list")
}

// Ref returns the document reference for id under parent.
func (s SubCollection[T]) Ref(parent *firestore.DocumentRef, id string) *firestore.DocumentRef {
	return parent.Collection(s.name).Doc(id)
}

// DeleteAll removes every document below parent in one batch per call.
func (s SubCollection[T]) DeleteAll(ctx context.Context, client *firestore.Client, parent *firestore.DocumentRef) error {
	refs, err := parent.Collection(s.name).DocumentRefs(ctx).GetAll()
	if err != nil {
		return WrapError(s.name+".delete_all", err)
	}
	if len(refs) == 0 {
		return nil
	}
	bw := client.BulkWriter(ctx)
	for _, ref := range refs {
		if _, err := bw.Delete(ref); err != nil {
			bw.End()
			return WrapError(s.name+".delete_all", err)
		}
	}
	bw.End()
	return nil
}

func collect[T any](ctx context.Context, iter *firestore.DocumentIterator, op string) ([]Document[T], error) {
	defer iter.Stop()
	var docs []Document[T]
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return docs, nil
		}
		if err != nil {
			return nil, WrapError(op, err)
		}
		doc, err := decode[T](snap)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
}

func decode[T any](snap *firestore.DocumentSnapshot) (Document[T], error) {
	var data T
	if err := snap.DataTo(&data); err != nil {
		return Document[T]{}, fmt.Errorf("firestore: decode %s: %w", snap.Ref.Path, err)
	}
	return Document[T]{
		ID:         snap.Ref.ID,
		Data:       data,
		CreateTime: snap.CreateTime,
		UpdateTime: snap.UpdateTime,
	}, nil
}

func countValue(raw any) (int, error) {
	switch v := raw.(type) {
	case int64:
		return int(v), nil
	case int:
		return v, nil
	case interface{ GetIntegerValue() int64 }:
		return int(v.GetIntegerValue()), nil
	default:
		return 0, fmt.Errorf("firestore: unexpected count type %T", raw)
	}
}
