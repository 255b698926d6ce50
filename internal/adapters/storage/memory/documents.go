package memory

import (
	"context"
	"sort"

	"vet-clinic/internal/domain/apperr"
	"vet-clinic/internal/domain/document"
)

type docStore struct {
	s *Store
}

func (d *docStore) Get(ctx context.Context, table document.Table, id string) (document.Document, error) {
	if err := document.CheckTable(table); err != nil {
		return nil, err
	}

	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	if !d.s.exists(table, id) {
		return nil, apperr.NotFound(string(table), id)
	}
	return d.s.docGet(table, id), nil
}

func (d *docStore) Set(ctx context.Context, table document.Table, id string, doc document.Document) error {
	if err := document.CheckTable(table); err != nil {
		return err
	}
	doc, err := document.Normalize(doc)
	if err != nil {
		return err
	}

	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	if !d.s.exists(table, id) {
		return apperr.NotFound(string(table), id)
	}
	d.s.docSet(table, id, doc)
	return nil
}

func (d *docStore) Merge(ctx context.Context, table document.Table, id string, patch document.Document) (document.Document, error) {
	if err := document.CheckTable(table); err != nil {
		return nil, err
	}
	patch, err := document.Normalize(patch)
	if err != nil {
		return nil, err
	}

	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	if !d.s.exists(table, id) {
		return nil, apperr.NotFound(string(table), id)
	}
	merged := d.s.docGet(table, id).Merge(patch)
	d.s.docSet(table, id, merged)
	return merged.Clone(), nil
}

func (d *docStore) QueryByKeyExists(ctx context.Context, table document.Table, key string) ([]string, error) {
	return d.query(table, document.Filter{Key: key})
}

func (d *docStore) QueryByKeyEquals(ctx context.Context, table document.Table, key string, value any) ([]string, error) {
	return d.query(table, document.Filter{Key: key, Value: value, MatchValue: true})
}

func (d *docStore) query(table document.Table, f document.Filter) ([]string, error) {
	if err := document.CheckTable(table); err != nil {
		return nil, err
	}
	if err := document.CheckKey(f.Key); err != nil {
		return nil, err
	}

	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	ids := make([]string, 0)
	for id, doc := range d.s.docs[table] {
		if d.s.exists(table, id) && f.Matches(doc) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return d.s.seqOf(table, ids[i]) < d.s.seqOf(table, ids[j])
	})
	return ids, nil
}
