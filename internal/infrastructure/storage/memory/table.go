package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/id"
	"marketbill/internal/domain"
)

// table implements domain.CatalogRepository over one map of the state.
type table[E any] struct {
	store *Store
	name  string
	rows  func(st *state) map[id.ID]*E
	idOf  func(e *E) id.ID

	// unique rejects a row that collides with another one (optional)
	unique func(st *state, e *E) error
	// fields exposes columns usable in ListFilter.Equals
	fields map[string]func(e *E) any
	// search returns the text matched by ListFilter.Search (optional)
	search func(e *E) string
	// active reports the active flag (optional)
	active func(e *E) bool
}

func copyOf[E any](e *E) *E {
	cp := *e
	return &cp
}

func (t *table[E]) Create(ctx context.Context, e *E) error {
	return t.store.write(func(st *state) error {
		rows := t.rows(st)
		if _, ok := rows[t.idOf(e)]; ok {
			return apperror.NewDuplicate(t.name, "id", t.idOf(e).String())
		}
		if t.unique != nil {
			if err := t.unique(st, e); err != nil {
				return err
			}
		}
		rows[t.idOf(e)] = copyOf(e)
		return nil
	})
}

func (t *table[E]) GetByID(ctx context.Context, entityID id.ID) (*E, error) {
	var out *E
	t.store.read(func(st *state) {
		if e, ok := t.rows(st)[entityID]; ok {
			out = copyOf(e)
		}
	})
	if out == nil {
		return nil, apperror.NewNotFound(t.name, entityID.String())
	}
	return out, nil
}

func (t *table[E]) Update(ctx context.Context, e *E) error {
	return t.store.write(func(st *state) error {
		rows := t.rows(st)
		if _, ok := rows[t.idOf(e)]; !ok {
			return apperror.NewNotFound(t.name, t.idOf(e).String())
		}
		if t.unique != nil {
			if err := t.unique(st, e); err != nil {
				return err
			}
		}
		rows[t.idOf(e)] = copyOf(e)
		return nil
	})
}

func (t *table[E]) Delete(ctx context.Context, entityID id.ID) error {
	return t.store.write(func(st *state) error {
		rows := t.rows(st)
		if _, ok := rows[entityID]; !ok {
			return apperror.NewNotFound(t.name, entityID.String())
		}
		delete(rows, entityID)
		return nil
	})
}

func (t *table[E]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	var ok bool
	t.store.read(func(st *state) {
		_, ok = t.rows(st)[entityID]
	})
	return ok, nil
}

func (t *table[E]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*E], error) {
	for col := range filter.Equals {
		if _, ok := t.fields[col]; !ok {
			return domain.ListResult[*E]{}, apperror.NewInvalidInput(col, "unsupported filter "+col)
		}
	}

	all := t.find(func(e *E) bool { return t.matches(e, filter) })
	result := domain.ListResult[*E]{
		TotalCount: int64(len(all)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}

	start := min(filter.Offset, len(all))
	end := len(all)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(all))
	}
	result.Items = all[start:end]
	return result, nil
}

func (t *table[E]) matches(e *E, filter domain.ListFilter) bool {
	if len(filter.IDs) > 0 && !containsID(filter.IDs, t.idOf(e)) {
		return false
	}
	if filter.OnlyActive && t.active != nil && !t.active(e) {
		return false
	}
	if filter.Search != "" && t.search != nil &&
		!strings.Contains(strings.ToLower(t.search(e)), strings.ToLower(filter.Search)) {
		return false
	}
	for col, want := range filter.Equals {
		if !equalValue(t.fields[col](e), want) {
			return false
		}
	}
	return true
}

// find returns copies of matching rows ordered by id.
func (t *table[E]) find(pred func(e *E) bool) []*E {
	var out []*E
	t.store.read(func(st *state) {
		for _, e := range t.rows(st) {
			if pred(e) {
				out = append(out, copyOf(e))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return id.Less(t.idOf(out[i]), t.idOf(out[j])) })
	return out
}

// first returns the first matching row or a not-found error.
func (t *table[E]) first(pred func(e *E) bool, key any) (*E, error) {
	rows := t.find(pred)
	if len(rows) == 0 {
		return nil, apperror.NewNotFound(t.name, key)
	}
	return rows[0], nil
}

// mutate applies fn to a copy of the row and stores it.
func (t *table[E]) mutate(entityID id.ID, fn func(e *E)) error {
	return t.store.write(func(st *state) error {
		rows := t.rows(st)
		e, ok := rows[entityID]
		if !ok {
			return apperror.NewNotFound(t.name, entityID.String())
		}
		cp := copyOf(e)
		fn(cp)
		rows[entityID] = cp
		return nil
	})
}

func containsID(ids []id.ID, v id.ID) bool {
	for _, x := range ids {
		if x == v {
			return true
		}
	}
	return false
}

func equalValue(got, want any) bool {
	if gt, ok := got.(time.Time); ok {
		if wt, ok := want.(time.Time); ok {
			return gt.Equal(wt)
		}
		return false
	}
	return got == want
}
