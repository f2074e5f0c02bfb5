package persistence

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/reflectx"
)

type memTable struct {
	rows   []Record
	unique [][]string
}

type memStore struct {
	mu        sync.Mutex
	tables    map[string]*memTable
	lastStamp time.Time
}

// MemoryGateway is an in-process Gateway with the same observable semantics as SQLGateway:
// ids and timestamps are generated on insert, unique keys are enforced and unknown tables
// fail with ErrTableNotFound.
type MemoryGateway struct {
	store  *memStore
	mapper *reflectx.Mapper
	inTx   bool
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		store:  &memStore{tables: map[string]*memTable{}},
		mapper: reflectx.NewMapperFunc("db", strings.ToLower),
	}
}

// CreateTable registers a table. Each uniqueKeys entry is a set of columns that must be unique together.
func (g *MemoryGateway) CreateTable(name string, uniqueKeys ...[]string) {
	g.lock()
	defer g.unlock()
	g.store.tables[name] = &memTable{unique: uniqueKeys}
}

// DropTable removes a table and its rows.
func (g *MemoryGateway) DropTable(name string) {
	g.lock()
	defer g.unlock()
	delete(g.store.tables, name)
}

func (g *MemoryGateway) lock() {
	if !g.inTx {
		g.store.mu.Lock()
	}
}

func (g *MemoryGateway) unlock() {
	if !g.inTx {
		g.store.mu.Unlock()
	}
}

func (g *MemoryGateway) table(name string) (*memTable, error) {
	if err := validateIdentifier(name); err != nil {
		return nil, err
	}
	t, ok := g.store.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w %q in the schema cache", ErrTableNotFound, name)
	}
	return t, nil
}

// now returns a strictly increasing timestamp so insertion order survives ordering by created_date.
func (g *MemoryGateway) now() time.Time {
	ts := time.Now().UTC().Truncate(time.Microsecond)
	if !ts.After(g.store.lastStamp) {
		ts = g.store.lastStamp.Add(time.Microsecond)
	}
	g.store.lastStamp = ts
	return ts
}

func (g *MemoryGateway) Filter(_ context.Context, table string, q Query, dest any) error {
	g.lock()
	defer g.unlock()

	t, err := g.table(table)
	if err != nil {
		return err
	}
	for col := range q.Match {
		if err := validateIdentifier(col); err != nil {
			return err
		}
	}
	order, ordered, err := ParseOrder(q.Order)
	if err != nil {
		return err
	}

	rows := []Record{}
	for _, row := range t.rows {
		if rowMatches(row, q.Match) {
			rows = append(rows, row)
		}
	}

	if ordered {
		sort.SliceStable(rows, func(i, j int) bool {
			c := compareValues(rows[i][order.Column], rows[j][order.Column])
			if order.Descending {
				return c > 0
			}
			return c < 0
		})
	}

	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}

	return g.decodeRows(rows, dest)
}

func (g *MemoryGateway) Create(_ context.Context, table string, rec Record, dest any) error {
	g.lock()
	defer g.unlock()

	t, err := g.table(table)
	if err != nil {
		return err
	}

	row := Record{}
	for col, val := range rec {
		if err := validateIdentifier(col); err != nil {
			return err
		}
		row[col] = val
	}
	if _, ok := row[ColumnID]; !ok {
		row[ColumnID] = uuid.New()
	}
	now := g.now()
	if _, ok := row[ColumnCreatedDate]; !ok {
		row[ColumnCreatedDate] = now
	}
	row[ColumnUpdatedDate] = now

	if err := t.checkUnique(row); err != nil {
		return err
	}

	t.rows = append(t.rows, row)
	return g.decodeRow(row, dest)
}

func (g *MemoryGateway) Update(_ context.Context, table string, id uuid.UUID, rec Record, dest any) error {
	g.lock()
	defer g.unlock()

	t, err := g.table(table)
	if err != nil {
		return err
	}
	idx := t.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}

	updated := copyRecord(t.rows[idx])
	for col, val := range rec {
		if err := validateIdentifier(col); err != nil {
			return err
		}
		if col == ColumnID {
			continue
		}
		updated[col] = val
	}
	updated[ColumnUpdatedDate] = g.now()

	if err := t.checkUnique(updated); err != nil {
		return err
	}

	t.rows[idx] = updated
	return g.decodeRow(updated, dest)
}

func (g *MemoryGateway) Increment(_ context.Context, table string, id uuid.UUID, column string, delta int, dest any) error {
	g.lock()
	defer g.unlock()

	t, err := g.table(table)
	if err != nil {
		return err
	}
	if err := validateIdentifier(column); err != nil {
		return err
	}
	idx := t.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}

	updated := copyRecord(t.rows[idx])
	current, _ := toFloat(updated[column])
	updated[column] = int(current) + delta
	updated[ColumnUpdatedDate] = g.now()

	t.rows[idx] = updated
	return g.decodeRow(updated, dest)
}

func (g *MemoryGateway) Delete(_ context.Context, table string, id uuid.UUID) error {
	g.lock()
	defer g.unlock()

	t, err := g.table(table)
	if err != nil {
		return err
	}
	idx := t.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}

	t.rows = append(t.rows[:idx], t.rows[idx+1:]...)
	return nil
}

func (g *MemoryGateway) DeleteWhere(_ context.Context, table string, match Match) (int64, error) {
	if len(match) == 0 {
		return 0, errors.New("refusing to delete without a match")
	}

	g.lock()
	defer g.unlock()

	t, err := g.table(table)
	if err != nil {
		return 0, err
	}

	kept := t.rows[:0:0]
	var deleted int64
	for _, row := range t.rows {
		if rowMatches(row, match) {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	t.rows = kept
	return deleted, nil
}

func (g *MemoryGateway) InTx(_ context.Context, fn func(tx Gateway) error) error {
	if g.inTx {
		return fn(g)
	}

	g.store.mu.Lock()
	defer g.store.mu.Unlock()

	snapshot := map[string][]Record{}
	for name, t := range g.store.tables {
		rows := make([]Record, len(t.rows))
		copy(rows, t.rows)
		snapshot[name] = rows
	}

	tx := &MemoryGateway{store: g.store, mapper: g.mapper, inTx: true}
	if err := fn(tx); err != nil {
		for name, rows := range snapshot {
			if t, ok := g.store.tables[name]; ok {
				t.rows = rows
			}
		}
		return err
	}
	return nil
}

func (t *memTable) indexOf(id uuid.UUID) int {
	for i, row := range t.rows {
		if valuesEqual(row[ColumnID], id) {
			return i
		}
	}
	return -1
}

func (t *memTable) checkUnique(candidate Record) error {
	for _, key := range t.unique {
		for _, row := range t.rows {
			if valuesEqual(row[ColumnID], candidate[ColumnID]) {
				continue
			}
			same := true
			for _, col := range key {
				if !valuesEqual(row[col], candidate[col]) {
					same = false
					break
				}
			}
			if same {
				return fmt.Errorf("%w: (%s) already exists", ErrDuplicate, strings.Join(key, ", "))
			}
		}
	}
	return nil
}

func copyRecord(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func rowMatches(row Record, match Match) bool {
	for col, want := range match {
		if !valuesEqual(row[col], want) {
			return false
		}
	}
	return true
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func valuesEqual(a, b any) bool {
	a, b = deref(a), deref(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.DeepEqual(a, b) {
		return true
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(deref(v))
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// compareValues orders like Postgres: NULL sorts after every value ascending.
func compareValues(a, b any) int {
	a, b = deref(a), deref(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func (g *MemoryGateway) decodeRows(rows []Record, dest any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return errors.New("dest must be a non-nil pointer to a slice")
	}
	sv := dv.Elem()
	if sv.Kind() != reflect.Slice {
		return errors.New("dest must be a non-nil pointer to a slice")
	}

	elemType := sv.Type().Elem()
	isPtr := elemType.Kind() == reflect.Ptr
	base := elemType
	if isPtr {
		base = elemType.Elem()
	}

	out := reflect.MakeSlice(sv.Type(), 0, len(rows))
	for _, row := range rows {
		ev := reflect.New(base)
		if err := g.mapRow(row, ev.Elem()); err != nil {
			return err
		}
		if isPtr {
			out = reflect.Append(out, ev)
		} else {
			out = reflect.Append(out, ev.Elem())
		}
	}
	sv.Set(out)
	return nil
}

func (g *MemoryGateway) decodeRow(row Record, dest any) error {
	if dest == nil {
		return nil
	}
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return errors.New("dest must be a non-nil pointer")
	}
	return g.mapRow(row, dv.Elem())
}

func (g *MemoryGateway) mapRow(row Record, v reflect.Value) error {
	fields := g.mapper.FieldMap(v)
	for col, val := range row {
		f, ok := fields[col]
		if !ok {
			continue
		}
		if err := assign(f, val); err != nil {
			return fmt.Errorf("column %q: %w", col, err)
		}
	}
	return nil
}

func assign(f reflect.Value, val any) error {
	val = deref(val)
	if val == nil {
		f.Set(reflect.Zero(f.Type()))
		return nil
	}

	target := f.Type()
	if target.Kind() == reflect.Ptr {
		p := reflect.New(target.Elem())
		if err := assign(p.Elem(), val); err != nil {
			return err
		}
		f.Set(p)
		return nil
	}

	rv := reflect.ValueOf(val)
	switch {
	case rv.Type().AssignableTo(target):
		f.Set(rv)
	case target.Kind() == reflect.String && rv.Kind() != reflect.String:
		f.SetString(fmt.Sprint(val))
	case rv.Type().ConvertibleTo(target):
		f.Set(rv.Convert(target))
	default:
		return fmt.Errorf("cannot assign %T to %s", val, target)
	}
	return nil
}
