package postgres

import (
	"reflect"
	"sync"
)

// columnCache maps reflect.Type -> []column.
var columnCache sync.Map

type column struct {
	index []int
	name  string
}

func columnsOf(t reflect.Type) []column {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := columnCache.Load(t); ok {
		return cached.([]column)
	}

	var cols []column
	if t.Kind() == reflect.Struct {
		for _, f := range reflect.VisibleFields(t) {
			if f.Anonymous {
				continue
			}
			tag := f.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			cols = append(cols, column{index: f.Index, name: tag})
		}
	}
	columnCache.Store(t, cols)
	return cols
}

// ExtractDBColumns returns the "db" tag names of T in field order, embedded structs included.
// Computed once per type.
func ExtractDBColumns[T any]() []string {
	var zero T
	cols := columnsOf(reflect.TypeOf(zero))
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

// StructToMap converts a struct to column -> value using "db" tags, for squirrel SetMap.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	cols := columnsOf(rv.Type())
	res := make(map[string]any, len(cols))
	for _, c := range cols {
		res[c.name] = rv.FieldByIndex(c.index).Interface()
	}
	return res
}
