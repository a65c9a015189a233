package utils

import (
	"fmt"
	"reflect"
)

var ColumnTag = "db"

type taggedField struct {
	column string
	value  reflect.Value
}

// taggedFields walks the exported fields of a struct (or pointer to one)
// that carry a ColumnTag, in declaration order.
func taggedFields(input any) []taggedField {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	t := v.Type()
	fields := make([]taggedField, 0, v.NumField())
	for i := range v.NumField() {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}

		column := f.Tag.Get(ColumnTag)
		if column == "" || column == "-" {
			continue
		}

		fields = append(fields, taggedField{column: column, value: v.Field(i)})
	}

	return fields
}

// StructTagValues returns the column names of input in field order.
func StructTagValues(input any) []string {
	fields := taggedFields(input)
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.column
	}
	return columns
}

// StructToMap maps column names to field values, ready for squirrel SetMap.
func StructToMap(input any) map[string]any {
	fields := taggedFields(input)
	result := make(map[string]any, len(fields))
	for _, f := range fields {
		result[f.column] = f.value.Interface()
	}
	return result
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}

	if msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)
}
