package store

import (
	"fmt"
	"strings"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/mindsync-ai/mindsync/ent/schema"
)

// entities lists the ent schemas the store persists.
var entities = []ent.Interface{
	entschema.Profile{},
	entschema.KnownWord{},
	entschema.WordStat{},
	entschema.LLMRequestEvent{},
}

// migrationTables turns the ent schema definitions into tables for ent's
// migration engine. Each table gets ent's auto-increment "id" key.
func migrationTables() ([]*schema.Table, error) {
	tables := make([]*schema.Table, 0, len(entities))
	for _, e := range entities {
		t, err := migrationTable(e)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func migrationTable(e ent.Interface) (*schema.Table, error) {
	name := tableName(e)
	if name == "" {
		return nil, fmt.Errorf("%T: no entsql table annotation", e)
	}
	t := schema.NewTable(name).
		AddPrimary(&schema.Column{Name: "id", Type: field.TypeInt, Increment: true})

	var (
		fields  []ent.Field
		indexes []ent.Index
	)
	for _, m := range e.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, e.Fields()...)
	indexes = append(indexes, e.Indexes()...)

	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, d.Name, d.Err)
		}
		t.AddColumn(column(d))
	}
	for _, i := range indexes {
		d := i.Descriptor()
		key := d.StorageKey
		if key == "" {
			key = name + "_" + strings.Join(d.Fields, "_")
		}
		t.AddIndex(key, d.Unique, d.Fields)
	}
	return t, nil
}

func column(d *field.Descriptor) *schema.Column {
	c := &schema.Column{
		Name:     d.Name,
		Type:     d.Info.Type,
		Size:     int64(d.Size),
		Unique:   d.Unique,
		Nullable: d.Optional,
		Comment:  d.Comment,
	}
	if d.StorageKey != "" {
		c.Name = d.StorageKey
	}
	// Function defaults are applied by the insert, not the table.
	switch v := d.Default.(type) {
	case string, bool, int, int64, float64:
		c.Default = v
	}
	return c
}

func tableName(e ent.Interface) string {
	for _, a := range e.Annotations() {
		switch a := a.(type) {
		case entsql.Annotation:
			return a.Table
		case *entsql.Annotation:
			if a != nil {
				return a.Table
			}
		}
	}
	return ""
}
