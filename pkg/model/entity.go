package model

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"
)

const (
	ClassPerson = "PERSON"
	ClassObject = "OBJECT"
	ClassAnimal = "ANIMAL"
	ClassPlant  = "PLANT"

	// Null is the absence marker the model emits for missing pairs and predicates.
	Null = "NULL"
)

// EntityClasses lists the annotation classes in the order they are loaded.
var EntityClasses = []string{ClassPerson, ClassObject, ClassAnimal, ClassPlant}

// EntityMention is a (surface string, class) pair. It travels as a two element JSON array.
type EntityMention [2]string

func NewMention(surface, class string) EntityMention {
	return EntityMention{surface, class}
}

func (m EntityMention) Surface() string { return m[0] }
func (m EntityMention) Class() string   { return m[1] }

// EntityList is stored as a JSON text column when exported.
type EntityList []EntityMention

// Value 实现 driver.Valuer 接口
func (l EntityList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]EntityMention(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner 接口
func (l *EntityList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.Errorf("entity list: unsupported scan type %T", value)
	}
	var out []EntityMention
	if err := json.Unmarshal(b, &out); err != nil {
		return errors.Wrap(err, "entity list: decode")
	}
	*l = out
	return nil
}

// Surfaces returns the surface strings in order.
func (l EntityList) Surfaces() []string {
	out := make([]string, 0, len(l))
	for _, m := range l {
		out = append(out, m.Surface())
	}
	return out
}

// Classes returns the classes in order.
func (l EntityList) Classes() []string {
	out := make([]string, 0, len(l))
	for _, m := range l {
		out = append(out, m.Class())
	}
	return out
}
