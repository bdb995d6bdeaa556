package model

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

const DesignIDField = "design_id"

// Record is one recovered LLM record before it is bound to a typed row.
type Record map[string]any

// ErrFieldMissing marks a coercion of a field that is not present at all.
var ErrFieldMissing = errors.New("field missing")

// CoercionError reports a record field that cannot be converted to its wire type.
type CoercionError struct {
	Field string
	Value any
	Err   error
}

func (e *CoercionError) Error() string {
	if errors.Is(e.Err, ErrFieldMissing) {
		return fmt.Sprintf("coerce %s: field missing", e.Field)
	}
	return fmt.Sprintf("coerce %s: cannot convert %v (%T): %v", e.Field, e.Value, e.Value, e.Err)
}

func (e *CoercionError) Unwrap() error { return e.Err }

// CoerceDesignID rewrites rec's design_id as an int in place.
func CoerceDesignID(rec Record) error {
	raw, ok := rec[DesignIDField]
	if !ok || raw == nil {
		return &CoercionError{Field: DesignIDField, Err: ErrFieldMissing}
	}
	id, err := cast.ToIntE(raw)
	if err != nil {
		return &CoercionError{Field: DesignIDField, Value: raw, Err: err}
	}
	rec[DesignIDField] = id
	return nil
}

// ValidationError lists the rule violations of one decoded row.
type ValidationError struct {
	Index  int
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("record %d: %s", e.Index, strings.Join(e.Fields, "; "))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("mention", func(fl validator.FieldLevel) bool {
		m, ok := fl.Field().Interface().(EntityMention)
		if !ok {
			return false
		}
		if strings.TrimSpace(m.Surface()) == "" {
			return false
		}
		switch m.Class() {
		case ClassPerson, ClassObject, ClassAnimal, ClassPlant, Null:
			return true
		}
		return false
	})
	return v
}

// ValidateStruct checks a row against its validate tags.
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, formatFieldError(fe))
			}
			return &ValidationError{Fields: fields}
		}
		return err
	}
	return nil
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s=%v must be one of: %s", field, e.Value(), e.Param())
	case "mention":
		return fmt.Sprintf("%s=%v is not a valid (entity, class) mention", field, e.Value())
	default:
		return fmt.Sprintf("%s=%v failed %s", field, e.Value(), e.Tag())
	}
}

// Decoded is the outcome of binding records to T: the rows that passed and why the others did not.
type Decoded[T any] struct {
	Rows     []T
	Rejected []error
}

// DecodeRecords binds each record to T (weakly typed, json tag names) and
// validates it. Records that fail either step are reported in Rejected.
func DecodeRecords[T any](records []Record) Decoded[T] {
	out := Decoded[T]{Rows: make([]T, 0, len(records))}
	for i, rec := range records {
		var row T
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &row,
			TagName:          "json",
			WeaklyTypedInput: true,
			Squash:           true,
		})
		if err != nil {
			out.Rejected = append(out.Rejected, errors.Wrapf(err, "record %d", i))
			continue
		}
		if err := dec.Decode(map[string]any(rec)); err != nil {
			out.Rejected = append(out.Rejected, errors.Wrapf(err, "record %d", i))
			continue
		}
		if err := ValidateStruct(row); err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				verr.Index = i
			}
			out.Rejected = append(out.Rejected, err)
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// CheckPairIDs reports every (design_id, s_o_id) that occurs more than once.
func CheckPairIDs(pairs []Pair) []PairKey {
	seen := make(map[PairKey]int, len(pairs))
	var dups []PairKey
	for _, p := range pairs {
		k := p.Key()
		seen[k]++
		if seen[k] == 2 {
			dups = append(dups, k)
		}
	}
	return dups
}
