package decoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ralt/rpmexplorer/internal/models"
)

// fieldSpec locates one record field inside an element.
type fieldSpec struct {
	name string
	// path of the element holding the value, relative to the record element
	path string
	// attr names the attribute carrying the value; empty means text content
	attr string
	typ  models.FieldType
	// optional fields take def when the element or attribute is absent
	optional bool
	def      any
	// items describes the repeated child of a list field
	items *listSpec
	// normalize rewrites string values after extraction
	normalize func(string) string
}

// listSpec describes a repeated element under a container
type listSpec struct {
	element string
	fields  []fieldSpec
}

// nestedSpec is a per-package relationship list emitted unflattened
type nestedSpec struct {
	kind models.Kind
	path string
	list listSpec
}

// recordSpec maps one direct child of the document root to records
type recordSpec struct {
	element string
	// kind of the record itself; KindUnknown when the element only owns
	// nested lists
	kind   models.Kind
	fields []fieldSpec
	// key locates the owning package identifier for nested lists
	key    *fieldSpec
	nested []nestedSpec
}

// documentSpec describes a whole XML artifact
type documentSpec struct {
	root    string
	records []recordSpec
}

func (d documentSpec) record(element string) (recordSpec, bool) {
	for _, r := range d.records {
		if r.element == element {
			return r, true
		}
	}
	return recordSpec{}, false
}

func str(name, path, attr string) fieldSpec {
	return fieldSpec{name: name, path: path, attr: attr, typ: models.TypeString}
}

func integer(name, path, attr string) fieldSpec {
	return fieldSpec{name: name, path: path, attr: attr, typ: models.TypeInt}
}

func boolean(name, path, attr string) fieldSpec {
	return fieldSpec{name: name, path: path, attr: attr, typ: models.TypeBool}
}

func records(name, path, element string, fields ...fieldSpec) fieldSpec {
	return fieldSpec{name: name, path: path, typ: models.TypeRecords, items: &listSpec{element: element, fields: fields}}
}

func stringList(name, path, element string) fieldSpec {
	return fieldSpec{name: name, path: path, typ: models.TypeStringList, items: &listSpec{element: element}}
}

func (f fieldSpec) withDefault(def any) fieldSpec {
	f.optional = true
	f.def = def
	return f
}

func (f fieldSpec) normalized(fn func(string) string) fieldSpec {
	f.normalize = fn
	return f
}

// read extracts the field value. ok is false when the source is absent.
func (f fieldSpec) read(n *node, kind models.Kind) (value any, ok bool, err error) {
	target := n.find(f.path)
	if target == nil {
		return nil, false, nil
	}

	switch f.typ {
	case models.TypeRecords:
		items := target.children(f.items.element)
		out := make([]models.Record, 0, len(items))
		for _, item := range items {
			rec, err := extract(f.items.fields, item, kind)
			if err != nil {
				return nil, true, fmt.Errorf("%s: %w", f.name, err)
			}
			out = append(out, rec)
		}
		return out, true, nil
	case models.TypeStringList:
		items := target.children(f.items.element)
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, strings.TrimSpace(item.Content))
		}
		return out, true, nil
	}

	raw := target.Content
	if f.attr != "" {
		raw, ok = target.attr(f.attr)
		if !ok {
			return nil, false, nil
		}
	}

	v, err := convert(raw, f.typ)
	if err != nil {
		return nil, true, fmt.Errorf("field %s: %w", f.name, err)
	}
	if s, isString := v.(string); isString && f.normalize != nil {
		v = f.normalize(s)
	}
	return v, true, nil
}

// convert coerces a textual value to the declared scalar type
func convert(raw string, typ models.FieldType) (any, error) {
	switch typ {
	case models.TypeInt:
		return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	case models.TypeBool:
		return strconv.ParseBool(strings.TrimSpace(raw))
	default:
		return raw, nil
	}
}

// extract builds a record from an element. Optional fields fall back to
// their default; absent required fields yield a MissingFieldsError.
func extract(fields []fieldSpec, n *node, kind models.Kind) (models.Record, error) {
	rec := make(models.Record, len(fields))
	var missing []string

	for _, f := range fields {
		v, ok, err := f.read(n, kind)
		if err != nil {
			return rec, err
		}
		if !ok {
			if f.optional {
				rec[f.name] = f.def
				continue
			}
			missing = append(missing, f.name)
			continue
		}
		rec[f.name] = v
	}

	if len(missing) > 0 {
		return rec, &models.MissingFieldsError{Kind: kind, Missing: missing}
	}
	return rec, nil
}
