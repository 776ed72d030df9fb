package models

// Record is a decoded row keyed by canonical field name. Values are
// string, int64, bool, []string, []Record or nil.
type Record map[string]any

// Kind identifies a canonical entity collection
type Kind int

const (
	KindUnknown Kind = iota
	KindDBInfo
	KindPackages
	KindConflicts
	KindEnhances
	KindFiles
	KindObsoletes
	KindProvides
	KindRecommends
	KindRequires
	KindSuggests
	KindSupplements
	KindFileList
	KindChangelog
	KindGroup
	KindCategory
	KindEnvironment
	KindUpdate
)

type kindInfo struct {
	name    string
	display string
}

var kinds = map[Kind]kindInfo{
	KindDBInfo:      {"db_info", "DBInfo"},
	KindPackages:    {"packages", "Packages"},
	KindConflicts:   {"conflicts", "Conflicts"},
	KindEnhances:    {"enhances", "Enhances"},
	KindFiles:       {"files", "Files"},
	KindObsoletes:   {"obsoletes", "Obsoletes"},
	KindProvides:    {"provides", "Provides"},
	KindRecommends:  {"recommends", "Recommends"},
	KindRequires:    {"requires", "Requires"},
	KindSuggests:    {"suggests", "Suggests"},
	KindSupplements: {"supplements", "Supplements"},
	KindFileList:    {"filelist", "FileList"},
	KindChangelog:   {"changelog", "ChangeLog"},
	KindGroup:       {"group", "Group"},
	KindCategory:    {"category", "Category"},
	KindEnvironment: {"environment", "Environment"},
	KindUpdate:      {"update", "Update"},
}

// RelationKinds are the eight capability relationship lists of a package.
var RelationKinds = []Kind{
	KindConflicts,
	KindEnhances,
	KindObsoletes,
	KindProvides,
	KindRecommends,
	KindRequires,
	KindSuggests,
	KindSupplements,
}

// TableKinds are the officially known table names of the database forms.
var TableKinds = []Kind{
	KindDBInfo,
	KindPackages,
	KindConflicts,
	KindEnhances,
	KindFiles,
	KindObsoletes,
	KindProvides,
	KindRecommends,
	KindRequires,
	KindSuggests,
	KindSupplements,
	KindFileList,
	KindChangelog,
}

// String returns the table/collection name
func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "unknown"
}

// DisplayName returns the entity type name used in diagnostics
func (k Kind) DisplayName() string {
	if info, ok := kinds[k]; ok {
		return info.display
	}
	return "Unknown"
}

// ParseKind maps a table or collection name to a Kind.
func ParseKind(name string) Kind {
	for k, info := range kinds {
		if info.name == name {
			return k
		}
	}
	return KindUnknown
}

// FieldType is the declared type of a record field
type FieldType int

const (
	TypeString FieldType = iota
	TypeInt
	TypeBool
	TypeStringList
	TypeRecords
)

// Field describes one record field
type Field struct {
	Name     string
	Type     FieldType
	Required bool
}

// Schema describes the record shape accepted for a Kind
type Schema struct {
	Kind   Kind
	Fields []Field
}

// Field looks up a field by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Required returns the names of fields that must be present.
func (s Schema) Required() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

func req(name string, t FieldType) Field { return Field{Name: name, Type: t, Required: true} }
func opt(name string, t FieldType) Field { return Field{Name: name, Type: t} }

func relationFields(extra ...Field) []Field {
	fields := []Field{
		req("pkgId", TypeString),
		req("name", TypeString),
		req("flags", TypeString),
		req("epoch", TypeInt),
		req("version", TypeString),
		req("release", TypeString),
	}
	return append(fields, extra...)
}

func headerFields(extra ...Field) []Field {
	fields := []Field{
		req("id", TypeString),
		req("name", TypeRecords),
		req("description", TypeRecords),
	}
	return append(fields, extra...)
}

// Schemas is the shared schema-description table, one entry per Kind.
var Schemas = map[Kind]Schema{
	KindDBInfo: {Kind: KindDBInfo, Fields: []Field{
		req("repo_category", TypeString),
		req("dbversion", TypeInt),
		req("checksum", TypeString),
	}},
	KindPackages: {Kind: KindPackages, Fields: []Field{
		req("pkgId", TypeString),
		req("name", TypeString),
		req("arch", TypeString),
		req("version", TypeString),
		req("epoch", TypeInt),
		req("release", TypeString),
		req("summary", TypeString),
		req("description", TypeString),
		req("url", TypeString),
		req("time_file", TypeInt),
		req("time_build", TypeInt),
		req("rpm_license", TypeString),
		req("rpm_vendor", TypeString),
		req("rpm_group", TypeString),
		req("rpm_buildhost", TypeString),
		req("rpm_sourcerpm", TypeString),
		req("rpm_header_start", TypeInt),
		req("rpm_header_end", TypeInt),
		req("rpm_packager", TypeString),
		req("size_package", TypeInt),
		req("size_installed", TypeInt),
		req("size_archive", TypeInt),
		req("location_href", TypeString),
		opt("location_base", TypeString),
		req("checksum_type", TypeString),
	}},
	KindConflicts:   {Kind: KindConflicts, Fields: relationFields()},
	KindEnhances:    {Kind: KindEnhances, Fields: relationFields()},
	KindObsoletes:   {Kind: KindObsoletes, Fields: relationFields()},
	KindProvides:    {Kind: KindProvides, Fields: relationFields()},
	KindRecommends:  {Kind: KindRecommends, Fields: relationFields()},
	KindRequires:    {Kind: KindRequires, Fields: relationFields(req("pre", TypeBool))},
	KindSuggests:    {Kind: KindSuggests, Fields: relationFields()},
	KindSupplements: {Kind: KindSupplements, Fields: relationFields()},
	KindFiles: {Kind: KindFiles, Fields: []Field{
		req("pkgId", TypeString),
		req("name", TypeString),
		req("type", TypeString),
	}},
	KindFileList: {Kind: KindFileList, Fields: []Field{
		req("pkgId", TypeString),
		req("filename", TypeString),
		req("filetype", TypeString),
	}},
	KindChangelog: {Kind: KindChangelog, Fields: []Field{
		req("pkgId", TypeString),
		opt("author", TypeString),
		req("date", TypeInt),
		req("changelog", TypeString),
	}},
	KindGroup: {Kind: KindGroup, Fields: headerFields(
		req("default", TypeBool),
		req("uservisible", TypeBool),
		req("packages", TypeRecords),
	)},
	KindCategory: {Kind: KindCategory, Fields: headerFields(
		opt("display_order", TypeInt),
		req("groups", TypeStringList),
	)},
	KindEnvironment: {Kind: KindEnvironment, Fields: headerFields(
		opt("display_order", TypeInt),
		req("groups", TypeStringList),
		req("options", TypeStringList),
	)},
	KindUpdate: {Kind: KindUpdate, Fields: []Field{
		req("id", TypeString),
		req("from", TypeString),
		req("status", TypeString),
		req("type", TypeString),
		req("version", TypeString),
		req("title", TypeString),
		req("issued_date", TypeString),
		opt("updated_date", TypeString),
		opt("rights", TypeString),
		opt("release", TypeString),
		opt("pushcount", TypeInt),
		opt("severity", TypeString),
		opt("summary", TypeString),
		opt("description", TypeString),
		req("references", TypeRecords),
		req("collections", TypeRecords),
	}},
}
