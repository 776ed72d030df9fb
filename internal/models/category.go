package models

// Category is a metadata artifact type as named by repomd.xml
type Category int

const (
	CategoryUnknown Category = iota
	CategoryPrimary
	CategoryPrimaryDB
	CategoryFilelists
	CategoryFilelistsDB
	CategoryOther
	CategoryOtherDB
	CategoryGroup
	CategoryGroupGz
	CategoryUpdateinfo
)

var categoryNames = map[Category]string{
	CategoryPrimary:     "primary",
	CategoryPrimaryDB:   "primary_db",
	CategoryFilelists:   "filelists",
	CategoryFilelistsDB: "filelists_db",
	CategoryOther:       "other",
	CategoryOtherDB:     "other_db",
	CategoryGroup:       "group",
	CategoryGroupGz:     "group_gz",
	CategoryUpdateinfo:  "updateinfo",
}

// AllCategories lists every category that has a decoder.
var AllCategories = []Category{
	CategoryPrimary,
	CategoryPrimaryDB,
	CategoryFilelists,
	CategoryFilelistsDB,
	CategoryOther,
	CategoryOtherDB,
	CategoryGroup,
	CategoryGroupGz,
	CategoryUpdateinfo,
}

// String returns the repomd type name
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCategory maps a repomd type attribute to a Category.
func ParseCategory(name string) Category {
	for c, n := range categoryNames {
		if n == name {
			return c
		}
	}
	return CategoryUnknown
}

// IsDatabase reports whether the category is the relational form.
func (c Category) IsDatabase() bool {
	switch c {
	case CategoryPrimaryDB, CategoryFilelistsDB, CategoryOtherDB:
		return true
	}
	return false
}

// Priority describes a group of alternative representations of the same
// logical content, most preferred first.
type Priority struct {
	Preferred Category
	Fallback  Category
	// VersionChecked means Preferred is only eligible when its declared
	// database version is supported.
	VersionChecked bool
}

// Priorities is the immutable alternative table used by the resolver.
type Priorities []Priority

// DefaultPriorities returns the standard repomd alternatives.
func DefaultPriorities() Priorities {
	return Priorities{
		{Preferred: CategoryPrimaryDB, Fallback: CategoryPrimary, VersionChecked: true},
		{Preferred: CategoryFilelistsDB, Fallback: CategoryFilelists, VersionChecked: true},
		{Preferred: CategoryOtherDB, Fallback: CategoryOther, VersionChecked: true},
		{Preferred: CategoryGroup, Fallback: CategoryGroupGz},
	}
}
