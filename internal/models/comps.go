package models

// LocalizedText is a name or description in one language
type LocalizedText struct {
	Lang    string `mapstructure:"lang" json:"lang"`
	Content string `mapstructure:"content" json:"content"`
}

// PackageReq is a package requested by a group
type PackageReq struct {
	Type        string `mapstructure:"type" json:"type"`
	PackageName string `mapstructure:"package_name" json:"package_name"`
}

// Group is a comps group definition
type Group struct {
	ID           string          `mapstructure:"id" json:"id"`
	Names        []LocalizedText `mapstructure:"name" json:"name"`
	Descriptions []LocalizedText `mapstructure:"description" json:"description"`
	Default      bool            `mapstructure:"default" json:"default"`
	UserVisible  bool            `mapstructure:"uservisible" json:"uservisible"`
	Packages     []PackageReq    `mapstructure:"packages" json:"packages"`
}

// GroupCategory is a comps category, a named set of groups
type GroupCategory struct {
	ID           string          `mapstructure:"id" json:"id"`
	Names        []LocalizedText `mapstructure:"name" json:"name"`
	Descriptions []LocalizedText `mapstructure:"description" json:"description"`
	DisplayOrder *int64          `mapstructure:"display_order" json:"display_order,omitempty"`
	Groups       []string        `mapstructure:"groups" json:"groups"`
}

// Environment is a comps environment with mandatory and optional groups
type Environment struct {
	ID           string          `mapstructure:"id" json:"id"`
	Names        []LocalizedText `mapstructure:"name" json:"name"`
	Descriptions []LocalizedText `mapstructure:"description" json:"description"`
	DisplayOrder *int64          `mapstructure:"display_order" json:"display_order,omitempty"`
	Groups       []string        `mapstructure:"groups" json:"groups"`
	Options      []string        `mapstructure:"options" json:"options"`
}

// Reference is a link attached to an update advisory
type Reference struct {
	Href  string `mapstructure:"href" json:"href"`
	ID    string `mapstructure:"id" json:"id"`
	Type  string `mapstructure:"type" json:"type"`
	Title string `mapstructure:"title" json:"title"`
}

// UpdatePackage is a package shipped by an advisory
type UpdatePackage struct {
	Name     string `mapstructure:"name" json:"name"`
	Version  string `mapstructure:"version" json:"version"`
	Release  string `mapstructure:"release" json:"release"`
	Epoch    int64  `mapstructure:"epoch" json:"epoch"`
	Arch     string `mapstructure:"arch" json:"arch"`
	Src      string `mapstructure:"src" json:"src"`
	Filename string `mapstructure:"filename" json:"filename"`
	SumType  string `mapstructure:"sum_type" json:"sum_type"`
	Sum      string `mapstructure:"sum" json:"sum"`
}

// Collection is a named package collection of an advisory
type Collection struct {
	ShortName string          `mapstructure:"short" json:"short"`
	Name      string          `mapstructure:"name" json:"name"`
	Packages  []UpdatePackage `mapstructure:"packages" json:"packages"`
}

// Update is an update advisory
type Update struct {
	ID          string       `mapstructure:"id" json:"id"`
	From        string       `mapstructure:"from" json:"from"`
	Status      string       `mapstructure:"status" json:"status"`
	Type        string       `mapstructure:"type" json:"type"`
	Version     string       `mapstructure:"version" json:"version"`
	Title       string       `mapstructure:"title" json:"title"`
	Issued      string       `mapstructure:"issued_date" json:"issued_date"`
	Updated     *string      `mapstructure:"updated_date" json:"updated_date,omitempty"`
	Rights      *string      `mapstructure:"rights" json:"rights,omitempty"`
	Release     *string      `mapstructure:"release" json:"release,omitempty"`
	PushCount   *int64       `mapstructure:"pushcount" json:"pushcount,omitempty"`
	Severity    *string      `mapstructure:"severity" json:"severity,omitempty"`
	Summary     *string      `mapstructure:"summary" json:"summary,omitempty"`
	Description *string      `mapstructure:"description" json:"description,omitempty"`
	References  []Reference  `mapstructure:"references" json:"references"`
	Collections []Collection `mapstructure:"collections" json:"collections"`
}
