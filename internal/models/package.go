package models

import (
	"fmt"

	rpmutils "github.com/sassoftware/go-rpmutils"
)

// Package is the canonical package entity. PkgID is the join key for
// every relationship row.
type Package struct {
	PkgID         string  `mapstructure:"pkgId" json:"pkgId"`
	Name          string  `mapstructure:"name" json:"name"`
	Arch          string  `mapstructure:"arch" json:"arch"`
	Epoch         int64   `mapstructure:"epoch" json:"epoch"`
	Version       string  `mapstructure:"version" json:"version"`
	Release       string  `mapstructure:"release" json:"release"`
	Summary       string  `mapstructure:"summary" json:"summary"`
	Description   string  `mapstructure:"description" json:"description"`
	URL           string  `mapstructure:"url" json:"url"`
	TimeFile      int64   `mapstructure:"time_file" json:"time_file"`
	TimeBuild     int64   `mapstructure:"time_build" json:"time_build"`
	License       string  `mapstructure:"rpm_license" json:"rpm_license"`
	Vendor        string  `mapstructure:"rpm_vendor" json:"rpm_vendor"`
	Group         string  `mapstructure:"rpm_group" json:"rpm_group"`
	BuildHost     string  `mapstructure:"rpm_buildhost" json:"rpm_buildhost"`
	SourceRPM     string  `mapstructure:"rpm_sourcerpm" json:"rpm_sourcerpm"`
	HeaderStart   int64   `mapstructure:"rpm_header_start" json:"rpm_header_start"`
	HeaderEnd     int64   `mapstructure:"rpm_header_end" json:"rpm_header_end"`
	Packager      string  `mapstructure:"rpm_packager" json:"rpm_packager"`
	SizePackage   int64   `mapstructure:"size_package" json:"size_package"`
	SizeInstalled int64   `mapstructure:"size_installed" json:"size_installed"`
	SizeArchive   int64   `mapstructure:"size_archive" json:"size_archive"`
	LocationHref  string  `mapstructure:"location_href" json:"location_href"`
	LocationBase  *string `mapstructure:"location_base" json:"location_base,omitempty"`
	ChecksumType  string  `mapstructure:"checksum_type" json:"checksum_type"`
}

// NEVRA returns name-[epoch:]version-release.arch
func (p Package) NEVRA() string {
	if p.Epoch > 0 {
		return fmt.Sprintf("%s-%d:%s-%s.%s", p.Name, p.Epoch, p.Version, p.Release, p.Arch)
	}
	return fmt.Sprintf("%s-%s-%s.%s", p.Name, p.Version, p.Release, p.Arch)
}

// CompareEVR orders two packages by epoch, then version, then release
// using rpm's version comparison.
func (p Package) CompareEVR(other Package) int {
	switch {
	case p.Epoch < other.Epoch:
		return -1
	case p.Epoch > other.Epoch:
		return 1
	}
	if c := rpmutils.Vercmp(p.Version, other.Version); c != 0 {
		return c
	}
	return rpmutils.Vercmp(p.Release, other.Release)
}

// Relation is a capability reference (conflicts, enhances, obsoletes,
// provides, recommends, suggests, supplements). Nil version parts mean an
// unversioned reference.
type Relation struct {
	Kind    Kind    `mapstructure:"-" json:"-"`
	PkgID   string  `mapstructure:"pkgId" json:"pkgId"`
	Name    string  `mapstructure:"name" json:"name"`
	Flags   *string `mapstructure:"flags" json:"flags,omitempty"`
	Epoch   *int64  `mapstructure:"epoch" json:"epoch,omitempty"`
	Version *string `mapstructure:"version" json:"version,omitempty"`
	Release *string `mapstructure:"release" json:"release,omitempty"`
}

// Requirement is a requires row; Pre marks a pre-install prerequisite.
type Requirement struct {
	Relation `mapstructure:",squash"`
	Pre      bool `mapstructure:"pre" json:"pre"`
}

// File is a file owned by a package as listed in primary metadata
type File struct {
	PkgID string `mapstructure:"pkgId" json:"pkgId"`
	Name  string `mapstructure:"name" json:"name"`
	Type  string `mapstructure:"type" json:"type"`
}

// FileList is one file of the standalone file list artifact
type FileList struct {
	PkgID    string `mapstructure:"pkgId" json:"pkgId"`
	FileName string `mapstructure:"filename" json:"filename"`
	FileType string `mapstructure:"filetype" json:"filetype"`
}

// ChangeLog is one changelog entry of a package
type ChangeLog struct {
	PkgID     string `mapstructure:"pkgId" json:"pkgId"`
	Author    string `mapstructure:"author" json:"author"`
	Date      int64  `mapstructure:"date" json:"date"`
	ChangeLog string `mapstructure:"changelog" json:"changelog"`
}

// DBInfo is the db_info row of a database artifact
type DBInfo struct {
	Category  string `mapstructure:"repo_category" json:"repo_category"`
	DBVersion int64  `mapstructure:"dbversion" json:"dbversion"`
	Checksum  string `mapstructure:"checksum" json:"checksum"`
}

// File type tags
const (
	FileTypeFile      = "file"
	FileTypeDirectory = "directory"
	FileTypeGhost     = "ghost"
)

// NormalizeFileType maps the tags used by the XML (dir, ghost) and
// database (d, g, f) forms onto the canonical tags. An empty tag is a
// plain file.
func NormalizeFileType(tag string) string {
	switch tag {
	case "", "f", "file":
		return FileTypeFile
	case "d", "dir", "directory":
		return FileTypeDirectory
	case "g", "ghost":
		return FileTypeGhost
	default:
		return tag
	}
}
