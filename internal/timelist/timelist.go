// Package timelist parses the fullfiletimelist manifest published at the
// top of mirrored repository trees.
package timelist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/ralt/rpmexplorer/internal/utils"
	"github.com/sirupsen/logrus"
)

// SupportedVersions lists the manifest versions Parse accepts
var SupportedVersions = []int{2}

// ErrUnsupportedVersion is wrapped when the [Version] section holds an
// unknown version.
var ErrUnsupportedVersion = errors.New("unsupported timelist version")

// EntryType is the type column of a [Files] row
type EntryType byte

const (
	TypeFile      EntryType = 'f'
	TypeDirectory EntryType = 'd'
	TypeLink      EntryType = 'l'
)

func (t EntryType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDirectory:
		return "directory"
	case TypeLink:
		return "link"
	default:
		return "unknown"
	}
}

// Entry is one row of the [Files] section
type Entry struct {
	Timestamp int64
	Type      EntryType
	Size      int64
	Path      string
}

// TimeList is a parsed manifest
type TimeList struct {
	Version      int
	Files        []Entry
	ChecksumType string
	// Checksums maps a path to its digest
	Checksums map[string]string
}

// ParseError locates a malformed line
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type section int

const (
	sectionNone section = iota
	sectionVersion
	sectionFiles
	sectionChecksums
	sectionEnd
)

func (s section) String() string {
	return [...]string{"start", "Version", "Files", "Checksums", "End"}[s]
}

// next lists the sections allowed after each section
var next = map[section][]section{
	sectionNone:      {sectionVersion},
	sectionVersion:   {sectionFiles},
	sectionFiles:     {sectionChecksums, sectionEnd},
	sectionChecksums: {sectionEnd},
}

// ParseFile reads a manifest from disk, decompressing it when its name
// carries a codec extension.
func ParseFile(path string) (*TimeList, error) {
	r, err := utils.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open timelist: %w", err)
	}
	defer r.Close()

	return Parse(r)
}

// Parse reads a manifest. Sections must appear in the order Version,
// Files, Checksums, End; anything after [End] is ignored.
func Parse(r io.Reader) (*TimeList, error) {
	tl := &TimeList{Checksums: make(map[string]string)}
	current := sectionNone
	sawVersion := false

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			sec, arg, err := parseHeader(line)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Err: err}
			}
			if !slices.Contains(next[current], sec) {
				return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("section [%s] cannot follow %s", sec, current)}
			}
			if current == sectionVersion && !sawVersion {
				return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("missing version")}
			}
			current = sec
			if sec == sectionChecksums {
				tl.ChecksumType = strings.ToLower(arg)
				if _, err := utils.NewHash(tl.ChecksumType); err != nil {
					logrus.Warnf("Timelist uses unknown hash type %s", arg)
				}
			}
			if sec == sectionEnd {
				return tl, nil
			}
			continue
		}

		var err error
		switch current {
		case sectionVersion:
			if sawVersion {
				err = fmt.Errorf("duplicate version")
				break
			}
			tl.Version, err = parseVersion(line)
			sawVersion = true
		case sectionFiles:
			var entry Entry
			entry, err = parseEntry(line)
			tl.Files = append(tl.Files, entry)
		case sectionChecksums:
			err = tl.parseChecksum(line)
		default:
			err = fmt.Errorf("data outside of a section")
		}
		if err != nil {
			return nil, &ParseError{Line: lineNo, Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read timelist: %w", err)
	}

	return nil, fmt.Errorf("missing [End] section after %s", current)
}

func parseHeader(line string) (section, string, error) {
	name := strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
	switch {
	case name == "Version":
		return sectionVersion, "", nil
	case name == "Files":
		return sectionFiles, "", nil
	case name == "End":
		return sectionEnd, "", nil
	case strings.HasPrefix(name, "Checksums "):
		alg := strings.TrimSpace(strings.TrimPrefix(name, "Checksums "))
		if alg == "" {
			return 0, "", fmt.Errorf("checksums section without hash type")
		}
		return sectionChecksums, alg, nil
	}
	return 0, "", fmt.Errorf("unknown section [%s]", name)
}

func parseVersion(line string) (int, error) {
	v, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q", line)
	}
	if !slices.Contains(SupportedVersions, v) {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	return v, nil
}

func parseEntry(line string) (Entry, error) {
	cols := strings.Split(line, "\t")
	if len(cols) != 4 {
		return Entry{}, fmt.Errorf("expected 4 columns, got %d", len(cols))
	}

	ts, err := strconv.ParseInt(cols[0], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid timestamp %q", cols[0])
	}

	if len(cols[1]) != 1 {
		return Entry{}, fmt.Errorf("invalid type %q", cols[1])
	}
	typ := EntryType(cols[1][0])
	switch typ {
	case TypeFile, TypeDirectory, TypeLink:
	default:
		return Entry{}, fmt.Errorf("invalid type %q", cols[1])
	}

	size, err := strconv.ParseInt(cols[2], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid size %q", cols[2])
	}

	if cols[3] == "" {
		return Entry{}, fmt.Errorf("empty path")
	}

	return Entry{Timestamp: ts, Type: typ, Size: size, Path: cols[3]}, nil
}

func (tl *TimeList) parseChecksum(line string) error {
	digest, path, ok := strings.Cut(line, "\t")
	if !ok || digest == "" || path == "" {
		return fmt.Errorf("expected digest and path")
	}
	tl.Checksums[path] = digest
	return nil
}

// RepodataFiles returns the regular files stored under a repodata directory
func (tl *TimeList) RepodataFiles() []Entry {
	var out []Entry
	for _, e := range tl.Files {
		if e.Type != TypeFile {
			continue
		}
		if slices.Contains(strings.Split(filepath.Dir(e.Path), "/"), "repodata") {
			out = append(out, e)
		}
	}
	return out
}

// Extensions counts the last extension of every repodata file
func (tl *TimeList) Extensions() map[string]int {
	counts := make(map[string]int)
	for _, e := range tl.RepodataFiles() {
		ext := strings.TrimPrefix(filepath.Ext(e.Path), ".")
		if ext == "" {
			ext = "none"
		}
		counts[ext]++
	}
	return counts
}

// Repositories returns the repository roots that publish repodata, sorted
func (tl *TimeList) Repositories() []string {
	seen := make(map[string]bool)
	for _, e := range tl.RepodataFiles() {
		if filepath.Base(e.Path) != "repomd.xml" {
			continue
		}
		seen[filepath.Dir(filepath.Dir(e.Path))] = true
	}
	out := make([]string, 0, len(seen))
	for root := range seen {
		out = append(out, root)
	}
	sort.Strings(out)
	return out
}

// Mismatch is a file whose local content disagrees with the manifest
type Mismatch struct {
	Path string
	Err  error
}

// Verify checks the files listed in the checksum section against a local
// copy of the tree rooted at root. Missing files are reported as mismatches.
func (tl *TimeList) Verify(root string) ([]Mismatch, error) {
	if tl.ChecksumType == "" {
		return nil, fmt.Errorf("timelist has no checksum section")
	}
	if _, err := utils.NewHash(tl.ChecksumType); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(tl.Checksums))
	for p := range tl.Checksums {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var mismatches []Mismatch
	for _, p := range paths {
		if err := utils.VerifyFileChecksum(filepath.Join(root, p), tl.ChecksumType, tl.Checksums[p]); err != nil {
			mismatches = append(mismatches, Mismatch{Path: p, Err: err})
		}
	}
	return mismatches, nil
}
