// Package repomd reads the repository index and decides which artifact
// represents each logical category.
package repomd

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/ralt/rpmexplorer/internal/models"
)

// XML structures for repomd.xml

type repomd struct {
	XMLName  xml.Name     `xml:"repomd"`
	Revision string       `xml:"revision"`
	Data     []repomdData `xml:"data"`
}

type repomdData struct {
	Type            string          `xml:"type,attr"`
	Checksum        *repomdChecksum `xml:"checksum"`
	OpenChecksum    *repomdChecksum `xml:"open-checksum"`
	Location        repomdLocation  `xml:"location"`
	Timestamp       *int64          `xml:"timestamp"`
	Size            *int64          `xml:"size"`
	OpenSize        *int64          `xml:"open-size"`
	DatabaseVersion *int            `xml:"database_version"`
}

type repomdChecksum struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type repomdLocation struct {
	Href string `xml:"href,attr"`
}

// Checksum is a typed digest
type Checksum struct {
	Type  string
	Value string
}

// Descriptor is one data entry of the index
type Descriptor struct {
	Type            string
	Category        models.Category
	Href            string
	Checksum        Checksum
	Size            int64
	Timestamp       int64
	OpenChecksum    *Checksum
	OpenSize        *int64
	DatabaseVersion *int
}

// IsArchive reports whether the referenced file wraps a compressed
// artifact: checksum, open-checksum and open-size must all be present.
func (d Descriptor) IsArchive() bool {
	return d.Checksum.Value != "" && d.OpenChecksum != nil && d.OpenChecksum.Value != "" && d.OpenSize != nil
}

// IsDatabase reports whether the entry declares a database schema version
func (d Descriptor) IsDatabase() bool {
	return d.DatabaseVersion != nil
}

// Index is the parsed repomd document
type Index struct {
	Revision string
	Data     []Descriptor
}

// ParseFile reads and parses the index at path
func ParseFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.PipelineError{
			Type: models.ErrIndexParse,
			Err:  fmt.Errorf("failed to open index: %w", err),
		}
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes a repomd document. Every data entry must carry a type,
// a checksum, a location and a size.
func Parse(r io.Reader) (*Index, error) {
	var doc repomd
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &models.PipelineError{
			Type: models.ErrIndexParse,
			Err:  fmt.Errorf("failed to decode repomd: %w", err),
		}
	}

	index := &Index{Revision: doc.Revision}
	seen := make(map[string]bool)

	for i, data := range doc.Data {
		desc, err := descriptorFrom(data)
		if err != nil {
			return nil, &models.PipelineError{
				Type:     models.ErrIndexParse,
				Category: data.Type,
				Err:      fmt.Errorf("data entry %d: %w", i, err),
			}
		}
		if seen[desc.Type] {
			return nil, &models.PipelineError{
				Type:     models.ErrIndexParse,
				Category: desc.Type,
				Err:      fmt.Errorf("duplicate data entry"),
			}
		}
		seen[desc.Type] = true
		index.Data = append(index.Data, desc)
	}

	return index, nil
}

func descriptorFrom(data repomdData) (Descriptor, error) {
	switch {
	case data.Type == "":
		return Descriptor{}, fmt.Errorf("missing type attribute")
	case data.Checksum == nil || data.Checksum.Value == "":
		return Descriptor{}, fmt.Errorf("missing checksum")
	case data.Location.Href == "":
		return Descriptor{}, fmt.Errorf("missing location href")
	case data.Size == nil:
		return Descriptor{}, fmt.Errorf("missing size")
	}

	desc := Descriptor{
		Type:            data.Type,
		Category:        models.ParseCategory(data.Type),
		Href:            data.Location.Href,
		Checksum:        Checksum{Type: data.Checksum.Type, Value: data.Checksum.Value},
		Size:            *data.Size,
		OpenSize:        data.OpenSize,
		DatabaseVersion: data.DatabaseVersion,
	}
	if data.Timestamp != nil {
		desc.Timestamp = *data.Timestamp
	}
	if data.OpenChecksum != nil {
		desc.OpenChecksum = &Checksum{Type: data.OpenChecksum.Type, Value: data.OpenChecksum.Value}
	}

	return desc, nil
}
