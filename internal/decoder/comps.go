package decoder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ralt/rpmexplorer/internal/materialize"
	"github.com/ralt/rpmexplorer/internal/models"
	"github.com/ralt/rpmexplorer/internal/utils"
)

// Lines containing any of these markers are dropped before parsing comps
var compsDoctypeMarkers = []string{"DOCTYPE comps", "DTD Comps info", "comps.dtd"}

// CompsDecoder rewrites a comps document into a plain form and decodes its
// groups, categories and environments.
type CompsDecoder struct {
	xml XMLDecoder
}

// NewCompsDecoder creates a decoder for a group category
func NewCompsDecoder(category models.Category) *CompsDecoder {
	return &CompsDecoder{xml: XMLDecoder{category: category, doc: compsDocument}}
}

// Decode implements Decoder
func (d *CompsDecoder) Decode(ctx context.Context, artifact *materialize.Artifact) (*models.Raw, error) {
	rewritten, err := RewriteComps(artifact.WorkPath)
	if err != nil {
		return nil, &models.PipelineError{
			Type:     models.ErrFileOp,
			Category: d.xml.category.String(),
			Err:      err,
		}
	}
	return d.xml.decodeFile(ctx, rewritten)
}

// RewrittenCompsPath returns the sibling path the rewritten document is
// written to.
func RewrittenCompsPath(path string) string {
	dir, base := filepath.Split(path)
	if strings.Contains(base, "comps") {
		return filepath.Join(dir, strings.Replace(base, "comps", "compsnew", 1))
	}
	return filepath.Join(dir, "rewritten-"+base)
}

// RewriteComps drops the document type declaration lines and strips the
// xml: prefix from attribute names. The source may be compressed; the
// rewritten document is written uncompressed.
func RewriteComps(path string) (string, error) {
	dst := RewrittenCompsPath(path)
	if utils.CodecFor(path) != utils.CodecNone {
		dst = utils.StripCodecExt(dst)
	}

	src, err := utils.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open comps: %w", err)
	}
	defer src.Close()

	out, err := utils.CreateWriter(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create rewritten comps: %w", err)
	}

	if err := rewriteComps(out, src); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to rewrite comps: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	return dst, nil
}

func rewriteComps(w io.Writer, r io.Reader) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	for {
		line, err := br.ReadString('\n')
		if line != "" && !isDoctypeLine(line) {
			if _, werr := bw.WriteString(strings.ReplaceAll(line, "xml:", "")); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

func isDoctypeLine(line string) bool {
	for _, marker := range compsDoctypeMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}
