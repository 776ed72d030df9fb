package decoder

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// node is a generic element tree. Names are matched on their local part so
// rpm: and xml: prefixed names resolve like unprefixed ones.
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Content string     `xml:",chardata"`
	Nodes   []node     `xml:",any"`
}

func (n *node) child(local string) *node {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == local {
			return &n.Nodes[i]
		}
	}
	return nil
}

func (n *node) children(local string) []*node {
	var out []*node
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == local {
			out = append(out, &n.Nodes[i])
		}
	}
	return out
}

// find walks a slash separated path of child names. An empty path is the
// node itself.
func (n *node) find(path string) *node {
	if path == "" {
		return n
	}
	cur := n
	for _, part := range strings.Split(path, "/") {
		cur = cur.child(part)
		if cur == nil {
			return nil
		}
	}
	return cur
}

func (n *node) attr(local string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}

// stream decodes every direct child of the document root into a node and
// hands it to fn, one element at a time.
func stream(ctx context.Context, r io.Reader, root string, fn func(*node) error) error {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	inRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if !inRoot {
				return fmt.Errorf("document has no <%s> element", root)
			}
			return nil
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !inRoot {
				if t.Name.Local != root {
					return fmt.Errorf("unexpected root element <%s>, want <%s>", t.Name.Local, root)
				}
				inRoot = true
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			var n node
			if err := dec.DecodeElement(&n, &t); err != nil {
				return err
			}
			if err := fn(&n); err != nil {
				return err
			}
		case xml.EndElement:
			if inRoot && t.Name.Local == root {
				return nil
			}
		}
	}
}
