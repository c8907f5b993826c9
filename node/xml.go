package node

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/iov-one/pkconv/errors"
)

// Decode reads a single XML document and returns its root element as a node
// tree. Comments, processing instructions and whitespace only character data
// are dropped. Namespaced names are rejected.
func Decode(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)

	var (
		root  *Node
		stack []*Node
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name, err := plainName(t.Name)
			if err != nil {
				return nil, err
			}
			n := &Node{Name: name}
			for _, a := range t.Attr {
				name, err := plainName(a.Name)
				if err != nil {
					return nil, err
				}
				if n.HasAttr(name) {
					return nil, errors.Wrapf(errors.ErrDuplicate, "attribute %q of %q", name, n.Name)
				}
				n.Attrs = append(n.Attrs, Attr{Name: name, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.Wrap(errors.ErrInput, "more than one root element")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			if text := strings.TrimSpace(string(t)); text != "" {
				top := stack[len(stack)-1]
				top.Text += text
			}
		}
	}
	if root == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "no root element")
	}
	return root, nil
}

// Unmarshal is a convenience wrapper around Decode.
func Unmarshal(raw []byte) (*Node, error) {
	return Decode(bytes.NewReader(raw))
}

// plainName returns the name of an element or attribute. Project documents
// do not use namespaces, and the decoder resolves prefixes to namespace URLs
// that cannot be written back.
func plainName(n xml.Name) (string, error) {
	if n.Space != "" {
		return "", errors.Wrapf(errors.ErrInput, "namespaced name %s:%s", n.Space, n.Local)
	}
	return n.Local, nil
}

// Encode writes the node tree as an indented XML document, prefixed with the
// XML declaration.
func Encode(w io.Writer, n *Node) error {
	if n == nil {
		return errors.Wrap(errors.ErrEmpty, "nil node")
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return errors.Wrap(err, "write header")
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := encode(enc, n); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return errors.Wrap(err, "flush")
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Marshal is a convenience wrapper around Encode.
func Marshal(n *Node) ([]byte, error) {
	var b bytes.Buffer
	if err := Encode(&b, n); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func encode(enc *xml.Encoder, n *Node) error {
	start := xml.StartElement{Name: xml.Name{Local: n.Name}}
	for _, a := range n.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := enc.EncodeToken(start); err != nil {
		return errors.Wrapf(err, "encode %q", n.Name)
	}
	if n.Text != "" {
		if err := enc.EncodeToken(xml.CharData(n.Text)); err != nil {
			return errors.Wrapf(err, "encode %q text", n.Name)
		}
	}
	for _, c := range n.Children {
		if err := encode(enc, c); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return errors.Wrapf(err, "encode %q", n.Name)
	}
	return nil
}
