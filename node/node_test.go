package node

import (
	"strings"
	"testing"

	"github.com/iov-one/pkconv/errors"
	"github.com/iov-one/pkconv/pkconvtest/assert"
)

const sampleDocument = `<?xml version="1.0" encoding="UTF-8"?>
<Project name="sample" version="710">
  <!-- a comment is dropped -->
  <Individual id="i1" name="John" species="Human">
    <Container name="Organism">
      <Container name="Kidney" organType="Kidney_old"></Container>
      <Parameter name="Weight" value="73" unit="kg"></Parameter>
    </Container>
  </Individual>
  <Note>free text</Note>
</Project>
`

func TestDecode(t *testing.T) {
	root, err := Decode(strings.NewReader(sampleDocument))
	assert.Nil(t, err)

	assert.Equal(t, "Project", root.Name)
	v, ok := root.Attr("version")
	assert.Equal(t, true, ok)
	assert.Equal(t, "710", v)
	assert.Equal(t, 2, len(root.Children))

	kidney := root.Child("Individual").Child("Container").Child("Container")
	organ, _ := kidney.Attr("organType")
	assert.Equal(t, "Kidney_old", organ)
	assert.Equal(t, "free text", root.Child("Note").Text)
}

func TestDecodeInvalid(t *testing.T) {
	cases := map[string]struct {
		raw     string
		wantErr *errors.Error
	}{
		"empty input":         {raw: "", wantErr: errors.ErrEmpty},
		"not closed":          {raw: "<Project><A></Project>", wantErr: errors.ErrInput},
		"two roots":           {raw: "<A></A><B></B>", wantErr: errors.ErrInput},
		"duplicate attribute": {raw: `<A x="1" x="2"></A>`, wantErr: errors.ErrDuplicate},
		"prefixed element":    {raw: `<p:Project xmlns:p="urn:pk"></p:Project>`, wantErr: errors.ErrInput},
		"default namespace":   {raw: `<Project xmlns="urn:pk"></Project>`, wantErr: errors.ErrInput},
		"prefixed attribute":  {raw: `<Project xmlns:p="urn:pk" p:version="710"></Project>`, wantErr: errors.ErrInput},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.raw))
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestEncodeDecodeKeepsTree(t *testing.T) {
	root, err := Unmarshal([]byte(sampleDocument))
	assert.Nil(t, err)

	raw, err := Marshal(root)
	assert.Nil(t, err)

	again, err := Unmarshal(raw)
	assert.Nil(t, err)
	if !Equal(root, again) {
		t.Fatalf("tree changed after encoding\n%s", raw)
	}

	// Encoding is stable, so that migrating an up to date document does
	// not produce a different file.
	raw2, err := Marshal(again)
	assert.Nil(t, err)
	assert.Equal(t, string(raw), string(raw2))
}

func TestAttributes(t *testing.T) {
	n := New("Container", Attr{Name: "name", Value: "Kidney"}, Attr{Name: "organ", Value: "Kidney_old"})

	n.SetAttr("name", "Liver")
	n.SetAttr("id", "c1")
	assert.Equal(t, []Attr{
		{Name: "name", Value: "Liver"},
		{Name: "organ", Value: "Kidney_old"},
		{Name: "id", Value: "c1"},
	}, n.Attrs)

	ok, err := n.RenameAttr("organ", "organType")
	assert.Nil(t, err)
	assert.Equal(t, true, ok)
	assert.Equal(t, "organType", n.Attrs[1].Name)

	ok, err = n.RenameAttr("missing", "other")
	assert.Nil(t, err)
	assert.Equal(t, false, ok)

	if _, err := n.RenameAttr("name", "id"); !errors.ErrDuplicate.Is(err) {
		t.Fatalf("want duplicate error, got %+v", err)
	}

	assert.Equal(t, true, n.RemoveAttr("id"))
	assert.Equal(t, false, n.RemoveAttr("id"))
	assert.Equal(t, false, n.HasAttr("id"))
}

func TestWalkPaths(t *testing.T) {
	root := New("Project").Add(
		New("Individual").Add(New("Container"), New("Container")),
		New("Individual"),
	)

	var paths []string
	err := root.Walk(func(path string, n *Node) error {
		paths = append(paths, path)
		return nil
	})
	assert.Nil(t, err)
	assert.Equal(t, []string{
		"Project",
		"Project/Individual[0]",
		"Project/Individual[0]/Container[0]",
		"Project/Individual[0]/Container[1]",
		"Project/Individual[1]",
	}, paths)

	// An error stops the walk immediately.
	var visited int
	err = root.Walk(func(path string, n *Node) error {
		visited++
		if n.Name == "Individual" {
			return errors.ErrState
		}
		return nil
	})
	if !errors.ErrState.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
	assert.Equal(t, 2, visited)
}

func TestCopyIsIndependent(t *testing.T) {
	root, err := Unmarshal([]byte(sampleDocument))
	assert.Nil(t, err)

	cpy := root.Copy()
	if !Equal(root, cpy) {
		t.Fatal("copy must be equal")
	}

	cpy.Child("Individual").SetAttr("name", "Jane")
	cpy.Add(New("Extra"))
	name, _ := root.Child("Individual").Attr("name")
	assert.Equal(t, "John", name)
	assert.Equal(t, 2, len(root.Children))
	if Equal(root, cpy) {
		t.Fatal("modified copy must not be equal")
	}
}

func TestFingerprint(t *testing.T) {
	a, err := Unmarshal([]byte(sampleDocument))
	assert.Nil(t, err)
	b := a.Copy()

	assert.Equal(t, Fingerprint(a), Fingerprint(b))

	b.Child("Individual").SetAttr("species", "Dog")
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatal("different trees must not share a digest")
	}

	// Attribute boundaries are part of the digest.
	x := New("A", Attr{Name: "ab", Value: "c"})
	y := New("A", Attr{Name: "a", Value: "bc"})
	if Fingerprint(x) == Fingerprint(y) {
		t.Fatal("length prefixes must separate values")
	}
	assert.Equal(t, 64, len(Fingerprint(x).String()))
}

func TestValidate(t *testing.T) {
	ok := New("Project").Add(New("Individual"))
	assert.Nil(t, ok.Validate())

	bad := New("Project").Add(&Node{Name: "A", Attrs: []Attr{{Name: "x"}, {Name: "x"}}})
	assert.FieldError(t, bad.Validate(), "Project/A[0]@x", errors.ErrDuplicate)

	empty := New("Project").Add(&Node{})
	assert.FieldError(t, empty.Validate(), "Project/[0]", errors.ErrEmpty)
}
