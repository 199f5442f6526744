package docbase

import "encoding/json"

// DocumentBase is the result of a successful task: a named table whose
// columns are attributes and whose cells are backed by nuggets.
type DocumentBase struct {
	name       string
	attributes []string
	nuggets    []Nugget
}

// New returns an empty document base. The attribute order is fixed here.
func New(name string, attributes []string) *DocumentBase {
	attrs := make([]string, len(attributes))
	copy(attrs, attributes)
	return &DocumentBase{
		name:       name,
		attributes: attrs,
	}
}

func (d *DocumentBase) Name() string {
	return d.name
}

// Attributes returns a copy of the attribute names in their original order.
func (d *DocumentBase) Attributes() []string {
	attrs := make([]string, len(d.attributes))
	copy(attrs, d.attributes)
	return attrs
}

// Nuggets returns a copy of the nuggets in insertion order.
func (d *DocumentBase) Nuggets() []Nugget {
	nuggets := make([]Nugget, len(d.nuggets))
	copy(nuggets, d.nuggets)
	return nuggets
}

// AddNugget validates and appends a nugget.
func (d *DocumentBase) AddNugget(documentName, documentText string, startChar, endChar int) error {
	n, err := NewNugget(documentName, documentText, startChar, endChar)
	if err != nil {
		return err
	}
	d.nuggets = append(d.nuggets, n)
	return nil
}

// Documents returns the distinct document names in first-seen order.
func (d *DocumentBase) Documents() []string {
	seen := make(map[string]struct{})
	names := []string{}
	for _, n := range d.nuggets {
		if _, ok := seen[n.DocumentName]; ok {
			continue
		}
		seen[n.DocumentName] = struct{}{}
		names = append(names, n.DocumentName)
	}
	return names
}

// NuggetsFor returns the nuggets extracted from one document.
func (d *DocumentBase) NuggetsFor(documentName string) []Nugget {
	nuggets := []Nugget{}
	for _, n := range d.nuggets {
		if n.DocumentName == documentName {
			nuggets = append(nuggets, n)
		}
	}
	return nuggets
}

type documentBaseJSON struct {
	Name       string   `json:"name"`
	Attributes []string `json:"attributes"`
	Nuggets    []Nugget `json:"nuggets"`
}

func (d *DocumentBase) MarshalJSON() ([]byte, error) {
	return json.Marshal(documentBaseJSON{
		Name:       d.name,
		Attributes: d.Attributes(),
		Nuggets:    d.Nuggets(),
	})
}
