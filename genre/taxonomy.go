// Package genre defines the genre taxonomy used to score classifier
// predictions: named groups of labels that are treated as
// interchangeable, plus the resolution rules that map raw labels onto
// those groups.
package genre

import "strings"

// Group is a named family of genre labels. The group name itself is
// not implicitly a member; membership is exactly the Members list.
type Group struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Taxonomy maps raw genre labels to their owning group. It is built
// once, is immutable afterwards, and is safe for concurrent use.
//
// Resolution is case-insensitive. When a label belongs to no group it
// resolves to itself, so unknown labels still compare equal to
// themselves. Groups are consulted in definition order; the first
// group that claims a label owns it.
type Taxonomy struct {
	groups []Group
	owner  map[string]string
}

// NewTaxonomy builds a taxonomy from groups in definition order.
// Names and members are lower-cased; a member already claimed by an
// earlier group is not reassigned.
func NewTaxonomy(groups ...Group) *Taxonomy {
	t := &Taxonomy{
		groups: make([]Group, 0, len(groups)),
		owner:  make(map[string]string),
	}
	for _, g := range groups {
		name := strings.ToLower(g.Name)
		members := make([]string, 0, len(g.Members))
		for _, m := range g.Members {
			m = strings.ToLower(m)
			members = append(members, m)
			if _, claimed := t.owner[m]; !claimed {
				t.owner[m] = name
			}
		}
		t.groups = append(t.groups, Group{Name: name, Members: members})
	}
	return t
}

// ResolveGroup returns the name of the group that owns label, or the
// lower-cased label itself when no group claims it.
func (t *Taxonomy) ResolveGroup(label string) string {
	label = strings.ToLower(label)
	if name, ok := t.owner[label]; ok {
		return name
	}
	return label
}

// Similar reports whether two labels resolve to the same group. It is
// symmetric, and every label is similar to itself even when the
// taxonomy knows nothing about it.
func (t *Taxonomy) Similar(a, b string) bool {
	return t.ResolveGroup(a) == t.ResolveGroup(b)
}

// Contains reports whether label is a member of any group. Group
// names are not consulted: a label that happens to equal a group name
// without being listed among its members is not contained.
func (t *Taxonomy) Contains(label string) bool {
	_, ok := t.owner[strings.ToLower(label)]
	return ok
}

// Groups returns the groups in definition order. The slice and its
// member lists are copies; mutating them does not affect the taxonomy.
func (t *Taxonomy) Groups() []Group {
	out := make([]Group, len(t.groups))
	for i, g := range t.groups {
		members := make([]string, len(g.Members))
		copy(members, g.Members)
		out[i] = Group{Name: g.Name, Members: members}
	}
	return out
}

var defaultTaxonomy = NewTaxonomy(
	Group{Name: "rock", Members: []string{"rock", "hard rock", "punk", "metal", "heavy metal", "soft rock"}},
	Group{Name: "electronic", Members: []string{"electronic", "electronica", "techno", "trance", "house", "electro", "ambient", "industrial"}},
	Group{Name: "classical", Members: []string{"classical", "baroque", "orchestra", "orchestral", "opera", "medieval", "chamber"}},
	Group{Name: "jazz", Members: []string{"jazz", "jazzy", "blues", "funk", "funky"}},
	Group{Name: "folk", Members: []string{"folk", "celtic", "irish", "acoustic", "world"}},
	Group{Name: "hiphop", Members: []string{"hip hop", "rap", "beats", "urban"}},
	Group{Name: "pop", Members: []string{"pop", "disco", "dance"}},
	Group{Name: "reggae", Members: []string{"reggae", "jungle"}},
	Group{Name: "country", Members: []string{"country", "western", "banjo"}},
)

// DefaultTaxonomy returns the taxonomy both evaluation adapters are
// scored against. Note the hiphop group: its name is not among its
// members, so "hiphop" resolves to itself rather than through the
// group, while "hip hop" and "rap" resolve to "hiphop". The two
// spellings still compare similar because the resolved names collide.
func DefaultTaxonomy() *Taxonomy {
	return defaultTaxonomy
}
