package bondgraph

// Graph is an immutable-topology bond graph. Construction validates the
// element and bond lists, checks port arities, and runs causality
// assignment exactly once; a Graph that exists is fully annotated.
type Graph struct {
	name     string
	elements map[string]*Element
	order    []string // element insertion order, for deterministic scans
	bonds    []*Bond  // ordered by index

	events   []Event
	fallback []*Bond
	observer Observer
}

// New builds a graph from elements and (start,end) bond pairs, then assigns
// causality. The element list must have unique identifiers; every bond
// endpoint must name a listed element; no (start,end) pair may repeat.
// On any validation or assignment error no graph is returned.
func New(name string, elements []*Element, bonds [][2]string, opts ...Option) (*Graph, error) {
	g := &Graph{
		name:     name,
		elements: make(map[string]*Element, len(elements)),
	}
	for _, opt := range opts {
		opt(g)
	}

	for _, el := range elements {
		if _, ok := g.elements[el.ID()]; ok {
			return nil, &DuplicateElementError{ID: el.ID()}
		}
		g.elements[el.ID()] = el
		g.order = append(g.order, el.ID())
	}

	if err := g.addBonds(bonds); err != nil {
		return nil, err
	}

	for _, id := range g.order {
		if err := g.elements[id].CheckBonds(); err != nil {
			return nil, err
		}
	}

	if err := g.assignCausalities(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) addBonds(pairs [][2]string) error {
	seen := make(map[[2]string]struct{}, len(pairs))
	for idx, pair := range pairs {
		if _, dup := seen[pair]; dup {
			return &DuplicateBondError{Start: pair[0], End: pair[1]}
		}
		seen[pair] = struct{}{}

		start, ok := g.elements[pair[0]]
		if !ok {
			return &UnknownElementError{ID: pair[0], Start: pair[0], End: pair[1]}
		}
		end, ok := g.elements[pair[1]]
		if !ok {
			return &UnknownElementError{ID: pair[1], Start: pair[0], End: pair[1]}
		}

		b := NewBond(pair[0], pair[1], idx)
		if err := start.addOutBond(b); err != nil {
			return err
		}
		if err := end.addInBond(b); err != nil {
			return err
		}
		g.bonds = append(g.bonds, b)
	}
	return nil
}

// Name returns the graph's display name.
func (g *Graph) Name() string { return g.name }

// Elements returns the element registry keyed by identifier.
func (g *Graph) Elements() map[string]*Element { return g.elements }

// Element returns the element with the given identifier, or nil.
func (g *Graph) Element(id string) *Element { return g.elements[id] }

// ElementIDs returns the element identifiers in insertion order.
func (g *Graph) ElementIDs() []string {
	ids := make([]string, len(g.order))
	copy(ids, g.order)
	return ids
}

// Bonds returns the bonds ordered by assignment index.
func (g *Graph) Bonds() []*Bond { return g.bonds }

// Events returns every causality assignment event in occurrence order.
func (g *Graph) Events() []Event { return g.events }

// FallbackBonds returns the bonds whose marks were assigned by the
// algebraic-loop fallback, in resolution order. Empty for graphs with a
// unique causal resolution.
func (g *Graph) FallbackBonds() []*Bond { return g.fallback }

// elementsOfKind yields element IDs of the given kind in insertion order.
func (g *Graph) elementsOfKind(k Kind) []*Element {
	var out []*Element
	for _, id := range g.order {
		if el := g.elements[id]; el.kind == k {
			out = append(out, el)
		}
	}
	return out
}

func (g *Graph) emit(ev Event) {
	g.events = append(g.events, ev)
	if g.observer != nil {
		g.observer(ev)
	}
}
