package orgchart

// BuildTree links members into a forest using their parent ids.
// Members whose parent is missing from the list become roots. Input order is
// kept for siblings. Parent links that form a cycle yield ErrMalformedTree.
func BuildTree(members []Member) ([]*Member, error) {
	if err := validateParents(members); err != nil {
		return nil, err
	}

	byID := make(map[string]*Member, len(members))
	nodes := make([]*Member, len(members))
	for i := range members {
		n := members[i]
		n.Children = []*Member{}
		nodes[i] = &n
		byID[n.ID] = &n
	}

	roots := []*Member{}
	for _, n := range nodes {
		if n.ParentID != nil {
			if parent, ok := byID[*n.ParentID]; ok {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots, nil
}

// validateParents walks parent links with a three-state DFS.
func validateParents(members []Member) error {
	parent := make(map[string]string, len(members))
	for _, m := range members {
		if m.ParentID != nil {
			parent[m.ID] = *m.ParentID
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	state := make(map[string]int, len(members))
	for _, m := range members {
		if state[m.ID] != unvisited {
			continue
		}
		var chain []string
		id := m.ID
		for {
			if state[id] == visiting {
				return ErrMalformedTree
			}
			if state[id] == visited {
				break
			}
			state[id] = visiting
			chain = append(chain, id)
			next, ok := parent[id]
			if !ok {
				break
			}
			id = next
		}
		for _, c := range chain {
			state[c] = visited
		}
	}
	return nil
}

// Walk visits the forest depth-first in pre-order. Returning false from fn
// stops the walk.
func Walk(roots []*Member, fn func(m *Member) bool) {
	var walk func(nodes []*Member) bool
	walk = func(nodes []*Member) bool {
		for _, n := range nodes {
			if !fn(n) {
				return false
			}
			if !walk(n.Children) {
				return false
			}
		}
		return true
	}
	walk(roots)
}

// Find returns the member with the given id, or nil.
func Find(roots []*Member, id string) *Member {
	var found *Member
	Walk(roots, func(m *Member) bool {
		if m.ID == id {
			found = m
			return false
		}
		return true
	})
	return found
}
