package model

// PruneSupplementary removes supplementary elements that no primary element
// transitively reaches through a moving-to-api use site. Retained elements
// reached over an is-inherited edge adopt the archive of the inheriting
// owner. Pruning a pruned forest is a no-op.
func PruneSupplementary(f *Forest) {
	reached := make(map[*Element]struct{})
	var queue []*Element

	visit := func(e *Element) {
		if _, ok := reached[e]; ok {
			return
		}
		reached[e] = struct{}{}
		queue = append(queue, e)
	}

	for _, r := range f.Roots() {
		if r.Role() == RolePrimary {
			visit(r)
			for d := range r.Stream(Kind{}, true) {
				visit(d)
			}
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for k := RefKind(0); k < refKindCount; k++ {
			if !k.MovesToAPI() {
				continue
			}
			for _, target := range cur.References(k) {
				if target.Role() == RoleSupplementary {
					target.MarkInAPIThroughUse()
					if k == RefIsInherited {
						target.SetArchive(cur.Archive())
					}
				}
				if _, ok := reached[target]; !ok {
					visit(target)
					// Members of a retained container belong to it.
					for d := range target.Stream(Kind{}, true) {
						visit(d)
					}
				}
			}
		}
	}

	var doomed []*Element
	for e := range f.Stream(Kind{}) {
		if e.Role() != RoleSupplementary {
			continue
		}
		if _, ok := reached[e]; ok {
			continue
		}
		// Skip elements whose ancestor is already doomed; removing the
		// ancestor takes the whole subtree with it.
		if p := e.Parent(); p != nil {
			if _, ok := reached[p]; !ok && p.Role() == RoleSupplementary {
				continue
			}
		}
		doomed = append(doomed, e)
	}
	for _, e := range doomed {
		f.Remove(e)
	}
}
