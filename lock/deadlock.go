package lock

// waitFor builds the wait-for graph: every waiting owner points to the
// owners holding the locks it waits for.
func (m *Manager) waitFor() map[uint64][]uint64 {
	edges := map[uint64][]uint64{}
	for _, r := range m.waiters {
		waiting := r.holder.Owner.ID
		for _, g := range m.blockers(waiting, r.resource) {
			edges[waiting] = append(edges[waiting], g.owner.ID)
		}
	}
	return edges
}

// cycle returns the owners of a wait-for cycle through start, nil if there
// is none. The owner closing the cycle is the one reported as victim.
func (m *Manager) cycle(start uint64) []uint64 {
	edges := m.waitFor()
	visited := map[uint64]bool{}

	var dfs func(node uint64, path []uint64) []uint64
	dfs = func(node uint64, path []uint64) []uint64 {
		visited[node] = true
		path = append(path, node)
		for _, next := range edges[node] {
			if next == start {
				return path
			}
			if visited[next] {
				continue
			}
			if found := dfs(next, path); found != nil {
				return found
			}
		}
		return nil
	}

	return dfs(start, nil)
}
