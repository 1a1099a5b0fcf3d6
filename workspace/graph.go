package workspace

// tarjan computes the strongly-connected components of the edges graph,
// returning each SCC as a slice of URIs. A component of size 1 whose node
// has no self-edge is not a cycle; everything else (self-edges, and any
// component with more than one member) is.
func tarjan(edges map[string][]string) [][]string {
	index := 0

	indices := map[string]int{}
	lowlink := map[string]int{}
	onStack := map[string]bool{}

	var stack []string

	var sccs [][]string

	var nodes []string
	seen := map[string]bool{}

	for n, deps := range edges {
		if !seen[n] {
			nodes = append(nodes, n)
			seen[n] = true
		}

		for _, d := range deps {
			if !seen[d] {
				nodes = append(nodes, d)
				seen[d] = true
			}
		}
	}

	var strongconnect func(v string)

	strongconnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++

		stack = append(stack, v)
		onStack[v] = true

		for _, w := range edges[v] {
			if _, ok := indices[w]; !ok {
				strongconnect(w)

				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var component []string

			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false

				component = append(component, w)
				if w == v {
					break
				}
			}

			sccs = append(sccs, component)
		}
	}

	for _, n := range nodes {
		if _, ok := indices[n]; !ok {
			strongconnect(n)
		}
	}

	return sccs
}

// isCycle reports whether an SCC represents a real import cycle: more
// than one member, or a single self-importing document.
func isCycle(component []string, edges map[string][]string) bool {
	if len(component) > 1 {
		return true
	}

	only := component[0]
	for _, dep := range edges[only] {
		if dep == only {
			return true
		}
	}

	return false
}

// reverseDependents returns every URI that transitively imports uri,
// computed from the current edges snapshot.
func reverseDependents(edges map[string][]string, uri string) []string {
	reverse := map[string][]string{}
	for from, tos := range edges {
		for _, to := range tos {
			reverse[to] = append(reverse[to], from)
		}
	}

	var out []string

	visited := map[string]bool{uri: true}

	queue := []string{uri}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, dep := range reverse[cur] {
			if visited[dep] {
				continue
			}

			visited[dep] = true
			out = append(out, dep)
			queue = append(queue, dep)
		}
	}

	return out
}

// Invalidate marks uri and every transitive reverse-dependent as
// StatePending, whatever state each is in. No signatures are compared:
// every reverse-dependent is marked whether or not uri's exported
// Signature changed, and re-analysis does not stop propagation early.
func (w *Workspace) Invalidate(uri string) {
	edges := w.snapshotEdges()

	toMark := append([]string{uri}, reverseDependents(edges, uri)...)

	for _, u := range toMark {
		sh := w.shardFor(u)

		sh.mu.Lock()

		if d, ok := sh.docs[u]; ok {
			d.State = StatePending
		}

		sh.mu.Unlock()
	}
}

// Cycles returns every strongly-connected component in the current import
// graph that constitutes a real cycle.
func (w *Workspace) Cycles() [][]string {
	edges := w.snapshotEdges()

	var cycles [][]string

	for _, comp := range tarjan(edges) {
		if isCycle(comp, edges) {
			cycles = append(cycles, comp)
		}
	}

	return cycles
}
