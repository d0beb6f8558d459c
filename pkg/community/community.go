// Package community detects structural communities in a graph with label
// propagation: every node starts in its own community and repeatedly adopts
// the community most of its neighbors belong to, weighted by parallel edge
// count, until the labels stabilize.
package community

import "sort"

const maxIterations = 100

// Detect groups nodes into communities. The input maps each node to its
// neighbors with the number of parallel edges between them; the view is
// treated as undirected. Only communities with more than one member are
// returned. The synchronous update rule makes the result independent of map
// iteration order.
func Detect(neighbors map[string]map[string]int) [][]string {
	if len(neighbors) == 0 {
		return nil
	}

	// Stable node indexing so initial labels are deterministic.
	nodes := make([]string, 0, len(neighbors))
	for node := range neighbors {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	labels := make(map[string]int, len(nodes))
	for i, node := range nodes {
		labels[node] = i
	}

	for iteration := 0; iteration < maxIterations; iteration++ {
		changed := false
		next := make(map[string]int, len(labels))

		for _, node := range nodes {
			current := labels[node]

			votes := make(map[int]int)
			for neighbor, edgeCount := range neighbors[node] {
				if label, ok := labels[neighbor]; ok {
					votes[label] += edgeCount
				}
			}

			winner := current
			bestCount := 0
			for label, count := range votes {
				if count > bestCount || (count == bestCount && label > winner) {
					winner = label
					bestCount = count
				}
			}
			// A single shared edge is not enough support to move; in that
			// case the higher label wins so reciprocal pairs still converge
			// on one side.
			if bestCount <= 1 && winner < current {
				winner = current
			}

			next[node] = winner
			if winner != current {
				changed = true
			}
		}

		labels = next
		if !changed {
			break
		}
	}

	grouped := make(map[int][]string)
	for _, node := range nodes {
		label := labels[node]
		grouped[label] = append(grouped[label], node)
	}

	var communities [][]string
	labelOrder := make([]int, 0, len(grouped))
	for label := range grouped {
		labelOrder = append(labelOrder, label)
	}
	sort.Ints(labelOrder)
	for _, label := range labelOrder {
		if members := grouped[label]; len(members) > 1 {
			communities = append(communities, members)
		}
	}
	return communities
}
