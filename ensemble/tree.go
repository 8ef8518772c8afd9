package ensemble

import "sort"

// TreeNode is one node of a regression tree, stored in a flat slice with
// child indices. Fields are exported for gob encoding.
type TreeNode struct {
	Feature   int     // split feature index, -1 for leaves
	Threshold float64 // go left when x[Feature] <= Threshold
	Left      int
	Right     int
	Value     float64 // mean target of the node's samples
	Leaf      bool
}

// RegressionTree is a single variance-reduction regression tree.
type RegressionTree struct {
	Nodes []TreeNode
}

func (t *RegressionTree) predict(x []float64) float64 {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.Leaf {
			return node.Value
		}
		if x[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

// treeBuilder grows one tree on a bootstrap sample and accumulates the
// variance reduction of every split into gains.
type treeBuilder struct {
	x              [][]float64
	y              []float64
	maxDepth       int
	minSamplesLeaf int
	gains          []float64
}

func (b *treeBuilder) build(indices []int, depth int) []TreeNode {
	value := mean(b.y, indices)
	if depth >= b.maxDepth || len(indices) < 2*b.minSamplesLeaf {
		return []TreeNode{leaf(value)}
	}

	feature, threshold, gain, ok := b.bestSplit(indices)
	if !ok {
		return []TreeNode{leaf(value)}
	}

	var left, right []int
	for _, i := range indices {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < b.minSamplesLeaf || len(right) < b.minSamplesLeaf {
		return []TreeNode{leaf(value)}
	}

	b.gains[feature] += gain
	leftNodes := b.build(left, depth+1)
	rightNodes := b.build(right, depth+1)

	// Child subtrees carry indices relative to their own slice; shift them
	// into place behind the root.
	nodes := make([]TreeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      1,
		Right:     1 + len(leftNodes),
		Value:     value,
	})
	for _, n := range leftNodes {
		if !n.Leaf {
			n.Left++
			n.Right++
		}
		nodes = append(nodes, n)
	}
	offset := 1 + len(leftNodes)
	for _, n := range rightNodes {
		if !n.Leaf {
			n.Left += offset
			n.Right += offset
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// bestSplit scans every feature for the threshold with the largest reduction
// in sum of squared errors. Features are scanned in index order and ties keep
// the first candidate, so the result is deterministic.
func (b *treeBuilder) bestSplit(indices []int) (feature int, threshold, gain float64, ok bool) {
	parentSSE := sse(b.y, indices)
	if parentSSE == 0 {
		return 0, 0, 0, false
	}

	nFeatures := len(b.x[0])
	order := make([]int, len(indices))
	bestGain := 0.0

	for f := 0; f < nFeatures; f++ {
		copy(order, indices)
		sortByFeature(b.x, order, f)

		// Running sums from the left; the right side follows by subtraction.
		var totalSum, totalSq float64
		for _, i := range order {
			totalSum += b.y[i]
			totalSq += b.y[i] * b.y[i]
		}
		var leftSum, leftSq float64
		n := float64(len(order))

		for pos := 0; pos < len(order)-1; pos++ {
			i := order[pos]
			leftSum += b.y[i]
			leftSq += b.y[i] * b.y[i]

			// Only split between distinct feature values.
			if b.x[i][f] == b.x[order[pos+1]][f] {
				continue
			}
			nl := float64(pos + 1)
			nr := n - nl
			leftSSE := leftSq - leftSum*leftSum/nl
			rightSSE := (totalSq - leftSq) - (totalSum-leftSum)*(totalSum-leftSum)/nr
			g := parentSSE - leftSSE - rightSSE
			if g > bestGain {
				bestGain = g
				feature = f
				threshold = (b.x[i][f] + b.x[order[pos+1]][f]) / 2
				ok = true
			}
		}
	}
	return feature, threshold, bestGain, ok
}

func leaf(value float64) TreeNode {
	return TreeNode{Feature: -1, Left: -1, Right: -1, Value: value, Leaf: true}
}

func mean(y []float64, indices []int) float64 {
	var sum float64
	for _, i := range indices {
		sum += y[i]
	}
	return sum / float64(len(indices))
}

func sse(y []float64, indices []int) float64 {
	m := mean(y, indices)
	var sum float64
	for _, i := range indices {
		d := y[i] - m
		sum += d * d
	}
	return sum
}

// sortByFeature sorts sample indices by their value of feature f. The sort
// is stable so equal values preserve bootstrap order and trees stay
// reproducible for a fixed seed.
func sortByFeature(x [][]float64, order []int, f int) {
	sort.SliceStable(order, func(a, b int) bool {
		return x[order[a]][f] < x[order[b]][f]
	})
}
