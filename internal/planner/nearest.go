package planner

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// pointTolerance is the half-size of the box each tree node occupies in the index.
const pointTolerance = 1e-9

// treeEntry wraps an RRT node for R-tree storage
type treeEntry struct {
	ID   int
	BBox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *treeEntry) Bounds() rtreego.Rect {
	return e.BBox
}

// nearestIndex answers closest-node queries over the growing RRT. Nodes are
// inserted one at a time; the tree is never rebuilt.
type nearestIndex struct {
	tree *rtreego.Rtree
}

func newNearestIndex() *nearestIndex {
	return &nearestIndex{tree: rtreego.NewTree(2, 25, 50)}
}

// Insert adds node id at p.
func (n *nearestIndex) Insert(id int, p orb.Point) {
	rect, err := rtreego.NewRect(
		rtreego.Point{p.X() - pointTolerance, p.Y() - pointTolerance},
		[]float64{2 * pointTolerance, 2 * pointTolerance},
	)
	if err != nil {
		return
	}
	n.tree.Insert(&treeEntry{ID: id, BBox: rect})
}

// Nearest returns the id of the node closest to p, or -1 if the index is empty.
func (n *nearestIndex) Nearest(p orb.Point) int {
	item := n.tree.NearestNeighbor(rtreego.Point{p.X(), p.Y()})
	if item == nil {
		return -1
	}
	return item.(*treeEntry).ID
}

// Len is the number of indexed nodes.
func (n *nearestIndex) Len() int {
	return n.tree.Size()
}
