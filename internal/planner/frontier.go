package planner

// frontierItem is one entry of the open list. A cell may be pushed several times;
// stale entries are skipped when popped (lazy deletion instead of decrease-key).
type frontierItem struct {
	node int     // index into the search arena
	f    float64 // total estimated cost (g + h)
	seq  uint64  // insertion order, breaks ties deterministically
}

// frontier implements heap.Interface as a min-heap on f, then insertion order.
type frontier []frontierItem

func (pq frontier) Len() int { return len(pq) }

func (pq frontier) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	return pq[i].seq < pq[j].seq
}

func (pq frontier) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *frontier) Push(x interface{}) {
	*pq = append(*pq, x.(frontierItem))
}

func (pq *frontier) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}
