package detour

import (
	"container/heap"
	"unsafe"

	"github.com/gorustyt/gonavmesh/common"
)

const (
	DT_NODE_OPEN   = 0x01
	DT_NODE_CLOSED = 0x02

	DT_NULL_IDX = 0

	// Number of extra states per node. A polygon reached across tile
	// borders through different sides gets one node per side.
	DT_MAX_STATES_PER_NODE = 1 << 2
)

// Node is one search state of a polygon during a graph query.
type Node struct {
	Pos   [3]float32 ///< Position of the node.
	Cost  float32    ///< Cost from previous node to current node.
	Total float32    ///< Cost up to the node.
	Pidx  uint32     ///< Index to parent node, 0 when there is none.
	State uint8      ///< Extra state information. A polyRef can have multiple nodes with different extra info.
	Flags uint8      ///< Node flags. A combination of DT_NODE_*.
	ID    PolyRef    ///< Polygon ref the node corresponds to.

	seq   uint32 // discovery order, breaks ties between equal totals
	index int    // position in the open list heap
}

func hashRef(ref PolyRef) uint32 {
	a := uint32(ref)
	a += ^(a << 15)
	a ^= a >> 10
	a += a << 3
	a ^= a >> 6
	a += ^(a << 11)
	a ^= a >> 16
	return a
}

// NodePool hands out a fixed number of nodes keyed by (ref, state).
type NodePool struct {
	nodes    []Node
	first    []int32
	next     []int32
	count    int
	hashSize int
}

func NewNodePool(maxNodes, hashSize int) *NodePool {
	hashSize = max(1, int(common.NextPow2(uint32(hashSize))))
	pool := &NodePool{
		nodes:    make([]Node, maxNodes),
		first:    make([]int32, hashSize),
		next:     make([]int32, maxNodes),
		hashSize: hashSize,
	}
	pool.Clear()
	return pool
}

func (p *NodePool) Clear() {
	for i := range p.first {
		p.first[i] = -1
	}
	p.count = 0
}

func (p *NodePool) MaxNodes() int  { return len(p.nodes) }
func (p *NodePool) NodeCount() int { return p.count }

// FindNode returns the node of (id, state), or nil if it was never handed out.
func (p *NodePool) FindNode(id PolyRef, state uint8) *Node {
	bucket := hashRef(id) & uint32(p.hashSize-1)
	for i := p.first[bucket]; i != -1; i = p.next[i] {
		if p.nodes[i].ID == id && p.nodes[i].State == state {
			return &p.nodes[i]
		}
	}
	return nil
}

// FindNodes returns every node of id regardless of state.
func (p *NodePool) FindNodes(id PolyRef) []*Node {
	var nodes []*Node
	bucket := hashRef(id) & uint32(p.hashSize-1)
	for i := p.first[bucket]; i != -1; i = p.next[i] {
		if p.nodes[i].ID == id {
			nodes = append(nodes, &p.nodes[i])
		}
	}
	return nodes
}

// GetNode returns the node of (id, state), allocating it on first use.
// It returns nil once the pool is exhausted.
func (p *NodePool) GetNode(id PolyRef, state uint8) *Node {
	if n := p.FindNode(id, state); n != nil {
		return n
	}
	if p.count >= len(p.nodes) {
		return nil
	}
	i := p.count
	p.count++

	// Init node
	p.nodes[i] = Node{ID: id, State: state, index: -1}
	bucket := hashRef(id) & uint32(p.hashSize-1)
	p.next[i] = p.first[bucket]
	p.first[bucket] = int32(i)
	return &p.nodes[i]
}

// GetNodeIdx returns the 1-based index of node, 0 for nil.
func (p *NodePool) GetNodeIdx(node *Node) uint32 {
	if node == nil {
		return DT_NULL_IDX
	}
	i := (uintptr(unsafe.Pointer(node)) - uintptr(unsafe.Pointer(&p.nodes[0]))) / unsafe.Sizeof(Node{})
	return uint32(i) + 1
}

func (p *NodePool) GetNodeAtIdx(idx uint32) *Node {
	if idx == DT_NULL_IDX {
		return nil
	}
	return &p.nodes[idx-1]
}

// nodeQueue is the open list: a binary heap ordered by total cost, then by
// the order in which nodes were first discovered.
type nodeQueue []*Node

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].Total != q[j].Total {
		return q[i].Total < q[j].Total
	}
	return q[i].seq < q[j].seq
}

func (q nodeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *nodeQueue) Push(x any) {
	n := x.(*Node)
	n.index = len(*q)
	*q = append(*q, n)
}

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*q = old[:n-1]
	return node
}

func (q *nodeQueue) clear()         { *q = (*q)[:0] }
func (q *nodeQueue) empty() bool    { return len(*q) == 0 }
func (q *nodeQueue) push(n *Node)   { heap.Push(q, n) }
func (q *nodeQueue) pop() *Node     { return heap.Pop(q).(*Node) }
func (q *nodeQueue) modify(n *Node) { heap.Fix(q, n.index) }
