package wsn

import "math"

// A Position is a point on the simulated plane, in meters.
type Position struct {
	X, Y float64
}

// DistanceTo returns the Euclidean distance to another position.
func (p Position) DistanceTo(o Position) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// A Node is a positioned entity that hosts applications and endpoints.
// Nodes are created once at setup and never destroyed during a run.
type Node struct {
	id       NodeID
	name     string
	position Position

	endpoints map[uint16]*Endpoint
	apps      []Application
}

// NewNode creates a node at the given position.
func NewNode(id NodeID, name string, pos Position) *Node {
	return &Node{
		id:        id,
		name:      name,
		position:  pos,
		endpoints: make(map[uint16]*Endpoint),
	}
}

// ID returns the node ID.
func (n *Node) ID() NodeID {
	return n.id
}

// Name returns the name of the node.
func (n *Node) Name() string {
	return n.name
}

// Position returns the current position of the node.
func (n *Node) Position() Position {
	return n.position
}

// SetPosition moves the node. The channel samples positions at send time, so
// moving a node only affects transmissions that start afterwards.
func (n *Node) SetPosition(pos Position) {
	n.position = pos
}

// AddApplication attaches an application to the node. Applications are kept
// in attach order.
func (n *Node) AddApplication(app Application) {
	n.apps = append(n.apps, app)
}

// Applications returns the applications hosted by the node, in attach order.
func (n *Node) Applications() []Application {
	return n.apps
}

// Endpoint returns the endpoint bound to the given port, or nil.
func (n *Node) Endpoint(port uint16) *Endpoint {
	return n.endpoints[port]
}

// A GridPositionAllocator lays nodes out row-first on a fixed grid.
type GridPositionAllocator struct {
	MinX, MinY     float64
	DeltaX, DeltaY float64
	GridWidth      int
}

// Position returns the position of the i-th allocated node.
func (g GridPositionAllocator) Position(i int) Position {
	row := i / g.GridWidth
	col := i % g.GridWidth

	return Position{
		X: g.MinX + float64(col)*g.DeltaX,
		Y: g.MinY + float64(row)*g.DeltaY,
	}
}
