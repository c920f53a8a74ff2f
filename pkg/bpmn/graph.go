// Package bpmn compiles BPMN-subset process documents into executable graphs.
//
// The supported subset is exactly what linear-with-branching human-approval
// workflows need: user tasks (checkpoints), exclusive gateways with
// conditional flows, call activities expanding to nested subprocesses, and
// start/end events. Parallel gateways, timers and message events are not
// part of the model.
package bpmn

import "encoding/xml"

// Kind identifies the node types of the compiled graph.
type Kind string

const (
	KindStart        Kind = "startEvent"
	KindEnd          Kind = "endEvent"
	KindUserTask     Kind = "userTask"
	KindGateway      Kind = "exclusiveGateway"
	KindCallActivity Kind = "callActivity"
)

// Node is one element of a compiled process.
type Node struct {
	ID            string
	Name          string
	Kind          Kind
	CalledElement string // callActivity: id of the subprocess it expands to
	DefaultFlow   string // gateway: explicit fallthrough flow id, may be empty
}

// Flow is a labeled transition. Condition is nil for unconditional flows.
type Flow struct {
	ID         string
	SourceRef  string
	TargetRef  string
	Expression string
	Condition  *Condition
}

// Process is one compiled process: nodes indexed by id and outgoing flows per
// node in document order.
type Process struct {
	ID       string
	Name     string
	StartID  string
	Nodes    map[string]*Node
	Outgoing map[string][]*Flow
}

// Graph is the compiled form of a whole document: the root process plus every
// subprocess reachable through call activities. Compilation is pure; a Graph
// is immutable and safe to share across cursors.
type Graph struct {
	RootID    string
	Processes map[string]*Process
}

// Root returns the root process.
func (g *Graph) Root() *Process {
	return g.Processes[g.RootID]
}

// Node looks up a node anywhere in the graph, returning its owning process.
func (g *Graph) Node(processID, nodeID string) (*Process, *Node, bool) {
	proc, ok := g.Processes[processID]
	if !ok {
		return nil, nil, false
	}

	node, ok := proc.Nodes[nodeID]
	if !ok {
		return nil, nil, false
	}

	return proc, node, true
}

// Raw XML document shapes. Field tags match by local name, so namespaced and
// namespace-free documents both decode.

type xmlDefinitions struct {
	XMLName   xml.Name     `xml:"definitions"`
	Processes []xmlProcess `xml:"process"`
}

type xmlProcess struct {
	ID             string            `xml:"id,attr"`
	Name           string            `xml:"name,attr"`
	StartEvents    []xmlElement      `xml:"startEvent"`
	EndEvents      []xmlElement      `xml:"endEvent"`
	UserTasks      []xmlElement      `xml:"userTask"`
	Gateways       []xmlGateway      `xml:"exclusiveGateway"`
	CallActivities []xmlCallActivity `xml:"callActivity"`
	Flows          []xmlFlow         `xml:"sequenceFlow"`
}

type xmlElement struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type xmlGateway struct {
	ID      string `xml:"id,attr"`
	Name    string `xml:"name,attr"`
	Default string `xml:"default,attr"`
}

type xmlCallActivity struct {
	ID            string `xml:"id,attr"`
	Name          string `xml:"name,attr"`
	CalledElement string `xml:"calledElement,attr"`
}

type xmlFlow struct {
	ID        string `xml:"id,attr"`
	SourceRef string `xml:"sourceRef,attr"`
	TargetRef string `xml:"targetRef,attr"`
	Condition string `xml:"conditionExpression"`
}
