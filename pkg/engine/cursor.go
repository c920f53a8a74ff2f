// Package engine implements deterministic token-passing over compiled process
// graphs. The engine holds no state across calls: every decision round-trip
// decodes a cursor, advances it, and encodes it back.
package engine

import (
	"fmt"

	"github.com/stagegate/stagegate/pkg/bpmn"
)

// maxEngineSteps bounds one Advance call. A well-formed document reaches a
// checkpoint or the end event in a handful of steps; hitting the bound means
// the graph loops without a checkpoint.
const maxEngineSteps = 10_000

// Frame records one entered call activity: the subprocess being executed and
// the call node in the parent scope execution returns to.
type Frame struct {
	ProcessID  string `json:"process_id"`
	CallNodeID string `json:"call_node_id"`
}

// Cursor is the live execution state of one workflow instance: the compiled
// graph, the scope stack of entered call activities, the current node, and
// the resolution data of the most recently completed checkpoint.
type Cursor struct {
	graph     *bpmn.Graph
	document  string
	processID string
	stack     []Frame
	current   string
	taskData  map[string]any
	completed bool
}

// New compiles the document and positions a fresh cursor on the root
// process's start event. Call Advance to reach the first checkpoint.
func New(document, processID string) (*Cursor, error) {
	graph, err := bpmn.Compile(document, processID)
	if err != nil {
		return nil, err
	}

	return &Cursor{
		graph:     graph,
		document:  document,
		processID: processID,
		current:   graph.Root().StartID,
		taskData:  map[string]any{},
	}, nil
}

// scope returns the process the cursor currently executes in.
func (c *Cursor) scope() *bpmn.Process {
	if len(c.stack) > 0 {
		return c.graph.Processes[c.stack[len(c.stack)-1].ProcessID]
	}

	return c.graph.Processes[c.processID]
}

// Completed reports whether the root process reached its end event.
func (c *Cursor) Completed() bool {
	return c.completed
}

// ReadyTaskID returns the checkpoint the cursor is paused at, if any.
func (c *Cursor) ReadyTaskID() (string, bool) {
	if c.completed {
		return "", false
	}

	node, ok := c.scope().Nodes[c.current]
	if !ok || node.Kind != bpmn.KindUserTask {
		return "", false
	}

	return node.ID, true
}

// TaskData returns the resolution data of the most recently completed
// checkpoint. The returned map must not be mutated.
func (c *Cursor) TaskData() map[string]any {
	return c.taskData
}

// Advance runs engine steps (automatic routing, gateway evaluation, call
// activity expansion) until exactly one checkpoint is ready or the root end
// event is reached. Advancing a completed or already-paused cursor is a
// no-op.
func (c *Cursor) Advance() error {
	for steps := 0; steps < maxEngineSteps; steps++ {
		if c.completed {
			return nil
		}

		proc := c.scope()

		node, ok := proc.Nodes[c.current]
		if !ok {
			return fmt.Errorf("node %q not found in process %q", c.current, proc.ID)
		}

		switch node.Kind {
		case bpmn.KindUserTask:
			return nil

		case bpmn.KindStart:
			next, err := c.follow(proc, node.ID)
			if err != nil {
				return err
			}

			c.current = next

		case bpmn.KindGateway:
			next, err := c.route(proc, node)
			if err != nil {
				return err
			}

			c.current = next

		case bpmn.KindCallActivity:
			sub, ok := c.graph.Processes[node.CalledElement]
			if !ok {
				return fmt.Errorf("call activity %q references missing subprocess %q", node.ID, node.CalledElement)
			}

			c.stack = append(c.stack, Frame{ProcessID: sub.ID, CallNodeID: node.ID})
			c.current = sub.StartID

		case bpmn.KindEnd:
			if len(c.stack) == 0 {
				c.completed = true

				return nil
			}

			frame := c.stack[len(c.stack)-1]
			c.stack = c.stack[:len(c.stack)-1]

			next, err := c.follow(c.scope(), frame.CallNodeID)
			if err != nil {
				return err
			}

			c.current = next

		default:
			return fmt.Errorf("node %q has unsupported kind %q", node.ID, node.Kind)
		}
	}

	return fmt.Errorf("advance exceeded %d engine steps in process %q, graph loops without a checkpoint", maxEngineSteps, c.processID)
}

// CompleteCheckpoint resolves the ready checkpoint: the decision data becomes
// the cursor's task data and the token steps off the task. The caller runs
// Advance afterwards to reach the next checkpoint or completion.
func (c *Cursor) CompleteCheckpoint(data map[string]any) error {
	taskID, ok := c.ReadyTaskID()
	if !ok {
		return fmt.Errorf("no ready checkpoint to complete")
	}

	// Replace rather than merge: gateways read the most recently completed
	// checkpoint's data, and stale targets from earlier decisions must not
	// route later gateways.
	taskData := make(map[string]any, len(data))
	for k, v := range data {
		taskData[k] = v
	}

	c.taskData = taskData

	next, err := c.follow(c.scope(), taskID)
	if err != nil {
		return err
	}

	c.current = next

	return nil
}

// follow takes the single outgoing flow of a non-gateway node.
func (c *Cursor) follow(proc *bpmn.Process, nodeID string) (string, error) {
	flows := proc.Outgoing[nodeID]
	if len(flows) != 1 {
		return "", fmt.Errorf("node %q in process %q has %d outgoing flows, expected exactly one", nodeID, proc.ID, len(flows))
	}

	return flows[0].TargetRef, nil
}

// route evaluates a gateway: conditional flows in document order against the
// last checkpoint's data, then the declared default, then the single
// unconditional fallthrough.
func (c *Cursor) route(proc *bpmn.Process, node *bpmn.Node) (string, error) {
	flows := proc.Outgoing[node.ID]

	for _, flow := range flows {
		if flow.Condition != nil && flow.Condition.Evaluate(c.taskData) {
			return flow.TargetRef, nil
		}
	}

	if node.DefaultFlow != "" {
		for _, flow := range flows {
			if flow.ID == node.DefaultFlow {
				return flow.TargetRef, nil
			}
		}
	}

	for _, flow := range flows {
		if flow.Condition == nil {
			return flow.TargetRef, nil
		}
	}

	return "", fmt.Errorf("gateway %q in process %q has no matching outgoing flow", node.ID, proc.ID)
}
