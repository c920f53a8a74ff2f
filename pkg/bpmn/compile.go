package bpmn

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Compile parses a process document and builds the graph rooted at processID.
// It is side-effect-free and returns an *InvalidDefinitionError carrying every
// problem found, never just the first one.
func Compile(document, processID string) (*Graph, error) {
	defs, problems := parseDocument(document)
	if defs == nil {
		return nil, &InvalidDefinitionError{Problems: problems}
	}

	graph := &Graph{
		RootID:    processID,
		Processes: make(map[string]*Process, len(defs.Processes)),
	}

	for i := range defs.Processes {
		proc, procProblems := compileProcess(&defs.Processes[i])
		problems = append(problems, procProblems...)

		if _, dup := graph.Processes[proc.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate process id %q", proc.ID))
			continue
		}

		graph.Processes[proc.ID] = proc
	}

	if _, ok := graph.Processes[processID]; !ok {
		available := make([]string, 0, len(graph.Processes))
		for id := range graph.Processes {
			available = append(available, id)
		}

		problems = append(problems, fmt.Sprintf(
			"process %q not found in document, available: %s",
			processID, strings.Join(available, ", ")))
	}

	// Call activities must resolve to processes inside the same document.
	for _, proc := range graph.Processes {
		for _, node := range proc.Nodes {
			if node.Kind != KindCallActivity {
				continue
			}

			if node.CalledElement == "" {
				problems = append(problems, fmt.Sprintf(
					"call activity %q in process %q has no calledElement", node.ID, proc.ID))
				continue
			}

			if _, ok := graph.Processes[node.CalledElement]; !ok {
				problems = append(problems, fmt.Sprintf(
					"call activity %q in process %q references missing subprocess %q",
					node.ID, proc.ID, node.CalledElement))
			}

			if node.CalledElement == proc.ID {
				problems = append(problems, fmt.Sprintf(
					"call activity %q in process %q calls its own process", node.ID, proc.ID))
			}
		}
	}

	if len(problems) > 0 {
		return nil, &InvalidDefinitionError{Problems: problems}
	}

	return graph, nil
}

func parseDocument(document string) (*xmlDefinitions, []string) {
	if strings.TrimSpace(document) == "" {
		return nil, []string{"document is empty"}
	}

	var defs xmlDefinitions
	if err := xml.Unmarshal([]byte(document), &defs); err != nil {
		return nil, []string{fmt.Sprintf("document is not well-formed XML: %v", err)}
	}

	if len(defs.Processes) == 0 {
		return nil, []string{"document contains no process elements"}
	}

	return &defs, nil
}

func compileProcess(raw *xmlProcess) (*Process, []string) {
	var problems []string

	proc := &Process{
		ID:       raw.ID,
		Name:     raw.Name,
		Nodes:    make(map[string]*Node),
		Outgoing: make(map[string][]*Flow),
	}

	if proc.ID == "" {
		problems = append(problems, "process has no id attribute")
		proc.ID = "(unnamed)"
	}

	addNode := func(node *Node) {
		if node.ID == "" {
			problems = append(problems, fmt.Sprintf(
				"%s element without id in process %q", node.Kind, proc.ID))
			return
		}

		if _, dup := proc.Nodes[node.ID]; dup {
			problems = append(problems, fmt.Sprintf(
				"duplicate element id %q in process %q", node.ID, proc.ID))
			return
		}

		proc.Nodes[node.ID] = node
	}

	for _, e := range raw.StartEvents {
		addNode(&Node{ID: e.ID, Name: e.Name, Kind: KindStart})
	}

	for _, e := range raw.EndEvents {
		addNode(&Node{ID: e.ID, Name: e.Name, Kind: KindEnd})
	}

	for _, e := range raw.UserTasks {
		addNode(&Node{ID: e.ID, Name: e.Name, Kind: KindUserTask})
	}

	for _, g := range raw.Gateways {
		addNode(&Node{ID: g.ID, Name: g.Name, Kind: KindGateway, DefaultFlow: g.Default})
	}

	for _, ca := range raw.CallActivities {
		addNode(&Node{ID: ca.ID, Name: ca.Name, Kind: KindCallActivity, CalledElement: ca.CalledElement})
	}

	switch len(raw.StartEvents) {
	case 0:
		problems = append(problems, fmt.Sprintf("process %q has no start event", proc.ID))
	case 1:
		proc.StartID = raw.StartEvents[0].ID
	default:
		problems = append(problems, fmt.Sprintf("process %q has more than one start event", proc.ID))
		proc.StartID = raw.StartEvents[0].ID
	}

	for i := range raw.Flows {
		flow, flowProblems := compileFlow(proc, &raw.Flows[i])
		problems = append(problems, flowProblems...)

		if flow != nil {
			proc.Outgoing[flow.SourceRef] = append(proc.Outgoing[flow.SourceRef], flow)
		}
	}

	problems = append(problems, checkFanOut(proc)...)

	return proc, problems
}

func compileFlow(proc *Process, raw *xmlFlow) (*Flow, []string) {
	var problems []string

	if raw.SourceRef == "" || raw.TargetRef == "" {
		return nil, []string{fmt.Sprintf(
			"sequence flow %q in process %q is missing sourceRef or targetRef", raw.ID, proc.ID)}
	}

	if _, ok := proc.Nodes[raw.SourceRef]; !ok {
		problems = append(problems, fmt.Sprintf(
			"sequence flow %q references unknown source %q in process %q", raw.ID, raw.SourceRef, proc.ID))
	}

	if _, ok := proc.Nodes[raw.TargetRef]; !ok {
		problems = append(problems, fmt.Sprintf(
			"sequence flow %q references unknown target %q in process %q", raw.ID, raw.TargetRef, proc.ID))
	}

	flow := &Flow{
		ID:         raw.ID,
		SourceRef:  raw.SourceRef,
		TargetRef:  raw.TargetRef,
		Expression: strings.TrimSpace(raw.Condition),
	}

	if flow.Expression != "" {
		cond, err := ParseCondition(flow.Expression)
		if err != nil {
			problems = append(problems, fmt.Sprintf(
				"sequence flow %q in process %q: %v", raw.ID, proc.ID, err))
		} else {
			flow.Condition = cond
		}
	}

	return flow, problems
}

// checkFanOut rejects shapes that could ready more than one checkpoint at
// once: only gateways may have multiple outgoing flows, and a gateway may
// carry at most one unconditional (fallthrough) flow.
func checkFanOut(proc *Process) []string {
	var problems []string

	for nodeID, flows := range proc.Outgoing {
		node, ok := proc.Nodes[nodeID]
		if !ok {
			continue
		}

		if node.Kind != KindGateway {
			if len(flows) > 1 {
				problems = append(problems, fmt.Sprintf(
					"%s %q in process %q has %d outgoing flows, only gateways may branch",
					node.Kind, nodeID, proc.ID, len(flows)))
			}

			continue
		}

		unconditional := 0
		for _, flow := range flows {
			if flow.Condition == nil {
				unconditional++
			}
		}

		if unconditional > 1 && node.DefaultFlow == "" {
			problems = append(problems, fmt.Sprintf(
				"gateway %q in process %q has %d unconditional outgoing flows and no default",
				nodeID, proc.ID, unconditional))
		}

		if node.DefaultFlow != "" && !hasFlow(flows, node.DefaultFlow) {
			problems = append(problems, fmt.Sprintf(
				"gateway %q in process %q declares default flow %q which is not one of its outgoing flows",
				nodeID, proc.ID, node.DefaultFlow))
		}
	}

	for nodeID, node := range proc.Nodes {
		if node.Kind != KindEnd && len(proc.Outgoing[nodeID]) == 0 {
			problems = append(problems, fmt.Sprintf(
				"%s %q in process %q has no outgoing flow", node.Kind, nodeID, proc.ID))
		}
	}

	return problems
}

func hasFlow(flows []*Flow, id string) bool {
	for _, flow := range flows {
		if flow.ID == id {
			return true
		}
	}

	return false
}
