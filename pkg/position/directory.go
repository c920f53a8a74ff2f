package position

import "github.com/stagegate/stagegate/pkg/models"

// ItemInfo describes one workflow item within a group.
type ItemInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StepInfo describes one workflow group for display purposes. The directory
// is static and definition-independent: it renders available transitions to
// callers and validates decision targets, while the graph stays the ground
// truth for what actually happens at runtime.
type StepInfo struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Items       []ItemInfo `json:"workflow_items"`
}

// AvailableTransitions lists what a caller may legally request from a group.
type AvailableTransitions struct {
	CanApprove      bool       `json:"can_approve"`
	ApproveTarget   *StepInfo  `json:"approve_target,omitempty"`
	CanSendBack     bool       `json:"can_send_back"`
	SendBackTargets []StepInfo `json:"send_back_targets"`
	CanSkipTo       bool       `json:"can_skip_to"`
	SkipToTargets   []StepInfo `json:"skip_to_targets"`
}

// groupOrder fixes the forward traversal order of the directory.
var groupOrder = []string{"WFG1", "WFG2", "WFG3", models.TerminalGroup}

var steps = map[string]StepInfo{
	"WFG1": {
		ID:          "WFG1",
		Name:        "Project Kickoff",
		Description: "Initial project setup and planning. Review project requirements and establish baseline.",
		Items: []ItemInfo{
			{ID: "WFI1", Name: "Initial Project Review"},
			{ID: "WFI2", Name: "Kickoff Meeting"},
		},
	},
	"WFG2": {
		ID:          "WFG2",
		Name:        "Schematic Design",
		Description: "Create initial design concepts. Develop architectural plans and 3D visualizations.",
		Items: []ItemInfo{
			{ID: "WFI1", Name: "Design Development"},
			{ID: "WFI2", Name: "Design Review"},
		},
	},
	"WFG3": {
		ID:          "WFG3",
		Name:        "Construction Docs",
		Description: "Finalize construction documentation. Complete blueprints and engineering specs.",
		Items: []ItemInfo{
			{ID: "WFI1", Name: "Final Documentation"},
		},
	},
	models.TerminalGroup: {
		ID:          models.TerminalGroup,
		Name:        "Complete",
		Description: "Design & Entitlement complete. Ready for underwriting.",
		Items:       []ItemInfo{},
	},
}

// Steps returns every group in forward order.
func Steps() []StepInfo {
	out := make([]StepInfo, 0, len(groupOrder))
	for _, id := range groupOrder {
		out = append(out, steps[id])
	}

	return out
}

// Step returns display info for one group.
func Step(group string) (StepInfo, bool) {
	info, ok := steps[group]

	return info, ok
}

// Items returns the workflow items of a group, empty for unknown groups and
// the terminal group.
func Items(group string) []ItemInfo {
	info, ok := steps[group]
	if !ok {
		return []ItemInfo{}
	}

	return info.Items
}

// Item returns display info for one item within a group.
func Item(group, item string) (ItemInfo, bool) {
	for _, info := range Items(group) {
		if info.ID == item {
			return info, true
		}
	}

	return ItemInfo{}, false
}

func groupIndex(group string) int {
	for i, id := range groupOrder {
		if id == group {
			return i
		}
	}

	return -1
}

// Transitions returns what the caller may request from the given group.
// Approve always targets the next group in order. Send-back targets the
// immediately previous group. Skip targets every group beyond the approve
// target, so skipping always bypasses at least one checkpoint.
func Transitions(current string) AvailableTransitions {
	transitions := AvailableTransitions{
		SendBackTargets: []StepInfo{},
		SkipToTargets:   []StepInfo{},
	}

	idx := groupIndex(current)
	if idx < 0 || current == models.TerminalGroup {
		return transitions
	}

	transitions.CanApprove = true

	next := steps[groupOrder[idx+1]]
	transitions.ApproveTarget = &next

	if idx > 0 {
		transitions.CanSendBack = true
		transitions.SendBackTargets = append(transitions.SendBackTargets, steps[groupOrder[idx-1]])
	}

	for i := idx + 2; i < len(groupOrder)-1; i++ {
		transitions.CanSkipTo = true
		transitions.SkipToTargets = append(transitions.SkipToTargets, steps[groupOrder[i]])
	}

	return transitions
}

// ValidSendBackTarget reports whether targetGroup is a legal send-back target
// from current.
func ValidSendBackTarget(current, targetGroup string) bool {
	for _, step := range Transitions(current).SendBackTargets {
		if step.ID == targetGroup {
			return true
		}
	}

	return false
}

// ValidSkipTarget reports whether targetGroup is a legal skip target from
// current.
func ValidSkipTarget(current, targetGroup string) bool {
	for _, step := range Transitions(current).SkipToTargets {
		if step.ID == targetGroup {
			return true
		}
	}

	return false
}

// ValidItemTarget reports whether item exists within group, for send-back
// within the current group.
func ValidItemTarget(group, item string) bool {
	_, ok := Item(group, item)

	return ok
}
