package models

import (
	"errors"
	"fmt"
)

// DecisionAction identifies one of the four ways a paused checkpoint can be
// resolved.
type DecisionAction string

const (
	ActionApprove       DecisionAction = "approve"
	ActionSendBack      DecisionAction = "send_back"
	ActionSkipTo        DecisionAction = "skip_to"
	ActionCompleteGroup DecisionAction = "complete_wfg"
)

// Resolution data keys written onto the completed checkpoint. Gateway
// conditions in process documents read exactly these names.
const (
	KeyDecisionAction = "decision_action"
	KeyTargetGroup    = "target_group"
	KeyTargetItem     = "target_item"
)

var (
	// ErrUnknownAction is returned for an action outside the closed set.
	ErrUnknownAction = errors.New("unknown decision action")

	// ErrTargetRequired is returned when skip_to lacks a target group or
	// send_back lacks both a target group and a target item.
	ErrTargetRequired = errors.New("decision requires a target")

	// ErrReasonRequired is returned when send_back lacks a reason.
	ErrReasonRequired = errors.New("send_back requires a reason")
)

// Decision is a closed set of checkpoint resolutions. Each variant carries
// exactly the fields its action needs, so an invalid combination cannot be
// constructed through ParseDecision.
type Decision interface {
	Action() DecisionAction

	// TaskData returns the resolution data the engine writes onto the
	// checkpoint before advancing.
	TaskData() map[string]any
}

// Approve advances along the default outgoing edge.
type Approve struct{}

func (Approve) Action() DecisionAction { return ActionApprove }

func (Approve) TaskData() map[string]any {
	return map[string]any{KeyDecisionAction: string(ActionApprove)}
}

// SendBack routes backward to a previous group, or to an item within the
// current group. Reason is mandatory.
type SendBack struct {
	TargetGroup string
	TargetItem  string
	Reason      string
}

func (SendBack) Action() DecisionAction { return ActionSendBack }

func (d SendBack) TaskData() map[string]any {
	data := map[string]any{KeyDecisionAction: string(ActionSendBack)}
	if d.TargetGroup != "" {
		data[KeyTargetGroup] = d.TargetGroup
	}

	if d.TargetItem != "" {
		data[KeyTargetItem] = d.TargetItem
	}

	return data
}

// SkipTo routes forward past intervening checkpoints to a future group.
type SkipTo struct {
	TargetGroup string
}

func (SkipTo) Action() DecisionAction { return ActionSkipTo }

func (d SkipTo) TaskData() map[string]any {
	return map[string]any{
		KeyDecisionAction: string(ActionSkipTo),
		KeyTargetGroup:    d.TargetGroup,
	}
}

// CompleteGroup marks the remaining items of the current group satisfied and
// advances to the next group.
type CompleteGroup struct{}

func (CompleteGroup) Action() DecisionAction { return ActionCompleteGroup }

func (CompleteGroup) TaskData() map[string]any {
	return map[string]any{KeyDecisionAction: string(ActionCompleteGroup)}
}

// ParseDecision builds a Decision variant from loose request fields,
// rejecting invalid combinations before any state is touched.
func ParseDecision(action, targetGroup, targetItem, reason string) (Decision, error) {
	switch DecisionAction(action) {
	case ActionApprove:
		return Approve{}, nil
	case ActionSendBack:
		if targetGroup == "" && targetItem == "" {
			return nil, fmt.Errorf("%w: send_back needs a target group or a target item", ErrTargetRequired)
		}

		if reason == "" {
			return nil, ErrReasonRequired
		}

		return SendBack{TargetGroup: targetGroup, TargetItem: targetItem, Reason: reason}, nil
	case ActionSkipTo:
		if targetGroup == "" {
			return nil, fmt.Errorf("%w: skip_to needs a target group", ErrTargetRequired)
		}

		return SkipTo{TargetGroup: targetGroup}, nil
	case ActionCompleteGroup:
		return CompleteGroup{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

// Reason returns the free-text reason carried by the decision, if any.
func Reason(d Decision) string {
	if sb, ok := d.(SendBack); ok {
		return sb.Reason
	}

	return ""
}
