package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecision_Approve(t *testing.T) {
	decision, err := ParseDecision("approve", "", "", "")
	require.NoError(t, err)

	assert.Equal(t, ActionApprove, decision.Action())
	assert.Equal(t, map[string]any{KeyDecisionAction: "approve"}, decision.TaskData())
}

func TestParseDecision_SendBackToGroup(t *testing.T) {
	decision, err := ParseDecision("send_back", "WFG1", "", "incomplete drawings")
	require.NoError(t, err)

	assert.Equal(t, ActionSendBack, decision.Action())
	assert.Equal(t, map[string]any{
		KeyDecisionAction: "send_back",
		KeyTargetGroup:    "WFG1",
	}, decision.TaskData())
	assert.Equal(t, "incomplete drawings", Reason(decision))
}

func TestParseDecision_SendBackToItem(t *testing.T) {
	decision, err := ParseDecision("send_back", "", "WFI1", "needs rework")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		KeyDecisionAction: "send_back",
		KeyTargetItem:     "WFI1",
	}, decision.TaskData())
}

func TestParseDecision_SendBackRequiresTarget(t *testing.T) {
	_, err := ParseDecision("send_back", "", "", "some reason")
	assert.ErrorIs(t, err, ErrTargetRequired)
}

func TestParseDecision_SendBackRequiresReason(t *testing.T) {
	_, err := ParseDecision("send_back", "WFG1", "", "")
	assert.ErrorIs(t, err, ErrReasonRequired)
}

func TestParseDecision_SkipTo(t *testing.T) {
	decision, err := ParseDecision("skip_to", "WFG3", "", "")
	require.NoError(t, err)

	assert.Equal(t, ActionSkipTo, decision.Action())
	assert.Equal(t, map[string]any{
		KeyDecisionAction: "skip_to",
		KeyTargetGroup:    "WFG3",
	}, decision.TaskData())
}

func TestParseDecision_SkipToRequiresTarget(t *testing.T) {
	_, err := ParseDecision("skip_to", "", "", "")
	assert.ErrorIs(t, err, ErrTargetRequired)
}

func TestParseDecision_CompleteGroup(t *testing.T) {
	decision, err := ParseDecision("complete_wfg", "", "", "")
	require.NoError(t, err)

	assert.Equal(t, ActionCompleteGroup, decision.Action())
	assert.Equal(t, map[string]any{KeyDecisionAction: "complete_wfg"}, decision.TaskData())
}

func TestParseDecision_UnknownAction(t *testing.T) {
	for _, action := range []string{"", "reject", "APPROVE", "sendback"} {
		_, err := ParseDecision(action, "", "", "")
		assert.ErrorIs(t, err, ErrUnknownAction, "action %q", action)
	}
}

func TestReason_NonSendBackDecisionsHaveNone(t *testing.T) {
	assert.Empty(t, Reason(Approve{}))
	assert.Empty(t, Reason(SkipTo{TargetGroup: "WFG3"}))
	assert.Empty(t, Reason(CompleteGroup{}))
}
