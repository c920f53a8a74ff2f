package bpmn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCondition_SingleClause(t *testing.T) {
	cond, err := ParseCondition("decision_action == 'approve'")
	require.NoError(t, err)

	assert.True(t, cond.Evaluate(map[string]any{"decision_action": "approve"}))
	assert.False(t, cond.Evaluate(map[string]any{"decision_action": "send_back"}))
}

func TestParseCondition_MultipleClauses(t *testing.T) {
	cond, err := ParseCondition("decision_action == 'send_back' and target_group == 'WFG1'")
	require.NoError(t, err)

	assert.True(t, cond.Evaluate(map[string]any{
		"decision_action": "send_back",
		"target_group":    "WFG1",
	}))
	assert.False(t, cond.Evaluate(map[string]any{
		"decision_action": "send_back",
		"target_group":    "WFG2",
	}))
	assert.False(t, cond.Evaluate(map[string]any{
		"decision_action": "send_back",
	}))
}

func TestParseCondition_AmpersandSyntax(t *testing.T) {
	cond, err := ParseCondition("decision_action == 'skip_to' && target_group == 'WFG3'")
	require.NoError(t, err)

	assert.True(t, cond.Evaluate(map[string]any{
		"decision_action": "skip_to",
		"target_group":    "WFG3",
	}))
}

func TestParseCondition_DoubleQuotes(t *testing.T) {
	cond, err := ParseCondition(`decision_action == "approve"`)
	require.NoError(t, err)

	assert.True(t, cond.Evaluate(map[string]any{"decision_action": "approve"}))
}

func TestParseCondition_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"no comparison", "decision_action"},
		{"unquoted right side", "decision_action == approve"},
		{"missing key", "== 'approve'"},
		{"inequality", "decision_action != 'approve'"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCondition(tc.expr)
			assert.Error(t, err)
		})
	}
}

func TestCondition_EvaluateNonStringValue(t *testing.T) {
	cond, err := ParseCondition("target_group == 'WFG1'")
	require.NoError(t, err)

	assert.False(t, cond.Evaluate(map[string]any{"target_group": 1}))
	assert.False(t, cond.Evaluate(map[string]any{}))
	assert.False(t, cond.Evaluate(nil))
}

func TestCondition_String(t *testing.T) {
	cond, err := ParseCondition(`decision_action == "send_back" && target_group == 'WFG1'`)
	require.NoError(t, err)

	assert.Equal(t, "decision_action == 'send_back' and target_group == 'WFG1'", cond.String())
}
