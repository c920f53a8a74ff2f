package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegate/stagegate/pkg/models"
)

func TestParse_CompositeID(t *testing.T) {
	testCases := []struct {
		taskID string
		group  string
		item   string
	}{
		{"WFG1_WFI1", "WFG1", "WFI1"},
		{"WFG1_WFI2", "WFG1", "WFI2"},
		{"WFG2_WFI1", "WFG2", "WFI1"},
		{"WFG3_WFI1", "WFG3", "WFI1"},
	}

	for _, tc := range testCases {
		t.Run(tc.taskID, func(t *testing.T) {
			pos, ok := Parse(tc.taskID)
			require.True(t, ok)
			assert.Equal(t, tc.group, pos.Group)
			assert.Equal(t, tc.item, pos.Item)
		})
	}
}

func TestParse_CallActivityID(t *testing.T) {
	pos, ok := Parse("WFG2_CallActivity")
	require.True(t, ok)
	assert.Equal(t, "WFG2", pos.Group)
	assert.Empty(t, pos.Item)
}

func TestParse_LegacyName(t *testing.T) {
	pos, ok := Parse("WFG2_SchematicDesign")
	require.True(t, ok)
	assert.Equal(t, "WFG2", pos.Group)
	assert.Empty(t, pos.Item)
}

func TestParse_Unrecognized(t *testing.T) {
	for _, taskID := range []string{"", "StartEvent_1", "_WFI1", "WFG1_WFI", "_CallActivity"} {
		_, ok := Parse(taskID)
		assert.False(t, ok, "expected %q to be rejected", taskID)
	}
}

func TestTaskID_InvertsParse(t *testing.T) {
	for _, taskID := range []string{"WFG1_WFI1", "WFG2_WFI2", "WFG3_WFI1", "WFG1_CallActivity"} {
		pos, ok := Parse(taskID)
		require.True(t, ok)
		assert.Equal(t, taskID, TaskID(pos))
	}
}

func TestTaskID_GroupOnly(t *testing.T) {
	assert.Equal(t, "WFG2_CallActivity", TaskID(models.Position{Group: "WFG2"}))
}
