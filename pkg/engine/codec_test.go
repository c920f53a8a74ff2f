package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegate/stagegate/pkg/models"
	"github.com/stagegate/stagegate/pkg/testutil"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()

	codec, err := NewCodec()
	require.NoError(t, err)

	return codec
}

func TestCodec_RoundTripFreshCursor(t *testing.T) {
	codec := newTestCodec(t)
	cur := newReadyCursor(t)

	raw, err := codec.Encode(cur)
	require.NoError(t, err)

	restored, err := codec.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, "WFG1_WFI1", readyTask(t, restored))
	assert.False(t, restored.Completed())
}

func TestCodec_RoundTripMidExecution(t *testing.T) {
	codec := newTestCodec(t)
	cur := newReadyCursor(t)

	decide(t, cur, models.Approve{})
	decide(t, cur, models.Approve{})
	require.Equal(t, "WFG2_WFI1", readyTask(t, cur))

	raw, err := codec.Encode(cur)
	require.NoError(t, err)

	restored, err := codec.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "WFG2_WFI1", readyTask(t, restored))

	// The restored cursor keeps executing exactly where the original paused.
	decide(t, restored, models.Approve{})
	decide(t, restored, models.Approve{})
	decide(t, restored, models.Approve{})

	assert.True(t, restored.Completed())
}

func TestCodec_RoundTripCompletedCursor(t *testing.T) {
	codec := newTestCodec(t)
	cur := newReadyCursor(t)

	decide(t, cur, models.SkipTo{TargetGroup: "WFG3"})
	decide(t, cur, models.Approve{})
	require.True(t, cur.Completed())

	raw, err := codec.Encode(cur)
	require.NoError(t, err)

	restored, err := codec.Decode(raw)
	require.NoError(t, err)
	assert.True(t, restored.Completed())
}

func TestCodec_DecodeRejectsMalformedSnapshot(t *testing.T) {
	codec := newTestCodec(t)

	_, err := codec.Decode([]byte(`{"format_version": 1}`))
	assert.ErrorContains(t, err, "envelope schema")
}

func TestCodec_DecodeRejectsNewerFormatVersion(t *testing.T) {
	codec := newTestCodec(t)
	cur := newReadyCursor(t)

	raw, err := codec.Encode(cur)
	require.NoError(t, err)

	var snap map[string]any
	require.NoError(t, json.Unmarshal(raw, &snap))
	snap["format_version"] = FormatVersion + 1

	bumped, err := json.Marshal(snap)
	require.NoError(t, err)

	_, err = codec.Decode(bumped)
	assert.ErrorContains(t, err, "newer than supported")
}

func TestCodec_DecodeRejectsUnknownPosition(t *testing.T) {
	codec := newTestCodec(t)

	snap := snapshot{
		FormatVersion: FormatVersion,
		ProcessID:     testutil.ApprovalProcessID,
		Document:      testutil.ApprovalDocument,
		Current:       "Ghost_Task",
	}

	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	_, err = codec.Decode(raw)
	assert.ErrorContains(t, err, "no longer exists")
}

func TestCodec_DecodeRejectsMissingStackProcess(t *testing.T) {
	codec := newTestCodec(t)

	snap := snapshot{
		FormatVersion: FormatVersion,
		ProcessID:     testutil.ApprovalProcessID,
		Document:      testutil.ApprovalDocument,
		Stack:         []Frame{{ProcessID: "Ghost_Process", CallNodeID: "WFG1_CallActivity"}},
		Current:       "WFG1_WFI1",
	}

	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	_, err = codec.Decode(raw)
	assert.ErrorContains(t, err, "missing subprocess")
}
