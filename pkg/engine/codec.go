package engine

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// FormatVersion tags every encoded snapshot so the codec can evolve without
// breaking previously persisted instances.
const FormatVersion = 1

// envelopeSchema is checked before decoding. A snapshot that fails the schema
// is rejected up front instead of producing a half-restored cursor.
const envelopeSchema = `{
  "type": "object",
  "required": ["format_version", "process_id", "document", "current", "completed"],
  "properties": {
    "format_version": {"type": "integer", "minimum": 1},
    "process_id": {"type": "string", "minLength": 1},
    "document": {"type": "string", "minLength": 1},
    "current": {"type": "string", "minLength": 1},
    "completed": {"type": "boolean"},
    "task_data": {"type": "object"},
    "stack": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["process_id", "call_node_id"],
        "properties": {
          "process_id": {"type": "string", "minLength": 1},
          "call_node_id": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

// snapshot is the serialized form of a cursor. The source document travels
// inside the snapshot, so decoding needs nothing but the snapshot itself.
type snapshot struct {
	FormatVersion int            `json:"format_version"`
	ProcessID     string         `json:"process_id"`
	Document      string         `json:"document"`
	Stack         []Frame        `json:"stack,omitempty"`
	Current       string         `json:"current"`
	TaskData      map[string]any `json:"task_data,omitempty"`
	Completed     bool           `json:"completed"`
}

// Codec serializes cursors to durable snapshots and back. Snapshots are
// opaque to every collaborator outside this package.
type Codec struct {
	schema *gojsonschema.Schema
}

// NewCodec compiles the envelope schema once.
func NewCodec() (*Codec, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(envelopeSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile snapshot envelope schema: %w", err)
	}

	return &Codec{schema: schema}, nil
}

// Encode serializes a cursor into a storable document.
func (c *Codec) Encode(cur *Cursor) ([]byte, error) {
	snap := snapshot{
		FormatVersion: FormatVersion,
		ProcessID:     cur.processID,
		Document:      cur.document,
		Stack:         cur.stack,
		Current:       cur.current,
		TaskData:      cur.taskData,
		Completed:     cur.completed,
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode execution snapshot: %w", err)
	}

	return raw, nil
}

// Decode restores a live cursor from a snapshot, recompiling the embedded
// document and verifying the restored position still exists in the graph.
func (c *Codec) Decode(raw []byte) (*Cursor, error) {
	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to validate execution snapshot: %w", err)
	}

	if !result.Valid() {
		return nil, fmt.Errorf("execution snapshot does not match envelope schema: %v", result.Errors())
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode execution snapshot: %w", err)
	}

	if snap.FormatVersion > FormatVersion {
		return nil, fmt.Errorf("execution snapshot format version %d is newer than supported version %d", snap.FormatVersion, FormatVersion)
	}

	cur, err := New(snap.Document, snap.ProcessID)
	if err != nil {
		return nil, fmt.Errorf("failed to recompile snapshot document: %w", err)
	}

	cur.stack = snap.Stack
	cur.current = snap.Current
	cur.completed = snap.Completed

	if snap.TaskData != nil {
		cur.taskData = snap.TaskData
	}

	for _, frame := range snap.Stack {
		if _, ok := cur.graph.Processes[frame.ProcessID]; !ok {
			return nil, fmt.Errorf("snapshot stack references missing subprocess %q", frame.ProcessID)
		}
	}

	if !snap.Completed {
		if _, ok := cur.scope().Nodes[snap.Current]; !ok {
			return nil, fmt.Errorf("snapshot position %q no longer exists in process %q", snap.Current, cur.scope().ID)
		}
	}

	return cur, nil
}
