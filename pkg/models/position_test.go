package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosition_Terminal(t *testing.T) {
	assert.True(t, TerminalPosition().Terminal())
	assert.False(t, Position{Group: "WFG1", Item: "WFI1"}.Terminal())
}

func TestPosition_IsZero(t *testing.T) {
	assert.True(t, Position{}.IsZero())
	assert.False(t, TerminalPosition().IsZero())
	assert.False(t, Position{Group: "WFG1"}.IsZero())
}
