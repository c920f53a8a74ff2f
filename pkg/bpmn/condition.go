package bpmn

import (
	"fmt"
	"strings"
)

// Condition is a parsed gateway guard: one or more equality clauses joined by
// "and" (or "&&"), each comparing a resolution-data key against a string
// literal. This is the whole condition language; anything richer is a
// document error caught at compile time.
type Condition struct {
	clauses []clause
}

type clause struct {
	key   string
	value string
}

// ParseCondition parses a guard expression. It is total: any input either
// yields a Condition or a descriptive error, never a panic.
func ParseCondition(expr string) (*Condition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty condition expression")
	}

	normalized := strings.ReplaceAll(expr, "&&", " and ")

	cond := &Condition{}

	for _, part := range strings.Split(normalized, " and ") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, err := parseClause(part)
		if err != nil {
			return nil, fmt.Errorf("condition %q: %w", expr, err)
		}

		cond.clauses = append(cond.clauses, clause{key: key, value: value})
	}

	if len(cond.clauses) == 0 {
		return nil, fmt.Errorf("condition %q has no clauses", expr)
	}

	return cond, nil
}

func parseClause(part string) (string, string, error) {
	left, right, found := strings.Cut(part, "==")
	if !found {
		return "", "", fmt.Errorf("clause %q is not an equality comparison", part)
	}

	key := strings.TrimSpace(left)
	if key == "" {
		return "", "", fmt.Errorf("clause %q has no left-hand key", part)
	}

	value, err := unquote(strings.TrimSpace(right))
	if err != nil {
		return "", "", fmt.Errorf("clause %q: %w", part, err)
	}

	return key, value, nil
}

func unquote(s string) (string, error) {
	if len(s) < 2 {
		return "", fmt.Errorf("right-hand side %q is not a quoted string", s)
	}

	if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
		return s[1 : len(s)-1], nil
	}

	return "", fmt.Errorf("right-hand side %q is not a quoted string", s)
}

// Evaluate reports whether every clause matches the given resolution data.
// Missing keys and non-string values simply fail the clause.
func (c *Condition) Evaluate(data map[string]any) bool {
	for _, cl := range c.clauses {
		raw, ok := data[cl.key]
		if !ok {
			return false
		}

		value, ok := raw.(string)
		if !ok || value != cl.value {
			return false
		}
	}

	return true
}

// String reconstructs a canonical form of the condition, used in problem
// messages.
func (c *Condition) String() string {
	parts := make([]string, 0, len(c.clauses))
	for _, cl := range c.clauses {
		parts = append(parts, fmt.Sprintf("%s == '%s'", cl.key, cl.value))
	}

	return strings.Join(parts, " and ")
}
