// Package position maps raw graph checkpoint identifiers to the domain's
// two-level (workflow group, workflow item) addressing and back.
package position

import (
	"strings"

	"github.com/stagegate/stagegate/pkg/models"
)

// parser is one naming-convention recognizer. Parsers are pure and total:
// they either recognize the id or decline it, never error.
type parser func(taskID string) (models.Position, bool)

// parsers are tried in order. Three conventions exist historically:
// composite ids ("WFG1_WFI2"), call-activity ids carrying only a group
// ("WFG1_CallActivity"), and legacy full-name ids ("WFG1_ProjectKickoff").
// The legacy form may no longer be reachable from current documents, but
// snapshots persisted before the composite convention can still carry it, so
// the parser stays.
var parsers = []parser{
	parseCompositeID,
	parseCallActivityID,
	parseLegacyName,
}

// Parse maps a checkpoint identifier to its (group, item) address.
func Parse(taskID string) (models.Position, bool) {
	for _, parse := range parsers {
		if pos, ok := parse(taskID); ok {
			return pos, true
		}
	}

	return models.Position{}, false
}

// parseCompositeID handles "WFG1_WFI1" style ids: everything before "_WFI"
// names the group, the rest names the item.
func parseCompositeID(taskID string) (models.Position, bool) {
	idx := strings.Index(taskID, "_WFI")
	if idx <= 0 {
		return models.Position{}, false
	}

	group := strings.ReplaceAll(taskID[:idx], "_", "")
	item := "WFI" + taskID[idx+len("_WFI"):]

	if group == "" || item == "WFI" {
		return models.Position{}, false
	}

	return models.Position{Group: group, Item: item}, true
}

// parseCallActivityID handles "WFG1_CallActivity" style ids, which address a
// whole group with no item.
func parseCallActivityID(taskID string) (models.Position, bool) {
	group, found := strings.CutSuffix(taskID, "_CallActivity")
	if !found || group == "" {
		return models.Position{}, false
	}

	return models.Position{Group: group}, true
}

// legacyNames maps full-name ids from the oldest document convention.
var legacyNames = map[string]string{
	"WFG1_ProjectKickoff":   "WFG1",
	"WFG2_SchematicDesign":  "WFG2",
	"WFG3_ConstructionDocs": "WFG3",
}

func parseLegacyName(taskID string) (models.Position, bool) {
	group, ok := legacyNames[taskID]
	if !ok {
		return models.Position{}, false
	}

	return models.Position{Group: group}, true
}

// TaskID is the inverse mapping: the composite checkpoint id a (group, item)
// pair addresses. Used to validate decision targets against the graph.
func TaskID(pos models.Position) string {
	if pos.Item == "" {
		return pos.Group + "_CallActivity"
	}

	return pos.Group + "_" + pos.Item
}
