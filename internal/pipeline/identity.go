package pipeline

import (
	"fmt"
	"strings"

	"ttml2amll/internal/lyric"
)

// chorusNames always map to lyric.ChorusAgent, compared case-insensitively.
var chorusNames = []string{"合", "合唱", "All"}

func isChorus(name string) bool {
	for _, c := range chorusNames {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// StandardizeAgentIDs replaces recognized singer names with v1, v2, … in
// order of first appearance. Chorus names become lyric.ChorusAgent. Lines
// without an agent are left alone.
func StandardizeAgentIDs(lines []lyric.Line) {
	ids := make(map[string]string)
	next := 1
	for i := range lines {
		name := lines[i].Agent
		if name == "" {
			continue
		}
		if isChorus(name) {
			lines[i].Agent = lyric.ChorusAgent
			continue
		}
		id, ok := ids[name]
		if !ok {
			id = fmt.Sprintf("v%d", next)
			next++
			ids[name] = id
		}
		lines[i].Agent = id
	}
}

// AssignDuetSides gives every agent a display side in order of first
// appearance, alternating left (false) and right (true). Third and later
// singers keep alternating. The chorus agent gets no side.
func AssignDuetSides(lines []lyric.Line) map[string]bool {
	sides := make(map[string]bool)
	next := false
	for _, line := range lines {
		id := line.Agent
		if id == "" || id == lyric.ChorusAgent {
			continue
		}
		if _, ok := sides[id]; ok {
			continue
		}
		sides[id] = next
		next = !next
	}
	return sides
}

// hasSingerInfo reports whether any line names a singer other than the
// parser default.
func hasSingerInfo(lines []lyric.Line) bool {
	for _, line := range lines {
		if line.Agent != "" && line.Agent != lyric.DefaultAgent {
			return true
		}
	}
	return false
}
