package classify

import (
	"regexp"
	"strconv"
	"strings"
)

var hunkRe = regexp.MustCompile(`^@@ -(\d+)(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

type patchLine struct {
	old  int // 0 when the line does not exist in the pre version
	new  int // 0 when the line does not exist in the post version
	text string
}

// parsePatch walks a unified patch and numbers every hunk line against the
// pre and post file versions.
func parsePatch(patch string) []patchLine {
	var out []patchLine
	oldLine, newLine := 0, 0
	inHunk := false

	for _, line := range strings.Split(patch, "\n") {
		if m := hunkRe.FindStringSubmatch(line); m != nil {
			oldLine, _ = strconv.Atoi(m[1])
			newLine, _ = strconv.Atoi(m[2])
			inHunk = true
			continue
		}
		if !inHunk {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+"):
			out = append(out, patchLine{new: newLine, text: line[1:]})
			newLine++
		case strings.HasPrefix(line, "-"):
			out = append(out, patchLine{old: oldLine, text: line[1:]})
			oldLine++
		default:
			text := strings.TrimPrefix(line, " ")
			out = append(out, patchLine{old: oldLine, new: newLine, text: text})
			oldLine++
			newLine++
		}
	}
	return out
}

// Anchor locates a classified edit inside the unified patch for its file and
// returns the edit's position as the number of patch lines preceding it.
// Removed edits are matched on the pre-version line number and resolved
// through the pre-version text; added and changed edits are matched on the
// post-version line number. Returns 0 when no patch line matches; a missing
// anchor is not an error, the comment just lands at the top of the diff.
func Anchor(edit Edit, preText, patch string) int {
	var target string
	found := false

	for _, pl := range parsePatch(patch) {
		if edit.Kind == KindRemoved {
			if pl.old == edit.Line {
				preLines := strings.Split(preText, "\n")
				if edit.Line-1 < len(preLines) {
					target = preLines[edit.Line-1]
					found = true
				}
				break
			}
		} else if pl.new == edit.Line {
			target = pl.text
			found = true
			break
		}
	}

	if !found {
		return 0
	}
	idx := strings.Index(patch, target)
	if idx < 0 {
		return 0
	}
	return strings.Count(patch[:idx], "\n")
}
