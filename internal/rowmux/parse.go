package rowmux

import "strings"

const (
	LineTypeRow     = "row"
	LineTypeStatus  = "status"
	LineTypeComment = "comment"
	LineTypeUnknown = "unknown"
)

// ClassifyLine inspects a bridge line and returns a simple line type token.
// Row lines are tab-separated with at least four fields; the bridge also
// emits JSON status lines in response to commands and comment lines in
// fixture replays.
func ClassifyLine(line string) string {
	switch {
	case strings.HasPrefix(line, "# "):
		return LineTypeComment
	case strings.HasPrefix(line, "{"):
		return LineTypeStatus
	case strings.Count(line, "\t") >= 3:
		return LineTypeRow
	default:
		return LineTypeUnknown
	}
}
