package conversation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Field names accepted on history entries, in lookup order.
var (
	roleFields    = []string{"role", "speaker"}
	contentFields = []string{"message", "content", "text"}
)

// FormatHistory normalises caller-supplied conversation history into
// canonical turns. raw is expected to be a JSON array whose elements are
// plain strings or objects carrying a role/speaker label and a
// message/content/text field. Anything that is not a JSON array yields an
// empty slice. Entries of an unrecognised shape still produce a user turn
// with empty content so that the result has the same length as the input.
func FormatHistory(raw []byte) []Turn {
	turns := []Turn{}
	arr, ok := parseArray(raw)
	if !ok {
		return turns
	}

	arr.ForEach(func(_, entry gjson.Result) bool {
		turns = append(turns, formatEntry(entry))
		return true
	})
	return turns
}

// HistoryLines renders caller-supplied history as speaker-tagged lines, the
// same shape TrainingInteraction.History uses. Object entries keep their
// source label ("consultant" -> "Consultant: ..."); plain strings are kept
// verbatim; anything else is skipped.
func HistoryLines(raw []byte) []string {
	lines := []string{}
	arr, ok := parseArray(raw)
	if !ok {
		return lines
	}

	arr.ForEach(func(_, entry gjson.Result) bool {
		switch {
		case entry.Type == gjson.String:
			lines = append(lines, entry.String())
		case entry.IsObject():
			label := firstField(entry, roleFields)
			if label == "" {
				label = "unknown"
			}
			lines = append(lines, capitalize(label)+": "+firstField(entry, contentFields))
		}
		return true
	})
	return lines
}

// TurnsFromHistory converts speaker-tagged history lines back into turns.
// Lines without a recognised tag are treated as user content.
func TurnsFromHistory(lines []string) []Turn {
	turns := make([]Turn, 0, len(lines))
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, clientTag):
			turns = append(turns, Turn{Role: RoleUser, Content: strings.TrimSpace(line[len(clientTag):])})
		case strings.HasPrefix(line, consultantTag):
			turns = append(turns, Turn{Role: RoleAssistant, Content: strings.TrimSpace(line[len(consultantTag):])})
		default:
			turns = append(turns, Turn{Role: RoleUser, Content: line})
		}
	}
	return turns
}

// MapRole maps a source speaker label onto a canonical role.
func MapRole(label string) Role {
	switch label {
	case "":
		return RoleUser
	case "consultant":
		return RoleAssistant
	case "client":
		return RoleUser
	default:
		return Role(label)
	}
}

func formatEntry(entry gjson.Result) Turn {
	switch {
	case entry.Type == gjson.String:
		return Turn{Role: RoleUser, Content: entry.String()}
	case entry.IsObject():
		return Turn{
			Role:    MapRole(firstField(entry, roleFields)),
			Content: firstField(entry, contentFields),
		}
	default:
		return Turn{Role: RoleUser}
	}
}

func parseArray(raw []byte) (gjson.Result, bool) {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return gjson.Result{}, false
	}
	res := gjson.ParseBytes(raw)
	return res, res.IsArray()
}

// firstField returns the string value of the first present, non-null field.
func firstField(obj gjson.Result, names []string) string {
	for _, name := range names {
		v := obj.Get(name)
		if v.Exists() && v.Type != gjson.Null {
			return v.String()
		}
	}
	return ""
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
