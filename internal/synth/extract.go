package synth

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Status records how confidently a reply was pulled out of raw model output.
type Status string

const (
	// StatusMatchedKey: the output was a JSON object with a known reply key.
	StatusMatchedKey Status = "matched_key"
	// StatusSingleKey: no known key at the top level, but the object wraps a
	// single nested object that has one, as in {"data":{"reply":"hi"}}.
	StatusSingleKey Status = "single_key"
	// StatusSerialized: a JSON object with no usable field, including a lone
	// unknown scalar field; the whole object is returned pretty-printed.
	StatusSerialized Status = "serialized_object"
	// StatusUnparsed: the output was not a JSON object and is returned verbatim.
	StatusUnparsed Status = "unparsed"
)

// replyKeys are checked in priority order.
var replyKeys = []string{"reply", "response", "aiReply", "message", "text", "content"}

// Reply is the text extracted from a completion plus how it was found.
type Reply struct {
	Text   string `json:"text"`
	Status Status `json:"status"`
	Key    string `json:"key,omitempty"`
}

// Confident reports whether the reply came from a recognised key.
func (r Reply) Confident() bool {
	return r.Status == StatusMatchedKey
}

// ExtractReply pulls a reply string out of loosely structured completion
// output. It never fails: any input yields a Reply.
func ExtractReply(raw string) Reply {
	if !gjson.Valid(raw) {
		return Reply{Text: raw, Status: StatusUnparsed}
	}
	obj := gjson.Parse(raw)
	if !obj.IsObject() {
		return Reply{Text: raw, Status: StatusUnparsed}
	}

	for _, key := range replyKeys {
		if v := obj.Get(key); v.Exists() {
			return Reply{Text: valueText(v), Status: StatusMatchedKey, Key: key}
		}
	}

	var (
		count   int
		onlyKey string
		only    gjson.Result
	)
	obj.ForEach(func(k, v gjson.Result) bool {
		count++
		onlyKey, only = k.String(), v
		return count < 2
	})
	if count == 1 && only.IsObject() {
		for _, key := range replyKeys {
			if v := only.Get(key); v.Exists() {
				return Reply{Text: valueText(v), Status: StatusSingleKey, Key: onlyKey + "." + key}
			}
		}
	}

	return Reply{
		Text:   strings.TrimRight(string(pretty.Pretty([]byte(obj.Raw))), "\n"),
		Status: StatusSerialized,
	}
}

// valueText coerces a JSON value to a string: strings are unquoted, null is
// empty, everything else keeps its JSON text.
func valueText(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.String()
	case gjson.Null:
		return ""
	default:
		return v.Raw
	}
}
