package synth

import "testing"

func TestExtractReply(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		text   string
		status Status
		key    string
	}{
		{"reply key", `{"reply":"hi"}`, "hi", StatusMatchedKey, "reply"},
		{"priority order", `{"text":"t","response":"r","message":"m"}`, "r", StatusMatchedKey, "response"},
		{"aiReply", `{"aiReply":"ai","extra":1}`, "ai", StatusMatchedKey, "aiReply"},
		{"content last", `{"content":"c","other":"o"}`, "c", StatusMatchedKey, "content"},
		{"number coerced", `{"reply":42}`, "42", StatusMatchedKey, "reply"},
		{"null coerced", `{"reply":null}`, "", StatusMatchedKey, "reply"},
		{"nested object kept as json", `{"reply":{"a":1}}`, `{"a":1}`, StatusMatchedKey, "reply"},
		{"single unknown key", `{"foo":"bar"}`, "{\n  \"foo\": \"bar\"\n}", StatusSerialized, ""},
		{"wrapped reply", `{"data":{"reply":"hi"}}`, "hi", StatusSingleKey, "data.reply"},
		{"wrapper without reply key", `{"data":{"answer":"yes"}}`, "{\n  \"data\": {\n    \"answer\": \"yes\"\n  }\n}", StatusSerialized, ""},
		{"whitespace around object", "  {\"reply\":\"hi\"}\n", "hi", StatusMatchedKey, "reply"},
		{"plain text", "hello", "hello", StatusUnparsed, ""},
		{"empty", "", "", StatusUnparsed, ""},
		{"truncated json", `{"reply":"hi`, `{"reply":"hi`, StatusUnparsed, ""},
		{"json array", `["a","b"]`, `["a","b"]`, StatusUnparsed, ""},
		{"json string", `"quoted"`, `"quoted"`, StatusUnparsed, ""},
		{"fenced json", "```json\n{\"reply\":\"hi\"}\n```", "```json\n{\"reply\":\"hi\"}\n```", StatusUnparsed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractReply(tt.raw)
			if got.Text != tt.text {
				t.Errorf("text = %q, want %q", got.Text, tt.text)
			}
			if got.Status != tt.status {
				t.Errorf("status = %q, want %q", got.Status, tt.status)
			}
			if got.Key != tt.key {
				t.Errorf("key = %q, want %q", got.Key, tt.key)
			}
		})
	}
}

func TestExtractReply_SerializesUnknownObjects(t *testing.T) {
	got := ExtractReply(`{"foo":"bar","baz":1}`)
	want := "{\n  \"foo\": \"bar\",\n  \"baz\": 1\n}"
	if got.Text != want {
		t.Errorf("text = %q, want %q", got.Text, want)
	}
	if got.Status != StatusSerialized {
		t.Errorf("status = %q, want %q", got.Status, StatusSerialized)
	}
	if got.Confident() {
		t.Error("serialized fallback must not be confident")
	}

	empty := ExtractReply(`{}`)
	if empty.Status != StatusSerialized || empty.Text != "{}" {
		t.Errorf("unexpected result for empty object: %+v", empty)
	}
}

func TestExtractReply_Deterministic(t *testing.T) {
	raw := `{"x":"1","y":"2","z":"3"}`
	first := ExtractReply(raw)
	for i := 0; i < 10; i++ {
		if got := ExtractReply(raw); got != first {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}
