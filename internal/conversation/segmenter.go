package conversation

import "strings"

// Segment splits a single conversation log into training interactions.
//
// A maximal run of inbound messages followed by a maximal run of outbound
// messages forms one interaction. Each emitted interaction carries a copy
// of the history accumulated before it. A trailing inbound run with no reply
// is dropped, and outbound messages with no preceding inbound run are
// skipped without entering history.
func Segment(msgs []Message) []TrainingInteraction {
	var out []TrainingInteraction
	var history []string

	i := 0
	for i < len(msgs) {
		clientRun, next := collectRun(msgs, i, Inbound)
		i = next

		if len(clientRun) == 0 {
			// Agent-initiated or unknown-direction message.
			i++
			continue
		}

		consultantRun, next := collectRun(msgs, i, Outbound)
		i = next

		if len(consultantRun) == 0 {
			continue
		}

		snapshot := make([]string, len(history))
		copy(snapshot, history)

		out = append(out, TrainingInteraction{
			History:            snapshot,
			ClientInput:        strings.Join(clientRun, "\n"),
			ConsultantResponse: strings.Join(consultantRun, "\n"),
		})

		for _, text := range clientRun {
			history = append(history, clientTag+text)
		}
		for _, text := range consultantRun {
			history = append(history, consultantTag+text)
		}
	}

	return out
}

// SegmentAll segments every conversation and concatenates the results in
// input order. History never crosses conversation boundaries.
func SegmentAll(convs []Conversation) []TrainingInteraction {
	var out []TrainingInteraction
	for _, c := range convs {
		out = append(out, Segment(c.Messages)...)
	}
	return out
}

// collectRun gathers the texts of consecutive messages in direction dir
// starting at i and returns them with the index of the first message after
// the run.
func collectRun(msgs []Message, i int, dir Direction) ([]string, int) {
	var run []string
	for i < len(msgs) && msgs[i].Direction == dir {
		run = append(run, msgs[i].Text)
		i++
	}
	return run, i
}
