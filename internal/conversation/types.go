package conversation

// Direction is the side of a two-party log a message came from.
type Direction string

const (
	Inbound  Direction = "in"  // client -> consultant
	Outbound Direction = "out" // consultant -> client
)

// Message is a single raw entry in a historical conversation log.
type Message struct {
	Direction Direction `json:"direction"`
	Text      string    `json:"text"`
}

// Conversation is one log as stored in a conversations export.
type Conversation struct {
	ID       string    `json:"id,omitempty"`
	Messages []Message `json:"conversation"`
}

// Role is the canonical speaker of a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is one canonical (role, content) element of a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TrainingInteraction is a ground-truth sample derived from a log.
// History holds speaker-tagged lines ("Client: ...", "Consultant: ...")
// that preceded ClientInput.
type TrainingInteraction struct {
	History            []string `json:"history"`
	ClientInput        string   `json:"client_input"`
	ConsultantResponse string   `json:"consultant_response"`
}

// Speaker tags used in TrainingInteraction.History.
const (
	clientTag     = "Client: "
	consultantTag = "Consultant: "
)
