// Package chat implements the conversational appointment-booking turn
// processor: it sends user utterances to a reasoning service, parses the
// model's JSON decision, and applies at most one side effect per turn.
package chat

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one entry in a conversation history.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// SeedHistory returns a fresh copy of the fixed framing pair every
// conversation starts from. Callers may mutate the returned slice freely.
func SeedHistory() []Message {
	return []Message{
		{Role: RoleUser, Text: "You are a hospital desk assistant"},
		{Role: RoleModel, Text: "Sure I will act like a hospital desk assistant with the given instructions."},
	}
}
