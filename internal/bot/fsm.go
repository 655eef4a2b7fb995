package bot

import "sync"

// State names one step of a conversation. Each multi-step flow is a linear
// chain of states ending back at StateIdle.
type State string

const (
	StateIdle State = "idle"

	// Add flow: description, then date, then amount, then submit.
	StateAddDescription State = "add_description"
	StateAddDate        State = "add_date"
	StateAddAmount      State = "add_amount"

	// Report flow: range start, then range end, then fetch.
	StateReportStart State = "report_start"
	StateReportEnd   State = "report_end"

	// Delete flow: collect the id, then delete.
	StateDeleteID State = "delete_id"

	// Update flow: id, then new description, then new amount, then submit.
	StateUpdateID          State = "update_id"
	StateUpdateDescription State = "update_description"
	StateUpdateAmount      State = "update_amount"
)

// transitions is the explicit table of state successions. A state missing
// from the table is terminal: completing it returns the conversation to
// StateIdle.
var transitions = map[State]State{
	StateAddDescription:    StateAddDate,
	StateAddDate:           StateAddAmount,
	StateAddAmount:         StateIdle,
	StateReportStart:       StateReportEnd,
	StateReportEnd:         StateIdle,
	StateDeleteID:          StateIdle,
	StateUpdateID:          StateUpdateDescription,
	StateUpdateDescription: StateUpdateAmount,
	StateUpdateAmount:      StateIdle,
}

// Next returns the successor of a state in its flow.
func Next(s State) State {
	if n, ok := transitions[s]; ok {
		return n
	}
	return StateIdle
}

// Draft accumulates the fields collected so far in the active flow.
type Draft struct {
	Description string
	Date        string
	Amount      string
	RangeStart  string
	ExpenseID   int64
}

// Conversation is the per-chat machine position plus collected input.
type Conversation struct {
	State State
	Draft Draft
}

// Store keeps one Conversation per chat id. Conversations for different
// chats are fully independent; the mutex only guards the map itself.
type Store struct {
	mu            sync.Mutex
	conversations map[int64]Conversation
}

func NewStore() *Store {
	return &Store{conversations: make(map[int64]Conversation)}
}

// Get returns the current conversation, defaulting to the idle state.
func (s *Store) Get(chatID int64) Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.conversations[chatID]; ok {
		return c
	}
	return Conversation{State: StateIdle}
}

// Set replaces the conversation for a chat.
func (s *Store) Set(chatID int64, c Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[chatID] = c
}

// Reset is the explicit transition back to the initial state, used on
// completion and on /cancel.
func (s *Store) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, chatID)
}
