package bot

import "testing"

func TestNextFollowsFlowChains(t *testing.T) {
	tests := []struct {
		name string
		from State
		want State
	}{
		{"add description to date", StateAddDescription, StateAddDate},
		{"add date to amount", StateAddDate, StateAddAmount},
		{"add amount terminal", StateAddAmount, StateIdle},
		{"report start to end", StateReportStart, StateReportEnd},
		{"report end terminal", StateReportEnd, StateIdle},
		{"delete id terminal", StateDeleteID, StateIdle},
		{"update id to description", StateUpdateID, StateUpdateDescription},
		{"update description to amount", StateUpdateDescription, StateUpdateAmount},
		{"update amount terminal", StateUpdateAmount, StateIdle},
		{"idle stays idle", StateIdle, StateIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Next(tt.from); got != tt.want {
				t.Errorf("Next(%s) = %s, want %s", tt.from, got, tt.want)
			}
		})
	}
}

func TestStoreDefaultsToIdle(t *testing.T) {
	s := NewStore()

	conv := s.Get(42)
	if conv.State != StateIdle {
		t.Errorf("fresh chat state = %s, want %s", conv.State, StateIdle)
	}
}

func TestStoreSetGetReset(t *testing.T) {
	s := NewStore()

	s.Set(7, Conversation{State: StateAddDate, Draft: Draft{Description: "coffee"}})

	conv := s.Get(7)
	if conv.State != StateAddDate {
		t.Errorf("state = %s, want %s", conv.State, StateAddDate)
	}
	if conv.Draft.Description != "coffee" {
		t.Errorf("draft description = %q, want %q", conv.Draft.Description, "coffee")
	}

	s.Reset(7)
	if got := s.Get(7).State; got != StateIdle {
		t.Errorf("state after reset = %s, want %s", got, StateIdle)
	}
}

func TestStoreChatsAreIndependent(t *testing.T) {
	s := NewStore()

	s.Set(1, Conversation{State: StateAddDescription})
	s.Set(2, Conversation{State: StateReportStart})

	if got := s.Get(1).State; got != StateAddDescription {
		t.Errorf("chat 1 state = %s, want %s", got, StateAddDescription)
	}
	if got := s.Get(2).State; got != StateReportStart {
		t.Errorf("chat 2 state = %s, want %s", got, StateReportStart)
	}

	s.Reset(1)
	if got := s.Get(2).State; got != StateReportStart {
		t.Errorf("chat 2 state after resetting chat 1 = %s, want %s", got, StateReportStart)
	}
}
