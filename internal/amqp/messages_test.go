package amqp

import (
	"testing"
	"time"
)

func TestExpenseEventMessageJSON(t *testing.T) {
	msg := NewExpenseEventMessage(42, ActionUpdated)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := ExpenseEventMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.ID != 42 || got.Action != ActionUpdated {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if time.Since(got.Timestamp) > time.Minute {
		t.Fatalf("timestamp not recent: %v", got.Timestamp)
	}
}

func TestExpenseEventMessageValidate(t *testing.T) {
	cases := []struct {
		name string
		msg  ExpenseEventMessage
		ok   bool
	}{
		{"created", ExpenseEventMessage{ID: 1, Action: ActionCreated}, true},
		{"deleted", ExpenseEventMessage{ID: 7, Action: ActionDeleted}, true},
		{"unknown action", ExpenseEventMessage{ID: 1, Action: "renamed"}, false},
		{"zero id", ExpenseEventMessage{ID: 0, Action: ActionCreated}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestExpenseEventMessageFromJSONRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{
		[]byte(`not json`),
		[]byte(`{"id":0,"action":"created"}`),
		[]byte(`{"id":5,"action":"exploded"}`),
	} {
		if _, err := ExpenseEventMessageFromJSON(data); err == nil {
			t.Fatalf("expected error for %s", data)
		}
	}
}
