package event

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/teut-network/teutledger/pkg/types"
)

func TestLog_MarkTruncate(t *testing.T) {
	l := NewLog()
	l.Emit(Transfer{To: types.Address{1}, Amount: uint256.NewInt(5)})
	mark := l.Mark()
	l.Emit(Approval{Owner: types.Address{1}, Spender: types.Address{2}, Amount: uint256.NewInt(1)})
	l.Emit(Staked{User: types.Address{1}, Amount: uint256.NewInt(1), Index: 1})

	if l.Len() != 3 {
		t.Fatalf("Len = %d, want 3", l.Len())
	}
	l.Truncate(mark)
	if l.Len() != 1 {
		t.Fatalf("Len after Truncate = %d, want 1", l.Len())
	}
	if l.Events()[0].Name() != "Transfer" {
		t.Fatalf("remaining event = %s, want Transfer", l.Events()[0].Name())
	}

	// Truncating past the end is a no-op.
	l.Truncate(10)
	if l.Len() != 1 {
		t.Fatalf("Len = %d, want 1", l.Len())
	}
}

func TestLog_EventsIsCopy(t *testing.T) {
	l := NewLog()
	l.Emit(Transfer{Amount: uint256.NewInt(1)})
	evs := l.Events()
	evs[0] = nil
	if l.Events()[0] == nil {
		t.Fatal("Events exposes the internal slice")
	}
}

func TestEvent_Names(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{Transfer{}, "Transfer"},
		{Approval{}, "Approval"},
		{Staked{}, "Staked"},
		{StakeWithdrawn{}, "StakeWithdrawn"},
	}
	for _, tt := range tests {
		if got := tt.ev.Name(); got != tt.want {
			t.Errorf("Name() = %q, want %q", got, tt.want)
		}
	}
}
