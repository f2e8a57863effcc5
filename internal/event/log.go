package event

// Log is an in-memory Sink that can be rolled back to a mark.
type Log struct {
	events []Event
}

// NewLog creates an empty event log.
func NewLog() *Log {
	return &Log{}
}

// Emit appends ev.
func (l *Log) Emit(ev Event) {
	l.events = append(l.events, ev)
}

// Mark returns the current length, for use with Truncate.
func (l *Log) Mark() int {
	return len(l.events)
}

// Truncate drops every event emitted after mark.
func (l *Log) Truncate(mark int) {
	if mark < 0 {
		mark = 0
	}
	if mark < len(l.events) {
		for i := mark; i < len(l.events); i++ {
			l.events[i] = nil
		}
		l.events = l.events[:mark]
	}
}

// Events returns the emitted events in order.
func (l *Log) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of events.
func (l *Log) Len() int {
	return len(l.events)
}
