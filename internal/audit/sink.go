package audit

// Sink accepts audit events for delivery. Emit is fire-and-forget: it must
// return promptly and never fail the calling operation. State changes are
// authoritative before the event is handed off.
type Sink interface {
	Emit(event Event)
}

// MultiSink fans an event out to several sinks.
type MultiSink []Sink

func (m MultiSink) Emit(event Event) {
	for _, s := range m {
		s.Emit(event)
	}
}
