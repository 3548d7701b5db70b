package diag

// Structured is a builder-style diagnostic for callers (the renamer, the
// dependency analyzer) that want to attach expected/actual context before
// handing off to a Bag.
type Structured struct {
	kind       Kind
	message    string
	pos        Position
	expected   []string
	actual     string
	suggestion string
}

func NewStructured(kind Kind) *Structured {
	return &Structured{kind: kind}
}

func (s *Structured) WithMessage(msg string) *Structured {
	s.message = msg
	return s
}

func (s *Structured) WithPosition(pos Position) *Structured {
	s.pos = pos
	return s
}

func (s *Structured) WithExpected(expected ...string) *Structured {
	s.expected = expected
	return s
}

func (s *Structured) WithActual(actual string) *Structured {
	s.actual = actual
	return s
}

func (s *Structured) WithSuggestion(suggestion string) *Structured {
	s.suggestion = suggestion
	return s
}

// Build renders the accumulated context into a final *Error.
func (s *Structured) Build() *Error {
	msg := s.message
	if len(s.expected) > 0 {
		msg += " (expected one of: "
		for i, e := range s.expected {
			if i > 0 {
				msg += ", "
			}
			msg += e
		}
		msg += ")"
	}
	if s.actual != "" {
		msg += "; got " + s.actual
	}
	if s.suggestion != "" {
		msg += "; " + s.suggestion
	}
	return &Error{Kind: s.kind, Message: msg, Pos: s.pos}
}
