package pagination

// sequence is a double-ended buffer of page slots.
// Slots are inserted when their request is issued, so order follows discovery
// along each front rather than completion time.
type sequence struct {
	// back holds backward slots nearest-first; back[len(back)-1] is the head.
	back []*Page
	// fwd holds the anchor and forward slots in order.
	fwd []*Page
}

func (s *sequence) pushFront(p *Page) {
	s.back = append(s.back, p)
}

func (s *sequence) pushBack(p *Page) {
	s.fwd = append(s.fwd, p)
}

func (s *sequence) len() int {
	return len(s.back) + len(s.fwd)
}

func (s *sequence) first() *Page {
	if n := len(s.back); n > 0 {
		return s.back[n-1]
	}
	if len(s.fwd) > 0 {
		return s.fwd[0]
	}
	return nil
}

func (s *sequence) last() *Page {
	if n := len(s.fwd); n > 0 {
		return s.fwd[n-1]
	}
	if len(s.back) > 0 {
		return s.back[0]
	}
	return nil
}

func (s *sequence) results() Results {
	out := make(Results, 0, s.len())
	for i := len(s.back) - 1; i >= 0; i-- {
		out = append(out, *s.back[i])
	}
	for _, p := range s.fwd {
		out = append(out, *p)
	}
	return out
}
