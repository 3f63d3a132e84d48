package texpp

import "unicode/utf8"

// inputStack is the Expansion Stack: a LIFO of text chunks that the engine
// consumes one rune at a time from the front of the top chunk, and onto
// which expanded text is pushed so it is rescanned as if it had appeared
// literally at that position in the source.
//
// A reversed buffer popped from the tail would be an efficient
// realization of this when the whole document lives in one string, but
// pushing arbitrary expansions onto that representation means repeatedly
// reversing and re-concatenating strings. inputStack instead keeps a
// chunk list: each push is a new chunk prepended to the list, an O(1)
// operation regardless of the pushed text's length, and each pop walks
// the rune at the front of the top chunk, discarding chunks once
// exhausted.
type inputStack struct {
	chunks []string
	pos    int // byte offset into chunks[len(chunks)-1] of the next unread rune
}

// newInputStack returns a stack that will yield source's runes in order.
func newInputStack(source string) *inputStack {
	if source == "" {
		return &inputStack{}
	}
	return &inputStack{chunks: []string{source}}
}

// empty reports whether the stack has no more runes to yield.
func (s *inputStack) empty() bool {
	s.trim()
	return len(s.chunks) == 0
}

// trim drops exhausted chunks from the top of the stack.
func (s *inputStack) trim() {
	for len(s.chunks) > 0 && s.pos >= len(s.chunks[len(s.chunks)-1]) {
		s.chunks = s.chunks[:len(s.chunks)-1]
		s.pos = 0
	}
}

// next pops and returns the next rune, or ok=false if the stack is empty.
func (s *inputStack) next() (r rune, ok bool) {
	s.trim()
	if len(s.chunks) == 0 {
		return 0, false
	}
	top := s.chunks[len(s.chunks)-1]
	r, size := utf8.DecodeRuneInString(top[s.pos:])
	s.pos += size
	return r, true
}

// push prepends text so it is the very next text consumed, ahead of
// anything already on the stack. Pushing an empty string is a no-op.
func (s *inputStack) push(text string) {
	if text == "" {
		return
	}
	s.trim()
	if len(s.chunks) > 0 {
		// Keep only the unread part of the current top chunk, since pos
		// will index the newly pushed chunk from here on.
		s.chunks[len(s.chunks)-1] = s.chunks[len(s.chunks)-1][s.pos:]
	}
	s.pos = 0
	s.chunks = append(s.chunks, text)
}
