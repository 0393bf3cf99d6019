package img2grid

import (
	"image"
	"sync"
)

// Session is one immutable snapshot of an editing session: the current
// grid, the active paint tool, the derived views and the last user facing
// error. Every transition returns a new Session.
type Session struct {
	Grid  Grid
	Tool  Symbol
	Views Views
	// Err is the message shown inline after a failed paste. It is cleared
	// by the next successful transition.
	Err string
}

// NewSession starts a session with a blank width x height grid of Light
// cells and Light as the active tool.
func NewSession(width, height int) (Session, error) {
	g, err := NewGrid(width, height, Light)
	if err != nil {
		return Session{}, err
	}
	return Session{Tool: Light}.Load(g), nil
}

// Load replaces the grid and re-derives every view.
func (s Session) Load(g Grid) Session {
	s.Grid = g
	s.Views = Render(g)
	s.Err = ""
	return s
}

// Quantize loads the grid produced by converting img.
func (s Session) Quantize(img image.Image, width, height int) (Session, error) {
	g, err := Quantize(img, width, height)
	if err != nil {
		return s, err
	}
	return s.Load(g), nil
}

// EditRaw applies a raw text edit. The raw view keeps the text exactly as
// typed while the structured views follow the parsed grid.
func (s Session) EditRaw(text string) Session {
	s = s.Load(ParseRaw(text))
	s.Views.Raw = text
	return s
}

// PasteEscaped decodes escaped text into the session. On failure the grid
// and views are left as they were and Err carries the message to display.
func (s Session) PasteEscaped(text string) (Session, error) {
	g, err := FromEscaped(text)
	if err != nil {
		s.Err = InvalidEscapedMessage
		return s, err
	}
	return s.Load(g), nil
}

// WithTool selects the symbol applied by Paint.
func (s Session) WithTool(tool Symbol) Session {
	s.Tool = tool
	return s
}

// Paint sets cell (x, y) to the active tool.
func (s Session) Paint(x, y int) (Session, error) {
	g, err := s.Grid.SetCell(x, y, s.Tool)
	if err != nil {
		return s, err
	}
	return s.Load(g), nil
}

// Cycle advances cell (x, y) to the next symbol.
func (s Session) Cycle(x, y int) (Session, error) {
	g, err := s.Grid.Cycle(x, y)
	if err != nil {
		return s, err
	}
	return s.Load(g), nil
}

// Regenerate discards the grid for a blank width x height one.
func (s Session) Regenerate(width, height int) (Session, error) {
	g, err := NewGrid(width, height, Light)
	if err != nil {
		return s, err
	}
	return s.Load(g), nil
}

// Store holds the latest Session for concurrent readers. Writers replace
// the whole value; a snapshot handed out by Current is never modified.
type Store struct {
	mu      sync.RWMutex
	current Session
}

// NewStore creates a Store holding initial.
func NewStore(initial Session) *Store {
	return &Store{current: initial}
}

// Current returns the latest snapshot.
func (st *Store) Current() Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current
}

// Update applies fn to the latest snapshot and stores its result. The
// returned session is stored even when fn fails, so a failed paste can
// still publish its error message; fn must return the input unchanged
// apart from Err in that case.
func (st *Store) Update(fn func(Session) (Session, error)) (Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	next, err := fn(st.current)
	st.current = next
	return next, err
}
