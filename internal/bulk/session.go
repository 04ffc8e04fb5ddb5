package bulk

import (
	"fmt"
	"io"
	"sync"

	"github.com/vireo-shop/vireo/internal/catalog"
	"github.com/vireo-shop/vireo/internal/platform/httpx"
)

// State is the import session state.
type State string

const (
	StateIdle         State = "idle"
	StateFileSelected State = "file_selected"
	StateParsed       State = "parsed"
)

// Session tracks one import flow through
// Idle -> FileSelected -> Parsed -> {merge, replace, cancel} -> Idle.
// Applying or cancelling always returns to Idle; a parse failure drops the
// selection so a bad file cannot be applied.
type Session struct {
	mu       sync.Mutex
	state    State
	filename string
	parsed   []catalog.Product
}

// NewSession starts in Idle.
func NewSession() *Session {
	return &Session{state: StateIdle}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Select records the chosen file. Only valid from Idle.
func (s *Session) Select(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return fmt.Errorf("%w: an import is already in progress", httpx.ErrValidation)
	}
	if filename == "" {
		return fmt.Errorf("%w: a filename is required", httpx.ErrValidation)
	}
	s.state = StateFileSelected
	s.filename = filename
	return nil
}

// Parse reads and parses the selected file's contents.
func (s *Session) Parse(r io.Reader) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateFileSelected {
		return 0, fmt.Errorf("%w: no file selected", httpx.ErrValidation)
	}
	products, err := Parse(s.filename, r)
	if err != nil {
		s.reset()
		return 0, err
	}
	s.state = StateParsed
	s.parsed = products
	return len(products), nil
}

// Take hands the parsed products to the caller and returns the session to
// Idle. Only valid from Parsed.
func (s *Session) Take() ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateParsed {
		return nil, fmt.Errorf("%w: nothing parsed to apply", httpx.ErrValidation)
	}
	products := s.parsed
	s.reset()
	return products, nil
}

// Cancel abandons the flow from any state.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) reset() {
	s.state = StateIdle
	s.filename = ""
	s.parsed = nil
}
