package cli

import (
	"sync"

	"github.com/KMDPriyashan/tripzy/internal/client/models"
)

// Screens tracks the visible screen and the back stack. It implements
// services.Navigator and is safe for use from the controller's event
// goroutine.
type Screens struct {
	mu      sync.Mutex
	current models.Route
	history []models.Route
}

func NewScreens(start models.Route) *Screens {
	return &Screens{current: start}
}

func (s *Screens) Replace(route models.Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = route
}

func (s *Screens) Push(route models.Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == route {
		return
	}
	s.history = append(s.history, s.current)
	s.current = route
}

// Back pops the history. It reports false when there is nothing to go back to.
func (s *Screens) Back() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return false
	}
	s.current = s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	return true
}

func (s *Screens) Current() models.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
