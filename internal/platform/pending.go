package platform

import "sync"

// stagedDevices remembers the devices holding staged, uncommitted settings.
type stagedDevices struct {
	mu    sync.Mutex
	names []string
}

func (s *stagedDevices) add(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.names {
		if n == name {
			return
		}
	}
	s.names = append(s.names, name)
}

// take returns the staged devices in staging order and forgets them.
func (s *stagedDevices) take() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := s.names
	s.names = nil
	return names
}
