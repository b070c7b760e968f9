package stream

import (
	"sync"

	"github.com/annel0/voxel-world/internal/vec"
)

// wantedSet — потокобезопасное множество «ещё нужных» регионов.
// Потребитель перестраивает его при смене желаемого множества, воркеры
// сверяются с ним для кооперативной отмены: до генерации и после неё.
type wantedSet struct {
	mu   sync.RWMutex
	keys map[vec.Vec2]struct{}
}

func newWantedSet() *wantedSet {
	return &wantedSet{keys: make(map[vec.Vec2]struct{})}
}

// Contains проверяет, нужен ли ещё регион
func (s *wantedSet) Contains(coords vec.Vec2) bool {
	s.mu.RLock()
	_, ok := s.keys[coords]
	s.mu.RUnlock()
	return ok
}

// Replace атомарно заменяет всё множество
func (s *wantedSet) Replace(keys map[vec.Vec2]struct{}) {
	s.mu.Lock()
	s.keys = keys
	s.mu.Unlock()
}

// Add добавляет регион
func (s *wantedSet) Add(coords vec.Vec2) {
	s.mu.Lock()
	s.keys[coords] = struct{}{}
	s.mu.Unlock()
}

// Remove исключает регион
func (s *wantedSet) Remove(coords vec.Vec2) {
	s.mu.Lock()
	delete(s.keys, coords)
	s.mu.Unlock()
}
