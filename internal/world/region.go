package world

import (
	"sync"
	"time"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Размеры региона — единицы хранения и стриминга мира
const (
	RegionWidth  = 16  // X
	RegionHeight = 128 // Y
	RegionDepth  = 16  // Z
	SeaLevel     = 28  // Уровень моря в мировых координатах Y
)

// LocalCoord представляет локальную координату вокселя внутри региона.
// Сравнимая структура-ключ вместо битовой упаковки со сдвигами.
type LocalCoord struct {
	X uint8
	Y uint8
	Z uint8
}

// Region представляет участок мира размером 16x128x16 вокселей.
// Тип вокселя хранится одним байтом ради плотности памяти.
type Region struct {
	Coords vec.Vec2 // Координаты региона в мире (regionX, regionZ)

	voxels    [RegionWidth * RegionHeight * RegionDepth]block.VoxelID
	placed    map[LocalCoord]struct{} // Воксели, поставленные игроком
	dirty     bool                    // Требуется перестройка меша
	lastBuild time.Time               // Время последней сборки меша

	mu sync.RWMutex // Мьютекс для безопасного доступа
}

// NewRegion создаёт пустой регион с указанными координатами.
// Новый регион всегда помечен грязным: меш ещё не строился.
func NewRegion(coords vec.Vec2) *Region {
	return &Region{
		Coords: coords,
		placed: make(map[LocalCoord]struct{}),
		dirty:  true,
	}
}

// voxelIndex возвращает индекс вокселя в линейном массиве
func voxelIndex(x, y, z int) int {
	return (y*RegionDepth+z)*RegionWidth + x
}

// inBounds проверяет попадание локальных координат в границы региона
func inBounds(x, y, z int) bool {
	return x >= 0 && x < RegionWidth && y >= 0 && y < RegionHeight && z >= 0 && z < RegionDepth
}

// Voxel возвращает тип вокселя по локальным координатам.
// Выход за границы — не ошибка: возвращается воздух.
func (r *Region) Voxel(x, y, z int) block.VoxelID {
	if !inBounds(x, y, z) {
		return block.Air
	}
	r.mu.RLock()
	id := r.voxels[voxelIndex(x, y, z)]
	r.mu.RUnlock()
	return id
}

// SetVoxel устанавливает тип вокселя по локальным координатам.
// Установка того же значения — идемпотентный no-op, грязный флаг не трогается.
// Любое реальное изменение помечает регион грязным. Возвращает true при изменении.
func (r *Region) SetVoxel(x, y, z int, id block.VoxelID) bool {
	if !inBounds(x, y, z) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := voxelIndex(x, y, z)
	if r.voxels[idx] == id {
		return false
	}
	r.voxels[idx] = id
	r.dirty = true
	return true
}

// MarkPlaced помечает воксель как поставленный игроком
func (r *Region) MarkPlaced(x, y, z int) {
	if !inBounds(x, y, z) {
		return
	}
	r.mu.Lock()
	r.placed[LocalCoord{X: uint8(x), Y: uint8(y), Z: uint8(z)}] = struct{}{}
	r.mu.Unlock()
}

// ClearPlaced снимает отметку игрока с вокселя
func (r *Region) ClearPlaced(x, y, z int) {
	if !inBounds(x, y, z) {
		return
	}
	r.mu.Lock()
	delete(r.placed, LocalCoord{X: uint8(x), Y: uint8(y), Z: uint8(z)})
	r.mu.Unlock()
}

// IsPlaced сообщает, поставлен ли воксель игроком
func (r *Region) IsPlaced(x, y, z int) bool {
	if !inBounds(x, y, z) {
		return false
	}
	r.mu.RLock()
	_, ok := r.placed[LocalCoord{X: uint8(x), Y: uint8(y), Z: uint8(z)}]
	r.mu.RUnlock()
	return ok
}

// PlacedCount возвращает число вокселей, поставленных игроком
func (r *Region) PlacedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.placed)
}

// Dirty сообщает, требуется ли перестройка меша региона
func (r *Region) Dirty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dirty
}

// SetDirty выставляет грязный флаг вручную (например, при выгрузке соседа)
func (r *Region) SetDirty(dirty bool) {
	r.mu.Lock()
	r.dirty = dirty
	r.mu.Unlock()
}

// MarkBuilt фиксирует успешную сборку меша и снимает грязный флаг.
// complete=false означает, что при сборке были недоступны соседи:
// флаг остаётся, чтобы позднее пересобрать корректный меш.
func (r *Region) MarkBuilt(at time.Time, complete bool) {
	r.mu.Lock()
	r.lastBuild = at
	if complete {
		r.dirty = false
	}
	r.mu.Unlock()
}

// LastBuild возвращает время последней сборки меша
func (r *Region) LastBuild() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastBuild
}

// ColumnTop возвращает Y самого верхнего не-воздушного вокселя колонки
// или -1, если колонка пуста
func (r *Region) ColumnTop(x, z int) int {
	if x < 0 || x >= RegionWidth || z < 0 || z >= RegionDepth {
		return -1
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for y := RegionHeight - 1; y >= 0; y-- {
		if r.voxels[voxelIndex(x, y, z)] != block.Air {
			return y
		}
	}
	return -1
}

// Snapshot копирует сырые байты вокселей (для тестов детерминизма)
func (r *Region) Snapshot() []block.VoxelID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]block.VoxelID, len(r.voxels))
	copy(out, r.voxels[:])
	return out
}
