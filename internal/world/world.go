package world

import (
	"sync"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// SolverCaps ограничивает работу графовых решателей за одно событие.
// Лимиты — страховка от патологических каскадов, а не механизм корректности.
type SolverCaps struct {
	CollapseMaxVisited   int // Лимит обойдённых вокселей при проверке опоры
	CollapseMaxCollapsed int // Лимит обрушенных вокселей за событие
	FellMaxWood          int // Лимит древесины за одно валение дерева
	FellRadius           int // Радиус поиска ствола от точки слома
	FellLeafRadius       int // Манхэттенский радиус поиска листвы-кандидатов
	FellSupportRadius    int // Манхэттенский радиус выживания листвы
}

// DefaultSolverCaps возвращает лимиты по умолчанию
func DefaultSolverCaps() SolverCaps {
	return SolverCaps{
		CollapseMaxVisited:   4096,
		CollapseMaxCollapsed: 512,
		FellMaxWood:          256,
		FellRadius:           12,
		FellLeafRadius:       3,
		FellSupportRadius:    4,
	}
}

// World — разделяемый индекс регионов. Воркеры публикуют сюда
// сгенерированные регионы и читают соседей при мешинге; единственный
// писатель выгрузки — поток-потребитель.
type World struct {
	seed    int64
	regions map[vec.Vec2]*Region
	mu      sync.RWMutex
	caps    SolverCaps
	log     *logging.Logger
}

// NewWorld создаёт мир с указанным сидом и лимитами решателей
func NewWorld(seed int64, caps SolverCaps) *World {
	return &World{
		seed:    seed,
		regions: make(map[vec.Vec2]*Region),
		caps:    caps,
		log:     logging.GetWorldLogger(),
	}
}

// Seed возвращает сид мира
func (w *World) Seed() int64 {
	return w.seed
}

// Caps возвращает действующие лимиты решателей
func (w *World) Caps() SolverCaps {
	return w.caps
}

// Region возвращает регион по ключу
func (w *World) Region(coords vec.Vec2) (*Region, bool) {
	w.mu.RLock()
	r, ok := w.regions[coords]
	w.mu.RUnlock()
	return r, ok
}

// HasRegion проверяет наличие региона в индексе
func (w *World) HasRegion(coords vec.Vec2) bool {
	_, ok := w.Region(coords)
	return ok
}

// Publish добавляет сгенерированный регион в индекс. С этого момента регион
// виден межрегиональным чтениям других воркеров.
func (w *World) Publish(r *Region) {
	w.mu.Lock()
	w.regions[r.Coords] = r
	w.mu.Unlock()
}

// Evict удаляет регион из индекса. Вызывается только потоком-потребителем.
func (w *World) Evict(coords vec.Vec2) {
	w.mu.Lock()
	delete(w.regions, coords)
	w.mu.Unlock()
}

// RegionCount возвращает число загруженных регионов
func (w *World) RegionCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.regions)
}

// LoadedKeys возвращает ключи всех загруженных регионов
func (w *World) LoadedKeys() []vec.Vec2 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	keys := make([]vec.Vec2, 0, len(w.regions))
	for k := range w.regions {
		keys = append(keys, k)
	}
	return keys
}

// Voxel возвращает тип вокселя по мировым координатам.
// Отсутствующий регион и выход за вертикальные границы дают воздух.
func (w *World) Voxel(pos vec.Vec3) block.VoxelID {
	r, ok := w.Region(pos.ToRegion())
	if !ok {
		return block.Air
	}
	local := pos.LocalInRegion()
	return r.Voxel(local.X, local.Y, local.Z)
}

// VoxelAt реализует интерфейс просмотра вокселей для мешера.
// ok=false означает, что регион недоступен и грань надо считать видимой.
func (w *World) VoxelAt(x, y, z int) (block.VoxelID, bool) {
	pos := vec.Vec3{X: x, Y: y, Z: z}
	r, present := w.Region(pos.ToRegion())
	if !present {
		return block.Air, false
	}
	local := pos.LocalInRegion()
	return r.Voxel(local.X, local.Y, local.Z), true
}

// SetVoxel устанавливает воксель по мировым координатам.
// Возвращает true, если значение изменилось.
func (w *World) SetVoxel(pos vec.Vec3, id block.VoxelID) bool {
	r, ok := w.Region(pos.ToRegion())
	if !ok {
		return false
	}
	local := pos.LocalInRegion()
	return r.SetVoxel(local.X, local.Y, local.Z, id)
}

// IsPlaced сообщает, поставлен ли воксель игроком
func (w *World) IsPlaced(pos vec.Vec3) bool {
	r, ok := w.Region(pos.ToRegion())
	if !ok {
		return false
	}
	local := pos.LocalInRegion()
	return r.IsPlaced(local.X, local.Y, local.Z)
}

// clearVoxel очищает воксель и снимает отметку игрока
func (w *World) clearVoxel(pos vec.Vec3) bool {
	r, ok := w.Region(pos.ToRegion())
	if !ok {
		return false
	}
	local := pos.LocalInRegion()
	changed := r.SetVoxel(local.X, local.Y, local.Z, block.Air)
	r.ClearPlaced(local.X, local.Y, local.Z)
	return changed
}

// EditResult описывает итог правки мира потоком-потребителем.
// Broken позволяет встраивающей игре посчитать время копания по
// твёрдости и лучшему инструменту сломанного типа.
type EditResult struct {
	Applied  bool                  // Правка применена
	Broken   block.VoxelID         // Тип сломанного вокселя (воздух для установки)
	Removed  int                   // Сколько вокселей очищено (слом + каскады)
	Affected map[vec.Vec2]struct{} // Регионы, требующие перестройки меша
}

// markAffected отмечает регион вокселя и граничных соседей для ремеша
func markAffected(affected map[vec.Vec2]struct{}, pos vec.Vec3) {
	rc := pos.ToRegion()
	affected[rc] = struct{}{}

	local := pos.LocalInRegion()
	if local.X == 0 {
		affected[vec.Vec2{X: rc.X - 1, Z: rc.Z}] = struct{}{}
	}
	if local.X == RegionWidth-1 {
		affected[vec.Vec2{X: rc.X + 1, Z: rc.Z}] = struct{}{}
	}
	if local.Z == 0 {
		affected[vec.Vec2{X: rc.X, Z: rc.Z - 1}] = struct{}{}
	}
	if local.Z == RegionDepth-1 {
		affected[vec.Vec2{X: rc.X, Z: rc.Z + 1}] = struct{}{}
	}
}

// BreakVoxel разрушает воксель по мировым координатам и синхронно запускает
// решатели физических последствий. Вызывается только потоком-потребителем.
func (w *World) BreakVoxel(pos vec.Vec3) EditResult {
	result := EditResult{Affected: make(map[vec.Vec2]struct{})}

	id := w.Voxel(pos)
	if !block.IsBreakable(id) {
		return result
	}

	if !w.clearVoxel(pos) {
		return result
	}
	result.Applied = true
	result.Broken = id
	result.Removed = 1
	markAffected(result.Affected, pos)

	// Декорация, стоявшая на сломанном вокселе, не может висеть в воздухе
	above := vec.Vec3{X: pos.X, Y: pos.Y + 1, Z: pos.Z}
	if block.IsBillboard(w.Voxel(above)) {
		w.clearVoxel(above)
		result.Removed++
		markAffected(result.Affected, above)
	}

	// Слом древесины валит связанную часть дерева
	if id == block.Log {
		result.Removed += w.fellTree(pos, result.Affected)
	}

	// Любая очистка может оставить постройки игрока без опоры
	result.Removed += w.resolveSupport(pos, result.Affected)

	return result
}

// PlaceVoxel ставит воксель игрока по мировым координатам.
// Ставить можно только в воздух или жидкость. Вызывается потоком-потребителем.
func (w *World) PlaceVoxel(pos vec.Vec3, id block.VoxelID) EditResult {
	result := EditResult{Affected: make(map[vec.Vec2]struct{})}

	if !block.IsValid(id) || id == block.Air {
		return result
	}
	current := w.Voxel(pos)
	if current != block.Air && !block.IsLiquid(current) {
		return result
	}

	r, ok := w.Region(pos.ToRegion())
	if !ok {
		return result
	}
	local := pos.LocalInRegion()
	if !r.SetVoxel(local.X, local.Y, local.Z, id) {
		return result
	}
	r.MarkPlaced(local.X, local.Y, local.Z)

	result.Applied = true
	markAffected(result.Affected, pos)
	return result
}
