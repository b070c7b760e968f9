// Package stream управляет загрузкой регионов: решает, какие регионы
// нужны вокруг наблюдателя, раздаёт фоновую генерацию и мешинг пулу
// воркеров и применяет готовые результаты на потоке-потребителе.
package stream

import (
	"sync"
	"time"

	"github.com/annel0/voxel-world/internal/config"
	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/mesh"
	"github.com/annel0/voxel-world/internal/render"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
)

// Generator заполняет пустой регион содержимым. Вызывается воркерами
// параллельно, по одному региону на вызов.
type Generator interface {
	Generate(r *world.Region)
}

// result — готовый результат фоновой работы. Производится один раз,
// потребляется ровно один раз при сливе.
type result struct {
	coords vec.Vec2
	kind   RequestKind
	data   *mesh.MeshData
}

// Manager — оркестратор стриминга. Все публичные методы, кроме
// Shutdown, вызываются только потоком-потребителем.
type Manager struct {
	world *world.World
	gen   Generator
	sink  render.Sink
	log   *logging.Logger

	loadsPerUpdate int
	renderDistance int

	// Состояние потребителя
	queue       *requestQueue
	inflight    map[vec.Vec2]struct{}
	deferred    map[vec.Vec2]struct{} // Ремеши, пришедшие пока регион в работе
	objects     map[vec.Vec2][]render.ObjectID
	viewer      vec.Vec2
	hasViewer   bool
	initialFill bool

	// Разделяется с воркерами
	wanted  *wantedSet
	jobs    chan *loadRequest
	results chan *result

	shutdownChan chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// NewManager создаёт менеджер стриминга и запускает пул воркеров
func NewManager(w *world.World, g Generator, sink render.Sink, cfg config.StreamConfig) *Manager {
	m := &Manager{
		world:          w,
		gen:            g,
		sink:           sink,
		log:            logging.GetStreamLogger(),
		loadsPerUpdate: cfg.LoadsPerUpdate,
		renderDistance: cfg.RenderDistance,
		queue:          newRequestQueue(),
		inflight:       make(map[vec.Vec2]struct{}),
		deferred:       make(map[vec.Vec2]struct{}),
		objects:        make(map[vec.Vec2][]render.ObjectID),
		initialFill:    true,
		wanted:         newWantedSet(),
		jobs:           make(chan *loadRequest, cfg.Workers*4),
		results:        make(chan *result, cfg.ResultBuffer),
		shutdownChan:   make(chan struct{}),
	}

	for i := 0; i < cfg.Workers; i++ {
		m.wg.Add(1)
		go m.workerLoop(i)
	}
	m.log.Info("Менеджер стриминга запущен: воркеров=%d, радиус=%d", cfg.Workers, cfg.RenderDistance)
	return m
}

// SetRenderDistance меняет радиус желаемого множества. Пересчёт
// произойдёт на ближайшем Update.
func (m *Manager) SetRenderDistance(radius int) {
	if radius < 1 {
		radius = 1
	}
	if radius != m.renderDistance {
		m.renderDistance = radius
		m.hasViewer = false // форсирует пересчёт желаемого множества
	}
}

// Update — один цикл потребителя: пересчёт желаемого множества при
// пересечении границы региона, выдача заявок воркерам, слив готовых
// результатов и загрузка геометрии.
func (m *Manager) Update(viewerPos vec.Vec3Float) {
	viewerRegion := viewerPos.ToRegion()

	if !m.hasViewer || viewerRegion != m.viewer {
		m.viewer = viewerRegion
		m.hasViewer = true
		m.recomputeDesired()
	}

	m.dispatch()
	m.drain()

	queueDepth.Set(float64(m.queue.Len()))
	loadedRegions.Set(float64(len(m.objects)))
}

// desiredSet возвращает квадрат регионов вокруг наблюдателя
func (m *Manager) desiredSet() map[vec.Vec2]struct{} {
	r := m.renderDistance
	desired := make(map[vec.Vec2]struct{}, (2*r+1)*(2*r+1))
	for dz := -r; dz <= r; dz++ {
		for dx := -r; dx <= r; dx++ {
			desired[vec.Vec2{X: m.viewer.X + dx, Z: m.viewer.Z + dz}] = struct{}{}
		}
	}
	return desired
}

// recomputeDesired пересобирает состояние под новое желаемое множество:
// выгружает лишнее, снимает ненужные заявки, пересчитывает приоритеты
// оставшихся и ставит недостающие.
func (m *Manager) recomputeDesired() {
	desired := m.desiredSet()
	m.wanted.Replace(copyKeySet(desired))

	// Выгрузка загруженных регионов вне желаемого множества
	for coords := range m.objects {
		if _, ok := desired[coords]; !ok {
			m.unloadRegion(coords)
		}
	}

	// Снятие и переоценка заявок в очереди
	for _, coords := range m.queue.Keys() {
		if _, ok := desired[coords]; ok {
			m.queue.Rescore(coords, coords.DistanceSq(m.viewer))
		} else {
			m.queue.Remove(coords)
		}
	}

	// Постановка недостающих регионов
	for coords := range desired {
		if _, loaded := m.objects[coords]; loaded {
			continue
		}
		if _, busy := m.inflight[coords]; busy {
			continue
		}
		if m.queue.Contains(coords) {
			continue
		}
		m.queue.Enqueue(coords, KindGenerate, coords.DistanceSq(m.viewer))
	}
}

// copyKeySet копирует множество ключей для атомарной замены
func copyKeySet(src map[vec.Vec2]struct{}) map[vec.Vec2]struct{} {
	dst := make(map[vec.Vec2]struct{}, len(src))
	for k := range src {
		dst[k] = struct{}{}
	}
	return dst
}

// dispatch выдаёт воркерам ближайшие заявки. Лимит на цикл ограничивает
// латентность потребителя; первое заполнение не ограничено, чтобы
// стартовый вид не подтягивался по кусочку.
func (m *Manager) dispatch() {
	limit := m.loadsPerUpdate
	if m.initialFill {
		limit = m.queue.Len()
	}

	for i := 0; i < limit; i++ {
		req, ok := m.queue.Dequeue()
		if !ok {
			break
		}
		select {
		case m.jobs <- req:
			m.inflight[req.coords] = struct{}{}
		default:
			// Канал воркеров полон: вернуть заявку и закончить цикл
			m.queue.Enqueue(req.coords, req.kind, req.priority)
			return
		}
	}
	if m.initialFill && m.queue.Len() == 0 {
		m.initialFill = false
	}
}

// drain забирает готовые результаты в порядке завершения (FIFO) и
// применяет их: публикация геометрии, ремеш соседей
func (m *Manager) drain() {
	for {
		select {
		case res := <-m.results:
			m.apply(res)
		default:
			return
		}
	}
}

// apply применяет один готовый результат на потоке-потребителе
func (m *Manager) apply(res *result) {
	delete(m.inflight, res.coords)
	_, redo := m.deferred[res.coords]
	delete(m.deferred, res.coords)

	// Воркер отменил или уронил заявку: геометрии нет, свежая
	// генерация при этом не должна остаться опубликованной без меша.
	// Соседи могли перестроиться против короткой публикации — вернуть
	// им граничные грани.
	if res.data == nil {
		if res.kind == KindGenerate {
			m.world.Evict(res.coords)
			m.remeshNeighbors(res.coords)
		}
		// Регион всё ещё нужен: упавшая заявка ставится заново
		if m.wanted.Contains(res.coords) {
			if res.kind == KindGenerate {
				m.queue.Enqueue(res.coords, KindGenerate, res.coords.DistanceSq(m.viewer))
			} else if _, loaded := m.objects[res.coords]; loaded {
				m.queue.Enqueue(res.coords, KindRemesh, res.coords.DistanceSq(m.viewer))
			}
		}
		return
	}

	if !m.wanted.Contains(res.coords) {
		// Регион разонравился после завершения работы: воркер успел
		// опубликовать его, потребитель откатывает публикацию
		if res.kind == KindGenerate {
			m.world.Evict(res.coords)
			m.remeshNeighbors(res.coords)
		}
		discardedResults.Inc()
		return
	}

	r, ok := m.world.Region(res.coords)
	if !ok {
		return
	}

	wasLoaded := m.uploadMesh(res.coords, res.data)
	r.MarkBuilt(time.Now(), res.data.NeighborsComplete)

	// Свежезагруженный регион меняет видимость граней соседей
	if res.kind == KindGenerate && !wasLoaded {
		m.remeshNeighbors(res.coords)
	}

	// Правка пришла, пока регион был в работе: меш собран по данным до
	// правки, регион перестраивается ещё раз
	if redo {
		m.queue.Enqueue(res.coords, KindRemesh, res.coords.DistanceSq(m.viewer))
	}
}

// uploadMesh заменяет отрисовываемые объекты региона: старые объекты
// снимаются, непустые проходы загружаются заново. Возвращает true,
// если регион уже был загружен до этого вызова.
func (m *Manager) uploadMesh(coords vec.Vec2, data *mesh.MeshData) bool {
	old, wasLoaded := m.objects[coords]
	for _, id := range old {
		m.sink.Remove(id)
	}

	offset := render.Offset{
		X: float32(coords.X * world.RegionWidth),
		Z: float32(coords.Z * world.RegionDepth),
	}

	var ids []render.ObjectID
	passes := []struct {
		pass render.Pass
		buf  *mesh.BufferSet
	}{
		{render.PassOpaque, &data.Opaque},
		{render.PassTransparent, &data.Transparent},
		{render.PassBillboard, &data.Billboard},
	}
	for _, p := range passes {
		if !p.buf.Empty() {
			ids = append(ids, m.sink.Create(p.pass, offset, p.buf))
		}
	}
	m.objects[coords] = ids
	return wasLoaded
}

// unloadRegion снимает объекты региона, выгружает его из индекса и
// просит соседей перестроить граничные грани
func (m *Manager) unloadRegion(coords vec.Vec2) {
	for _, id := range m.objects[coords] {
		m.sink.Remove(id)
	}
	delete(m.objects, coords)
	delete(m.deferred, coords)
	m.world.Evict(coords)
	m.wanted.Remove(coords)
	m.remeshNeighbors(coords)
}

// remeshNeighbors ставит заявки на перестройку меша загруженных
// кардинальных соседей
func (m *Manager) remeshNeighbors(coords vec.Vec2) {
	for _, n := range coords.Neighbors4() {
		if _, loaded := m.objects[n]; loaded {
			m.requestOne(n)
		}
	}
}

// RequestRemesh ставит заявки на перестройку меша после правок мира.
// Незагруженные регионы пропускаются.
func (m *Manager) RequestRemesh(keys map[vec.Vec2]struct{}) {
	for coords := range keys {
		if _, loaded := m.objects[coords]; loaded {
			m.requestOne(coords)
		}
	}
}

// requestOne ставит один ремеш. Регион, занятый в работе, не теряет
// заявку: идущая сборка могла прочитать данные до правки, поэтому
// ремеш откладывается и встаёт в очередь при сливе её результата.
func (m *Manager) requestOne(coords vec.Vec2) {
	if _, busy := m.inflight[coords]; busy {
		m.deferred[coords] = struct{}{}
		return
	}
	m.queue.Enqueue(coords, KindRemesh, coords.DistanceSq(m.viewer))
}

// LoadedCount возвращает число регионов с загруженной геометрией
func (m *Manager) LoadedCount() int {
	return len(m.objects)
}

// QueueLen возвращает текущую глубину очереди заявок
func (m *Manager) QueueLen() int {
	return m.queue.Len()
}

// InFlightCount возвращает число заявок в работе у воркеров
func (m *Manager) InFlightCount() int {
	return len(m.inflight)
}

// Idle сообщает, что вся поставленная работа завершена и слита
func (m *Manager) Idle() bool {
	return m.queue.Len() == 0 && len(m.inflight) == 0 && len(m.results) == 0
}

// Shutdown останавливает пул воркеров и сбрасывает всё состояние
// очередей. Повторные вызовы безопасны.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.shutdownChan)
		m.wg.Wait()

		m.queue.Clear()
		m.inflight = make(map[vec.Vec2]struct{})
		m.deferred = make(map[vec.Vec2]struct{})
		m.wanted.Replace(make(map[vec.Vec2]struct{}))
		m.log.Info("Менеджер стриминга остановлен")
	})
}
