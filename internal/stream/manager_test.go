package stream

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-world/internal/config"
	"github.com/annel0/voxel-world/internal/gen"
	"github.com/annel0/voxel-world/internal/mesh"
	"github.com/annel0/voxel-world/internal/render"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
)

// recordSink учитывает загрузки геометрии по смещениям регионов.
// Все вызовы приходят с потока-потребителя, синхронизация не нужна.
type recordSink struct {
	nextID  int
	alive   map[render.ObjectID]render.Offset
	creates map[render.Offset]int
}

func newRecordSink() *recordSink {
	return &recordSink{
		alive:   make(map[render.ObjectID]render.Offset),
		creates: make(map[render.Offset]int),
	}
}

func (s *recordSink) Create(pass render.Pass, offset render.Offset, buffers *mesh.BufferSet) render.ObjectID {
	id := render.ObjectID{}
	id[0] = byte(s.nextID)
	id[1] = byte(s.nextID >> 8)
	s.nextID++
	s.alive[id] = offset
	s.creates[offset]++
	return id
}

func (s *recordSink) Remove(id render.ObjectID) {
	delete(s.alive, id)
}

func testStreamConfig() config.StreamConfig {
	return config.StreamConfig{
		Workers:        2,
		RenderDistance: 1,
		LoadsPerUpdate: 4,
		ResultBuffer:   64,
	}
}

// settle гоняет циклы Update, пока вся поставленная работа не сольётся
func settle(t *testing.T, m *Manager, viewer vec.Vec3Float) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		m.Update(viewer)
		if m.Idle() {
			// Ещё один проход: слив мог поставить ремеши соседей
			m.Update(viewer)
			if m.Idle() {
				return
			}
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("Стриминг не пришёл в устойчивое состояние за отведённое время")
}

func newTestManager(t *testing.T) (*Manager, *world.World, *recordSink) {
	t.Helper()
	w := world.NewWorld(777, world.DefaultSolverCaps())
	sink := newRecordSink()
	m := NewManager(w, gen.NewGenerator(777), sink, testStreamConfig())
	t.Cleanup(m.Shutdown)
	return m, w, sink
}

func TestStreamLoadsDesiredSet(t *testing.T) {
	m, w, _ := newTestManager(t)

	viewer := vec.Vec3Float{X: 8, Y: 64, Z: 8} // Регион (0,0)
	settle(t, m, viewer)

	// Радиус 1: квадрат 3x3 вокруг (0,0)
	require.Equal(t, 9, m.LoadedCount(), "Должно загрузиться ровно желаемое множество")
	require.Equal(t, 9, w.RegionCount(), "Опубликованные регионы должны совпасть с загруженными")

	for _, key := range w.LoadedKeys() {
		assert.True(t, key.X >= -1 && key.X <= 1 && key.Z >= -1 && key.Z <= 1,
			"Регион %v вне желаемого множества", key)
	}
}

func TestStreamFollowsViewer(t *testing.T) {
	m, w, _ := newTestManager(t)

	settle(t, m, vec.Vec3Float{X: 8, Y: 64, Z: 8})

	// Наблюдатель ушёл далеко: старые регионы выгружаются, новые грузятся
	settle(t, m, vec.Vec3Float{X: 8 + 16*10, Y: 64, Z: 8})

	require.Equal(t, 9, m.LoadedCount())
	for _, key := range w.LoadedKeys() {
		assert.True(t, key.X >= 9 && key.X <= 11 && key.Z >= -1 && key.Z <= 1,
			"После переезда наблюдателя регион %v не должен оставаться загруженным", key)
	}
}

func TestStreamEventualConsistencyAfterManyMoves(t *testing.T) {
	m, w, _ := newTestManager(t)

	// Серия быстрых перемещений: часть заявок отменяется на лету
	positions := []vec.Vec3Float{
		{X: 8, Y: 64, Z: 8},
		{X: 8 + 64, Y: 64, Z: 8},
		{X: 8 + 64, Y: 64, Z: 8 + 64},
		{X: 8, Y: 64, Z: 8 + 64},
		{X: 8, Y: 64, Z: 8},
	}
	for _, p := range positions {
		m.Update(p)
	}
	final := positions[len(positions)-1]
	settle(t, m, final)

	// Итог: загружено ровно желаемое множество вокруг финальной позиции
	require.Equal(t, 9, m.LoadedCount(), "После дрейфа наблюдателя множество должно сойтись")
	for _, key := range w.LoadedKeys() {
		assert.True(t, key.X >= -1 && key.X <= 1 && key.Z >= -1 && key.Z <= 1,
			"Регион %v застрял вне желаемого множества", key)
	}
}

func TestStreamRemeshReplacesObjects(t *testing.T) {
	m, _, sink := newTestManager(t)

	viewer := vec.Vec3Float{X: 8, Y: 64, Z: 8}
	settle(t, m, viewer)

	center := render.Offset{X: 0, Z: 0}
	before := sink.creates[center]
	require.Greater(t, before, 0, "Центральный регион должен был загрузиться")

	// Правка мира просит перестроить меш региона
	m.RequestRemesh(map[vec.Vec2]struct{}{{X: 0, Z: 0}: {}})
	settle(t, m, viewer)

	assert.Greater(t, sink.creates[center], before, "Ремеш должен загрузить новую геометрию региона")
}

func TestStreamRemeshWhileBusyIsDeferred(t *testing.T) {
	m, w, _ := newTestManager(t)
	key := vec.Vec2{X: 0, Z: 0}
	w.Publish(world.NewRegion(key))
	m.wanted.Add(key)
	m.objects[key] = nil
	m.inflight[key] = struct{}{}

	// Правка пришла, пока регион в работе: заявка не должна пропасть
	m.RequestRemesh(map[vec.Vec2]struct{}{key: {}})
	require.Contains(t, m.deferred, key, "Ремеш занятого региона должен быть отложен")
	require.False(t, m.queue.Contains(key), "Отложенный ремеш не дублируется в очереди")

	// Слив результата занятой заявки ставит отложенный ремеш в очередь
	m.apply(&result{coords: key, kind: KindRemesh, data: &mesh.MeshData{NeighborsComplete: true}})
	assert.True(t, m.queue.Contains(key), "После слива отложенный ремеш должен встать в очередь")
	assert.Empty(t, m.deferred, "Отложенная заявка должна быть потреблена")
}

func TestStreamEditDuringBuildEventuallyRemeshes(t *testing.T) {
	m, _, sink := newTestManager(t)
	viewer := vec.Vec3Float{X: 8, Y: 64, Z: 8}
	settle(t, m, viewer)

	center := render.Offset{X: 0, Z: 0}
	base := sink.creates[center]
	key := map[vec.Vec2]struct{}{{X: 0, Z: 0}: {}}

	// Первый ремеш уходит воркеру, второй приходит во время сборки
	m.RequestRemesh(key)
	m.Update(viewer)
	m.RequestRemesh(key)
	settle(t, m, viewer)

	assert.GreaterOrEqual(t, sink.creates[center], base+2,
		"Каждый из двух ремешей должен перезагрузить геометрию региона")
}

func TestStreamFailedLoadRemeshesNeighbors(t *testing.T) {
	m, w, _ := newTestManager(t)
	viewer := vec.Vec3Float{X: 8, Y: 64, Z: 8}
	settle(t, m, viewer)

	center := vec.Vec2{X: 0, Z: 0}

	// Воркер вернул заявку генерации без геометрии: публикация
	// отзывается, соседи обязаны перестроить граничные грани
	m.inflight[center] = struct{}{}
	m.apply(&result{coords: center, kind: KindGenerate})

	_, ok := w.Region(center)
	require.False(t, ok, "Регион без геометрии должен быть выгружен из индекса")
	for _, n := range center.Neighbors4() {
		assert.True(t, m.queue.Contains(n), "Сосед %v должен встать на ремеш", n)
	}
	assert.True(t, m.queue.Contains(center), "Нужный регион должен перезапроситься")

	settle(t, m, viewer)
	require.Equal(t, 9, m.LoadedCount(), "Мир должен восстановиться после сбоя")
	require.Equal(t, 9, w.RegionCount())
}

// flakyGen роняет генерацию указанных регионов заданное число раз,
// дальше работает как обычный генератор
type flakyGen struct {
	inner *gen.Generator
	mu    sync.Mutex
	bad   map[vec.Vec2]int
}

func (f *flakyGen) Generate(r *world.Region) {
	f.mu.Lock()
	if f.bad[r.Coords] > 0 {
		f.bad[r.Coords]--
		f.mu.Unlock()
		panic("испорченный регион")
	}
	f.mu.Unlock()
	f.inner.Generate(r)
}

func TestStreamWorkerPanicRecovery(t *testing.T) {
	w := world.NewWorld(777, world.DefaultSolverCaps())
	sink := newRecordSink()
	fg := &flakyGen{
		inner: gen.NewGenerator(777),
		bad:   map[vec.Vec2]int{{X: 0, Z: 0}: 1},
	}
	m := NewManager(w, fg, sink, testStreamConfig())
	t.Cleanup(m.Shutdown)

	settle(t, m, vec.Vec3Float{X: 8, Y: 64, Z: 8})

	// Паника не валит пул: остальные регионы загружены, упавший
	// перезапрошен и загружен со второй попытки
	require.Equal(t, 9, m.LoadedCount(), "Пул должен пережить панику воркера")
	_, ok := w.Region(vec.Vec2{X: 0, Z: 0})
	assert.True(t, ok, "Упавший регион должен быть запрошен снова и загружен")
}

func TestStreamUnloadRemovesObjects(t *testing.T) {
	m, _, sink := newTestManager(t)

	settle(t, m, vec.Vec3Float{X: 8, Y: 64, Z: 8})
	settle(t, m, vec.Vec3Float{X: 8 + 16*20, Y: 64, Z: 8})

	// Живые объекты остались только у регионов нового множества
	for _, off := range sink.alive {
		rx := int(off.X) / world.RegionWidth
		assert.True(t, rx >= 19 && rx <= 21,
			"Объект со смещением %v должен был быть удалён при выгрузке", off)
	}
}

func TestStreamShutdownIdempotent(t *testing.T) {
	m, _, _ := newTestManager(t)
	m.Update(vec.Vec3Float{X: 8, Y: 64, Z: 8})

	m.Shutdown()
	m.Shutdown() // Повторный вызов безопасен

	assert.Equal(t, 0, m.QueueLen(), "После остановки очередь должна быть пуста")
}
