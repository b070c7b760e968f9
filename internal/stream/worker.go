package stream

import (
	"time"

	"github.com/annel0/voxel-world/internal/mesh"
	"github.com/annel0/voxel-world/internal/world"
)

// workerLoop — цикл фонового воркера. Воркер мутирует только свой
// регион и читает уже опубликованные регионы при мешинге границ.
func (m *Manager) workerLoop(id int) {
	defer m.wg.Done()
	m.log.Debug("Воркер %d запущен", id)

	for {
		select {
		case <-m.shutdownChan:
			m.log.Debug("Воркер %d остановлен", id)
			return
		case req := <-m.jobs:
			m.process(req)
		}
	}
}

// process выполняет одну заявку. Результат отправляется всегда, даже
// при отмене или панике (data=nil): потребителю нужно снять заявку с
// учёта, иначе регион навсегда застрянет «в работе». Паника не валит
// пул: регион остаётся неопубликованным и может быть запрошен снова.
func (m *Manager) process(req *loadRequest) {
	res := &result{coords: req.coords, kind: req.kind}
	defer func() {
		if r := recover(); r != nil {
			workerPanics.Inc()
			res.data = nil
			m.log.Error("Паника воркера на регионе (%d,%d): %v", req.coords.X, req.coords.Z, r)
		}
		select {
		case m.results <- res:
		case <-m.shutdownChan:
		}
	}()

	// Кооперативная отмена на входе
	if !m.wanted.Contains(req.coords) {
		discardedResults.Inc()
		return
	}

	var r *world.Region
	switch req.kind {
	case KindGenerate:
		r = world.NewRegion(req.coords)
		start := time.Now()
		m.gen.Generate(r)
		generationDuration.Observe(time.Since(start).Seconds())

		// Повторная проверка после дорогого шага: укорачивает
		// напрасную работу, но не гарантирует её отсутствие
		if !m.wanted.Contains(req.coords) {
			discardedResults.Inc()
			return
		}
		m.world.Publish(r)

	case KindRemesh:
		var ok bool
		r, ok = m.world.Region(req.coords)
		if !ok {
			return
		}
	}

	start := time.Now()
	res.data = mesh.Build(r, m.world)
	meshDuration.Observe(time.Since(start).Seconds())
}
