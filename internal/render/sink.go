// Package render определяет узкий интерфейс загрузки геометрии.
// Ядро не владеет GPU: оно лишь передаёт готовые массивы внешнему
// приёмнику и помнит идентификаторы созданных объектов.
package render

import (
	"github.com/google/uuid"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/mesh"
)

// ObjectID — идентификатор загруженного отрисовываемого объекта
type ObjectID = uuid.UUID

// Pass — именованный проход отрисовки
type Pass uint8

const (
	PassOpaque Pass = iota
	PassTransparent
	PassBillboard
)

// String возвращает имя прохода
func (p Pass) String() string {
	switch p {
	case PassOpaque:
		return "opaque"
	case PassTransparent:
		return "transparent"
	case PassBillboard:
		return "billboard"
	default:
		return "unknown"
	}
}

// Offset — мировое смещение геометрии региона
type Offset struct {
	X, Y, Z float32
}

// Sink принимает готовую геометрию. Все вызовы выполняет один
// поток-потребитель; реализация не обязана быть потокобезопасной.
type Sink interface {
	// Create загружает набор буферов одного прохода и возвращает
	// идентификатор созданного объекта
	Create(pass Pass, offset Offset, buffers *mesh.BufferSet) ObjectID

	// Remove удаляет ранее созданный объект. Неизвестный
	// идентификатор игнорируется.
	Remove(id ObjectID)
}

// LogSink — приёмник для безэкранного запуска: учитывает объекты и
// пишет статистику в журнал вместо загрузки на GPU.
type LogSink struct {
	log     *logging.Logger
	objects map[ObjectID]int // id -> число индексов
}

// NewLogSink создаёт журналирующий приёмник
func NewLogSink() *LogSink {
	return &LogSink{
		log:     logging.GetComponentLogger("render"),
		objects: make(map[ObjectID]int),
	}
}

// Create регистрирует объект и пишет его параметры в журнал
func (s *LogSink) Create(pass Pass, offset Offset, buffers *mesh.BufferSet) ObjectID {
	id := uuid.New()
	s.objects[id] = len(buffers.Indices)
	s.log.Debug("Создан объект %s: проход=%s, смещение=(%.0f,%.0f,%.0f), вершин=%d, индексов=%d",
		id, pass, offset.X, offset.Y, offset.Z, len(buffers.Positions)/3, len(buffers.Indices))
	return id
}

// Remove снимает объект с учёта
func (s *LogSink) Remove(id ObjectID) {
	if _, ok := s.objects[id]; !ok {
		return
	}
	delete(s.objects, id)
	s.log.Debug("Удалён объект %s", id)
}

// ObjectCount возвращает число живых объектов
func (s *LogSink) ObjectCount() int {
	return len(s.objects)
}
