package stream

import (
	"container/heap"

	"github.com/annel0/voxel-world/internal/vec"
)

// RequestKind — вид фоновой работы над регионом
type RequestKind uint8

const (
	KindGenerate RequestKind = iota // Генерация и первичный меш
	KindRemesh                      // Только перестройка меша
)

// loadRequest — заявка на фоновую работу. Приоритет — квадрат дистанции
// до региона наблюдателя на момент постановки в очередь.
type loadRequest struct {
	coords   vec.Vec2
	kind     RequestKind
	priority int
	index    int // Позиция в куче, поддерживается heap.Interface
}

// requestQueue — очередь заявок с приоритетом по дистанции. Повторная
// постановка того же региона заменяет заявку, а не дублирует её.
// Очередью владеет только поток-потребитель, синхронизация не нужна.
type requestQueue struct {
	items []*loadRequest
	byKey map[vec.Vec2]*loadRequest
}

func newRequestQueue() *requestQueue {
	return &requestQueue{byKey: make(map[vec.Vec2]*loadRequest)}
}

// heap.Interface

func (q *requestQueue) Len() int { return len(q.items) }

func (q *requestQueue) Less(i, j int) bool { return q.items[i].priority < q.items[j].priority }

func (q *requestQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

func (q *requestQueue) Push(x interface{}) {
	req := x.(*loadRequest)
	req.index = len(q.items)
	q.items = append(q.items, req)
}

func (q *requestQueue) Pop() interface{} {
	old := q.items
	n := len(old)
	req := old[n-1]
	old[n-1] = nil
	req.index = -1
	q.items = old[:n-1]
	return req
}

// Enqueue ставит заявку. Существующая заявка того же региона заменяется:
// приоритет обновляется, генерация никогда не понижается до ремеша.
func (q *requestQueue) Enqueue(coords vec.Vec2, kind RequestKind, priority int) {
	if existing, ok := q.byKey[coords]; ok {
		existing.priority = priority
		if kind == KindGenerate {
			existing.kind = KindGenerate
		}
		heap.Fix(q, existing.index)
		return
	}
	req := &loadRequest{coords: coords, kind: kind, priority: priority}
	q.byKey[coords] = req
	heap.Push(q, req)
}

// Dequeue извлекает заявку с минимальной дистанцией
func (q *requestQueue) Dequeue() (*loadRequest, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	req := heap.Pop(q).(*loadRequest)
	delete(q.byKey, req.coords)
	return req, true
}

// Remove снимает заявку региона без обработки
func (q *requestQueue) Remove(coords vec.Vec2) bool {
	req, ok := q.byKey[coords]
	if !ok {
		return false
	}
	heap.Remove(q, req.index)
	delete(q.byKey, coords)
	return true
}

// Rescore пересчитывает приоритет заявки после сдвига наблюдателя
func (q *requestQueue) Rescore(coords vec.Vec2, priority int) {
	req, ok := q.byKey[coords]
	if !ok {
		return
	}
	req.priority = priority
	heap.Fix(q, req.index)
}

// Contains проверяет наличие заявки региона
func (q *requestQueue) Contains(coords vec.Vec2) bool {
	_, ok := q.byKey[coords]
	return ok
}

// Keys возвращает ключи всех заявок
func (q *requestQueue) Keys() []vec.Vec2 {
	keys := make([]vec.Vec2, 0, len(q.byKey))
	for k := range q.byKey {
		keys = append(keys, k)
	}
	return keys
}

// Clear сбрасывает очередь
func (q *requestQueue) Clear() {
	q.items = nil
	q.byKey = make(map[vec.Vec2]*loadRequest)
}
