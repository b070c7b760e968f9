package stream

import (
	"testing"

	"github.com/annel0/voxel-world/internal/vec"
)

func TestQueueOrderedByDistance(t *testing.T) {
	q := newRequestQueue()
	q.Enqueue(vec.Vec2{X: 5, Z: 0}, KindGenerate, 25)
	q.Enqueue(vec.Vec2{X: 1, Z: 0}, KindGenerate, 1)
	q.Enqueue(vec.Vec2{X: 3, Z: 0}, KindGenerate, 9)

	want := []int{1, 9, 25}
	for i, w := range want {
		req, ok := q.Dequeue()
		if !ok {
			t.Fatalf("Очередь опустела на шаге %d", i)
		}
		if req.priority != w {
			t.Errorf("Шаг %d: ожидался приоритет %d, получен %d", i, w, req.priority)
		}
	}
	if _, ok := q.Dequeue(); ok {
		t.Error("Пустая очередь не должна выдавать заявки")
	}
}

func TestQueueReplacesNotDuplicates(t *testing.T) {
	q := newRequestQueue()
	key := vec.Vec2{X: 2, Z: 2}

	q.Enqueue(key, KindRemesh, 100)
	q.Enqueue(key, KindGenerate, 4)

	if q.Len() != 1 {
		t.Fatalf("Повторная постановка должна заменить заявку, в очереди %d", q.Len())
	}
	req, _ := q.Dequeue()
	if req.priority != 4 {
		t.Errorf("Приоритет должен обновиться до 4, получен %d", req.priority)
	}
	if req.kind != KindGenerate {
		t.Error("Генерация не должна понижаться до ремеша")
	}
}

func TestQueueGenerateNotDowngraded(t *testing.T) {
	q := newRequestQueue()
	key := vec.Vec2{X: 1, Z: 1}

	q.Enqueue(key, KindGenerate, 10)
	q.Enqueue(key, KindRemesh, 2)

	req, _ := q.Dequeue()
	if req.kind != KindGenerate {
		t.Error("Заявка на генерацию должна пережить повторную постановку ремеша")
	}
}

func TestQueueRemove(t *testing.T) {
	q := newRequestQueue()
	a := vec.Vec2{X: 1, Z: 0}
	b := vec.Vec2{X: 2, Z: 0}
	q.Enqueue(a, KindGenerate, 1)
	q.Enqueue(b, KindGenerate, 4)

	if !q.Remove(a) {
		t.Error("Удаление существующей заявки должно вернуть true")
	}
	if q.Remove(a) {
		t.Error("Повторное удаление должно вернуть false")
	}
	req, _ := q.Dequeue()
	if req.coords != b {
		t.Errorf("В очереди должна остаться только заявка %v, получена %v", b, req.coords)
	}
}

func TestQueueRescore(t *testing.T) {
	q := newRequestQueue()
	a := vec.Vec2{X: 1, Z: 0}
	b := vec.Vec2{X: 2, Z: 0}
	q.Enqueue(a, KindGenerate, 1)
	q.Enqueue(b, KindGenerate, 4)

	// После сдвига наблюдателя b стал ближе
	q.Rescore(b, 0)

	req, _ := q.Dequeue()
	if req.coords != b {
		t.Errorf("После переоценки первой должна выйти %v, получена %v", b, req.coords)
	}
}
