package world

import (
	"testing"
	"time"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

func TestRegionNewIsDirtyAndEmpty(t *testing.T) {
	r := NewRegion(vec.Vec2{X: 3, Z: -2})

	if !r.Dirty() {
		t.Error("Новый регион должен быть грязным: меш ещё не строился")
	}
	if r.Voxel(0, 0, 0) != block.Air {
		t.Error("Новый регион должен быть заполнен воздухом")
	}
	if r.Coords.X != 3 || r.Coords.Z != -2 {
		t.Errorf("Ожидались координаты {3,-2}, получено {%d,%d}", r.Coords.X, r.Coords.Z)
	}
}

func TestRegionSetVoxelMarksDirty(t *testing.T) {
	r := NewRegion(vec.Vec2{})
	r.SetDirty(false)

	// Установка нового значения помечает регион грязным
	if !r.SetVoxel(5, 10, 7, block.Stone) {
		t.Error("Установка нового значения должна вернуть true")
	}
	if !r.Dirty() {
		t.Error("Изменение вокселя должно пометить регион грязным")
	}
}

func TestRegionSetVoxelIdempotent(t *testing.T) {
	r := NewRegion(vec.Vec2{})
	r.SetVoxel(5, 10, 7, block.Stone)
	r.SetDirty(false)

	// Повторная установка того же значения — no-op
	if r.SetVoxel(5, 10, 7, block.Stone) {
		t.Error("Повторная установка того же значения должна вернуть false")
	}
	if r.Dirty() {
		t.Error("Повторная установка того же значения не должна пачкать регион")
	}
}

func TestRegionOutOfBoundsIsAir(t *testing.T) {
	r := NewRegion(vec.Vec2{})
	r.SetVoxel(0, 0, 0, block.Bedrock)

	cases := [][3]int{
		{-1, 0, 0}, {16, 0, 0},
		{0, -1, 0}, {0, 128, 0},
		{0, 0, -1}, {0, 0, 16},
	}
	for _, c := range cases {
		if got := r.Voxel(c[0], c[1], c[2]); got != block.Air {
			t.Errorf("Доступ вне границ (%d,%d,%d) должен давать воздух, получено %d", c[0], c[1], c[2], got)
		}
	}

	// Запись вне границ — no-op, не паника
	if r.SetVoxel(-1, 0, 0, block.Stone) {
		t.Error("Запись вне границ должна вернуть false")
	}
}

func TestRegionPlacedMarkers(t *testing.T) {
	r := NewRegion(vec.Vec2{})

	r.SetVoxel(1, 2, 3, block.Planks)
	r.MarkPlaced(1, 2, 3)

	if !r.IsPlaced(1, 2, 3) {
		t.Error("Воксель должен числиться поставленным игроком")
	}
	if r.IsPlaced(1, 3, 3) {
		t.Error("Соседний воксель не должен числиться поставленным")
	}
	if r.PlacedCount() != 1 {
		t.Errorf("Ожидался 1 поставленный воксель, получено %d", r.PlacedCount())
	}

	r.ClearPlaced(1, 2, 3)
	if r.IsPlaced(1, 2, 3) {
		t.Error("Отметка должна сниматься")
	}
}

func TestRegionMarkBuilt(t *testing.T) {
	r := NewRegion(vec.Vec2{})
	at := time.Now()

	// Полная сборка снимает грязный флаг
	r.MarkBuilt(at, true)
	if r.Dirty() {
		t.Error("Полная сборка меша должна снять грязный флаг")
	}
	if !r.LastBuild().Equal(at) {
		t.Error("Время последней сборки не сохранилось")
	}

	// Сборка без всех соседей оставляет флаг: нужен повторный меш
	r.SetDirty(true)
	r.MarkBuilt(time.Now(), false)
	if !r.Dirty() {
		t.Error("Сборка без доступных соседей должна оставить регион грязным")
	}
}

func TestRegionColumnTop(t *testing.T) {
	r := NewRegion(vec.Vec2{})
	r.SetVoxel(4, 0, 4, block.Bedrock)
	r.SetVoxel(4, 1, 4, block.Stone)
	r.SetVoxel(4, 2, 4, block.Grass)

	if top := r.ColumnTop(4, 4); top != 2 {
		t.Errorf("Ожидалась вершина колонки 2, получено %d", top)
	}
	if top := r.ColumnTop(5, 5); top != -1 {
		t.Errorf("Пустая колонка должна давать -1, получено %d", top)
	}
}
