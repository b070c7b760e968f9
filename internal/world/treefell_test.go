package world

import (
	"testing"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// buildTrunk ставит естественный ствол от yLo до yHi включительно
func buildTrunk(w *World, x, z, yLo, yHi int) {
	for y := yLo; y <= yHi; y++ {
		naturalAt(w, x, y, z, block.Log)
	}
}

func TestFellRemovesTrunkAbove(t *testing.T) {
	w := testWorld(t, DefaultSolverCaps())
	buildTrunk(w, 5, 5, 10, 15)

	result := w.BreakVoxel(vec.Vec3{X: 5, Y: 10, Z: 5})

	if !result.Applied {
		t.Fatal("Слом основания ствола должен был примениться")
	}
	for y := 11; y <= 15; y++ {
		if w.Voxel(vec.Vec3{X: 5, Y: y, Z: 5}) != block.Air {
			t.Errorf("Древесина над точкой слома y=%d должна быть снята", y)
		}
	}
}

func TestFellNeverPropagatesDownward(t *testing.T) {
	w := testWorld(t, DefaultSolverCaps())
	buildTrunk(w, 5, 5, 8, 15)

	// Слом середины ствола: верх валится, низ остаётся
	w.BreakVoxel(vec.Vec3{X: 5, Y: 12, Z: 5})

	for y := 13; y <= 15; y++ {
		if w.Voxel(vec.Vec3{X: 5, Y: y, Z: 5}) != block.Air {
			t.Errorf("Древесина выше слома y=%d должна быть снята", y)
		}
	}
	for y := 8; y <= 11; y++ {
		if w.Voxel(vec.Vec3{X: 5, Y: y, Z: 5}) != block.Log {
			t.Errorf("Древесина ниже слома y=%d не должна затрагиваться", y)
		}
	}
}

func TestFellPreservesNeighborCanopy(t *testing.T) {
	w := testWorld(t, DefaultSolverCaps())

	// Два дерева со стволами в 3 вокселях друг от друга и пересекающимися
	// кронами на уровне y=15
	buildTrunk(w, 5, 5, 10, 15) // Дерево A
	buildTrunk(w, 8, 5, 10, 15) // Дерево B

	nearB := []vec.Vec3{
		{X: 6, Y: 15, Z: 5}, // 2 шага до ствола B
		{X: 7, Y: 15, Z: 5}, // 1 шаг до ствола B
	}
	farFromB := vec.Vec3{X: 3, Y: 15, Z: 5} // 5 шагов до ствола B

	for _, p := range nearB {
		naturalAt(w, p.X, p.Y, p.Z, block.Leaves)
	}
	naturalAt(w, farFromB.X, farFromB.Y, farFromB.Z, block.Leaves)

	// Валим дерево A
	w.BreakVoxel(vec.Vec3{X: 5, Y: 10, Z: 5})

	// Ствол B не тронут: BFS идёт только вверх и в стороны от слома,
	// а стволы не связаны по древесине
	for y := 10; y <= 15; y++ {
		if w.Voxel(vec.Vec3{X: 8, Y: y, Z: 5}) != block.Log {
			t.Errorf("Ствол соседнего дерева y=%d должен уцелеть", y)
		}
	}

	// Листва в радиусе выживания от живой древесины B остаётся
	for _, p := range nearB {
		if w.Voxel(p) != block.Leaves {
			t.Errorf("Лист %v в радиусе выживания ствола B должен уцелеть", p)
		}
	}
	// Листва без живой древесины поблизости снимается
	if w.Voxel(farFromB) != block.Air {
		t.Errorf("Лист %v без живой опоры должен быть снят", farFromB)
	}
}

func TestFellRemovesDecorationsAtopWood(t *testing.T) {
	w := testWorld(t, DefaultSolverCaps())
	buildTrunk(w, 5, 5, 10, 14)
	naturalAt(w, 5, 15, 5, block.Mushroom) // Гриб на срезе ствола

	w.BreakVoxel(vec.Vec3{X: 5, Y: 10, Z: 5})

	if w.Voxel(vec.Vec3{X: 5, Y: 15, Z: 5}) != block.Air {
		t.Error("Декорация на снятой древесине должна быть снята вместе с ней")
	}
}

func TestFellRespectsWoodCap(t *testing.T) {
	caps := DefaultSolverCaps()
	caps.FellMaxWood = 3

	w := testWorld(t, caps)
	buildTrunk(w, 5, 5, 10, 15)

	result := w.BreakVoxel(vec.Vec3{X: 5, Y: 10, Z: 5})

	// Слом + не более 3 снятых вокселей древесины
	if result.Removed > 4 {
		t.Errorf("Лимит древесины должен ограничить событие, снято %d", result.Removed)
	}
	// Хотя бы часть ствола осталась из-за усечения
	remaining := 0
	for y := 11; y <= 15; y++ {
		if w.Voxel(vec.Vec3{X: 5, Y: y, Z: 5}) == block.Log {
			remaining++
		}
	}
	if remaining == 0 {
		t.Error("Усечённое валение должно оставить часть ствола")
	}
}
