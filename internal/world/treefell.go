package world

import (
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Направления роста ствола: вверх и в стороны, но никогда вниз —
// иначе слом одного дерева валил бы весь лесной ярус по корням.
var fellDirs = [5]vec.Vec3{
	{X: 0, Y: 1, Z: 0},
	{X: 1, Y: 0, Z: 0},
	{X: -1, Y: 0, Z: 0},
	{X: 0, Y: 0, Z: 1},
	{X: 0, Y: 0, Z: -1},
}

// fellTree валит связанную часть дерева после слома вокселя древесины.
// Фаза 1: BFS по древесине вверх и в стороны от точки слома.
// Фаза 2: снятие листвы, потерявшей опору, с раздельными радиусами поиска
// и выживания — кроны соседних нетронутых деревьев сохраняются.
// Фаза 3: декорации, стоявшие на снятых вокселях.
// Все удаления применяются одной партией. Возвращает число снятых вокселей.
func (w *World) fellTree(broken vec.Vec3, affected map[vec.Vec2]struct{}) int {
	caps := w.caps
	truncated := false

	// Фаза 1: сбор древесины на удаление
	doomedWood := make(map[vec.Vec3]struct{})
	queue := make([]vec.Vec3, 0, 8)
	for _, d := range fellDirs {
		queue = append(queue, broken.Add(d))
	}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		if _, ok := doomedWood[v]; ok {
			continue
		}
		if w.Voxel(v) != block.Log {
			continue
		}
		if v.ChebyshevXZTo(broken) > caps.FellRadius || v.Y-broken.Y > caps.FellRadius {
			continue
		}
		if len(doomedWood) >= caps.FellMaxWood {
			truncated = true
			break
		}

		doomedWood[v] = struct{}{}
		for _, d := range fellDirs {
			queue = append(queue, v.Add(d))
		}
	}

	if len(doomedWood) == 0 {
		if truncated {
			fellTruncations.Inc()
		}
		return 0
	}

	// Фаза 2: кандидаты-листья вокруг снимаемой древесины
	doomedLeaves := make(map[vec.Vec3]struct{})
	for wv := range doomedWood {
		forEachManhattan(wv, caps.FellLeafRadius, func(lv vec.Vec3) {
			if _, ok := doomedLeaves[lv]; ok {
				return
			}
			if w.Voxel(lv) != block.Leaves {
				return
			}
			if !w.leafSupported(lv, doomedWood) {
				doomedLeaves[lv] = struct{}{}
			}
		})
	}

	// Фаза 3: декорации поверх снимаемых вокселей
	doomedDecor := make(map[vec.Vec3]struct{})
	collectDecorAbove := func(v vec.Vec3) {
		above := vec.Vec3{X: v.X, Y: v.Y + 1, Z: v.Z}
		if block.IsBillboard(w.Voxel(above)) {
			doomedDecor[above] = struct{}{}
		}
	}
	for v := range doomedWood {
		collectDecorAbove(v)
	}
	for v := range doomedLeaves {
		collectDecorAbove(v)
	}

	// Применяем все удаления одной партией; меш перестраивается один раз
	// на регион, не на воксель
	removed := 0
	apply := func(v vec.Vec3) {
		if w.clearVoxel(v) {
			removed++
			markAffected(affected, v)
		}
	}
	for v := range doomedWood {
		apply(v)
	}
	for v := range doomedLeaves {
		apply(v)
	}
	for v := range doomedDecor {
		apply(v)
	}

	if truncated {
		fellTruncations.Inc()
		w.log.Warn("Валение дерева усечено лимитом древесины (%d) в %v", caps.FellMaxWood, broken)
	}
	if removed > 0 {
		felledVoxels.Add(float64(removed))
		w.log.Debug("Валение в %v сняло %d вокселей", broken, removed)
	}

	return removed
}

// leafSupported проверяет, остаётся ли у листа живая древесина в радиусе
// выживания. Радиус выживания шире радиуса поиска кандидатов, поэтому
// кроны над чужими стволами остаются на месте.
func (w *World) leafSupported(leaf vec.Vec3, doomed map[vec.Vec3]struct{}) bool {
	supported := false
	forEachManhattan(leaf, w.caps.FellSupportRadius, func(v vec.Vec3) {
		if supported {
			return
		}
		if w.Voxel(v) != block.Log {
			return
		}
		if _, dying := doomed[v]; dying {
			return
		}
		supported = true
	})
	return supported
}

// forEachManhattan обходит все воксели в манхэттенском шаре радиуса r
func forEachManhattan(center vec.Vec3, r int, fn func(vec.Vec3)) {
	for dx := -r; dx <= r; dx++ {
		for dy := -(r - absInt(dx)); dy <= r-absInt(dx); dy++ {
			rem := r - absInt(dx) - absInt(dy)
			for dz := -rem; dz <= rem; dz++ {
				fn(vec.Vec3{X: center.X + dx, Y: center.Y + dy, Z: center.Z + dz})
			}
		}
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
