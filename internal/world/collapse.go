package world

import (
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Направления опоры: все, кроме «вверх». Подвешенные конструкции
// опорой не считаются.
var supportDirs = [5]vec.Vec3{
	{X: 0, Y: -1, Z: 0},
	{X: 1, Y: 0, Z: 0},
	{X: -1, Y: 0, Z: 0},
	{X: 0, Y: 0, Z: 1},
	{X: 0, Y: 0, Z: -1},
}

// isPlacedSolid проверяет, что воксель — твёрдый и поставлен игроком.
// Только такие воксели участвуют в проверке опоры: естественные навесы
// рельефа исключены по построению.
func (w *World) isPlacedSolid(pos vec.Vec3) bool {
	return block.IsSolid(w.Voxel(pos)) && w.IsPlaced(pos)
}

// resolveSupport ищет максимальные связные группы вокселей игрока
// (6-связность), достижимые от соседей точки слома, и обрушивает группы
// без опоры. Обрушение каскадно: очистка группы может открыть новых
// кандидатов, они обрабатываются через рабочую очередь. Возвращает число
// обрушенных вокселей.
func (w *World) resolveSupport(broken vec.Vec3, affected map[vec.Vec2]struct{}) int {
	caps := w.caps

	visited := 0
	collapsed := 0
	truncated := false

	grounded := make(map[vec.Vec3]struct{}) // Доказанно опёртые в этом проходе
	seen := make(map[vec.Vec3]struct{})     // Уже разнесённые по группам

	queue := make([]vec.Vec3, 0, 6)
	for _, n := range broken.Neighbors6() {
		queue = append(queue, n)
	}

scan:
	for len(queue) > 0 {
		seed := queue[0]
		queue = queue[1:]

		if _, ok := seen[seed]; ok {
			continue
		}
		if !w.isPlacedSolid(seed) {
			continue
		}

		// Собираем связную группу BFS-ом по вокселям игрока
		group := []vec.Vec3{seed}
		seen[seed] = struct{}{}
		isGrounded := false

		for i := 0; i < len(group); i++ {
			v := group[i]

			visited++
			if visited > caps.CollapseMaxVisited {
				// Лимит обхода: прерываем весь проход, не трогая
				// недообследованную группу
				truncated = true
				break scan
			}

			for _, d := range supportDirs {
				n := v.Add(d)
				if _, ok := grounded[n]; ok {
					isGrounded = true
					break
				}
				if block.IsSolid(w.Voxel(n)) && !w.IsPlaced(n) {
					isGrounded = true
					break
				}
			}

			for _, n := range v.Neighbors6() {
				if _, ok := seen[n]; ok {
					continue
				}
				if w.isPlacedSolid(n) {
					seen[n] = struct{}{}
					group = append(group, n)
				}
			}
		}

		if isGrounded {
			for _, v := range group {
				grounded[v] = struct{}{}
			}
			continue
		}

		// Группа без опоры обрушивается целиком (в пределах лимита)
		for _, v := range group {
			if collapsed >= caps.CollapseMaxCollapsed {
				truncated = true
				break scan
			}
			if w.clearVoxel(v) {
				collapsed++
				markAffected(affected, v)
			}
			for _, n := range v.Neighbors6() {
				queue = append(queue, n)
			}
		}
	}

	if truncated {
		collapseTruncations.Inc()
		w.log.Warn("Каскад обрушения усечён лимитом: visited=%d collapsed=%d (точка %v)",
			visited, collapsed, broken)
	}
	if collapsed > 0 {
		collapsedVoxels.Add(float64(collapsed))
		w.log.Debug("Обрушено %d вокселей игрока после слома в %v", collapsed, broken)
	}

	return collapsed
}
