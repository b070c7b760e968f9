package gen

import (
	"math/rand"

	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Параметры размещения деревьев
const (
	treeEdgeMargin   = 2     // Отступ от края региона: крона не выходит в чужой регион
	treeBaseProb     = 0.012 // Базовый шанс попытки на колонку
	treeSpacing      = 2     // Минимальный радиус между стволами
	treeDensityScale = 0.02  // Масштаб поля плотности леса

	// Лимит итераций финальной доводки кроны. Правила монотонны (снимаем
	// неопёртую древесину, добавляем опёртую листву), неподвижная точка
	// достигается задолго до лимита — это страховка, а не механизм
	// корректности.
	canopyFixIterations = 8
)

// treeKind — архетип дерева
type treeKind int

const (
	treeOakDome treeKind = iota // Компактный купол
	treeTallDome                // Высокий купол
	treeColumnar                // Колонновидное
	treeShort                   // Низкое кустистое
	treeConical                 // Коническое ярусное
)

// Веса архетипов для взвешенного выбора
var treeWeights = [5]int{35, 20, 10, 20, 15}

// canopyLayer описывает один горизонтальный срез кроны
type canopyLayer struct {
	dy     int // Смещение от верхушки ствола
	radius int
}

// canopyShape возвращает срезы кроны архетипа снизу вверх и высоту ствола
func canopyShape(kind treeKind, rng *rand.Rand) (trunk int, layers []canopyLayer) {
	switch kind {
	case treeOakDome:
		trunk = 4 + rng.Intn(3)
		layers = []canopyLayer{{-2, 2}, {-1, 2}, {0, 1}, {1, 1}}
	case treeTallDome:
		trunk = 6 + rng.Intn(3)
		layers = []canopyLayer{{-3, 2}, {-2, 2}, {-1, 2}, {0, 1}, {1, 1}}
	case treeColumnar:
		trunk = 7 + rng.Intn(3)
		layers = []canopyLayer{{-4, 1}, {-3, 1}, {-2, 1}, {-1, 1}, {0, 1}, {1, 0}}
	case treeShort:
		trunk = 3 + rng.Intn(2)
		layers = []canopyLayer{{-1, 2}, {0, 1}, {1, 1}}
	default: // treeConical
		trunk = 5 + rng.Intn(3)
		layers = []canopyLayer{{-3, 2}, {-2, 1}, {-1, 2}, {0, 1}, {1, 1}, {2, 0}}
	}
	return trunk, layers
}

// plantTrees размещает деревья в регионе: по-колоночный сид-гейт,
// кандидат — травяная колонка выше уровня моря без соседнего ствола.
func (g *Generator) plantTrees(r *world.Region, baseX, baseZ int, heights *[world.RegionWidth][world.RegionDepth]int) {
	var trunks [][2]int // Колонки стволов, уже посаженных в этом регионе

	for z := treeEdgeMargin; z < world.RegionDepth-treeEdgeMargin; z++ {
		for x := treeEdgeMargin; x < world.RegionWidth-treeEdgeMargin; x++ {
			h := heights[x][z]
			if h <= world.SeaLevel {
				continue
			}
			if r.Voxel(x, h, z) != block.Grass {
				continue
			}

			wx, wz := baseX+x, baseZ+z
			rng := g.columnRand(wx, wz)
			// Гейт идёт отдельным розыгрышем до выбора формы, чтобы
			// решение «есть дерево» не зависело от остального потока
			roll := rng.Float64()

			density := (g.forest.Noise2D(float64(wx)*treeDensityScale, float64(wz)*treeDensityScale) + 1) / 2
			if roll >= treeBaseProb*(0.25+1.5*density) {
				continue
			}
			if tooCloseToTrunk(trunks, x, z) {
				continue
			}

			g.buildTree(r, x, z, h, rng)
			trunks = append(trunks, [2]int{x, z})
		}
	}
}

// tooCloseToTrunk проверяет минимальное расстояние между стволами
func tooCloseToTrunk(trunks [][2]int, x, z int) bool {
	for _, t := range trunks {
		dx := absInt(t[0] - x)
		dz := absInt(t[1] - z)
		if dx <= treeSpacing && dz <= treeSpacing {
			return true
		}
	}
	return false
}

// pickTreeKind выполняет взвешенный выбор архетипа
func pickTreeKind(rng *rand.Rand) treeKind {
	total := 0
	for _, w := range treeWeights {
		total += w
	}
	roll := rng.Intn(total)
	for kind, w := range treeWeights {
		if roll < w {
			return treeKind(kind)
		}
		roll -= w
	}
	return treeOakDome
}

// buildTree строит дерево: ствол, послойная крона, финальная доводка
func (g *Generator) buildTree(r *world.Region, x, z, ground int, rng *rand.Rand) {
	kind := pickTreeKind(rng)
	trunk, layers := canopyShape(kind, rng)

	top := ground + trunk
	if top+3 >= world.RegionHeight {
		return
	}

	for y := ground + 1; y <= top; y++ {
		r.SetVoxel(x, y, z, block.Log)
	}

	// Крона слоями снизу вверх. Слой опирается на предыдущий: клетка
	// остаётся только над занятой клеткой нижнего слоя, нижний слой
	// освобождён от проверки — он лежит на стволе.
	var prevMask map[[2]int]bool
	for i, layer := range layers {
		mask := g.placeCanopyLayer(r, x, z, top+layer.dy, layer.radius, rng, prevMask, i == 0)
		prevMask = mask
	}

	g.fixupCanopy(r, x, z, ground, top, maxCanopyRadius(layers))
}

// maxCanopyRadius возвращает максимальный радиус среза кроны
func maxCanopyRadius(layers []canopyLayer) int {
	max := 0
	for _, l := range layers {
		if l.radius > max {
			max = l.radius
		}
	}
	return max
}

// placeCanopyLayer ставит один «скруглённый» срез кроны: квадрат без
// углов с дополнительным случайным прореживанием кромки. Возвращает маску
// занятых клеток для опоры следующего слоя.
func (g *Generator) placeCanopyLayer(r *world.Region, cx, cz, y, radius int, rng *rand.Rand, prevMask map[[2]int]bool, bottom bool) map[[2]int]bool {
	mask := make(map[[2]int]bool)
	if y <= 0 || y >= world.RegionHeight {
		return mask
	}

	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			// Принудительно снятые углы дают скругление
			if absInt(dx) == radius && absInt(dz) == radius && radius > 0 {
				continue
			}
			// Случайное прореживание кромки
			onEdge := absInt(dx) == radius || absInt(dz) == radius
			if onEdge && radius > 0 && rng.Float64() < 0.2 {
				continue
			}
			// Вертикальная опора от нижнего слоя: листва не висит в воздухе
			if !bottom && prevMask != nil && !prevMask[[2]int{dx, dz}] {
				continue
			}

			x, z := cx+dx, cz+dz
			if r.Voxel(x, y, z) == block.Air {
				r.SetVoxel(x, y, z, block.Leaves)
				mask[[2]int{dx, dz}] = true
			} else if r.Voxel(x, y, z) == block.Log {
				mask[[2]int{dx, dz}] = true
			}
		}
	}
	return mask
}

// fixupCanopy доводит крону до неподвижной точки:
// (a) лист над древесиной на верхушке колонки превращает древесину в лист;
// (b) древесина на верхушке без листвы в окрестности снимается (огрызок);
// (c) опёртая верхушка древесины получает лист сверху и недостающие
// боковые листья.
func (g *Generator) fixupCanopy(r *world.Region, cx, cz, ground, top, radius int) {
	x0, x1 := cx-radius-1, cx+radius+1
	z0, z1 := cz-radius-1, cz+radius+1
	y1 := minInt(top+3, world.RegionHeight-1)

	for iter := 0; iter < canopyFixIterations; iter++ {
		changed := false

		for z := z0; z <= z1; z++ {
			for x := x0; x <= x1; x++ {
				ty := columnTopIn(r, x, z, ground+1, y1)
				if ty < 0 {
					continue
				}

				switch r.Voxel(x, ty, z) {
				case block.Leaves:
					if r.Voxel(x, ty-1, z) == block.Log && ty-1 > ground+1 {
						r.SetVoxel(x, ty-1, z, block.Leaves)
						changed = true
					}
				case block.Log:
					if !hasLeafAround(r, x, ty, z) {
						if ty > ground+1 || x != cx || z != cz {
							r.SetVoxel(x, ty, z, block.Air)
							changed = true
						}
					} else {
						if ty+1 <= y1 && r.Voxel(x, ty+1, z) == block.Air {
							r.SetVoxel(x, ty+1, z, block.Leaves)
							changed = true
						}
						for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
							nx, nz := x+d[0], z+d[1]
							if r.Voxel(nx, ty, nz) == block.Air {
								r.SetVoxel(nx, ty, nz, block.Leaves)
								changed = true
							}
						}
					}
				}
			}
		}

		if !changed {
			return
		}
	}
}

// columnTopIn возвращает верхний не-воздушный воксель колонки в диапазоне
func columnTopIn(r *world.Region, x, z, yLo, yHi int) int {
	for y := yHi; y >= yLo; y-- {
		if r.Voxel(x, y, z) != block.Air {
			return y
		}
	}
	return -1
}

// hasLeafAround ищет листву в 6-окрестности и по диагоналям уровня
func hasLeafAround(r *world.Region, x, y, z int) bool {
	offsets := [][3]int{
		{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
		{1, 0, 1}, {1, 0, -1}, {-1, 0, 1}, {-1, 0, -1},
	}
	for _, o := range offsets {
		if r.Voxel(x+o[0], y+o[1], z+o[2]) == block.Leaves {
			return true
		}
	}
	return false
}
