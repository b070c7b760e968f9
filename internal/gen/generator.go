package gen

import (
	"math/rand"

	"github.com/aquilax/go-perlin"

	"github.com/annel0/voxel-world/internal/util"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Константы рельефа
const (
	heightBase = 32  // Базовая высота рельефа
	heightMin  = 4   // Нижняя граница высоты колонки
	heightMax  = 100 // Верхняя граница высоты колонки

	broadScale = 0.01 // Масштаб широкой октавы
	broadAmp   = 20.0 // Амплитуда широкой октавы
	fineScale  = 0.05 // Масштаб мелкой октавы
	fineAmp    = 6.0  // Амплитуда мелкой октавы

	coalCeiling   = 40   // Потолок угольной руды
	ironCeiling   = 24   // Потолок железной руды
	coalThreshold = 0.72 // Порог шума для угля
	ironThreshold = 0.78 // Порог шума для железа
	oreScale      = 0.13 // Масштаб шума руды

	coalSalt = 0x1CE  // Соль сида для угля
	ironSalt = 0xF3A7 // Соль сида для железа

	// Большие простые множители для по-колоночного сида: результат не
	// зависит от порядка генерации регионов
	columnPrimeX = 341873128721
	columnPrimeZ = 132897987587

	maxSlope = 2 // Максимальный перепад высоты для декораций
)

// Вероятности декораций поверхности
const (
	mushroomProb   = 0.004
	tallGrassProb  = 0.08
	flowerProb     = 0.02
	orchidShare    = 0.15 // Доля орхидей среди цветов (гейт по воде)
	orchidWaterRad = 4    // Радиус поиска воды для орхидеи

	seagrassProb = 0.05
	kelpProb     = 0.03
)

// Generator — детерминированный генератор ландшафта и растительности.
// Чистая функция от (координаты региона, сид): безопасен для параллельного
// вызова из воркеров, каждый из которых заполняет только свой регион.
type Generator struct {
	seed   int64
	forest *perlin.Perlin // Крупномасштабное поле плотности леса
}

// NewGenerator создаёт генератор мира для указанного сида
func NewGenerator(seed int64) *Generator {
	return &Generator{
		seed:   seed,
		forest: perlin.NewPerlin(2.0, 2.0, 3, seed),
	}
}

// Seed возвращает сид генератора
func (g *Generator) Seed() int64 {
	return g.seed
}

// HeightAt возвращает высоту колонки для мировых координат.
// Чистая функция: безопасно вызывать для колонок чужих регионов.
func (g *Generator) HeightAt(wx, wz int) int {
	broad := util.Noise2(g.seed, float64(wx)*broadScale, float64(wz)*broadScale)
	fine := util.Noise2(g.seed, float64(wx)*fineScale, float64(wz)*fineScale)

	h := heightBase + int(broad*broadAmp+fine*fineAmp)
	if h < heightMin {
		h = heightMin
	}
	if h > heightMax {
		h = heightMax
	}
	return h
}

// columnRand создаёт детерминированный поток случайности для колонки.
// Сид смешивается с мировыми координатами через два больших простых числа.
func (g *Generator) columnRand(wx, wz int) *rand.Rand {
	colSeed := g.seed ^ (int64(wx) * columnPrimeX) ^ (int64(wz) * columnPrimeZ)
	return rand.New(rand.NewSource(colSeed))
}

// Generate заполняет пустой регион: рельеф, руды, декорации, подводная
// растительность и деревья. Двойной вызов с одним сидом даёт побайтно
// идентичный результат.
func (g *Generator) Generate(r *world.Region) {
	var heights [world.RegionWidth][world.RegionDepth]int

	baseX := r.Coords.X * world.RegionWidth
	baseZ := r.Coords.Z * world.RegionDepth

	// Шаг 1-2: высоты и послойное заполнение колонок
	for z := 0; z < world.RegionDepth; z++ {
		for x := 0; x < world.RegionWidth; x++ {
			h := g.HeightAt(baseX+x, baseZ+z)
			heights[x][z] = h
			g.fillColumn(r, x, z, h)
		}
	}

	// Шаг 3: руды в камне
	g.scatterOre(r, baseX, baseZ)

	// Шаги 4-5: декорации поверхности и подводная растительность
	for z := 0; z < world.RegionDepth; z++ {
		for x := 0; x < world.RegionWidth; x++ {
			g.decorateColumn(r, x, z, baseX+x, baseZ+z, &heights)
		}
	}

	// Шаг 6: деревья — после рельефа, до мешинга
	g.plantTrees(r, baseX, baseZ, &heights)
}

// fillColumn заполняет одну колонку снизу вверх
func (g *Generator) fillColumn(r *world.Region, x, z, h int) {
	// Неразрушаемое дно мира
	r.SetVoxel(x, 0, z, block.Bedrock)

	for y := 1; y <= h && y < world.RegionHeight; y++ {
		switch {
		case y < h-4: // камень ниже (высота-4)
			r.SetVoxel(x, y, z, block.Stone)
		case y < h:
			r.SetVoxel(x, y, z, block.Dirt)
		default:
			if h > world.SeaLevel {
				r.SetVoxel(x, y, z, block.Grass)
			} else {
				r.SetVoxel(x, y, z, block.Sand)
			}
		}
	}

	// Вода от высоты+1 до уровня моря
	for y := h + 1; y <= world.SeaLevel; y++ {
		r.SetVoxel(x, y, z, block.Water)
	}
}

// scatterOre заменяет камень рудой по порогу 3D-шума
func (g *Generator) scatterOre(r *world.Region, baseX, baseZ int) {
	for z := 0; z < world.RegionDepth; z++ {
		for x := 0; x < world.RegionWidth; x++ {
			wx, wz := baseX+x, baseZ+z
			for y := 1; y < coalCeiling; y++ {
				if r.Voxel(x, y, z) != block.Stone {
					continue
				}
				fy := float64(y) * oreScale
				if y < ironCeiling &&
					util.Noise3(g.seed+ironSalt, float64(wx)*oreScale, fy, float64(wz)*oreScale) > ironThreshold {
					r.SetVoxel(x, y, z, block.IronOre)
					continue
				}
				if util.Noise3(g.seed+coalSalt, float64(wx)*oreScale, fy, float64(wz)*oreScale) > coalThreshold {
					r.SetVoxel(x, y, z, block.CoalOre)
				}
			}
		}
	}
}

// nearWater проверяет наличие воды в указанном радиусе колонок.
// Высота — чистая функция мировых координат, поэтому проверка корректна
// и для колонок за границей региона.
func (g *Generator) nearWater(wx, wz, radius int) bool {
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx == 0 && dz == 0 {
				continue
			}
			if g.HeightAt(wx+dx, wz+dz) <= world.SeaLevel {
				return true
			}
		}
	}
	return false
}

// decorateColumn ставит декорации поверхности и подводную растительность
func (g *Generator) decorateColumn(r *world.Region, x, z, wx, wz int, heights *[world.RegionWidth][world.RegionDepth]int) {
	h := heights[x][z]
	if h+1 >= world.RegionHeight {
		return
	}

	rng := g.columnRand(wx, wz)

	if h > world.SeaLevel {
		// Декорация пропускается у кромки воды и на крутом склоне:
		// иначе она висит в воздухе или врезается в рельеф
		if g.nearWater(wx, wz, 1) || g.steepSlope(wx, wz, h) {
			return
		}
		if r.Voxel(x, h, z) != block.Grass {
			return
		}
		if r.Voxel(x, h+1, z) != block.Air {
			return
		}

		switch {
		case rng.Float64() < mushroomProb:
			r.SetVoxel(x, h+1, z, block.Mushroom)
		case rng.Float64() < tallGrassProb:
			r.SetVoxel(x, h+1, z, block.TallGrass)
		case rng.Float64() < flowerProb:
			r.SetVoxel(x, h+1, z, g.pickFlower(rng, wx, wz))
		}
		return
	}

	// Подводная растительность на затопленном песке
	if r.Voxel(x, h, z) != block.Sand || r.Voxel(x, h+1, z) != block.Water {
		return
	}

	switch {
	case rng.Float64() < seagrassProb:
		r.SetVoxel(x, h+1, z, block.Seagrass)
	case rng.Float64() < kelpProb:
		// Ярусная высота ламинарии: выше в глубокой воде, но всегда
		// под поверхностью
		depth := world.SeaLevel - h
		if depth < 2 {
			return
		}
		stalk := 1 + rng.Intn(minInt(3, depth-1))
		for i := 1; i <= stalk; i++ {
			r.SetVoxel(x, h+i, z, block.Kelp)
		}
	}
}

// pickFlower выбирает вариант цветка. Редкая орхидея требует воды
// поблизости; при провале гейта перебрасываем на свободный вариант.
func (g *Generator) pickFlower(rng *rand.Rand, wx, wz int) block.VoxelID {
	if rng.Float64() < orchidShare && g.nearWater(wx, wz, orchidWaterRad) {
		return block.BlueOrchid
	}
	if rng.Float64() < 0.5 {
		return block.Dandelion
	}
	return block.Rose
}

// steepSlope проверяет крутизну склона вокруг колонки
func (g *Generator) steepSlope(wx, wz, h int) bool {
	for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		nh := g.HeightAt(wx+d[0], wz+d[1])
		if absInt(nh-h) > maxSlope {
			return true
		}
	}
	return false
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
