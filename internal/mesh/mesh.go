// Package mesh превращает регион в сырые массивы геометрии для трёх
// проходов отрисовки: непрозрачные кубы, прозрачные/вода, билборды.
// Построение чистое и не трогает GPU, поэтому безопасно выполняется
// в фоновых воркерах.
package mesh

import (
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
)

// VoxelLookup — доступ к вокселям за пределами региона по мировым
// координатам. ok=false означает «регион ещё не опубликован»: грань в
// эту сторону считается видимой (безопасное завышение).
type VoxelLookup interface {
	VoxelAt(x, y, z int) (block.VoxelID, bool)
}

// BufferSet — массивы одного прохода отрисовки. Позиции и нормали по
// 3 компоненты на вершину, UV по 2, индексы тройками треугольников.
type BufferSet struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint32
}

// Empty сообщает, что проход не содержит геометрии
func (b *BufferSet) Empty() bool { return len(b.Indices) == 0 }

// quadCount возвращает число квадов в наборе
func (b *BufferSet) quadCount() int { return len(b.Indices) / 6 }

// MeshData — результат построения: три независимых прохода плюс флаг
// доступности всех четырёх кардинальных соседей на момент сборки.
// Если соседи были недоступны, регион должен остаться «грязным» и
// пересобраться после их появления.
type MeshData struct {
	Opaque            BufferSet
	Transparent       BufferSet
	Billboard         BufferSet
	NeighborsComplete bool
}

// Empty сообщает, что все три прохода пусты
func (m *MeshData) Empty() bool {
	return m.Opaque.Empty() && m.Transparent.Empty() && m.Billboard.Empty()
}

// builder держит контекст одной сборки
type builder struct {
	r      *world.Region
	lookup VoxelLookup
	baseX  int
	baseZ  int
}

// Build собирает геометрию региона в два прохода: сначала подсчёт
// видимых граней, затем заполнение массивов точного размера. Так под
// непрерывным стримингом не появляется инкрементального мусора.
func Build(r *world.Region, lookup VoxelLookup) *MeshData {
	b := &builder{
		r:      r,
		lookup: lookup,
		baseX:  r.Coords.X * world.RegionWidth,
		baseZ:  r.Coords.Z * world.RegionDepth,
	}

	opaqueFaces, transFaces, billboards := b.countPass()

	md := &MeshData{NeighborsComplete: b.neighborsComplete()}
	allocBuffers(&md.Opaque, opaqueFaces)
	allocBuffers(&md.Transparent, transFaces)
	allocBuffers(&md.Billboard, billboards*2)

	b.fillPass(md)
	return md
}

// allocBuffers выделяет массивы под точное число квадов
func allocBuffers(bs *BufferSet, quads int) {
	if quads == 0 {
		return
	}
	bs.Positions = make([]float32, 0, quads*12)
	bs.Normals = make([]float32, 0, quads*12)
	bs.UVs = make([]float32, 0, quads*8)
	bs.Indices = make([]uint32, 0, quads*6)
}

// countPass считает видимые грани по тем же правилам, что и заполнение
func (b *builder) countPass() (opaque, transparent, billboards int) {
	for y := 0; y < world.RegionHeight; y++ {
		for z := 0; z < world.RegionDepth; z++ {
			for x := 0; x < world.RegionWidth; x++ {
				id := b.r.Voxel(x, y, z)
				switch block.Get(id).Class {
				case block.RenderOpaque:
					opaque += b.visibleFaceCount(id, x, y, z)
				case block.RenderTransparent:
					transparent += b.visibleFaceCount(id, x, y, z)
				case block.RenderBillboard:
					billboards++
				}
			}
		}
	}
	return
}

// fillPass заполняет предвыделенные массивы
func (b *builder) fillPass(md *MeshData) {
	for y := 0; y < world.RegionHeight; y++ {
		for z := 0; z < world.RegionDepth; z++ {
			for x := 0; x < world.RegionWidth; x++ {
				id := b.r.Voxel(x, y, z)
				switch block.Get(id).Class {
				case block.RenderOpaque:
					b.emitCubeFaces(&md.Opaque, id, x, y, z)
				case block.RenderTransparent:
					b.emitCubeFaces(&md.Transparent, id, x, y, z)
				case block.RenderBillboard:
					b.emitBillboard(&md.Billboard, id, x, y, z)
				}
			}
		}
	}
}

// visibleFaceCount возвращает число видимых граней вокселя
func (b *builder) visibleFaceCount(id block.VoxelID, x, y, z int) int {
	n := 0
	for f := block.Face(0); f < block.FaceCount; f++ {
		if b.faceVisible(id, f, x, y, z) {
			n++
		}
	}
	return n
}

// emitCubeFaces пишет все видимые грани кубического вокселя
func (b *builder) emitCubeFaces(bs *BufferSet, id block.VoxelID, x, y, z int) {
	for f := block.Face(0); f < block.FaceCount; f++ {
		if b.faceVisible(id, f, x, y, z) {
			b.emitQuad(bs, x, y, z, faceCorners[f], faceNormals[f], block.AtlasIndex(id, f))
		}
	}
}

// faceVisible применяет правила видимости по категории отрисовки:
//   - непрозрачный куб: грань видима против отсутствующего соседа,
//     воздуха и любого не-непрозрачного соседа;
//   - жидкость: грань только против воздуха, внутренних граней нет;
//   - прозрачный не-жидкий: отсекается против непрозрачных, для пары
//     одинаковых соседей рисуется только грань положительной оси.
func (b *builder) faceVisible(id block.VoxelID, f block.Face, x, y, z int) bool {
	off := faceOffsets[f]
	n, ok := b.neighbor(x+off[0], y+off[1], z+off[2])

	if block.IsLiquid(id) {
		return !ok || n == block.Air
	}

	if !ok || n == block.Air {
		return true
	}
	if block.IsOpaqueCube(id) {
		return !block.IsOpaqueCube(n)
	}

	// Прозрачный не-жидкий (листва, стекло)
	if n == id {
		return positiveFace(f)
	}
	return !block.IsOpaqueCube(n)
}

// neighbor возвращает соседний воксель. Внутри региона читается из
// локального грида, за границей — через кросс-региональный доступ.
func (b *builder) neighbor(x, y, z int) (block.VoxelID, bool) {
	if y < 0 || y >= world.RegionHeight {
		return block.Air, true
	}
	if x >= 0 && x < world.RegionWidth && z >= 0 && z < world.RegionDepth {
		return b.r.Voxel(x, y, z), true
	}
	if b.lookup == nil {
		return block.Air, false
	}
	return b.lookup.VoxelAt(b.baseX+x, y, b.baseZ+z)
}

// neighborsComplete проверяет доступность четырёх кардинальных соседей
// по одной пробной выборке в каждом
func (b *builder) neighborsComplete() bool {
	if b.lookup == nil {
		return false
	}
	probes := [4][2]int{
		{b.baseX - 1, b.baseZ},
		{b.baseX + world.RegionWidth, b.baseZ},
		{b.baseX, b.baseZ - 1},
		{b.baseX, b.baseZ + world.RegionDepth},
	}
	for _, p := range probes {
		if _, ok := b.lookup.VoxelAt(p[0], 0, p[1]); !ok {
			return false
		}
	}
	return true
}

// emitQuad пишет один квад: 4 вершины и 6 индексов
func (b *builder) emitQuad(bs *BufferSet, x, y, z int, corners [4][3]float32, normal [3]float32, tile int) {
	base := uint32(len(bs.Positions) / 3)
	u0, v0, u1, v1 := tileUV(tile)
	uvs := [4][2]float32{{u0, v1}, {u1, v1}, {u1, v0}, {u0, v0}}

	for i := 0; i < 4; i++ {
		bs.Positions = append(bs.Positions,
			float32(x)+corners[i][0],
			float32(y)+corners[i][1],
			float32(z)+corners[i][2])
		bs.Normals = append(bs.Normals, normal[0], normal[1], normal[2])
		bs.UVs = append(bs.UVs, uvs[i][0], uvs[i][1])
	}
	bs.Indices = append(bs.Indices, base, base+1, base+2, base, base+2, base+3)
}

// emitBillboard пишет два перекрещенных диагональных квада без
// проверки соседей
func (b *builder) emitBillboard(bs *BufferSet, id block.VoxelID, x, y, z int) {
	lo := billboardInset
	hi := 1 - billboardInset
	tile := block.AtlasIndex(id, block.FaceXPos)

	diag := float32(0.7071068)
	b.emitQuad(bs, x, y, z,
		[4][3]float32{{lo, 0, lo}, {hi, 0, hi}, {hi, 1, hi}, {lo, 1, lo}},
		[3]float32{-diag, 0, diag}, tile)
	b.emitQuad(bs, x, y, z,
		[4][3]float32{{lo, 0, hi}, {hi, 0, lo}, {hi, 1, lo}, {lo, 1, hi}},
		[3]float32{diag, 0, diag}, tile)
}
