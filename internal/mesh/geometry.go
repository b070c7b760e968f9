package mesh

import "github.com/annel0/voxel-world/internal/world/block"

// Атлас текстур: квадратная сетка тайлов. Индекс тайла разворачивается
// в UV-прямоугольник с небольшим отступом внутрь, чтобы при фильтрации
// не подтягивались пиксели соседних тайлов.
const (
	atlasGridSize = 8
	atlasUVInset  = 0.001
)

// billboardInset — отступ перекрещенных квадов от граней вокселя
const billboardInset float32 = 0.15

// faceNormals — нормали граней в порядке FaceXPos..FaceZNeg
var faceNormals = [6][3]float32{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// faceCorners — углы каждой грани против часовой стрелки при взгляде
// снаружи, относительно минимального угла вокселя
var faceCorners = [6][4][3]float32{
	{{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}}, // X+
	{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}, // X-
	{{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}}, // Y+
	{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}, // Y-
	{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}, // Z+
	{{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}}, // Z-
}

// faceOffsets — смещение к соседу через грань
var faceOffsets = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// tileUV разворачивает индекс тайла в UV-границы с отступом от кромок
func tileUV(tile int) (u0, v0, u1, v1 float32) {
	tx := tile % atlasGridSize
	ty := tile / atlasGridSize
	step := float32(1.0) / atlasGridSize
	u0 = float32(tx)*step + atlasUVInset
	v0 = float32(ty)*step + atlasUVInset
	u1 = float32(tx+1)*step - atlasUVInset
	v1 = float32(ty+1)*step - atlasUVInset
	return
}

// positiveFace сообщает, смотрит ли грань в положительную сторону оси.
// Для пары одинаковых прозрачных соседей рисуется только она.
func positiveFace(f block.Face) bool {
	return f == block.FaceXPos || f == block.FaceYPos || f == block.FaceZPos
}
