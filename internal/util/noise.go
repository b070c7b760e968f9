package util

// Градиентный шум на целочисленной решётке. Без таблицы перестановок:
// сид подмешивается в хеш каждого узла, поэтому функции чистые и безопасны
// для параллельного вызова из воркеров генерации.

// Константы хеширования узлов решётки (большие нечётные множители)
const (
	hashMulX = 0x9E3779B185EBCA87
	hashMulY = 0xC2B2AE3D27D4EB4F
	hashMulZ = 0x165667B19E3779F9
	hashMulS = 0x27D4EB2F165667C5
)

// Восемь направлений градиента для 2D (шаг 45°)
var grad2 = [8][2]float64{
	{1, 0}, {0.7071067811865476, 0.7071067811865476},
	{0, 1}, {-0.7071067811865476, 0.7071067811865476},
	{-1, 0}, {-0.7071067811865476, -0.7071067811865476},
	{0, -1}, {0.7071067811865476, -0.7071067811865476},
}

// Двенадцать рёберных градиентов куба для 3D
var grad3 = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

// latticeHash хеширует узел решётки вместе с сидом
func latticeHash(seed int64, x, y, z int64) uint64 {
	h := uint64(seed)*hashMulS + uint64(x)*hashMulX + uint64(y)*hashMulY + uint64(z)*hashMulZ
	h ^= h >> 29
	h *= 0xBF58476D1CE4E5B9
	h ^= h >> 32
	h *= 0x94D049BB133111EB
	h ^= h >> 31
	return h
}

// fade квинтическая сглаживающая функция 6t^5-15t^4+10t^3
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

// lerp линейная интерполяция
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// floorInt64 возвращает пол от float64 как int64
func floorInt64(x float64) int64 {
	i := int64(x)
	if x < float64(i) {
		i--
	}
	return i
}

// dot2 скалярное произведение градиента узла с вектором смещения
func dot2(seed int64, xi, yi int64, dx, dy float64) float64 {
	g := grad2[latticeHash(seed, xi, yi, 0)&7]
	return g[0]*dx + g[1]*dy
}

// dot3 скалярное произведение 3D-градиента узла с вектором смещения
func dot3(seed int64, xi, yi, zi int64, dx, dy, dz float64) float64 {
	g := grad3[latticeHash(seed, xi, yi, zi)%12]
	return g[0]*dx + g[1]*dy + g[2]*dz
}

// Noise2 возвращает детерминированный 2D шум в ~[-1,1] для данного сида
func Noise2(seed int64, x, y float64) float64 {
	x0 := floorInt64(x)
	y0 := floorInt64(y)
	fx := x - float64(x0)
	fy := y - float64(y0)

	n00 := dot2(seed, x0, y0, fx, fy)
	n10 := dot2(seed, x0+1, y0, fx-1, fy)
	n01 := dot2(seed, x0, y0+1, fx, fy-1)
	n11 := dot2(seed, x0+1, y0+1, fx-1, fy-1)

	u := fade(fx)
	v := fade(fy)

	// Нормируем к ~[-1,1]: амплитуда сырого шума около 0.707
	return lerp(lerp(n00, n10, u), lerp(n01, n11, u), v) * 1.4142135623730951
}

// Noise3 возвращает детерминированный 3D шум в ~[-1,1] для данного сида
func Noise3(seed int64, x, y, z float64) float64 {
	x0 := floorInt64(x)
	y0 := floorInt64(y)
	z0 := floorInt64(z)
	fx := x - float64(x0)
	fy := y - float64(y0)
	fz := z - float64(z0)

	n000 := dot3(seed, x0, y0, z0, fx, fy, fz)
	n100 := dot3(seed, x0+1, y0, z0, fx-1, fy, fz)
	n010 := dot3(seed, x0, y0+1, z0, fx, fy-1, fz)
	n110 := dot3(seed, x0+1, y0+1, z0, fx-1, fy-1, fz)
	n001 := dot3(seed, x0, y0, z0+1, fx, fy, fz-1)
	n101 := dot3(seed, x0+1, y0, z0+1, fx-1, fy, fz-1)
	n011 := dot3(seed, x0, y0+1, z0+1, fx, fy-1, fz-1)
	n111 := dot3(seed, x0+1, y0+1, z0+1, fx-1, fy-1, fz-1)

	u := fade(fx)
	v := fade(fy)
	w := fade(fz)

	x00 := lerp(n000, n100, u)
	x10 := lerp(n010, n110, u)
	x01 := lerp(n001, n101, u)
	x11 := lerp(n011, n111, u)

	// Нормируем к ~[-1,1]: амплитуда сырого шума около sqrt(3)/2
	return lerp(lerp(x00, x10, v), lerp(x01, x11, v), w) * 1.1547005383792515
}
