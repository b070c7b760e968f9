package vec

// Vec3 представляет трехмерный вектор с целочисленными координатами вокселя
type Vec3 struct {
	X int
	Y int
	Z int
}

// Vec3Float представляет трехмерный вектор с плавающими координатами
// (позиция наблюдателя)
type Vec3Float struct {
	X float64
	Y float64
	Z float64
}

// ToRegion преобразует мировые координаты вокселя в координаты региона
func (v Vec3) ToRegion() Vec2 {
	return Vec2{X: v.X >> 4, Z: v.Z >> 4} // Деление на 16
}

// LocalInRegion возвращает локальные координаты внутри региона 16x128x16
func (v Vec3) LocalInRegion() Vec3 {
	return Vec3{X: v.X & 0xF, Y: v.Y, Z: v.Z & 0xF}
}

// ToRegion преобразует позицию наблюдателя в координаты региона
func (v Vec3Float) ToRegion() Vec2 {
	x := int(v.X)
	z := int(v.Z)
	if v.X < 0 && float64(x) != v.X {
		x--
	}
	if v.Z < 0 && float64(z) != v.Z {
		z--
	}
	return Vec2{X: x >> 4, Z: z >> 4}
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// ManhattanTo возвращает манхэттенское расстояние до другого вектора
func (v Vec3) ManhattanTo(other Vec3) int {
	return absInt(v.X-other.X) + absInt(v.Y-other.Y) + absInt(v.Z-other.Z)
}

// ChebyshevXZTo возвращает максимум |dx|,|dz| — горизонтальный радиус
func (v Vec3) ChebyshevXZTo(other Vec3) int {
	dx := absInt(v.X - other.X)
	dz := absInt(v.Z - other.Z)
	if dx > dz {
		return dx
	}
	return dz
}

// Neighbors6 возвращает шесть соседей вокселя (6-связность)
func (v Vec3) Neighbors6() [6]Vec3 {
	return [6]Vec3{
		{X: v.X + 1, Y: v.Y, Z: v.Z},
		{X: v.X - 1, Y: v.Y, Z: v.Z},
		{X: v.X, Y: v.Y + 1, Z: v.Z},
		{X: v.X, Y: v.Y - 1, Z: v.Z},
		{X: v.X, Y: v.Y, Z: v.Z + 1},
		{X: v.X, Y: v.Y, Z: v.Z - 1},
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
