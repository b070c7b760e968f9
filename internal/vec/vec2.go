package vec

// Vec2 представляет 2D координаты региона (X, Z)
type Vec2 struct {
	X, Z int
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Z: v.Z + other.Z}
}

// DistanceSq возвращает квадрат расстояния до другой точки.
// Используется как приоритет очереди загрузки — корень не нужен.
func (v Vec2) DistanceSq(other Vec2) int {
	dx := v.X - other.X
	dz := v.Z - other.Z
	return dx*dx + dz*dz
}

// Neighbors4 возвращает четыре кардинальных соседа региона
func (v Vec2) Neighbors4() [4]Vec2 {
	return [4]Vec2{
		{X: v.X + 1, Z: v.Z},
		{X: v.X - 1, Z: v.Z},
		{X: v.X, Z: v.Z + 1},
		{X: v.X, Z: v.Z - 1},
	}
}
