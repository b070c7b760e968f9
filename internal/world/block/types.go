package block

// VoxelID представляет идентификатор типа вокселя.
// Хранится в регионе как один байт ради плотности памяти.
type VoxelID uint8

// Константы ID вокселей (закрытое перечисление)
const (
	Air VoxelID = iota // 0
	Bedrock
	Stone
	Dirt
	Grass
	Sand
	Water
	Log
	Leaves
	CoalOre
	IronOre
	Planks
	Cobblestone
	Glass

	// Декорации-биллборды
	TallGrass
	Dandelion
	Rose
	BlueOrchid
	Mushroom
	Seagrass
	Kelp

	// MaxVoxelID верхняя граница перечисления (не тип)
	MaxVoxelID
)

// RenderClass определяет способ отрисовки вокселя
type RenderClass uint8

const (
	RenderNone        RenderClass = iota // Не отрисовывается (воздух)
	RenderOpaque                         // Непрозрачный куб
	RenderTransparent                    // Куб с альфа-тестом/блендингом
	RenderBillboard                      // Два перекрещенных квада
)

// Face определяет грань куба
type Face uint8

const (
	FaceXPos Face = iota // +X
	FaceXNeg             // -X
	FaceYPos             // +Y (верх)
	FaceYNeg             // -Y (низ)
	FaceZPos             // +Z
	FaceZNeg             // -Z
	FaceCount
)

// Tool определяет категорию лучшего инструмента
type Tool uint8

const (
	ToolNone Tool = iota
	ToolPickaxe
	ToolShovel
	ToolAxe
)

// String возвращает имя инструмента
func (t Tool) String() string {
	switch t {
	case ToolPickaxe:
		return "pickaxe"
	case ToolShovel:
		return "shovel"
	case ToolAxe:
		return "axe"
	default:
		return "none"
	}
}
