package block

// Descriptor описывает свойства типа вокселя. Вся логика «тип -> поведение»
// сведена к данным, чтобы горячий путь мешера не содержал больших switch-блоков.
type Descriptor struct {
	Name        string
	Class       RenderClass
	Solid       bool    // Блокирует движение и даёт опору
	Transparent bool    // Пропускает свет/видимость
	Liquid      bool    // Жидкость (особые правила граней)
	TileEntity  bool    // Есть по-тайловое поведение (рост, течение)
	Decoration  bool    // Декорация поверхности
	Hardness    float64 // <=0 — неразрушаемый
	BestTool    Tool
	AtlasIndex  int     // Базовый индекс тайла атласа
	faceAtlas   *[6]int // Индексы по граням для мультитекстурных типов
}

// registry таблица дескрипторов, индексированная VoxelID.
// Заполняется один раз при старте процесса и далее только читается,
// поэтому безопасна для всех потоков без синхронизации.
var registry [MaxVoxelID]Descriptor

// Таблицы граней мультитекстурных типов: порядок граней соответствует
// FaceXPos..FaceZNeg
var (
	grassFaces = [6]int{1, 1, 0, 2, 1, 1} // бока, верх=трава, низ=земля
	logFaces   = [6]int{7, 7, 8, 8, 7, 7} // бока=кора, торцы
)

func init() {
	registry[Air] = Descriptor{Name: "air", Class: RenderNone, Transparent: true}
	registry[Bedrock] = Descriptor{Name: "bedrock", Class: RenderOpaque, Solid: true, Hardness: -1, AtlasIndex: 4}
	registry[Stone] = Descriptor{Name: "stone", Class: RenderOpaque, Solid: true, Hardness: 10, BestTool: ToolPickaxe, AtlasIndex: 3}
	registry[Dirt] = Descriptor{Name: "dirt", Class: RenderOpaque, Solid: true, Hardness: 3, BestTool: ToolShovel, AtlasIndex: 2}
	registry[Grass] = Descriptor{Name: "grass", Class: RenderOpaque, Solid: true, TileEntity: true, Hardness: 3.5, BestTool: ToolShovel, AtlasIndex: 1, faceAtlas: &grassFaces}
	registry[Sand] = Descriptor{Name: "sand", Class: RenderOpaque, Solid: true, Hardness: 3, BestTool: ToolShovel, AtlasIndex: 5}
	registry[Water] = Descriptor{Name: "water", Class: RenderTransparent, Transparent: true, Liquid: true, TileEntity: true, Hardness: -1, AtlasIndex: 6}
	registry[Log] = Descriptor{Name: "log", Class: RenderOpaque, Solid: true, Hardness: 6, BestTool: ToolAxe, AtlasIndex: 7, faceAtlas: &logFaces}
	registry[Leaves] = Descriptor{Name: "leaves", Class: RenderTransparent, Solid: true, Transparent: true, Hardness: 1, AtlasIndex: 9}
	registry[CoalOre] = Descriptor{Name: "coal_ore", Class: RenderOpaque, Solid: true, Hardness: 12, BestTool: ToolPickaxe, AtlasIndex: 10}
	registry[IronOre] = Descriptor{Name: "iron_ore", Class: RenderOpaque, Solid: true, Hardness: 14, BestTool: ToolPickaxe, AtlasIndex: 11}
	registry[Planks] = Descriptor{Name: "planks", Class: RenderOpaque, Solid: true, Hardness: 5, BestTool: ToolAxe, AtlasIndex: 12}
	registry[Cobblestone] = Descriptor{Name: "cobblestone", Class: RenderOpaque, Solid: true, Hardness: 11, BestTool: ToolPickaxe, AtlasIndex: 13}
	registry[Glass] = Descriptor{Name: "glass", Class: RenderTransparent, Solid: true, Transparent: true, Hardness: 1, AtlasIndex: 14}

	registry[TallGrass] = Descriptor{Name: "tall_grass", Class: RenderBillboard, Transparent: true, Decoration: true, Hardness: 0.5, AtlasIndex: 15}
	registry[Dandelion] = Descriptor{Name: "dandelion", Class: RenderBillboard, Transparent: true, Decoration: true, Hardness: 0.5, AtlasIndex: 16}
	registry[Rose] = Descriptor{Name: "rose", Class: RenderBillboard, Transparent: true, Decoration: true, Hardness: 0.5, AtlasIndex: 17}
	registry[BlueOrchid] = Descriptor{Name: "blue_orchid", Class: RenderBillboard, Transparent: true, Decoration: true, Hardness: 0.5, AtlasIndex: 18}
	registry[Mushroom] = Descriptor{Name: "mushroom", Class: RenderBillboard, Transparent: true, Decoration: true, Hardness: 0.5, AtlasIndex: 19}
	registry[Seagrass] = Descriptor{Name: "seagrass", Class: RenderBillboard, Transparent: true, Decoration: true, Hardness: 0.5, AtlasIndex: 20}
	registry[Kelp] = Descriptor{Name: "kelp", Class: RenderBillboard, Transparent: true, Decoration: true, Hardness: 0.5, AtlasIndex: 21}
}

// Get возвращает дескриптор типа вокселя. Неизвестный ID трактуется как воздух.
func Get(id VoxelID) Descriptor {
	if id >= MaxVoxelID {
		return registry[Air]
	}
	return registry[id]
}

// IsValid проверяет, является ли ID допустимым идентификатором вокселя
func IsValid(id VoxelID) bool {
	return id < MaxVoxelID
}

// IsSolid сообщает, даёт ли воксель опору
func IsSolid(id VoxelID) bool {
	return Get(id).Solid
}

// IsLiquid сообщает, является ли воксель жидкостью
func IsLiquid(id VoxelID) bool {
	return Get(id).Liquid
}

// IsOpaqueCube сообщает, является ли воксель непрозрачным кубом
func IsOpaqueCube(id VoxelID) bool {
	return Get(id).Class == RenderOpaque
}

// IsBillboard сообщает, рисуется ли воксель перекрещенными квадами
func IsBillboard(id VoxelID) bool {
	return Get(id).Class == RenderBillboard
}

// IsBreakable сообщает, можно ли разрушить воксель
func IsBreakable(id VoxelID) bool {
	return Get(id).Hardness > 0
}

// AtlasIndex возвращает индекс тайла атласа для пары (тип, грань).
// Разрешение тотально: для однотекстурных типов любая грань даёт базовый тайл.
func AtlasIndex(id VoxelID, face Face) int {
	d := Get(id)
	if d.faceAtlas != nil && face < FaceCount {
		return d.faceAtlas[face]
	}
	return d.AtlasIndex
}
