package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/voxel-world/internal/config"
	"github.com/annel0/voxel-world/internal/gen"
	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/observability"
	"github.com/annel0/voxel-world/internal/render"
	"github.com/annel0/voxel-world/internal/stream"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
)

// editKind — вид правки мира, пришедшей через REST
type editKind uint8

const (
	editBreak editKind = iota
	editPlace
)

// editCommand доставляет правку на поток-потребитель. Решатели
// физических последствий должны выполняться только там.
type editCommand struct {
	kind  editKind
	pos   vec.Vec3
	id    block.VoxelID
	reply chan world.EditResult
}

func main() {
	configPath := flag.String("config", "", "Путь к YAML конфигурации")
	flag.Parse()

	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("❌ Ошибка чтения конфигурации: %v", err)
		log.Fatalf("❌ Ошибка чтения конфигурации: %v", err)
	}

	logging.Info("🌍 Запуск воксельного движка: сид=%d, радиус=%d, воркеров=%d",
		cfg.World.Seed, cfg.Stream.RenderDistance, cfg.Stream.Workers)

	caps := world.SolverCaps{
		CollapseMaxVisited:   cfg.Solver.CollapseMaxVisited,
		CollapseMaxCollapsed: cfg.Solver.CollapseMaxCollapsed,
		FellMaxWood:          cfg.Solver.FellMaxWood,
		FellRadius:           cfg.Solver.FellRadius,
		FellLeafRadius:       cfg.Solver.FellLeafRadius,
		FellSupportRadius:    cfg.Solver.FellSupportRadius,
	}

	w := world.NewWorld(cfg.World.Seed, caps)
	generator := gen.NewGenerator(cfg.World.Seed)
	sink := render.NewLogSink()
	manager := stream.NewManager(w, generator, sink, cfg.Stream)

	// Монитор процесса: CPU и память в журнал и метрики
	sysmon, err := observability.NewSysMonitor(10 * time.Second)
	if err != nil {
		logging.Warn("Монитор процесса недоступен: %v", err)
	} else {
		sysmon.Start()
	}

	edits := make(chan editCommand, 16)
	restSrv := startREST(cfg.Server.GetRESTPort(), w, manager, sink, edits)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logging.Info("✅ Движок запущен, REST API на порту %d", cfg.Server.GetRESTPort())

	// Цикл потребителя: скриптованный наблюдатель медленно обходит мир
	// по орбите, раз в тик выполняется шаг стриминга и правки мира
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	angle := 0.0
	const orbitRadius = 160.0 // В мировых координатах, ~10 регионов

loop:
	for {
		select {
		case sig := <-sigCh:
			logging.Info("📡 Получен сигнал %v, завершение работы...", sig)
			break loop

		case cmd := <-edits:
			cmd.reply <- applyEdit(w, manager, cmd)

		case <-ticker.C:
			angle += 0.002
			viewer := vec.Vec3Float{
				X: orbitRadius * math.Cos(angle),
				Y: 64,
				Z: orbitRadius * math.Sin(angle),
			}
			manager.Update(viewer)
		}
	}

	logging.Debug("Остановка сервисов...")
	_ = restSrv.Close()
	manager.Shutdown()
	if sysmon != nil {
		sysmon.Stop()
	}
	logging.Info("👋 Движок остановлен")
}

// applyEdit выполняет правку мира на потоке-потребителе и просит
// перестроить меши затронутых регионов
func applyEdit(w *world.World, manager *stream.Manager, cmd editCommand) world.EditResult {
	var result world.EditResult
	switch cmd.kind {
	case editBreak:
		result = w.BreakVoxel(cmd.pos)
	case editPlace:
		result = w.PlaceVoxel(cmd.pos, cmd.id)
	}
	if result.Applied {
		manager.RequestRemesh(result.Affected)
	}
	return result
}

// voxelEditRequest — тело запроса правки вокселя
type voxelEditRequest struct {
	X  int   `json:"x"`
	Y  int   `json:"y"`
	Z  int   `json:"z"`
	ID uint8 `json:"id"`
}

// startREST поднимает HTTP сервер статуса и правок мира
func startREST(port int, w *world.World, manager *stream.Manager, sink *render.LogSink, edits chan<- editCommand) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/api/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"seed":           w.Seed(),
			"loaded_regions": w.RegionCount(),
			"queue_depth":    manager.QueueLen(),
			"in_flight":      manager.InFlightCount(),
			"render_objects": sink.ObjectCount(),
		})
	})

	submit := func(c *gin.Context, kind editKind) {
		var req voxelEditRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		id := block.VoxelID(req.ID)
		if kind == editPlace && (!block.IsValid(id) || id == block.Air) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "недопустимый тип вокселя"})
			return
		}
		cmd := editCommand{
			kind:  kind,
			pos:   vec.Vec3{X: req.X, Y: req.Y, Z: req.Z},
			id:    id,
			reply: make(chan world.EditResult, 1),
		}
		select {
		case edits <- cmd:
		case <-time.After(time.Second):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "очередь правок переполнена"})
			return
		}
		select {
		case result := <-cmd.reply:
			resp := gin.H{
				"applied": result.Applied,
				"removed": result.Removed,
			}
			if kind == editBreak && result.Applied {
				d := block.Get(result.Broken)
				resp["voxel"] = d.Name
				resp["hardness"] = d.Hardness
				resp["best_tool"] = d.BestTool.String()
			}
			c.JSON(http.StatusOK, resp)
		case <-time.After(5 * time.Second):
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "правка не была обработана"})
		}
	}

	router.POST("/api/voxel/break", func(c *gin.Context) { submit(c, editBreak) })
	router.POST("/api/voxel/place", func(c *gin.Context) { submit(c, editPlace) })

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("❌ Ошибка REST сервера: %v", err)
		}
	}()
	return srv
}
