// Package observability содержит процессный монитор безэкранного
// запуска: периодически пишет потребление CPU и памяти в журнал и
// экспортирует его в метрики.
package observability

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/annel0/voxel-world/internal/logging"
)

var (
	processCPU = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "voxel",
		Subsystem: "process",
		Name:      "cpu_percent",
		Help:      "Потребление CPU процессом движка",
	})

	processRSS = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "voxel",
		Subsystem: "process",
		Name:      "rss_bytes",
		Help:      "Резидентная память процесса движка",
	})
)

// SysMonitor периодически снимает показатели собственного процесса
type SysMonitor struct {
	proc     *process.Process
	interval time.Duration
	log      *logging.Logger

	shutdownChan chan struct{}
	doneChan     chan struct{}
}

// NewSysMonitor создаёт монитор текущего процесса
func NewSysMonitor(interval time.Duration) (*SysMonitor, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &SysMonitor{
		proc:         proc,
		interval:     interval,
		log:          logging.GetComponentLogger("sysmon"),
		shutdownChan: make(chan struct{}),
		doneChan:     make(chan struct{}),
	}, nil
}

// Start запускает фоновый цикл снятия показателей
func (m *SysMonitor) Start() {
	go m.loop()
}

// Stop останавливает монитор и дожидается завершения цикла
func (m *SysMonitor) Stop() {
	close(m.shutdownChan)
	<-m.doneChan
}

func (m *SysMonitor) loop() {
	defer close(m.doneChan)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.shutdownChan:
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

// sample снимает один замер. Ошибки замера не фатальны: показатель
// просто пропускается до следующего тика.
func (m *SysMonitor) sample() {
	if cpu, err := m.proc.CPUPercent(); err == nil {
		processCPU.Set(cpu)
	}
	if mem, err := m.proc.MemoryInfo(); err == nil && mem != nil {
		processRSS.Set(float64(mem.RSS))
		m.log.Debug("Процесс: RSS=%.1f МБ", float64(mem.RSS)/(1024*1024))
	}
}
