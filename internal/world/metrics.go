package world

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики решателей. Исчерпание лимита — не ошибка (каскад молча
// усечён), но обязано быть видимым для настройки лимитов.
var (
	collapseTruncations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "voxel",
		Subsystem: "solver",
		Name:      "collapse_truncations_total",
		Help:      "Сколько раз каскад обрушения был усечён лимитом.",
	})
	collapsedVoxels = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "voxel",
		Subsystem: "solver",
		Name:      "collapsed_voxels_total",
		Help:      "Общее число обрушенных вокселей игрока.",
	})
	fellTruncations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "voxel",
		Subsystem: "solver",
		Name:      "fell_truncations_total",
		Help:      "Сколько раз валение дерева было усечено лимитом.",
	})
	felledVoxels = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "voxel",
		Subsystem: "solver",
		Name:      "felled_voxels_total",
		Help:      "Общее число вокселей, снятых валением деревьев.",
	})
)
