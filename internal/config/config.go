package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации движка.

type Config struct {
	World  WorldConfig  `yaml:"world"`
	Stream StreamConfig `yaml:"stream"`
	Solver SolverConfig `yaml:"solver"`
	Server ServerConfig `yaml:"server"`
}

// WorldConfig параметры мира и генерации
type WorldConfig struct {
	Seed int64 `yaml:"seed"`
}

// StreamConfig параметры подсистемы стриминга регионов
type StreamConfig struct {
	Workers        int `yaml:"workers"`          // Размер пула фоновых воркеров (>=1)
	RenderDistance int `yaml:"render_distance"`  // Радиус желаемого множества в регионах
	LoadsPerUpdate int `yaml:"loads_per_update"` // Лимит выдач из очереди за один цикл
	ResultBuffer   int `yaml:"result_buffer"`    // Ёмкость канала готовых результатов
}

// SolverConfig лимиты графовых решателей
type SolverConfig struct {
	CollapseMaxVisited   int `yaml:"collapse_max_visited"`   // Лимит обойдённых вокселей за событие
	CollapseMaxCollapsed int `yaml:"collapse_max_collapsed"` // Лимит обрушенных вокселей за событие
	FellMaxWood          int `yaml:"fell_max_wood"`          // Лимит древесины за одно валение
	FellRadius           int `yaml:"fell_radius"`            // Радиус поиска ствола от точки слома
	FellLeafRadius       int `yaml:"fell_leaf_radius"`       // Радиус поиска листвы-кандидатов
	FellSupportRadius    int `yaml:"fell_support_radius"`    // Радиус выживания листвы у чужого ствола
}

// ServerConfig параметры headless-сервера движка
type ServerConfig struct {
	RESTPort int `yaml:"rest_port"`
}

// GetRESTPort возвращает REST порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "VOXEL_REST_PORT", 8090)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		World: WorldConfig{Seed: 1},
		Stream: StreamConfig{
			Workers:        2,
			RenderDistance: 6,
			LoadsPerUpdate: 6,
			ResultBuffer:   64,
		},
		Solver: SolverConfig{
			CollapseMaxVisited:   4096,
			CollapseMaxCollapsed: 512,
			FellMaxWood:          256,
			FellRadius:           12,
			FellLeafRadius:       3,
			FellSupportRadius:    4,
		},
		Server: ServerConfig{},
	}
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV VOXEL_CONFIG или возвращает дефолты.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.normalize()

	return cfg, nil
}

// normalize приводит значения к допустимым границам
func (c *Config) normalize() {
	if c.Stream.Workers < 1 {
		c.Stream.Workers = 1
	}
	if c.Stream.RenderDistance < 1 {
		c.Stream.RenderDistance = 1
	}
	if c.Stream.LoadsPerUpdate < 1 {
		c.Stream.LoadsPerUpdate = 1
	}
	if c.Stream.ResultBuffer < 1 {
		c.Stream.ResultBuffer = 16
	}
}
