package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Karol-NMD/YOLO-Witness/internal/models"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config структура конфига
type Config struct {
	HTTP struct {
		Addr string `yaml:"addr" env:"HTTP_ADDR"`
	} `yaml:"http"`

	Database struct {
		Path string `yaml:"path" env:"DATABASE_PATH"`
	} `yaml:"database"`

	Detection struct {
		Endpoint string `yaml:"endpoint" env:"DETECTION_ENDPOINT"`
	} `yaml:"detection"`

	Pipeline struct {
		ConfThreshold  float64 `yaml:"conf_threshold" env:"CONF_THRESHOLD"`
		MinBoxArea     int     `yaml:"min_box_area" env:"MIN_BOX_AREA"`
		ThumbnailSide  int     `yaml:"thumbnail_side" env:"THUMBNAIL_SIDE"`
		IncludeUpdates bool    `yaml:"include_updates" env:"INCLUDE_UPDATES"`
	} `yaml:"pipeline"`

	Events struct {
		GraceSec    float64 `yaml:"grace_sec" env:"DISAPPEAR_GRACE_SEC"`
		PollMs      int     `yaml:"poll_ms" env:"EVENT_POLL_MS"`
		QueueSize   int     `yaml:"queue_size" env:"EVENT_QUEUE_SIZE"`
		CountsMs    int     `yaml:"counts_ms" env:"COUNTS_INTERVAL_MS"`
		WatchdogSec int     `yaml:"watchdog_sec" env:"WATCHDOG_INTERVAL_SEC"`
		TimeoutSec  int     `yaml:"timeout_sec" env:"CAMERA_TIMEOUT_SEC"`
		StopWaitSec int     `yaml:"stop_wait_sec" env:"STOP_WAIT_SEC"`
	} `yaml:"events"`

	Buckets []models.Bucket `yaml:"buckets"`

	Kafka struct {
		Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" envSeparator:","`
		Topic   string   `yaml:"topic" env:"KAFKA_EVENTS_TOPIC"`
	} `yaml:"kafka"`

	Minio struct {
		Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT"`
		AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
		SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
		Bucket    string `yaml:"bucket" env:"MINIO_THUMBNAIL_BUCKET"`
	} `yaml:"minio"`
}

func LoadConfig(filename string) (*Config, error) {
	cfg := Default()

	if filename == "" {
		filename = "local.yaml"
	}
	path := "internal/config/" + filename

	// Читаем YAML, если файл есть; иначе остаёмся на дефолтах
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// Парсим переменные окружения с приоритетом
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default возвращает конфиг с рабочими значениями по умолчанию
func Default() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = ":8002"
	cfg.Database.Path = "detections.db"
	cfg.Detection.Endpoint = "http://localhost:8000"
	cfg.Pipeline.ConfThreshold = 0.35
	cfg.Pipeline.MinBoxArea = 20 * 20
	cfg.Pipeline.ThumbnailSide = 128
	cfg.Events.GraceSec = 1.5
	cfg.Events.PollMs = 200
	cfg.Events.QueueSize = 4096
	cfg.Events.CountsMs = 500
	cfg.Events.WatchdogSec = 5
	cfg.Events.TimeoutSec = 30
	cfg.Events.StopWaitSec = 5
	cfg.Buckets = []models.Bucket{
		{Name: "people", Classes: []string{"person"}},
		{Name: "vehicles", Classes: []string{"car", "bus", "truck", "motorbike", "bicycle"}},
		{Name: "boxes", Classes: []string{"box", "cardboard", "carton"}},
	}
	return cfg
}

func (c *Config) Grace() time.Duration        { return time.Duration(c.Events.GraceSec * float64(time.Second)) }
func (c *Config) Poll() time.Duration         { return time.Duration(c.Events.PollMs) * time.Millisecond }
func (c *Config) CountsEvery() time.Duration  { return time.Duration(c.Events.CountsMs) * time.Millisecond }
func (c *Config) WatchEvery() time.Duration   { return time.Duration(c.Events.WatchdogSec) * time.Second }
func (c *Config) CameraTimeout() time.Duration { return time.Duration(c.Events.TimeoutSec) * time.Second }
func (c *Config) StopWait() time.Duration     { return time.Duration(c.Events.StopWaitSec) * time.Second }
