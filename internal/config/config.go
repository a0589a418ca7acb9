// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env" env-default:"local"`
	Storage         `yaml:"storage"`
	RedisConnection `yaml:"redis_connection"`
	HTTPServer      `yaml:"http_server"`
	JWTToken        `yaml:"jwttoken"`
	RabbitMQ        `yaml:"rabbitmq"`
	Scheduler       `yaml:"scheduler"`
	SMTP            `yaml:"smtp"`
}

// Storage выбирает хранилище рассрочек и карт.
// Driver: "postgres" или "bolt" (файл на устройстве).
type Storage struct {
	Driver                  string `yaml:"driver" env-default:"bolt"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	BoltPath                string `yaml:"bolt_path" env-default:"installments.db"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"720h"`
}

// RabbitMQ настройки подключения к брокеру.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// Scheduler настройки прохода по наступившим взносам.
type Scheduler struct {
	Interval time.Duration `yaml:"interval" env-default:"1h"`
	Timezone string        `yaml:"timezone" env-default:"UTC"`
}

// SMTP настройки отправки уведомлений на почту.
type SMTP struct {
	SMTPHost      string `yaml:"host"`
	SMTPPort      string `yaml:"port" env-default:"587"`
	SMTPUser      string `yaml:"user"`
	SMTPPass      string `yaml:"pass"`
	SMTPRecipient string `yaml:"recipient"`
}

// MustLoad загружает конфиг из файла, путь к которому задан в CONFIG_PATH.
// При любой ошибке процесс завершается.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг по пути и применяет значения по умолчанию.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("scheduler.interval must be positive, got %s", cfg.Interval)
	}
	return &cfg, nil
}

// Location возвращает часовой пояс планировщика, при ошибке UTC.
func (s Scheduler) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
