// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
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
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	Line                    `yaml:"line"`
	Bot                     `yaml:"bot"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"0.0.0.0:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// Line структура с учетными данными канала LINE Messaging API
type Line struct {
	ChannelSecret      string `yaml:"channel_secret" env:"LINE_CHANNEL_SECRET"`
	ChannelAccessToken string `yaml:"channel_access_token" env:"LINE_CHANNEL_ACCESS_TOKEN"`
	APIEndpoint        string `yaml:"api_endpoint" env-default:"https://api.line.me"`
	TermsURL           string `yaml:"terms_url" env-default:"https://shizu-na.github.io/gomidashi-yoho/policy"`
}

// Bot структура с настройками логики бота
type Bot struct {
	Timezone      string        `yaml:"timezone" env-default:"Asia/Tokyo"`
	PollInterval  time.Duration `yaml:"poll_interval" env-default:"5m"`
	SessionTTL    time.Duration `yaml:"session_ttl" env-default:"5m"`
	ItemMaxLength int           `yaml:"item_max_length" env-default:"20"`
	NoteMaxLength int           `yaml:"note_max_length" env-default:"50"`
}

// MustLoad функция для загрузки конфига, путь до файла берется из переменной окружения CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Line:\n"+
			"  APIEndpoint: %s\n"+
			"  TermsURL: %s\n"+
			"Bot:\n"+
			"  Timezone: %s\n"+
			"  PollInterval: %s\n"+
			"  SessionTTL: %s\n",
		c.Env,
		c.StorageConnectionString,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.APIEndpoint,
		c.TermsURL,
		c.Timezone,
		c.PollInterval,
		c.SessionTTL,
	)
}
