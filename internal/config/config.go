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
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`

	HTTPServer    HTTPServer    `yaml:"http_server"`
	Redis         Redis         `yaml:"redis"`
	JWT           JWT           `yaml:"jwt"`
	RabbitMQ      RabbitMQ      `yaml:"rabbitmq"`
	SMTP          SMTP          `yaml:"smtp"`
	ObjectStorage ObjectStorage `yaml:"object_storage"`
	Media         Media         `yaml:"media"`
	Payment       Payment       `yaml:"payment"`
	Accounts      Accounts      `yaml:"accounts"`
	Sweep         Sweep         `yaml:"sweep"`
	RateLimit     RateLimit     `yaml:"rate_limit"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout time.Duration `yaml:"read_timeout" env-default:"10s"`
	// WriteTimeout должен покрывать отдачу одного диапазона видео.
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"5m"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// Redis структура для настройки подключения к redis
type Redis struct {
	Address     string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password    string        `yaml:"password" env:"REDIS_PASSWORD"`
	User        string        `yaml:"user"`
	DB          int           `yaml:"db"`
	MaxRetries  int           `yaml:"max_retries"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	Timeout     time.Duration `yaml:"timeout"`
}

// JWT структура для работы с jwt-токеном
type JWT struct {
	SecretKey string        `yaml:"secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL  time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// RabbitMQ настройки подключения к брокеру сообщений
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	MaxRetries int           `yaml:"max_retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"3s"`
	// RequeueDelay пауза перед возвратом в очередь письма, которое не удалось отправить.
	RequeueDelay time.Duration `yaml:"requeue_delay" env-default:"5s"`
}

// SMTP настройки почтового сервера
type SMTP struct {
	Host string `yaml:"host" env:"SMTP_HOST"`
	Port string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	User string `yaml:"user" env:"SMTP_USER"`
	Pass string `yaml:"pass" env:"SMTP_PASS"`
}

// ObjectStorage настройки S3-совместимого хранилища для изображений профиля
type ObjectStorage struct {
	Endpoint       string        `yaml:"endpoint" env:"OBJECT_STORAGE_ENDPOINT"`
	Bucket         string        `yaml:"bucket" env:"OBJECT_STORAGE_BUCKET"`
	Region         string        `yaml:"region" env-default:"us-east-1"`
	AccessKey      string        `yaml:"access_key" env:"OBJECT_STORAGE_ACCESS_KEY"`
	SecretKey      string        `yaml:"secret_key" env:"OBJECT_STORAGE_SECRET_KEY"`
	Prefix         string        `yaml:"prefix" env-default:"profiles"`
	PublicEndpoint string        `yaml:"public_endpoint"`
	UseSSL         bool          `yaml:"use_ssl"`
	RequestTimeout time.Duration `yaml:"request_timeout" env-default:"10s"`
	MaxRetries     int           `yaml:"max_retries" env-default:"3"`
}

// Media настройки внешнего видеохостинга
type Media struct {
	BaseURL               string        `yaml:"base_url" env:"MEDIA_BASE_URL"`
	Folder                string        `yaml:"folder" env-default:"Videos"`
	ProbeTimeout          time.Duration `yaml:"probe_timeout" env-default:"5s"`
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout" env-default:"5s"`
	ProbeCacheTTL         time.Duration `yaml:"probe_cache_ttl" env-default:"10m"`
}

// Payment настройки платёжного шлюза
type Payment struct {
	KeyID       string `yaml:"key_id" env:"PAYMENT_KEY_ID"`
	KeySecret   string `yaml:"key_secret" env:"PAYMENT_KEY_SECRET"`
	APIURL      string `yaml:"api_url" env-default:"https://api.razorpay.com/v1"`
	Currency    string `yaml:"currency" env-default:"INR"`
	FrontendURL string `yaml:"frontend_url" env:"FRONTEND_URL"`
	// VerifyOrder включает сверку суммы и срока с заказом на стороне шлюза.
	VerifyOrder bool `yaml:"verify_order"`
}

// Accounts настройки одноразовых кодов и очистки неподтверждённых аккаунтов
type Accounts struct {
	SignupCodeTTL time.Duration `yaml:"signup_code_ttl" env-default:"2m"`
	ResetCodeTTL  time.Duration `yaml:"reset_code_ttl" env-default:"10m"`
	CleanupGrace  time.Duration `yaml:"cleanup_grace" env-default:"2m"`
}

// Sweep настройки ежедневной проверки подписок
type Sweep struct {
	RunAt    string `yaml:"run_at" env-default:"00:00"`
	Location string `yaml:"location" env-default:"UTC"`
}

// RateLimit настройки ограничения частоты запросов
type RateLimit struct {
	Requests      int           `yaml:"requests" env-default:"300"`
	Window        time.Duration `yaml:"window" env-default:"15m"`
	ProfileWrites int           `yaml:"profile_writes" env-default:"10"`
	ProfileWindow time.Duration `yaml:"profile_window" env-default:"1h"`
}

// MustLoad функция для загрузки конфига, путь берётся из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Load читает конфиг из файла и переменных окружения.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file: %s - does not exist", configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	return &cfg, nil
}

// SweepTime разбирает время запуска проверки подписок в формате HH:MM.
func (s Sweep) SweepTime() (hour, minute int, loc *time.Location, err error) {
	t, err := time.Parse("15:04", s.RunAt)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("invalid sweep run_at %q: %w", s.RunAt, err)
	}
	loc, err = time.LoadLocation(s.Location)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("invalid sweep location %q: %w", s.Location, err)
	}
	return t.Hour(), t.Minute(), loc, nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer: %s (read %s, write %s, idle %s)\n"+
			"Redis: %s db=%d\n"+
			"RabbitMQ retries: %d\n"+
			"SMTP: %s:%s\n"+
			"ObjectStorage: %s/%s\n"+
			"Media: %s/%s\n"+
			"Payment: %s %s verify_order=%t\n"+
			"Accounts: signup %s, reset %s, grace %s\n"+
			"Sweep: %s %s\n",
		c.Env,
		c.HTTPServer.Address, c.HTTPServer.ReadTimeout, c.HTTPServer.WriteTimeout, c.HTTPServer.IdleTimeout,
		c.Redis.Address, c.Redis.DB,
		c.RabbitMQ.MaxRetries,
		c.SMTP.Host, c.SMTP.Port,
		c.ObjectStorage.Endpoint, c.ObjectStorage.Bucket,
		c.Media.BaseURL, c.Media.Folder,
		c.Payment.APIURL, c.Payment.Currency, c.Payment.VerifyOrder,
		c.Accounts.SignupCodeTTL, c.Accounts.ResetCodeTTL, c.Accounts.CleanupGrace,
		c.Sweep.RunAt, c.Sweep.Location,
	)
}
