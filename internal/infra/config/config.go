package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EventsNone     = "none"
	EventsRedis    = "redis"
	EventsRabbitMQ = "rabbitmq"
)

// AppConfig описывает конфигурацию бота поддержки.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"3000" validate:"min=1,max=65535"`

	Telegram struct {
		Token            string `envconfig:"BOT_TOKEN" validate:"required"`
		ExternalURL      string `envconfig:"RENDER_EXTERNAL_URL"`
		RegisterWebhook  bool   `envconfig:"REGISTER_WEBHOOK" default:"true"`
		SupportGroupLink string `envconfig:"SUPPORT_GROUP_LINK" default:"https://t.me/+pT5CQm1MGag1OWM1" validate:"required,url"`
	} `envconfig:""`

	CatalogFile string `envconfig:"CATALOG_FILE"`

	Redis struct {
		Addr     string        `envconfig:"REDIS_ADDR"`
		Password string        `envconfig:"REDIS_PASSWORD"`
		DB       int           `envconfig:"REDIS_DB" default:"0"`
		DedupTTL time.Duration `envconfig:"UPDATE_DEDUP_TTL" default:"10m"`
	} `envconfig:""`

	Events struct {
		Backend string `envconfig:"EVENTS_BACKEND" default:"none" validate:"oneof=none redis rabbitmq"`
		Key     string `envconfig:"EVENTS_KEY" default:"support_events" validate:"required"`
		AMQPURL string `envconfig:"AMQP_URL"`
	} `envconfig:""`
}

var validate = validator.New()

// Parse читает .env (если есть) и окружение, затем проверяет значения.
func Parse() (AppConfig, error) {
	_ = godotenv.Load()
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// Validate проверяет обязательные поля и согласованность настроек.
func (c AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	if c.Events.Backend == EventsRedis && c.Redis.Addr == "" {
		return errors.New("config: EVENTS_BACKEND=redis requires REDIS_ADDR")
	}
	if c.Events.Backend == EventsRabbitMQ && c.Events.AMQPURL == "" {
		return errors.New("config: EVENTS_BACKEND=rabbitmq requires AMQP_URL")
	}
	return nil
}

// Addr адрес HTTP сервера.
func (c AppConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
}
