package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"tg-support-bot/internal/adapters/bot"
	"tg-support-bot/internal/adapters/catalog"
	"tg-support-bot/internal/adapters/matcher"
	"tg-support-bot/internal/adapters/telegram"
	"tg-support-bot/internal/domain"
	"tg-support-bot/internal/infra/cache"
	"tg-support-bot/internal/infra/config"
	httpinfra "tg-support-bot/internal/infra/http"
	"tg-support-bot/internal/infra/log"
	"tg-support-bot/internal/infra/metrics"
	"tg-support-bot/internal/infra/queue"
	"tg-support-bot/internal/usecase/support"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv)
	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось загрузить каталог решений")
	}
	logger.Info().Int("records", len(cat.Records())).Msg("каталог загружен")

	var (
		redisClient *redis.Client
		dedup       domain.Cache = cache.Nop{}
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		dedup = cache.NewRedis(redisClient, "support-bot:")
	}

	events, closeEvents, err := newEventPublisher(cfg, redisClient, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось подключить публикацию событий")
	}
	defer closeEvents()

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось создать бота")
	}
	logger.Info().Str("bot", botAPI.Self.UserName).Msg("бот авторизован")

	supportUC := support.NewService(cat, matcher.NewFuzzy(cat.Records()), events, cfg.Telegram.SupportGroupLink)
	h := bot.NewHandler(botAPI, logger.With().Str("component", "bot").Logger(), supportUC, dedup, cfg.Redis.DedupTTL)

	srv := httpinfra.NewServer(logger, prometheus.DefaultGatherer)
	srv.Router.Post(telegram.WebhookRoute, h.Webhook(cfg.Telegram.Token))

	if cfg.Telegram.RegisterWebhook {
		registerWebhook(botAPI, cfg, logger)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(cfg.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("остановка бота")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("HTTP сервер остановлен с ошибкой")
	}
}

func registerWebhook(api *tgbotapi.BotAPI, cfg config.AppConfig, logger zerolog.Logger) {
	if cfg.Telegram.ExternalURL == "" {
		logger.Warn().Msg("RENDER_EXTERNAL_URL не задан, вебхук не зарегистрирован")
		return
	}
	webhookURL, err := telegram.WebhookURL(cfg.Telegram.ExternalURL, cfg.Telegram.Token)
	if err != nil {
		logger.Error().Err(err).Msg("некорректный внешний адрес")
		return
	}
	if err := bot.Register(api, webhookURL); err != nil {
		logger.Error().Err(err).Msg("не удалось зарегистрировать вебхук")
		return
	}
	logger.Info().Str("external_url", cfg.Telegram.ExternalURL).Msg("вебхук зарегистрирован")
}

func newEventPublisher(cfg config.AppConfig, redisClient *redis.Client, logger zerolog.Logger) (domain.EventPublisher, func(), error) {
	eventsLog := logger.With().Str("component", "events").Logger()
	switch cfg.Events.Backend {
	case config.EventsRedis:
		q := queue.NewRedisEventQueue(redisClient, cfg.Events.Key)
		return queue.NewBestEffort(q, config.EventsRedis, eventsLog), func() {}, nil
	case config.EventsRabbitMQ:
		q, err := queue.NewRabbitEventQueue(cfg.Events.AMQPURL, cfg.Events.Key)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := q.Close(); err != nil {
				eventsLog.Warn().Err(err).Msg("rabbitmq: ошибка закрытия соединения")
			}
		}
		return queue.NewBestEffort(q, config.EventsRabbitMQ, eventsLog), closeFn, nil
	}
	return queue.Nop{}, func() {}, nil
}
