package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/partsdesk/internal/approval"
	"github.com/vladislavdragonenkov/partsdesk/internal/domain"
	"github.com/vladislavdragonenkov/partsdesk/internal/gateway/httpapi"
	"github.com/vladislavdragonenkov/partsdesk/internal/gateway/memory"
	"github.com/vladislavdragonenkov/partsdesk/internal/metrics"
	"github.com/vladislavdragonenkov/partsdesk/internal/refresh"
	"github.com/vladislavdragonenkov/partsdesk/internal/store"
	"github.com/vladislavdragonenkov/partsdesk/internal/view"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Gateway domain.OrderGateway
	Store   *store.Store
	Guard   *approval.Guard
	Worker  *refresh.Worker
	View    *view.State
	Metrics *metrics.StoreMetrics
	Logger  *log.Entry
}

// NewDependencies создаёт и связывает все зависимости приложения.
func NewDependencies(cfg Config, logger *log.Entry) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	var gateway domain.OrderGateway
	switch cfg.GatewayMode {
	case GatewayModeHTTP:
		gateway = httpapi.NewClient(cfg.GatewayBaseURL, cfg.GatewayToken, logger.WithField("layer", "gateway"))
	default:
		// NOTE: memory-шлюз стартует пустым; наполняется через Seed в тестах
		// и демо-сценариях.
		gateway = memory.NewGateway(nil)
	}

	storeMetrics := metrics.NewStoreMetrics()
	st := store.New(gateway,
		store.WithLogger(logger.WithField("layer", "store")),
		store.WithMetrics(storeMetrics),
		store.WithNotificationTTL(cfg.NotificationTTL),
		store.WithActor(cfg.Actor),
	)

	worker := refresh.NewWorker(st, gateway,
		refresh.WithLogger(logger.WithField("layer", "refresh")),
		refresh.WithMetrics(storeMetrics),
		refresh.WithInterval(cfg.PollInterval),
		refresh.WithSuppressionWindow(cfg.SuppressionWindow),
	)

	return &Dependencies{
		Gateway: gateway,
		Store:   st,
		Guard:   approval.NewGuard(st, logger.WithField("layer", "approval")),
		Worker:  worker,
		View:    view.NewState(cfg.PageSize),
		Metrics: storeMetrics,
		Logger:  logger,
	}
}
