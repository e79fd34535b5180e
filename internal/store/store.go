package store

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/partsdesk/internal/domain"
	"github.com/vladislavdragonenkov/partsdesk/internal/metrics"
)

const (
	defaultActivityLogCap  = 50
	defaultNotificationTTL = 3 * time.Second
	defaultActor           = "admin"
)

// Options задаёт параметры reconciliation store.
type Options struct {
	Logger          *log.Entry
	Metrics         *metrics.StoreMetrics
	Clock           func() time.Time
	NotificationTTL time.Duration
	ActivityLogCap  int
	Actor           string
}

// Option настраивает Store.
type Option func(*Options)

// WithLogger задаёт logger для store.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithMetrics задаёт метрики; nil отключает их.
func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// WithClock задаёт источник времени (для тестов).
func WithClock(clock func() time.Time) Option {
	return func(opts *Options) {
		opts.Clock = clock
	}
}

// WithNotificationTTL задаёт время жизни всплывающего уведомления.
func WithNotificationTTL(ttl time.Duration) Option {
	return func(opts *Options) {
		opts.NotificationTTL = ttl
	}
}

// WithActivityLogCap задаёт ёмкость журнала активности.
func WithActivityLogCap(capacity int) Option {
	return func(opts *Options) {
		opts.ActivityLogCap = capacity
	}
}

// WithActor задаёт имя оператора, передаваемое сервису при аннулировании.
func WithActor(actor string) Option {
	return func(opts *Options) {
		opts.Actor = actor
	}
}

// Store владеет авторитетным локальным снапшотом заказов и применяет к нему
// оптимистичные мутации. Источник истины — сервис заказов; при любом сбое
// подтверждения локальный оптимизм сбрасывается принудительным refresh,
// частичные слияния не выполняются.
type Store struct {
	gateway domain.OrderGateway
	logger  *log.Entry
	metrics *metrics.StoreMetrics
	now     func() time.Time
	ttl     time.Duration
	logCap  int
	actor   string

	mu              sync.RWMutex
	orders          []domain.Order
	loading         bool
	lastInteraction time.Time
	lastRefresh     time.Time
	entries         []LogEntry
	notifications   []Notification
}

// New создаёт store поверх шлюза заказов.
func New(gateway domain.OrderGateway, options ...Option) *Store {
	opts := Options{
		NotificationTTL: defaultNotificationTTL,
		ActivityLogCap:  defaultActivityLogCap,
		Actor:           defaultActor,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "store")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	if opts.NotificationTTL <= 0 {
		opts.NotificationTTL = defaultNotificationTTL
	}
	if opts.ActivityLogCap <= 0 {
		opts.ActivityLogCap = defaultActivityLogCap
	}
	if opts.Actor == "" {
		opts.Actor = defaultActor
	}

	return &Store{
		gateway: gateway,
		logger:  logger,
		metrics: opts.Metrics,
		now:     clock,
		ttl:     opts.NotificationTTL,
		logCap:  opts.ActivityLogCap,
		actor:   opts.Actor,
	}
}

// Snapshot возвращает копию текущего снапшота заказов.
func (s *Store) Snapshot() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneOrders(s.orders)
}

// Order возвращает копию заказа по идентификатору.
func (s *Store) Order(id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.orders {
		if s.orders[i].ID == id {
			return s.orders[i].Clone(), nil
		}
	}
	return domain.Order{}, domain.ErrOrderNotFound
}

// OrderByVIN возвращает копию заказа по VIN.
func (s *Store) OrderByVIN(vin string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.orders {
		if s.orders[i].VIN == vin {
			return s.orders[i].Clone(), nil
		}
	}
	return domain.Order{}, domain.ErrOrderNotFound
}

// Loading сообщает, выполняется ли пользовательское обновление.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastInteraction возвращает момент последней мутации оператора.
func (s *Store) LastInteraction() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastInteraction
}

// LastRefresh возвращает момент последней успешной загрузки снапшота.
func (s *Store) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}

// stampInteraction фиксирует действие оператора; окно подавления фонового
// обновления отсчитывается от этой отметки.
func (s *Store) stampInteraction() {
	now := s.now()
	s.mu.Lock()
	s.lastInteraction = now
	s.mu.Unlock()
}
