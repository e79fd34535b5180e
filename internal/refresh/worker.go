package refresh

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/partsdesk/internal/metrics"
)

const (
	defaultInterval          = 30 * time.Second
	defaultSuppressionWindow = 10 * time.Second
)

// Target — часть store, нужная планировщику фонового обновления.
type Target interface {
	Refresh(ctx context.Context, silent bool) error
	LastInteraction() time.Time
}

// BusyReporter сообщает о записи в полёте на стороне шлюза.
type BusyReporter interface {
	IsBusy() bool
}

// WorkerOptions задаёт параметры планировщика.
type WorkerOptions struct {
	Logger            *log.Entry
	Metrics           *metrics.StoreMetrics
	Interval          time.Duration
	SuppressionWindow time.Duration
	Clock             func() time.Time
}

// Option настраивает Worker.
type Option func(*WorkerOptions)

// WithLogger задаёт logger для планировщика.
func WithLogger(logger *log.Entry) Option {
	return func(opts *WorkerOptions) {
		opts.Logger = logger
	}
}

// WithMetrics задаёт метрики подавленных обновлений.
func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(opts *WorkerOptions) {
		opts.Metrics = m
	}
}

// WithInterval задаёт период фонового обновления.
func WithInterval(interval time.Duration) Option {
	return func(opts *WorkerOptions) {
		opts.Interval = interval
	}
}

// WithSuppressionWindow задаёт окно подавления после действия оператора.
func WithSuppressionWindow(window time.Duration) Option {
	return func(opts *WorkerOptions) {
		opts.SuppressionWindow = window
	}
}

// WithClock задаёт источник времени (для тестов).
func WithClock(clock func() time.Time) Option {
	return func(opts *WorkerOptions) {
		opts.Clock = clock
	}
}

// Worker периодически обновляет снапшот store тихим refresh. Тик пропускается
// целиком, если оператор взаимодействовал со снапшотом меньше окна назад или
// если у шлюза есть запись в полёте: опрос не должен затирать оптимистичную
// правку до того, как её подтверждение долетит до сервиса.
type Worker struct {
	target   Target
	busy     BusyReporter
	logger   *log.Entry
	metrics  *metrics.StoreMetrics
	interval time.Duration
	window   time.Duration
	clock    func() time.Time
}

// NewWorker создаёт планировщик фонового обновления.
func NewWorker(target Target, busy BusyReporter, options ...Option) *Worker {
	opts := WorkerOptions{
		Interval:          defaultInterval,
		SuppressionWindow: defaultSuppressionWindow,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "refresh-worker")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.SuppressionWindow <= 0 {
		opts.SuppressionWindow = defaultSuppressionWindow
	}

	return &Worker{
		target:   target,
		busy:     busy,
		logger:   logger,
		metrics:  opts.Metrics,
		interval: opts.Interval,
		window:   opts.SuppressionWindow,
		clock:    clock,
	}
}

// Run запускает периодическое обновление до отмены ctx. Отмена останавливает
// только таймер; запрос, уже ушедший в шлюз, не прерывается.
func (w *Worker) Run(ctx context.Context) {
	if w.target == nil {
		w.logger.Warn("refresh worker is disabled: no target")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.TickOnce(ctx)
		}
	}
}

// TickOnce выполняет один цикл: проверяет оба охранных условия и, если они
// не сработали, запускает тихое обновление.
func (w *Worker) TickOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if last := w.target.LastInteraction(); !last.IsZero() {
		if elapsed := w.clock().Sub(last); elapsed < w.window {
			w.metrics.RecordRefreshSuppressed("interaction")
			w.logger.WithField("elapsed", elapsed.String()).Debug("refresh suppressed: recent operator interaction")
			return
		}
	}

	if w.busy != nil && w.busy.IsBusy() {
		w.metrics.RecordRefreshSuppressed("busy")
		w.logger.Debug("refresh suppressed: gateway write in flight")
		return
	}

	if err := w.target.Refresh(ctx, true); err != nil {
		w.logger.WithError(err).Warn("background refresh failed")
	}
}
