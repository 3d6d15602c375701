package broker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Karol-NMD/YOLO-Witness/internal/models"
	"github.com/goccy/go-json"
)

// DetectionLog журнал детекций; сбой записи не должен блокировать рассылку
type DetectionLog interface {
	LogEvent(ctx context.Context, ev models.Event) error
}

// Sink дополнительный потребитель исходящих событий (Kafka, архив превью).
// Ошибки доставки логируются и не влияют на остальных потребителей.
type Sink interface {
	Deliver(ev models.Event, payload []byte) error
}

// Options параметры брокера событий
type Options struct {
	Grace          time.Duration // грейс-окно между lost и disappear
	Poll           time.Duration // шаг опроса очереди и свипа
	QueueSize      int
	IncludeUpdates bool // писать ли update-события в журнал
}

// Broker единственный потребитель очереди событий воркеров. Владеет
// таблицей отложенных disappear: lost превращается в disappear только
// если трек не вернулся за грейс-окно. Все прочие события уходят
// подписчикам в порядке извлечения из очереди.
type Broker struct {
	queue chan models.Event
	opts  Options

	events *Hub
	dblog  DetectionLog

	sinkMu sync.RWMutex
	sinks  []Sink

	// pending пишется только циклом Run; мьютекс синхронизирует свип
	// с PurgeCamera из последовательности остановки камеры.
	// active хранит метки живых камер: события снятой метки отбрасываются,
	// чтобы брошенный воркер не взвёл disappear после чистки.
	pendingMu sync.Mutex
	pending   map[models.TrackKey]time.Time
	active    map[string]struct{}
}

func New(opts Options, dblog DetectionLog) *Broker {
	if opts.Grace <= 0 {
		opts.Grace = 1500 * time.Millisecond
	}
	if opts.Poll <= 0 {
		opts.Poll = 200 * time.Millisecond
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 4096
	}
	return &Broker{
		queue:   make(chan models.Event, opts.QueueSize),
		opts:    opts,
		events:  NewHub(),
		dblog:   dblog,
		pending: make(map[models.TrackKey]time.Time),
		active:  make(map[string]struct{}),
	}
}

// RegisterCamera включает приём событий камеры; вызывается при запуске воркера
func (b *Broker) RegisterCamera(label string) {
	b.pendingMu.Lock()
	b.active[label] = struct{}{}
	b.pendingMu.Unlock()
}

// Events возвращает хаб подписчиков на события жизненного цикла
func (b *Broker) Events() *Hub { return b.events }

// AddSink подключает дополнительный потребитель событий
func (b *Broker) AddSink(s Sink) {
	b.sinkMu.Lock()
	b.sinks = append(b.sinks, s)
	b.sinkMu.Unlock()
}

// Publish ставит событие воркера в очередь. Никогда не блокирует
// продюсера: при переполнении очереди событие отбрасывается с записью
// в лог, осознанная деградация вместо остановки воркеров.
func (b *Broker) Publish(ev models.Event) {
	select {
	case b.queue <- ev:
	default:
		log.Printf("[EVENT LOOP] Queue full, dropping %s for %s/%d",
			ev.Kind(), ev.Key().Label, ev.Key().TrackID)
	}
}

// PurgeCamera снимает камеру с учёта: удаляет все её отложенные disappear
// и закрывает приём её новых событий, чтобы ни поздний свип, ни застрявший
// в очереди lost не породили событий для остановленной камеры
func (b *Broker) PurgeCamera(label string) {
	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()
	delete(b.active, label)
	for key := range b.pending {
		if key.Label == label {
			delete(b.pending, key)
		}
	}
}

// PurgeAll снимает все камеры и все отложенные disappear
func (b *Broker) PurgeAll() {
	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()
	b.active = make(map[string]struct{})
	b.pending = make(map[models.TrackKey]time.Time)
}

// PendingCount возвращает число отложенных disappear
func (b *Broker) PendingCount() int {
	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()
	return len(b.pending)
}

// Run крутит цикл: свип просроченных disappear, затем ожидание очередного
// события с ограниченным таймаутом. Задержка доставки disappear в худшем
// случае grace + poll.
func (b *Broker) Run(ctx context.Context) {
	log.Println("[EVENT LOOP] Broadcaster started")

	for {
		b.sweep(ctx, time.Now())

		select {
		case <-ctx.Done():
			log.Println("[EVENT LOOP] Broadcaster stopped")
			return
		case ev := <-b.queue:
			b.handle(ctx, ev)
		case <-time.After(b.opts.Poll):
		}
	}
}

// sweep превращает просроченные lost в disappear
func (b *Broker) sweep(ctx context.Context, now time.Time) {
	var due []models.TrackKey

	b.pendingMu.Lock()
	for key, deadline := range b.pending {
		if !now.Before(deadline) {
			due = append(due, key)
			delete(b.pending, key)
		}
	}
	b.pendingMu.Unlock()

	for _, key := range due {
		ev := models.DisappearEvent{
			EventMeta: models.NewMeta(models.EventDisappear, key.Label, key.TrackID),
		}
		b.forward(ctx, ev)
	}
}

func (b *Broker) handle(ctx context.Context, ev models.Event) {
	// событие снятой камеры: брошенный воркер мог дожить до момента после
	// чистки, его хвост отбрасывается целиком
	b.pendingMu.Lock()
	_, live := b.active[ev.Key().Label]
	b.pendingMu.Unlock()
	if !live {
		log.Printf("[EVENT LOOP] Dropping %s for stopped camera '%s'", ev.Kind(), ev.Key().Label)
		return
	}

	switch ev.Kind() {
	case models.EventLost:
		// lost наружу не уходит, только откладывает disappear
		b.pendingMu.Lock()
		b.pending[ev.Key()] = time.Now().Add(b.opts.Grace)
		b.pendingMu.Unlock()
		return

	case models.EventAppear, models.EventUpdate:
		// возвращение трека отменяет отложенный disappear
		b.pendingMu.Lock()
		delete(b.pending, ev.Key())
		b.pendingMu.Unlock()
	}

	b.forward(ctx, ev)

	// Журнал после рассылки: доставка и долговечность разделены,
	// сбой записи не откатывает уже разосланное событие
	if b.dblog == nil {
		return
	}
	if ev.Kind() == models.EventAppear || (b.opts.IncludeUpdates && ev.Kind() == models.EventUpdate) {
		if err := b.dblog.LogEvent(ctx, ev); err != nil {
			log.Printf("[DB] insert failed: %v", err)
		}
	}
}

// forward сериализует событие и раздаёт его подписчикам и синкам
func (b *Broker) forward(_ context.Context, ev models.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[EVENT LOOP] Marshal %s failed: %v", ev.Kind(), err)
		return
	}

	b.events.Broadcast(payload)

	b.sinkMu.RLock()
	sinks := b.sinks
	b.sinkMu.RUnlock()
	for _, s := range sinks {
		if err := s.Deliver(ev, payload); err != nil {
			log.Printf("[EVENT LOOP] Sink delivery failed: %v", err)
		}
	}
}
