package manager

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Karol-NMD/YOLO-Witness/internal/broker"
	"github.com/Karol-NMD/YOLO-Witness/internal/capture"
	"github.com/Karol-NMD/YOLO-Witness/internal/detect"
	"github.com/Karol-NMD/YOLO-Witness/internal/models"
	"github.com/Karol-NMD/YOLO-Witness/internal/store"
	"github.com/Karol-NMD/YOLO-Witness/internal/worker"
)

var (
	// ErrAlreadyRunning камера с такой меткой уже запущена
	ErrAlreadyRunning = errors.New("camera already running")
	// ErrNotRunning камера не запущена; остановка не-запущенной камеры
	// не ошибка исполнения, а штатный ответ
	ErrNotRunning = errors.New("camera not running")
)

type handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (h *handle) alive() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Manager реестр воркеров камер. Запуск и остановка любой камеры
// взаимно исключены одним мьютексом, чтобы не гонять handle'ы.
type Manager struct {
	mu      sync.Mutex
	workers map[string]*handle

	store    *store.Store
	broker   *broker.Broker
	det      detect.Detector
	cfg      worker.Config
	stopWait time.Duration

	// openSource подменяется в тестах
	openSource func(source string) (capture.Source, error)
}

func New(st *store.Store, br *broker.Broker, det detect.Detector, cfg worker.Config, stopWait time.Duration) *Manager {
	return &Manager{
		workers:    make(map[string]*handle),
		store:      st,
		broker:     br,
		det:        det,
		cfg:        cfg,
		stopWait:   stopWait,
		openSource: capture.Open,
	}
}

// Start запускает воркер камеры. Повторный запуск живой камеры
// возвращает ErrAlreadyRunning; мёртвый handle молча заменяется.
func (m *Manager) Start(ctx context.Context, source, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.workers[label]; ok {
		if h.alive() {
			log.Printf("[INFO] Camera '%s' is already running", label)
			return ErrAlreadyRunning
		}
		delete(m.workers, label)
	}

	src, err := m.openSource(source)
	if err != nil {
		return err
	}

	log.Printf("[INFO] Starting camera worker for '%s' at %s", label, source)

	wctx, cancel := context.WithCancel(ctx)
	h := &handle{cancel: cancel, done: make(chan struct{})}
	m.workers[label] = h
	m.broker.RegisterCamera(label)

	w := worker.New(label, src, m.det, m.store, m.broker, m.cfg)
	go func() {
		defer close(h.done)
		if err := w.Run(wctx); err != nil {
			log.Printf("[WORKER] Camera '%s' terminated: %v", label, err)
		}
	}()

	return nil
}

// Stop останавливает воркер: отмена контекста, ограниченное ожидание
// штатного выхода, затем принудительное забвение. После этого атомарно
// чистятся записи камеры в хранилище и отложенные disappear брокера.
func (m *Manager) Stop(label string, cause models.StopCause) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopLocked(label, cause)
}

func (m *Manager) stopLocked(label string, cause models.StopCause) error {
	h, ok := m.workers[label]
	if !ok {
		return ErrNotRunning
	}

	log.Printf("[INFO] Stopping camera '%s' (%s)", label, cause)
	h.cancel()

	select {
	case <-h.done:
	case <-time.After(m.stopWait):
		// горутину не убить; бросаем её и чистим состояние, поздние
		// записи для снятой метки безвредны
		log.Printf("[WARN] Camera '%s' did not exit in %v, abandoning worker", label, m.stopWait)
	}

	delete(m.workers, label)
	m.store.DropCamera(label)
	m.broker.PurgeCamera(label)

	log.Printf("[INFO] Camera '%s' stopped (cleanup done)", label)
	return nil
}

// StopAll останавливает все камеры
func (m *Manager) StopAll(cause models.StopCause) {
	m.mu.Lock()
	defer m.mu.Unlock()

	log.Println("[INFO] Stopping all camera workers...")
	for label := range m.workers {
		if err := m.stopLocked(label, cause); err != nil && !errors.Is(err, ErrNotRunning) {
			log.Printf("[WARN] Stopping camera '%s': %v", label, err)
		}
	}
	m.broker.PurgeAll()
	log.Println("[INFO] All cameras stopped")
}

// Running сообщает, жив ли воркер камеры
func (m *Manager) Running(label string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.workers[label]
	return ok && h.alive()
}

// RunningLabels возвращает метки живых воркеров
func (m *Manager) RunningLabels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	labels := make([]string, 0, len(m.workers))
	for label, h := range m.workers {
		if h.alive() {
			labels = append(labels, label)
		}
	}
	return labels
}

// SetZones заменяет все зоны камеры целиком
func (m *Manager) SetZones(label string, zs []models.Zone) {
	m.store.SetZones(label, zs)
}

// GetZones возвращает текущие зоны камеры
func (m *Manager) GetZones(label string) []models.Zone {
	return m.store.Zones(label)
}
