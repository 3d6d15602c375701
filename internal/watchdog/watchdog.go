package watchdog

import (
	"context"
	"log"
	"time"

	"github.com/Karol-NMD/YOLO-Witness/internal/manager"
	"github.com/Karol-NMD/YOLO-Witness/internal/models"
	"github.com/Karol-NMD/YOLO-Witness/internal/store"
)

// Registry часть менеджера камер, нужная сторожу
type Registry interface {
	RunningLabels() []string
	Stop(label string, cause models.StopCause) error
}

// Watchdog периодически проверяет heartbeat каждой запущенной камеры и
// останавливает зависшие тем же путём, что и явная остановка пользователем
type Watchdog struct {
	registry Registry
	store    *store.Store
	interval time.Duration
	timeout  time.Duration
}

func New(registry Registry, st *store.Store, interval, timeout time.Duration) *Watchdog {
	return &Watchdog{
		registry: registry,
		store:    st,
		interval: interval,
		timeout:  timeout,
	}
}

func (w *Watchdog) Start(ctx context.Context) {
	log.Printf("[WATCHDOG] Started. Timeout set to %v", w.timeout)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[WATCHDOG] Stopped")
			return
		case <-ticker.C:
			w.checkCameras()
		}
	}
}

func (w *Watchdog) checkCameras() {
	now := time.Now()
	for _, label := range w.registry.RunningLabels() {
		lastSeen, ok := w.store.LastSeen(label)
		if !ok {
			// ни одного кадра ещё не было, камера только стартует
			continue
		}
		if now.Sub(lastSeen) > w.timeout {
			log.Printf("[WATCHDOG] Camera '%s' timed out. Stopping...", label)
			if err := w.registry.Stop(label, models.CauseTimeout); err != nil && err != manager.ErrNotRunning {
				log.Printf("[WATCHDOG] Failed to stop camera '%s': %v", label, err)
			}
		}
	}
}
