package broker

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

const subscriberBuffer = 64

// Subscriber одна подписка на рассылку; сообщения читаются из Messages.
// Медленный подписчик, переполнивший свой буфер, молча отключается:
// доставка best-effort, без гарантии at-least-once.
type Subscriber struct {
	id string
	ch chan []byte
}

// Messages возвращает канал исходящих сообщений подписчика;
// канал закрывается при отписке или отключении
func (s *Subscriber) Messages() <-chan []byte { return s.ch }

// Hub множество подписчиков одного канала рассылки.
// Добавление и удаление безопасны одновременно с Broadcast.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*Subscriber
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]*Subscriber)}
}

// Subscribe регистрирует нового подписчика
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{
		id: uuid.New().String(),
		ch: make(chan []byte, subscriberBuffer),
	}
	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()
	return sub
}

// Unsubscribe снимает подписку и закрывает канал подписчика
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.id]; ok {
		delete(h.subs, sub.id)
		close(sub.ch)
	}
}

// Broadcast рассылает сообщение всем подписчикам; переполненные выбрасываются
func (h *Hub) Broadcast(msg []byte) {
	var stale []*Subscriber

	h.mu.RLock()
	for _, sub := range h.subs {
		select {
		case sub.ch <- msg:
		default:
			stale = append(stale, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range stale {
		log.Printf("[HUB] Dropping slow subscriber %s", sub.id)
		h.Unsubscribe(sub)
	}
}

// Len возвращает число активных подписчиков
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
