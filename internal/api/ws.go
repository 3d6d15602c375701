package api

import (
	"log"
	"net/http"
	"time"

	"github.com/Karol-NMD/YOLO-Witness/internal/broker"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// EventsSocketHandler подписывает клиента на события жизненного цикла
func (h *Handlers) EventsSocketHandler(w http.ResponseWriter, r *http.Request) {
	h.serveHub(h.broker.Events(), w, r)
}

// CountsSocketHandler подписывает клиента на полный снимок счётчиков
func (h *Handlers) CountsSocketHandler(w http.ResponseWriter, r *http.Request) {
	h.serveHub(h.counts.Raw(), w, r)
}

// UICountsSocketHandler подписывает клиента на фронтенд-снимок счётчиков
func (h *Handlers) UICountsSocketHandler(w http.ResponseWriter, r *http.Request) {
	h.serveHub(h.counts.UI(), w, r)
}

// serveHub гонит сообщения хаба в веб-сокет до закрытия любой из сторон.
// Отвалившийся или медленный клиент просто снимается с подписки.
func (h *Handlers) serveHub(hub *broker.Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	// читатель нужен только чтобы заметить закрытие со стороны клиента
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case msg, ok := <-sub.Messages():
			if !ok {
				// хаб отключил подписчика как медленного
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}
