package counts

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/Karol-NMD/YOLO-Witness/internal/broker"
	"github.com/Karol-NMD/YOLO-Witness/internal/models"
	"github.com/Karol-NMD/YOLO-Witness/internal/store"
	"github.com/goccy/go-json"
	"github.com/samber/lo"
)

// TS метка времени публикации
type TS struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// RawPayload полный снимок счётчиков для API-подписчиков
type RawPayload struct {
	TS        TS                              `json:"ts"`
	PerCamera map[string]models.CountSnapshot `json:"per_camera"`
	Totals    models.CountSnapshot            `json:"totals"`
}

// UICamera счётчики одной камеры в форме, удобной фронтенду
type UICamera struct {
	Camera  string `json:"camera"`
	Box     int    `json:"box"`
	Vehicle int    `json:"vehicle"`
	People  int    `json:"people"`
}

// UIPayload снимок счётчиков для фронтенд-подписчиков
type UIPayload struct {
	TS        TS         `json:"ts"`
	Total     UITotal    `json:"total"`
	PerCamera []UICamera `json:"per_camera"`
}

type UITotal struct {
	Box     int `json:"box"`
	Vehicle int `json:"vehicle"`
	People  int `json:"people"`
}

// Publisher периодически собирает снимок счётчиков из хранилища и
// рассылает его двум независимым множествам подписчиков. Доставка
// push-only и с потерями: упавший подписчик молча отключается хабом.
type Publisher struct {
	store    *store.Store
	interval time.Duration
	raw      *broker.Hub
	ui       *broker.Hub
}

func New(st *store.Store, interval time.Duration) *Publisher {
	return &Publisher{
		store:    st,
		interval: interval,
		raw:      broker.NewHub(),
		ui:       broker.NewHub(),
	}
}

// Raw хаб подписчиков полного снимка
func (p *Publisher) Raw() *broker.Hub { return p.raw }

// UI хаб подписчиков фронтенд-снимка
func (p *Publisher) UI() *broker.Hub { return p.ui }

func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[COUNTS] Publisher stopped")
			return
		case <-ticker.C:
			p.publish()
		}
	}
}

func (p *Publisher) publish() {
	if p.raw.Len() == 0 && p.ui.Len() == 0 {
		return
	}

	snapshot := p.store.AllCounts()
	date, tm := models.Timestamp(time.Now())
	ts := TS{Date: date, Time: tm}

	totals := models.CountSnapshot{}
	for _, c := range snapshot {
		for bucket, n := range c {
			totals[bucket] += n
		}
	}

	if p.raw.Len() > 0 {
		payload, err := json.Marshal(RawPayload{TS: ts, PerCamera: snapshot, Totals: totals})
		if err != nil {
			log.Printf("[COUNTS] Marshal raw payload: %v", err)
		} else {
			p.raw.Broadcast(payload)
		}
	}

	if p.ui.Len() > 0 {
		labels := lo.Keys(snapshot)
		sort.Strings(labels)

		perCamera := lo.Map(labels, func(label string, _ int) UICamera {
			c := snapshot[label]
			return UICamera{
				Camera:  label,
				Box:     c["boxes"],
				Vehicle: c["vehicles"],
				People:  c["people"],
			}
		})

		payload, err := json.Marshal(UIPayload{
			TS: ts,
			Total: UITotal{
				Box:     totals["boxes"],
				Vehicle: totals["vehicles"],
				People:  totals["people"],
			},
			PerCamera: perCamera,
		})
		if err != nil {
			log.Printf("[COUNTS] Marshal ui payload: %v", err)
		} else {
			p.ui.Broadcast(payload)
		}
	}
}
