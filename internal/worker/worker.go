package worker

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/Karol-NMD/YOLO-Witness/internal/capture"
	"github.com/Karol-NMD/YOLO-Witness/internal/detect"
	"github.com/Karol-NMD/YOLO-Witness/internal/models"
	"github.com/Karol-NMD/YOLO-Witness/internal/store"
	"github.com/Karol-NMD/YOLO-Witness/internal/zones"
	"github.com/samber/lo"
)

// Publisher принимает сырые события жизненного цикла от воркеров
type Publisher interface {
	Publish(ev models.Event)
}

// Config пороги и группировка классов для одного воркера
type Config struct {
	ConfThreshold float64
	MinBoxArea    int
	ThumbnailSide int
	Buckets       []models.Bucket
}

// Worker владеет конвейером одной камеры: источник кадров, детектор,
// локальное состояние треков. Общается с остальной системой только через
// очередь событий и разделяемое хранилище.
type Worker struct {
	label  string
	src    capture.Source
	det    detect.Detector
	store  *store.Store
	events Publisher
	cfg    Config

	seen       map[int]struct{} // треки, для которых appear уже ушёл
	prevActive map[int]struct{}
}

func New(label string, src capture.Source, det detect.Detector, st *store.Store, events Publisher, cfg Config) *Worker {
	return &Worker{
		label:      label,
		src:        src,
		det:        det,
		store:      st,
		events:     events,
		cfg:        cfg,
		seen:       make(map[int]struct{}),
		prevActive: make(map[int]struct{}),
	}
}

// Run крутит цикл камеры до отмены контекста. Конечный источник на
// исчерпании или сбое чтения перематывается и продолжает с начала;
// сбой живого источника останавливает воркер, дальше его подберёт
// watchdog по устаревшему heartbeat.
func (w *Worker) Run(ctx context.Context) error {
	log.Printf("[WORKER] Camera '%s' started", w.label)
	defer w.src.Close()

	for {
		if ctx.Err() != nil {
			log.Printf("[WORKER] Camera '%s' stopped", w.label)
			return nil
		}

		frame, err := w.src.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Printf("[WORKER] Camera '%s' stopped", w.label)
				return nil
			}
			if w.src.Live() {
				log.Printf("[WORKER] Camera '%s': frame read failed: %v", w.label, err)
				return err
			}
			// файловый источник зацикливаем
			if rerr := w.src.Rewind(); rerr != nil {
				return rerr
			}
			continue
		}

		// источник мог отдать кадр уже после отмены: например, живой поток,
		// чьё чтение нельзя прервать на середине. Такой кадр не обрабатываем,
		// иначе брошенный воркер воскресит состояние снятой камеры.
		if ctx.Err() != nil {
			log.Printf("[WORKER] Camera '%s' stopped", w.label)
			return nil
		}

		w.processFrame(ctx, frame)
	}
}

func (w *Worker) processFrame(ctx context.Context, frame capture.Frame) {
	if ctx.Err() != nil {
		return
	}

	detections, err := w.det.Track(ctx, frame.Data, w.label)
	if err != nil {
		// сбой трекера не фатален: откатываемся на детекцию без треков,
		// события за этот кадр не эмитятся
		log.Printf("[WORKER] '%s' track() error: %v", w.label, err)
		detections, err = w.det.Predict(ctx, frame.Data)
		if err != nil {
			// кадр не обработан, heartbeat не обновляем: затяжной сбой
			// детектора проявится как устаревание воркера
			log.Printf("[WORKER] '%s' predict() error: %v", w.label, err)
			return
		}
	}

	counts := make(models.CountSnapshot, len(w.cfg.Buckets))
	for _, b := range w.cfg.Buckets {
		counts[b.Name] = 0
	}

	active := make(map[int]struct{})
	var drawn [][4]int
	zonesForCamera := w.store.Zones(w.label)

	for _, d := range detections {
		if d.Confidence < w.cfg.ConfThreshold {
			continue
		}

		x1 := int(math.Round(d.Box[0]))
		y1 := int(math.Round(d.Box[1]))
		x2 := int(math.Round(d.Box[2]))
		y2 := int(math.Round(d.Box[3]))
		bw, bh := max(0, x2-x1), max(0, y2-y1)
		if bw*bh < w.cfg.MinBoxArea {
			continue
		}

		cx, cy := (x1+x2)/2, (y1+y2)/2
		zoneID, ok := zones.Classify(cx, cy, zonesForCamera)
		if !ok {
			// вне всех настроенных зон, детекция отбрасывается целиком
			continue
		}

		// первая подходящая группа забирает инкремент
		for _, b := range w.cfg.Buckets {
			if lo.Contains(b.Classes, d.Class) {
				counts[b.Name]++
				break
			}
		}

		// принятая детекция попадает на разметку кадра, отброшенные невидимы
		drawn = append(drawn, [4]int{x1, y1, x2, y2})

		// без track_id детекция считается, но событий не даёт
		if d.TrackID == nil {
			continue
		}
		tid := *d.TrackID
		active[tid] = struct{}{}

		bbox := [4]int{x1, y1, x2, y2}
		if _, known := w.seen[tid]; !known {
			w.seen[tid] = struct{}{}

			ev := models.AppearEvent{
				EventMeta:  models.NewMeta(models.EventAppear, w.label, tid),
				Class:      d.Class,
				Confidence: d.Confidence,
				BBox:       bbox,
				ZoneID:     zoneID,
			}
			// превью best-effort: при сбое событие уходит без него
			if thumb, mime, terr := thumbnail(frame.Data, bbox, w.cfg.ThumbnailSide); terr == nil {
				ev.Thumbnail = thumb
				ev.Mime = mime
			} else {
				log.Printf("[WARNING] '%s' thumbnail encode failed: %v", w.label, terr)
			}
			w.events.Publish(ev)
		} else {
			w.events.Publish(models.UpdateEvent{
				EventMeta:  models.NewMeta(models.EventUpdate, w.label, tid),
				Class:      d.Class,
				Confidence: d.Confidence,
				BBox:       bbox,
				ZoneID:     zoneID,
			})
		}
	}

	// треки, пропавшие по сравнению с прошлым кадром, уходят как lost;
	// в disappear их переведёт брокер после грейс-окна
	for tid := range w.prevActive {
		if _, still := active[tid]; !still {
			w.events.Publish(models.LostEvent{
				EventMeta: models.NewMeta(models.EventLost, w.label, tid),
			})
		}
	}
	w.prevActive = active

	// отмена могла прийти посреди кадра, пока ждали детектор; состояние
	// снятой камеры не трогаем
	if ctx.Err() != nil {
		return
	}

	// на поток уходит кадр с рамками принятых детекций; при сбое разметки
	// публикуем сырой кадр
	annotated := frame.Data
	if len(drawn) > 0 {
		if out, aerr := annotate(frame.Data, drawn); aerr == nil {
			annotated = out
		} else {
			log.Printf("[WARNING] '%s' frame annotate failed: %v", w.label, aerr)
		}
	}

	w.store.SetFrame(w.label, annotated)
	w.store.SetCounts(w.label, counts)
	w.store.Touch(w.label, time.Now())
}
