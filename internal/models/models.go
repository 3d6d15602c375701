package models

import "time"

// Zone описывает одну зону наблюдения камеры
type Zone struct {
	ID     string   `json:"id" yaml:"id"`
	Points [][2]int `json:"points" yaml:"points"`
}

// RawDetection представляет структуру одного обнаруженного объекта
type RawDetection struct {
	Class      string     `json:"class"`
	Confidence float64    `json:"confidence"`
	Box        [4]float64 `json:"box"` // [x1, y1, x2, y2]
	TrackID    *int       `json:"track_id,omitempty"`
}

// Bucket объединяет классы детектора в одну счётную группу.
// Порядок групп в конфиге значим: побеждает первая подходящая.
type Bucket struct {
	Name    string   `json:"name" yaml:"name"`
	Classes []string `json:"classes" yaml:"classes"`
}

// CountSnapshot счётчики текущего кадра по группам, не накопительные
type CountSnapshot map[string]int

// TrackKey идентифицирует трек в пределах сессии одной камеры
type TrackKey struct {
	Label   string
	TrackID int
}

type EventKind string

const (
	EventAppear    EventKind = "appear"
	EventUpdate    EventKind = "update"
	EventLost      EventKind = "lost" // внутренний, наружу не уходит
	EventDisappear EventKind = "disappear"
)

// Event общий интерфейс событий жизненного цикла трека
type Event interface {
	Key() TrackKey
	Kind() EventKind
}

// EventMeta общие поля всех событий
type EventMeta struct {
	Event   EventKind `json:"event"`
	Label   string    `json:"label"`
	TrackID int       `json:"track_id"`
	Date    string    `json:"date"`
	Time    string    `json:"time"`
}

func (m EventMeta) Key() TrackKey   { return TrackKey{Label: m.Label, TrackID: m.TrackID} }
func (m EventMeta) Kind() EventKind { return m.Event }

// AppearEvent первое появление трека, ровно один раз за сессию
type AppearEvent struct {
	EventMeta
	Class      string  `json:"type"`
	Confidence float64 `json:"confidence"`
	BBox       [4]int  `json:"bbox"`
	ZoneID     *string `json:"zone_id"`
	Thumbnail  string  `json:"thumbnail,omitempty"` // base64 JPEG
	Mime       string  `json:"mime,omitempty"`
}

// UpdateEvent обновление уже известного трека
type UpdateEvent struct {
	EventMeta
	Class      string  `json:"type"`
	Confidence float64 `json:"confidence"`
	BBox       [4]int  `json:"bbox"`
	ZoneID     *string `json:"zone_id"`
}

// LostEvent трек пропал из кадра; брокер переводит его в отложенный disappear
type LostEvent struct {
	EventMeta
}

// DisappearEvent трек не вернулся за грейс-окно
type DisappearEvent struct {
	EventMeta
}

// StopCause причина остановки камеры, различимая в логах
type StopCause string

const (
	CauseUser    StopCause = "user request"
	CauseTimeout StopCause = "heartbeat timeout"
)

// NewMeta заполняет общие поля события текущим локальным временем
func NewMeta(kind EventKind, label string, trackID int) EventMeta {
	date, tm := Timestamp(time.Now())
	return EventMeta{
		Event:   kind,
		Label:   label,
		TrackID: trackID,
		Date:    date,
		Time:    tm,
	}
}

// Timestamp возвращает дату и время в локальной зоне в виде строк с нулями,
// пригодных для лексикографического сравнения
func Timestamp(t time.Time) (string, string) {
	local := t.Local()
	return local.Format("2006-01-02"), local.Format("15:04:05")
}

// DetectionRow одна строка журнала детекций
type DetectionRow struct {
	ID         int64   `json:"id"`
	Label      string  `json:"label"`
	Class      string  `json:"class"`
	TrackID    int64   `json:"track_id"`
	Confidence float64 `json:"confidence"`
	X1         int     `json:"x1"`
	Y1         int     `json:"y1"`
	X2         int     `json:"x2"`
	Y2         int     `json:"y2"`
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	Event      string  `json:"event"`
	Mime       *string `json:"mime,omitempty"`
	Thumbnail  *string `json:"thumbnail_b64,omitempty"`
}

// QueryFilter параметры выборки из журнала детекций
type QueryFilter struct {
	Start string // включительно, формат "YYYY-MM-DD" или "YYYY-MM-DD HH:MM:SS"
	End   string
	Label string
	Class string
}
