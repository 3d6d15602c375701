package zones

import "github.com/Karol-NMD/YOLO-Witness/internal/models"

// Classify решает, попадает ли центроид детекции в зоны камеры.
// Пустой список зон означает отсутствие фильтрации: детекция принимается
// без зоны (nil, true). Иначе побеждает первая по порядку зона, содержащая
// точку (граница считается внутри). Если ни одна не содержит, детекция
// отбрасывается целиком (nil, false).
func Classify(cx, cy int, zs []models.Zone) (*string, bool) {
	if len(zs) == 0 {
		return nil, true
	}
	for _, z := range zs {
		if len(z.Points) < 3 {
			continue
		}
		if contains(cx, cy, z.Points) {
			id := z.ID
			return &id, true
		}
	}
	return nil, false
}

// contains проверяет принадлежность точки многоугольнику методом луча,
// точки на ребре считаются внутренними
func contains(px, py int, poly [][2]int) bool {
	n := len(poly)
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		x1, y1 := poly[j][0], poly[j][1]
		x2, y2 := poly[i][0], poly[i][1]

		if onSegment(px, py, x1, y1, x2, y2) {
			return true
		}

		if (y1 > py) != (y2 > py) {
			// пересечение горизонтального луча с ребром, без деления
			cross := (x2-x1)*(py-y1) - (px-x1)*(y2-y1)
			if y2 > y1 {
				if cross > 0 {
					inside = !inside
				}
			} else {
				if cross < 0 {
					inside = !inside
				}
			}
		}
	}
	return inside
}

// onSegment проверяет, лежит ли точка на отрезке
func onSegment(px, py, x1, y1, x2, y2 int) bool {
	cross := (x2-x1)*(py-y1) - (px-x1)*(y2-y1)
	if cross != 0 {
		return false
	}
	return min(x1, x2) <= px && px <= max(x1, x2) &&
		min(y1, y2) <= py && py <= max(y1, y2)
}
