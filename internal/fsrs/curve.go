package fsrs

// ReviewPoint is a hypothetical future review for curve projection:
// on Day, stability resets to Stability.
type ReviewPoint struct {
	Day       int
	Stability float64
}

// CurvePoint is one sample of a projected decay curve.
type CurvePoint struct {
	Day       int     `json:"day"`
	Retention float64 `json:"retention"`
	Reviewed  bool    `json:"reviewed"`
}

// Project samples the decay curve for days 0..days inclusive, starting
// from the given stability (already relative to the last review). On a
// day with a scheduled review the sample is (day, 1.0, true) and the
// working stability resets to the event's value; if several events land
// on the same day, the last one in input order wins.
func Project(stability float64, days int, reviews []ReviewPoint) []CurvePoint {
	if days < 0 {
		days = 0
	}

	byDay := make(map[int]float64, len(reviews))
	for _, r := range reviews {
		byDay[r.Day] = r.Stability
	}

	points := make([]CurvePoint, 0, days+1)
	current := stability
	for day := 0; day <= days; day++ {
		if s, ok := byDay[day]; ok {
			current = s
			points = append(points, CurvePoint{Day: day, Retention: 1.0, Reviewed: true})
			continue
		}
		points = append(points, CurvePoint{
			Day:       day,
			Retention: Retrievability(current, float64(day)),
		})
	}
	return points
}
