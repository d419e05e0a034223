package compositor

// FadeAlpha returns the opacity of a subtitle at time t for a segment
// [start, start+duration]. The effective fade is min(fadeDuration, duration/4)
// so short lines still reach full opacity for at least half their screen time.
func FadeAlpha(t, start, duration, fadeDuration float64) float64 {
	if duration <= 0 {
		return 0
	}
	if t < start || t > start+duration {
		return 0
	}

	f := fadeDuration
	if limit := duration / 4; f > limit {
		f = limit
	}
	if f <= 0 {
		return 1
	}

	rel := t - start
	if rel < f {
		return rel / f
	}
	if rem := start + duration - t; rem < f {
		return rem / f
	}
	return 1
}
