// shuffle.go - Mischen, Ausduennen und Token-Warmup
package caption

import "math"

// truncateWarmup kuerzt die freien Einheiten waehrend der Warmup-Phase.
// Die Laenge waechst linear von TokenWarmupMin bis zur vollen Zahl der
// freien Einheiten; Keep-Einheiten bleiben immer erhalten. Ein Wert
// unter 1 fuer TokenWarmupStep wird als Anteil an MaxSteps gelesen.
func truncateWarmup(units []Unit, warmupMin int, warmupStep float64, pos Position) []Unit {
	if warmupStep <= 0 {
		return units
	}
	steps := warmupStep
	if steps < 1 {
		steps = math.Floor(warmupStep * float64(pos.MaxSteps))
	}
	if steps <= 0 || float64(pos.Step) >= steps {
		return units
	}

	free := 0
	for _, u := range units {
		if u.Kind != UnitKept {
			free++
		}
	}
	limit := int(math.Floor(float64(pos.Step)*(float64(free-warmupMin)/steps))) + warmupMin
	if limit >= free {
		return units
	}
	if limit < 0 {
		limit = 0
	}

	out := make([]Unit, 0, len(units))
	taken := 0
	for _, u := range units {
		if u.Kind == UnitKept {
			out = append(out, u)
			continue
		}
		if taken < limit {
			out = append(out, u)
			taken++
		}
	}
	return out
}

// shuffleDrop permutiert die freien Einheiten gleichverteilt und
// verwirft danach jede freie Einheit unabhaengig mit TagDropoutRate.
// Keep-Einheiten sind von beidem ausgenommen.
func (p *Processor) shuffleDrop(units []Unit) []Unit {
	if p.params.Shuffle {
		free := make([]int, 0, len(units))
		for i, u := range units {
			if u.Kind != UnitKept {
				free = append(free, i)
			}
		}
		p.rng.Shuffle(len(free), func(i, j int) {
			units[free[i]], units[free[j]] = units[free[j]], units[free[i]]
		})
	}

	if p.params.TagDropoutRate <= 0 {
		return units
	}
	out := make([]Unit, 0, len(units))
	for _, u := range units {
		if u.Kind == UnitKept || p.rng.Float64() >= p.params.TagDropoutRate {
			out = append(out, u)
		}
	}
	return out
}
