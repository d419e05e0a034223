package palette

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// RGB is a single gradient stop, channels 0-255.
type RGB struct {
	R, G, B uint8
}

// Palette is an ordered, non-empty list of gradient stops.
type Palette []RGB

// Палитры из оригинального набора + вибрантные tiktok_* для вертикальных видео.
var registry = map[string]Palette{
	"sunset":   {{255, 94, 77}, {255, 184, 140}, {253, 216, 193}},
	"ocean":    {{26, 42, 108}, {58, 96, 115}, {148, 187, 233}},
	"forest":   {{22, 56, 48}, {46, 125, 50}, {129, 199, 132}},
	"lavender": {{94, 53, 177}, {155, 81, 224}, {206, 147, 216}},
	"rose":     {{136, 14, 79}, {194, 24, 91}, {233, 30, 99}},
	"golden":   {{255, 160, 0}, {255, 213, 79}, {255, 245, 157}},
	"midnight": {{13, 27, 42}, {27, 38, 59}, {65, 90, 119}},
	"peach":    {{255, 138, 101}, {255, 209, 163}, {255, 234, 213}},
	"mint":     {{0, 137, 123}, {0, 188, 212}, {128, 222, 234}},
	"autumn":   {{191, 54, 12}, {230, 81, 0}, {255, 138, 101}},

	"tiktok_cyber":  {{255, 0, 128}, {128, 0, 255}, {0, 255, 255}},
	"tiktok_sunset": {{255, 50, 100}, {255, 150, 50}, {255, 220, 100}},
	"tiktok_ocean":  {{0, 150, 200}, {0, 200, 255}, {100, 220, 255}},
	"tiktok_berry":  {{100, 0, 150}, {200, 50, 150}, {255, 100, 150}},
	"tiktok_fire":   {{150, 0, 0}, {255, 100, 0}, {255, 200, 0}},
	"tiktok_neon":   {{20, 0, 40}, {60, 0, 120}, {0, 255, 200}},
}

// Get returns a copy of the named palette.
func Get(name string) (Palette, error) {
	p, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("неизвестная палитра: %s", name)
	}
	out := make(Palette, len(p))
	copy(out, p)
	return out, nil
}

// Names returns all registered palette names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Random picks a palette name, preferring the vibrant tiktok_* subset.
func Random(r *rand.Rand) string {
	var vibrant []string
	for _, n := range Names() {
		if strings.HasPrefix(n, "tiktok_") {
			vibrant = append(vibrant, n)
		}
	}
	pool := vibrant
	if len(pool) == 0 {
		pool = Names()
	}
	return pool[r.Intn(len(pool))]
}

// Resolve maps a user-facing palette argument to a concrete palette.
// Empty string or "random" picks a random one.
func Resolve(name string, r *rand.Rand) (string, Palette, error) {
	if name == "" || name == "random" {
		name = Random(r)
	}
	p, err := Get(name)
	if err != nil {
		return "", nil, err
	}
	return name, p, nil
}
