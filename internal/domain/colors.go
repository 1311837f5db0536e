package domain

import "math/rand/v2"

// Gradient is the two-stop color pair rendered behind a participant's tile.
type Gradient struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// palette is the fixed set of assignable gradients.
var palette = []Gradient{
	{From: "#2563eb", To: "#4f46e5"},
	{From: "#0891b2", To: "#0d9488"},
	{From: "#059669", To: "#10b981"},
	{From: "#ca8a04", To: "#ea580c"},
	{From: "#dc2626", To: "#ec4899"},
	{From: "#9333ea", To: "#8b5cf6"},
	{From: "#4f46e5", To: "#9333ea"},
	{From: "#ec4899", To: "#f43f5e"},
	{From: "#0d9488", To: "#0891b2"},
	{From: "#ea580c", To: "#dc2626"},
	{From: "#10b981", To: "#059669"},
	{From: "#8b5cf6", To: "#9333ea"},
}

// PickColor prefers a gradient nobody in the room holds yet; once the palette
// is exhausted it falls back to a random pick.
func PickColor(used []Gradient) Gradient {
	available := make([]Gradient, 0, len(palette))
	for _, c := range palette {
		taken := false
		for _, u := range used {
			if u == c {
				taken = true
				break
			}
		}
		if !taken {
			available = append(available, c)
		}
	}
	if len(available) == 0 {
		return palette[rand.IntN(len(palette))]
	}
	return available[rand.IntN(len(available))]
}
