package marker

// Marker is one labeled time interval attached to a recording, in seconds
// relative to the recording start.
type Marker struct {
	Onset    float64 `json:"onset"`
	Duration float64 `json:"duration"`
	Label    string  `json:"label"`
}

// End returns the marker's end time.
func (m Marker) End() float64 { return m.Onset + m.Duration }

// ClipToDuration clamps a marker to the [0, total] range of a recording.
// Markers that end up empty are reported as not ok and should be dropped,
// matching how importers treat rows that fall entirely outside the data.
func (m Marker) ClipToDuration(total float64) (Marker, bool) {
	if m.Duration <= 0 || m.Onset >= total {
		return Marker{}, false
	}
	end := m.End()
	if end > total {
		end = total
	}
	onset := m.Onset
	if onset < 0 {
		onset = 0
	}
	if end-onset <= 0 {
		return Marker{}, false
	}
	return Marker{Onset: onset, Duration: end - onset, Label: m.Label}, true
}

// Labels returns the distinct labels present, in first-seen order.
func Labels(markers []Marker) []string {
	seen := make(map[string]bool, len(markers))
	var out []string
	for _, m := range markers {
		if !seen[m.Label] {
			seen[m.Label] = true
			out = append(out, m.Label)
		}
	}
	return out
}
