package recording

import "strings"

// junk prefixes some acquisition systems prepend to electrode names
var nameJunk = []string{"EEG ", "EEG.", "EEG_", "CHAN ", "CHAN.", " "}

// NormalizeName cleans an electrode name to its bare uppercase form
// ("eeg Fp1 " -> "FP1") so catalogs from different systems line up with
// standard montage labels.
func NormalizeName(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	for _, junk := range nameJunk {
		n = strings.ReplaceAll(n, junk, "")
	}
	return n
}

// NormalizeChannels returns the cleaned form of every name, preserving order.
func NormalizeChannels(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = NormalizeName(n)
	}
	return out
}
