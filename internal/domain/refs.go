package domain

// ToggleID removes id from ids when present and appends it otherwise. The
// input slice is never modified, so applying the same toggle twice gives back
// the original contents.
func ToggleID(ids []string, id string) []string {
	out := make([]string, 0, len(ids)+1)
	found := false
	for _, v := range ids {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, id)
	}
	return out
}
