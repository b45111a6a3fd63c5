package slots

import "bookingbot/models"

// Merge writes every non-empty value of src into dst. Without overwrite a
// value is written only where dst is still empty, so a slot keeps the first
// value it received. It returns the keys that changed.
func Merge(dst *models.SlotSet, src models.SlotSet, overwrite bool) []models.SlotKey {
	var written []models.SlotKey
	for _, key := range models.AllSlots {
		v := src.Get(key)
		if v == "" {
			continue
		}
		if !overwrite && !dst.IsEmpty(key) {
			continue
		}
		if dst.Get(key) == v {
			continue
		}
		dst.Set(key, v)
		written = append(written, key)
	}
	return written
}

// NextMissing returns the first required slot that is still empty, or "" when
// every required slot is filled.
func NextMissing(s *models.SlotSet) models.SlotKey {
	for _, key := range models.RequiredSlots {
		if s.IsEmpty(key) {
			return key
		}
	}
	return ""
}
