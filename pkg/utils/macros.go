package utils

// BoolToString returns "1" for true and "0" for false.
func BoolToString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
