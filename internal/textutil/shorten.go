package textutil

import "unicode/utf8"

// Ellipsize trims value to at most limit runes, replacing the middle with an
// ellipsis so both the start and the file name at the end stay visible.
func Ellipsize(value string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(value) <= limit {
		return value
	}
	if limit <= 3 {
		return string([]rune(value)[:limit])
	}
	runes := []rune(value)
	keep := limit - 1
	head := keep / 2
	tail := keep - head
	return string(runes[:head]) + "…" + string(runes[len(runes)-tail:])
}
