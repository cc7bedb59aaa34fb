package models

import "strconv"

func itoa(n int) string {
	return strconv.Itoa(n)
}

// IntPtr returns a pointer to a copy of n.
func IntPtr(n int) *int {
	return &n
}
