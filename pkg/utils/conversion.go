package utils

import "strconv"

// StringToUint64 parses a numeric string, returning 0 on failure.
// Used for ID path parameters.
func StringToUint64(str string) uint64 {
	val, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0
	}
	return val
}

// NormalizePhone strips everything except digits and a leading plus sign.
func NormalizePhone(phone string) string {
	out := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		ch := phone[i]
		if ch >= '0' && ch <= '9' {
			out = append(out, ch)
		} else if ch == '+' && len(out) == 0 {
			out = append(out, ch)
		}
	}
	return string(out)
}
