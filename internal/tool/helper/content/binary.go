package content

// sniffLen is how many leading bytes are scanned for NUL, the same window
// git uses.
const sniffLen = 8000

// IsBinaryContent reports whether data looks binary. Text carrying a
// UTF-16 or UTF-32 byte order mark is never binary.
func IsBinaryContent(data []byte) bool {
	if hasWideBOM(data) {
		return false
	}
	n := min(len(data), sniffLen)
	for _, b := range data[:n] {
		if b == 0 {
			return true
		}
	}
	return false
}

func hasWideBOM(data []byte) bool {
	switch {
	case len(data) >= 4 && data[0] == 0x00 && data[1] == 0x00 && data[2] == 0xFE && data[3] == 0xFF:
		return true
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return true
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return true
	}
	return false
}
