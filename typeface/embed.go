package typeface

import "golang.org/x/image/font/gofont/goregular"

// DefaultTTF returns the Go Regular true type font file.
func DefaultTTF() []byte {
	return append([]byte{}, goregular.TTF...) // copy contents.
}
