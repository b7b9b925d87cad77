package tracecontext

import "fmt"

// Location identifies a position in a mapped instruction stream: which
// image the bytes came from and the logical address within it. It is a
// value type — safe to copy and compare.
type Location struct {
	imagePath string // path of the mapped file the bytes belong to.
	address   uint64 // logical address of the instruction in question.
}

// Loc creates a Location using the provided image path and address.
func Loc(imagePath string, address uint64) Location {
	return Location{imagePath: imagePath, address: address}
}

// ImagePath returns the path of the mapped file.
func (l Location) ImagePath() string { return l.imagePath }

// Address returns the logical address.
func (l Location) Address() uint64 { return l.address }

// String returns a human-readable representation of the location.
// Format: "imagePath:0xADDRESS".
func (l Location) String() string {
	return fmt.Sprintf("%s:0x%x", l.imagePath, l.address)
}
