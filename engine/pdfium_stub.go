//go:build !pdfium || !cgo

package engine

// New returns the pdfium-backed engine. This build does not include
// native support; pass -tags pdfium with cgo enabled to get the real
// binding.
func New() (Engine, error) {
	return nil, ErrUnavailable
}
