//go:build !linux && !windows

package platform

// OpenFile is unsupported on this platform.
func OpenFile(path string) error {
	return ErrUnsupported
}

// ShowMessage is unsupported on this platform.
func ShowMessage(title, text string) error {
	return ErrUnsupported
}
