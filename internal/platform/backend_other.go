//go:build !linux && !windows

package platform

func openNative(OpenOptions) (Backend, error) {
	return nil, Unsupported("")
}
