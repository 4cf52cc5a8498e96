//go:build windows

package platform

import (
	"errors"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Shared WinAPI DLL/proc handles. Lazy procs resolve on first call, so a
// missing export surfaces as a call error instead of a load failure.
var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	dwmapi = windows.NewLazySystemDLL("dwmapi.dll")

	procFindWindowW          = user32.NewProc("FindWindowW")
	procIsWindow             = user32.NewProc("IsWindow")
	procGetClassNameW        = user32.NewProc("GetClassNameW")
	procGetWindowTextLengthW = user32.NewProc("GetWindowTextLengthW")
	procGetWindowTextW       = user32.NewProc("GetWindowTextW")
	procGetWindowRect        = user32.NewProc("GetWindowRect")
	procGetClientRect        = user32.NewProc("GetClientRect")
	procClientToScreen       = user32.NewProc("ClientToScreen")
	procGetWindowLongW       = user32.NewProc("GetWindowLongW")
	procSetWindowPos         = user32.NewProc("SetWindowPos")
	procMoveWindow           = user32.NewProc("MoveWindow")
	procGetForegroundWindow  = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow  = user32.NewProc("SetForegroundWindow")
	procGetWindowThreadPid   = user32.NewProc("GetWindowThreadProcessId")

	procDwmGetWindowAttribute = dwmapi.NewProc("DwmGetWindowAttribute")
)

const (
	wsExTopmost              = 0x00000008
	swpNoSize                = 0x0001
	swpNoMove                = 0x0002
	dwmwaExtendedFrameBounds = 9
	classNameBufferLen       = 1024
)

var (
	gwlExStyle    = int32(-20)
	hwndTopmost   = ^uintptr(0) // (HWND)-1
	hwndNoTopmost = ^uintptr(1) // (HWND)-2
)

type winRect struct {
	Left, Top, Right, Bottom int32
}

func (r winRect) toRect() Rect {
	return Rect{
		X:      int(r.Left),
		Y:      int(r.Top),
		Width:  int(r.Right - r.Left),
		Height: int(r.Bottom - r.Top),
	}
}

type winPoint struct {
	X, Y int32
}

// WindowsBackend implements Backend over user32 and dwmapi.
type WindowsBackend struct{}

var _ Backend = (*WindowsBackend)(nil)

func openNative(OpenOptions) (Backend, error) {
	return NewWindowsBackend(), nil
}

// NewWindowsBackend returns the Win32 backend. It holds no resources.
func NewWindowsBackend() *WindowsBackend {
	return &WindowsBackend{}
}

func (b *WindowsBackend) Name() string { return "win32" }

func (b *WindowsBackend) Close() error { return nil }

func (b *WindowsBackend) WindowExists(h Handle) bool {
	if h == 0 {
		return false
	}
	r, _, _ := procIsWindow.Call(uintptr(h))
	return r != 0
}

// FindWindow wraps FindWindowW. Unlike FindWindowW, both arguments may not be empty.
func (b *WindowsBackend) FindWindow(class, title string) (Handle, error) {
	if err := (Query{Class: class, Title: title}).Validate(); err != nil {
		return 0, err
	}
	classPtr, err := optionalUTF16Ptr(class)
	if err != nil {
		return 0, CallFailed("FindWindowW", 0, 0, err)
	}
	titlePtr, err := optionalUTF16Ptr(title)
	if err != nil {
		return 0, CallFailed("FindWindowW", 0, 0, err)
	}
	r, _, _ := procFindWindowW.Call(uintptr(unsafe.Pointer(classPtr)), uintptr(unsafe.Pointer(titlePtr)))
	if r == 0 {
		return 0, NotFound(class, title)
	}
	return Handle(r), nil
}

func (b *WindowsBackend) ForegroundWindow() (Handle, error) {
	r, _, _ := procGetForegroundWindow.Call()
	if r == 0 {
		return 0, CallFailed("GetForegroundWindow", 0, 0, nil)
	}
	return Handle(r), nil
}

func (b *WindowsBackend) SetForeground(h Handle) error {
	if !b.WindowExists(h) {
		return WindowNotExist(h)
	}
	r, _, _ := procSetForegroundWindow.Call(uintptr(h))
	if r == 0 {
		return CallFailed("SetForegroundWindow", h, 0, nil)
	}
	return nil
}

func (b *WindowsBackend) ClassName(h Handle) (string, error) {
	if !b.WindowExists(h) {
		return "", WindowNotExist(h)
	}
	buf := make([]uint16, classNameBufferLen)
	r, _, callErr := procGetClassNameW.Call(uintptr(h), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if r == 0 {
		return "", CallFailed("GetClassNameW", h, errnoCode(callErr), nil)
	}
	return windows.UTF16ToString(buf[:r]), nil
}

// Title returns the window text. An untitled window yields "" without error.
func (b *WindowsBackend) Title(h Handle) (string, error) {
	if !b.WindowExists(h) {
		return "", WindowNotExist(h)
	}
	n, _, callErr := procGetWindowTextLengthW.Call(uintptr(h))
	if n == 0 {
		if code := errnoCode(callErr); code != 0 {
			return "", CallFailed("GetWindowTextLengthW", h, code, nil)
		}
		return "", nil
	}
	buf := make([]uint16, n+1)
	r, _, callErr := procGetWindowTextW.Call(uintptr(h), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if r == 0 {
		if code := errnoCode(callErr); code != 0 {
			return "", CallFailed("GetWindowTextW", h, code, nil)
		}
	}
	return windows.UTF16ToString(buf[:r]), nil
}

func (b *WindowsBackend) WindowBounds(h Handle) (Rect, error) {
	if !b.WindowExists(h) {
		return Rect{}, WindowNotExist(h)
	}
	var rc winRect
	r, _, callErr := procGetWindowRect.Call(uintptr(h), uintptr(unsafe.Pointer(&rc)))
	if r == 0 {
		return Rect{}, CallFailed("GetWindowRect", h, errnoCode(callErr), nil)
	}
	return rc.toRect(), nil
}

// FrameBounds uses DWMWA_EXTENDED_FRAME_BOUNDS, which excludes the drop shadow.
func (b *WindowsBackend) FrameBounds(h Handle) (Rect, error) {
	if !b.WindowExists(h) {
		return Rect{}, WindowNotExist(h)
	}
	if err := procDwmGetWindowAttribute.Find(); err != nil {
		return Rect{}, CallFailed("DwmGetWindowAttribute", h, 0, err)
	}
	var rc winRect
	hr, _, _ := procDwmGetWindowAttribute.Call(
		uintptr(h),
		dwmwaExtendedFrameBounds,
		uintptr(unsafe.Pointer(&rc)),
		unsafe.Sizeof(rc),
	)
	if hr != 0 {
		return Rect{}, CallFailed("DwmGetWindowAttribute", h, int64(int32(hr)), nil)
	}
	return rc.toRect(), nil
}

func (b *WindowsBackend) ClientOrigin(h Handle) (Point, error) {
	if !b.WindowExists(h) {
		return Point{}, WindowNotExist(h)
	}
	var pt winPoint
	r, _, _ := procClientToScreen.Call(uintptr(h), uintptr(unsafe.Pointer(&pt)))
	if r == 0 {
		return Point{}, CallFailed("ClientToScreen", h, 0, nil)
	}
	return Point{X: int(pt.X), Y: int(pt.Y)}, nil
}

func (b *WindowsBackend) ClientSize(h Handle) (Size, error) {
	if !b.WindowExists(h) {
		return Size{}, WindowNotExist(h)
	}
	var rc winRect
	r, _, callErr := procGetClientRect.Call(uintptr(h), uintptr(unsafe.Pointer(&rc)))
	if r == 0 {
		return Size{}, CallFailed("GetClientRect", h, errnoCode(callErr), nil)
	}
	return Size{Width: int(rc.Right - rc.Left), Height: int(rc.Bottom - rc.Top)}, nil
}

func (b *WindowsBackend) ProcessID(h Handle) (int, error) {
	if !b.WindowExists(h) {
		return 0, WindowNotExist(h)
	}
	var pid uint32
	r, _, callErr := procGetWindowThreadPid.Call(uintptr(h), uintptr(unsafe.Pointer(&pid)))
	if r == 0 || pid == 0 {
		return 0, CallFailed("GetWindowThreadProcessId", h, errnoCode(callErr), nil)
	}
	return int(pid), nil
}

func (b *WindowsBackend) ProcessPath(pid int) (string, error) {
	proc, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return "", CallFailed("OpenProcess", 0, errnoCode(err), err)
	}
	defer windows.CloseHandle(proc)

	var size uint32 = 4096
	buf := make([]uint16, size)
	if err := windows.QueryFullProcessImageName(proc, 0, &buf[0], &size); err != nil {
		return "", CallFailed("QueryFullProcessImageNameW", 0, errnoCode(err), err)
	}
	return windows.UTF16ToString(buf[:size]), nil
}

func (b *WindowsBackend) Topmost(h Handle) (bool, error) {
	if !b.WindowExists(h) {
		return false, WindowNotExist(h)
	}
	r, _, callErr := procGetWindowLongW.Call(uintptr(h), uintptr(gwlExStyle))
	if r == 0 {
		if code := errnoCode(callErr); code != 0 {
			return false, CallFailed("GetWindowLongW", h, code, nil)
		}
	}
	return uint32(r)&wsExTopmost != 0, nil
}

func (b *WindowsBackend) SetTopmost(h Handle, topmost bool) error {
	if !b.WindowExists(h) {
		return WindowNotExist(h)
	}
	insertAfter := hwndNoTopmost
	if topmost {
		insertAfter = hwndTopmost
	}
	r, _, callErr := procSetWindowPos.Call(uintptr(h), insertAfter, 0, 0, 0, 0, swpNoMove|swpNoSize)
	if r == 0 {
		return CallFailed("SetWindowPos", h, errnoCode(callErr), nil)
	}
	return nil
}

func (b *WindowsBackend) MoveResize(h Handle, bounds Rect) error {
	if !b.WindowExists(h) {
		return WindowNotExist(h)
	}
	r, _, callErr := procMoveWindow.Call(
		uintptr(h),
		uintptr(int32(bounds.X)),
		uintptr(int32(bounds.Y)),
		uintptr(int32(bounds.Width)),
		uintptr(int32(bounds.Height)),
		1, // repaint
	)
	if r == 0 {
		return CallFailed("MoveWindow", h, errnoCode(callErr), nil)
	}
	return nil
}

// optionalUTF16Ptr maps "" to NULL so FindWindowW treats it as a wildcard.
func optionalUTF16Ptr(s string) (*uint16, error) {
	if s == "" {
		return nil, nil
	}
	return windows.UTF16PtrFromString(s)
}

// errnoCode extracts a non-zero Win32 error code from a lazy-proc call error.
func errnoCode(err error) int64 {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int64(errno)
	}
	return 0
}
