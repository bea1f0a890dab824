//go:build linux

package keyboard

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

const virtualDeviceName = "talki-kbd"

// Linux input event types.
const (
	evSyn uint16 = 0x00
	evKey uint16 = 0x01
)

const eventSize = 24 // struct input_event on 64-bit

// inputEvent mirrors struct input_event.
type inputEvent struct {
	sec   int64
	usec  int64
	typ   uint16
	code  uint16
	value int32
}

func decodeEvent(b []byte) inputEvent {
	return inputEvent{
		sec:   int64(binary.NativeEndian.Uint64(b[0:])),
		usec:  int64(binary.NativeEndian.Uint64(b[8:])),
		typ:   binary.NativeEndian.Uint16(b[16:]),
		code:  binary.NativeEndian.Uint16(b[18:]),
		value: int32(binary.NativeEndian.Uint32(b[20:])),
	}
}

func encodeEvent(ev inputEvent) []byte {
	b := make([]byte, eventSize)
	binary.NativeEndian.PutUint64(b[0:], uint64(ev.sec))
	binary.NativeEndian.PutUint64(b[8:], uint64(ev.usec))
	binary.NativeEndian.PutUint16(b[16:], ev.typ)
	binary.NativeEndian.PutUint16(b[18:], ev.code)
	binary.NativeEndian.PutUint32(b[20:], uint32(ev.value))
	return b
}

// ioctl request encoding (asm-generic).
func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<30 | size<<16 | typ<<8 | nr
}

func iocWrite(typ, nr, size uintptr) uintptr { return ioc(1, typ, nr, size) }
func iocRead(typ, nr, size uintptr) uintptr  { return ioc(2, typ, nr, size) }
func iocNone(typ, nr uintptr) uintptr        { return ioc(0, typ, nr, 0) }

var (
	eviocgrab = iocWrite('E', 0x90, 4)

	uiSetEvbit   = iocWrite('U', 100, 4)
	uiSetKeybit  = iocWrite('U', 101, 4)
	uiDevCreate  = iocNone('U', 1)
	uiDevDestroy = iocNone('U', 2)
	uiDevSetup   = iocWrite('U', 3, uinputSetupSize)
)

func ioctl(fd uintptr, req uintptr, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}

func ioctlPtr(fd uintptr, req uintptr, b []byte) error {
	return ioctl(fd, req, uintptr(unsafe.Pointer(&b[0])))
}

// grabDevice toggles exclusive access on an evdev device.
func grabDevice(f *os.File, grab bool) error {
	arg := uintptr(0)
	if grab {
		arg = 1
	}
	return ioctl(f.Fd(), eviocgrab, arg)
}

// isKeyboard reports whether the device advertises the letter keys, which is
// how real keyboards are told apart from power buttons and consumer dials.
// The virtual output device is excluded by name.
func isKeyboard(f *os.File) bool {
	name := make([]byte, 256)
	if err := ioctlPtr(f.Fd(), iocRead('E', 0x06, uintptr(len(name))), name); err == nil {
		trimmed := strings.TrimRight(string(name), "\x00")
		if strings.Contains(trimmed, virtualDeviceName) {
			return false
		}
	}

	// EVIOCGBIT(EV_KEY): bitmask of supported key codes.
	keys := make([]byte, (keyMax+7)/8)
	if err := ioctlPtr(f.Fd(), iocRead('E', 0x20+uintptr(evKey), uintptr(len(keys))), keys); err != nil {
		return false
	}
	hasBit := func(code uint16) bool {
		return keys[code/8]&(1<<(code%8)) != 0
	}
	return hasBit(codeA) && hasBit(codeZ) && hasBit(codeSpace)
}

const keyMax = 0x2ff

// uinput_setup: struct input_id (4 x u16), name[80], ff_effects_max u32.
const uinputSetupSize = 8 + 80 + 4

// uinputDevice is a kernel-level virtual keyboard. Events written to it are
// indistinguishable from hardware input, which makes re-emission and
// synthesis work on both X11 and Wayland.
type uinputDevice struct {
	f *os.File
	w io.Writer
}

func newUinputDevice(name string) (*uinputDevice, error) {
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY, 0)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("open /dev/uinput: %w", ErrPermissionDenied)
		}
		return nil, fmt.Errorf("open /dev/uinput: %w", err)
	}

	fd := f.Fd()
	if err := ioctl(fd, uiSetEvbit, uintptr(evKey)); err != nil {
		f.Close()
		return nil, fmt.Errorf("enable EV_KEY: %w", err)
	}
	for code := uintptr(1); code <= keyMax; code++ {
		if err := ioctl(fd, uiSetKeybit, code); err != nil {
			f.Close()
			return nil, fmt.Errorf("enable key %d: %w", code, err)
		}
	}

	setup := make([]byte, uinputSetupSize)
	binary.NativeEndian.PutUint16(setup[0:], 0x06) // BUS_VIRTUAL
	copy(setup[8:8+79], name)
	if err := ioctlPtr(fd, uiDevSetup, setup); err != nil {
		f.Close()
		return nil, fmt.Errorf("uinput setup: %w", err)
	}
	if err := ioctl(fd, uiDevCreate, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("uinput create: %w", err)
	}

	return &uinputDevice{f: f, w: f}, nil
}

func (u *uinputDevice) writeEvent(ev inputEvent) error {
	_, err := u.w.Write(encodeEvent(ev))
	return err
}

func (u *uinputDevice) emit(typ, code uint16, value int32) error {
	if err := u.writeEvent(inputEvent{typ: typ, code: code, value: value}); err != nil {
		return err
	}
	return u.writeEvent(inputEvent{typ: evSyn})
}

// typeCode emits one press/release pair, wrapped in shift if requested.
// Once shift is down it is always released, even when the tap fails,
// so an error never leaves the virtual keyboard with a modifier held.
func (u *uinputDevice) typeCode(code uint16, shift bool) error {
	if shift {
		if err := u.emit(evKey, codeLeftShift, 1); err != nil {
			return err
		}
	}
	err := u.emit(evKey, code, 1)
	if err == nil {
		err = u.emit(evKey, code, 0)
	}
	if shift {
		if rerr := u.emit(evKey, codeLeftShift, 0); err == nil {
			err = rerr
		}
	}
	return err
}

// chord holds the modifier, taps the key, then releases the modifier.
// The modifier release runs even when the tap fails.
func (u *uinputDevice) chord(modifier, code uint16) error {
	if err := u.emit(evKey, modifier, 1); err != nil {
		return err
	}
	err := u.emit(evKey, code, 1)
	if err == nil {
		err = u.emit(evKey, code, 0)
	}
	if rerr := u.emit(evKey, modifier, 0); err == nil {
		err = rerr
	}
	return err
}

func (u *uinputDevice) close() error {
	if err := ioctl(u.f.Fd(), uiDevDestroy, 0); err != nil {
		u.f.Close()
		return fmt.Errorf("uinput destroy: %w", err)
	}
	return u.f.Close()
}
