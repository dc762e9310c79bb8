//go:build linux

// Package fbdev maps a Linux framebuffer device for the allocator.
//
// The Mapper asks the driver for a virtual height of Buffers screens so the
// allocator can hand out one slot per screen for page flipping. Drivers that
// refuse get a single slot. The mapping is made once and lives until Close.
package fbdev

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/gralloc/gralloc"
	"github.com/joshuapare/gralloc/gralloc/format"
	"github.com/joshuapare/gralloc/internal/logger"
	"github.com/joshuapare/gralloc/internal/mmap"
)

var (
	// ErrNoDevice is returned when none of the configured nodes can be opened.
	ErrNoDevice = errors.New("fbdev: no framebuffer device")

	// ErrGeometry is returned when the reported screen cannot hold one slot.
	ErrGeometry = errors.New("fbdev: unusable screen geometry")

	// ErrClosed is returned by MapFramebuffer after Close.
	ErrClosed = errors.New("fbdev: mapper closed")
)

// DefaultPaths are tried in order.
var DefaultPaths = []string{"/dev/graphics/fb0", "/dev/fb0"}

// DefaultBuffers is the number of screens requested for page flipping.
const DefaultBuffers = 2

// Options configures a Mapper.
type Options struct {
	// Paths are the device nodes to try, in order.
	// Default: DefaultPaths
	Paths []string

	// Buffers is the number of screens to request.
	// Default: DefaultBuffers
	Buffers uint32

	// PageSize rounds the mapping length.
	// Default: os.Getpagesize()
	PageSize int

	// Logger receives mapping notices.
	// Default: logger.L
	Logger *slog.Logger
}

// DefaultOptions returns the standard device search order.
func DefaultOptions() Options {
	return Options{
		Paths:    DefaultPaths,
		Buffers:  DefaultBuffers,
		PageSize: os.Getpagesize(),
	}
}

// Info describes the mapped display.
type Info struct {
	Path         string `json:"path"`
	ID           string `json:"id"`
	XRes         uint32 `json:"xres"`
	YRes         uint32 `json:"yres"`
	BitsPerPixel uint32 `json:"bits_per_pixel"`
	LineLength   uint32 `json:"line_length"`
	Buffers      uint32 `json:"buffers"`
	PageFlip     bool   `json:"page_flip"`
	MemStart     uint64 `json:"mem_start"`
	MemLen       uint32 `json:"mem_len"`
}

// Mapper implements gralloc.FramebufferMapper.
type Mapper struct {
	opts Options

	mu     sync.Mutex
	fb     *gralloc.Framebuffer
	info   Info
	closed bool
}

var _ gralloc.FramebufferMapper = (*Mapper)(nil)

// New returns a Mapper. The device is opened on the first MapFramebuffer.
func New(opts Options) *Mapper {
	def := DefaultOptions()
	if len(opts.Paths) == 0 {
		opts.Paths = def.Paths
	}
	if opts.Buffers == 0 {
		opts.Buffers = def.Buffers
	}
	if opts.PageSize <= 0 {
		opts.PageSize = def.PageSize
	}
	return &Mapper{opts: opts}
}

func (m *Mapper) log() *slog.Logger {
	if m.opts.Logger != nil {
		return m.opts.Logger
	}
	return logger.L
}

// MapFramebuffer opens and maps the device, or returns the existing mapping.
func (m *Mapper) MapFramebuffer() (*gralloc.Framebuffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if m.fb != nil {
		return m.fb, nil
	}

	fd, path, err := m.open()
	if err != nil {
		return nil, err
	}
	fb, info, err := m.mapDevice(fd)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("fbdev: %s: %w", path, err)
	}
	info.Path = path
	m.fb, m.info = fb, info

	m.log().Info("framebuffer device mapped",
		"path", path, "id", info.ID,
		"xres", info.XRes, "yres", info.YRes, "bpp", info.BitsPerPixel,
		"buffers", info.Buffers, "page_flip", info.PageFlip)
	return fb, nil
}

// Info returns the display description. It is zero until the first
// successful MapFramebuffer.
func (m *Mapper) Info() Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info
}

// Close unmaps the framebuffer and closes the device. Buffers carved from
// the mapping must not be used afterwards.
func (m *Mapper) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if m.fb == nil {
		return nil
	}
	err := errors.Join(mmap.Unmap(m.fb.Data), unix.Close(m.fb.FD))
	m.fb = nil
	if err != nil {
		return fmt.Errorf("fbdev: close: %w", err)
	}
	return nil
}

func (m *Mapper) open() (int, string, error) {
	var errs []error
	for _, p := range m.opts.Paths {
		fd, err := unix.Open(p, unix.O_RDWR|unix.O_CLOEXEC, 0)
		if err == nil {
			return fd, p, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", p, err))
	}
	return -1, "", fmt.Errorf("%w (tried %s): %w", ErrNoDevice, strings.Join(m.opts.Paths, ", "), errors.Join(errs...))
}

func (m *Mapper) mapDevice(fd int) (*gralloc.Framebuffer, Info, error) {
	var v varScreenInfo
	if err := getVar(fd, &v); err != nil {
		return nil, Info{}, fmt.Errorf("get variable screen info: %w", err)
	}

	flip := true
	v.YResVirtual = uint32(format.AlignFramebufferRows(int(v.YRes))) * m.opts.Buffers
	v.Activate = activateNow | activateForce
	if err := putVar(fd, &v); err != nil {
		m.log().Warn("framebuffer refuses page flipping", "buffers", m.opts.Buffers, "err", err)
		flip = false
	}
	if err := getVar(fd, &v); err != nil {
		return nil, Info{}, fmt.Errorf("get variable screen info: %w", err)
	}
	if !flip {
		v.YResVirtual = v.YRes
	}

	var f fixScreenInfo
	if err := getFix(fd, &f); err != nil {
		return nil, Info{}, fmt.Errorf("get fixed screen info: %w", err)
	}

	g, err := computeGeometry(f.LineLength, f.SmemLen, v.YRes, v.YResVirtual, m.opts.PageSize)
	if err != nil {
		return nil, Info{}, err
	}

	data, err := mmap.Map(fd, g.mapSize)
	if err != nil {
		return nil, Info{}, err
	}

	fb := &gralloc.Framebuffer{
		FD:         fd,
		Base:       mmap.Addr(data),
		Phys:       f.SmemStart,
		LineLength: f.LineLength,
		YRes:       v.YRes,
		NumBuffers: g.buffers,
		Data:       data,
	}
	info := Info{
		ID:           f.id(),
		XRes:         v.XRes,
		YRes:         v.YRes,
		BitsPerPixel: v.BitsPerPixel,
		LineLength:   f.LineLength,
		Buffers:      g.buffers,
		PageFlip:     g.buffers > 1,
		MemStart:     uint64(f.SmemStart),
		MemLen:       f.SmemLen,
	}
	return fb, info, nil
}

type geometry struct {
	buffers uint32
	mapSize int
}

// computeGeometry derives the slot count and mapping length. Slots are
// LineLength * align128(yres) bytes; the count is what the virtual height
// holds, clamped to the allocator's limit and to the device memory.
func computeGeometry(lineLength, smemLen, yres, yresVirtual uint32, pageSize int) (geometry, error) {
	rows := uint64(format.AlignFramebufferRows(int(yres)))
	slot := uint64(lineLength) * rows
	if slot == 0 {
		return geometry{}, fmt.Errorf("%w: line length %d, yres %d", ErrGeometry, lineLength, yres)
	}

	n := uint64(yresVirtual) / rows
	if n == 0 {
		n = 1
	}
	n = min(n, format.MaxFramebufferSlots)
	if smemLen != 0 {
		n = min(n, uint64(smemLen)/slot)
		if n == 0 {
			return geometry{}, fmt.Errorf("%w: %d bytes of video memory, %d per screen", ErrGeometry, smemLen, slot)
		}
	}
	return geometry{
		buffers: uint32(n),
		mapSize: format.AlignPage(int(slot*n), pageSize),
	}, nil
}
