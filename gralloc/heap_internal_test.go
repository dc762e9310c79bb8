package gralloc

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/gralloc/gralloc/format"
)

type stubAllocator struct {
	opens int
	err   error
	conn  ContiguousConn
}

func (s *stubAllocator) Open() (ContiguousConn, error) {
	s.opens++
	if s.err != nil {
		return nil, s.err
	}
	return s.conn, nil
}

type stubConn struct{ ContiguousConn }

type stubStrategy struct {
	n     string
	calls int
	h     *BufferHandle
	err   error
}

func (s *stubStrategy) name() string { return s.n }

func (s *stubStrategy) allocate(heapRequest) (*BufferHandle, error) {
	s.calls++
	return s.h, s.err
}

func TestEnsureConnected_StateMachine(t *testing.T) {
	conn := stubConn{}
	a := &stubAllocator{conn: conn}
	m := New(Options{Contiguous: a})
	require.Equal(t, connUninitialized, m.ion.phase)

	for i := 0; i < 3; i++ {
		got, err := m.ensureConnected()
		require.NoError(t, err)
		require.Equal(t, conn, got)
	}
	require.Equal(t, 1, a.opens)
	require.Equal(t, connOpen, m.ion.phase)
}

func TestEnsureConnected_StickyFailure(t *testing.T) {
	boom := errors.New("no /dev/ion")
	a := &stubAllocator{err: boom}
	m := New(Options{Contiguous: a})

	for i := 0; i < 5; i++ {
		_, err := m.ensureConnected()
		require.ErrorIs(t, err, boom)
	}
	require.Equal(t, 1, a.opens)
	require.Equal(t, connFailed, m.ion.phase)
	require.Equal(t, "failed", m.ion.phase.String())
}

func TestAllocHeap_StrategyOrder(t *testing.T) {
	want := &BufferHandle{}
	first := &stubStrategy{n: "first", err: errNextStrategy}
	second := &stubStrategy{n: "second", h: want}
	third := &stubStrategy{n: "third"}

	m := New(Options{PageSize: 4096})
	m.heap = []heapStrategy{first, second, third}

	h, err := m.allocHeap(1, 0)
	require.NoError(t, err)
	require.Same(t, want, h)
	require.Equal(t, 1, first.calls)
	require.Equal(t, 1, second.calls)
	require.Zero(t, third.calls)
}

func TestAllocHeap_TerminalErrorStops(t *testing.T) {
	boom := errors.New("boom")
	first := &stubStrategy{n: "first", err: boom}
	second := &stubStrategy{n: "second", h: &BufferHandle{}}

	m := New(Options{PageSize: 4096})
	m.heap = []heapStrategy{first, second}

	_, err := m.allocHeap(1, 0)
	require.ErrorIs(t, err, boom)
	require.Zero(t, second.calls)
}

func TestAllocHeap_Exhausted(t *testing.T) {
	m := New(Options{PageSize: 4096})
	m.heap = []heapStrategy{&stubStrategy{n: "only", err: errNextStrategy}}

	_, err := m.allocHeap(1, 0)
	require.ErrorIs(t, err, ErrOutOfMemory)
}

func TestContiguousStrategy_SkipsPlainUsage(t *testing.T) {
	a := &stubAllocator{}
	m := New(Options{Contiguous: a})
	s := contiguousStrategy{m: m}

	_, err := s.allocate(heapRequest{size: 4096, usage: format.UsageSWReadOften})
	require.ErrorIs(t, err, errNextStrategy)
	require.Zero(t, a.opens, "no connection attempt without texture or 2D usage")
}

func TestContiguousStrategy_FallbackDependsOn2D(t *testing.T) {
	a := &stubAllocator{err: errors.New("enodev")}
	m := New(Options{Contiguous: a})
	s := contiguousStrategy{m: m}

	_, err := s.allocate(heapRequest{size: 4096, usage: format.UsageHWTexture})
	require.ErrorIs(t, err, errNextStrategy)

	_, err = s.allocate(heapRequest{size: 4096, usage: format.UsageHW2D})
	require.ErrorIs(t, err, ErrBackendUnavailable)
	require.NotErrorIs(t, err, errNextStrategy)
}

func TestAllocHeap_RoundsToPage(t *testing.T) {
	var got heapRequest
	m := New(Options{PageSize: 4096})
	m.heap = []heapStrategy{recordStrategy(func(r heapRequest) { got = r })}

	_, err := m.allocHeap(4097, format.UsageHW2D)
	require.NoError(t, err)
	require.Equal(t, 8192, got.size)
	require.Equal(t, format.UsageHW2D, got.usage)
}

func TestAllocHeap_RejectsUnrepresentableSize(t *testing.T) {
	only := &stubStrategy{n: "only", h: &BufferHandle{}}
	m := New(Options{PageSize: 4096})
	m.heap = []heapStrategy{only}

	for _, size := range []int{0, -1, math.MaxInt, math.MaxInt - 4000} {
		_, err := m.allocHeap(size, format.UsageHW2D)
		require.ErrorIs(t, err, ErrInvalidArgument, "size %d", size)
	}
	require.Zero(t, only.calls)
}

func TestAllocFramebuffer_RejectsNonPositiveSize(t *testing.T) {
	m := New(Options{})
	_, err := m.allocFramebuffer(0, format.UsageHWFramebuffer)
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.Nil(t, m.fb)
}

type recordStrategy func(heapRequest)

func (recordStrategy) name() string { return "record" }

func (r recordStrategy) allocate(req heapRequest) (*BufferHandle, error) {
	r(req)
	return &BufferHandle{}, nil
}

func TestHandleFlagsString(t *testing.T) {
	require.Equal(t, "0", HandleFlags(0).String())
	require.Equal(t, "FRAMEBUFFER|CONTIGUOUS", (FlagFramebuffer | FlagUsesContiguous).String())
	require.Equal(t, "CONTIGUOUS|0x8", (FlagUsesContiguous | 0x8).String())
}

func TestOwnershipString(t *testing.T) {
	require.Equal(t, "owned", Owned.String())
	require.Equal(t, "duplicated", Duplicated.String())
}
