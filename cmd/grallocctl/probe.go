//go:build linux

package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/joshuapare/gralloc/gralloc"
	"github.com/joshuapare/gralloc/gralloc/fbdev"
	"github.com/joshuapare/gralloc/gralloc/platform"
)

func init() {
	rootCmd.AddCommand(newProbeCmd())
}

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Report which allocator backends this system provides",
		Long: `The probe command checks each backend the allocator can use: it opens a
connection to ION, creates a one-page shared memory region and maps the
framebuffer. Nothing is left allocated.

Example:
  grallocctl probe
  grallocctl probe --fb /dev/fb1 --buffers 3 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe()
		},
	}
	addDeviceFlags(cmd)
	return cmd
}

// backendStatus is the probe result for one backend.
type backendStatus struct {
	Path      string `json:"path,omitempty"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

type probeResult struct {
	ION         backendStatus `json:"ion"`
	Ashmem      backendStatus `json:"ashmem"`
	Memfd       bool          `json:"memfd_fallback"`
	Framebuffer backendStatus `json:"framebuffer"`
	Display     *fbdev.Info   `json:"display,omitempty"`
	PageSize    int           `json:"page_size"`
}

func status(path string, err error) backendStatus {
	s := backendStatus{Path: path, Available: err == nil}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

func runProbe() error {
	p := platform.Open(platformOptions())
	defer p.Close()

	res := probeResult{PageSize: os.Getpagesize()}

	if p.ION != nil {
		conn, err := p.ION.Open()
		if err == nil {
			err = conn.Close()
		}
		res.ION = status(p.ION.Path(), err)
	} else {
		res.ION = backendStatus{Error: "disabled"}
	}

	// The allocator itself decides between ashmem and memfd.
	_, statErr := os.Stat(ashmemPath)
	res.Memfd = errors.Is(statErr, os.ErrNotExist) && !noMemfd
	fd, err := p.Ashmem.CreateRegion(gralloc.DefaultRegionName, res.PageSize)
	if err == nil {
		err = unix.Close(fd)
	}
	res.Ashmem = status(ashmemPath, err)

	_, err = p.Framebuffer.MapFramebuffer()
	fbPath := ""
	if err == nil {
		info := p.Framebuffer.Info()
		res.Display = &info
		fbPath = info.Path
	}
	res.Framebuffer = status(fbPath, err)

	if jsonOut {
		return printJSON(res)
	}

	printInfo("\nBackends:\n")
	printStatus("ION", res.ION)
	if res.Memfd {
		printStatus("ashmem", backendStatus{Path: "memfd", Available: res.Ashmem.Available, Error: res.Ashmem.Error})
	} else {
		printStatus("ashmem", res.Ashmem)
	}
	printStatus("framebuffer", res.Framebuffer)
	if d := res.Display; d != nil {
		printInfo("\nDisplay:\n")
		printInfo("  ID:          %s\n", d.ID)
		printInfo("  Resolution:  %dx%d, %d bpp\n", d.XRes, d.YRes, d.BitsPerPixel)
		printInfo("  Line length: %d bytes\n", d.LineLength)
		printInfo("  Buffers:     %d (page flip: %t)\n", d.Buffers, d.PageFlip)
		printInfo("  Memory:      %#x, %d bytes\n", d.MemStart, d.MemLen)
	}
	return nil
}

func printStatus(name string, s backendStatus) {
	if s.Available {
		printInfo("  ✓ %-12s %s\n", name, s.Path)
		return
	}
	printInfo("  ✗ %-12s %s\n", name, s.Error)
}
