//go:build linux

package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/gralloc/gralloc/ashmem"
	"github.com/joshuapare/gralloc/gralloc/fbdev"
	"github.com/joshuapare/gralloc/gralloc/ion"
	"github.com/joshuapare/gralloc/gralloc/platform"
	"github.com/joshuapare/gralloc/internal/logger"
)

// Device flags shared by alloc and probe
var (
	ionPath    string
	ashmemPath string
	fbPaths    []string
	fbBuffers  uint32
	noION      bool
	noMemfd    bool
)

func addDeviceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&ionPath, "ion", ion.DefaultPath, "ION device node")
	f.StringVar(&ashmemPath, "ashmem", ashmem.DefaultPath, "ashmem device node")
	f.StringSliceVar(&fbPaths, "fb", fbdev.DefaultPaths, "Framebuffer device nodes, tried in order")
	f.Uint32Var(&fbBuffers, "buffers", fbdev.DefaultBuffers, "Framebuffer screens to request for page flipping")
	f.BoolVar(&noION, "no-ion", false, "Run without the contiguous allocator")
	f.BoolVar(&noMemfd, "no-memfd", false, "Fail instead of using memfd when ashmem is missing")
}

// platformOptions builds the backend configuration from the device flags.
func platformOptions() platform.Options {
	opts := platform.DefaultOptions()
	opts.ION.Path = ionPath
	opts.Ashmem.Path = ashmemPath
	opts.Ashmem.DisableMemfd = noMemfd
	opts.Framebuffer.Paths = fbPaths
	opts.Framebuffer.Buffers = fbBuffers
	opts.DisableION = noION
	opts.Logger = logger.L
	return opts
}
