//go:build linux

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLayoutCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		json        bool
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "rgba",
			args:        []string{"640", "480", "RGBA_8888"},
			wantContain: []string{"RGBA_8888", "Aligned: 640x480", "1228800 bytes"},
		},
		{
			name:        "yuv by enumerator",
			args:        []string{"176", "144", "0x104"},
			wantContain: []string{"YCbCr_420_SP", "Aligned: 192x192", "61440 bytes", "Luma:    36864", "offset 36864"},
		},
		{
			name:        "case insensitive name",
			args:        []string{"100", "100", "rgb_565"},
			wantContain: []string{"Aligned: 128x128", "32768 bytes"},
		},
		{name: "bad width", args: []string{"wide", "480", "RGBA_8888"}, wantErr: true},
		{name: "bad height", args: []string{"640", "-", "RGBA_8888"}, wantErr: true},
		{name: "unknown name", args: []string{"640", "480", "NV21"}, wantErr: true},
		{name: "unknown enumerator", args: []string{"640", "480", "0x999"}, wantErr: true},
		{name: "zero width", args: []string{"0", "480", "RGBA_8888"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			jsonOut = tt.json

			output, err := captureOutput(t, func() error {
				return runLayout(tt.args)
			})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestLayoutCommand_JSON(t *testing.T) {
	resetFlags(t)
	jsonOut = true

	output, err := captureOutput(t, func() error {
		return runLayout([]string{"176", "144", "YCbCr_422_SP"})
	})
	require.NoError(t, err)

	var res layoutResult
	assertJSON(t, output, &res)
	require.Equal(t, layoutResult{
		Format:     "YCbCr_422_SP",
		Width:      192,
		Height:     192,
		Stride:     192,
		Size:       77824,
		LumaSize:   36864,
		ChromaSize: 40960,
	}, res)
}

func TestFormatsCommand(t *testing.T) {
	resetFlags(t)
	output, err := captureOutput(t, runFormats)
	require.NoError(t, err)
	assertContains(t, output, []string{"RGBA_8888", "4 bpp", "YCbCr_420_SP", "0x104", "YUV 4:2:0", "YV12", "YUV 4:2:2"})

	jsonOut = true
	output, err = captureOutput(t, runFormats)
	require.NoError(t, err)

	var list []formatInfo
	assertJSON(t, output, &list)
	require.Len(t, list, 13)
	require.Equal(t, "RGBA_8888", list[0].Name)
	require.Equal(t, 4, list[0].BytesPerPixel)
}

func TestQuietSuppressesText(t *testing.T) {
	resetFlags(t)
	quiet = true

	output, err := captureOutput(t, func() error {
		return runLayout([]string{"64", "64", "RGBA_8888"})
	})
	require.NoError(t, err)
	require.Empty(t, output)
}
