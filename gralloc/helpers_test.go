//go:build linux

package gralloc_test

import "golang.org/x/sys/unix"

func errEACCES() error { return unix.EACCES }
