//go:build !unix

package mmap

import "os"

func osMapAnon(int) ([]byte, func([]byte) error, error) {
	return nil, nil, ErrUnsupported
}

func osPageSize() int {
	return os.Getpagesize()
}
