//go:build !linux

package link

import (
	"errors"
	"io"
)

func openSerial(path string, baud int) (io.ReadWriteCloser, error) {
	return nil, errors.New("serial links are only supported on linux")
}
