//go:build !linux && !darwin && !freebsd

package server

import "syscall"

func reuseControl(network, address string, c syscall.RawConn) error {
	return nil
}
