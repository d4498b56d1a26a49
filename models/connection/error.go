package connection

import (
	"errors"
	"fmt"
)

const (
	// The peer is gone; the read loop of the session must stop.
	ConnLoopBreak uint8 = iota
	ConnSessionClosed
)

type ConnErr struct {
	code uint8
	desc string
}

func NewConnErr(code uint8) ConnErr {
	return ConnErr{code: code}
}

func (c ConnErr) AddDesc(desc string) ConnErr {
	c.desc = desc
	return c
}

func (c ConnErr) Error() string {
	return fmt.Sprintf("Connection error - Code: %d\tdesc: %s", c.code, c.desc)
}

func (c ConnErr) Code() uint8 {
	return c.code
}

// IsSessionClosed reports whether err came from using a session that was
// already terminated, as opposed to a connection that broke underneath it.
func IsSessionClosed(err error) bool {
	var connErr ConnErr
	return errors.As(err, &connErr) && connErr.Code() == ConnSessionClosed
}
