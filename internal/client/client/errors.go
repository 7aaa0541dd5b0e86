package client

import "errors"

// ErrOffline means no hosted backend is configured on this device.
var ErrOffline = errors.New("no cloud backend configured")
