package main

import (
	"errors"
)

var (
	errUnknownDocFormat = errors.New("unknown document format")
	errInvalidOptions   = errors.New("invalid options")
	errConflictingStore = errors.New("--etcd-endpoints and --tarantool-addr are mutually exclusive")
)
