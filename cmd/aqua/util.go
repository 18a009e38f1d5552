package main

import (
	"strconv"

	"github.com/aquacoord/aqua/internal/render"
)

// parseInt64OrFatal parses a CLI positional argument as an int64,
// exiting with a user-facing error on malformed input rather than
// panicking.
func parseInt64OrFatal(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		render.Fatal("invalid integer %q", s)
	}
	return n
}
