package shared

import (
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// NewLogger creates a default process logger writing prefixed lines to stderr
func NewLogger(name string) logr.Logger {
	ret := stdr.New(log.New(os.Stderr, LogPrefix+" ", log.LstdFlags))
	if name != "" {
		ret = ret.WithName(name)
	}
	return ret
}
