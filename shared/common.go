package shared

import (
	"fmt"
	"io"
)

const (
	// LogPrefix prefixes process log lines
	LogPrefix = "lifecycle -"
	// DefaultConcurrency bounds concurrent warm up workers
	DefaultConcurrency = 8
	// DefaultShardCount is a default number of singleton/registry shards
	DefaultShardCount = 32
	// DefaultMaxMessageSize is a default sink message size
	DefaultMaxMessageSize = 2048
)

// CloseWithErrorHandling closes the closer and handles the error
func CloseWithErrorHandling(c io.Closer, err *error) {
	if c == nil {
		return
	}

	if cerr := c.Close(); cerr != nil {
		if err != nil && *err != nil {
			*err = fmt.Errorf("%w; close error: %v", *err, cerr)
		} else {
			*err = cerr
		}
	}
}
