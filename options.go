package commsprotobuf

import (
	"time"

	"github.com/tidewise/drivers-comms-protobuf/log"
)

// defaultTimeout and defaultFirstByteTimeout are used when a Channel is
// constructed without WithTimeout/WithFirstByteTimeout, and by the
// no-argument Read.
const (
	defaultTimeout          = 5 * time.Second
	defaultFirstByteTimeout = 1 * time.Second
)

// Option configures a Channel at construction time, following the same
// functional-options shape the teacher uses for its socket dial
// options.
type Option func(*Channel)

// WithLogger sets the Logger the Channel logs through. Defaults to
// log.Noop. The transport keeps the logger it was constructed with.
func WithLogger(logger log.Logger) Option {
	return func(c *Channel) {
		c.log = logger
	}
}

// WithEncryptionKey enables the AES-256-GCM envelope by deriving a
// cipher context from psk at construction time, equivalent to calling
// SetEncryptionKey immediately after NewChannel.
func WithEncryptionKey(psk []byte) Option {
	return func(c *Channel) {
		c.pendingKey = append([]byte(nil), psk...)
	}
}

// WithTimeout overrides the total wall-clock bound applied by the
// no-argument Read. ReadTimeout and ReadDeadlines take their own.
func WithTimeout(d time.Duration) Option {
	return func(c *Channel) {
		c.timeout = d
	}
}

// WithFirstByteTimeout overrides the bound between the start of a read
// and the arrival of the first transport byte, applied by the
// no-argument Read and by ReadTimeout. ReadDeadlines takes its own.
func WithFirstByteTimeout(d time.Duration) Option {
	return func(c *Channel) {
		c.firstByteTimeout = d
	}
}

// WithLogFile routes the Channel's logging through a file logger
// instead of the default Noop or a WithLogger-supplied logger, tagging
// each line with its module and level. appendMode selects append vs.
// truncate semantics for filename, matching log.File. A failure to open
// filename is reported by NewChannel, not by this option itself.
func WithLogFile(filename string, minLevel string, appendMode bool) Option {
	return func(c *Channel) {
		logger, err := log.File("", minLevel, filename, false, appendMode)
		if err != nil {
			c.pendingErr = err
			return
		}
		c.log = logger
	}
}
