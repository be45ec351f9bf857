// Package logging provides the named, leveled output channel each component opens in
// Init and closes in ShutDown. Channels are backed by a dedicated logrus.Logger so their
// level and destination are independent of the process logger.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/hector-sim/hector-core/sim/simerr"
)

// Config selects where channels write.
type Config struct {
	Dir    string    // when set, each channel writes to <Dir>/<name>.log
	Output io.Writer // used when Dir is empty; defaults to os.Stderr
}

// Channel is a named log sink with a minimum level. It is opened once and closed once.
//
// Thread-safety: NOT thread-safe.
type Channel struct {
	cfg    Config
	name   string
	logger *logrus.Logger
	entry  *logrus.Entry
	file   *os.File
	open   bool
	closed bool
}

// NewChannel returns an unopened channel.
func NewChannel(cfg Config) *Channel {
	return &Channel{cfg: cfg}
}

// Open starts the channel. With appendMode the log file keeps earlier contents,
// otherwise it is truncated. Messages below minLevel are dropped.
func (c *Channel) Open(name string, appendMode bool, minLevel logrus.Level) error {
	if c.open || c.closed {
		return simerr.New(simerr.LifecycleError, "log channel %q already opened", name)
	}
	out := c.cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if c.cfg.Dir != "" {
		if err := os.MkdirAll(c.cfg.Dir, 0755); err != nil {
			return simerr.Rethrow(err, "creating log directory "+c.cfg.Dir)
		}
		flags := os.O_WRONLY | os.O_CREATE
		if appendMode {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		f, err := os.OpenFile(filepath.Join(c.cfg.Dir, name+".log"), flags, 0644)
		if err != nil {
			return simerr.Rethrow(err, "opening log channel "+name)
		}
		c.file = f
		out = f
	}

	c.logger = logrus.New()
	c.logger.SetOutput(out)
	c.logger.SetLevel(minLevel)
	c.logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})
	c.entry = c.logger.WithField("component", name)
	c.name = name
	c.open = true
	return nil
}

// Close releases the channel. Closing a channel that is not open fails.
func (c *Channel) Close() error {
	if !c.open {
		return simerr.New(simerr.LifecycleError, "log channel %q is not open", c.name)
	}
	c.open = false
	c.closed = true
	if c.file != nil {
		err := c.file.Close()
		c.file = nil
		if err != nil {
			return simerr.Rethrow(err, "closing log channel "+c.name)
		}
	}
	return nil
}

func (c *Channel) IsOpen() bool { return c.open }

func (c *Channel) Name() string { return c.name }

// Enabled reports whether a message at level would be written.
func (c *Channel) Enabled(level logrus.Level) bool {
	return c.open && c.logger.IsLevelEnabled(level)
}

func (c *Channel) Debugf(format string, args ...any) { c.logf(logrus.DebugLevel, format, args...) }
func (c *Channel) Infof(format string, args ...any)  { c.logf(logrus.InfoLevel, format, args...) }
func (c *Channel) Warnf(format string, args ...any)  { c.logf(logrus.WarnLevel, format, args...) }
func (c *Channel) Errorf(format string, args ...any) { c.logf(logrus.ErrorLevel, format, args...) }

// writes on a closed or unopened channel are dropped
func (c *Channel) logf(level logrus.Level, format string, args ...any) {
	if !c.open {
		return
	}
	c.entry.Logf(level, format, args...)
}
