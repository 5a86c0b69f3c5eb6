package controller

import (
	"fmt"
	"io"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/terassyi/goratp/logger"
	"github.com/terassyi/goratp/packet/message"
	"github.com/terassyi/goratp/proto/ratp"
	"github.com/terassyi/goratp/proto/ratpfs"
)

const (
	defaultTimeout = time.Second
	pollInterval   = 100 * time.Millisecond
)

var (
	ErrNoResponse = errors.New("no response")
	ErrStopped    = errors.New("controller stopped")
	ErrRunning    = errors.New("driver is running")
)

// Errno is a non-zero error code returned by the target.
type Errno uint32

func (e Errno) Error() string {
	return fmt.Sprintf("errno %d (%s)", uint32(e), syscall.Errno(e).Error())
}

func errnoOf(code uint32) error {
	if code == 0 {
		return nil
	}
	return Errno(code)
}

// Controller talks to the barebox remote control protocol over a connection.
// The request helpers run synchronously on the calling goroutine and must
// not be used while the driver started by Start is running.
type Controller struct {
	conn    *ratp.Conn
	console io.Writer
	fs      *ratpfs.Server
	logger  *logger.Logger
	debug   bool

	mutex   sync.Mutex
	running bool
	driver  *driver
}

func New(conn *ratp.Conn, console io.Writer, debug bool) *Controller {
	fs, _ := ratpfs.NewServer("", debug)
	return &Controller{
		conn:    conn,
		console: console,
		fs:      fs,
		logger:  logger.New(debug, "bbremote"),
		debug:   debug,
	}
}

// Export serves path to the target's ratpfs.
func (c *Controller) Export(path string) error {
	fs, err := ratpfs.NewServer(path, c.debug)
	if err != nil {
		return err
	}
	c.fs.Close()
	c.fs = fs
	c.logger.Infof("exporting %s", fs.Root())
	return nil
}

func (c *Controller) isRunning() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.running
}

func (c *Controller) send(m message.Message) error {
	c.logger.Debugf("send %s", m)
	return c.conn.Send(message.Serialize(m))
}

// expect waits for a message of type t, answering and printing whatever
// arrives in between. A non-positive timeout waits forever.
func (c *Controller) expect(t message.Type, timeout time.Duration) (message.Message, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		wait := pollInterval
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return nil, errors.Wrapf(ErrNoResponse, "waiting for %s", t)
			}
			if remaining < wait {
				wait = remaining
			}
		}
		data, err := c.conn.Recv(wait)
		if err != nil {
			return nil, err
		}
		if data == nil {
			continue
		}
		m, err := message.Unpack(data)
		if err != nil {
			c.logger.Warn(err)
			continue
		}
		c.logger.Debugf("recv %s", m)
		if m.Type() == t {
			return m, nil
		}
		if err := c.handle(m); err != nil {
			return nil, err
		}
	}
}

// handle processes a message nobody is waiting for.
func (c *Controller) handle(m message.Message) error {
	switch m := m.(type) {
	case *message.ConsoleMsg:
		if c.console != nil {
			c.console.Write(m.Text)
		}
	case *message.Ping:
		return c.send(&message.Pong{})
	case *message.Pong:
		c.logger.Info("pong")
	case *message.Fs:
		return c.send(&message.FsReturn{Payload: c.fs.Handle(m.Payload)})
	default:
		c.logger.Warnf("unexpected %s", m)
	}
	return nil
}

func (c *Controller) request(req message.Message, t message.Type, timeout time.Duration) (message.Message, error) {
	if c.isRunning() {
		return nil, ErrRunning
	}
	if err := c.send(req); err != nil {
		return nil, err
	}
	return c.expect(t, timeout)
}

func (c *Controller) Ping() error {
	_, err := c.request(&message.Ping{}, message.PONG, defaultTimeout)
	return err
}

// Command runs cmd in the target's shell and returns its exit code.
// Console output is written to the console writer meanwhile.
func (c *Controller) Command(cmd string) (uint32, error) {
	m, err := c.request(&message.Command{Cmd: cmd}, message.COMMAND_RETURN, 0)
	if err != nil {
		return 0, err
	}
	return m.(*message.CommandReturn).Errno, nil
}

func (c *Controller) Getenv(name string) (string, error) {
	m, err := c.request(&message.Getenv{Name: name}, message.GETENV_RETURN, defaultTimeout)
	if err != nil {
		return "", err
	}
	return m.(*message.GetenvReturn).Value, nil
}

func (c *Controller) Md(path string, addr, size uint16) ([]byte, error) {
	m, err := c.request(&message.Md{Path: path, Addr: addr, Size: size}, message.MD_RETURN, defaultTimeout)
	if err != nil {
		return nil, err
	}
	r := m.(*message.MdReturn)
	return r.Data, errnoOf(r.Errno)
}

func (c *Controller) Mw(path string, addr uint16, data []byte) (uint16, error) {
	m, err := c.request(&message.Mw{Path: path, Addr: addr, Data: data}, message.MW_RETURN, defaultTimeout)
	if err != nil {
		return 0, err
	}
	r := m.(*message.MwReturn)
	return r.Written, errnoOf(r.Errno)
}

func (c *Controller) I2cRead(bus, addr uint8, reg uint16, mode message.I2cFlag, size uint16) ([]byte, error) {
	req := &message.I2cRead{Bus: bus, Addr: addr, Reg: reg, Mode: mode, Size: size}
	m, err := c.request(req, message.I2C_READ_RETURN, defaultTimeout)
	if err != nil {
		return nil, err
	}
	r := m.(*message.I2cReadReturn)
	return r.Data, errnoOf(r.Errno)
}

func (c *Controller) I2cWrite(bus, addr uint8, reg uint16, mode message.I2cFlag, data []byte) (uint16, error) {
	req := &message.I2cWrite{Bus: bus, Addr: addr, Reg: reg, Mode: mode, Data: data}
	m, err := c.request(req, message.I2C_WRITE_RETURN, defaultTimeout)
	if err != nil {
		return 0, err
	}
	r := m.(*message.I2cWriteReturn)
	return r.Written, errnoOf(r.Errno)
}

func (c *Controller) GpioGetValue(gpio uint32) (uint8, error) {
	m, err := c.request(&message.GpioGetValue{Gpio: gpio}, message.GPIO_GET_VALUE_RETURN, defaultTimeout)
	if err != nil {
		return 0, err
	}
	return m.(*message.GpioGetValueReturn).Value, nil
}

func (c *Controller) GpioSetValue(gpio uint32, value uint8) error {
	_, err := c.request(&message.GpioSetValue{Gpio: gpio, Value: value}, message.GPIO_SET_VALUE_RETURN, defaultTimeout)
	return err
}

func (c *Controller) GpioSetDirection(gpio uint32, direction message.GpioDirection, value uint8) error {
	req := &message.GpioSetDirection{Gpio: gpio, Direction: direction, Value: value}
	m, err := c.request(req, message.GPIO_SET_DIRECTION_RETURN, defaultTimeout)
	if err != nil {
		return err
	}
	return errnoOf(m.(*message.GpioSetDirectionReturn).Errno)
}

// Reset restarts the target. There is no reply.
func (c *Controller) Reset(force bool) error {
	if c.isRunning() {
		return ErrRunning
	}
	return c.send(&message.Reset{Force: force})
}

// Close stops the driver, closes the connection and releases exported files.
func (c *Controller) Close(timeout time.Duration) error {
	if c.isRunning() {
		if err := c.Stop(); err != nil {
			c.logger.Warn(err)
		}
	}
	defer c.fs.Close()
	return c.conn.Close(timeout)
}

func (c *Controller) Stats() ratp.Stats {
	return c.conn.Stats()
}
