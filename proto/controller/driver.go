package controller

import (
	"sync"
	"time"

	"github.com/terassyi/goratp/packet/message"
	"gopkg.in/tomb.v1"
)

const (
	driverPoll  = 10 * time.Millisecond
	queueLength = 64
)

// Event is delivered by the driver: console text from the target, or the
// error that terminated the driver. The channel is closed afterwards.
type Event struct {
	Text []byte
	Err  error
}

type driver struct {
	death tomb.Tomb
	txq   chan []byte
	rxq   chan Event

	// closed by Stop, releases a terminating event nobody reads
	stop     chan struct{}
	stopOnce sync.Once
}

// Start runs the connection on a background goroutine which alternates
// receiving with sending what SendAsync queued.
func (c *Controller) Start() (<-chan Event, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.running {
		return nil, ErrRunning
	}
	d := &driver{
		txq:  make(chan []byte, queueLength),
		rxq:  make(chan Event, queueLength),
		stop: make(chan struct{}),
	}
	c.driver = d
	c.running = true
	go c.run(d)
	return d.rxq, nil
}

// Stop terminates the driver and waits for it.
func (c *Controller) Stop() error {
	c.mutex.Lock()
	d := c.driver
	c.mutex.Unlock()
	if d == nil {
		return ErrStopped
	}
	d.stopOnce.Do(func() { close(d.stop) })
	d.death.Kill(nil)
	err := d.death.Wait()
	c.mutex.Lock()
	c.running = false
	c.driver = nil
	c.mutex.Unlock()
	return err
}

func (c *Controller) run(d *driver) {
	defer d.death.Done()
	defer close(d.rxq)
	for {
		select {
		case <-d.death.Dying():
			return
		default:
		}
		if err := c.step(d); err != nil {
			c.logger.Warnf("driver: %v", err)
			d.death.Kill(err)
			select {
			case d.rxq <- Event{Err: err}:
			case <-d.stop:
			}
			return
		}
	}
}

func (c *Controller) step(d *driver) error {
	data, err := c.conn.Recv(driverPoll)
	if err != nil {
		return err
	}
	if data != nil {
		m, err := message.Unpack(data)
		if err != nil {
			c.logger.Warn(err)
		} else if console, ok := m.(*message.ConsoleMsg); ok {
			select {
			case d.rxq <- Event{Text: console.Text}:
			case <-d.death.Dying():
				return nil
			}
		} else if err := c.handle(m); err != nil {
			return err
		}
	}
	for {
		select {
		case msg := <-d.txq:
			if err := c.conn.Send(msg); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (c *Controller) SendAsync(m message.Message) error {
	c.mutex.Lock()
	d := c.driver
	c.mutex.Unlock()
	if d == nil {
		return ErrStopped
	}
	select {
	case d.txq <- message.Serialize(m):
		return nil
	case <-d.death.Dying():
		return ErrStopped
	}
}

// SendAsyncConsole queues text as console input of the target.
func (c *Controller) SendAsyncConsole(text []byte) error {
	return c.SendAsync(&message.ConsoleMsg{Text: text})
}

func (c *Controller) SendAsyncPing() error {
	return c.SendAsync(&message.Ping{})
}
