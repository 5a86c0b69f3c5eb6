package ratp

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/terassyi/goratp/interfaces"
	"github.com/terassyi/goratp/packet/ratp"
)

func testConfig() Config {
	return Config{
		RtoMin:         20 * time.Millisecond,
		RtoMax:         100 * time.Millisecond,
		SrttInitial:    20 * time.Millisecond,
		Alpha:          0.8,
		Beta:           2.0,
		MaxRetransmits: 10,
	}
}

func pair() (*Conn, *Conn, *interfaces.Pipe, *interfaces.Pipe) {
	a, b := interfaces.NewPipe(2 * time.Millisecond)
	return New(a, testConfig()), New(b, testConfig()), a, b
}

func establish(t *testing.T, client, server *Conn) {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- server.Accept(time.Second) }()
	if err := client.Connect(time.Second); err != nil {
		t.Fatal(err)
	}
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
	if client.Status() != ESTABLISHED || server.Status() != ESTABLISHED {
		t.Fatalf("actual client=%s server=%s", client.Status(), server.Status())
	}
}

// receive collects n messages on c in the background.
func receive(c *Conn, n int) <-chan [][]byte {
	out := make(chan [][]byte, 1)
	go func() {
		var msgs [][]byte
		deadline := time.Now().Add(3 * time.Second)
		for len(msgs) < n && time.Now().Before(deadline) {
			msg, err := c.Recv(100 * time.Millisecond)
			if err != nil {
				break
			}
			if msg != nil {
				msgs = append(msgs, msg)
			}
		}
		out <- msgs
	}()
	return out
}

type recorder struct {
	mutex    sync.Mutex
	segments []*ratp.Segment
}

func (r *recorder) filter(data []byte) []byte {
	if seg, err := ratp.New(data); err == nil {
		r.mutex.Lock()
		r.segments = append(r.segments, seg)
		r.mutex.Unlock()
	}
	return data
}

func (r *recorder) data() []*ratp.Segment {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	var segs []*ratp.Segment
	for _, s := range r.segments {
		if s.Header.HasData() {
			segs = append(segs, s)
		}
	}
	return segs
}

func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func TestConnectSendRecvClose(t *testing.T) {
	client, server, a, _ := pair()
	establish(t, client, server)

	rec := &recorder{}
	a.SetFilter(rec.filter)
	msgs := receive(server, 1)
	data := pattern(600)
	if err := client.Send(data); err != nil {
		t.Fatal(err)
	}
	got := <-msgs
	if len(got) != 1 || !bytes.Equal(got[0], data) {
		t.Fatalf("actual %d messages", len(got))
	}
	segs := rec.data()
	if len(segs) != 3 {
		t.Fatalf("actual %d data segments", len(segs))
	}
	for i, want := range []int{255, 255, 90} {
		if len(segs[i].Payload()) != want {
			t.Fatalf("segment %d: actual length %d", i, len(segs[i].Payload()))
		}
		if segs[i].Header.Control.Eor() != (i == 2) {
			t.Fatalf("segment %d: actual %s", i, segs[i].Header.Control)
		}
	}

	start := time.Now()
	errc := make(chan error, 1)
	go func() { errc <- server.Close(time.Second) }()
	if err := client.Close(time.Second); err != nil {
		t.Fatal(err)
	}
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
	if client.Status() != CLOSED || server.Status() != CLOSED {
		t.Fatalf("actual client=%s server=%s", client.Status(), server.Status())
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatalf("close took %s", time.Since(start))
	}
}

func TestAlternatingBit(t *testing.T) {
	client, server, a, _ := pair()
	establish(t, client, server)

	rec := &recorder{}
	a.SetFilter(rec.filter)
	sent := [][]byte{[]byte("a"), []byte("bb"), []byte("ccc"), []byte("dddd")}
	msgs := receive(server, len(sent))
	for _, m := range sent {
		if err := client.Send(m); err != nil {
			t.Fatal(err)
		}
	}
	got := <-msgs
	if len(got) != len(sent) {
		t.Fatalf("actual %d messages", len(got))
	}
	for i := range sent {
		if !bytes.Equal(got[i], sent[i]) {
			t.Fatalf("message %d: actual %q", i, got[i])
		}
	}
	segs := rec.data()
	if !segs[0].Header.Control.So() {
		t.Fatalf("single byte is not sent as so: %s", segs[0])
	}
	for i, s := range segs {
		if s.Header.Control.Sn() != uint8(i+1)%2 {
			t.Fatalf("segment %d: actual %s", i, s)
		}
	}
}

func TestRetransmission(t *testing.T) {
	client, server, a, _ := pair()
	establish(t, client, server)

	var mutex sync.Mutex
	dropped := 0
	a.SetFilter(func(data []byte) []byte {
		mutex.Lock()
		defer mutex.Unlock()
		if len(data) > ratp.HeaderLength && dropped < 2 {
			dropped++
			return nil
		}
		return data
	})
	msgs := receive(server, 1)
	if err := client.Send([]byte("retransmitted")); err != nil {
		t.Fatal(err)
	}
	got := <-msgs
	if len(got) != 1 || string(got[0]) != "retransmitted" {
		t.Fatalf("actual %q", got)
	}
	if client.Stats().Retransmits != 2 {
		t.Fatalf("actual %d", client.Stats().Retransmits)
	}
}

func TestLostAck(t *testing.T) {
	client, server, _, b := pair()
	establish(t, client, server)

	var mutex sync.Mutex
	dropped := false
	b.SetFilter(func(data []byte) []byte {
		mutex.Lock()
		defer mutex.Unlock()
		if !dropped {
			dropped = true
			return nil
		}
		return data
	})
	msgs := receive(server, 2)
	if err := client.Send([]byte("once")); err != nil {
		t.Fatal(err)
	}
	if err := client.Send([]byte("twice")); err != nil {
		t.Fatal(err)
	}
	got := <-msgs
	if len(got) != 2 || string(got[0]) != "once" || string(got[1]) != "twice" {
		t.Fatalf("actual %q", got)
	}
	if client.Stats().Retransmits == 0 {
		t.Fatal("lost ack did not cause a retransmit")
	}
}

func TestRetransmitExceeded(t *testing.T) {
	client, server, a, _ := pair()
	establish(t, client, server)

	a.SetFilter(func([]byte) []byte { return nil })
	err := client.Send([]byte("lost"))
	if errors.Cause(err) != ErrRetransmitExceeded {
		t.Fatalf("actual %v", err)
	}
	if client.Stats().Retransmits != 10 {
		t.Fatalf("actual %d", client.Stats().Retransmits)
	}
	if client.Status() != CLOSED {
		t.Fatalf("actual %s", client.Status())
	}
}

func TestCorruption(t *testing.T) {
	client, server, a, _ := pair()
	establish(t, client, server)

	var mutex sync.Mutex
	count := 0
	a.SetFilter(func(data []byte) []byte {
		mutex.Lock()
		defer mutex.Unlock()
		count++
		data = append([]byte{0x01, 0x02, 0xff, 0x00, 0x55}, data...)
		if count%3 == 0 && len(data) > 10 {
			data[10] ^= 0xff
		}
		return data
	})
	msgs := receive(server, 5)
	var sent [][]byte
	for i := 0; i < 5; i++ {
		m := pattern(300 + i)
		sent = append(sent, m)
		if err := client.Send(m); err != nil {
			t.Fatal(err)
		}
	}
	got := <-msgs
	if len(got) != len(sent) {
		t.Fatalf("actual %d messages", len(got))
	}
	for i := range sent {
		if !bytes.Equal(got[i], sent[i]) {
			t.Fatalf("message %d is corrupted", i)
		}
	}
	if server.Stats().ChecksumErrors == 0 {
		t.Fatal("corruption is not counted")
	}
}

func TestConnectionRefused(t *testing.T) {
	client, server, _, _ := pair()
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				server.Poll()
			}
		}
	}()
	err := client.Connect(time.Second)
	close(stop)
	<-done
	if errors.Cause(err) != ErrConnectionRefused {
		t.Fatalf("actual %v", err)
	}
	if client.Status() != CLOSED {
		t.Fatalf("actual %s", client.Status())
	}
}

func TestConnectTimeout(t *testing.T) {
	client, _, _, _ := pair()
	client.config.MaxRetransmits = 100
	err := client.Connect(50 * time.Millisecond)
	if errors.Cause(err) != ErrTimeout {
		t.Fatalf("actual %v", err)
	}
}

func TestReset(t *testing.T) {
	client, server, _, b := pair()
	establish(t, client, server)

	if _, err := b.Send(ratp.Build(ratp.RST.WithSn(server.sSN+1), 0, nil).Serialize()); err != nil {
		t.Fatal(err)
	}
	_, err := client.Recv(200 * time.Millisecond)
	if errors.Cause(err) != ErrConnectionReset {
		t.Fatalf("actual %v", err)
	}
	if client.Status() != CLOSED {
		t.Fatalf("actual %s", client.Status())
	}
	if _, err := client.Recv(10 * time.Millisecond); errors.Cause(err) != ErrNotEstablished {
		t.Fatalf("actual %v", err)
	}
}

func TestRemoteClose(t *testing.T) {
	client, server, _, _ := pair()
	establish(t, client, server)

	errc := make(chan error, 1)
	go func() { errc <- client.Close(time.Second) }()
	_, err := server.Recv(time.Second)
	if errors.Cause(err) != ErrClosedByRemote {
		t.Fatalf("actual %v", err)
	}
	if server.Status() != LAST_ACK {
		t.Fatalf("actual %s", server.Status())
	}
	if err := server.Close(time.Second); err != nil {
		t.Fatal(err)
	}
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
	if client.Status() != CLOSED || server.Status() != CLOSED {
		t.Fatalf("actual client=%s server=%s", client.Status(), server.Status())
	}
}

func TestSendNotEstablished(t *testing.T) {
	client, _, _, _ := pair()
	if err := client.Send([]byte("x")); errors.Cause(err) != ErrNotEstablished {
		t.Fatalf("actual %v", err)
	}
	if err := client.Send(nil); errors.Cause(err) != ErrEmptyMessage {
		t.Fatalf("actual %v", err)
	}
}

func TestRetransmissionTiming(t *testing.T) {
	client, server, a, _ := pair()
	establish(t, client, server)

	type sent struct {
		at  time.Time
		seg *ratp.Segment
	}
	var mutex sync.Mutex
	var data []sent
	a.SetFilter(func(b []byte) []byte {
		seg, err := ratp.New(b)
		if err != nil || !seg.Header.HasData() {
			return b
		}
		mutex.Lock()
		defer mutex.Unlock()
		data = append(data, sent{at: time.Now(), seg: seg})
		if len(data) == 1 {
			return nil
		}
		return b
	})
	msgs := receive(server, 1)
	if err := client.Send([]byte("again")); err != nil {
		t.Fatal(err)
	}
	if got := <-msgs; len(got) != 1 || string(got[0]) != "again" {
		t.Fatalf("actual %q", got)
	}
	mutex.Lock()
	defer mutex.Unlock()
	if len(data) != 2 {
		t.Fatalf("actual %d transmissions", len(data))
	}
	if data[0].seg.Header.Control.Sn() != data[1].seg.Header.Control.Sn() {
		t.Fatalf("actual %s then %s", data[0].seg, data[1].seg)
	}
	// polling adds a few milliseconds on top of the rto
	gap := data[1].at.Sub(data[0].at)
	if gap < client.config.RtoMin || gap > client.config.RtoMax+50*time.Millisecond {
		t.Fatalf("actual gap %s", gap)
	}
}

func TestSimultaneousOpen(t *testing.T) {
	client, server, _, _ := pair()
	errc := make(chan error, 1)
	go func() { errc <- server.Connect(time.Second) }()
	if err := client.Connect(time.Second); err != nil {
		t.Fatal(err)
	}
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
	if client.Status() != ESTABLISHED || server.Status() != ESTABLISHED {
		t.Fatalf("actual client=%s server=%s", client.Status(), server.Status())
	}

	msgs := receive(server, 1)
	if err := client.Send([]byte("opened")); err != nil {
		t.Fatal(err)
	}
	if got := <-msgs; len(got) != 1 || string(got[0]) != "opened" {
		t.Fatalf("actual %q", got)
	}
}

// fin queues our FIN the way Close does, without waiting for an answer.
func fin(t *testing.T, c *Conn) {
	t.Helper()
	seg := ratp.Build((ratp.FIN|ratp.ACK).WithSn(c.sSN+1).WithAn(c.rSN+1), 0, nil)
	if err := c.write(seg); err != nil {
		t.Fatal(err)
	}
	c.FIN_WAIT()
}

func TestSimultaneousClose(t *testing.T) {
	client, server, _, _ := pair()
	establish(t, client, server)

	fin(t, client)
	fin(t, server)
	for i := 0; i < 50 && client.Status() == FIN_WAIT; i++ {
		if err := client.Poll(); err != nil {
			t.Fatal(err)
		}
	}
	if client.Status() != CLOSING {
		t.Fatalf("actual %s", client.Status())
	}
	if client.retrans == nil {
		t.Fatal("fin is not kept for retransmission")
	}

	errc := make(chan error, 1)
	go func() { errc <- server.Close(time.Second) }()
	if err := client.Close(time.Second); err != nil {
		t.Fatal(err)
	}
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
	if client.Status() != CLOSED || server.Status() != CLOSED {
		t.Fatalf("actual client=%s server=%s", client.Status(), server.Status())
	}
}
