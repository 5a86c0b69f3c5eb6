package interfaces

import (
	"bytes"
	"io"
	"testing"
	"time"
)

func TestPipe(t *testing.T) {
	a, b := NewPipe(10 * time.Millisecond)
	if _, err := a.Send([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 16)
	n, err := b.Recv(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf[:n], []byte("hello")) {
		t.Fatalf("actual %q", buf[:n])
	}
	n, err = b.Recv(buf)
	if n != 0 || err != nil {
		t.Fatalf("actual %d %v", n, err)
	}
}

func TestPipeFilter(t *testing.T) {
	a, b := NewPipe(10 * time.Millisecond)
	a.SetFilter(func(data []byte) []byte {
		if data[0] == 'x' {
			return nil
		}
		data[0] = 'H'
		return data
	})
	a.Send([]byte("xdropped"))
	a.Send([]byte("hello"))
	buf := make([]byte, 16)
	n, _ := b.Recv(buf)
	if !bytes.Equal(buf[:n], []byte("Hello")) {
		t.Fatalf("actual %q", buf[:n])
	}
}

func TestPipeClose(t *testing.T) {
	a, b := NewPipe(time.Second)
	done := make(chan error)
	go func() {
		_, err := b.Recv(make([]byte, 4))
		done <- err
	}()
	a.Close()
	select {
	case err := <-done:
		if err != io.EOF {
			t.Fatalf("actual %v", err)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("recv is not woken by close")
	}
	if _, err := a.Send([]byte{1}); err == nil {
		t.Fatal("send on closed pipe")
	}
}
