package system

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/lcalzada-xor/netraptor/internal/core/ports"
)

const lineBuffer = 256

type execProcess struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc

	lines chan string
	stop  chan struct{}
	done  chan struct{}

	once sync.Once
}

var _ ports.Process = (*execProcess)(nil)

func startProcess(cmd *exec.Cmd, c ports.Command, cancel context.CancelFunc) (*execProcess, error) {
	p := &execProcess{
		cmd:    cmd,
		cancel: cancel,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	var rd, wr *os.File
	if c.CaptureOutput {
		var err error
		rd, wr, err = os.Pipe()
		if err != nil {
			return nil, err
		}
		cmd.Stdout = wr
		cmd.Stderr = wr
		p.lines = make(chan string, lineBuffer)
	}

	if err := cmd.Start(); err != nil {
		if rd != nil {
			rd.Close()
			wr.Close()
		}
		return nil, err
	}

	if rd != nil {
		// The child holds its own copy of the write end
		wr.Close()
		go p.readLines(rd)
	}

	go func() {
		_ = cmd.Wait()
		cancel()
		close(p.done)
	}()

	return p, nil
}

func (p *execProcess) Lines() <-chan string {
	if p.lines == nil {
		return nil
	}
	return p.lines
}

func (p *execProcess) Done() <-chan struct{} {
	return p.done
}

// Terminate sends SIGTERM to the process group and escalates to SIGKILL if
// the group has not exited after the grace period.
func (p *execProcess) Terminate() error {
	var err error
	p.once.Do(func() {
		close(p.stop)
		select {
		case <-p.done:
			return
		default:
		}

		err = killGroup(p.cmd, syscall.SIGTERM)
		select {
		case <-p.done:
		case <-time.After(killGrace):
			err = killGroup(p.cmd, syscall.SIGKILL)
			p.cancel()
			<-p.done
		}
	})
	return err
}

// readLines forwards output until EOF. Once Terminate is called lines are
// drained and dropped so the child never blocks on a full pipe.
func (p *execProcess) readLines(r io.ReadCloser) {
	defer r.Close()
	defer close(p.lines)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(scanCRLF)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		select {
		case p.lines <- line:
		case <-p.stop:
		}
	}
}

// scanCRLF splits on either '\n' or '\r'. Progress-bar style tools rewrite
// the current line with a bare carriage return.
func scanCRLF(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[0:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
