package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// DefaultGracePeriod is how long Close waits after SIGTERM before sending SIGKILL.
const DefaultGracePeriod = 2 * time.Second

// stderrTail is how many bytes of each process's stderr are kept for error reports.
const stderrTail = 2048

// Pipe is a chain of running processes, each feeding the next one's stdin, whose last
// stdout is readable through the Pipe. Close terminates and reaps every process.
type Pipe struct {
	out   *os.File
	procs []*process
	grace time.Duration

	closeOnce sync.Once
	closeErr  error
}

type process struct {
	cmd    *exec.Cmd
	stderr *tailBuffer
	done   chan struct{}
	err    error
}

// StartPipe wires cmds into a chain, starts them and returns the Pipe reading the last
// command's stdout. Commands must not have Stdin (except the first), Stdout or Stderr set.
// On failure every process already started is terminated and reaped.
func StartPipe(grace time.Duration, cmds ...*exec.Cmd) (*Pipe, error) {
	if len(cmds) == 0 {
		return nil, errors.New("no commands to start")
	}
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	p := &Pipe{grace: grace}

	// Parent copies of every pipe end, closed once the children hold their own.
	var parentEnds []*os.File
	closeParentEnds := func() {
		for _, f := range parentEnds {
			_ = f.Close()
		}
		parentEnds = nil
	}

	pending := make([]*process, len(cmds))
	for i, cmd := range cmds {
		r, w, err := os.Pipe()
		if err != nil {
			closeParentEnds()
			if p.out != nil {
				_ = p.out.Close()
			}
			return nil, fmt.Errorf("failed to create pipe: %w", err)
		}

		cmd.Stdout = w
		parentEnds = append(parentEnds, w)
		if i < len(cmds)-1 {
			cmds[i+1].Stdin = r
			parentEnds = append(parentEnds, r)
		} else {
			p.out = r
		}

		pending[i] = &process{cmd: cmd, stderr: &tailBuffer{limit: stderrTail}, done: make(chan struct{})}
		cmd.Stderr = pending[i].stderr
	}

	for _, proc := range pending {
		if err := proc.cmd.Start(); err != nil {
			closeParentEnds()
			p.abort()
			return nil, fmt.Errorf("failed to start %s: %w", proc.cmd.Path, err)
		}

		p.procs = append(p.procs, proc)
		go proc.wait()
	}

	closeParentEnds()
	return p, nil
}

// Read reads from the stdout of the last process.
func (p *Pipe) Read(b []byte) (int, error) {
	return p.out.Read(b)
}

// Close terminates every process still running (SIGTERM, then SIGKILL after the grace
// period), waits for all of them to exit and closes the output.
// It returns an error only if a process exited on its own with a failure status.
func (p *Pipe) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.shutdown()
		if p.out != nil {
			_ = p.out.Close()
		}
	})
	return p.closeErr
}

func (p *Pipe) shutdown() error {
	var natural []error
	signalled := make([]bool, len(p.procs))

	for i, proc := range p.procs {
		select {
		case <-proc.done:
			if proc.err != nil {
				natural = append(natural, proc.failure())
			}
		default:
			signalled[i] = true
			_ = proc.cmd.Process.Signal(syscall.SIGTERM)
		}
	}

	deadline := time.NewTimer(p.grace)
	defer deadline.Stop()

	for i, proc := range p.procs {
		if !signalled[i] {
			continue
		}
		select {
		case <-proc.done:
		case <-deadline.C:
			// Timer fired once; kill this and every later straggler without waiting again.
			for _, rest := range p.procs[i:] {
				select {
				case <-rest.done:
				default:
					_ = rest.cmd.Process.Kill()
				}
			}
			<-proc.done
		}
	}

	// Reap stragglers killed above.
	for _, proc := range p.procs {
		<-proc.done
	}

	return errors.Join(natural...)
}

// abort is used when the chain failed to start.
func (p *Pipe) abort() {
	_ = p.shutdown()
	if p.out != nil {
		_ = p.out.Close()
	}
}

// exited reports whether every process in the chain has exited.
func (p *Pipe) exited() bool {
	for _, proc := range p.procs {
		select {
		case <-proc.done:
		default:
			return false
		}
	}
	return true
}

// PIDs returns the process IDs of the chain, first to last.
func (p *Pipe) PIDs() []int {
	pids := make([]int, 0, len(p.procs))
	for _, proc := range p.procs {
		pids = append(pids, proc.cmd.Process.Pid)
	}
	return pids
}

func (proc *process) wait() {
	proc.err = proc.cmd.Wait()
	close(proc.done)
}

func (proc *process) failure() error {
	name := proc.cmd.Path
	if tail := proc.stderr.String(); tail != "" {
		return fmt.Errorf("%s exited: %w: %s", name, proc.err, lastLine(tail))
	}
	return fmt.Errorf("%s exited: %w", name, proc.err)
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func (t *tailBuffer) Write(b []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, b...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(b), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}

var _ io.ReadCloser = (*Pipe)(nil)
