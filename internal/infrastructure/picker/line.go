package picker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// LinePicker is a text Picker over a Browser. Each prompt lists the
// directory; the user answers with an entry number or name, "..", "cd
// DIR", "f" to cycle filters, or "q" to cancel.
type LinePicker struct {
	Browser *Browser
	In      io.Reader
	Out     io.Writer
}

// Pick prompts until a file is chosen. Cancelling ctx returns ErrCancelled
// at once, even while waiting for a line; the reader goroutine then exits
// when In returns.
func (p *LinePicker) Pick(ctx context.Context) (string, error) {
	lines, readErr := p.readLines(ctx)
	for {
		if err := ctx.Err(); err != nil {
			return "", errors.Wrap(ErrCancelled, err.Error())
		}
		if p.Browser.Dirty() {
			if err := p.Browser.Refresh(); err != nil {
				return "", err
			}
		}
		p.list()

		var line string
		select {
		case <-ctx.Done():
			return "", errors.Wrap(ErrCancelled, ctx.Err().Error())
		case l, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return "", errors.Wrap(err, "picker: read")
				}
				return "", ErrCancelled
			}
			line = l
		}

		path, err := p.handle(strings.TrimSpace(line))
		switch {
		case errors.Is(err, ErrCancelled):
			return "", err
		case err != nil:
			fmt.Fprintf(p.Out, "error: %v\n", err)
		case path != "":
			return path, nil
		}
	}
}

// readLines scans In on its own goroutine. lines is closed at end of
// input, after the scan error (or nil) is sent on the returned error channel.
func (p *LinePicker) readLines(ctx context.Context) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(p.In)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- sc.Err()
	}()
	return lines, errc
}

func (p *LinePicker) handle(cmd string) (string, error) {
	b := p.Browser
	switch {
	case cmd == "":
		return "", nil
	case cmd == "q":
		return "", ErrCancelled
	case cmd == "..":
		return "", b.Up()
	case cmd == "f":
		return "", b.NextFilter()
	case strings.HasPrefix(cmd, "cd "):
		return "", b.Go(strings.TrimSpace(strings.TrimPrefix(cmd, "cd ")))
	}

	name := cmd
	if n, err := strconv.Atoi(cmd); err == nil {
		entries := b.Entries()
		if n < 1 || n > len(entries) {
			return "", errors.Wrapf(ErrNotFound, "entry %d", n)
		}
		name = entries[n-1].Name
	}
	e, ok := b.find(name)
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "%q", name)
	}
	if e.Dir {
		return "", b.Enter(name)
	}
	return b.Select(name)
}

func (p *LinePicker) list() {
	b := p.Browser
	fmt.Fprintf(p.Out, "%s [%s]\n", b.Dir(), b.Filter().Name)
	for i, e := range b.Entries() {
		suffix := ""
		if e.Dir {
			suffix = "/"
		}
		fmt.Fprintf(p.Out, "%3d  %s%s\n", i+1, e.Name, suffix)
	}
	fmt.Fprint(p.Out, "> ")
}
