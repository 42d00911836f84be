// Package rawprint sends finished documents to network printers that accept
// raw jobs on a TCP port (JetDirect / AppSocket, usually port 9100).
package rawprint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// DefaultPort is used when the printer address has no port.
const DefaultPort = "9100"

// DefaultTimeout bounds connecting and sending when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// uel is the PJL universal exit language sequence.
const uel = "\x1b%-12345X"

// Options controls a single print job.
type Options struct {
	Timeout time.Duration // Deadline for the whole job (0 = DefaultTimeout)
	JobName string        // When set, the job is wrapped in a PJL header carrying this name
}

// Address adds DefaultPort to addr if it has no port.
func Address(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", errors.New("printer address is empty")
	}
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr, nil
	}
	host := strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
	return net.JoinHostPort(host, DefaultPort), nil
}

// Send streams r to the printer at addr. The connection is closed when the
// job has been written; the printer does not acknowledge jobs.
func Send(ctx context.Context, addr string, r io.Reader, opts Options) error {
	target, err := Address(addr)
	if err != nil {
		return err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", target)
	if err != nil {
		return fmt.Errorf("failed to connect to printer %s: %w", target, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("failed to set deadline: %w", err)
		}
	}

	// Unblock the write if the caller gives up early
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := writeJob(conn, r, opts.JobName); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("failed to send job to %s: %w", target, ctxErr)
		}
		return fmt.Errorf("failed to send job to %s: %w", target, err)
	}

	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.CloseWrite(); err != nil {
			return fmt.Errorf("failed to finish job on %s: %w", target, err)
		}
	}
	return nil
}

func writeJob(w io.Writer, r io.Reader, jobName string) error {
	if jobName != "" {
		if _, err := io.WriteString(w, pjlHeader(jobName)); err != nil {
			return err
		}
	}
	if _, err := io.Copy(w, r); err != nil {
		return err
	}
	if jobName != "" {
		if _, err := io.WriteString(w, pjlFooter(jobName)); err != nil {
			return err
		}
	}
	return nil
}

func pjlHeader(jobName string) string {
	name := pjlName(jobName)
	return uel + "@PJL\r\n" +
		"@PJL JOB NAME=\"" + name + "\"\r\n" +
		"@PJL ENTER LANGUAGE=PDF\r\n"
}

func pjlFooter(jobName string) string {
	return uel + "@PJL EOJ NAME=\"" + pjlName(jobName) + "\"\r\n" + uel
}

// pjlName drops characters that would end the quoted PJL string.
func pjlName(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '"' || r < 0x20 || r > 0x7e {
			return -1
		}
		return r
	}, s)
}
