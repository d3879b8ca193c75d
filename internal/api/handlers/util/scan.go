package util

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	clamd "github.com/dutchcoders/go-clamd"
)

var ErrScanFailed = errors.New("virus scan failed")

// Verdict is the outcome of scanning one file.
type Verdict struct {
	Infected  bool
	Signature string
}

// VirusScanner inspects a stream of bytes.
type VirusScanner interface {
	Scan(ctx context.Context, r io.Reader) (Verdict, error)
}

// ClamAVScanner streams files to a clamd daemon.
type ClamAVScanner struct {
	client *clamd.Clamd
}

// NewClamAVScanner accepts tcp://host:port or a unix socket path.
func NewClamAVScanner(clamAvUrl string) *ClamAVScanner {
	return &ClamAVScanner{client: clamd.NewClamd(clamAvUrl)}
}

func (s *ClamAVScanner) Ping() error {
	return s.client.Ping()
}

func (s *ClamAVScanner) Scan(ctx context.Context, r io.Reader) (Verdict, error) {
	abort := make(chan bool)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		close(abort)
	}()

	results, err := s.client.ScanStream(r, abort)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrScanFailed, err)
	}
	return collectVerdict(results)
}

func collectVerdict(results <-chan *clamd.ScanResult) (Verdict, error) {
	var (
		v       Verdict
		scanErr error
		seen    bool
	)
	for res := range results {
		seen = true
		switch res.Status {
		case clamd.RES_FOUND:
			v.Infected = true
			v.Signature = strings.TrimSpace(res.Description)
		case clamd.RES_ERROR, clamd.RES_PARSE_ERROR:
			scanErr = fmt.Errorf("%w: %s", ErrScanFailed, strings.TrimSpace(res.Raw))
		}
	}
	if v.Infected {
		return v, nil
	}
	if scanErr != nil {
		return Verdict{}, scanErr
	}
	if !seen {
		return Verdict{}, fmt.Errorf("%w: no answer from clamd", ErrScanFailed)
	}
	return v, nil
}
