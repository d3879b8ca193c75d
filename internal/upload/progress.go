package upload

import (
	"io"
	"math"
	"sync"
)

// Progress is one transfer progress event.
type Progress struct {
	File    string
	Percent int
}

// ProgressFunc observes transfer progress.
type ProgressFunc func(Progress)

// ProgressChan adapts ch into a ProgressFunc. Sends block until the
// receiver is ready.
func ProgressChan(ch chan<- Progress) ProgressFunc {
	return func(p Progress) {
		ch <- p
	}
}

// serialized makes fn safe to call from concurrent transfers.
func serialized(fn ProgressFunc) ProgressFunc {
	if fn == nil {
		return nil
	}
	var mu sync.Mutex
	return func(p Progress) {
		mu.Lock()
		defer mu.Unlock()
		fn(p)
	}
}

// progressReader reports the share of total bytes read so far. Only
// increasing percentages are reported.
type progressReader struct {
	r      io.Reader
	name   string
	total  int64
	loaded int64
	last   int
	report ProgressFunc
}

func newProgressReader(r io.Reader, name string, total int64, report ProgressFunc) *progressReader {
	return &progressReader{r: r, name: name, total: total, last: -1, report: report}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		p.emit()
	}
	return n, err
}

func (p *progressReader) emit() {
	// length not computable
	if p.report == nil || p.total <= 0 {
		return
	}
	percent := int(math.Round(float64(p.loaded) / float64(p.total) * 100))
	if percent > 100 {
		percent = 100
	}
	if percent <= p.last {
		return
	}
	p.last = percent
	p.report(Progress{File: p.name, Percent: percent})
}
