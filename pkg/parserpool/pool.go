// Package parserpool provides a pool of botanical gnparser instances for
// concurrent name parsing. Lichen names follow the botanical code.
package parserpool

import (
	"runtime"

	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/gnames/gnparser"
	"github.com/gnames/gnparser/ent/parsed"
)

// Pool provides parsers for concurrent use.
type Pool interface {
	// Parse parses a scientific name string. It takes a parser from the
	// pool and returns it back after parsing, blocking while all parsers
	// are busy.
	Parse(nameString string) parsed.Parsed

	// Size returns the number of parsers in the pool.
	Size() int

	// Close releases the parsers. The pool cannot be used afterwards.
	Close()
}

type pool struct {
	ch   chan gnparser.GNparser
	size int
}

// NewPool creates a pool of jobsNum botanical parsers. If jobsNum is 0 it
// defaults to runtime.NumCPU().
func NewPool(jobsNum int) Pool {
	size := jobsNum
	if size <= 0 {
		size = runtime.NumCPU()
	}

	cfg := gnparser.NewConfig(gnparser.OptCode(nomcode.Botanical))
	return &pool{
		ch:   gnparser.NewPool(cfg, size),
		size: size,
	}
}

func (p *pool) Parse(nameString string) parsed.Parsed {
	parser := <-p.ch
	res := parser.ParseName(nameString)
	p.ch <- parser
	return res
}

func (p *pool) Size() int {
	return p.size
}

func (p *pool) Close() {
	if p.ch == nil {
		return
	}
	close(p.ch)
	for range p.ch {
	}
	p.ch = nil
}
