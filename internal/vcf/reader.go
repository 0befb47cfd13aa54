package vcf

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Reader decodes records one line at a time from a stream, for inputs too
// large to hold as a single Document.
type Reader struct {
	reader     *bufio.Reader
	parser     *Parser
	header     *Header
	lineNumber int
	pending    string
	hasPending bool
}

// NewReader reads the header from r and returns a Reader positioned at the
// first data line.
func NewReader(r io.Reader, p *Parser) (*Reader, error) {
	rd := &Reader{
		reader: bufio.NewReader(r),
		parser: p,
	}
	if err := rd.parseHeader(); err != nil {
		return nil, err
	}
	return rd, nil
}

// readLine returns the next line without its terminator. ok is false at EOF.
func (r *Reader) readLine() (line string, ok bool, err error) {
	line, err = r.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", false, err
	}
	if err == io.EOF && line == "" {
		return "", false, nil
	}
	r.lineNumber++
	return strings.TrimRight(line, "\r\n"), true, nil
}

func (r *Reader) parseHeader() error {
	var lines []string
	for {
		line, ok, err := r.readLine()
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		if !ok {
			break
		}
		if line == "" && len(lines) == 0 {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			r.pending, r.hasPending = line, true
			break
		}
		lines = append(lines, line)
	}

	h, err := ParseHeader(lines)
	if err != nil {
		return err
	}
	r.header = h
	return nil
}

// Header returns the parsed header.
func (r *Reader) Header() *Header {
	return r.header
}

// Next reads the next record.
// Returns nil, nil when there are no more records.
func (r *Reader) Next() (*Record, error) {
	for {
		var line string
		if r.hasPending {
			line, r.hasPending = r.pending, false
		} else {
			l, ok, err := r.readLine()
			if err != nil {
				return nil, fmt.Errorf("read record line: %w", err)
			}
			if !ok {
				return nil, nil
			}
			line = l
		}

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return r.parser.ParseRecord(line, r.header, r.lineNumber)
	}
}

// LineNumber returns the current line number being processed.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}
