// Package outputparser extracts sentinel-prefixed key:value fields from a
// child process's stdout. User code writes lines of the form
// "<prefix><key>:<value>"; everything else is ignored.
package outputparser

import (
	"bufio"
	"encoding/hex"
	"io"
	"strings"
)

// Decoder attempts to turn a trimmed value string into bytes. It returns
// ok=false to let the next decoder in the list try.
type Decoder func(value string) (decoded []byte, ok bool)

// HexDecoder decodes the value as hex, succeeding only on valid hex input.
func HexDecoder(value string) ([]byte, bool) {
	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, false
	}
	return b, true
}

// UTF8Decoder always succeeds, taking the value's raw bytes verbatim. It
// must be last in a decoder list since it never defers.
func UTF8Decoder(value string) ([]byte, bool) {
	return []byte(value), true
}

// DefaultDecoders is hex first, then raw UTF-8 as a catch-all.
func DefaultDecoders() []Decoder {
	return []Decoder{HexDecoder, UTF8Decoder}
}

// Parser pulls sentinel fields out of a line-oriented stdout stream.
type Parser struct {
	Prefix   string
	Decoders []Decoder
}

// New builds a Parser with the given sentinel prefix and the default
// hex-then-utf8 decoder priority list.
func New(prefix string) *Parser {
	return &Parser{Prefix: prefix, Decoders: DefaultDecoders()}
}

// Parse reads r line by line and returns the mapping of sentinel keys to
// decoded values. A later line with a key already seen overwrites the
// earlier one. Lines without the sentinel prefix, or whose value decodes
// under no configured decoder, are skipped. Scanner errors are returned
// verbatim; a clean EOF yields whatever was parsed so far.
func (p *Parser) Parse(r io.Reader) (map[string][]byte, error) {
	result := make(map[string][]byte)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, p.Prefix) {
			continue
		}
		rest := line[len(p.Prefix):]

		sep := strings.IndexByte(rest, ':')
		if sep < 0 {
			continue
		}
		key := rest[:sep]
		value := strings.TrimSpace(rest[sep+1:])

		for _, decode := range p.Decoders {
			if decoded, ok := decode(value); ok {
				result[key] = decoded
				break
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return result, err
	}
	return result, nil
}
