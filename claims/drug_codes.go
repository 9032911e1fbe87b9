package claims

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// LoadDrugCodes reads a newline-delimited product code list. Each line is a
// member as-is; a blank line contributes the empty code.
func LoadDrugCodes(path string) (DrugCodes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read drug code file: %w", err)
	}
	defer f.Close()

	codes, err := ParseDrugCodes(f)
	if err != nil {
		return nil, fmt.Errorf("parse drug code file %s: %w", path, err)
	}
	return codes, nil
}

// ParseDrugCodes reads one code per line from r. See scanCodeLines for what
// ends a line.
func ParseDrugCodes(r io.Reader) (DrugCodes, error) {
	codes := make(DrugCodes)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(scanCodeLines)
	for sc.Scan() {
		codes[sc.Text()] = true
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return codes, nil
}

// Multi-byte line separators: NEL, LINE SEPARATOR, PARAGRAPH SEPARATOR.
var (
	nel  = []byte("\u0085")
	lsep = []byte("\u2028")
	psep = []byte("\u2029")
)

// scanCodeLines is a bufio.SplitFunc breaking on \n, \r, \r\n, \v, \f,
// \x1c-\x1e, U+0085, U+2028 and U+2029. A final line without a terminator is
// returned; no empty token follows a trailing terminator.
func scanCodeLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\n', '\v', '\f', 0x1c, 0x1d, 0x1e:
			return i + 1, data[:i], nil
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if !atEOF {
				return 0, nil, nil
			}
			return i + 1, data[:i], nil
		case 0xc2, 0xe2:
			rest := data[i:]
			for _, sep := range [][]byte{nel, lsep, psep} {
				if bytes.HasPrefix(rest, sep) {
					return i + len(sep), data[:i], nil
				}
				if !atEOF && len(rest) < len(sep) && bytes.HasPrefix(sep, rest) {
					return 0, nil, nil
				}
			}
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
