package props

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// PropertiesWriter writes a key-value bag in .props format: sorted
// "key=value" lines with non-ASCII runes escaped as \uXXXX
type PropertiesWriter struct {
	w      io.Writer
	name   string
	values map[string]string
}

// NewPropertiesWriter creates a writer for a property bag
func NewPropertiesWriter(w io.Writer, name string, values map[string]string) *PropertiesWriter {
	return &PropertiesWriter{w: w, name: name, values: values}
}

// Write encodes the bag
func (pw *PropertiesWriter) Write() error {
	bw := bufio.NewWriter(pw.w)

	if pw.name != "" {
		fmt.Fprintf(bw, "#%s\n", escape(pw.name, false))
	}

	keys := make([]string, 0, len(pw.values))
	for k := range pw.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		bw.WriteString(escape(k, true))
		bw.WriteByte('=')
		bw.WriteString(escape(pw.values[k], false))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func escape(s string, isKey bool) string {
	var b strings.Builder
	for i, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\f':
			b.WriteString(`\f`)
		case '=', ':', '#', '!':
			b.WriteByte('\\')
			b.WriteRune(r)
		case ' ':
			if isKey || i == 0 {
				b.WriteString(`\ `)
			} else {
				b.WriteRune(r)
			}
		default:
			if r < 0x20 || r > 0x7e {
				for _, u := range utf16.Encode([]rune{r}) {
					fmt.Fprintf(&b, `\u%04X`, u)
				}
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// ReadProperties parses a .props document. Input that is not valid UTF-8 is
// treated as a legacy single-byte file and converted using the detected
// charset.
func ReadProperties(r io.Reader) (map[string]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		if data, err = toUTF8(data); err != nil {
			return nil, err
		}
	}

	values := make(map[string]string)
	lines := logicalLines(string(data))
	for _, line := range lines {
		key, value := splitEntry(line)
		k, err := unescape(key)
		if err != nil {
			return nil, err
		}
		v, err := unescape(value)
		if err != nil {
			return nil, err
		}
		values[k] = v
	}
	return values, nil
}

// MinCharsetConfidence is the detector confidence below which legacy files
// are assumed to be ISO-8859-1
const MinCharsetConfidence = 60

// DetectCharset returns the lower-cased charset name of data and the
// detector's confidence, "utf-8" when detection fails
func DetectCharset(data []byte) (string, int) {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8", 0
	}
	return strings.ToLower(result.Charset), result.Confidence
}

func toUTF8(data []byte) ([]byte, error) {
	label, confidence := DetectCharset(data)
	if label == "utf-8" || confidence < MinCharsetConfidence {
		label = "iso-8859-1"
	}
	rd, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		rd, err = charset.NewReaderLabel("iso-8859-1", bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s properties: %w", label, err)
		}
	}
	return io.ReadAll(rd)
}

// logicalLines joins continuation lines and drops blanks and comments
func logicalLines(text string) []string {
	var (
		out     []string
		pending strings.Builder
		joining bool
	)

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimLeft(raw, " \t\f")
		if !joining && (line == "" || line[0] == '#' || line[0] == '!') {
			continue
		}
		if continues(line) {
			pending.WriteString(line[:len(line)-1])
			joining = true
			continue
		}
		pending.WriteString(line)
		out = append(out, pending.String())
		pending.Reset()
		joining = false
	}
	if joining {
		out = append(out, pending.String())
	}
	return out
}

// continues reports whether a line ends in an odd number of backslashes
func continues(line string) bool {
	n := 0
	for i := len(line) - 1; i >= 0 && line[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

func splitEntry(line string) (key, value string) {
	escaped := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '=', ':':
			return line[:i], strings.TrimLeft(line[i+1:], " \t\f")
		case ' ', '\t', '\f':
			rest := strings.TrimLeft(line[i:], " \t\f")
			if rest != "" && (rest[0] == '=' || rest[0] == ':') {
				rest = rest[1:]
			}
			return line[:i], strings.TrimLeft(rest, " \t\f")
		}
	}
	return line, ""
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var (
		b     strings.Builder
		units []uint16
	)
	flush := func() {
		if len(units) > 0 {
			b.WriteString(string(utf16.Decode(units)))
			units = units[:0]
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			flush()
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'u':
			if i+5 > len(s) {
				return "", fmt.Errorf("truncated unicode escape in %q", s)
			}
			u, err := strconv.ParseUint(s[i+1:i+5], 16, 16)
			if err != nil {
				return "", fmt.Errorf("invalid unicode escape in %q: %w", s, err)
			}
			units = append(units, uint16(u))
			i += 4
			continue
		case 'n':
			flush()
			b.WriteByte('\n')
		case 'r':
			flush()
			b.WriteByte('\r')
		case 't':
			flush()
			b.WriteByte('\t')
		case 'f':
			flush()
			b.WriteByte('\f')
		default:
			flush()
			b.WriteByte(s[i])
		}
	}
	flush()
	return b.String(), nil
}
