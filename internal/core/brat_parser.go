package core

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"ner-eval/internal/core/types"
)

/*
Entity lines of a brat standoff file have three tab separated fields:

	T<id> \t <type and offsets> \t <text>

The middle field is parsed with the grammar below; everything else on the line
is split on tabs.

Span      := Label Fragment ( ";" Fragment )*
Fragment  := <int> <int>

Discontinuous spans are collapsed to the first fragment's start and the last
fragment's stop.
*/

var (
	bratLexer = lexer.MustSimple([]lexer.SimpleRule{
		// A label is any run of non-space characters that is not all digits,
		// so type names may start with a digit or a non-ASCII letter.
		{Name: "Label", Pattern: `[^\s;]*[^\s;\d][^\s;]*`},
		{Name: "Int", Pattern: `\d+`},
		{Name: "Semi", Pattern: `;`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	bratParser = participle.MustBuild[BratSpan](
		participle.Lexer(bratLexer),
		participle.Elide("Whitespace"),
	)
)

type BratSpan struct {
	Label     string          `parser:"@Label"`
	Fragments []*BratFragment `parser:"@@ ( \";\" @@ )*"`
}

type BratFragment struct {
	Start int `parser:"@Int"`
	Stop  int `parser:"@Int"`
}

func (s *BratSpan) Bounds() (int, int) {
	return s.Fragments[0].Start, s.Fragments[len(s.Fragments)-1].Stop
}

func ParseBratSpan(field string) (*BratSpan, error) {
	span, err := bratParser.ParseString("", field)
	if err != nil {
		return nil, fmt.Errorf("error parsing span '%s': %w", field, err)
	}
	return span, nil
}

// ParseAnnotations reads the entity lines of a brat annotation file. Lines
// that are not entity annotations (attributes, relations, notes) or that fail
// to parse are skipped and counted in malformed; blank lines are ignored. When
// lowercase is set, labels are lowercased.
func ParseAnnotations(r io.Reader, lowercase bool) (records []types.RawAnnotation, malformed int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			slog.Info("skipping non-entity annotation line", "line", lineNo, "content", line)
			malformed++
			continue
		}

		span, err := ParseBratSpan(fields[1])
		if err != nil {
			slog.Warn("annotation line did not fit the entity format", "line", lineNo, "error", err)
			malformed++
			continue
		}

		start, stop := span.Bounds()
		if start > stop {
			slog.Warn("annotation line has start after stop", "line", lineNo, "start", start, "stop", stop)
			malformed++
			continue
		}

		label := span.Label
		if lowercase {
			label = strings.ToLower(label)
		}

		records = append(records, types.RawAnnotation{
			Start: start,
			Stop:  stop,
			Label: label,
			Text:  fields[len(fields)-1],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, malformed, fmt.Errorf("error reading annotations: %w", err)
	}

	return records, malformed, nil
}
