package kcf

import (
	"bufio"
	"io"
	"strings"

	"github.com/turtacn/kcfgraph/pkg/errors"
)

// SplitRecords splits a multi-record KCF stream on "///" terminator lines.
// Terminators are dropped; blank input between terminators is skipped.  A
// trailing record without a terminator is returned as well.
func SplitRecords(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)

	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if strings.TrimSpace(cur.String()) != "" {
			out = append(out, cur.String())
		}
		cur.Reset()
	}
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == recordTerminator {
			flush()
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "split KCF records")
	}
	flush()
	return out, nil
}

//Personal.AI order the ending
