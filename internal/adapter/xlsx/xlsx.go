// Package xlsx reads tabular sources from and writes exports to
// Office Open XML workbooks.
package xlsx

import (
	"fmt"
	"strings"
)

// ContentType is the MIME type of the written workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}
