package gomkore

import (
	"io"
	"os"
	"strings"
	"testing"
)

func ExamplePrefixWriter() {
	pw := NewPrefixWriterString(os.Stdout, "PRE:")
	io.WriteString(pw, "foo")
	io.WriteString(pw, "bar\n")
	io.WriteString(pw, "baz\nquux")
	// Output:
	// PRE:foobar
	// PRE:baz
	// PRE:quux
}

func TestPrefixWriter_count(t *testing.T) {
	var sb strings.Builder
	pw := NewPrefixWriterString(&sb, "> ")
	n, err := io.WriteString(pw, "a\nbc\n")
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("wrote %d bytes, want 5", n)
	}
	if s := sb.String(); s != "> a\n> bc\n" {
		t.Errorf("unexpected output %q", s)
	}
}
