package fetch

import (
	"github.com/loykin/modelfetch/internal/constants"
	"github.com/loykin/modelfetch/internal/fileutils"
	"github.com/tidwall/pretty"
	"github.com/ubuntu/decorate"
)

// Indent re-serializes body with the given indent string, one member or
// element per line. Token text is copied unchanged.
func Indent(body []byte, indent string) []byte {
	if indent == "" {
		indent = constants.DefaultIndent
	}
	out := pretty.PrettyOptions(body, &pretty.Options{
		Width:  constants.DefaultPrettyWidth,
		Indent: indent,
	})
	if n := len(out); n == 0 || out[n-1] != '\n' {
		out = append(out, '\n')
	}
	return out
}

// Persist writes p to path, replacing any existing file.
func Persist(path string, p Payload, indent string) (n int, err error) {
	defer decorate.OnError(&err, "could not save %s", path)

	data := Indent(p.Body, indent)
	if err := fileutils.AtomicWrite(path, data); err != nil {
		return 0, err
	}
	return len(data), nil
}
