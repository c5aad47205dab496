package tsearch

import "github.com/hupe1980/gistkit/errcode"

func syntaxErr(kind, in string, pos int, msg string) error {
	return errcode.Newf(errcode.CodeSyntax, "invalid %s: %s", kind, msg).
		WithDetail("at position %d of %q", pos, in)
}
