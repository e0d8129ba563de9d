package expand

import (
	"go/ast"
	"go/scanner"
	"go/token"
	"strconv"
	"strings"

	"datafile-test/internal/diagnostic"
	"datafile-test/internal/suggest"
)

// Directive marks a function as data-file driven. It must appear as a line
// comment in the function's doc comment, followed by one string literal.
const Directive = "//datafile:test"

// Annotation is a parsed //datafile:test directive.
type Annotation struct {
	// Path is the data file path exactly as written in the directive.
	Path string
	// Pos is the position of the directive comment.
	Pos token.Position
}

// ParseAnnotation parses the directive argument. The argument must be a
// single Go string literal, interpreted or raw.
func ParseAnnotation(arg string, pos token.Position) (Annotation, error) {
	fset := token.NewFileSet()
	file := fset.AddFile("", -1, len(arg))

	var (
		s        scanner.Scanner
		scanErrs scanner.ErrorList
	)

	s.Init(file, []byte(arg), func(p token.Position, msg string) {
		scanErrs.Add(p, msg)
	}, 0)

	var lits []string

	for {
		_, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}

		// The scanner inserts a semicolon after a trailing literal.
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}

		if tok != token.STRING {
			return Annotation{}, diagnostic.Errorf(pos, diagnostic.CodeMalformedAnnotation,
				"%s argument must be a single string literal, found %s", Directive, describeToken(tok, lit))
		}

		lits = append(lits, lit)
	}

	if scanErrs.Len() > 0 {
		return Annotation{}, diagnostic.Errorf(pos, diagnostic.CodeMalformedAnnotation,
			"%s argument: %v", Directive, scanErrs.Err())
	}

	if len(lits) != 1 {
		return Annotation{}, diagnostic.Errorf(pos, diagnostic.CodeMalformedAnnotation,
			"%s takes exactly one string literal, found %d", Directive, len(lits))
	}

	path, err := strconv.Unquote(lits[0])
	if err != nil {
		return Annotation{}, diagnostic.Errorf(pos, diagnostic.CodeMalformedAnnotation,
			"%s argument %s: %v", Directive, lits[0], err)
	}

	if path == "" {
		return Annotation{}, diagnostic.Errorf(pos, diagnostic.CodeMalformedAnnotation,
			"%s path must not be empty", Directive)
	}

	return Annotation{Path: path, Pos: pos}, nil
}

func describeToken(tok token.Token, lit string) string {
	if lit != "" && lit != "\n" {
		return tok.String() + " " + lit
	}

	return strconv.Quote(tok.String())
}

// FindAnnotation looks for the directive in a function doc comment. It
// returns nil when the function carries no directive.
func FindAnnotation(fset *token.FileSet, doc *ast.CommentGroup) (*Annotation, error) {
	if doc == nil {
		return nil, nil
	}

	var found *Annotation

	for _, c := range doc.List {
		arg, ok := directiveArg(c.Text)
		if !ok {
			continue
		}

		pos := fset.Position(c.Slash)
		if found != nil {
			return nil, diagnostic.Errorf(pos, diagnostic.CodeDuplicateAnnotation,
				"function carries more than one %s directive (first at line %d)", Directive, found.Pos.Line)
		}

		ann, err := ParseAnnotation(arg, pos)
		if err != nil {
			return nil, err
		}

		found = &ann
	}

	return found, nil
}

// directiveArg returns the text after the directive when comment is one.
func directiveArg(comment string) (string, bool) {
	rest, ok := strings.CutPrefix(comment, Directive)
	if !ok {
		return "", false
	}

	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		// e.g. //datafile:tests, a different directive.
		return "", false
	}

	return strings.TrimSpace(rest), true
}

// Lookalike reports whether comment was probably meant as the directive but
// is not recognized as one, as in "// datafile:test" or "//datafile:tests".
func Lookalike(comment string) bool {
	if _, ok := directiveArg(comment); ok {
		return false
	}

	rest, ok := strings.CutPrefix(comment, "//")
	if !ok {
		return false
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return false
	}

	_, ok = suggest.Closest(fields[0], strings.TrimPrefix(Directive, "//"))

	return ok
}
