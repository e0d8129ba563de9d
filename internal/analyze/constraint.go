package analyze

import (
	"go/ast"
	"go/build/constraint"
)

// BuildConstraint returns the //go:build comment of file and its parsed
// expression. Both are nil when the file has no such line.
func BuildConstraint(file *ast.File) (*ast.Comment, constraint.Expr) {
	for _, group := range file.Comments {
		if group.Pos() >= file.Package {
			break
		}

		for _, c := range group.List {
			if !constraint.IsGoBuild(c.Text) {
				continue
			}

			expr, err := constraint.Parse(c.Text)
			if err != nil {
				// go list rejects such files before we get here.
				return nil, nil
			}

			return c, expr
		}
	}

	return nil, nil
}

// MentionsTag reports whether the tag appears anywhere in expr.
func MentionsTag(expr constraint.Expr, tag string) bool {
	switch x := expr.(type) {
	case *constraint.TagExpr:
		return x.Tag == tag
	case *constraint.NotExpr:
		return MentionsTag(x.X, tag)
	case *constraint.AndExpr:
		return MentionsTag(x.X, tag) || MentionsTag(x.Y, tag)
	case *constraint.OrExpr:
		return MentionsTag(x.X, tag) || MentionsTag(x.Y, tag)
	default:
		return false
	}
}

// NegateTag returns expr with every occurrence of tag negated, so that
// "datafiletest && linux" becomes "!datafiletest && linux". Double
// negations collapse.
func NegateTag(expr constraint.Expr, tag string) constraint.Expr {
	switch x := expr.(type) {
	case *constraint.TagExpr:
		if x.Tag == tag {
			return &constraint.NotExpr{X: x}
		}

		return x
	case *constraint.NotExpr:
		if t, ok := x.X.(*constraint.TagExpr); ok && t.Tag == tag {
			return t
		}

		return &constraint.NotExpr{X: NegateTag(x.X, tag)}
	case *constraint.AndExpr:
		return &constraint.AndExpr{X: NegateTag(x.X, tag), Y: NegateTag(x.Y, tag)}
	case *constraint.OrExpr:
		return &constraint.OrExpr{X: NegateTag(x.X, tag), Y: NegateTag(x.Y, tag)}
	default:
		return expr
	}
}
