package generator

import (
	"github.com/hwforge/xactgen/pkg/vhdl"
)

// OpKind identifies one emission instruction produced by a traversal
type OpKind int

const (
	// OpDecl emits one declaration statement
	OpDecl OpKind = iota
	// OpComment emits a comment line or block
	OpComment
	// OpRule emits a full-width comment rule
	OpRule
	// OpBlank emits an empty line
	OpBlank
	// OpInclude emits library use directives
	OpInclude
	// OpPackageOpen and OpPackageClose emit the package boundaries
	OpPackageOpen
	OpPackageClose
)

// Op is a single emission instruction. Traversals over the register map
// return sequences of these; rendering them to actual text is a separate
// step. Which members are meaningful depends on Kind.
type Op struct {
	Kind OpKind

	// OpDecl
	Decl vhdl.Declaration

	// OpComment (Text, Indent, Small, Caption), OpPackageOpen/Close (Text)
	Text    string
	Indent  int
	Small   bool
	Caption string

	// OpRule
	Gap int

	// OpInclude
	Units []string
}

func declOp(d vhdl.Declaration) Op {
	return Op{Kind: OpDecl, Decl: d}
}

func commentOp(text string, indent int, small bool) Op {
	return Op{Kind: OpComment, Text: text, Indent: indent, Small: small}
}

func captionOp(text, caption string, indent int) Op {
	return Op{Kind: OpComment, Text: text, Caption: caption, Indent: indent}
}

func ruleOp(gap int) Op {
	return Op{Kind: OpRule, Gap: gap}
}

func blankOp() Op {
	return Op{Kind: OpBlank}
}

// Render feeds a sequence of emission instructions to a VHDL writer.
// Rendering errors surface unchanged; nothing past the failing
// instruction is rendered.
func Render(ops []Op, w *vhdl.Writer) error {
	for _, op := range ops {
		switch op.Kind {
		case OpDecl:
			if err := w.WriteDeclaration(op.Decl); err != nil {
				return err
			}
		case OpComment:
			w.WriteComment(op.Text, op.Indent, vhdl.CommentOptions{
				Small:   op.Small,
				Caption: op.Caption,
			})
		case OpRule:
			w.WriteRule(op.Gap)
		case OpBlank:
			w.WriteBlank()
		case OpInclude:
			w.WriteIncludes(op.Units)
		case OpPackageOpen:
			w.WritePackage(op.Text, true)
		case OpPackageClose:
			w.WritePackage(op.Text, false)
		}
	}
	return nil
}
