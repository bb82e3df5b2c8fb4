package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"kymera/internal/ast"
	"kymera/internal/source"
)

// ASTNodeOutput is one node of the tree dump. The same tree backs the
// pretty and the JSON form.
type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Kind     string          `json:"kind,omitempty"`
	Span     source.Span     `json:"span"`
	Text     string          `json:"text,omitempty"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

type treeBuilder struct {
	b *ast.Builder
}

// BuildAST converts a parse into the dump tree.
func BuildAST(b *ast.Builder) ASTNodeOutput {
	tb := treeBuilder{b: b}
	root := ASTNodeOutput{Type: "File", Span: b.File.Span}
	for _, id := range b.File.Items {
		root.Children = append(root.Children, tb.item(id))
	}
	return root
}

// FormatASTPretty prints the tree with box-drawing guides and line:col spans.
func FormatASTPretty(w io.Writer, b *ast.Builder, file *source.File) error {
	root := BuildAST(b)
	var sb strings.Builder
	sb.WriteString(nodeLabel(&root, file))
	sb.WriteByte('\n')
	writeChildren(&sb, root.Children, "", file)
	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatASTJSON writes the tree as indented JSON.
func FormatASTJSON(w io.Writer, b *ast.Builder) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildAST(b))
}

func writeChildren(sb *strings.Builder, children []ASTNodeOutput, prefix string, file *source.File) {
	for i := range children {
		branch, next := "├─ ", "│  "
		if i == len(children)-1 {
			branch, next = "└─ ", "   "
		}
		sb.WriteString(prefix)
		sb.WriteString(branch)
		sb.WriteString(nodeLabel(&children[i], file))
		sb.WriteByte('\n')
		writeChildren(sb, children[i].Children, prefix+next, file)
	}
}

func nodeLabel(n *ASTNodeOutput, file *source.File) string {
	var sb strings.Builder
	sb.WriteString(n.Type)
	if n.Kind != "" {
		sb.WriteString(":")
		sb.WriteString(n.Kind)
	}
	if n.Text != "" {
		sb.WriteString(" ")
		sb.WriteString(n.Text)
	}
	if file != nil {
		start, end := file.Resolve(n.Span)
		fmt.Fprintf(&sb, " (%s-%s)", start, end)
	} else {
		fmt.Fprintf(&sb, " (%s)", n.Span)
	}
	return sb.String()
}

func (tb treeBuilder) item(id ast.ItemID) ASTNodeOutput {
	b := tb.b
	item := b.Items.Get(id)
	node := ASTNodeOutput{Type: "Item", Kind: item.Kind.String(), Span: item.Span, Text: source.Name(item.Name)}
	switch item.Kind {
	case ast.ItemImport:
		imp, _ := b.Items.Import(id)
		segs := make([]string, 0, len(imp.Path))
		for _, s := range imp.Path {
			segs = append(segs, source.Name(s))
		}
		node.Children = append(node.Children, ASTNodeOutput{Type: "Path", Span: item.Span, Text: strings.Join(segs, "::")})
	case ast.ItemFn:
		node.Children = tb.fn(id)
	case ast.ItemStruct:
		st, _ := b.Items.Struct(id)
		for _, f := range st.Fields {
			field := ASTNodeOutput{Type: "Field", Span: f.Span, Text: source.Name(f.Name)}
			if f.Type.IsValid() {
				field.Children = append(field.Children, tb.typ(f.Type))
			}
			node.Children = append(node.Children, field)
		}
	case ast.ItemEnum:
		en, _ := b.Items.Enum(id)
		for _, v := range en.Variants {
			node.Children = append(node.Children, ASTNodeOutput{Type: "Variant", Span: v.NameSpan, Text: source.Name(v.Name)})
		}
	case ast.ItemImpl:
		im, _ := b.Items.Impl(id)
		for _, m := range im.Methods {
			node.Children = append(node.Children, tb.item(m))
		}
	case ast.ItemInterface:
		ifz, _ := b.Items.Interface(id)
		for _, m := range ifz.Methods {
			node.Children = append(node.Children, tb.item(m))
		}
	case ast.ItemLet:
		let, _ := b.Items.Let(id)
		node.Children = tb.let(let)
	}
	return node
}

func (tb treeBuilder) fn(id ast.ItemID) []ASTNodeOutput {
	fn, _ := tb.b.Items.Fn(id)
	var out []ASTNodeOutput
	for _, p := range fn.Params {
		param := ASTNodeOutput{Type: "Param", Span: p.Span, Text: source.Name(p.Name)}
		if p.Mutable {
			param.Kind = "muta"
		}
		if p.Type.IsValid() {
			param.Children = append(param.Children, tb.typ(p.Type))
		}
		out = append(out, param)
	}
	if fn.Result.IsValid() {
		out = append(out, ASTNodeOutput{Type: "Result", Span: tb.b.Types.Get(fn.Result).Span, Children: []ASTNodeOutput{tb.typ(fn.Result)}})
	}
	if fn.Body.IsValid() {
		out = append(out, tb.stmt(fn.Body))
	}
	return out
}

func (tb treeBuilder) let(let *ast.LetDecl) []ASTNodeOutput {
	var out []ASTNodeOutput
	if let.Type.IsValid() {
		out = append(out, tb.typ(let.Type))
	}
	if let.Value.IsValid() {
		out = append(out, tb.expr(let.Value))
	}
	return out
}

func (tb treeBuilder) typ(id ast.TypeID) ASTNodeOutput {
	ty := tb.b.Types.Get(id)
	return ASTNodeOutput{Type: "Type", Span: ty.Span, Text: tb.b.Types.Format(id)}
}

var stmtKinds = [...]string{
	ast.StmtBlock:  "block",
	ast.StmtLet:    "let",
	ast.StmtReturn: "return",
	ast.StmtIf:     "if",
	ast.StmtWhile:  "while",
	ast.StmtFor:    "for",
	ast.StmtMatch:  "match",
	ast.StmtPrint:  "print",
	ast.StmtExpr:   "expr",
}

func (tb treeBuilder) stmt(id ast.StmtID) ASTNodeOutput {
	b := tb.b
	st := b.Stmts.Get(id)
	node := ASTNodeOutput{Type: "Stmt", Kind: stmtKinds[st.Kind], Span: st.Span}
	add := func(n ASTNodeOutput) { node.Children = append(node.Children, n) }
	switch st.Kind {
	case ast.StmtBlock:
		block, _ := b.Stmts.Block(id)
		for _, s := range block.Stmts {
			add(tb.stmt(s))
		}
	case ast.StmtLet:
		let, _ := b.Stmts.Let(id)
		node.Text = source.Name(let.Name)
		node.Children = tb.let(let)
	case ast.StmtReturn:
		ret, _ := b.Stmts.Return(id)
		if ret.Value.IsValid() {
			add(tb.expr(ret.Value))
		}
	case ast.StmtIf:
		ifs, _ := b.Stmts.If(id)
		add(tb.expr(ifs.Cond))
		if ifs.Then.IsValid() {
			add(tb.stmt(ifs.Then))
		}
		if ifs.Else.IsValid() {
			add(tb.stmt(ifs.Else))
		}
	case ast.StmtWhile:
		wh, _ := b.Stmts.While(id)
		add(tb.expr(wh.Cond))
		if wh.Body.IsValid() {
			add(tb.stmt(wh.Body))
		}
	case ast.StmtFor:
		fr, _ := b.Stmts.For(id)
		node.Text = source.Name(fr.Var)
		add(tb.expr(fr.Iter))
		if fr.Body.IsValid() {
			add(tb.stmt(fr.Body))
		}
	case ast.StmtMatch:
		m, _ := b.Stmts.Match(id)
		add(tb.expr(m.Subject))
		for _, arm := range m.Arms {
			armNode := ASTNodeOutput{Type: "Arm", Span: arm.Span}
			if arm.Pattern.IsValid() {
				armNode.Children = append(armNode.Children, tb.expr(arm.Pattern))
			} else {
				armNode.Text = "_"
			}
			if arm.Value.IsValid() {
				armNode.Children = append(armNode.Children, tb.expr(arm.Value))
			}
			if arm.Block.IsValid() {
				armNode.Children = append(armNode.Children, tb.stmt(arm.Block))
			}
			add(armNode)
		}
	case ast.StmtPrint:
		pr, _ := b.Stmts.Print(id)
		for _, a := range pr.Args {
			add(tb.expr(a))
		}
	case ast.StmtExpr:
		es, _ := b.Stmts.Expr(id)
		add(tb.expr(es.Expr))
	}
	return node
}

var exprKinds = [...]string{
	ast.ExprBad:    "bad",
	ast.ExprIdent:  "ident",
	ast.ExprLit:    "lit",
	ast.ExprSelf:   "self",
	ast.ExprBinary: "binary",
	ast.ExprAssign: "assign",
	ast.ExprUnary:  "unary",
	ast.ExprCast:   "cast",
	ast.ExprCall:   "call",
	ast.ExprMember: "member",
	ast.ExprIndex:  "index",
	ast.ExprPath:   "path",
	ast.ExprGroup:  "group",
	ast.ExprArray:  "array",
}

func (tb treeBuilder) expr(id ast.ExprID) ASTNodeOutput {
	b := tb.b
	e := b.Exprs.Get(id)
	if e == nil {
		return ASTNodeOutput{Type: "Expr", Kind: "bad"}
	}
	node := ASTNodeOutput{Type: "Expr", Kind: exprKinds[e.Kind], Span: e.Span}
	add := func(ids ...ast.ExprID) {
		for _, c := range ids {
			node.Children = append(node.Children, tb.expr(c))
		}
	}
	switch e.Kind {
	case ast.ExprIdent:
		data, _ := b.Exprs.Ident(id)
		node.Text = source.Name(data.Name)
	case ast.ExprLit:
		data, _ := b.Exprs.Literal(id)
		node.Text = data.Text
	case ast.ExprSelf:
		node.Text = "soy"
	case ast.ExprBinary:
		data, _ := b.Exprs.Binary(id)
		node.Text = data.Op.String()
		add(data.Left, data.Right)
	case ast.ExprAssign:
		data, _ := b.Exprs.Assign(id)
		node.Text = data.Op.String()
		add(data.Target, data.Value)
	case ast.ExprUnary:
		data, _ := b.Exprs.Unary(id)
		node.Text = data.Op.String()
		add(data.Operand)
	case ast.ExprCast:
		data, _ := b.Exprs.Cast(id)
		add(data.Value)
		if data.Type.IsValid() {
			node.Children = append(node.Children, tb.typ(data.Type))
		}
	case ast.ExprCall:
		data, _ := b.Exprs.Call(id)
		add(data.Callee)
		add(data.Args...)
	case ast.ExprMember:
		data, _ := b.Exprs.Member(id)
		node.Text = source.Name(data.Name)
		add(data.Target)
	case ast.ExprIndex:
		data, _ := b.Exprs.Index(id)
		add(data.Target, data.Index)
	case ast.ExprPath:
		data, _ := b.Exprs.Path(id)
		segs := make([]string, 0, len(data.Segments))
		for _, s := range data.Segments {
			segs = append(segs, source.Name(s))
		}
		node.Text = strings.Join(segs, "::")
	case ast.ExprGroup:
		data, _ := b.Exprs.Group(id)
		add(data.Inner)
	case ast.ExprArray:
		data, _ := b.Exprs.Array(id)
		add(data.Elems...)
	}
	return node
}
