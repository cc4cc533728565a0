package liquid

import "strings"

// Parse compiles src into an immutable Template (§1 "Parse: source text ->
// AST"), dispatching over Liquid's four tag shapes (4.C): simple
// (assign-like), identifier (increment/decrement), empty (break/continue),
// and block (if/for/case/capture/tablerow/comment/raw).
func Parse(src string) (*Template, error) {
	frags, err := scanTemplate(src)
	if err != nil {
		return nil, err
	}
	p := &tagParser{frags: frags, src: src}
	body, stop, err := p.parseStatements(nil)
	if err != nil {
		return nil, err
	}
	if !stop.atEOF {
		return nil, newParseError(stop.offset, "unexpected tag %q with no matching opening tag", stop.tag)
	}
	return &Template{body: body, src: src}, nil
}

// tagParser walks the flat fragment sequence scanTemplate produced,
// recursively building nested block statements. Whitespace trimming (4.A)
// is resolved here, at AST-construction time, rather than during render.
type tagParser struct {
	frags        []fragment
	src          string
	pos          int
	trimNextText bool
}

// stopInfo reports why parseStatements returned: it hit an elsif/else/
// when/end* fragment (which may or may not be in the caller's stop set),
// or it ran out of fragments (top-level EOF).
type stopInfo struct {
	tag    string
	rest   string
	offset int
	atEOF  bool
}

func (p *tagParser) peekTagHead() (name, rest string, offset int, ok bool) {
	if p.pos >= len(p.frags) || p.frags[p.pos].kind != fragTag {
		return "", "", 0, false
	}
	f := p.frags[p.pos]
	name, rest, offset = splitTagHead(f.content, f.offset)
	return name, rest, offset, true
}

func splitTagHead(content string, offset int) (name, rest string, restOffset int) {
	i := 0
	for i < len(content) && isTemplateSpace(content[i]) {
		i++
	}
	start := i
	for i < len(content) && isIdentCont(content[i]) {
		i++
	}
	name = content[start:i]
	rest = content[i:]
	restOffset = offset + i
	return
}

func tagStartPos(f fragment) int {
	d := 2
	if f.trimLeft {
		d++
	}
	return f.offset - d
}

func tagEndPos(f fragment) int {
	end := f.offset + len(f.content) + 2
	if f.trimRight {
		end++
	}
	return end
}

// parseStatements consumes fragments until a fragment whose tag name is in
// stopTags, or any closing/intermediate tag (end*, elsif, else, when), is
// reached (not consumed) or fragments run out. The caller reports a closing
// tag it does not expect as a parse error.
func (p *tagParser) parseStatements(stopTags map[string]bool) ([]Statement, stopInfo, error) {
	var stmts []Statement
	for p.pos < len(p.frags) {
		f := p.frags[p.pos]
		switch f.kind {
		case fragText:
			text := f.content
			if p.trimNextText {
				text = trimLeadingWhitespace(text)
				p.trimNextText = false
			}
			if p.pos+1 < len(p.frags) && p.frags[p.pos+1].trimLeft {
				text = trimTrailingWhitespace(text)
			}
			p.pos++
			if text != "" {
				stmts = append(stmts, &rawTextStmt{text: text})
			}
		case fragOutput:
			if f.trimRight {
				p.trimNextText = true
			}
			expr, err := parseExpression(f.content, f.offset)
			if err != nil {
				return nil, stopInfo{}, err
			}
			p.pos++
			stmts = append(stmts, &outputStmt{expr: expr})
		case fragTag:
			if f.trimRight {
				p.trimNextText = true
			}
			name, rest, restOffset, _ := p.peekTagHead()
			closing := strings.HasPrefix(name, "end") || name == "elsif" || name == "else" || name == "when"
			if stopTags[name] || closing {
				return stmts, stopInfo{tag: name, rest: rest, offset: restOffset}, nil
			}
			p.pos++
			stmt, err := p.parseTag(name, rest, restOffset, f)
			if err != nil {
				return nil, stopInfo{}, err
			}
			if stmt != nil {
				stmts = append(stmts, stmt)
			}
		}
	}
	return stmts, stopInfo{atEOF: true}, nil
}

// parseTag dispatches a single {% ... %} fragment already advanced past
// (p.pos already points at what follows it). Block tags recursively
// consume further fragments up to and including their matching end tag.
func (p *tagParser) parseTag(name, rest string, restOffset int, self fragment) (Statement, error) {
	switch name {
	case "assign":
		return parseAssign(rest, restOffset)
	case "echo":
		expr, err := parseExpression(rest, restOffset)
		if err != nil {
			return nil, err
		}
		return &echoStmt{expr: expr}, nil
	case "increment":
		return &incrementStmt{name: strings.TrimSpace(rest)}, nil
	case "decrement":
		return &decrementStmt{name: strings.TrimSpace(rest)}, nil
	case "break":
		return &breakStmt{}, nil
	case "continue":
		return &continueStmt{}, nil
	case "cycle":
		return parseCycle(rest, restOffset)
	case "include":
		return parseIncludeOrRender(rest, restOffset, false)
	case "render":
		return parseIncludeOrRender(rest, restOffset, true)
	case "if":
		return p.parseIf(rest, restOffset, false)
	case "unless":
		return p.parseIf(rest, restOffset, true)
	case "case":
		return p.parseCase(rest, restOffset)
	case "for":
		return p.parseFor(rest, restOffset)
	case "tablerow":
		return p.parseTablerow(rest, restOffset)
	case "capture":
		return p.parseCapture(rest, restOffset)
	case "comment":
		p.skipCommentBlock()
		return &commentStmt{}, nil
	case "raw":
		return p.parseRaw(self)
	default:
		return nil, newParseError(restOffset, "unknown tag %q", name)
	}
}

func parseAssign(rest string, offset int) (Statement, error) {
	p, err := newExprParser(rest, offset)
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokIdent {
		return nil, p.lex.errorAt(p.cur.offset, "expected variable name in assign, got %s", p.cur.String())
	}
	varName := p.cur.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.kind != tokAssign {
		return nil, p.lex.errorAt(p.cur.offset, "expected '=' in assign, got %s", p.cur.String())
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return &assignStmt{name: varName, expr: expr}, nil
}

func parseCycle(rest string, offset int) (Statement, error) {
	p, err := newExprParser(rest, offset)
	if err != nil {
		return nil, err
	}
	group := ""
	if p.cur.kind == tokString || p.cur.kind == tokIdent {
		savedTok := p.cur
		savedLex := *p.lex
		name := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind == tokColon {
			group = name
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else {
			*p.lex = savedLex
			p.cur = savedTok
		}
	}
	var exprs []Expression
	for {
		expr, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
		if p.cur.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	if group == "" {
		group = rest // distinct argument lists default to distinct rotation groups
	}
	return &cycleStmt{group: group, exprs: exprs}, nil
}

func parseIncludeOrRender(rest string, offset int, isolate bool) (Statement, error) {
	p, err := newExprParser(rest, offset)
	if err != nil {
		return nil, err
	}
	nameExpr, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	var withExpr Expression
	withVar := ""
	if p.cur.kind == tokIdent && p.cur.text == "with" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		withExpr, err = p.parseComparison()
		if err != nil {
			return nil, err
		}
		if p.cur.kind == tokIdent && p.cur.text == "as" {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.cur.kind != tokIdent {
				return nil, p.lex.errorAt(p.cur.offset, "expected alias name after 'as'")
			}
			withVar = p.cur.text
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	var assigns []filterArg
	for p.cur.kind == tokComma {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind != tokIdent {
			return nil, p.lex.errorAt(p.cur.offset, "expected parameter name, got %s", p.cur.String())
		}
		pname := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind != tokColon {
			return nil, p.lex.errorAt(p.cur.offset, "expected ':' after parameter name")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		assigns = append(assigns, filterArg{name: pname, expr: val})
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	if isolate {
		return &renderStmt{name: nameExpr, with: withExpr, withVar: withVar, assigns: assigns}, nil
	}
	return &includeStmt{name: nameExpr, with: withExpr, withVar: withVar, assigns: assigns}, nil
}

var ifStopTags = map[string]bool{"elsif": true, "else": true, "endif": true}
var unlessStopTags = map[string]bool{"elsif": true, "else": true, "endunless": true}

func (p *tagParser) parseIf(rest string, offset int, unless bool) (Statement, error) {
	cond, err := parseExpression(rest, offset)
	if err != nil {
		return nil, err
	}
	if unless {
		cond = &notExpr{operand: cond}
	}
	stop := ifStopTags
	endName := "endif"
	if unless {
		stop = unlessStopTags
		endName = "endunless"
	}

	var branches []ifBranch
	body, info, err := p.parseStatements(stop)
	if err != nil {
		return nil, err
	}
	branches = append(branches, ifBranch{cond: cond, body: body})

	for info.tag == "elsif" {
		p.pos++ // consume the elsif fragment itself
		econd, err := parseExpression(info.rest, info.offset)
		if err != nil {
			return nil, err
		}
		ebody, einfo, err := p.parseStatements(stop)
		if err != nil {
			return nil, err
		}
		branches = append(branches, ifBranch{cond: econd, body: ebody})
		info = einfo
	}

	var elseBody []Statement
	if info.tag == "else" {
		p.pos++
		elseBody, info, err = p.parseStatements(map[string]bool{endName: true})
		if err != nil {
			return nil, err
		}
	}
	if info.tag != endName {
		return nil, newParseError(info.offset, "expected %q, got %q", endName, info.tag)
	}
	p.pos++ // consume the end tag

	return &ifStmt{branches: branches, elseBody: elseBody}, nil
}

var caseStopTags = map[string]bool{"when": true, "else": true, "endcase": true}

func (p *tagParser) parseCase(rest string, offset int) (Statement, error) {
	subject, err := parseExpression(rest, offset)
	if err != nil {
		return nil, err
	}
	// discard any text between `case` and the first `when` (Liquid ignores it)
	_, info, err := p.parseStatements(caseStopTags)
	if err != nil {
		return nil, err
	}

	var whens []whenBranch
	for info.tag == "when" {
		p.pos++
		values, err := parseWhenValues(info.rest, info.offset)
		if err != nil {
			return nil, err
		}
		body, winfo, err := p.parseStatements(caseStopTags)
		if err != nil {
			return nil, err
		}
		whens = append(whens, whenBranch{values: values, body: body})
		info = winfo
	}

	var elseBody []Statement
	if info.tag == "else" {
		p.pos++
		elseBody, info, err = p.parseStatements(map[string]bool{"endcase": true})
		if err != nil {
			return nil, err
		}
	}
	if info.tag != "endcase" {
		return nil, newParseError(info.offset, "expected \"endcase\", got %q", info.tag)
	}
	p.pos++

	return &caseStmt{subject: subject, whens: whens, elseBody: elseBody}, nil
}

func parseWhenValues(rest string, offset int) ([]Expression, error) {
	p, err := newExprParser(rest, offset)
	if err != nil {
		return nil, err
	}
	var values []Expression
	for {
		v, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		if p.cur.kind != tokComma && !(p.cur.kind == tokKeyword && p.cur.text == "or") {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return values, nil
}

func (p *tagParser) parseFor(rest string, offset int) (Statement, error) {
	ep, err := newExprParser(rest, offset)
	if err != nil {
		return nil, err
	}
	if ep.cur.kind != tokIdent {
		return nil, ep.lex.errorAt(ep.cur.offset, "expected loop variable name")
	}
	varName := ep.cur.text
	if err := ep.advance(); err != nil {
		return nil, err
	}
	if !(ep.cur.kind == tokIdent && ep.cur.text == "in") {
		return nil, ep.lex.errorAt(ep.cur.offset, "expected 'in' in for tag")
	}
	if err := ep.advance(); err != nil {
		return nil, err
	}
	iterable, err := ep.parseFilterChain()
	if err != nil {
		return nil, err
	}

	var limit, offExpr Expression
	reversed := false
	for ep.cur.kind == tokIdent {
		switch ep.cur.text {
		case "limit":
			if err := ep.advance(); err != nil {
				return nil, err
			}
			if ep.cur.kind != tokColon {
				return nil, ep.lex.errorAt(ep.cur.offset, "expected ':' after 'limit'")
			}
			if err := ep.advance(); err != nil {
				return nil, err
			}
			limit, err = ep.parseComparison()
			if err != nil {
				return nil, err
			}
		case "offset":
			if err := ep.advance(); err != nil {
				return nil, err
			}
			if ep.cur.kind != tokColon {
				return nil, ep.lex.errorAt(ep.cur.offset, "expected ':' after 'offset'")
			}
			if err := ep.advance(); err != nil {
				return nil, err
			}
			offExpr, err = ep.parseComparison()
			if err != nil {
				return nil, err
			}
		case "reversed":
			reversed = true
			if err := ep.advance(); err != nil {
				return nil, err
			}
		default:
			return nil, ep.lex.errorAt(ep.cur.offset, "unexpected %q in for tag", ep.cur.text)
		}
	}
	if err := ep.expectEOF(); err != nil {
		return nil, err
	}

	stop := map[string]bool{"endfor": true, "else": true}
	body, info, err := p.parseStatements(stop)
	if err != nil {
		return nil, err
	}
	var elseBody []Statement
	if info.tag == "else" {
		p.pos++
		elseBody, info, err = p.parseStatements(map[string]bool{"endfor": true})
		if err != nil {
			return nil, err
		}
	}
	if info.tag != "endfor" {
		return nil, newParseError(info.offset, "expected \"endfor\", got %q", info.tag)
	}
	p.pos++

	return &forStmt{
		varName: varName, iterable: iterable, limit: limit, offset: offExpr,
		reversed: reversed, body: body, elseBody: elseBody,
	}, nil
}

func (p *tagParser) parseTablerow(rest string, offset int) (Statement, error) {
	ep, err := newExprParser(rest, offset)
	if err != nil {
		return nil, err
	}
	if ep.cur.kind != tokIdent {
		return nil, ep.lex.errorAt(ep.cur.offset, "expected loop variable name")
	}
	varName := ep.cur.text
	if err := ep.advance(); err != nil {
		return nil, err
	}
	if !(ep.cur.kind == tokIdent && ep.cur.text == "in") {
		return nil, ep.lex.errorAt(ep.cur.offset, "expected 'in' in tablerow tag")
	}
	if err := ep.advance(); err != nil {
		return nil, err
	}
	iterable, err := ep.parseFilterChain()
	if err != nil {
		return nil, err
	}
	var cols Expression
	if ep.cur.kind == tokIdent && ep.cur.text == "cols" {
		if err := ep.advance(); err != nil {
			return nil, err
		}
		if ep.cur.kind != tokColon {
			return nil, ep.lex.errorAt(ep.cur.offset, "expected ':' after 'cols'")
		}
		if err := ep.advance(); err != nil {
			return nil, err
		}
		cols, err = ep.parseComparison()
		if err != nil {
			return nil, err
		}
	}
	if err := ep.expectEOF(); err != nil {
		return nil, err
	}

	body, info, err := p.parseStatements(map[string]bool{"endtablerow": true})
	if err != nil {
		return nil, err
	}
	if info.tag != "endtablerow" {
		return nil, newParseError(info.offset, "expected \"endtablerow\", got %q", info.tag)
	}
	p.pos++

	return &tablerowStmt{varName: varName, iterable: iterable, cols: cols, body: body}, nil
}

func (p *tagParser) parseCapture(rest string, offset int) (Statement, error) {
	name := strings.TrimSpace(rest)
	if name == "" {
		return nil, newParseError(offset, "expected variable name in capture tag")
	}
	body, info, err := p.parseStatements(map[string]bool{"endcapture": true})
	if err != nil {
		return nil, err
	}
	if info.tag != "endcapture" {
		return nil, newParseError(info.offset, "expected \"endcapture\", got %q", info.tag)
	}
	p.pos++
	return &captureStmt{name: name, body: body}, nil
}

// skipCommentBlock discards fragments up to and including the matching
// endcomment tag without parsing anything inside (§3: comment bodies are
// never evaluated, so malformed tag-like text inside is not an error).
func (p *tagParser) skipCommentBlock() {
	for p.pos < len(p.frags) {
		f := p.frags[p.pos]
		if f.kind == fragTag {
			name, _, _, _ := p.peekTagHead()
			if name == "endcomment" {
				p.pos++
				return
			}
		}
		p.pos++
	}
}

// parseRaw captures the verbatim source span between a {% raw %} tag and
// its matching {% endraw %}, reconstructed from the original source so
// any {{ }} / {% %} -looking text inside is preserved literally (§3).
func (p *tagParser) parseRaw(openTag fragment) (Statement, error) {
	start := tagEndPos(openTag)
	for p.pos < len(p.frags) {
		f := p.frags[p.pos]
		if f.kind == fragTag {
			name, _, _, _ := p.peekTagHead()
			if name == "endraw" {
				end := tagStartPos(f)
				p.pos++
				text := ""
				if end > start {
					text = p.src[start:end]
				}
				return &rawTextStmt{text: text}, nil
			}
		}
		p.pos++
	}
	return nil, newParseError(start, "unterminated {%% raw %%} block")
}
