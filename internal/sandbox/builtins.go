package sandbox

import (
	"context"
	"fmt"

	"go.starlark.net/starlark"

	"github.com/sightglass-mcp/sightglass/internal/domain"
)

// builtins assembles the predeclared environment for one run.
func builtins(ctx context.Context, host Host) starlark.StringDict {
	env := starlark.StringDict{}
	add := func(name string, fn func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error)) {
		env[name] = starlark.NewBuiltin(name, fn)
	}

	add("search", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var query, kind string
		limit := 5
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "query", &query, "kind?", &kind, "limit?", &limit); err != nil {
			return nil, err
		}
		hits, total, err := host.Search(query, kind, limit)
		if err != nil {
			return nil, err
		}
		items := make([]starlark.Value, len(hits))
		for i, h := range hits {
			d := symbolDict(h.Symbol)
			setKey(d, "score", starlark.Float(h.Score))
			items[i] = d
		}
		return resultsDict(items, total), nil
	})

	add("symbols", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var file, kind string
		limit := 10
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "file", &file, "kind?", &kind, "limit?", &limit); err != nil {
			return nil, err
		}
		syms, total, err := host.Symbols(file, kind, limit)
		if err != nil {
			return nil, err
		}
		items := make([]starlark.Value, len(syms))
		for i, sym := range syms {
			items[i] = symbolDict(sym)
		}
		return resultsDict(items, total), nil
	})

	add("impl", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var file, name string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "file", &file, "name", &name); err != nil {
			return nil, err
		}
		_, text, err := host.Impl(file, name)
		if err != nil {
			return nil, err
		}
		return starlark.String(text), nil
	})

	add("callers", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		limit := 5
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "limit?", &limit); err != nil {
			return nil, err
		}
		sites, total, err := host.Callers(name, limit)
		if err != nil {
			return nil, err
		}
		items := make([]starlark.Value, len(sites))
		for i, c := range sites {
			d := starlark.NewDict(4)
			setKey(d, "callee", starlark.String(c.Callee))
			setKey(d, "file", starlark.String(c.File))
			setKey(d, "line", starlark.MakeInt(c.Line))
			setKey(d, "text", starlark.String(c.Text))
			items[i] = d
		}
		return resultsDict(items, total), nil
	})

	add("tests", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		limit := 5
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "limit?", &limit); err != nil {
			return nil, err
		}
		refs, total, err := host.Tests(name, limit)
		if err != nil {
			return nil, err
		}
		items := make([]starlark.Value, len(refs))
		for i, r := range refs {
			d := starlark.NewDict(3)
			setKey(d, "test_name", starlark.String(r.TestName))
			setKey(d, "test_file", starlark.String(r.TestFile))
			setKey(d, "line", starlark.MakeInt(r.Line))
			items[i] = d
		}
		return resultsDict(items, total), nil
	})

	add("grep", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var pattern, glob, scope string
		limit := 5
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "glob?", &glob, "scope?", &scope, "limit?", &limit); err != nil {
			return nil, err
		}
		matches, total, err := host.Grep(pattern, glob, scope, limit)
		if err != nil {
			return nil, err
		}
		items := make([]starlark.Value, len(matches))
		for i, m := range matches {
			d := starlark.NewDict(3)
			setKey(d, "file", starlark.String(m.File))
			setKey(d, "line", starlark.MakeInt(m.Line))
			setKey(d, "text", starlark.String(m.Text))
			items[i] = d
		}
		return resultsDict(items, total), nil
	})

	add("peek_file", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var file string
		start, end := 1, 0
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "file", &file, "start?", &start, "end?", &end); err != nil {
			return nil, err
		}
		text, err := host.PeekFile(file, start, end)
		if err != nil {
			return nil, err
		}
		return starlark.String(text), nil
	})

	add("variables", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var file, symbol string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "file", &file, "symbol", &symbol); err != nil {
			return nil, err
		}
		vars, err := host.Variables(file, symbol)
		if err != nil {
			return nil, err
		}
		return stringList(vars), nil
	})

	add("create_buffer", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name, content string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "content", &content); err != nil {
			return nil, err
		}
		if err := host.CreateBuffer(name, content); err != nil {
			return nil, err
		}
		return starlark.None, nil
	})

	add("load_buffer", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
			return nil, err
		}
		content, err := host.LoadBuffer(name)
		if err != nil {
			return nil, err
		}
		return starlark.String(content), nil
	})

	add("list_buffers", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
			return nil, err
		}
		infos := host.ListBuffers()
		items := make([]starlark.Value, len(infos))
		for i, info := range infos {
			d := starlark.NewDict(3)
			setKey(d, "name", starlark.String(info.Name))
			setKey(d, "size_bytes", starlark.MakeInt(info.SizeBytes))
			setKey(d, "line_count", starlark.MakeInt(info.LineCount))
			items[i] = d
		}
		return starlark.NewList(items), nil
	})

	add("delete_buffer", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
			return nil, err
		}
		if err := host.DeleteBuffer(name); err != nil {
			return nil, err
		}
		return starlark.None, nil
	})

	add("set_var", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name, value string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "value", &value); err != nil {
			return nil, err
		}
		if err := host.SetVar(name, value); err != nil {
			return nil, err
		}
		return starlark.None, nil
	})

	add("get_var", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
			return nil, err
		}
		value, ok := host.GetVar(name)
		if !ok {
			return starlark.None, nil
		}
		return starlark.String(value), nil
	})

	add("list_vars", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
			return nil, err
		}
		vars := host.ListVars()
		d := starlark.NewDict(len(vars))
		for k, v := range vars {
			setKey(d, k, starlark.String(v))
		}
		return d, nil
	})

	add("set_final", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var value string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "value", &value); err != nil {
			return nil, err
		}
		host.SetFinal(value)
		return starlark.None, nil
	})

	add("check_final", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
			return nil, err
		}
		final, ok := host.Final()
		if !ok {
			return starlark.None, nil
		}
		return starlark.String(final), nil
	})

	add("add_finding", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var point, evidence string
		confidence := domain.ConfidenceMedium
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "point", &point, "evidence?", &evidence, "confidence?", &confidence); err != nil {
			return nil, err
		}
		host.AddFinding(point, evidence, confidence)
		return starlark.None, nil
	})

	add("llm_query", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var content, query string
		chunkID := "repl"
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "content", &content, "query", &query, "chunk_id?", &chunkID); err != nil {
			return nil, err
		}
		result, err := host.LLMQuery(ctx, chunkID, content, query)
		if err != nil {
			return nil, err
		}
		return subcallDict(result), nil
	})

	add("subcall_batch", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var file, query string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "file", &file, "query", &query); err != nil {
			return nil, err
		}
		count, failures, err := host.SubcallBatch(ctx, file, query)
		if err != nil {
			return nil, err
		}
		d := starlark.NewDict(2)
		setKey(d, "count", starlark.MakeInt(count))
		setKey(d, "failures", starlark.MakeInt(failures))
		return d, nil
	})

	add("deep_query", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var file, query string
		var maxDepth int
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "file", &file, "query", &query, "max_depth?", &maxDepth); err != nil {
			return nil, err
		}
		answer, count, failures, err := host.DeepQuery(ctx, file, query, maxDepth)
		if err != nil {
			return nil, err
		}
		d := starlark.NewDict(3)
		setKey(d, "answer", starlark.String(answer))
		setKey(d, "chunk_count", starlark.MakeInt(count))
		setKey(d, "failures", starlark.MakeInt(failures))
		return d, nil
	})

	return env
}

func setKey(d *starlark.Dict, key string, value starlark.Value) {
	// SetKey on a fresh dict only fails for unhashable keys; ours are
	// always strings.
	if err := d.SetKey(starlark.String(key), value); err != nil {
		panic(fmt.Sprintf("dict set %q: %v", key, err))
	}
}

func symbolDict(sym domain.Symbol) *starlark.Dict {
	d := starlark.NewDict(6)
	setKey(d, "name", starlark.String(sym.Name))
	setKey(d, "kind", starlark.String(string(sym.Kind)))
	setKey(d, "file", starlark.String(sym.File))
	setKey(d, "start_line", starlark.MakeInt(sym.StartLine))
	setKey(d, "end_line", starlark.MakeInt(sym.EndLine))
	setKey(d, "signature", starlark.String(sym.Signature))
	return d
}

func subcallDict(r domain.SubcallResult) *starlark.Dict {
	findings := make([]starlark.Value, len(r.Findings))
	for i, f := range r.Findings {
		fd := starlark.NewDict(3)
		setKey(fd, "point", starlark.String(f.Point))
		setKey(fd, "evidence", starlark.String(f.Evidence))
		setKey(fd, "confidence", starlark.String(f.Confidence))
		findings[i] = fd
	}
	d := starlark.NewDict(4)
	setKey(d, "chunk_id", starlark.String(r.ChunkID))
	setKey(d, "findings", starlark.NewList(findings))
	setKey(d, "answer_if_complete", starlark.String(r.AnswerIfComplete))
	setKey(d, "error", starlark.String(r.Error))
	return d
}

func resultsDict(items []starlark.Value, total int) *starlark.Dict {
	d := starlark.NewDict(3)
	setKey(d, "results", starlark.NewList(items))
	setKey(d, "total_count", starlark.MakeInt(total))
	setKey(d, "truncated", starlark.Bool(total > len(items)))
	return d
}

func stringList(ss []string) *starlark.List {
	items := make([]starlark.Value, len(ss))
	for i, s := range ss {
		items[i] = starlark.String(s)
	}
	return starlark.NewList(items)
}
