package hierarchy

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cardspace/pkg/entity"
	"github.com/matzehuels/cardspace/pkg/errors"
)

// Options configures the diagram.
type Options struct {
	// Root limits the diagram to the subtree below one entity.
	Root string
	// Depth limits how many levels below the roots are drawn. Zero draws
	// everything.
	Depth int
	// Mode selects the colour slot used to fill boxes. Empty fills white.
	Mode entity.Mode
	// Detailed adds the content kind and child count to labels.
	Detailed bool
}

// Source is the read side of the entity store.
type Source interface {
	Get(id string) (*entity.Entity, bool)
	IDs() []string
}

// Roots returns the entities that are nobody's child, in store order.
func Roots(src Source) []string {
	isChild := make(map[string]bool)
	for _, id := range src.IDs() {
		if e, ok := src.Get(id); ok {
			for _, c := range e.ChildIDs() {
				isChild[c] = true
			}
		}
	}
	var roots []string
	for _, id := range src.IDs() {
		if !isChild[id] {
			roots = append(roots, id)
		}
	}
	return roots
}

// ToDOT converts the entity tree to Graphviz DOT. Nodes and edges appear
// in breadth-first order from the roots; an entity reachable twice is drawn
// once. An unknown Root yields an empty graph.
func ToDOT(src Source, opts Options) string {
	roots := Roots(src)
	if opts.Root != "" {
		roots = []string{opts.Root}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	type item struct {
		id    string
		depth int
	}
	var (
		queue []item
		edges []string
		seen  = make(map[string]bool)
	)
	for _, r := range roots {
		if _, ok := src.Get(r); ok && !seen[r] {
			seen[r] = true
			queue = append(queue, item{r, 0})
		}
	}

	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		e, ok := src.Get(it.id)
		if !ok {
			fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,dashed\", color=grey, fontcolor=grey];\n", it.id, it.id)
			continue
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", it.id, strings.Join(fmtAttrs(e, opts), ", "))

		if opts.Depth > 0 && it.depth >= opts.Depth {
			continue
		}
		for _, c := range e.ChildIDs() {
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", it.id, c))
			if !seen[c] {
				seen[c] = true
				queue = append(queue, item{c, it.depth + 1})
			}
		}
	}

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(e *entity.Entity, detailed bool) string {
	label := e.Title
	if label == "" {
		label = e.ID
	}
	if !detailed {
		return label
	}
	parts := []string{"kind: " + string(e.Kind)}
	if n := len(e.ChildIDs()); n > 0 {
		parts = append(parts, fmt.Sprintf("children: %d", n))
	}
	if e.Party != "" {
		parts = append(parts, "party: "+e.Party)
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(e *entity.Entity, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(e, opts.Detailed))}
	if e.Kind == entity.KindFolder {
		attrs = append(attrs, "shape=tab")
	}
	if e.Children != nil && len(e.Children.Overrides) > 0 {
		attrs = append(attrs, "penwidth=2")
	}
	if opts.Mode != "" {
		fill := e.Color.Get(opts.Mode)
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
		if dark(fill) {
			attrs = append(attrs, "fontcolor=white")
		}
	}
	return attrs
}

// dark reports whether text on hex needs to be light. Unparseable colours
// count as light.
func dark(hex string) bool {
	h := strings.TrimPrefix(hex, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) < 6 {
		return false
	}
	v, err := strconv.ParseUint(h[:6], 16, 32)
	if err != nil {
		return false
	}
	r, g, b := float64(v>>16&0xff), float64(v>>8&0xff), float64(v&0xff)
	return 0.299*r+0.587*g+0.114*b < 128
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// Format picks the output format from a file name: ".dot" and ".gv" give
// "dot", ".pdf" and ".png" name themselves, anything else is "svg".
func Format(path string) string {
	lower := strings.ToLower(path)
	has := func(ext string) bool { return strings.HasSuffix(lower, ext) }
	switch {
	case slices.ContainsFunc([]string{".dot", ".gv"}, has):
		return "dot"
	case has(".pdf"):
		return "pdf"
	case has(".png"):
		return "png"
	}
	return "svg"
}
