package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"tldball/explorer"
)

const (
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ErrUnknownFormat is returned by Write for formats other than FormatDOT and FormatJSON.
var ErrUnknownFormat = errors.New("unknown output format")

// Write renders report in the given format.
func Write(w io.Writer, format string, report explorer.Report) error {
	switch format {
	case FormatDOT, "":
		return WriteDOT(w, report.Graph, Comment(report.Center, report.MaxDepth))
	case FormatJSON:
		_, err := w.Write(MarshalReport(report, true))
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Comment is the header line of a rendered ball.
func Comment(center string, maxDepth int) string {
	return fmt.Sprintf("A ball in the internet, centered at %s, with radius <%d", center, maxDepth)
}

// WriteDOT writes graph as a Graphviz digraph. Nodes are named by their IDs and labelled with the domain.
func WriteDOT(w io.Writer, graph explorer.Graph, comment string) error {
	var buf bytes.Buffer

	if comment != "" {
		fmt.Fprintf(&buf, "// %s\n", comment)
	}

	buf.WriteString("digraph {\n")

	for _, node := range graph.Nodes {
		fmt.Fprintf(&buf, "\t%s [label=%s]\n", node.ID, strconv.Quote(node.Domain))
	}

	ids := graph.NodeIDs()
	for _, edge := range graph.Edges {
		fmt.Fprintf(&buf, "\t%s -> %s\n", ids[edge.From], ids[edge.To])
	}

	buf.WriteString("}\n")

	_, err := w.Write(buf.Bytes())

	return err
}

// MarshalReport encodes report as JSON. The output always ends with a newline.
func MarshalReport(report explorer.Report, indent bool) []byte {
	var (
		data []byte
		err  error
	)

	if indent {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}

	if err != nil {
		data = []byte(`{"error":"failed to marshal report"}`)
	}

	return ensureNewline(data)
}

func ensureNewline(data []byte) []byte {
	if len(data) == 0 || data[len(data)-1] != '\n' {
		return append(data, '\n')
	}

	return data
}
