package netlist

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/kirchhoff/pkg/circuit"
	kerrors "github.com/matzehuels/kirchhoff/pkg/errors"
)

var triangle = &Netlist{
	Nodes: 3,
	Records: []circuit.Record{
		{From: 0, To: 1, Resistance: 1, Voltage: 6},
		{From: 1, To: 2, Resistance: 1},
		{From: 2, To: 0, Resistance: 1},
	},
}

func TestImport(t *testing.T) {
	tests := []struct {
		path  string
		nodes int
		edges int
	}{
		{"testdata/triangle.net", 3, 3},
		{"testdata/triangle.json", 3, 3},
		{"testdata/rc.toml", 4, 5},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			n, err := Import(tt.path)
			if err != nil {
				t.Fatalf("Import: %v", err)
			}
			if n.Nodes != tt.nodes || len(n.Records) != tt.edges {
				t.Errorf("got %d nodes %d branches, want %d/%d", n.Nodes, len(n.Records), tt.nodes, tt.edges)
			}
			if _, err := n.Graph(); err != nil {
				t.Errorf("Graph: %v", err)
			}
		})
	}

	tri, _ := Import("testdata/triangle.net")
	if !reflect.DeepEqual(tri, triangle) {
		t.Errorf("triangle.net = %+v, want %+v", tri, triangle)
	}
	js, _ := Import("testdata/triangle.json")
	if !reflect.DeepEqual(js, triangle) {
		t.Errorf("triangle.json = %+v, want %+v", js, triangle)
	}
	rc, _ := Import("testdata/rc.toml")
	if rc.Records[4].Capacitance != 0.01 {
		t.Errorf("rc.toml capacitance = %v, want 0.01", rc.Records[4].Capacitance)
	}
}

func TestImportMissing(t *testing.T) {
	_, err := Import(filepath.Join(t.TempDir(), "missing.net"))
	if !kerrors.Is(err, kerrors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, triangle, f); err != nil {
				t.Fatalf("Write: %v", err)
			}
			got, err := Read(&buf, f)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !reflect.DeepEqual(got, triangle) {
				t.Errorf("round trip = %+v, want %+v", got, triangle)
			}
		})
	}
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	if err := Export(triangle, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[[branch]]") {
		t.Errorf("exported TOML lacks [[branch]] tables:\n%s", data)
	}
}

func TestWriteLine(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLine(&buf, triangle); err != nil {
		t.Fatal(err)
	}
	want := "3 3\n0 1 1 6 0 0\n1 2 1 0 0 0\n2 0 1 0 0 0\n"
	if buf.String() != want {
		t.Errorf("WriteLine =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestReadLineAcceptsWholeFloats(t *testing.T) {
	n, err := ReadLine(strings.NewReader("2.0 1\n0.0 1.0 10 5 0 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if n.Nodes != 2 || n.Records[0].To != 1 {
		t.Errorf("got %+v", n)
	}
}

func TestReadLineErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  string
	}{
		{"empty", "", "empty"},
		{"only comments", "# nothing\n\n", "empty"},
		{"bad header", "3\n", "line 1"},
		{"short record", "3 1\n0 1 1 6 0\n", "line 2"},
		{"not a number", "3 1\n0 1 x 6 0 0\n", "line 2"},
		{"fractional node", "3 1\n0.5 1 1 6 0 0\n", "line 2"},
		{"count mismatch", "# c\n3 2\n0 1 1 6 0 0\n", "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadLine(strings.NewReader(tt.input))
			if !errors.Is(err, ErrSyntax) {
				t.Fatalf("error = %v, want ErrSyntax", err)
			}
			if !kerrors.Is(err, kerrors.ErrCodeInvalidFormat) {
				t.Errorf("code = %v, want INVALID_FORMAT", kerrors.GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.line) {
				t.Errorf("error %q does not mention %q", err, tt.line)
			}
		})
	}
}

func TestOutOfRangeNodeIsFormatError(t *testing.T) {
	n, err := ReadLine(strings.NewReader("2 1\n0 2 1 0 0 0\n"))
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	_, err = n.Graph()
	if !errors.Is(err, circuit.ErrNodeOutOfRange) {
		t.Errorf("error = %v, want ErrNodeOutOfRange", err)
	}
	if !kerrors.Is(err, kerrors.ErrCodeInvalidFormat) {
		t.Errorf("code = %v, want INVALID_FORMAT", kerrors.GetCode(err))
	}
}

func TestReadTOMLErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown key", "nodes = 2\nfoo = 1\n"},
		{"missing nodes", "[[branch]]\nfrom = 0\nto = 1\n"},
		{"bad syntax", "nodes = \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTOML(strings.NewReader(tt.input))
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("error = %v, want ErrSyntax", err)
			}
		})
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown field", `{"nodes": 2, "edges": []}`},
		{"missing nodes", `{"branches": []}`},
		{"malformed", `{"nodes": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("error = %v, want ErrSyntax", err)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatLine},
		{"net", FormatLine},
		{"TOML", FormatTOML},
		{"application/json", FormatJSON},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseFormat("yaml"); !kerrors.Is(err, kerrors.ErrCodeUnsupported) {
		t.Errorf("ParseFormat(yaml) error = %v, want UNSUPPORTED", err)
	}
	if FormatFromPath("a/b.JSON") != FormatJSON || FormatFromPath("c.txt") != FormatLine {
		t.Error("FormatFromPath picked the wrong format")
	}
}

func TestFromGraph(t *testing.T) {
	g, err := triangle.Graph()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(FromGraph(g), triangle) {
		t.Errorf("FromGraph = %+v", FromGraph(g))
	}
}
