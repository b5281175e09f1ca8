package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/matzehuels/kirchhoff/pkg/errors"
)

// Format is an output format for drawings.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
	FormatDOT Format = "dot"
)

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSVG, FormatPNG, FormatPDF, FormatDOT:
		return f, nil
	case "":
		return FormatSVG, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unknown output format %q (want svg, png, pdf or dot)", s)
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Convert turns SVG bytes into format f. SVG is returned unchanged; DOT is
// not reachable from SVG and fails.
func Convert(ctx context.Context, svg []byte, f Format, scale float64) ([]byte, error) {
	switch f {
	case FormatSVG:
		return svg, nil
	case FormatPDF:
		return ToPDF(ctx, svg)
	case FormatPNG:
		return ToPNG(ctx, svg, scale)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "cannot convert SVG to %s", f)
}

// ToPDF converts SVG bytes to PDF using rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return rsvgConvert(ctx, svg, "pdf")
}

// ToPNG converts SVG bytes to PNG using rsvg-convert with the given scale factor.
// Scale of 2.0 produces a 2x resolution image.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return rsvgConvert(ctx, svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

func rsvgConvert(ctx context.Context, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err,
			"%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.CommandContext(ctx, "rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}
