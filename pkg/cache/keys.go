package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer builds cache keys.
type Keyer interface {
	// ReportKey names the analysis report of a netlist.
	ReportKey(netlistHash string, opts ReportKeyOpts) string
	// ArtifactKey names a drawing derived from a netlist.
	ArtifactKey(netlistHash string, opts ArtifactKeyOpts) string
}

// ReportKeyOpts are the options that change an analysis report.
type ReportKeyOpts struct {
	Reduced   bool `json:"reduced"`
	SkipSolve bool `json:"skip_solve"`
	Precision int  `json:"precision"`
}

// ArtifactKeyOpts are the options that change a rendered drawing.
type ArtifactKeyOpts struct {
	Kind     string  `json:"kind"`   // graph or currents
	Format   string  `json:"format"` // svg, png, pdf, dot
	Detailed bool    `json:"detailed"`
	Tree     bool    `json:"tree"`
	Scale    float64 `json:"scale"`
}

// DefaultKeyer hashes the options together with the netlist hash.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) ReportKey(netlistHash string, opts ReportKeyOpts) string {
	return hashKey("report", netlistHash, opts)
}

func (DefaultKeyer) ArtifactKey(netlistHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", netlistHash, opts)
}

// hashKey builds "prefix:sha256(json(parts))".
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ScopedKeyer prefixes every key of an inner keyer.
//
//	tenant := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "team:lab3:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ReportKey(netlistHash string, opts ReportKeyOpts) string {
	return k.prefix + k.inner.ReportKey(netlistHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(netlistHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(netlistHash, opts)
}
