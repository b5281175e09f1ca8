// Package store persists analysis reports so they can be fetched later by ID.
//
// The Store interface has three implementations:
//   - memory: in-process map for tests and single-instance servers
//   - file: one JSON document per analysis, for the CLI
//   - mongo: a MongoDB collection, for servers sharing storage
//
// # Usage
//
//	st, err := store.NewMongoStore(ctx, "mongodb://localhost:27017", "kirchhoff")
//	if err != nil {
//	    return err
//	}
//	defer st.Close(ctx)
//
//	a := store.NewAnalysis(g, result.Report)
//	if err := st.Save(ctx, a); err != nil {
//	    return err
//	}
//	again, err := st.Get(ctx, a.ID)
package store

import (
	"bytes"
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/kirchhoff/pkg/circuit"
	"github.com/matzehuels/kirchhoff/pkg/errors"
	"github.com/matzehuels/kirchhoff/pkg/netlist"
	"github.com/matzehuels/kirchhoff/pkg/pipeline"
)

// ErrNotFound is wrapped by Get when no analysis has the requested ID.
var ErrNotFound = stderrors.New("analysis not found")

// Analysis is a stored report together with the circuit it describes.
type Analysis struct {
	ID        string           `json:"id" bson:"_id"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
	Hash      string           `json:"hash" bson:"hash"`
	Netlist   string           `json:"netlist" bson:"netlist"` // line format
	Report    *pipeline.Report `json:"report" bson:"report"`
}

// NewAnalysis wraps a report with a fresh random ID.
func NewAnalysis(g *circuit.Graph, rep *pipeline.Report) *Analysis {
	var buf bytes.Buffer
	_ = netlist.WriteLine(&buf, netlist.FromGraph(g))
	return &Analysis{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		Hash:      pipeline.NetlistHash(g),
		Netlist:   buf.String(),
		Report:    rep,
	}
}

// Store is the interface for analysis storage backends.
type Store interface {
	// Save stores a, replacing any analysis with the same ID.
	Save(ctx context.Context, a *Analysis) error

	// Get retrieves an analysis by ID. A missing analysis is a NOT_FOUND
	// error wrapping ErrNotFound.
	Get(ctx context.Context, id string) (*Analysis, error)

	// Delete removes an analysis. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns up to limit analyses, newest first. A limit of zero or
	// less returns all of them.
	List(ctx context.Context, limit int) ([]*Analysis, error)

	Close(ctx context.Context) error
}

// ValidateID checks that id is a UUID as produced by NewAnalysis.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid analysis id %q", id)
	}
	return nil
}

func notFound(id string) error {
	return errors.Wrap(errors.ErrCodeNotFound, ErrNotFound, "analysis %s", id)
}
