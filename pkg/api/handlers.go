package api

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/kirchhoff/pkg/buildinfo"
	"github.com/matzehuels/kirchhoff/pkg/circuit"
	"github.com/matzehuels/kirchhoff/pkg/errors"
	"github.com/matzehuels/kirchhoff/pkg/netlist"
	"github.com/matzehuels/kirchhoff/pkg/pipeline"
	"github.com/matzehuels/kirchhoff/pkg/render"
	"github.com/matzehuels/kirchhoff/pkg/store"
)

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

type classifyResponse struct {
	Classification string `json:"classification"`
	Nodes          int    `json:"nodes"`
	Branches       int    `json:"branches"`
	Cycles         int    `json:"cycles"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) solve(reduced bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := solveOptions(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		opts.Reduced = reduced
		res, _, err := s.execute(r, opts)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, res.Report)
	}
}

func (s *Server) classify(w http.ResponseWriter, r *http.Request) {
	res, _, err := s.execute(r, pipeline.Options{SkipSolve: true})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	rep := res.Report
	respondJSON(w, http.StatusOK, classifyResponse{
		Classification: rep.Classification,
		Nodes:          rep.Nodes,
		Branches:       len(rep.Branches),
		Cycles:         len(rep.Cycles),
	})
}

func (s *Server) partition(w http.ResponseWriter, r *http.Request) {
	res, _, err := s.execute(r, pipeline.Options{SkipSolve: true})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res.Report.Partition)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	solveOpts, err := solveOptions(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	opts := pipeline.RenderOptions{
		Kind:     q.Get("kind"),
		Format:   render.Format(q.Get("output")),
		Detailed: q.Get("detailed") == "true",
		Tree:     q.Get("tree") == "true",
		Solve:    solveOpts,
	}
	if v := q.Get("scale"); v != "" {
		if opts.Scale, err = strconv.ParseFloat(v, 64); err != nil {
			s.respondError(w, r, errors.New(errors.ErrCodeInvalidInput, "scale %q is not a number", v))
			return
		}
	}

	g, err := s.parse(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	data, err := s.runner.Render(r.Context(), g, opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	f, _ := render.ParseFormat(string(opts.Format))
	w.Header().Set("Content-Type", contentType(f))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) createAnalysis(w http.ResponseWriter, r *http.Request) {
	opts, err := solveOptions(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	opts.Reduced = r.URL.Query().Get("reduced") == "true"
	res, g, err := s.execute(r, opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	a := store.NewAnalysis(g, res.Report)
	if err := s.store.Save(r.Context(), a); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/analyses/"+a.ID)
	respondJSON(w, http.StatusCreated, a)
}

func (s *Server) listAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respondError(w, r, errors.New(errors.ErrCodeInvalidInput, "limit %q is not a non-negative integer", v))
			return
		}
		limit = n
	}
	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if list == nil {
		list = []*store.Analysis{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := store.ValidateID(id); err != nil {
		s.respondError(w, r, err)
		return
	}
	a, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (s *Server) deleteAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := store.ValidateID(id); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// execute parses the request body and runs the pipeline on it.
func (s *Server) execute(r *http.Request, opts pipeline.Options) (*pipeline.Result, *circuit.Graph, error) {
	g, err := s.parse(r)
	if err != nil {
		return nil, nil, err
	}
	opts.Logger = s.logger
	res, err := s.runner.Execute(r.Context(), g, opts)
	if err != nil {
		return nil, nil, err
	}
	return res, g, nil
}

func (s *Server) parse(r *http.Request) (*circuit.Graph, error) {
	f, err := requestFormat(r)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	return s.runner.Parse(r.Context(), bytes.NewReader(body), f)
}

// requestFormat picks the netlist format from ?format=, then from the
// extension of ?filename=, then from Content-Type.
func requestFormat(r *http.Request) (netlist.Format, error) {
	q := r.URL.Query()
	if v := q.Get("format"); v != "" {
		return netlist.ParseFormat(v)
	}
	if q.Has("filename") {
		name := q.Get("filename")
		if err := errors.ValidateNetlistFilename(name); err != nil {
			return "", err
		}
		return netlist.FormatFromPath(name), nil
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return netlist.FormatLine, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "content type %q", ct)
	}
	if mt == "application/octet-stream" {
		return netlist.FormatLine, nil
	}
	return netlist.ParseFormat(mt)
}

func solveOptions(r *http.Request) (pipeline.Options, error) {
	var opts pipeline.Options
	if v := r.URL.Query().Get("precision"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "precision %q is not an integer", v)
		}
		opts.Precision = pipeline.Places(p)
	}
	opts.Refresh = r.URL.Query().Get("refresh") == "true"
	return opts, nil
}

func contentType(f render.Format) string {
	switch f {
	case render.FormatPNG:
		return "image/png"
	case render.FormatPDF:
		return "application/pdf"
	case render.FormatDOT:
		return "text/vnd.graphviz"
	}
	return "image/svg+xml"
}

// statusFor maps an error to an HTTP status. NOT_FOUND is a client error
// only for stored analyses; a branch lookup miss during assembly is internal.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeDisconnected, errors.ErrCodeSingular:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound:
		if stderrors.Is(err, store.ErrNotFound) {
			return http.StatusNotFound
		}
	case errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusFor(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		if code == errors.ErrCodeInternal {
			msg = "internal error"
		}
	}
	respondJSON(w, status, errorBody{Code: code, Message: msg})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
