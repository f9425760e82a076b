package games

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"GameCatalog/pkg/kit"
)

const readyTimeout = 1 * time.Second

type Server struct {
	Service Service
	Log     *zap.Logger

	// WriteLimiter, when set, throttles POST/PUT/PATCH/DELETE per client IP.
	WriteLimiter *kit.IPRateLimiter
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.ready)

	r.Route("/games", func(r chi.Router) {
		r.Get("/", s.list)
		r.Get("/{id}", s.get)

		r.Group(func(wr chi.Router) {
			if s.WriteLimiter != nil {
				wr.Use(s.WriteLimiter.Middleware)
			}
			wr.Post("/", s.insert)
			wr.Put("/{id}", s.update)
			wr.Patch("/{id}/price/{price}", s.updatePrice)
			wr.Delete("/{id}", s.remove)
		})
	})

	return r
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Service.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	games, err := s.Service.List(r.Context(), page)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if len(games) == 0 {
		kit.WriteStatus(w, http.StatusNoContent)
		return
	}
	kit.WriteJSON(w, http.StatusOK, games)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := s.routeID(w, r)
	if !ok {
		return
	}

	g, found, err := s.Service.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !found {
		kit.WriteStatus(w, http.StatusNoContent)
		return
	}
	kit.WriteJSON(w, http.StatusOK, g)
}

func (s *Server) insert(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(r)
	if err != nil {
		s.writeDecodeError(w, r, err)
		return
	}

	g, err := s.Service.Insert(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, g)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := s.routeID(w, r)
	if !ok {
		return
	}

	in, err := decodeInput(r)
	if err != nil {
		s.writeDecodeError(w, r, err)
		return
	}

	if err := s.Service.Update(r.Context(), id, in); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	kit.WriteStatus(w, http.StatusOK)
}

func (s *Server) updatePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := s.routeID(w, r)
	if !ok {
		return
	}

	raw := chi.URLParam(r, "price")
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid price", map[string]any{"price": raw})
		return
	}
	if err := (PriceChange{Price: price}).Validate(); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if err := s.Service.UpdatePrice(r.Context(), id, price); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	kit.WriteStatus(w, http.StatusOK)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := s.routeID(w, r)
	if !ok {
		return
	}

	if err := s.Service.Remove(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	kit.WriteStatus(w, http.StatusOK)
}

func (s *Server) routeID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid id", map[string]any{"id": raw})
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch KindOf(err) {
	case KindInvalid:
		var ve *ValidationError
		errors.As(err, &ve)
		kit.WriteError(w, r, http.StatusBadRequest, "invalid input", ve.Fields)
	case KindDuplicate:
		kit.WriteError(w, r, http.StatusUnprocessableEntity, ErrDuplicate.Error(), nil)
	case KindNotFound:
		kit.WriteError(w, r, http.StatusNotFound, ErrNotFound.Error(), map[string]any{"id": chi.URLParam(r, "id")})
	default:
		if isTimeoutErr(err) {
			kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
			return
		}
		s.logger().Error("games request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// parsePage reads page and size from the query, defaulting absent values.
func parsePage(r *http.Request) (Page, error) {
	page := DefaultPageRequest()
	q := r.URL.Query()

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Page{}, invalidField("page", "must be an integer")
		}
		page.Number = n
	}
	if raw := q.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Page{}, invalidField("size", "must be an integer")
		}
		page.Size = n
	}

	if err := page.Validate(); err != nil {
		return Page{}, err
	}
	return page, nil
}

// decodeInput reads a strict JSON Input and validates it, so malformed or
// out-of-range bodies never reach the service.
func decodeInput(r *http.Request) (Input, error) {
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var in Input
	if err := dec.Decode(&in); err != nil {
		return Input{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return Input{}, errors.New("extra data after json object")
	}

	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Input{}, err
	}
	return in, nil
}

func (s *Server) writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	if KindOf(err) == KindInvalid {
		s.writeServiceError(w, r, err)
		return
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		kit.WriteError(w, r, http.StatusRequestEntityTooLarge, "body too large", map[string]any{"limit": tooLarge.Limit})
		return
	}
	kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
}

func isTimeoutErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
