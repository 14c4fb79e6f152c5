// Package resource expõe uma coleção de recursos (list/get/create/update/delete)
// sobre HTTP usando gorilla/mux.
package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/raywall/fast-crud-service/easyrepo"
	"github.com/raywall/fast-crud-service/pkg/metrics"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

// Service é o contrato consumido pelo Handler. easyrepo.EasyService o satisfaz.
type Service[T any] interface {
	List(ctx context.Context) []T
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, item *T) (T, error)
	Update(ctx context.Context, id string, item *T) (T, error)
	Delete(ctx context.Context, id string) (T, error)
	Size() int
}

type Options struct {
	// Name identifica a coleção nas métricas e logs (ex: "usuarios").
	Name string
	// NotFound formata a mensagem de 404 do GET a partir do id pedido.
	// Ex: "El usuario %s no se encuentra!"
	NotFound string
	// NotFoundOnWrite é a mensagem de 404 do PUT e do DELETE, sem o id.
	// Vazio reaproveita NotFound.
	NotFoundOnWrite string
	Metrics         metrics.Provider
}

// Handler liga um Service às cinco rotas de uma coleção.
type Handler[T any] struct {
	svc             Service[T]
	name            string
	notFound        string
	notFoundOnWrite string
	metrics         metrics.Provider
}

func NewHandler[T any](svc Service[T], opts Options) *Handler[T] {
	if opts.NotFound == "" {
		opts.NotFound = "resource %s not found"
	}
	return &Handler[T]{
		svc:             svc,
		name:            opts.Name,
		notFound:        opts.NotFound,
		notFoundOnWrite: opts.NotFoundOnWrite,
		metrics:         opts.Metrics,
	}
}

// Register monta as rotas sob base. base e base+"/" são aceitos para list e create.
func (h *Handler[T]) Register(r *mux.Router, base string) {
	for _, root := range []string{base, base + "/"} {
		r.HandleFunc(root, h.List).Methods(http.MethodGet)
		r.HandleFunc(root, h.Create).Methods(http.MethodPost)
	}
	r.HandleFunc(base+"/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc(base+"/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc(base+"/{id}", h.Delete).Methods(http.MethodDelete)
}

func (h *Handler[T]) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.svc.List(r.Context()))
}

func (h *Handler[T]) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, h.missing(id, false), err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (h *Handler[T]) Create(w http.ResponseWriter, r *http.Request) {
	item, err := decode[T](w, r)
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}

	created, err := h.svc.Create(r.Context(), &item)
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}

	h.reportSize()
	// 200 e não 201: clientes existentes dependem desse status
	writeJSON(w, r, http.StatusOK, created)
}

func (h *Handler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	// id desconhecido responde 404 mesmo com body inválido
	if _, err := h.svc.Get(r.Context(), id); err != nil {
		h.writeError(w, r, h.missing(id, true), err)
		return
	}

	item, err := decode[T](w, r)
	if err != nil {
		h.writeError(w, r, h.missing(id, true), err)
		return
	}

	updated, err := h.svc.Update(r.Context(), id, &item)
	if err != nil {
		h.writeError(w, r, h.missing(id, true), err)
		return
	}

	h.reportSize()
	writeJSON(w, r, http.StatusOK, updated)
}

func (h *Handler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	removed, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, r, h.missing(id, true), err)
		return
	}

	h.reportSize()
	writeJSON(w, r, http.StatusOK, removed)
}

func (h *Handler[T]) reportSize() {
	if h.metrics == nil {
		return
	}
	_ = h.metrics.Gauge(metrics.ResourceSize, float64(h.svc.Size()), []string{"resource:" + h.name})
}

// missing monta o texto do 404. Escritas usam notFoundOnWrite quando definido.
func (h *Handler[T]) missing(id string, write bool) string {
	if write && h.notFoundOnWrite != "" {
		return h.notFoundOnWrite
	}
	return fmt.Sprintf(h.notFound, id)
}

func (h *Handler[T]) writeError(w http.ResponseWriter, r *http.Request, notFound string, err error) {
	var vErr *easyrepo.ValidationError

	switch {
	case errors.Is(err, easyrepo.ErrNotFound):
		writeText(w, http.StatusNotFound, notFound)
	case errors.As(err, &vErr):
		writeText(w, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, errInvalidBody):
		writeText(w, http.StatusBadRequest, err.Error())
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("resource", h.name).Msg("falha ao processar requisição")
		writeText(w, http.StatusInternalServerError, "internal server error")
	}
}

var errInvalidBody = errors.New("invalid JSON body")

// decode lê o body como T. Um body vazio, ou que não seja um objeto JSON
// (ex: [] ou "Ana"), equivale a "{}" e cai na validação dos campos.
func decode[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var item T

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return item, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return item, nil
	}

	if err := json.Unmarshal(data, &item); err != nil {
		converted := easyrepo.DecodeError(err)
		if errors.Is(converted, easyrepo.ErrNotObject) {
			var zero T
			return zero, nil
		}
		var vErr *easyrepo.ValidationError
		if errors.As(converted, &vErr) {
			return item, vErr
		}
		return item, errInvalidBody
	}
	return item, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("erro ao encode response")
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}
