package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

var catalogoProductos = []string{"Mouse", "Teclado", "Bocinas"}

func greeting(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Hola mundo desde Go!")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

func productos(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, r, http.StatusOK, catalogoProductos)
}

// queryEcho devolve a query string recebida, um valor por chave.
// Ex: /api/usuarios/2002/2?nombre=xxxx&single=y
func queryEcho(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	sendJSON(w, r, http.StatusOK, out)
}

func sendJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("erro ao encode response")
	}
}
