// Package health contains the liveness endpoint.
package health

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/isdev18/vitrine-do-vendedor/internal/api/response"
)

// New builds the GET /health handler.
func New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.OKWithData(map[string]string{"service": "vitrine-do-vendedor"}))
	}
}
