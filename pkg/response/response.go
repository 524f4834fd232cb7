package response

import (
	"net/http"

	"example.com/userstore/internal/domain"

	"github.com/go-chi/render"
)

func JSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	render.Status(r, code)
	render.JSON(w, r, v)
}

func Message(w http.ResponseWriter, r *http.Request, code int, msg string) {
	JSON(w, r, code, domain.Message{Message: msg})
}
