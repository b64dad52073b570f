package turmas

import "github.com/go-chi/chi/v5"

// Mount registra rotas de turmas no router.
func Mount(r chi.Router, handler *Handler) {
	handler.RegisterRoutes(r)
}
