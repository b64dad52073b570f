package cadastro

import "github.com/go-chi/chi/v5"

// Mount registra rotas dos cadastros no router.
func Mount(r chi.Router, handler *Handler) {
	handler.RegisterRoutes(r)
}
