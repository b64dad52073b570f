package financeiro

import "github.com/go-chi/chi/v5"

// Mount registra rotas financeiras no router.
func Mount(r chi.Router, handler *Handler) {
	handler.RegisterRoutes(r)
}
