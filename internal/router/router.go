package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/iidmage/backoffice/internal/attachment"
	"github.com/iidmage/backoffice/internal/client"
	"github.com/iidmage/backoffice/internal/commande"
	"github.com/iidmage/backoffice/internal/logger"
	"github.com/iidmage/backoffice/internal/middleware"
	"github.com/iidmage/backoffice/internal/poseur"
	"github.com/iidmage/backoffice/internal/user"
)

func NewRouter(
	userH *user.Handler,
	clientH *client.Handler,
	poseurH *poseur.Handler,
	commandeH *commande.Handler,
	attachmentH *attachment.Handler,
	jwtSecret []byte,
	uploadDir string,
) chi.Router {
	r := chi.NewRouter()

	r.Use(logger.WithLogging)
	r.Use(chiMiddleware.Recoverer)

	r.Use(middleware.GzipHandler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Mount("/api/auth", userH.AuthRoutes())

	fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir)))
	r.Get("/uploads/*", fs.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTMiddleware(jwtSecret))

		r.Mount("/api/me", userH.MeRoutes())

		r.Route("/api/commandes", func(r chi.Router) {
			r.Get("/", commandeH.List)
			r.Get("/{id}", commandeH.Get)
			r.Get("/{id}/attachments", attachmentH.List)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireWriter)
				r.Post("/", commandeH.Create)
				r.Put("/{id}", commandeH.Update)
				r.Delete("/{id}", commandeH.Delete)
				r.Post("/{id}/attachments", attachmentH.Upload)
				r.Post("/{id}/retroplanning/generate", commandeH.GenerateRetroplanning)
				r.Patch("/{id}/milestones/{kind}", commandeH.SetMilestone)
			})
		})

		r.Route("/api/clients", func(r chi.Router) {
			r.Get("/", clientH.List)
			r.Get("/{id}", clientH.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireWriter)
				r.Post("/", clientH.Create)
				r.Patch("/{id}", clientH.Update)
				r.Delete("/{id}", clientH.Delete)
			})
		})

		r.Route("/api/poseurs", func(r chi.Router) {
			r.Get("/", poseurH.List)
			r.Get("/{id}", poseurH.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Post("/", poseurH.Create)
				r.Patch("/{id}", poseurH.Update)
				r.Delete("/{id}", poseurH.Delete)
			})
		})

		r.Route("/api/users", func(r chi.Router) {
			r.Use(middleware.RequireOwner)
			r.Mount("/", userH.Routes())
		})
	})

	return r
}
