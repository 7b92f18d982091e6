package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lespetitsreves/lprds/internal/config"
	"github.com/lespetitsreves/lprds/internal/handlers"
	"github.com/lespetitsreves/lprds/internal/models"
)

func Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handlers.Health)

	// Uploaded report media, served under the URL prefix stored on reports.
	r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(config.MediaDir()))))

	r.Group(func(ar chi.Router) {
		ar.Use(handlers.Auth)

		// Any authenticated profile.
		ar.Get("/me", handlers.Me)
		ar.Get("/sections", handlers.ListSections)
		ar.Get("/my/children", handlers.MyChildren)
		ar.Get("/messages", handlers.ListMessages)
		ar.Post("/messages/{id}/read", handlers.MarkMessageRead)
		ar.Get("/daily-reports", handlers.ListDailyReports)
		ar.Get("/daily-reports/{id}", handlers.GetDailyReport)
		ar.Get("/weekly-reports", handlers.ListWeeklyReports)
		ar.Get("/weekly-reports/{id}", handlers.GetWeeklyReport)

		// Staff and educators.
		ar.Group(func(st chi.Router) {
			st.Use(handlers.RequireRole(models.RoleAdmin, models.RoleSecretary, models.RoleEducator))

			st.Get("/children", handlers.ListChildren)
			st.Get("/children/{id}", handlers.GetChild)
			st.Get("/children/{id}/parents", handlers.ChildParents)
			st.Get("/children/{id}/authorized-persons", handlers.ListAuthorizedPersons)
			st.Get("/children/{id}/medical-records", handlers.ListMedicalRecords)

			st.Get("/groups", handlers.ListGroups)
			st.Get("/groups/{id}", handlers.GetGroup)
			st.Get("/groups/{id}/children", handlers.GroupChildren)

			st.Post("/daily-reports", handlers.SaveDailyReport)
			st.Post("/weekly-reports", handlers.SaveWeeklyReport)

			st.Post("/attendance/scan", handlers.ScanAttendance)
			st.Post("/attendance/absent", handlers.MarkAbsent)
			st.Get("/attendance", handlers.ListAttendance)
			st.Get("/attendance/scans", handlers.ListScanLogs)

			st.Get("/qr/{code}.png", handlers.QRBadge)
			st.Post("/uploads", handlers.UploadMedia)
			st.Post("/messages", handlers.CreateMessage)
		})

		// Admin/secretary management and validation.
		ar.Group(func(ad chi.Router) {
			ad.Use(handlers.RequireRole(models.RoleAdmin, models.RoleSecretary))

			ad.Post("/children", handlers.CreateChild)
			ad.Patch("/children/{id}", handlers.UpdateChild)

			ad.Post("/groups", handlers.CreateGroup)
			ad.Put("/groups/{id}", handlers.UpdateGroup)
			ad.Put("/groups/{id}/children", handlers.AssignGroupChildren)

			ad.Post("/daily-reports/{id}/validate", handlers.ValidateDailyReport)
			ad.Post("/weekly-reports/{id}/validate", handlers.ValidateWeeklyReport)

			ad.Get("/profiles", handlers.ListProfiles)
			ad.Post("/profiles", handlers.CreateProfile)
			ad.Put("/profiles/{id}", handlers.UpdateProfile)

			ad.Post("/parent-children", handlers.CreateRelation)
			ad.Delete("/parent-children/{id}", handlers.DeleteRelation)

			ad.Post("/children/{id}/authorized-persons", handlers.CreateAuthorizedPerson)
			ad.Delete("/authorized-persons/{id}", handlers.DeleteAuthorizedPerson)
			ad.Post("/children/{id}/medical-records", handlers.CreateMedicalRecord)
		})
	})

	return r
}
