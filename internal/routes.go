package internal

import (
	"net/http"

	"fmd/internal/controllers"
	"fmd/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController, authController *controllers.AuthController, adminController *controllers.AdminController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/devices", http.HandlerFunc(apiController.GetDevices))
	routers.Get("/device", http.HandlerFunc(apiController.GetDevice))
	routers.Get("/device/latest", http.HandlerFunc(apiController.GetLatest))
	routers.Get("/device/status", http.HandlerFunc(apiController.GetStatus))
	routers.Get("/device/history", http.HandlerFunc(apiController.GetHistory))
	routers.Post("/device/history/delete", http.HandlerFunc(apiController.DeleteHistory))
	routers.Get("/device/usage", http.HandlerFunc(apiController.GetUsage))
	routers.Get("/device/warnings", http.HandlerFunc(apiController.GetWarnings))
	routers.Get("/device/warnings/stats", http.HandlerFunc(apiController.GetWarningStats))
	routers.Post("/device/warning/resolve", http.HandlerFunc(apiController.ResolveWarning))
	routers.Post("/device/relay", http.HandlerFunc(apiController.SetRelay))
	routers.Post("/device/link", http.HandlerFunc(apiController.LinkDevice))
	routers.Post("/device/unlink", http.HandlerFunc(apiController.UnlinkDevice))
	routers.Post("/ingest", http.HandlerFunc(apiController.Ingest))
	routers.Get("/warnings/unresolved-today", http.HandlerFunc(apiController.GetUnresolvedToday))

	routers.Post("/auth/register", http.HandlerFunc(authController.Register))
	routers.Post("/auth/login", http.HandlerFunc(authController.Login))
	routers.Post("/auth/logout", http.HandlerFunc(authController.Logout))
	routers.Get("/auth/me", http.HandlerFunc(authController.Me))
	routers.Post("/auth/password", http.HandlerFunc(authController.ChangePassword))
	routers.Post("/auth/profile", http.HandlerFunc(authController.UpdateProfile))
	routers.Post("/auth/avatar", http.HandlerFunc(authController.UploadAvatar))

	routers.Get("/admin/users", http.HandlerFunc(adminController.ListUsers))
	routers.Post("/admin/user/delete", http.HandlerFunc(adminController.DeleteUser))
	routers.Get("/admin/devices", http.HandlerFunc(adminController.ListDevices))
	routers.Post("/admin/device", http.HandlerFunc(adminController.RegisterDevice))
	routers.Post("/admin/device/delete", http.HandlerFunc(adminController.DeleteDevice))

	return routers
}
