package routes

import (
	"net/http"

	"tripmate/auth"
	"tripmate/middleware"
	"tripmate/models"
	"tripmate/ratelim"
	"tripmate/reviews"
	"tripmate/travelplans"
	"tripmate/travelrequests"
	"tripmate/users"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/userpic/*filepath", http.Dir("static/userpic"))
}

func AddAuthRoutes(router *httprouter.Router, h *auth.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(h.Register))
	router.POST("/api/auth/login", rl.Limit(h.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(h.Logout))
	router.POST("/api/auth/token/refresh", rl.Limit(h.RefreshToken))
	router.POST("/api/auth/create-admin", middleware.Authenticate(middleware.RequireRoles(h.CreateAdmin, models.RoleAdmin)))
}

func AddUserRoutes(router *httprouter.Router, h *users.Handler) {
	router.GET("/api/users", middleware.Authenticate(h.ListTravelers))
	router.GET("/api/users/:id", middleware.Authenticate(h.GetUser))
	router.GET("/api/profile", middleware.Authenticate(h.GetMyProfile))
	router.PUT("/api/profile", middleware.Authenticate(h.UpdateMyProfile))
	router.DELETE("/api/users/:id", middleware.Authenticate(middleware.RequireRoles(h.DeactivateUser, models.RoleAdmin)))
}

func AddTravelPlanRoutes(router *httprouter.Router, h *travelplans.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/travelplans", rl.Limit(middleware.Authenticate(h.CreatePlan)))
	router.GET("/api/travelplans", h.ListPlans)
	// static siblings of :id would conflict in httprouter, hence the
	// separate prefixes for the caller-scoped listings
	router.GET("/api/mytravelplans", middleware.Authenticate(h.MyPlans))
	router.GET("/api/matches", middleware.Authenticate(h.MatchedTravelers))
	router.GET("/api/travelplans/:id", h.GetPlan)
	router.PUT("/api/travelplans/:id", middleware.Authenticate(h.UpdatePlan))
	router.DELETE("/api/travelplans/:id", middleware.Authenticate(h.DeletePlan))
	router.GET("/api/travelplans/:id/qr", h.ShareQR)
	router.GET("/api/travelplans/:id/summary", middleware.Authenticate(h.TripSummaryPDF))
}

func AddTravelRequestRoutes(router *httprouter.Router, h *travelrequests.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/travelrequests", rl.Limit(middleware.Authenticate(h.CreateRequest)))
	router.PUT("/api/travelrequests/:id/respond", middleware.Authenticate(h.RespondToRequest))
	router.GET("/api/mytravelrequests", middleware.Authenticate(h.MyRequests))
	router.GET("/api/travelplans/:id/requests", middleware.Authenticate(h.PlanRequests))
}

func AddReviewRoutes(router *httprouter.Router, h *reviews.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/reviews", rl.Limit(middleware.Authenticate(h.CreateReview)))
	router.GET("/api/reviews", h.ListReviews)
	router.GET("/api/testimonials", h.Testimonials)
}
