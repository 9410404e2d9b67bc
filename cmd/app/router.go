package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	// wrong methods are answered like unknown routes
	router.HandleMethodNotAllowed = false
	router.NotFound = http.HandlerFunc(app.routeNotFoundResponse)

	router.HandlerFunc(http.MethodGet, "/api/health", app.healthCheckHandler)

	// user service
	router.HandlerFunc(http.MethodPost, "/api/auth/signup", app.signupUserHandler)
	router.HandlerFunc(http.MethodPost, "/api/auth/login", app.loginUserHandler)

	// blog service
	router.HandlerFunc(http.MethodGet, "/api/blogs", app.listBlogsHandler)
	router.HandlerFunc(http.MethodPost, "/api/blogs", app.requireAuthUser(app.createBlogHandler))
	router.HandlerFunc(http.MethodGet, "/api/blogs/:id", app.getBlogHandler)
	router.HandlerFunc(http.MethodPut, "/api/blogs/:id", app.requireAuthUser(app.updateBlogHandler))
	router.HandlerFunc(http.MethodDelete, "/api/blogs/:id", app.requireAuthUser(app.deleteBlogHandler))
	// httprouter cannot register /api/blogs/user/my-blogs next to /api/blogs/:id, so the
	// two segment form is matched here and dispatched by value.
	router.HandlerFunc(http.MethodGet, "/api/blogs/:id/:sub", app.blogSubresourceHandler)

	return chain(router,
		app.recoverPanic,
		app.logRequest,
		app.secureHeaders,
		app.rateLimit,
		app.enableCORS,
		app.limitRequestBody,
		app.authenticate,
	)
}

// chain wraps h so that the first middleware is the outermost.
func chain(h http.Handler, middleware ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}
