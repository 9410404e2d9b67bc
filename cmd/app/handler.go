package main

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/sushihentaime/blogapi/internal/blogservice"
	"github.com/sushihentaime/blogapi/internal/userservice"
)

func (app *application) signupUserHandler(w http.ResponseWriter, r *http.Request) {
	var input userservice.SignupRequest

	err := app.parseJSON(r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	res, err := app.userService.CreateUser(r.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrDuplicateEmail):
			app.duplicateErrorResponse(w, r, "User already exists with this email")
		default:
			app.validationOrServerError(w, r, err)
		}
		return
	}

	app.writeSuccess(w, r, http.StatusCreated, "Signup successful", res)
}

func (app *application) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	var input userservice.LoginRequest

	err := app.parseJSON(r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	res, err := app.userService.LoginUser(r.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrAuthenticationFailure):
			app.invalidCredentialsErrorResponse(w, r)
		default:
			app.validationOrServerError(w, r, err)
		}
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "Login successful", res)
}

func (app *application) listBlogsHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := app.readListParams(r)
	if err != nil {
		app.validationOrServerError(w, r, err)
		return
	}

	user := app.getUserContext(r)

	res, err := app.blogService.ListBlogs(r.Context(), user.ID, filter)
	if err != nil {
		app.validationOrServerError(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "", res)
}

func (app *application) listMyBlogsHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := app.readListParams(r)
	if err != nil {
		app.validationOrServerError(w, r, err)
		return
	}

	user := app.getUserContext(r)

	res, err := app.blogService.ListUserBlogs(r.Context(), user.ID, filter)
	if err != nil {
		app.validationOrServerError(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "", res)
}

func (app *application) blogSubresourceHandler(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())

	if params.ByName("id") == "user" && params.ByName("sub") == "my-blogs" {
		app.requireAuthUser(app.listMyBlogsHandler)(w, r)
		return
	}

	app.routeNotFoundResponse(w, r)
}

func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	var input blogservice.CreateBlogRequest

	err := app.parseJSON(r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	input.AuthorID = app.getUserContext(r).ID

	blog, err := app.blogService.CreateBlog(r.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrDuplicateTitle):
			app.duplicateErrorResponse(w, r, "A blog with this title already exists")
		case errors.Is(err, blogservice.ErrUserForeignKey):
			app.invalidAuthenticationTokenResponse(w, r)
		default:
			app.validationOrServerError(w, r, err)
		}
		return
	}

	app.writeSuccess(w, r, http.StatusCreated, "Blog created successfully", envelope{"blog": blog})
}

func (app *application) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blog, err := app.blogService.GetBlogByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.validationOrServerError(w, r, err)
		}
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "", envelope{"blog": blog})
}

func (app *application) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var input blogservice.UpdateBlogRequest

	err = app.parseJSON(r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	blog, err := app.blogService.UpdateBlog(r.Context(), id, user.ID, &input)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, blogservice.ErrForbidden):
			app.forbiddenErrorResponse(w, r)
		case errors.Is(err, blogservice.ErrDuplicateTitle):
			app.duplicateErrorResponse(w, r, "A blog with this title already exists")
		case errors.Is(err, blogservice.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.validationOrServerError(w, r, err)
		}
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "Blog updated successfully", envelope{"blog": blog})
}

func (app *application) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	err = app.blogService.DeleteBlog(r.Context(), id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, blogservice.ErrForbidden):
			app.forbiddenErrorResponse(w, r)
		default:
			app.validationOrServerError(w, r, err)
		}
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "Blog deleted successfully", nil)
}
