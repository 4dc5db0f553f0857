package auth

import (
	"log/slog"
	"net/http"

	"github.com/user/reviewboard-go/apperror"
	"github.com/user/reviewboard-go/config"
	"github.com/user/reviewboard-go/render"
	"github.com/user/reviewboard-go/session"
	"github.com/user/reviewboard-go/users"
	"github.com/user/reviewboard-go/validate"
	"github.com/user/reviewboard-go/web"
)

// Handlers wires the account service, session manager, and renderer into
// the account routes.
type Handlers struct {
	accounts users.AccountService
	sessions *session.Manager
	renderer *render.Renderer
	policy   *config.PolicyConfig
}

// NewHandlers creates a Handlers instance.
func NewHandlers(accounts users.AccountService, sessions *session.Manager, renderer *render.Renderer, policy *config.PolicyConfig) *Handlers {
	return &Handlers{
		accounts: accounts,
		sessions: sessions,
		renderer: renderer,
		policy:   policy,
	}
}

// HandleHome renders the landing page. Authenticated callers never reach
// this handler: RedirectIfAuthenticated sends them to the feed.
func (h *Handlers) HandleHome() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.renderer.Page(w, http.StatusOK, "home", render.PageData{})
	}
}

// HandleLoginPage renders the login form.
func (h *Handlers) HandleLoginPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.renderer.Page(w, http.StatusOK, "login", render.PageData{})
	}
}

// HandleLogin processes a login form submission: validate, verify
// credentials, begin a session, redirect to the feed. Validation and
// credential failures re-render the login view with the failure message;
// anything else is an opaque 500.
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.renderError(w, "login", apperror.NewBadRequestError("invalid form submission", err))
			return
		}

		email, err := validate.NonEmpty(r.PostFormValue("email"), "Email")
		if err == nil {
			email, err = validate.Email(email)
		}
		if err == nil {
			err = validate.Present(r.PostFormValue("password"), "Password")
		}
		if err != nil {
			h.renderError(w, "login", err)
			return
		}

		userID, err := h.accounts.Login(r.Context(), email, r.PostFormValue("password"))
		if err != nil {
			if apperror.IsAuthError(err) {
				h.renderError(w, "login", err)
				return
			}
			web.WriteError(w, r, err)
			return
		}

		if err := h.sessions.Begin(w, r, userID); err != nil {
			web.WriteError(w, r, err)
			return
		}
		http.Redirect(w, r, "/feed", http.StatusFound)
	}
}

// HandleSignupPage renders the signup form.
func (h *Handlers) HandleSignupPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.renderer.Page(w, http.StatusOK, "signup", render.PageData{})
	}
}

// HandleSignup processes a signup form submission. Signup is for anonymous
// callers; a caller who already holds a session is redirected to the feed
// by the route's middleware before reaching this handler. All fields are
// validated, and the password confirmation is checked before any service
// call.
func (h *Handlers) HandleSignup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.renderError(w, "signup", apperror.NewBadRequestError("invalid form submission", err))
			return
		}

		nu, err := h.bindSignupForm(r)
		if err != nil {
			h.renderError(w, "signup", err)
			return
		}

		userID, err := h.accounts.SignUp(r.Context(), *nu)
		if err != nil {
			if apperror.IsConflictError(err) {
				h.renderError(w, "signup", err)
				return
			}
			web.WriteError(w, r, err)
			return
		}

		if err := h.sessions.Begin(w, r, userID); err != nil {
			web.WriteError(w, r, err)
			return
		}
		http.Redirect(w, r, "/feed", http.StatusFound)
	}
}

// bindSignupForm validates and normalizes the signup form fields in the
// order they appear on the form.
func (h *Handlers) bindSignupForm(r *http.Request) (*users.NewUser, error) {
	var nu users.NewUser
	var err error

	if nu.FirstName, err = validate.NonEmpty(r.PostFormValue("firstName"), "First Name"); err != nil {
		return nil, err
	}
	if nu.LastName, err = validate.NonEmpty(r.PostFormValue("lastName"), "Last Name"); err != nil {
		return nil, err
	}
	if nu.Email, err = validate.NonEmpty(r.PostFormValue("email"), "Email"); err != nil {
		return nil, err
	}
	if nu.Email, err = validate.Email(nu.Email); err != nil {
		return nil, err
	}

	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirmPassword")
	if err = validate.Present(password, "Password"); err != nil {
		return nil, err
	}
	if err = validate.Present(confirm, "Password"); err != nil {
		return nil, err
	}
	if password != confirm {
		return nil, apperror.NewValidationError("Passwords do not match", nil)
	}
	if err = validate.Password(password, h.policy.PasswordMinLength); err != nil {
		return nil, err
	}
	nu.Password = password

	if nu.Gender, err = validate.NonEmpty(r.PostFormValue("gender"), "Gender"); err != nil {
		return nil, err
	}
	if nu.City, err = validate.NonEmpty(r.PostFormValue("city"), "City"); err != nil {
		return nil, err
	}
	if nu.State, err = validate.NonEmpty(r.PostFormValue("state"), "State"); err != nil {
		return nil, err
	}
	if nu.Age, err = validate.Number(r.PostFormValue("age"), "Age"); err != nil {
		return nil, err
	}
	if err = validate.Age(nu.Age, h.policy.AgeMin, h.policy.AgeMax); err != nil {
		return nil, err
	}

	return &nu, nil
}

// HandleFeed renders the feed page for an authenticated caller.
func (h *Handlers) HandleFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.renderer.Page(w, http.StatusOK, "feed", render.PageData{})
	}
}

// HandleLogout destroys the caller's session unconditionally and redirects
// home, regardless of prior state.
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.sessions.End(w, r); err != nil {
			slog.Error("failed to destroy session", slog.String("error", err.Error()))
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// renderError re-renders a form view with the failure message. Expected
// failures (validation, bad credentials, conflicts) keep the view contract;
// anything else is written as an opaque JSON 500 by the callers.
func (h *Handlers) renderError(w http.ResponseWriter, view string, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("Internal Server Error", err)
	}
	h.renderer.Page(w, http.StatusBadRequest, view, render.PageData{Class: "error", Msg: appErr.Message})
}
