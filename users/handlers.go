package users

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/reviewboard-go/apperror"
	"github.com/user/reviewboard-go/config"
	"github.com/user/reviewboard-go/render"
	"github.com/user/reviewboard-go/validate"
	"github.com/user/reviewboard-go/web"
)

// Handlers provides the profile routes: user info (page and JSON) and
// profile editing.
type Handlers struct {
	accounts AccountService
	renderer *render.Renderer
	policy   *config.PolicyConfig
}

// NewHandlers creates a Handlers instance.
func NewHandlers(accounts AccountService, renderer *render.Renderer, policy *config.PolicyConfig) *Handlers {
	return &Handlers{accounts: accounts, renderer: renderer, policy: policy}
}

// UserInfo is the payload of the user info routes. SameUser is true when
// the requested profile belongs to the caller.
type UserInfo struct {
	Profile  *Profile `json:"data"`
	SameUser bool     `json:"sameUser"`
}

// lookupUserInfo resolves the {id} route parameter against the account
// service. Unknown and malformed ids surface as 400, the contract of these
// routes.
func (h *Handlers) lookupUserInfo(r *http.Request) (*UserInfo, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return nil, apperror.NewBadRequestError("invalid user id", err)
	}

	profile, err := h.accounts.GetUser(r.Context(), id)
	if err != nil {
		if appErr, ok := apperror.FromError(err); ok && appErr.Type == apperror.NotFoundError {
			return nil, apperror.NewBadRequestError(appErr.Message, nil)
		}
		return nil, err
	}

	callerID, _ := web.UserIDFromContext(r.Context())
	return &UserInfo{Profile: profile, SameUser: profile.ID == callerID}, nil
}

// HandleUserInfoPage renders a user's profile page.
// GET /userinfo/{id}
func (h *Handlers) HandleUserInfoPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := h.lookupUserInfo(r)
		if err != nil {
			web.WriteError(w, r, err)
			return
		}
		h.renderer.Page(w, http.StatusOK, "userinfo", render.PageData{Data: info})
	}
}

// HandleUserInfoJSON returns a user's profile as JSON.
// POST /userinfo/{id}
func (h *Handlers) HandleUserInfoJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := h.lookupUserInfo(r)
		if err != nil {
			web.WriteError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, info)
	}
}

// HandleEditProfilePage renders the edit-profile form.
// GET /editprofile
func (h *Handlers) HandleEditProfilePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.renderer.Page(w, http.StatusOK, "editprofile", render.PageData{})
	}
}

// HandleEditProfile applies a sparse profile update. Empty form fields are
// treated as "leave unchanged" and never reach the service; an update with
// no fields at all fails before any service call.
// POST /editprofile
func (h *Handlers) HandleEditProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := web.UserIDFromContext(r.Context())
		if !ok {
			web.WriteError(w, r, apperror.NewAuthError("unauthorized", nil))
			return
		}

		if err := r.ParseForm(); err != nil {
			h.renderError(w, apperror.NewBadRequestError("invalid form submission", err))
			return
		}

		update, err := h.bindEditForm(r)
		if err != nil {
			h.renderError(w, err)
			return
		}
		if update.Empty() {
			h.renderError(w, apperror.NewBadRequestError("Nothing to update.", nil))
			return
		}

		if err := h.accounts.UpdateUser(r.Context(), userID, *update); err != nil {
			switch {
			case apperror.IsValidationError(err), apperror.IsConflictError(err), apperror.IsNotFound(err):
				h.renderError(w, err)
			default:
				web.WriteError(w, r, err)
			}
			return
		}

		h.renderer.Page(w, http.StatusOK, "editprofile", render.PageData{
			Class: "success",
			Msg:   "Successfully updated personal information.",
		})
	}
}

// bindEditForm builds the sparse update payload. Each supplied field is
// validated with the same rules as signup; absent fields stay nil.
func (h *Handlers) bindEditForm(r *http.Request) (*ProfileUpdate, error) {
	var update ProfileUpdate

	bindStr := func(field, label string, dst **string) error {
		raw := r.PostFormValue(field)
		if raw == "" {
			return nil
		}
		v, err := validate.NonEmpty(raw, label)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	}

	if err := bindStr("firstName", "First Name", &update.FirstName); err != nil {
		return nil, err
	}
	if err := bindStr("lastName", "Last Name", &update.LastName); err != nil {
		return nil, err
	}

	if raw := r.PostFormValue("email"); raw != "" {
		v, err := validate.NonEmpty(raw, "Email")
		if err == nil {
			v, err = validate.Email(v)
		}
		if err != nil {
			return nil, err
		}
		update.Email = &v
	}

	if password := r.PostFormValue("password"); password != "" {
		confirm := r.PostFormValue("confirmPassword")
		if err := validate.Present(confirm, "Password"); err != nil {
			return nil, err
		}
		if password != confirm {
			return nil, apperror.NewValidationError("Passwords do not match", nil)
		}
		if err := validate.Password(password, h.policy.PasswordMinLength); err != nil {
			return nil, err
		}
		update.Password = &password
	}

	if err := bindStr("gender", "Gender", &update.Gender); err != nil {
		return nil, err
	}
	if err := bindStr("city", "City", &update.City); err != nil {
		return nil, err
	}
	if err := bindStr("state", "State", &update.State); err != nil {
		return nil, err
	}

	if raw := r.PostFormValue("age"); raw != "" {
		n, err := validate.Number(raw, "Age")
		if err != nil {
			return nil, err
		}
		if err := validate.Age(n, h.policy.AgeMin, h.policy.AgeMax); err != nil {
			return nil, err
		}
		update.Age = &n
	}

	return &update, nil
}

func (h *Handlers) renderError(w http.ResponseWriter, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("Internal Server Error", err)
	}
	h.renderer.Page(w, http.StatusBadRequest, "editprofile", render.PageData{Class: "error", Msg: appErr.Message})
}
