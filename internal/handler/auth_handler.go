package handler

import (
	"net/http"

	"calmate-web/internal/routes"
	"calmate-web/internal/session"
	"calmate-web/internal/view"
	"calmate-web/pkg/apierror"
)

// AuthHandler serves the login and signup screens and turns form posts
// into upstream credential calls through the session manager.
type AuthHandler struct {
	manager  *session.Manager
	cookies  *session.CookieCodec
	renderer *view.Renderer
}

func NewAuthHandler(manager *session.Manager, cookies *session.CookieCodec, renderer *view.Renderer) *AuthHandler {
	return &AuthHandler{manager: manager, cookies: cookies, renderer: renderer}
}

type loginData struct {
	baseData
	Error        string
	Email        string
	ReturnTarget string
}

type signupData struct {
	baseData
	Error    string
	Username string
	Email    string
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, http.StatusOK, loginData{
		baseData:     newBaseData(nil, "Log In", ""),
		ReturnTarget: returnTarget(r.URL.Query().Get(routes.ReturnTargetParam)),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := formValue(r, "email")
	password := r.FormValue("password")
	target := returnTarget(formValue(r, routes.ReturnTargetParam))

	data := loginData{
		baseData:     newBaseData(nil, "Log In", ""),
		Email:        email,
		ReturnTarget: target,
	}

	if email == "" || password == "" {
		data.Error = "Email and password are required"
		h.renderLogin(w, http.StatusBadRequest, data)
		return
	}

	sess, err := h.manager.Login(r.Context(), email, password)
	if err != nil {
		data.Error = userMessage(err, "Failed to log in")
		h.renderLogin(w, statusFor(err), data)
		return
	}

	h.cookies.Issue(w, sess.ID)
	if target == "" {
		target = routes.DefaultAuthenticatedPath
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.renderSignup(w, http.StatusOK, signupData{baseData: newBaseData(nil, "Sign Up", "")})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	username := formValue(r, "username")
	email := formValue(r, "email")
	password := r.FormValue("password")

	data := signupData{
		baseData: newBaseData(nil, "Sign Up", ""),
		Username: username,
		Email:    email,
	}

	if username == "" || email == "" || password == "" {
		data.Error = "All fields are required"
		h.renderSignup(w, http.StatusBadRequest, data)
		return
	}

	sess, err := h.manager.Signup(r.Context(), email, password, username)
	if err != nil {
		// Validation problems carry field detail worth surfacing; any
		// other failure in the signup chain reads as one outcome.
		if apierror.KindOf(err) == apierror.KindValidation {
			data.Error = userMessage(err, "Failed to create account")
		} else {
			data.Error = "Failed to create account"
		}
		h.renderSignup(w, statusFor(err), data)
		return
	}

	h.cookies.Issue(w, sess.ID)
	http.Redirect(w, r, routes.DefaultAuthenticatedPath, http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id, err := h.cookies.Read(r); err == nil {
		h.manager.Logout(r.Context(), id)
	}
	h.cookies.Clear(w)
	http.Redirect(w, r, routes.LoginPath, http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, status int, data loginData) {
	h.renderer.Render(w, status, "login", data)
}

func (h *AuthHandler) renderSignup(w http.ResponseWriter, status int, data signupData) {
	h.renderer.Render(w, status, "signup", data)
}

// returnTarget sanitizes a requested post-login destination, dropping
// anything that is not a safe local path.
func returnTarget(raw string) string {
	if routes.SafeReturnTarget(raw) {
		return raw
	}
	return ""
}

func statusFor(err error) int {
	switch apierror.KindOf(err) {
	case apierror.KindAuth:
		return http.StatusUnauthorized
	case apierror.KindValidation:
		return http.StatusBadRequest
	case apierror.KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
