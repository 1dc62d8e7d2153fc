package main

import (
	"encoding/json"
	"net/http"

	"github.com/citypress/account-service/app/dto"
	"github.com/citypress/account-service/app/errors"
)

// adminListUsersHandler returns every account for the admin console grid.
func (app *application) adminListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, appErr := app.adminService.ListUsers(r.Context())
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

// adminGetUserHandler returns a single account by id.
func (app *application) adminGetUserHandler(w http.ResponseWriter, r *http.Request) {
	id, appErr := parseIDParam(r)
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	user, appErr := app.adminService.GetUser(r.Context(), id)
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// adminCreateUserHandler creates an account from the admin console. Unlike
// self-registration the operator chooses role and verified state, and no
// verification mail is sent.
func (app *application) adminCreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminCreateUserRequest
	var profileImage []byte

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxProfileImageBytes); err != nil {
			writeErrorResponse(w, errors.NewInvalidInput("invalid multipart form"))
			return
		}
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")
		req.Name = r.FormValue("name")
		req.Phone = r.FormValue("phone")
		req.Role = r.FormValue("role")
		req.IsVerified = r.FormValue("is_verified") == "true"

		img, appErr := readProfileImage(r)
		if appErr != nil {
			writeErrorResponse(w, appErr)
			return
		}
		profileImage = img
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorResponse(w, errors.NewInvalidInput("invalid request body"))
			return
		}
	}

	req.Email = sanitizeEmail(req.Email, 255)
	req.Name = sanitizeInput(req.Name, 50, false)
	req.Phone = sanitizeInput(req.Phone, 15, false)
	req.Role = sanitizeInput(req.Role, 16, false)
	req.Password = sanitizeInput(req.Password, 128, true)

	if err := validateRequest(&req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	user, appErr := app.adminService.CreateUser(r.Context(), req, profileImage)
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(dto.NewUserResponse(user))
}

// adminUpdateUserHandler overwrites a user's profile fields. The password is
// never touched here; a nil image keeps the stored one.
func (app *application) adminUpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, appErr := parseIDParam(r)
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	var req dto.AdminUpdateUserRequest
	var profileImage []byte

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxProfileImageBytes); err != nil {
			writeErrorResponse(w, errors.NewInvalidInput("invalid multipart form"))
			return
		}
		req.Name = r.FormValue("name")
		req.Phone = r.FormValue("phone")
		req.Role = r.FormValue("role")
		req.IsVerified = r.FormValue("is_verified") == "true"

		img, imgErr := readProfileImage(r)
		if imgErr != nil {
			writeErrorResponse(w, imgErr)
			return
		}
		profileImage = img
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorResponse(w, errors.NewInvalidInput("invalid request body"))
			return
		}
	}

	req.Name = sanitizeInput(req.Name, 50, false)
	req.Phone = sanitizeInput(req.Phone, 15, false)
	req.Role = sanitizeInput(req.Role, 16, false)

	if err := validateRequest(&req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	if appErr := app.adminService.UpdateUser(r.Context(), id, req, profileImage); appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// adminDeleteUserHandler removes a user account. Admin accounts are refused.
func (app *application) adminDeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, appErr := parseIDParam(r)
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	if appErr := app.adminService.DeleteUser(r.Context(), id); appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
