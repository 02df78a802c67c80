package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"groove-press/internal/api"
	"groove-press/internal/engine/actors"
	"groove-press/internal/middleware"
	"groove-press/internal/models"
	"groove-press/internal/utils"

	"github.com/google/uuid"
)

// RegisterUserRequest represents a request to register a new user
type RegisterUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a request to log in a user
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest carries the mutable profile fields.
type UpdateProfileRequest struct {
	Username  string  `json:"username,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// BanRequest is the admin ban/unban payload.
type BanRequest struct {
	UserID string `json:"userId"`
	Banned bool   `json:"banned"`
}

// RoleRequest is the admin role-change payload.
type RoleRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// HandleUserRegistration handles requests to register a new user
func (s *Server) HandleUserRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req RegisterUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		s.askAndRespond(w, s.Engine.GetUserActor(), &actors.RegisterUserMsg{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
	}
}

// HandleUserLogin handles requests to log in a user
func (s *Server) HandleUserLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		result, err := s.ask(s.Engine.GetUserActor(), &actors.LoginMsg{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			http.Error(w, "Failed to process login", http.StatusInternalServerError)
			return
		}

		if appErr, ok := result.(*utils.AppError); ok {
			writeJSON(w, utils.AppErrorToHTTPStatus(appErr.Code), &api.LoginResponse{
				Success: false,
				Error:   appErr.Message,
			})
			return
		}

		user, ok := result.(*models.User)
		if !ok {
			log.Printf("Login: unexpected actor response type %T", result)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		token, err := middleware.GenerateToken(user.ID, user.Role)
		if err != nil {
			log.Printf("Failed to generate token for user %s: %v", user.ID, err)
			http.Error(w, "Failed to generate token", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, &api.LoginResponse{
			Success: true,
			Token:   token,
			UserID:  user.ID.String(),
			Role:    string(user.Role),
		})
	}
}

// HandleUserProfile serves GET (any profile) and PUT (own profile).
func (s *Server) HandleUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			idParam := r.URL.Query().Get("id")
			userID, err := uuid.Parse(idParam)
			if err != nil {
				// No id means the caller's own profile.
				callerID, ok := middleware.GetUserIDFromContext(r.Context())
				if !ok {
					http.Error(w, "Invalid user ID format", http.StatusBadRequest)
					return
				}
				userID = callerID
			}
			s.askAndRespond(w, s.Engine.GetUserActor(), &actors.GetUserProfileMsg{UserID: userID})

		case http.MethodPut:
			callerID, ok := middleware.GetUserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			var req UpdateProfileRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}

			s.askAndRespond(w, s.Engine.GetUserActor(), &actors.UpdateProfileMsg{
				UserID:       callerID,
				NewUsername:  req.Username,
				NewAvatarURL: req.AvatarURL,
			})

		case http.MethodDelete:
			callerID, ok := middleware.GetUserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}
			s.askAndRespond(w, s.Engine.GetUserActor(), &actors.DeleteAccountMsg{UserID: callerID})

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// VerifyEmailRequest carries the verification state reported by the
// auth provider callback.
type VerifyEmailRequest struct {
	Verified bool `json:"verified"`
}

// HandleVerifyEmail updates the caller's email verification flag.
func (s *Server) HandleVerifyEmail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		callerID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		var req VerifyEmailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		s.askAndRespond(w, s.Engine.GetUserActor(), &actors.SetEmailVerifiedMsg{
			UserID:   callerID,
			Verified: req.Verified,
		})
	}
}

// requireAdmin rejects non-admin callers. Returns the admin's ID.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	if claims.Role != models.RoleAdmin {
		http.Error(w, "Admin role required", http.StatusForbidden)
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// HandleBanUser lets an admin ban or unban an account.
func (s *Server) HandleBanUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		adminID, ok := s.requireAdmin(w, r)
		if !ok {
			return
		}

		var req BanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		targetID, err := uuid.Parse(req.UserID)
		if err != nil {
			http.Error(w, "Invalid user ID format", http.StatusBadRequest)
			return
		}

		s.askAndRespond(w, s.Engine.GetUserActor(), &actors.BanUserMsg{
			AdminID:  adminID,
			TargetID: targetID,
			Banned:   req.Banned,
		})
	}
}

// HandleSetRole lets an admin promote or demote an account.
func (s *Server) HandleSetRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		adminID, ok := s.requireAdmin(w, r)
		if !ok {
			return
		}

		var req RoleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		targetID, err := uuid.Parse(req.UserID)
		if err != nil {
			http.Error(w, "Invalid user ID format", http.StatusBadRequest)
			return
		}

		s.askAndRespond(w, s.Engine.GetUserActor(), &actors.SetRoleMsg{
			AdminID:  adminID,
			TargetID: targetID,
			Role:     models.Role(req.Role),
		})
	}
}
