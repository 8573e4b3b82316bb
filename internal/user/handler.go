package user

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"whispr/internal/common"
)

// Handler wires the account endpoints to the user service
type Handler struct {
	userService UserService
}

func NewHandler(userService UserService) *Handler {
	return &Handler{userService: userService}
}

// RegisterPublicRoutes mounts the endpoints that work without a session
func (h *Handler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/auth/register", h.Register).Methods("POST")
	r.HandleFunc("/auth/login", h.Login).Methods("POST")
}

// RegisterRoutes mounts the endpoints behind auth middleware
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/users", h.ListContacts).Methods("GET")
	r.HandleFunc("/users/me", h.Me).Methods("GET")
	r.HandleFunc("/users/me", h.UpdateMe).Methods("PATCH")
}

type contactResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatarUrl"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	_, err := h.userService.RegisterUser(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			common.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		common.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	common.WriteJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, token, err := h.userService.LoginUser(r.Context(), req.Email, req.Password)
	if err != nil {
		common.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": contactResponse{
			ID:        user.ID,
			Name:      user.DisplayName(),
			Email:     user.Email,
			AvatarURL: user.Image,
		},
	})
}

// ListContacts returns every other account, the pool of possible counterparts
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	users, err := h.userService.ListContacts(r.Context(), userID)
	if err != nil {
		log.Printf("list contacts: %v", err)
		common.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	contacts := make([]contactResponse, 0, len(users))
	for _, u := range users {
		contacts = append(contacts, contactResponse{
			ID:        u.ID,
			Name:      u.DisplayName(),
			Email:     u.Email,
			AvatarURL: u.Image,
		})
	}
	common.WriteJSON(w, http.StatusOK, contacts)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		common.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	common.WriteJSON(w, http.StatusOK, contactResponse{
		ID:        user.ID,
		Name:      user.DisplayName(),
		Email:     user.Email,
		AvatarURL: user.Image,
	})
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Name  string `json:"name"`
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, req.Name, req.Image)
	if err != nil {
		if errors.Is(err, ErrNoFields) {
			common.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("update profile: %v", err)
		common.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":    user.ID,
		"name":  user.Name,
		"image": user.Image,
	})
}
