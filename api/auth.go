package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ahmed-hamed0/sani3y.com/internal/signup"
	"github.com/ahmed-hamed0/sani3y.com/internal/tasks"
	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
	"github.com/ahmed-hamed0/sani3y.com/pkg/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	userRepo         repository.UserRepo
	profileRepo      repository.ProfileRepo
	craftsmanRepo    repository.CraftsmanRepo
	taskRepo         repository.TaskRepo
	validator        *signup.Validator
	jwtSecret        string
	tokenDuration    time.Duration
	rememberDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(
	ur repository.UserRepo,
	pr repository.ProfileRepo,
	cr repository.CraftsmanRepo,
	tr repository.TaskRepo,
	validator *signup.Validator,
	jwtSecret string,
	tokenDuration, rememberDuration time.Duration,
) *AuthHandler {
	return &AuthHandler{
		userRepo:         ur,
		profileRepo:      pr,
		craftsmanRepo:    cr,
		taskRepo:         tr,
		validator:        validator,
		jwtSecret:        jwtSecret,
		tokenDuration:    tokenDuration,
		rememberDuration: rememberDuration,
	}
}

type signinRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

type authResponse struct {
	Token string `json:"token"`
}

type fieldErrorsResponse struct {
	Errors []signup.FieldError `json:"errors"`
}

// Signup registers a user from the completed wizard form. The user row is
// written first; a profile write that fails afterwards is not rolled back
// but handed to the background repair task so the rows converge.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var form signup.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	fieldErrs, err := h.validator.Validate(ctx, &form)
	if err != nil {
		http.Error(w, "Error validating request", http.StatusInternalServerError)
		return
	}
	if len(fieldErrs) > 0 {
		writeJSON(w, fieldErrorsResponse{Errors: fieldErrs}, http.StatusBadRequest)
		return
	}

	existing, err := h.userRepo.GetUserByEmail(ctx, form.Email)
	if err != nil {
		http.Error(w, "Error checking email", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		http.Error(w, "Email already registered", http.StatusConflict)
		return
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        form.Email,
		PasswordHash: string(hash),
	}
	if err := h.userRepo.CreateUser(ctx, &user); err != nil {
		http.Error(w, "Error creating user", http.StatusInternalServerError)
		return
	}

	profile := models.Profile{
		ID:          user.ID,
		FullName:    form.Name,
		Role:        form.Role,
		Governorate: form.Governorate,
		City:        form.City,
		Phone:       form.FullPhone(),
	}
	profileOK := true
	if err := h.profileRepo.CreateProfile(ctx, &profile); err != nil {
		logger.Error("create profile after signup", "user_id", user.ID, "err", err)
		profileOK = false
	}

	if profileOK && form.Role == models.RoleCraftsman {
		details := models.CraftsmanDetails{
			ProfileID:   user.ID,
			Specialty:   form.Specialty,
			Bio:         form.Bio,
			IsAvailable: true,
		}
		if err := h.craftsmanRepo.CreateCraftsmanDetails(ctx, &details); err != nil {
			logger.Error("create craftsman details after signup", "user_id", user.ID, "err", err)
			profileOK = false
		}
	}

	if !profileOK {
		h.enqueueProfileRepair(r, &user, &form)
	}

	token, err := h.issueToken(&user, string(form.Role), form.RememberMe)
	if err != nil {
		http.Error(w, "Error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: token}, http.StatusCreated)
}

func (h *AuthHandler) enqueueProfileRepair(r *http.Request, user *models.User, form *signup.Form) {
	payload, err := json.Marshal(tasks.EnsureProfilePayload{
		UserID:      user.ID,
		FullName:    form.Name,
		Role:        form.Role,
		Phone:       form.FullPhone(),
		Governorate: form.Governorate,
		City:        form.City,
		Specialty:   form.Specialty,
		Bio:         form.Bio,
	})
	if err != nil {
		logger.Error("encode profile repair payload", "user_id", user.ID, "err", err)
		return
	}
	t := models.Task{Type: tasks.TypeEnsureProfile, Payload: payload, Priority: 50, MaxAttempts: 5}
	if _, err := h.taskRepo.EnqueueTask(r.Context(), &t); err != nil {
		logger.Error("enqueue profile repair", "user_id", user.ID, "err", err)
	}
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	user, err := h.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil || user == nil {
		http.Error(w, "Credentials not found", http.StatusUnauthorized)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, "Credentials not found", http.StatusUnauthorized)
		return
	}

	profile, err := h.ensureProfile(r, user)
	if err != nil {
		http.Error(w, "Error loading profile", http.StatusInternalServerError)
		return
	}

	token, err := h.issueToken(user, string(profile.Role), req.RememberMe)
	if err != nil {
		http.Error(w, "Error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: token}, http.StatusOK)
}

// ensureProfile self-heals a registration that never wrote its profile
// row: a missing profile is recreated with defaults on first sign-in.
func (h *AuthHandler) ensureProfile(r *http.Request, user *models.User) (*models.Profile, error) {
	ctx := r.Context()
	profile, err := h.profileRepo.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	name := user.Email
	if i := strings.Index(name, "@"); i > 0 {
		name = name[:i]
	}
	profile = &models.Profile{
		ID:       user.ID,
		FullName: name,
		Role:     models.RoleClient,
	}
	if err := h.profileRepo.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}
	logger.Info("profile self-healed on sign-in", "user_id", user.ID)

	return profile, nil
}

func (h *AuthHandler) issueToken(user *models.User, role string, remember bool) (string, error) {
	dur := h.tokenDuration
	if remember {
		dur = h.rememberDuration
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    role,
		"exp":     time.Now().Add(dur).Unix(),
	})

	return token.SignedString([]byte(h.jwtSecret))
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	// For stateless JWT, signout is client-side (just delete token)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"message":"signed out"}`)
}

type sessionResponse struct {
	Profile   *models.Profile          `json:"profile"`
	Craftsman *models.CraftsmanDetails `json:"craftsman,omitempty"`
}

// Me returns the session context for the authenticated user: the profile
// plus craftsman details when the role warrants them.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx := r.Context()
	profile, err := h.profileRepo.GetProfile(ctx, uid)
	if err != nil {
		http.Error(w, "Error loading profile", http.StatusInternalServerError)
		return
	}
	if profile == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	resp := sessionResponse{Profile: profile}
	if profile.Role == models.RoleCraftsman {
		details, err := h.craftsmanRepo.GetCraftsmanDetails(ctx, uid)
		if err != nil {
			http.Error(w, "Error loading craftsman details", http.StatusInternalServerError)
			return
		}
		resp.Craftsman = details
	}

	writeJSON(w, resp, http.StatusOK)
}
