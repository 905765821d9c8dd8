package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rightsdesk/docket-api/api"
	"github.com/rightsdesk/docket-api/config"
	"github.com/rightsdesk/docket-api/databases"
	"github.com/rightsdesk/docket-api/models"
	html "github.com/rightsdesk/docket-api/templates/html"
)

// User exported for testing purposes
type User struct {
	DB databases.UserDatabase

	FromEmail string
	FromName  string
	BaseURL   string
}

// UserCreateRequest is the payload for registering a staff account
type UserCreateRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// UserCreateHandler creates a staff account
func (u User) UserCreateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var req UserCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid user payload", http.StatusBadRequest, w, err)
		return
	}
	if !models.ValidRole(req.Role) {
		config.ErrorStatus("unknown role", http.StatusBadRequest, w, fmt.Errorf("role %q is not a known staff role", req.Role))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	// check if the user already exists
	existingUser, _ := u.DB.FindOne(ctx, bson.M{"user.email": req.Email})
	if existingUser != nil {
		config.ErrorStatus("email already exists", http.StatusConflict, w, fmt.Errorf("duplicate email"))
		return
	}

	// hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	user := models.User{
		ID: primitive.NewObjectID().Hex(),
		Details: models.UserDetails{
			Email:    req.Email,
			Username: req.Username,
			Name:     req.Name,
			Role:     req.Role,
			Password: string(hashedPassword),
			Active:   true,

			CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
			UpdatedAt: primitive.NewDateTimeFromTime(time.Now()),
		},
	}

	_, err = u.DB.InsertOne(ctx, user)
	if err != nil {
		config.ErrorStatus("failed to insert user", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "User created successfully",
		"id":      user.ID,
	})
}

// UserHandler returns a user by ID, with the password hash stripped
func (u User) UserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	zap.S().Debugf("user_id: %v", userID)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := u.DB.FindOne(ctx, bson.M{"_id": userID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}
	dbResp.Details.Password = ""

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UsersHandler returns all staff accounts, optionally filtered by role
func (u User) UsersHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if role := r.URL.Query().Get("role"); role != "" {
		filter["user.role"] = role
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := u.DB.Find(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to get users", http.StatusNotFound, w, err)
		return
	}
	// Because the frontend requires that the data elements inside models.User exist, if
	// len == 0 then we will just return an empty data object
	if len(dbResp) == 0 {
		dbResp = []models.User{}
	}
	for i := range dbResp {
		dbResp[i].Details.Password = ""
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeactivateUserHandler marks a staff account inactive. Inactive accounts
// cannot authenticate but keep their history on assigned dockets.
func (u User) DeactivateUserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	err := u.DB.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{
		"user.active":    false,
		"user.updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}})
	if err != nil {
		config.ErrorStatus("failed to deactivate user", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "User deactivated successfully",
	})
}

// ForgotPasswordHandler issues a short-lived reset token and emails a reset
// link to the account. The response is the same whether or not the email
// exists, so the endpoint cannot be used to probe for accounts.
func (u User) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var body struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(body); err != nil {
		config.ErrorStatus("invalid email", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindOne(ctx, bson.M{"user.email": body.Email})
	if err == nil {
		expiry := time.Now().Add(time.Hour)
		token, signErr := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": user.ID,
			"exp": expiry.Unix(),
		}).SignedString([]byte(os.Getenv("JWT_SECRET")))
		if signErr != nil {
			config.ErrorStatus("failed to sign reset token", http.StatusInternalServerError, w, signErr)
			return
		}

		err = u.DB.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
			"user.resetPasswordToken":   token,
			"user.resetPasswordExpires": primitive.NewDateTimeFromTime(expiry),
		}})
		if err != nil {
			config.ErrorStatus("failed to store reset token", http.StatusInternalServerError, w, err)
			return
		}

		resetURL := fmt.Sprintf("%s/reset-password?token=%s", u.BaseURL, token)
		go u.sendResetEmail(user.Details.Email, user.Details.Name, resetURL)
	} else {
		zap.S().Debugw("password reset requested for unknown email", "email", body.Email)
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "If the account exists, a reset link has been sent",
	})
}

func (u User) sendResetEmail(toEmail, toName, resetURL string) {
	body := html.RenderGenericEmail(
		"Password reset",
		fmt.Sprintf("A password reset was requested for your account. The link below is valid for one hour.<br/><br/><a href=\"%s\">Reset your password</a>", resetURL),
	)
	if err := html.SendEmail(u.FromEmail, u.FromName, toEmail, toName, "Password reset", body); err != nil {
		zap.S().Errorw("failed to send password reset email", "error", err)
	}
}

// ResetPasswordHandler sets a new password given a valid reset token
func (u User) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var body struct {
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(body); err != nil {
		config.ErrorStatus("invalid reset payload", http.StatusBadRequest, w, err)
		return
	}

	parsed, err := jwt.Parse(body.Token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !parsed.Valid {
		config.ErrorStatus("invalid or expired reset token", http.StatusUnauthorized, w, err)
		return
	}
	userID, err := parsed.Claims.GetSubject()
	if err != nil {
		config.ErrorStatus("invalid reset token claims", http.StatusUnauthorized, w, err)
		return
	}

	// the token must also match the one stored on the account, so a reset
	// link can only be used once
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindOne(ctx, bson.M{"_id": userID})
	if err != nil || user.Details.ResetPasswordToken != body.Token {
		config.ErrorStatus("invalid or expired reset token", http.StatusUnauthorized, w, fmt.Errorf("token does not match stored reset token"))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	err = u.DB.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{
		"user.password":             string(hashedPassword),
		"user.resetPasswordToken":   "",
		"user.resetPasswordExpires": nil,
		"user.updatedAt":            primitive.NewDateTimeFromTime(time.Now()),
	}})
	if err != nil {
		config.ErrorStatus("failed to update password", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Password updated successfully",
	})
}
