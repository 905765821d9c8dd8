package handlers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gorilla/mux"

	"github.com/rightsdesk/docket-api/config"
)

// CloudinaryHandler handles evidence photo uploads and removals
type CloudinaryHandler struct{}

// GenerateSignature generates a signature for direct evidence photo uploads
func (c CloudinaryHandler) GenerateSignature(w http.ResponseWriter, r *http.Request) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	uploadPreset := os.Getenv("CLOUDINARY_UPLOAD_PRESET")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	// Create the signature
	h := hmac.New(sha1.New, []byte(apiSecret))
	h.Write([]byte("timestamp=" + timestamp + "&upload_preset=" + uploadPreset))
	signature := hex.EncodeToString(h.Sum(nil))

	// Respond with the timestamp and signature
	response := map[string]string{
		"timestamp": timestamp,
		"signature": signature,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// DestroyEvidencePhoto removes an uploaded evidence photo by its public ID
func (c CloudinaryHandler) DestroyEvidencePhoto(w http.ResponseWriter, r *http.Request) {
	publicID := mux.Vars(r)["public_id"]

	cld, err := cloudinary.New()
	if err != nil {
		config.ErrorStatus("failed to initialize cloudinary", http.StatusInternalServerError, w, err)
		return
	}

	resp, err := cld.Upload.Destroy(r.Context(), uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		config.ErrorStatus("failed to destroy evidence photo", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Evidence photo removed",
		"result":  resp.Result,
	})
}
