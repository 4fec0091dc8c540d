package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/fedutinova/mediastore/internal/auth"
	"github.com/fedutinova/mediastore/internal/common"
	"github.com/fedutinova/mediastore/internal/config"
	"github.com/fedutinova/mediastore/internal/storage"
	"github.com/fedutinova/mediastore/internal/upload"
	"github.com/fedutinova/mediastore/internal/validation"
)

// UploadIndex tracks who owns which stored file. It is optional.
type UploadIndex interface {
	RecordUpload(ctx context.Context, userID, location string, ttl time.Duration) error
	UploadOwner(ctx context.Context, location string) (string, error)
	ForgetUpload(ctx context.Context, location string) error
	UserUploads(ctx context.Context, userID string) ([]string, error)
	Ping(ctx context.Context) error
}

type Handlers struct {
	Uploads *upload.Service
	Index   UploadIndex
	Config  config.Config
}

func (h *Handlers) Routers(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	// uploaded files are served by us only when they live on local disk
	if h.Uploads.Backend() == storage.BackendLocal {
		r.Get(storage.PublicPrefix+"*", h.servePublic)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.JWTMiddleware(h.Config.JWTSecret, h.Config.JWTIssuer))
		if h.Config.UploadRateLimit > 0 {
			r.Use(httprate.LimitByIP(h.Config.UploadRateLimit, time.Minute))
		}

		r.With(auth.RequirePerm(auth.PermUploadWrite), h.Uploads.Avatar.Single("avatar")).
			Post("/v1/uploads/avatar", h.uploaded)
		r.With(auth.RequirePerm(auth.PermUploadWrite), h.Uploads.Posts.Single("post")).
			Post("/v1/uploads/posts", h.uploaded)

		r.With(auth.RequirePerm(auth.PermUploadDeleteOwn)).Delete("/v1/uploads", h.deleteUpload)
		r.Get("/v1/uploads", h.listUploads)
	})
}

func (h *Handlers) uploaded(w http.ResponseWriter, r *http.Request) {
	file, ok := upload.FromContext(r.Context())
	if !ok {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}

	var userID string
	if claims, ok := auth.FromContext(r.Context()); ok {
		userID = claims.UserID
	}

	if h.Index != nil {
		if err := h.Index.RecordUpload(r.Context(), userID, file.Location, h.Config.UploadIndexTTL); err != nil {
			slog.Error("failed to record upload", "location", file.Location, "user_id", userID, "error", err)
			// without an owner nobody but moderators could delete it later
			if derr := h.Uploads.Delete(r.Context(), file.Location); derr != nil {
				slog.Error("failed to roll back upload", "location", file.Location, "error", derr)
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	slog.Info("upload accepted",
		"user_id", userID,
		"category", file.Category,
		"location", file.Location,
		"size", file.Size)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(file)
}

func (h *Handlers) deleteUpload(w http.ResponseWriter, r *http.Request) {
	var req validation.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if validationErrs := validation.ValidateDeleteRequest(req); len(validationErrs) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error":   "validation failed",
			"details": validationErrs,
		})
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "no auth context", http.StatusUnauthorized)
		return
	}

	if h.Index != nil && !auth.HasPerm(claims.Roles, auth.PermUploadDeleteAll) {
		owner, err := h.Index.UploadOwner(r.Context(), req.Location)
		if err != nil && !common.IsNotFound(err) {
			slog.Error("failed to look up upload owner", "location", req.Location, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if err != nil || owner != claims.UserID {
			slog.Warn("delete of foreign upload denied", "location", req.Location, "user_id", claims.UserID)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}

	if err := h.Uploads.Delete(r.Context(), req.Location); err != nil {
		slog.Error("failed to delete upload", "location", req.Location, "backend", h.Uploads.Backend(), "error", err)
		http.Error(w, "delete failed", http.StatusBadGateway)
		return
	}

	if h.Index != nil {
		if err := h.Index.ForgetUpload(r.Context(), req.Location); err != nil {
			slog.Warn("failed to forget upload", "location", req.Location, "error", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) listUploads(w http.ResponseWriter, r *http.Request) {
	if h.Index == nil {
		http.Error(w, "upload index not configured", http.StatusNotImplemented)
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "no auth context", http.StatusUnauthorized)
		return
	}

	locations, err := h.Index.UserUploads(r.Context(), claims.UserID)
	if err != nil {
		slog.Error("failed to list uploads", "user_id", claims.UserID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if locations == nil {
		locations = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"locations": locations}); err != nil {
		slog.Warn("encode uploads", "err", err)
	}
}

func (h *Handlers) servePublic(w http.ResponseWriter, r *http.Request) {
	filePath := strings.TrimPrefix(r.URL.Path, storage.PublicPrefix)
	if filePath == "" {
		http.Error(w, "file path required", http.StatusBadRequest)
		return
	}

	if strings.Contains(filePath, "..") {
		http.Error(w, "invalid file path", http.StatusBadRequest)
		return
	}

	fullPath := filepath.Join(h.Config.PublicDir, filepath.FromSlash(filePath))
	// only regular files are public; no directory listings
	info, err := os.Stat(fullPath)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, fullPath)
}
