package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"corail-backend/internal/store"
)

const maxAvatarSize = 5 << 20

var avatarExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// UploadAvatar - POST /api/profile/avatar (multipart, поле file).
// Файл сохраняется в UPLOAD_DIR/yyyy/mm/dd/<uuid>.<ext>, URL записывается в профиль.
func UploadAvatar(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			badRequest(c, "Fichier introuvable")
			return
		}
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !avatarExtensions[ext] {
			badRequest(c, "Format d'image non supporté")
			return
		}
		if file.Size > maxAvatarSize {
			badRequest(c, "Image trop volumineuse (5 Mo maximum)")
			return
		}

		// Поддиректория по дате
		datePath := d.now().Format("2006/01/02")
		dateDir := filepath.Join(d.Config.UploadDir, datePath)
		if err := os.MkdirAll(dateDir, 0o755); err != nil {
			d.respondError(c, fmt.Errorf("create upload dir: %w", err))
			return
		}

		newFileName := uuid.NewString() + ext
		if err := c.SaveUploadedFile(file, filepath.Join(dateDir, newFileName)); err != nil {
			d.respondError(c, fmt.Errorf("save upload: %w", err))
			return
		}

		fileURL := fmt.Sprintf("/uploads/%s/%s", datePath, newFileName)
		user, err := d.Store.UpdateProfile(c.Request.Context(), currentUserID(c), store.ProfileUpdate{AvatarURL: &fileURL})
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": fileURL, "user": user})
	}
}
