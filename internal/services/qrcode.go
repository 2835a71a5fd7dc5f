package services

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"corail-backend/internal/models"
)

const DefaultQRSize = 512

// VCard - визитка водителя: клиент добавляет контакт напрямую, без посредника
func VCard(u *models.User) string {
	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"FN:" + u.FullName,
		"TEL;TYPE=CELL:" + u.Phone,
		"EMAIL:" + u.Email,
	}
	if u.Siren != "" {
		lines = append(lines, "NOTE:SIREN "+u.Siren)
	}
	if u.ProfessionalCardNumber != "" {
		lines = append(lines, "NOTE:Carte professionnelle "+u.ProfessionalCardNumber)
	}
	lines = append(lines, "END:VCARD")
	return strings.Join(lines, "\n")
}

// ProfileQRCode - PNG с vCard водителя
func ProfileQRCode(u *models.User, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(VCard(u), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации QR кода: %w", err)
	}
	return png, nil
}
