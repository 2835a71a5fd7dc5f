package services

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"corail-backend/internal/middleware"
	"corail-backend/internal/store"
)

var ErrInvalidToken = errors.New("invalid firebase token")

// FirebaseClaims - поля ID токена Firebase, которые нам нужны
type FirebaseClaims struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	jwt.RegisteredClaims
}

// FirebaseVerifier проверяет ID токены Firebase (RS256) по публичным сертификатам Google.
// Сертификаты кэшируются на время из Cache-Control max-age.
type FirebaseVerifier struct {
	projectID  string
	certsURL   string
	httpClient *http.Client
	now        func() time.Time

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
}

func NewFirebaseVerifier(projectID, certsURL string) *FirebaseVerifier {
	return &FirebaseVerifier{
		projectID:  projectID,
		certsURL:   certsURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

// Verify возвращает uid и данные профиля из токена
func (v *FirebaseVerifier) Verify(ctx context.Context, raw string) (*FirebaseClaims, error) {
	claims := &FirebaseClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))

	_, err := parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("kid отсутствует в заголовке")
		}
		return v.key(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !claims.VerifyAudience(v.projectID, true) {
		return nil, fmt.Errorf("%w: неверный aud", ErrInvalidToken)
	}
	if !claims.VerifyIssuer("https://securetoken.google.com/"+v.projectID, true) {
		return nil, fmt.Errorf("%w: неверный iss", ErrInvalidToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: пустой sub", ErrInvalidToken)
	}
	return claims, nil
}

// Identify - личность для создания пользователя при первом входе
func (v *FirebaseVerifier) Identify(ctx context.Context, raw string) (store.Identity, error) {
	claims, err := v.Verify(ctx, raw)
	if err != nil {
		return store.Identity{}, err
	}
	return store.Identity{
		UID:      claims.Subject,
		Email:    claims.Email,
		FullName: claims.Name,
		Phone:    claims.PhoneNumber,
	}, nil
}

func (v *FirebaseVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	fresh := v.now().Before(v.expires)
	v.mu.RUnlock()
	if ok && fresh {
		return key, nil
	}

	if err := v.refresh(ctx); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	key, ok = v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("неизвестный kid %q", kid)
	}
	return key, nil
}

func (v *FirebaseVerifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := v.httpClient.Do(req)
	if err != nil {
		middleware.TrackExternalRequest("firebase_certs", "error", time.Since(start))
		return fmt.Errorf("ошибка при загрузке сертификатов: %w", err)
	}
	defer resp.Body.Close()
	middleware.TrackExternalRequest("firebase_certs", strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("сертификаты недоступны: %s", resp.Status)
	}

	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return fmt.Errorf("ошибка при разборе сертификатов: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pemData := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemData))
		if err != nil {
			return fmt.Errorf("сертификат %s: %w", kid, err)
		}
		keys[kid] = key
	}

	v.mu.Lock()
	v.keys = keys
	v.expires = v.now().Add(maxAge(resp.Header.Get("Cache-Control")))
	v.mu.Unlock()
	return nil
}

// maxAge из "public, max-age=19302, must-revalidate"; по умолчанию час
func maxAge(header string) time.Duration {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "max-age=") {
			if secs, err := strconv.Atoi(strings.TrimPrefix(part, "max-age=")); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return time.Hour
}

var authErrorMessages = map[string]string{
	"auth/invalid-email":                            "Adresse email invalide",
	"auth/user-disabled":                            "Ce compte a été désactivé",
	"auth/user-not-found":                           "Aucun compte trouvé avec cet email",
	"auth/wrong-password":                           "Mot de passe incorrect",
	"auth/email-already-in-use":                     "Cet email est déjà utilisé",
	"auth/weak-password":                            "Le mot de passe doit contenir au moins 6 caractères",
	"auth/too-many-requests":                        "Trop de tentatives. Réessayez plus tard",
	"auth/network-request-failed":                   "Erreur réseau. Vérifiez votre connexion",
	"auth/invalid-credential":                       "Email ou mot de passe incorrect",
	"auth/popup-closed-by-user":                     "Connexion annulée",
	"auth/cancelled-popup-request":                  "Connexion annulée",
	"auth/account-exists-with-different-credential": "Un compte existe déjà avec cet email",
}

// AuthErrorMessage переводит код ошибки Firebase Auth в сообщение для пользователя
func AuthErrorMessage(code string) string {
	if msg, ok := authErrorMessages[code]; ok {
		return msg
	}
	return "Une erreur est survenue. Réessayez."
}
