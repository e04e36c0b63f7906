package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/calebreyes/staffing-api-go/pkg/database"
)

const (
	RoleAdmin     = "admin"
	RoleVolunteer = "volunteer"
)

var (
	jwtSecret    []byte
	deviceSecret []byte
	jwtAlgorithm = jwt.SigningMethodHS256
)

// Init sets the signing secrets. Call once at startup, after config load.
func Init(secret, devSecret string) {
	jwtSecret = []byte(secret)
	deviceSecret = []byte(devSecret)
}

// Claims carries the caller identity the engine trusts: role and, for
// volunteers, their volunteer id.
type Claims struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	VolunteerID uint   `json:"volunteer_id,omitempty"`
	jwt.RegisteredClaims
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a JWT for a user with their role and volunteer scope.
func CreateToken(username, role string, volunteerID uint) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour)
	claims := &Claims{
		Username:    username,
		Role:        role,
		VolunteerID: volunteerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(jwtSecret)
}

// VerifyToken verifies a JWT token
func VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// EnsureAdminExists creates the bootstrap admin account when none exists.
func EnsureAdminExists(db *gorm.DB, username, password string) error {
	var count int64
	db.Model(&database.MasterUser{}).Count(&count)

	if count == 0 {
		hash, err := HashPassword(password)
		if err != nil {
			return err
		}

		user := database.MasterUser{
			Username:     username,
			PasswordHash: hash,
			Role:         RoleAdmin,
		}
		return db.Create(&user).Error
	}
	return nil
}

// GenerateDeviceKey creates a signed sync-client key using HMAC-SHA256.
func GenerateDeviceKey(deviceID string) string {
	h := hmac.New(sha256.New, deviceSecret)
	h.Write([]byte(deviceID))
	signature := hex.EncodeToString(h.Sum(nil))
	return deviceID + "." + signature
}

// VerifyDeviceKey validates an HMAC-signed device key.
func VerifyDeviceKey(key string) (string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", errors.New("invalid key format")
	}

	deviceID := parts[0]
	providedSignature := parts[1]

	h := hmac.New(sha256.New, deviceSecret)
	h.Write([]byte(deviceID))
	expectedSignature := hex.EncodeToString(h.Sum(nil))

	// Use constant-time comparison to prevent timing attacks
	if !hmac.Equal([]byte(providedSignature), []byte(expectedSignature)) {
		return "", errors.New("invalid signature")
	}

	return deviceID, nil
}
