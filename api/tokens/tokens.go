package tokens

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

type TokenService interface {
	ComparePasswords(storedPassword, candidatePassword string) bool
	GenerateToken(userID int64, email, role string, departmentID int64) (string, string)
	DecodeToken(tokenString string) (*Claims, error)
}

type Tokens struct{}

func NewTokenService() *Tokens {
	return &Tokens{}
}

func (t *Tokens) ComparePasswords(storedPassword, candidatePassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(storedPassword), []byte(candidatePassword))

	return err == nil
}

// Claims carry the full identity the eligibility engine needs: role for the
// elevated-role bypass and department id for audience matching. DepartmentID
// is zero for users without a department.
type Claims struct {
	UserID       int64  `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	DepartmentID int64  `json:"department_id"`
	jwt.StandardClaims
}

func (t *Tokens) GenerateToken(userID int64, email, role string, departmentID int64) (string, string) {
	key := os.Getenv("SECRET_KEY")
	if key == "" {
		panic(errors.New("no secret key found"))
	}
	secretKey := []byte(key)

	tokenExpiry := time.Now().Add(24 * time.Hour).Unix()
	refreshTokenExpiry := time.Now().Add(7 * 24 * time.Hour).Unix()

	claims := &Claims{
		UserID:       userID,
		Email:        email,
		Role:         role,
		DepartmentID: departmentID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: tokenExpiry,
		},
	}

	refreshClaims := &Claims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: refreshTokenExpiry,
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedAccessToken, err := accessToken.SignedString(secretKey)
	if err != nil {
		panic(err)
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	signedRefreshToken, err := refreshToken.SignedString(secretKey)
	if err != nil {
		panic(err)
	}

	return signedAccessToken, signedRefreshToken
}

func (t *Tokens) DecodeToken(tokenString string) (*Claims, error) {
	key := os.Getenv("SECRET_KEY")
	if key == "" {
		return nil, errors.New("no secret key found")
	}
	secretKey := []byte(key)

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secretKey, nil
	})

	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			if ve.Errors&jwt.ValidationErrorExpired != 0 {
				return nil, errors.New("token has expired")
			}
			if ve.Errors&jwt.ValidationErrorSignatureInvalid != 0 {
				return nil, errors.New("invalid token signature")
			}
			if ve.Errors&jwt.ValidationErrorMalformed != 0 {
				return nil, errors.New("malformed token")
			}
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}

	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	return claims, nil
}
