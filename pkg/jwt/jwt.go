package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Tipos de token; un refresh nunca se acepta como access y viceversa.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Tipos de cliente que inician sesión.
const (
	ClientWeb      = "web"
	ClientTerminal = "terminal"
)

// ErrWrongType el token es válido pero de otro tipo.
var ErrWrongType = errors.New("jwt: tipo de token incorrecto")

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
// Los permisos viajan en el access token para que el middleware decida sin consultar la DB.
type Claims struct {
	jwt.RegisteredClaims
	Type        string   `json:"typ"`
	UserID      string   `json:"user_id"`
	RoleID      string   `json:"role_id,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Client      string   `json:"client,omitempty"`
}

// Signer firma y valida tokens HS256.
type Signer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewSigner construye el firmador; secret no puede estar vacío.
func NewSigner(secret, issuer string, accessTTL, refreshTTL time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	return &Signer{secret: []byte(secret), issuer: issuer, accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}, nil
}

// AccessTTL vida configurada del access token.
func (s *Signer) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL vida configurada del refresh token (para la cookie y el store de jti).
func (s *Signer) RefreshTTL() time.Duration { return s.refreshTTL }

// Access genera un access token con rol, permisos y tipo de cliente.
func (s *Signer) Access(userID, roleID string, permissions []string, client string) (string, error) {
	return s.sign(Claims{
		RegisteredClaims: s.registered(userID, s.accessTTL, ""),
		Type:             TypeAccess,
		UserID:           userID,
		RoleID:           roleID,
		Permissions:      permissions,
		Client:           client,
	})
}

// Refresh genera un refresh token con un jti nuevo; devuelve el token y su jti.
func (s *Signer) Refresh(userID, client string) (token, jti string, err error) {
	jti = uuid.NewString()
	token, err = s.sign(Claims{
		RegisteredClaims: s.registered(userID, s.refreshTTL, jti),
		Type:             TypeRefresh,
		UserID:           userID,
		Client:           client,
	})
	return token, jti, err
}

// Parse valida firma, expiración y tipo del token.
func (s *Signer) Parse(tokenString, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer(s.issuer))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("claims inválidos")
	}
	if claims.Type != wantType {
		return nil, ErrWrongType
	}
	return claims, nil
}

func (s *Signer) registered(userID string, ttl time.Duration, jti string) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		ID:        jti,
		Issuer:    s.issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *Signer) sign(c Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}
