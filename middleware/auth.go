package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"hostel-complaint-api/models"
	"hostel-complaint-api/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies HS256 session tokens.
type Authenticator struct {
	secret []byte
	expiry time.Duration
	users  services.UserDirectory
	now    func() time.Time
}

func NewAuthenticator(secret string, expireHours int, users services.UserDirectory) *Authenticator {
	if expireHours <= 0 {
		expireHours = 24 * 7
	}
	return &Authenticator{
		secret: []byte(secret),
		expiry: time.Duration(expireHours) * time.Hour,
		users:  users,
		now:    time.Now,
	}
}

// GenerateToken creates JWT token
func (a *Authenticator) GenerateToken(user *models.User) (string, error) {
	now := a.now()
	claims := Claims{
		UserID: user.UserID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Authenticator) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// AuthMiddleware validates the bearer token in the Authorization header.
func AuthMiddleware(a *Authenticator) gin.HandlerFunc {
	return authenticate(a, false)
}

// QueryTokenAuth also accepts ?token=, for <img> tags and websocket upgrades.
func QueryTokenAuth(a *Authenticator) gin.HandlerFunc {
	return authenticate(a, true)
}

func authenticate(a *Authenticator, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok && allowQuery {
			tokenString = c.Query("token")
			ok = tokenString != ""
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Access denied. No token provided."})
			return
		}

		claims, err := a.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}

		// Check if user still exists; the stored role wins over the token's.
		user, err := a.users.GetProfile(c.Request.Context(), claims.UserID)
		if err != nil {
			status := http.StatusUnauthorized
			message := "User not found"
			if !errors.Is(err, services.ErrUserNotFound) {
				status = http.StatusInternalServerError
				message = "Failed to verify user"
			}
			c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
			return
		}

		c.Set("userID", user.UserID)
		c.Set("email", user.Email)
		c.Set("role", user.Role)
		c.Set("user", user)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader || tokenString == "" {
		return "", false
	}
	return tokenString, true
}

// RequireRole checks if user has specific role
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Access denied. Insufficient permissions."})
	}
}

// CurrentPrincipal returns the caller resolved by AuthMiddleware.
func CurrentPrincipal(c *gin.Context) (services.Principal, bool) {
	id := c.GetString("userID")
	if id == "" {
		return services.Principal{}, false
	}
	return services.Principal{ID: id, Role: c.GetString("role")}, true
}

// CurrentUser returns the profile loaded by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("user")
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
