// File: internal/middleware/auth.go
package middleware

import (
	"context"

	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/common"
	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/user"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenVerifier verifies an incoming Firebase ID token.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// UserResolver maps a verified Firebase UID to a local user record.
type UserResolver interface {
	FindByFirebaseUID(ctx context.Context, firebaseUID string) (*user.User, error)
}

// AuthMiddleware verifies the caller's Firebase ID token and resolves the
// local user, storing both on the Gin context.
func AuthMiddleware(verifier TokenVerifier, users UserResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := common.GetTokenFromContext(c)
		if tokenString == "" {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		token, err := verifier.VerifyIDToken(c.Request.Context(), tokenString)
		if err != nil {
			logger.Warn("Token verification failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired token."))
			return
		}

		u, err := users.FindByFirebaseUID(c.Request.Context(), token.UID)
		if err != nil {
			logger.Warn("No local user for verified token", zap.String("firebase_uid", token.UID), zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User account not found."))
			return
		}

		c.Set(common.UserIDKey, u.ID)
		c.Set(common.FirebaseUIDKey, token.UID)
		if u.Email != nil {
			c.Set(common.UserEmailKey, *u.Email)
		}

		c.Next()
	}
}
