// Package auth provides user registration, login and session handling.
//
// Users authenticate with a username and password; passwords are stored as
// bcrypt hashes. A successful login renews the session token and stores the
// user id, username and login time in a server-side scs session. Nothing
// else, and in particular no password, is kept in the session.
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # CSRF signing key, auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h           # Session duration, idle timeout is half
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=false           # HTTPS-only cookies
//	AUTH_MAX_LOGIN_ATTEMPTS=5           # Failed logins before lockout
//
// # Usage
//
//	authService := auth.NewService(users.NewRepository(db), cfg.Auth)
//	sessions := auth.NewSessionManager(store, cfg.Auth)
//	router.Use(sessions.SessionLoadSave())
//	router.Use(auth.NewMiddleware(authService, sessions).Handler())
//
// Extract the user in handlers:
//
//	userID := auth.GetUserID(c) // AnonymousUserID on public pages
package auth
