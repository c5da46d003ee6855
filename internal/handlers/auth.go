package handlers

import (
	"errors"
	"net/http"

	"github.com/akorchagin/pollster/internal/apperrors"
	"github.com/akorchagin/pollster/internal/handlers/render"
	"github.com/akorchagin/pollster/internal/logger"
	"github.com/akorchagin/pollster/internal/service/auth"
)

func handleSignup(authService authService, logger logger.Logger) http.Handler {
	type SignupRequest struct {
		Name     string `json:"name" validate:"required,max=100"`
		LastName string `json:"last_name" validate:"required,max=100"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}
	type SignupSuccessResponse struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[SignupRequest](w, r)
		if err != nil {
			return
		}

		_, pair, err := authService.Signup(r.Context(), auth.SignupParams{
			FirstName: data.Name,
			LastName:  data.LastName,
			Email:     data.Email,
			Password:  data.Password,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.ServiceError(w, "User already exists", http.StatusConflict)
			default:
				logger.Error("signup failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		authService.SetTokens(w, pair)
		render.JSONWithStatus(w, SignupSuccessResponse{Message: "User registered successfully"}, http.StatusCreated)
	})
}

func handleLogin(authService authService, logger logger.Logger) http.Handler {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	type LoginSuccessResponse struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[LoginRequest](w, r)
		if err != nil {
			return
		}

		pair, err := authService.Login(r.Context(), data.Email, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "Invalid email or password", http.StatusUnauthorized)
			default:
				logger.Error("login failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		authService.SetTokens(w, pair)
		render.JSON(w, LoginSuccessResponse{Message: "User logged in successfully"})
	})
}

func handleLogout(authService authService) http.Handler {
	type LogoutSuccessResponse struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authService.ClearTokens(w)
		render.JSON(w, LogoutSuccessResponse{Message: "User logged out successfully"})
	})
}

func handleTokenRefresh(authService authService, logger logger.Logger) http.Handler {
	type RefreshSuccessResponse struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refresh, err := authService.GetRefresh(r)
		if err != nil {
			render.ServiceError(w, "Refresh token not found", http.StatusUnauthorized)
			return
		}

		pair, err := authService.Refresh(r.Context(), refresh)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrRefreshTokenExpired):
				render.ServiceError(w, "Refresh token expired", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrRefreshTokenNotFound),
				errors.Is(err, apperrors.ErrRefreshTokenIsUsed):
				render.ServiceError(w, "Refresh token not found", http.StatusUnauthorized)
			default:
				logger.Error("token refresh failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		authService.SetTokens(w, pair)
		render.JSON(w, RefreshSuccessResponse{Message: "Tokens refreshed successfully"})
	})
}
