package api

import (
	"context"
	"net/http"

	"matdepot/authctl/internal/models"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", registerRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult carries either a completed login (Token set) or an MFA
// challenge (MFARequired set, no token issued yet).
type LoginResult struct {
	Token       string `json:"token"`
	SessionID   string `json:"sessionId"`
	MFARequired bool   `json:"mfaRequired"`
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var resp LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	return resp, err
}

func (c *Client) Me(ctx context.Context) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user)
	return user, err
}

type emailRequest struct {
	Email string `json:"email"`
}

func (c *Client) RequestOTP(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/request-otp", emailRequest{Email: email}, nil)
}

type verifyOTPRequest struct {
	Email   string `json:"email"`
	OTPCode string `json:"otpCode"`
}

// VerifyOTPResult is a completed authentication: the user object comes
// back inline, no secondary profile fetch is needed.
type VerifyOTPResult struct {
	Token     string      `json:"token"`
	SessionID string      `json:"sessionId"`
	User      models.User `json:"user"`
}

func (c *Client) VerifyOTP(ctx context.Context, email, code string) (VerifyOTPResult, error) {
	var resp VerifyOTPResult
	err := c.do(ctx, http.MethodPost, "/auth/verify-otp", verifyOTPRequest{
		Email:   email,
		OTPCode: code,
	}, &resp)
	return resp, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", emailRequest{Email: email}, nil)
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTPCode     string `json:"otpCode"`
	NewPassword string `json:"newPassword"`
}

func (c *Client) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password", resetPasswordRequest{
		Email:       email,
		OTPCode:     code,
		NewPassword: newPassword,
	}, nil)
}

type emailChangeRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewEmail        string `json:"newEmail"`
}

func (c *Client) RequestEmailChange(ctx context.Context, currentPassword, newEmail string) error {
	return c.do(ctx, http.MethodPost, "/auth/request-email-change", emailChangeRequest{
		CurrentPassword: currentPassword,
		NewEmail:        newEmail,
	}, nil)
}

type verifyEmailChangeRequest struct {
	NewEmail string `json:"newEmail"`
	OTPCode  string `json:"otpCode"`
}

type emailResponse struct {
	Email string `json:"email"`
}

func (c *Client) VerifyEmailChange(ctx context.Context, newEmail, code string) (string, error) {
	var resp emailResponse
	err := c.do(ctx, http.MethodPost, "/auth/verify-email-change", verifyEmailChangeRequest{
		NewEmail: newEmail,
		OTPCode:  code,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Email, nil
}

type twoFactorResponse struct {
	TwoFactorEnabled bool `json:"twoFactorEnabled"`
}

func (c *Client) Toggle2FA(ctx context.Context) (bool, error) {
	var resp twoFactorResponse
	err := c.do(ctx, http.MethodPut, "/auth/2fa", nil, &resp)
	return resp.TwoFactorEnabled, err
}
