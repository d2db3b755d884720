package dto

import "school-health/internal/model"

// ── 认证模块响应 ──

// TokenResponse 登录成功响应
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"` // Access Token 有效期（秒）
	User        UserResponse `json:"user"`
}

// ── 用户模块响应 ──

// UserResponse 用户信息响应（不含密码）
type UserResponse struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Username          string `json:"username"`
	Role              string `json:"role"`
	AssignedSchoolIDs []int  `json:"assigned_school_ids"`
}

// ToUserResponse 脱敏转换
func ToUserResponse(u model.User) UserResponse {
	ids := make([]int, len(u.AssignedSchoolIDs))
	copy(ids, u.AssignedSchoolIDs)
	return UserResponse{
		ID:                u.ID,
		Name:              u.Name,
		Phone:             u.Phone,
		Username:          u.Username,
		Role:              string(u.Role),
		AssignedSchoolIDs: ids,
	}
}

// ToUserResponses 批量脱敏转换
func ToUserResponses(users []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return out
}
