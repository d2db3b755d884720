package dto

// ── 用户模块 DTO ──

// CreateUserRequest 新增用户
// 必填项在 service 层统一校验，以返回与界面一致的提示文案
type CreateUserRequest struct {
	Name              string `json:"name"                binding:"max=100"`
	Phone             string `json:"phone"               binding:"max=20"`
	Username          string `json:"username"            binding:"max=50"`
	Password          string `json:"password"            binding:"max=72"`
	Role              string `json:"role"                binding:"required,oneof=admin user"`
	AssignedSchoolIDs []int  `json:"assigned_school_ids" binding:"dive,min=1"`
}

// UpdateUserRequest 编辑用户；用户名不可修改，密码留空表示不修改
type UpdateUserRequest struct {
	Name              string `json:"name"                binding:"max=100"`
	Phone             string `json:"phone"               binding:"max=20"`
	Password          string `json:"password"            binding:"max=72"`
	Role              string `json:"role"                binding:"required,oneof=admin user"`
	AssignedSchoolIDs []int  `json:"assigned_school_ids" binding:"dive,min=1"`
}
