package model

// Role 用户角色
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User 用户，集合 users
// Password 为种子数据中的明文或 bcrypt 哈希，仅在存储层出现，接口层不返回
type User struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Username          string `json:"username"`
	Password          string `json:"password,omitempty"`
	Role              Role   `json:"role"`
	AssignedSchoolIDs []int  `json:"assignedSchoolIds,omitempty"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// CanAccess 管理员可访问全部学校，普通用户仅限分配的学校
func (u User) CanAccess(schoolID int) bool {
	if u.IsAdmin() {
		return true
	}
	for _, id := range u.AssignedSchoolIDs {
		if id == schoolID {
			return true
		}
	}
	return false
}

// Clone 深拷贝
func (u User) Clone() User {
	if u.AssignedSchoolIDs != nil {
		u.AssignedSchoolIDs = append([]int(nil), u.AssignedSchoolIDs...)
	}
	return u
}
