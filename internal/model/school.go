package model

// SchoolLevel 学校层级
type SchoolLevel string

const (
	LevelPreschool      SchoolLevel = "Mầm non"
	LevelPrimary        SchoolLevel = "Tiểu học"
	LevelLowerSecondary SchoolLevel = "THCS"
	LevelUpperSecondary SchoolLevel = "THPT"
	LevelMultiLevel     SchoolLevel = "Liên cấp"
)

// DefaultSchoolLevel 新建学校未指定层级时使用
const DefaultSchoolLevel = LevelLowerSecondary

// SchoolLevels 展示顺序
var SchoolLevels = []SchoolLevel{
	LevelPreschool, LevelPrimary, LevelLowerSecondary, LevelUpperSecondary, LevelMultiLevel,
}

// Valid 是否为已知层级
func (l SchoolLevel) Valid() bool {
	for _, v := range SchoolLevels {
		if v == l {
			return true
		}
	}
	return false
}

// School 学校，集合 schools
type School struct {
	ID       int         `json:"id"`
	Name     string      `json:"name"`
	Level    SchoolLevel `json:"level"`
	Location string      `json:"location"`
}
